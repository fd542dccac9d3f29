/*
Package chat contains the core logic for the shared chat room: user identity
allocation, the connection registry, message broadcasting, and the per-connection
session lifecycle.

This file defines the IDAllocator, which hands out the user identities assigned
to incoming connections.
*/
package chat

import (
	"fmt"
	"sync/atomic"
)

// IDAllocator issues monotonically increasing user identifiers of the form
// "user_<n>", starting at user_0. Identifiers are never reused within the
// lifetime of the allocator, even after the user disconnects.
type IDAllocator struct {
	counter atomic.Uint64
}

// NewIDAllocator returns an allocator whose first identifier is user_0.
func NewIDAllocator() *IDAllocator {
	return &IDAllocator{}
}

// NextID returns the next unused identifier. Safe for concurrent use.
func (a *IDAllocator) NextID() string {
	n := a.counter.Add(1) - 1
	return fmt.Sprintf("user_%d", n)
}
