package handler

import (
	"stormchat/internal/app/chat"
	"stormchat/internal/configs"
)

type AppDeps struct {
	Room   *chat.Room
	Config *configs.AppConfig
}
