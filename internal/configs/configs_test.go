package configs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	tests := []struct {
		name     string
		env      map[string]string
		wantErr  string
		validate func(t *testing.T, cfg *AppConfig)
	}{
		{
			name: "defaults apply when nothing is set",
			env:  map[string]string{},
			validate: func(t *testing.T, cfg *AppConfig) {
				assert.Equal(t, "development", cfg.Environment)
				assert.Equal(t, 8080, cfg.Port)
				assert.Empty(t, cfg.AllowedOrigins)
			},
		},
		{
			name: "custom port is honored",
			env:  map[string]string{"PORT": "9090"},
			validate: func(t *testing.T, cfg *AppConfig) {
				assert.Equal(t, 9090, cfg.Port)
			},
		},
		{
			name:    "port must be numeric",
			env:     map[string]string{"PORT": "http"},
			wantErr: "invalid PORT",
		},
		{
			name:    "privileged ports are rejected",
			env:     map[string]string{"PORT": "80"},
			wantErr: "outside the recommended range",
		},
		{
			name: "origins are split and trimmed",
			env:  map[string]string{"ALLOWED_ORIGINS": "https://a.example, https://b.example ,,"},
			validate: func(t *testing.T, cfg *AppConfig) {
				assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
			},
		},
		{
			name:    "production requires origins",
			env:     map[string]string{"ENVIRONMENT": "production"},
			wantErr: "ALLOWED_ORIGINS",
		},
		{
			name: "production with origins loads",
			env: map[string]string{
				"ENVIRONMENT":     "production",
				"ALLOWED_ORIGINS": "https://app.example",
			},
			validate: func(t *testing.T, cfg *AppConfig) {
				assert.Equal(t, "production", cfg.Environment)
				assert.Equal(t, []string{"https://app.example"}, cfg.AllowedOrigins)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("ENVIRONMENT", "")
			t.Setenv("PORT", "")
			t.Setenv("ALLOWED_ORIGINS", "")
			for key, value := range tt.env {
				t.Setenv(key, value)
			}

			cfg, err := LoadConfig()

			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, cfg)
			tt.validate(t, cfg)
		})
	}
}
