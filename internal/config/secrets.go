package config

import (
	"github.com/kelseyhightower/envconfig"
)

// Secrets are read from the environment once at startup (after an optional
// .env file) and passed explicitly to the components that need them.
type Secrets struct {
	BotToken  string `envconfig:"BOT_TOKEN"`
	ChatID    string `envconfig:"CHAT_ID"`
	APIKey    string `envconfig:"API_KEY"`
	UserAgent string `envconfig:"USER_AGENT"`
}

func LoadSecrets() (Secrets, error) {
	var s Secrets
	if err := envconfig.Process("", &s); err != nil {
		return Secrets{}, err
	}
	return s, nil
}

// HasTelegram reports whether both bot credentials are present.
func (s Secrets) HasTelegram() bool { return s.BotToken != "" && s.ChatID != "" }
