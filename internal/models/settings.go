package models

import "time"

// Settings is the singleton configuration row (id = SettingsID).
type Settings struct {
	ID        int64     `json:"id"`
	BotActive bool      `json:"bot_active"`
	AdminCode string    `json:"-"`
	UpdatedAt time.Time `json:"updated_at"`
}
