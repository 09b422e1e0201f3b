package models

import "time"

// Client is a customer known by phone number. Created on first check-in.
type Client struct {
	ID         int64     `json:"id"`
	Phone      string    `json:"phone"`
	CreatedAt  time.Time `json:"created_at"`
	LastSeenAt time.Time `json:"last_seen_at"`
}
