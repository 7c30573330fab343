package models

import (
	"encoding/json"
	"time"
)

// Record is a row of one club section (events, rentals, vendors, ...).
type Record struct {
	ID        string          `json:"id"`
	ClubID    string          `json:"club_id"`
	Section   string          `json:"section"`
	Data      json.RawMessage `json:"data"`
	CreatedBy string          `json:"created_by,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}
