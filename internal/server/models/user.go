package models

import (
	"encoding/json"
	"time"
)

// User is the backend account row. Profile holds the client-shaped profile
// document as JSONB; the server treats it as opaque apart from patching.
type User struct {
	UID          string
	Email        string
	PasswordHash []byte
	Profile      json.RawMessage
	CreatedAt    time.Time
}
