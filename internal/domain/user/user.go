// Package user defines the user domain model. Users are keyed by the device
// identifier their requests arrive from; no credentials are stored.
package user

import "time"

// DefaultDeviceID is used when a front end does not supply a device ID.
const DefaultDeviceID = "default_user"

// User represents a known device/user pair.
type User struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name,omitempty"`
	Email     string    `json:"email,omitempty"`
	DeviceID  string    `json:"device_id"`
	CreatedAt time.Time `json:"created_at"`
}
