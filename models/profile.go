package models

import "time"

// DefaultProfileName is used when bootstrapping a fresh install.
const DefaultProfileName = "Family"

// Profile is an isolated tracking namespace for one household member.
// All tracking records are scoped by profile ID with no cross-profile
// visibility.
type Profile struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}
