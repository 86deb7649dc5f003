package domain

import "time"

// WeaverProfile is the public-facing business profile of a catalog owner.
type WeaverProfile struct {
	Owner     string    `json:"owner"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	LogoURL   string    `json:"logo_url"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserProfile is the minimal profile every signed-in user may keep.
type UserProfile struct {
	Principal string `json:"principal"`
	Name      string `json:"name"`
}
