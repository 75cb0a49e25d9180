package entity

import "time"

// Address is a shipping address embedded in a User. Addresses form an
// append-only ordered list; all fields are required together.
type Address struct {
	Country     string    `json:"country"`
	City        string    `json:"city"`
	Line        string    `json:"address"`
	Pincode     string    `json:"pincode"`
	AddressType string    `json:"address_type"` // e.g. home, office
	CreatedAt   time.Time `json:"created_at,omitempty"`
}
