package model

import "time"

// Demo is one tenant record. website_url is unique across tenants; creating
// a demo for an existing site returns the stored record instead of a
// duplicate.
type Demo struct {
	ID           string    `json:"id"`
	WebsiteURL   string    `json:"website_url"`
	BusinessName string    `json:"business_name"`
	Industry     string    `json:"industry,omitempty"`
	City         string    `json:"city,omitempty"`
	Region       string    `json:"region,omitempty"`
	ContactEmail string    `json:"contact_email,omitempty"`
	ContactPhone string    `json:"contact_phone,omitempty"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
}

const (
	StatusActive  = "active"
	StatusDeleted = "deleted"
)

type CreateDemoRequest struct {
	WebsiteURL   string `json:"website_url" binding:"required"`
	BusinessName string `json:"business_name"`
	Industry     string `json:"industry"`
	City         string `json:"city"`
	Region       string `json:"region"`
	ContactEmail string `json:"contact_email"`
	ContactPhone string `json:"contact_phone"`
}

// BusinessContext is the advisory per-site profile kept by the context
// manager and fed into agent prompts. Fields merge shallowly.
type BusinessContext struct {
	WebsiteURL  string            `json:"website_url"`
	Name        string            `json:"name,omitempty"`
	Description string            `json:"description,omitempty"`
	Industry    string            `json:"industry,omitempty"`
	Keywords    []string          `json:"keywords,omitempty"`
	Extra       map[string]string `json:"extra,omitempty"`
	UpdatedAt   time.Time         `json:"updated_at"`
}
