package model

import "time"

// ContractorProfile extends a demo with trade-specific fields for the
// contractor vertical. Keyed 1:1 by demo id.
type ContractorProfile struct {
	DemoID        string    `json:"demo_id"`
	CompanyName   string    `json:"company_name"`
	Trade         string    `json:"trade"` // e.g. hvac, roofing, plumbing
	LicenseNumber string    `json:"license_number,omitempty"`
	ServiceArea   string    `json:"service_area,omitempty"`
	ContactEmail  string    `json:"contact_email,omitempty"`
	ContactPhone  string    `json:"contact_phone,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type UpsertProfileRequest struct {
	CompanyName   string `json:"company_name" binding:"required"`
	Trade         string `json:"trade" binding:"required"`
	LicenseNumber string `json:"license_number"`
	ServiceArea   string `json:"service_area"`
	ContactEmail  string `json:"contact_email"`
	ContactPhone  string `json:"contact_phone"`
}

// Integration is one connected external system (CRM lead feed, QC platform)
// synced on a schedule.
type Integration struct {
	ID        string    `json:"id"`
	DemoID    string    `json:"demo_id"`
	Kind      string    `json:"kind"` // crm_leads | qc_jobs
	BaseURL   string    `json:"base_url"`
	APIKey    string    `json:"-"`
	IsEnabled bool      `json:"is_enabled"`
	LastSync  time.Time `json:"last_sync"`
}

const (
	IntegrationCRMLeads = "crm_leads"
	IntegrationQCJobs   = "qc_jobs"
)

// IntegrationStats is the latest normalized pull from one integration; the
// monitoring gatherers for leads and qc read these rows.
type IntegrationStats struct {
	ID           string    `json:"id"`
	DemoID       string    `json:"demo_id"`
	Kind         string    `json:"kind"`
	Leads        int       `json:"leads"`
	JobsAnalyzed int       `json:"jobs_analyzed"`
	FailedJobs   int       `json:"failed_jobs"`
	SyncedAt     time.Time `json:"synced_at"`
}
