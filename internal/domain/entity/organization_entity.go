package entity

import "time"

// StatusActive is the lifecycle status required of an organization before
// any tenant-scoped admin operation may run against it.
const StatusActive = "active"

// Organization is the top-level tenant record. OrgID is the caller-chosen
// business key (for example "ACME-CORP"), unique across the collection.
type Organization struct {
	OrgID       string `json:"org_id"`
	Name        string `json:"name"`
	IsActive    *bool  `json:"is_active,omitempty"`
	ShortName   string `json:"short_name,omitempty"`
	Description string `json:"description,omitempty"`

	PrimaryContact string `json:"primary_contact,omitempty"`
	Email          string `json:"email,omitempty"`
	Website        string `json:"website,omitempty"`
	Address        any    `json:"address,omitempty"`

	ParentOrgID   string   `json:"parent_org_id,omitempty"`
	Status        string   `json:"status,omitempty"`
	BusinessUnits []string `json:"business_units,omitempty"`

	Members  []string `json:"members,omitempty"`
	Projects []string `json:"projects,omitempty"`

	EstablishedDate *time.Time `json:"established_date,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`

	Metadata map[string]any `json:"metadata,omitempty"`
}

// Active reports whether the organization accepts new child records.
// The lifecycle status string drives this, not the is_active flag.
func (o *Organization) Active() bool {
	return o != nil && o.Status == StatusActive
}
