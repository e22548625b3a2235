package entity

import "time"

// Project is a unit of work owned by an organization.
type Project struct {
	ProjectID   string `json:"project_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status,omitempty"`

	Owner           string `json:"owner,omitempty"`
	ParentProjectID string `json:"parent_project_id,omitempty"`
	OrgID           string `json:"org_id,omitempty"`

	StartDate   string     `json:"start_date,omitempty"`
	DueDate     string     `json:"due_date,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	Modules []string `json:"modules,omitempty"`
	Members []string `json:"members,omitempty"`
	Tags    []string `json:"tags,omitempty"`

	Budget   float64 `json:"budget,omitempty"`
	Priority string  `json:"priority,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Metadata map[string]any `json:"metadata,omitempty"`
}
