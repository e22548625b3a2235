package entity

import "time"

// Module is a subpart of a project.
type Module struct {
	ModuleID    string `json:"module_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status,omitempty"`

	ProjectID string `json:"project_id,omitempty"`
	Owner     string `json:"owner,omitempty"`

	StartDate   string     `json:"start_date,omitempty"`
	DueDate     string     `json:"due_date,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	Members []string `json:"members,omitempty"`
	Tags    []string `json:"tags,omitempty"`

	Priority string `json:"priority,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Metadata map[string]any `json:"metadata,omitempty"`
}
