package entity

import "time"

// BusinessUnit is a division inside an organization. BUID is its
// caller-chosen business key (for example "SALES-EAST").
type BusinessUnit struct {
	BUID        string `json:"bu_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`

	ParentOrg  string `json:"parent_org,omitempty"`
	ParentBUID string `json:"parent_bu_id,omitempty"`
	Head       string `json:"head,omitempty"`

	Members  []string `json:"members,omitempty"`
	Projects []string `json:"projects,omitempty"`

	Status string `json:"status,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	UpdatedBy string    `json:"updated_by,omitempty"`

	Metadata map[string]any `json:"metadata,omitempty"`
}
