package model

import "time"

// Project is a board owned by exactly one user and shared with members
type Project struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Description *string      `json:"description"`
	OwnerID     string       `json:"ownerId"`
	Owner       UserRef      `json:"owner"`
	Memberships []Membership `json:"memberships"`
	Tasks       []Task       `json:"tasks,omitempty"`
	TaskCount   int          `json:"taskCount"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// Membership grants a non-owner user access to a project
type Membership struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	ProjectID string    `json:"projectId"`
	User      UserRef   `json:"user"`
	CreatedAt time.Time `json:"createdAt"`
}

// IsOwner reports whether userID owns the project
func (p *Project) IsOwner(userID string) bool {
	return p.OwnerID == userID
}

// HasMember reports whether userID holds a membership row
func (p *Project) HasMember(userID string) bool {
	for _, m := range p.Memberships {
		if m.UserID == userID {
			return true
		}
	}
	return false
}

// Export is the downloadable snapshot of a project
type Export struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Owner      UserRef   `json:"owner"`
	Members    []UserRef `json:"members"`
	Tasks      []Task    `json:"tasks"`
	ExportedAt time.Time `json:"exportedAt"`
}

// NewExport builds an export snapshot from a fully loaded project
func NewExport(p *Project, now time.Time) Export {
	members := make([]UserRef, 0, len(p.Memberships))
	for _, m := range p.Memberships {
		members = append(members, m.User)
	}
	tasks := p.Tasks
	if tasks == nil {
		tasks = []Task{}
	}
	return Export{
		ID:         p.ID,
		Name:       p.Name,
		Owner:      p.Owner,
		Members:    members,
		Tasks:      tasks,
		ExportedAt: now,
	}
}
