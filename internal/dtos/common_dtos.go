package dtos

import (
	"github.com/google/uuid"

	"github.com/ips-ux/maintenance-manager/internal/models"
)

// Actor identifies who performed a mutating call. Every mutation takes
// one explicitly; there is no ambient current-user state.
type Actor struct {
	UserID uuid.UUID       `json:"user_id"`
	Name   string          `json:"name"`
	Role   models.RoleType `json:"role"`
}

// SystemActor attributes automated sweeps (cron, escalation) in the
// activity trail.
func SystemActor() Actor {
	return Actor{
		UserID: uuid.Nil,
		Name:   "System",
		Role:   models.RoleAdmin,
	}
}

// BulkItemError reports one rejected item of a bulk create; the rest of
// the batch still goes through.
type BulkItemError struct {
	Index      int    `json:"index"`
	Identifier string `json:"identifier,omitempty"`
	Error      string `json:"error"`
}

type BulkCreateResult struct {
	Created int             `json:"created"`
	Errors  []BulkItemError `json:"errors"`
}
