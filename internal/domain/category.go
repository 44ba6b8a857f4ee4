package domain

import (
	"time"

	"github.com/google/uuid"
)

// Category represents a product category. Categories form a two-level tree:
// roots have no ParentID, their children point at a root.
type Category struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	Slug      string     `json:"slug,omitempty"`
	ParentID  *uuid.UUID `json:"parentId,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

// IsRoot reports whether the category sits at the top of the tree.
func (c Category) IsRoot() bool {
	return c.ParentID == nil
}
