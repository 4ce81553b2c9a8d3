// Package entity holds fields shared by catalog entities.
package entity

import (
	"context"
	"time"

	"hwshop/internal/core/id"
)

// Validatable is implemented by entities that support self-validation.
// Validation checks internal invariants without store access.
type Validatable interface {
	Validate(ctx context.Context) error
}

// Catalog contains common fields for reference data (products, suppliers, customers).
// Catalog rows are soft-deactivated via IsActive.
type Catalog struct {
	ID        id.ID     `db:"id" json:"id"`
	IsActive  bool      `db:"is_active" json:"isActive"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// NewCatalog creates an active Catalog with generated ID.
func NewCatalog() Catalog {
	now := time.Now().UTC()
	return Catalog{
		ID:        id.New(),
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// GetID returns the primary key.
func (c *Catalog) GetID() id.ID { return c.ID }

// Active reports whether the entry may be referenced by new documents.
func (c *Catalog) Active() bool { return c.IsActive }

// Touch updates the UpdatedAt timestamp.
func (c *Catalog) Touch() {
	c.UpdatedAt = time.Now().UTC()
}

// SetActive deactivates or reactivates the entry.
func (c *Catalog) SetActive(active bool) {
	c.IsActive = active
	c.Touch()
}
