// Package domain provides core business logic interfaces and types.
package domain

import (
	"context"

	"hwshop/internal/core/entity"
	"hwshop/internal/core/id"
)

// --- Filter & Pagination ---

// ListFilter contains common filtering options for list operations.
type ListFilter struct {
	// Search matches name-like columns (case-insensitive substring)
	Search string

	// IDs filters by specific IDs
	IDs []id.ID

	// Active filters by is_active when set
	Active *bool

	// OrderBy specifies sorting (e.g., "name", "-created_at")
	OrderBy string

	Limit  int
	Offset int
}

// DefaultListFilter returns sensible defaults.
func DefaultListFilter() ListFilter {
	return ListFilter{
		Limit:   50,
		OrderBy: "name",
	}
}

// ListResult contains paginated results.
type ListResult[T any] struct {
	Items      []T   `json:"items"`
	TotalCount int64 `json:"totalCount"`
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
}

// Paginate slices items by limit/offset. Used by in-memory stores.
func Paginate[T any](items []T, limit, offset int) ListResult[T] {
	total := len(items)
	if offset > total {
		offset = total
	}
	end := total
	if limit > 0 && offset+limit < total {
		end = offset + limit
	}
	page := make([]T, end-offset)
	copy(page, items[offset:end])
	return ListResult[T]{Items: page, TotalCount: int64(total), Limit: limit, Offset: offset}
}

// --- Repository Interfaces ---

// CatalogEntity is the constraint for catalog rows handled by CatalogService.
type CatalogEntity interface {
	entity.Validatable
	GetID() id.ID
	Active() bool
	Touch()
}

// CatalogRepository defines CRUD operations for catalog entities.
type CatalogRepository[T CatalogEntity] interface {
	Create(ctx context.Context, entity T) error

	// GetByID returns NOT_FOUND when the row does not exist.
	GetByID(ctx context.Context, id id.ID) (T, error)

	// GetForUpdate retrieves the row with a lock held until the transaction ends.
	GetForUpdate(ctx context.Context, id id.ID) (T, error)

	Update(ctx context.Context, entity T) error

	// SetActive soft-deactivates or reactivates the row.
	SetActive(ctx context.Context, id id.ID, active bool) error

	// Delete physically removes the row. Rows referenced by ledger history
	// fail with ENTITY_REFERENCED.
	Delete(ctx context.Context, id id.ID) error

	List(ctx context.Context, filter ListFilter) (ListResult[T], error)

	Exists(ctx context.Context, id id.ID) (bool, error)
}

// --- Hooks ---

// HookEvent represents lifecycle event type.
type HookEvent string

const (
	BeforeCreate HookEvent = "before_create"
	// InCreateTx hooks run inside the create transaction, after the insert.
	InCreateTx   HookEvent = "in_create_tx"
	BeforeUpdate HookEvent = "before_update"
	BeforeDelete HookEvent = "before_delete"
)

// Hook is a function that runs at specific lifecycle points.
type Hook[T any] func(ctx context.Context, entity T) error

// HookRegistry stores lifecycle hooks for an entity type.
type HookRegistry[T any] struct {
	hooks map[HookEvent][]Hook[T]
}

// NewHookRegistry creates an empty hook registry.
func NewHookRegistry[T any]() *HookRegistry[T] {
	return &HookRegistry[T]{
		hooks: make(map[HookEvent][]Hook[T]),
	}
}

// On registers a hook for the specified event.
func (r *HookRegistry[T]) On(event HookEvent, hook Hook[T]) {
	r.hooks[event] = append(r.hooks[event], hook)
}

// Run executes all hooks for the specified event, stopping at the first error.
func (r *HookRegistry[T]) Run(ctx context.Context, event HookEvent, entity T) error {
	for _, hook := range r.hooks[event] {
		if err := hook(ctx, entity); err != nil {
			return err
		}
	}
	return nil
}

func (r *HookRegistry[T]) OnBeforeCreate(hook Hook[T]) { r.On(BeforeCreate, hook) }
func (r *HookRegistry[T]) OnCreateTx(hook Hook[T])     { r.On(InCreateTx, hook) }
func (r *HookRegistry[T]) OnBeforeUpdate(hook Hook[T]) { r.On(BeforeUpdate, hook) }
func (r *HookRegistry[T]) OnBeforeDelete(hook Hook[T]) { r.On(BeforeDelete, hook) }
