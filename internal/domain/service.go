package domain

import (
	"context"
	"fmt"

	"hwshop/internal/core/apperror"
	"hwshop/internal/core/id"
	"hwshop/internal/core/security"
	"hwshop/internal/core/tx"
	"hwshop/pkg/logger"
)

// CatalogCapabilities maps catalog actions to the capabilities they require.
type CatalogCapabilities struct {
	Read   security.Capability
	Write  security.Capability
	Delete security.Capability
}

// CatalogService provides CRUD business logic shared by catalog entities.
type CatalogService[T CatalogEntity] struct {
	repo       CatalogRepository[T]
	txManager  tx.Manager
	hooks      *HookRegistry[T]
	caps       CatalogCapabilities
	entityName string
}

// CatalogServiceConfig configures the catalog service.
type CatalogServiceConfig[T CatalogEntity] struct {
	Repo         CatalogRepository[T]
	TxManager    tx.Manager
	Capabilities CatalogCapabilities
	EntityName   string
}

// NewCatalogService creates a new catalog service.
func NewCatalogService[T CatalogEntity](cfg CatalogServiceConfig[T]) *CatalogService[T] {
	return &CatalogService[T]{
		repo:       cfg.Repo,
		txManager:  cfg.TxManager,
		hooks:      NewHookRegistry[T](),
		caps:       cfg.Capabilities,
		entityName: cfg.EntityName,
	}
}

// Hooks returns the hook registry for entity-specific logic.
func (s *CatalogService[T]) Hooks() *HookRegistry[T] {
	return s.hooks
}

func (s *CatalogService[T]) normalizeGetErr(err error, entityID id.ID) error {
	if apperror.IsNotFound(err) {
		return apperror.NewNotFound(s.entityName, entityID.String())
	}
	return err
}

// Create validates and inserts a new entity.
func (s *CatalogService[T]) Create(ctx context.Context, actor security.Actor, entity T) error {
	if err := actor.Require(s.caps.Write); err != nil {
		return err
	}
	if err := entity.Validate(ctx); err != nil {
		return err
	}
	if err := s.hooks.Run(ctx, BeforeCreate, entity); err != nil {
		return err
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, entity); err != nil {
			return fmt.Errorf("create %s: %w", s.entityName, err)
		}
		return s.hooks.Run(ctx, InCreateTx, entity)
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, s.entityName+" created", "id", entity.GetID(), "actor", actor.ID)
	return nil
}

// GetByID retrieves entity by ID.
func (s *CatalogService[T]) GetByID(ctx context.Context, actor security.Actor, entityID id.ID) (T, error) {
	var zero T
	if err := actor.Require(s.caps.Read); err != nil {
		return zero, err
	}
	entity, err := s.repo.GetByID(ctx, entityID)
	if err != nil {
		return zero, s.normalizeGetErr(err, entityID)
	}
	return entity, nil
}

// Update validates and saves an existing entity.
func (s *CatalogService[T]) Update(ctx context.Context, actor security.Actor, entity T) error {
	if err := actor.Require(s.caps.Write); err != nil {
		return err
	}
	if err := entity.Validate(ctx); err != nil {
		return err
	}
	if err := s.hooks.Run(ctx, BeforeUpdate, entity); err != nil {
		return err
	}
	entity.Touch()

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.repo.GetForUpdate(ctx, entity.GetID()); err != nil {
			return s.normalizeGetErr(err, entity.GetID())
		}
		if err := s.repo.Update(ctx, entity); err != nil {
			return fmt.Errorf("update %s: %w", s.entityName, err)
		}
		return nil
	})
}

// SetActive deactivates or reactivates an entity. Deactivated entries stay
// in history but cannot be referenced by new documents.
func (s *CatalogService[T]) SetActive(ctx context.Context, actor security.Actor, entityID id.ID, active bool) error {
	if err := actor.Require(s.caps.Write); err != nil {
		return err
	}
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.repo.GetForUpdate(ctx, entityID); err != nil {
			return s.normalizeGetErr(err, entityID)
		}
		return s.repo.SetActive(ctx, entityID, active)
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, s.entityName+" activation changed", "id", entityID, "active", active, "actor", actor.ID)
	return nil
}

// Delete physically removes an unreferenced entity.
func (s *CatalogService[T]) Delete(ctx context.Context, actor security.Actor, entityID id.ID) error {
	if err := actor.Require(s.caps.Delete); err != nil {
		return err
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		entity, err := s.repo.GetForUpdate(ctx, entityID)
		if err != nil {
			return s.normalizeGetErr(err, entityID)
		}
		if err := s.hooks.Run(ctx, BeforeDelete, entity); err != nil {
			return err
		}
		return s.repo.Delete(ctx, entityID)
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, s.entityName+" deleted", "id", entityID, "actor", actor.ID)
	return nil
}

// List retrieves entities with filtering.
func (s *CatalogService[T]) List(ctx context.Context, actor security.Actor, filter ListFilter) (ListResult[T], error) {
	if err := actor.Require(s.caps.Read); err != nil {
		return ListResult[T]{}, err
	}
	return s.repo.List(ctx, filter)
}

// RequireActive loads an entity and fails unless it exists and is active.
// Used by document services inside their transaction.
func (s *CatalogService[T]) RequireActive(ctx context.Context, entityID id.ID) (T, error) {
	entity, err := s.repo.GetByID(ctx, entityID)
	if err != nil {
		var zero T
		return zero, s.normalizeGetErr(err, entityID)
	}
	if !entity.Active() {
		var zero T
		return zero, apperror.NewInactive(s.entityName, entityID.String())
	}
	return entity, nil
}
