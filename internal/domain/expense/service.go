package expense

import (
	"context"
	"time"

	"hwshop/internal/core/apperror"
	"hwshop/internal/core/id"
	"hwshop/internal/core/security"
	"hwshop/internal/domain"
	"hwshop/pkg/logger"
)

// Service provides CRUD for expenses.
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService creates a new expense service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: func() time.Time { return time.Now().UTC() }}
}

// Create records an expense. A zero date means today.
func (s *Service) Create(ctx context.Context, actor security.Actor, e *Expense) error {
	if err := actor.Require(security.CapExpenseWrite); err != nil {
		return err
	}
	now := s.now()
	if e.ExpenseDate.IsZero() {
		e.ExpenseDate = now
	}
	if err := e.Validate(); err != nil {
		return err
	}

	e.ID = id.New()
	e.CreatedBy = actor.ID
	e.CreatedAt = now
	e.UpdatedAt = now
	if err := s.repo.Create(ctx, e); err != nil {
		return err
	}

	logger.Info(ctx, "expense created", "id", e.ID, "category", e.Category, "amount", e.Amount.String())
	return nil
}

// Update replaces the editable fields of an expense.
func (s *Service) Update(ctx context.Context, actor security.Actor, e *Expense) error {
	if err := actor.Require(security.CapExpenseWrite); err != nil {
		return err
	}
	if err := e.Validate(); err != nil {
		return err
	}
	existing, err := s.get(ctx, e.ID)
	if err != nil {
		return err
	}
	e.CreatedBy = existing.CreatedBy
	e.CreatedAt = existing.CreatedAt
	e.UpdatedAt = s.now()
	return s.repo.Update(ctx, e)
}

// Get returns one expense.
func (s *Service) Get(ctx context.Context, actor security.Actor, expenseID id.ID) (*Expense, error) {
	if err := actor.Require(security.CapExpenseRead); err != nil {
		return nil, err
	}
	return s.get(ctx, expenseID)
}

// Delete removes an expense.
func (s *Service) Delete(ctx context.Context, actor security.Actor, expenseID id.ID) error {
	if err := actor.Require(security.CapExpenseWrite); err != nil {
		return err
	}
	if _, err := s.get(ctx, expenseID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, expenseID); err != nil {
		return err
	}
	logger.Info(ctx, "expense deleted", "id", expenseID, "actor", actor.ID)
	return nil
}

// List returns expenses, newest first.
func (s *Service) List(ctx context.Context, actor security.Actor, filter ListFilter) (domain.ListResult[*Expense], error) {
	if err := actor.Require(security.CapExpenseRead); err != nil {
		return domain.ListResult[*Expense]{}, err
	}
	return s.repo.List(ctx, filter)
}

func (s *Service) get(ctx context.Context, expenseID id.ID) (*Expense, error) {
	e, err := s.repo.GetByID(ctx, expenseID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("expense", expenseID.String())
		}
		return nil, err
	}
	return e, nil
}
