package memory

import (
	"context"
	"slices"

	"hwshop/internal/core/apperror"
	"hwshop/internal/core/id"
	"hwshop/internal/core/types"
	"hwshop/internal/domain"
	"hwshop/internal/domain/expense"
	"hwshop/internal/domain/settlement"
)

// PaymentRepo implements settlement.PaymentRepository.
type PaymentRepo struct {
	s *Store
}

var _ settlement.PaymentRepository = (*PaymentRepo)(nil)

func (r *PaymentRepo) Insert(ctx context.Context, p *settlement.Payment) error {
	return r.s.do(ctx, "payment.Insert", func(st *state) error {
		if _, ok := st.sales[p.SaleID]; !ok {
			return apperror.NewNotFound("sale", p.SaleID.String())
		}
		if _, ok := st.customers[p.CustomerID]; !ok {
			return apperror.NewNotFound("customer", p.CustomerID.String())
		}
		st.payments[p.ID] = *p
		return nil
	})
}

func (r *PaymentRepo) GetByID(ctx context.Context, paymentID id.ID) (*settlement.Payment, error) {
	var out *settlement.Payment
	err := r.s.do(ctx, "payment.GetByID", func(st *state) error {
		p, ok := st.payments[paymentID]
		if !ok {
			return apperror.NewNotFound("payment", paymentID.String())
		}
		out = &p
		return nil
	})
	return out, err
}

func (r *PaymentRepo) Delete(ctx context.Context, paymentID id.ID) error {
	return r.s.do(ctx, "payment.Delete", func(st *state) error {
		if _, ok := st.payments[paymentID]; !ok {
			return apperror.NewNotFound("payment", paymentID.String())
		}
		delete(st.payments, paymentID)
		return nil
	})
}

func (r *PaymentRepo) DeleteBySale(ctx context.Context, saleID id.ID) (int64, error) {
	var n int64
	err := r.s.do(ctx, "payment.DeleteBySale", func(st *state) error {
		for pid, p := range st.payments {
			if p.SaleID == saleID {
				delete(st.payments, pid)
				n++
			}
		}
		return nil
	})
	return n, err
}

func (r *PaymentRepo) SumForSale(ctx context.Context, saleID id.ID) (types.Money, error) {
	var sum types.Money
	err := r.s.do(ctx, "payment.SumForSale", func(st *state) error {
		for _, p := range st.payments {
			if p.SaleID == saleID {
				sum = sum.Add(p.Amount)
			}
		}
		return nil
	})
	return sum, err
}

func (r *PaymentRepo) ListBySale(ctx context.Context, saleID id.ID) ([]settlement.Payment, error) {
	var items []settlement.Payment
	err := r.s.do(ctx, "payment.ListBySale", func(st *state) error {
		for _, p := range st.payments {
			if p.SaleID == saleID {
				items = append(items, p)
			}
		}
		slices.SortFunc(items, comparePaymentsAsc)
		return nil
	})
	return items, err
}

func (r *PaymentRepo) ListByCustomer(ctx context.Context, customerID id.ID, limit, offset int) (domain.ListResult[settlement.Payment], error) {
	var out domain.ListResult[settlement.Payment]
	err := r.s.do(ctx, "payment.ListByCustomer", func(st *state) error {
		var items []settlement.Payment
		for _, p := range st.payments {
			if p.CustomerID == customerID {
				items = append(items, p)
			}
		}
		slices.SortFunc(items, func(a, b settlement.Payment) int { return comparePaymentsAsc(b, a) })
		out = domain.Paginate(items, limit, offset)
		return nil
	})
	return out, err
}

func comparePaymentsAsc(a, b settlement.Payment) int {
	if c := a.PaymentDate.Compare(b.PaymentDate); c != 0 {
		return c
	}
	return id.Compare(a.ID, b.ID)
}

// ExpenseRepo implements expense.Repository.
type ExpenseRepo struct {
	s *Store
}

var _ expense.Repository = (*ExpenseRepo)(nil)

func (r *ExpenseRepo) Create(ctx context.Context, e *expense.Expense) error {
	return r.s.do(ctx, "expense.Create", func(st *state) error {
		st.expenses[e.ID] = *e
		return nil
	})
}

func (r *ExpenseRepo) Update(ctx context.Context, e *expense.Expense) error {
	return r.s.do(ctx, "expense.Update", func(st *state) error {
		if _, ok := st.expenses[e.ID]; !ok {
			return apperror.NewNotFound("expense", e.ID.String())
		}
		st.expenses[e.ID] = *e
		return nil
	})
}

func (r *ExpenseRepo) GetByID(ctx context.Context, expenseID id.ID) (*expense.Expense, error) {
	var out *expense.Expense
	err := r.s.do(ctx, "expense.GetByID", func(st *state) error {
		e, ok := st.expenses[expenseID]
		if !ok {
			return apperror.NewNotFound("expense", expenseID.String())
		}
		out = &e
		return nil
	})
	return out, err
}

func (r *ExpenseRepo) Delete(ctx context.Context, expenseID id.ID) error {
	return r.s.do(ctx, "expense.Delete", func(st *state) error {
		delete(st.expenses, expenseID)
		return nil
	})
}

func (r *ExpenseRepo) List(ctx context.Context, filter expense.ListFilter) (domain.ListResult[*expense.Expense], error) {
	var out domain.ListResult[*expense.Expense]
	err := r.s.do(ctx, "expense.List", func(st *state) error {
		var items []*expense.Expense
		for _, e := range st.expenses {
			if filter.Category != "" && e.Category != filter.Category {
				continue
			}
			if !inRange(e.ExpenseDate, filter.From, filter.To) {
				continue
			}
			items = append(items, &e)
		}
		slices.SortFunc(items, func(a, b *expense.Expense) int {
			if c := b.ExpenseDate.Compare(a.ExpenseDate); c != 0 {
				return c
			}
			return id.Compare(b.ID, a.ID)
		})
		out = domain.Paginate(items, filter.Limit, filter.Offset)
		return nil
	})
	return out, err
}
