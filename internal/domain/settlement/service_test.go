package settlement_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hwshop/internal/app/apptest"
	"hwshop/internal/core/apperror"
	"hwshop/internal/core/security"
	"hwshop/internal/core/types"
	"hwshop/internal/domain/documents"
	"hwshop/internal/domain/documents/sale"
	"hwshop/internal/domain/settlement"
)

func pay(s *sale.Sale, amount string) settlement.RecordInput {
	return settlement.RecordInput{SaleID: s.ID, Amount: types.MustMoney(amount), PaymentMethod: sale.MethodMobileMoney}
}

func TestRecordPayment_SettlesInTwoInstallments(t *testing.T) {
	l := apptest.New(t)
	p := l.Product(t, "MIX-01", "1000.00", "5")
	c := l.Customer(t, "Acme Builders", "3000.00")
	s := l.CreditSale(t, c, p, "1", "1000.00")

	_, err := l.Settlement.RecordPayment(l.Ctx, apptest.Cashier, pay(s, "400.00"))
	require.NoError(t, err)

	got, err := l.Sales.Get(l.Ctx, apptest.Cashier, s.ID)
	require.NoError(t, err)
	assert.Equal(t, documents.StatusPartial, got.PaymentStatus)
	assert.Equal(t, "400", got.AmountPaid.String())
	assert.Equal(t, "600", got.Remaining().String())
	assert.Equal(t, "600", l.Balance(t, c.ID).String())

	_, err = l.Settlement.RecordPayment(l.Ctx, apptest.Cashier, pay(s, "600.00"))
	require.NoError(t, err)

	got, err = l.Sales.Get(l.Ctx, apptest.Cashier, s.ID)
	require.NoError(t, err)
	assert.Equal(t, documents.StatusPaid, got.PaymentStatus)
	assert.Equal(t, "1000", got.AmountPaid.String())
	assert.True(t, l.Balance(t, c.ID).IsZero())

	out, err := l.Settlement.GetCustomerOutstanding(l.Ctx, apptest.Cashier, c.ID)
	require.NoError(t, err)
	assert.Empty(t, out.OpenSales)
	assert.Equal(t, "3000", out.AvailableCredit.String())
}

func TestRecordPayment_ExceedingRemainingIsRejected(t *testing.T) {
	l := apptest.New(t)
	p := l.Product(t, "MIX-02", "1000.00", "5")
	c := l.Customer(t, "Beta Roofing", "3000.00")
	s := l.CreditSale(t, c, p, "1", "1000.00")

	_, err := l.Settlement.RecordPayment(l.Ctx, apptest.Cashier, pay(s, "400.00"))
	require.NoError(t, err)

	_, err = l.Settlement.RecordPayment(l.Ctx, apptest.Cashier, pay(s, "700.00"))
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodePaymentExceedsBalance))
	assert.Equal(t, apperror.CategoryConflict, apperror.CategoryOf(err))

	payments, err := l.Settlement.ListSalePayments(l.Ctx, apptest.Owner, s.ID)
	require.NoError(t, err)
	assert.Len(t, payments, 1)

	got, err := l.Sales.Get(l.Ctx, apptest.Owner, s.ID)
	require.NoError(t, err)
	assert.Equal(t, "400", got.AmountPaid.String())
	assert.Equal(t, documents.StatusPartial, got.PaymentStatus)
	assert.Equal(t, "600", l.Balance(t, c.ID).String())
}

func TestRecordPayment_Validation(t *testing.T) {
	l := apptest.New(t)
	p := l.Product(t, "MIX-03", "100.00", "5")
	c := l.Customer(t, "Gamma", "1000.00")
	credit := l.CreditSale(t, c, p, "1", "100.00")

	walkIn, err := l.Sales.Create(l.Ctx, apptest.Cashier, sale.CreateInput{
		PaymentMethod: sale.MethodCash,
		Items:         []documents.LineInput{apptest.Line(p.ID, "1", "100.00")},
	})
	require.NoError(t, err)

	tests := []struct {
		name  string
		actor security.Actor
		input settlement.RecordInput
		code  string
	}{
		{"zero amount", apptest.Cashier, pay(credit, "0"), apperror.CodeValidation},
		{"negative amount", apptest.Cashier, pay(credit, "-5.00"), apperror.CodeValidation},
		{"too many decimals", apptest.Cashier, settlement.RecordInput{SaleID: credit.ID, Amount: types.MustQuantity("1.005"), PaymentMethod: sale.MethodCash}, apperror.CodeValidation},
		{"credit method", apptest.Cashier, settlement.RecordInput{SaleID: credit.ID, Amount: types.MustMoney("10"), PaymentMethod: sale.MethodCredit}, apperror.CodeValidation},
		{"walk-in sale", apptest.Cashier, pay(walkIn, "10.00"), apperror.CodeConflict},
		{"staff cannot record", apptest.Staff, pay(credit, "10.00"), apperror.CodeForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := l.Settlement.RecordPayment(l.Ctx, tt.actor, tt.input)
			assert.True(t, apperror.HasCode(err, tt.code), "got %v", err)
		})
	}

	assert.Equal(t, "100", l.Balance(t, c.ID).String())
}

func TestDeletePayment_Recomputes(t *testing.T) {
	l := apptest.New(t)
	p := l.Product(t, "MIX-04", "250.00", "5")
	c := l.Customer(t, "Delta", "1000.00")
	s := l.CreditSale(t, c, p, "2", "250.00")

	payment, err := l.Settlement.RecordPayment(l.Ctx, apptest.Cashier, pay(s, "500.00"))
	require.NoError(t, err)
	assert.True(t, l.Balance(t, c.ID).IsZero())

	err = l.Settlement.DeletePayment(l.Ctx, apptest.Cashier, payment.ID)
	assert.True(t, apperror.HasCode(err, apperror.CodeForbidden))

	require.NoError(t, l.Settlement.DeletePayment(l.Ctx, apptest.Manager, payment.ID))
	got, err := l.Sales.Get(l.Ctx, apptest.Owner, s.ID)
	require.NoError(t, err)
	assert.Equal(t, documents.StatusPending, got.PaymentStatus)
	assert.True(t, got.AmountPaid.IsZero())
	assert.Equal(t, "500", l.Balance(t, c.ID).String())
}

func TestBalanceSpansOpenSales(t *testing.T) {
	l := apptest.New(t)
	p := l.Product(t, "MIX-05", "100.00", "10")
	c := l.Customer(t, "Epsilon", "1000.00")

	first := l.CreditSale(t, c, p, "1", "100.00")
	l.CreditSale(t, c, p, "2", "100.00")
	_, err := l.Settlement.RecordPayment(l.Ctx, apptest.Cashier, pay(first, "40.00"))
	require.NoError(t, err)

	out, err := l.Settlement.GetCustomerOutstanding(l.Ctx, apptest.Owner, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "260", out.CurrentBalance.String())
	assert.Equal(t, "740", out.AvailableCredit.String())
	require.Len(t, out.OpenSales, 2)

	var sum types.Money
	for _, open := range out.OpenSales {
		sum = sum.Add(open.Remaining)
	}
	assert.True(t, sum.Equal(out.CurrentBalance))

	history, err := l.Settlement.ListCustomerPayments(l.Ctx, apptest.Owner, c.ID, 10, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 1, history.TotalCount)
}

func TestRecomputeAll(t *testing.T) {
	l := apptest.New(t)
	p := l.Product(t, "MIX-06", "100.00", "10")
	c := l.Customer(t, "Zeta", "1000.00")
	s := l.CreditSale(t, c, p, "3", "100.00")
	_, err := l.Settlement.RecordPayment(l.Ctx, apptest.Cashier, pay(s, "100.00"))
	require.NoError(t, err)

	// Drift the stored balance behind the engine's back.
	require.NoError(t, l.Store.Customers().SetBalance(l.Ctx, c.ID, types.MustMoney("999.00")))

	_, err = l.Settlement.RecomputeAll(l.Ctx, apptest.Cashier)
	assert.True(t, apperror.HasCode(err, apperror.CodeForbidden))

	report, err := l.Settlement.RecomputeAll(l.Ctx, apptest.Owner)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Sales)
	assert.Equal(t, 1, report.Customers)
	assert.Equal(t, "200", l.Balance(t, c.ID).String())
}
