package sale_test

import (
	"hwshop/internal/core/types"
	"hwshop/internal/domain/documents/sale"
	"hwshop/internal/domain/settlement"
)

func settlementInput(s *sale.Sale, amount string) settlement.RecordInput {
	return settlement.RecordInput{
		SaleID:        s.ID,
		Amount:        types.MustMoney(amount),
		PaymentMethod: sale.MethodCash,
	}
}
