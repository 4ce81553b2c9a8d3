// Package security defines roles, capabilities and the acting principal.
//
// Identity is verified by an external provider; the ledger receives an actor id
// and a role claim. Authorization is a capability-set lookup on that role and is
// passed into every core operation as an explicit Actor, never read from globals.
package security

import (
	"fmt"
	"slices"

	"hwshop/internal/core/apperror"
)

// Role is the closed set of shop roles.
type Role string

const (
	RoleOwner   Role = "owner"
	RoleManager Role = "manager"
	RoleCashier Role = "cashier"
	RoleStaff   Role = "staff"
)

// ParseRole validates a role claim.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if _, ok := roleCapabilities[r]; !ok {
		return "", apperror.NewUnauthorized(fmt.Sprintf("unknown role %q", s))
	}
	return r, nil
}

// Capability names one permitted action.
type Capability string

const (
	CapProductRead   Capability = "product:read"
	CapProductWrite  Capability = "product:write"
	CapProductDelete Capability = "product:delete"

	CapSupplierRead   Capability = "supplier:read"
	CapSupplierWrite  Capability = "supplier:write"
	CapSupplierDelete Capability = "supplier:delete"

	CapCustomerRead   Capability = "customer:read"
	CapCustomerWrite  Capability = "customer:write"
	CapCustomerDelete Capability = "customer:delete"

	CapStockRead   Capability = "stock:read"
	CapStockAdjust Capability = "stock:adjust"
	CapLedgerAdmin Capability = "ledger:admin"

	CapSaleCreate Capability = "sale:create"
	CapSaleRead   Capability = "sale:read"
	CapSaleDelete Capability = "sale:delete"

	CapPurchaseCreate Capability = "purchase:create"
	CapPurchaseRead   Capability = "purchase:read"
	CapPurchaseUpdate Capability = "purchase:update"
	CapPurchaseDelete Capability = "purchase:delete"

	CapPaymentRecord Capability = "payment:record"
	CapPaymentDelete Capability = "payment:delete"

	CapExpenseRead  Capability = "expense:read"
	CapExpenseWrite Capability = "expense:write"

	CapReportRead Capability = "report:read"
)

var allCapabilities = []Capability{
	CapProductRead, CapProductWrite, CapProductDelete,
	CapSupplierRead, CapSupplierWrite, CapSupplierDelete,
	CapCustomerRead, CapCustomerWrite, CapCustomerDelete,
	CapStockRead, CapStockAdjust, CapLedgerAdmin,
	CapSaleCreate, CapSaleRead, CapSaleDelete,
	CapPurchaseCreate, CapPurchaseRead, CapPurchaseUpdate, CapPurchaseDelete,
	CapPaymentRecord, CapPaymentDelete,
	CapExpenseRead, CapExpenseWrite,
	CapReportRead,
}

var roleCapabilities = map[Role][]Capability{
	RoleOwner: allCapabilities,
	RoleManager: slices.DeleteFunc(slices.Clone(allCapabilities), func(c Capability) bool {
		return c == CapProductDelete
	}),
	RoleCashier: {
		CapSaleCreate, CapSaleRead, CapPaymentRecord,
		CapCustomerRead, CapCustomerWrite,
		CapProductRead, CapStockRead, CapReportRead,
	},
	RoleStaff: {
		CapProductRead, CapStockRead, CapStockAdjust,
		CapPurchaseRead, CapPurchaseCreate, CapSaleRead,
		CapSupplierRead,
	},
}

// Can reports whether role holds capability.
func (r Role) Can(c Capability) bool {
	return slices.Contains(roleCapabilities[r], c)
}

// Actor is the authenticated principal performing an operation.
type Actor struct {
	ID   string
	Role Role
}

// System is the actor used by maintenance commands.
var System = Actor{ID: "system", Role: RoleOwner}

// Require returns a forbidden error unless the actor holds capability.
func (a Actor) Require(c Capability) error {
	if a.ID == "" {
		return apperror.NewUnauthorized("missing actor")
	}
	if !a.Role.Can(c) {
		return apperror.NewForbidden(fmt.Sprintf("role %s may not %s", a.Role, c)).
			WithDetail("capability", string(c))
	}
	return nil
}
