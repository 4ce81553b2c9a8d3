package document_repo

import (
	"context"
	"time"

	"hwshop/internal/core/id"
	"hwshop/internal/domain"
	"hwshop/internal/domain/documents"
	"hwshop/internal/domain/documents/purchase"
	"hwshop/internal/infrastructure/storage/postgres"
)

// PurchaseRepo implements purchase.Repository.
type PurchaseRepo struct {
	*BaseDocumentRepo[purchase.Purchase, purchase.PurchaseItem]
}

var _ purchase.Repository = (*PurchaseRepo)(nil)

// NewPurchaseRepo creates a new purchase repository.
func NewPurchaseRepo(txManager *postgres.TxManager) *PurchaseRepo {
	return &PurchaseRepo{
		BaseDocumentRepo: NewBaseDocumentRepo[purchase.Purchase, purchase.PurchaseItem](txManager, DocumentTable{
			Table:       "purchases",
			ItemsTable:  "purchase_items",
			ForeignKey:  "purchase_id",
			EntityName:  "purchase",
			DateColumn:  "purchase_date",
			PartyColumn: "supplier_id",
			SearchCols:  []string{"number", "invoice_number", "notes"},
		}),
	}
}

func (r *PurchaseRepo) Create(ctx context.Context, p *purchase.Purchase) error {
	return r.createHeader(ctx, p)
}

func (r *PurchaseRepo) InsertItems(ctx context.Context, items []purchase.PurchaseItem) error {
	return r.insertItems(ctx, items)
}

func (r *PurchaseRepo) GetByID(ctx context.Context, purchaseID id.ID) (*purchase.Purchase, error) {
	return r.get(ctx, purchaseID, false)
}

func (r *PurchaseRepo) GetForUpdate(ctx context.Context, purchaseID id.ID) (*purchase.Purchase, error) {
	return r.get(ctx, purchaseID, true)
}

func (r *PurchaseRepo) GetItems(ctx context.Context, purchaseID id.ID) ([]purchase.PurchaseItem, error) {
	return r.items(ctx, purchaseID)
}

func (r *PurchaseRepo) Delete(ctx context.Context, purchaseID id.ID) error {
	return r.delete(ctx, purchaseID)
}

func (r *PurchaseRepo) List(ctx context.Context, filter purchase.ListFilter) (domain.ListResult[*purchase.Purchase], error) {
	return r.list(ctx, listFilter{
		Search:  filter.Search,
		PartyID: filter.SupplierID,
		Status:  filter.Status,
		From:    filter.From,
		To:      filter.To,
		Limit:   filter.Limit,
		Offset:  filter.Offset,
	})
}

// SetPaymentStatus stores an explicitly set purchase payment status.
func (r *PurchaseRepo) SetPaymentStatus(ctx context.Context, purchaseID id.ID, status documents.PaymentStatus, at time.Time) error {
	return r.setPaymentFields(ctx, purchaseID, map[string]any{"payment_status": string(status)}, at)
}
