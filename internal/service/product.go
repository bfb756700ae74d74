package service

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/myceliumfarm/mycelium/internal/domain"
	"github.com/myceliumfarm/mycelium/internal/logging"
)

type productRepo interface {
	Create(ctx context.Context, p *domain.Product) (int, error)
	Update(ctx context.Context, p *domain.Product) error
	Delete(ctx context.Context, id int) error
	GetByID(ctx context.Context, id int) (*domain.Product, error)
	List(ctx context.Context) ([]domain.Product, error)
	AddStock(ctx context.Context, tx *sql.Tx, productID, qty int) (int, error)
	InsertInventoryLog(ctx context.Context, tx *sql.Tx, l *domain.InventoryLog) error
	InventoryLogs(ctx context.Context, productID *int) ([]domain.InventoryLog, error)
}

type ProductService struct {
	products productRepo
	notifier changeNotifier
	db       *sql.DB
}

func NewProductService(products productRepo, notifier changeNotifier, db *sql.DB) *ProductService {
	return &ProductService{products: products, notifier: notifier, db: db}
}

type ProductInput struct {
	ID            int
	Code          *string
	Name          string
	Specification *string
	UnitPrice     int64
	StockQuantity int
	IsActive      bool
}

func (s *ProductService) CreateProduct(ctx context.Context, in ProductInput) (int, error) {
	if in.Name == "" {
		return 0, fmt.Errorf("CreateProduct: %w", domain.ErrInvalidRequest)
	}
	id, err := s.products.Create(ctx, &domain.Product{
		Code:          in.Code,
		Name:          in.Name,
		Specification: in.Specification,
		UnitPrice:     in.UnitPrice,
		StockQuantity: in.StockQuantity,
		IsActive:      in.IsActive,
	})
	if err != nil {
		return 0, fmt.Errorf("CreateProduct: %w", err)
	}
	s.notifier.MarkDirty()
	return id, nil
}

// UpdateProduct updates the descriptive fields. Stock moves only through
// AdjustStock and harvest intake, so it keeps an unbroken audit trail.
func (s *ProductService) UpdateProduct(ctx context.Context, in ProductInput) error {
	if in.ID <= 0 || in.Name == "" {
		return fmt.Errorf("UpdateProduct: %w", domain.ErrInvalidRequest)
	}
	err := s.products.Update(ctx, &domain.Product{
		ID:            in.ID,
		Code:          in.Code,
		Name:          in.Name,
		Specification: in.Specification,
		UnitPrice:     in.UnitPrice,
		IsActive:      in.IsActive,
	})
	if err != nil {
		return fmt.Errorf("UpdateProduct: %w", err)
	}
	s.notifier.MarkDirty()
	return nil
}

func (s *ProductService) DeleteProduct(ctx context.Context, id int) error {
	if err := s.products.Delete(ctx, id); err != nil {
		return fmt.Errorf("DeleteProduct: %w", err)
	}
	s.notifier.MarkDirty()
	return nil
}

func (s *ProductService) GetProduct(ctx context.Context, id int) (*domain.Product, error) {
	p, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("GetProduct: %w", err)
	}
	return p, nil
}

func (s *ProductService) ListProducts(ctx context.Context) ([]domain.Product, error) {
	products, err := s.products.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListProducts: %w", err)
	}
	return products, nil
}

// AdjustStock applies a manual stock correction and writes the matching
// inventory log in the same transaction.
func (s *ProductService) AdjustStock(ctx context.Context, productID, qty int, memo *string) (int, error) {
	log := logging.FromContext(ctx)

	if qty == 0 {
		return 0, fmt.Errorf("AdjustStock: zero quantity: %w", domain.ErrInvalidQuantity)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("AdjustStock: begin: %w", err)
	}
	defer tx.Rollback()

	stock, err := s.products.AddStock(ctx, tx, productID, qty)
	if err != nil {
		return 0, fmt.Errorf("AdjustStock: %w", err)
	}
	err = s.products.InsertInventoryLog(ctx, tx, &domain.InventoryLog{
		ProductID:      &productID,
		ChangeType:     domain.ChangeAdjustment,
		ChangeQuantity: qty,
		CurrentStock:   stock,
		Memo:           memo,
	})
	if err != nil {
		return 0, fmt.Errorf("AdjustStock: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("AdjustStock: commit: %w", err)
	}
	s.notifier.MarkDirty()

	log.Info("stock adjusted", "product_id", productID, "change", qty, "stock", stock)
	return stock, nil
}

func (s *ProductService) InventoryLogs(ctx context.Context, productID *int) ([]domain.InventoryLog, error) {
	logs, err := s.products.InventoryLogs(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("InventoryLogs: %w", err)
	}
	return logs, nil
}
