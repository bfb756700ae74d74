package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/myceliumfarm/mycelium/internal/domain"
)

const productColumns = `product_id, product_code, product_name, specification,
	unit_price, stock_quantity, is_active, created_at`

type ProductRepository struct {
	db *sql.DB
}

func NewProductRepository(db *sql.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) Create(ctx context.Context, p *domain.Product) (int, error) {
	var id int
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO products (product_code, product_name, specification, unit_price, stock_quantity, is_active)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING product_id`,
		p.Code, p.Name, p.Specification, p.UnitPrice, p.StockQuantity, p.IsActive,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("Create: %w", err)
	}
	return id, nil
}

func (r *ProductRepository) Update(ctx context.Context, p *domain.Product) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE products SET product_code = $1, product_name = $2, specification = $3,
			unit_price = $4, is_active = $5
		WHERE product_id = $6`,
		p.Code, p.Name, p.Specification, p.UnitPrice, p.IsActive, p.ID,
	)
	if err != nil {
		return fmt.Errorf("Update: %w", err)
	}
	return requireRow(res, "Update", domain.ErrProductNotFound)
}

func (r *ProductRepository) Delete(ctx context.Context, id int) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE product_id = $1`, id)
	if err != nil {
		return fmt.Errorf("Delete: %w", err)
	}
	return requireRow(res, "Delete", domain.ErrProductNotFound)
}

func (r *ProductRepository) GetByID(ctx context.Context, id int) (*domain.Product, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE product_id = $1`, id)
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByID: %w", domain.ErrProductNotFound)
		}
		return nil, fmt.Errorf("GetByID: %w", err)
	}
	return p, nil
}

func (r *ProductRepository) List(ctx context.Context) ([]domain.Product, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+productColumns+` FROM products ORDER BY product_name`)
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("List: scan: %w", err)
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("List: rows: %w", err)
	}
	return products, nil
}

// AddStock adds qty to the product's stock inside the given transaction and
// returns the resulting stock level for the inventory audit row.
func (r *ProductRepository) AddStock(ctx context.Context, tx *sql.Tx, productID, qty int) (int, error) {
	var stock int
	err := tx.QueryRowContext(ctx,
		`UPDATE products SET stock_quantity = stock_quantity + $1
		WHERE product_id = $2 RETURNING stock_quantity`,
		qty, productID,
	).Scan(&stock)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("AddStock: %w", domain.ErrProductNotFound)
		}
		return 0, fmt.Errorf("AddStock: %w", err)
	}
	return stock, nil
}

// InsertInventoryLog appends an audit row, snapshotting the product's
// descriptive fields so the log survives product deletion.
func (r *ProductRepository) InsertInventoryLog(ctx context.Context, tx *sql.Tx, l *domain.InventoryLog) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO inventory_logs (
			product_id, product_name, specification, product_code,
			change_type, change_quantity, current_stock, memo, reference_id
		) SELECT p.product_id, p.product_name, p.specification, p.product_code,
			$1, $2, $3, $4, $5
		FROM products p WHERE p.product_id = $6`,
		l.ChangeType, l.ChangeQuantity, l.CurrentStock, l.Memo, l.ReferenceID, l.ProductID,
	)
	if err != nil {
		return fmt.Errorf("InsertInventoryLog: %w", err)
	}
	return nil
}

func (r *ProductRepository) InventoryLogs(ctx context.Context, productID *int) ([]domain.InventoryLog, error) {
	const cols = `log_id, product_id, product_name, specification, product_code,
		change_type, change_quantity, current_stock, memo, reference_id, created_at`

	var (
		rows *sql.Rows
		err  error
	)
	if productID != nil {
		rows, err = r.db.QueryContext(ctx,
			`SELECT `+cols+` FROM inventory_logs WHERE product_id = $1 ORDER BY created_at DESC`,
			*productID)
	} else {
		rows, err = r.db.QueryContext(ctx,
			`SELECT `+cols+` FROM inventory_logs ORDER BY created_at DESC`)
	}
	if err != nil {
		return nil, fmt.Errorf("InventoryLogs: %w", err)
	}
	defer rows.Close()

	var logs []domain.InventoryLog
	for rows.Next() {
		var l domain.InventoryLog
		err := rows.Scan(
			&l.ID, &l.ProductID, &l.ProductName, &l.Specification, &l.ProductCode,
			&l.ChangeType, &l.ChangeQuantity, &l.CurrentStock, &l.Memo, &l.ReferenceID,
			&l.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("InventoryLogs: scan: %w", err)
		}
		logs = append(logs, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("InventoryLogs: rows: %w", err)
	}
	return logs, nil
}

func scanProduct(s scanner) (*domain.Product, error) {
	var p domain.Product
	err := s.Scan(
		&p.ID, &p.Code, &p.Name, &p.Specification,
		&p.UnitPrice, &p.StockQuantity, &p.IsActive, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
