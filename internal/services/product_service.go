package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"storefront/internal/models"

	"github.com/rs/zerolog"
)

type ProductService struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewProductService(db *sql.DB, logger zerolog.Logger) *ProductService {
	return &ProductService{
		db:     db,
		logger: logger,
	}
}

func (s *ProductService) Create(ctx context.Context, req *models.CreateProductRequest) (*models.Product, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}
	if !req.Price.IsPositive() {
		return nil, fmt.Errorf("%w: price must be greater than zero", ErrValidation)
	}

	result, err := s.db.ExecContext(ctx,
		"INSERT INTO products (name, price, description) VALUES (?, ?, ?)",
		name, req.Price.StringFixed(2), nullString(req.Description),
	)
	if err != nil {
		s.logger.Error().Err(err).Msg("Error creating product")
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	productID, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get product ID: %w", err)
	}

	product, err := s.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("product_id", product.ID).Str("name", product.Name).Msg("Product created")
	return product, nil
}

func (s *ProductService) FindAll(ctx context.Context) ([]*models.Product, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, price, description, created_at FROM products ORDER BY created_at DESC, id DESC",
	)
	if err != nil {
		s.logger.Error().Err(err).Msg("Error fetching products")
		return nil, fmt.Errorf("database error: %w", err)
	}
	defer rows.Close()

	products := []*models.Product{}
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning product: %w", err)
		}
		products = append(products, product)
	}

	return products, rows.Err()
}

func (s *ProductService) FindByID(ctx context.Context, productID int64) (*models.Product, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, name, price, description, created_at FROM products WHERE id = ?",
		productID,
	)

	product, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: product %d", ErrNotFound, productID)
	}
	if err != nil {
		s.logger.Error().Err(err).Int64("product_id", productID).Msg("Error fetching product")
		return nil, fmt.Errorf("database error: %w", err)
	}

	return product, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*models.Product, error) {
	var (
		product     models.Product
		description sql.NullString
	)
	if err := row.Scan(&product.ID, &product.Name, &product.Price, &description, &product.CreatedAt); err != nil {
		return nil, err
	}
	product.Description = description.String
	return &product, nil
}
