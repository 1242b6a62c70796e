package service

import (
	"context"

	"inventory-ledger/internal/domain"
	"inventory-ledger/internal/repository"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// ProductService manages the catalog. Products are created together with
// their inventory record.
type ProductService interface {
	CreateProduct(ctx context.Context, product domain.NewProduct) (*domain.ProductDetail, error)
	UpdateProduct(ctx context.Context, id int64, update domain.ProductUpdate) (*domain.Product, error)
	GetProduct(ctx context.Context, id int64) (*domain.ProductDetail, error)
	ListProducts(ctx context.Context, filter domain.ProductFilter, page domain.Pagination) ([]domain.ProductDetail, error)
	GetCategories(ctx context.Context) ([]domain.CategorySummary, error)
}

type productService struct {
	runner *txRunner
	repos  repository.Repositories
	logger *zap.Logger
}

// NewProductService creates a new instance of ProductService
func NewProductService(
	tx repository.Transactor,
	repos repository.Repositories,
	maxConflictRetries int,
	logger *zap.Logger,
) ProductService {
	return &productService{
		runner: &txRunner{tx: tx, maxRetries: maxConflictRetries, logger: logger},
		repos:  repos,
		logger: logger,
	}
}

func (s *productService) CreateProduct(ctx context.Context, np domain.NewProduct) (detail *domain.ProductDetail, err error) {
	ctx, span := tracer.Start(ctx, "ProductService.CreateProduct", trace.WithAttributes(
		attribute.String("product.sku", np.SKU),
	))
	defer func() { finishSpan(span, err) }()

	err = s.runner.run(ctx, "create product", func(repos repository.Repositories) error {
		product := &domain.Product{
			Name:        np.Name,
			Description: np.Description,
			Price:       np.Price,
			Category:    np.Category,
			SKU:         np.SKU,
		}
		if err := repos.Products.Create(ctx, product); err != nil {
			return err
		}

		rec, err := createInventoryRecord(ctx, repos, product.ID, np.InitialStock, np.ReorderLevel)
		if err != nil {
			return err
		}

		detail = &domain.ProductDetail{
			Product:        *product,
			CurrentStock:   rec.CurrentStock,
			ReservedStock:  rec.ReservedStock,
			AvailableStock: rec.AvailableStock,
			ReorderLevel:   rec.ReorderLevel,
			StockUpdatedAt: &rec.LastUpdated,
			IsLowStock:     rec.IsLowStock(),
		}
		return nil
	})
	if err != nil {
		if isDomainError(err) {
			s.logger.Info("Product not created", zap.String("sku", np.SKU), zap.Error(err))
		} else {
			s.logger.Error("Failed to create product", zap.String("sku", np.SKU), zap.Error(err))
		}
		return nil, err
	}

	s.logger.Info("Product created",
		zap.Int64("product_id", detail.ID),
		zap.String("sku", detail.SKU),
		zap.Int("initial_stock", detail.CurrentStock),
	)
	return detail, nil
}

func (s *productService) UpdateProduct(ctx context.Context, id int64, update domain.ProductUpdate) (product *domain.Product, err error) {
	ctx, span := tracer.Start(ctx, "ProductService.UpdateProduct", trace.WithAttributes(attribute.Int64("product.id", id)))
	defer func() { finishSpan(span, err) }()

	product, err = s.repos.Products.Update(ctx, id, update)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Product updated", zap.Int64("product_id", id))
	return product, nil
}

func (s *productService) GetProduct(ctx context.Context, id int64) (detail *domain.ProductDetail, err error) {
	ctx, span := tracer.Start(ctx, "ProductService.GetProduct", trace.WithAttributes(attribute.Int64("product.id", id)))
	defer func() { finishSpan(span, err) }()

	return s.repos.Products.FindDetail(ctx, id)
}

func (s *productService) ListProducts(ctx context.Context, filter domain.ProductFilter, page domain.Pagination) (products []domain.ProductDetail, err error) {
	ctx, span := tracer.Start(ctx, "ProductService.ListProducts")
	defer func() { finishSpan(span, err) }()

	return s.repos.Products.List(ctx, filter, page.Normalize())
}

func (s *productService) GetCategories(ctx context.Context) (categories []domain.CategorySummary, err error) {
	ctx, span := tracer.Start(ctx, "ProductService.GetCategories")
	defer func() { finishSpan(span, err) }()

	return s.repos.Products.Categories(ctx)
}
