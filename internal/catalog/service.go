package catalog

import (
	"context"
	"errors"
	"strings"

	"github.com/MarcoPoloResearchLab/ecofinds/internal/apperr"
	"github.com/MarcoPoloResearchLab/ecofinds/internal/users"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var errMissingDatabase = errors.New("catalog: database handle is required")

const (
	opCreateProduct = "catalog.create_product"
	opListProducts  = "catalog.list_products"
)

// ProductRecorder observes successful product creation.
type ProductRecorder interface {
	RecordProductCreated()
}

type ServiceConfig struct {
	Database *gorm.DB
	Logger   *zap.Logger
	Metrics  ProductRecorder
}

// Service creates and searches marketplace products.
type Service struct {
	db      *gorm.DB
	logger  *zap.Logger
	metrics ProductRecorder
}

func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Database == nil {
		return nil, errMissingDatabase
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		db:      cfg.Database,
		logger:  logger,
		metrics: cfg.Metrics,
	}, nil
}

// CreateProduct validates the input and stores a product owned by owner.
// Validation failures return before any storage access.
func (s *Service) CreateProduct(ctx context.Context, owner users.UserID, input CreateProductInput) (ProductID, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" || input.Price == nil {
		return 0, apperr.Validation(errMissingPrice.Error())
	}
	price, err := parsePrice(input.Price)
	if err != nil {
		return 0, apperr.Validation(err.Error())
	}

	product := Product{
		UserID:      owner,
		Title:       title,
		Description: strings.TrimSpace(input.Description),
		Price:       price,
		Category:    strings.TrimSpace(input.Category),
		Image:       strings.TrimSpace(input.Image),
	}
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(&product).Error; err != nil {
		s.logError(opCreateProduct, "insert_failed", err, zap.Uint("user_id", uint(owner)))
		return 0, apperr.Storage(err)
	}

	if s.metrics != nil {
		s.metrics.RecordProductCreated()
	}
	return product.ID, nil
}

// ListProducts returns products newest first, each joined with its seller name.
func (s *Service) ListProducts(ctx context.Context, filter ListFilter) ([]Listing, error) {
	query := s.db.WithContext(ctx).
		Table("products AS p").
		Select("p.id, p.user_id, p.title, p.description, p.price, p.category, p.image, u.username AS seller_name").
		Joins("JOIN users u ON u.id = p.user_id")
	if predicates := filter.predicates(); len(predicates) > 0 {
		query = query.Clauses(clause.Where{Exprs: predicates})
	}

	listings := make([]Listing, 0)
	if err := query.Order("p.id DESC").Scan(&listings).Error; err != nil {
		s.logError(opListProducts, "query_failed", err,
			zap.String("q", filter.Query),
			zap.String("category", filter.Category))
		return nil, apperr.Storage(err)
	}
	return listings, nil
}

func (s *Service) logError(operation, reason string, err error, fields ...zap.Field) {
	attrs := []zap.Field{
		zap.String("operation", operation),
		zap.String("reason", reason),
		zap.Error(err),
	}
	s.logger.Error("catalog service error", append(attrs, fields...)...)
}
