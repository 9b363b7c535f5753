package checkout

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	errx "github.com/skintellect/storefront/internal/core/error"
	"github.com/skintellect/storefront/internal/model"
	logx "github.com/skintellect/storefront/pkg/logger"
)

// OrderRepository stores placed orders.
type OrderRepository interface {
	Create(ctx context.Context, order *Order) error
	FindByNumber(ctx context.Context, number string) (*Order, error)
	ListBySession(ctx context.Context, sessionID string) ([]Order, error)
}

// Open connects to Postgres when a URL is configured and to a local SQLite file otherwise,
// then migrates the order tables.
func Open(cfg model.DatabaseConfig) (*gorm.DB, error) {
	gcfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)}

	var (
		db  *gorm.DB
		err error
	)
	if cfg.URL != "" {
		db, err = gorm.Open(postgres.Open(cfg.URL), gcfg)
	} else {
		db, err = gorm.Open(sqlite.Open(cfg.Path), gcfg)
	}
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	logx.Debug().Str("dialect", db.Dialector.Name()).Msg("order database ready")
	return db, nil
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&Order{}, &OrderItem{}); err != nil {
		return fmt.Errorf("migrate orders: %w", err)
	}
	return nil
}

type GormOrderRepository struct {
	db *gorm.DB
}

func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

func (r *GormOrderRepository) Create(ctx context.Context, order *Order) error {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		logx.Error().Err(err).Str("order_number", order.OrderNumber).Msg("failed to save order")
		return fmt.Errorf("create order: %w", err)
	}
	return nil
}

func (r *GormOrderRepository) FindByNumber(ctx context.Context, number string) (*Order, error) {
	var order Order
	err := r.db.WithContext(ctx).Preload("Items").Where("order_number = ?", number).First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errx.NotFound("Order not found")
	}
	if err != nil {
		return nil, fmt.Errorf("find order %s: %w", number, err)
	}
	return &order, nil
}

func (r *GormOrderRepository) ListBySession(ctx context.Context, sessionID string) ([]Order, error) {
	orders := []Order{}
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("session_id = ?", sessionID).
		Order("created_at desc").
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

var _ OrderRepository = (*GormOrderRepository)(nil)
