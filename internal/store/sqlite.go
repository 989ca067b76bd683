package store

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/junholee/matching-engine/internal/domain"
)

// orderRecord is the persisted shape of an order.
type orderRecord struct {
	ID        string `gorm:"primaryKey;size:36"`
	Symbol    string `gorm:"index;size:16"`
	Side      string `gorm:"size:4"`
	Kind      string `gorm:"size:8"`
	Price     int64
	Quantity  int64
	Remaining int64
	Status    string `gorm:"size:16"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (orderRecord) TableName() string { return "orders" }

// SQLiteStore persists orders in a SQLite database via gorm.
type SQLiteStore struct {
	db *gorm.DB
}

// NewSQLiteStore opens (and migrates) the database at dsn.
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite store: %w", err)
	}
	if err := db.AutoMigrate(&orderRecord{}); err != nil {
		return nil, fmt.Errorf("migrate orders table: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Save upserts the order state by id.
func (s *SQLiteStore) Save(order domain.OrderView) error {
	rec := orderRecord{
		ID:        order.ID.String(),
		Symbol:    order.Symbol,
		Side:      string(order.Side),
		Kind:      string(order.Kind),
		Price:     order.Price,
		Quantity:  order.Quantity,
		Remaining: order.Remaining,
		Status:    string(order.Status),
		CreatedAt: order.CreatedAt,
	}
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(&rec).Error
	if err != nil {
		return fmt.Errorf("save order %s: %w", order.ID, err)
	}
	return nil
}

// FindByID returns the last saved state of the order.
func (s *SQLiteStore) FindByID(id uuid.UUID) (domain.OrderView, error) {
	var rec orderRecord
	err := s.db.First(&rec, "id = ?", id.String()).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.OrderView{}, ErrNotFound
	}
	if err != nil {
		return domain.OrderView{}, fmt.Errorf("find order %s: %w", id, err)
	}
	return domain.OrderView{
		ID:        id,
		Symbol:    rec.Symbol,
		Side:      domain.Side(rec.Side),
		Kind:      domain.OrderKind(rec.Kind),
		Price:     rec.Price,
		Quantity:  rec.Quantity,
		Remaining: rec.Remaining,
		Status:    domain.OrderStatus(rec.Status),
		CreatedAt: rec.CreatedAt,
	}, nil
}
