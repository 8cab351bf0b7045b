package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	catalogdomain "github.com/Apurer/singgah-pos/internal/domains/catalog/domain"
	"github.com/Apurer/singgah-pos/internal/domains/ordering/domain"
	"github.com/Apurer/singgah-pos/internal/domains/ordering/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists orders in PostgreSQL using GORM. The schema is owned by
// the migrations package; run it before constructing the repository.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a PostgreSQL-backed order store. Caller manages DB lifecycle.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

type orderRecord struct {
	ID           string            `gorm:"primaryKey;column:id;size:16"`
	Subtotal     int64             `gorm:"column:subtotal"`
	Tax          int64             `gorm:"column:tax"`
	Total        int64             `gorm:"column:total"`
	Status       string            `gorm:"column:status;type:varchar(16);index"`
	CustomerName string            `gorm:"column:customer_name"`
	ItemNames    pq.StringArray    `gorm:"column:item_names;type:text[]"`
	Lines        []orderLineRecord `gorm:"foreignKey:OrderID;references:ID"`
	CreatedAt    time.Time         `gorm:"column:created_at;index"`
	UpdatedAt    time.Time         `gorm:"column:updated_at"`
	CheckoutKey  *string           `gorm:"column:checkout_key;size:128;uniqueIndex"`
}

func (orderRecord) TableName() string { return "orders" }

type orderLineRecord struct {
	ID          int64  `gorm:"primaryKey;column:id"`
	OrderID     string `gorm:"column:order_id;size:16;index"`
	Position    int    `gorm:"column:position"`
	ItemID      string `gorm:"column:item_id"`
	Name        string `gorm:"column:name"`
	UnitPrice   int64  `gorm:"column:unit_price"`
	Category    string `gorm:"column:category;type:varchar(32)"`
	Description string `gorm:"column:description"`
	ImageURL    string `gorm:"column:image_url"`
	Quantity    int    `gorm:"column:quantity"`
}

func (orderLineRecord) TableName() string { return "order_lines" }

// Create inserts the order and its lines in one transaction. An id already in
// the table yields ports.ErrDuplicateID so the caller can draw another; a
// checkout key already in the table yields ports.ErrDuplicateCheckout.
func (r *Repository) Create(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if order == nil {
		return nil, errors.New("order is nil")
	}
	record := toRecord(order)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Omit(clause.Associations).
			Clauses(clause.OnConflict{DoNothing: true}).
			Create(&record)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return conflictCause(tx, record)
		}
		if len(record.Lines) == 0 {
			return nil
		}
		return tx.Create(&record.Lines).Error
	})
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, record.ID)
}

// UpdateStatus overwrites only the status column, and only while it still
// holds from; priced fields never change after creation.
func (r *Repository) UpdateStatus(ctx context.Context, id string, from, to domain.Status) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	result := r.db.WithContext(ctx).
		Model(&orderRecord{}).
		Where("id = ? AND status = ?", id, string(from)).
		Updates(map[string]any{
			"status":     string(to),
			"updated_at": gorm.Expr("NOW()"),
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		exists, err := r.Exists(ctx, id)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, domain.ErrStatusMismatch
		}
		return nil, ports.ErrNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *Repository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record orderRecord
	if err := r.withLines(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

func (r *Repository) GetByCheckoutKey(ctx context.Context, key string) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if key == "" {
		return nil, ports.ErrNotFound
	}
	var record orderRecord
	if err := r.withLines(ctx).First(&record, "checkout_key = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

func (r *Repository) Exists(ctx context.Context, id string) (bool, error) {
	if err := r.ensureDB(); err != nil {
		return false, err
	}
	var count int64
	if err := r.db.WithContext(ctx).Model(&orderRecord{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// List returns all orders newest first.
func (r *Repository) List(ctx context.Context) ([]*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var records []orderRecord
	if err := r.withLines(ctx).Order("created_at DESC").Order("id").Find(&records).Error; err != nil {
		return nil, err
	}
	orders := make([]*domain.Order, 0, len(records))
	for i := range records {
		orders = append(orders, records[i].toDomain())
	}
	return orders, nil
}

// conflictCause tells which unique column made an insert a no-op.
func conflictCause(tx *gorm.DB, record orderRecord) error {
	if record.CheckoutKey == nil {
		return ports.ErrDuplicateID
	}
	var count int64
	if err := tx.Model(&orderRecord{}).Where("checkout_key = ?", *record.CheckoutKey).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ports.ErrDuplicateCheckout
	}
	return ports.ErrDuplicateID
}

func (r *Repository) withLines(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Lines", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	})
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres order repository not configured")
	}
	return nil
}

func toRecord(order *domain.Order) orderRecord {
	rec := orderRecord{
		ID:           order.ID,
		Subtotal:     order.Subtotal,
		Tax:          order.Tax,
		Total:        order.Total,
		Status:       string(order.Status),
		CustomerName: order.CustomerName,
		ItemNames:    pq.StringArray(order.ItemNames()),
		CreatedAt:    order.CreatedAt,
		Lines:        make([]orderLineRecord, 0, len(order.Lines)),
	}
	if order.CheckoutKey != "" {
		key := order.CheckoutKey
		rec.CheckoutKey = &key
	}
	for i, line := range order.Lines {
		rec.Lines = append(rec.Lines, orderLineRecord{
			OrderID:     order.ID,
			Position:    i,
			ItemID:      line.ItemID,
			Name:        line.Name,
			UnitPrice:   line.UnitPrice,
			Category:    string(line.Category),
			Description: line.Description,
			ImageURL:    line.ImageURL,
			Quantity:    line.Quantity,
		})
	}
	return rec
}

func (r orderRecord) toDomain() *domain.Order {
	order := &domain.Order{
		ID:           r.ID,
		Subtotal:     r.Subtotal,
		Tax:          r.Tax,
		Total:        r.Total,
		Status:       domain.Status(r.Status),
		CustomerName: r.CustomerName,
		CreatedAt:    r.CreatedAt,
		Lines:        make([]domain.CartLine, 0, len(r.Lines)),
	}
	if r.CheckoutKey != nil {
		order.CheckoutKey = *r.CheckoutKey
	}
	for _, line := range r.Lines {
		order.Lines = append(order.Lines, domain.CartLine{
			ItemID:      line.ItemID,
			Name:        line.Name,
			UnitPrice:   line.UnitPrice,
			Category:    catalogdomain.Category(line.Category),
			Description: line.Description,
			ImageURL:    line.ImageURL,
			Quantity:    line.Quantity,
		})
	}
	return order
}
