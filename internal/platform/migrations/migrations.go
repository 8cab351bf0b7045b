package migrations

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Run applies the schema for the ordering context. Adapters do not automigrate.
func Run(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	return db.AutoMigrate(
		&orderRecord{},
		&orderLineRecord{},
	)
}

// Order schema mirrors the ordering Postgres adapter. item_names is
// denormalised so order summaries can be read without joining lines.
// checkout_key is NULL for orders placed outside a checkout.
type orderRecord struct {
	ID           string         `gorm:"primaryKey;column:id;size:16"`
	Subtotal     int64          `gorm:"column:subtotal"`
	Tax          int64          `gorm:"column:tax"`
	Total        int64          `gorm:"column:total"`
	Status       string         `gorm:"column:status;type:varchar(16);index"`
	CustomerName string         `gorm:"column:customer_name"`
	ItemNames    pq.StringArray `gorm:"column:item_names;type:text[]"`
	CreatedAt    time.Time      `gorm:"column:created_at;index"`
	UpdatedAt    time.Time      `gorm:"column:updated_at"`
	CheckoutKey  *string        `gorm:"column:checkout_key;size:128;uniqueIndex"`
}

func (orderRecord) TableName() string { return "orders" }

type orderLineRecord struct {
	ID          int64  `gorm:"primaryKey;column:id"`
	OrderID     string `gorm:"column:order_id;size:16;index"`
	Position    int    `gorm:"column:position"`
	ItemID      string `gorm:"column:item_id;index"`
	Name        string `gorm:"column:name"`
	UnitPrice   int64  `gorm:"column:unit_price"`
	Category    string `gorm:"column:category;type:varchar(32)"`
	Description string `gorm:"column:description"`
	ImageURL    string `gorm:"column:image_url"`
	Quantity    int    `gorm:"column:quantity"`
}

func (orderLineRecord) TableName() string { return "order_lines" }
