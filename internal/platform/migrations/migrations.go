package migrations

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Run applies the schema for the bounded contexts. Intended to replace adapter-level automigrate.
func Run(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	if err := db.AutoMigrate(
		&orderRecord{},
		&commandRecord{},
	); err != nil {
		return err
	}
	// Dispense codes must be unique among active orders only; a redeemed order
	// releases its code back to the pool. AutoMigrate cannot express the partial
	// index, so it is applied directly.
	return db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS uidx_orders_active_dispense_code
		ON orders (dispense_code)
		WHERE status <> 'redeemed'
	`).Error
}

// Order schema mirrors the orders Postgres adapter.
type orderRecord struct {
	ID            uuid.UUID       `gorm:"primaryKey;column:id;type:uuid"`
	ProductID     string          `gorm:"column:product_id;size:64"`
	ProductName   string          `gorm:"column:product_name;size:128"`
	Price         decimal.Decimal `gorm:"column:price;type:numeric(12,2);index:idx_orders_status_price"`
	DeviceID      string          `gorm:"column:device_id;size:64;index:idx_orders_device_status"`
	PaymentMethod string          `gorm:"column:payment_method;type:varchar(16)"`
	DispenseCode  string          `gorm:"column:dispense_code;type:varchar(6);index"`
	Status        string          `gorm:"column:status;type:varchar(32);index:idx_orders_status_price;index:idx_orders_device_status"`
	CustomerPhone string          `gorm:"column:customer_phone;size:32"`
	PayerRef      string          `gorm:"column:payer_ref;size:64"`
	CreatedAt     time.Time       `gorm:"column:created_at;index"`
	PaidAt        *time.Time      `gorm:"column:paid_at"`
	UpdatedAt     time.Time       `gorm:"column:updated_at"`
}

func (orderRecord) TableName() string { return "orders" }

// Command schema mirrors the dispatch Postgres adapter.
type commandRecord struct {
	ID            uuid.UUID  `gorm:"primaryKey;column:id;type:uuid"`
	DeviceID      string     `gorm:"column:device_id;size:64;index:idx_commands_device_status"`
	OrderID       uuid.UUID  `gorm:"column:order_id;type:uuid;uniqueIndex"`
	ProductID     string     `gorm:"column:product_id;size:64"`
	Status        string     `gorm:"column:status;type:varchar(16);index:idx_commands_device_status"`
	ResultMessage string     `gorm:"column:result_message;size:256"`
	CreatedAt     time.Time  `gorm:"column:created_at;index"`
	DispatchedAt  *time.Time `gorm:"column:dispatched_at"`
	UpdatedAt     time.Time  `gorm:"column:updated_at"`
}

func (commandRecord) TableName() string { return "commands" }
