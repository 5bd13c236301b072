package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/vendibd/vendi-server/internal/domains/orders/domain"
	"github.com/vendibd/vendi-server/internal/domains/orders/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists orders in PostgreSQL using GORM. Every guarded transition
// is a single UPDATE whose WHERE clause carries the guard, so concurrent
// reconciliations and redemptions settle on the database's row lock, not on
// read-then-write sequences in Go.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a PostgreSQL-backed order repository. Caller manages DB lifecycle.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// orderRecord maps the order aggregate to a relational table.
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

func (r *Repository) Create(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if order == nil {
		return nil, errors.New("order is nil")
	}
	record := toRecord(order)
	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ports.ErrCodeTaken
		}
		return nil, err
	}
	return record.toDomain(), nil
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record orderRecord
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

// ClaimOldestPendingByAmount settles the oldest matching pending bKash order in
// one statement. FOR UPDATE SKIP LOCKED makes concurrent confirmations for the
// same amount claim distinct rows instead of blocking or double-settling.
func (r *Repository) ClaimOldestPendingByAmount(ctx context.Context, amount decimal.Decimal, payerRef string) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record orderRecord
	result := r.db.WithContext(ctx).Raw(`
		UPDATE orders
		SET status = ?, payer_ref = ?, paid_at = NOW(), updated_at = NOW()
		WHERE id = (
			SELECT id FROM orders
			WHERE status = ? AND payment_method = ? AND price = ?
			ORDER BY created_at ASC
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		)
		RETURNING *`,
		string(domain.StatusPaid), payerRef,
		string(domain.StatusPending), string(domain.MethodBkash), amount,
	).Scan(&record)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ports.ErrNoMatch
	}
	return record.toDomain(), nil
}

func (r *Repository) BeginCashCapture(ctx context.Context, deviceID string) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	// An in-flight capture session is returned as-is; repeated polls must see a
	// stable instruction without re-triggering the transition.
	var record orderRecord
	err := r.db.WithContext(ctx).
		Where("device_id = ? AND payment_method = ? AND status = ?", deviceID, string(domain.MethodCash), string(domain.StatusCashCapturePending)).
		Order("created_at ASC").
		First(&record).Error
	if err == nil {
		return record.toDomain(), nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	result := r.db.WithContext(ctx).Raw(`
		UPDATE orders
		SET status = ?, updated_at = NOW()
		WHERE id = (
			SELECT id FROM orders
			WHERE device_id = ? AND payment_method = ? AND status = ?
			ORDER BY created_at ASC
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		)
		RETURNING *`,
		string(domain.StatusCashCapturePending),
		deviceID, string(domain.MethodCash), string(domain.StatusPending),
	).Scan(&record)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}
	return record.toDomain(), nil
}

func (r *Repository) SettleCashPayment(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	result := r.db.WithContext(ctx).Model(&orderRecord{}).
		Where("id = ? AND payment_method = ? AND status IN ?", id, string(domain.MethodCash),
			[]string{string(domain.StatusPending), string(domain.StatusCashCapturePending)}).
		Updates(map[string]any{
			"status":     string(domain.StatusPaid),
			"paid_at":    gorm.Expr("NOW()"),
			"updated_at": gorm.Expr("NOW()"),
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return nil, err
		}
		return nil, ports.ErrNotPayable
	}
	return r.GetByID(ctx, id)
}

func (r *Repository) RevertCashCapture(ctx context.Context, id uuid.UUID) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	result := r.db.WithContext(ctx).Model(&orderRecord{}).
		Where("id = ? AND status = ?", id, string(domain.StatusCashCapturePending)).
		Updates(map[string]any{
			"status":     string(domain.StatusPending),
			"updated_at": gorm.Expr("NOW()"),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		// Pending already, or settled in a race; either way nothing to revert.
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

func (r *Repository) Redeem(ctx context.Context, dispenseCode, deviceID string) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record orderRecord
	result := r.db.WithContext(ctx).Raw(`
		UPDATE orders
		SET status = ?, updated_at = NOW()
		WHERE dispense_code = ? AND device_id = ? AND status = ?
		RETURNING *`,
		string(domain.StatusRedeemed), dispenseCode, deviceID, string(domain.StatusPaid),
	).Scan(&record)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected > 0 {
		return record.toDomain(), nil
	}
	// Losing the conditional update means the pair is unknown, spent, or unpaid;
	// classify for the caller without mutating anything.
	err := r.db.WithContext(ctx).
		Where("dispense_code = ? AND device_id = ?", dispenseCode, deviceID).
		Order("created_at DESC").
		First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ports.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if record.Status == string(domain.StatusRedeemed) {
		return nil, ports.ErrCodeRedeemed
	}
	return nil, ports.ErrNotPaid
}

func (r *Repository) RevertStaleCaptures(ctx context.Context, cutoff time.Time) (int64, error) {
	if err := r.ensureDB(); err != nil {
		return 0, err
	}
	result := r.db.WithContext(ctx).Model(&orderRecord{}).
		Where("status = ? AND updated_at < ?", string(domain.StatusCashCapturePending), cutoff).
		Updates(map[string]any{
			"status":     string(domain.StatusPending),
			"updated_at": gorm.Expr("NOW()"),
		})
	return result.RowsAffected, result.Error
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres order repository not configured")
	}
	return nil
}

func toRecord(order *domain.Order) orderRecord {
	return orderRecord{
		ID:            order.ID,
		ProductID:     order.ProductID,
		ProductName:   order.ProductName,
		Price:         order.Price,
		DeviceID:      order.DeviceID,
		PaymentMethod: string(order.PaymentMethod),
		DispenseCode:  order.DispenseCode,
		Status:        string(order.Status),
		CustomerPhone: order.CustomerPhone,
		PayerRef:      order.PayerRef,
		CreatedAt:     order.CreatedAt,
		PaidAt:        order.PaidAt,
	}
}

func (rec orderRecord) toDomain() *domain.Order {
	return &domain.Order{
		ID:            rec.ID,
		ProductID:     rec.ProductID,
		ProductName:   rec.ProductName,
		Price:         rec.Price,
		DeviceID:      rec.DeviceID,
		PaymentMethod: domain.PaymentMethod(rec.PaymentMethod),
		DispenseCode:  rec.DispenseCode,
		Status:        domain.Status(rec.Status),
		CustomerPhone: rec.CustomerPhone,
		PayerRef:      rec.PayerRef,
		CreatedAt:     rec.CreatedAt,
		PaidAt:        rec.PaidAt,
	}
}
