package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vendibd/vendi-server/internal/domains/dispatch/domain"
	"github.com/vendibd/vendi-server/internal/domains/dispatch/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists the command queue in PostgreSQL using GORM. The claim is
// a single UPDATE over a SKIP LOCKED subselect, so the queue stays correct with
// any number of server processes polling for the same device.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a PostgreSQL-backed command queue. Caller manages DB lifecycle.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// commandRecord maps the command aggregate to a relational table. The unique
// index on order_id enforces the one-command-per-order invariant in the store.
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

func (r *Repository) Enqueue(ctx context.Context, cmd *domain.Command) (*domain.Command, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if cmd == nil {
		return nil, errors.New("command is nil")
	}
	record := toRecord(cmd)
	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ports.ErrOrderAlreadyQueued
		}
		return nil, err
	}
	return record.toDomain(), nil
}

func (r *Repository) ClaimNext(ctx context.Context, deviceID string) (*domain.Command, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record commandRecord
	result := r.db.WithContext(ctx).Raw(`
		UPDATE commands
		SET status = ?, dispatched_at = NOW(), updated_at = NOW()
		WHERE id = (
			SELECT id FROM commands
			WHERE device_id = ? AND status = ?
			ORDER BY created_at ASC
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		)
		RETURNING *`,
		string(domain.StatusDispatched), deviceID, string(domain.StatusPending),
	).Scan(&record)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}
	return record.toDomain(), nil
}

func (r *Repository) ReportStatus(ctx context.Context, id uuid.UUID, status domain.Status, message string) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	result := r.db.WithContext(ctx).Model(&commandRecord{}).
		Where("id = ? AND status = ?", id, string(domain.StatusDispatched)).
		Updates(map[string]any{
			"status":         string(status),
			"result_message": message,
			"updated_at":     gorm.Expr("NOW()"),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}
	existing, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if existing.Status == status {
		// Device retried the same report after a dropped response.
		return nil
	}
	return ports.ErrStatusConflict
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Command, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record commandRecord
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres command repository not configured")
	}
	return nil
}

func toRecord(cmd *domain.Command) commandRecord {
	return commandRecord{
		ID:            cmd.ID,
		DeviceID:      cmd.DeviceID,
		OrderID:       cmd.OrderID,
		ProductID:     cmd.ProductID,
		Status:        string(cmd.Status),
		ResultMessage: cmd.ResultMessage,
		CreatedAt:     cmd.CreatedAt,
		DispatchedAt:  cmd.DispatchedAt,
	}
}

func (rec commandRecord) toDomain() *domain.Command {
	return &domain.Command{
		ID:            rec.ID,
		DeviceID:      rec.DeviceID,
		OrderID:       rec.OrderID,
		ProductID:     rec.ProductID,
		Status:        domain.Status(rec.Status),
		ResultMessage: rec.ResultMessage,
		CreatedAt:     rec.CreatedAt,
		DispatchedAt:  rec.DispatchedAt,
	}
}
