package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/otoservis/garage-api/internal/domain"
)

// AuditLogRepository stores the append-only audit trail. There are no
// update or delete methods on purpose.
type AuditLogRepository struct {
	db *gorm.DB
}

func NewAuditLogRepository(db *gorm.DB) *AuditLogRepository {
	return &AuditLogRepository{db: db}
}

// WithTx returns a copy bound to the given transaction
func (r *AuditLogRepository) WithTx(tx *gorm.DB) *AuditLogRepository {
	return &AuditLogRepository{db: tx}
}

func (r *AuditLogRepository) Create(ctx context.Context, entry *domain.AuditLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// ListByEntity returns the audit trail for one entity, newest first
func (r *AuditLogRepository) ListByEntity(ctx context.Context, entityName string, entityID uint, limit int) ([]domain.AuditLog, error) {
	var entries []domain.AuditLog
	query := r.db.WithContext(ctx).
		Where("entity_name = ? AND entity_id = ?", entityName, entityID).
		Order("timestamp DESC, id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&entries).Error
	return entries, err
}

// ListRecent returns the most recent audit entries across all entities
func (r *AuditLogRepository) ListRecent(ctx context.Context, limit int) ([]domain.AuditLog, error) {
	var entries []domain.AuditLog
	err := r.db.WithContext(ctx).
		Order("timestamp DESC, id DESC").
		Limit(limit).
		Find(&entries).Error
	return entries, err
}
