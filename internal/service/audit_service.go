package service

import (
	"context"
	"encoding/json"
	"reflect"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/otoservis/garage-api/internal/auth"
	"github.com/otoservis/garage-api/internal/domain"
	"github.com/otoservis/garage-api/internal/repository"
)

// AuditService records who changed what. Entries are append-only;
// a failed audit write fails the surrounding transaction.
type AuditService struct {
	auditRepo *repository.AuditLogRepository
	logger    *zap.Logger
}

func NewAuditService(auditRepo *repository.AuditLogRepository, logger *zap.Logger) *AuditService {
	return &AuditService{
		auditRepo: auditRepo,
		logger:    logger,
	}
}

// Record appends an audit entry inside the given transaction. The acting
// user is taken from the context; old and new snapshots are diffed per
// field into the stored changes map.
func (s *AuditService) Record(ctx context.Context, tx *gorm.DB, action domain.AuditAction, entityName string, entityID uint, oldValues, newValues interface{}) error {
	entry := &domain.AuditLog{
		Action:     action,
		EntityName: entityName,
		EntityID:   entityID,
		Timestamp:  time.Now().UTC(),
	}

	if userCtx, ok := auth.FromContext(ctx); ok && userCtx != nil {
		entry.UserID = userCtx.UserID
	}

	changes := calculateChanges(oldValues, newValues)
	if len(changes) > 0 {
		if changesJSON, err := json.Marshal(changes); err == nil {
			entry.ChangesJSON = string(changesJSON)
		}
	}

	repo := s.auditRepo
	if tx != nil {
		repo = repo.WithTx(tx)
	}
	if err := repo.Create(ctx, entry); err != nil {
		s.logger.Error("failed to create audit log",
			zap.String("action", string(action)),
			zap.String("entity", entityName),
			zap.Uint("entity_id", entityID),
			zap.Error(err))
		return &StorageError{Op: "audit.Record", Err: err}
	}
	return nil
}

// RecordCreate logs a create with the new state only
func (s *AuditService) RecordCreate(ctx context.Context, tx *gorm.DB, entityName string, entityID uint, newValues interface{}) error {
	return s.Record(ctx, tx, domain.AuditActionCreate, entityName, entityID, nil, newValues)
}

// RecordUpdate logs an update with a field-level diff
func (s *AuditService) RecordUpdate(ctx context.Context, tx *gorm.DB, entityName string, entityID uint, oldValues, newValues interface{}) error {
	return s.Record(ctx, tx, domain.AuditActionUpdate, entityName, entityID, oldValues, newValues)
}

// RecordDelete logs a delete with the last known state
func (s *AuditService) RecordDelete(ctx context.Context, tx *gorm.DB, entityName string, entityID uint, oldValues interface{}) error {
	return s.Record(ctx, tx, domain.AuditActionDelete, entityName, entityID, oldValues, nil)
}

// GetByEntity returns the decoded audit trail for one entity, newest first
func (s *AuditService) GetByEntity(ctx context.Context, entityName string, entityID uint, limit int) ([]domain.AuditLogEntry, error) {
	entries, err := s.auditRepo.ListByEntity(ctx, entityName, entityID, limit)
	if err != nil {
		return nil, &StorageError{Op: "audit.GetByEntity", Err: err}
	}
	return decodeEntries(entries), nil
}

// GetRecent returns the most recent audit entries across all entities
func (s *AuditService) GetRecent(ctx context.Context, limit int) ([]domain.AuditLogEntry, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	entries, err := s.auditRepo.ListRecent(ctx, limit)
	if err != nil {
		return nil, &StorageError{Op: "audit.GetRecent", Err: err}
	}
	return decodeEntries(entries), nil
}

func decodeEntries(entries []domain.AuditLog) []domain.AuditLogEntry {
	out := make([]domain.AuditLogEntry, 0, len(entries))
	for _, e := range entries {
		entry := domain.AuditLogEntry{
			ID:         e.ID,
			UserID:     e.UserID,
			EntityName: e.EntityName,
			EntityID:   e.EntityID,
			Action:     e.Action,
			Timestamp:  e.Timestamp,
		}
		if e.ChangesJSON != "" {
			_ = json.Unmarshal([]byte(e.ChangesJSON), &entry.Changes)
		}
		out = append(out, entry)
	}
	return out
}

// calculateChanges determines what changed between old and new values.
// A field present in only one side diffs against nil.
func calculateChanges(oldValues, newValues interface{}) map[string]domain.FieldChange {
	changes := make(map[string]domain.FieldChange)

	oldMap := toMap(oldValues)
	newMap := toMap(newValues)

	for key, newVal := range newMap {
		if oldVal, exists := oldMap[key]; exists {
			if !reflect.DeepEqual(oldVal, newVal) {
				changes[key] = domain.FieldChange{Old: oldVal, New: newVal}
			}
		} else {
			changes[key] = domain.FieldChange{Old: nil, New: newVal}
		}
	}

	for key, oldVal := range oldMap {
		if _, exists := newMap[key]; !exists {
			changes[key] = domain.FieldChange{Old: oldVal, New: nil}
		}
	}

	return changes
}

// toMap converts a value to a map for comparison via its JSON form
func toMap(v interface{}) map[string]interface{} {
	result := make(map[string]interface{})

	if v == nil {
		return result
	}

	if m, ok := v.(map[string]interface{}); ok {
		return m
	}

	data, err := json.Marshal(v)
	if err != nil {
		return result
	}

	_ = json.Unmarshal(data, &result)
	return result
}
