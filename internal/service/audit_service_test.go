package service_test

import (
	"context"
	"testing"

	"github.com/otoservis/garage-api/internal/auth"
	"github.com/otoservis/garage-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditRecordsFieldDiff(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	old := map[string]interface{}{"status": "pending", "kmIn": 120000}
	updated := map[string]interface{}{"status": "approved", "kmIn": 120000}
	require.NoError(t, env.audit.RecordUpdate(ctx, nil, "WorkOrder", 7, old, updated))

	entries, err := env.audit.GetByEntity(ctx, "WorkOrder", 7, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	entry := entries[0]
	assert.Equal(t, domain.AuditActionUpdate, entry.Action)
	require.Contains(t, entry.Changes, "status")
	assert.Equal(t, "pending", entry.Changes["status"].Old)
	assert.Equal(t, "approved", entry.Changes["status"].New)

	// Unchanged fields are not part of the diff
	assert.NotContains(t, entry.Changes, "kmIn")
}

func TestAuditTakesUserFromContext(t *testing.T) {
	env := newTestEnv(t)
	ctx := auth.WithUserContext(context.Background(), &auth.UserContext{
		UserID:   3,
		Username: "usta1",
		Role:     domain.RoleTechnician,
	})

	require.NoError(t, env.audit.RecordCreate(ctx, nil, "Part", 12, map[string]interface{}{"name": "filter"}))

	entries, err := env.audit.GetByEntity(context.Background(), "Part", 12, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, uint(3), entries[0].UserID)
}

func TestAuditTrailNewestFirst(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	require.NoError(t, env.audit.RecordCreate(ctx, nil, "Customer", 5, map[string]interface{}{"step": 1}))
	require.NoError(t, env.audit.RecordUpdate(ctx, nil, "Customer", 5,
		map[string]interface{}{"step": 1}, map[string]interface{}{"step": 2}))
	require.NoError(t, env.audit.RecordDelete(ctx, nil, "Customer", 5, map[string]interface{}{"step": 2}))

	entries, err := env.audit.GetByEntity(ctx, "Customer", 5, 10)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, domain.AuditActionDelete, entries[0].Action)
	assert.Equal(t, domain.AuditActionUpdate, entries[1].Action)
	assert.Equal(t, domain.AuditActionCreate, entries[2].Action)
}
