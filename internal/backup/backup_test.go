package backup_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/otoservis/garage-api/internal/backup"
	"github.com/otoservis/garage-api/internal/config"
	"github.com/otoservis/garage-api/internal/testutil"
)

func backupConfig(t *testing.T, driver string, maxBackups int) *config.Config {
	t.Helper()
	return &config.Config{
		Database: config.DatabaseConfig{Driver: driver},
		Backup: config.BackupConfig{
			Enabled:    true,
			Dir:        t.TempDir(),
			MaxBackups: maxBackups,
		},
	}
}

func TestRunWritesSnapshot(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := backupConfig(t, "sqlite", 10)
	mgr := backup.NewManager(db, cfg, zap.NewNop())

	require.NoError(t, mgr.Run(context.Background()))

	files, err := filepath.Glob(filepath.Join(cfg.Backup.Dir, "garage-*.db"))
	require.NoError(t, err)
	assert.Len(t, files, 1)
}

func TestRunRejectsPostgres(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := backupConfig(t, "postgres", 10)
	mgr := backup.NewManager(db, cfg, zap.NewNop())

	err := mgr.Run(context.Background())
	assert.ErrorIs(t, err, backup.ErrUnsupportedDriver)
}

func TestRunPrunesOldSnapshots(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := backupConfig(t, "sqlite", 2)
	mgr := backup.NewManager(db, cfg, zap.NewNop())

	// Pre-seed stale snapshots that predate any real run.
	for _, name := range []string{
		"garage-20250101-000000.db",
		"garage-20250102-000000.db",
		"garage-20250103-000000.db",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(cfg.Backup.Dir, name), []byte("stale"), 0o644))
	}

	require.NoError(t, mgr.Run(context.Background()))

	snapshots, err := mgr.List()
	require.NoError(t, err)
	require.Len(t, snapshots, 2)
	// Newest first, and the oldest seeds are gone.
	assert.True(t, snapshots[0].Name > snapshots[1].Name)
	assert.Equal(t, "garage-20250103-000000.db", snapshots[1].Name)
}

func TestListEmptyDir(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := backupConfig(t, "sqlite", 5)
	mgr := backup.NewManager(db, cfg, zap.NewNop())

	snapshots, err := mgr.List()
	require.NoError(t, err)
	assert.Empty(t, snapshots)
}
