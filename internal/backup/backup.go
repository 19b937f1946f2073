// Package backup snapshots the SQLite database file and prunes old
// snapshots. Postgres deployments are expected to use pg_dump or
// managed backups instead; Run refuses to do anything there.
package backup

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/otoservis/garage-api/internal/config"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrUnsupportedDriver is returned when a file backup is requested on a
// Postgres deployment.
var ErrUnsupportedDriver = errors.New("file backups require the sqlite driver")

type Manager struct {
	db     *gorm.DB
	cfg    *config.Config
	logger *zap.Logger
}

func NewManager(db *gorm.DB, cfg *config.Config, logger *zap.Logger) *Manager {
	return &Manager{db: db, cfg: cfg, logger: logger}
}

// Run writes a consistent snapshot of the database into the backup
// directory and removes the oldest snapshots beyond the retention
// limit. VACUUM INTO produces a coherent copy even with WAL enabled.
func (m *Manager) Run(ctx context.Context) error {
	if m.cfg.Database.Driver != "sqlite" {
		return ErrUnsupportedDriver
	}

	if err := os.MkdirAll(m.cfg.Backup.Dir, 0o755); err != nil {
		return fmt.Errorf("create backup dir: %w", err)
	}

	name := fmt.Sprintf("garage-%s.db", time.Now().Format("20060102-150405"))
	target := filepath.Join(m.cfg.Backup.Dir, name)

	if err := m.db.WithContext(ctx).Exec("VACUUM INTO ?", target).Error; err != nil {
		return fmt.Errorf("vacuum into %s: %w", target, err)
	}

	m.logger.Info("database backup written", zap.String("file", target))

	if err := m.prune(); err != nil {
		m.logger.Warn("backup pruning failed", zap.Error(err))
	}
	return nil
}

// Snapshot describes one backup file on disk.
type Snapshot struct {
	Name      string    `json:"name"`
	SizeBytes int64     `json:"sizeBytes"`
	CreatedAt time.Time `json:"createdAt"`
}

// List returns the snapshots in the backup directory, newest first.
func (m *Manager) List() ([]Snapshot, error) {
	entries, err := filepath.Glob(filepath.Join(m.cfg.Backup.Dir, "garage-*.db"))
	if err != nil {
		return nil, err
	}

	snapshots := make([]Snapshot, 0, len(entries))
	for _, path := range entries {
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		snapshots = append(snapshots, Snapshot{
			Name:      filepath.Base(path),
			SizeBytes: info.Size(),
			CreatedAt: info.ModTime(),
		})
	}
	sort.Slice(snapshots, func(i, j int) bool {
		return snapshots[i].Name > snapshots[j].Name
	})
	return snapshots, nil
}

// prune deletes the oldest backups once the count exceeds MaxBackups.
func (m *Manager) prune() error {
	if m.cfg.Backup.MaxBackups <= 0 {
		return nil
	}

	entries, err := filepath.Glob(filepath.Join(m.cfg.Backup.Dir, "garage-*.db"))
	if err != nil {
		return err
	}
	if len(entries) <= m.cfg.Backup.MaxBackups {
		return nil
	}

	// Timestamped names sort chronologically.
	sort.Strings(entries)
	for _, stale := range entries[:len(entries)-m.cfg.Backup.MaxBackups] {
		if err := os.Remove(stale); err != nil {
			return err
		}
		m.logger.Info("pruned old backup", zap.String("file", stale))
	}
	return nil
}
