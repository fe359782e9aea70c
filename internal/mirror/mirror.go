// Package mirror keeps a best-effort copy of the SQLite database after every commit.
package mirror

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"stockdesk/internal/logger"
)

var mirrorRuns = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "stockdesk_mirror_runs_total",
	Help: "Database mirror attempts by result.",
}, []string{"result"})

// Target receives a consistent snapshot file.
type Target interface {
	// Put publishes the snapshot at path. The file may be removed afterwards.
	Put(ctx context.Context, path string) error
	String() string
}

// Mirror snapshots an SQLite database and hands the copy to a Target.
// Notifications are coalesced: any number of commits while a copy is running
// result in at most one more copy.
type Mirror struct {
	db     *gorm.DB
	source string
	target Target
	log    *zap.SugaredLogger

	notify chan struct{}
	mu     sync.Mutex
}

// New creates a Mirror of the SQLite file at source.
func New(db *gorm.DB, source string, target Target) *Mirror {
	return &Mirror{
		db:     db,
		source: source,
		target: target,
		log:    logger.Named("mirror"),
		notify: make(chan struct{}, 1),
	}
}

// Notify schedules a copy. It never blocks.
func (m *Mirror) Notify() {
	select {
	case m.notify <- struct{}{}:
	default:
	}
}

// Run copies the database each time Notify is called until ctx is done.
func (m *Mirror) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-m.notify:
			if err := m.Sync(ctx); err != nil {
				m.log.Warnw("database mirror failed", "target", m.target.String(), "error", err)
			}
		}
	}
}

// Sync takes one snapshot and publishes it. Failures are counted and returned
// to the caller, who decides whether to log them.
func (m *Mirror) Sync(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if ft, ok := m.target.(*FileTarget); ok && samePath(m.source, ft.Path) {
		mirrorRuns.WithLabelValues("skipped").Inc()
		return nil
	}

	snapshot, err := m.snapshot(ctx)
	if err != nil {
		mirrorRuns.WithLabelValues("error").Inc()
		return err
	}
	defer os.Remove(snapshot)

	if err := m.target.Put(ctx, snapshot); err != nil {
		mirrorRuns.WithLabelValues("error").Inc()
		return fmt.Errorf("publish snapshot to %s: %w", m.target, err)
	}
	mirrorRuns.WithLabelValues("ok").Inc()
	return nil
}

// snapshot writes a transactionally consistent copy with VACUUM INTO.
func (m *Mirror) snapshot(ctx context.Context) (string, error) {
	dir := os.TempDir()
	if ft, ok := m.target.(*FileTarget); ok {
		dir = filepath.Dir(ft.Path)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("create mirror directory: %w", err)
		}
	}
	path := filepath.Join(dir, fmt.Sprintf(".stockdesk-snapshot-%d.db", time.Now().UnixNano()))

	if err := m.db.WithContext(ctx).Exec("VACUUM INTO ?", path).Error; err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("snapshot database: %w", err)
	}
	return path, nil
}

func samePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return a == b
	}
	return absA == absB
}
