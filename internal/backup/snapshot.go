package backup

import (
	"compress/gzip"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/myceliumfarm/mycelium/internal/logging"
)

// snapshotTables lists the business tables dumped into each snapshot, in
// dependency order so a restore can replay them front to back.
var snapshotTables = []string{
	"customers",
	"customer_ledger",
	"products",
	"inventory_logs",
	"production_spaces",
	"production_batches",
	"farming_logs",
	"harvest_records",
	"sales",
	"settings",
}

// Runner periodically checks the dirty flag and, when set, writes a
// timestamped gzip JSON dump of the business tables.
type Runner struct {
	db       *sql.DB
	flag     *Flag
	dir      string
	interval time.Duration

	mu   sync.Mutex
	last *SnapshotInfo
}

type SnapshotInfo struct {
	Path      string    `json:"path"`
	CreatedAt time.Time `json:"created_at"`
	SizeBytes int64     `json:"size_bytes"`
}

func NewRunner(db *sql.DB, flag *Flag, dir string, interval time.Duration) *Runner {
	return &Runner{db: db, flag: flag, dir: dir, interval: interval}
}

// Run loops until the context is cancelled. A failed snapshot re-marks the
// flag so the next tick retries.
func (r *Runner) Run(ctx context.Context) {
	log := logging.FromContext(ctx)
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !r.flag.Consume() {
				continue
			}
			info, err := r.Snapshot(ctx)
			if err != nil {
				log.Error("auto backup failed", "error", err)
				r.flag.MarkDirty()
				continue
			}
			log.Info("auto backup written", "path", info.Path, "size_bytes", info.SizeBytes)
		}
	}
}

// Snapshot dumps all business tables to a new gzip JSON file and returns its
// metadata. Callable directly for on-demand backups.
func (r *Runner) Snapshot(ctx context.Context) (*SnapshotInfo, error) {
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return nil, fmt.Errorf("Snapshot: %w", err)
	}

	name := fmt.Sprintf("auto_backup_%s.json.gz", time.Now().Format("20060102_150405"))
	path := filepath.Join(r.dir, name)

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("Snapshot: %w", err)
	}
	defer f.Close()

	gz := gzip.NewWriter(f)
	dump := make(map[string][]map[string]any, len(snapshotTables))
	for _, table := range snapshotTables {
		rows, err := r.dumpTable(ctx, table)
		if err != nil {
			os.Remove(path)
			return nil, fmt.Errorf("Snapshot: %s: %w", table, err)
		}
		dump[table] = rows
	}

	if err := json.NewEncoder(gz).Encode(dump); err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("Snapshot: encode: %w", err)
	}
	if err := gz.Close(); err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("Snapshot: close gzip: %w", err)
	}

	stat, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("Snapshot: stat: %w", err)
	}

	info := &SnapshotInfo{Path: path, CreatedAt: time.Now().UTC(), SizeBytes: stat.Size()}
	r.mu.Lock()
	r.last = info
	r.mu.Unlock()
	return info, nil
}

// Last returns metadata for the most recent snapshot this process wrote, or
// nil if none yet.
func (r *Runner) Last() *SnapshotInfo {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last
}

func (r *Runner) dumpTable(ctx context.Context, table string) ([]map[string]any, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT * FROM "+table) //nolint:gosec // table names come from the fixed list above
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	out := make([]map[string]any, 0)
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		record := make(map[string]any, len(cols))
		for i, col := range cols {
			v := values[i]
			if b, ok := v.([]byte); ok {
				v = string(b)
			}
			record[col] = v
		}
		out = append(out, record)
	}
	return out, rows.Err()
}
