package cache

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// PersistentTierConfig mirrors §4.8's persistent tier defaults.
type PersistentTierConfig struct {
	MaxBytes int64
}

func DefaultPersistentTierConfig() PersistentTierConfig {
	return PersistentTierConfig{MaxBytes: 500 * 1024 * 1024}
}

// PersistentTier is a content-addressed blob table backed by SQLite,
// grounded on the teacher's internal/db/sqlite.go connection style:
// database/sql over the mattn/go-sqlite3 driver, schema created with a
// single CREATE TABLE IF NOT EXISTS on open.
type PersistentTier struct {
	db  *sql.DB
	cfg PersistentTierConfig
}

// Backend abstracts the persistent tier so a remote store (S3) can
// stand in for the local SQLite table; see s3backend.go.
type Backend interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration)
	Delete(key string)
	DeletePattern(likePattern string)
	Prune()
	Stats() PersistentStats
}

type PersistentStats struct {
	Entries int
	Bytes   int64
}

// OpenPersistentTier opens (creating if absent) the SQLite-backed blob
// table at path, e.g. "<CACHE_DIR>/blobs.db".
func OpenPersistentTier(path string, cfg PersistentTierConfig) (*PersistentTier, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open persistent cache: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS blobs (
		key TEXT PRIMARY KEY,
		value BLOB,
		size INTEGER,
		expires INTEGER,
		created INTEGER
	);
	CREATE INDEX IF NOT EXISTS idx_blobs_expires ON blobs(expires);
	CREATE INDEX IF NOT EXISTS idx_blobs_created ON blobs(created);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init persistent cache schema: %w", err)
	}

	return &PersistentTier{db: db, cfg: cfg}, nil
}

func (p *PersistentTier) Close() error { return p.db.Close() }

func (p *PersistentTier) Get(key string) ([]byte, bool) {
	var value []byte
	var expires int64
	err := p.db.QueryRow(`SELECT value, expires FROM blobs WHERE key = ?`, key).Scan(&value, &expires)
	if err != nil {
		return nil, false
	}
	if expires != 0 && time.Now().UnixMilli() > expires {
		p.Delete(key)
		return nil, false
	}
	return value, true
}

func (p *PersistentTier) Set(key string, value []byte, ttl time.Duration) {
	now := time.Now()
	var expires int64
	if ttl > 0 {
		expires = now.Add(ttl).UnixMilli()
	}
	size := int64(len(value))

	p.evictExpired()
	p.evictUntilFits(size)

	_, _ = p.db.Exec(`
		INSERT INTO blobs (key, value, size, expires, created)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value=excluded.value, size=excluded.size,
			expires=excluded.expires, created=excluded.created
	`, key, value, size, expires, now.UnixMilli())
}

func (p *PersistentTier) Delete(key string) {
	_, _ = p.db.Exec(`DELETE FROM blobs WHERE key = ?`, key)
}

// DeletePattern accepts a SQL-LIKE-style pattern (percent wildcard).
func (p *PersistentTier) DeletePattern(pattern string) {
	_, _ = p.db.Exec(`DELETE FROM blobs WHERE key LIKE ?`, pattern)
}

func (p *PersistentTier) Prune() {
	p.evictExpired()
}

func (p *PersistentTier) evictExpired() {
	_, _ = p.db.Exec(`DELETE FROM blobs WHERE expires != 0 AND expires < ?`, time.Now().UnixMilli())
}

// evictUntilFits repeatedly deletes the oldest-inserted entries in
// batches of 100 until the table fits incoming, per §4.8.
func (p *PersistentTier) evictUntilFits(incoming int64) {
	for {
		total := p.totalBytes()
		if total+incoming <= p.cfg.MaxBytes {
			return
		}
		res, err := p.db.Exec(`
			DELETE FROM blobs WHERE key IN (
				SELECT key FROM blobs ORDER BY created ASC LIMIT 100
			)
		`)
		if err != nil {
			return
		}
		n, _ := res.RowsAffected()
		if n == 0 {
			return
		}
	}
}

func (p *PersistentTier) totalBytes() int64 {
	var total sql.NullInt64
	_ = p.db.QueryRow(`SELECT SUM(size) FROM blobs`).Scan(&total)
	return total.Int64
}

func (p *PersistentTier) Stats() PersistentStats {
	var entries int
	var bytes sql.NullInt64
	_ = p.db.QueryRow(`SELECT COUNT(*), SUM(size) FROM blobs`).Scan(&entries, &bytes)
	return PersistentStats{Entries: entries, Bytes: bytes.Int64}
}
