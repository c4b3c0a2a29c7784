package snapshots

import (
	"database/sql"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"
	"golang.org/x/crypto/blake2b"
	_ "modernc.org/sqlite"
)

// Snapshot is one recorded report, identified by a run id and addressed by
// the content hash of its encoded document.
type Snapshot struct {
	ID        string    `json:"id"`
	Package   string    `json:"package"`
	Hash      string    `json:"hash"`
	Size      int       `json:"size"`
	CreatedAt time.Time `json:"createdAt"`
}

// Store persists report snapshots in a SQLite database. Documents are
// zstd-compressed at rest; the stored hash is computed over the uncompressed
// encoding so identical reports share a hash across runs.
type Store struct {
	conn    *sql.DB
	logger  *slog.Logger
	dbPath  string
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

// OpenStore opens or creates the snapshot database at the given path.
func OpenStore(dbPath string, logger *slog.Logger) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	dbExists := fileExists(dbPath)

	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot database: %w", err)
	}

	// Set pragmas for performance
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := conn.Exec(pragma); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	encoder, err := zstd.NewWriter(nil)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to create compressor: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to create decompressor: %w", err)
	}

	store := &Store{
		conn:    conn,
		logger:  logger,
		dbPath:  dbPath,
		encoder: encoder,
		decoder: decoder,
	}

	if !dbExists {
		logger.Info("creating snapshot database", "path", dbPath)
		if err := store.initializeSchema(); err != nil {
			store.Close()
			return nil, fmt.Errorf("failed to initialize snapshot schema: %w", err)
		}
	}

	return store, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (s *Store) initializeSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS snapshots (
			id TEXT PRIMARY KEY,
			package TEXT NOT NULL,
			hash TEXT NOT NULL,
			size INTEGER NOT NULL,
			created_at TEXT NOT NULL,
			document BLOB NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_snapshots_package ON snapshots(package);
		CREATE INDEX IF NOT EXISTS idx_snapshots_created_at ON snapshots(created_at DESC);

		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY
		);
		INSERT OR REPLACE INTO schema_version (version) VALUES (1);
	`

	_, err := s.conn.Exec(schema)
	return err
}

// Close releases the database connection and codec resources.
func (s *Store) Close() error {
	if s.encoder != nil {
		_ = s.encoder.Close()
	}
	if s.decoder != nil {
		s.decoder.Close()
	}
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}

// ContentHash returns the blake2b-256 hex digest of an encoded document.
func ContentHash(document []byte) string {
	sum := blake2b.Sum256(document)
	return hex.EncodeToString(sum[:])
}

// Record stores one encoded report and returns the snapshot metadata.
func (s *Store) Record(packageName string, document []byte) (*Snapshot, error) {
	snap := &Snapshot{
		ID:        uuid.New().String(),
		Package:   packageName,
		Hash:      ContentHash(document),
		Size:      len(document),
		CreatedAt: time.Now().UTC(),
	}

	compressed := s.encoder.EncodeAll(document, nil)

	_, err := s.conn.Exec(`
		INSERT INTO snapshots (id, package, hash, size, created_at, document)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		snap.ID,
		snap.Package,
		snap.Hash,
		snap.Size,
		snap.CreatedAt.Format(time.RFC3339),
		compressed,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to record snapshot: %w", err)
	}

	s.logger.Debug("recorded snapshot",
		"id", snap.ID,
		"package", snap.Package,
		"hash", snap.Hash,
		"size", snap.Size,
	)

	return snap, nil
}

// List returns snapshot metadata, newest first, optionally filtered by
// package name. A non-positive limit returns everything.
func (s *Store) List(packageName string, limit int) ([]Snapshot, error) {
	query := `
		SELECT id, package, hash, size, created_at
		FROM snapshots
	`
	var args []interface{}
	if packageName != "" {
		query += " WHERE package = ?"
		args = append(args, packageName)
	}
	query += " ORDER BY created_at DESC, id"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var snaps []Snapshot
	for rows.Next() {
		var snap Snapshot
		var createdAt string
		if err := rows.Scan(&snap.ID, &snap.Package, &snap.Hash, &snap.Size, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot row: %w", err)
		}
		if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
			snap.CreatedAt = t
		}
		snaps = append(snaps, snap)
	}

	return snaps, rows.Err()
}

// Get retrieves one snapshot and its decompressed document by id. A missing
// id returns (nil, nil, nil).
func (s *Store) Get(id string) (*Snapshot, []byte, error) {
	var snap Snapshot
	var createdAt string
	var compressed []byte

	err := s.conn.QueryRow(`
		SELECT id, package, hash, size, created_at, document
		FROM snapshots WHERE id = ?
	`, id).Scan(&snap.ID, &snap.Package, &snap.Hash, &snap.Size, &createdAt, &compressed)
	if err == sql.ErrNoRows {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load snapshot: %w", err)
	}

	if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
		snap.CreatedAt = t
	}

	document, err := s.decoder.DecodeAll(compressed, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to decompress snapshot %s: %w", id, err)
	}
	if got := ContentHash(document); got != snap.Hash {
		return nil, nil, fmt.Errorf("snapshot %s content hash mismatch: stored %s, computed %s", id, snap.Hash, got)
	}

	return &snap, document, nil
}

// Latest returns the most recent snapshot for a package, or nil if none.
func (s *Store) Latest(packageName string) (*Snapshot, []byte, error) {
	snaps, err := s.List(packageName, 1)
	if err != nil {
		return nil, nil, err
	}
	if len(snaps) == 0 {
		return nil, nil, nil
	}
	return s.Get(snaps[0].ID)
}

// Prune removes all but the newest keepLast snapshots per package and
// returns the number removed. A non-positive keepLast removes nothing.
func (s *Store) Prune(keepLast int) (int64, error) {
	if keepLast <= 0 {
		return 0, nil
	}

	result, err := s.conn.Exec(`
		DELETE FROM snapshots WHERE id NOT IN (
			SELECT id FROM (
				SELECT id, ROW_NUMBER() OVER (
					PARTITION BY package ORDER BY created_at DESC, id
				) AS rank
				FROM snapshots
			) WHERE rank <= ?
		)
	`, keepLast)
	if err != nil {
		return 0, fmt.Errorf("failed to prune snapshots: %w", err)
	}

	return result.RowsAffected()
}
