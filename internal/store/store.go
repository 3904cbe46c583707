// Package store persists imported playlists in a local SQLite database.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"github.com/toozej/precureplaylist/internal/types"
)

// ErrNotFound is returned when no playlist has the requested id.
var ErrNotFound = errors.New("playlist not found")

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// Store manages the playlist database.
type Store struct {
	db     *sql.DB
	dbPath string
	now    func() time.Time
	logger *logrus.Logger
	mu     sync.Mutex
}

// Option configures a Store.
type Option func(*Store)

// WithClock sets the time source for row timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// WithLogger sets the logger.
func WithLogger(logger *logrus.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// Open creates or opens the playlist database at dbPath.
func Open(dbPath string, opts ...Option) (*Store, error) {
	dsn := dbPath
	if dbPath != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o750); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
		dsn = dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == MemoryPath {
		// every pooled connection would otherwise get its own empty database
		db.SetMaxOpenConns(1)
	}

	s := &Store{
		db:     db,
		dbPath: dbPath,
		now:    time.Now,
		logger: logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"component": "store",
		"operation": "open",
		"path":      dbPath,
	}).Debug("Playlist store opened")

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.dbPath
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS playlists (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		is_public INTEGER NOT NULL DEFAULT 0,
		tracks_json TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_playlists_user ON playlists(user_id);
	CREATE INDEX IF NOT EXISTS idx_playlists_updated ON playlists(updated_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Save inserts or updates row. A row without an id gets a new UUID and a
// creation time; updated_at is set on every save.
func (s *Store) Save(ctx context.Context, row *types.PlaylistRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	if row.ID == "" {
		row.ID = uuid.NewString()
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = now
	}
	row.UpdatedAt = now
	if row.Tracks == nil {
		row.Tracks = []types.Track{}
	}

	tracksJSON, err := json.Marshal(row.Tracks)
	if err != nil {
		return fmt.Errorf("failed to marshal tracks: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO playlists (id, user_id, name, description, is_public, tracks_json, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			user_id = excluded.user_id,
			name = excluded.name,
			description = excluded.description,
			is_public = excluded.is_public,
			tracks_json = excluded.tracks_json,
			updated_at = excluded.updated_at`,
		row.ID, row.UserID, row.Name, row.Description, boolToInt(row.IsPublic), string(tracksJSON),
		formatTime(row.CreatedAt), formatTime(row.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to save playlist: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"component":   "store",
		"operation":   "save",
		"playlist_id": row.ID,
		"track_count": len(row.Tracks),
	}).Debug("Playlist saved")
	return nil
}

// Get returns the playlist with the given id.
func (s *Store) Get(ctx context.Context, id string) (*types.PlaylistRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, name, description, is_public, tracks_json, created_at, updated_at
		FROM playlists WHERE id = ?`, id)

	row, err := scanRow(r)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get playlist: %w", err)
	}
	return row, nil
}

// List returns the playlists owned by userID, most recently updated first.
// An empty userID lists every playlist.
func (s *Store) List(ctx context.Context, userID string) ([]types.PlaylistRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		SELECT id, user_id, name, description, is_public, tracks_json, created_at, updated_at
		FROM playlists`
	var args []any
	if userID != "" {
		query += ` WHERE user_id = ?`
		args = append(args, userID)
	}
	query += ` ORDER BY updated_at DESC, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list playlists: %w", err)
	}
	defer rows.Close()

	out := make([]types.PlaylistRow, 0)
	for rows.Next() {
		row, err := scanRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan playlist: %w", err)
		}
		out = append(out, *row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list playlists: %w", err)
	}
	return out, nil
}

// Delete removes the playlist with the given id.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM playlists WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete playlist: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete playlist: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRow(sc scanner) (*types.PlaylistRow, error) {
	var (
		row        types.PlaylistRow
		isPublic   int
		tracksJSON string
		createdAt  string
		updatedAt  string
	)
	if err := sc.Scan(&row.ID, &row.UserID, &row.Name, &row.Description, &isPublic, &tracksJSON, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	row.IsPublic = isPublic != 0
	if err := json.Unmarshal([]byte(tracksJSON), &row.Tracks); err != nil {
		return nil, fmt.Errorf("failed to unmarshal tracks: %w", err)
	}

	var err error
	if row.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, fmt.Errorf("invalid created_at: %w", err)
	}
	if row.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
		return nil, fmt.Errorf("invalid updated_at: %w", err)
	}
	return &row, nil
}

// timeLayout has fixed-width fractions so that text ordering matches time ordering.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
