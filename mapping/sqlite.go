package mapping

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

const schema = `
CREATE TABLE IF NOT EXISTS path_map (
	original_path TEXT PRIMARY KEY,
	clean_path    TEXT NOT NULL,
	created_at    TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ', 'now')),
	updated_at    TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ', 'now'))
);
`

// SQLite is a Store over a single database file so mappings survive process
// restarts.
type SQLite struct {
	pool *sqlitex.Pool
	log  *zap.Logger
}

// OpenSQLite opens (creating when necessary) the mapping database at path.
func OpenSQLite(path string, log *zap.Logger) (*SQLite, error) {
	if log == nil {
		log = zap.NewNop()
	}

	pool, err := sqlitex.NewPool(path, sqlitex.PoolOptions{
		Flags: sqlite.OpenReadWrite | sqlite.OpenCreate | sqlite.OpenWAL,
	})
	if err != nil {
		return nil, fmt.Errorf("unable to open mapping cache (%s): %w", path, err)
	}

	s := &SQLite{pool: pool, log: log.Named("mapping")}
	if err := s.init(context.Background()); err != nil {
		_ = pool.Close()
		return nil, err
	}
	s.log.Debug("Mapping cache opened", zap.String("path", path))
	return s, nil
}

func (s *SQLite) init(ctx context.Context) error {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return fmt.Errorf("unable to initialize mapping cache: %w", err)
	}
	defer s.pool.Put(conn)

	if err := sqlitex.ExecuteScript(conn, schema, nil); err != nil {
		return fmt.Errorf("unable to create mapping schema: %w", err)
	}
	return nil
}

func (s *SQLite) Find(ctx context.Context, originalPath string) (string, bool, error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return "", false, fmt.Errorf("mapping cache unavailable: %w", err)
	}
	defer s.pool.Put(conn)

	var (
		clean string
		found bool
	)
	err = sqlitex.Execute(conn, `SELECT clean_path FROM path_map WHERE original_path = ?`,
		&sqlitex.ExecOptions{
			Args: []any{originalPath},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				clean = stmt.ColumnText(0)
				found = true
				return nil
			},
		})
	if err != nil {
		return "", false, fmt.Errorf("mapping lookup failed: %w", err)
	}
	return clean, found, nil
}

func (s *SQLite) Upsert(ctx context.Context, originalPath, cleanPath string) error {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return fmt.Errorf("mapping cache unavailable: %w", err)
	}
	defer s.pool.Put(conn)

	// Uniqueness on original_path is enforced by the primary key, concurrent
	// first-writers collapse to a single record with last write winning.
	err = sqlitex.Execute(conn, `
		INSERT INTO path_map (original_path, clean_path) VALUES (?, ?)
		ON CONFLICT (original_path) DO UPDATE SET
			clean_path = excluded.clean_path,
			updated_at = strftime('%Y-%m-%dT%H:%M:%fZ', 'now')`,
		&sqlitex.ExecOptions{Args: []any{originalPath, cleanPath}})
	if err != nil {
		return fmt.Errorf("mapping upsert failed: %w", err)
	}
	return nil
}

func (s *SQLite) ClearAll(ctx context.Context) error {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return fmt.Errorf("mapping cache unavailable: %w", err)
	}
	defer s.pool.Put(conn)

	if err := sqlitex.Execute(conn, `DELETE FROM path_map`, nil); err != nil {
		return fmt.Errorf("mapping clear failed: %w", err)
	}
	return nil
}

func (s *SQLite) Count(ctx context.Context) (int64, error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return 0, fmt.Errorf("mapping cache unavailable: %w", err)
	}
	defer s.pool.Put(conn)

	var count int64
	err = sqlitex.Execute(conn, `SELECT COUNT(*) FROM path_map`,
		&sqlitex.ExecOptions{
			ResultFunc: func(stmt *sqlite.Stmt) error {
				count = stmt.ColumnInt64(0)
				return nil
			},
		})
	if err != nil {
		return 0, fmt.Errorf("mapping count failed: %w", err)
	}
	return count, nil
}

func (s *SQLite) Close() error {
	return s.pool.Close()
}
