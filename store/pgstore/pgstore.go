// Package pgstore implements store.Store on PostgreSQL with pgx. The schema
// lives in embedded goose migrations.
package pgstore

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"time"

	"dserve-api/models"
	"dserve-api/store"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrations embed.FS

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
	Begin(ctx context.Context) (pgx.Tx, error)
}

type Store struct {
	pool *pgxpool.Pool
	db   querier
}

var _ store.Store = (*Store)(nil)

// Migrate applies the embedded migrations to the database at dsn.
func Migrate(dsn string) error {
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	sqlDB, err := goose.OpenDBWithDriver("pgx", dsn)
	if err != nil {
		return fmt.Errorf("open migrations db: %w", err)
	}
	defer sqlDB.Close()
	return goose.Up(sqlDB, "migrations")
}

// Open migrates the schema and connects a pool.
func Open(ctx context.Context, dsn string) (*Store, error) {
	if err := Migrate(dsn); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("pgxpool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &Store{pool: pool, db: pool}, nil
}

func (s *Store) WithinTx(ctx context.Context, fn func(tx store.Store) error) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(&Store{db: tx}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *Store) Ping(ctx context.Context) error {
	if s.pool == nil {
		return nil
	}
	return s.pool.Ping(ctx)
}

func (s *Store) Close() error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}

func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return store.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return fmt.Errorf("%w: %s", store.ErrDuplicate, pgErr.ConstraintName)
	}
	return err
}

func now() time.Time {
	return time.Now().UTC()
}

// exactlyOne maps a zero-row write to ErrNotFound.
func exactlyOne(tag pgconn.CommandTag, err error) error {
	if err != nil {
		return translate(err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

// ── Users ──────────────────────────────────────────────────────────

const userColumns = `id, username, password_hash, role, display_name, is_active, created_at, updated_at`

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Role, &u.DisplayName, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	if u.ID == "" {
		u.ID = models.NewID()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now()
	}
	u.UpdatedAt = u.CreatedAt
	_, err := s.db.Exec(ctx, `INSERT INTO users (`+userColumns+`) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		u.ID, u.Username, u.PasswordHash, u.Role, u.DisplayName, u.IsActive, u.CreatedAt, u.UpdatedAt)
	return translate(err)
}

func (s *Store) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return scanUser(s.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return scanUser(s.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username))
}

func (s *Store) ListUsers(ctx context.Context, role models.UserRole) ([]models.User, error) {
	rows, err := s.db.Query(ctx, `SELECT `+userColumns+` FROM users
		WHERE ($1 = '' OR role = $1) ORDER BY username`, string(role))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *u)
	}
	return out, rows.Err()
}

func (s *Store) CountUsers(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.QueryRow(ctx, `SELECT count(*) FROM users`).Scan(&n)
	return n, err
}

// ── Login sessions ─────────────────────────────────────────────────

func (s *Store) AddLoginSession(ctx context.Context, ls *models.LoginSession) error {
	if ls.ID == "" {
		ls.ID = models.NewID()
	}
	_, err := s.db.Exec(ctx, `INSERT INTO login_sessions
		(id, user_id, username, display_name, role, login_time, ip_address, user_agent)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		ls.ID, ls.UserID, ls.Username, ls.DisplayName, ls.Role, ls.LoginTime, ls.IPAddress, ls.UserAgent)
	return translate(err)
}

func (s *Store) RecentLoginSessions(ctx context.Context, limit int) ([]models.LoginSession, error) {
	q := `SELECT id, user_id, username, display_name, role, login_time, ip_address, user_agent
		FROM login_sessions ORDER BY login_time DESC, id DESC`
	args := []any{}
	if limit > 0 {
		q += ` LIMIT $1`
		args = append(args, limit)
	}
	rows, err := s.db.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.LoginSession
	for rows.Next() {
		var ls models.LoginSession
		if err := rows.Scan(&ls.ID, &ls.UserID, &ls.Username, &ls.DisplayName, &ls.Role, &ls.LoginTime, &ls.IPAddress, &ls.UserAgent); err != nil {
			return nil, err
		}
		out = append(out, ls)
	}
	return out, rows.Err()
}

func (s *Store) ClearLoginSessions(ctx context.Context, userID string) (int64, error) {
	tag, err := s.db.Exec(ctx, `DELETE FROM login_sessions WHERE ($1 = '' OR user_id = $1)`, userID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// ── Counters ───────────────────────────────────────────────────────

func (s *Store) IncrementCounter(ctx context.Context, day string) (int64, error) {
	var value int64
	err := s.db.QueryRow(ctx, `INSERT INTO daily_counters (day, value) VALUES ($1, 1)
		ON CONFLICT (day) DO UPDATE SET value = daily_counters.value + 1
		RETURNING value`, day).Scan(&value)
	if err != nil {
		return 0, fmt.Errorf("increment counter %s: %w", day, err)
	}
	return value, nil
}

func (s *Store) RaiseCounter(ctx context.Context, day string, atLeast int64) error {
	_, err := s.db.Exec(ctx, `INSERT INTO daily_counters (day, value) VALUES ($1, $2)
		ON CONFLICT (day) DO UPDATE SET value = EXCLUDED.value
		WHERE EXCLUDED.value > daily_counters.value`, day, atLeast)
	if err != nil {
		return fmt.Errorf("raise counter %s: %w", day, err)
	}
	return nil
}

func (s *Store) CurrentCounter(ctx context.Context, day string) (int64, error) {
	var value int64
	err := s.db.QueryRow(ctx, `SELECT value FROM daily_counters WHERE day = $1`, day).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read counter %s: %w", day, err)
	}
	return value, nil
}
