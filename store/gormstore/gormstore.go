// Package gormstore implements store.Store with gorm on SQLite.
package gormstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"dserve-api/models"
	"dserve-api/store"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Store struct {
	db *gorm.DB
}

var _ store.Store = (*Store)(nil)

// Open connects to the SQLite database at dsn and migrates the schema.
func Open(dsn string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("sqlite handle: %w", err)
	}
	// SQLite allows a single writer; one connection keeps transactions and
	// in-memory databases consistent.
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&models.User{},
		&models.LoginSession{},
		&models.InventoryItem{},
		&models.StockMovement{},
		&models.MenuItem{},
		&models.Recipe{},
		&models.Order{},
		&models.OrderItem{},
		&models.DailyCounter{},
	)
	if err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// OpenMemory opens a private in-memory database.
func OpenMemory() (*Store, error) {
	return Open(fmt.Sprintf("file:dserve-%s?mode=memory&cache=shared", uuid.NewString()))
}

func (s *Store) WithinTx(ctx context.Context, fn func(tx store.Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}

func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return store.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey), strings.Contains(err.Error(), "UNIQUE constraint failed"):
		return fmt.Errorf("%w: %v", store.ErrDuplicate, err)
	}
	return err
}

// ── Users ──────────────────────────────────────────────────────────

func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	return translate(s.db.WithContext(ctx).Create(u).Error)
}

func (s *Store) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	if err := s.db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	if err := s.db.WithContext(ctx).First(&u, "username = ?", username).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (s *Store) ListUsers(ctx context.Context, role models.UserRole) ([]models.User, error) {
	var users []models.User
	q := s.db.WithContext(ctx).Order("username")
	if role != "" {
		q = q.Where("role = ?", role)
	}
	if err := q.Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (s *Store) CountUsers(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.User{}).Count(&n).Error
	return n, err
}

// ── Login sessions ─────────────────────────────────────────────────

func (s *Store) AddLoginSession(ctx context.Context, ls *models.LoginSession) error {
	return translate(s.db.WithContext(ctx).Create(ls).Error)
}

func (s *Store) RecentLoginSessions(ctx context.Context, limit int) ([]models.LoginSession, error) {
	var out []models.LoginSession
	q := s.db.WithContext(ctx).Order("login_time desc, id desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) ClearLoginSessions(ctx context.Context, userID string) (int64, error) {
	q := s.db.WithContext(ctx)
	if userID != "" {
		q = q.Where("user_id = ?", userID)
	} else {
		q = q.Where("1 = 1")
	}
	res := q.Delete(&models.LoginSession{})
	return res.RowsAffected, res.Error
}

// ── Counters ───────────────────────────────────────────────────────

func (s *Store) IncrementCounter(ctx context.Context, day string) (int64, error) {
	var value int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Exec(`INSERT INTO daily_counters (day, value) VALUES (?, 1)
			ON CONFLICT(day) DO UPDATE SET value = daily_counters.value + 1`, day).Error
		if err != nil {
			return err
		}
		return tx.Raw(`SELECT value FROM daily_counters WHERE day = ?`, day).Scan(&value).Error
	})
	if err != nil {
		return 0, fmt.Errorf("increment counter %s: %w", day, err)
	}
	return value, nil
}

func (s *Store) RaiseCounter(ctx context.Context, day string, atLeast int64) error {
	err := s.db.WithContext(ctx).Exec(`INSERT INTO daily_counters (day, value) VALUES (?, ?)
		ON CONFLICT(day) DO UPDATE SET value = excluded.value
		WHERE excluded.value > daily_counters.value`, day, atLeast).Error
	if err != nil {
		return fmt.Errorf("raise counter %s: %w", day, err)
	}
	return nil
}

func (s *Store) CurrentCounter(ctx context.Context, day string) (int64, error) {
	var value int64
	err := s.db.WithContext(ctx).Raw(`SELECT value FROM daily_counters WHERE day = ?`, day).Scan(&value).Error
	if err != nil {
		return 0, fmt.Errorf("read counter %s: %w", day, err)
	}
	return value, nil
}

func now() time.Time {
	return time.Now().UTC()
}
