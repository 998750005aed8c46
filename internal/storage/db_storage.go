package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/25x8/nginx-probe/internal/errs"
	"github.com/25x8/nginx-probe/internal/logger"
	"github.com/25x8/nginx-probe/internal/models"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
)

const snapshotsTable = "probe_snapshots"

//go:embed migrations/*.sql
var embedMigrations embed.FS

// gooseUp подменяется в тестах
var gooseUp = goose.Up

// DBStorage - хранилище снимков в PostgreSQL: строка цели в probe_targets
// и группа строк наблюдений в probe_snapshots
type DBStorage struct {
	db *sql.DB
}

func (s *DBStorage) DB() *sql.DB {
	return s.db
}

// OpenDBStorage открывает соединение через драйвер pgx и применяет миграции
func OpenDBStorage(ctx context.Context, dsn string) (*DBStorage, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	storage, err := NewDBStorage(ctx, db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return storage, nil
}

// NewDBStorage проверяет соединение и применяет миграции.
// Отказ миграций - аналог невозможности создать каталог снимков.
func NewDBStorage(ctx context.Context, db *sql.DB) (*DBStorage, error) {
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("database connection check failed: %w", describe(err))
	}

	// Настраиваем goose
	goose.SetBaseFS(embedMigrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return nil, fmt.Errorf("failed to set goose dialect: %w", err)
	}
	goose.SetTableName("goose_db_version")

	logger.Log.Debug("applying database migrations")
	if err := gooseUp(db, "migrations"); err != nil {
		return nil, errs.CreateDir(snapshotsTable, describe(err))
	}
	logger.Log.Debug("database migrations applied")

	return &DBStorage{db: db}, nil
}

// Load - загружает снимок цели в порядке сбора.
// Цель без строки в probe_targets еще не сохранялась; пустой снимок при этом найден.
func (s *DBStorage) Load(ctx context.Context, key models.TargetKey) (models.Snapshot, bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM probe_targets WHERE target = $1)`, key.String()).Scan(&exists)
	if err != nil {
		return nil, false, fmt.Errorf("query target %s: %w", key, describe(err))
	}
	if !exists {
		return nil, false, nil
	}

	query := `SELECT metric_id, observed_at, value FROM probe_snapshots
              WHERE target = $1 ORDER BY position`

	rows, err := s.db.QueryContext(ctx, query, key.String())
	if err != nil {
		return nil, false, fmt.Errorf("query snapshot %s: %w", key, describe(err))
	}
	defer func() {
		if err := rows.Close(); err != nil {
			logger.Log.Warn("failed to close snapshot rows", zap.Error(err))
		}
	}()

	snapshot := models.Snapshot{}
	for rows.Next() {
		var (
			id    string
			ts    time.Time
			value string
		)
		if err := rows.Scan(&id, &ts, &value); err != nil {
			return nil, false, errs.CorruptSnapshot(location(key), err)
		}
		snapshot = append(snapshot, models.NewObservation(id, ts, value))
	}

	// Проверка ошибок после итерации
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("iterate snapshot %s: %w", key, describe(err))
	}

	if err := snapshot.Validate(); err != nil {
		return nil, false, errs.CorruptSnapshot(location(key), err)
	}

	return snapshot, true, nil
}

// Save - заменяет снимок цели в одной транзакции
func (s *DBStorage) Save(ctx context.Context, key models.TargetKey, snapshot models.Snapshot) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errs.WriteFile(location(key), describe(err))
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	upsert := `INSERT INTO probe_targets (target, saved_at) VALUES ($1, $2)
               ON CONFLICT (target) DO UPDATE SET saved_at = EXCLUDED.saved_at`
	if _, err = tx.ExecContext(ctx, upsert, key.String(), time.Now()); err != nil {
		return errs.WriteFile(location(key), describe(err))
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM probe_snapshots WHERE target = $1`, key.String()); err != nil {
		return errs.WriteFile(location(key), describe(err))
	}

	query := `INSERT INTO probe_snapshots (target, position, metric_id, observed_at, value)
              VALUES ($1, $2, $3, $4, $5)`
	for i, o := range snapshot {
		if _, err = tx.ExecContext(ctx, query, key.String(), i, o.ID, o.Timestamp, o.Value); err != nil {
			return errs.WriteFile(location(key), describe(err))
		}
	}

	if err = tx.Commit(); err != nil {
		return errs.WriteFile(location(key), describe(err))
	}

	logger.Log.Debug("snapshot saved",
		zap.String("target", key.String()),
		zap.Int("observations", len(snapshot)),
	)
	return nil
}

// Close - закрывает соединение с базой
func (s *DBStorage) Close() error {
	return s.db.Close()
}

// location - адрес снимка цели для сообщений об ошибках
func location(key models.TargetKey) string {
	return snapshotsTable + "/" + key.String()
}

// describe дополняет ошибку PostgreSQL классом и SQLSTATE
func describe(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	class := "database error"
	switch {
	case pgerrcode.IsConnectionException(pgErr.Code):
		class = "connection exception"
	case pgErr.Code == pgerrcode.UndefinedTable:
		class = "schema missing"
	case pgerrcode.IsInsufficientResources(pgErr.Code):
		class = "insufficient resources"
	case pgerrcode.IsIntegrityConstraintViolation(pgErr.Code):
		class = "integrity constraint violation"
	}

	return fmt.Errorf("%s (SQLSTATE %s): %w", class, pgErr.Code, err)
}
