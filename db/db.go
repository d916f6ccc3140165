package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
)

// Drivers lists the accepted driver names.
func Drivers() []string {
	return []string{DriverPostgres, DriverSQLite}
}

// ErrNotFound is returned by lookups that match no row.
var ErrNotFound = errors.New("not found")

// NotFoundError names the lookup that matched no row. It matches ErrNotFound
// under errors.Is.
type NotFoundError struct {
	Entity string
	Github string
	Title  string
}

func (e *NotFoundError) Error() string {
	if e.Title != "" {
		return fmt.Sprintf("%s for '%s' on '%s': %s", e.Entity, e.Github, e.Title, ErrNotFound)
	}
	return fmt.Sprintf("%s with github '%s': %s", e.Entity, e.Github, ErrNotFound)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// Store runs the tracker's queries over a single database connection.
type Store struct {
	gorm   *gorm.DB
	conn   *sql.DB
	driver string
	logger *slog.Logger
}

// Open connects to the database identified by driver and dsn. The connection
// is opened once and reused by every query until Close.
func Open(ctx context.Context, driver, dsn string, log *slog.Logger) (*Store, error) {
	var sqlDriver string
	switch driver {
	case DriverPostgres:
		sqlDriver = "pgx"
	case DriverSQLite:
		sqlDriver = "sqlite3"
	default:
		return nil, fmt.Errorf("unsupported driver: %s", driver)
	}

	conn, err := sql.Open(sqlDriver, dsn)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}
	conn.SetMaxOpenConns(1)

	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}

	store, err := New(conn, driver, log)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	return store, nil
}

// New wraps an already open connection.
func New(conn *sql.DB, driver string, log *slog.Logger) (*Store, error) {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	var dialector gorm.Dialector
	switch driver {
	case DriverPostgres:
		dialector = postgres.New(postgres.Config{Conn: conn})
	case DriverSQLite:
		dialector = sqlite.New(sqlite.Config{Conn: conn})
	default:
		return nil, fmt.Errorf("unsupported driver: %s", driver)
	}

	gdb, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.New(slogWriter{log}, logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Info,
			IgnoreRecordNotFoundError: true,
			ParameterizedQueries:      true,
		}),
		SkipDefaultTransaction: true,
		DisableAutomaticPing:   true,
	})
	if err != nil {
		return nil, fmt.Errorf("error initializing %s dialect: %w", driver, err)
	}

	return &Store{gorm: gdb, conn: conn, driver: driver, logger: log}, nil
}

// Close releases the underlying connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

// EnsureSchema creates the students, projects and grades tables when they
// do not exist yet.
func (s *Store) EnsureSchema(ctx context.Context) error {
	idColumn := "id SERIAL PRIMARY KEY"
	if s.driver == DriverSQLite {
		idColumn = "id INTEGER PRIMARY KEY AUTOINCREMENT"
	}

	statements := []struct {
		table string
		query string
	}{
		{"students", `
			CREATE TABLE IF NOT EXISTS students (
				first_name VARCHAR(30),
				last_name VARCHAR(30),
				github VARCHAR(30)
			)`},
		{"projects", `
			CREATE TABLE IF NOT EXISTS projects (
				` + idColumn + `,
				title VARCHAR(30),
				description TEXT,
				max_grade INTEGER
			)`},
		{"grades", `
			CREATE TABLE IF NOT EXISTS grades (
				student_github VARCHAR(30),
				project_title VARCHAR(30),
				grade INTEGER
			)`},
	}

	for _, stmt := range statements {
		if err := s.gorm.WithContext(ctx).Exec(stmt.query).Error; err != nil {
			return fmt.Errorf("error creating %s table: %w", stmt.table, err)
		}
	}
	return nil
}

// slogWriter feeds gorm's statement trace into slog at debug level.
type slogWriter struct {
	logger *slog.Logger
}

func (w slogWriter) Printf(format string, args ...any) {
	w.logger.Debug(fmt.Sprintf(format, args...), slog.String("component", "gorm"))
}
