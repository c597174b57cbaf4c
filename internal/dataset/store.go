package dataset

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"

	"github.com/banshee-data/fieldplot/internal/field"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store reads datasets from a SQLite database holding one or more runs.
type Store struct {
	*sql.DB
}

// Open opens the SQLite database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return &Store{db}, nil
}

// EnsureSchema applies any pending schema migrations. A database that is
// already current is left untouched.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if err := s.PingContext(ctx); err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	m, err := s.newMigrate()
	if err != nil {
		return err
	}
	// m is not closed: that would close the shared *sql.DB.
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration up failed: %w", err)
	}
	return nil
}

// SchemaVersion returns the applied migration version, 0 when none has run.
func (s *Store) SchemaVersion() (uint, error) {
	m, err := s.newMigrate()
	if err != nil {
		return 0, err
	}
	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	if dirty {
		return version, fmt.Errorf("schema version %d is dirty", version)
	}
	return version, nil
}

func (s *Store) newMigrate() (*migrate.Migrate, error) {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded migrations: %w", err)
	}
	driver, err := sqlite.WithInstance(s.DB, &sqlite.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to create sqlite driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	m.Log = migrateLogger{}
	return m, nil
}

type migrateLogger struct{}

func (migrateLogger) Printf(format string, v ...interface{}) {
	log.Printf("[migrate] "+format, v...)
}

func (migrateLogger) Verbose() bool { return false }

// Runs lists the run names that have observations, sorted.
func (s *Store) Runs(ctx context.Context) ([]string, error) {
	rows, err := s.QueryContext(ctx, `SELECT DISTINCT run FROM observations ORDER BY run`)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []string
	for rows.Next() {
		var run string
		if err := rows.Scan(&run); err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Load returns the dataset for run with points in seq order.
func (s *Store) Load(ctx context.Context, run string) (*field.Dataset, error) {
	var ds field.Dataset
	var err error

	if ds.Observed, ds.Truth, err = s.loadTable(ctx, "observations", run); err != nil {
		return nil, err
	}
	if len(ds.Observed) == 0 {
		return nil, fmt.Errorf("run %q has no observations", run)
	}
	if ds.Trained, ds.TrainValues, err = s.loadTable(ctx, "training_points", run); err != nil {
		return nil, err
	}

	log.Printf("[dataset] loaded run %q: %d observations, %d training points",
		run, len(ds.Observed), len(ds.Trained))
	return &ds, nil
}

// loadTable reads one of the two fixed tables; table is never user input.
func (s *Store) loadTable(ctx context.Context, table, run string) ([]field.Point, []float64, error) {
	rows, err := s.QueryContext(ctx, `SELECT x, t, u FROM `+table+` WHERE run = ? ORDER BY seq`, run)
	if err != nil {
		return nil, nil, fmt.Errorf("query %s: %w", table, err)
	}
	defer rows.Close()

	var pts []field.Point
	var vals []float64
	for rows.Next() {
		var p field.Point
		var u float64
		if err := rows.Scan(&p.X, &p.T, &u); err != nil {
			return nil, nil, fmt.Errorf("scan %s: %w", table, err)
		}
		pts = append(pts, p)
		vals = append(vals, u)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", table, err)
	}
	return pts, vals, nil
}
