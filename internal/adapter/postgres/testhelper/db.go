// Package testhelper provides a migrated PostgreSQL instance for repository
// integration tests. One container backs the whole test run; each test gets
// its own pool.
package testhelper

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib" // database/sql driver for goose
	"github.com/pressly/goose/v3"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const containerImage = "postgres:17-alpine"

var setup struct {
	once sync.Once
	dsn  string
	err  error
}

// SetupTestDB returns a pool connected to the shared migrated database,
// starting the container on first use. Set TEST_DATABASE_DSN to run against an
// existing server instead; migrations are applied either way. The pool closes
// with the test, the container with the process.
func SetupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()

	setup.once.Do(func() {
		setup.dsn, setup.err = prepareDatabase()
	})
	if setup.err != nil {
		t.Fatalf("testhelper: prepare database: %v", setup.err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, setup.dsn)
	if err != nil {
		t.Fatalf("testhelper: connect pool: %v", err)
	}
	t.Cleanup(pool.Close)

	return pool
}

func prepareDatabase() (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	dsn, ok := os.LookupEnv("TEST_DATABASE_DSN")
	if !ok {
		var err error
		if dsn, err = startContainer(ctx); err != nil {
			return "", err
		}
	}

	if err := migrate(ctx, dsn); err != nil {
		return "", err
	}

	return dsn, nil
}

func startContainer(ctx context.Context) (string, error) {
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		Started: true,
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        containerImage,
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "medremind",
				"POSTGRES_PASSWORD": "medremind",
				"POSTGRES_DB":       "medremind_test",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute),
		},
	})
	if err != nil {
		return "", fmt.Errorf("start postgres container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		return "", fmt.Errorf("resolve container host: %w", err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		return "", fmt.Errorf("resolve mapped port: %w", err)
	}

	return fmt.Sprintf("postgres://medremind:medremind@%s:%s/medremind_test?sslmode=disable",
		host, port.Port()), nil
}

// migrate applies all goose migrations. goose works over database/sql, so the
// pgx stdlib driver is used here rather than the pool.
func migrate(ctx context.Context, dsn string) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("open migration connection: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}

	provider, err := goose.NewProvider(goose.DialectPostgres, db, os.DirFS(migrationsDir()))
	if err != nil {
		return fmt.Errorf("create goose provider: %w", err)
	}
	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	return nil
}

func migrationsDir() string {
	_, thisFile, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(thisFile), "..", "..", "..", "..", "migrations")
}
