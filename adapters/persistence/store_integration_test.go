package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/khoahotran/cpd-tracker/internal/domain/tracker"
	"github.com/khoahotran/cpd-tracker/pkg/logger"
)

type PostgresStoreIntegrationTestSuite struct {
	repositorySuite
	pgContainer *postgres.PostgresContainer
	dsn         string
}

func (s *PostgresStoreIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("test_db"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).WithStartupTimeout(1*time.Minute),
		),
	)
	if err != nil {
		s.T().Fatalf("Failed to start postgres container: %s", err)
	}
	s.pgContainer = pgContainer

	s.dsn, err = pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		s.T().Fatalf("Failed to get connection string: %s", err)
	}

	if err := MigratePostgres(s.dsn, logger.NewNop()); err != nil {
		s.T().Fatalf("Failed to run migrations: %s", err)
	}
	// A second run finds nothing to do.
	s.Require().NoError(MigratePostgres(s.dsn, logger.NewNop()))

	s.newStore = func() tracker.Store {
		pool, err := NewPostgresPool(ctx, s.dsn, logger.NewNop())
		s.Require().NoError(err)
		_, err = pool.Exec(ctx, "TRUNCATE cpd_buckets")
		s.Require().NoError(err)
		return NewPostgresStore(pool, "test:", logger.NewNop())
	}
}

func (s *PostgresStoreIntegrationTestSuite) TearDownSuite() {
	if s.pgContainer != nil {
		if err := s.pgContainer.Terminate(context.Background()); err != nil {
			s.T().Fatalf("Failed to terminate postgres container: %s", err)
		}
	}
}

func TestPostgresStoreIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode.")
	}
	suite.Run(t, new(PostgresStoreIntegrationTestSuite))
}

type RedisStoreIntegrationTestSuite struct {
	repositorySuite
	container testcontainers.Container
	addr      string
}

func (s *RedisStoreIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	if err != nil {
		s.T().Fatalf("Failed to start redis container: %s", err)
	}
	s.container = container

	s.addr, err = container.Endpoint(ctx, "")
	if err != nil {
		s.T().Fatalf("Failed to get redis endpoint: %s", err)
	}

	s.newStore = func() tracker.Store {
		rdb := redis.NewClient(&redis.Options{Addr: s.addr})
		s.Require().NoError(rdb.FlushDB(ctx).Err())
		return NewRedisStore(rdb, "test:", logger.NewNop())
	}
}

func (s *RedisStoreIntegrationTestSuite) TearDownSuite() {
	if s.container != nil {
		if err := s.container.Terminate(context.Background()); err != nil {
			s.T().Fatalf("Failed to terminate redis container: %s", err)
		}
	}
}

func TestRedisStoreIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode.")
	}
	suite.Run(t, new(RedisStoreIntegrationTestSuite))
}
