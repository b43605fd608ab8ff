//go:build integration

package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"academy/internal/catalog"
	"academy/internal/logging"
)

type PostgresKVIntegrationSuite struct {
	suite.Suite
	ctx       context.Context
	container *postgres.PostgresContainer
	kv        *PostgresKV
}

func (s *PostgresKVIntegrationSuite) SetupSuite() {
	s.ctx = context.Background()

	container, err := postgres.Run(s.ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("academy_test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	s.Require().NoError(err)
	s.container = container

	connStr, err := container.ConnectionString(s.ctx, "sslmode=disable")
	s.Require().NoError(err)

	kv, err := OpenPostgresKV(s.ctx, connStr)
	s.Require().NoError(err)
	s.kv = kv
}

func (s *PostgresKVIntegrationSuite) TearDownSuite() {
	if s.kv != nil {
		s.kv.Close()
	}
	if s.container != nil {
		_ = s.container.Terminate(s.ctx)
	}
}

func (s *PostgresKVIntegrationSuite) SetupTest() {
	_, err := s.kv.db.ExecContext(s.ctx, "TRUNCATE kv_store")
	s.Require().NoError(err)
}

func TestPostgresKVIntegrationSuite(t *testing.T) {
	suite.Run(t, new(PostgresKVIntegrationSuite))
}

func (s *PostgresKVIntegrationSuite) TestGetMissing() {
	_, ok, err := s.kv.Get(s.ctx, "missing")
	s.NoError(err)
	s.False(ok)
}

func (s *PostgresKVIntegrationSuite) TestSetOverwrites() {
	s.Require().NoError(s.kv.Set(s.ctx, KeyGitHubRepo, "acme/old"))
	s.Require().NoError(s.kv.Set(s.ctx, KeyGitHubRepo, "acme/new"))

	v, ok, err := s.kv.Get(s.ctx, KeyGitHubRepo)
	s.NoError(err)
	s.True(ok)
	s.Equal("acme/new", v)
}

func (s *PostgresKVIntegrationSuite) TestEnsureSchemaIsIdempotent() {
	s.NoError(s.kv.EnsureSchema(s.ctx))
	s.NoError(s.kv.EnsureSchema(s.ctx))
}

func (s *PostgresKVIntegrationSuite) TestCatalogRoundTrip() {
	cs := NewCatalogStore(s.kv, logging.Discard())

	s.Equal(catalog.Default(), cs.Load(s.ctx))

	want := richCatalog()
	s.Require().NoError(cs.Save(s.ctx, want))
	s.Equal(want, cs.Load(s.ctx))
}
