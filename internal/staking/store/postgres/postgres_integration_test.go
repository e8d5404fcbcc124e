//go:build integration

package postgres_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"stakeyard/internal/staking/models"
	"stakeyard/internal/staking/store"
	"stakeyard/internal/staking/store/postgres"
	"stakeyard/pkg/domain"
	"stakeyard/pkg/platform/sentinel"
	"stakeyard/pkg/testutil/containers"
)

// =============================================================================
// Postgres Store Integration Suite
// =============================================================================

type PostgresStoreSuite struct {
	suite.Suite
	pg     *containers.PostgresContainer
	stores store.Stores
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.pg = containers.NewPostgresContainer(s.T())
	s.Require().NoError(postgres.Migrate(context.Background(), s.pg.DB))
	s.stores = postgres.NewStores(s.pg.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	err := s.pg.TruncateTables(context.Background(), "staked_assets", "users", "template_rates", "ledger_config")
	s.Require().NoError(err)
}

func wax(amount int64) domain.Asset {
	return domain.Asset{Amount: amount, Symbol: models.DefaultTokenSymbol}
}

func (s *PostgresStoreSuite) TestConfigRoundTrip() {
	ctx := context.Background()

	_, err := s.stores.Configs.Get(ctx)
	s.ErrorIs(err, sentinel.ErrNotFound)

	cfg := models.DefaultConfig()
	cfg.IsFrozen = true
	cfg.MinClaimPeriod = 2 * time.Minute
	s.Require().NoError(s.stores.Configs.Save(ctx, cfg))

	got, err := s.stores.Configs.Get(ctx)
	s.Require().NoError(err)
	s.True(got.IsFrozen)
	s.Equal(2*time.Minute, got.MinClaimPeriod)
	s.Equal(models.DefaultTokenSymbol, got.TokenSymbol)

	// Upsert overwrites the singleton.
	cfg.IsFrozen = false
	s.Require().NoError(s.stores.Configs.Save(ctx, cfg))
	got, err = s.stores.Configs.Get(ctx)
	s.Require().NoError(err)
	s.False(got.IsFrozen)
}

func (s *PostgresStoreSuite) TestTemplateRates() {
	ctx := context.Background()

	s.Require().NoError(s.stores.Templates.Put(ctx, &models.TemplateRate{
		TemplateID: 100, Collection: "aliencards", HourlyRate: wax(100000000),
	}))
	s.Require().NoError(s.stores.Templates.Put(ctx, &models.TemplateRate{
		TemplateID: 100, Collection: "aliencards", HourlyRate: wax(200000000),
	}))

	got, err := s.stores.Templates.Get(ctx, 100)
	s.Require().NoError(err)
	s.Equal(int64(200000000), got.HourlyRate.Amount, "put overwrites")

	list, err := s.stores.Templates.List(ctx)
	s.Require().NoError(err)
	s.Len(list, 1)

	s.Require().NoError(s.stores.Templates.Delete(ctx, 100))
	s.ErrorIs(s.stores.Templates.Delete(ctx, 100), sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestUsersAndRateOrder() {
	ctx := context.Background()

	s.Require().NoError(s.stores.Users.Create(ctx, &models.User{Account: "alice", HourlyRate: wax(100)}))
	s.Require().NoError(s.stores.Users.Create(ctx, &models.User{Account: "bob", HourlyRate: wax(300)}))

	err := s.stores.Users.Create(ctx, &models.User{Account: "alice", HourlyRate: wax(0)})
	s.ErrorIs(err, sentinel.ErrConflict)

	s.Require().NoError(s.stores.Users.UpdateRate(ctx, "alice", wax(500)))

	users, err := s.stores.Users.ListByRate(ctx, 10)
	s.Require().NoError(err)
	s.Require().Len(users, 2)
	s.Equal(domain.AccountName("alice"), users[0].Account)
	s.Equal(int64(500), users[0].HourlyRate.Amount)

	s.ErrorIs(s.stores.Users.UpdateRate(ctx, "ghost", wax(1)), sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestStakedAssets() {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	s.Require().NoError(s.stores.Users.Create(ctx, &models.User{Account: "alice", HourlyRate: wax(0)}))
	s.Require().NoError(s.stores.Assets.Put(ctx, &models.StakedAsset{AssetID: 9, Owner: "alice", LastClaim: now}))
	s.Require().NoError(s.stores.Assets.Put(ctx, &models.StakedAsset{AssetID: 3, Owner: "alice", LastClaim: now}))

	got, err := s.stores.Assets.Get(ctx, 9)
	s.Require().NoError(err)
	s.Equal(domain.AccountName("alice"), got.Owner)
	s.True(got.LastClaim.Equal(now))

	assets, err := s.stores.Assets.ListByOwner(ctx, "alice")
	s.Require().NoError(err)
	s.Require().Len(assets, 2)
	s.Equal(domain.AssetID(3), assets[0].AssetID)

	s.Require().NoError(s.stores.Assets.Delete(ctx, 3))
	s.ErrorIs(s.stores.Assets.Delete(ctx, 3), sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestRunnerRollsBackOnError() {
	ctx := context.Background()

	s.Require().NoError(s.stores.Users.Create(ctx, &models.User{Account: "alice", HourlyRate: wax(0)}))

	boom := errors.New("boom")
	err := s.stores.Runner.RunInTx(ctx, func(ctx context.Context) error {
		now := time.Now().UTC().Truncate(time.Second)
		if err := s.stores.Assets.Put(ctx, &models.StakedAsset{AssetID: 1, Owner: "alice", LastClaim: now}); err != nil {
			return err
		}
		if err := s.stores.Users.UpdateRate(ctx, "alice", wax(100)); err != nil {
			return err
		}
		return boom
	})
	s.ErrorIs(err, boom)

	_, err = s.stores.Assets.Get(ctx, 1)
	s.ErrorIs(err, sentinel.ErrNotFound, "asset write rolled back")
	user, err := s.stores.Users.Get(ctx, "alice")
	s.Require().NoError(err)
	s.Equal(int64(0), user.HourlyRate.Amount, "rate update rolled back")
}
