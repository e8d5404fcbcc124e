package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"stakeyard/pkg/domain"
	"stakeyard/pkg/platform/sentinel"
)

// =============================================================================
// Unstake Suite
// =============================================================================

type UnstakeSuite struct {
	LedgerSuite
}

func TestUnstakeSuite(t *testing.T) {
	suite.Run(t, new(UnstakeSuite))
}

const unstakeReady = 4 * 24 * time.Hour // past the 3-day default cooldown

func (s *UnstakeSuite) setupStaked() {
	s.initLedger()
	s.registerTemplate("aliencards", 100, "1.00000000 WAX")
	s.registerTemplate("aliencards", 200, "2.00000000 WAX")
	s.registerUser("alice")
	s.catalog.addAsset(1, "aliencards", 100)
	s.catalog.addAsset(2, "aliencards", 200)
	s.stakeAssets("alice", 0, 1, 2)
}

func (s *UnstakeSuite) TestUnstakeValidation() {
	s.setupStaked()

	s.Run("requires the acting account to match", func() {
		err := s.service.Unstake(s.userCtx("eve", unstakeReady), "alice", []domain.AssetID{1})
		s.Require().Error(err)
		s.Equal("user alice has not authorized this action", err.Error())
	})

	s.Run("unregistered user rejected", func() {
		err := s.service.Unstake(s.userCtx("ghost", unstakeReady), "ghost", []domain.AssetID{1})
		s.Require().Error(err)
		s.Equal("user ghost is not registered", err.Error())
	})

	s.Run("empty batch rejected", func() {
		err := s.service.Unstake(s.userCtx("alice", unstakeReady), "alice", nil)
		s.Require().Error(err)
		s.Equal("must unstake at least 1 asset", err.Error())
	})

	s.Run("unknown asset rejected", func() {
		err := s.service.Unstake(s.userCtx("alice", unstakeReady), "alice", []domain.AssetID{42})
		s.Require().Error(err)
		s.Equal("asset (42) is not staked", err.Error())
	})

	s.Run("another user's asset rejected", func() {
		s.registerUser("bob")
		err := s.service.Unstake(s.userCtx("bob", unstakeReady), "bob", []domain.AssetID{1})
		s.Require().Error(err)
		s.Equal("asset (1) does not belong to bob", err.Error())
	})

	s.Run("asset inside the unstake cooldown rejected", func() {
		err := s.service.Unstake(s.userCtx("alice", 24*time.Hour), "alice", []domain.AssetID{1})
		s.Require().Error(err)
		s.Equal("asset (1) cannot be unstaked yet", err.Error())
	})

	s.Run("one cooling asset rejects the whole batch", func() {
		s.catalog.addAsset(3, "aliencards", 100)
		s.stakeAssets("alice", 2*24*time.Hour, 3)

		err := s.service.Unstake(s.userCtx("alice", unstakeReady), "alice", []domain.AssetID{1, 3})
		s.Require().Error(err)
		s.Equal("asset (3) cannot be unstaked yet", err.Error())

		_, getErr := s.stores.Assets.Get(context.Background(), 1)
		s.NoError(getErr, "rejected batch must not release any asset")
		s.Equal(s.asset("4.00000000 WAX"), s.userRate("alice"))
	})
}

func (s *UnstakeSuite) TestUnstakeRelease() {
	s.setupStaked()

	s.Run("release returns assets and lowers the aggregate rate", func() {
		err := s.service.Unstake(s.userCtx("alice", unstakeReady), "alice", []domain.AssetID{1})
		s.Require().NoError(err)

		_, getErr := s.stores.Assets.Get(context.Background(), 1)
		s.True(errors.Is(getErr, sentinel.ErrNotFound))
		s.Equal(s.asset("2.00000000 WAX"), s.userRate("alice"))
		s.Equal(s.asset("2.00000000 WAX").Amount, s.rateIndex.rates["alice"])

		s.Require().Len(s.catalog.returns, 1)
		s.Equal(domain.AccountName("alice"), s.catalog.returns[0].to)
		s.Equal([]domain.AssetID{1}, s.catalog.returns[0].ids)
	})

	s.Run("pending accrual is forfeited", func() {
		s.Empty(s.tokens.transfers, "unstake never pays rewards")
	})

	s.Run("released asset can be staked again", func() {
		s.stakeAssets("alice", unstakeReady, 1)
		s.Equal(s.asset("3.00000000 WAX"), s.userRate("alice"))

		asset, err := s.stores.Assets.Get(context.Background(), 1)
		s.Require().NoError(err)
		s.Equal(s.base.Add(unstakeReady), asset.LastClaim)
	})
}

func (s *UnstakeSuite) TestFailedReturnKeepsCustody() {
	s.setupStaked()

	s.catalog.returnErr = errors.New("custody service unavailable")
	err := s.service.Unstake(s.userCtx("alice", unstakeReady), "alice", []domain.AssetID{1})
	s.Require().Error(err)
	s.ErrorContains(err, "custody service unavailable")

	_, getErr := s.stores.Assets.Get(context.Background(), 1)
	s.NoError(getErr, "failed return must not release the custody record")
	s.Equal(s.asset("3.00000000 WAX"), s.userRate("alice"))
	s.Empty(s.catalog.returns)

	// The same batch releases once the custody service recovers.
	s.catalog.returnErr = nil
	s.Require().NoError(s.service.Unstake(s.userCtx("alice", unstakeReady), "alice", []domain.AssetID{1}))
	s.Equal(s.asset("2.00000000 WAX"), s.userRate("alice"))
	s.Require().Len(s.catalog.returns, 1)
}

func (s *UnstakeSuite) TestClaimResetsUnstakeClock() {
	// A successful claim advances last_claim, which also restarts the
	// unstake cooldown.
	s.setupStaked()

	_, err := s.service.Claim(s.userCtx("alice", 3*24*time.Hour+time.Hour), "alice", []domain.AssetID{1})
	s.Require().NoError(err)

	err = s.service.Unstake(s.userCtx("alice", unstakeReady), "alice", []domain.AssetID{1})
	s.Require().Error(err)
	s.Equal("asset (1) cannot be unstaked yet", err.Error())
}
