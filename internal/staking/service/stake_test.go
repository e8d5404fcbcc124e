package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"stakeyard/internal/staking/models"
	"stakeyard/pkg/domain"
	"stakeyard/pkg/platform/sentinel"
)

// =============================================================================
// Deposit / Stake Suite
// =============================================================================

type StakeSuite struct {
	LedgerSuite
	ready bool
}

func TestStakeSuite(t *testing.T) {
	suite.Run(t, new(StakeSuite))
}

func (s *StakeSuite) SetupTest() {
	s.LedgerSuite.SetupTest()
	s.ready = false
}

// setupStakeable initializes the ledger once per test: two template rates,
// one registered user, two stakeable assets.
func (s *StakeSuite) setupStakeable() {
	if s.ready {
		return
	}
	s.initLedger()
	s.registerTemplate("aliencards", 100, "1.00000000 WAX")
	s.registerTemplate("aliencards", 200, "2.00000000 WAX")
	s.registerUser("alice")
	s.catalog.addAsset(1, "aliencards", 100)
	s.catalog.addAsset(2, "aliencards", 200)
	s.ready = true
}

// =============================================================================
// Memo Dispatch
// =============================================================================

func (s *StakeSuite) TestDepositDispatch() {
	s.Run("stake memo maps to stake admission", func() {
		s.Equal(models.DepositStake, models.ParseDepositKind("stake"))
	})

	s.Run("any other memo passes through", func() {
		s.Equal(models.DepositPassThrough, models.ParseDepositKind(""))
		s.Equal(models.DepositPassThrough, models.ParseDepositKind("Stake"))
		s.Equal(models.DepositPassThrough, models.ParseDepositKind("staking"))
		s.Equal(models.DepositPassThrough, models.ParseDepositKind("hello"))
	})

	s.Run("pass-through deposit leaves the ledger untouched", func() {
		// Not initialized, unknown user, unknown assets: a pass-through
		// transfer must still succeed without validation.
		err := s.service.HandleDeposit(s.userCtx("ghost", 0), models.DepositNotice{
			From:     "ghost",
			AssetIDs: []domain.AssetID{42},
			Kind:     models.DepositPassThrough,
		})
		s.NoError(err)
	})
}

// =============================================================================
// Stake Admission
// =============================================================================

func (s *StakeSuite) TestStake() {
	s.Run("fails before ledger is initialized", func() {
		err := s.service.HandleDeposit(s.userCtx("alice", 0), models.DepositNotice{
			From: "alice", AssetIDs: []domain.AssetID{1}, Kind: models.DepositStake,
		})
		s.Require().Error(err)
		s.Equal("smart contract is not initialized yet", err.Error())
	})

	s.Run("unregistered sender rejected", func() {
		s.initLedger()
		err := s.service.HandleDeposit(s.userCtx("ghost", 0), models.DepositNotice{
			From: "ghost", AssetIDs: []domain.AssetID{1}, Kind: models.DepositStake,
		})
		s.Require().Error(err)
		s.Equal("user ghost is not registered", err.Error())
	})

	s.Run("asset with unregistered template rejected", func() {
		s.setupStakeable()
		s.catalog.addAsset(3, "aliencards", 999)

		err := s.service.HandleDeposit(s.userCtx("alice", 0), models.DepositNotice{
			From: "alice", AssetIDs: []domain.AssetID{3}, Kind: models.DepositStake,
		})
		s.Require().Error(err)
		s.Equal("asset (3) is not stakeable", err.Error())
	})

	s.Run("asset from a different collection rejected", func() {
		s.setupStakeable()
		// Template id matches a registered rate but the collection differs.
		s.catalog.addAsset(4, "othercards", 100)

		err := s.service.HandleDeposit(s.userCtx("alice", 0), models.DepositNotice{
			From: "alice", AssetIDs: []domain.AssetID{4}, Kind: models.DepositStake,
		})
		s.Require().Error(err)
		s.Equal("asset (4) is not stakeable", err.Error())
	})

	s.Run("one bad asset rejects the whole batch", func() {
		s.setupStakeable()
		s.catalog.addAsset(3, "aliencards", 999)

		err := s.service.HandleDeposit(s.userCtx("alice", 0), models.DepositNotice{
			From: "alice", AssetIDs: []domain.AssetID{1, 3}, Kind: models.DepositStake,
		})
		s.Require().Error(err)

		_, err = s.stores.Assets.Get(context.Background(), 1)
		s.True(errors.Is(err, sentinel.ErrNotFound), "valid sibling must not be admitted")
		s.Equal(int64(0), s.userRate("alice").Amount)
	})

	s.Run("admission records custody and raises the aggregate rate", func() {
		s.setupStakeable()
		s.stakeAssets("alice", 0, 1, 2)

		s.Equal(s.asset("3.00000000 WAX"), s.userRate("alice"))
		s.Equal(s.asset("3.00000000 WAX").Amount, s.rateIndex.rates["alice"])

		asset, err := s.stores.Assets.Get(context.Background(), 1)
		s.Require().NoError(err)
		s.Equal(domain.AccountName("alice"), asset.Owner)
		s.Equal(s.base, asset.LastClaim, "last claim starts at stake time")
	})

	s.Run("replayed deposit notice is rejected", func() {
		s.setupStakeable()

		err := s.service.HandleDeposit(s.userCtx("alice", time.Hour), models.DepositNotice{
			From: "alice", AssetIDs: []domain.AssetID{1}, Kind: models.DepositStake,
		})
		s.Require().Error(err)
		s.Equal("asset (1) is already staked", err.Error())

		s.Equal(s.asset("3.00000000 WAX"), s.userRate("alice"), "rate must not double-count")
		assets, listErr := s.stores.Assets.ListByOwner(context.Background(), "alice")
		s.Require().NoError(listErr)
		s.Len(assets, 2)

		asset, getErr := s.stores.Assets.Get(context.Background(), 1)
		s.Require().NoError(getErr)
		s.Equal(s.base, asset.LastClaim, "replay must not reset accrual")
	})

	s.Run("duplicate asset poisons its whole batch", func() {
		s.setupStakeable()
		s.catalog.addAsset(5, "aliencards", 100)

		err := s.service.HandleDeposit(s.userCtx("alice", time.Hour), models.DepositNotice{
			From: "alice", AssetIDs: []domain.AssetID{5, 2}, Kind: models.DepositStake,
		})
		s.Require().Error(err)
		s.Equal("asset (2) is already staked", err.Error())

		_, err = s.stores.Assets.Get(context.Background(), 5)
		s.True(errors.Is(err, sentinel.ErrNotFound), "fresh sibling must not be admitted")
		s.Equal(s.asset("3.00000000 WAX"), s.userRate("alice"))
	})

	s.Run("duplicate ids inside one notice rejected", func() {
		s.setupStakeable()
		s.catalog.addAsset(6, "aliencards", 100)

		err := s.service.HandleDeposit(s.userCtx("alice", time.Hour), models.DepositNotice{
			From: "alice", AssetIDs: []domain.AssetID{6, 6}, Kind: models.DepositStake,
		})
		s.Require().Error(err)
		s.Equal("asset (6) is already staked", err.Error())
		s.Equal(s.asset("3.00000000 WAX"), s.userRate("alice"))
	})

	s.Run("staking while frozen rejected", func() {
		s.setupStakeable()
		s.Require().NoError(s.service.SetFrozen(s.adminCtx(0), true))

		err := s.service.HandleDeposit(s.userCtx("alice", 0), models.DepositNotice{
			From: "alice", AssetIDs: []domain.AssetID{1}, Kind: models.DepositStake,
		})
		s.Require().Error(err)
		s.Equal("smart contract is currently frozen", err.Error())
	})
}
