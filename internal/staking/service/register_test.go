package service

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"stakeyard/pkg/domain"
)

// =============================================================================
// Registration Suite
// =============================================================================

type RegisterSuite struct {
	LedgerSuite
}

func TestRegisterSuite(t *testing.T) {
	suite.Run(t, new(RegisterSuite))
}

func (s *RegisterSuite) TestRegisterUser() {
	s.Run("fails before ledger is initialized", func() {
		err := s.service.RegisterUser(s.userCtx("alice", 0), "alice")
		s.Require().Error(err)
		s.Equal("smart contract is not initialized yet", err.Error())
	})

	s.Run("requires the acting account to match", func() {
		s.initLedger()
		err := s.service.RegisterUser(s.userCtx("eve", 0), "alice")
		s.Require().Error(err)
		s.Equal("user alice has not authorized this action", err.Error())
	})

	s.Run("creates user with zero rate in the configured symbol", func() {
		s.initLedger()
		s.Require().NoError(s.service.RegisterUser(s.userCtx("alice", 0), "alice"))

		rate := s.userRate("alice")
		s.Equal(int64(0), rate.Amount)
		s.Equal("WAX", rate.Symbol.Code)
		s.Equal(uint8(8), rate.Symbol.Precision)
		s.Equal(int64(0), s.rateIndex.rates["alice"])
	})

	s.Run("duplicate registration fails", func() {
		s.initLedger()
		s.Require().NoError(s.service.RegisterUser(s.userCtx("bob", 0), "bob"))

		err := s.service.RegisterUser(s.userCtx("bob", 0), "bob")
		s.Require().Error(err)
		s.Equal("user bob is already registered", err.Error())
	})
}

func (s *RegisterSuite) TestGetUser() {
	s.initLedger()

	s.Run("unknown user fails", func() {
		_, _, err := s.service.GetUser(s.userCtx("alice", 0), "ghost")
		s.Require().Error(err)
		s.Equal("user ghost is not registered", err.Error())
	})

	s.Run("returns record and custody set", func() {
		s.registerTemplate("aliencards", 100, "1.00000000 WAX")
		s.registerUser("alice")
		s.catalog.addAsset(7, "aliencards", 100)
		s.stakeAssets("alice", 0, 7)

		user, assets, err := s.service.GetUser(s.userCtx("alice", 0), "alice")
		s.Require().NoError(err)
		s.Equal(domain.AccountName("alice"), user.Account)
		s.Require().Len(assets, 1)
		s.Equal(domain.AssetID(7), assets[0].AssetID)
	})
}

func (s *RegisterSuite) TestListUsersByRate() {
	s.initLedger()
	s.registerTemplate("aliencards", 100, "1.00000000 WAX")
	s.registerTemplate("aliencards", 200, "3.00000000 WAX")

	s.registerUser("alice")
	s.registerUser("bob")
	s.registerUser("carol")

	s.catalog.addAsset(1, "aliencards", 100)
	s.catalog.addAsset(2, "aliencards", 200)
	s.stakeAssets("alice", 0, 1)
	s.stakeAssets("bob", 0, 2)

	users, err := s.service.ListUsersByRate(s.userCtx("alice", 0), 10)
	s.Require().NoError(err)
	s.Require().Len(users, 3)
	s.Equal(domain.AccountName("bob"), users[0].Account, "highest rate first")
	s.Equal(domain.AccountName("alice"), users[1].Account)
	s.Equal(domain.AccountName("carol"), users[2].Account)

	users, err = s.service.ListUsersByRate(s.userCtx("alice", 0), 1)
	s.Require().NoError(err)
	s.Require().Len(users, 1)
	s.Equal(domain.AccountName("bob"), users[0].Account)
}
