package handler

import (
	"context"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"

	"stakeyard/internal/staking/models"
	"stakeyard/pkg/domain"
	"stakeyard/pkg/testutil"
)

// =============================================================================
// Staking Handler Suite
// =============================================================================
// The handler is exercised against a recording fake so transport concerns
// (decoding, validation, error envelopes, status codes) are tested in
// isolation from ledger semantics.

type fakeService struct {
	err error

	registered []domain.AccountName
	claims     []claimCall
	unstakes   []unstakeCall
	deposits   []models.DepositNotice

	payout domain.Asset
	user   *models.User
	assets []*models.StakedAsset
	byRate []*models.User
}

type claimCall struct {
	user domain.AccountName
	ids  []domain.AssetID
}

type unstakeCall struct {
	user domain.AccountName
	ids  []domain.AssetID
}

func (f *fakeService) RegisterUser(_ context.Context, user domain.AccountName) error {
	f.registered = append(f.registered, user)
	return f.err
}

func (f *fakeService) GetUser(_ context.Context, user domain.AccountName) (*models.User, []*models.StakedAsset, error) {
	if f.err != nil {
		return nil, nil, f.err
	}
	return f.user, f.assets, nil
}

func (f *fakeService) ListUsersByRate(_ context.Context, limit int) ([]*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	if limit < len(f.byRate) {
		return f.byRate[:limit], nil
	}
	return f.byRate, nil
}

func (f *fakeService) HandleDeposit(_ context.Context, notice models.DepositNotice) error {
	f.deposits = append(f.deposits, notice)
	return f.err
}

func (f *fakeService) Claim(_ context.Context, user domain.AccountName, ids []domain.AssetID) (domain.Asset, error) {
	f.claims = append(f.claims, claimCall{user: user, ids: ids})
	if f.err != nil {
		return domain.Asset{}, f.err
	}
	return f.payout, nil
}

func (f *fakeService) Unstake(_ context.Context, user domain.AccountName, ids []domain.AssetID) error {
	f.unstakes = append(f.unstakes, unstakeCall{user: user, ids: ids})
	return f.err
}

func (f *fakeService) SetFrozen(context.Context, bool) error { return f.err }
func (f *fakeService) SetConfig(context.Context, time.Duration, time.Duration) error {
	return f.err
}
func (f *fakeService) SetToken(context.Context, domain.AccountName, domain.Symbol) error {
	return f.err
}
func (f *fakeService) AddTemplates(context.Context, []models.TemplateInput) error    { return f.err }
func (f *fakeService) RemoveTemplates(context.Context, []models.TemplateInput) error { return f.err }
func (f *fakeService) ResetUser(context.Context, domain.AccountName) error           { return f.err }

type HandlerSuite struct {
	suite.Suite
	service *fakeService
	router  chi.Router
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	s.service = &fakeService{}
	h := New(s.service, slog.Default())

	s.router = chi.NewRouter()
	h.Register(s.router)
	h.RegisterPublic(s.router)
	h.RegisterWebhooks(s.router)
	s.router.Route("/admin", func(r chi.Router) {
		h.RegisterAdmin(r)
	})
}

// =============================================================================
// Registration
// =============================================================================

func (s *HandlerSuite) TestRegister() {
	s.Run("valid request registers the account", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/users", RegisterRequest{Account: "alice"})
		rr := testutil.DoRequest(s.router, req)

		testutil.AssertStatus(s.T(), rr, http.StatusCreated)
		s.Require().Len(s.service.registered, 1)
		s.Equal(domain.AccountName("alice"), s.service.registered[0])
	})

	s.Run("invalid account name rejected before the service", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/users", RegisterRequest{Account: "Not-Valid"})
		rr := testutil.DoRequest(s.router, req)

		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "bad_request")
		s.Len(s.service.registered, 1, "no additional service call")
	})

	s.Run("domain errors map to the coded envelope", func() {
		s.service.err = models.ErrAlreadyRegistered("alice")
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/users", RegisterRequest{Account: "alice"})
		rr := testutil.DoRequest(s.router, req)

		testutil.AssertStatusAndError(s.T(), rr, http.StatusConflict, "already_registered")
		resp := testutil.UnmarshalErrorResponse(s.T(), rr)
		s.Equal("user alice is already registered", resp["error_description"])
	})
}

// =============================================================================
// Claim / Unstake
// =============================================================================

func (s *HandlerSuite) TestClaim() {
	s.Run("passes parsed asset ids to the service", func() {
		s.service.payout = domain.Asset{Amount: 10, Symbol: domain.Symbol{Code: "WAX", Precision: 8}}
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/users/alice/claims",
			AssetBatchRequest{AssetIDs: []string{"7", "8"}})
		rr := testutil.DoRequest(s.router, req)

		testutil.AssertStatus(s.T(), rr, http.StatusOK)
		resp := testutil.UnmarshalResponse[ClaimResponse](s.T(), rr)
		s.Equal("0.00000010 WAX", resp.Payout)

		s.Require().Len(s.service.claims, 1)
		s.Equal(domain.AccountName("alice"), s.service.claims[0].user)
		s.Equal([]domain.AssetID{7, 8}, s.service.claims[0].ids)
	})

	s.Run("cooldown error maps to 425", func() {
		s.service.err = models.ErrClaimCooldown(7)
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/users/alice/claims",
			AssetBatchRequest{AssetIDs: []string{"7"}})
		rr := testutil.DoRequest(s.router, req)

		testutil.AssertStatusAndError(s.T(), rr, http.StatusTooEarly, "cooldown_active")
	})

	s.Run("nothing to claim maps to 422", func() {
		s.service.err = models.ErrNothingToClaim()
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/users/alice/claims",
			AssetBatchRequest{})
		rr := testutil.DoRequest(s.router, req)

		testutil.AssertStatusAndError(s.T(), rr, http.StatusUnprocessableEntity, "nothing_to_claim")
	})

	s.Run("malformed asset id rejected", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/users/alice/claims",
			AssetBatchRequest{AssetIDs: []string{"abc"}})
		rr := testutil.DoRequest(s.router, req)

		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "bad_request")
	})
}

func (s *HandlerSuite) TestUnstake() {
	s.Run("frozen ledger maps to 503", func() {
		s.service.err = models.ErrFrozen()
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/users/alice/unstake",
			AssetBatchRequest{AssetIDs: []string{"7"}})
		rr := testutil.DoRequest(s.router, req)

		testutil.AssertStatusAndError(s.T(), rr, http.StatusServiceUnavailable, "contract_frozen")
	})

	s.Run("successful release", func() {
		s.service.err = nil
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/users/alice/unstake",
			AssetBatchRequest{AssetIDs: []string{"7"}})
		rr := testutil.DoRequest(s.router, req)

		testutil.AssertStatus(s.T(), rr, http.StatusOK)
		s.Require().Len(s.service.unstakes, 2)
		s.Equal([]domain.AssetID{7}, s.service.unstakes[1].ids)
	})
}

// =============================================================================
// Deposits
// =============================================================================

func (s *HandlerSuite) TestDeposit() {
	s.Run("stake memo classified as stake", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/deposits",
			DepositRequest{From: "alice", AssetIDs: []string{"7"}, Memo: "stake"})
		rr := testutil.DoRequest(s.router, req)

		testutil.AssertStatus(s.T(), rr, http.StatusOK)
		s.Require().Len(s.service.deposits, 1)
		s.Equal(models.DepositStake, s.service.deposits[0].Kind)
	})

	s.Run("other memo classified as pass-through", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/deposits",
			DepositRequest{From: "alice", AssetIDs: []string{"7"}, Memo: "gift"})
		rr := testutil.DoRequest(s.router, req)

		testutil.AssertStatus(s.T(), rr, http.StatusOK)
		s.Require().Len(s.service.deposits, 2)
		s.Equal(models.DepositPassThrough, s.service.deposits[1].Kind)
	})

	s.Run("empty asset list rejected", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/deposits",
			DepositRequest{From: "alice", Memo: "stake"})
		rr := testutil.DoRequest(s.router, req)

		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "bad_request")
	})
}

// =============================================================================
// Leaderboard
// =============================================================================

func (s *HandlerSuite) TestLeaderboard() {
	wax := domain.Symbol{Code: "WAX", Precision: 8}
	s.service.byRate = []*models.User{
		{Account: "bob", HourlyRate: domain.Asset{Amount: 300000000, Symbol: wax}},
		{Account: "alice", HourlyRate: domain.Asset{Amount: 100000000, Symbol: wax}},
	}

	s.Run("serves from the primary store without an index", func() {
		req := testutil.NewRequest(s.T(), http.MethodGet, "/leaderboard")
		rr := testutil.DoRequest(s.router, req)

		testutil.AssertStatus(s.T(), rr, http.StatusOK)
		resp := testutil.UnmarshalResponse[LeaderboardResponse](s.T(), rr)
		s.Require().Len(resp.Users, 2)
		s.Equal("bob", resp.Users[0].Account)
		s.Equal("3.00000000 WAX", resp.Users[0].HourlyRate)
	})

	s.Run("limit is validated", func() {
		req := testutil.NewRequest(s.T(), http.MethodGet, "/leaderboard?limit=0")
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "bad_request")

		req = testutil.NewRequest(s.T(), http.MethodGet, "/leaderboard?limit=1")
		rr = testutil.DoRequest(s.router, req)
		resp := testutil.UnmarshalResponse[LeaderboardResponse](s.T(), rr)
		s.Len(resp.Users, 1)
	})
}

// =============================================================================
// Admin Surface
// =============================================================================

func (s *HandlerSuite) TestAdmin() {
	s.Run("set frozen", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPut, "/admin/frozen", SetFrozenRequest{Frozen: true})
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatus(s.T(), rr, http.StatusOK)
	})

	s.Run("set config rejects negative periods", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPut, "/admin/config",
			SetConfigRequest{MinClaimPeriodSeconds: -1})
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "bad_request")
	})

	s.Run("set token validates symbol form", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPut, "/admin/token",
			SetTokenRequest{Contract: "eosio.token", Symbol: "WAX"})
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "bad_request")
	})

	s.Run("template batch validates rates", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/admin/templates",
			TemplateBatchRequest{Templates: []TemplateEntry{
				{TemplateID: 100, Collection: "aliencards", HourlyRate: "not-an-asset"},
			}})
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "bad_request")
	})

	s.Run("admin-only error maps to 403", func() {
		s.service.err = models.ErrAdminOnly()
		req := testutil.NewJSONRequest(s.T(), http.MethodPut, "/admin/frozen", SetFrozenRequest{Frozen: true})
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatusAndError(s.T(), rr, http.StatusForbidden, "admin_only")
	})
}
