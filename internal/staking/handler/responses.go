package handler

import (
	"time"

	"stakeyard/internal/staking/models"
)

// UserResponse is the body returned for a registered user.
type UserResponse struct {
	Account    string          `json:"account"`
	HourlyRate string          `json:"hourly_rate"`
	Assets     []AssetResponse `json:"assets"`
}

// AssetResponse is one staked asset in a user's custody set.
type AssetResponse struct {
	AssetID   string    `json:"asset_id"`
	LastClaim time.Time `json:"last_claim"`
}

// FromUser builds the user response from the record and custody set.
func FromUser(user *models.User, assets []*models.StakedAsset) UserResponse {
	out := UserResponse{
		Account:    user.Account.String(),
		HourlyRate: user.HourlyRate.String(),
		Assets:     make([]AssetResponse, 0, len(assets)),
	}
	for _, a := range assets {
		out.Assets = append(out.Assets, AssetResponse{
			AssetID:   a.AssetID.String(),
			LastClaim: a.LastClaim,
		})
	}
	return out
}

// ClaimResponse is the body returned on a successful claim.
type ClaimResponse struct {
	Payout string `json:"payout"`
}

// LeaderboardEntry is one row of the rate leaderboard.
type LeaderboardEntry struct {
	Account    string `json:"account"`
	HourlyRate string `json:"hourly_rate"`
}

// LeaderboardResponse is the body of GET /v1/leaderboard.
type LeaderboardResponse struct {
	Users []LeaderboardEntry `json:"users"`
}

type statusResponse struct {
	Status string `json:"status"`
}

var okResponse = statusResponse{Status: "ok"}
