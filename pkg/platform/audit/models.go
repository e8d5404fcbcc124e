package audit

import "time"

// Action labels what happened to the ledger.
type Action string

const (
	ActionUserRegistered   Action = "user_registered"
	ActionUserReset        Action = "user_reset"
	ActionAssetsStaked     Action = "assets_staked"
	ActionAssetsUnstaked   Action = "assets_unstaked"
	ActionRewardClaimed    Action = "reward_claimed"
	ActionConfigUpdated    Action = "config_updated"
	ActionTokenUpdated     Action = "token_updated"
	ActionFrozenToggled    Action = "frozen_toggled"
	ActionTemplatesAdded   Action = "templates_added"
	ActionTemplatesRemoved Action = "templates_removed"
)

// Event is emitted from the staking service to capture ledger mutations.
// Keep it transport-agnostic so stores and sinks can fan out.
type Event struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Actor     string    `json:"actor"`
	User      string    `json:"user,omitempty"`
	Action    Action    `json:"action"`
	AssetIDs  []string  `json:"asset_ids,omitempty"`
	Amount    string    `json:"amount,omitempty"`
	Detail    string    `json:"detail,omitempty"`
	RequestID string    `json:"request_id,omitempty"`
}
