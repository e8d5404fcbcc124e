package handler

import (
	"fmt"
	"time"

	"stakeyard/internal/staking/models"
	"stakeyard/pkg/domain"
)

// RegisterRequest is the body of POST /v1/users.
type RegisterRequest struct {
	Account string `json:"account"`
}

func (r *RegisterRequest) Validate() error {
	if _, err := domain.ParseAccountName(r.Account); err != nil {
		return err
	}
	return nil
}

func (r *RegisterRequest) ParsedAccount() domain.AccountName {
	acct, _ := domain.ParseAccountName(r.Account)
	return acct
}

// AssetBatchRequest is the body of claim and unstake calls: a list of asset
// ids. Claims accept an empty list, meaning every staked asset.
type AssetBatchRequest struct {
	AssetIDs []string `json:"asset_ids"`
}

func (r *AssetBatchRequest) Validate() error {
	for _, raw := range r.AssetIDs {
		if _, err := domain.ParseAssetID(raw); err != nil {
			return err
		}
	}
	return nil
}

func (r *AssetBatchRequest) ParsedAssetIDs() []domain.AssetID {
	ids := make([]domain.AssetID, 0, len(r.AssetIDs))
	for _, raw := range r.AssetIDs {
		id, _ := domain.ParseAssetID(raw)
		ids = append(ids, id)
	}
	return ids
}

// DepositRequest is the custody-transfer webhook body.
type DepositRequest struct {
	From     string   `json:"from"`
	AssetIDs []string `json:"asset_ids"`
	Memo     string   `json:"memo"`
}

func (r *DepositRequest) Validate() error {
	if _, err := domain.ParseAccountName(r.From); err != nil {
		return err
	}
	if len(r.AssetIDs) == 0 {
		return fmt.Errorf("asset_ids must not be empty")
	}
	for _, raw := range r.AssetIDs {
		if _, err := domain.ParseAssetID(raw); err != nil {
			return err
		}
	}
	return nil
}

func (r *DepositRequest) ParsedNotice() models.DepositNotice {
	from, _ := domain.ParseAccountName(r.From)
	ids := make([]domain.AssetID, 0, len(r.AssetIDs))
	for _, raw := range r.AssetIDs {
		id, _ := domain.ParseAssetID(raw)
		ids = append(ids, id)
	}
	return models.DepositNotice{
		From:     from,
		AssetIDs: ids,
		Kind:     models.ParseDepositKind(r.Memo),
	}
}

// SetConfigRequest is the body of PUT /v1/admin/config.
type SetConfigRequest struct {
	MinClaimPeriodSeconds int64 `json:"min_claim_period_seconds"`
	UnstakePeriodSeconds  int64 `json:"unstake_period_seconds"`
}

func (r *SetConfigRequest) Validate() error {
	if r.MinClaimPeriodSeconds < 0 || r.UnstakePeriodSeconds < 0 {
		return fmt.Errorf("periods must not be negative")
	}
	return nil
}

func (r *SetConfigRequest) MinClaimPeriod() time.Duration {
	return time.Duration(r.MinClaimPeriodSeconds) * time.Second
}

func (r *SetConfigRequest) UnstakePeriod() time.Duration {
	return time.Duration(r.UnstakePeriodSeconds) * time.Second
}

// SetTokenRequest is the body of PUT /v1/admin/token.
type SetTokenRequest struct {
	Contract string `json:"contract"`
	Symbol   string `json:"symbol"`
}

func (r *SetTokenRequest) Validate() error {
	if _, err := domain.ParseAccountName(r.Contract); err != nil {
		return err
	}
	if _, err := domain.ParseSymbol(r.Symbol); err != nil {
		return err
	}
	return nil
}

func (r *SetTokenRequest) ParsedContract() domain.AccountName {
	contract, _ := domain.ParseAccountName(r.Contract)
	return contract
}

func (r *SetTokenRequest) ParsedSymbol() domain.Symbol {
	sym, _ := domain.ParseSymbol(r.Symbol)
	return sym
}

// SetFrozenRequest is the body of PUT /v1/admin/frozen.
type SetFrozenRequest struct {
	Frozen bool `json:"frozen"`
}

// TemplateEntry is one element of a template batch.
type TemplateEntry struct {
	TemplateID int32  `json:"template_id"`
	Collection string `json:"collection"`
	HourlyRate string `json:"hourly_rate"`
}

// TemplateBatchRequest is the body of template add/remove calls.
type TemplateBatchRequest struct {
	Templates []TemplateEntry `json:"templates"`
}

func (r *TemplateBatchRequest) Validate() error {
	if len(r.Templates) == 0 {
		return fmt.Errorf("templates must not be empty")
	}
	for _, t := range r.Templates {
		if _, err := domain.ParseCollectionName(t.Collection); err != nil {
			return err
		}
		if _, err := domain.ParseAsset(t.HourlyRate); err != nil {
			return err
		}
	}
	return nil
}

func (r *TemplateBatchRequest) ParsedInputs() []models.TemplateInput {
	inputs := make([]models.TemplateInput, 0, len(r.Templates))
	for _, t := range r.Templates {
		collection, _ := domain.ParseCollectionName(t.Collection)
		rate, _ := domain.ParseAsset(t.HourlyRate)
		inputs = append(inputs, models.TemplateInput{
			TemplateID: domain.TemplateID(t.TemplateID),
			Collection: collection,
			HourlyRate: rate,
		})
	}
	return inputs
}
