// Package postgres implements the ledger stores on PostgreSQL. All writes of
// one ledger operation run inside one transaction via Runner; the stores pick
// the transaction out of the context when present.
package postgres

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"stakeyard/internal/staking/models"
	"stakeyard/internal/staking/store"
	"stakeyard/pkg/domain"
	"stakeyard/pkg/platform/sentinel"
	"stakeyard/pkg/platform/tx"
)

//go:embed schema.sql
var schema string

// Migrate applies the schema. Idempotent.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// NewStores builds the postgres-backed store bundle.
func NewStores(db *sql.DB) store.Stores {
	return store.Stores{
		Configs:   &ConfigStore{db: db},
		Templates: &TemplateStore{db: db},
		Users:     &UserStore{db: db},
		Assets:    &AssetStore{db: db},
		Runner:    &Runner{db: db},
	}
}

// Runner wraps fn in a SQL transaction and threads it through the context.
type Runner struct {
	db *sql.DB
}

func (r *Runner) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	sqlTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx.WithTx(ctx, sqlTx)); err != nil {
		if rbErr := sqlTx.Rollback(); rbErr != nil {
			return errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
		}
		return err
	}
	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func q(ctx context.Context, db *sql.DB) querier {
	if sqlTx, ok := tx.From(ctx); ok {
		return sqlTx
	}
	return db
}

// ConfigStore persists the configuration singleton as a one-row table.
type ConfigStore struct {
	db *sql.DB
}

func (s *ConfigStore) Get(ctx context.Context) (*models.Config, error) {
	row := q(ctx, s.db).QueryRowContext(ctx, `
		SELECT is_frozen, token_contract, token_symbol_code, token_symbol_precision,
		       min_claim_period_seconds, unstake_period_seconds
		FROM ledger_config WHERE id = 1`)

	var cfg models.Config
	var contract, code string
	var precision int16
	var minClaimSecs, unstakeSecs int64
	err := row.Scan(&cfg.IsFrozen, &contract, &code, &precision, &minClaimSecs, &unstakeSecs)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("get config: %w", err)
	}
	cfg.TokenContract = domain.AccountName(contract)
	cfg.TokenSymbol = domain.Symbol{Code: code, Precision: uint8(precision)}
	cfg.MinClaimPeriod = time.Duration(minClaimSecs) * time.Second
	cfg.UnstakePeriod = time.Duration(unstakeSecs) * time.Second
	return &cfg, nil
}

func (s *ConfigStore) Save(ctx context.Context, cfg *models.Config) error {
	_, err := q(ctx, s.db).ExecContext(ctx, `
		INSERT INTO ledger_config (id, is_frozen, token_contract, token_symbol_code,
		                           token_symbol_precision, min_claim_period_seconds, unstake_period_seconds)
		VALUES (1, $1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			is_frozen = EXCLUDED.is_frozen,
			token_contract = EXCLUDED.token_contract,
			token_symbol_code = EXCLUDED.token_symbol_code,
			token_symbol_precision = EXCLUDED.token_symbol_precision,
			min_claim_period_seconds = EXCLUDED.min_claim_period_seconds,
			unstake_period_seconds = EXCLUDED.unstake_period_seconds`,
		cfg.IsFrozen, cfg.TokenContract.String(), cfg.TokenSymbol.Code, int16(cfg.TokenSymbol.Precision),
		int64(cfg.MinClaimPeriod/time.Second), int64(cfg.UnstakePeriod/time.Second))
	if err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	return nil
}

// TemplateStore persists template rates.
type TemplateStore struct {
	db *sql.DB
}

func (s *TemplateStore) Get(ctx context.Context, id domain.TemplateID) (*models.TemplateRate, error) {
	row := q(ctx, s.db).QueryRowContext(ctx, `
		SELECT template_id, collection, hourly_rate_amount, symbol_code, symbol_precision
		FROM template_rates WHERE template_id = $1`, int32(id))
	rate, err := scanTemplate(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("get template %s: %w", id, err)
	}
	return rate, nil
}

func (s *TemplateStore) Put(ctx context.Context, rate *models.TemplateRate) error {
	_, err := q(ctx, s.db).ExecContext(ctx, `
		INSERT INTO template_rates (template_id, collection, hourly_rate_amount, symbol_code, symbol_precision)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (template_id) DO UPDATE SET
			collection = EXCLUDED.collection,
			hourly_rate_amount = EXCLUDED.hourly_rate_amount,
			symbol_code = EXCLUDED.symbol_code,
			symbol_precision = EXCLUDED.symbol_precision`,
		int32(rate.TemplateID), rate.Collection.String(),
		rate.HourlyRate.Amount, rate.HourlyRate.Symbol.Code, int16(rate.HourlyRate.Symbol.Precision))
	if err != nil {
		return fmt.Errorf("put template %s: %w", rate.TemplateID, err)
	}
	return nil
}

func (s *TemplateStore) Delete(ctx context.Context, id domain.TemplateID) error {
	res, err := q(ctx, s.db).ExecContext(ctx, `DELETE FROM template_rates WHERE template_id = $1`, int32(id))
	if err != nil {
		return fmt.Errorf("delete template %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *TemplateStore) List(ctx context.Context) ([]*models.TemplateRate, error) {
	rows, err := q(ctx, s.db).QueryContext(ctx, `
		SELECT template_id, collection, hourly_rate_amount, symbol_code, symbol_precision
		FROM template_rates ORDER BY template_id`)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	defer rows.Close()

	var out []*models.TemplateRate
	for rows.Next() {
		rate, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan template: %w", err)
		}
		out = append(out, rate)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTemplate(row rowScanner) (*models.TemplateRate, error) {
	var rate models.TemplateRate
	var templateID int32
	var collection, code string
	var precision int16
	if err := row.Scan(&templateID, &collection, &rate.HourlyRate.Amount, &code, &precision); err != nil {
		return nil, err
	}
	rate.TemplateID = domain.TemplateID(templateID)
	rate.Collection = domain.CollectionName(collection)
	rate.HourlyRate.Symbol = domain.Symbol{Code: code, Precision: uint8(precision)}
	return &rate, nil
}

// UserStore persists registered users. The rate ordering lives in the
// users_rate_idx index; ListByRate leans on it.
type UserStore struct {
	db *sql.DB
}

func (s *UserStore) Get(ctx context.Context, account domain.AccountName) (*models.User, error) {
	row := q(ctx, s.db).QueryRowContext(ctx, `
		SELECT account, hourly_rate_amount, symbol_code, symbol_precision
		FROM users WHERE account = $1`, account.String())
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("get user %s: %w", account, err)
	}
	return user, nil
}

func (s *UserStore) Create(ctx context.Context, user *models.User) error {
	_, err := q(ctx, s.db).ExecContext(ctx, `
		INSERT INTO users (account, hourly_rate_amount, symbol_code, symbol_precision)
		VALUES ($1, $2, $3, $4)`,
		user.Account.String(), user.HourlyRate.Amount,
		user.HourlyRate.Symbol.Code, int16(user.HourlyRate.Symbol.Precision))
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create user %s: %w", user.Account, err)
	}
	return nil
}

func (s *UserStore) UpdateRate(ctx context.Context, account domain.AccountName, rate domain.Asset) error {
	res, err := q(ctx, s.db).ExecContext(ctx, `
		UPDATE users SET hourly_rate_amount = $2, symbol_code = $3, symbol_precision = $4
		WHERE account = $1`,
		account.String(), rate.Amount, rate.Symbol.Code, int16(rate.Symbol.Precision))
	if err != nil {
		return fmt.Errorf("update user rate %s: %w", account, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *UserStore) Delete(ctx context.Context, account domain.AccountName) error {
	res, err := q(ctx, s.db).ExecContext(ctx, `DELETE FROM users WHERE account = $1`, account.String())
	if err != nil {
		return fmt.Errorf("delete user %s: %w", account, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *UserStore) ListByRate(ctx context.Context, limit int) ([]*models.User, error) {
	query := `
		SELECT account, hourly_rate_amount, symbol_code, symbol_precision
		FROM users ORDER BY hourly_rate_amount DESC, account`
	var rows *sql.Rows
	var err error
	if limit > 0 {
		rows, err = q(ctx, s.db).QueryContext(ctx, query+` LIMIT $1`, limit)
	} else {
		rows, err = q(ctx, s.db).QueryContext(ctx, query)
	}
	if err != nil {
		return nil, fmt.Errorf("list users by rate: %w", err)
	}
	defer rows.Close()

	var out []*models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		out = append(out, user)
	}
	return out, rows.Err()
}

func scanUser(row rowScanner) (*models.User, error) {
	var user models.User
	var account, code string
	var precision int16
	if err := row.Scan(&account, &user.HourlyRate.Amount, &code, &precision); err != nil {
		return nil, err
	}
	user.Account = domain.AccountName(account)
	user.HourlyRate.Symbol = domain.Symbol{Code: code, Precision: uint8(precision)}
	return &user, nil
}

// AssetStore persists staked assets.
type AssetStore struct {
	db *sql.DB
}

func (s *AssetStore) Get(ctx context.Context, id domain.AssetID) (*models.StakedAsset, error) {
	row := q(ctx, s.db).QueryRowContext(ctx, `
		SELECT asset_id, owner, last_claim FROM staked_assets WHERE asset_id = $1`, int64(id))
	asset, err := scanAsset(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("get asset %s: %w", id, err)
	}
	return asset, nil
}

func (s *AssetStore) Put(ctx context.Context, asset *models.StakedAsset) error {
	_, err := q(ctx, s.db).ExecContext(ctx, `
		INSERT INTO staked_assets (asset_id, owner, last_claim)
		VALUES ($1, $2, $3)
		ON CONFLICT (asset_id) DO UPDATE SET
			owner = EXCLUDED.owner,
			last_claim = EXCLUDED.last_claim`,
		int64(asset.AssetID), asset.Owner.String(), asset.LastClaim.UTC())
	if err != nil {
		return fmt.Errorf("put asset %s: %w", asset.AssetID, err)
	}
	return nil
}

func (s *AssetStore) Delete(ctx context.Context, id domain.AssetID) error {
	res, err := q(ctx, s.db).ExecContext(ctx, `DELETE FROM staked_assets WHERE asset_id = $1`, int64(id))
	if err != nil {
		return fmt.Errorf("delete asset %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *AssetStore) ListByOwner(ctx context.Context, owner domain.AccountName) ([]*models.StakedAsset, error) {
	rows, err := q(ctx, s.db).QueryContext(ctx, `
		SELECT asset_id, owner, last_claim FROM staked_assets
		WHERE owner = $1 ORDER BY asset_id`, owner.String())
	if err != nil {
		return nil, fmt.Errorf("list assets by owner %s: %w", owner, err)
	}
	defer rows.Close()

	var out []*models.StakedAsset
	for rows.Next() {
		asset, err := scanAsset(rows)
		if err != nil {
			return nil, fmt.Errorf("scan asset: %w", err)
		}
		out = append(out, asset)
	}
	return out, rows.Err()
}

func scanAsset(row rowScanner) (*models.StakedAsset, error) {
	var asset models.StakedAsset
	var assetID int64
	var owner string
	var lastClaim time.Time
	if err := row.Scan(&assetID, &owner, &lastClaim); err != nil {
		return nil, err
	}
	asset.AssetID = domain.AssetID(assetID)
	asset.Owner = domain.AccountName(owner)
	asset.LastClaim = lastClaim.UTC()
	return &asset, nil
}
