// Package redisrank mirrors the users' aggregate rates into a Redis sorted
// set. The ledger stores stay authoritative; the mirror only accelerates
// rate-ordered enumeration across service instances.
package redisrank

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"stakeyard/pkg/domain"
)

const ratesKey = "stakeyard:rates"

// Entry is one leaderboard row.
type Entry struct {
	Account   domain.AccountName
	RateUnits int64
}

// Leaderboard is a ZSET of account -> aggregate hourly rate in base units.
type Leaderboard struct {
	client *redis.Client
}

func NewLeaderboard(client *redis.Client) *Leaderboard {
	return &Leaderboard{client: client}
}

// Set records the user's current aggregate rate.
func (l *Leaderboard) Set(ctx context.Context, account domain.AccountName, rateUnits int64) error {
	err := l.client.ZAdd(ctx, ratesKey, redis.Z{
		Score:  float64(rateUnits),
		Member: account.String(),
	}).Err()
	if err != nil {
		return fmt.Errorf("leaderboard set %s: %w", account, err)
	}
	return nil
}

// Remove drops the user from the leaderboard.
func (l *Leaderboard) Remove(ctx context.Context, account domain.AccountName) error {
	if err := l.client.ZRem(ctx, ratesKey, account.String()).Err(); err != nil {
		return fmt.Errorf("leaderboard remove %s: %w", account, err)
	}
	return nil
}

// Top returns the n highest-rate users, highest first.
func (l *Leaderboard) Top(ctx context.Context, n int64) ([]Entry, error) {
	zs, err := l.client.ZRevRangeWithScores(ctx, ratesKey, 0, n-1).Result()
	if err != nil {
		return nil, fmt.Errorf("leaderboard top: %w", err)
	}
	out := make([]Entry, 0, len(zs))
	for _, z := range zs {
		member, _ := z.Member.(string)
		out = append(out, Entry{
			Account:   domain.AccountName(member),
			RateUnits: int64(z.Score),
		})
	}
	return out, nil
}
