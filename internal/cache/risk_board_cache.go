package cache

import (
	"context"
	"strconv"

	"github.com/redis/go-redis/v9"

	"journeylens/internal/model"
)

// RiskBoardCache ranks accounts by average insight risk in a Redis ZSET.
type RiskBoardCache interface {
	// Update replaces the whole board.
	Update(ctx context.Context, entries []model.RiskEntry) error
	Top(ctx context.Context, limit int) ([]model.RiskEntry, error)
	Clear(ctx context.Context) error
}

const (
	riskBoardKey      = keyPrefix + "riskboard"
	riskBoardNamesKey = keyPrefix + "riskboard:names"
)

type riskBoardCache struct {
	client *redis.Client
}

func NewRiskBoardCache(client *redis.Client) RiskBoardCache {
	return &riskBoardCache{
		client: client,
	}
}

func (c *riskBoardCache) Update(ctx context.Context, entries []model.RiskEntry) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, riskBoardKey, riskBoardNamesKey)
		if len(entries) == 0 {
			return nil
		}
		members := make([]redis.Z, len(entries))
		names := make(map[string]any, len(entries))
		for i, e := range entries {
			id := strconv.FormatInt(e.AccountID, 10)
			members[i] = redis.Z{Score: e.RiskScore, Member: id}
			names[id] = e.AccountName
		}
		pipe.ZAdd(ctx, riskBoardKey, members...)
		pipe.HSet(ctx, riskBoardNamesKey, names)
		return nil
	})
	return err
}

func (c *riskBoardCache) Top(ctx context.Context, limit int) ([]model.RiskEntry, error) {
	results, err := c.client.ZRevRangeWithScores(ctx, riskBoardKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return []model.RiskEntry{}, nil
	}

	ids := make([]string, len(results))
	for i, z := range results {
		ids[i] = z.Member.(string)
	}
	names, err := c.client.HMGet(ctx, riskBoardNamesKey, ids...).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]model.RiskEntry, len(results))
	for i, z := range results {
		id, err := strconv.ParseInt(ids[i], 10, 64)
		if err != nil {
			return nil, err
		}
		name, _ := names[i].(string)
		entries[i] = model.RiskEntry{
			AccountID:   id,
			AccountName: name,
			RiskScore:   z.Score,
			Rank:        i + 1,
		}
	}
	return entries, nil
}

func (c *riskBoardCache) Clear(ctx context.Context) error {
	return c.client.Del(ctx, riskBoardKey, riskBoardNamesKey).Err()
}

type nopRiskBoardCache struct{}

// NewNopRiskBoardCache returns a board that is always empty.
func NewNopRiskBoardCache() RiskBoardCache { return nopRiskBoardCache{} }

func (nopRiskBoardCache) Update(context.Context, []model.RiskEntry) error { return nil }
func (nopRiskBoardCache) Top(context.Context, int) ([]model.RiskEntry, error) {
	return []model.RiskEntry{}, nil
}
func (nopRiskBoardCache) Clear(context.Context) error { return nil }
