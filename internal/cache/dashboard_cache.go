package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"journeylens/internal/model"
)

// DashboardCache holds computed dashboard views between writes.
// Getters return (nil, nil) on a miss.
type DashboardCache interface {
	GetCSM(ctx context.Context) ([]model.DashboardAccount, error)
	SetCSM(ctx context.Context, rows []model.DashboardAccount) error
	GetMetrics(ctx context.Context) (*model.EvaluationMetrics, error)
	SetMetrics(ctx context.Context, metrics *model.EvaluationMetrics) error
	Invalidate(ctx context.Context) error
}

const (
	csmKey     = keyPrefix + "dashboard:csm"
	metricsKey = keyPrefix + "dashboard:metrics"
)

type dashboardCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewDashboardCache(client *redis.Client, ttl time.Duration) DashboardCache {
	return &dashboardCache{
		client: client,
		ttl:    ttl,
	}
}

func (c *dashboardCache) GetCSM(ctx context.Context) ([]model.DashboardAccount, error) {
	var rows []model.DashboardAccount
	found, err := c.get(ctx, csmKey, &rows)
	if err != nil || !found {
		return nil, err
	}
	if rows == nil {
		rows = []model.DashboardAccount{}
	}
	return rows, nil
}

func (c *dashboardCache) SetCSM(ctx context.Context, rows []model.DashboardAccount) error {
	return c.set(ctx, csmKey, rows)
}

func (c *dashboardCache) GetMetrics(ctx context.Context) (*model.EvaluationMetrics, error) {
	var metrics model.EvaluationMetrics
	found, err := c.get(ctx, metricsKey, &metrics)
	if err != nil || !found {
		return nil, err
	}
	return &metrics, nil
}

func (c *dashboardCache) SetMetrics(ctx context.Context, metrics *model.EvaluationMetrics) error {
	return c.set(ctx, metricsKey, metrics)
}

func (c *dashboardCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, csmKey, metricsKey).Err()
}

func (c *dashboardCache) get(ctx context.Context, key string, dst any) (bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, err
	}
	return true, nil
}

func (c *dashboardCache) set(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, data, c.ttl).Err()
}

type nopDashboardCache struct{}

// NewNopDashboardCache returns a cache that never stores anything.
func NewNopDashboardCache() DashboardCache { return nopDashboardCache{} }

func (nopDashboardCache) GetCSM(context.Context) ([]model.DashboardAccount, error) { return nil, nil }
func (nopDashboardCache) SetCSM(context.Context, []model.DashboardAccount) error   { return nil }
func (nopDashboardCache) GetMetrics(context.Context) (*model.EvaluationMetrics, error) {
	return nil, nil
}
func (nopDashboardCache) SetMetrics(context.Context, *model.EvaluationMetrics) error { return nil }
func (nopDashboardCache) Invalidate(context.Context) error                           { return nil }
