package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"journeylens/internal/model"
)

func TestNopDashboardCache(t *testing.T) {
	ctx := context.Background()
	c := NewNopDashboardCache()

	require.NoError(t, c.SetCSM(ctx, []model.DashboardAccount{{AccountID: 1}}))
	rows, err := c.GetCSM(ctx)
	require.NoError(t, err)
	assert.Nil(t, rows)

	require.NoError(t, c.SetMetrics(ctx, &model.EvaluationMetrics{TotalInsights: 3}))
	metrics, err := c.GetMetrics(ctx)
	require.NoError(t, err)
	assert.Nil(t, metrics)

	assert.NoError(t, c.Invalidate(ctx))
}

func TestNopRiskBoardCache(t *testing.T) {
	ctx := context.Background()
	c := NewNopRiskBoardCache()

	require.NoError(t, c.Update(ctx, []model.RiskEntry{{AccountID: 1, RiskScore: 0.9}}))
	top, err := c.Top(ctx, 5)
	require.NoError(t, err)
	assert.NotNil(t, top)
	assert.Empty(t, top)
	assert.NoError(t, c.Clear(ctx))
}

func TestNewClient_BadURL(t *testing.T) {
	_, err := NewClient(context.Background(), "not-a-redis-url")
	assert.Error(t, err)
}
