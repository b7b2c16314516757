package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"journeylens/internal/model"
)

func TestDashboardCSM(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	acme := f.account(t, "Acme")
	beta := f.account(t, "Beta")
	f.account(t, "No Activity")

	f.interact(t, acme.ID, churnText, day)
	f.interact(t, acme.ID, upgradeText, day.Add(2*time.Hour))
	f.interact(t, beta.ID, supportText, day.Add(time.Hour))

	rows, err := f.dashboard.CSM(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, beta.ID, rows[0].AccountID)
	assert.Equal(t, 0.55, rows[0].RiskScore)
	assert.Equal(t, "Escalate to technical support", rows[0].NextAction)

	assert.Equal(t, "Acme", rows[1].AccountName)
	assert.Equal(t, 0.5, rows[1].RiskScore)
	assert.Equal(t, 2, rows[1].RecentInteractions)
	require.NotNil(t, rows[1].LastInteraction)
	assert.True(t, day.Add(2*time.Hour).Equal(*rows[1].LastInteraction))
	// churn and upgrade tie; churn was seen first.
	assert.Equal(t, "Schedule immediate retention call", rows[1].NextAction)
}

func TestDashboardCSM_EqualRiskKeepsAccountIDOrder(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	zeta := f.account(t, "Zeta")
	alpha := f.account(t, "Alpha")
	f.interact(t, alpha.ID, supportText, day)
	f.interact(t, zeta.ID, supportText, day)

	rows, err := f.dashboard.CSM(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, rows[0].RiskScore, rows[1].RiskScore)
	assert.Equal(t, []int64{zeta.ID, alpha.ID}, []int64{rows[0].AccountID, rows[1].AccountID})
}

func TestDashboardCSM_CountsInteractionsWithoutInsights(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	acme := f.account(t, "Acme")
	f.interact(t, acme.ID, supportText, day)
	require.NoError(t, f.store.Interactions.Create(ctx, &model.Interaction{
		AccountID: acme.ID, Channel: "call", Content: "unanalyzed", Timestamp: day.Add(time.Hour),
	}))

	rows, err := f.dashboard.CSM(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 2, rows[0].RecentInteractions)
	assert.Equal(t, 0.55, rows[0].RiskScore)
}

func TestDashboardCSM_Empty(t *testing.T) {
	f := newFixture(t, nil)
	rows, err := f.dashboard.CSM(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestRiskBoard(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, &memoryDashboardCache{})
	acme := f.account(t, "Acme")
	beta := f.account(t, "Beta")
	gamma := f.account(t, "Gamma")
	f.interact(t, acme.ID, churnText, day)
	f.interact(t, beta.ID, upgradeText, day)
	f.interact(t, gamma.ID, supportText, day)

	top, err := f.dashboard.RiskBoard(ctx, 2)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, model.RiskEntry{AccountID: acme.ID, AccountName: "Acme", RiskScore: 0.95, Rank: 1}, top[0])
	assert.Equal(t, gamma.ID, top[1].AccountID)
	assert.Equal(t, 2, top[1].Rank)

	// Served from the cached rows on the second call.
	again, err := f.dashboard.RiskBoard(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, again, 1)

	all, err := f.dashboard.RiskBoard(ctx, 1000)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}
