package service

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"journeylens/internal/cache"
	"journeylens/internal/insight"
	"journeylens/internal/model"
	"journeylens/internal/repository"
)

type recordedEvent struct {
	accountID int64
	msgType   string
	payload   any
}

type recordingBroadcaster struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (b *recordingBroadcaster) BroadcastToAccount(accountID int64, msgType string, payload any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, recordedEvent{accountID, msgType, payload})
}

// memoryDashboardCache keeps the last written views so tests can observe
// hits and invalidations without Redis.
type memoryDashboardCache struct {
	mu            sync.Mutex
	csm           []model.DashboardAccount
	metrics       *model.EvaluationMetrics
	invalidations int
}

func (c *memoryDashboardCache) GetCSM(context.Context) ([]model.DashboardAccount, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.csm, nil
}

func (c *memoryDashboardCache) SetCSM(_ context.Context, rows []model.DashboardAccount) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.csm = rows
	return nil
}

func (c *memoryDashboardCache) GetMetrics(context.Context) (*model.EvaluationMetrics, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.metrics, nil
}

func (c *memoryDashboardCache) SetMetrics(_ context.Context, m *model.EvaluationMetrics) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.metrics = m
	return nil
}

func (c *memoryDashboardCache) Invalidate(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.csm, c.metrics = nil, nil
	c.invalidations++
	return nil
}

type fixture struct {
	store       *repository.Store
	engine      *insight.Engine
	cache       cache.DashboardCache
	broadcaster *recordingBroadcaster
	logger      *slog.Logger

	accounts   *AccountService
	insights   *InsightService
	dashboard  *DashboardService
	feedback   *FeedbackService
	evaluation *EvaluationService
}

func newFixture(t *testing.T, dashboardCache cache.DashboardCache) *fixture {
	t.Helper()
	if dashboardCache == nil {
		dashboardCache = cache.NewNopDashboardCache()
	}
	store := repository.NewMemoryStore()
	engine := insight.NewEngine(nil, nil)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	broadcaster := &recordingBroadcaster{}

	insights := NewInsightService(store.Accounts, store.Interactions, store.Insights, engine, dashboardCache, logger)
	insights.SetBroadcaster(broadcaster)

	return &fixture{
		store:       store,
		engine:      engine,
		cache:       dashboardCache,
		broadcaster: broadcaster,
		logger:      logger,
		accounts:    NewAccountService(store.Accounts, store.Interactions, store.Insights),
		insights:    insights,
		dashboard: NewDashboardService(store.Accounts, store.Interactions, store.Insights, engine,
			dashboardCache, cache.NewNopRiskBoardCache(), logger),
		feedback: NewFeedbackService(store.Insights, store.Feedback, dashboardCache, logger),
		evaluation: NewEvaluationService(store.Interactions, store.Insights, store.Feedback, store.EvalSamples,
			engine, dashboardCache, logger),
	}
}

func (f *fixture) account(t *testing.T, name string) *model.Account {
	t.Helper()
	account := &model.Account{Name: name, Status: model.AccountStatusActive}
	require.NoError(t, f.store.Accounts.Create(context.Background(), account))
	return account
}

func (f *fixture) interact(t *testing.T, accountID int64, content string, at time.Time) *model.Insight {
	t.Helper()
	created, err := f.insights.CreateInteraction(context.Background(), model.InteractionCreate{
		AccountID: accountID,
		Content:   content,
		Timestamp: &at,
	})
	require.NoError(t, err)
	return created
}

var day = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

const (
	churnText   = "We want to cancel. The team is frustrated with the rollout."
	upgradeText = "We are happy with the product and want to upgrade next quarter."
	supportText = "Need help with a billing question."
)
