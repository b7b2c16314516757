package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"journeylens/internal/cache"
	"journeylens/internal/insight"
	"journeylens/internal/model"
	"journeylens/internal/repository"
)

const (
	DefaultRecentLimit = 10
	MaxListLimit       = 50
)

// InsightService analyzes new interactions and answers questions over the
// insights already stored for an account.
type InsightService struct {
	accounts     repository.AccountRepo
	interactions repository.InteractionRepo
	insights     repository.InsightRepo
	engine       *insight.Engine
	dashboard    cache.DashboardCache
	broadcaster  Broadcaster
	logger       *slog.Logger
	now          func() time.Time
}

func NewInsightService(
	accounts repository.AccountRepo,
	interactions repository.InteractionRepo,
	insights repository.InsightRepo,
	engine *insight.Engine,
	dashboard cache.DashboardCache,
	logger *slog.Logger,
) *InsightService {
	return &InsightService{
		accounts:     accounts,
		interactions: interactions,
		insights:     insights,
		engine:       engine,
		dashboard:    dashboard,
		broadcaster:  nopBroadcaster{},
		logger:       logger,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// SetBroadcaster sets the WebSocket broadcaster
func (s *InsightService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// CreateInteraction stores an interaction, analyzes it and stores the
// resulting insight. Only a zero-length content is rejected; blank text is
// analyzed and gets the summary fallback. The summary is written to the
// interaction before the insight, and the two writes are not atomic.
func (s *InsightService) CreateInteraction(ctx context.Context, req model.InteractionCreate) (*model.Insight, error) {
	if req.Content == "" {
		return nil, ErrEmptyContent
	}
	account, err := s.accounts.GetByID(ctx, req.AccountID)
	if err != nil {
		return nil, fmt.Errorf("get account %d: %w", req.AccountID, err)
	}
	if account == nil {
		return nil, ErrInvalidAccount
	}

	interaction := &model.Interaction{
		AccountID: req.AccountID,
		ContactID: req.ContactID,
		Channel:   orDefault(req.Channel, model.DefaultChannel),
		Content:   req.Content,
		Timestamp: s.now(),
	}
	if req.Timestamp != nil {
		interaction.Timestamp = req.Timestamp.UTC()
	}
	if err := s.interactions.Create(ctx, interaction); err != nil {
		return nil, fmt.Errorf("create interaction: %w", err)
	}

	result := s.engine.Analyze(interaction.ID, interaction.Content)
	if err := s.interactions.UpdateSummary(ctx, interaction.ID, result.Summary); err != nil {
		return nil, fmt.Errorf("store summary for interaction %d: %w", interaction.ID, err)
	}
	created := model.NewInsight(interaction.ID, result)
	if err := s.insights.Create(ctx, created); err != nil {
		return nil, fmt.Errorf("create insight for interaction %d: %w", interaction.ID, err)
	}

	if err := s.dashboard.Invalidate(ctx); err != nil {
		s.logger.WarnContext(ctx, "dashboard cache invalidation failed", "error", err)
	}
	s.broadcaster.BroadcastToAccount(account.ID, EventInsightCreated, insightEvent(account, created))

	s.logger.InfoContext(ctx, "insight created",
		"account_id", account.ID,
		"interaction_id", interaction.ID,
		"intent", created.Intent,
		"risk_score", created.RiskScore,
	)
	return created, nil
}

// Recent returns the newest insights. limit is clamped to [1, MaxListLimit].
func (s *InsightService) Recent(ctx context.Context, limit int) ([]*model.Insight, error) {
	return s.insights.Recent(ctx, clampLimit(limit))
}

// Ask ranks the account's insights against query and composes an answer.
func (s *InsightService) Ask(ctx context.Context, accountID int64, query string) (*model.RagResponse, error) {
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("get account %d: %w", accountID, err)
	}
	if account == nil {
		return nil, ErrAccountNotFound
	}

	candidates, err := s.accountInsights(ctx, accountID)
	if err != nil {
		return nil, err
	}
	answer, supporting := insight.Answer(s.engine, query, candidates)

	return &model.RagResponse{
		AccountID:          accountID,
		Query:              query,
		Answer:             answer,
		SupportingInsights: supporting,
		Timestamp:          s.now(),
	}, nil
}

func (s *InsightService) accountInsights(ctx context.Context, accountID int64) ([]*model.Insight, error) {
	interactions, err := s.interactions.ListByAccount(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("list interactions for account %d: %w", accountID, err)
	}
	if len(interactions) == 0 {
		return nil, nil
	}
	ids := make([]int64, len(interactions))
	for i, in := range interactions {
		ids[i] = in.ID
	}
	insights, err := s.insights.GetByInteractionIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load insights for account %d: %w", accountID, err)
	}
	return insights, nil
}

func clampLimit(limit int) int {
	return max(1, min(limit, MaxListLimit))
}

func orDefault(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}

// isDuplicate reports whether err came from a uniqueness violation.
func isDuplicate(err error) bool {
	return errors.Is(err, repository.ErrDuplicate)
}
