package service

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"time"

	"journeylens/internal/cache"
	"journeylens/internal/insight"
	"journeylens/internal/model"
	"journeylens/internal/repository"
)

const DefaultRiskBoardLimit = 5

// DashboardService aggregates insights per account for customer success
// managers.
type DashboardService struct {
	accounts     repository.AccountRepo
	interactions repository.InteractionRepo
	insights     repository.InsightRepo
	engine       *insight.Engine
	cache        cache.DashboardCache
	board        cache.RiskBoardCache
	logger       *slog.Logger
}

func NewDashboardService(
	accounts repository.AccountRepo,
	interactions repository.InteractionRepo,
	insights repository.InsightRepo,
	engine *insight.Engine,
	dashboardCache cache.DashboardCache,
	board cache.RiskBoardCache,
	logger *slog.Logger,
) *DashboardService {
	return &DashboardService{
		accounts:     accounts,
		interactions: interactions,
		insights:     insights,
		engine:       engine,
		cache:        dashboardCache,
		board:        board,
		logger:       logger,
	}
}

// CSM returns one row per account that has at least one insight, highest
// average risk first.
func (s *DashboardService) CSM(ctx context.Context) ([]model.DashboardAccount, error) {
	rows, _, err := s.csm(ctx)
	return rows, err
}

// RiskBoard returns the top accounts by average risk. limit is clamped to
// [1, MaxListLimit]. The board is rebuilt whenever the CSM rows are.
func (s *DashboardService) RiskBoard(ctx context.Context, limit int) ([]model.RiskEntry, error) {
	limit = clampLimit(limit)

	rows, cached, err := s.csm(ctx)
	if err != nil {
		return nil, err
	}
	if !cached {
		return riskEntries(rows, limit), nil
	}

	entries, err := s.board.Top(ctx, limit)
	if err != nil {
		s.logger.WarnContext(ctx, "risk board read failed", "error", err)
	} else if len(entries) > 0 {
		return entries, nil
	}
	return riskEntries(rows, limit), nil
}

func (s *DashboardService) csm(ctx context.Context) ([]model.DashboardAccount, bool, error) {
	if rows, err := s.cache.GetCSM(ctx); err != nil {
		s.logger.WarnContext(ctx, "dashboard cache read failed", "error", err)
	} else if rows != nil {
		return rows, true, nil
	}

	rows, err := s.buildCSM(ctx)
	if err != nil {
		return nil, false, err
	}

	if err := s.cache.SetCSM(ctx, rows); err != nil {
		s.logger.WarnContext(ctx, "dashboard cache write failed", "error", err)
	}
	if err := s.board.Update(ctx, riskEntries(rows, len(rows))); err != nil {
		s.logger.WarnContext(ctx, "risk board update failed", "error", err)
	}
	return rows, false, nil
}

type accountAggregate struct {
	interactions int
	last         time.Time
	riskSum      float64
	insights     int
	intentCounts map[string]int
	intentOrder  []string
}

func (s *DashboardService) buildCSM(ctx context.Context) ([]model.DashboardAccount, error) {
	accounts, err := s.accounts.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	interactions, err := s.interactions.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list interactions: %w", err)
	}
	insights, err := s.insights.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list insights: %w", err)
	}

	insightByInteraction := make(map[int64]*model.Insight, len(insights))
	for _, in := range insights {
		insightByInteraction[in.InteractionID] = in
	}

	// Interactions arrive in id order, which fixes the dominant-intent tie-break.
	aggregates := make(map[int64]*accountAggregate)
	for _, interaction := range interactions {
		agg := aggregates[interaction.AccountID]
		if agg == nil {
			agg = &accountAggregate{intentCounts: make(map[string]int)}
			aggregates[interaction.AccountID] = agg
		}
		agg.interactions++
		if interaction.Timestamp.After(agg.last) {
			agg.last = interaction.Timestamp
		}

		in, ok := insightByInteraction[interaction.ID]
		if !ok {
			continue
		}
		agg.insights++
		agg.riskSum += in.RiskScore
		if agg.intentCounts[in.Intent] == 0 {
			agg.intentOrder = append(agg.intentOrder, in.Intent)
		}
		agg.intentCounts[in.Intent]++
	}

	// Rows start in account id order; the stable risk sort keeps it for ties.
	slices.SortFunc(accounts, func(a, b *model.Account) int { return cmp.Compare(a.ID, b.ID) })
	rows := []model.DashboardAccount{}
	for _, account := range accounts {
		agg := aggregates[account.ID]
		if agg == nil || agg.insights == 0 {
			continue
		}
		last := agg.last
		rows = append(rows, model.DashboardAccount{
			AccountID:          account.ID,
			AccountName:        account.Name,
			RiskScore:          round(agg.riskSum/float64(agg.insights), 2),
			RecentInteractions: agg.interactions,
			LastInteraction:    &last,
			NextAction:         s.engine.NextAction(agg.dominantIntent()),
		})
	}

	slices.SortStableFunc(rows, func(a, b model.DashboardAccount) int {
		switch {
		case a.RiskScore > b.RiskScore:
			return -1
		case a.RiskScore < b.RiskScore:
			return 1
		default:
			return 0
		}
	})
	return rows, nil
}

func (a *accountAggregate) dominantIntent() string {
	best := ""
	for _, intent := range a.intentOrder {
		if best == "" || a.intentCounts[intent] > a.intentCounts[best] {
			best = intent
		}
	}
	return best
}

func riskEntries(rows []model.DashboardAccount, limit int) []model.RiskEntry {
	entries := make([]model.RiskEntry, 0, min(limit, len(rows)))
	for i, row := range rows {
		if i == limit {
			break
		}
		entries = append(entries, model.RiskEntry{
			AccountID:   row.AccountID,
			AccountName: row.AccountName,
			RiskScore:   row.RiskScore,
			Rank:        i + 1,
		})
	}
	return entries
}

func round(x float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(x*p) / p
}
