package service

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"

	"golang.org/x/sync/errgroup"

	"journeylens/internal/cache"
	"journeylens/internal/insight"
	"journeylens/internal/model"
	"journeylens/internal/repository"
	"journeylens/internal/seed"
)

const defaultSeedWorkers = 4

// SeedResult counts what a seed run wrote, or would write on a dry run.
type SeedResult struct {
	Skipped      bool `json:"skipped"`
	DryRun       bool `json:"dry_run"`
	Accounts     int  `json:"accounts"`
	Contacts     int  `json:"contacts"`
	Interactions int  `json:"interactions"`
	Insights     int  `json:"insights"`
	EvalSamples  int  `json:"eval_samples"`
}

// SeedService loads the demo CSV files into an empty store.
type SeedService struct {
	store     *repository.Store
	rules     *insight.Rules
	dashboard cache.DashboardCache
	board     cache.RiskBoardCache
	logger    *slog.Logger
	workers   int
}

func NewSeedService(
	store *repository.Store,
	rules *insight.Rules,
	dashboard cache.DashboardCache,
	board cache.RiskBoardCache,
	logger *slog.Logger,
) *SeedService {
	return &SeedService{
		store:     store,
		rules:     rules,
		dashboard: dashboard,
		board:     board,
		logger:    logger,
		workers:   defaultSeedWorkers,
	}
}

// SetWorkers bounds how many interactions are analyzed at once.
func (s *SeedService) SetWorkers(n int) {
	s.workers = max(1, n)
}

type dataset struct {
	accounts     []*model.Account
	contacts     []*model.Contact
	interactions []*model.Interaction
	expected     map[int64]insight.Expected
}

// Seed loads files into the store unless it already holds accounts. A dry run
// parses every file and reports counts without writing.
func (s *SeedService) Seed(ctx context.Context, files seed.Files, dryRun bool) (*SeedResult, error) {
	existing, err := s.store.Accounts.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count accounts: %w", err)
	}
	if existing > 0 {
		s.logger.InfoContext(ctx, "store already seeded, skipping", "accounts", existing)
		return &SeedResult{Skipped: true, DryRun: dryRun}, nil
	}

	data, err := load(files)
	if err != nil {
		return nil, err
	}
	samples := evalSamples(data)

	result := &SeedResult{
		DryRun:       dryRun,
		Accounts:     len(data.accounts),
		Contacts:     len(data.contacts),
		Interactions: len(data.interactions),
		Insights:     len(data.interactions),
		EvalSamples:  len(samples),
	}
	if dryRun {
		return result, nil
	}

	for _, account := range data.accounts {
		if err := s.store.Accounts.Create(ctx, account); err != nil {
			return nil, fmt.Errorf("seed account %d: %w", account.ID, err)
		}
	}
	for _, contact := range data.contacts {
		if err := s.store.Contacts.Create(ctx, contact); err != nil {
			return nil, fmt.Errorf("seed contact %d: %w", contact.ID, err)
		}
	}
	for _, interaction := range data.interactions {
		if err := s.store.Interactions.Create(ctx, interaction); err != nil {
			return nil, fmt.Errorf("seed interaction %d: %w", interaction.ID, err)
		}
	}

	engine := insight.NewEngine(s.rules, data.expected)
	if err := s.analyzeAll(ctx, engine, data.interactions); err != nil {
		return nil, err
	}

	for _, sample := range samples {
		if err := s.store.EvalSamples.Create(ctx, sample); err != nil {
			return nil, fmt.Errorf("seed eval sample for interaction %d: %w", sample.InteractionID, err)
		}
	}

	if err := s.dashboard.Invalidate(ctx); err != nil {
		s.logger.WarnContext(ctx, "dashboard cache invalidation failed", "error", err)
	}
	if err := s.board.Clear(ctx); err != nil {
		s.logger.WarnContext(ctx, "risk board clear failed", "error", err)
	}

	s.logger.InfoContext(ctx, "demo data seeded",
		"accounts", result.Accounts,
		"contacts", result.Contacts,
		"interactions", result.Interactions,
		"eval_samples", result.EvalSamples,
	)
	return result, nil
}

// SeedPreview is the analysis one demo interaction would receive.
type SeedPreview struct {
	InteractionID int64    `json:"interaction_id"`
	AccountID     int64    `json:"account_id"`
	Intent        string   `json:"intent"`
	Sentiment     string   `json:"sentiment"`
	RiskScore     float64  `json:"risk_score"`
	Confidence    float64  `json:"confidence"`
	Summary       string   `json:"summary"`
	Keywords      []string `json:"keywords"`
	Seeded        bool     `json:"seeded"` // labels came from the expected-insights file
}

// Preview analyzes every demo interaction without touching the store.
func (s *SeedService) Preview(ctx context.Context, files seed.Files) ([]SeedPreview, error) {
	data, err := load(files)
	if err != nil {
		return nil, err
	}
	engine := insight.NewEngine(s.rules, data.expected)

	out := make([]SeedPreview, len(data.interactions))
	for i, interaction := range data.interactions {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res := engine.Analyze(interaction.ID, interaction.Content)
		_, seeded := data.expected[interaction.ID]
		out[i] = SeedPreview{
			InteractionID: interaction.ID,
			AccountID:     interaction.AccountID,
			Intent:        res.Intent,
			Sentiment:     res.Sentiment,
			RiskScore:     res.RiskScore,
			Confidence:    res.Confidence,
			Summary:       res.Summary,
			Keywords:      res.Keywords,
			Seeded:        seeded,
		}
	}
	return out, nil
}

// analyzeAll runs the engine on a bounded pool, then writes summaries and
// insights in interaction order so ids and created_at follow the CSV.
func (s *SeedService) analyzeAll(ctx context.Context, engine *insight.Engine, interactions []*model.Interaction) error {
	results := make([]insight.Result, len(interactions))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, interaction := range interactions {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = engine.Analyze(interaction.ID, interaction.Content)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i, interaction := range interactions {
		if err := s.store.Interactions.UpdateSummary(ctx, interaction.ID, results[i].Summary); err != nil {
			return fmt.Errorf("store summary for interaction %d: %w", interaction.ID, err)
		}
		if err := s.store.Insights.Create(ctx, model.NewInsight(interaction.ID, results[i])); err != nil {
			return fmt.Errorf("seed insight for interaction %d: %w", interaction.ID, err)
		}
	}
	return nil
}

func load(files seed.Files) (*dataset, error) {
	expected, err := seed.LoadExpected(files.Expected)
	if err != nil {
		return nil, err
	}
	accounts, err := seed.LoadAccounts(files.Accounts)
	if err != nil {
		return nil, err
	}
	contacts, err := seed.LoadContacts(files.Contacts)
	if err != nil {
		return nil, err
	}
	interactions, err := seed.LoadInteractions(files.Interactions)
	if err != nil {
		return nil, err
	}
	return &dataset{
		accounts:     accounts,
		contacts:     contacts,
		interactions: interactions,
		expected:     expected,
	}, nil
}

// evalSamples turns every expected row into a sample, ordered by
// interaction id. Rows naming an unknown interaction are kept; metrics skip
// them.
func evalSamples(data *dataset) []*model.EvalSample {
	samples := make([]*model.EvalSample, 0, len(data.expected))
	for id, exp := range data.expected {
		samples = append(samples, &model.EvalSample{
			InteractionID:     id,
			ExpectedIntent:    exp.Intent,
			ExpectedSentiment: exp.Sentiment,
			ExpectedRisk:      exp.RiskScore,
		})
	}
	slices.SortFunc(samples, func(a, b *model.EvalSample) int {
		return cmp.Compare(a.InteractionID, b.InteractionID)
	})
	return samples
}
