package service

import (
	"context"
	"fmt"
	"log/slog"

	"journeylens/internal/cache"
	"journeylens/internal/insight"
	"journeylens/internal/model"
	"journeylens/internal/repository"
)

// usefulThreshold is the useful_rate (percent) at which the trend counts as
// improving.
const usefulThreshold = 50.0

// EvaluationService reports coverage, feedback and rule accuracy figures.
type EvaluationService struct {
	interactions repository.InteractionRepo
	insights     repository.InsightRepo
	feedback     repository.FeedbackRepo
	samples      repository.EvalSampleRepo
	engine       *insight.Engine
	cache        cache.DashboardCache
	logger       *slog.Logger
}

func NewEvaluationService(
	interactions repository.InteractionRepo,
	insights repository.InsightRepo,
	feedback repository.FeedbackRepo,
	samples repository.EvalSampleRepo,
	engine *insight.Engine,
	dashboardCache cache.DashboardCache,
	logger *slog.Logger,
) *EvaluationService {
	return &EvaluationService{
		interactions: interactions,
		insights:     insights,
		feedback:     feedback,
		samples:      samples,
		engine:       engine,
		cache:        dashboardCache,
		logger:       logger,
	}
}

func (s *EvaluationService) Metrics(ctx context.Context) (*model.EvaluationMetrics, error) {
	if cached, err := s.cache.GetMetrics(ctx); err != nil {
		s.logger.WarnContext(ctx, "metrics cache read failed", "error", err)
	} else if cached != nil {
		return cached, nil
	}

	metrics, err := s.compute(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.cache.SetMetrics(ctx, metrics); err != nil {
		s.logger.WarnContext(ctx, "metrics cache write failed", "error", err)
	}
	return metrics, nil
}

func (s *EvaluationService) compute(ctx context.Context) (*model.EvaluationMetrics, error) {
	interactions, err := s.interactions.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list interactions: %w", err)
	}
	insights, err := s.insights.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list insights: %w", err)
	}
	totalFeedback, err := s.feedback.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count feedback: %w", err)
	}
	positive, err := s.feedback.CountPositive(ctx)
	if err != nil {
		return nil, fmt.Errorf("count positive feedback: %w", err)
	}
	samples, err := s.samples.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list eval samples: %w", err)
	}

	var confidenceSum float64
	for _, in := range insights {
		confidenceSum += in.Confidence
	}

	content := make(map[int64]string, len(interactions))
	for _, in := range interactions {
		content[in.ID] = in.Content
	}
	var evaluated, intentHits, sentimentHits int
	for _, sample := range samples {
		text, ok := content[sample.InteractionID]
		if !ok {
			continue
		}
		evaluated++
		res := s.engine.Heuristic(text)
		if res.Intent == sample.ExpectedIntent {
			intentHits++
		}
		if res.Sentiment == sample.ExpectedSentiment {
			sentimentHits++
		}
	}

	totalInsights := int64(len(insights))
	metrics := &model.EvaluationMetrics{
		AICoverage:        percent(totalInsights, int64(len(interactions))),
		FeedbackRate:      percent(totalFeedback, totalInsights),
		UsefulRate:        percent(positive, totalFeedback),
		TotalInsights:     totalInsights,
		IntentAccuracy:    percent(int64(intentHits), int64(evaluated)),
		SentimentAccuracy: percent(int64(sentimentHits), int64(evaluated)),
		EvalSamples:       evaluated,
		PerformanceTrend:  model.TrendImproving,
	}
	if totalInsights > 0 {
		metrics.AvgConfidence = round(confidenceSum/float64(totalInsights), 2)
	}
	if totalFeedback > 0 && metrics.UsefulRate < usefulThreshold {
		metrics.PerformanceTrend = model.TrendNeedsAttention
	}
	return metrics, nil
}

// percent returns part/whole*100 rounded to one decimal, or 0 when whole is 0.
func percent(part, whole int64) float64 {
	if whole == 0 {
		return 0
	}
	return round(float64(part)/float64(whole)*100, 1)
}
