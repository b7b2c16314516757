package service

import (
	"context"
	"fmt"
	"log/slog"

	"journeylens/internal/cache"
	"journeylens/internal/model"
	"journeylens/internal/repository"
)

// FeedbackService records whether users found an insight useful.
type FeedbackService struct {
	insights repository.InsightRepo
	feedback repository.FeedbackRepo
	cache    cache.DashboardCache
	logger   *slog.Logger
}

func NewFeedbackService(
	insights repository.InsightRepo,
	feedback repository.FeedbackRepo,
	dashboardCache cache.DashboardCache,
	logger *slog.Logger,
) *FeedbackService {
	return &FeedbackService{
		insights: insights,
		feedback: feedback,
		cache:    dashboardCache,
		logger:   logger,
	}
}

// Submit stores feedback from the demo user. Each user rates an insight once.
func (s *FeedbackService) Submit(ctx context.Context, req model.FeedbackCreate) (*model.Feedback, error) {
	target, err := s.insights.GetByID(ctx, req.InsightID)
	if err != nil {
		return nil, fmt.Errorf("get insight %d: %w", req.InsightID, err)
	}
	if target == nil {
		return nil, ErrInvalidInsight
	}

	feedback := &model.Feedback{
		InsightID:  req.InsightID,
		UserID:     model.DemoUserID,
		Rating:     req.Rating,
		ReasonCode: req.ReasonCode,
		Comments:   req.Comments,
	}
	if err := s.feedback.Create(ctx, feedback); err != nil {
		if isDuplicate(err) {
			return nil, ErrDuplicateFeedback
		}
		return nil, fmt.Errorf("create feedback: %w", err)
	}

	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.WarnContext(ctx, "dashboard cache invalidation failed", "error", err)
	}
	return feedback, nil
}
