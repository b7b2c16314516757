package service

import (
	"context"
	"fmt"

	"journeylens/internal/model"
	"journeylens/internal/repository"
)

// AccountService serves the account list and the account timeline.
type AccountService struct {
	accounts     repository.AccountRepo
	interactions repository.InteractionRepo
	insights     repository.InsightRepo
}

func NewAccountService(
	accounts repository.AccountRepo,
	interactions repository.InteractionRepo,
	insights repository.InsightRepo,
) *AccountService {
	return &AccountService{
		accounts:     accounts,
		interactions: interactions,
		insights:     insights,
	}
}

// List returns every account sorted by name.
func (s *AccountService) List(ctx context.Context) ([]*model.Account, error) {
	return s.accounts.List(ctx)
}

// Get returns one account with its interactions, newest first, each joined
// to its insight.
func (s *AccountService) Get(ctx context.Context, id int64) (*model.AccountWithInsights, error) {
	account, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get account %d: %w", id, err)
	}
	if account == nil {
		return nil, ErrAccountNotFound
	}

	interactions, err := s.interactions.ListByAccount(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list interactions for account %d: %w", id, err)
	}
	if err := attachInsights(ctx, s.insights, interactions); err != nil {
		return nil, err
	}

	return &model.AccountWithInsights{
		Account:      *account,
		Interactions: interactions,
	}, nil
}

// attachInsights sets Insight on each interaction that has one.
func attachInsights(ctx context.Context, repo repository.InsightRepo, interactions []*model.Interaction) error {
	if len(interactions) == 0 {
		return nil
	}
	ids := make([]int64, len(interactions))
	byID := make(map[int64]*model.Interaction, len(interactions))
	for i, in := range interactions {
		ids[i] = in.ID
		byID[in.ID] = in
	}

	insights, err := repo.GetByInteractionIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("load insights: %w", err)
	}
	for _, in := range insights {
		if interaction, ok := byID[in.InteractionID]; ok {
			interaction.Insight = in
		}
	}
	return nil
}
