package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"journeylens/internal/model"
)

func TestFeedbackSubmit(t *testing.T) {
	ctx := context.Background()
	c := &memoryDashboardCache{}
	f := newFixture(t, c)
	acme := f.account(t, "Acme")
	created := f.interact(t, acme.ID, supportText, day)
	invalidations := c.invalidations

	fb, err := f.feedback.Submit(ctx, model.FeedbackCreate{
		InsightID:  created.ID,
		Rating:     true,
		ReasonCode: "accurate",
		Comments:   "spot on",
	})
	require.NoError(t, err)
	assert.Positive(t, fb.ID)
	assert.Equal(t, model.DemoUserID, fb.UserID)
	assert.Equal(t, invalidations+1, c.invalidations)

	_, err = f.feedback.Submit(ctx, model.FeedbackCreate{InsightID: created.ID})
	assert.ErrorIs(t, err, ErrDuplicateFeedback)

	_, err = f.feedback.Submit(ctx, model.FeedbackCreate{InsightID: 404, Rating: true})
	assert.ErrorIs(t, err, ErrInvalidInsight)

	n, err := f.store.Feedback.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
