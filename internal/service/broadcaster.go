package service

import "journeylens/internal/model"

// Live event types pushed to WebSocket subscribers.
const (
	EventInsightCreated = "insight_created"
)

// Broadcaster interface for WebSocket broadcasting (avoids import cycle)
type Broadcaster interface {
	BroadcastToAccount(accountID int64, msgType string, payload any)
}

type nopBroadcaster struct{}

func (nopBroadcaster) BroadcastToAccount(int64, string, any) {}

var _ Broadcaster = nopBroadcaster{}

func insightEvent(account *model.Account, in *model.Insight) model.InsightEvent {
	return model.InsightEvent{
		AccountID:   account.ID,
		AccountName: account.Name,
		Insight:     in,
	}
}
