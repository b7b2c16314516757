package model

import "time"

const (
	TrendImproving      = "improving"
	TrendNeedsAttention = "needs_attention"
)

// DashboardAccount is one row of the CSM dashboard
type DashboardAccount struct {
	AccountID          int64      `json:"account_id"`
	AccountName        string     `json:"account_name"`
	RiskScore          float64    `json:"risk_score"` // mean insight risk, 2 decimals
	RecentInteractions int        `json:"recent_interactions"`
	LastInteraction    *time.Time `json:"last_interaction"`
	NextAction         string     `json:"next_action"`
}

// RiskEntry is a ranked position on the risk board
type RiskEntry struct {
	AccountID   int64   `json:"account_id"`
	AccountName string  `json:"account_name"`
	RiskScore   float64 `json:"risk_score"`
	Rank        int     `json:"rank"`
}

type EvaluationMetrics struct {
	AICoverage        float64 `json:"ai_coverage"`   // % of interactions with an insight
	FeedbackRate      float64 `json:"feedback_rate"` // % of insights with feedback
	UsefulRate        float64 `json:"useful_rate"`   // % of feedback rated useful
	TotalInsights     int64   `json:"total_insights"`
	AvgConfidence     float64 `json:"avg_confidence"`
	IntentAccuracy    float64 `json:"intent_accuracy"`
	SentimentAccuracy float64 `json:"sentiment_accuracy"`
	EvalSamples       int     `json:"eval_samples"`
	PerformanceTrend  string  `json:"performance_trend"`
}
