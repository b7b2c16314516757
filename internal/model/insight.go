package model

import (
	"time"

	"journeylens/internal/insight"
)

// Insight is the stored analysis of one interaction.
type Insight struct {
	ID            int64     `json:"id" bson:"_id"`
	InteractionID int64     `json:"interaction_id" bson:"interactionId"`
	Intent        string    `json:"intent" bson:"intent"`
	Sentiment     string    `json:"sentiment" bson:"sentiment"`
	RiskScore     float64   `json:"risk_score" bson:"riskScore"`
	Confidence    float64   `json:"confidence" bson:"confidence"`
	Summary       string    `json:"summary" bson:"summary"`
	Keywords      string    `json:"keywords" bson:"keywords"` // ", " joined
	CreatedAt     time.Time `json:"created_at" bson:"createdAt"`
	UpdatedAt     time.Time `json:"updated_at" bson:"updatedAt"`
}

// Snippet lets stored insights be ranked by insight.Answer.
func (i *Insight) Snippet() insight.Snippet {
	return insight.Snippet{
		Summary:   i.Summary,
		Intent:    i.Intent,
		Sentiment: i.Sentiment,
		RiskScore: i.RiskScore,
	}
}

// NewInsight builds an unsaved insight from an analysis result.
func NewInsight(interactionID int64, res insight.Result) *Insight {
	return &Insight{
		InteractionID: interactionID,
		Intent:        res.Intent,
		Sentiment:     res.Sentiment,
		RiskScore:     res.RiskScore,
		Confidence:    res.Confidence,
		Summary:       res.Summary,
		Keywords:      insight.FormatKeywords(res.Keywords),
	}
}

// RagResponse is returned by the account question endpoint.
type RagResponse struct {
	AccountID          int64      `json:"account_id"`
	Query              string     `json:"query"`
	Answer             string     `json:"answer"`
	SupportingInsights []*Insight `json:"supporting_insights"`
	Timestamp          time.Time  `json:"timestamp"`
}

// InsightEvent is pushed to live subscribers when an insight is created.
type InsightEvent struct {
	AccountID   int64    `json:"account_id"`
	AccountName string   `json:"account_name"`
	Insight     *Insight `json:"insight"`
}
