package model

import "time"

// DemoUserID is recorded on every feedback entry until real users exist.
const DemoUserID = "demo-user"

type Feedback struct {
	ID         int64     `json:"id" bson:"_id"`
	InsightID  int64     `json:"insight_id" bson:"insightId"`
	UserID     string    `json:"user_id" bson:"userId"`
	Rating     bool      `json:"rating" bson:"rating"` // true = useful
	ReasonCode string    `json:"reason_code" bson:"reasonCode"`
	Comments   string    `json:"comments" bson:"comments"`
	CreatedAt  time.Time `json:"created_at" bson:"createdAt"`
	UpdatedAt  time.Time `json:"updated_at" bson:"updatedAt"`
}

// FeedbackCreate is the request body for POST /feedback.
type FeedbackCreate struct {
	InsightID  int64  `json:"insight_id"`
	Rating     bool   `json:"rating"`
	ReasonCode string `json:"reason_code"`
	Comments   string `json:"comments"`
}

// EvalSample is the labelled ground truth for one seeded interaction.
type EvalSample struct {
	ID                int64     `json:"id" bson:"_id"`
	InteractionID     int64     `json:"interaction_id" bson:"interactionId"`
	ExpectedIntent    string    `json:"expected_intent" bson:"expectedIntent"`
	ExpectedSentiment string    `json:"expected_sentiment" bson:"expectedSentiment"`
	ExpectedRisk      float64   `json:"expected_risk" bson:"expectedRisk"`
	CreatedAt         time.Time `json:"created_at" bson:"createdAt"`
}
