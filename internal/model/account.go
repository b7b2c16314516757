package model

import "time"

const AccountStatusActive = "active"

type Account struct {
	ID        int64     `json:"id" bson:"_id"`
	Name      string    `json:"name" bson:"name"`
	Industry  string    `json:"industry" bson:"industry"`
	Status    string    `json:"status" bson:"status"` // "active", "at_risk", "churned"
	CreatedAt time.Time `json:"created_at" bson:"createdAt"`
	UpdatedAt time.Time `json:"updated_at" bson:"updatedAt"`
}

type Contact struct {
	ID        int64     `json:"id" bson:"_id"`
	AccountID int64     `json:"account_id" bson:"accountId"`
	Name      string    `json:"name" bson:"name"`
	Email     string    `json:"email" bson:"email"`
	Role      string    `json:"role" bson:"role"`
	CreatedAt time.Time `json:"created_at" bson:"createdAt"`
	UpdatedAt time.Time `json:"updated_at" bson:"updatedAt"`
}

// AccountWithInsights is the account detail view: the account plus its
// interactions, newest first, each carrying its insight when one exists.
type AccountWithInsights struct {
	Account
	Interactions []*Interaction `json:"interactions"`
}
