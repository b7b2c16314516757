package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"journeylens/internal/model"
)

// Fixed-width UTC layout so TEXT columns sort chronologically.
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS accounts (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		industry TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'active',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS ix_accounts_name ON accounts(name)`,
	`CREATE TABLE IF NOT EXISTS contacts (
		id INTEGER PRIMARY KEY,
		account_id INTEGER NOT NULL REFERENCES accounts(id),
		name TEXT NOT NULL,
		email TEXT NOT NULL DEFAULT '',
		role TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS ix_contacts_account_id ON contacts(account_id)`,
	`CREATE TABLE IF NOT EXISTS interactions (
		id INTEGER PRIMARY KEY,
		account_id INTEGER NOT NULL REFERENCES accounts(id),
		contact_id INTEGER REFERENCES contacts(id),
		channel TEXT NOT NULL,
		content TEXT NOT NULL,
		summary TEXT NOT NULL DEFAULT '',
		timestamp TEXT NOT NULL,
		source_file TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS ix_interactions_account_id ON interactions(account_id)`,
	`CREATE TABLE IF NOT EXISTS insights (
		id INTEGER PRIMARY KEY,
		interaction_id INTEGER NOT NULL UNIQUE REFERENCES interactions(id),
		intent TEXT NOT NULL,
		sentiment TEXT NOT NULL,
		risk_score REAL NOT NULL,
		confidence REAL NOT NULL DEFAULT 0.5,
		summary TEXT NOT NULL,
		keywords TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS ix_insights_created_at ON insights(created_at)`,
	`CREATE TABLE IF NOT EXISTS feedback (
		id INTEGER PRIMARY KEY,
		insight_id INTEGER NOT NULL REFERENCES insights(id),
		user_id TEXT NOT NULL,
		rating INTEGER NOT NULL,
		reason_code TEXT NOT NULL DEFAULT '',
		comments TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		CONSTRAINT uq_feedback_per_user UNIQUE (insight_id, user_id)
	)`,
	`CREATE TABLE IF NOT EXISTS eval_samples (
		id INTEGER PRIMARY KEY,
		interaction_id INTEGER NOT NULL UNIQUE REFERENCES interactions(id),
		expected_intent TEXT NOT NULL,
		expected_sentiment TEXT NOT NULL,
		expected_risk REAL NOT NULL,
		created_at TEXT NOT NULL
	)`,
}

// OpenSQLite opens (creating when needed) the database file at path and
// applies the schema.
func OpenSQLite(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// One writer keeps SQLITE_BUSY out of concurrent seeding.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	for _, stmt := range sqliteSchema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply schema: %w", err)
		}
	}

	return &Store{
		Accounts:     &sqlAccountRepo{db},
		Contacts:     &sqlContactRepo{db},
		Interactions: &sqlInteractionRepo{db},
		Insights:     &sqlInsightRepo{db},
		Feedback:     &sqlFeedbackRepo{db},
		EvalSamples:  &sqlEvalSampleRepo{db},
		close:        func(context.Context) error { return db.Close() },
	}, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(sqliteTimeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(sqliteTimeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse stored time %q: %w", s, err)
	}
	return t, nil
}

// nullableID maps 0 to NULL so a zero id lets SQLite pick the rowid.
func nullableID(id int64) any {
	if id <= 0 {
		return nil
	}
	return id
}

func mapSQLiteErr(err error) error {
	var se *sqlite.Error
	if errors.As(err, &se) {
		switch se.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return fmt.Errorf("%w: %s", ErrDuplicate, se.Error())
		}
	}
	if err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return fmt.Errorf("%w: %s", ErrDuplicate, err.Error())
	}
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanTimes scans into dest, then parses the trailing TEXT timestamps.
func scanTimes(row rowScanner, dest []any, times ...*time.Time) error {
	raw := make([]string, len(times))
	for i := range raw {
		dest = append(dest, &raw[i])
	}
	if err := row.Scan(dest...); err != nil {
		return err
	}
	for i, s := range raw {
		t, err := parseTime(s)
		if err != nil {
			return err
		}
		*times[i] = t
	}
	return nil
}

func queryAll[T any](ctx context.Context, db *sql.DB, scan func(rowScanner) (*T, error), query string, args ...any) ([]*T, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*T{}
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

func queryOne[T any](ctx context.Context, db *sql.DB, scan func(rowScanner) (*T, error), query string, args ...any) (*T, error) {
	item, err := scan(db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return item, err
}

func count(ctx context.Context, db *sql.DB, query string, args ...any) (int64, error) {
	var n int64
	err := db.QueryRowContext(ctx, query, args...).Scan(&n)
	return n, err
}

type sqlAccountRepo struct{ db *sql.DB }

const accountColumns = `id, name, industry, status, created_at, updated_at`

func scanAccount(row rowScanner) (*model.Account, error) {
	var a model.Account
	err := scanTimes(row, []any{&a.ID, &a.Name, &a.Industry, &a.Status}, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *sqlAccountRepo) Create(ctx context.Context, account *model.Account) error {
	stamp(&account.CreatedAt, &account.UpdatedAt)
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO accounts (`+accountColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		nullableID(account.ID), account.Name, account.Industry, account.Status,
		formatTime(account.CreatedAt), formatTime(account.UpdatedAt))
	if err != nil {
		return mapSQLiteErr(err)
	}
	account.ID, err = res.LastInsertId()
	return err
}

func (r *sqlAccountRepo) GetByID(ctx context.Context, id int64) (*model.Account, error) {
	return queryOne(ctx, r.db, scanAccount, `SELECT `+accountColumns+` FROM accounts WHERE id = ?`, id)
}

func (r *sqlAccountRepo) List(ctx context.Context) ([]*model.Account, error) {
	return queryAll(ctx, r.db, scanAccount, `SELECT `+accountColumns+` FROM accounts ORDER BY name ASC, id ASC`)
}

func (r *sqlAccountRepo) Count(ctx context.Context) (int64, error) {
	return count(ctx, r.db, `SELECT COUNT(*) FROM accounts`)
}

type sqlContactRepo struct{ db *sql.DB }

const contactColumns = `id, account_id, name, email, role, created_at, updated_at`

func scanContact(row rowScanner) (*model.Contact, error) {
	var c model.Contact
	err := scanTimes(row, []any{&c.ID, &c.AccountID, &c.Name, &c.Email, &c.Role}, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *sqlContactRepo) Create(ctx context.Context, contact *model.Contact) error {
	stamp(&contact.CreatedAt, &contact.UpdatedAt)
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO contacts (`+contactColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		nullableID(contact.ID), contact.AccountID, contact.Name, contact.Email, contact.Role,
		formatTime(contact.CreatedAt), formatTime(contact.UpdatedAt))
	if err != nil {
		return mapSQLiteErr(err)
	}
	contact.ID, err = res.LastInsertId()
	return err
}

func (r *sqlContactRepo) ListByAccount(ctx context.Context, accountID int64) ([]*model.Contact, error) {
	return queryAll(ctx, r.db, scanContact,
		`SELECT `+contactColumns+` FROM contacts WHERE account_id = ? ORDER BY id ASC`, accountID)
}

type sqlInteractionRepo struct{ db *sql.DB }

const interactionColumns = `id, account_id, contact_id, channel, content, summary, source_file, timestamp, created_at, updated_at`

func scanInteraction(row rowScanner) (*model.Interaction, error) {
	var (
		i         model.Interaction
		contactID sql.NullInt64
	)
	err := scanTimes(row,
		[]any{&i.ID, &i.AccountID, &contactID, &i.Channel, &i.Content, &i.Summary, &i.SourceFile},
		&i.Timestamp, &i.CreatedAt, &i.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if contactID.Valid {
		i.ContactID = &contactID.Int64
	}
	return &i, nil
}

func (r *sqlInteractionRepo) Create(ctx context.Context, interaction *model.Interaction) error {
	stamp(&interaction.CreatedAt, &interaction.UpdatedAt)
	if interaction.Timestamp.IsZero() {
		interaction.Timestamp = interaction.CreatedAt
	}
	var contactID any
	if interaction.ContactID != nil {
		contactID = *interaction.ContactID
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO interactions (`+interactionColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		nullableID(interaction.ID), interaction.AccountID, contactID, interaction.Channel,
		interaction.Content, interaction.Summary, interaction.SourceFile,
		formatTime(interaction.Timestamp), formatTime(interaction.CreatedAt), formatTime(interaction.UpdatedAt))
	if err != nil {
		return mapSQLiteErr(err)
	}
	interaction.ID, err = res.LastInsertId()
	return err
}

func (r *sqlInteractionRepo) GetByID(ctx context.Context, id int64) (*model.Interaction, error) {
	return queryOne(ctx, r.db, scanInteraction, `SELECT `+interactionColumns+` FROM interactions WHERE id = ?`, id)
}

func (r *sqlInteractionRepo) List(ctx context.Context) ([]*model.Interaction, error) {
	return queryAll(ctx, r.db, scanInteraction, `SELECT `+interactionColumns+` FROM interactions ORDER BY id ASC`)
}

func (r *sqlInteractionRepo) ListByAccount(ctx context.Context, accountID int64) ([]*model.Interaction, error) {
	return queryAll(ctx, r.db, scanInteraction,
		`SELECT `+interactionColumns+` FROM interactions WHERE account_id = ? ORDER BY timestamp DESC, id DESC`, accountID)
}

func (r *sqlInteractionRepo) UpdateSummary(ctx context.Context, id int64, summary string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE interactions SET summary = ?, updated_at = ? WHERE id = ?`, summary, formatTime(now()), id)
	return err
}

func (r *sqlInteractionRepo) Count(ctx context.Context) (int64, error) {
	return count(ctx, r.db, `SELECT COUNT(*) FROM interactions`)
}

type sqlInsightRepo struct{ db *sql.DB }

const insightColumns = `id, interaction_id, intent, sentiment, risk_score, confidence, summary, keywords, created_at, updated_at`

func scanInsight(row rowScanner) (*model.Insight, error) {
	var i model.Insight
	err := scanTimes(row,
		[]any{&i.ID, &i.InteractionID, &i.Intent, &i.Sentiment, &i.RiskScore, &i.Confidence, &i.Summary, &i.Keywords},
		&i.CreatedAt, &i.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &i, nil
}

func (r *sqlInsightRepo) Create(ctx context.Context, insight *model.Insight) error {
	stamp(&insight.CreatedAt, &insight.UpdatedAt)
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO insights (`+insightColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		nullableID(insight.ID), insight.InteractionID, insight.Intent, insight.Sentiment,
		insight.RiskScore, insight.Confidence, insight.Summary, insight.Keywords,
		formatTime(insight.CreatedAt), formatTime(insight.UpdatedAt))
	if err != nil {
		return mapSQLiteErr(err)
	}
	insight.ID, err = res.LastInsertId()
	return err
}

func (r *sqlInsightRepo) GetByID(ctx context.Context, id int64) (*model.Insight, error) {
	return queryOne(ctx, r.db, scanInsight, `SELECT `+insightColumns+` FROM insights WHERE id = ?`, id)
}

func (r *sqlInsightRepo) GetByInteractionIDs(ctx context.Context, interactionIDs []int64) ([]*model.Insight, error) {
	if len(interactionIDs) == 0 {
		return []*model.Insight{}, nil
	}
	args := make([]any, len(interactionIDs))
	for i, id := range interactionIDs {
		args[i] = id
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(args)), ", ")
	return queryAll(ctx, r.db, scanInsight,
		`SELECT `+insightColumns+` FROM insights WHERE interaction_id IN (`+placeholders+`) ORDER BY interaction_id ASC`, args...)
}

func (r *sqlInsightRepo) List(ctx context.Context) ([]*model.Insight, error) {
	return queryAll(ctx, r.db, scanInsight, `SELECT `+insightColumns+` FROM insights ORDER BY id ASC`)
}

func (r *sqlInsightRepo) Recent(ctx context.Context, limit int) ([]*model.Insight, error) {
	return queryAll(ctx, r.db, scanInsight,
		`SELECT `+insightColumns+` FROM insights ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
}

func (r *sqlInsightRepo) Count(ctx context.Context) (int64, error) {
	return count(ctx, r.db, `SELECT COUNT(*) FROM insights`)
}

type sqlFeedbackRepo struct{ db *sql.DB }

func (r *sqlFeedbackRepo) Create(ctx context.Context, feedback *model.Feedback) error {
	stamp(&feedback.CreatedAt, &feedback.UpdatedAt)
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO feedback (id, insight_id, user_id, rating, reason_code, comments, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		nullableID(feedback.ID), feedback.InsightID, feedback.UserID, feedback.Rating,
		feedback.ReasonCode, feedback.Comments,
		formatTime(feedback.CreatedAt), formatTime(feedback.UpdatedAt))
	if err != nil {
		return mapSQLiteErr(err)
	}
	feedback.ID, err = res.LastInsertId()
	return err
}

func (r *sqlFeedbackRepo) Count(ctx context.Context) (int64, error) {
	return count(ctx, r.db, `SELECT COUNT(*) FROM feedback`)
}

func (r *sqlFeedbackRepo) CountPositive(ctx context.Context) (int64, error) {
	return count(ctx, r.db, `SELECT COUNT(*) FROM feedback WHERE rating = 1`)
}

type sqlEvalSampleRepo struct{ db *sql.DB }

func scanEvalSample(row rowScanner) (*model.EvalSample, error) {
	var s model.EvalSample
	err := scanTimes(row,
		[]any{&s.ID, &s.InteractionID, &s.ExpectedIntent, &s.ExpectedSentiment, &s.ExpectedRisk},
		&s.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *sqlEvalSampleRepo) Create(ctx context.Context, sample *model.EvalSample) error {
	if sample.CreatedAt.IsZero() {
		sample.CreatedAt = now()
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO eval_samples (id, interaction_id, expected_intent, expected_sentiment, expected_risk, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		nullableID(sample.ID), sample.InteractionID, sample.ExpectedIntent, sample.ExpectedSentiment,
		sample.ExpectedRisk, formatTime(sample.CreatedAt))
	if err != nil {
		return mapSQLiteErr(err)
	}
	sample.ID, err = res.LastInsertId()
	return err
}

func (r *sqlEvalSampleRepo) List(ctx context.Context) ([]*model.EvalSample, error) {
	return queryAll(ctx, r.db, scanEvalSample,
		`SELECT id, interaction_id, expected_intent, expected_sentiment, expected_risk, created_at
		 FROM eval_samples ORDER BY interaction_id ASC`)
}
