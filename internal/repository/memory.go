package repository

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"journeylens/internal/model"
)

// memoryDB keeps every table in maps behind one lock. Rows are copied on the
// way in and out so callers never share memory with the store.
type memoryDB struct {
	mu sync.RWMutex

	accounts     map[int64]model.Account
	contacts     map[int64]model.Contact
	interactions map[int64]model.Interaction
	insights     map[int64]model.Insight
	feedback     map[int64]model.Feedback
	evalSamples  map[int64]model.EvalSample

	seq map[string]int64
}

// NewMemoryStore returns a Store that lives only in process memory.
func NewMemoryStore() *Store {
	db := &memoryDB{
		accounts:     make(map[int64]model.Account),
		contacts:     make(map[int64]model.Contact),
		interactions: make(map[int64]model.Interaction),
		insights:     make(map[int64]model.Insight),
		feedback:     make(map[int64]model.Feedback),
		evalSamples:  make(map[int64]model.EvalSample),
		seq:          make(map[string]int64),
	}
	return &Store{
		Accounts:     &memAccountRepo{db},
		Contacts:     &memContactRepo{db},
		Interactions: &memInteractionRepo{db},
		Insights:     &memInsightRepo{db},
		Feedback:     &memFeedbackRepo{db},
		EvalSamples:  &memEvalSampleRepo{db},
	}
}

// nextID hands out the id for a new row, honouring an explicit one.
// Caller holds the write lock.
func (db *memoryDB) nextID(table string, explicit int64) int64 {
	if explicit > 0 {
		db.seq[table] = max(db.seq[table], explicit)
		return explicit
	}
	db.seq[table]++
	return db.seq[table]
}

func insertRow[T any](db *memoryDB, table string, rows map[int64]T, id *int64, row *T) error {
	if *id > 0 {
		if _, taken := rows[*id]; taken {
			return ErrDuplicate
		}
	}
	*id = db.nextID(table, *id)
	rows[*id] = *row
	return nil
}

func sortedValues[T any](rows map[int64]T, keep func(*T) bool, less func(a, b *T) int) []*T {
	out := make([]*T, 0, len(rows))
	for _, row := range rows {
		if keep != nil && !keep(&row) {
			continue
		}
		out = append(out, &row)
	}
	slices.SortFunc(out, less)
	return out
}

type memAccountRepo struct{ db *memoryDB }

func (r *memAccountRepo) Create(ctx context.Context, account *model.Account) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	stamp(&account.CreatedAt, &account.UpdatedAt)
	return insertRow(r.db, "accounts", r.db.accounts, &account.ID, account)
}

func (r *memAccountRepo) GetByID(ctx context.Context, id int64) (*model.Account, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	account, ok := r.db.accounts[id]
	if !ok {
		return nil, nil
	}
	return &account, nil
}

func (r *memAccountRepo) List(ctx context.Context) ([]*model.Account, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	return sortedValues(r.db.accounts, nil, func(a, b *model.Account) int {
		return cmp.Or(cmp.Compare(a.Name, b.Name), cmp.Compare(a.ID, b.ID))
	}), nil
}

func (r *memAccountRepo) Count(ctx context.Context) (int64, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	return int64(len(r.db.accounts)), nil
}

type memContactRepo struct{ db *memoryDB }

func (r *memContactRepo) Create(ctx context.Context, contact *model.Contact) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	stamp(&contact.CreatedAt, &contact.UpdatedAt)
	return insertRow(r.db, "contacts", r.db.contacts, &contact.ID, contact)
}

func (r *memContactRepo) ListByAccount(ctx context.Context, accountID int64) ([]*model.Contact, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	return sortedValues(r.db.contacts,
		func(c *model.Contact) bool { return c.AccountID == accountID },
		func(a, b *model.Contact) int { return cmp.Compare(a.ID, b.ID) },
	), nil
}

type memInteractionRepo struct{ db *memoryDB }

func (r *memInteractionRepo) Create(ctx context.Context, interaction *model.Interaction) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	stamp(&interaction.CreatedAt, &interaction.UpdatedAt)
	if interaction.Timestamp.IsZero() {
		interaction.Timestamp = interaction.CreatedAt
	}
	row := *interaction
	row.Insight = nil
	if err := insertRow(r.db, "interactions", r.db.interactions, &row.ID, &row); err != nil {
		return err
	}
	interaction.ID = row.ID
	return nil
}

func (r *memInteractionRepo) GetByID(ctx context.Context, id int64) (*model.Interaction, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	interaction, ok := r.db.interactions[id]
	if !ok {
		return nil, nil
	}
	return &interaction, nil
}

func (r *memInteractionRepo) List(ctx context.Context) ([]*model.Interaction, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	return sortedValues(r.db.interactions, nil, func(a, b *model.Interaction) int {
		return cmp.Compare(a.ID, b.ID)
	}), nil
}

func (r *memInteractionRepo) ListByAccount(ctx context.Context, accountID int64) ([]*model.Interaction, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	return sortedValues(r.db.interactions,
		func(i *model.Interaction) bool { return i.AccountID == accountID },
		func(a, b *model.Interaction) int {
			return cmp.Or(b.Timestamp.Compare(a.Timestamp), cmp.Compare(b.ID, a.ID))
		},
	), nil
}

func (r *memInteractionRepo) UpdateSummary(ctx context.Context, id int64, summary string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	interaction, ok := r.db.interactions[id]
	if !ok {
		return nil
	}
	interaction.Summary = summary
	interaction.UpdatedAt = now()
	r.db.interactions[id] = interaction
	return nil
}

func (r *memInteractionRepo) Count(ctx context.Context) (int64, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	return int64(len(r.db.interactions)), nil
}

type memInsightRepo struct{ db *memoryDB }

func (r *memInsightRepo) Create(ctx context.Context, insight *model.Insight) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, existing := range r.db.insights {
		if existing.InteractionID == insight.InteractionID {
			return ErrDuplicate
		}
	}
	stamp(&insight.CreatedAt, &insight.UpdatedAt)
	return insertRow(r.db, "insights", r.db.insights, &insight.ID, insight)
}

func (r *memInsightRepo) GetByID(ctx context.Context, id int64) (*model.Insight, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	insight, ok := r.db.insights[id]
	if !ok {
		return nil, nil
	}
	return &insight, nil
}

func (r *memInsightRepo) GetByInteractionIDs(ctx context.Context, interactionIDs []int64) ([]*model.Insight, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	return sortedValues(r.db.insights,
		func(i *model.Insight) bool { return slices.Contains(interactionIDs, i.InteractionID) },
		func(a, b *model.Insight) int { return cmp.Compare(a.InteractionID, b.InteractionID) },
	), nil
}

func (r *memInsightRepo) List(ctx context.Context) ([]*model.Insight, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	return sortedValues(r.db.insights, nil, func(a, b *model.Insight) int {
		return cmp.Compare(a.ID, b.ID)
	}), nil
}

func (r *memInsightRepo) Recent(ctx context.Context, limit int) ([]*model.Insight, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	out := sortedValues(r.db.insights, nil, func(a, b *model.Insight) int {
		return cmp.Or(b.CreatedAt.Compare(a.CreatedAt), cmp.Compare(b.ID, a.ID))
	})
	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memInsightRepo) Count(ctx context.Context) (int64, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	return int64(len(r.db.insights)), nil
}

type memFeedbackRepo struct{ db *memoryDB }

func (r *memFeedbackRepo) Create(ctx context.Context, feedback *model.Feedback) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, existing := range r.db.feedback {
		if existing.InsightID == feedback.InsightID && existing.UserID == feedback.UserID {
			return ErrDuplicate
		}
	}
	stamp(&feedback.CreatedAt, &feedback.UpdatedAt)
	return insertRow(r.db, "feedback", r.db.feedback, &feedback.ID, feedback)
}

func (r *memFeedbackRepo) Count(ctx context.Context) (int64, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	return int64(len(r.db.feedback)), nil
}

func (r *memFeedbackRepo) CountPositive(ctx context.Context) (int64, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	var n int64
	for _, f := range r.db.feedback {
		if f.Rating {
			n++
		}
	}
	return n, nil
}

type memEvalSampleRepo struct{ db *memoryDB }

func (r *memEvalSampleRepo) Create(ctx context.Context, sample *model.EvalSample) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, existing := range r.db.evalSamples {
		if existing.InteractionID == sample.InteractionID {
			return ErrDuplicate
		}
	}
	if sample.CreatedAt.IsZero() {
		sample.CreatedAt = now()
	}
	return insertRow(r.db, "eval_samples", r.db.evalSamples, &sample.ID, sample)
}

func (r *memEvalSampleRepo) List(ctx context.Context) ([]*model.EvalSample, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	return sortedValues(r.db.evalSamples, nil, func(a, b *model.EvalSample) int {
		return cmp.Compare(a.InteractionID, b.InteractionID)
	}), nil
}
