package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"journeylens/internal/model"
)

// ErrDuplicate is returned when a write violates a uniqueness rule: an
// explicit id that is already taken, a second insight for one interaction,
// or a second feedback entry from the same user on one insight.
var ErrDuplicate = errors.New("duplicate record")

// Getters return (nil, nil) when the row does not exist.

type AccountRepo interface {
	Create(ctx context.Context, account *model.Account) error
	GetByID(ctx context.Context, id int64) (*model.Account, error)
	List(ctx context.Context) ([]*model.Account, error) // by name
	Count(ctx context.Context) (int64, error)
}

type ContactRepo interface {
	Create(ctx context.Context, contact *model.Contact) error
	ListByAccount(ctx context.Context, accountID int64) ([]*model.Contact, error)
}

type InteractionRepo interface {
	Create(ctx context.Context, interaction *model.Interaction) error
	GetByID(ctx context.Context, id int64) (*model.Interaction, error)
	List(ctx context.Context) ([]*model.Interaction, error)                           // by id
	ListByAccount(ctx context.Context, accountID int64) ([]*model.Interaction, error) // newest first
	UpdateSummary(ctx context.Context, id int64, summary string) error
	Count(ctx context.Context) (int64, error)
}

type InsightRepo interface {
	Create(ctx context.Context, insight *model.Insight) error
	GetByID(ctx context.Context, id int64) (*model.Insight, error)
	GetByInteractionIDs(ctx context.Context, interactionIDs []int64) ([]*model.Insight, error) // by interaction id
	List(ctx context.Context) ([]*model.Insight, error)                                        // by id
	Recent(ctx context.Context, limit int) ([]*model.Insight, error)                           // newest first
	Count(ctx context.Context) (int64, error)
}

type FeedbackRepo interface {
	Create(ctx context.Context, feedback *model.Feedback) error
	Count(ctx context.Context) (int64, error)
	CountPositive(ctx context.Context) (int64, error)
}

type EvalSampleRepo interface {
	Create(ctx context.Context, sample *model.EvalSample) error
	List(ctx context.Context) ([]*model.EvalSample, error)
}

// Store groups the repositories of one backing database.
type Store struct {
	Accounts     AccountRepo
	Contacts     ContactRepo
	Interactions InteractionRepo
	Insights     InsightRepo
	Feedback     FeedbackRepo
	EvalSamples  EvalSampleRepo

	close func(ctx context.Context) error
}

// Close releases the underlying connection.
func (s *Store) Close(ctx context.Context) error {
	if s.close == nil {
		return nil
	}
	return s.close(ctx)
}

const (
	DriverSQLite = "sqlite"
	DriverMongo  = "mongo"
	DriverMemory = "memory"
)

type Options struct {
	Driver   string
	Path     string // sqlite file
	MongoURI string
	MongoDB  string
}

// Open connects to the store selected by opts.Driver and prepares its schema.
func Open(ctx context.Context, opts Options) (*Store, error) {
	switch opts.Driver {
	case DriverSQLite, "":
		return OpenSQLite(ctx, opts.Path)
	case DriverMongo:
		return OpenMongo(ctx, opts.MongoURI, opts.MongoDB)
	case DriverMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", opts.Driver)
	}
}

func now() time.Time {
	return time.Now().UTC()
}

func stamp(created, updated *time.Time) {
	if created.IsZero() {
		*created = now()
	}
	if updated.IsZero() {
		*updated = *created
	}
}
