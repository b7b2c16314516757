package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"journeylens/internal/model"
)

const (
	accountsCollection     = "accounts"
	contactsCollection     = "contacts"
	interactionsCollection = "interactions"
	insightsCollection     = "insights"
	feedbackCollection     = "feedback"
	evalSamplesCollection  = "eval_samples"
	countersCollection     = "counters"
)

// OpenMongo connects to uri, pings it and ensures the indexes the
// repositories rely on. Integer ids come from a counters collection.
func OpenMongo(ctx context.Context, uri, dbName string) (*Store, error) {
	if uri == "" || dbName == "" {
		return nil, errors.New("mongo uri and database name are required")
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	store, err := NewMongoStore(ctx, client.Database(dbName))
	if err != nil {
		client.Disconnect(ctx)
		return nil, err
	}
	store.close = client.Disconnect
	return store, nil
}

// NewMongoStore builds a Store on an already connected database.
func NewMongoStore(ctx context.Context, db *mongo.Database) (*Store, error) {
	if err := ensureIndexes(ctx, db); err != nil {
		return nil, err
	}
	ids := &counters{collection: db.Collection(countersCollection)}
	return &Store{
		Accounts:     &mongoAccountRepo{db.Collection(accountsCollection), ids},
		Contacts:     &mongoContactRepo{db.Collection(contactsCollection), ids},
		Interactions: &mongoInteractionRepo{db.Collection(interactionsCollection), ids},
		Insights:     &mongoInsightRepo{db.Collection(insightsCollection), ids},
		Feedback:     &mongoFeedbackRepo{db.Collection(feedbackCollection), ids},
		EvalSamples:  &mongoEvalSampleRepo{db.Collection(evalSamplesCollection), ids},
	}, nil
}

func ensureIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := map[string][]mongo.IndexModel{
		accountsCollection: {
			{Keys: bson.D{{Key: "name", Value: 1}}},
		},
		contactsCollection: {
			{Keys: bson.D{{Key: "accountId", Value: 1}}},
		},
		interactionsCollection: {
			{Keys: bson.D{{Key: "accountId", Value: 1}, {Key: "timestamp", Value: -1}}},
		},
		insightsCollection: {
			{Keys: bson.D{{Key: "interactionId", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		},
		feedbackCollection: {
			{
				Keys:    bson.D{{Key: "insightId", Value: 1}, {Key: "userId", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("uq_feedback_per_user"),
			},
		},
		evalSamplesCollection: {
			{Keys: bson.D{{Key: "interactionId", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
	}
	for name, models := range indexes {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create %s indexes: %w", name, err)
		}
	}
	return nil
}

type counters struct {
	collection *mongo.Collection
}

// next returns the id for a new document in table. An explicit id is kept
// and only moves the counter forward.
func (c *counters) next(ctx context.Context, table string, explicit int64) (int64, error) {
	if explicit > 0 {
		_, err := c.collection.UpdateOne(ctx,
			bson.M{"_id": table},
			bson.M{"$max": bson.M{"seq": explicit}},
			options.Update().SetUpsert(true))
		return explicit, err
	}

	var doc struct {
		Seq int64 `bson:"seq"`
	}
	err := c.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": table},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		return 0, err
	}
	return doc.Seq, nil
}

func insertDoc(ctx context.Context, coll *mongo.Collection, ids *counters, id *int64, doc any) error {
	next, err := ids.next(ctx, coll.Name(), *id)
	if err != nil {
		return fmt.Errorf("allocate %s id: %w", coll.Name(), err)
	}
	*id = next
	if _, err := coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %v", ErrDuplicate, err)
		}
		return err
	}
	return nil
}

func findOne[T any](ctx context.Context, coll *mongo.Collection, filter any) (*T, error) {
	var doc T
	err := coll.FindOne(ctx, filter).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &doc, nil
}

func findAll[T any](ctx context.Context, coll *mongo.Collection, filter any, opts *options.FindOptions) ([]*T, error) {
	cursor, err := coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	docs := []*T{}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

func sortBy(keys ...bson.E) *options.FindOptions {
	return options.Find().SetSort(bson.D(keys))
}

type mongoAccountRepo struct {
	collection *mongo.Collection
	ids        *counters
}

func (r *mongoAccountRepo) Create(ctx context.Context, account *model.Account) error {
	stamp(&account.CreatedAt, &account.UpdatedAt)
	return insertDoc(ctx, r.collection, r.ids, &account.ID, account)
}

func (r *mongoAccountRepo) GetByID(ctx context.Context, id int64) (*model.Account, error) {
	return findOne[model.Account](ctx, r.collection, bson.M{"_id": id})
}

func (r *mongoAccountRepo) List(ctx context.Context) ([]*model.Account, error) {
	return findAll[model.Account](ctx, r.collection, bson.M{},
		sortBy(bson.E{Key: "name", Value: 1}, bson.E{Key: "_id", Value: 1}))
}

func (r *mongoAccountRepo) Count(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{})
}

type mongoContactRepo struct {
	collection *mongo.Collection
	ids        *counters
}

func (r *mongoContactRepo) Create(ctx context.Context, contact *model.Contact) error {
	stamp(&contact.CreatedAt, &contact.UpdatedAt)
	return insertDoc(ctx, r.collection, r.ids, &contact.ID, contact)
}

func (r *mongoContactRepo) ListByAccount(ctx context.Context, accountID int64) ([]*model.Contact, error) {
	return findAll[model.Contact](ctx, r.collection, bson.M{"accountId": accountID},
		sortBy(bson.E{Key: "_id", Value: 1}))
}

type mongoInteractionRepo struct {
	collection *mongo.Collection
	ids        *counters
}

func (r *mongoInteractionRepo) Create(ctx context.Context, interaction *model.Interaction) error {
	stamp(&interaction.CreatedAt, &interaction.UpdatedAt)
	if interaction.Timestamp.IsZero() {
		interaction.Timestamp = interaction.CreatedAt
	}
	return insertDoc(ctx, r.collection, r.ids, &interaction.ID, interaction)
}

func (r *mongoInteractionRepo) GetByID(ctx context.Context, id int64) (*model.Interaction, error) {
	return findOne[model.Interaction](ctx, r.collection, bson.M{"_id": id})
}

func (r *mongoInteractionRepo) List(ctx context.Context) ([]*model.Interaction, error) {
	return findAll[model.Interaction](ctx, r.collection, bson.M{}, sortBy(bson.E{Key: "_id", Value: 1}))
}

func (r *mongoInteractionRepo) ListByAccount(ctx context.Context, accountID int64) ([]*model.Interaction, error) {
	return findAll[model.Interaction](ctx, r.collection, bson.M{"accountId": accountID},
		sortBy(bson.E{Key: "timestamp", Value: -1}, bson.E{Key: "_id", Value: -1}))
}

func (r *mongoInteractionRepo) UpdateSummary(ctx context.Context, id int64, summary string) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"summary": summary, "updatedAt": now()}})
	return err
}

func (r *mongoInteractionRepo) Count(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{})
}

type mongoInsightRepo struct {
	collection *mongo.Collection
	ids        *counters
}

func (r *mongoInsightRepo) Create(ctx context.Context, insight *model.Insight) error {
	stamp(&insight.CreatedAt, &insight.UpdatedAt)
	return insertDoc(ctx, r.collection, r.ids, &insight.ID, insight)
}

func (r *mongoInsightRepo) GetByID(ctx context.Context, id int64) (*model.Insight, error) {
	return findOne[model.Insight](ctx, r.collection, bson.M{"_id": id})
}

func (r *mongoInsightRepo) GetByInteractionIDs(ctx context.Context, interactionIDs []int64) ([]*model.Insight, error) {
	if len(interactionIDs) == 0 {
		return []*model.Insight{}, nil
	}
	return findAll[model.Insight](ctx, r.collection,
		bson.M{"interactionId": bson.M{"$in": interactionIDs}},
		sortBy(bson.E{Key: "interactionId", Value: 1}))
}

func (r *mongoInsightRepo) List(ctx context.Context) ([]*model.Insight, error) {
	return findAll[model.Insight](ctx, r.collection, bson.M{}, sortBy(bson.E{Key: "_id", Value: 1}))
}

func (r *mongoInsightRepo) Recent(ctx context.Context, limit int) ([]*model.Insight, error) {
	opts := sortBy(bson.E{Key: "createdAt", Value: -1}, bson.E{Key: "_id", Value: -1}).SetLimit(int64(limit))
	return findAll[model.Insight](ctx, r.collection, bson.M{}, opts)
}

func (r *mongoInsightRepo) Count(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{})
}

type mongoFeedbackRepo struct {
	collection *mongo.Collection
	ids        *counters
}

func (r *mongoFeedbackRepo) Create(ctx context.Context, feedback *model.Feedback) error {
	stamp(&feedback.CreatedAt, &feedback.UpdatedAt)
	return insertDoc(ctx, r.collection, r.ids, &feedback.ID, feedback)
}

func (r *mongoFeedbackRepo) Count(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{})
}

func (r *mongoFeedbackRepo) CountPositive(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"rating": true})
}

type mongoEvalSampleRepo struct {
	collection *mongo.Collection
	ids        *counters
}

func (r *mongoEvalSampleRepo) Create(ctx context.Context, sample *model.EvalSample) error {
	if sample.CreatedAt.IsZero() {
		sample.CreatedAt = now()
	}
	return insertDoc(ctx, r.collection, r.ids, &sample.ID, sample)
}

func (r *mongoEvalSampleRepo) List(ctx context.Context) ([]*model.EvalSample, error) {
	return findAll[model.EvalSample](ctx, r.collection, bson.M{}, sortBy(bson.E{Key: "interactionId", Value: 1}))
}
