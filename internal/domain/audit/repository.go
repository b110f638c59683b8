package audit

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"taskhive/internal/infrastructure/persistence/mongodb"
)

// Filter narrows audit queries. Zero values mean "any".
type Filter struct {
	UserID *primitive.ObjectID
	Action string
	Limit  int64
}

type AuditRepository interface {
	Insert(ctx context.Context, entry *Entry) error
	Find(ctx context.Context, filter Filter) ([]Entry, error)
}

type auditRepository struct {
	collection *mongo.Collection
}

func NewRepository(db *mongodb.Database) AuditRepository {
	return &auditRepository{collection: db.Collection("audit_logs")}
}

func (r *auditRepository) Insert(ctx context.Context, entry *Entry) error {
	if entry.ID.IsZero() {
		entry.ID = primitive.NewObjectID()
	}
	_, err := r.collection.InsertOne(ctx, entry)
	return err
}

func (r *auditRepository) Find(ctx context.Context, filter Filter) ([]Entry, error) {
	query := bson.M{}
	if filter.UserID != nil {
		query["user"] = *filter.UserID
	}
	if filter.Action != "" {
		query["action"] = filter.Action
	}

	limit := filter.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(limit)

	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var entries []Entry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}
