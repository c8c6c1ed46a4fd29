package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/optixtrade/trading-platform/internal/core/domain"
)

const securityEventsCollection = "security_events"

// SecurityEventRepository stores the append-only audit trail. There are
// deliberately no update or delete operations.
type SecurityEventRepository struct {
	coll *mongo.Collection
}

func NewSecurityEventRepository(db *mongo.Database) *SecurityEventRepository {
	return &SecurityEventRepository{coll: db.Collection(securityEventsCollection)}
}

func (r *SecurityEventRepository) Append(ctx context.Context, e *domain.SecurityEvent) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, e); err != nil {
		return wrapErr("append security event", err)
	}
	return nil
}

func (r *SecurityEventRepository) List(ctx context.Context, limit int64) ([]domain.SecurityEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.coll.Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(limit))
	if err != nil {
		return nil, wrapErr("list security events", err)
	}

	var events []domain.SecurityEvent
	if err := cur.All(ctx, &events); err != nil {
		return nil, wrapErr("decode security events", err)
	}
	return events, nil
}

// EnsureIndexes creates the time-ordered listing index.
func (r *SecurityEventRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "created_at", Value: -1}},
	})
	return err
}
