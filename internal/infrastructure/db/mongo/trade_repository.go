package mongo

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/optixtrade/trading-platform/internal/core/domain"
)

const tradesCollection = "trades"

type TradeRepository struct {
	coll *mongo.Collection
}

func NewTradeRepository(db *mongo.Database) *TradeRepository {
	return &TradeRepository{coll: db.Collection(tradesCollection)}
}

func (r *TradeRepository) Create(ctx context.Context, t *domain.Trade) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, t); err != nil {
		return wrapErr("insert trade", err)
	}
	return nil
}

func (r *TradeRepository) FindByID(ctx context.Context, id string) (*domain.Trade, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var t domain.Trade
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&t); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrTradeNotFound
		}
		return nil, wrapErr("find trade", err)
	}
	return &t, nil
}

func (r *TradeRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Trade, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.coll.Find(ctx, bson.M{"user_id": userID}, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, wrapErr("list trades", err)
	}

	var trades []*domain.Trade
	if err := cur.All(ctx, &trades); err != nil {
		return nil, wrapErr("decode trades", err)
	}
	return trades, nil
}

// Settle is a compare-and-swap on status: the update only matches the
// trade while it is still pending, so exactly one concurrent settlement
// can succeed.
func (r *TradeRepository) Settle(ctx context.Context, id string, result domain.TradeResult, exitPrice *decimal.Decimal, settledCents int64, settledAt time.Time) (*domain.Trade, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"_id": id, "status": domain.TradePending}
	set := bson.M{
		"status":        domain.TradeSettled,
		"result":        result,
		"settled_cents": settledCents,
		"settled_at":    settledAt,
		"credited":      settledCents == 0,
	}
	if exitPrice != nil {
		set["exit_price"] = *exitPrice
	}

	var t domain.Trade
	err := r.coll.FindOneAndUpdate(ctx, filter, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&t)
	if err == nil {
		return &t, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, wrapErr("settle trade", err)
	}

	// No pending match: either the trade never existed or it is already
	// settled.
	if _, ferr := r.FindByID(ctx, id); ferr != nil {
		return nil, ferr
	}
	return nil, domain.ErrAlreadySettled
}

// ClaimCredit is a compare-and-swap on the credited flag: the update
// only matches while the flag is false, so exactly one caller delivers
// the payout.
func (r *TradeRepository) ClaimCredit(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id, "credited": false},
		bson.M{"$set": bson.M{"credited": true}})
	if err != nil {
		return wrapErr("claim credit", err)
	}
	if res.MatchedCount == 0 {
		if _, ferr := r.FindByID(ctx, id); ferr != nil {
			return ferr
		}
		return domain.ErrAlreadySettled
	}
	return nil
}

func (r *TradeRepository) ReleaseCredit(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id},
		bson.M{"$set": bson.M{"credited": false}})
	if err != nil {
		return wrapErr("release credit", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrTradeNotFound
	}
	return nil
}

// EnsureIndexes creates the per-user trade listing index.
func (r *TradeRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
	})
	return err
}
