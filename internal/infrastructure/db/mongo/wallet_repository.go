package mongo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/optixtrade/trading-platform/internal/core/domain"
)

const (
	walletsCollection      = "wallets"
	transactionsCollection = "transactions"
)

// WalletRepository implements the wallet ledger on MongoDB. Per-wallet
// serialization comes from single-document conditional updates: every
// balance change is one FindOneAndUpdate whose filter proves the invariant
// before the increment applies, so concurrent debits on the same wallet
// can never interleave into a negative balance. Unrelated wallets live in
// separate documents and never block each other.
type WalletRepository struct {
	wallets *mongo.Collection
	txs     *mongo.Collection
}

func NewWalletRepository(db *mongo.Database) *WalletRepository {
	return &WalletRepository{
		wallets: db.Collection(walletsCollection),
		txs:     db.Collection(transactionsCollection),
	}
}

func (r *WalletRepository) Balance(ctx context.Context, userID, asset string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var w domain.Wallet
	err := r.wallets.FindOne(ctx, bson.M{"user_id": userID, "asset": asset}).Decode(&w)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, nil
		}
		return 0, wrapErr("read balance", err)
	}
	return w.BalanceCents, nil
}

func (r *WalletRepository) Debit(ctx context.Context, userID, asset string, cents int64, txType domain.TransactionType, reference string) error {
	if cents <= 0 {
		return domain.ErrInvalidAmount
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	// The balance guard lives in the filter: the update only matches a
	// document that can afford the debit.
	filter := bson.M{
		"user_id":       userID,
		"asset":         asset,
		"balance_cents": bson.M{"$gte": cents},
	}
	update := bson.M{
		"$inc": bson.M{"balance_cents": -cents},
		"$set": bson.M{"updated_at": time.Now().UTC()},
	}

	err := r.wallets.FindOneAndUpdate(ctx, filter, update).Err()
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.ErrInsufficientFunds
		}
		return wrapErr("debit wallet", err)
	}

	return r.appendTransaction(ctx, userID, asset, -cents, txType, reference)
}

func (r *WalletRepository) Credit(ctx context.Context, userID, asset string, cents int64, txType domain.TransactionType, reference string) error {
	if cents < 0 {
		return domain.ErrInvalidAmount
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"user_id": userID, "asset": asset}
	update := bson.M{
		"$inc":         bson.M{"balance_cents": cents},
		"$set":         bson.M{"updated_at": time.Now().UTC()},
		"$setOnInsert": bson.M{"user_id": userID, "asset": asset},
	}

	err := r.wallets.FindOneAndUpdate(ctx, filter, update, options.FindOneAndUpdate().SetUpsert(true)).Err()
	if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
		return wrapErr("credit wallet", err)
	}

	return r.appendTransaction(ctx, userID, asset, cents, txType, reference)
}

func (r *WalletRepository) appendTransaction(ctx context.Context, userID, asset string, cents int64, txType domain.TransactionType, reference string) error {
	tx := domain.Transaction{
		ID:          uuid.NewString(),
		UserID:      userID,
		Asset:       asset,
		Type:        txType,
		AmountCents: cents,
		Reference:   reference,
		CreatedAt:   time.Now().UTC(),
	}
	if _, err := r.txs.InsertOne(ctx, tx); err != nil {
		return wrapErr("append transaction", err)
	}
	return nil
}

func (r *WalletRepository) ListByUser(ctx context.Context, userID string) ([]domain.Wallet, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.wallets.Find(ctx, bson.M{"user_id": userID}, options.Find().SetSort(bson.D{{Key: "asset", Value: 1}}))
	if err != nil {
		return nil, wrapErr("list wallets", err)
	}

	var wallets []domain.Wallet
	if err := cur.All(ctx, &wallets); err != nil {
		return nil, wrapErr("decode wallets", err)
	}
	return wallets, nil
}

func (r *WalletRepository) ListTransactions(ctx context.Context, userID, asset string) ([]domain.Transaction, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"user_id": userID}
	if asset != "" {
		filter["asset"] = asset
	}

	cur, err := r.txs.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, wrapErr("list transactions", err)
	}

	var txs []domain.Transaction
	if err := cur.All(ctx, &txs); err != nil {
		return nil, wrapErr("decode transactions", err)
	}
	return txs, nil
}

// EnsureIndexes creates the unique (user_id, asset) wallet index and the
// transaction lookup index.
func (r *WalletRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.wallets.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "asset", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return err
	}

	_, err = r.txs.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: 1}},
	})
	return err
}
