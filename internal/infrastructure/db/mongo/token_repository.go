package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/actu/newsroom/internal/core/domain"
)

// TokenRepository implements ports.TokenRepository using MongoDB.
type TokenRepository struct {
	coll *mongo.Collection
}

func NewTokenRepository(db *mongo.Database) *TokenRepository {
	return &TokenRepository{coll: db.Collection(tokensCollection)}
}

type tokenDoc struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"`
	Value          string             `bson:"value"`
	OwnerAccountID string             `bson:"owner_account_id"`
	CreatedAt      time.Time          `bson:"created_at"`
	ExpiresAt      time.Time          `bson:"expires_at"`
	Revoked        bool               `bson:"revoked"`
}

func (d tokenDoc) toDomain() *domain.IssuedToken {
	return &domain.IssuedToken{
		ID:             d.ID.Hex(),
		Value:          d.Value,
		OwnerAccountID: d.OwnerAccountID,
		CreatedAt:      d.CreatedAt.UTC(),
		ExpiresAt:      d.ExpiresAt.UTC(),
		Revoked:        d.Revoked,
	}
}

var newestFirst = bson.D{{Key: "created_at", Value: -1}}

func (r *TokenRepository) FindByID(ctx context.Context, id string) (*domain.IssuedToken, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *TokenRepository) FindByValue(ctx context.Context, value string) (*domain.IssuedToken, error) {
	return r.findOne(ctx, bson.M{"value": value})
}

func (r *TokenRepository) FindLive(ctx context.Context, accountID string, now time.Time) (*domain.IssuedToken, error) {
	filter := bson.M{
		"owner_account_id": accountID,
		"revoked":          false,
		"expires_at":       bson.M{"$gt": now.UTC()},
	}
	return r.findOne(ctx, filter, options.FindOne().SetSort(newestFirst))
}

func (r *TokenRepository) ListByAccount(ctx context.Context, accountID string) ([]*domain.IssuedToken, error) {
	return r.find(ctx, bson.M{"owner_account_id": accountID})
}

func (r *TokenRepository) ListAll(ctx context.Context) ([]*domain.IssuedToken, error) {
	return r.find(ctx, bson.M{})
}

func (r *TokenRepository) Save(ctx context.Context, token *domain.IssuedToken) error {
	doc := tokenDoc{
		Value:          token.Value,
		OwnerAccountID: token.OwnerAccountID,
		CreatedAt:      token.CreatedAt.UTC(),
		ExpiresAt:      token.ExpiresAt.UTC(),
		Revoked:        token.Revoked,
	}

	if token.ID == "" {
		doc.ID = primitive.NewObjectID()
		if _, err := r.coll.InsertOne(ctx, doc); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return domain.ErrConflict
			}
			return fmt.Errorf("insert token: %w", err)
		}
		token.ID = doc.ID.Hex()
		return nil
	}

	oid, err := objectID(token.ID)
	if err != nil {
		return err
	}
	doc.ID = oid
	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": oid}, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("replace token: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *TokenRepository) DeleteByAccount(ctx context.Context, accountID string) (int64, error) {
	res, err := r.coll.DeleteMany(ctx, bson.M{"owner_account_id": accountID})
	if err != nil {
		return 0, fmt.Errorf("delete tokens: %w", err)
	}
	return res.DeletedCount, nil
}

func (r *TokenRepository) DeleteByID(ctx context.Context, id string) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete token: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *TokenRepository) findOne(ctx context.Context, filter bson.M, opts ...*options.FindOneOptions) (*domain.IssuedToken, error) {
	var doc tokenDoc
	if err := r.coll.FindOne(ctx, filter, opts...).Decode(&doc); err != nil {
		if notFound(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find token: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *TokenRepository) find(ctx context.Context, filter bson.M) ([]*domain.IssuedToken, error) {
	cur, err := r.coll.Find(ctx, filter, options.Find().SetSort(newestFirst))
	if err != nil {
		return nil, fmt.Errorf("list tokens: %w", err)
	}
	var docs []tokenDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode tokens: %w", err)
	}
	out := make([]*domain.IssuedToken, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}
