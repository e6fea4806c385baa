package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/vidstream/account-service/internal/core/domain"
)

const accountCollection = "accounts"

type AccountRepository struct {
	coll *mongo.Collection
}

func NewAccountRepository(db *mongo.Database) *AccountRepository {
	return &AccountRepository{coll: db.Collection(accountCollection)}
}

type accountDoc struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	Username      string             `bson:"username"`
	Email         string             `bson:"email"`
	FullName      string             `bson:"full_name"`
	PasswordHash  string             `bson:"password_hash"`
	AvatarURL     string             `bson:"avatar_url"`
	CoverImageURL string             `bson:"cover_image_url,omitempty"`
	RefreshToken  string             `bson:"refresh_token,omitempty"`
	CreatedAt     time.Time          `bson:"created_at"`
	UpdatedAt     time.Time          `bson:"updated_at"`
}

func (d *accountDoc) toDomain() *domain.Account {
	return &domain.Account{
		ID:            d.ID.Hex(),
		Username:      d.Username,
		Email:         d.Email,
		FullName:      d.FullName,
		PasswordHash:  d.PasswordHash,
		AvatarURL:     d.AvatarURL,
		CoverImageURL: d.CoverImageURL,
		RefreshToken:  d.RefreshToken,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
}

// Create inserts the account and fetches it back so the caller gets the
// assigned id and store-maintained timestamps. A unique-index violation on
// username or email surfaces as a conflict error.
func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	now := time.Now().UTC()
	doc := accountDoc{
		Username:      account.Username,
		Email:         account.Email,
		FullName:      account.FullName,
		PasswordHash:  account.PasswordHash,
		AvatarURL:     account.AvatarURL,
		CoverImageURL: account.CoverImageURL,
		RefreshToken:  account.RefreshToken,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.NewConflictError("User with email or username already exists")
		}
		return nil, fmt.Errorf("insert account: %w", err)
	}

	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, fmt.Errorf("insert account: unexpected id type %T", res.InsertedID)
	}

	created, err := r.FindByID(ctx, id.Hex())
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (r *AccountRepository) FindByID(ctx context.Context, id string) (*domain.Account, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		// A malformed id cannot match any document.
		return nil, nil
	}

	var doc accountDoc
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("find account: %w", err)
	}
	return doc.toDomain(), nil
}

// FindPublicByID resolves the public projection, excluding the credential
// fields at the query level so they never leave the database.
func (r *AccountRepository) FindPublicByID(ctx context.Context, id string) (*domain.PublicAccount, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}

	opts := options.FindOne().SetProjection(bson.M{
		"password_hash": 0,
		"refresh_token": 0,
	})

	var doc accountDoc
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}, opts).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("find account: %w", err)
	}
	return doc.toDomain().Public(), nil
}

func (r *AccountRepository) FindByUsernameOrEmail(ctx context.Context, identifier string) (*domain.Account, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"username": identifier},
		bson.M{"email": identifier},
	}}

	var doc accountDoc
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("find account: %w", err)
	}
	return doc.toDomain(), nil
}

// UpdateRefreshToken replaces the stored refresh token in a single atomic
// $set, so concurrent logins settle on last write wins.
func (r *AccountRepository) UpdateRefreshToken(ctx context.Context, id, token string) error {
	return r.setRefreshToken(ctx, id, token)
}

// ClearRefreshToken empties the stored refresh token. Clearing an absent or
// already-empty value succeeds, which makes logout idempotent.
func (r *AccountRepository) ClearRefreshToken(ctx context.Context, id string) error {
	return r.setRefreshToken(ctx, id, "")
}

func (r *AccountRepository) setRefreshToken(ctx context.Context, id, token string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid account id %q", id)
	}

	update := bson.M{"$set": bson.M{
		"refresh_token": token,
		"updated_at":    time.Now().UTC(),
	}}
	if _, err := r.coll.UpdateByID(ctx, oid, update); err != nil {
		return fmt.Errorf("update refresh token: %w", err)
	}
	return nil
}
