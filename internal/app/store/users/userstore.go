// internal/app/store/users/userstore.go
package userstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/temahub/internal/app/system/normalize"
	"github.com/dalemusser/temahub/internal/app/system/status"
	"github.com/dalemusser/temahub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

var (
	// ErrNotFound means no user matched the lookup.
	ErrNotFound = errors.New("user not found")

	// ErrDuplicateLogin means the login id is already taken.
	ErrDuplicateLogin = errors.New("login id already in use")

	// ErrBadCredentials covers both unknown login and wrong password so
	// the login page cannot be used to probe which accounts exist.
	ErrBadCredentials = errors.New("invalid login or password")
)

// Create inserts a new account. A non-empty password is bcrypt-hashed;
// Google-backed accounts pass "" and carry no hash.
func (s *Store) Create(ctx context.Context, u *models.User, password string) error {
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	u.LoginID = normalize.Email(u.LoginID)
	u.FullNameCI = text.Fold(u.FullName)
	u.Role = normalize.Role(u.Role)
	if u.Status == "" {
		u.Status = status.Active
	}
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now

	if password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		u.PasswordHash = hash
	}

	_, err := s.c.InsertOne(ctx, u)
	if wafflemongo.IsDup(err) {
		return ErrDuplicateLogin
	}
	return err
}

// GetByID fetches one user by id.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByLoginID fetches one user by normalized login id.
func (s *Store) GetByLoginID(ctx context.Context, loginID string) (*models.User, error) {
	var u models.User
	err := s.c.FindOne(ctx, bson.M{"login_id": normalize.Email(loginID)}).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Authenticate checks an internal login id and password pair. Disabled
// accounts and Google-only accounts (no hash) fail the same way unknown
// logins do.
func (s *Store) Authenticate(ctx context.Context, loginID, password string) (*models.User, error) {
	u, err := s.GetByLoginID(ctx, loginID)
	if err == ErrNotFound {
		return nil, ErrBadCredentials
	}
	if err != nil {
		return nil, err
	}
	if u.Status == status.Disabled || len(u.PasswordHash) == 0 {
		return nil, ErrBadCredentials
	}
	if bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(password)) != nil {
		return nil, ErrBadCredentials
	}
	return u, nil
}

// SetPassword replaces the stored bcrypt hash.
func (s *Store) SetPassword(ctx context.Context, id primitive.ObjectID, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{"password_hash": hash, "updated_at": time.Now().UTC()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns all accounts sorted by role then name, for the admin
// account page.
func (s *Store) List(ctx context.Context) ([]models.User, error) {
	cur, err := s.c.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var users []models.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}
