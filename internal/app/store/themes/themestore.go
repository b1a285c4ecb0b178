// internal/app/store/themes/themestore.go
package themestore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/temahub/internal/app/system/normalize"
	"github.com/dalemusser/temahub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("themes")}
}

var (
	// ErrNotFound means no theme with the given title exists.
	ErrNotFound = errors.New("theme not found")

	// ErrAlreadyReserved is returned by Reserve when the conditional
	// update matched no free document because another group holds the
	// theme. Exactly one concurrent Reserve on a free theme succeeds;
	// the rest get this error.
	ErrAlreadyReserved = errors.New("theme already reserved")

	// ErrNotReserved is returned by Release when the theme is free, and
	// by ReleaseByGroup when the theme is not held by that group.
	ErrNotReserved = errors.New("theme is not reserved")
)

// ImportResult reports what a catalog import changed.
type ImportResult struct {
	Inserted int
	Skipped  int // already present, left untouched
}

// Import merges titles into the catalog. Existing titles keep their
// status and reservation fields; only genuinely new titles are inserted,
// as free, with ordinals continuing after the current maximum. Re-running
// the same import is a no-op.
func (s *Store) Import(ctx context.Context, titles []string, category string) (ImportResult, error) {
	var res ImportResult

	next, err := s.maxOrdinal(ctx)
	if err != nil {
		return res, err
	}

	now := time.Now().UTC()
	var docs []interface{}
	seen := make(map[string]bool)
	for _, raw := range titles {
		title := normalize.Name(raw)
		if title == "" {
			continue
		}
		ci := text.Fold(title)
		if seen[ci] {
			res.Skipped++
			continue
		}
		seen[ci] = true

		n, err := s.c.CountDocuments(ctx, bson.M{"title": title})
		if err != nil {
			return res, err
		}
		if n > 0 {
			res.Skipped++
			continue
		}

		next++
		docs = append(docs, models.Theme{
			Title:     title,
			TitleCI:   ci,
			Ordinal:   next,
			Category:  category,
			Status:    models.ThemeFree,
			CreatedAt: now,
			UpdatedAt: now,
		})
	}
	if len(docs) == 0 {
		return res, nil
	}

	// Unordered so one duplicate (a title inserted between the count and
	// the write) does not abort the rest of the batch.
	opts := options.InsertMany().SetOrdered(false)
	ir, err := s.c.InsertMany(ctx, docs, opts)
	if ir != nil {
		res.Inserted = len(ir.InsertedIDs)
	}
	if err != nil {
		if wafflemongo.IsDup(err) {
			res.Skipped += len(docs) - res.Inserted
			return res, nil
		}
		return res, err
	}
	return res, nil
}

func (s *Store) maxOrdinal(ctx context.Context) (int, error) {
	opts := options.FindOne().
		SetSort(bson.D{{Key: "ordinal", Value: -1}}).
		SetProjection(bson.M{"ordinal": 1})

	var top struct {
		Ordinal int `bson:"ordinal"`
	}
	err := s.c.FindOne(ctx, bson.M{}, opts).Decode(&top)
	if err == mongo.ErrNoDocuments {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return top.Ordinal, nil
}

// GetByTitle fetches one theme by exact title.
func (s *Store) GetByTitle(ctx context.Context, title string) (*models.Theme, error) {
	var t models.Theme
	err := s.c.FindOne(ctx, bson.M{"title": title}).Decode(&t)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ListFree returns the free themes in catalog (ordinal) order.
func (s *Store) ListFree(ctx context.Context) ([]models.Theme, error) {
	return s.list(ctx, bson.M{"status": models.ThemeFree})
}

// ListAll returns the whole catalog in ordinal order, free and reserved.
func (s *Store) ListAll(ctx context.Context) ([]models.Theme, error) {
	return s.list(ctx, bson.M{})
}

func (s *Store) list(ctx context.Context, filter bson.M) ([]models.Theme, error) {
	opts := options.Find().SetSort(bson.D{{Key: "ordinal", Value: 1}, {Key: "title_ci", Value: 1}})
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var themes []models.Theme
	if err := cur.All(ctx, &themes); err != nil {
		return nil, err
	}
	return themes, nil
}

// ReservedByGroup returns the theme currently held by the group, or
// ErrNotFound when the group holds none.
func (s *Store) ReservedByGroup(ctx context.Context, groupCode string) (*models.Theme, error) {
	var t models.Theme
	err := s.c.FindOne(ctx, bson.M{
		"status":      models.ThemeReserved,
		"reserved_by": groupCode,
	}).Decode(&t)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Reserve performs the free→reserved transition as a single conditional
// update: the filter demands status "free", so two concurrent reserves on
// the same theme cannot both match. Losing the race returns
// ErrAlreadyReserved; a title that does not exist at all returns
// ErrNotFound.
func (s *Store) Reserve(ctx context.Context, title, groupCode string) (*models.Theme, error) {
	now := time.Now().UTC()
	update := bson.M{
		"$set": bson.M{
			"status":      models.ThemeReserved,
			"reserved_by": groupCode,
			"reserved_at": now,
			"updated_at":  now,
		},
		"$unset": bson.M{
			"released_by": "",
			"released_at": "",
		},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var t models.Theme
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"title": title, "status": models.ThemeFree},
		update, opts).Decode(&t)
	if err == mongo.ErrNoDocuments {
		return nil, s.reserveMiss(ctx, title)
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// reserveMiss distinguishes "lost the race" from "no such theme".
func (s *Store) reserveMiss(ctx context.Context, title string) error {
	n, err := s.c.CountDocuments(ctx, bson.M{"title": title})
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return ErrAlreadyReserved
}

// ReleaseByGroup performs the reserved→free transition, but only when the
// theme is held by the named group. reserved_by/reserved_at are cleared,
// released_by/released_at record the release, and the theme becomes
// reservable again immediately.
func (s *Store) ReleaseByGroup(ctx context.Context, title, groupCode, releasedBy string) (*models.Theme, error) {
	now := time.Now().UTC()
	update := bson.M{
		"$set": bson.M{
			"status":      models.ThemeFree,
			"released_by": releasedBy,
			"released_at": now,
			"updated_at":  now,
		},
		"$unset": bson.M{
			"reserved_by": "",
			"reserved_at": "",
		},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var t models.Theme
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"title": title, "status": models.ThemeReserved, "reserved_by": groupCode},
		update, opts).Decode(&t)
	if err == mongo.ErrNoDocuments {
		n, cerr := s.c.CountDocuments(ctx, bson.M{"title": title})
		if cerr != nil {
			return nil, cerr
		}
		if n == 0 {
			return nil, ErrNotFound
		}
		return nil, ErrNotReserved
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ForceRelease frees a theme regardless of which group holds it. Staff
// only; member self-release goes through ReleaseByGroup.
func (s *Store) ForceRelease(ctx context.Context, title, releasedBy string) (*models.Theme, error) {
	now := time.Now().UTC()
	update := bson.M{
		"$set": bson.M{
			"status":      models.ThemeFree,
			"released_by": releasedBy,
			"released_at": now,
			"updated_at":  now,
		},
		"$unset": bson.M{
			"reserved_by": "",
			"reserved_at": "",
		},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var t models.Theme
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"title": title, "status": models.ThemeReserved},
		update, opts).Decode(&t)
	if err == mongo.ErrNoDocuments {
		n, cerr := s.c.CountDocuments(ctx, bson.M{"title": title})
		if cerr != nil {
			return nil, cerr
		}
		if n == 0 {
			return nil, ErrNotFound
		}
		return nil, ErrNotReserved
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Counts returns (free, reserved) totals for the dashboard header.
func (s *Store) Counts(ctx context.Context) (free, reserved int64, err error) {
	free, err = s.c.CountDocuments(ctx, bson.M{"status": models.ThemeFree})
	if err != nil {
		return 0, 0, err
	}
	reserved, err = s.c.CountDocuments(ctx, bson.M{"status": models.ThemeReserved})
	if err != nil {
		return 0, 0, err
	}
	return free, reserved, nil
}
