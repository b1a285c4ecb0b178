// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

/*
EnsureAll is called at startup. Each ensure* function is idempotent.
We aggregate errors so any problem is visible and startup can fail fast.

The unique indexes here are load-bearing: groups.code backs the
retry-on-conflict code allocator, themes.title backs merge-by-title
imports, and group_memberships(group_id, student_id) plus
reviews(submission_id, reviewer_id) back idempotent add/upsert semantics.
*/
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	if err := ensureStudents(ctx, db); err != nil {
		problems = append(problems, "students: "+err.Error())
	}
	if err := ensureGroups(ctx, db); err != nil {
		problems = append(problems, "groups: "+err.Error())
	}
	if err := ensureGroupMemberships(ctx, db); err != nil {
		problems = append(problems, "group_memberships: "+err.Error())
	}
	if err := ensureThemes(ctx, db); err != nil {
		problems = append(problems, "themes: "+err.Error())
	}
	if err := ensureSubmissions(ctx, db); err != nil {
		problems = append(problems, "submissions: "+err.Error())
	}
	if err := ensureReviews(ctx, db); err != nil {
		problems = append(problems, "reviews: "+err.Error())
	}
	if err := ensureUsers(ctx, db); err != nil {
		problems = append(problems, "users: "+err.Error())
	}
	if err := ensureOAuthStates(ctx, db); err != nil {
		problems = append(problems, "oauth_states: "+err.Error())
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

func ensureStudents(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("students"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "ra", Value: 1}},
			Options: options.Index().SetName("uniq_ra").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "section", Value: 1}, {Key: "full_name_ci", Value: 1}},
			Options: options.Index().SetName("section_name"),
		},
	})
}

func ensureGroups(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("groups"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "code", Value: 1}},
			Options: options.Index().SetName("uniq_code").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "section", Value: 1}},
			Options: options.Index().SetName("section"),
		},
	})
}

func ensureGroupMemberships(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("group_memberships"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "group_id", Value: 1}, {Key: "student_id", Value: 1}},
			Options: options.Index().SetName("uniq_group_student").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "student_id", Value: 1}},
			Options: options.Index().SetName("student"),
		},
	})
}

func ensureThemes(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("themes"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "title", Value: 1}},
			Options: options.Index().SetName("uniq_title").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "ordinal", Value: 1}},
			Options: options.Index().SetName("status_ordinal"),
		},
		{
			Keys:    bson.D{{Key: "reserved_by", Value: 1}},
			Options: options.Index().SetName("reserved_by"),
		},
	})
}

func ensureSubmissions(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("submissions"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "group_code", Value: 1}, {Key: "submitted_at", Value: -1}},
			Options: options.Index().SetName("group_newest"),
		},
		{
			Keys:    bson.D{{Key: "published", Value: 1}, {Key: "submitted_at", Value: -1}},
			Options: options.Index().SetName("published_newest"),
		},
	})
}

func ensureReviews(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("reviews"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "submission_id", Value: 1}, {Key: "reviewer_id", Value: 1}},
			Options: options.Index().SetName("uniq_submission_reviewer").SetUnique(true),
		},
	})
}

func ensureOAuthStates(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("oauth_states"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "state", Value: 1}},
			Options: options.Index().SetName("uniq_state").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetName("ttl_expires").SetExpireAfterSeconds(0),
		},
	})
}

func ensureUsers(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("users"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "login_id", Value: 1}},
			Options: options.Index().SetName("uniq_login_id").SetUnique(true),
		},
	})
}

/* -------------------------------------------------------------------------- */
/* Core helper: reconcile a set of desired indexes for one collection         */
/* -------------------------------------------------------------------------- */

type existingIndex struct {
	Name   string `bson:"name"`
	Key    bson.D `bson:"key"`
	Unique *bool  `bson:"unique,omitempty"`
}

func keySig(keys bson.D) string {
	parts := make([]string, 0, len(keys))
	for _, kv := range keys {
		parts = append(parts, fmt.Sprintf("%s:%v", kv.Key, kv.Value))
	}
	return strings.Join(parts, ", ")
}

func sameBoolPtr(a, b *bool) bool {
	av := a != nil && *a
	bv := b != nil && *b
	return av == bv
}

func ensureIndexSet(ctx context.Context, coll *mongo.Collection, desired []mongo.IndexModel) error {
	existing := map[string]existingIndex{} // sig -> index
	cur, err := coll.Indexes().List(ctx)
	if err == nil {
		defer cur.Close(ctx)
		for cur.Next(ctx) {
			var idx existingIndex
			if err := cur.Decode(&idx); err != nil {
				zap.L().Warn("failed to decode existing index",
					zap.String("collection", coll.Name()),
					zap.Error(err))
				continue
			}
			existing[keySig(idx.Key)] = idx
		}
	}

	var errs []string
	for _, m := range desired {
		var desiredName string
		var desiredUnique *bool
		if m.Options != nil {
			if m.Options.Name != nil {
				desiredName = *m.Options.Name
			}
			desiredUnique = m.Options.Unique
		}
		sig := keySig(m.Keys.(bson.D))
		start := time.Now()

		if ex, ok := existing[sig]; ok {
			if sameBoolPtr(desiredUnique, ex.Unique) {
				continue // keys and options match, reuse
			}
			// Options mismatch (e.g. upgrading to unique): drop & recreate.
			if _, err := coll.Indexes().DropOne(ctx, ex.Name); err != nil {
				errs = append(errs, fmt.Sprintf("%s(%s): drop failed: %v", coll.Name(), desiredName, err))
				continue
			}
		}

		if _, err := coll.Indexes().CreateOne(ctx, m); err != nil {
			if isDuplicateKeyErr(err) && desiredUnique != nil && *desiredUnique {
				errs = append(errs, fmt.Sprintf("%s(%s): cannot create unique index (duplicates present)", coll.Name(), desiredName))
			} else {
				errs = append(errs, fmt.Sprintf("%s(%s): %v", coll.Name(), desiredName, err))
			}
			continue
		}

		zap.L().Info("index created",
			zap.String("collection", coll.Name()),
			zap.String("name", desiredName),
			zap.String("keys", sig),
			zap.Bool("unique", desiredUnique != nil && *desiredUnique),
			zap.String("took", time.Since(start).String()))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

// Best-effort duplicate-detector (works cross-vendors).
func isDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}
	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			if e.Code == 11000 {
				return true
			}
		}
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && ce.Code == 11000 {
		return true
	}
	s := err.Error()
	return strings.Contains(s, "E11000") || strings.Contains(strings.ToLower(s), "duplicate key")
}
