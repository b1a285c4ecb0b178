// internal/app/store/memberships/membershipstore.go
package membershipstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/temahub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type Store struct {
	c        *mongo.Collection
	groups   *mongo.Collection
	students *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{
		c:        db.Collection("group_memberships"),
		groups:   db.Collection("groups"),
		students: db.Collection("students"),
	}
}

var (
	// ErrAlreadyInOtherGroup is returned by Add when single-membership
	// enforcement is on and the student already belongs to another group.
	ErrAlreadyInOtherGroup = errors.New("student already belongs to another group")

	ErrSectionMismatch = errors.New("student and group belong to different sections")
)

// Add creates a membership. Duplicate (group, student) pairs are a silent
// no-op, matching the idempotent behavior the membership form needs on a
// double submit. When enforceSingle is true, a membership in any other
// group fails with ErrAlreadyInOtherGroup.
func (s *Store) Add(ctx context.Context, groupID, studentID primitive.ObjectID, enforceSingle bool) error {
	var g models.Group
	if err := s.groups.FindOne(ctx, bson.M{"_id": groupID}).Decode(&g); err != nil {
		return err
	}

	var st models.Student
	if err := s.students.FindOne(ctx, bson.M{"_id": studentID}).Decode(&st); err != nil {
		return err
	}
	if st.Section != "" && g.Section != st.Section {
		return ErrSectionMismatch
	}

	if enforceSingle {
		n, err := s.c.CountDocuments(ctx, bson.M{
			"student_id": studentID,
			"group_id":   bson.M{"$ne": groupID},
		})
		if err != nil {
			return err
		}
		if n > 0 {
			return ErrAlreadyInOtherGroup
		}
	}

	doc := bson.M{
		"group_id":   groupID,
		"student_id": studentID,
		"group_code": g.Code,
		"section":    g.Section,
		"created_at": time.Now().UTC(),
	}
	_, err := s.c.InsertOne(ctx, doc)
	if err != nil {
		if wafflemongo.IsDup(err) {
			return nil // already a member
		}
		return err
	}
	return nil
}

// Remove deletes the membership document for (groupID, studentID).
// Removing a non-member is a no-op.
func (s *Store) Remove(ctx context.Context, groupID, studentID primitive.ObjectID) error {
	_, err := s.c.DeleteOne(ctx, bson.M{"group_id": groupID, "student_id": studentID})
	return err
}

// CountByGroup returns the membership count the reservation policy is
// evaluated against.
func (s *Store) CountByGroup(ctx context.Context, groupID primitive.ObjectID) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"group_id": groupID})
}

// CountByGroupCode is CountByGroup keyed by the denormalized group code.
func (s *Store) CountByGroupCode(ctx context.Context, code string) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"group_code": code})
}

// ListByGroup returns all memberships for a group.
func (s *Store) ListByGroup(ctx context.Context, groupID primitive.ObjectID) ([]models.GroupMembership, error) {
	cur, err := s.c.Find(ctx, bson.M{"group_id": groupID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var memberships []models.GroupMembership
	if err := cur.All(ctx, &memberships); err != nil {
		return nil, err
	}
	return memberships, nil
}

// ActiveGroupForStudent returns the code of a group the student belongs
// to, or "" if none. With enforcement off a student can be in several
// groups; the first (oldest) membership wins for display purposes.
func (s *Store) ActiveGroupForStudent(ctx context.Context, studentID primitive.ObjectID) (string, error) {
	var m models.GroupMembership
	err := s.c.FindOne(ctx, bson.M{"student_id": studentID}).Decode(&m)
	if err == mongo.ErrNoDocuments {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return m.GroupCode, nil
}

// MemberNamesByGroupCode resolves the member students' full names for a
// group code, for the gallery export and the group view page.
func (s *Store) MemberNamesByGroupCode(ctx context.Context, code string) ([]string, error) {
	cur, err := s.c.Aggregate(ctx, []bson.M{
		{"$match": bson.M{"group_code": code}},
		{"$lookup": bson.M{
			"from":         "students",
			"localField":   "student_id",
			"foreignField": "_id",
			"as":           "student",
		}},
		{"$unwind": "$student"},
		{"$sort": bson.M{"student.full_name_ci": 1}},
		{"$project": bson.M{"name": "$student.full_name"}},
	})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var names []string
	for cur.Next(ctx) {
		var row struct {
			Name string `bson:"name"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		names = append(names, row.Name)
	}
	return names, cur.Err()
}
