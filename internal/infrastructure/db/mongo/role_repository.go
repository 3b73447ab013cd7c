package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/pskiad17/FinancialOrganizer/internal/core/domain"
)

const (
	roleCollection       = "roles"
	assignmentCollection = "user_roles"
)

// RoleRepository implements ports.RoleStore using MongoDB.
type RoleRepository struct {
	roles       *mongo.Collection
	assignments *mongo.Collection
}

func NewRoleRepository(db *mongo.Database) *RoleRepository {
	return &RoleRepository{
		roles:       db.Collection(roleCollection),
		assignments: db.Collection(assignmentCollection),
	}
}

type roleDocument struct {
	ID   string `bson:"_id"`
	Name string `bson:"name"`
}

type assignmentDocument struct {
	UserID     string    `bson:"user_id"`
	RoleID     string    `bson:"role_id"`
	AssignedAt time.Time `bson:"assigned_at"`
}

func (r *RoleRepository) FindAssignment(ctx context.Context, userID string) (*domain.RoleAssignment, error) {
	var doc assignmentDocument
	if err := r.assignments.FindOne(ctx, bson.M{"user_id": userID}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrRoleAssignmentMissing
		}
		return nil, fmt.Errorf("find role assignment: %w", err)
	}
	return &domain.RoleAssignment{UserID: doc.UserID, RoleID: doc.RoleID}, nil
}

func (r *RoleRepository) FindRoleByID(ctx context.Context, roleID string) (*domain.Role, error) {
	return r.findRole(ctx, bson.M{"_id": roleID})
}

func (r *RoleRepository) FindRoleByName(ctx context.Context, name string) (*domain.Role, error) {
	return r.findRole(ctx, bson.M{"name": name})
}

// Assign stores the single role of an account. The unique index on user_id
// rejects a second assignment.
func (r *RoleRepository) Assign(ctx context.Context, a domain.RoleAssignment) error {
	doc := assignmentDocument{
		UserID:     a.UserID,
		RoleID:     a.RoleID,
		AssignedAt: time.Now().UTC(),
	}
	if _, err := r.assignments.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert role assignment: %w", err)
	}
	return nil
}

func (r *RoleRepository) findRole(ctx context.Context, filter bson.M) (*domain.Role, error) {
	var doc roleDocument
	if err := r.roles.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrRoleNotFound
		}
		return nil, fmt.Errorf("find role: %w", err)
	}
	return &domain.Role{ID: doc.ID, Name: doc.Name}, nil
}
