package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/healthtrack/healthtrack/internal/core/domain"
)

const collectionMedications = "medications"

type MedicationRepository struct {
	col *mongo.Collection
}

func NewMedicationRepository(db *mongo.Database) *MedicationRepository {
	return &MedicationRepository{col: db.Collection(collectionMedications)}
}

func (r *MedicationRepository) Create(ctx context.Context, m *domain.Medication) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.InsertOne(ctx, m); err != nil {
		return fmt.Errorf("insert medication: %w", err)
	}
	return nil
}

// ListByUser returns the user's medications, newest first.
func (r *MedicationRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Medication, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := r.col.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("find medications: %w", err)
	}

	meds := []*domain.Medication{}
	if err := cur.All(ctx, &meds); err != nil {
		return nil, fmt.Errorf("decode medications: %w", err)
	}
	return meds, nil
}

func (r *MedicationRepository) FindByID(ctx context.Context, userID, id string) (*domain.Medication, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var m domain.Medication
	err := r.col.FindOne(ctx, bson.M{"_id": id, "user_id": userID}).Decode(&m)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrMedicationNotFound
		}
		return nil, fmt.Errorf("find medication: %w", err)
	}
	return &m, nil
}

func (r *MedicationRepository) Update(ctx context.Context, m *domain.Medication) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"name":         m.Name,
		"dosage":       m.Dosage,
		"frequency":    m.Frequency,
		"instructions": m.Instructions,
	}}
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": m.ID, "user_id": m.UserID}, update)
	if err != nil {
		return fmt.Errorf("update medication: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrMedicationNotFound
	}
	return nil
}

func (r *MedicationRepository) Delete(ctx context.Context, userID, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id, "user_id": userID})
	if err != nil {
		return fmt.Errorf("delete medication: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrMedicationNotFound
	}
	return nil
}
