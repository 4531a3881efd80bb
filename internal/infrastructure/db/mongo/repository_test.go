package mongo

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/healthtrack/healthtrack/internal/core/domain"
)

func TestUserRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("create duplicate email", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index: 0, Code: 11000, Message: "duplicate key error",
		}))
		repo := NewUserRepository(mt.DB)

		_, err := repo.Create(context.Background(), &domain.User{ID: "u1", Email: "a@example.com"})
		if !errors.Is(err, domain.ErrUserExists) {
			mt.Fatalf("expected ErrUserExists, got %v", err)
		}
	})

	mt.Run("find by email", func(mt *mtest.T) {
		ns := mt.DB.Name() + "." + collectionUsers
		mt.AddMockResponses(mtest.CreateCursorResponse(1, ns, mtest.FirstBatch, bson.D{
			{Key: "_id", Value: "u1"},
			{Key: "name", Value: "Alice"},
			{Key: "email", Value: "a@example.com"},
			{Key: "password_hash", Value: "hash"},
		}))
		repo := NewUserRepository(mt.DB)

		user, err := repo.FindByEmail(context.Background(), "a@example.com")
		if err != nil {
			mt.Fatalf("FindByEmail returned error: %v", err)
		}
		if user.ID != "u1" || user.Name != "Alice" || user.PasswordHash != "hash" {
			mt.Fatalf("unexpected user: %+v", user)
		}
	})

	mt.Run("find by id missing", func(mt *mtest.T) {
		ns := mt.DB.Name() + "." + collectionUsers
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))
		repo := NewUserRepository(mt.DB)

		if _, err := repo.FindByID(context.Background(), "ghost"); !errors.Is(err, domain.ErrUserNotFound) {
			mt.Fatalf("expected ErrUserNotFound, got %v", err)
		}
	})
}

func TestMedicationRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("list by user", func(mt *mtest.T) {
		ns := mt.DB.Name() + "." + collectionMedications
		first := mtest.CreateCursorResponse(1, ns, mtest.FirstBatch, bson.D{
			{Key: "_id", Value: "m1"},
			{Key: "user_id", Value: "u1"},
			{Key: "name", Value: "Aspirin"},
		})
		end := mtest.CreateCursorResponse(0, ns, mtest.NextBatch)
		mt.AddMockResponses(first, end)
		repo := NewMedicationRepository(mt.DB)

		meds, err := repo.ListByUser(context.Background(), "u1")
		if err != nil {
			mt.Fatalf("ListByUser returned error: %v", err)
		}
		if len(meds) != 1 || meds[0].Name != "Aspirin" {
			mt.Fatalf("unexpected medications: %+v", meds)
		}
	})

	mt.Run("update missing", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}))
		repo := NewMedicationRepository(mt.DB)

		err := repo.Update(context.Background(), &domain.Medication{ID: "m1", UserID: "u2"})
		if !errors.Is(err, domain.ErrMedicationNotFound) {
			mt.Fatalf("expected ErrMedicationNotFound, got %v", err)
		}
	})

	mt.Run("delete", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}))
		repo := NewMedicationRepository(mt.DB)

		if err := repo.Delete(context.Background(), "u1", "m1"); err != nil {
			mt.Fatalf("Delete returned error: %v", err)
		}
	})
}

func TestMetricRepository_Create(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("insert", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())
		repo := NewMetricRepository(mt.DB)

		v := 70.5
		err := repo.Create(context.Background(), &domain.HealthMetric{
			ID: "x1", UserID: "u1", Type: domain.MetricWeight, Value: &v, Unit: "kg", Date: time.Now().UTC(),
		})
		if err != nil {
			mt.Fatalf("Create returned error: %v", err)
		}
	})
}
