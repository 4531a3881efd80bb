package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"

	"github.com/healthtrack/healthtrack/internal/core/domain"
	"github.com/healthtrack/healthtrack/internal/core/ports"
)

type stubMedicationRepo struct {
	items map[string]*domain.Medication
}

func newStubMedicationRepo() *stubMedicationRepo {
	return &stubMedicationRepo{items: make(map[string]*domain.Medication)}
}

func (r *stubMedicationRepo) Create(_ context.Context, m *domain.Medication) error {
	clone := *m
	r.items[m.ID] = &clone
	return nil
}

func (r *stubMedicationRepo) ListByUser(_ context.Context, userID string) ([]*domain.Medication, error) {
	var out []*domain.Medication
	for _, m := range r.items {
		if m.UserID == userID {
			clone := *m
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *stubMedicationRepo) FindByID(_ context.Context, userID, id string) (*domain.Medication, error) {
	m, ok := r.items[id]
	if !ok || m.UserID != userID {
		return nil, domain.ErrMedicationNotFound
	}
	clone := *m
	return &clone, nil
}

func (r *stubMedicationRepo) Update(_ context.Context, m *domain.Medication) error {
	if _, ok := r.items[m.ID]; !ok {
		return domain.ErrMedicationNotFound
	}
	clone := *m
	r.items[m.ID] = &clone
	return nil
}

func (r *stubMedicationRepo) Delete(_ context.Context, userID, id string) error {
	m, ok := r.items[id]
	if !ok || m.UserID != userID {
		return domain.ErrMedicationNotFound
	}
	delete(r.items, id)
	return nil
}

func TestMedicationService_CreateAndGet(t *testing.T) {
	svc := NewMedicationService(newStubMedicationRepo(), zerolog.Nop())

	created, err := svc.Create(context.Background(), "user-1", ports.MedicationInput{
		Name: " Lisinopril ", Dosage: "10mg", Frequency: "daily", Instructions: "with food",
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if created.ID == "" || created.UserID != "user-1" || created.Name != "Lisinopril" {
		t.Fatalf("unexpected medication: %+v", created)
	}
	if created.CreatedAt.IsZero() {
		t.Fatalf("expected createdAt to be set")
	}

	got, err := svc.Get(context.Background(), "user-1", created.ID)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if got.Dosage != "10mg" {
		t.Fatalf("unexpected dosage: %s", got.Dosage)
	}
}

func TestMedicationService_Get_OtherUser(t *testing.T) {
	svc := NewMedicationService(newStubMedicationRepo(), zerolog.Nop())

	created, _ := svc.Create(context.Background(), "user-1", ports.MedicationInput{Name: "A", Dosage: "1", Frequency: "daily"})
	if _, err := svc.Get(context.Background(), "user-2", created.ID); err != domain.ErrMedicationNotFound {
		t.Fatalf("expected ErrMedicationNotFound, got %v", err)
	}
}

func TestMedicationService_List_EmptyIsNotNil(t *testing.T) {
	svc := NewMedicationService(newStubMedicationRepo(), zerolog.Nop())

	meds, err := svc.List(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if meds == nil || len(meds) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", meds)
	}
}

func TestMedicationService_Update_KeepsIdentity(t *testing.T) {
	repo := newStubMedicationRepo()
	svc := NewMedicationService(repo, zerolog.Nop())

	created, _ := svc.Create(context.Background(), "user-1", ports.MedicationInput{Name: "A", Dosage: "1", Frequency: "daily"})
	updated, err := svc.Update(context.Background(), "user-1", created.ID, ports.MedicationInput{Name: "B", Dosage: "2", Frequency: "twice daily"})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if updated.ID != created.ID || !updated.CreatedAt.Equal(created.CreatedAt) {
		t.Fatalf("identity changed: %+v vs %+v", updated, created)
	}
	if repo.items[created.ID].Name != "B" {
		t.Fatalf("expected stored name B, got %s", repo.items[created.ID].Name)
	}
}

func TestMedicationService_Delete(t *testing.T) {
	repo := newStubMedicationRepo()
	svc := NewMedicationService(repo, zerolog.Nop())

	created, _ := svc.Create(context.Background(), "user-1", ports.MedicationInput{Name: "A", Dosage: "1", Frequency: "daily"})
	if err := svc.Delete(context.Background(), "user-2", created.ID); err != domain.ErrMedicationNotFound {
		t.Fatalf("expected ErrMedicationNotFound for other user, got %v", err)
	}
	if err := svc.Delete(context.Background(), "user-1", created.ID); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if len(repo.items) != 0 {
		t.Fatalf("expected repository to be empty")
	}
}
