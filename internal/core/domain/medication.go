package domain

import (
	"errors"
	"time"
)

var ErrMedicationNotFound = errors.New("medication not found")

// Medication is a prescription the user keeps track of.
type Medication struct {
	ID           string    `json:"id" bson:"_id"`
	UserID       string    `json:"userId" bson:"user_id"`
	Name         string    `json:"name" bson:"name"`
	Dosage       string    `json:"dosage" bson:"dosage"`
	Frequency    string    `json:"frequency" bson:"frequency"`
	Instructions string    `json:"instructions,omitempty" bson:"instructions,omitempty"`
	CreatedAt    time.Time `json:"createdAt" bson:"created_at"`
}
