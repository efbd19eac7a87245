package repository

import (
	"context"

	"github.com/jwalitptl/patient-api/internal/model"
)

// RecordStore is the durable mapping from patient id to record. Load
// returns the full mapping; Save overwrites it wholesale. There is no
// partial write and no isolation between concurrent load/save pairs.
type RecordStore interface {
	Load(ctx context.Context) (map[string]*model.Patient, error)
	Save(ctx context.Context, records map[string]*model.Patient) error
}
