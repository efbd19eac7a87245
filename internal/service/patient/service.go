package patient

import (
	"context"
	"fmt"
	"sort"

	"github.com/jwalitptl/patient-api/internal/model"
	"github.com/jwalitptl/patient-api/internal/repository"
	apperrors "github.com/jwalitptl/patient-api/pkg/errors"
)

// Sortable fields and orders accepted by SortPatients.
var (
	sortFields = map[string]bool{"salary": true, "age": true}
	sortOrders = map[string]bool{"asc": true, "desc": true}
)

type PatientService interface {
	ListPatients(ctx context.Context) (map[string]*model.Patient, error)
	GetPatient(ctx context.Context, id string) (*model.Patient, error)
	SortPatients(ctx context.Context, sortBy, order string) ([]*model.Patient, error)
	CreatePatient(ctx context.Context, req *model.CreatePatientRequest) (*model.Patient, error)
	UpdatePatient(ctx context.Context, id string, req *model.UpdatePatientRequest) (*model.Patient, error)
	DeletePatient(ctx context.Context, id string) (*model.Patient, error)
}

// Service applies each operation to a freshly loaded snapshot of the
// record store and, for mutations, writes the whole mapping back.
// Nothing is cached between calls.
type Service struct {
	store repository.RecordStore
}

func NewService(store repository.RecordStore) *Service {
	return &Service{store: store}
}

func (s *Service) ListPatients(ctx context.Context) (map[string]*model.Patient, error) {
	records, err := s.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load records: %w", err)
	}
	return records, nil
}

func (s *Service) GetPatient(ctx context.Context, id string) (*model.Patient, error) {
	records, err := s.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load records: %w", err)
	}

	patient, ok := records[id]
	if !ok {
		return nil, apperrors.NotFound("patient")
	}
	return patient, nil
}

// SortPatients orders the stored records by salary or age. Records are
// collected id-ascending before the stable sort so ties keep a
// deterministic order across calls.
func (s *Service) SortPatients(ctx context.Context, sortBy, order string) ([]*model.Patient, error) {
	if !sortFields[sortBy] {
		return nil, apperrors.InvalidArgument("invalid sort field, choose from salary or age")
	}
	if !sortOrders[order] {
		return nil, apperrors.InvalidArgument("invalid order, choose asc or desc")
	}

	records, err := s.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load records: %w", err)
	}

	ids := make([]string, 0, len(records))
	for id := range records {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	patients := make([]*model.Patient, 0, len(records))
	for _, id := range ids {
		patients = append(patients, records[id])
	}

	desc := order == "desc"
	sort.SliceStable(patients, func(i, j int) bool {
		a, b := sortKey(patients[i], sortBy), sortKey(patients[j], sortBy)
		if desc {
			return a > b
		}
		return a < b
	})

	return patients, nil
}

func sortKey(p *model.Patient, field string) float64 {
	if field == "salary" {
		return p.Salary
	}
	return float64(p.Age)
}

func (s *Service) CreatePatient(ctx context.Context, req *model.CreatePatientRequest) (*model.Patient, error) {
	records, err := s.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load records: %w", err)
	}

	if _, exists := records[req.ID]; exists {
		return nil, apperrors.Conflict("patient with this ID already exists")
	}

	patient := model.NewPatient(req)
	records[patient.ID] = patient

	if err := s.store.Save(ctx, records); err != nil {
		return nil, fmt.Errorf("failed to save records: %w", err)
	}
	return patient, nil
}

func (s *Service) UpdatePatient(ctx context.Context, id string, req *model.UpdatePatientRequest) (*model.Patient, error) {
	records, err := s.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load records: %w", err)
	}

	patient, ok := records[id]
	if !ok {
		return nil, apperrors.NotFound("patient")
	}

	patient.ApplyUpdate(req)

	if err := s.store.Save(ctx, records); err != nil {
		return nil, fmt.Errorf("failed to save records: %w", err)
	}
	return patient, nil
}

func (s *Service) DeletePatient(ctx context.Context, id string) (*model.Patient, error) {
	records, err := s.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load records: %w", err)
	}

	patient, ok := records[id]
	if !ok {
		return nil, apperrors.NotFound("patient")
	}
	delete(records, id)

	if err := s.store.Save(ctx, records); err != nil {
		return nil, fmt.Errorf("failed to save records: %w", err)
	}
	return patient, nil
}
