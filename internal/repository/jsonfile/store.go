package jsonfile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/patient-api/internal/model"
	"github.com/jwalitptl/patient-api/internal/repository"
)

type store struct {
	path string
}

// NewStore returns a RecordStore backed by a single JSON file holding
// the id->record object. The file is read in full on every Load and
// overwritten in full on every Save.
func NewStore(path string) repository.RecordStore {
	return &store{path: path}
}

// Load reads the backing file. A missing or unparseable file is "no
// data yet" and yields an empty mapping, never an error; a corrupt
// store is therefore silently discarded on the next Save.
func (s *store) Load(ctx context.Context) (map[string]*model.Patient, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn().Err(err).Str("path", s.path).Msg("record store unreadable, treating as empty")
		}
		return map[string]*model.Patient{}, nil
	}

	records := map[string]*model.Patient{}
	if err := json.Unmarshal(data, &records); err != nil {
		log.Warn().Err(err).Str("path", s.path).Msg("record store unparseable, treating as empty")
		return map[string]*model.Patient{}, nil
	}
	return records, nil
}

// Save overwrites the backing file with the full mapping, indented for
// readability. Not atomic: a crash mid-write can truncate the store.
func (s *store) Save(ctx context.Context, records map[string]*model.Patient) error {
	data, err := json.MarshalIndent(records, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to marshal records: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write record store: %w", err)
	}
	return nil
}
