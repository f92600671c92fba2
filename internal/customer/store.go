package customer

import (
	"encoding/json"
	log "log/slog"
	"os"
)

// Store answers phone-number lookups against the customer data file. The
// file is read wholesale on every lookup so hand edits are picked up without
// a restart; records are a read-only snapshot, never written back.
type Store struct {
	path string
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

// Find returns the first record whose number matches the query in canonical
// form, or nil when there is no match. I/O and parse failures are logged and
// reported as a miss: a broken data file is an input problem for the caller,
// not a reason to abort the call.
func (s *Store) Find(phone string) *Record {
	records, err := s.load()
	if err != nil {
		log.Error("Failed to load customer records", "path", s.path, "err", err)
		return nil
	}

	want := canonical(phone)
	if want == "" {
		return nil
	}
	for i := range records {
		if canonical(records[i].Numara) == want {
			return &records[i]
		}
	}
	return nil
}

func (s *Store) load() ([]Record, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, err
	}
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, err
	}
	return records, nil
}
