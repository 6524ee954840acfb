package state

import (
	"sync"

	"schemaforge/internal/models"
	"schemaforge/internal/source"
)

// Slot names one of the two schema positions in a mapping run.
type Slot string

const (
	SlotSource Slot = "source"
	SlotTarget Slot = "target"
)

// Valid reports whether s names a known slot.
func (s Slot) Valid() bool {
	return s == SlotSource || s == SlotTarget
}

// LoadedSchema is one uploaded schema document with its extracted tree.
// Raw keeps the original bytes so mapping runs can re-extract with
// different options.
type LoadedSchema struct {
	FileName string
	Raw      []byte
	Tree     *models.SchemaTree
}

// MappingRun is the stored result of one mapping generation, including
// the trees the entries point into. MaxLevel carries the level-column
// override requested at generation time, zero for the configured default.
type MappingRun struct {
	RunID    string
	Source   *models.SchemaTree
	Target   *models.SchemaTree
	Entries  []models.MappingEntry
	Stats    models.MappingStats
	MaxLevel int
}

// AppState holds the global application state
type AppState struct {
	mu sync.RWMutex

	Source *LoadedSchema
	Target *LoadedSchema
	Run    *MappingRun

	db source.Database
}

// New returns an empty application state.
func New() *AppState {
	return &AppState{}
}

// SetSchema stores a loaded schema in the given slot and drops any mapping
// produced from the previous contents.
func (s *AppState) SetSchema(slot Slot, schema *LoadedSchema) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if slot == SlotSource {
		s.Source = schema
	} else if slot == SlotTarget {
		s.Target = schema
	}
	s.Run = nil
}

// GetSchema retrieves the schema loaded in the given slot.
func (s *AppState) GetSchema(slot Slot) *LoadedSchema {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if slot == SlotSource {
		return s.Source
	} else if slot == SlotTarget {
		return s.Target
	}
	return nil
}

// SetMapping stores the result of a mapping run.
func (s *AppState) SetMapping(run *MappingRun) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Run = run
}

// Mapping retrieves the stored mapping run, nil when none was generated.
func (s *AppState) Mapping() *MappingRun {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Run
}

// SetDatabase stores the active database connection, closing the one it
// replaces.
func (s *AppState) SetDatabase(db source.Database) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db != nil {
		s.db.Close()
	}
	s.db = db
}

// Database retrieves the active database connection, nil when none was
// established.
func (s *AppState) Database() source.Database {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.db
}
