package models

import "encoding/json"

// UploadSchemaResponse is returned after a successful schema upload
type UploadSchemaResponse struct {
	Message string `json:"message"`
	Slot    string `json:"slot"`
	Name    string `json:"name"`
	Kind    string `json:"kind"`
	Fields  int    `json:"fields"`
}

// SlotStatus represents one loaded schema slot
type SlotStatus struct {
	Loaded   bool   `json:"loaded"`
	Filename string `json:"filename,omitempty"`
	Kind     string `json:"kind,omitempty"`
	Fields   int    `json:"fields"`
}

// StatusResponse is returned by the /api/status endpoint
type StatusResponse struct {
	SourceLoaded bool       `json:"source_loaded"`
	TargetLoaded bool       `json:"target_loaded"`
	Source       SlotStatus `json:"source"`
	Target       SlotStatus `json:"target"`
	MappingReady bool       `json:"mapping_ready"`
}

// GenerateMappingRequest is the body of /api/mapping/generate. Nil values
// fall back to the configured defaults.
type GenerateMappingRequest struct {
	Threshold *float64 `json:"threshold,omitempty"`
	MaxLevel  *int     `json:"max_level,omitempty"`
	Scorer    string   `json:"scorer,omitempty"`
}

// MappingResponse is returned by /api/mapping/generate
type MappingResponse struct {
	RunID   string         `json:"run_id"`
	Entries []MappingEntry `json:"entries"`
	Stats   MappingStats   `json:"stats"`
}

// UnmappedResponse lists paths without a counterpart on the other side
type UnmappedResponse struct {
	Source []string `json:"source"`
	Target []string `json:"target"`
}

// SuggestionsResponse lists below-threshold candidates for manual review
type SuggestionsResponse struct {
	Suggestions []Suggestion `json:"suggestions"`
}

// ConnectDBRequest overrides the configured database connection. Empty
// fields fall back to the server configuration.
type ConnectDBRequest struct {
	Host     string `json:"host,omitempty"`
	Port     int    `json:"port,omitempty"`
	User     string `json:"user,omitempty"`
	Password string `json:"password,omitempty"`
	DBName   string `json:"dbname,omitempty"`
	SSLMode  string `json:"sslmode,omitempty"`
}

// ExtractTableRequest is the body of /api/db/extract
type ExtractTableRequest struct {
	Table string `json:"table"`
	Slot  string `json:"slot"`
}

// ValidateRequest is the body of /api/validate
type ValidateRequest struct {
	Schema   json.RawMessage `json:"schema"`
	Instance json.RawMessage `json:"instance,omitempty"`
}

// ValidateResponse is returned by /api/validate
type ValidateResponse struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitempty"`
}
