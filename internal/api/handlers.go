package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"schemaforge/internal/config"
	"schemaforge/internal/convert"
	"schemaforge/internal/infer"
	"schemaforge/internal/mapping"
	"schemaforge/internal/models"
	"schemaforge/internal/render"
	"schemaforge/internal/schemacheck"
	"schemaforge/internal/source"
	"schemaforge/internal/state"
)

const MaxFileSize = 100 * 1024 * 1024 // 100MB

type Handler struct {
	Config   *config.Config
	State    *state.AppState
	Log      *log.Logger
	Metrics  *Metrics
	Registry *prometheus.Registry
}

func NewHandler(cfg *config.Config, st *state.AppState, logger *log.Logger) *Handler {
	registry := prometheus.NewRegistry()
	return &Handler{
		Config:   cfg,
		State:    st,
		Log:      logger,
		Metrics:  NewMetrics(registry),
		Registry: registry,
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/health", h.HealthCheck)

	// Schema slots
	r.Post("/api/schemas/{slot}", h.UploadSchema)
	r.Get("/api/schemas/{slot}/fields", h.GetFields)
	r.Get("/api/schemas/{slot}/rows", h.GetRows)
	r.Get("/api/status", h.GetStatus)

	// Mapping
	r.Post("/api/mapping/generate", h.GenerateMapping)
	r.Get("/api/mapping/rows", h.GetMappingRows)
	r.Get("/api/mapping/csv", h.DownloadMappingCSV)
	r.Get("/api/mapping/stats", h.GetMappingStats)
	r.Get("/api/mapping/unmapped", h.GetUnmapped)
	r.Get("/api/mapping/suggestions", h.GetSuggestions)

	// Document tools
	r.Post("/api/convert", h.Convert)
	r.Post("/api/infer", h.InferSchema)
	r.Post("/api/validate", h.ValidateSchema)

	// DB Routes
	r.Post("/api/db/connect", h.ConnectDB)
	r.Get("/api/db/tables", h.ListTables)
	r.Post("/api/db/extract", h.ExtractTable)
}

// ============================================================================
// Health
// ============================================================================

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("OK"))
}

// ============================================================================
// Schema slots
// ============================================================================

// UploadSchema stores an uploaded schema document in a slot and extracts
// its field tree
func (h *Handler) UploadSchema(w http.ResponseWriter, r *http.Request) {
	slot := state.Slot(chi.URLParam(r, "slot"))
	if !slot.Valid() {
		http.Error(w, "Unknown slot, want source or target", http.StatusBadRequest)
		return
	}

	r.ParseMultipartForm(MaxFileSize)
	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "Error retrieving file", http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, "Error reading file", http.StatusInternalServerError)
		return
	}

	tree, err := source.Extract(header.Filename, data)
	if err != nil {
		h.Log.Error("extraction failed", "file", header.Filename, "err", err)
		http.Error(w, fmt.Sprintf("Extraction failed: %v", err), extractionStatus(err))
		return
	}

	h.State.SetSchema(slot, &state.LoadedSchema{FileName: header.Filename, Raw: data, Tree: tree})
	h.Metrics.Extractions.WithLabelValues(string(tree.Kind)).Inc()
	h.Log.Info("schema loaded", "slot", slot, "file", header.Filename, "fields", len(tree.Fields))

	writeJSON(w, models.UploadSchemaResponse{
		Message: "schema extracted",
		Slot:    string(slot),
		Name:    tree.Name,
		Kind:    string(tree.Kind),
		Fields:  len(tree.Fields),
	})
}

// GetFields returns the extracted tree for a slot
func (h *Handler) GetFields(w http.ResponseWriter, r *http.Request) {
	ls, ok := h.loadedSlot(w, r)
	if !ok {
		return
	}
	writeJSON(w, ls.Tree)
}

// GetRows renders a slot's tree as a level table
func (h *Handler) GetRows(w http.ResponseWriter, r *http.Request) {
	ls, ok := h.loadedSlot(w, r)
	if !ok {
		return
	}
	maxLevel, _ := strconv.Atoi(r.URL.Query().Get("max_level"))
	writeJSON(w, h.renderer(maxLevel).SchemaTable(ls.Tree))
}

// GetStatus reports which slots are loaded and whether mapping can run
func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	src := h.State.GetSchema(state.SlotSource)
	tgt := h.State.GetSchema(state.SlotTarget)

	writeJSON(w, models.StatusResponse{
		SourceLoaded: src != nil,
		TargetLoaded: tgt != nil,
		Source:       slotStatus(src),
		Target:       slotStatus(tgt),
		MappingReady: src != nil && tgt != nil,
	})
}

// ============================================================================
// Mapping
// ============================================================================

// GenerateMapping aligns the loaded source and target trees and stores
// the run
func (h *Handler) GenerateMapping(w http.ResponseWriter, r *http.Request) {
	src := h.State.GetSchema(state.SlotSource)
	tgt := h.State.GetSchema(state.SlotTarget)
	if src == nil || tgt == nil {
		http.Error(w, "Load source and target schemas first", http.StatusBadRequest)
		return
	}

	var req models.GenerateMappingRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
	}
	if req.Threshold != nil && (*req.Threshold < 0 || *req.Threshold > 1) {
		http.Error(w, "Threshold must be between 0 and 1", http.StatusBadRequest)
		return
	}

	engine := mapping.NewEngine()
	engine.Threshold = h.Config.Mapping.Threshold
	if req.Threshold != nil {
		engine.Threshold = *req.Threshold
	}
	switch req.Scorer {
	case "", "path":
	case "levenshtein":
		engine.Scorer = mapping.LevenshteinScorer{}
	default:
		http.Error(w, "Unknown scorer, want path or levenshtein", http.StatusBadRequest)
		return
	}

	start := time.Now()
	entries := engine.Map(src.Tree.Fields, tgt.Tree.Fields)
	stats := mapping.Stats(entries, len(tgt.Tree.Fields))
	h.Metrics.MappingRuns.Inc()
	h.Metrics.MappingSeconds.Observe(time.Since(start).Seconds())
	h.Metrics.UnmappedFields.Set(float64(stats.NoMatches))

	run := &state.MappingRun{
		RunID:   uuid.NewString(),
		Source:  src.Tree,
		Target:  tgt.Tree,
		Entries: entries,
		Stats:   stats,
	}
	if req.MaxLevel != nil && *req.MaxLevel > 0 {
		run.MaxLevel = *req.MaxLevel
	}
	h.State.SetMapping(run)
	h.Log.Info("mapping generated", "run_id", run.RunID, "entries", len(entries), "coverage", stats.Coverage)

	writeJSON(w, models.MappingResponse{RunID: run.RunID, Entries: entries, Stats: stats})
}

// GetMappingRows renders the stored run as the combined source/target
// table
func (h *Handler) GetMappingRows(w http.ResponseWriter, r *http.Request) {
	run, ok := h.mappingRun(w)
	if !ok {
		return
	}
	writeJSON(w, h.renderer(run.MaxLevel).MappingTable(run.Entries, run.Source, run.Target))
}

// DownloadMappingCSV streams the stored run as a CSV attachment
func (h *Handler) DownloadMappingCSV(w http.ResponseWriter, r *http.Request) {
	run, ok := h.mappingRun(w)
	if !ok {
		return
	}
	table := h.renderer(run.MaxLevel).MappingTable(run.Entries, run.Source, run.Target)
	name := render.MappingFileName(run.Source.Name, run.Target.Name)

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	if err := render.WriteCSV(w, table); err != nil {
		h.Log.Error("csv write failed", "err", err)
	}
}

// GetMappingStats returns the stored run's summary numbers
func (h *Handler) GetMappingStats(w http.ResponseWriter, r *http.Request) {
	run, ok := h.mappingRun(w)
	if !ok {
		return
	}
	writeJSON(w, run.Stats)
}

// GetUnmapped lists paths the stored run left without a counterpart
func (h *Handler) GetUnmapped(w http.ResponseWriter, r *http.Request) {
	run, ok := h.mappingRun(w)
	if !ok {
		return
	}
	src, tgt := mapping.Unmapped(run.Entries, run.Target.Fields)
	writeJSON(w, models.UnmappedResponse{Source: src, Target: tgt})
}

// GetSuggestions ranks below-threshold pairings among unmapped paths
func (h *Handler) GetSuggestions(w http.ResponseWriter, r *http.Request) {
	run, ok := h.mappingRun(w)
	if !ok {
		return
	}
	src, tgt := mapping.Unmapped(run.Entries, run.Target.Fields)
	writeJSON(w, models.SuggestionsResponse{Suggestions: mapping.NewEngine().Suggest(src, tgt)})
}

// ============================================================================
// Document tools
// ============================================================================

// Convert translates a schema document between XSD and JSON Schema
func (h *Handler) Convert(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxFileSize))
	if err != nil {
		http.Error(w, "Error reading body", http.StatusBadRequest)
		return
	}

	var out []byte
	var contentType string
	switch r.URL.Query().Get("to") {
	case "jsonschema":
		out, err = convert.XSDToJSONSchema(data)
		contentType = "application/json"
	case "xsd":
		out, err = convert.JSONSchemaToXSD(data)
		contentType = "application/xml"
	default:
		http.Error(w, "Unknown target format, want to=jsonschema or to=xsd", http.StatusBadRequest)
		return
	}
	if err != nil {
		http.Error(w, fmt.Sprintf("Conversion failed: %v", err), http.StatusUnprocessableEntity)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Write(out)
}

// InferSchema derives a JSON Schema from a concrete example document
func (h *Handler) InferSchema(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxFileSize))
	if err != nil {
		http.Error(w, "Error reading body", http.StatusBadRequest)
		return
	}

	out, err := infer.FromExample(data)
	if err != nil {
		http.Error(w, fmt.Sprintf("Inference failed: %v", err), http.StatusUnprocessableEntity)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write(out)
}

// ValidateSchema compiles a schema document and optionally checks an
// instance against it. Validation outcomes are part of the response, not
// HTTP errors.
func (h *Handler) ValidateSchema(w http.ResponseWriter, r *http.Request) {
	var req models.ValidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if len(req.Schema) == 0 {
		http.Error(w, "schema is required", http.StatusBadRequest)
		return
	}

	if len(req.Instance) == 0 {
		if _, err := schemacheck.Compile(req.Schema); err != nil {
			writeJSON(w, models.ValidateResponse{Valid: false, Errors: []string{err.Error()}})
			return
		}
		writeJSON(w, models.ValidateResponse{Valid: true})
		return
	}

	messages, err := schemacheck.Validate(req.Schema, req.Instance)
	if err != nil {
		writeJSON(w, models.ValidateResponse{Valid: false, Errors: []string{err.Error()}})
		return
	}
	writeJSON(w, models.ValidateResponse{Valid: len(messages) == 0, Errors: messages})
}

// ============================================================================
// DB Routes
// ============================================================================

// ConnectDB establishes a database connection
func (h *Handler) ConnectDB(w http.ResponseWriter, r *http.Request) {
	var req models.ConnectDBRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
	}

	cfg := h.Config.Database
	sc := source.Config{
		Host:     cfg.Host,
		Port:     cfg.Port,
		User:     cfg.User,
		Password: cfg.Password,
		DBName:   cfg.Name,
		SSLMode:  cfg.SSLMode,
	}
	if req.Host != "" {
		sc.Host = req.Host
	}
	if req.Port != 0 {
		sc.Port = req.Port
	}
	if req.User != "" {
		sc.User = req.User
	}
	if req.Password != "" {
		sc.Password = req.Password
	}
	if req.DBName != "" {
		sc.DBName = req.DBName
	}
	if req.SSLMode != "" {
		sc.SSLMode = req.SSLMode
	}

	ds := &source.Postgres{}
	if err := ds.Connect(sc); err != nil {
		http.Error(w, fmt.Sprintf("Failed to connect: %v", err), http.StatusInternalServerError)
		return
	}

	h.State.SetDatabase(ds)
	h.Log.Info("database connected", "host", sc.Host, "dbname", sc.DBName)

	writeJSON(w, map[string]string{"status": "connected"})
}

// ListTables returns tables from connected DB
func (h *Handler) ListTables(w http.ResponseWriter, r *http.Request) {
	db := h.State.Database()
	if db == nil {
		http.Error(w, "No database connection", http.StatusBadRequest)
		return
	}

	tables, err := db.ListTables()
	if err != nil {
		http.Error(w, fmt.Sprintf("Error listing tables: %v", err), http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]any{"tables": tables})
}

// ExtractTable reads a table's columns as a schema tree, optionally into
// a slot
func (h *Handler) ExtractTable(w http.ResponseWriter, r *http.Request) {
	db := h.State.Database()
	if db == nil {
		http.Error(w, "No database connection", http.StatusBadRequest)
		return
	}

	var req models.ExtractTableRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if req.Table == "" {
		http.Error(w, "table is required", http.StatusBadRequest)
		return
	}

	tree, err := db.ExtractTable(req.Table)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, models.ErrMissingRoot) {
			status = http.StatusUnprocessableEntity
		}
		http.Error(w, fmt.Sprintf("Error extracting table: %v", err), status)
		return
	}

	if req.Slot != "" {
		slot := state.Slot(req.Slot)
		if !slot.Valid() {
			http.Error(w, "Unknown slot, want source or target", http.StatusBadRequest)
			return
		}
		h.State.SetSchema(slot, &state.LoadedSchema{FileName: req.Table, Tree: tree})
	}
	h.Metrics.Extractions.WithLabelValues(string(tree.Kind)).Inc()

	writeJSON(w, models.UploadSchemaResponse{
		Message: "table extracted",
		Slot:    req.Slot,
		Name:    tree.Name,
		Kind:    string(tree.Kind),
		Fields:  len(tree.Fields),
	})
}

// ============================================================================
// Helpers
// ============================================================================

func (h *Handler) loadedSlot(w http.ResponseWriter, r *http.Request) (*state.LoadedSchema, bool) {
	slot := state.Slot(chi.URLParam(r, "slot"))
	if !slot.Valid() {
		http.Error(w, "Unknown slot, want source or target", http.StatusBadRequest)
		return nil, false
	}
	ls := h.State.GetSchema(slot)
	if ls == nil {
		http.Error(w, "No schema loaded", http.StatusBadRequest)
		return nil, false
	}
	return ls, true
}

func (h *Handler) mappingRun(w http.ResponseWriter) (*state.MappingRun, bool) {
	run := h.State.Mapping()
	if run == nil {
		http.Error(w, "No mapping generated", http.StatusBadRequest)
		return nil, false
	}
	return run, true
}

func (h *Handler) renderer(maxLevel int) *render.Renderer {
	if maxLevel <= 0 {
		maxLevel = h.Config.Mapping.MaxLevel
	}
	return &render.Renderer{MaxLevel: maxLevel}
}

// extractionStatus classifies extraction failures: unsupported files are
// bad requests, everything else an extractor reports is a document
// problem.
func extractionStatus(err error) int {
	if errors.Is(err, source.ErrUnsupportedExtension) {
		return http.StatusBadRequest
	}
	return http.StatusUnprocessableEntity
}

func slotStatus(ls *state.LoadedSchema) models.SlotStatus {
	if ls == nil {
		return models.SlotStatus{}
	}
	return models.SlotStatus{
		Loaded:   true,
		Filename: ls.FileName,
		Kind:     string(ls.Tree.Kind),
		Fields:   len(ls.Tree.Fields),
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
