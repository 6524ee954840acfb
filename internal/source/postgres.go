package source

import (
	"database/sql"
	"fmt"
	"strconv"

	_ "github.com/lib/pq"

	"schemaforge/internal/models"
)

// Config holds relational connection details.
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// Database lists and extracts relational tables as schema trees.
type Database interface {
	Connect(cfg Config) error
	Close() error
	ListTables() ([]string, error)
	ExtractTable(table string) (*models.SchemaTree, error)
}

// Postgres implements Database over lib/pq.
type Postgres struct {
	db *sql.DB
}

func (p *Postgres) Connect(cfg Config) error {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return err
	}
	if err := db.Ping(); err != nil {
		return err
	}
	p.db = db
	return nil
}

func (p *Postgres) Close() error {
	if p.db != nil {
		return p.db.Close()
	}
	return nil
}

func (p *Postgres) ListTables() ([]string, error) {
	query := `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = 'public'
		ORDER BY table_name;
	`
	rows, err := p.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var tableName string
		if err := rows.Scan(&tableName); err != nil {
			return nil, err
		}
		tables = append(tables, tableName)
	}
	return tables, rows.Err()
}

// ExtractTable reads a table's column definitions into a schema tree: the
// table itself as the message root, then one element per column in ordinal
// order.
func (p *Postgres) ExtractTable(table string) (*models.SchemaTree, error) {
	query := `
		SELECT column_name, data_type, is_nullable,
		       character_maximum_length, numeric_precision, numeric_scale
		FROM information_schema.columns
		WHERE table_schema = 'public' AND table_name = $1
		ORDER BY ordinal_position;
	`
	rows, err := p.db.Query(query, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	fields := []models.SchemaField{{
		Levels:      []string{table},
		Type:        "object",
		BaseType:    table,
		Cardinality: "1",
		Category:    models.CategoryMessage,
		Required:    true,
	}}
	for rows.Next() {
		var (
			name, dataType, nullable  string
			charLen, precision, scale sql.NullInt64
		)
		if err := rows.Scan(&name, &dataType, &nullable, &charLen, &precision, &scale); err != nil {
			return nil, err
		}
		card := "1"
		required := true
		if nullable == "YES" {
			card = "0..1"
			required = false
		}
		fields = append(fields, models.SchemaField{
			Levels:      []string{table, name},
			Type:        columnType(dataType),
			BaseType:    dataType,
			Cardinality: card,
			Category:    models.CategoryElement,
			Details:     models.FacetDetails(columnFacets(dataType, charLen, precision, scale)),
			Required:    required,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(fields) == 1 {
		return nil, fmt.Errorf("table %s: %w", table, models.ErrMissingRoot)
	}
	return &models.SchemaTree{Name: table, Kind: models.KindPostgres, Fields: fields}, nil
}

// columnType folds information_schema data types into the canonical names
// the mapping layer compares on. Unlisted types pass through raw.
func columnType(dataType string) string {
	switch dataType {
	case "integer", "smallint", "bigint":
		return "integer"
	case "character varying", "character", "text", "uuid":
		return "string"
	case "boolean":
		return "boolean"
	case "numeric", "real", "double precision":
		return "number"
	case "json", "jsonb":
		return "object"
	case "ARRAY":
		return "array"
	}
	return dataType
}

func columnFacets(dataType string, charLen, precision, scale sql.NullInt64) []models.Facet {
	var facets []models.Facet
	if charLen.Valid {
		facets = append(facets, models.Facet{Name: "maxLength", Value: strconv.FormatInt(charLen.Int64, 10)})
	}
	if dataType == "numeric" && precision.Valid {
		facets = append(facets, models.Facet{Name: "precision", Value: strconv.FormatInt(precision.Int64, 10)})
		if scale.Valid && scale.Int64 > 0 {
			facets = append(facets, models.Facet{Name: "scale", Value: strconv.FormatInt(scale.Int64, 10)})
		}
	}
	return facets
}
