package database

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jgoulah/cgmreport/internal/report"
	"github.com/jgoulah/cgmreport/pkg/models"
	_ "modernc.org/sqlite"
)

const timestampFormat = "2006-01-02 15:04:05"

// DB wraps the database connection
type DB struct {
	conn *sql.DB
}

// New creates a new database connection and initializes the schema
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.initSchema(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}

	return db, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// initSchema creates the necessary tables
func (db *DB) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS reports (
		id TEXT PRIMARY KEY,
		created_at TEXT NOT NULL,
		cgm_path TEXT NOT NULL,
		insulin_path TEXT NOT NULL,
		output_path TEXT NOT NULL,
		boundary TEXT NOT NULL,
		manual_count INTEGER NOT NULL,
		auto_count INTEGER NOT NULL,
		manual_values TEXT NOT NULL,
		auto_values TEXT NOT NULL,
		published INTEGER DEFAULT 0
	);
	CREATE INDEX IF NOT EXISTS idx_reports_created_at ON reports(created_at);
	CREATE INDEX IF NOT EXISTS idx_reports_published ON reports(published);
	`

	_, err := db.conn.Exec(schema)
	return err
}

// InsertReport stores the result of a pipeline run
func (db *DB) InsertReport(r *models.Report) error {
	query := `
	INSERT INTO reports (id, created_at, cgm_path, insulin_path, output_path, boundary,
		manual_count, auto_count, manual_values, auto_values, published)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	published := 0
	if r.Published {
		published = 1
	}

	_, err := db.conn.Exec(query,
		r.ID,
		r.CreatedAt.UTC().Format(time.RFC3339),
		r.CGMPath,
		r.InsulinPath,
		r.OutputPath,
		r.Boundary.Format(timestampFormat),
		r.ManualCount,
		r.AutoCount,
		strings.Join(report.FormatRow(r.Manual), ","),
		strings.Join(report.FormatRow(r.Auto), ","),
		published,
	)
	if err != nil {
		return fmt.Errorf("inserting report: %w", err)
	}

	return nil
}

const selectReport = `
	SELECT id, created_at, cgm_path, insulin_path, output_path, boundary,
		manual_count, auto_count, manual_values, auto_values, published
	FROM reports
	`

type scanner interface {
	Scan(dest ...any) error
}

func scanReport(row scanner) (*models.Report, error) {
	var r models.Report
	var createdAt, boundary, manualValues, autoValues string
	var published int

	if err := row.Scan(&r.ID, &createdAt, &r.CGMPath, &r.InsulinPath, &r.OutputPath, &boundary,
		&r.ManualCount, &r.AutoCount, &manualValues, &autoValues, &published); err != nil {
		return nil, err
	}

	var err error
	r.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}

	r.Boundary, err = time.Parse(timestampFormat, boundary)
	if err != nil {
		return nil, fmt.Errorf("parsing boundary: %w", err)
	}

	r.Manual, err = report.ParseRow(strings.Split(manualValues, ","))
	if err != nil {
		return nil, fmt.Errorf("parsing manual values: %w", err)
	}

	r.Auto, err = report.ParseRow(strings.Split(autoValues, ","))
	if err != nil {
		return nil, fmt.Errorf("parsing auto values: %w", err)
	}

	r.Published = published != 0
	return &r, nil
}

// GetReport retrieves a report by ID, returning nil if it does not exist
func (db *DB) GetReport(id string) (*models.Report, error) {
	row := db.conn.QueryRow(selectReport+`WHERE id = ?`, id)

	r, err := scanReport(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying report: %w", err)
	}

	return r, nil
}

// ListReports retrieves all reports, newest first
func (db *DB) ListReports() ([]models.Report, error) {
	return db.listReports(selectReport + `ORDER BY created_at DESC, id`)
}

// ListUnpublished retrieves reports that have not been published, newest first
func (db *DB) ListUnpublished() ([]models.Report, error) {
	return db.listReports(selectReport + `WHERE published = 0 ORDER BY created_at DESC, id`)
}

func (db *DB) listReports(query string) ([]models.Report, error) {
	rows, err := db.conn.Query(query)
	if err != nil {
		return nil, fmt.Errorf("querying reports: %w", err)
	}
	defer rows.Close()

	var results []models.Report
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		results = append(results, *r)
	}

	return results, rows.Err()
}

// MarkPublished marks a report as published
func (db *DB) MarkPublished(id string) error {
	query := `UPDATE reports SET published = 1 WHERE id = ?`
	_, err := db.conn.Exec(query, id)
	if err != nil {
		return fmt.Errorf("marking report as published: %w", err)
	}
	return nil
}
