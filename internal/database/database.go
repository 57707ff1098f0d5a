package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	domainerrors "funcdata-hub/internal/domain/errors"
)

// Database manager struct
type Database struct {
	db *sql.DB
}

// Document represents one stored object record in its raw key-value form.
type Document map[string]interface{}

var defaultDB *Database

// InitDatabase initializes the database connection and creates tables
func InitDatabase(dbPath string) error {
	// Create directory if not exists
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return fmt.Errorf("failed to create database directory: %v", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %v", err)
	}

	// Enable foreign keys and WAL mode for better performance
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return fmt.Errorf("failed to enable foreign keys: %v", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		return fmt.Errorf("failed to enable WAL mode: %v", err)
	}

	defaultDB = &Database{db: db}

	if err := defaultDB.createTables(); err != nil {
		return fmt.Errorf("failed to create tables: %v", err)
	}

	return nil
}

// GetDatabase returns the default database instance
func GetDatabase() *Database {
	return defaultDB
}

// createTables creates all necessary database tables
func (d *Database) createTables() error {
	// Object documents table
	createDocumentsTable := `
	CREATE TABLE IF NOT EXISTS documents (
		object_id TEXT PRIMARY KEY,
		object_type TEXT NOT NULL,
		active BOOLEAN NOT NULL DEFAULT 1,
		timestamp TEXT NOT NULL,
		properties TEXT NOT NULL,
		created_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_documents_object_type ON documents(object_type);
	CREATE INDEX IF NOT EXISTS idx_documents_active ON documents(active);
	CREATE INDEX IF NOT EXISTS idx_documents_timestamp ON documents(timestamp);
	`

	// Access logs table for the structured logger
	createLogsTable := `
	CREATE TABLE IF NOT EXISTS access_logs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp TEXT NOT NULL,
		level TEXT NOT NULL,
		service TEXT NOT NULL,
		instance_id TEXT NOT NULL,
		event_code TEXT NOT NULL,
		message TEXT NOT NULL,
		details TEXT,
		hostname TEXT NOT NULL,
		source_location TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_logs_timestamp ON access_logs(timestamp);
	CREATE INDEX IF NOT EXISTS idx_logs_event_code ON access_logs(event_code);
	CREATE INDEX IF NOT EXISTS idx_logs_level ON access_logs(level);
	`

	// Object operations audit log
	createAuditTable := `
	CREATE TABLE IF NOT EXISTS object_audit_logs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		object_id TEXT NOT NULL,
		operation TEXT NOT NULL, -- 'insert', 'deactivate'
		operation_time TEXT NOT NULL,
		details TEXT, -- JSON details
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_audit_object_id ON object_audit_logs(object_id);
	CREATE INDEX IF NOT EXISTS idx_audit_operation ON object_audit_logs(operation);
	`

	// Execute all table creation statements
	tables := []string{createDocumentsTable, createLogsTable, createAuditTable}
	for _, table := range tables {
		if _, err := d.db.Exec(table); err != nil {
			return fmt.Errorf("failed to create table: %v", err)
		}
	}

	return nil
}

// InsertDocument inserts a new object document. Inserting an identifier that
// already exists is a typed duplicate-object error.
func (d *Database) InsertDocument(objectType string, doc Document) error {
	objectID, _ := doc["_id"].(string)
	if objectID == "" {
		return domainerrors.MalformedDocument("missing _id field", nil)
	}
	active, _ := doc["active"].(bool)
	timestamp, _ := doc["timestamp"].(string)
	if timestamp == "" {
		return domainerrors.MalformedDocument("missing timestamp field", map[string]interface{}{"_id": objectID})
	}

	propertiesJSON, err := json.Marshal(doc["properties"])
	if err != nil {
		return fmt.Errorf("failed to encode properties: %v", err)
	}

	now := time.Now().Format(time.RFC3339)
	query := `
	INSERT INTO documents (object_id, object_type, active, timestamp, properties, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err = d.db.Exec(query, objectID, objectType, active, timestamp, string(propertiesJSON), now, now)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return domainerrors.DuplicateObject(objectID)
		}
		return fmt.Errorf("failed to insert document: %v", err)
	}

	// Log the insert operation
	d.LogObjectOperation(objectID, "insert", map[string]interface{}{
		"object_type": objectType,
	})

	return nil
}

// GetDocument returns the document for the given identifier, or nil when no
// such document exists.
func (d *Database) GetDocument(objectType, objectID string) (Document, error) {
	query := `
	SELECT object_id, active, timestamp, properties
	FROM documents
	WHERE object_type = ? AND object_id = ?
	`

	row := d.db.QueryRow(query, objectType, objectID)

	var id, timestamp, propertiesJSON string
	var active bool
	if err := row.Scan(&id, &active, &timestamp, &propertiesJSON); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query document: %v", err)
	}

	return buildDocument(id, active, timestamp, propertiesJSON)
}

// ListDocuments returns documents of the given type ordered by timestamp
// descending, plus the total count. A limit of 0 returns everything.
func (d *Database) ListDocuments(objectType string, includeInactive bool, offset, limit int) ([]Document, int, error) {
	filter := "WHERE object_type = ?"
	if !includeInactive {
		filter += " AND active = 1"
	}

	var total int
	if err := d.db.QueryRow("SELECT COUNT(*) FROM documents "+filter, objectType).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count documents: %v", err)
	}

	query := `
	SELECT object_id, active, timestamp, properties
	FROM documents ` + filter + `
	ORDER BY timestamp DESC
	`
	args := []interface{}{objectType}
	if limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, limit, offset)
	}

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list documents: %v", err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var id, timestamp, propertiesJSON string
		var active bool
		if err := rows.Scan(&id, &active, &timestamp, &propertiesJSON); err != nil {
			log.Printf("Error scanning document row: %v", err)
			continue
		}
		doc, err := buildDocument(id, active, timestamp, propertiesJSON)
		if err != nil {
			log.Printf("Error decoding document %s: %v", id, err)
			continue
		}
		docs = append(docs, doc)
	}

	return docs, total, nil
}

// DeactivateDocument marks a document inactive (soft delete).
func (d *Database) DeactivateDocument(objectType, objectID string) error {
	now := time.Now().Format(time.RFC3339)
	query := `
	UPDATE documents
	SET active = 0, updated_at = ?
	WHERE object_type = ? AND object_id = ? AND active = 1
	`

	result, err := d.db.Exec(query, now, objectType, objectID)
	if err != nil {
		return fmt.Errorf("failed to deactivate document: %v", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %v", err)
	}

	if rowsAffected == 0 {
		return domainerrors.ErrObjectNotFound
	}

	// Log the deactivate operation
	d.LogObjectOperation(objectID, "deactivate", map[string]interface{}{
		"deactivated_at": now,
	})

	return nil
}

// LogObjectOperation logs object operations to the audit table
func (d *Database) LogObjectOperation(objectID, operation string, details map[string]interface{}) error {
	detailsJSON, _ := json.Marshal(details)

	query := `
	INSERT INTO object_audit_logs (object_id, operation, operation_time, details)
	VALUES (?, ?, ?, ?)
	`

	_, err := d.db.Exec(query, objectID, operation, time.Now().Format(time.RFC3339), string(detailsJSON))
	if err != nil {
		log.Printf("Failed to log object operation: %v", err)
		return err
	}

	return nil
}

// buildDocument assembles the raw document shape from scanned columns.
func buildDocument(objectID string, active bool, timestamp, propertiesJSON string) (Document, error) {
	properties := make(map[string]interface{})
	if propertiesJSON != "" {
		if err := json.Unmarshal([]byte(propertiesJSON), &properties); err != nil {
			return nil, fmt.Errorf("failed to decode properties: %v", err)
		}
	}

	return Document{
		"_id":        objectID,
		"active":     active,
		"timestamp":  timestamp,
		"properties": properties,
	}, nil
}

// GetDB returns the underlying sql.DB instance
func (d *Database) GetDB() *sql.DB {
	return d.db
}

// Close closes the database connection
func (d *Database) Close() error {
	if d.db != nil {
		return d.db.Close()
	}
	return nil
}
