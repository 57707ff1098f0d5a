package logger

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"runtime"
	"strings"
	"time"
)

// LogLevel represents logging severity level
type LogLevel string

const (
	LogLevelDEBUG LogLevel = "DEBUG"
	LogLevelINFO  LogLevel = "INFO"
	LogLevelWARN  LogLevel = "WARN"
	LogLevelERROR LogLevel = "ERROR"
)

// EventCode represents structured event types
type EventCode string

const (
	EventAPIRequest   EventCode = "API_REQUEST"
	EventAPIResponse  EventCode = "API_RESPONSE"
	EventObjectCreate EventCode = "OBJECT_CREATE"
	EventObjectDelete EventCode = "OBJECT_DELETE"
	EventFileDownload EventCode = "FILE_DOWNLOAD"
	EventSystemStart  EventCode = "SYSTEM_START"
	EventSystemStop   EventCode = "SYSTEM_STOP"
	EventError        EventCode = "ERROR"
)

// StructuredLog is the persisted log record format
type StructuredLog struct {
	Timestamp      string                 `json:"timestamp"`
	Level          LogLevel               `json:"level"`
	Service        string                 `json:"service"`
	InstanceID     string                 `json:"instance_id"`
	EventCode      EventCode              `json:"event_code"`
	Message        string                 `json:"message"`
	Details        map[string]interface{} `json:"details"`
	Hostname       string                 `json:"hostname"`
	SourceLocation string                 `json:"source_location"`
}

// Logger writes structured logs to stdout and database
type Logger struct {
	db         *sql.DB
	hostname   string
	service    string
	instanceID string
}

var defaultLogger *Logger

// InitLogger initializes default logger
func InitLogger(db *sql.DB) error {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}

	defaultLogger = &Logger{
		db:         db,
		hostname:   hostname,
		service:    "funcdata-hub",
		instanceID: fmt.Sprintf("%s-%d", hostname, os.Getpid()),
	}

	return nil
}

// GetLogger returns default logger
func GetLogger() *Logger {
	return defaultLogger
}

// LogAPIRequest records an API request event
func (l *Logger) LogAPIRequest(method, path, userAgent, remoteAddr, requestID string) {
	details := map[string]interface{}{
		"method":      method,
		"path":        path,
		"user_agent":  userAgent,
		"remote_addr": remoteAddr,
		"request_id":  requestID,
	}
	l.log(LogLevelINFO, EventAPIRequest, fmt.Sprintf("API request: %s %s", method, path), details)
}

// LogAPIResponse records an API response event
func (l *Logger) LogAPIResponse(method, path string, statusCode int, responseTime time.Duration, requestID string) {
	details := map[string]interface{}{
		"method":        method,
		"path":          path,
		"status_code":   statusCode,
		"response_time": responseTime.Milliseconds(),
		"request_id":    requestID,
	}

	level := LogLevelINFO
	if statusCode >= 400 {
		level = LogLevelWARN
	}
	if statusCode >= 500 {
		level = LogLevelERROR
	}

	l.log(level, EventAPIResponse, fmt.Sprintf("API response: %s %s [%d] (%dms)", method, path, statusCode, responseTime.Milliseconds()), details)
}

// LogObjectCreate records the creation of a functional data object
func (l *Logger) LogObjectCreate(objectID, filename string, fileSize int64, details map[string]interface{}) {
	createDetails := map[string]interface{}{
		"object_id": objectID,
		"filename":  filename,
		"file_size": fileSize,
	}
	for k, v := range details {
		createDetails[k] = v
	}
	l.log(LogLevelINFO, EventObjectCreate, fmt.Sprintf("Object created: %s (%s, %d bytes)", objectID, filename, fileSize), createDetails)
}

// LogObjectDelete records the soft delete of an object
func (l *Logger) LogObjectDelete(objectID string) {
	l.log(LogLevelINFO, EventObjectDelete, fmt.Sprintf("Object deactivated: %s", objectID), map[string]interface{}{
		"object_id": objectID,
	})
}

// LogFileDownload records a data file download event
func (l *Logger) LogFileDownload(objectID, filePath, remoteAddr string, fileSize int64) {
	details := map[string]interface{}{
		"object_id":   objectID,
		"file_path":   filePath,
		"remote_addr": remoteAddr,
		"file_size":   fileSize,
	}
	l.log(LogLevelINFO, EventFileDownload, fmt.Sprintf("File download: %s (%d bytes)", filePath, fileSize), details)
}

// LogSystemEvent records a service lifecycle event
func (l *Logger) LogSystemEvent(event EventCode, message string, details map[string]interface{}) {
	l.log(LogLevelINFO, event, message, details)
}

// LogError records an error event with optional error payload
func (l *Logger) LogError(message string, err error, details map[string]interface{}) {
	if details == nil {
		details = make(map[string]interface{})
	}
	if err != nil {
		details["error"] = err.Error()
	}
	l.log(LogLevelERROR, EventError, message, details)
}

// log writes structured log to stdout and persists to DB
func (l *Logger) log(level LogLevel, eventCode EventCode, message string, details map[string]interface{}) {
	// Capture caller location
	_, file, line, ok := runtime.Caller(2)
	sourceLocation := "unknown"
	if ok {
		parts := strings.Split(file, "/")
		filename := parts[len(parts)-1]
		sourceLocation = fmt.Sprintf("%s:%d", filename, line)
	}

	structuredLog := StructuredLog{
		Timestamp:      time.Now().UTC().Format(time.RFC3339Nano),
		Level:          level,
		Service:        l.service,
		InstanceID:     l.instanceID,
		EventCode:      eventCode,
		Message:        message,
		Details:        details,
		Hostname:       l.hostname,
		SourceLocation: sourceLocation,
	}

	// Console
	logJSON, _ := json.Marshal(structuredLog)
	log.Printf("%s", string(logJSON))

	// Persist
	l.saveToDatabase(structuredLog)
}

// saveToDatabase persists a structured log into access_logs
func (l *Logger) saveToDatabase(logEntry StructuredLog) {
	if l.db == nil {
		return
	}

	detailsJSON, _ := json.Marshal(logEntry.Details)

	insertSQL := `
	INSERT INTO access_logs (
		timestamp, level, service, instance_id, event_code,
		message, details, hostname, source_location
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := l.db.Exec(insertSQL,
		logEntry.Timestamp,
		logEntry.Level,
		logEntry.Service,
		logEntry.InstanceID,
		logEntry.EventCode,
		logEntry.Message,
		string(detailsJSON),
		logEntry.Hostname,
		logEntry.SourceLocation,
	)
	if err != nil {
		log.Printf("Failed to save log to database: %v", err)
	}
}

// GetAccessLogs loads recent logs with pagination
func (l *Logger) GetAccessLogs(limit int, offset int) ([]StructuredLog, error) {
	querySQL := `
	SELECT timestamp, level, service, instance_id, event_code,
	       message, details, hostname, source_location
	FROM access_logs
	ORDER BY timestamp DESC
	LIMIT ? OFFSET ?
	`

	rows, err := l.db.Query(querySQL, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []StructuredLog
	for rows.Next() {
		var logRec StructuredLog
		var detailsJSON string

		err := rows.Scan(
			&logRec.Timestamp,
			&logRec.Level,
			&logRec.Service,
			&logRec.InstanceID,
			&logRec.EventCode,
			&logRec.Message,
			&detailsJSON,
			&logRec.Hostname,
			&logRec.SourceLocation,
		)
		if err != nil {
			continue
		}

		if detailsJSON != "" {
			_ = json.Unmarshal([]byte(detailsJSON), &logRec.Details)
		}
		logs = append(logs, logRec)
	}
	return logs, nil
}
