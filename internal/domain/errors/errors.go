package domainerrors

import "errors"

type DomainError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

func (e DomainError) Error() string { return e.Message }

func New(code, message string, details map[string]interface{}) DomainError {
	return DomainError{Code: code, Message: message, Details: details}
}

// Error codes used across the service.
const (
	CodeUnsupportedFileType = "UNSUPPORTED_FILE_TYPE"
	CodeMalformedDocument   = "MALFORMED_DOCUMENT"
	CodeDuplicateObject     = "DUPLICATE_OBJECT"
	CodeObjectNotFound      = "OBJECT_NOT_FOUND"
	CodeInternal            = "INTERNAL_ERROR"
)

var (
	ErrObjectNotFound = DomainError{Code: CodeObjectNotFound, Message: "Object not found"}
	ErrInternal       = DomainError{Code: CodeInternal, Message: "Internal server error"}
)

// UnsupportedFileType reports a file whose suffix is not an accepted
// functional data format.
func UnsupportedFileType(filename string) DomainError {
	return DomainError{
		Code:    CodeUnsupportedFileType,
		Message: "unsupported file type: " + filename,
		Details: map[string]interface{}{"filename": filename},
	}
}

// MalformedDocument reports a stored document that cannot be turned back
// into an object handle.
func MalformedDocument(message string, details map[string]interface{}) DomainError {
	return DomainError{Code: CodeMalformedDocument, Message: "malformed document: " + message, Details: details}
}

// DuplicateObject reports an insert for an identifier that already exists.
func DuplicateObject(identifier string) DomainError {
	return DomainError{
		Code:    CodeDuplicateObject,
		Message: "object already exists: " + identifier,
		Details: map[string]interface{}{"identifier": identifier},
	}
}

// IsCode reports whether err is a DomainError carrying the given code.
func IsCode(err error, code string) bool {
	var de DomainError
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}
