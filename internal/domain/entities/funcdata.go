package entities

import (
	"path/filepath"
	"time"

	domainerrors "funcdata-hub/internal/domain/errors"
)

// Property keys stored in a functional data document.
const (
	PropertyName         = "name"
	PropertyFilename     = "filename"
	PropertyFilesize     = "filesize"
	PropertyMimetype     = "mimetype"
	PropertyFuncDataFile = "funcdatafile"
	PropertyReadOnly     = "readOnly"
)

// DataDirectory is the sub-folder of an object directory that holds the
// copied data file.
const DataDirectory = "data"

// TypeFuncData distinguishes functional data objects from other object kinds
// persisted in the same store.
const TypeFuncData = "FUNCDATA"

// FunctionalData is the in-memory handle for one stored functional MRI data
// object. Directory paths are derived from the identifier and the base
// storage path at construction time; they are never persisted.
type FunctionalData struct {
	Identifier    string
	Properties    map[string]interface{}
	Directory     string
	DataDirectory string
	DataFile      string
	Timestamp     time.Time
	IsActive      bool
}

// NewFunctionalData builds a handle and derives the data paths from the
// object directory and the filename property. The filename property is
// mandatory.
func NewFunctionalData(identifier string, properties map[string]interface{}, directory string, timestamp time.Time, isActive bool) (*FunctionalData, error) {
	filename, ok := properties[PropertyFilename].(string)
	if !ok || filename == "" {
		return nil, domainerrors.MalformedDocument("missing filename property", map[string]interface{}{
			"identifier": identifier,
		})
	}
	dataDir := filepath.Join(directory, DataDirectory)
	return &FunctionalData{
		Identifier:    identifier,
		Properties:    properties,
		Directory:     directory,
		DataDirectory: dataDir,
		DataFile:      filepath.Join(dataDir, filename),
		Timestamp:     timestamp,
		IsActive:      isActive,
	}, nil
}

// Type returns the object type tag.
func (f *FunctionalData) Type() string { return TypeFuncData }

// UploadFile returns the path of the copied data file. Earlier schemas kept
// separate upload and data files; both now reference the same file.
func (f *FunctionalData) UploadFile() string { return f.DataFile }

// Filename returns the original file name stored in the properties.
func (f *FunctionalData) Filename() string {
	name, _ := f.Properties[PropertyFilename].(string)
	return name
}

// MimeType returns the MIME type stored in the properties.
func (f *FunctionalData) MimeType() string {
	mime, _ := f.Properties[PropertyMimetype].(string)
	return mime
}

// Filesize returns the stored file size in bytes. Documents restored from
// JSON carry numbers as float64, so both forms are accepted.
func (f *FunctionalData) Filesize() int64 {
	switch v := f.Properties[PropertyFilesize].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	}
	return 0
}

// ReadOnly reports whether the read-only property flag is set.
func (f *FunctionalData) ReadOnly() bool {
	ro, _ := f.Properties[PropertyReadOnly].(bool)
	return ro
}

// FMRIData associates a functional data object with one experiment. It has
// no lifecycle of its own; it is always built from an existing handle.
type FMRIData struct {
	FunctionalData
	ExperimentID string
}

// NewFMRIData wraps a functional data handle with an experiment identifier.
// The experiment is not validated here; that is the caller's concern.
func NewFMRIData(funcData *FunctionalData, experimentID string) *FMRIData {
	return &FMRIData{
		FunctionalData: *funcData,
		ExperimentID:   experimentID,
	}
}
