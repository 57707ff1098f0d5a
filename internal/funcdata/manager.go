// Package funcdata manages functional brain-imaging data files and their
// metadata documents. A manager copies uploaded files into per-object
// directories under a base storage path and keeps one document per object in
// the backing store.
package funcdata

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"funcdata-hub/internal/domain/entities"
	domainerrors "funcdata-hub/internal/domain/errors"
	"funcdata-hub/internal/domain/repositories"
)

// MIME types assigned by file suffix. No content sniffing is performed.
const (
	MimeGzip  = "application/x-gzip"
	MimeNifti = "application/NIfTI-1"
	MimeMGH   = "application/MGH"
)

// TimestampLayout is the persisted document timestamp format, microsecond
// precision without a zone.
const TimestampLayout = "2006-01-02T15:04:05.000000"

// Clock supplies the object creation time.
type Clock func() time.Time

// IDGenerator supplies new object identifiers.
type IDGenerator func() string

// NewID returns a random identifier in the hex form used for object
// directories (UUID with the dashes stripped).
func NewID() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")
}

// Manager creates functional data objects from uploaded files and
// reconstructs handles from stored documents.
type Manager struct {
	store     repositories.DocumentStore
	directory string

	// Now and NewID are injectable for deterministic tests.
	Now   Clock
	NewID IDGenerator
}

// NewManager returns a manager rooted at the given base storage path. Object
// files are stored in sub-directories named by the object identifier.
func NewManager(store repositories.DocumentStore, baseDirectory string) *Manager {
	return &Manager{
		store:     store,
		directory: baseDirectory,
		// Timestamps are persisted with microsecond precision; truncate up
		// front so a reconstructed handle carries the exact creation time.
		Now:   func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) },
		NewID: NewID,
	}
}

// Directory returns the base storage path.
func (m *Manager) Directory() string { return m.directory }

// MimeTypeForFile maps a file name to its MIME type by suffix. Gzipped
// suffixes are checked first so .nii.gz does not match the .nii case.
func MimeTypeForFile(name string) (string, error) {
	switch {
	case strings.HasSuffix(name, ".nii.gz"), strings.HasSuffix(name, ".mgz"), strings.HasSuffix(name, ".mgh.gz"):
		return MimeGzip, nil
	case strings.HasSuffix(name, ".nii"):
		return MimeNifti, nil
	case strings.HasSuffix(name, ".mgh"):
		return MimeMGH, nil
	default:
		return "", domainerrors.UnsupportedFileType(name)
	}
}

// CreateObject creates a functional data object for the given file. The file
// must carry one of the suffixes .nii, .nii.gz, .mgh, .mgh.gz or .mgz; the
// suffix is validated before anything is written to disk. The file is copied
// byte-for-byte into <base>/<identifier>/data/ under its base name and a
// document is inserted into the store.
//
// A crash between the copy and the insert leaves an orphaned directory
// behind; nothing here detects or cleans that up.
func (m *Manager) CreateObject(filename string, readOnly bool) (*entities.FunctionalData, error) {
	// Last component of the given path is the object's file name.
	name := filepath.Base(filepath.Clean(filename))
	mimeType, err := MimeTypeForFile(name)
	if err != nil {
		return nil, err
	}

	identifier := m.NewID()

	// The object directory is named by the identifier. A collision with an
	// existing directory means the identifier generator misbehaved; Mkdir
	// fails rather than silently reusing the directory.
	if err := os.MkdirAll(m.directory, 0755); err != nil {
		return nil, err
	}
	objectDir := filepath.Join(m.directory, identifier)
	if err := os.Mkdir(objectDir, 0755); err != nil {
		return nil, err
	}
	dataDir := filepath.Join(objectDir, entities.DataDirectory)
	if err := os.Mkdir(dataDir, 0755); err != nil {
		return nil, err
	}

	dataFile := filepath.Join(dataDir, name)
	if err := copyFile(filename, dataFile); err != nil {
		return nil, err
	}

	// File size is taken from the copied file, not the source.
	info, err := os.Stat(dataFile)
	if err != nil {
		return nil, err
	}

	properties := map[string]interface{}{
		entities.PropertyName:         name,
		entities.PropertyFilename:     name,
		entities.PropertyFilesize:     info.Size(),
		entities.PropertyMimetype:     mimeType,
		entities.PropertyFuncDataFile: name,
	}
	if readOnly {
		properties[entities.PropertyReadOnly] = true
	}

	obj, err := entities.NewFunctionalData(identifier, properties, objectDir, m.Now(), true)
	if err != nil {
		return nil, err
	}

	if err := m.store.Insert(entities.TypeFuncData, repositories.Document{
		"_id":        obj.Identifier,
		"active":     obj.IsActive,
		"timestamp":  obj.Timestamp.Format(TimestampLayout),
		"properties": obj.Properties,
	}); err != nil {
		return nil, err
	}

	return obj, nil
}

// FromDocument reconstructs a handle from a stored document. The object
// directory is not materialized in the store; it is recomputed from the base
// storage path so the base can be relocated without rewriting documents.
func (m *Manager) FromDocument(doc repositories.Document) (*entities.FunctionalData, error) {
	rawID, ok := doc["_id"]
	if !ok {
		return nil, domainerrors.MalformedDocument("missing _id field", nil)
	}
	identifier := fmt.Sprintf("%v", rawID)

	active, ok := doc["active"].(bool)
	if !ok {
		return nil, domainerrors.MalformedDocument("missing active field", map[string]interface{}{"_id": identifier})
	}

	rawTimestamp, ok := doc["timestamp"].(string)
	if !ok {
		return nil, domainerrors.MalformedDocument("missing timestamp field", map[string]interface{}{"_id": identifier})
	}
	timestamp, err := time.Parse(TimestampLayout, rawTimestamp)
	if err != nil {
		return nil, domainerrors.MalformedDocument("invalid timestamp", map[string]interface{}{
			"_id":       identifier,
			"timestamp": rawTimestamp,
		})
	}

	properties, ok := doc["properties"].(map[string]interface{})
	if !ok {
		return nil, domainerrors.MalformedDocument("missing properties field", map[string]interface{}{"_id": identifier})
	}

	return entities.NewFunctionalData(identifier, properties, filepath.Join(m.directory, identifier), timestamp, active)
}

// GetObject returns the handle for the given identifier.
func (m *Manager) GetObject(identifier string) (*entities.FunctionalData, error) {
	doc, err := m.store.Get(entities.TypeFuncData, identifier)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, domainerrors.ErrObjectNotFound
	}
	return m.FromDocument(doc)
}

// ListObjects returns active handles ordered by creation time descending,
// plus the total count. A limit of 0 returns everything.
func (m *Manager) ListObjects(offset, limit int) ([]*entities.FunctionalData, int, error) {
	docs, total, err := m.store.List(entities.TypeFuncData, false, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	out := make([]*entities.FunctionalData, 0, len(docs))
	for _, doc := range docs {
		obj, err := m.FromDocument(doc)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, obj)
	}
	return out, total, nil
}

// DeleteObject marks the object inactive. The data files stay on disk.
func (m *Manager) DeleteObject(identifier string) error {
	return m.store.Deactivate(entities.TypeFuncData, identifier)
}

// copyFile copies src to dst byte-for-byte.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}
