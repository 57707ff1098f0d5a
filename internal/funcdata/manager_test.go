package funcdata

import (
	"os"
	"path/filepath"
	"testing"

	"funcdata-hub/internal/database"
	"funcdata-hub/internal/domain/entities"
	domainerrors "funcdata-hub/internal/domain/errors"
	"funcdata-hub/internal/domain/repositories"
	repo "funcdata-hub/internal/infrastructure/repository/sqlite"
)

// fakeStore is an in-memory DocumentStore for manager tests.
type fakeStore struct {
	docs map[string]repositories.Document
}

func newFakeStore() *fakeStore {
	return &fakeStore{docs: make(map[string]repositories.Document)}
}

func (s *fakeStore) Insert(objectType string, doc repositories.Document) error {
	id, _ := doc["_id"].(string)
	if _, exists := s.docs[id]; exists {
		return domainerrors.DuplicateObject(id)
	}
	s.docs[id] = doc
	return nil
}

func (s *fakeStore) Get(objectType, identifier string) (repositories.Document, error) {
	doc, ok := s.docs[identifier]
	if !ok {
		return nil, nil
	}
	return doc, nil
}

func (s *fakeStore) List(objectType string, includeInactive bool, offset, limit int) ([]repositories.Document, int, error) {
	var out []repositories.Document
	for _, doc := range s.docs {
		if active, _ := doc["active"].(bool); active || includeInactive {
			out = append(out, doc)
		}
	}
	return out, len(out), nil
}

func (s *fakeStore) Deactivate(objectType, identifier string) error {
	doc, ok := s.docs[identifier]
	if !ok {
		return domainerrors.ErrObjectNotFound
	}
	if active, _ := doc["active"].(bool); !active {
		return domainerrors.ErrObjectNotFound
	}
	doc["active"] = false
	return nil
}

func newTestManager(t *testing.T) (*Manager, *fakeStore, string) {
	t.Helper()
	baseDir := filepath.Join(t.TempDir(), "funcdata")
	store := newFakeStore()
	return NewManager(store, baseDir), store, baseDir
}

func writeSourceFile(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte("not real imaging data"), 0644); err != nil {
		t.Fatalf("write source file: %v", err)
	}
	return path
}

func TestMimeTypeForFile(t *testing.T) {
	cases := []struct {
		name string
		mime string
	}{
		{"scan.nii.gz", MimeGzip},
		{"scan.mgz", MimeGzip},
		{"scan.mgh.gz", MimeGzip},
		{"scan.nii", MimeNifti},
		{"scan.mgh", MimeMGH},
	}
	for _, tc := range cases {
		mime, err := MimeTypeForFile(tc.name)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tc.name, err)
		}
		if mime != tc.mime {
			t.Fatalf("%s: expected %s, got %s", tc.name, tc.mime, mime)
		}
	}

	if _, err := MimeTypeForFile("foo.txt"); !domainerrors.IsCode(err, domainerrors.CodeUnsupportedFileType) {
		t.Fatalf("expected unsupported file type error, got %v", err)
	}
}

func TestCreateObject(t *testing.T) {
	mgr, store, baseDir := newTestManager(t)
	src := writeSourceFile(t, "scan1.nii")

	obj, err := mgr.CreateObject(src, false)
	if err != nil {
		t.Fatalf("CreateObject: %v", err)
	}

	if !obj.IsActive {
		t.Fatal("new object should be active")
	}
	if obj.Type() != entities.TypeFuncData {
		t.Fatalf("unexpected type tag: %s", obj.Type())
	}
	if obj.Filename() != "scan1.nii" {
		t.Fatalf("unexpected filename property: %s", obj.Filename())
	}
	if obj.MimeType() != MimeNifti {
		t.Fatalf("unexpected mime type: %s", obj.MimeType())
	}
	if obj.ReadOnly() {
		t.Fatal("read-only flag should not be set by default")
	}

	wantDataFile := filepath.Join(baseDir, obj.Identifier, "data", "scan1.nii")
	if obj.DataFile != wantDataFile {
		t.Fatalf("expected data file %s, got %s", wantDataFile, obj.DataFile)
	}

	// The file was copied byte-for-byte and the size property reflects it
	info, err := os.Stat(obj.DataFile)
	if err != nil {
		t.Fatalf("copied data file missing: %v", err)
	}
	if obj.Filesize() != info.Size() {
		t.Fatalf("filesize property %d does not match file size %d", obj.Filesize(), info.Size())
	}

	// The document landed in the store
	doc, _ := store.Get(entities.TypeFuncData, obj.Identifier)
	if doc == nil {
		t.Fatal("document not inserted into store")
	}
}

func TestCreateObject_GzipSuffix(t *testing.T) {
	mgr, _, _ := newTestManager(t)
	src := writeSourceFile(t, "scan2.mgh.gz")

	obj, err := mgr.CreateObject(src, false)
	if err != nil {
		t.Fatalf("CreateObject: %v", err)
	}
	if obj.MimeType() != MimeGzip {
		t.Fatalf("expected %s, got %s", MimeGzip, obj.MimeType())
	}
}

func TestCreateObject_ReadOnly(t *testing.T) {
	mgr, _, _ := newTestManager(t)

	obj, err := mgr.CreateObject(writeSourceFile(t, "scan.mgz"), true)
	if err != nil {
		t.Fatalf("CreateObject: %v", err)
	}
	if !obj.ReadOnly() {
		t.Fatal("expected read-only flag set")
	}

	obj2, err := mgr.CreateObject(writeSourceFile(t, "scan.mgz"), false)
	if err != nil {
		t.Fatalf("CreateObject: %v", err)
	}
	if _, present := obj2.Properties[entities.PropertyReadOnly]; present {
		t.Fatal("read-only property should be omitted when not requested")
	}
}

func TestCreateObject_UnsupportedSuffix(t *testing.T) {
	mgr, store, baseDir := newTestManager(t)
	src := writeSourceFile(t, "notes.txt")

	_, err := mgr.CreateObject(src, false)
	if !domainerrors.IsCode(err, domainerrors.CodeUnsupportedFileType) {
		t.Fatalf("expected unsupported file type error, got %v", err)
	}

	// Validation happens before any disk writes
	if _, err := os.Stat(baseDir); !os.IsNotExist(err) {
		t.Fatal("no directory should be created for a rejected file")
	}
	if len(store.docs) != 0 {
		t.Fatal("no document should be inserted for a rejected file")
	}
}

func TestCreateObject_DistinctIdentifiers(t *testing.T) {
	mgr, _, _ := newTestManager(t)
	src := writeSourceFile(t, "scan1.nii")

	a, err := mgr.CreateObject(src, false)
	if err != nil {
		t.Fatalf("CreateObject: %v", err)
	}
	b, err := mgr.CreateObject(src, false)
	if err != nil {
		t.Fatalf("CreateObject: %v", err)
	}

	if a.Identifier == b.Identifier {
		t.Fatal("two created objects share an identifier")
	}
	if a.Directory == b.Directory {
		t.Fatal("two created objects share a directory")
	}
}

func TestCreateObject_IdentifierCollisionIsFatal(t *testing.T) {
	mgr, _, _ := newTestManager(t)
	mgr.NewID = func() string { return "fixed-id" }
	src := writeSourceFile(t, "scan1.nii")

	if _, err := mgr.CreateObject(src, false); err != nil {
		t.Fatalf("first create: %v", err)
	}
	if _, err := mgr.CreateObject(src, false); err == nil {
		t.Fatal("expected error when object directory already exists")
	}
}

func TestRoundTrip(t *testing.T) {
	// Uses the default clock on purpose: the persisted timestamp format has
	// microsecond precision, and a reconstructed handle must still carry the
	// exact creation time.
	mgr, store, _ := newTestManager(t)

	obj, err := mgr.CreateObject(writeSourceFile(t, "scan1.nii"), true)
	if err != nil {
		t.Fatalf("CreateObject: %v", err)
	}

	doc, _ := store.Get(entities.TypeFuncData, obj.Identifier)
	restored, err := mgr.FromDocument(doc)
	if err != nil {
		t.Fatalf("FromDocument: %v", err)
	}

	if restored.Identifier != obj.Identifier {
		t.Fatalf("identifier mismatch: %s vs %s", restored.Identifier, obj.Identifier)
	}
	if !restored.Timestamp.Equal(obj.Timestamp) {
		t.Fatalf("timestamp mismatch: %v vs %v", restored.Timestamp, obj.Timestamp)
	}
	if obj.Timestamp.Nanosecond()%1000 != 0 {
		t.Fatalf("creation time carries sub-microsecond precision: %v", obj.Timestamp)
	}
	if restored.IsActive != obj.IsActive {
		t.Fatal("active flag mismatch")
	}
	if restored.Filename() != obj.Filename() || restored.MimeType() != obj.MimeType() {
		t.Fatal("properties mismatch after round trip")
	}
	if !restored.ReadOnly() {
		t.Fatal("read-only flag lost in round trip")
	}
	// Directory is recomputed, not read from the document
	if restored.Directory != obj.Directory {
		t.Fatalf("directory mismatch: %s vs %s", restored.Directory, obj.Directory)
	}
}

func TestRoundTrip_SQLiteStore(t *testing.T) {
	// Round trip through the real store: properties pass through a JSON
	// encode/decode, which turns the int64 filesize into a float64.
	dir := t.TempDir()
	if err := database.InitDatabase(filepath.Join(dir, "unit.db")); err != nil {
		t.Fatalf("InitDatabase: %v", err)
	}
	t.Cleanup(func() { _ = database.GetDatabase().Close() })

	mgr := NewManager(repo.NewDocumentRepo(), filepath.Join(dir, "funcdata"))

	obj, err := mgr.CreateObject(writeSourceFile(t, "scan1.nii"), false)
	if err != nil {
		t.Fatalf("CreateObject: %v", err)
	}

	restored, err := mgr.GetObject(obj.Identifier)
	if err != nil {
		t.Fatalf("GetObject: %v", err)
	}
	if restored.Identifier != obj.Identifier {
		t.Fatalf("identifier mismatch: %s vs %s", restored.Identifier, obj.Identifier)
	}
	if !restored.Timestamp.Equal(obj.Timestamp) {
		t.Fatalf("timestamp mismatch: %v vs %v", restored.Timestamp, obj.Timestamp)
	}
	if restored.IsActive != obj.IsActive {
		t.Fatal("active flag mismatch")
	}
	if restored.Filesize() != obj.Filesize() {
		t.Fatalf("filesize mismatch after JSON round trip: %d vs %d", restored.Filesize(), obj.Filesize())
	}
	if restored.Filename() != obj.Filename() || restored.MimeType() != obj.MimeType() {
		t.Fatal("properties mismatch after round trip")
	}
	if restored.DataFile != obj.DataFile {
		t.Fatalf("data file mismatch: %s vs %s", restored.DataFile, obj.DataFile)
	}
}

func TestFromDocument(t *testing.T) {
	mgr, _, baseDir := newTestManager(t)

	doc := repositories.Document{
		"_id":       "abc",
		"active":    true,
		"timestamp": "2020-01-01T00:00:00.000000",
		"properties": map[string]interface{}{
			entities.PropertyFilename: "x.nii",
		},
	}

	obj, err := mgr.FromDocument(doc)
	if err != nil {
		t.Fatalf("FromDocument: %v", err)
	}
	if !obj.IsActive {
		t.Fatal("expected active handle")
	}
	want := filepath.Join(baseDir, "abc", "data", "x.nii")
	if obj.DataFile != want {
		t.Fatalf("expected data file %s, got %s", want, obj.DataFile)
	}
}

func TestFromDocument_Malformed(t *testing.T) {
	mgr, _, _ := newTestManager(t)

	props := map[string]interface{}{entities.PropertyFilename: "x.nii"}
	cases := map[string]repositories.Document{
		"missing id":        {"active": true, "timestamp": "2020-01-01T00:00:00.000000", "properties": props},
		"missing active":    {"_id": "abc", "timestamp": "2020-01-01T00:00:00.000000", "properties": props},
		"missing timestamp": {"_id": "abc", "active": true, "properties": props},
		"bad timestamp":     {"_id": "abc", "active": true, "timestamp": "2020-01-01 00:00:00", "properties": props},
		"missing props":     {"_id": "abc", "active": true, "timestamp": "2020-01-01T00:00:00.000000"},
	}

	for name, doc := range cases {
		if _, err := mgr.FromDocument(doc); !domainerrors.IsCode(err, domainerrors.CodeMalformedDocument) {
			t.Fatalf("%s: expected malformed document error, got %v", name, err)
		}
	}
}

func TestGetObject_NotFound(t *testing.T) {
	mgr, _, _ := newTestManager(t)

	_, err := mgr.GetObject("no-such-id")
	if !domainerrors.IsCode(err, domainerrors.CodeObjectNotFound) {
		t.Fatalf("expected object not found error, got %v", err)
	}
}

func TestDeleteObject_SoftDelete(t *testing.T) {
	mgr, _, _ := newTestManager(t)

	obj, err := mgr.CreateObject(writeSourceFile(t, "scan1.nii"), false)
	if err != nil {
		t.Fatalf("CreateObject: %v", err)
	}

	if err := mgr.DeleteObject(obj.Identifier); err != nil {
		t.Fatalf("DeleteObject: %v", err)
	}

	restored, err := mgr.GetObject(obj.Identifier)
	if err != nil {
		t.Fatalf("GetObject after delete: %v", err)
	}
	if restored.IsActive {
		t.Fatal("deleted object should be inactive")
	}
	// Data file stays on disk
	if _, err := os.Stat(obj.DataFile); err != nil {
		t.Fatalf("data file should survive soft delete: %v", err)
	}
}
