package sqlite

import (
	dbpkg "funcdata-hub/internal/database"
	domainerrors "funcdata-hub/internal/domain/errors"
	"funcdata-hub/internal/domain/repositories"
)

// ErrDBUnavailable is returned when the database singleton has not been
// initialized.
var ErrDBUnavailable = domainerrors.New("DB_UNAVAILABLE", "Database not available", nil)

type DocumentRepo struct{}

var _ repositories.DocumentStore = (*DocumentRepo)(nil)

func NewDocumentRepo() *DocumentRepo { return &DocumentRepo{} }

// Minimal implementations that map to existing database methods.
func (r *DocumentRepo) Insert(objectType string, doc repositories.Document) error {
	db := dbpkg.GetDatabase()
	if db == nil {
		return ErrDBUnavailable
	}
	return db.InsertDocument(objectType, dbpkg.Document(doc))
}

func (r *DocumentRepo) Get(objectType, identifier string) (repositories.Document, error) {
	db := dbpkg.GetDatabase()
	if db == nil {
		return nil, ErrDBUnavailable
	}
	doc, err := db.GetDocument(objectType, identifier)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, nil
	}
	return repositories.Document(doc), nil
}

func (r *DocumentRepo) List(objectType string, includeInactive bool, offset, limit int) ([]repositories.Document, int, error) {
	db := dbpkg.GetDatabase()
	if db == nil {
		return nil, 0, ErrDBUnavailable
	}
	docs, total, err := db.ListDocuments(objectType, includeInactive, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	out := make([]repositories.Document, 0, len(docs))
	for _, doc := range docs {
		out = append(out, repositories.Document(doc))
	}
	return out, total, nil
}

func (r *DocumentRepo) Deactivate(objectType, identifier string) error {
	db := dbpkg.GetDatabase()
	if db == nil {
		return ErrDBUnavailable
	}
	return db.DeactivateDocument(objectType, identifier)
}
