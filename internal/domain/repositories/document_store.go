package repositories

// Document is the raw key-value record exchanged with the backing store.
// Conceptual fields: "_id" (string), "active" (bool), "timestamp" (string)
// and "properties" (map).
type Document map[string]interface{}

// DocumentStore is the persistence capability a manager needs: per-document
// insert, lookup and listing plus soft delete. Implementations return nil
// documents (not errors) for missing identifiers on Get.
type DocumentStore interface {
	Insert(objectType string, doc Document) error
	Get(objectType, identifier string) (Document, error)
	List(objectType string, includeInactive bool, offset, limit int) ([]Document, int, error)
	Deactivate(objectType, identifier string) error
}
