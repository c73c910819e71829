package domain

// Collection identifies one of the standing vector collections.
// The set is closed: collection names arriving from the outside are
// validated through ParseCollection at the boundary.
type Collection string

const (
	CollectionProductMaster Collection = "product_master"
	CollectionKnowledgeBase Collection = "knowledge_base"
)

// ParseCollection validates a collection name
func ParseCollection(name string) (Collection, error) {
	switch Collection(name) {
	case CollectionProductMaster, CollectionKnowledgeBase:
		return Collection(name), nil
	}
	return "", NewDomainError(ErrCodeValidation, "unknown collection: "+name)
}

// String returns the collection name
func (c Collection) String() string {
	return string(c)
}

// IsValid checks if a Collection is one of the known collections
func (c Collection) IsValid() bool {
	switch c {
	case CollectionProductMaster, CollectionKnowledgeBase:
		return true
	}
	return false
}
