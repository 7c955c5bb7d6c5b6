package domain

// Operation is the kind of index mutation triggered by an object change.
type Operation string

const (
	// OpCreate adds new documents.
	OpCreate Operation = "create"
	// OpUpdate replaces existing documents.
	OpUpdate Operation = "update"
	// OpDelete removes documents by composite id.
	OpDelete Operation = "delete"
	// OpDeleteAll wipes every document of a core.
	OpDeleteAll Operation = "deleteall"
)

// IsValid checks if the operation is supported.
func (o Operation) IsValid() bool {
	switch o {
	case OpCreate, OpUpdate, OpDelete, OpDeleteAll:
		return true
	}
	return false
}

// Tracked reports whether failed mutations of this kind are kept in a dirty record.
func (o Operation) Tracked() bool {
	return o == OpCreate || o == OpUpdate || o == OpDelete
}

// KeyPrefix namespaces every key written by solrsync to the dirty store.
const KeyPrefix = "solrsync:"
