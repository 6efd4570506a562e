package database

// Store is a JSON key/value store. Values round-trip through encoding/json,
// so field presence, nested objects and arrays are preserved.
type Store interface {
	// Get decodes the value stored under key into dest and reports whether
	// the key existed.
	Get(key string, dest any) (bool, error)
	Set(key string, value any) error
}

var (
	_ Store = (*KVStore)(nil)
	_ Store = (*MemoryStore)(nil)
)
