package localstorage

import (
	"encoding/json"
)

// LocalStorage is an interface to store data locally, keyed by string.
// The reconciliation ledger uses it as its durable store, so implementations
// must survive process restarts when given a persistent directory.
type LocalStorage[T any] interface {
	// Get retrieves data from localstorage.
	// If key is not found, it will return the zero value and found=false.
	Get(key string) (value T, found bool, err error)

	// Set is used to store data to localstorage. Writing the same key twice
	// replaces the value (upsert semantics).
	Set(key string, value T) error

	// Delete is used to delete data from localstorage.
	Delete(key string) error

	// ForEach is used to iterate all data in storage.
	ForEach(func(key string, value T) error) error

	// ForEachPrefix iterates only the keys starting with prefix.
	ForEachPrefix(prefix string, f func(key string, value T) error) error

	// Close is used to close the storage.
	Close() error

	// Clean is used to clean all data in storage.
	Clean() error
}

type (
	// MarshalFunc define
	MarshalFunc func(v any) ([]byte, error)

	// UnmarshalFunc define
	UnmarshalFunc func(data []byte, v any) error
)

var (
	Marshal   MarshalFunc   = json.Marshal
	Unmarshal UnmarshalFunc = json.Unmarshal
)
