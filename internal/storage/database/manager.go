package database

import "fmt"

// Backend names accepted in configuration.
const (
	BackendPebble  = "pebble"
	BackendLevelDB = "leveldb"
	BackendMemory  = "memory"
)

// OpenFunc opens a backend database at the given path.
type OpenFunc func(path string) (DB, error)

var backends = make(map[string]OpenFunc)

// RegisterBackend registers a backend constructor under a name.
// Called from backend package init functions.
func RegisterBackend(name string, open OpenFunc) {
	if _, dup := backends[name]; dup {
		panic(fmt.Sprintf("database backend %q registered twice", name))
	}
	backends[name] = open
}

// Open opens a database using the named backend.
func Open(backend, path string) (DB, error) {
	open, ok := backends[backend]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
	}
	return open(path)
}
