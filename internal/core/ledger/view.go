package ledger

// Reader provides read access to state.
type Reader interface {
	// Read returns the entry bytes for a key, or nil if absent.
	Read(key []byte) ([]byte, error)

	// Exists checks whether an entry exists.
	Exists(key []byte) (bool, error)

	// ForEachPrefix iterates entries whose key starts with prefix, in key
	// order. If fn returns false, iteration stops early.
	ForEachPrefix(prefix []byte, fn func(key, value []byte) bool) error
}

// View provides read/write access to state. Writes only ever happen through
// a StateTable, so that every operation commits or discards as a whole.
type View interface {
	Reader

	// Insert adds a new entry; it is an error if the key already exists.
	Insert(key, data []byte) error

	// Update modifies an existing entry.
	Update(key, data []byte) error

	// Erase removes an entry.
	Erase(key []byte) error
}

// ReadEntry reads and decodes an entry into out. Returns false if the entry
// is absent.
func ReadEntry(r Reader, key []byte, out any) (bool, error) {
	data, err := r.Read(key)
	if err != nil {
		return false, err
	}
	if data == nil {
		return false, nil
	}
	if err := Unmarshal(data, out); err != nil {
		return false, err
	}
	return true, nil
}

// PutEntry encodes an entry and inserts or updates it depending on whether
// the key already exists.
func PutEntry(v View, key []byte, entry any) error {
	data, err := Marshal(entry)
	if err != nil {
		return err
	}
	exists, err := v.Exists(key)
	if err != nil {
		return err
	}
	if exists {
		return v.Update(key, data)
	}
	return v.Insert(key, data)
}
