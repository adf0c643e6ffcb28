package pebble

import "github.com/itemledger/itemd/internal/storage/database"

func init() {
	database.RegisterBackend(database.BackendPebble, func(path string) (database.DB, error) {
		return Open(path)
	})
}
