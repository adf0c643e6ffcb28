package memory

import "github.com/itemledger/itemd/internal/storage/database"

func init() {
	database.RegisterBackend(database.BackendMemory, func(path string) (database.DB, error) {
		return New(), nil
	})
}
