package leveldb

import "github.com/itemledger/itemd/internal/storage/database"

func init() {
	database.RegisterBackend(database.BackendLevelDB, func(path string) (database.DB, error) {
		return Open(path)
	})
}
