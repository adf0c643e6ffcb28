// Package all imports every operation sub-package to trigger their init()
// registrations. Import this package in the main application to ensure all
// operation types are registered.
package all

import (
	_ "github.com/itemledger/itemd/internal/core/tx/fungible"
	_ "github.com/itemledger/itemd/internal/core/tx/item"
	_ "github.com/itemledger/itemd/internal/core/tx/market"
)
