// Package all wires every built-in store backend into the registry.
//
// It exists purely for side effects: blank-importing it runs each backend's
// init function, which registers its factory with the store package. A
// binary that only needs a subset can import the individual backend
// packages instead.
package all

import (
	_ "carcatalog/internal/store/mssql"
	_ "carcatalog/internal/store/mysql"
	_ "carcatalog/internal/store/postgres"
	_ "carcatalog/internal/store/sqlite"
)
