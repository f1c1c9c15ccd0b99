// Package all wires every built-in query source backend into the source
// factory. It exists purely for side effects: a blank import runs the init
// functions of each backend, which register their factories with the source
// package. Binaries that only need one backend can import it directly
// instead.
package all

import (
	_ "semcheck/internal/source/mssql"
	_ "semcheck/internal/source/mysql"
	_ "semcheck/internal/source/postgres"
)
