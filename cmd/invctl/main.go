// invctl tareas de operación: migraciones, reconstrucción del cache de stock y barridos manuales.
//
// Uso:
//
//	invctl migrate [--down N]
//	invctl reindex [--product ID]
//	invctl reprice [--backfill]
//	invctl expiry-check
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
