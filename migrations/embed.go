// Package migrations embeds the design schema migrations into the binary.
package migrations

import (
	"embed"

	"github.com/nerrad567/gray-logic-designer/internal/infrastructure/database"
)

//go:embed *.sql
var migrationsFS embed.FS

func init() {
	database.MigrationsFS = migrationsFS
	database.MigrationsDir = "."
}
