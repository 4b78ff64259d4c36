// Package migrations embeds the versioned schema migrations applied
// at startup through golang-migrate.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
