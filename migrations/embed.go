// Package migrations embeds the versioned SQL schema so the server binary
// can migrate without a migrations directory on disk.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
