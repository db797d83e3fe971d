// Package migrations embeds the SQL schema migrations so the binary carries
// the schema it expects.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
