// Package migrations carries the goose SQL migrations embedded into the
// binary so the schema is applied at startup without a separate tool.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
