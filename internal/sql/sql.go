// Package sql embeds the database schema.
package sql

import _ "embed"

//go:embed schema.sql
var schema string

// Schema returns the full database schema. Statements are idempotent so
// the schema can be applied to a database that already carries it.
func Schema() string {
	return schema
}
