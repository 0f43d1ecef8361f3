package sql

import _ "embed"

// Schema creates the task store tables. It is safe to apply repeatedly.
//
//go:embed schema.sql
var Schema string
