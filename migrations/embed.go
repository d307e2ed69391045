package migrations

import "embed"

// Files holds the forward-only SQL migrations for the remote store,
// embedded so the server binary carries its own schema.
//
//go:embed *.sql
var Files embed.FS
