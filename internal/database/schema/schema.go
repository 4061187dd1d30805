// Package schema embeds the catalog's numbered migration scripts so the
// binary carries them without a separate install step.
package schema

import "embed"

//go:embed migrations/*.sql
var Migrations embed.FS
