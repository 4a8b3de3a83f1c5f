// Package migrations embute os arquivos goose do esquema do catálogo.
package migrations

import "embed"

// FS contém as migrações na raiz ("."), no formato esperado por goose.SetBaseFS.
//
//go:embed *.sql
var FS embed.FS
