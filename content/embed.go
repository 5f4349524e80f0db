// Package content embeds the default rule catalog shipped with the binary.
package content

import "embed"

// FS holds every catalog YAML file. Each file's single top-level key equals
// its base name.
//
//go:embed *.yaml
var FS embed.FS
