// Package templates embeds the default configuration and the built-in
// checklist template files.
package templates

import "embed"

//go:embed config.yaml checklists
var FS embed.FS
