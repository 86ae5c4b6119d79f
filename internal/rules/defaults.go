package rules

import "embed"

// defaultRules carries the built-in rule tables, one file per category. A
// category falls back to its embedded file whenever the rules directory does
// not override it. The files double as templates for overrides.
//
//go:embed defaults/*.yaml
var defaultRules embed.FS
