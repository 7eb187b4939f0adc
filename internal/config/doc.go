// Package config loads batch profiles from HCL files.
//
// A file holds one or more `profile "<name>" { ... }` blocks. The selected
// profile is decoded with gohcl into a format-agnostic Profile, defaults are
// filled in and the result is checked with validator tags.
package config
