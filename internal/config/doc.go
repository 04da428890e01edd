// Package config loads the relay's YAML configuration.
//
// Files support ${VAR} environment expansion. LoadAndValidate applies
// defaults for every optional field, so a minimal file only needs the
// values that differ from them.
package config
