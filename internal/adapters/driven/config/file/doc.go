// Package file provides TOML-based configuration storage for the CLI.
// Settings live in ~/.gdevutils/config.toml and can be hot-reloaded
// when the file changes on disk.
package file
