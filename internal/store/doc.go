// Package store writes downloaded content to local disk.
//
// Every write goes to a temp file in the target directory and is renamed
// into place only after the copy succeeded, so an interrupted download never
// leaves a truncated file under its final name.
package store
