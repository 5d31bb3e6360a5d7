// Package console bundles the interactive plumbing every domain service uses:
// selection, prompts, output and batch summaries.
package console
