// Package app wires application dependencies for the CLI.
//
// It builds the platform gateway, the interactive plumbing (finder, prompts,
// editor), the object store client and the domain services from the resolved
// configuration, and registers every domain in display order. App then runs
// either one dispatch or the interactive domain/subcommand loop.
package app
