// Package commands defines the cloudpick CLI.
//
// Usage
//
//	cloudpick [flags] <domain> <subcommand> [args...]
//	cloudpick [flags] [domain]        interactive menu
//	cloudpick domains                 list domains and subcommands
//
// Flags are only recognised before the domain; everything after it belongs
// to the subcommand handler.
//
// # Implementation
//
// The root command resolves configuration and builds the dependency graph
// (gateway, finder, prompts, services, registry) before running, so every
// dispatch shares one rate limiter and one logger carried in the context.
package commands
