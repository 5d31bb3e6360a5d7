// Package registry maps domain and subcommand names to handlers.
//
// A Builder collects DomainDescriptors and validates them; Build freezes the
// result into a Registry that is only ever read afterwards. Registration order
// is display order.
package registry
