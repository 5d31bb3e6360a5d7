// Package remote implements domain.Invoker on top of the platform's own
// command-line client.
//
// Every call runs `<cli> <service> <operation> --cli-input-json <params>
// --output json`, so authentication, profiles and regions are resolved by the
// CLI exactly as the user has configured it. The gateway never paginates on
// its own; Listing turns a cursor-paginated endpoint into a page fetcher for
// the paginate package.
//
// Calls are throttled by a token-bucket limiter, tagged with an invocation ID
// in logs, and wrapped in a trace span. A non-zero exit becomes a
// *domain.TransportError whose Diagnostic is the CLI's stderr.
package remote
