// Package logs browses log groups and streams and follows a group's events.
//
// Tail polls filter-log-events on a ticker. Each poll starts at the newest
// timestamp already printed; events at that boundary are deduplicated by
// event id, so nothing is printed twice and nothing between polls is lost.
// The loop ends cleanly when its context is cancelled.
package logs
