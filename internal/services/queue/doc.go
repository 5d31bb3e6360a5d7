// Package queue browses message queues: list, describe, send, peek at
// messages and purge.
//
// Queues are identified by URL. Receiving uses a zero visibility timeout so
// looking at a queue never hides its messages from real consumers.
package queue
