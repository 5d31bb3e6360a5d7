// Package schedule manages scheduled event rules and their targets.
package schedule
