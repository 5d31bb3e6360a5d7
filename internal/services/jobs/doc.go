// Package jobs browses batch compute jobs.
//
// The platform only lists jobs one status at a time, so a queue's jobs are
// gathered by fanning out one full enumeration per status through the
// partition aggregator. A status that fails to list is reported in the
// per-status breakdown and does not hide the others.
package jobs
