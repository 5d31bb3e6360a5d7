// Package domain defines core data models and interfaces shared across the app.
// It contains plain types (entities, pages, partitions, outcomes, descriptors)
// and contracts (interfaces) only.
package domain
