package domain

import (
	interfaces "cloudpick/internal/domain/interfaces"
	types "cloudpick/internal/domain/types"
)

// Type aliases expose domain types from the types subpackage for compact imports.
type (
	Endpoint             = types.Endpoint
	Params               = types.Params
	Result               = types.Result
	Field                = types.Field
	Entity               = types.Entity
	Page[T any]          = types.Page[T]
	Partition            = types.Partition
	PartitionOutcome     = types.PartitionOutcome
	AggregationResult    = types.AggregationResult
	ItemOutcome          = types.ItemOutcome
	BatchOutcome         = types.BatchOutcome
	Handler              = types.Handler
	SubcommandDescriptor = types.SubcommandDescriptor
	DomainDescriptor     = types.DomainDescriptor
	TransportError       = types.TransportError
	ValidationError      = types.ValidationError
)

// Interface aliases expose domain interfaces from the interfaces subpackage.
type (
	Invoker     = interfaces.Invoker
	Selector    = interfaces.Selector
	Prompter    = interfaces.Prompter
	Editor      = interfaces.Editor
	ObjectStore = interfaces.ObjectStore
	FileWriter  = interfaces.FileWriter
)

// Error values re-exported from the types subpackage.
var (
	ErrTransport         = types.ErrTransport
	ErrValidation        = types.ErrValidation
	ErrNotFoundSelection = types.ErrNotFoundSelection
	ErrNothingSelected   = types.ErrNothingSelected
	ErrMissingField      = types.ErrMissingField
	ErrFieldType         = types.ErrFieldType
)

// Constructors re-exported from the types subpackage.
var (
	NewEntity           = types.NewEntity
	NewEntityFromFields = types.NewEntityFromFields
	NoSelection         = types.NoSelection
)
