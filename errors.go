package apigen

import "errors"

// Common errors used throughout the apigen packages
var (
	// Extraction errors

	// ErrSchemaNotFound is returned when the specification document lacks the grammar schemas.
	ErrSchemaNotFound = errors.New("grammar schema not found")
	// ErrSchemaMalformed indicates a grammar schema node exists but does not have a recognized shape.
	ErrSchemaMalformed = errors.New("grammar schema malformed")

	// Model building errors

	// ErrUnresolvedOperatorReference indicates a definition references a name that is never declared.
	ErrUnresolvedOperatorReference = errors.New("unresolved operator reference")
	// ErrCyclicOperatorDefinition indicates the definition graph contains a cycle.
	ErrCyclicOperatorDefinition = errors.New("cyclic operator definition")

	// Validation errors

	// ErrInvalidGrammarModel indicates the model failed consistency validation.
	ErrInvalidGrammarModel = errors.New("invalid grammar model")

	// Emission errors

	// ErrUnsupportedOperatorShape indicates a target cannot represent a construct the model declares.
	ErrUnsupportedOperatorShape = errors.New("unsupported operator shape")
	// ErrUnknownTarget indicates a requested output language is not implemented.
	ErrUnknownTarget = errors.New("unknown target")

	// Source errors

	// ErrSpecSourceNotConfigured indicates no specification document location could be determined.
	ErrSpecSourceNotConfigured = errors.New("specification document source not configured")
	// ErrSpecFetchFailed indicates the specification document could not be downloaded.
	ErrSpecFetchFailed = errors.New("failed to fetch specification document")

	// Expression errors

	// ErrInvalidExpression indicates an expression instance does not conform to the grammar.
	ErrInvalidExpression = errors.New("invalid expression")
)
