// Package errors provides structured error handling for the resolution core.
package errors

import "google.golang.org/grpc/codes"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Character errors
	CodeCharacterNotFound    Code = "CHARACTER_NOT_FOUND"
	CodeCharacterEmptyName   Code = "CHARACTER_EMPTY_NAME"
	CodeCharacterEmptyWorld  Code = "CHARACTER_EMPTY_WORLD_ID"
	CodeCharacterNameTaken   Code = "CHARACTER_NAME_TAKEN"
	CodeCharacterInvalidName Code = "CHARACTER_INVALID_NAME"

	// Axis errors
	CodeAxisUnknown         Code = "AXIS_UNKNOWN"
	CodeAxisEmptyName       Code = "AXIS_EMPTY_NAME"
	CodeAxisEmptyWorldID    Code = "AXIS_EMPTY_WORLD_ID"
	CodeAxisInvalidRange    Code = "AXIS_INVALID_VALUE_RANGE"
	CodeAxisDeltasEmpty     Code = "AXIS_DELTAS_EMPTY"
	CodeAxisScoreOutOfRange Code = "AXIS_SCORE_OUT_OF_RANGE"

	// Grammar errors
	CodeGrammarEmptyVersion     Code = "GRAMMAR_EMPTY_VERSION"
	CodeGrammarUnknownResolver  Code = "GRAMMAR_UNKNOWN_RESOLVER"
	CodeGrammarInvalidMagnitude Code = "GRAMMAR_INVALID_MAGNITUDE"
	CodeGrammarInvalidGap       Code = "GRAMMAR_INVALID_MIN_GAP"
	CodeGrammarUnknownChannel   Code = "GRAMMAR_UNKNOWN_CHANNEL"
	CodeGrammarNoAxes           Code = "GRAMMAR_NO_AXES"

	// Ledger errors
	CodeLedgerEmptyWorldID   Code = "LEDGER_EMPTY_WORLD_ID"
	CodeLedgerEmptyEventType Code = "LEDGER_EMPTY_EVENT_TYPE"
	CodeLedgerWriteFailed    Code = "LEDGER_WRITE_FAILED"

	// Storage errors
	CodeNotFound         Code = "NOT_FOUND"
	CodeStoreWriteFailed Code = "STORE_WRITE_FAILED"
)

// GRPCCode maps domain codes to gRPC status codes.
func (c Code) GRPCCode() codes.Code {
	switch c {
	// InvalidArgument - validation failures, bad input
	case CodeCharacterEmptyName,
		CodeCharacterEmptyWorld,
		CodeCharacterInvalidName,
		CodeAxisEmptyName,
		CodeAxisEmptyWorldID,
		CodeAxisInvalidRange,
		CodeAxisDeltasEmpty,
		CodeAxisScoreOutOfRange,
		CodeGrammarEmptyVersion,
		CodeGrammarUnknownResolver,
		CodeGrammarInvalidMagnitude,
		CodeGrammarInvalidGap,
		CodeGrammarUnknownChannel,
		CodeGrammarNoAxes,
		CodeLedgerEmptyWorldID,
		CodeLedgerEmptyEventType:
		return codes.InvalidArgument

	// FailedPrecondition - state doesn't allow operation
	case CodeAxisUnknown,
		CodeCharacterNameTaken:
		return codes.FailedPrecondition

	// NotFound - resource doesn't exist
	case CodeNotFound,
		CodeCharacterNotFound:
		return codes.NotFound

	default:
		return codes.Internal
	}
}
