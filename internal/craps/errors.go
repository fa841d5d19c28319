package craps

import (
	"errors"
	"fmt"
)

// Code is a machine-readable error code shared by the three error classes.
type Code string

const (
	// creation
	CodeUnknownBetKind  Code = "UNKNOWN_BET_KIND"
	CodeNumberRequired  Code = "NUMBER_REQUIRED"
	CodeNumberForbidden Code = "NUMBER_FORBIDDEN"
	CodeInvalidNumber   Code = "INVALID_NUMBER"
	CodeWrongArity      Code = "WRONG_NUMBER_ARITY"
	CodeParentRequired  Code = "PARENT_REQUIRED"
	CodeParentForbidden Code = "PARENT_FORBIDDEN"

	// placement
	CodePhaseNotValid        Code = "PHASE_NOT_VALID"
	CodeDuplicateBet         Code = "DUPLICATE_BET"
	CodeAlreadyCompleted     Code = "ALREADY_COMPLETED"
	CodeBelowMinimum         Code = "BELOW_MINIMUM"
	CodeAboveMaximum         Code = "ABOVE_MAXIMUM"
	CodeInvalidUnitSize      Code = "INVALID_UNIT_SIZE"
	CodeInsufficientFunds    Code = "INSUFFICIENT_FUNDS"
	CodeMissingParentBet     Code = "MISSING_PARENT_BET"
	CodeOwnershipMismatch    Code = "OWNERSHIP_MISMATCH"
	CodeParentNotEstablished Code = "PARENT_NOT_ESTABLISHED"
	CodeUnknownPlayer        Code = "UNKNOWN_PLAYER"
	CodeAlreadyPlaced        Code = "ALREADY_PLACED"

	// resolution
	CodeUnknownContractBet Code = "UNKNOWN_CONTRACT_BET"
	CodeCorruptWager       Code = "CORRUPT_WAGER"
)

// CreationError reports a bet request that can never be valid for its kind.
// It indicates bad input and is not retried.
type CreationError struct {
	Code    Code
	Kind    Kind
	Message string
}

func (e *CreationError) Error() string {
	return fmt.Sprintf("create %s: %s", e.Kind, e.Message)
}

// Is matches by code so callers can use errors.Is with the Err* sentinels.
func (e *CreationError) Is(target error) bool {
	t, ok := target.(*CreationError)
	return ok && t.Code == e.Code
}

// PlacementError reports a bet the table refused. Callers are expected to
// skip the bet and carry on.
type PlacementError struct {
	Code    Code
	Kind    Kind
	Owner   PlayerID
	Message string
}

func (e *PlacementError) Error() string {
	return fmt.Sprintf("place %s for %s: %s", e.Kind, e.Owner, e.Message)
}

func (e *PlacementError) Is(target error) bool {
	t, ok := target.(*PlacementError)
	return ok && t.Code == e.Code
}

// ResolutionError means the table and catalog disagree. The session that
// produced it cannot continue.
type ResolutionError struct {
	Code    Code
	Wager   WagerID
	Kind    Kind
	Message string
	Cause   error
}

func (e *ResolutionError) Error() string {
	msg := fmt.Sprintf("resolve wager %d (%s): %s", e.Wager, e.Kind, e.Message)
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *ResolutionError) Unwrap() error { return e.Cause }

func (e *ResolutionError) Is(target error) bool {
	t, ok := target.(*ResolutionError)
	return ok && t.Code == e.Code
}

// Sentinels for errors.Is.
var (
	ErrUnknownBetKind  = &CreationError{Code: CodeUnknownBetKind, Message: "unknown bet kind"}
	ErrNumberRequired  = &CreationError{Code: CodeNumberRequired, Message: "number required"}
	ErrNumberForbidden = &CreationError{Code: CodeNumberForbidden, Message: "number not allowed"}
	ErrInvalidNumber   = &CreationError{Code: CodeInvalidNumber, Message: "invalid number"}
	ErrWrongArity      = &CreationError{Code: CodeWrongArity, Message: "wrong number arity"}
	ErrParentRequired  = &CreationError{Code: CodeParentRequired, Message: "parent wager required"}
	ErrParentForbidden = &CreationError{Code: CodeParentForbidden, Message: "parent wager not allowed"}

	ErrPhaseNotValid        = &PlacementError{Code: CodePhaseNotValid, Message: "not allowed in this phase"}
	ErrDuplicateBet         = &PlacementError{Code: CodeDuplicateBet, Message: "duplicate bet"}
	ErrAlreadyCompleted     = &PlacementError{Code: CodeAlreadyCompleted, Message: "already completed by this shooter"}
	ErrBelowMinimum         = &PlacementError{Code: CodeBelowMinimum, Message: "below minimum"}
	ErrAboveMaximum         = &PlacementError{Code: CodeAboveMaximum, Message: "above maximum"}
	ErrInvalidUnitSize      = &PlacementError{Code: CodeInvalidUnitSize, Message: "not a multiple of the unit"}
	ErrInsufficientFunds    = &PlacementError{Code: CodeInsufficientFunds, Message: "insufficient funds"}
	ErrMissingParentBet     = &PlacementError{Code: CodeMissingParentBet, Message: "parent bet not on table"}
	ErrOwnershipMismatch    = &PlacementError{Code: CodeOwnershipMismatch, Message: "parent owned by another player"}
	ErrParentNotEstablished = &PlacementError{Code: CodeParentNotEstablished, Message: "parent has no number yet"}
	ErrUnknownPlayer        = &PlacementError{Code: CodeUnknownPlayer, Message: "player not seated"}
	ErrAlreadyPlaced        = &PlacementError{Code: CodeAlreadyPlaced, Message: "wager already on a table"}

	ErrUnknownContractBet = &ResolutionError{Code: CodeUnknownContractBet, Message: "no resolution rule"}
	ErrCorruptWager       = &ResolutionError{Code: CodeCorruptWager, Message: "wager state inconsistent with catalog"}
)

// ErrInvalidPayoutLookup is returned when neither a keyed nor a default ratio exists.
var ErrInvalidPayoutLookup = errors.New("no payout ratio for number")

// ErrContractBet is returned when taking down a contract bet.
var ErrContractBet = errors.New("contract bet cannot be taken down")

// ErrWagerNotFound is returned for IDs not on the table.
var ErrWagerNotFound = errors.New("wager not found")

func creationErr(base *CreationError, k Kind, format string, args ...any) error {
	return &CreationError{Code: base.Code, Kind: k, Message: base.Message + ": " + fmt.Sprintf(format, args...)}
}

func placementErr(base *PlacementError, w *Wager, format string, args ...any) error {
	msg := base.Message
	if format != "" {
		msg += ": " + fmt.Sprintf(format, args...)
	}
	return &PlacementError{Code: base.Code, Kind: w.Kind, Owner: w.Owner, Message: msg}
}

// IsRecoverable reports whether err is a placement refusal a strategy may ignore.
func IsRecoverable(err error) bool {
	var pe *PlacementError
	return errors.As(err, &pe)
}
