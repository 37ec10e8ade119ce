// Package apperr defines the error taxonomy shared by every casino operation.
//
// Each error carries a machine-readable Code. Codes fall into four classes
// that tell a caller how to react:
//   - Validation: the request itself is wrong; fix the input and retry.
//   - StateConflict: the record moved on; re-read state before retrying.
//   - Resource: liquidity or arithmetic limits; needs an operator, not a retry loop.
//   - Authorization: the caller is not the bound principal; never retry.
package apperr

import (
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Code is a machine-readable error code.
type Code string

const (
	CodeUnknown Code = "UNKNOWN"

	// Validation
	CodeBetTooSmall      Code = "BET_TOO_SMALL"
	CodeBetTooLarge      Code = "BET_TOO_LARGE"
	CodeInvalidPullCount Code = "INVALID_PULL_COUNT"
	CodeInvalidSeed      Code = "INVALID_SEED"
	CodeInvalidConfig    Code = "INVALID_CONFIG"
	CodeInvalidRequest   Code = "INVALID_REQUEST"
	CodeCooldownActive   Code = "COOLDOWN_ACTIVE"

	// State conflict
	CodeGameNotActive    Code = "GAME_NOT_ACTIVE"
	CodeWrongVariant     Code = "WRONG_VARIANT"
	CodeRoundNotBetting  Code = "ROUND_NOT_BETTING"
	CodeRoundEnded       Code = "ROUND_ENDED"
	CodeAlreadyResolved  Code = "ALREADY_RESOLVED"
	CodeAlreadyCashedOut Code = "ALREADY_CASHED_OUT"
	CodeWagerPending     Code = "WAGER_PENDING"
	CodeNotInRound       Code = "NOT_IN_ROUND"
	CodePoolExists       Code = "POOL_EXISTS"
	CodeNotFound         Code = "NOT_FOUND"

	// Resource
	CodeInsufficientEscrow Code = "INSUFFICIENT_ESCROW"
	CodeInsufficientFunds  Code = "INSUFFICIENT_FUNDS"
	CodeOverflow           Code = "OVERFLOW"

	// Authorization
	CodeUnauthorized Code = "UNAUTHORIZED"
)

// Class groups codes by how a caller should recover.
type Class int

const (
	ClassUnknown Class = iota
	ClassValidation
	ClassStateConflict
	ClassResource
	ClassAuthorization
)

func (c Class) String() string {
	switch c {
	case ClassValidation:
		return "validation"
	case ClassStateConflict:
		return "state_conflict"
	case ClassResource:
		return "resource"
	case ClassAuthorization:
		return "authorization"
	default:
		return "unknown"
	}
}

// Class reports the recovery class for the code.
func (c Code) Class() Class {
	switch c {
	case CodeBetTooSmall, CodeBetTooLarge, CodeInvalidPullCount, CodeInvalidSeed,
		CodeInvalidConfig, CodeInvalidRequest, CodeCooldownActive:
		return ClassValidation
	case CodeGameNotActive, CodeWrongVariant, CodeRoundNotBetting, CodeRoundEnded,
		CodeAlreadyResolved, CodeAlreadyCashedOut, CodeWagerPending, CodeNotInRound,
		CodePoolExists, CodeNotFound:
		return ClassStateConflict
	case CodeInsufficientEscrow, CodeInsufficientFunds, CodeOverflow:
		return ClassResource
	case CodeUnauthorized:
		return ClassAuthorization
	default:
		return ClassUnknown
	}
}

// GRPCCode maps the code to the closest gRPC status code.
func (c Code) GRPCCode() codes.Code {
	if c == CodeNotFound {
		return codes.NotFound
	}
	if c == CodePoolExists {
		return codes.AlreadyExists
	}
	switch c.Class() {
	case ClassValidation:
		return codes.InvalidArgument
	case ClassStateConflict:
		return codes.FailedPrecondition
	case ClassResource:
		return codes.ResourceExhausted
	case ClassAuthorization:
		return codes.PermissionDenied
	default:
		return codes.Unknown
	}
}

// Error is a coded domain error.
type Error struct {
	Code     Code
	Message  string
	Metadata map[string]string
}

func (e *Error) Error() string {
	return e.Message
}

// Is reports whether target carries the same code.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// New creates a coded error.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// With returns a copy of e carrying extra metadata. The copy still matches e
// under errors.Is.
func (e *Error) With(key, value string) *Error {
	md := make(map[string]string, len(e.Metadata)+1)
	for k, v := range e.Metadata {
		md[k] = v
	}
	md[key] = value
	return &Error{Code: e.Code, Message: e.Message, Metadata: md}
}

var (
	ErrBetTooSmall      = New(CodeBetTooSmall, "bet amount below minimum")
	ErrBetTooLarge      = New(CodeBetTooLarge, "bet amount exceeds maximum")
	ErrInvalidPullCount = New(CodeInvalidPullCount, "invalid number of pulls (1-10)")
	ErrInvalidSeed      = New(CodeInvalidSeed, "random seed must not be all zero")
	ErrInvalidConfig    = New(CodeInvalidConfig, "invalid game configuration")
	ErrInvalidRequest   = New(CodeInvalidRequest, "invalid request")
	ErrCooldownActive   = New(CodeCooldownActive, "cooldown active - wait before next bet")

	ErrGameNotActive    = New(CodeGameNotActive, "game is not active")
	ErrWrongVariant     = New(CodeWrongVariant, "operation does not apply to this game variant")
	ErrRoundNotBetting  = New(CodeRoundNotBetting, "round is not in the required phase")
	ErrRoundEnded       = New(CodeRoundEnded, "round has already ended")
	ErrAlreadyResolved  = New(CodeAlreadyResolved, "bet already resolved")
	ErrAlreadyCashedOut = New(CodeAlreadyCashedOut, "already cashed out")
	ErrWagerPending     = New(CodeWagerPending, "player has a pending wager on this game")
	ErrNotInRound       = New(CodeNotInRound, "player not in this round")
	ErrPoolExists       = New(CodePoolExists, "game already initialized")
	ErrNotFound         = New(CodeNotFound, "record not found")

	ErrInsufficientEscrow = New(CodeInsufficientEscrow, "insufficient escrow balance for payout")
	ErrInsufficientFunds  = New(CodeInsufficientFunds, "insufficient funds for transfer")
	ErrOverflow           = New(CodeOverflow, "arithmetic overflow")

	ErrUnauthorized = New(CodeUnauthorized, "unauthorized")
)

// CodeOf extracts the code from err, or CodeUnknown.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeUnknown
}

// ClassOf extracts the recovery class from err.
func ClassOf(err error) Class {
	return CodeOf(err).Class()
}

// Retryable reports whether a caller may retry after correcting input or
// re-reading state. Resource and authorization failures are never retryable.
func Retryable(err error) bool {
	switch ClassOf(err) {
	case ClassValidation, ClassStateConflict:
		return true
	default:
		return false
	}
}

// Status converts err into a gRPC status error.
func Status(err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if !errors.As(err, &e) {
		return status.Error(codes.Internal, err.Error())
	}
	return status.Error(e.Code.GRPCCode(), e.Message)
}
