// Package apperr defines the error kinds surfaced to API clients and the
// translation of storage failures into them.
package apperr

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/ovaphlow/pitchfork/service-ledger-go-stdlib/pkg/database"
)

type Kind int

const (
	Internal Kind = iota
	BadRequest
	Unauthorized
	NotFound
	Conflict
	BusinessRuleViolation
	UnsupportedMediaType
)

// Kinds lists every kind, in declaration order.
var Kinds = []Kind{Internal, BadRequest, Unauthorized, NotFound, Conflict, BusinessRuleViolation, UnsupportedMediaType}

func (k Kind) String() string {
	switch k {
	case BadRequest:
		return "bad_request"
	case Unauthorized:
		return "unauthorized"
	case NotFound:
		return "not_found"
	case Conflict:
		return "conflict"
	case BusinessRuleViolation:
		return "business_rule_violation"
	case UnsupportedMediaType:
		return "unsupported_media_type"
	default:
		return "internal"
	}
}

// Status returns the HTTP status for k. Unknown kinds are treated as Internal.
func Status(k Kind) int {
	switch k {
	case BadRequest:
		return http.StatusBadRequest
	case Unauthorized:
		return http.StatusUnauthorized
	case NotFound:
		return http.StatusNotFound
	case Conflict:
		return http.StatusConflict
	case BusinessRuleViolation:
		return http.StatusUnprocessableEntity
	case UnsupportedMediaType:
		return http.StatusUnsupportedMediaType
	default:
		return http.StatusInternalServerError
	}
}

// InternalMessage is the only message a client ever sees for an Internal error.
const InternalMessage = "Internal server error"

// FieldError is one violated field of an inbound or outbound payload.
type FieldError struct {
	Loc []string `json:"loc"`
	Msg string   `json:"msg"`
}

type Error struct {
	Kind    Kind
	Message string
	// Fields is set for validation failures and replaces Message in the response body.
	Fields []FieldError
	Err    error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && len(e.Fields) > 0 {
		msg = fmt.Sprintf("%d invalid field(s)", len(e.Fields))
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, msg)
}

func (e *Error) Unwrap() error { return e.Err }

// Status is the HTTP status for the error's kind.
func (e *Error) Status() int { return Status(e.Kind) }

func New(kind Kind, msg string) *Error { return &Error{Kind: kind, Message: msg} }

func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

func NewBadRequest(msg string) *Error           { return New(BadRequest, msg) }
func NewUnauthorized(msg string) *Error         { return New(Unauthorized, msg) }
func NewNotFound(msg string) *Error             { return New(NotFound, msg) }
func NewConflict(msg string) *Error             { return New(Conflict, msg) }
func NewUnsupportedMediaType(msg string) *Error { return New(UnsupportedMediaType, msg) }
func NewBusinessRule(msg string) *Error         { return New(BusinessRuleViolation, msg) }

// NewInternal wraps an unexpected failure. The cause is kept for logging only.
func NewInternal(err error) *Error { return Wrap(Internal, InternalMessage, err) }

// Invalid is a BadRequest carrying per-field failures.
func Invalid(fields []FieldError) *Error {
	return &Error{Kind: BadRequest, Fields: fields}
}

// As returns err as an *Error. Anything that is not already one becomes Internal.
func As(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return NewInternal(err)
}

// KindOf reports the kind of err; non-domain errors are Internal.
func KindOf(err error) Kind {
	return As(err).Kind
}

var storageMessages = map[database.Failure]struct {
	kind Kind
	msg  string
}{
	database.FailureNotNull:           {BadRequest, "A required field is missing"},
	database.FailureUnique:            {Conflict, "Resource already exists"},
	database.FailureCheck:             {BadRequest, "Constraint check failed"},
	database.FailureForeignKey:        {NotFound, "Related resource does not exist"},
	database.FailureMalformedLiteral:  {BadRequest, "Invalid input format"},
	database.FailureMalformedDatetime: {BadRequest, "Invalid date format"},
	database.FailureOther:             {Internal, "Database error"},
}

// FromStorage translates a storage error into a domain error, switching only
// on the closed failure set. nil stays nil.
func FromStorage(err error) *Error {
	f := database.Classify(err)
	if f == database.FailureNone {
		return nil
	}
	m, ok := storageMessages[f]
	if !ok {
		m = storageMessages[database.FailureOther]
	}
	return Wrap(m.kind, m.msg, err)
}
