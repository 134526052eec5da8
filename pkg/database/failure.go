package database

import (
	"errors"

	"github.com/lib/pq"
)

// Failure is the closed set of storage failures callers are allowed to react
// to. Anything the driver reports outside this set collapses to FailureOther.
type Failure int

const (
	FailureNone Failure = iota
	FailureNotNull
	FailureUnique
	FailureCheck
	FailureForeignKey
	FailureMalformedLiteral
	FailureMalformedDatetime
	FailureOther
)

func (f Failure) String() string {
	switch f {
	case FailureNone:
		return "none"
	case FailureNotNull:
		return "not_null"
	case FailureUnique:
		return "unique"
	case FailureCheck:
		return "check"
	case FailureForeignKey:
		return "foreign_key"
	case FailureMalformedLiteral:
		return "malformed_literal"
	case FailureMalformedDatetime:
		return "malformed_datetime"
	default:
		return "other"
	}
}

// SQLSTATE codes, see https://www.postgresql.org/docs/current/errcodes-appendix.html
var sqlStateFailures = map[pq.ErrorCode]Failure{
	"23502": FailureNotNull,
	"23505": FailureUnique,
	"23514": FailureCheck,
	"23503": FailureForeignKey,
	"22P02": FailureMalformedLiteral, // invalid_text_representation
	"22001": FailureMalformedLiteral, // string_data_right_truncation
	"22003": FailureMalformedLiteral, // numeric_value_out_of_range
	"22007": FailureMalformedDatetime,
	"22008": FailureMalformedDatetime, // datetime_field_overflow
}

// Classify maps err onto the closed failure set. A nil error is FailureNone.
func Classify(err error) Failure {
	if err == nil {
		return FailureNone
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		if f, ok := sqlStateFailures[pqErr.Code]; ok {
			return f
		}
	}
	return FailureOther
}
