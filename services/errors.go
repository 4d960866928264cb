package services

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind names a class of statistics failure. The value is what clients see
// in the "kind" field of an error response.
type ErrorKind string

const (
	KindInvalidDate        ErrorKind = "InvalidDateError"
	KindInvalidLimit       ErrorKind = "InvalidLimitError"
	KindDepartmentNotFound ErrorKind = "DepartmentNotFoundError"
	KindUserNotFound       ErrorKind = "UserNotFoundError"
	KindStoreUnavailable   ErrorKind = "StoreUnavailableError"
)

// StatisticsError is returned for every failure the statistics engine or its
// request validation reports.
type StatisticsError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *StatisticsError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *StatisticsError) Unwrap() error {
	return e.Err
}

func NewInvalidDateError(value string, err error) error {
	return &StatisticsError{
		Kind:    KindInvalidDate,
		Message: fmt.Sprintf("invalid date %q, expected YYYY-MM-DD", value),
		Err:     err,
	}
}

func NewInvalidLimitError(value string) error {
	return &StatisticsError{
		Kind:    KindInvalidLimit,
		Message: fmt.Sprintf("invalid limit %q, expected an integer", value),
	}
}

func NewDepartmentNotFoundError(departmentID string) error {
	return &StatisticsError{
		Kind:    KindDepartmentNotFound,
		Message: fmt.Sprintf("department %q not found", departmentID),
	}
}

func NewUserNotFoundError(userID string) error {
	return &StatisticsError{
		Kind:    KindUserNotFound,
		Message: fmt.Sprintf("user %q not found", userID),
	}
}

// NewStoreUnavailableError wraps a failed store access. An error that already
// carries a kind is returned unchanged and keeps its classification.
func NewStoreUnavailableError(op string, err error) error {
	var se *StatisticsError
	if errors.As(err, &se) {
		return err
	}
	return &StatisticsError{
		Kind:    KindStoreUnavailable,
		Message: fmt.Sprintf("store unavailable: %s", op),
		Err:     err,
	}
}

// KindOf extracts the kind of a statistics error.
func KindOf(err error) (ErrorKind, bool) {
	var se *StatisticsError
	if errors.As(err, &se) {
		return se.Kind, true
	}
	return "", false
}

func IsKind(err error, kind ErrorKind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}

// HTTPStatus maps an error kind to the status class clients expect.
func HTTPStatus(kind ErrorKind) int {
	switch kind {
	case KindInvalidDate, KindInvalidLimit:
		return http.StatusBadRequest
	case KindDepartmentNotFound, KindUserNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
