package services

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatisticsError_Kinds(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		kind   ErrorKind
		status int
	}{
		{name: "invalid date", err: NewInvalidDateError("x", errors.New("parse")), kind: KindInvalidDate, status: http.StatusBadRequest},
		{name: "invalid limit", err: NewInvalidLimitError("ten"), kind: KindInvalidLimit, status: http.StatusBadRequest},
		{name: "department", err: NewDepartmentNotFoundError("d1"), kind: KindDepartmentNotFound, status: http.StatusNotFound},
		{name: "user", err: NewUserNotFoundError("u1"), kind: KindUserNotFound, status: http.StatusNotFound},
		{name: "store", err: NewStoreUnavailableError("find tasks", errors.New("timeout")), kind: KindStoreUnavailable, status: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, ok := KindOf(tt.err)
			require.True(t, ok)
			assert.Equal(t, tt.kind, kind)
			assert.True(t, IsKind(fmt.Errorf("handler: %w", tt.err), tt.kind))
			assert.Equal(t, tt.status, HTTPStatus(kind))
		})
	}
}

func TestNewStoreUnavailableError(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewStoreUnavailableError("find users", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "store unavailable: find users: connection refused", err.Error())

	// an already classified error keeps its kind
	notFound := NewDepartmentNotFoundError("d1")
	assert.Same(t, notFound, NewStoreUnavailableError("find department", notFound))
}

func TestKindOf_UnclassifiedError(t *testing.T) {
	_, ok := KindOf(errors.New("boom"))
	assert.False(t, ok)
	assert.False(t, IsKind(nil, KindInvalidDate))
}
