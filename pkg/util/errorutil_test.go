package util

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsCodeMatchesWrappedErrors(t *testing.T) {
	err := fmt.Errorf("update complaint: %w", NewForbidden("admin role required"))

	assert.True(t, IsCode(err, CodeForbidden))
	assert.False(t, IsCode(err, CodeNotFound))
	assert.False(t, IsCode(errors.New("plain"), CodeForbidden))
}

func TestToDomainError(t *testing.T) {
	t.Run("keeps domain errors", func(t *testing.T) {
		de := ToDomainError(NewDuplicateAccount("a@b.c"))
		require.NotNil(t, de)
		assert.Equal(t, CodeDuplicateAccount, de.Code)
		assert.Equal(t, http.StatusConflict, de.HTTPStatus)
		assert.Equal(t, "a@b.c", de.Details["email"])
	})

	t.Run("maps no rows to not found", func(t *testing.T) {
		de := ToDomainError(pgx.ErrNoRows)
		assert.Equal(t, CodeNotFound, de.Code)
		assert.Equal(t, http.StatusNotFound, de.HTTPStatus)
	})

	t.Run("hides unknown errors", func(t *testing.T) {
		cause := errors.New("socket closed")
		de := ToDomainError(cause)
		assert.Equal(t, CodeInternal, de.Code)
		assert.Equal(t, "internal server error", de.Message)
		assert.ErrorIs(t, de, cause)
	})

	t.Run("nil stays nil", func(t *testing.T) {
		assert.Nil(t, ToDomainError(nil))
	})
}

func TestDistinctMessagesPerKind(t *testing.T) {
	errs := []error{
		NewInvalidCredentials(),
		NewDuplicateAccount("x@y.z"),
		NewUnauthenticated("user not authenticated"),
		NewForbidden("admin role required"),
		NewNotFound("complaint", nil),
	}
	seen := map[string]struct{}{}
	for _, err := range errs {
		seen[err.Error()] = struct{}{}
	}
	assert.Len(t, seen, len(errs))
}
