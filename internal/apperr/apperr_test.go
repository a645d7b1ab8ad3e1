package apperr_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/commonplaces/placecore/internal/apperr"
	"github.com/stretchr/testify/assert"
)

func TestNew_IsDetectableByKind(t *testing.T) {
	err := apperr.New(apperr.NotFound, "GetPlace", "unknown place")
	assert.True(t, apperr.Is(err, apperr.NotFound))
	assert.False(t, apperr.Is(err, apperr.Validation))
	assert.Equal(t, apperr.NotFound, apperr.KindOf(err))
}

func TestWrap_NilCauseReturnsNil(t *testing.T) {
	assert.Nil(t, apperr.Wrap(apperr.Other, "op", nil))
}

func TestWrap_PreservesCauseViaUnwrap(t *testing.T) {
	cause := errors.New("disk full")
	err := apperr.Wrap(apperr.Other, "CreateOrUpdatePlace", cause)
	assert.True(t, errors.Is(err, cause))
}

func TestKindOf_UnclassifiedErrorIsOther(t *testing.T) {
	assert.Equal(t, apperr.Other, apperr.KindOf(errors.New("plain error")))
}

func TestIs_FalseForPlainError(t *testing.T) {
	assert.False(t, apperr.Is(errors.New("plain error"), apperr.NotFound))
}

func TestE_ErrorIncludesOpAndKind(t *testing.T) {
	err := apperr.New(apperr.Forbidden, "ReviewPlaces", "scout role required")
	assert.Contains(t, err.Error(), "ReviewPlaces")
	assert.Contains(t, err.Error(), "Forbidden")
}

func TestKind_StringCoversEveryConstant(t *testing.T) {
	kinds := []apperr.Kind{
		apperr.Other, apperr.NotFound, apperr.AlreadyExists, apperr.InvalidVersion,
		apperr.Validation, apperr.LicenseNotAccepted, apperr.ModeratedTagAuthorization,
		apperr.ModeratedTagConflict, apperr.Expired, apperr.Unauthorized, apperr.Forbidden,
	}
	seen := make(map[string]bool)
	for _, k := range kinds {
		s := fmt.Sprint(k)
		assert.NotEmpty(t, s)
		assert.False(t, seen[s], "duplicate String() for distinct kinds: %s", s)
		seen[s] = true
	}
}
