package errs

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew_FormatsMessage(t *testing.T) {
	err := New(NotFound, "process %q not found", "api")
	assert.Equal(t, NotFound, err.Code)
	assert.Contains(t, err.Error(), "api")
}

func TestWrap_PreservesCauseForUnwrap(t *testing.T) {
	cause := errors.New("boom")
	err := Wrap(SpawnError, cause, "spawn failed")
	assert.True(t, errors.Is(err, cause))
}

func TestWithContext_ChainsAndAppearsInMessage(t *testing.T) {
	err := New(ManifestValidation, "bad manifest").WithContext("process", "db").WithSuggestion("check the path")
	assert.Contains(t, err.Error(), "db")
	assert.Contains(t, err.Error(), "check the path")
}
