package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"not found", NotFound("user not found"), KindNotFound},
		{"wrapped duplicate", fmt.Errorf("create: %w", Duplicate("email taken")), KindDuplicate},
		{"plain error", errors.New("boom"), KindInternal},
		{"internal", Internal("db", errors.New("conn reset")), KindInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestErrorIsMatchesKindSentinel(t *testing.T) {
	err := fmt.Errorf("find: %w", NotFound("user not found"))

	assert.ErrorIs(t, err, ErrNotFound)
	assert.NotErrorIs(t, err, ErrDuplicate)
	assert.Equal(t, "find: user not found", err.Error())
}

func TestInternalUnwrapsCause(t *testing.T) {
	cause := errors.New("conn reset")
	err := Internal("list users failed", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "list users failed", err.Error())
}
