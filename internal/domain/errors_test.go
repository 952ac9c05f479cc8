package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKind(t *testing.T) {
	cases := []struct {
		err  error
		want ErrorKind
	}{
		{nil, KindNone},
		{NewValidationError("task_id", "task id must be positive"), KindValidation},
		{fmt.Errorf("wrapped: %w", NewValidationError("x", "y")), KindValidation},
		{fmt.Errorf("entry: %w", ErrInvalidEntry), KindValidation},
		{fmt.Errorf("timer: %w", ErrConflict), KindConflict},
		{fmt.Errorf("task: %w", ErrNotFound), KindNotFound},
		{ErrUnauthorized, KindUnauthorized},
		{errors.New("disk I/O error"), KindInternal},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Kind(tc.err), "%v", tc.err)
	}
}

func TestValidationError_Message(t *testing.T) {
	v := &ValidationError{}
	assert.NoError(t, v.OrNil())

	v.Add("user_id", "user id must be positive")
	v.Add("task_id", "task id must be positive")
	assert.EqualError(t, v, "validation failed: task_id: task id must be positive; user_id: user id must be positive")
}

func TestUserValidate(t *testing.T) {
	rate := -1.0
	u := &User{Name: " ", Role: "root", Status: "gone", PayRate: &rate}
	err := u.Validate()
	var vErr *ValidationError
	assert.ErrorAs(t, err, &vErr)
	assert.Len(t, vErr.FieldErrors, 4)

	ok := &User{Name: "Ann", Role: RoleUser, Status: UserActive}
	assert.NoError(t, ok.Validate())
	assert.Equal(t, 0.0, ok.Rate())
}

func TestRoleElevated(t *testing.T) {
	assert.True(t, RoleAdmin.Elevated())
	assert.True(t, RoleDeveloper.Elevated())
	assert.False(t, RoleUser.Elevated())
}
