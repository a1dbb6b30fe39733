package validator

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidatePassword(t *testing.T) {
	v := NewValidator()

	require.NoError(t, v.ValidatePassword("sup3rsecret"))
	require.ErrorIs(t, v.ValidatePassword("sh0rt"), ErrPasswordTooShort)
	require.ErrorIs(t, v.ValidatePassword("onlyletters"), ErrPasswordTooWeak)
	require.ErrorIs(t, v.ValidatePassword("12345678"), ErrPasswordTooWeak)
}
