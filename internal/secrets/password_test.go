package secrets

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

func TestPasswordRoundTrip(t *testing.T) {
	keyring.MockInit()

	require.NoError(t, SetPassword("me@example.com", "hunter2"))

	pw, err := GetPassword("me@example.com")
	require.NoError(t, err)
	require.Equal(t, "hunter2", pw)

	require.NoError(t, DeletePassword("me@example.com"))
	_, err = GetPassword("me@example.com")
	require.Error(t, err)
}

func TestGetPasswordFallsBackToEnv(t *testing.T) {
	keyring.MockInit()
	t.Setenv(PasswordEnv, "from-env")

	pw, err := GetPassword("absent@example.com")
	require.NoError(t, err)
	require.Equal(t, "from-env", pw)
}

func TestSetPasswordRejectsEmptyInputs(t *testing.T) {
	keyring.MockInit()
	require.Error(t, SetPassword("", "pw"))
	require.Error(t, SetPassword("me@example.com", "  "))
	require.Error(t, DeletePassword(""))
}
