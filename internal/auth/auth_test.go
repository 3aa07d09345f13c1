package auth

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/priyanshsolanki/medilink-assignment3/internal/user"
)

const testSecret = "test-secret"

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("hunter2")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter2", hash)

	assert.True(t, CheckPassword(hash, "hunter2"))
	assert.False(t, CheckPassword(hash, "hunter3"))
	assert.False(t, CheckPassword("not-a-hash", "hunter2"))
}

func TestTokenRoundTrip(t *testing.T) {
	u := &user.User{
		ID:   uuid.New(),
		Name: "Dr. Okafor",
		Role: user.RoleDoctor,
	}

	tok, err := MakeToken(u, testSecret)
	require.NoError(t, err)

	claims, err := ParseToken(tok, testSecret)
	require.NoError(t, err)

	actor, err := claims.Actor()
	require.NoError(t, err)
	assert.Equal(t, u.ID, actor.ID)
	assert.Equal(t, user.RoleDoctor, actor.Role)
	assert.Equal(t, "Dr. Okafor", actor.Name)
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	u := &user.User{ID: uuid.New(), Name: "Ada", Role: user.RolePatient}

	tok, err := MakeToken(u, testSecret)
	require.NoError(t, err)

	_, err = ParseToken(tok, "other-secret")
	assert.Error(t, err)
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	_, err := ParseToken("not.a.token", testSecret)
	assert.Error(t, err)
}
