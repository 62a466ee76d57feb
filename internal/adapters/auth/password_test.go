package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasher_GenerateSalt(t *testing.T) {
	hasher := NewBcryptHasher(bcrypt.MinCost)

	salt1, err := hasher.GenerateSalt()
	require.NoError(t, err)
	assert.Len(t, salt1, 64)

	salt2, err := hasher.GenerateSalt()
	require.NoError(t, err)
	assert.NotEqual(t, salt1, salt2)
}

func TestBcryptHasher_HashAndCompare(t *testing.T) {
	hasher := NewBcryptHasher(bcrypt.MinCost)

	salt, err := hasher.GenerateSalt()
	require.NoError(t, err)

	hash, err := hasher.Hash(salt, "correct horse battery staple")
	require.NoError(t, err)
	assert.NotEmpty(t, hash)

	assert.NoError(t, hasher.Compare(hash, salt, "correct horse battery staple"))
	assert.Error(t, hasher.Compare(hash, salt, "wrong password"))
	assert.Error(t, hasher.Compare(hash, "other salt", "correct horse battery staple"))
}

func TestBcryptHasher_LongPassword(t *testing.T) {
	hasher := NewBcryptHasher(bcrypt.MinCost)

	salt, err := hasher.GenerateSalt()
	require.NoError(t, err)

	// Longer than bcrypt's 72-byte input limit; the SHA256 pre-hash keeps
	// the whole password significant.
	long := make([]byte, 200)
	for i := range long {
		long[i] = byte('a' + i%26)
	}
	password := string(long)

	hash, err := hasher.Hash(salt, password)
	require.NoError(t, err)

	assert.NoError(t, hasher.Compare(hash, salt, password))
	assert.Error(t, hasher.Compare(hash, salt, password[:199]+"z"))
}
