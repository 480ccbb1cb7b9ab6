package secretstore

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_Credentials(t *testing.T) {
	s, err := Open(OpenOptions{Path: t.TempDir()})
	require.NoError(t, err)
	defer s.Close()

	key, secret, err := s.Credentials()
	require.NoError(t, err)
	assert.Empty(t, key)
	assert.Empty(t, secret)

	require.NoError(t, s.SetCredentials("K-1", " S-1 "))
	key, secret, err = s.Credentials()
	require.NoError(t, err)
	assert.Equal(t, "K-1", key)
	assert.Equal(t, "S-1", secret)
}

func TestStore_GetStringFound(t *testing.T) {
	s, err := Open(OpenOptions{InMemory: true})
	require.NoError(t, err)
	defer s.Close()

	_, found, err := s.GetString("missing")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, s.SetString("empty", ""))
	v, found, err := s.GetString("empty")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Empty(t, v)

	_, _, err = s.GetString("  ")
	assert.Error(t, err)
}

func TestStore_EncryptedReopen(t *testing.T) {
	dir := t.TempDir()
	encKey := []byte(strings.Repeat("k", 32))

	s, err := Open(OpenOptions{Path: dir, EncryptionKey: encKey})
	require.NoError(t, err)
	require.NoError(t, s.SetCredentials("key", "secret"))
	require.NoError(t, s.Close())

	s, err = Open(OpenOptions{Path: dir, EncryptionKey: encKey})
	require.NoError(t, err)
	defer s.Close()
	key, secret, err := s.Credentials()
	require.NoError(t, err)
	assert.Equal(t, "key", key)
	assert.Equal(t, "secret", secret)
}

func TestStore_NotOpened(t *testing.T) {
	var s *Store
	_, _, err := s.GetString("x")
	assert.Error(t, err)
	assert.NoError(t, s.Close())
}

func TestParseKey(t *testing.T) {
	k, err := ParseKey("")
	require.NoError(t, err)
	assert.Nil(t, k)

	hexKey := "0x" + strings.Repeat("ab", 32)
	k, err = ParseKey(hexKey)
	require.NoError(t, err)
	assert.Len(t, k, 32)

	b64 := base64.StdEncoding.EncodeToString([]byte(strings.Repeat("z", 32)))
	k, err = ParseKey(b64)
	require.NoError(t, err)
	assert.Equal(t, []byte(strings.Repeat("z", 32)), k)

	_, err = ParseKey("abcd")
	assert.Error(t, err)

	_, err = ParseKey("not a key!")
	assert.Error(t, err)
}
