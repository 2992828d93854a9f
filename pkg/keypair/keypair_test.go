package keypair

import (
	"crypto/ed25519"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/hybrid-dex-cli/pkg/testutil"
)

func TestSaveLoad(t *testing.T) {
	key := testutil.GenerateSolanaKeypair(t)
	path := filepath.Join(t.TempDir(), "id.json")

	require.NoError(t, Save(path, key))

	signer, err := Load(path)
	require.NoError(t, err)
	assert.EqualValues(t, key, signer)
	assert.Equal(t, key.Public(), signer.PublicKey())

	sig, err := signer.Sign([]byte("message"))
	require.NoError(t, err)
	assert.True(t, ed25519.Verify(signer.PublicKey(), []byte("message"), sig))
}

func TestLoad_Invalid(t *testing.T) {
	dir := t.TempDir()

	mismatched := testutil.GenerateSolanaKeypair(t)
	copy(mismatched[32:], testutil.GenerateSolanaKeys(t, 1)[0])

	for name, contents := range map[string]string{
		"not json":     "hello",
		"short":        "[1,2,3]",
		"out of range": "[" + strings.Repeat("256,", 63) + "256]",
	} {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(contents), 0600))

		_, err := Load(path)
		assert.True(t, errors.Is(err, ErrInvalidKeypair), name)
	}

	path := filepath.Join(dir, "mismatched")
	require.NoError(t, Save(path, mismatched))
	_, err := Load(path)
	assert.True(t, errors.Is(err, ErrInvalidKeypair))

	_, err = Load(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}

func TestResolvePublicKey(t *testing.T) {
	key := testutil.GenerateSolanaKeypair(t)
	path := filepath.Join(t.TempDir(), "admin.json")
	require.NoError(t, Save(path, key))

	address := testutil.GenerateSolanaKeys(t, 1)[0]
	resolved, err := ResolvePublicKey(base58.Encode(address))
	require.NoError(t, err)
	assert.Equal(t, address, resolved)

	resolved, err = ResolvePublicKey(path)
	require.NoError(t, err)
	assert.Equal(t, key.Public(), resolved)

	_, err = ResolvePublicKey("not-an-address")
	assert.Error(t, err)
}
