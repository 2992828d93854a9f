package keypair

import (
	"crypto/ed25519"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/code-payments/hybrid-dex-cli/pkg/solana"
)

// ErrInvalidKeypair indicates a keypair file is not a 64 byte JSON array
// whose public half matches its private seed.
var ErrInvalidKeypair = errors.New("invalid keypair file")

// Load reads a keypair file in the format written by solana-keygen and
// returns a signer for it.
func Load(path string) (solana.PrivateKeySigner, error) {
	path, err := expandHome(path)
	if err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read keypair %s", path)
	}

	var key []byte
	var values []int
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil, errors.Wrapf(ErrInvalidKeypair, "%s: %v", path, err)
	}
	if len(values) != ed25519.PrivateKeySize {
		return nil, errors.Wrapf(ErrInvalidKeypair, "%s: expected %d bytes, got %d", path, ed25519.PrivateKeySize, len(values))
	}
	for _, v := range values {
		if v < 0 || v > 255 {
			return nil, errors.Wrapf(ErrInvalidKeypair, "%s: byte value %d out of range", path, v)
		}
		key = append(key, byte(v))
	}

	priv := ed25519.NewKeyFromSeed(key[:ed25519.SeedSize])
	if !priv.Public().(ed25519.PublicKey).Equal(ed25519.PublicKey(key[ed25519.SeedSize:])) {
		return nil, errors.Wrapf(ErrInvalidKeypair, "%s: public key does not match seed", path)
	}

	return solana.PrivateKeySigner(priv), nil
}

// Save writes key as a keypair file readable by Load and solana-keygen.
func Save(path string, key ed25519.PrivateKey) error {
	path, err := expandHome(path)
	if err != nil {
		return err
	}

	values := make([]int, len(key))
	for i, b := range key {
		values[i] = int(b)
	}

	raw, err := json.Marshal(values)
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0600)
}

// ResolvePublicKey accepts either a base58 address or the path of a keypair
// file, whose public key is returned.
func ResolvePublicKey(value string) (ed25519.PublicKey, error) {
	if key, err := solana.ParsePublicKey(value); err == nil {
		return key, nil
	}

	signer, err := Load(value)
	if err != nil {
		return nil, errors.Wrapf(err, "%q is neither an address nor a keypair file", value)
	}
	return signer.PublicKey(), nil
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "failed to resolve home directory")
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
