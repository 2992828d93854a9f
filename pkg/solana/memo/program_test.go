package memo

import (
	"crypto/ed25519"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/hybrid-dex-cli/pkg/solana"
)

func TestInstruction(t *testing.T) {
	i := Instruction("hello, world!")
	assert.Equal(t, ProgramKey, i.Program)
	assert.Empty(t, i.Accounts)
	assert.Equal(t, "hello, world!", string(i.Data))
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate([]byte("place ask 10.5")))
	assert.NoError(t, Validate([]byte(strings.Repeat("x", MaxLength))))

	for _, data := range [][]byte{
		nil,
		[]byte(strings.Repeat("x", MaxLength+1)),
		{0xff, 0xfe},
	} {
		assert.True(t, errors.Is(Validate(data), ErrInvalidMemo))
	}
}

func TestDecompile(t *testing.T) {
	tx := solana.NewTransaction(
		make([]byte, 32),
		Instruction("hello, world"),
	)

	i, err := DecompileMemo(tx.Message, 0)
	assert.NoError(t, err)
	assert.Equal(t, "hello, world", string(i.Data))

	_, err = DecompileMemo(tx.Message, 1)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "instruction doesn't exist")

	tx.Message.Accounts[1], _, err = ed25519.GenerateKey(nil)
	require.NoError(t, err)
	_, err = DecompileMemo(tx.Message, 0)
	assert.Error(t, err)
	assert.Equal(t, solana.ErrIncorrectProgram, err)
}
