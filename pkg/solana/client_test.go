package solana

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignatureStatus(t *testing.T) {
	zero, one := 0, 1

	testCases := []struct {
		s         SignatureStatus
		confirmed bool
		finalized bool
	}{
		{
			s: SignatureStatus{
				Slot:               10,
				ErrorResult:        nil,
				Confirmations:      &zero,
				ConfirmationStatus: "",
			},
		},
		{
			s: SignatureStatus{
				Slot:               10,
				ErrorResult:        nil,
				Confirmations:      &zero,
				ConfirmationStatus: "random",
			},
		},
		{
			s: SignatureStatus{
				Slot:               10,
				ErrorResult:        nil,
				Confirmations:      &zero,
				ConfirmationStatus: confirmationStatusProcessed,
			},
		},
		{
			s: SignatureStatus{
				Slot:               10,
				ErrorResult:        nil,
				Confirmations:      &one,
				ConfirmationStatus: "",
			},
			confirmed: true,
		},
		{
			s: SignatureStatus{
				Slot:               10,
				ErrorResult:        nil,
				Confirmations:      &zero,
				ConfirmationStatus: confirmationStatusConfirmed,
			},
			confirmed: true,
		},
		{
			s: SignatureStatus{
				Slot:               10,
				ErrorResult:        nil,
				Confirmations:      &zero,
				ConfirmationStatus: confirmationStatusFinalized,
			},
			confirmed: true,
			finalized: true,
		},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.confirmed, tc.s.Confirmed())
		assert.Equal(t, tc.finalized, tc.s.Finalized())
	}
}

func TestSignatureStatus_Reached(t *testing.T) {
	zero := 0

	processed := SignatureStatus{Confirmations: &zero, ConfirmationStatus: confirmationStatusProcessed}
	assert.True(t, processed.Reached(CommitmentProcessed))
	assert.False(t, processed.Reached(CommitmentConfirmed))
	assert.False(t, processed.Reached(CommitmentFinalized))

	rooted := SignatureStatus{ConfirmationStatus: confirmationStatusFinalized}
	assert.True(t, rooted.Reached(CommitmentProcessed))
	assert.True(t, rooted.Reached(CommitmentConfirmed))
	assert.True(t, rooted.Reached(CommitmentFinalized))
}

func TestProgramAccountFilter(t *testing.T) {
	data := []byte{1, 2, 3, 4, 5}

	assert.True(t, NewDataSizeFilter(5).Matches(data))
	assert.False(t, NewDataSizeFilter(4).Matches(data))

	assert.True(t, NewMemcmpFilter(0, []byte{1, 2}).Matches(data))
	assert.True(t, NewMemcmpFilter(3, []byte{4, 5}).Matches(data))
	assert.False(t, NewMemcmpFilter(3, []byte{4, 5, 6}).Matches(data))
	assert.False(t, NewMemcmpFilter(1, []byte{1}).Matches(data))

	encoded, err := json.Marshal(NewMemcmpFilter(8, []byte{1, 2, 3}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"memcmp":{"offset":8,"bytes":"Ldp"}}`, string(encoded))

	encoded, err = json.Marshal(NewDataSizeFilter(242))
	require.NoError(t, err)
	assert.JSONEq(t, `{"dataSize":242}`, string(encoded))

	_, err = json.Marshal(ProgramAccountFilter{})
	assert.Error(t, err)
}

func TestResolveEnvironment(t *testing.T) {
	for input, expected := range map[string]Environment{
		"localnet":                  EnvironmentLocal,
		"devnet":                    EnvironmentDev,
		"t":                         EnvironmentTest,
		"mainnet-beta":              EnvironmentProd,
		"https://rpc.example.com/x": Environment("https://rpc.example.com/x"),
	} {
		actual, err := ResolveEnvironment(input)
		require.NoError(t, err)
		assert.Equal(t, expected, actual)
	}

	_, err := ResolveEnvironment("moon")
	assert.Error(t, err)

	commitment, err := ParseCommitment("finalized")
	require.NoError(t, err)
	assert.Equal(t, CommitmentFinalized, commitment)

	_, err = ParseCommitment("eventually")
	assert.Error(t, err)
}
