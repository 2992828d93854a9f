package solana

import (
	"strings"

	"github.com/pkg/errors"
)

type Environment string

const (
	EnvironmentLocal Environment = "http://127.0.0.1:8899"
	EnvironmentDev   Environment = "https://api.devnet.solana.com"
	EnvironmentTest  Environment = "https://api.testnet.solana.com"
	EnvironmentProd  Environment = "https://api.mainnet-beta.solana.com"
)

// ResolveEnvironment maps a cluster moniker to its public RPC endpoint. Any
// value that looks like a URL is returned unchanged.
func ResolveEnvironment(value string) (Environment, error) {
	switch strings.ToLower(value) {
	case "l", "local", "localhost", "localnet":
		return EnvironmentLocal, nil
	case "d", "dev", "devnet":
		return EnvironmentDev, nil
	case "t", "test", "testnet":
		return EnvironmentTest, nil
	case "m", "main", "mainnet", "mainnet-beta":
		return EnvironmentProd, nil
	}

	if strings.HasPrefix(value, "http://") || strings.HasPrefix(value, "https://") {
		return Environment(value), nil
	}

	return "", errors.Errorf("unknown cluster: %q", value)
}

// ParseCommitment parses one of processed, confirmed or finalized.
func ParseCommitment(value string) (Commitment, error) {
	switch strings.ToLower(value) {
	case confirmationStatusProcessed:
		return CommitmentProcessed, nil
	case confirmationStatusConfirmed, "":
		return CommitmentConfirmed, nil
	case confirmationStatusFinalized:
		return CommitmentFinalized, nil
	}

	return Commitment{}, errors.Errorf("unknown commitment: %q", value)
}
