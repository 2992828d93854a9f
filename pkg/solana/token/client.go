package token

import (
	"bytes"
	"crypto/ed25519"

	"github.com/pkg/errors"

	"github.com/code-payments/hybrid-dex-cli/pkg/solana"
)

// ErrAccountNotFound indicates there is no account for the given address.
var ErrAccountNotFound = errors.New("account not found")

// Client provides read access to mints and token accounts.
type Client struct {
	sc         solana.Client
	commitment solana.Commitment
}

// NewClient creates a new Client.
func NewClient(sc solana.Client, commitment solana.Commitment) *Client {
	return &Client{
		sc:         sc,
		commitment: commitment,
	}
}

// GetMint returns the mint at the specified address.
func (c *Client) GetMint(address ed25519.PublicKey) (*Mint, error) {
	data, err := c.getTokenProgramData(address)
	if err != nil {
		return nil, err
	}

	var mint Mint
	if err := mint.Unmarshal(data); err != nil {
		return nil, err
	}

	return &mint, nil
}

// GetAccount returns the token account info for the specified account.
//
// If the account is not initialized, or belongs to a different
// mint, then ErrInvalidTokenAccount is returned.
func (c *Client) GetAccount(address, mint ed25519.PublicKey) (*Account, error) {
	data, err := c.getTokenProgramData(address)
	if err != nil {
		return nil, err
	}

	var account Account
	if err := account.Unmarshal(data); err != nil {
		return nil, err
	}

	if account.State == AccountStateUninitialized {
		return nil, errors.Wrap(ErrInvalidTokenAccount, "account is not initialized")
	}
	if !bytes.Equal(mint, account.Mint) {
		return nil, errors.Wrap(ErrInvalidTokenAccount, "mint mismatch")
	}

	return &account, nil
}

func (c *Client) getTokenProgramData(address ed25519.PublicKey) ([]byte, error) {
	info, err := c.sc.GetAccountInfo(address, c.commitment)
	if err == solana.ErrNoAccountInfo {
		return nil, ErrAccountNotFound
	} else if err != nil {
		return nil, errors.Wrap(err, "failed to get account info")
	}

	if !bytes.Equal(info.Owner, ProgramKey) {
		return nil, errors.Wrap(ErrInvalidTokenAccount, "not owned by the token program")
	}

	return info.Data, nil
}
