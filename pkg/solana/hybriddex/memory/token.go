package memory

import (
	"bytes"
	"crypto/ed25519"

	"github.com/pkg/errors"

	"github.com/code-payments/hybrid-dex-cli/pkg/solana"
	solana_memory "github.com/code-payments/hybrid-dex-cli/pkg/solana/memory"
	"github.com/code-payments/hybrid-dex-cli/pkg/solana/token"
)

func loadMint(txn *solana_memory.Txn, address ed25519.PublicKey) (*token.Mint, error) {
	info, ok := txn.Get(address)
	if !ok {
		return nil, errAccountNotInitialized
	}
	if !bytes.Equal(info.Owner, token.ProgramKey) {
		return nil, errAccountOwnedByWrongProgram
	}

	var mint token.Mint
	if err := mint.Unmarshal(info.Data); err != nil {
		return nil, errAccountDidNotDeserialize
	}
	return &mint, nil
}

func loadTokenAccount(txn *solana_memory.Txn, address ed25519.PublicKey) (*token.Account, error) {
	info, ok := txn.Get(address)
	if !ok {
		return nil, errAccountNotInitialized
	}
	if !bytes.Equal(info.Owner, token.ProgramKey) {
		return nil, errAccountOwnedByWrongProgram
	}

	var account token.Account
	if err := account.Unmarshal(info.Data); err != nil {
		return nil, errAccountDidNotDeserialize
	}
	return &account, nil
}

func putTokenAccount(txn *solana_memory.Txn, address ed25519.PublicKey, account *token.Account) {
	txn.Put(address, solana.AccountInfo{Owner: token.ProgramKey, Data: account.Marshal()})
}

// associatedAccount loads the associated token account of wallet for mint at
// address, creating an empty one when it does not exist yet.
func associatedAccount(txn *solana_memory.Txn, address, wallet, mint ed25519.PublicKey) (*token.Account, error) {
	expected, err := token.GetAssociatedAccount(wallet, mint)
	if err != nil {
		return nil, err
	}
	if err := requireAddress(address, expected, errConstraintAssociated); err != nil {
		return nil, err
	}

	if !txn.Exists(address) {
		account := &token.Account{
			Mint:  mint,
			Owner: wallet,
			State: token.AccountStateInitialized,
		}
		putTokenAccount(txn, address, account)
		return account, nil
	}

	account, err := loadTokenAccount(txn, address)
	if err != nil {
		return nil, err
	}
	if !bytes.Equal(account.Mint, mint) || !bytes.Equal(account.Owner, wallet) {
		return nil, errConstraintAssociated
	}
	return account, nil
}

func transfer(txn *solana_memory.Txn, from, to ed25519.PublicKey, amount uint64) error {
	if amount == 0 || bytes.Equal(from, to) {
		return nil
	}

	src, err := loadTokenAccount(txn, from)
	if err != nil {
		return err
	}
	dst, err := loadTokenAccount(txn, to)
	if err != nil {
		return err
	}
	if src.Amount < amount {
		return errTokenInsufficientFunds
	}

	src.Amount -= amount
	dst.Amount += amount

	putTokenAccount(txn, from, src)
	putTokenAccount(txn, to, dst)
	return nil
}

// CreateMint seeds an initialized mint on the ledger.
func CreateMint(ledger *solana_memory.Client, mint ed25519.PublicKey, decimals uint8) {
	ledger.SetAccount(mint, solana.AccountInfo{
		Owner: token.ProgramKey,
		Data: (&token.Mint{
			Decimals:      decimals,
			IsInitialized: true,
		}).Marshal(),
	})
}

// Fund sets the balance of wallet's associated token account for mint and
// returns its address.
func Fund(ledger *solana_memory.Client, wallet, mint ed25519.PublicKey, amount uint64) (ed25519.PublicKey, error) {
	address, err := token.GetAssociatedAccount(wallet, mint)
	if err != nil {
		return nil, err
	}

	ledger.SetAccount(address, solana.AccountInfo{
		Owner: token.ProgramKey,
		Data: (&token.Account{
			Mint:   mint,
			Owner:  wallet,
			Amount: amount,
			State:  token.AccountStateInitialized,
		}).Marshal(),
	})
	return address, nil
}

// Balance returns wallet's balance of mint, which is zero when it has no
// associated token account.
func Balance(sc solana.Client, wallet, mint ed25519.PublicKey) (uint64, error) {
	address, err := token.GetAssociatedAccount(wallet, mint)
	if err != nil {
		return 0, err
	}

	account, err := token.NewClient(sc, solana.CommitmentFinalized).GetAccount(address, mint)
	if errors.Is(err, token.ErrAccountNotFound) {
		return 0, nil
	} else if err != nil {
		return 0, err
	}
	return account.Amount, nil
}
