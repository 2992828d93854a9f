package memory

import (
	"crypto/ed25519"
	"time"

	"github.com/code-payments/hybrid-dex-cli/pkg/solana"
	"github.com/code-payments/hybrid-dex-cli/pkg/solana/computebudget"
)

// Txn is the copy-on-write account view a handler executes against.
type Txn struct {
	base   map[string]solana.AccountInfo
	writes map[string]*solana.AccountInfo
	now    time.Time

	budget computebudget.Budget
	memos  []string
}

// Get returns a copy of the account at address, as modified by previous
// instructions in the same transaction.
func (t *Txn) Get(address ed25519.PublicKey) (solana.AccountInfo, bool) {
	if written, ok := t.writes[string(address)]; ok {
		if written == nil {
			return solana.AccountInfo{}, false
		}
		return cloneAccount(*written), true
	}

	info, ok := t.base[string(address)]
	if !ok {
		return solana.AccountInfo{}, false
	}
	return cloneAccount(info), true
}

// Exists reports whether an account is present at address.
func (t *Txn) Exists(address ed25519.PublicKey) bool {
	_, ok := t.Get(address)
	return ok
}

// Put stages an account write.
func (t *Txn) Put(address ed25519.PublicKey, info solana.AccountInfo) {
	clone := cloneAccount(info)
	t.writes[string(address)] = &clone
}

// Delete stages an account close.
func (t *Txn) Delete(address ed25519.PublicKey) {
	t.writes[string(address)] = nil
}

// Now is the unix clock observed by the transaction.
func (t *Txn) Now() time.Time {
	return t.now
}
