package memory

import (
	"bytes"
	"crypto/ed25519"
	"crypto/sha256"
	"sync"
	"time"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/code-payments/hybrid-dex-cli/pkg/solana"
	"github.com/code-payments/hybrid-dex-cli/pkg/solana/computebudget"
	"github.com/code-payments/hybrid-dex-cli/pkg/solana/memo"
)

// Number of blockhashes a transaction may reference before it is rejected.
const maxRecentBlockhashes = 150

// Handler executes a single instruction addressed to a registered program.
// Any returned error aborts the whole transaction.
type Handler func(txn *Txn, instruction solana.Instruction) error

// Failure is returned by handlers to fail with a well known instruction error.
type Failure struct {
	Key solana.InstructionErrorKey
}

func (f Failure) Error() string {
	return string(f.Key)
}

// Fail returns a Failure for key.
func Fail(key solana.InstructionErrorKey) error {
	return Failure{Key: key}
}

type signatureEntry struct {
	slot  uint64
	memos []string
}

// Client is an in-memory ledger implementing solana.Client. Registered
// program handlers run every instruction of a submitted transaction against a
// copy-on-write view that is committed only if all of them succeed.
type Client struct {
	log *logrus.Entry

	mu         sync.Mutex
	accounts   map[string]solana.AccountInfo
	programs   map[string]Handler
	signatures map[solana.Signature]signatureEntry
	blockhash  solana.Blockhash
	recent     []solana.Blockhash
	slot       uint64
	clock      func() time.Time
}

// New returns an empty ledger.
func New() *Client {
	c := &Client{
		log:        logrus.StandardLogger().WithField("type", "solana/memory"),
		accounts:   make(map[string]solana.AccountInfo),
		programs:   make(map[string]Handler),
		signatures: make(map[solana.Signature]signatureEntry),
		clock:      time.Now,
	}
	c.blockhash = sha256.Sum256([]byte("genesis"))
	c.recent = []solana.Blockhash{c.blockhash}

	c.programs[string(computebudget.ProgramKey)] = computeBudgetHandler
	c.programs[string(memo.ProgramKey)] = memoHandler
	return c
}

// RegisterProgram routes instructions for program to handler.
func (c *Client) RegisterProgram(program ed25519.PublicKey, handler Handler) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.programs[string(program)] = handler
}

// SetClock overrides the source of unix timestamps seen by handlers.
func (c *Client) SetClock(clock func() time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.clock = clock
}

// SetAccount seeds or overwrites an account.
func (c *Client) SetAccount(address ed25519.PublicKey, info solana.AccountInfo) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.accounts[string(address)] = cloneAccount(info)
}

// Slot returns the number of committed transactions.
func (c *Client) Slot() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.slot
}

// Memos returns the memos recorded by the transaction with signature sig.
func (c *Client) Memos(sig solana.Signature) []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.signatures[sig].memos
}

func (c *Client) GetAccountInfo(address ed25519.PublicKey, _ solana.Commitment) (solana.AccountInfo, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	info, ok := c.accounts[string(address)]
	if !ok {
		return solana.AccountInfo{}, solana.ErrNoAccountInfo
	}
	return cloneAccount(info), nil
}

// GetProgramAccounts returns matching accounts in map iteration order, which
// is deliberately unstable.
func (c *Client) GetProgramAccounts(program ed25519.PublicKey, _ solana.Commitment, filters ...solana.ProgramAccountFilter) ([]solana.ProgramAccount, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var res []solana.ProgramAccount
	for address, info := range c.accounts {
		if !bytes.Equal(info.Owner, program) {
			continue
		}

		matched := true
		for _, filter := range filters {
			if !filter.Matches(info.Data) {
				matched = false
				break
			}
		}
		if !matched {
			continue
		}

		res = append(res, solana.ProgramAccount{
			PublicKey: ed25519.PublicKey(address),
			Account:   cloneAccount(info),
		})
	}

	return res, nil
}

func (c *Client) GetLatestBlockhash() (solana.Blockhash, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.blockhash, nil
}

func (c *Client) GetSignatureStatus(sig solana.Signature, _ solana.Commitment) (*solana.SignatureStatus, error) {
	statuses, err := c.GetSignatureStatuses([]solana.Signature{sig})
	if err != nil {
		return nil, err
	}
	if statuses[0] == nil {
		return nil, solana.ErrSignatureNotFound
	}
	return statuses[0], nil
}

// GetSignatureStatuses reports committed transactions as finalized.
func (c *Client) GetSignatureStatuses(sigs []solana.Signature) ([]*solana.SignatureStatus, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	statuses := make([]*solana.SignatureStatus, len(sigs))
	for i, sig := range sigs {
		entry, ok := c.signatures[sig]
		if !ok {
			continue
		}

		statuses[i] = &solana.SignatureStatus{
			Slot:               entry.slot,
			ConfirmationStatus: "finalized",
		}
	}

	return statuses, nil
}

// SubmitTransaction executes the transaction synchronously. Rejected
// transactions leave no trace in the ledger, mirroring a failed preflight.
func (c *Client) SubmitTransaction(txn solana.Transaction, _ solana.Commitment) (solana.Signature, error) {
	var sig solana.Signature
	if len(txn.Signatures) > 0 {
		sig = txn.Signatures[0]
	}

	if err := txn.VerifySignatures(); err != nil {
		c.log.WithError(err).Debug("signature verification failed")
		return sig, solana.NewTransactionError(solana.TransactionErrorSignatureFailure)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.signatures[sig]; ok {
		return sig, solana.NewTransactionError(solana.TransactionErrorAlreadyProcessed)
	}
	if !c.isRecentBlockhash(txn.Message.RecentBlockhash) {
		return sig, solana.NewTransactionError(solana.TransactionErrorBlockhashNotFound)
	}

	view := &Txn{
		base:   c.accounts,
		writes: make(map[string]*solana.AccountInfo),
		now:    c.clock(),
	}

	for i := range txn.Message.Instructions {
		instruction, err := solana.DecompileInstruction(txn.Message, i)
		if err != nil {
			return sig, solana.NewTransactionError(solana.TransactionErrorSanitizeFailure)
		}

		handler, ok := c.programs[string(instruction.Program)]
		if !ok {
			return sig, c.instructionFailure(i, Fail(solana.InstructionErrorIncorrectProgramID))
		}

		if err := handler(view, instruction); err != nil {
			c.log.WithFields(logrus.Fields{
				"signature":   sig.String(),
				"instruction": i,
				"program":     base58.Encode(instruction.Program),
			}).WithError(err).Debug("instruction failed")
			return sig, c.instructionFailure(i, err)
		}
	}

	for address, info := range view.writes {
		if info == nil {
			delete(c.accounts, address)
		} else {
			c.accounts[address] = *info
		}
	}

	c.slot++
	c.signatures[sig] = signatureEntry{slot: c.slot, memos: view.memos}
	c.advanceBlockhash(sig)

	return sig, nil
}

func (c *Client) instructionFailure(index int, err error) error {
	var ie solana.InstructionError

	var custom solana.CustomError
	var failure Failure
	switch {
	case errors.As(err, &custom):
		ie = solana.NewCustomInstructionError(index, int(custom))
	case errors.As(err, &failure):
		ie = solana.NewInstructionError(index, failure.Key)
	default:
		c.log.WithError(err).Warn("unclassified instruction failure")
		ie = solana.NewInstructionError(index, solana.InstructionErrorInvalidArgument)
	}

	txErr, convErr := solana.TransactionErrorFromInstructionError(&ie)
	if convErr != nil {
		return errors.Wrap(convErr, "failed to build transaction error")
	}
	return txErr
}

func (c *Client) isRecentBlockhash(bh solana.Blockhash) bool {
	for _, recent := range c.recent {
		if recent == bh {
			return true
		}
	}
	return false
}

func (c *Client) advanceBlockhash(sig solana.Signature) {
	h := sha256.New()
	h.Write(c.blockhash[:])
	h.Write(sig[:])
	copy(c.blockhash[:], h.Sum(nil))

	c.recent = append(c.recent, c.blockhash)
	if len(c.recent) > maxRecentBlockhashes {
		c.recent = c.recent[len(c.recent)-maxRecentBlockhashes:]
	}
}

func cloneAccount(info solana.AccountInfo) solana.AccountInfo {
	clone := info
	clone.Data = append([]byte(nil), info.Data...)
	clone.Owner = append(ed25519.PublicKey(nil), info.Owner...)
	return clone
}
