package host

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/gagliardetto/solana-go"
	"github.com/jonboulle/clockwork"
)

// Transaction is an ordered list of instructions executed atomically by the bank.
type Transaction struct {
	Instructions []solana.Instruction

	// Signers are the keys whose signatures the transaction carries.
	Signers []solana.PublicKey
}

type Option func(*Bank)

func WithClock(clock clockwork.Clock) Option {
	return func(b *Bank) {
		b.clock = clock
	}
}

func WithRent(rent *Rent) Option {
	return func(b *Bank) {
		b.rent = rent
		b.enforceRent = true
	}
}

// WithoutRent disables rent-exemption enforcement, as on hosts without the rent sysvar.
func WithoutRent() Option {
	return func(b *Bank) {
		b.enforceRent = false
	}
}

// Bank is an in-memory ledger of accounts keyed by address. Transactions are serialised and
// either commit every account change or none.
type Bank struct {
	log         *slog.Logger
	clock       clockwork.Clock
	rent        *Rent
	enforceRent bool

	mu       sync.Mutex
	accounts map[solana.PublicKey]*Account
	programs map[solana.PublicKey]Program
}

func NewBank(log *slog.Logger, opts ...Option) *Bank {
	b := &Bank{
		log:         log,
		clock:       clockwork.NewRealClock(),
		rent:        DefaultRent(),
		enforceRent: true,
		accounts:    make(map[solana.PublicKey]*Account),
		programs:    make(map[solana.PublicKey]Program),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.programs[SystemProgramID] = systemProgram{}
	b.programs[TokenProgramID] = tokenProgram{}
	return b
}

func (b *Bank) Rent() *Rent {
	return b.rent
}

func (b *Bank) Now() int64 {
	return b.clock.Now().Unix()
}

// RegisterProgram makes program invocable at programID.
func (b *Bank) RegisterProgram(programID solana.PublicKey, program Program) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.programs[programID] = program
	if _, ok := b.accounts[programID]; !ok {
		b.accounts[programID] = &Account{Owner: solana.BPFLoaderUpgradeableProgramID, Executable: true}
	}
}

func (b *Bank) SetAccount(key solana.PublicKey, acct *Account) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.accounts[key] = acct.Clone()
}

// Account returns a copy of the account at key, or nil if none exists.
func (b *Bank) Account(key solana.PublicKey) *Account {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.accounts[key].Clone()
}

// program looks up a registered program. Callers hold b.mu.
func (b *Bank) program(programID solana.PublicKey) (Program, bool) {
	p, ok := b.programs[programID]
	return p, ok
}

// Process executes tx. On any failure no account change is persisted and the returned error
// is an *InstructionError naming the failing instruction.
func (b *Bank) Process(tx *Transaction) error {
	if len(tx.Instructions) == 0 {
		return ErrEmptyTransaction
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	signers := make(map[solana.PublicKey]struct{}, len(tx.Signers))
	for _, s := range tx.Signers {
		signers[s] = struct{}{}
	}

	state := &txState{
		bank:     b,
		now:      b.clock.Now().Unix(),
		accounts: make(map[solana.PublicKey]*AccountInfo),
		existed:  make(map[solana.PublicKey]bool),
	}
	for i, ix := range tx.Instructions {
		for _, meta := range ix.Accounts() {
			if meta.IsSigner {
				if _, ok := signers[meta.PublicKey]; !ok {
					return &InstructionError{Index: i, Err: fmt.Errorf("%w: %s", ErrMissingSignature, meta.PublicKey)}
				}
			}
			info := state.account(meta.PublicKey)
			info.IsSigner = info.IsSigner || meta.IsSigner
			info.IsWritable = info.IsWritable || meta.IsWritable
		}
	}

	for i, ix := range tx.Instructions {
		if err := state.run(ix); err != nil {
			b.log.Debug("transaction failed", "instruction", i, "program", ix.ProgramID().String(), "error", err)
			return &InstructionError{Index: i, Err: err}
		}
	}

	for key, info := range state.accounts {
		if !info.IsWritable {
			continue
		}
		if !state.existed[key] && info.Lamports == 0 && len(info.Data) == 0 {
			continue
		}
		b.accounts[key] = info.Snapshot()
	}
	return nil
}

// txState is the working set of accounts for one transaction.
type txState struct {
	bank     *Bank
	now      int64
	accounts map[solana.PublicKey]*AccountInfo
	existed  map[solana.PublicKey]bool
}

// account returns the working copy of key, loading it from the bank on first use.
func (s *txState) account(key solana.PublicKey) *AccountInfo {
	if info, ok := s.accounts[key]; ok {
		return info
	}
	acct, ok := s.bank.accounts[key]
	s.existed[key] = ok
	info := NewAccountInfo(key, acct, false, false)
	s.accounts[key] = info
	return info
}

func (s *txState) run(ix solana.Instruction) error {
	programID := ix.ProgramID()
	program, ok := s.bank.program(programID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrProgramNotFound, programID)
	}
	data, err := ix.Data()
	if err != nil {
		return fmt.Errorf("failed to encode instruction data: %w", err)
	}
	metas := ix.Accounts()
	infos := make([]*AccountInfo, len(metas))
	for i, meta := range metas {
		infos[i] = s.account(meta.PublicKey)
	}
	ctx := &InvokeContext{
		ProgramID: programID,
		Accounts:  infos,
		Data:      data,
		Log:       s.bank.log.With("program", programID.String()),
		tx:        s,
	}
	return execute(program, ctx)
}
