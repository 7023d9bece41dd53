package host

import (
	"bytes"
	"fmt"
	"log/slog"

	"github.com/gagliardetto/solana-go"
)

// MaxInvokeDepth bounds nested cross-program invocations, the top-level instruction included.
const MaxInvokeDepth = 4

// Program is the entry point the host invokes for every instruction addressed to it.
type Program interface {
	Process(ctx *InvokeContext) error
}

type ProgramFunc func(ctx *InvokeContext) error

func (f ProgramFunc) Process(ctx *InvokeContext) error {
	return f(ctx)
}

// InvokeContext carries one instruction's accounts and payload into a program.
type InvokeContext struct {
	ProgramID solana.PublicKey
	Accounts  []*AccountInfo
	Data      []byte
	Log       *slog.Logger

	tx       *txState
	depth    int
	baseline []accountState
}

type accountState struct {
	owner solana.PublicKey
	data  []byte
}

func snapshotState(a *AccountInfo) accountState {
	return accountState{owner: a.Owner, data: bytes.Clone(a.Data)}
}

// Now returns the unix timestamp of the clock sysvar for the running transaction.
func (c *InvokeContext) Now() int64 {
	return c.tx.now
}

// Rent returns the rent parameters, or nil when the host does not enforce rent.
func (c *InvokeContext) Rent() *Rent {
	if !c.tx.bank.enforceRent {
		return nil
	}
	return c.tx.bank.rent
}

// Invoke runs ix as a cross-program invocation. Each entry of signerSeeds is the seed set of
// a program-derived address of the calling program that is granted signer privilege.
func (c *InvokeContext) Invoke(ix solana.Instruction, signerSeeds ...[][]byte) error {
	if c.depth+1 >= MaxInvokeDepth {
		return ErrCallDepth
	}
	programID := ix.ProgramID()
	program, ok := c.tx.bank.program(programID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrProgramNotFound, programID)
	}
	data, err := ix.Data()
	if err != nil {
		return fmt.Errorf("failed to encode instruction data: %w", err)
	}

	pdaSigners := make(map[solana.PublicKey]struct{}, len(signerSeeds))
	for _, seeds := range signerSeeds {
		addr, err := solana.CreateProgramAddress(seeds, c.ProgramID)
		if err != nil {
			return fmt.Errorf("%w: invalid signer seeds: %v", ErrPrivilegeEscalation, err)
		}
		pdaSigners[addr] = struct{}{}
	}

	// The caller's changes so far must be legal before the baseline moves past them.
	if err := c.verify(); err != nil {
		return err
	}

	metas := ix.Accounts()
	sources := make([]*AccountInfo, len(metas))
	views := make([]*AccountInfo, len(metas))
	for i, meta := range metas {
		src, ok := c.lookup(meta.PublicKey)
		if !ok {
			return fmt.Errorf("%w: %s", ErrMissingAccount, meta.PublicKey)
		}
		_, isPDA := pdaSigners[meta.PublicKey]
		if meta.IsSigner && !src.IsSigner && !isPDA {
			return fmt.Errorf("%w: %s is not a signer", ErrPrivilegeEscalation, meta.PublicKey)
		}
		if meta.IsWritable && !src.IsWritable {
			return fmt.Errorf("%w: %s is not writable", ErrPrivilegeEscalation, meta.PublicKey)
		}
		view := *src
		view.IsSigner = meta.IsSigner
		view.IsWritable = meta.IsWritable
		sources[i] = src
		views[i] = &view
	}

	callee := &InvokeContext{
		ProgramID: programID,
		Accounts:  views,
		Data:      data,
		Log:       c.tx.bank.log.With("program", programID.String()),
		tx:        c.tx,
		depth:     c.depth + 1,
	}
	if err := execute(program, callee); err != nil {
		return err
	}

	touched := make(map[solana.PublicKey]struct{}, len(views))
	for i, view := range views {
		sources[i].Lamports = view.Lamports
		sources[i].Data = view.Data
		sources[i].Owner = view.Owner
		touched[view.Key] = struct{}{}
	}
	for i, a := range c.Accounts {
		if _, ok := touched[a.Key]; ok {
			c.baseline[i] = snapshotState(a)
		}
	}
	return nil
}

// lookup resolves key against the accounts passed to the calling instruction. A program can
// only hand on accounts it was given.
func (c *InvokeContext) lookup(key solana.PublicKey) (*AccountInfo, bool) {
	for _, a := range c.Accounts {
		if a.Key == key {
			return a, true
		}
	}
	return nil, false
}

// verify enforces the host's data ownership rules on every change made since the program was
// entered or last returned from a cross-program invocation.
func (c *InvokeContext) verify() error {
	for i, a := range c.Accounts {
		before := c.baseline[i]
		if a.Owner != before.owner {
			// Only the owner may reassign a writable account, and only while its data is zeroed.
			if before.owner != c.ProgramID || !a.IsWritable || !isZeroed(a.Data) {
				return fmt.Errorf("%w: %s", ErrAccountOwnerModified, a.Key)
			}
		}
		if bytes.Equal(a.Data, before.data) {
			continue
		}
		if before.owner != c.ProgramID {
			return fmt.Errorf("%w: %s", ErrExternalAccountDataModified, a.Key)
		}
		if !a.IsWritable {
			return fmt.Errorf("%w: %s", ErrReadonlyDataModified, a.Key)
		}
	}
	return nil
}

// execute runs program and enforces the host's data ownership rules on what it changed.
func execute(program Program, ctx *InvokeContext) error {
	ctx.baseline = make([]accountState, len(ctx.Accounts))
	for i, a := range ctx.Accounts {
		ctx.baseline[i] = snapshotState(a)
	}

	if err := program.Process(ctx); err != nil {
		return err
	}
	return ctx.verify()
}

func isZeroed(data []byte) bool {
	for _, b := range data {
		if b != 0 {
			return false
		}
	}
	return true
}
