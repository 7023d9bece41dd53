package locker

import (
	"fmt"
	"math"

	"github.com/gagliardetto/solana-go"
	"github.com/malbeclabs/locker/smartcontract/programs/host"
)

// AllocatorSeed is the seed of the program-derived address of the id allocator.
const AllocatorSeed = "allocator"

// FindAllocatorAddress derives the allocator address. Seeds: ["allocator"].
func FindAllocatorAddress(programID solana.PublicKey) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress([][]byte{[]byte(AllocatorSeed)}, programID)
}

// NewAllocatorAccount returns the zeroed, program-owned, rent-exempt account the allocator lives
// in. It is provisioned at deployment and initialised on first use.
func NewAllocatorAccount(programID solana.PublicKey, rent *host.Rent) *host.Account {
	return &host.Account{
		Lamports: rent.MinimumBalance(AllocatorAccountSize),
		Data:     host.AlignedBytes(AllocatorAccountSize),
		Owner:    programID,
	}
}

// Allocator hands out entity ids. Ids start at 1 and are never reused.
type Allocator struct {
	*Entity[AllocatorState]
}

func loadAllocator(ctx *host.InvokeContext, info *host.AccountInfo) (*Allocator, error) {
	expected, _, err := FindAllocatorAddress(ctx.ProgramID)
	if err != nil {
		return nil, fmt.Errorf("failed to derive allocator address: %w", err)
	}
	if info.Key != expected {
		return nil, fmt.Errorf("%w: allocator %s, want %s", ErrInvalidData, info.Key, expected)
	}
	e, err := Load[AllocatorState](ctx.ProgramID, info, ctx.Rent())
	if err != nil {
		return nil, err
	}
	if !e.IsEmpty() && !e.Is() {
		return nil, fmt.Errorf("%w: allocator %s holds a %s entity", ErrInvalidData, info.Key, e.Header.Kind)
	}
	return &Allocator{Entity: e}, nil
}

// NextID returns the id the next call to AllocateID will hand out without consuming it.
func (a *Allocator) NextID() (uint64, error) {
	next := a.Record.NextID
	if a.IsEmpty() {
		next = 1
	}
	if next == math.MaxUint64 {
		return 0, fmt.Errorf("%w: entity id space exhausted", ErrInvalidData)
	}
	return next, nil
}

// AllocateID consumes and returns the next id, initialising the allocator on first use.
func (a *Allocator) AllocateID() (uint64, error) {
	id, err := a.NextID()
	if err != nil {
		return 0, err
	}
	if a.IsEmpty() {
		a.Initialize(0, 0, 0)
	}
	a.Record.NextID = id + 1
	return id, nil
}
