package locker

import (
	"unsafe"

	"github.com/gagliardetto/solana-go"
)

const (
	// LockerAccountSize is the exact data length of a locker account.
	LockerAccountSize = HeaderSize + 136

	// AllocatorAccountSize is the exact data length of the allocator account.
	AllocatorAccountSize = HeaderSize + 8
)

// LockerState is the record of a locker entity.
type LockerState struct {
	Owner            solana.PublicKey // 32 bytes
	Mint             solana.PublicKey // 32 bytes
	Vault            solana.PublicKey // 32 bytes
	ProgramAuthority solana.PublicKey // 32 bytes
	ReleaseDate      int64            // 8 bytes LE, unix seconds
}

func (LockerState) Kind() EntityKind { return EntityKindLocker }

// AllocatorState is the record of the id allocator entity.
type AllocatorState struct {
	NextID uint64
}

func (AllocatorState) Kind() EntityKind { return EntityKindAllocator }

var (
	_ [LockerAccountSize - HeaderSize - unsafe.Sizeof(LockerState{})]struct{}
	_ [unsafe.Sizeof(LockerState{}) - (LockerAccountSize - HeaderSize)]struct{}
	_ [AllocatorAccountSize - HeaderSize - unsafe.Sizeof(AllocatorState{})]struct{}
)
