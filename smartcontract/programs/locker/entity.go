// Package locker implements the token locker program: entities mapped in place over account
// data, the method codec, and the operation handlers run by the host.
//
// Entity records are overlaid directly on account buffers, so their Go layout must match the
// little-endian on-chain layout. The package assumes a little-endian host.
package locker

import (
	"fmt"
	"unsafe"

	"github.com/gagliardetto/solana-go"
	"github.com/malbeclabs/locker/smartcontract/programs/host"
)

// HeaderSize is the number of bytes reserved for the entity header at the start of every entity account.
const HeaderSize = 96

type EntityKind uint8

const (
	EntityKindNone      EntityKind = 0
	EntityKindLocker    EntityKind = 1
	EntityKindAllocator EntityKind = 2
)

func (k EntityKind) String() string {
	switch k {
	case EntityKindNone:
		return "none"
	case EntityKindLocker:
		return "locker"
	case EntityKindAllocator:
		return "allocator"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(k))
	}
}

// Header is the common prefix of every entity account.
type Header struct {
	Kind     EntityKind
	_        [7]byte
	ID       uint64
	ParentID uint64
	Root     uint64
	_        [64]byte
}

var (
	_ [HeaderSize - unsafe.Sizeof(Header{})]struct{}
	_ [unsafe.Sizeof(Header{}) - HeaderSize]struct{}
)

// Record is the set of entity payloads that can follow the header.
type Record interface {
	LockerState | AllocatorState
	Kind() EntityKind
}

// Entity is a typed view over an entity account. Header and Record point into the account
// data, so writes through them are visible to the host immediately.
type Entity[T Record] struct {
	Key    solana.PublicKey
	Header *Header
	Record *T
}

// RecordSize returns the encoded size of the record of type T.
func RecordSize[T Record]() int {
	var zero T
	return int(unsafe.Sizeof(zero))
}

// AccountSize returns the full account length of an entity with a record of type T.
func AccountSize[T Record]() int {
	return HeaderSize + RecordSize[T]()
}

// Load maps the entity of type T over the account data. The size, alignment, owner and, when rent
// is non-nil, rent exemption of the account are validated in that order. The kind recorded in the
// header is not checked.
func Load[T Record](programID solana.PublicKey, info *host.AccountInfo, rent *host.Rent) (*Entity[T], error) {
	data := info.Data
	if len(data) < HeaderSize || len(data)-HeaderSize != RecordSize[T]() {
		return nil, fmt.Errorf("%w: account %s has length %d, want %d", ErrInvalidData, info.Key, len(data), AccountSize[T]())
	}
	if !host.IsAligned(data) {
		return nil, fmt.Errorf("%w: account %s", ErrInvalidAlignment, info.Key)
	}
	if info.Owner != programID {
		return nil, fmt.Errorf("%w: account %s is owned by %s", ErrInvalidOwner, info.Key, info.Owner)
	}
	if rent != nil && !rent.IsExempt(info.Lamports, len(data)) {
		return nil, fmt.Errorf("%w: account %s", ErrNotRentExempt, info.Key)
	}
	return &Entity[T]{
		Key:    info.Key,
		Header: (*Header)(unsafe.Pointer(&data[0])),
		Record: (*T)(unsafe.Pointer(&data[HeaderSize])),
	}, nil
}

// IsEmpty reports whether the entity has never been initialised.
func (e *Entity[T]) IsEmpty() bool {
	return e.Header.Kind == EntityKindNone
}

// Is reports whether the header records the kind that matches T.
func (e *Entity[T]) Is() bool {
	var zero T
	return e.Header.Kind == zero.Kind()
}

// Initialize stamps the header with T's kind and the given lineage.
func (e *Entity[T]) Initialize(id, parentID, root uint64) {
	var zero T
	e.Header.Kind = zero.Kind()
	e.Header.ID = id
	e.Header.ParentID = parentID
	e.Header.Root = root
}
