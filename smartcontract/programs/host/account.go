package host

import (
	"unsafe"

	"github.com/gagliardetto/solana-go"
)

// DataAlignment is the alignment guaranteed for account data buffers handed to programs.
const DataAlignment = 16

// Account is an account as persisted by the bank.
type Account struct {
	Lamports   uint64
	Data       []byte
	Owner      solana.PublicKey
	Executable bool
	RentEpoch  uint64
}

// Clone returns a deep copy of the account with its data in a freshly aligned buffer.
func (a *Account) Clone() *Account {
	if a == nil {
		return nil
	}
	data := AlignedBytes(len(a.Data))
	copy(data, a.Data)
	return &Account{
		Lamports:   a.Lamports,
		Data:       data,
		Owner:      a.Owner,
		Executable: a.Executable,
		RentEpoch:  a.RentEpoch,
	}
}

// AccountInfo is the view of an account a program receives for the duration of one invocation.
type AccountInfo struct {
	Key        solana.PublicKey
	Lamports   uint64
	Data       []byte
	Owner      solana.PublicKey
	Executable bool
	RentEpoch  uint64
	IsSigner   bool
	IsWritable bool
}

// NewAccountInfo builds an account info for key from an account snapshot, copying the
// data into an aligned buffer.
func NewAccountInfo(key solana.PublicKey, acct *Account, isSigner, isWritable bool) *AccountInfo {
	acct = acct.Clone()
	if acct == nil {
		acct = &Account{Data: AlignedBytes(0), Owner: solana.SystemProgramID}
	}
	return &AccountInfo{
		Key:        key,
		Lamports:   acct.Lamports,
		Data:       acct.Data,
		Owner:      acct.Owner,
		Executable: acct.Executable,
		RentEpoch:  acct.RentEpoch,
		IsSigner:   isSigner,
		IsWritable: isWritable,
	}
}

// Snapshot returns the persisted form of the account info.
func (a *AccountInfo) Snapshot() *Account {
	return &Account{
		Lamports:   a.Lamports,
		Data:       a.Data,
		Owner:      a.Owner,
		Executable: a.Executable,
		RentEpoch:  a.RentEpoch,
	}
}

// AlignedBytes allocates a zeroed buffer of length n whose first byte sits on a
// DataAlignment boundary.
func AlignedBytes(n int) []byte {
	buf := make([]byte, n+DataAlignment)
	off := int(DataAlignment-uintptr(unsafe.Pointer(unsafe.SliceData(buf)))%DataAlignment) % DataAlignment
	return buf[off : off+n : off+n]
}

// IsAligned reports whether the first byte of data sits on a DataAlignment boundary.
func IsAligned(data []byte) bool {
	return uintptr(unsafe.Pointer(unsafe.SliceData(data)))%DataAlignment == 0
}
