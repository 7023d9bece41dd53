package locker

import (
	lockerprog "github.com/malbeclabs/locker/smartcontract/programs/locker"
)

// LockerInstructionType is the discriminant byte of a locker instruction.
type LockerInstructionType uint8

const (
	CreateLockInstructionIndex  = LockerInstructionType(lockerprog.MethodCreateLock)
	ReLockInstructionIndex      = LockerInstructionType(lockerprog.MethodReLock)
	WithdrawInstructionIndex    = LockerInstructionType(lockerprog.MethodWithdraw)
	IncrementInstructionIndex   = LockerInstructionType(lockerprog.MethodIncrement)
	SplitInstructionIndex       = LockerInstructionType(lockerprog.MethodSplit)
	ChangeOwnerInstructionIndex = LockerInstructionType(lockerprog.MethodChangeOwner)
)

// Account sizes
const (
	LockerAccountSize    = lockerprog.LockerAccountSize
	AllocatorAccountSize = lockerprog.AllocatorAccountSize
	TokenAccountSize     = 165
)

// Account layout offsets used for RPC filters.
const (
	KindOffset  = 0
	OwnerOffset = lockerprog.HeaderSize
)

// MaxMultipleAccounts is the largest batch a single getMultipleAccounts call accepts.
const MaxMultipleAccounts = 100

const lockerKind = lockerprog.EntityKindLocker
