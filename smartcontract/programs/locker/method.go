package locker

import (
	"bytes"
	"fmt"

	bin "github.com/gagliardetto/binary"
)

// MethodKind is the leading discriminant byte of an instruction payload.
type MethodKind uint8

const (
	MethodCreateLock  MethodKind = 0
	MethodReLock      MethodKind = 1
	MethodWithdraw    MethodKind = 2
	MethodIncrement   MethodKind = 3
	MethodSplit       MethodKind = 4
	MethodChangeOwner MethodKind = 5
)

func (k MethodKind) String() string {
	switch k {
	case MethodCreateLock:
		return "create_lock"
	case MethodReLock:
		return "relock"
	case MethodWithdraw:
		return "withdraw"
	case MethodIncrement:
		return "increment"
	case MethodSplit:
		return "split"
	case MethodChangeOwner:
		return "change_owner"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(k))
	}
}

// Method is a decoded instruction payload.
type Method interface {
	Kind() MethodKind
}

type CreateLock struct {
	UnlockDate int64
	Amount     uint64
}

type ReLock struct {
	UnlockDate int64
}

type Withdraw struct {
	Amount uint64
}

type Increment struct {
	Amount uint64
}

type Split struct {
	Amount uint64
}

// ChangeOwner carries an amount for wire compatibility; the handler ignores it.
type ChangeOwner struct {
	Amount uint64
}

func (CreateLock) Kind() MethodKind  { return MethodCreateLock }
func (ReLock) Kind() MethodKind      { return MethodReLock }
func (Withdraw) Kind() MethodKind    { return MethodWithdraw }
func (Increment) Kind() MethodKind   { return MethodIncrement }
func (Split) Kind() MethodKind       { return MethodSplit }
func (ChangeOwner) Kind() MethodKind { return MethodChangeOwner }

// DecodeMethod parses an instruction payload: a one-byte discriminant followed by the
// little-endian fields of that method. The whole payload must be consumed.
func DecodeMethod(data []byte) (Method, error) {
	dec := bin.NewBorshDecoder(data)
	tag, err := dec.ReadUint8()
	if err != nil {
		return nil, fmt.Errorf("%w: empty instruction payload", ErrInvalidData)
	}

	var m Method
	switch MethodKind(tag) {
	case MethodCreateLock:
		var v CreateLock
		if v.UnlockDate, err = dec.ReadInt64(bin.LE); err == nil {
			v.Amount, err = dec.ReadUint64(bin.LE)
		}
		m = v
	case MethodReLock:
		var v ReLock
		v.UnlockDate, err = dec.ReadInt64(bin.LE)
		m = v
	case MethodWithdraw:
		var v Withdraw
		v.Amount, err = dec.ReadUint64(bin.LE)
		m = v
	case MethodIncrement:
		var v Increment
		v.Amount, err = dec.ReadUint64(bin.LE)
		m = v
	case MethodSplit:
		var v Split
		v.Amount, err = dec.ReadUint64(bin.LE)
		m = v
	case MethodChangeOwner:
		var v ChangeOwner
		v.Amount, err = dec.ReadUint64(bin.LE)
		m = v
	default:
		return nil, fmt.Errorf("%w: unknown method %d", ErrInvalidData, tag)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: truncated %s payload: %v", ErrInvalidData, MethodKind(tag), err)
	}
	if dec.HasRemaining() {
		return nil, fmt.Errorf("%w: %d trailing bytes after %s payload", ErrInvalidData, dec.Remaining(), MethodKind(tag))
	}
	return m, nil
}

// EncodeMethod is the inverse of DecodeMethod.
func EncodeMethod(m Method) ([]byte, error) {
	buf := new(bytes.Buffer)
	enc := bin.NewBorshEncoder(buf)
	if err := enc.WriteUint8(uint8(m.Kind())); err != nil {
		return nil, err
	}

	var err error
	switch v := m.(type) {
	case CreateLock:
		if err = enc.WriteInt64(v.UnlockDate, bin.LE); err == nil {
			err = enc.WriteUint64(v.Amount, bin.LE)
		}
	case ReLock:
		err = enc.WriteInt64(v.UnlockDate, bin.LE)
	case Withdraw:
		err = enc.WriteUint64(v.Amount, bin.LE)
	case Increment:
		err = enc.WriteUint64(v.Amount, bin.LE)
	case Split:
		err = enc.WriteUint64(v.Amount, bin.LE)
	case ChangeOwner:
		err = enc.WriteUint64(v.Amount, bin.LE)
	default:
		return nil, fmt.Errorf("%w: unsupported method %T", ErrInvalidData, m)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", m.Kind(), err)
	}
	return buf.Bytes(), nil
}
