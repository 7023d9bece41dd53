package locker

import (
	"fmt"

	"github.com/malbeclabs/locker/smartcontract/programs/host"
)

// Program is the locker program entry point.
type Program struct{}

var _ host.Program = (*Program)(nil)

func NewProgram() *Program {
	return &Program{}
}

// Process decodes the instruction payload and dispatches it to its handler. Decoding has no side
// effects, so a malformed payload never touches an account.
func (p *Program) Process(ctx *host.InvokeContext) error {
	method, err := DecodeMethod(ctx.Data)
	if err != nil {
		ctx.Log.Debug("failed to decode instruction", "error", err)
		return err
	}

	switch m := method.(type) {
	case CreateLock:
		err = createLock(ctx, m)
	case ReLock:
		err = relock(ctx, m)
	case Withdraw:
		err = withdraw(ctx, m)
	case Increment:
		err = increment(ctx, m)
	case Split:
		err = split(ctx, m)
	case ChangeOwner:
		err = changeOwner(ctx, m)
	default:
		err = fmt.Errorf("%w: unsupported method %s", ErrInvalidData, method.Kind())
	}
	if err != nil {
		ctx.Log.Debug("instruction failed", "method", method.Kind().String(), "code", ErrorCode(err), "error", err)
	}
	return err
}
