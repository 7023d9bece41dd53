package locker_test

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/malbeclabs/locker/smartcontract/programs/host"
	"github.com/malbeclabs/locker/smartcontract/programs/locker"
	"github.com/stretchr/testify/require"
)

func TestProgram_Locker_AccountSizes(t *testing.T) {
	t.Parallel()

	require.Equal(t, 232, locker.LockerAccountSize)
	require.Equal(t, 104, locker.AllocatorAccountSize)
	require.Equal(t, locker.LockerAccountSize, locker.AccountSize[locker.LockerState]())
	require.Equal(t, locker.AllocatorAccountSize, locker.AccountSize[locker.AllocatorState]())
	require.Equal(t, 136, locker.RecordSize[locker.LockerState]())
}

func TestProgram_Locker_Load(t *testing.T) {
	t.Parallel()

	programID := solana.NewWallet().PublicKey()
	rent := host.DefaultRent()

	newInfo := func(data []byte) *host.AccountInfo {
		return &host.AccountInfo{
			Key:      solana.NewWallet().PublicKey(),
			Lamports: rent.MinimumBalance(len(data)),
			Data:     data,
			Owner:    programID,
		}
	}

	tests := []struct {
		name    string
		mutate  func(info *host.AccountInfo)
		rent    *host.Rent
		wantErr error
	}{
		{
			name: "valid",
			rent: rent,
		},
		{
			name:   "valid without rent",
			mutate: func(info *host.AccountInfo) { info.Lamports = 0 },
		},
		{
			name:    "95 byte buffer",
			mutate:  func(info *host.AccountInfo) { info.Data = host.AlignedBytes(95) },
			rent:    rent,
			wantErr: locker.ErrInvalidData,
		},
		{
			name:    "header only",
			mutate:  func(info *host.AccountInfo) { info.Data = host.AlignedBytes(locker.HeaderSize) },
			wantErr: locker.ErrInvalidData,
		},
		{
			name:    "one byte too long",
			mutate:  func(info *host.AccountInfo) { info.Data = host.AlignedBytes(locker.LockerAccountSize + 1) },
			wantErr: locker.ErrInvalidData,
		},
		{
			name: "misaligned",
			mutate: func(info *host.AccountInfo) {
				info.Data = host.AlignedBytes(locker.LockerAccountSize + 8)[8:]
			},
			wantErr: locker.ErrInvalidAlignment,
		},
		{
			name:    "foreign owner",
			mutate:  func(info *host.AccountInfo) { info.Owner = solana.SystemProgramID },
			rent:    rent,
			wantErr: locker.ErrInvalidOwner,
		},
		{
			name:    "not rent exempt",
			mutate:  func(info *host.AccountInfo) { info.Lamports-- },
			rent:    rent,
			wantErr: locker.ErrNotRentExempt,
		},
		{
			name: "size checked before owner",
			mutate: func(info *host.AccountInfo) {
				info.Data = host.AlignedBytes(95)
				info.Owner = solana.SystemProgramID
			},
			wantErr: locker.ErrInvalidData,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			info := newInfo(host.AlignedBytes(locker.LockerAccountSize))
			if tt.mutate != nil {
				tt.mutate(info)
			}
			e, err := locker.Load[locker.LockerState](programID, info, tt.rent)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				require.Nil(t, e)
				return
			}
			require.NoError(t, err)
			require.True(t, e.IsEmpty())
		})
	}
}

func TestProgram_Locker_Load_MapsInPlace(t *testing.T) {
	t.Parallel()

	programID := solana.NewWallet().PublicKey()
	info := &host.AccountInfo{
		Key:   solana.NewWallet().PublicKey(),
		Data:  host.AlignedBytes(locker.LockerAccountSize),
		Owner: programID,
	}

	e, err := locker.Load[locker.LockerState](programID, info, nil)
	require.NoError(t, err)

	owner := solana.NewWallet().PublicKey()
	e.Record.Owner = owner
	e.Record.ReleaseDate = 0x0102030405060708
	e.Initialize(7, 3, 1)

	require.Equal(t, byte(locker.EntityKindLocker), info.Data[0])
	require.Equal(t, byte(7), info.Data[8])
	require.Equal(t, byte(3), info.Data[16])
	require.Equal(t, byte(1), info.Data[24])
	require.Equal(t, owner[:], info.Data[96:128])
	require.Equal(t, []byte{8, 7, 6, 5, 4, 3, 2, 1}, info.Data[224:232])

	again, err := locker.Load[locker.LockerState](programID, info, nil)
	require.NoError(t, err)
	require.True(t, again.Is())
	require.Equal(t, owner, again.Record.Owner)
	require.Equal(t, uint64(7), again.Header.ID)
}

func TestProgram_Locker_Load_AllocatorKind(t *testing.T) {
	t.Parallel()

	programID := solana.NewWallet().PublicKey()
	info := &host.AccountInfo{
		Key:   solana.NewWallet().PublicKey(),
		Data:  host.AlignedBytes(locker.LockerAccountSize),
		Owner: programID,
	}
	_, err := locker.Load[locker.AllocatorState](programID, info, nil)
	require.ErrorIs(t, err, locker.ErrInvalidData)
}

func TestProgram_Locker_ErrorCode(t *testing.T) {
	t.Parallel()

	require.Equal(t, uint32(1), locker.ErrorCode(locker.ErrInvalidData))
	require.Equal(t, uint32(2), locker.ErrorCode(locker.ErrInvalidAlignment))
	require.Equal(t, uint32(3), locker.ErrorCode(locker.ErrInvalidOwner))
	require.Equal(t, uint32(4), locker.ErrorCode(locker.ErrNotRentExempt))
	require.Equal(t, uint32(5), locker.ErrorCode(locker.ErrInvalidAuthority))
	require.Equal(t, uint32(5), locker.ErrorCode(&host.InstructionError{Index: 0, Err: locker.ErrInvalidAuthority}))
	require.Equal(t, uint32(0), locker.ErrorCode(host.ErrMissingSignature))
}
