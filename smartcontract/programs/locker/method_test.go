package locker_test

import (
	"testing"

	"github.com/malbeclabs/locker/smartcontract/programs/locker"
	"github.com/stretchr/testify/require"
)

func TestProgram_Locker_Method_RoundTrip(t *testing.T) {
	t.Parallel()

	methods := []locker.Method{
		locker.CreateLock{UnlockDate: 1_700_003_600, Amount: 1000},
		locker.CreateLock{UnlockDate: -1, Amount: ^uint64(0)},
		locker.ReLock{UnlockDate: 1_800_000_000},
		locker.Withdraw{Amount: 42},
		locker.Increment{Amount: 0},
		locker.Split{Amount: 400},
		locker.ChangeOwner{Amount: 9},
	}
	for _, m := range methods {
		data, err := locker.EncodeMethod(m)
		require.NoError(t, err)
		require.Equal(t, byte(m.Kind()), data[0])

		decoded, err := locker.DecodeMethod(data)
		require.NoError(t, err)
		require.Equal(t, m, decoded)
	}
}

func TestProgram_Locker_Method_Encoding(t *testing.T) {
	t.Parallel()

	data, err := locker.EncodeMethod(locker.CreateLock{UnlockDate: 0x0102, Amount: 0x03})
	require.NoError(t, err)
	require.Equal(t, []byte{
		0,
		0x02, 0x01, 0, 0, 0, 0, 0, 0,
		0x03, 0, 0, 0, 0, 0, 0, 0,
	}, data)

	data, err = locker.EncodeMethod(locker.Withdraw{Amount: 1})
	require.NoError(t, err)
	require.Equal(t, []byte{2, 1, 0, 0, 0, 0, 0, 0, 0}, data)
}

func TestProgram_Locker_Method_DecodeErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data []byte
	}{
		{name: "empty", data: nil},
		{name: "unknown tag", data: []byte{6, 0, 0, 0, 0, 0, 0, 0, 0}},
		{name: "truncated create", data: []byte{0, 1, 0, 0, 0, 0, 0, 0, 0, 1, 0}},
		{name: "truncated relock", data: []byte{1, 1, 2, 3}},
		{name: "tag only", data: []byte{2}},
		{name: "trailing bytes", data: []byte{3, 1, 0, 0, 0, 0, 0, 0, 0, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			m, err := locker.DecodeMethod(tt.data)
			require.ErrorIs(t, err, locker.ErrInvalidData)
			require.Nil(t, m)
		})
	}
}
