package host

const (
	DefaultLamportsPerByteYear = 3480
	DefaultExemptionThreshold  = 2.0

	// AccountStorageOverhead is the per-account metadata size charged on top of the data length.
	AccountStorageOverhead = 128
)

// Rent holds the rent sysvar parameters.
type Rent struct {
	LamportsPerByteYear uint64
	ExemptionThreshold  float64
}

func DefaultRent() *Rent {
	return &Rent{
		LamportsPerByteYear: DefaultLamportsPerByteYear,
		ExemptionThreshold:  DefaultExemptionThreshold,
	}
}

// MinimumBalance returns the lamports an account with dataLen bytes needs to be rent-exempt.
func (r *Rent) MinimumBalance(dataLen int) uint64 {
	bytes := uint64(AccountStorageOverhead + dataLen)
	return uint64(float64(bytes*r.LamportsPerByteYear) * r.ExemptionThreshold)
}

func (r *Rent) IsExempt(lamports uint64, dataLen int) bool {
	return lamports >= r.MinimumBalance(dataLen)
}
