package model

// SatoshisPerCoin is the number of satoshis in one whole coin (10^8).
const SatoshisPerCoin = 100000000

// SatoshiToCoin converts a satoshi amount to its floating-point coin value.
// Suitable for display; do not use for further arithmetic where precision
// matters.
func SatoshiToCoin(satoshis uint64) float64 {
	return float64(satoshis) / SatoshisPerCoin
}
