package service

import (
	"math"

	"github.com/wallet-roaster/internal/models"
)

// Diagnosis labels for wallets that match none of the data-driven rules
var diagnosisLabels = []string{
	"PAPER HANDS",
	"EXIT LIQUIDITY",
	"BAG HOLDER",
	"FOMO VICTIM",
	"COPIUM ADDICT",
	"RUG MAGNET",
	"CHART ASTROLOGER",
	"NGMI",
}

// CalculateRoastStats derives the cosmetic stats shown for a wallet. The
// pseudo-random parts are seeded by the address so a wallet always gets the
// same numbers for the same on-chain data.
func CalculateRoastStats(s *models.AccountSnapshot) models.RoastStats {
	seed := addressSeed(s.Address)
	isActive := s.TxCount > 50

	paperHandScore := int(math.Floor(seededFraction(seed, 1)*30)) + 70
	if s.IsDust && isActive {
		paperHandScore += 5
	}
	if s.IsWhale {
		paperHandScore -= 20
	}
	paperHandScore = clamp(paperHandScore, 0, 100)

	txDivisor := s.TxCount
	if txDivisor < 1 {
		txDivisor = 1
	}

	return models.RoastStats{
		PaperHandScore:   paperHandScore,
		RugPulls:         s.TokenAccountCount,
		AthBuys:          int(math.Floor(float64(s.FailedTxCount)/float64(txDivisor)*100 + 0.5)),
		ProfitableTrades: int(math.Floor(seededFraction(seed, 3) * 10)),
		TotalTrades:      s.TxCount,
		WinRate:          s.DaysActive,
	}
}

// Diagnose labels a wallet. Balance and activity rules come first; otherwise
// the label is picked from the address hash. s may be nil.
func Diagnose(address string, s *models.AccountSnapshot) string {
	if s != nil {
		switch {
		case s.IsDust:
			return "POOR"
		case s.IsWhale:
			return "WHALE"
		case s.TxCount > 100:
			return "TERMINAL DEGEN"
		case s.TxCount < 5:
			return "INACTIVE"
		}
	}
	return diagnosisLabels[addressHash(address)%int64(len(diagnosisLabels))]
}

// addressSeed sums the character codes of address
func addressSeed(address string) int {
	seed := 0
	for _, r := range address {
		seed += int(r)
	}
	return seed
}

// seededFraction is a deterministic value in [0, 1)
func seededFraction(seed, offset int) float64 {
	x := math.Sin(float64(seed+offset)) * 10000
	return x - math.Floor(x)
}

// addressHash is the 31-multiplier string hash where only the shift wraps
// to 32 bits, returned as a non-negative value.
func addressHash(address string) int64 {
	var h int64
	for _, r := range address {
		h = int64(r) + int64(int32(h)<<5) - h
	}
	if h < 0 {
		h = -h
	}
	return h
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
