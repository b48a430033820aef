package models

// RoastStats are the cosmetic numbers shown next to a roast. Field names keep
// their historic labels; see the comments for what each one actually measures.
type RoastStats struct {
	PaperHandScore   int `json:"paperHandScore"`
	RugPulls         int `json:"rugPulls"`         // token account count
	AthBuys          int `json:"athBuys"`          // failed tx percentage
	ProfitableTrades int `json:"profitableTrades"` // cosmetic
	TotalTrades      int `json:"totalTrades"`      // visible tx count
	WinRate          int `json:"winRate"`          // days since first visible tx
}

// WalletRoast is the payload returned for a wallet lookup.
type WalletRoast struct {
	Wallet    *AccountSnapshot `json:"wallet"`
	Stats     RoastStats       `json:"stats"`
	Diagnosis string           `json:"diagnosis"`
}
