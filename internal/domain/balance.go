package domain

// BalanceItem represents one token balance held by an address at query time.
type BalanceItem struct {
	Native   bool   `json:"native_token"`           // chain's base asset
	Balance  string `json:"balance"`                // raw integer balance, decimal string
	Decimals int    `json:"contract_decimals"`      // fractional digits of Balance
	Symbol   string `json:"contract_ticker_symbol"` // may be empty
}
