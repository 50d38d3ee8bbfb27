package domain

import "time"

// TokenTransfer is an ERC20-style transfer extracted from a transaction's logs.
type TokenTransfer struct {
	Timestamp    time.Time // parent transaction timestamp
	From         string
	To           string
	ToIsContract bool
	Symbol       string  // empty when the indexer has no ticker
	ValueQuote   float64 // value already converted by the indexer
}

// TransferEventName is the decoded event name of an ERC20 transfer.
const TransferEventName = "Transfer"
