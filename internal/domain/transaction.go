package domain

import (
	"strings"
	"time"
)

// Transaction represents one on-chain transaction touching the queried address.
// Receiver is empty for contract-creation transactions.
type Transaction struct {
	Hash         string     `json:"tx_hash"`
	Timestamp    time.Time  `json:"block_signed_at"`
	From         string     `json:"from_address"`           // always present
	To           string     `json:"to_address,omitempty"`   // empty for contract creation
	ToIsContract bool       `json:"to_address_is_contract"` // receiver is a contract
	Value        string     `json:"value"`                  // wei, decimal string
	Logs         []LogEvent `json:"log_events,omitempty"`
}

// IsContractCreation reports whether the transaction deployed a contract.
func (t Transaction) IsContractCreation() bool {
	return t.To == ""
}

// SentBy reports whether address is the sender (case-insensitive).
func (t Transaction) SentBy(address string) bool {
	return t.From != "" && strings.EqualFold(t.From, address)
}

// ReceivedBy reports whether address is the receiver (case-insensitive).
func (t Transaction) ReceivedBy(address string) bool {
	return t.To != "" && strings.EqualFold(t.To, address)
}

// LogEvent is an event log emitted during a transaction.
type LogEvent struct {
	TickerSymbol string        `json:"sender_contract_ticker_symbol,omitempty"` // emitting contract's ticker
	Decoded      *DecodedEvent `json:"decoded,omitempty"`                       // nil when the indexer could not decode
}

// DecodedEvent is the ABI-decoded form of a log event.
type DecodedEvent struct {
	Name   string       `json:"name"`
	Params []EventParam `json:"params,omitempty"`
}

// Param returns the first parameter with the given name.
func (e *DecodedEvent) Param(name string) (EventParam, bool) {
	if e == nil {
		return EventParam{}, false
	}
	for _, p := range e.Params {
		if p.Name == name {
			return p, true
		}
	}
	return EventParam{}, false
}

// EventParam is a single decoded event parameter.
type EventParam struct {
	Name       string  `json:"name"`
	Value      string  `json:"value"`
	ValueQuote float64 `json:"value_quote"` // quote value supplied by the indexer, 0 if absent
	IsContract bool    `json:"is_contract"`
}
