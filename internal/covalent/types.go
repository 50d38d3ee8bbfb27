package covalent

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"wallet-risk-lab/internal/domain"
)

// envelope is the common Covalent response wrapper.
type envelope[T any] struct {
	Data         *T     `json:"data"`
	Error        bool   `json:"error"`
	ErrorMessage string `json:"error_message"`
	ErrorCode    *int   `json:"error_code"`
}

// transactionsData is the data payload of transactions_v3.
type transactionsData struct {
	Address    string         `json:"address"`
	Items      []rawTx        `json:"items"`
	Pagination *rawPagination `json:"pagination"`
}

type rawPagination struct {
	HasMore    bool `json:"has_more"`
	PageNumber int  `json:"page_number"`
	PageSize   int  `json:"page_size"`
}

// rawTx mirrors a transactions_v3 item. Only fields used downstream are decoded.
type rawTx struct {
	TxHash              string     `json:"tx_hash"`
	BlockSignedAt       flexString `json:"block_signed_at"`
	FromAddress         flexString `json:"from_address"`
	ToAddress           flexString `json:"to_address"`
	ToAddressIsContract flexBool   `json:"to_address_is_contract"`
	Value               flexString `json:"value"`
	LogEvents           []rawLog   `json:"log_events"`
}

type rawLog struct {
	SenderContractTickerSymbol flexString  `json:"sender_contract_ticker_symbol"`
	Decoded                    *rawDecoded `json:"decoded"`
}

type rawDecoded struct {
	Name   string     `json:"name"`
	Params []rawParam `json:"params"`
}

type rawParam struct {
	Name       string     `json:"name"`
	Value      flexString `json:"value"`
	ValueQuote flexFloat  `json:"value_quote"`
	IsContract flexBool   `json:"is_contract"`
}

// balancesData is the data payload of balances_v2.
type balancesData struct {
	Address string       `json:"address"`
	Items   []rawBalance `json:"items"`
}

type rawBalance struct {
	NativeToken          flexBool   `json:"native_token"`
	Balance              flexString `json:"balance"`
	ContractDecimals     flexFloat  `json:"contract_decimals"`
	ContractTickerSymbol flexString `json:"contract_ticker_symbol"`
}

// toDomain converts a raw item into a domain transaction.
// Items without a sender or a parseable timestamp are rejected.
func (r rawTx) toDomain() (domain.Transaction, bool) {
	from := strings.TrimSpace(string(r.FromAddress))
	if from == "" {
		return domain.Transaction{}, false
	}
	ts, ok := parseTimestamp(string(r.BlockSignedAt))
	if !ok {
		return domain.Transaction{}, false
	}

	tx := domain.Transaction{
		Hash:         r.TxHash,
		Timestamp:    ts,
		From:         from,
		To:           strings.TrimSpace(string(r.ToAddress)),
		ToIsContract: bool(r.ToAddressIsContract),
		Value:        strings.TrimSpace(string(r.Value)),
	}

	if len(r.LogEvents) > 0 {
		tx.Logs = make([]domain.LogEvent, 0, len(r.LogEvents))
		for _, l := range r.LogEvents {
			tx.Logs = append(tx.Logs, l.toDomain())
		}
	}
	return tx, true
}

func (r rawLog) toDomain() domain.LogEvent {
	ev := domain.LogEvent{TickerSymbol: string(r.SenderContractTickerSymbol)}
	if r.Decoded == nil {
		return ev
	}
	decoded := &domain.DecodedEvent{Name: r.Decoded.Name}
	for _, p := range r.Decoded.Params {
		decoded.Params = append(decoded.Params, domain.EventParam{
			Name:       p.Name,
			Value:      string(p.Value),
			ValueQuote: p.ValueQuote.Value,
			IsContract: bool(p.IsContract),
		})
	}
	ev.Decoded = decoded
	return ev
}

// maxDecimals is the largest precision an ERC20 contract can declare (uint8).
const maxDecimals = 255

func (r rawBalance) toDomain() domain.BalanceItem {
	decimals := 0
	if r.ContractDecimals.Valid && r.ContractDecimals.Value > 0 {
		decimals = maxDecimals
		if r.ContractDecimals.Value < maxDecimals {
			decimals = int(r.ContractDecimals.Value)
		}
	}
	return domain.BalanceItem{
		Native:   bool(r.NativeToken),
		Balance:  strings.TrimSpace(string(r.Balance)),
		Decimals: decimals,
		Symbol:   string(r.ContractTickerSymbol),
	}
}

// timestampLayouts are tried in order by parseTimestamp.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

func parseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts.UTC(), true
		}
	}
	// Unix seconds
	if secs, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(secs, 0).UTC(), true
	}
	return time.Time{}, false
}

// flexString decodes strings, numbers and booleans as text. null and
// any other shape decode to the empty string.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*f = ""
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
	case data[0] == '-' || (data[0] >= '0' && data[0] <= '9'):
		*f = flexString(data)
	case bytes.Equal(data, []byte("true")), bytes.Equal(data, []byte("false")):
		*f = flexString(data)
	default:
		*f = ""
	}
	return nil
}

// flexFloat decodes a number or a numeric string. Valid is false for null,
// empty or unparseable input.
type flexFloat struct {
	Value float64
	Valid bool
}

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	var s flexString
	if err := s.UnmarshalJSON(data); err != nil {
		return err
	}
	*f = flexFloat{}
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(string(s), 64)
	if err != nil {
		return nil
	}
	f.Value, f.Valid = v, true
	return nil
}

// flexBool decodes true/false, "true"/"false" and 0/1. Anything else is false.
type flexBool bool

func (f *flexBool) UnmarshalJSON(data []byte) error {
	var s flexString
	if err := s.UnmarshalJSON(data); err != nil {
		return err
	}
	b, err := strconv.ParseBool(strings.ToLower(string(s)))
	*f = flexBool(err == nil && b)
	return nil
}
