package features

import (
	"strings"

	"wallet-risk-lab/internal/domain"
)

// ExtractTransfers flattens decoded Transfer log events into token transfers.
// Transactions without logs contribute nothing; undecoded and non-Transfer
// logs are skipped, as are transfers missing a from or to address. Each
// transfer carries its parent transaction's timestamp.
func ExtractTransfers(txs []domain.Transaction) []domain.TokenTransfer {
	var transfers []domain.TokenTransfer
	for _, tx := range txs {
		for _, log := range tx.Logs {
			transfer, ok := transferFromLog(tx, log)
			if !ok {
				continue
			}
			transfers = append(transfers, transfer)
		}
	}
	return transfers
}

func transferFromLog(tx domain.Transaction, log domain.LogEvent) (domain.TokenTransfer, bool) {
	if log.Decoded == nil || log.Decoded.Name != domain.TransferEventName || len(log.Decoded.Params) == 0 {
		return domain.TokenTransfer{}, false
	}

	from, _ := log.Decoded.Param("from")
	to, _ := log.Decoded.Param("to")
	fromAddr := strings.TrimSpace(from.Value)
	toAddr := strings.TrimSpace(to.Value)
	if fromAddr == "" || toAddr == "" {
		return domain.TokenTransfer{}, false
	}

	// value is optional; without it the quote is 0
	value, _ := log.Decoded.Param("value")

	return domain.TokenTransfer{
		Timestamp:    tx.Timestamp,
		From:         fromAddr,
		To:           toAddr,
		ToIsContract: to.IsContract,
		Symbol:       log.TickerSymbol,
		ValueQuote:   value.ValueQuote,
	}, true
}
