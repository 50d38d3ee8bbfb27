package features

import (
	"strings"
	"time"

	"wallet-risk-lab/internal/domain"
)

// Compute derives the feature record of address from its transactions,
// the token transfers extracted from them and its balance snapshot.
// It performs no I/O and never fails; empty inputs produce zero values
// and nil token types.
func Compute(address string, txs []domain.Transaction, transfers []domain.TokenTransfer, balances []domain.BalanceItem) Record {
	r := Record{
		Index:   0,
		Address: address,
		Flag:    0,
	}

	// Partition native transactions by direction
	var sent, received, created, sentToContract []domain.Transaction
	for _, tx := range txs {
		if tx.SentBy(address) {
			sent = append(sent, tx)
			if tx.IsContractCreation() {
				created = append(created, tx)
			}
			if tx.ToIsContract {
				sentToContract = append(sentToContract, tx)
			}
		}
		if tx.ReceivedBy(address) {
			received = append(received, tx)
		}
	}

	r.TimeDiffFirstLastMins = spanMinutes(txTimestamps(txs))
	r.AvgMinBetweenSentTnx = avgGapMinutes(txTimestamps(sent))
	r.AvgMinBetweenReceivedTnx = avgGapMinutes(txTimestamps(received))
	r.SentTnx = len(sent)
	r.ReceivedTnx = len(received)
	r.NumberOfCreatedContracts = len(created)
	r.UniqueReceivedFromAddresses = uniqueAddresses(txSenders(received))
	r.UniqueSentToAddresses = uniqueAddresses(txReceivers(sent))

	sentValues := etherValues(sent)
	receivedValues := etherValues(received)
	contractValues := etherValues(sentToContract)

	recStats := computeStats(receivedValues)
	r.MinValueReceived, r.MaxValueReceived, r.AvgValReceived = recStats.Min, recStats.Max, recStats.Avg
	sentStats := computeStats(sentValues)
	r.MinValSent, r.MaxValSent, r.AvgValSent = sentStats.Min, sentStats.Max, sentStats.Avg
	contractStats := computeStats(contractValues)
	r.MinValueSentToContract, r.MaxValSentToContract, r.AvgValueSentToContract = contractStats.Min, contractStats.Max, contractStats.Avg

	r.TotalTransactions = len(txs)
	r.TotalEtherSent = computeSum(sentValues)
	r.TotalEtherReceived = computeSum(receivedValues)
	r.TotalEtherSentContracts = computeSum(contractValues)
	r.TotalEtherBalance = nativeBalance(balances)

	computeTokenFeatures(&r, address, transfers)
	return r
}

func computeTokenFeatures(r *Record, address string, transfers []domain.TokenTransfer) {
	var sent, received, sentToContract, receivedByContract []domain.TokenTransfer
	for _, t := range transfers {
		if equalAddress(t.From, address) {
			sent = append(sent, t)
			if t.ToIsContract {
				sentToContract = append(sentToContract, t)
			}
		}
		if equalAddress(t.To, address) {
			received = append(received, t)
			if t.ToIsContract {
				receivedByContract = append(receivedByContract, t)
			}
		}
	}

	sentQuotes := quoteValues(sent)
	receivedQuotes := quoteValues(received)
	contractQuotes := quoteValues(sentToContract)

	r.TotalERC20Tnxs = len(transfers)
	r.ERC20TotalEtherReceived = computeSum(receivedQuotes)
	r.ERC20TotalEtherSent = computeSum(sentQuotes)
	r.ERC20TotalEtherSentContract = computeSum(contractQuotes)
	r.ERC20UniqSentAddr = uniqueAddresses(transferReceivers(sent))
	r.ERC20UniqRecAddr = uniqueAddresses(transferSenders(received))
	// Counterparties of transfers received while the queried address is itself a contract
	r.ERC20UniqRecContractAddr = uniqueAddresses(transferSenders(receivedByContract))
	r.ERC20AvgTimeBetweenSentTnx = avgGapMinutes(transferTimestamps(sent))
	r.ERC20AvgTimeBetweenRecTnx = avgGapMinutes(transferTimestamps(received))
	r.ERC20AvgTimeBetweenContractTnx = avgGapMinutes(transferTimestamps(sentToContract))

	recStats := computeStats(receivedQuotes)
	r.ERC20MinValRec, r.ERC20MaxValRec, r.ERC20AvgValRec = recStats.Min, recStats.Max, recStats.Avg
	sentStats := computeStats(sentQuotes)
	r.ERC20MinValSent, r.ERC20MaxValSent, r.ERC20AvgValSent = sentStats.Min, sentStats.Max, sentStats.Avg
	contractStats := computeStats(contractQuotes)
	r.ERC20MinValSentContract, r.ERC20MaxValSentContract, r.ERC20AvgValSentContract = contractStats.Min, contractStats.Max, contractStats.Avg

	sentSymbols := transferSymbols(sent)
	receivedSymbols := transferSymbols(received)
	r.ERC20UniqSentTokenName = uniqueValues(sentSymbols)
	r.ERC20UniqRecTokenName = uniqueValues(receivedSymbols)
	r.ERC20MostSentTokenType = mostCommon(sentSymbols)
	r.ERC20MostRecTokenType = mostCommon(receivedSymbols)
}

// nativeBalance returns the first native balance item scaled by its decimals, or 0.
func nativeBalance(balances []domain.BalanceItem) float64 {
	for _, b := range balances {
		if b.Native {
			return scaleDown(b.Balance, b.Decimals)
		}
	}
	return 0
}

func txTimestamps(txs []domain.Transaction) []time.Time {
	out := make([]time.Time, len(txs))
	for i, tx := range txs {
		out[i] = tx.Timestamp
	}
	return out
}

func txSenders(txs []domain.Transaction) []string {
	out := make([]string, len(txs))
	for i, tx := range txs {
		out[i] = tx.From
	}
	return out
}

func txReceivers(txs []domain.Transaction) []string {
	out := make([]string, len(txs))
	for i, tx := range txs {
		out[i] = tx.To
	}
	return out
}

func etherValues(txs []domain.Transaction) []float64 {
	out := make([]float64, len(txs))
	for i, tx := range txs {
		out[i] = toEther(tx.Value)
	}
	return out
}

func transferTimestamps(transfers []domain.TokenTransfer) []time.Time {
	out := make([]time.Time, len(transfers))
	for i, t := range transfers {
		out[i] = t.Timestamp
	}
	return out
}

func transferSenders(transfers []domain.TokenTransfer) []string {
	out := make([]string, len(transfers))
	for i, t := range transfers {
		out[i] = t.From
	}
	return out
}

func transferReceivers(transfers []domain.TokenTransfer) []string {
	out := make([]string, len(transfers))
	for i, t := range transfers {
		out[i] = t.To
	}
	return out
}

func transferSymbols(transfers []domain.TokenTransfer) []string {
	out := make([]string, len(transfers))
	for i, t := range transfers {
		out[i] = t.Symbol
	}
	return out
}

func quoteValues(transfers []domain.TokenTransfer) []float64 {
	out := make([]float64, len(transfers))
	for i, t := range transfers {
		out[i] = t.ValueQuote
	}
	return out
}

func equalAddress(a, b string) bool {
	return a != "" && strings.EqualFold(a, b)
}
