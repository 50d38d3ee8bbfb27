package features

// Record is the fixed-schema feature record of one address.
// JSON keys are consumed verbatim by the scoring model.
type Record struct {
	Index   int    `json:"Index"`
	Address string `json:"Address"`
	Flag    int    `json:"FLAG"`

	// Native asset timing and counts
	TimeDiffFirstLastMins       float64 `json:"Time Diff between first and last (Mins)"`
	AvgMinBetweenSentTnx        float64 `json:"Avg min between sent tnx"`
	AvgMinBetweenReceivedTnx    float64 `json:"Avg min between received tnx"`
	SentTnx                     int     `json:"Sent tnx"`
	ReceivedTnx                 int     `json:"Received Tnx"`
	NumberOfCreatedContracts    int     `json:"Number of Created Contracts"`
	UniqueReceivedFromAddresses int     `json:"Unique Received From Addresses"`
	UniqueSentToAddresses       int     `json:"Unique Sent To Addresses"`

	// Native asset values, in ether
	MinValueReceived       float64 `json:"min value received"`
	MaxValueReceived       float64 `json:"max value received"`
	AvgValReceived         float64 `json:"avg val received"`
	MinValSent             float64 `json:"min val sent"`
	MaxValSent             float64 `json:"max val sent"`
	AvgValSent             float64 `json:"avg val sent"`
	MinValueSentToContract float64 `json:"min value sent to contract"`
	MaxValSentToContract   float64 `json:"max val sent to contract"`
	AvgValueSentToContract float64 `json:"avg value sent to contract"`

	// Totals
	TotalTransactions       int     `json:"total transactions (including tnx to create contract)"`
	TotalEtherSent          float64 `json:"total Ether sent"`
	TotalEtherReceived      float64 `json:"total ether received"`
	TotalEtherSentContracts float64 `json:"total ether sent contracts"`
	TotalEtherBalance       float64 `json:"total ether balance"`

	// ERC20 transfers, values as quoted by the indexer
	TotalERC20Tnxs                 int     `json:"Total ERC20 tnxs"`
	ERC20TotalEtherReceived        float64 `json:"ERC20 total Ether received"`
	ERC20TotalEtherSent            float64 `json:"ERC20 total ether sent"`
	ERC20TotalEtherSentContract    float64 `json:"ERC20 total Ether sent contract"`
	ERC20UniqSentAddr              int     `json:"ERC20 uniq sent addr"`
	ERC20UniqRecAddr               int     `json:"ERC20 uniq rec addr"`
	ERC20UniqRecContractAddr       int     `json:"ERC20 uniq rec contract addr"`
	ERC20AvgTimeBetweenSentTnx     float64 `json:"ERC20 avg time between sent tnx"`
	ERC20AvgTimeBetweenRecTnx      float64 `json:"ERC20 avg time between rec tnx"`
	ERC20AvgTimeBetweenContractTnx float64 `json:"ERC20 avg time between contract tnx"`
	ERC20MinValRec                 float64 `json:"ERC20 min val rec"`
	ERC20MaxValRec                 float64 `json:"ERC20 max val rec"`
	ERC20AvgValRec                 float64 `json:"ERC20 avg val rec"`
	ERC20MinValSent                float64 `json:"ERC20 min val sent"`
	ERC20MaxValSent                float64 `json:"ERC20 max val sent"`
	ERC20AvgValSent                float64 `json:"ERC20 avg val sent"`
	ERC20MinValSentContract        float64 `json:"ERC20 min val sent contract"`
	ERC20MaxValSentContract        float64 `json:"ERC20 max val sent contract"`
	ERC20AvgValSentContract        float64 `json:"ERC20 avg val sent contract"`
	ERC20UniqSentTokenName         int     `json:"ERC20 uniq sent token name"`
	ERC20UniqRecTokenName          int     `json:"ERC20 uniq rec token name"`
	ERC20MostSentTokenType         *string `json:"ERC20 most sent token type"`
	ERC20MostRecTokenType          *string `json:"ERC20 most rec token type"`
}

// Field is one named value of a Record.
type Field struct {
	Name  string
	Value interface{} // int, float64, string or nil
}

// Fields returns the record's values keyed by schema name, in schema order.
func (r Record) Fields() []Field {
	return []Field{
		{"Index", r.Index},
		{"Address", r.Address},
		{"FLAG", r.Flag},
		{"Time Diff between first and last (Mins)", r.TimeDiffFirstLastMins},
		{"Avg min between sent tnx", r.AvgMinBetweenSentTnx},
		{"Avg min between received tnx", r.AvgMinBetweenReceivedTnx},
		{"Sent tnx", r.SentTnx},
		{"Received Tnx", r.ReceivedTnx},
		{"Number of Created Contracts", r.NumberOfCreatedContracts},
		{"Unique Received From Addresses", r.UniqueReceivedFromAddresses},
		{"Unique Sent To Addresses", r.UniqueSentToAddresses},
		{"min value received", r.MinValueReceived},
		{"max value received", r.MaxValueReceived},
		{"avg val received", r.AvgValReceived},
		{"min val sent", r.MinValSent},
		{"max val sent", r.MaxValSent},
		{"avg val sent", r.AvgValSent},
		{"min value sent to contract", r.MinValueSentToContract},
		{"max val sent to contract", r.MaxValSentToContract},
		{"avg value sent to contract", r.AvgValueSentToContract},
		{"total transactions (including tnx to create contract)", r.TotalTransactions},
		{"total Ether sent", r.TotalEtherSent},
		{"total ether received", r.TotalEtherReceived},
		{"total ether sent contracts", r.TotalEtherSentContracts},
		{"total ether balance", r.TotalEtherBalance},
		{"Total ERC20 tnxs", r.TotalERC20Tnxs},
		{"ERC20 total Ether received", r.ERC20TotalEtherReceived},
		{"ERC20 total ether sent", r.ERC20TotalEtherSent},
		{"ERC20 total Ether sent contract", r.ERC20TotalEtherSentContract},
		{"ERC20 uniq sent addr", r.ERC20UniqSentAddr},
		{"ERC20 uniq rec addr", r.ERC20UniqRecAddr},
		{"ERC20 uniq rec contract addr", r.ERC20UniqRecContractAddr},
		{"ERC20 avg time between sent tnx", r.ERC20AvgTimeBetweenSentTnx},
		{"ERC20 avg time between rec tnx", r.ERC20AvgTimeBetweenRecTnx},
		{"ERC20 avg time between contract tnx", r.ERC20AvgTimeBetweenContractTnx},
		{"ERC20 min val rec", r.ERC20MinValRec},
		{"ERC20 max val rec", r.ERC20MaxValRec},
		{"ERC20 avg val rec", r.ERC20AvgValRec},
		{"ERC20 min val sent", r.ERC20MinValSent},
		{"ERC20 max val sent", r.ERC20MaxValSent},
		{"ERC20 avg val sent", r.ERC20AvgValSent},
		{"ERC20 min val sent contract", r.ERC20MinValSentContract},
		{"ERC20 max val sent contract", r.ERC20MaxValSentContract},
		{"ERC20 avg val sent contract", r.ERC20AvgValSentContract},
		{"ERC20 uniq sent token name", r.ERC20UniqSentTokenName},
		{"ERC20 uniq rec token name", r.ERC20UniqRecTokenName},
		{"ERC20 most sent token type", stringOrNil(r.ERC20MostSentTokenType)},
		{"ERC20 most rec token type", stringOrNil(r.ERC20MostRecTokenType)},
	}
}

// FieldNames returns the schema field names in order.
func FieldNames() []string {
	fields := Record{}.Fields()
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name
	}
	return names
}

func stringOrNil(s *string) interface{} {
	if s == nil {
		return nil
	}
	return *s
}
