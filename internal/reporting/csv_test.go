package reporting

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"wallet-risk-lab/internal/features"
)

func sampleRecord() features.Record {
	usdc := "USDC"
	return features.Record{
		Address:                "0x1111111111111111111111111111111111111111",
		SentTnx:                3,
		AvgValSent:             0.25,
		TotalEtherBalance:      1.5,
		ERC20MostSentTokenType: &usdc,
	}
}

func TestRenderCSV_HeaderInSchemaOrder(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderCSV(&buf, nil); err != nil {
		t.Fatalf("RenderCSV failed: %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected header only, got %d rows", len(rows))
	}

	names := features.FieldNames()
	if len(rows[0]) != len(names) {
		t.Fatalf("header has %d columns, want %d", len(rows[0]), len(names))
	}
	for i, name := range names {
		if rows[0][i] != name {
			t.Errorf("column %d: got %q, want %q", i, rows[0][i], name)
		}
	}
}

func TestRenderCSV_Rows(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderCSV(&buf, []features.Record{sampleRecord(), {Address: "0x2"}}); err != nil {
		t.Fatalf("RenderCSV failed: %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}

	col := make(map[string]int)
	for i, name := range rows[0] {
		col[name] = i
	}

	first := rows[1]
	checks := map[string]string{
		"Address":                    "0x1111111111111111111111111111111111111111",
		"Sent tnx":                   "3",
		"avg val sent":               "0.25",
		"total ether balance":        "1.5",
		"ERC20 most sent token type": "USDC",
		"ERC20 most rec token type":  "",
	}
	for name, want := range checks {
		if got := first[col[name]]; got != want {
			t.Errorf("%s: got %q, want %q", name, got, want)
		}
	}

	if got := rows[2][col["ERC20 most sent token type"]]; got != "" {
		t.Errorf("absent token type should be empty, got %q", got)
	}
}

func TestRenderMarkdown(t *testing.T) {
	r := sampleRecord()
	out := RenderMarkdown(Summary{
		Address:      r.Address,
		Transactions: 7,
		Pages:        1,
		Partial:      true,
		StopReason:   "ceiling",
	}, r)

	for _, want := range []string{
		"# Wallet Features",
		"| Transactions | 7 |",
		"| Stop Reason | ceiling |",
		"**History is partial.**",
		"| Sent tnx | 3 |",
		"| ERC20 most sent token type | USDC |",
		"| ERC20 most rec token type | 0 |",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("markdown missing %q", want)
		}
	}
	if strings.Contains(out, "Generated:") {
		t.Error("zero GeneratedAt should be omitted")
	}
}
