package reporting

import (
	"fmt"
	"strings"
	"time"

	"wallet-risk-lab/internal/features"
)

// Summary is the fetch context printed above a record.
type Summary struct {
	Address      string
	Transactions int
	Transfers    int
	Pages        int
	Partial      bool
	StopReason   string
	GeneratedAt  time.Time
}

// RenderMarkdown renders a record as a two-column Markdown table.
// Values go through features.DisplayValue, so absent values print as 0.
func RenderMarkdown(s Summary, r features.Record) string {
	var sb strings.Builder

	// Header
	sb.WriteString("# Wallet Features\n\n")
	sb.WriteString(fmt.Sprintf("Address: `%s`\n\n", s.Address))
	if !s.GeneratedAt.IsZero() {
		sb.WriteString(fmt.Sprintf("Generated: %s\n\n", s.GeneratedAt.UTC().Format(time.RFC3339)))
	}

	// Fetch summary
	sb.WriteString("## Data Summary\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Transactions | %d |\n", s.Transactions))
	sb.WriteString(fmt.Sprintf("| Token Transfers | %d |\n", s.Transfers))
	sb.WriteString(fmt.Sprintf("| Pages Fetched | %d |\n", s.Pages))
	sb.WriteString(fmt.Sprintf("| Stop Reason | %s |\n", s.StopReason))
	sb.WriteString("\n")
	if s.Partial {
		sb.WriteString("**History is partial.** Features cover only the pages fetched.\n\n")
	}

	// Features
	sb.WriteString("## Features\n\n")
	sb.WriteString("| Feature | Value |\n")
	sb.WriteString("|---------|-------|\n")
	for _, f := range r.Display() {
		sb.WriteString(fmt.Sprintf("| %s | %s |\n", f.Name, formatCell(f.Value)))
	}

	return sb.String()
}
