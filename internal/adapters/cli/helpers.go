package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"

	"github.com/andrescamacho/garmentflow/internal/domain/shared"
)

// parseQuantities reads "S=10,M=20" into a quantity map
func parseQuantities(raw string) (shared.QuantityMap, error) {
	return parseQuantityList(raw, ",", "=")
}

// parseQuantityList splits pairs with the given separators, e.g. "30:10,32:20".
// Malformed input fails with InvalidQuantityMap like any other bad size map.
func parseQuantityList(raw, pairSep, kvSep string) (shared.QuantityMap, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, shared.NewInvalidQuantityMapError("quantities cannot be empty")
	}

	q := shared.QuantityMap{}
	for _, pair := range strings.Split(raw, pairSep) {
		parts := strings.SplitN(strings.TrimSpace(pair), kvSep, 2)
		if len(parts) != 2 {
			return nil, shared.NewInvalidQuantityMapError(
				fmt.Sprintf("invalid size quantity %q, expected SIZE%sQTY", pair, kvSep))
		}
		size := strings.TrimSpace(parts[0])
		qty, err := strconv.Atoi(strings.TrimSpace(parts[1]))
		if err != nil {
			return nil, shared.NewInvalidQuantityMapError(
				fmt.Sprintf("size %s has non-integer quantity %q", size, strings.TrimSpace(parts[1])))
		}
		if _, dup := q[size]; dup {
			return nil, shared.NewInvalidQuantityMapError(fmt.Sprintf("size %s given twice", size))
		}
		q[size] = qty
	}
	return q, q.Validate()
}

// parseWorkerShare reads "WORKER=SIZE:QTY,SIZE:QTY"
func parseWorkerShare(raw string) (string, shared.QuantityMap, error) {
	parts := strings.SplitN(raw, "=", 2)
	if len(parts) != 2 || strings.TrimSpace(parts[0]) == "" {
		return "", nil, fmt.Errorf("invalid worker share %q, expected WORKER=SIZE:QTY,...", raw)
	}
	q, err := parseQuantityList(parts[1], ",", ":")
	if err != nil {
		return "", nil, err
	}
	return strings.TrimSpace(parts[0]), q, nil
}

func parseDecimal(name, raw string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s %q: %w", name, raw, err)
	}
	return d, nil
}

// formatQuantities renders a map in size order, e.g. "S:10 M:20"
func formatQuantities(q shared.QuantityMap) string {
	if len(q) == 0 {
		return "-"
	}
	parts := make([]string, 0, len(q))
	for _, size := range q.Sizes() {
		parts = append(parts, fmt.Sprintf("%s:%d", size, q[size]))
	}
	if len(parts) == 0 {
		return "0"
	}
	return strings.Join(parts, " ")
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04:05")
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

// formatError prefixes domain errors with their code
func formatError(err error) string {
	code := shared.CodeOf(err)
	if code == "" {
		return "Error: " + err.Error()
	}
	msg := fmt.Sprintf("Error [%s]: %s", code, err.Error())
	if shared.IsRetryable(err) {
		msg += " (retryable)"
	}
	return msg
}

func newTable() *tabwriter.Writer {
	return tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
}

// printJSON writes v indented to stdout
func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// render prints v as JSON with --json, otherwise calls human
func render(v interface{}, human func()) error {
	if jsonOutput {
		return printJSON(v)
	}
	human()
	return nil
}
