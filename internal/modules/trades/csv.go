package trades

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// ImportResult summarizes a CSV import: rows stored, rows rejected, and a
// per-row reason for each rejection.
type ImportResult struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors"`
}

var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// Import reads a header-mapped CSV of trades and stores each valid row for
// the given user and account. Invalid rows are skipped with a recorded
// reason; a malformed file fails as a whole.
func (s *Service) Import(userID, accountID string, reader io.Reader) (*ImportResult, error) {
	cr := csv.NewReader(reader)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	if _, ok := cols["symbol"]; !ok {
		return nil, errors.New("csv is missing a symbol column")
	}

	result := &ImportResult{Errors: []string{}}
	for line := 2; ; line++ {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv row: %w", err)
		}

		req, err := rowToRequest(cols, record, accountID)
		if err == nil {
			_, err = s.Create(userID, *req)
		}
		if err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", line, err))
			continue
		}
		result.Imported++
	}

	s.log.Info().Int("imported", result.Imported).Int("skipped", result.Skipped).
		Msg("CSV import finished")
	return result, nil
}

func rowToRequest(cols map[string]int, record []string, accountID string) (*TradeRequest, error) {
	field := func(name string) string {
		idx, ok := cols[name]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	req := &TradeRequest{
		AccountID:      accountID,
		Symbol:         field("symbol"),
		InstrumentType: field("instrument_type"),
		Direction:      field("direction"),
		Status:         field("status"),
	}

	var err error
	if req.Quantity, err = parseFloat(field("quantity")); err != nil {
		return nil, fmt.Errorf("quantity: %w", err)
	}
	if req.EntryPrice, err = parseFloat(field("entry_price")); err != nil {
		return nil, fmt.Errorf("entry_price: %w", err)
	}
	if req.EntryTimestamp, err = parseTimestamp(field("entry_timestamp")); err != nil {
		return nil, fmt.Errorf("entry_timestamp: %w", err)
	}

	if v := field("exit_price"); v != "" {
		price, err := parseFloat(v)
		if err != nil {
			return nil, fmt.Errorf("exit_price: %w", err)
		}
		req.ExitPrice = &price
	}
	if v := field("exit_timestamp"); v != "" {
		ts, err := parseTimestamp(v)
		if err != nil {
			return nil, fmt.Errorf("exit_timestamp: %w", err)
		}
		req.ExitTimestamp = &ts
	}
	if v := field("leverage"); v != "" {
		lev, err := parseFloat(v)
		if err != nil {
			return nil, fmt.Errorf("leverage: %w", err)
		}
		req.Leverage = &lev
	}
	for name, dst := range map[string]*float64{
		"fees":       &req.Fees,
		"commission": &req.Commission,
		"slippage":   &req.Slippage,
	} {
		if v := field(name); v != "" {
			if *dst, err = parseFloat(v); err != nil {
				return nil, fmt.Errorf("%s: %w", name, err)
			}
		}
	}
	if v := field("strategy"); v != "" {
		req.Strategy = &v
	}
	if v := field("notes"); v != "" {
		req.Notes = &v
	}
	if v := field("tags"); v != "" {
		req.Tags = splitTags(v)
	}

	// Imported rows carrying exit data default to closed, the common case
	// for broker exports without a status column.
	if req.Status == "" && req.ExitPrice != nil {
		req.Status = "closed"
	}
	return req, nil
}

func parseFloat(value string) (float64, error) {
	if value == "" {
		return 0, errors.New("value is empty")
	}
	return strconv.ParseFloat(strings.ReplaceAll(value, ",", ""), 64)
}

func parseTimestamp(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("value is empty")
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", value)
}

func splitTags(value string) []string {
	parts := strings.Split(value, ";")
	tags := make([]string, 0, len(parts))
	for _, part := range parts {
		if tag := strings.TrimSpace(part); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}
