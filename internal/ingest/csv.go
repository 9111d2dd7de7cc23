// Package ingest provides the minimal CSV reader cmd/muledetect needs to
// turn a transaction file into the validated table the core expects.
// Multipart upload handling, spreadsheet sniffing, and column-alias
// normalization stay out of scope per spec section 1 — this only parses
// the one column contract spec section 6 names and enforces the
// uniqueness/positivity invariants it places on the ingestion collaborator.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/aegisshield/mule-detection-engine/internal/model"
)

const expectedHeader = "transaction_id,sender_id,receiver_id,amount,timestamp"

var wantColumns = []string{"transaction_id", "sender_id", "receiver_id", "amount", "timestamp"}

// ReadCSV parses a validated transaction table from r. The header row must
// name the five columns in spec section 6, in any order; extra columns are
// accepted and ignored.
// Timestamps are parsed as RFC3339. transaction_id uniqueness and amount
// positivity are enforced here, the way the spec requires of "the
// ingestion collaborator" before the core is ever invoked.
func ReadCSV(r io.Reader) ([]model.Transaction, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	colIndex, err := indexColumns(header)
	if err != nil {
		return nil, err
	}

	var transactions []model.Transaction
	seen := make(map[string]bool)

	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV row: %w", err)
		}

		tx, err := parseRow(row, colIndex)
		if err != nil {
			return nil, err
		}
		if seen[tx.ID] {
			return nil, fmt.Errorf("duplicate transaction_id %q", tx.ID)
		}
		seen[tx.ID] = true

		transactions = append(transactions, tx)
	}

	return transactions, nil
}

func indexColumns(header []string) (map[string]int, error) {
	index := make(map[string]int, len(header))
	for i, col := range header {
		index[col] = i
	}
	for _, want := range wantColumns {
		if _, ok := index[want]; !ok {
			return nil, fmt.Errorf("CSV header missing required column %q, expected %s", want, expectedHeader)
		}
	}
	return index, nil
}

func parseRow(row []string, colIndex map[string]int) (model.Transaction, error) {
	id := row[colIndex["transaction_id"]]
	if id == "" {
		return model.Transaction{}, fmt.Errorf("transaction_id must be non-empty")
	}

	sender := row[colIndex["sender_id"]]
	receiver := row[colIndex["receiver_id"]]
	if sender == "" || receiver == "" {
		return model.Transaction{}, fmt.Errorf("transaction %q: sender_id and receiver_id must be non-empty", id)
	}

	amount, err := strconv.ParseFloat(row[colIndex["amount"]], 64)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("transaction %q: invalid amount: %w", id, err)
	}
	if amount <= 0 {
		return model.Transaction{}, fmt.Errorf("transaction %q: amount must be strictly positive", id)
	}

	ts, err := time.Parse(time.RFC3339, row[colIndex["timestamp"]])
	if err != nil {
		return model.Transaction{}, fmt.Errorf("transaction %q: invalid timestamp: %w", id, err)
	}

	return model.Transaction{
		ID:        id,
		Sender:    sender,
		Receiver:  receiver,
		Amount:    amount,
		Timestamp: ts,
	}, nil
}
