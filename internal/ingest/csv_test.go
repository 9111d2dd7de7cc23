package ingest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadCSV_ParsesValidRows(t *testing.T) {
	data := "transaction_id,sender_id,receiver_id,amount,timestamp\n" +
		"t1,A,B,100.50,2026-01-01T00:00:00Z\n" +
		"t2,B,C,200,2026-01-01T01:00:00Z\n"

	txs, err := ReadCSV(strings.NewReader(data))
	require.NoError(t, err)
	require.Len(t, txs, 2)
	assert.Equal(t, "A", txs[0].Sender)
	assert.Equal(t, 100.50, txs[0].Amount)
}

func TestReadCSV_RejectsDuplicateID(t *testing.T) {
	data := "transaction_id,sender_id,receiver_id,amount,timestamp\n" +
		"t1,A,B,100,2026-01-01T00:00:00Z\n" +
		"t1,B,C,200,2026-01-01T01:00:00Z\n"

	_, err := ReadCSV(strings.NewReader(data))
	assert.Error(t, err)
}

func TestReadCSV_RejectsNonPositiveAmount(t *testing.T) {
	data := "transaction_id,sender_id,receiver_id,amount,timestamp\n" +
		"t1,A,B,0,2026-01-01T00:00:00Z\n"

	_, err := ReadCSV(strings.NewReader(data))
	assert.Error(t, err)
}

func TestReadCSV_EmptyInputProducesNoTransactions(t *testing.T) {
	txs, err := ReadCSV(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, txs)
}

func TestReadCSV_ColumnsCanBeReordered(t *testing.T) {
	data := "timestamp,amount,transaction_id,receiver_id,sender_id\n" +
		"2026-01-01T00:00:00Z,100,t1,B,A\n"

	txs, err := ReadCSV(strings.NewReader(data))
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, "A", txs[0].Sender)
	assert.Equal(t, "B", txs[0].Receiver)
}
