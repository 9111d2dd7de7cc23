package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aegisshield/mule-detection-engine/internal/config"
	"github.com/aegisshield/mule-detection-engine/internal/model"
)

func tx(id, sender, receiver string, amount float64, ts time.Time) model.Transaction {
	return model.Transaction{ID: id, Sender: sender, Receiver: receiver, Amount: amount, Timestamp: ts}
}

func TestAnalyze_EmptyTableProducesEmptyReport(t *testing.T) {
	e := New(config.Default(), nil, nil)

	rep, err := e.Analyze(nil, AnalyzeOptions{})
	require.NoError(t, err)

	assert.Equal(t, 0, rep.Summary.TotalAccountsAnalyzed)
	assert.Empty(t, rep.SuspiciousAccounts)
	assert.Empty(t, rep.FraudRings)
}

func TestAnalyze_SingleTransactionNoRings(t *testing.T) {
	e := New(config.Default(), nil, nil)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	rep, err := e.Analyze([]model.Transaction{tx("t1", "A", "B", 100, base)}, AnalyzeOptions{})
	require.NoError(t, err)

	assert.Equal(t, 2, rep.Summary.TotalAccountsAnalyzed)
	assert.Empty(t, rep.FraudRings)
	assert.Empty(t, rep.SuspiciousAccounts)
}

func TestAnalyze_CycleOfFourScoresFortyEach(t *testing.T) {
	e := New(config.Default(), nil, nil)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	txs := []model.Transaction{
		tx("t1", "A", "B", 100, base),
		tx("t2", "B", "C", 100, base.Add(time.Hour)),
		tx("t3", "C", "D", 100, base.Add(2*time.Hour)),
		tx("t4", "D", "A", 100, base.Add(3*time.Hour)),
	}

	rep, err := e.Analyze(txs, AnalyzeOptions{})
	require.NoError(t, err)

	require.Len(t, rep.FraudRings, 1)
	assert.Equal(t, "cycle", rep.FraudRings[0].PatternType)
	assert.Equal(t, 40.0, rep.FraudRings[0].RiskScore)
	require.Len(t, rep.SuspiciousAccounts, 4)
	for _, acc := range rep.SuspiciousAccounts {
		assert.Equal(t, 40.0, acc.SuspicionScore)
	}
}

func TestAnalyze_CycleOfTwoBelowBandNotDetected(t *testing.T) {
	e := New(config.Default(), nil, nil)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	txs := []model.Transaction{
		tx("t1", "A", "B", 100, base),
		tx("t2", "B", "A", 100, base.Add(time.Hour)),
	}

	rep, err := e.Analyze(txs, AnalyzeOptions{})
	require.NoError(t, err)

	assert.Empty(t, rep.FraudRings)
}

func TestAnalyze_IncludeTransactionsOption(t *testing.T) {
	e := New(config.Default(), nil, nil)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	txs := []model.Transaction{tx("t1", "A", "B", 100, base)}
	rep, err := e.Analyze(txs, AnalyzeOptions{IncludeTransactions: true})
	require.NoError(t, err)

	require.Len(t, rep.Transactions, 1)
	assert.Equal(t, "t1", rep.Transactions[0].ID)
}
