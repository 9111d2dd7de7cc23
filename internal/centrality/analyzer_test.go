package centrality

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aegisshield/mule-detection-engine/internal/graphmodel"
	"github.com/aegisshield/mule-detection-engine/internal/model"
)

func tx(id, sender, receiver string, amount float64, ts time.Time) model.Transaction {
	return model.Transaction{ID: id, Sender: sender, Receiver: receiver, Amount: amount, Timestamp: ts}
}

func TestAnalyze_FlagsTopFivePercentByInDegree(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	var txs []model.Transaction
	// 20 distinct senders all sending to HUB, and 19 other receivers each
	// with a single incoming edge -- HUB's in-degree of 20 dwarfs the rest.
	for i := 0; i < 20; i++ {
		sender := fmt.Sprintf("S%02d", i)
		txs = append(txs, tx(fmt.Sprintf("hub%d", i), sender, "HUB", 100, base.Add(time.Duration(i)*time.Minute)))
	}
	for i := 0; i < 19; i++ {
		receiver := fmt.Sprintf("R%02d", i)
		txs = append(txs, tx(fmt.Sprintf("r%d", i), "SRC", receiver, 100, base.Add(time.Duration(i)*time.Minute)))
	}

	g, _, err := graphmodel.Build(txs)
	require.NoError(t, err)

	a := NewAnalyzer(0.05, nil)
	flagged := a.Analyze(g)

	_, ok := flagged["HUB"]
	assert.True(t, ok)
}

func TestAnalyze_EmptyGraphFlagsNothing(t *testing.T) {
	g, _, err := graphmodel.Build(nil)
	require.NoError(t, err)

	a := NewAnalyzer(0.05, nil)
	flagged := a.Analyze(g)

	assert.Empty(t, flagged)
}
