package shell

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aegisshield/mule-detection-engine/internal/graphmodel"
	"github.com/aegisshield/mule-detection-engine/internal/model"
	"github.com/aegisshield/mule-detection-engine/internal/ringid"
)

func tx(id, sender, receiver string, amount float64, ts time.Time) model.Transaction {
	return model.Transaction{ID: id, Sender: sender, Receiver: receiver, Amount: amount, Timestamp: ts}
}

func TestDetect_FourHopChainWithLowDegreeInteriors(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	txs := []model.Transaction{
		tx("t1", "A", "B", 100, base),
		tx("t2", "B", "C", 100, base.Add(time.Hour)),
		tx("t3", "C", "D", 100, base.Add(2*time.Hour)),
		tx("t4", "D", "E", 100, base.Add(3*time.Hour)),
	}
	g, degrees, err := graphmodel.Build(txs)
	require.NoError(t, err)

	d := NewDetector(3, 5, 3, nil)
	rings := d.Detect(g, degrees, ringid.NewCounter("RING"))

	// Every qualifying path at every depth mints its own ring, deduped only
	// by exact member set: the 3-hop prefix {A,B,C,D}, the full 4-hop chain
	// {A,B,C,D,E}, and the 3-hop suffix {B,C,D,E} are three distinct member
	// sets, so all three are emitted.
	require.Len(t, rings, 3)
	var memberSets [][]string
	for _, r := range rings {
		assert.Equal(t, model.PatternLayeredShell, r.PatternType)
		memberSets = append(memberSets, r.MemberAccounts)
		for _, m := range r.MemberAccounts {
			_, ok := r.PatternsByAccount[m][model.LabelLayeredShellChain]
			assert.True(t, ok)
		}
	}
	assert.Contains(t, memberSets, []string{"A", "B", "C", "D"})
	assert.Contains(t, memberSets, []string{"B", "C", "D", "E"})
	assert.Contains(t, memberSets, []string{"A", "B", "C", "D", "E"})
}

func TestDetect_HighDegreeInteriorExcludesChain(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	txs := []model.Transaction{
		tx("t1", "A", "B", 100, base),
		tx("t2", "B", "C", 100, base.Add(time.Hour)),
		tx("t3", "C", "D", 100, base.Add(2*time.Hour)),
		tx("t4", "D", "E", 100, base.Add(3*time.Hour)),
		// Extra edges push C's combined degree to 4, above the max of 3.
		// C sits between {A,B} and {D,E,Y}, so every path of length >= 3
		// hops necessarily runs through C as an interior node.
		tx("t5", "X", "C", 100, base.Add(4*time.Hour)),
		tx("t6", "C", "Y", 100, base.Add(5*time.Hour)),
	}
	g, degrees, err := graphmodel.Build(txs)
	require.NoError(t, err)

	d := NewDetector(3, 5, 3, nil)
	rings := d.Detect(g, degrees, ringid.NewCounter("RING"))

	assert.Empty(t, rings)
}

func TestDetect_ShortChainBelowMinHopsNotEmitted(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	txs := []model.Transaction{
		tx("t1", "A", "B", 100, base),
		tx("t2", "B", "C", 100, base.Add(time.Hour)),
	}
	g, degrees, err := graphmodel.Build(txs)
	require.NoError(t, err)

	d := NewDetector(3, 5, 3, nil)
	rings := d.Detect(g, degrees, ringid.NewCounter("RING"))

	assert.Empty(t, rings)
}
