package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aegisshield/mule-detection-engine/internal/config"
	"github.com/aegisshield/mule-detection-engine/internal/model"
)

func cycleRing(id string, members ...string) *model.RawRing {
	r := model.NewRawRing(id, members, model.PatternCycle)
	r.AddLabelToAll(model.CycleLengthLabel(len(members)))
	return r
}

func shellRing(id string, members ...string) *model.RawRing {
	r := model.NewRawRing(id, members, model.PatternLayeredShell)
	r.AddLabelToAll(model.LabelLayeredShellChain)
	return r
}

func TestScoreAccounts_CycleOnlyScoresFortyFlat(t *testing.T) {
	e := NewEngine(config.Default().Scoring, nil)
	rings := []*model.RawRing{cycleRing("RING_001", "A", "B", "C", "D")}

	scores := e.ScoreAccounts(rings, nil, nil, nil)

	for _, acc := range []string{"A", "B", "C", "D"} {
		assert.Equal(t, 40.0, scores[acc].Score)
		assert.Equal(t, "RING_001", scores[acc].FirstRing)
	}
	risk := e.RingRiskScore(rings[0].MemberAccounts, scores)
	assert.Equal(t, 40.0, risk)
}

func TestScoreAccounts_CompoundCycleAndShellAdds(t *testing.T) {
	e := NewEngine(config.Default().Scoring, nil)
	rings := []*model.RawRing{
		cycleRing("RING_001", "A", "B", "C", "D"),
		shellRing("RING_002", "A", "E", "F", "G", "H"),
	}

	scores := e.ScoreAccounts(rings, nil, nil, nil)

	assert.Equal(t, 65.0, scores["A"].Score)
	assert.Equal(t, "RING_001", scores["A"].FirstRing, "first ring follows detector order, cycle before shell")
}

func TestScoreAccounts_AuxiliaryOnlyAppliesToRingedAccounts(t *testing.T) {
	e := NewEngine(config.Default().Scoring, nil)
	rings := []*model.RawRing{cycleRing("RING_001", "A", "B", "C", "D")}
	velocity := map[string]struct{}{"A": {}, "Z": {}}

	scores := e.ScoreAccounts(rings, velocity, nil, nil)

	assert.Equal(t, 60.0, scores["A"].Score)
	_, exists := scores["Z"]
	assert.False(t, exists, "untouched account never appears in the score map")
}

func TestScoreAccounts_MerchantSuppressesScore(t *testing.T) {
	e := NewEngine(config.Default().Scoring, nil)
	rings := []*model.RawRing{
		{
			RingID:            "RING_001",
			MemberAccounts:    []string{"M"},
			PatternType:       model.PatternSmurfing,
			PatternsByAccount: map[string]map[string]struct{}{"M": {model.LabelFanInSmurfing: {}}},
		},
	}
	merchant := map[string]struct{}{"M": {}}

	scores := e.ScoreAccounts(rings, nil, nil, merchant)

	assert.Equal(t, 5.0, scores["M"].Score)
	_, hasLabel := scores["M"].Labels[model.LabelMerchantFPReduction]
	assert.True(t, hasLabel)
}

func TestScoreAccounts_VelocityAndCentralityBoostCycleMember(t *testing.T) {
	e := NewEngine(config.Default().Scoring, nil)
	rings := []*model.RawRing{
		cycleRing("RING_001", "H", "B", "C", "D"),
	}
	velocity := map[string]struct{}{"H": {}}
	centrality := map[string]struct{}{"H": {}}

	scores := e.ScoreAccounts(rings, velocity, centrality, nil)

	assert.Equal(t, 70.0, scores["H"].Score)
}
