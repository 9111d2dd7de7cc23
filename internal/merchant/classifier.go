// Package merchant flags accounts whose transaction behavior looks like a
// long-lived, low-variance legitimate merchant rather than a mule: a long
// activity span with steady amounts and steady timing. This is the
// false-positive-suppression counterpart to graph-engine's
// unusual-volume / legitimate-business heuristics.
package merchant

import (
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/aegisshield/mule-detection-engine/internal/model"
)

// Classifier flags accounts as merchant-like when, in either the sender
// or the receiver role, their activity spans at least MinLifetime, has
// at least two transactions, and both the amount and inter-arrival-time
// coefficients of variation fall at or below their respective ceilings.
type Classifier struct {
	minLifetime       time.Duration
	maxAmountCV       float64
	maxInterArrivalCV float64
	logger            *slog.Logger
}

// NewClassifier creates a merchant classifier with the given thresholds.
func NewClassifier(minLifetime time.Duration, maxAmountCV, maxInterArrivalCV float64, logger *slog.Logger) *Classifier {
	return &Classifier{
		minLifetime:       minLifetime,
		maxAmountCV:       maxAmountCV,
		maxInterArrivalCV: maxInterArrivalCV,
		logger:            logger,
	}
}

// Classify returns the set of account ids flagged merchant-like.
func (c *Classifier) Classify(transactions []model.Transaction) map[string]struct{} {
	asSender := make(map[string][]model.Transaction)
	asReceiver := make(map[string][]model.Transaction)
	for _, tx := range transactions {
		asSender[tx.Sender] = append(asSender[tx.Sender], tx)
		asReceiver[tx.Receiver] = append(asReceiver[tx.Receiver], tx)
	}

	accountSet := make(map[string]struct{}, len(asSender)+len(asReceiver))
	for acc := range asSender {
		accountSet[acc] = struct{}{}
	}
	for acc := range asReceiver {
		accountSet[acc] = struct{}{}
	}
	accounts := make([]string, 0, len(accountSet))
	for acc := range accountSet {
		accounts = append(accounts, acc)
	}
	sort.Strings(accounts)

	flagged := make(map[string]struct{})
	for _, acc := range accounts {
		if c.roleQualifies(asSender[acc]) || c.roleQualifies(asReceiver[acc]) {
			flagged[acc] = struct{}{}
		}
	}

	if c.logger != nil {
		c.logger.Info("merchant classification complete", "accounts_flagged", len(flagged))
	}
	return flagged
}

func (c *Classifier) roleQualifies(txs []model.Transaction) bool {
	if len(txs) < 2 {
		return false
	}

	sorted := append([]model.Transaction(nil), txs...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Timestamp.Before(sorted[j].Timestamp) })

	lifetime := sorted[len(sorted)-1].Timestamp.Sub(sorted[0].Timestamp)
	if lifetime < c.minLifetime {
		return false
	}

	amounts := make([]float64, len(sorted))
	for i, tx := range sorted {
		amounts[i] = tx.Amount
	}
	if coefficientOfVariation(amounts) > c.maxAmountCV {
		return false
	}

	interArrivals := make([]float64, 0, len(sorted)-1)
	for i := 1; i < len(sorted); i++ {
		interArrivals = append(interArrivals, sorted[i].Timestamp.Sub(sorted[i-1].Timestamp).Seconds())
	}
	return coefficientOfVariation(interArrivals) <= c.maxInterArrivalCV
}

// coefficientOfVariation returns the sample-stddev-over-mean ratio,
// defined as 0 whenever the mean or the stddev is zero (including the
// single-sample case, where sample stddev is undefined).
func coefficientOfVariation(values []float64) float64 {
	n := len(values)
	if n < 2 {
		return 0
	}

	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(n)
	if mean == 0 {
		return 0
	}

	var sqDiff float64
	for _, v := range values {
		d := v - mean
		sqDiff += d * d
	}
	stddev := math.Sqrt(sqDiff / float64(n-1))
	if stddev == 0 {
		return 0
	}

	return stddev / mean
}
