// Package velocity flags accounts transacting unusually fast: a burst of
// many transactions packed into a short rolling window. This mirrors the
// rapid-movement heuristic in graph-engine's pattern library, run here as
// a single sliding-window pass per account instead of a windowed query.
package velocity

import (
	"log/slog"
	"sort"
	"time"

	"github.com/aegisshield/mule-detection-engine/internal/model"
)

// Analyzer flags accounts with at least MinTransactions falling inside
// any Window-wide span, counting every transaction where the account
// appears as sender or receiver.
type Analyzer struct {
	window          time.Duration
	minTransactions int
	logger          *slog.Logger
}

// NewAnalyzer creates a velocity analyzer with the given window and
// minimum burst size.
func NewAnalyzer(window time.Duration, minTransactions int, logger *slog.Logger) *Analyzer {
	return &Analyzer{window: window, minTransactions: minTransactions, logger: logger}
}

// Analyze returns the set of account ids flagged high_velocity.
func (a *Analyzer) Analyze(transactions []model.Transaction) map[string]struct{} {
	byAccount := make(map[string][]time.Time)
	for _, tx := range transactions {
		byAccount[tx.Sender] = append(byAccount[tx.Sender], tx.Timestamp)
		if tx.Receiver != tx.Sender {
			byAccount[tx.Receiver] = append(byAccount[tx.Receiver], tx.Timestamp)
		}
	}

	flagged := make(map[string]struct{})

	accounts := make([]string, 0, len(byAccount))
	for acc := range byAccount {
		accounts = append(accounts, acc)
	}
	sort.Strings(accounts)

	for _, acc := range accounts {
		times := byAccount[acc]
		if len(times) < a.minTransactions {
			continue
		}
		sort.Slice(times, func(i, j int) bool { return times[i].Before(times[j]) })

		left := 0
		for right := 0; right < len(times); right++ {
			for times[right].Sub(times[left]) > a.window {
				left++
			}
			if right-left+1 >= a.minTransactions {
				flagged[acc] = struct{}{}
				break
			}
		}
	}

	if a.logger != nil {
		a.logger.Info("velocity analysis complete", "accounts_flagged", len(flagged))
	}
	return flagged
}
