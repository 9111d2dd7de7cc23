// Package model holds the data types shared across every pipeline stage:
// the input transaction record, the aggregated graph edge, the raw rings
// detectors emit, and the final report shape.
package model

import (
	"strconv"
	"time"
)

// Transaction is an immutable input record. The ingestion collaborator is
// responsible for guaranteeing ID uniqueness, positive amount, and a
// parseable timestamp before the core ever sees one.
type Transaction struct {
	ID        string    `json:"transaction_id"`
	Sender    string    `json:"sender_id"`
	Receiver  string    `json:"receiver_id"`
	Amount    float64   `json:"amount"`
	Timestamp time.Time `json:"timestamp"`
}

// EdgeAgg is the aggregated payload carried by one directed graph edge: the
// running total and the insertion-ordered transactions that built it.
type EdgeAgg struct {
	TotalAmount  float64
	Transactions []Transaction
}

// DegreeMap maps an account to its unweighted in-degree + out-degree.
type DegreeMap map[string]int

// PatternType labels the kind of ring a detector produced.
type PatternType string

const (
	PatternCycle        PatternType = "cycle"
	PatternSmurfing     PatternType = "smurfing"
	PatternLayeredShell PatternType = "layered_shell"
	PatternHybrid       PatternType = "hybrid"
)

// Fine-grained per-account labels: the smurfing and shell labels are
// attached by detectors, the last three by the scoring engine's auxiliary
// signals.
const (
	LabelFanInSmurfing         = "fan_in_smurfing"
	LabelFanOutSmurfing        = "fan_out_smurfing"
	LabelLayeredShellChain     = "layered_shell_chain"
	LabelHighVelocity          = "high_velocity"
	LabelDegreeCentralityAnomaly = "degree_centrality_anomaly"
	LabelMerchantFPReduction   = "merchant_pattern_fp_reduction"
)

// CycleLengthLabel formats the length-specific cycle label, e.g. "cycle_length_4".
func CycleLengthLabel(length int) string {
	return "cycle_length_" + strconv.Itoa(length)
}

// RawRing is a detector's emission: a group of accounts implicated together,
// the pattern that implicated them, and the fine-grained label each member
// earned from this particular ring.
type RawRing struct {
	RingID            string
	MemberAccounts    []string
	PatternType       PatternType
	PatternsByAccount map[string]map[string]struct{}
}

// NewRawRing builds a RawRing with an empty label set for every member,
// ready for the caller to populate via AddLabelToAll.
func NewRawRing(ringID string, members []string, patternType PatternType) *RawRing {
	labels := make(map[string]map[string]struct{}, len(members))
	for _, m := range members {
		labels[m] = make(map[string]struct{})
	}
	return &RawRing{
		RingID:            ringID,
		MemberAccounts:    members,
		PatternType:       patternType,
		PatternsByAccount: labels,
	}
}

// AddLabelToAll attaches a fine-grained label to every member of the ring.
func (r *RawRing) AddLabelToAll(label string) {
	for _, m := range r.MemberAccounts {
		if set, ok := r.PatternsByAccount[m]; ok {
			set[label] = struct{}{}
		}
	}
}

// AccountScore is the engine's working record for one account before it is
// rendered into the report's SuspiciousAccount shape.
type AccountScore struct {
	AccountID string
	Score     float64
	Labels    map[string]struct{}
	FirstRing string // empty if the account was never touched by a ring
}

// SuspiciousAccount is the output-contract shape for a scored account.
type SuspiciousAccount struct {
	AccountID        string   `json:"account_id"`
	SuspicionScore   float64  `json:"suspicion_score"`
	DetectedPatterns []string `json:"detected_patterns"`
	RingID           *string  `json:"ring_id"`
}

// FraudRing is the output-contract shape for a deduplicated, scored ring.
type FraudRing struct {
	RingID         string   `json:"ring_id"`
	MemberAccounts []string `json:"member_accounts"`
	PatternType    string   `json:"pattern_type"`
	RiskScore      float64  `json:"risk_score"`
	MemberCount    int      `json:"member_count"`
}

// Summary carries the report-level counts and timing.
type Summary struct {
	TotalAccountsAnalyzed     int     `json:"total_accounts_analyzed"`
	SuspiciousAccountsFlagged int     `json:"suspicious_accounts_flagged"`
	FraudRingsDetected        int     `json:"fraud_rings_detected"`
	ProcessingTimeSeconds     float64 `json:"processing_time_seconds"`
}

// Report is the complete output contract described in spec section 6.
type Report struct {
	SuspiciousAccounts []SuspiciousAccount `json:"suspicious_accounts"`
	FraudRings         []FraudRing         `json:"fraud_rings"`
	Summary            Summary             `json:"summary"`
	Transactions       []Transaction       `json:"transactions,omitempty"`
}
