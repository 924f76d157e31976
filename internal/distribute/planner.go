// Package distribute assigns validated rows to agents under one of two
// deterministic policies: contiguous balanced blocks for generic lists and
// index-modulo round-robin for the call queue.
package distribute

import (
	"errors"
	"sort"

	"github.com/dialdesk/dialdesk-be/internal/ingest"
)

// DefaultMaxActiveAgents caps a distribution run to the first N roster
// entries. The original system hard-limits active agents to five.
const DefaultMaxActiveAgents = 5

// Policy selects the assignment strategy
type Policy string

const (
	// PolicyBalanced hands each agent a contiguous block of rows, sized
	// floor(N/M) with the first N mod M agents taking one extra row.
	PolicyBalanced Policy = "balanced"
	// PolicyRoundRobin assigns row i to agent i mod M after a stable sort
	// by record number.
	PolicyRoundRobin Policy = "round_robin"
)

var (
	// ErrNoAgents is returned when the roster is empty
	ErrNoAgents = errors.New("no agents found, create agents first")
	// ErrNoRecords is returned when there are no rows to distribute
	ErrNoRecords = errors.New("no call records to distribute")
)

// Pair binds one row to the agent it is assigned to
type Pair struct {
	Row     ingest.CanonicalRow
	AgentID string
}

// Plan is the computed row-to-agent mapping of one distribution run
type Plan struct {
	Pairs       []Pair
	TotalRows   int
	TotalAgents int
}

// CapRoster limits the roster to the first maxActive entries, keeping order.
// maxActive <= 0 means DefaultMaxActiveAgents.
func CapRoster(agentIDs []string, maxActive int) []string {
	if maxActive <= 0 {
		maxActive = DefaultMaxActiveAgents
	}
	if len(agentIDs) > maxActive {
		return agentIDs[:maxActive]
	}
	return agentIDs
}

// Spread computes the agent index for each of n rows under policy.
// Preconditions n > 0 and m > 0 are the caller's responsibility.
func Spread(n, m int, policy Policy) []int {
	idx := make([]int, n)

	switch policy {
	case PolicyBalanced:
		perAgent := n / m
		remainder := n % m

		row := 0
		for agent := 0; agent < m; agent++ {
			count := perAgent
			if agent < remainder {
				count++
			}
			for j := 0; j < count; j++ {
				idx[row] = agent
				row++
			}
		}
	default:
		for i := range idx {
			idx[i] = i % m
		}
	}

	return idx
}

// BuildPlan assigns every row to exactly one agent. The roster is capped to
// the first maxActive entries. Round-robin input is stable-sorted by record
// number first; balanced input keeps upload order.
func BuildPlan(rows []ingest.CanonicalRow, agentIDs []string, policy Policy, maxActive int) (*Plan, error) {
	active := CapRoster(agentIDs, maxActive)
	if len(active) == 0 {
		return nil, ErrNoAgents
	}
	if len(rows) == 0 {
		return nil, ErrNoRecords
	}

	ordered := rows
	if policy == PolicyRoundRobin {
		ordered = make([]ingest.CanonicalRow, len(rows))
		copy(ordered, rows)
		sortByRecordNo(ordered)
	}

	idx := Spread(len(ordered), len(active), policy)

	pairs := make([]Pair, len(ordered))
	for i, row := range ordered {
		pairs[i] = Pair{Row: row, AgentID: active[idx[i]]}
	}

	return &Plan{
		Pairs:       pairs,
		TotalRows:   len(ordered),
		TotalAgents: len(active),
	}, nil
}

// sortByRecordNo stable-sorts rows ascending by record number. Rows without
// one sort last, keeping their relative order.
func sortByRecordNo(rows []ingest.CanonicalRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i].RecordNo, rows[j].RecordNo
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return *a < *b
		}
	})
}
