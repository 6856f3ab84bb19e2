// Package session holds the state that outlives a single request: the
// payback goal and the prefill left by the last uploaded bill.
package session

import (
	"errors"

	"github.com/shopspring/decimal"

	"github.com/aqlanhadi/solarpayback/extractor"
)

// DefaultGoal is the investment to recover when none is configured.
var DefaultGoal = decimal.NewFromInt(100000)

var ErrNegativeGoal = errors.New("goal must not be negative")

// State is not safe for concurrent use; the API serialises access to it.
type State struct {
	GoalAmount     decimal.Decimal    `json:"goal" yaml:"goal"`
	PendingPrefill *extractor.Prefill `json:"pending_prefill,omitempty" yaml:"pending_prefill,omitempty"`
}

func New(goal decimal.Decimal) *State {
	return &State{GoalAmount: goal}
}

func (s *State) SetGoal(goal decimal.Decimal) error {
	if goal.IsNegative() {
		return ErrNegativeGoal
	}
	s.GoalAmount = goal
	return nil
}

// Stage keeps p until the next successful submission, replacing any earlier
// upload.
func (s *State) Stage(p extractor.Prefill) {
	s.PendingPrefill = &p
}

// Clear drops the pending prefill.
func (s *State) Clear() {
	s.PendingPrefill = nil
}
