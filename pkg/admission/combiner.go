package admission

import (
	"github.com/floodgatehq/floodgate/pkg/admission/strategy"
	"github.com/floodgatehq/floodgate/pkg/domain/rule"
)

// candidate is one matched rule's probed outcome before anything is charged.
type candidate struct {
	rule     rule.Rule
	scopeKey string
	outcome  strategy.Outcome
}

// mostRestrictive folds the probed candidates down to the index of the one
// that wins: smallest remaining; an equal-remaining denial beats an
// admission. Candidates arrive sorted by priority descending, so on a full
// tie the higher-priority rule is kept.
func mostRestrictive(candidates []candidate) int {
	winner := 0
	for i := 1; i < len(candidates); i++ {
		cur, best := candidates[i].outcome, candidates[winner].outcome
		switch {
		case cur.Remaining < best.Remaining:
			winner = i
		case cur.Remaining == best.Remaining && !cur.Allowed && best.Allowed:
			winner = i
		}
	}
	return winner
}
