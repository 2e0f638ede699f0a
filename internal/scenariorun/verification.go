package scenariorun

import (
	"fmt"
	"sort"

	"github.com/okian/sitescope/internal/domain/mock"
)

// verify checks snap against the applied submission with the highest
// version: same cell ids, highlight within the cells, scores within the
// scenario's range.
func verify(cfg *Config, subs []submission, snap Snapshot) error {
	last, ok := latestApplied(subs)
	if !ok {
		return fmt.Errorf("%w: no update was applied", ErrVerify)
	}
	if snap.Version < last.result.Version {
		return fmt.Errorf("%w: map version %d is older than applied version %d", ErrVerify, snap.Version, last.result.Version)
	}
	if snap.Version > last.result.Version {
		// Someone else updated the map meanwhile; only bounds can be checked.
		return verifyScores(cfg.Scenario, snap)
	}

	want := make([]string, 0, len(last.payload.HexagonData))
	for id := range last.payload.HexagonData {
		want = append(want, id)
	}
	got := make([]string, 0, len(snap.Cells))
	for _, c := range snap.Cells {
		got = append(got, c.ID)
	}
	sort.Strings(want)
	sort.Strings(got)
	if len(want) != len(got) || snap.Total != len(got) {
		return fmt.Errorf("%w: map holds %d cells, sent %d", ErrVerify, len(got), len(want))
	}
	for i := range want {
		if want[i] != got[i] {
			return fmt.Errorf("%w: map holds cell %q, sent %q", ErrVerify, got[i], want[i])
		}
	}

	inMap := make(map[string]bool, len(got))
	for _, id := range got {
		inMap[id] = true
	}
	for _, id := range snap.Highlight {
		if !inMap[id] {
			return fmt.Errorf("%w: highlighted cell %q is not on the map", ErrVerify, id)
		}
	}
	return verifyScores(cfg.Scenario, snap)
}

func verifyScores(scenario mock.Scenario, snap Snapshot) error {
	lo, hi := mock.ScoreRange(scenario)
	for _, c := range snap.Cells {
		if c.Score < lo || c.Score > hi {
			return fmt.Errorf("%w: cell %q scored %.2f outside [%.1f, %.1f]", ErrVerify, c.ID, c.Score, lo, hi)
		}
	}
	return nil
}

func latestApplied(subs []submission) (submission, bool) {
	var best submission
	found := false
	for _, s := range subs {
		if s.err != nil || !s.result.Applied {
			continue
		}
		if !found || s.result.Version > best.result.Version {
			best, found = s, true
		}
	}
	return best, found
}
