package models

// Classification holds the three independent triage probabilities produced
// for one thread snapshot. Each value is in [0,1].
type Classification struct {
	NeedsSummary  float64 `json:"needs_summary"`
	NeedsDraft    float64 `json:"needs_draft"`
	NeedsSchedule float64 `json:"needs_schedule"`
}

// Decisions are the boolean outcomes of thresholding a Classification.
type Decisions struct {
	NeedsSummary  bool `json:"needs_summary"`
	NeedsDraft    bool `json:"needs_draft"`
	NeedsSchedule bool `json:"needs_schedule"`
}

// Decide thresholds every probability against cutoff. A probability equal to
// the cutoff counts as a yes.
func (c Classification) Decide(cutoff float64) Decisions {
	return Decisions{
		NeedsSummary:  c.NeedsSummary >= cutoff,
		NeedsDraft:    c.NeedsDraft >= cutoff,
		NeedsSchedule: c.NeedsSchedule >= cutoff,
	}
}
