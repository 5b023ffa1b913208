// Mentormatch - Hybrid Mentor, Session and Group Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mentormatch

package algorithms

import (
	"fmt"

	"github.com/tomtom215/mentormatch/internal/recommend"
)

var interactionTypes = []string{"view", "join", "complete", "rate_positive", "bookmark"}

// mentorScenario returns 120 interactions between 15 users and 10 mentors.
// Each user skips two mentors and weights are skewed per user.
func mentorScenario() []recommend.Interaction {
	var out []recommend.Interaction
	for u := 0; u < 15; u++ {
		skipA, skipB := u%10, (u+3)%10
		for m := 0; m < 10; m++ {
			if m == skipA || m == skipB {
				continue
			}
			out = append(out, recommend.Interaction{
				UserID: fmt.Sprintf("u%02d", u),
				ItemID: fmt.Sprintf("m%02d", m),
				Type:   interactionTypes[(u+m)%len(interactionTypes)],
				Weight: 1 + float64((u*7+m*3)%5),
			})
		}
	}
	return out
}

func itemIDs(prefix string, n int) []string {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("%s%02d", prefix, i)
	}
	return ids
}

func allEqual(xs []float64) bool {
	for _, x := range xs[1:] {
		if x != xs[0] {
			return false
		}
	}
	return true
}
