// Mentormatch - Hybrid Mentor, Session and Group Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mentormatch

package recommend

// Holdout splits interactions for offline evaluation. For every user with
// at least two interactions the latest one (by timestamp, later input
// position on ties) is held out; everything else is training data.
func Holdout(interactions []Interaction) (train []Interaction, heldOut map[string][]string) {
	counts := make(map[string]int)
	latest := make(map[string]int)
	for i := range interactions {
		user := interactions[i].UserID
		counts[user]++
		j, seen := latest[user]
		if !seen || !interactions[i].Timestamp.Before(interactions[j].Timestamp) {
			latest[user] = i
		}
	}

	heldOut = make(map[string][]string)
	train = make([]Interaction, 0, len(interactions))
	for i := range interactions {
		user := interactions[i].UserID
		if counts[user] >= 2 && latest[user] == i {
			heldOut[user] = append(heldOut[user], interactions[i].ItemID)
			continue
		}
		train = append(train, interactions[i])
	}
	return train, heldOut
}
