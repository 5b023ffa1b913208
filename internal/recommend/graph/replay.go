// Mentormatch - Hybrid Mentor, Session and Group Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mentormatch

package graph

import (
	"strings"

	"github.com/tomtom215/mentormatch/internal/recommend"
)

// EventsFromInteractions rebuilds domain events from typed interactions, the
// inverse of Events.Interactions as far as the graph is concerned. Repeated
// (user, item) pairs keep the latest status. Interactions with an
// unrecognised type are ignored.
func EventsFromInteractions(interactions []recommend.Interaction) Events {
	var events Events

	mentorships := make(map[[2]string]int)
	sessions := make(map[string]int)
	participants := make(map[[2]string]int)
	groups := make(map[string]int)
	members := make(map[[2]string]bool)

	for _, in := range interactions {
		pair := [2]string{in.UserID, in.ItemID}

		switch {
		case strings.HasPrefix(in.Type, "mentorship_"):
			status := strings.TrimPrefix(in.Type, "mentorship_")
			if i, ok := mentorships[pair]; ok {
				events.Mentorships[i].Status = status
				continue
			}
			mentorships[pair] = len(events.Mentorships)
			events.Mentorships = append(events.Mentorships, MentorshipRequest{
				MenteeID:    in.UserID,
				MentorID:    in.ItemID,
				Status:      status,
				RequestedAt: in.Timestamp,
			})

		case strings.HasPrefix(in.Type, "goal_"):
			events.Goals = append(events.Goals, Goal{
				MenteeID:  in.UserID,
				MentorID:  in.ItemID,
				Status:    strings.TrimPrefix(in.Type, "goal_"),
				CreatedAt: in.Timestamp,
			})

		case strings.HasPrefix(in.Type, "session_"):
			status := strings.TrimPrefix(in.Type, "session_")
			si, ok := sessions[in.ItemID]
			if !ok {
				si = len(events.Sessions)
				sessions[in.ItemID] = si
				events.Sessions = append(events.Sessions, StudySession{ID: in.ItemID, ScheduledAt: in.Timestamp})
			}
			if pi, ok := participants[pair]; ok {
				events.Sessions[si].Participants[pi].Status = status
				continue
			}
			participants[pair] = len(events.Sessions[si].Participants)
			events.Sessions[si].Participants = append(events.Sessions[si].Participants,
				SessionParticipant{UserID: in.UserID, Status: status})

		case strings.HasPrefix(in.Type, "rate_"):
			events.Feedback = append(events.Feedback, SessionFeedback{
				UserID:    in.UserID,
				SessionID: in.ItemID,
				CreatedAt: in.Timestamp,
			})

		case in.Type == "group_membership":
			gi, ok := groups[in.ItemID]
			if !ok {
				gi = len(events.Groups)
				groups[in.ItemID] = gi
				events.Groups = append(events.Groups, StudyGroup{ID: in.ItemID})
			}
			if members[pair] {
				continue
			}
			members[pair] = true
			events.Groups[gi].Members = append(events.Groups[gi].Members,
				GroupMember{UserID: in.UserID, JoinedAt: in.Timestamp})
		}
	}

	return events
}
