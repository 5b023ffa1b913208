// Mentormatch - Hybrid Mentor, Session and Group Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mentormatch

package logging

import (
	"strings"
	"unicode"
)

// maxLoggedValueLen bounds client-supplied strings written to the log.
const maxLoggedValueLen = 128

var sensitiveKeys = map[string]bool{
	"password":       true,
	"secret":         true,
	"token":          true,
	"api_key":        true,
	"apikey":         true,
	"authorization":  true,
	"cookie":         true,
	"neo4j_password": true,
}

// SanitizeUserID masks a user ID, keeping the first and last 4 characters.
// Example: "user-12345678" -> "user...5678"
func SanitizeUserID(userID string) string {
	if userID == "" {
		return ""
	}
	if len(userID) <= 8 {
		return "***"
	}
	return userID[:4] + "..." + userID[len(userID)-4:]
}

// SanitizeError hides error messages that mention credentials and truncates
// the rest.
func SanitizeError(err string) string {
	lower := strings.ToLower(err)
	for key := range sensitiveKeys {
		if strings.Contains(lower, key) {
			return "redacted error"
		}
	}
	return truncateString(err, 200)
}

// SanitizeValue prepares a client-supplied value for logging. Values of
// sensitive keys are masked. Control characters are replaced so a value
// cannot forge extra log lines.
func SanitizeValue(key, value string) string {
	if sensitiveKeys[strings.ToLower(key)] {
		if value == "" {
			return ""
		}
		return "***"
	}

	clean := strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return '_'
		}
		return r
	}, value)
	return truncateString(clean, maxLoggedValueLen)
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
