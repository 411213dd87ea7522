package matching

import "strings"

// genderMap maps a stated gender preference to the accepted gender values.
var genderMap = map[string][]string{
	"men":   {"male", "man"},
	"women": {"female", "woman"},
}

// PassesDealbreakers reports whether a candidate is eligible for the
// requester. Dealbreakers run before any scoring. Missing data never causes
// rejection; only a known mismatch does.
func PassesDealbreakers(user Profile, candidate Candidate) bool {
	if !candidate.OnboardingCompleted {
		return false
	}

	// Age must be inside the preferred band when both the band and the
	// candidate's age are known.
	if user.MinAge != nil && user.MaxAge != nil && candidate.Age != nil {
		if *candidate.Age < *user.MinAge || *candidate.Age > *user.MaxAge {
			return false
		}
	}

	if user.InterestedIn != "" && user.InterestedIn != "all" && candidate.Gender != "" {
		allowed, ok := genderMap[user.InterestedIn]
		if ok {
			gender := strings.ToLower(candidate.Gender)
			found := false
			for _, g := range allowed {
				if g == gender {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		}
	}

	return true
}
