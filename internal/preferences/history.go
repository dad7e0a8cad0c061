package preferences

// MaxHistory bounds the recent-search list.
const MaxHistory = 5

// History is the recent-search list, most recent first, unique by exact
// (case-sensitive) match.
type History []string

// Push returns a new history with city at the front. An existing exact
// match is moved rather than duplicated; the result is capped at MaxHistory.
func (h History) Push(city string) History {
	out := make(History, 0, MaxHistory)
	out = append(out, city)
	for _, existing := range h {
		if len(out) == MaxHistory {
			break
		}
		if existing == city {
			continue
		}
		out = append(out, existing)
	}
	return out
}

func (h History) Clone() History {
	if h == nil {
		return History{}
	}
	out := make(History, len(h))
	copy(out, h)
	return out
}

// normalize enforces the invariants on data read back from storage.
func (h History) normalize() History {
	out := make(History, 0, MaxHistory)
	seen := make(map[string]struct{}, len(h))
	for _, city := range h {
		if city == "" {
			continue
		}
		if _, dup := seen[city]; dup {
			continue
		}
		seen[city] = struct{}{}
		out = append(out, city)
		if len(out) == MaxHistory {
			break
		}
	}
	return out
}
