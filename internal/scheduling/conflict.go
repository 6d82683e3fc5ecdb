// Package scheduling holds the session model and the interval-overlap
// conflict check run before any session is created or rescheduled.
package scheduling

import "time"

// Session is a scheduled coaching session / class occurrence.
type Session struct {
	ID              string    `json:"id"`
	Label           string    `json:"label"`
	HostID          string    `json:"host_id"`
	StartTime       time.Time `json:"start_time"`
	DurationMinutes int       `json:"duration_minutes"`
	Cancelled       bool      `json:"-"`
}

func (s Session) end() time.Time {
	return s.StartTime.Add(time.Duration(s.DurationMinutes) * time.Minute)
}

// Candidate is the interval being proposed.
type Candidate struct {
	Start           time.Time
	DurationMinutes int
	HostID          string // optional pre-filter
	ExcludeID       string // e.g. the session being edited
}

// Conflict is one overlapping session in the response shape.
type Conflict struct {
	ID              string    `json:"id"`
	Label           string    `json:"label"`
	StartTime       time.Time `json:"start_time"`
	DurationMinutes int       `json:"duration_minutes"`
}

// Result reports whether the candidate collides with existing sessions.
type Result struct {
	HasConflicts bool       `json:"hasConflicts"`
	Conflicts    []Conflict `json:"conflicts"`
}

// FindConflicts tests the candidate against every existing non-cancelled
// session using half-open intervals: [s1,e1) and [s2,e2) overlap iff
// s1 < e2 && e1 > s2. Sessions touching at a boundary do not conflict.
func FindConflicts(c Candidate, existing []Session) Result {
	candEnd := c.Start.Add(time.Duration(c.DurationMinutes) * time.Minute)
	res := Result{Conflicts: []Conflict{}}
	for _, s := range existing {
		if s.Cancelled || s.ID == c.ExcludeID {
			continue
		}
		if c.HostID != "" && s.HostID != c.HostID {
			continue
		}
		if c.Start.Before(s.end()) && candEnd.After(s.StartTime) {
			res.Conflicts = append(res.Conflicts, Conflict{
				ID: s.ID, Label: s.Label, StartTime: s.StartTime, DurationMinutes: s.DurationMinutes,
			})
		}
	}
	res.HasConflicts = len(res.Conflicts) > 0
	return res
}
