package ticket

import (
	"fmt"
	"math"
	"time"
)

// AgentMember returns the handling agent of a call: the member with role id
// 0 that is not anonymous. Nil when no such member exists.
func (a *Activity) AgentMember() *Member {
	for i := range a.Members {
		m := &a.Members[i]
		if !m.Anon && m.RoleID == RoleAgent {
			return m
		}
	}
	return nil
}

// ContactMember returns the external participant of an activity: the first
// anonymous member. Nil when no such member exists.
func (a *Activity) ContactMember() *Member {
	for i := range a.Members {
		if a.Members[i].Anon {
			return &a.Members[i]
		}
	}
	return nil
}

// Duration renders the call length as "Xm Ys", or "Ys" when it ran under a
// minute. The difference is rounded to whole seconds. Empty when either
// timestamp is missing.
func (a *Activity) Duration() string {
	if a.CallStart.IsZero() || a.CallEnd.IsZero() {
		return ""
	}
	return FormatDuration(a.CallEnd.Sub(a.CallStart))
}

// FormatDuration renders d rounded to whole seconds as "Xm Ys" or "Ys".
func FormatDuration(d time.Duration) string {
	secs := int(math.Round(d.Seconds()))
	if secs < 0 {
		secs = 0
	}
	if secs >= 60 {
		return fmt.Sprintf("%dm %ds", secs/60, secs%60)
	}
	return fmt.Sprintf("%ds", secs)
}
