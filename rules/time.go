//go:build ruleguard

package gorules

import "github.com/quasilyte/go-ruleguard/dsl"

// DeferredTimeSince reports time.Since passed directly to a deferred call.
// The argument is evaluated when defer runs, so the duration is ~0.
//
//	defer rec.RecordDuration(op, time.Since(start).Seconds())        // flagged
//	defer func() { rec.RecordDuration(op, time.Since(start).Seconds()) }() // ok
func DeferredTimeSince(m dsl.Matcher) {
	m.Match(
		`defer $fn(time.Since($start))`,
		`defer $fn($*_, time.Since($start), $*_)`,
		`defer $fn($*_, time.Since($start).Seconds(), $*_)`,
	).
		Report(`time.Since($start) is evaluated at defer time; wrap the call in func()`)
}

// TimeLayoutConstants suggests the named layouts for common formats.
func TimeLayoutConstants(m dsl.Matcher) {
	m.Match(`$t.Format("2006-01-02")`).Suggest(`$t.Format(time.DateOnly)`).
		Report(`use time.DateOnly`)
	m.Match(`time.Parse("2006-01-02", $s)`).Suggest(`time.Parse(time.DateOnly, $s)`).
		Report(`use time.DateOnly`)
	m.Match(`$t.Format("2006-01-02 15:04:05")`).Suggest(`$t.Format(time.DateTime)`).
		Report(`use time.DateTime`)
	m.Match(`$t.Format("2006-01-02T15:04:05Z07:00")`).Suggest(`$t.Format(time.RFC3339)`).
		Report(`use time.RFC3339`)
}
