//go:build ruleguard

// Package gorules holds ruleguard rules run by golangci-lint against quorum.
package gorules

import "github.com/quasilyte/go-ruleguard/dsl"

// VotingWallClock flags direct wall-clock comparisons in the voting and
// tally packages. Windows are judged against the injected Clock so that
// every check in one request sees the same instant and tests can pin time.
//
//	if round.EndsAt.Before(time.Now()) { ... }   // flagged
//	if round.EndsAt.Before(s.clock.Now()) { ... } // ok
func VotingWallClock(m dsl.Matcher) {
	m.Match(
		`$t.Before(time.Now())`,
		`$t.After(time.Now())`,
		`$t.Equal(time.Now())`,
		`time.Now().Before($t)`,
		`time.Now().After($t)`,
		`time.Since($t) > $_`,
		`time.Until($t) < $_`,
	).
		Where(m.File().PkgPath.Matches(`/internal/(voting|tally)$`)).
		Report(`compare against the injected Clock, not time.Now()`)
}

// GormConfinement keeps gorm sentinels inside the datastore layer. Callers
// see repository errors such as ErrRuleNotFound or ErrDuplicateKey.
func GormConfinement(m dsl.Matcher) {
	m.Match(
		`gorm.ErrRecordNotFound`,
		`gorm.ErrDuplicatedKey`,
		`gorm.ErrInvalidTransaction`,
	).
		Where(!m.File().PkgPath.Matches(`/internal/(datastore|logger)`)).
		Report(`gorm errors must not leak out of internal/datastore; use the repository sentinels`)

	m.Import("gorm.io/gorm/clause")
	m.Match(`clause.$_`).
		Where(!m.File().PkgPath.Matches(`/internal/datastore`)).
		Report(`row locking and clauses belong to internal/datastore/repository`)
}

// SentinelWrap catches error sentinels compared with == instead of errors.Is.
// Repository and service errors are wrapped, so equality misses them.
func SentinelWrap(m dsl.Matcher) {
	m.Match(`$err == $sentinel`, `$err != $sentinel`).
		Where(m["err"].Type.Implements("error") && !m["err"].Text.Matches(`^target$`) &&
			m["sentinel"].Text.Matches(`^(\w+\.)?Err[A-Z]\w*$`)).
		Report(`use errors.Is($err, $sentinel); errors are wrapped`)
}

// UnsafeUserMessage flags err.Error() written to command output. The CLI
// renders errors through consensus.UserMessage so internal details stay in
// the log.
func UnsafeUserMessage(m dsl.Matcher) {
	m.Match(
		`fmt.Fprintln($w, $err.Error())`,
		`fmt.Fprintf($w, $_, $err.Error())`,
	).
		Where(m["err"].Type.Implements("error") && m.File().PkgPath.Matches(`/cmd/`)).
		Report(`render errors with consensus.UserMessage`)
}
