// Package tally computes the verdict of an annotation rule from its ballots.
//
// Tally is pure and order independent: the verdict depends only on the
// multiset of ballot values, never on submission order or timestamps.
package tally

// Verdict is the outcome recorded on an annotation rule.
type Verdict string

const (
	Pending  Verdict = "pending"
	Approved Verdict = "approved"
	Rejected Verdict = "rejected"
	Tie      Verdict = "tie"
	NoVotes  Verdict = "no_votes"
)

// Valid reports whether v is one of the known verdicts.
func (v Verdict) Valid() bool {
	switch v {
	case Pending, Approved, Rejected, Tie, NoVotes:
		return true
	}
	return false
}

// Final reports whether v can be recorded on a finalized rule.
func (v Verdict) Final() bool {
	return v.Valid() && v != Pending
}

// Ballot is anything carrying a vote. ok is false for ballots that only
// hold a free-form answer; those count toward participation but not
// toward either side.
type Ballot interface {
	Vote() (approve bool, ok bool)
}

// Counts holds the boolean ballot totals for one rule.
type Counts struct {
	For     int
	Against int
}

// Total is the number of boolean ballots.
func (c Counts) Total() int {
	return c.For + c.Against
}

// Verdict applies the majority rule.
func (c Counts) Verdict() Verdict {
	switch {
	case c.Total() == 0:
		return NoVotes
	case c.For > c.Against:
		return Approved
	case c.Against > c.For:
		return Rejected
	default:
		return Tie
	}
}

// Count totals the boolean ballots.
func Count[B Ballot](ballots []B) Counts {
	var c Counts
	for _, b := range ballots {
		approve, ok := b.Vote()
		if !ok {
			continue
		}
		if approve {
			c.For++
		} else {
			c.Against++
		}
	}
	return c
}

// Tally returns the verdict for ballots. It is defined for every input,
// including no ballots at all.
func Tally[B Ballot](ballots []B) Verdict {
	return Count(ballots).Verdict()
}

// Answer is a bare ballot value, handy when only the vote matters.
type Answer struct {
	Approve bool
	Set     bool
}

// Vote implements Ballot.
func (a Answer) Vote() (bool, bool) {
	return a.Approve, a.Set
}

// Yes and No build boolean answers.
var (
	Yes = Answer{Approve: true, Set: true}
	No  = Answer{Approve: false, Set: true}
)
