package tally

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTally(t *testing.T) {
	t.Parallel()

	freeForm := Answer{}

	tests := []struct {
		name    string
		ballots []Answer
		want    Verdict
	}{
		{"no ballots", nil, NoVotes},
		{"only free-form answers", []Answer{freeForm, freeForm}, NoVotes},
		{"single approval", []Answer{Yes}, Approved},
		{"single rejection", []Answer{No}, Rejected},
		{"majority for", []Answer{Yes, Yes, No}, Approved},
		{"majority against", []Answer{No, Yes, No}, Rejected},
		{"tie", []Answer{Yes, No}, Tie},
		{"tie ignores free-form", []Answer{Yes, freeForm, No}, Tie},
		{"large tie", []Answer{Yes, Yes, No, No, Yes, No}, Tie},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Tally(tt.ballots))
		})
	}
}

func TestTallyOrderIndependent(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewPCG(1, 2))
	for range 200 {
		n := rng.IntN(12)
		ballots := make([]Answer, n)
		for i := range ballots {
			switch rng.IntN(3) {
			case 0:
				ballots[i] = Yes
			case 1:
				ballots[i] = No
			}
		}

		want := Tally(ballots)
		shuffled := append([]Answer(nil), ballots...)
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

		assert.Equal(t, want, Tally(shuffled))
		assert.True(t, want.Final())
	}
}

func TestCounts(t *testing.T) {
	t.Parallel()

	c := Count([]Answer{Yes, No, Yes, {}})
	assert.Equal(t, Counts{For: 2, Against: 1}, c)
	assert.Equal(t, 3, c.Total())
}

func TestVerdictValidity(t *testing.T) {
	t.Parallel()

	assert.True(t, Pending.Valid())
	assert.False(t, Pending.Final())
	assert.True(t, Tie.Final())
	assert.False(t, Verdict("maybe").Valid())
}
