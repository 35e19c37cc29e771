package discrepancy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/labelquorum/quorum/internal/labeling"
)

func cat(item, annotator, typeID uint) labeling.Label {
	return labeling.Label{ItemID: item, AnnotatorID: annotator, Payload: labeling.Category{TypeID: typeID}}
}

func spanLabel(item, annotator uint, start, end int) labeling.Label {
	return labeling.Label{ItemID: item, AnnotatorID: annotator, Payload: labeling.Span{TypeID: 7, Start: start, End: end}}
}

func TestHasDiscrepancy(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		labels []labeling.Label
		want   bool
	}{
		{"no labels", nil, false},
		{"single annotator", []labeling.Label{cat(5, 1, 1), cat(5, 1, 2)}, false},
		{"agreement", []labeling.Label{cat(5, 1, 1), cat(5, 2, 1)}, false},
		{"two agree one differs", []labeling.Label{cat(5, 1, 1), cat(5, 2, 1), cat(5, 3, 2)}, true},
		{"partial overlap", []labeling.Label{cat(5, 1, 1), cat(5, 1, 2), cat(5, 2, 1)}, true},
		{"duplicate labels collapse", []labeling.Label{cat(5, 1, 1), cat(5, 1, 1), cat(5, 2, 1)}, false},
		{"span offsets differ", []labeling.Label{spanLabel(5, 1, 0, 4), spanLabel(5, 2, 0, 5)}, true},
		{"span offsets agree", []labeling.Label{spanLabel(5, 1, 0, 4), spanLabel(5, 2, 0, 4)}, false},
		{"other items ignored", []labeling.Label{cat(5, 1, 1), cat(6, 2, 9)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, HasDiscrepancy(5, tt.labels))
		})
	}
}

func TestTextSignature(t *testing.T) {
	t.Parallel()

	a := labeling.Label{ItemID: 1, AnnotatorID: 1, Payload: labeling.FreeText{Text: "cat"}}
	b := labeling.Label{ItemID: 1, AnnotatorID: 2, Payload: labeling.FreeText{Text: "dog"}}
	c := labeling.Label{ItemID: 1, AnnotatorID: 3, Payload: labeling.FreeText{Text: "cat"}}

	assert.True(t, HasDiscrepancy(1, []labeling.Label{a, b}))
	assert.False(t, HasDiscrepancy(1, []labeling.Label{a, c}))
}

func TestPartition(t *testing.T) {
	t.Parallel()

	labels := map[uint][]labeling.Label{
		5: {cat(5, 1, 1), cat(5, 2, 1), cat(5, 3, 2)},
		6: {cat(6, 1, 1), cat(6, 2, 1)},
	}

	with, without := Partition([]uint{7, 5, 6}, labels)
	assert.Equal(t, []uint{5}, with)
	assert.Equal(t, []uint{7, 6}, without)

	with, without = Partition(nil, labels)
	assert.Empty(t, with)
	assert.Empty(t, without)
}
