// Package discrepancy detects items on which annotators disagree.
//
// Each annotator's labels on an item are reduced to a set of signatures;
// the item is discrepant when at least two annotators contributed and
// their signature sets are not all equal. Partial overlap still counts as
// disagreement. Results are computed per query and never stored.
package discrepancy

import (
	"maps"

	"github.com/labelquorum/quorum/internal/labeling"
)

// Signature identifies what a label asserts, independent of who made it.
// Start and End are only set for spans; Text only for free text labels.
// Free text labels compare by content, so two annotators typing different
// text disagree even when they used the same label type.
type Signature struct {
	Kind   labeling.Kind
	TypeID uint
	Start  int
	End    int
	Text   string
}

// SignatureOf reduces a label to its signature. A free text label keeps its
// exact text.
func SignatureOf(l labeling.Label) Signature {
	sig := Signature{Kind: l.Kind(), TypeID: l.TypeID()}
	switch p := l.Payload.(type) {
	case labeling.Span:
		sig.Start, sig.End = p.Start, p.End
	case labeling.FreeText:
		sig.Text = p.Text
	}
	return sig
}

// SignatureSets groups labels by annotator.
func SignatureSets(labels []labeling.Label) map[uint]map[Signature]struct{} {
	sets := make(map[uint]map[Signature]struct{})
	for _, l := range labels {
		set, ok := sets[l.AnnotatorID]
		if !ok {
			set = make(map[Signature]struct{})
			sets[l.AnnotatorID] = set
		}
		set[SignatureOf(l)] = struct{}{}
	}
	return sets
}

// HasDiscrepancy reports whether the annotators of itemID disagree.
// Labels belonging to other items are ignored.
func HasDiscrepancy(itemID uint, labels []labeling.Label) bool {
	own := make([]labeling.Label, 0, len(labels))
	for _, l := range labels {
		if l.ItemID == itemID {
			own = append(own, l)
		}
	}

	sets := SignatureSets(own)
	if len(sets) < 2 {
		return false
	}

	var reference map[Signature]struct{}
	for _, set := range sets {
		if reference == nil {
			reference = set
			continue
		}
		if !maps.Equal(reference, set) {
			return true
		}
	}
	return false
}

// Partition splits itemIDs by HasDiscrepancy, keeping the input order.
// Items without labels land in withoutDiscrepancy.
func Partition(itemIDs []uint, labelsByItem map[uint][]labeling.Label) (withDiscrepancy, withoutDiscrepancy []uint) {
	withDiscrepancy = []uint{}
	withoutDiscrepancy = []uint{}
	for _, id := range itemIDs {
		if HasDiscrepancy(id, labelsByItem[id]) {
			withDiscrepancy = append(withDiscrepancy, id)
		} else {
			withoutDiscrepancy = append(withoutDiscrepancy, id)
		}
	}
	return withDiscrepancy, withoutDiscrepancy
}
