package annotation

import (
	"fmt"

	"github.com/labelquorum/quorum/internal/datastore/entities"
	"github.com/labelquorum/quorum/internal/errors"
	"github.com/labelquorum/quorum/internal/labeling"
)

// toEntity flattens a label into its stored row.
func toEntity(projectID uint, l labeling.Label) (*entities.Label, error) {
	row := &entities.Label{
		ProjectID:   projectID,
		ItemID:      l.ItemID,
		AnnotatorID: l.AnnotatorID,
		Kind:        string(l.Kind()),
		TypeID:      l.TypeID(),
	}
	switch p := l.Payload.(type) {
	case labeling.Category:
	case labeling.Span:
		row.StartOffset, row.EndOffset = &p.Start, &p.End
	case labeling.FreeText:
		row.Text = &p.Text
	case labeling.Relation:
		row.FromLabelID, row.ToLabelID = &p.FromID, &p.ToID
	default:
		return nil, fmt.Errorf("label payload %T is not supported", l.Payload)
	}
	return row, nil
}

// fromEntity rebuilds the label variant of a stored row.
func fromEntity(row *entities.Label) (labeling.Label, error) {
	l := labeling.Label{ID: row.ID, ItemID: row.ItemID, AnnotatorID: row.AnnotatorID}

	kind, err := labeling.ParseKind(row.Kind)
	if err != nil {
		return l, fmt.Errorf("label %d: %w", row.ID, err)
	}
	switch kind {
	case labeling.KindCategory:
		l.Payload = labeling.Category{TypeID: row.TypeID}
	case labeling.KindSpan:
		if row.StartOffset == nil || row.EndOffset == nil {
			return l, fmt.Errorf("label %d: span without offsets", row.ID)
		}
		l.Payload = labeling.Span{TypeID: row.TypeID, Start: *row.StartOffset, End: *row.EndOffset}
	case labeling.KindText:
		var text string
		if row.Text != nil {
			text = *row.Text
		}
		l.Payload = labeling.FreeText{Text: text}
	case labeling.KindRelation:
		if row.FromLabelID == nil || row.ToLabelID == nil {
			return l, fmt.Errorf("label %d: relation without endpoints", row.ID)
		}
		l.Payload = labeling.Relation{TypeID: row.TypeID, FromID: *row.FromLabelID, ToID: *row.ToLabelID}
	}
	return l, nil
}

func fromEntities(rows []*entities.Label) ([]labeling.Label, error) {
	labels := make([]labeling.Label, 0, len(rows))
	for _, row := range rows {
		l, err := fromEntity(row)
		if err != nil {
			return nil, errors.New(err).
				Component("annotation").
				Category(errors.CategoryState).
				Context("label_id", row.ID).
				Build()
		}
		labels = append(labels, l)
	}
	return labels, nil
}

// PolicyOf extracts the annotation policy stored on a project.
func PolicyOf(p *entities.Project) labeling.Policy {
	return labeling.Policy{
		ProjectID:             p.ID,
		Collaborative:         p.CollaborativeAnnotation,
		SingleClass:           p.SingleClassClassification,
		AllowOverlappingSpans: p.AllowOverlappingSpans,
	}
}
