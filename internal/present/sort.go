package present

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/mvp-joe/project-pivot/internal/model"
)

// ErrUnsupportedSort is returned for sort specs that cannot be applied before aggregation.
var ErrUnsupportedSort = errors.New("unsupported sort")

// Direction is the sort order of a SortSpec.
type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// SortSpec orders base collection documents by one attribute before aggregation.
type SortSpec struct {
	Attribute model.AggregationAttribute `json:"attribute"`
	Direction Direction                  `json:"direction"`
}

// ValidateSort rejects sorts on attributes outside the base collection.
// A nil spec is valid.
func ValidateSort(spec *SortSpec) error {
	if spec == nil {
		return nil
	}
	if spec.Attribute.ResourceIndex != 0 {
		return fmt.Errorf("%w: attribute %s is pinned to chain index %d, only the base collection (0) can be sorted",
			ErrUnsupportedSort, spec.Attribute.AttributeID, spec.Attribute.ResourceIndex)
	}
	switch Direction(strings.ToLower(string(spec.Direction))) {
	case "", Ascending, Descending:
		return nil
	}
	return fmt.Errorf("%w: direction %q", ErrUnsupportedSort, spec.Direction)
}

// SortDocuments returns a copy of docs in which the documents of the base
// collection are stably sorted among themselves. Documents of other
// collections keep their positions. Missing and empty values sort last in
// both directions; array values sort by their first element.
func SortDocuments(docs []model.Document, spec *SortSpec, baseCollectionID string) []model.Document {
	out := slices.Clone(docs)
	if spec == nil {
		return out
	}

	var slots []int
	var base []model.Document
	for i, d := range docs {
		if d.CollectionID == baseCollectionID {
			slots = append(slots, i)
			base = append(base, d)
		}
	}

	desc := Direction(strings.ToLower(string(spec.Direction))) == Descending
	attributeID := spec.Attribute.AttributeID
	slices.SortStableFunc(base, func(a, b model.Document) int {
		va, okA := sortValue(a, attributeID)
		vb, okB := sortValue(b, attributeID)
		switch {
		case !okA && !okB:
			return 0
		case !okA:
			return 1
		case !okB:
			return -1
		}
		c := model.Compare(va, vb)
		if desc {
			return -c
		}
		return c
	})

	for i, slot := range slots {
		out[slot] = base[i]
	}
	return out
}

func sortValue(d model.Document, attributeID string) (model.Value, bool) {
	vals := model.Expand(model.Lookup(d.Data, attributeID))
	if len(vals) == 0 {
		return model.Null, false
	}
	return vals[0], true
}
