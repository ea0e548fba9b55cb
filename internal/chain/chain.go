package chain

import (
	"github.com/mvp-joe/project-pivot/internal/model"
)

// Kind distinguishes collection steps from link type steps.
type Kind string

const (
	KindCollection Kind = "collection"
	KindLinkType   Kind = "linkType"
)

// Step is one resource in a resolved chain.
// Collection steps sit at even indexes, link type steps at odd indexes.
type Step struct {
	Index      int    `json:"index"`
	Kind       Kind   `json:"kind"`
	ResourceID string `json:"resourceId"`

	Collection *model.Collection `json:"-"` // set for collection steps
	LinkType   *model.LinkType   `json:"-"` // set for link type steps

	// Neighbors holds the collections before and after a link type step.
	Neighbors [2]*model.Collection `json:"-"`
}

// Chain is the ordered sequence of resources implied by a query stem.
type Chain []Step

// Len returns the number of steps.
func (c Chain) Len() int { return len(c) }

// Step returns the step at index i.
func (c Chain) Step(i int) (Step, bool) {
	if i < 0 || i >= len(c) {
		return Step{}, false
	}
	return c[i], true
}

// IsCollection reports whether index i holds a collection.
func (c Chain) IsCollection(i int) bool {
	return i >= 0 && i < len(c) && c[i].Kind == KindCollection
}

// BaseCollectionID returns the id of chain[0], or "" for an empty chain.
func (c Chain) BaseCollectionID() string {
	if len(c) == 0 {
		return ""
	}
	return c[0].ResourceID
}

// CollectionIDs returns the collection ids in traversal order.
func (c Chain) CollectionIDs() []string {
	ids := make([]string, 0, (len(c)+1)/2)
	for _, s := range c {
		if s.Kind == KindCollection {
			ids = append(ids, s.ResourceID)
		}
	}
	return ids
}

// LinkTypeIDs returns the link type ids in traversal order.
func (c Chain) LinkTypeIDs() []string {
	ids := make([]string, 0, len(c)/2)
	for _, s := range c {
		if s.Kind == KindLinkType {
			ids = append(ids, s.ResourceID)
		}
	}
	return ids
}

// LinkTypes returns the link type objects of the chain, in order.
func (c Chain) LinkTypes() []model.LinkType {
	out := make([]model.LinkType, 0, len(c)/2)
	for _, s := range c {
		if s.Kind == KindLinkType && s.LinkType != nil {
			out = append(out, *s.LinkType)
		}
	}
	return out
}

// OtherCollectionID returns the collection a link type connects to, seen from
// collectionID. It reports false when the link type does not reference it.
func OtherCollectionID(lt model.LinkType, collectionID string) (string, bool) {
	switch collectionID {
	case lt.CollectionIDs[0]:
		return lt.CollectionIDs[1], true
	case lt.CollectionIDs[1]:
		return lt.CollectionIDs[0], true
	}
	return "", false
}

// CollectionIDs walks a stem and returns the collection ids it visits.
// An unknown link type, or one not touching the current frontier, truncates
// the result silently: stems may hold stale ids after schema edits.
func CollectionIDs(stem model.QueryStem, linkTypes []model.LinkType) []string {
	byID := indexLinkTypes(linkTypes)

	ids := []string{stem.CollectionID}
	for _, ltID := range stem.LinkTypeIDs {
		lt, ok := byID[ltID]
		if !ok {
			break
		}
		next, ok := OtherCollectionID(*lt, ids[len(ids)-1])
		if !ok {
			break
		}
		ids = append(ids, next)
	}
	return ids
}

// Resolve turns a stem into interleaved collection and link type steps.
// Besides the truncation rules of CollectionIDs, a missing collection object
// ends the chain; an unknown base collection yields an empty chain.
func Resolve(stem model.QueryStem, collections []model.Collection, linkTypes []model.LinkType) Chain {
	collectionsByID := make(map[string]*model.Collection, len(collections))
	for i := range collections {
		if _, exists := collectionsByID[collections[i].ID]; !exists {
			collectionsByID[collections[i].ID] = &collections[i]
		}
	}
	linkTypesByID := indexLinkTypes(linkTypes)

	base, ok := collectionsByID[stem.CollectionID]
	if !ok {
		return Chain{}
	}

	c := Chain{{Index: 0, Kind: KindCollection, ResourceID: base.ID, Collection: base}}
	current := base
	for _, ltID := range stem.LinkTypeIDs {
		lt, ok := linkTypesByID[ltID]
		if !ok {
			break
		}
		otherID, ok := OtherCollectionID(*lt, current.ID)
		if !ok {
			break
		}
		other, ok := collectionsByID[otherID]
		if !ok {
			break
		}

		c = append(c,
			Step{
				Index:      len(c),
				Kind:       KindLinkType,
				ResourceID: lt.ID,
				LinkType:   lt,
				Neighbors:  [2]*model.Collection{current, other},
			},
			Step{
				Index:      len(c) + 1,
				Kind:       KindCollection,
				ResourceID: other.ID,
				Collection: other,
			},
		)
		current = other
	}
	return c
}

func indexLinkTypes(linkTypes []model.LinkType) map[string]*model.LinkType {
	byID := make(map[string]*model.LinkType, len(linkTypes))
	for i := range linkTypes {
		if _, exists := byID[linkTypes[i].ID]; !exists {
			byID[linkTypes[i].ID] = &linkTypes[i]
		}
	}
	return byID
}
