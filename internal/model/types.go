package model

import "strconv"

// AttributeType is an optional hint about the values an attribute holds.
type AttributeType string

const (
	AttributeAny    AttributeType = ""
	AttributeNumber AttributeType = "number"
	AttributeText   AttributeType = "text"
)

// Attribute describes one field of a collection or link type.
type Attribute struct {
	ID   string        `json:"id"`
	Name string        `json:"name"`
	Type AttributeType `json:"type,omitempty"`
}

// Collection is a named set of documents sharing an attribute list.
// Color and Icon are presentation only.
type Collection struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Color      string      `json:"color,omitempty"`
	Icon       string      `json:"icon,omitempty"`
	Attributes []Attribute `json:"attributes"`
}

// LinkType is a typed many-to-many relation between exactly two collections.
type LinkType struct {
	ID            string      `json:"id"`
	Name          string      `json:"name"`
	CollectionIDs [2]string   `json:"collectionIds"`
	Attributes    []Attribute `json:"attributes"`
}

// Document is a semi-structured record owned by a collection.
// Data maps attribute ids to scalars or arrays of scalars.
type Document struct {
	ID           string         `json:"id"`
	CollectionID string         `json:"collectionId"`
	Data         map[string]any `json:"data"`
}

// LinkInstance is one concrete edge between two documents.
// DocumentIDs carry no direction.
type LinkInstance struct {
	ID          string         `json:"id"`
	LinkTypeID  string         `json:"linkTypeId"`
	DocumentIDs [2]string      `json:"documentIds"`
	Data        map[string]any `json:"data"`
}

// QueryStem names a base collection and the link types to traverse from it, in order.
type QueryStem struct {
	CollectionID string   `json:"collectionId"`
	LinkTypeIDs  []string `json:"linkTypeIds"`
}

// AggregationAttribute pins an attribute to a position in the resolved resource chain.
// Even indexes are collections, odd indexes are link types.
type AggregationAttribute struct {
	AttributeID   string `json:"attributeId"`
	ResourceIndex int    `json:"resourceIndex"`
}

// Key identifies the attribute within one aggregation call (e.g. "2:a1").
func (a AggregationAttribute) Key() string {
	return strconv.Itoa(a.ResourceIndex) + ":" + a.AttributeID
}

// Snapshot bundles the immutable inputs of one aggregation run.
type Snapshot struct {
	Collections   []Collection   `json:"collections"`
	LinkTypes     []LinkType     `json:"linkTypes"`
	Documents     []Document     `json:"documents"`
	LinkInstances []LinkInstance `json:"linkInstances"`
}

// Collection returns the collection with the given id.
func (s *Snapshot) Collection(id string) (*Collection, bool) {
	for i := range s.Collections {
		if s.Collections[i].ID == id {
			return &s.Collections[i], true
		}
	}
	return nil, false
}

// LinkType returns the link type with the given id.
func (s *Snapshot) LinkType(id string) (*LinkType, bool) {
	for i := range s.LinkTypes {
		if s.LinkTypes[i].ID == id {
			return &s.LinkTypes[i], true
		}
	}
	return nil, false
}
