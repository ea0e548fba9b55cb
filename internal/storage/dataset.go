package storage

import (
	"fmt"
	"log"
	"os"

	"github.com/gobwas/glob"
	"github.com/google/uuid"
	"github.com/ohler55/ojg/oj"

	"github.com/mvp-joe/project-pivot/internal/model"
)

// LoadDataset reads a JSON dataset file:
//
//	{"collections": [...], "linkTypes": [...], "documents": [...], "linkInstances": [...]}
func LoadDataset(path string) (*model.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset: %w", err)
	}
	snap, err := ParseDataset(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse dataset %s: %w", path, err)
	}
	return snap, nil
}

// ParseDataset decodes a JSON dataset. Documents and link instances without
// an id get a generated one; records missing required references are skipped
// with a warning.
func ParseDataset(data []byte) (*model.Snapshot, error) {
	v, err := oj.Parse(data)
	if err != nil {
		return nil, err
	}
	root, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("expected a JSON object at the top level, got %T", v)
	}

	snap := &model.Snapshot{
		Collections:   []model.Collection{},
		LinkTypes:     []model.LinkType{},
		Documents:     []model.Document{},
		LinkInstances: []model.LinkInstance{},
	}

	for i, item := range objects(root["collections"]) {
		c := model.Collection{
			ID:         str(item, "id"),
			Name:       str(item, "name"),
			Color:      str(item, "color"),
			Icon:       str(item, "icon"),
			Attributes: attributes(item["attributes"]),
		}
		if c.ID == "" {
			return nil, fmt.Errorf("collection %d has no id", i)
		}
		snap.Collections = append(snap.Collections, c)
	}

	for i, item := range objects(root["linkTypes"]) {
		lt := model.LinkType{
			ID:         str(item, "id"),
			Name:       str(item, "name"),
			Attributes: attributes(item["attributes"]),
		}
		if lt.ID == "" {
			return nil, fmt.Errorf("link type %d has no id", i)
		}
		ids, ok := pair(item["collectionIds"])
		if !ok {
			return nil, fmt.Errorf("link type %s must reference exactly two collections", lt.ID)
		}
		lt.CollectionIDs = ids
		snap.LinkTypes = append(snap.LinkTypes, lt)
	}

	for i, item := range objects(root["documents"]) {
		d := model.Document{
			ID:           str(item, "id"),
			CollectionID: str(item, "collectionId"),
			Data:         dataMap(item["data"]),
		}
		if d.CollectionID == "" {
			log.Printf("Warning: skipping document %d without collectionId", i)
			continue
		}
		if d.ID == "" {
			d.ID = uuid.NewString()
		}
		snap.Documents = append(snap.Documents, d)
	}

	for i, item := range objects(root["linkInstances"]) {
		l := model.LinkInstance{
			ID:         str(item, "id"),
			LinkTypeID: str(item, "linkTypeId"),
			Data:       dataMap(item["data"]),
		}
		ids, ok := pair(item["documentIds"])
		if l.LinkTypeID == "" || !ok {
			log.Printf("Warning: skipping link instance %d without linkTypeId or two documentIds", i)
			continue
		}
		l.DocumentIDs = ids
		if l.ID == "" {
			l.ID = uuid.NewString()
		}
		snap.LinkInstances = append(snap.LinkInstances, l)
	}

	return snap, nil
}

// FilterSnapshot keeps the collections whose id or name matches the glob
// pattern, the link types between kept collections and their records.
func FilterSnapshot(snap *model.Snapshot, pattern string) (*model.Snapshot, error) {
	g, err := glob.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid collection pattern %q: %w", pattern, err)
	}

	out := &model.Snapshot{
		Collections:   []model.Collection{},
		LinkTypes:     []model.LinkType{},
		Documents:     []model.Document{},
		LinkInstances: []model.LinkInstance{},
	}

	kept := make(map[string]bool)
	for _, c := range snap.Collections {
		if g.Match(c.ID) || (c.Name != "" && g.Match(c.Name)) {
			kept[c.ID] = true
			out.Collections = append(out.Collections, c)
		}
	}

	keptLinkTypes := make(map[string]bool)
	for _, lt := range snap.LinkTypes {
		if kept[lt.CollectionIDs[0]] && kept[lt.CollectionIDs[1]] {
			keptLinkTypes[lt.ID] = true
			out.LinkTypes = append(out.LinkTypes, lt)
		}
	}

	for _, d := range snap.Documents {
		if kept[d.CollectionID] {
			out.Documents = append(out.Documents, d)
		}
	}
	for _, l := range snap.LinkInstances {
		if keptLinkTypes[l.LinkTypeID] {
			out.LinkInstances = append(out.LinkInstances, l)
		}
	}
	return out, nil
}

func objects(v any) []map[string]any {
	list, _ := v.([]any)
	out := make([]map[string]any, 0, len(list))
	for _, item := range list {
		if m, ok := item.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}

func str(m map[string]any, key string) string {
	switch v := m[key].(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

func pair(v any) ([2]string, bool) {
	list, ok := v.([]any)
	if !ok || len(list) != 2 {
		return [2]string{}, false
	}
	var out [2]string
	for i, item := range list {
		s, ok := item.(string)
		if !ok || s == "" {
			return [2]string{}, false
		}
		out[i] = s
	}
	return out, true
}

func attributes(v any) []model.Attribute {
	out := []model.Attribute{}
	for _, item := range objects(v) {
		out = append(out, model.Attribute{
			ID:   str(item, "id"),
			Name: str(item, "name"),
			Type: model.AttributeType(str(item, "type")),
		})
	}
	return out
}

func dataMap(v any) map[string]any {
	if m, ok := v.(map[string]any); ok {
		return m
	}
	return map[string]any{}
}
