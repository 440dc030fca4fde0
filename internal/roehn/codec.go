package roehn

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/nerrad567/gray-logic-designer/internal/design"
)

// Encode writes the document as indented JSON.
func Encode(w io.Writer, doc *Project) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encoding document: %w", err)
	}
	return nil
}

// Marshal returns the encoded document.
func Marshal(doc *Project) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// sectionAreas is the top-level member holding areas and their rooms.
const sectionAreas = "Areas"

// Decode reads a document. Top-level sections that fail to decode are
// treated as absent; their names are returned in dropped.
func Decode(data []byte) (doc *Project, dropped []string, err error) {
	doc = &Project{}
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, nil, err
	}
	return doc, doc.dropped, nil
}

// UnmarshalJSON implements json.Unmarshaler. Each top-level member is
// decoded on its own so that one malformed section does not reject the
// whole document.
func (p *Project) UnmarshalJSON(data []byte) error {
	var members map[string]json.RawMessage
	if err := json.Unmarshal(data, &members); err != nil {
		return fmt.Errorf("%w: %v", design.ErrMalformedDocument, err)
	}

	keys := make([]string, 0, len(members))
	for k := range members {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	type plain Project
	var out plain
	var dropped []string
	for _, key := range keys {
		one, err := json.Marshal(map[string]json.RawMessage{key: members[key]})
		if err != nil {
			dropped = append(dropped, key)
			continue
		}
		next := out
		if err := json.Unmarshal(one, &next); err != nil {
			dropped = append(dropped, key)
			continue
		}
		out = next
	}

	*p = Project(out)
	p.dropped = dropped
	p.prune()
	return nil
}

// prune drops null entries from every node list.
func (p *Project) prune() {
	p.Areas = compact(p.Areas)
	p.Scenes = compact(p.Scenes)
	for _, a := range p.Areas {
		a.SubItems = compact(a.SubItems)
		a.Scenes = compact(a.Scenes)
		for _, r := range a.SubItems {
			r.Scenes = compact(r.Scenes)
			r.UserInterfaces = compact(r.UserInterfaces)
			r.AutomationBoards = compact(r.AutomationBoards)
			for _, b := range r.AutomationBoards {
				b.ModulesList = compact(b.ModulesList)
				for _, m := range b.ModulesList {
					m.Slots = compact(m.Slots)
				}
			}
			for _, k := range r.UserInterfaces {
				k.ListKeypadButtons = compact(k.ListKeypadButtons)
				k.ListKeypadButtonsLayout2 = compact(k.ListKeypadButtonsLayout2)
			}
		}
	}
	p.eachScene(func(s *Scene) {
		s.Actions = compact(s.Actions)
		for _, a := range s.Actions {
			a.CustomActions = compact(a.CustomActions)
		}
	})
}

func compact[T any](in []*T) []*T {
	out := in[:0]
	for _, v := range in {
		if v != nil {
			out = append(out, v)
		}
	}
	return out
}
