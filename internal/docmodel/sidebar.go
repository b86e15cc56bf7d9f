package docmodel

import "encoding/json"

// NodeKind distinguishes sidebar leaves from groups.
type NodeKind string

const (
	KindDoc      NodeKind = "doc"
	KindCategory NodeKind = "category"
)

// SidebarNode is one entry of the navigation tree. Doc nodes carry Slug and
// Path; category nodes carry ordered Items.
type SidebarNode struct {
	Kind     NodeKind      `json:"type"`
	Label    string        `json:"label"`
	Slug     string        `json:"slug,omitempty"`
	Path     string        `json:"path,omitempty"`
	Position *int          `json:"position,omitempty"`
	Items    []SidebarNode `json:"items,omitempty"`
}

// UnmarshalJSON accepts snapshot sidebars that name the label "title".
func (n *SidebarNode) UnmarshalJSON(data []byte) error {
	type plain SidebarNode
	var aux struct {
		plain
		Title string `json:"title"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*n = SidebarNode(aux.plain)
	if n.Label == "" {
		n.Label = aux.Title
	}
	if n.Kind == "" {
		n.Kind = KindDoc
		if len(n.Items) > 0 {
			n.Kind = KindCategory
		}
	}
	return nil
}

// Walk visits every node depth-first in order.
func Walk(nodes []SidebarNode, fn func(SidebarNode)) {
	for _, n := range nodes {
		fn(n)
		Walk(n.Items, fn)
	}
}
