package tasks

import "github.com/footprint-tools/cmdtree/internal/commands"

// Entry is one listed task.
type Entry struct {
	Path    string
	Summary string
	Node    *commands.Node
}

// Group is a titled run of entries. Label is the flat path of the module
// the group was built for, or the program name for the root group.
type Group struct {
	Label   string
	Depth   int
	Entries []Entry
}

// Overview lists every visible action below root, grouped so that no group
// grows past cfg.MaxGroupSize unless cfg.MaxDepth stops the subdivision.
// Groups come in tree order, each module's group before its descendants'.
func Overview(root *commands.Node, cfg commands.TaskConfig) []Group {
	own, subs := overview(root, 0, root.Name, cfg)
	var out []Group
	if len(own.Entries) > 0 {
		out = append(out, own)
	}
	return append(out, subs...)
}

// overview returns the group of n itself and the groups of its subdivided
// descendants. The own group may be empty.
func overview(n *commands.Node, depth int, label string, cfg commands.TaskConfig) (Group, []Group) {
	own := Group{Label: label, Depth: depth}

	actions := n.Actions(true)
	if len(actions) <= cfg.MaxGroupSize || depth >= cfg.MaxDepth {
		for _, a := range actions {
			own.Entries = append(own.Entries, entry(a, cfg.Separator))
		}
		return own, nil
	}

	var subs []Group
	for _, c := range n.VisibleChildren() {
		switch c.Kind {
		case commands.KindAction:
			own.Entries = append(own.Entries, entry(c, cfg.Separator))
		case commands.KindModule:
			childOwn, childSubs := overview(c, depth+1, FlatPath(c, cfg.Separator), cfg)
			switch len(childOwn.Entries) {
			case 0:
			case 1:
				own.Entries = append(own.Entries, childOwn.Entries[0])
			default:
				subs = append(subs, childOwn)
			}
			subs = append(subs, childSubs...)
		}
	}
	return own, subs
}

func entry(n *commands.Node, sep string) Entry {
	return Entry{Path: FlatPath(n, sep), Summary: n.Summary(), Node: n}
}
