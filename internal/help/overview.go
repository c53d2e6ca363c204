package help

import (
	"bytes"
	"fmt"

	"github.com/footprint-tools/cmdtree/internal/commands"
	"github.com/footprint-tools/cmdtree/internal/tasks"
	"github.com/footprint-tools/cmdtree/internal/ui/style"
)

// Overview renders the grouped task listing shown when the program runs
// without arguments in task mode.
func Overview(tree *commands.Tree, groups []tasks.Group) string {
	var out bytes.Buffer

	width := 0
	for _, g := range groups {
		for _, e := range g.Entries {
			width = max(width, len(e.Path))
		}
	}

	for _, g := range groups {
		label := g.Label
		if g.Depth == 0 {
			label = "tasks"
		}
		out.WriteString(style.Depth(g.Depth, label))
		out.WriteString("\n")
		for _, e := range g.Entries {
			fmt.Fprintf(&out, "   %s  %s\n", style.Info(fmt.Sprintf("%-*s", width, e.Path)), e.Summary)
		}
		out.WriteString("\n")
	}

	fmt.Fprintf(&out, "Run '%s h <task>' for help on a task.\n", tree.Name())
	return out.String()
}
