// Package help renders command help and the task overview.
package help

import (
	"bytes"
	"fmt"
	"slices"
	"strings"

	"github.com/footprint-tools/cmdtree/internal/commands"
	"github.com/footprint-tools/cmdtree/internal/params"
	"github.com/footprint-tools/cmdtree/internal/ui/style"
)

// formatUsage styles the usage line with the command in Info color and the rest muted.
func formatUsage(usage string) string {
	cmdEnd := len(usage)
	for i, c := range usage {
		if c == '[' || c == '<' {
			cmdEnd = i
			break
		}
	}

	cmd := strings.TrimSpace(usage[:cmdEnd])
	rest := usage[cmdEnd:]
	if rest == "" {
		return style.Info(cmd)
	}
	return style.Info(cmd) + " " + style.Muted(rest)
}

// Usage returns the usage line of n: the declared one, or one built from
// the path and the parameters of every level.
func Usage(tree *commands.Tree, n *commands.Node) string {
	if n.Doc.Usage != "" {
		return n.Doc.Usage
	}

	parts := []string{tree.Name()}
	if len(tree.Root.Params) > 0 {
		parts = append(parts, "[flags]")
	}

	cur := tree.Root
	for _, seg := range n.Path {
		cur, _ = cur.Child(seg)
		parts = append(parts, seg)
		if len(cur.Params.Flags()) > 0 {
			parts = append(parts, "[flags]")
		}
	}

	switch n.Kind {
	case commands.KindModule:
		if n.Default != "" {
			parts = append(parts, "[<command>]")
		} else {
			parts = append(parts, "<command>")
		}
	case commands.KindAction:
		for _, p := range n.Params.Positionals() {
			parts = append(parts, argumentLabel(p))
		}
	}
	return strings.Join(parts, " ")
}

func argumentLabel(p params.Spec) string {
	label := "<" + p.Name + ">"
	if p.Variadic() {
		label = "<" + p.Name + ">..."
	}
	if !p.Required {
		label = "[" + label + "]"
	}
	return label
}

func flagLabel(p params.Spec) string {
	name := "--" + p.Name
	if p.Short != "" {
		name = "-" + p.Short + ", " + name
	}
	if p.Type == params.TypeBool {
		return name
	}
	hint := p.ValueHint
	if hint == "" {
		hint = p.Type.String()
	}
	return name + " " + hint
}

func flagHelp(p params.Spec) string {
	text := p.Help
	if p.Required {
		text += " (required)"
	}
	if p.Default != "" && p.Type != params.TypeBool {
		text += " " + style.Muted(fmt.Sprintf("(default %s)", p.Default))
	}
	return strings.TrimSpace(text)
}

// Node renders the help page of n.
func Node(tree *commands.Tree, n *commands.Node) string {
	var out bytes.Buffer

	if len(n.Path) == 0 {
		writeRootHeader(&out, tree)
	} else {
		out.WriteString(n.Display(tree.Name()))
		if s := n.Summary(); s != "" {
			out.WriteString(" - ")
			out.WriteString(s)
		}
		out.WriteString("\n\n")
	}

	out.WriteString(style.Header("USAGE"))
	out.WriteString("\n   ")
	out.WriteString(formatUsage(Usage(tree, n)))
	out.WriteString("\n\n")

	if n.Doc.LongAbout != "" {
		out.WriteString(strings.TrimRight(n.Doc.LongAbout, "\n"))
		out.WriteString("\n\n")
	}

	if n.Kind == commands.KindModule {
		if len(n.Path) == 0 && hasCategories(n) {
			writeCategories(&out, tree, n)
		} else {
			writeCommands(&out, n)
		}
	}

	writeFlags(&out, "FLAGS", n.Params.Flags())
	writeArguments(&out, n.Params.Positionals())
	writeInherited(&out, tree, n)

	if n.Kind == commands.KindModule {
		fmt.Fprintf(&out, "See '%s' to read about a specific command.\n",
			strings.Join(slices.Concat([]string{tree.Name(), commands.ReservedHelp}, n.Path, []string{"<command>"}), " "))
		if _, ok := tree.Tasks(); ok && len(n.Path) == 0 {
			fmt.Fprintf(&out, "Run '%s' without arguments to list all tasks.\n", tree.Name())
		}
	}
	return out.String()
}

func writeRootHeader(out *bytes.Buffer, tree *commands.Tree) {
	root := tree.Root
	out.WriteString(tree.Name())
	if root.Doc.Version != "" {
		out.WriteString(" " + root.Doc.Version)
	}
	if s := root.Summary(); s != "" {
		out.WriteString(" - " + s)
	}
	out.WriteString("\n")
	if root.Doc.Author != "" {
		out.WriteString(style.Muted(root.Doc.Author))
		out.WriteString("\n")
	}
	out.WriteString("\n")
}

func writeCommands(out *bytes.Buffer, n *commands.Node) {
	children := n.VisibleChildren()
	if len(children) == 0 {
		return
	}

	out.WriteString(style.Header("COMMANDS"))
	out.WriteString("\n")
	for _, child := range children {
		summary := child.Summary()
		if child.Name == n.Default {
			summary = strings.TrimSpace(summary + " " + style.Muted("(default)"))
		}
		fmt.Fprintf(out, "   %s  %s\n", style.Info(fmt.Sprintf("%-12s", child.Name)), summary)
	}
	out.WriteString("\n")
}

func hasCategories(n *commands.Node) bool {
	for _, a := range n.Actions(true) {
		if a.Category != "" {
			return true
		}
	}
	return false
}

// writeCategories lists every visible action below the root, grouped by
// category in order of first appearance. Uncategorized actions come last.
func writeCategories(out *bytes.Buffer, tree *commands.Tree, root *commands.Node) {
	var order []string
	grouped := make(map[string][]*commands.Node)
	for _, a := range root.Actions(true) {
		if _, seen := grouped[a.Category]; !seen && a.Category != "" {
			order = append(order, a.Category)
		}
		grouped[a.Category] = append(grouped[a.Category], a)
	}
	if len(grouped[""]) > 0 {
		order = append(order, "")
	}

	for _, cat := range order {
		title := cat
		if title == "" {
			title = "other commands"
		}
		out.WriteString(style.Header(title))
		out.WriteString("\n")
		for _, a := range grouped[cat] {
			name := strings.Join(a.Path, " ")
			fmt.Fprintf(out, "   %s  %s\n", style.Info(fmt.Sprintf("%-16s", name)), a.Summary())
		}
		out.WriteString("\n")
	}
}

func writeFlags(out *bytes.Buffer, title string, flags []params.Spec) {
	if len(flags) == 0 {
		return
	}
	out.WriteString(style.Header(title))
	out.WriteString("\n")
	for _, f := range flags {
		fmt.Fprintf(out, "   %s  %s\n", style.Info(fmt.Sprintf("%-24s", flagLabel(f))), flagHelp(f))
	}
	out.WriteString("\n")
}

func writeArguments(out *bytes.Buffer, args []params.Spec) {
	if len(args) == 0 {
		return
	}
	out.WriteString(style.Header("ARGUMENTS"))
	out.WriteString("\n")
	for _, a := range args {
		fmt.Fprintf(out, "   %s  %s\n", style.Info(fmt.Sprintf("%-24s", argumentLabel(a))), flagHelp(a))
	}
	out.WriteString("\n")
}

// writeInherited lists the flags of every ancestor. They are only accepted
// at their own level of the command line.
func writeInherited(out *bytes.Buffer, tree *commands.Tree, n *commands.Node) {
	if len(n.Path) == 0 {
		return
	}

	cur := tree.Root
	levels := []*commands.Node{cur}
	for _, seg := range n.Path[:len(n.Path)-1] {
		cur, _ = cur.Child(seg)
		levels = append(levels, cur)
	}

	for _, level := range levels {
		writeFlags(out, "FLAGS OF "+strings.ToUpper(level.Display(tree.Name())), level.Params.Flags())
	}
}
