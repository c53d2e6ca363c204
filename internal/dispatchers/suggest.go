package dispatchers

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/footprint-tools/cmdtree/internal/commands"
	"github.com/footprint-tools/cmdtree/internal/tasks"
)

const (
	defaultSuggestionsCount = 3
	maxSuggestionDistance   = 3
	minFindLength           = 2
)

type suggestion struct {
	name     string
	distance int
}

// rankSimilar orders candidates by similarity to input. A candidate
// qualifies when it is within maxSuggestionDistance edits of input, or when
// input's characters appear in it in order (so "mig" finds "migrate").
// Comparison ignores case and exact matches are skipped.
func rankSimilar(input string, candidates []string, maxResults int) []string {
	lower := strings.ToLower(input)
	best := make(map[string]int)

	for _, name := range candidates {
		dist := fuzzy.LevenshteinDistance(lower, strings.ToLower(name))
		if dist > 0 && dist <= maxSuggestionDistance {
			best[name] = dist
		}
	}

	if len(input) >= minFindLength {
		for _, r := range fuzzy.RankFindFold(input, candidates) {
			if r.Distance == 0 {
				continue
			}
			if d, ok := best[r.Target]; !ok || r.Distance < d {
				best[r.Target] = r.Distance
			}
		}
	}

	suggestions := make([]suggestion, 0, len(best))
	for name, dist := range best {
		suggestions = append(suggestions, suggestion{name: name, distance: dist})
	}

	// Sort by distance (ascending), then alphabetically for stability
	sort.Slice(suggestions, func(i, j int) bool {
		if suggestions[i].distance != suggestions[j].distance {
			return suggestions[i].distance < suggestions[j].distance
		}
		return suggestions[i].name < suggestions[j].name
	})

	if len(suggestions) > maxResults {
		suggestions = suggestions[:maxResults]
	}

	result := make([]string, len(suggestions))
	for i, s := range suggestions {
		result[i] = s.name
	}
	return result
}

// FindSimilarCommands suggests visible children of node whose names are
// close to input.
func FindSimilarCommands(input string, node *commands.Node, maxResults int) []string {
	if node == nil {
		return nil
	}
	var names []string
	for _, c := range node.VisibleChildren() {
		names = append(names, c.Name)
	}
	return rankSimilar(input, names, maxResults)
}

// FindSimilarTasks suggests flat paths below base close to a mistyped flat
// token.
func FindSimilarTasks(input string, base *commands.Node, sep string, maxResults int) []string {
	return rankSimilar(input, CollectAllCommands(base, sep), maxResults)
}

// CollectAllCommands returns the flat path, relative to base, of every
// visible node below base, modules included, in tree order.
func CollectAllCommands(base *commands.Node, sep string) []string {
	if base == nil {
		return nil
	}

	var out []string
	var walk func(*commands.Node)
	walk = func(n *commands.Node) {
		for _, child := range n.VisibleChildren() {
			out = append(out, tasks.Join(child.Path[len(base.Path):], sep))
			walk(child)
		}
	}
	walk(base)
	return out
}
