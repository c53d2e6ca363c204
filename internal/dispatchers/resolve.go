package dispatchers

import (
	"errors"
	"fmt"

	"github.com/footprint-tools/cmdtree/internal/commands"
	"github.com/footprint-tools/cmdtree/internal/params"
	"github.com/footprint-tools/cmdtree/internal/tasks"
	"github.com/footprint-tools/cmdtree/internal/usage"
)

// Resolution is the outcome of walking the argument vector down the tree.
//
// For a dispatchable resolution Node is an action, Scope is the innermost
// scope of the modules above it and Args holds the tokens left for the
// action's own parameters. When Help is set, Node is the node help was
// requested for; Err then carries the error that stopped a help route part
// way, if any.
type Resolution struct {
	Node     *commands.Node
	Scope    *params.Scope
	Args     []string
	External []string
	Help     bool
	Err      error
}

// flatOrigin remembers a flat token while its exploded segments are being
// consumed, so that a miss can be reported against the whole token.
type flatOrigin struct {
	token  string
	base   *commands.Node
	remain int
}

type resolver struct {
	tree     *commands.Tree
	sep      string
	taskMode bool
	help     bool
	flat     *flatOrigin
}

// Resolve walks args down tree. Each module level parses its own flags
// from the front of the remaining tokens, stopping at the first positional
// token, which names the next child. Flat task paths are exploded into
// their segments where a child name is expected.
//
// A usage error is returned when the path cannot be resolved, except on a
// help route where the node reached so far is reported with Help and Err
// set instead.
func Resolve(tree *commands.Tree, args []string) (Resolution, error) {
	r := &resolver{tree: tree}
	if cfg, ok := tree.Tasks(); ok {
		r.taskMode = true
		r.sep = cfg.Separator
	}
	return r.resolve(args)
}

func (r *resolver) resolve(tokens []string) (Resolution, error) {
	node := r.tree.Root
	var scope *params.Scope

	for {
		if node.Kind == commands.KindAction {
			if r.flat != nil {
				return r.fail(node, scope, tokens, r.pastAction(node))
			}
			if r.help {
				return Resolution{Node: node, Scope: scope, Help: true}, nil
			}
			return Resolution{Node: node, Scope: scope, Args: tokens}, nil
		}

		vals, rest, err := params.ParseWindow(node.Name, node.Params, tokens)
		if err != nil {
			if errors.Is(err, params.ErrHelp) {
				return Resolution{Node: node, Scope: scope, Help: true}, nil
			}
			return r.fail(node, scope, tokens, usage.FromParse(r.tree.Name(), node.Path, err))
		}
		scope = push(scope, node.Name, vals)
		tokens = rest

		if len(tokens) == 0 {
			if r.help {
				return Resolution{Node: node, Scope: scope, Help: true}, nil
			}
			if def, ok := node.DefaultAction(); ok {
				return Resolution{Node: def, Scope: scope, External: external(node, nil)}, nil
			}
			return r.fail(node, scope, nil, usage.MissingCommand(r.tree.Name(), node.Path))
		}

		if node == r.tree.Root && !r.help && r.isHelpToken(tokens[0]) {
			r.help = true
			tokens = tokens[1:]
			if len(tokens) == 0 {
				return Resolution{Node: node, Scope: scope, Help: true}, nil
			}
		}
		segment := tokens[0]

		if r.taskMode && r.flat == nil && tasks.IsFlat(segment, r.sep) {
			segs, err := tasks.Explode(segment, r.sep)
			if err != nil {
				if node.AllowExternal {
					return r.passthrough(node, scope, tokens)
				}
				return r.fail(node, scope, tokens, usage.InvalidPath(r.tree.Name(), segment, tasks.ErrEmptySegment.Error()))
			}
			if _, ok := node.Child(segs[0]); ok || !node.AllowExternal {
				r.flat = &flatOrigin{token: segment, base: node, remain: len(segs)}
				tokens = append(segs, tokens[1:]...)
				segment = tokens[0]
			}
		}

		child, ok := node.Child(segment)
		if !ok {
			if node.AllowExternal && !r.help && r.flat == nil {
				return r.passthrough(node, scope, tokens)
			}
			return r.fail(node, scope, tokens, r.unknown(node, segment))
		}
		tokens = tokens[1:]
		r.consumeFlat()

		if node.AllowExternal && child.Name == node.Default && !r.help && r.flat == nil {
			return Resolution{Node: child, Scope: scope, External: external(node, tokens)}, nil
		}
		node = child
	}
}

func (r *resolver) isHelpToken(tok string) bool {
	return tok == commands.ReservedHelp || (r.taskMode && tok == commands.ReservedTaskHelp)
}

func (r *resolver) consumeFlat() {
	if r.flat == nil {
		return
	}
	r.flat.remain--
	if r.flat.remain == 0 {
		r.flat = nil
	}
}

// pastAction reports a flat token that names more segments than the
// chain down to the action it reached.
func (r *resolver) pastAction(node *commands.Node) *usage.Error {
	reason := fmt.Sprintf("'%s' is a command and has no subcommands", tasks.FlatPath(node, r.sep))
	return usage.InvalidPath(r.tree.Name(), r.flat.token, reason)
}

func (r *resolver) passthrough(node *commands.Node, scope *params.Scope, tokens []string) (Resolution, error) {
	def, _ := node.DefaultAction()
	return Resolution{Node: def, Scope: scope, External: external(node, tokens)}, nil
}

func (r *resolver) unknown(node *commands.Node, segment string) *usage.Error {
	if r.flat != nil {
		suggestions := FindSimilarTasks(r.flat.token, r.flat.base, r.sep, defaultSuggestionsCount)
		return usage.UnknownCommand(r.tree.Name(), node.Path, segment, suggestions...)
	}
	suggestions := FindSimilarCommands(segment, node, defaultSuggestionsCount)
	return usage.UnknownCommand(r.tree.Name(), node.Path, segment, suggestions...)
}

// fail reports err, or, on a help route, help for the node reached so far.
// A -h or --help among the unconsumed tokens turns any failure into a help
// route.
func (r *resolver) fail(node *commands.Node, scope *params.Scope, tokens []string, err *usage.Error) (Resolution, error) {
	if r.help || wantsHelp(tokens) {
		return Resolution{Node: node, Scope: scope, Help: true, Err: err}, nil
	}
	return Resolution{}, err
}

// wantsHelp reports whether tokens ask for help before a "--" terminator.
func wantsHelp(tokens []string) bool {
	for _, tok := range tokens {
		switch tok {
		case "--":
			return false
		case "-h", "--help":
			return true
		}
	}
	return false
}

func push(scope *params.Scope, name string, vals params.Values) *params.Scope {
	if scope == nil {
		return params.NewRoot(name, vals)
	}
	return scope.Push(name, vals)
}

// external returns the passthrough tokens for the default action of node:
// never nil when node accepts external subcommands, always nil otherwise.
func external(node *commands.Node, tokens []string) []string {
	if !node.AllowExternal {
		return nil
	}
	out := make([]string, len(tokens))
	copy(out, tokens)
	return out
}
