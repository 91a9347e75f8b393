package clipanion

// grammar is the compiled view of an App's command tree: every Command
// reachable from the root gets a fixed index (depth-first, siblings in name
// order; the order of registration is not recorded), and
// the app's own global flags are resolved once so the matcher never has to
// walk two maps per token.
//
// This does not materialize a literal node/edge arena (spec.md §9 offers
// that as one possible implementation, not a requirement): each Command in
// the tree already IS a grammar node, since Command.subcommands is itself
// the edge set to the next path segment. The matcher's frontier instead
// carries RunState.node pointers directly into this tree; "shared state
// prefixes" fall out for free because sibling commands share their parent
// node until a token disambiguates which child it names.
type grammar struct {
	app      *App
	cliIndex map[*Command]int
}

func (a *App) compile() *grammar {
	if a.grammarCache != nil {
		return a.grammarCache
	}
	g := &grammar{app: a, cliIndex: make(map[*Command]int)}
	idx := 0
	flagNames := make([]string, 0, len(a.flags))
	for name := range a.flags {
		flagNames = append(flagNames, name)
	}
	var walk func(cmds map[string]*Command)
	walk = func(cmds map[string]*Command) {
		for _, name := range sortedKeys(cmds) {
			cmd := cmds[name]
			if _, seen := g.cliIndex[cmd]; seen {
				continue
			}
			g.cliIndex[cmd] = idx
			idx++
			for flagName := range cmd.flags {
				flagNames = append(flagNames, flagName)
			}
			walk(cmd.subcommands)
		}
	}
	walk(a.commands)
	// Registered flag names are declared once but looked up once per token
	// that mentions them; priming the interner here means the very first
	// occurrence of "--verbose" on the command line already canonicalizes
	// against the name the builder registered, not just against later
	// repeats of "--verbose" within the same argv.
	names.PreIntern(flagNames)
	a.grammarCache = g
	return g
}

// sortedKeys gives map iteration a deterministic order so cliIndex
// assignment (and therefore disambiguation ties) doesn't depend on Go's
// randomized map order.
func sortedKeys(m map[string]*Command) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0 && keys[j-1] > keys[j]; j-- {
			keys[j-1], keys[j] = keys[j], keys[j-1]
		}
	}
	return keys
}

// indexOf returns the compile-time index of cmd (depth-first, siblings in
// name order, not in registration order), or -1 for the default (app-root)
// command, which always sorts first.
func (g *grammar) indexOf(cmd *Command) int {
	if cmd == nil {
		return -1
	}
	if idx, ok := g.cliIndex[cmd]; ok {
		return idx
	}
	return -1
}

// childNamed looks up the next path segment among cmd's direct children
// (or the app's top-level commands when cmd is nil), matching either the
// child's registered name or one of its Aliases.
func (g *grammar) childNamed(cmd *Command, token string) *Command {
	children := g.app.commands
	if cmd != nil {
		children = cmd.subcommands
	}
	if child, ok := children[token]; ok {
		return child
	}
	for _, child := range children {
		for _, alias := range child.Aliases {
			if alias == token {
				return child
			}
		}
	}
	return nil
}

// lookupFlag finds the Flag for an option name, preferring the active
// node's own flags over the app-level global set. Short resolves a single
// rune from a batched short cluster.
func (g *grammar) lookupFlag(node *Command, name string) *Flag {
	if node != nil {
		if f, ok := node.flags[name]; ok {
			return f
		}
	}
	if f, ok := g.app.flags[name]; ok {
		return f
	}
	return nil
}

func (g *grammar) lookupShortFlag(node *Command, short rune) *Flag {
	if node != nil {
		if f, ok := node.shortFlags[short]; ok {
			return f
		}
	}
	if f, ok := g.app.shortFlags[short]; ok {
		return f
	}
	return nil
}

// effectiveArgs/restArgs/proxy abstract over "node is nil" (app default
// command) vs "node is a *Command" so the matcher/binder don't need
// parallel code paths.
func (g *grammar) effectiveArgs(node *Command) []*Arg {
	if node == nil {
		return g.app.args
	}
	return node.args
}

func (g *grammar) effectiveHasRest(node *Command) bool {
	if node == nil {
		return g.app.hasRestArgs
	}
	return node.hasRestArgs
}

func (g *grammar) effectiveRestRequired(node *Command) int {
	if node == nil {
		return g.app.restRequired
	}
	return node.restRequired
}

func (g *grammar) effectiveProxy(node *Command) bool {
	if node == nil {
		return g.app.proxy
	}
	return node.proxy
}

// wrapperSpec returns the wrapper configured on node, or the app's
// default wrapper when node is the nil default command.
func (g *grammar) wrapperSpec(node *Command) *WrapperSpec {
	if node == nil {
		return g.app.defaultWrapper
	}
	return node.wrapper
}

// effectiveForwardOverflow reports whether positional words beyond the
// declared args/rest slots should be forwarded raw (ForwardArgs) instead
// of killing the branch, because node is fronting a wrapped binary.
func (g *grammar) effectiveForwardOverflow(node *Command) bool {
	w := g.wrapperSpec(node)
	return w != nil && w.ForwardArgs
}

// effectiveForwardUnknownFlags reports whether option-shaped tokens this
// node doesn't recognize should be forwarded raw instead of killing the
// branch.
func (g *grammar) effectiveForwardUnknownFlags(node *Command) bool {
	w := g.wrapperSpec(node)
	return w != nil && w.ForwardUnknown
}
