package clipanion

import "strings"

// match walks every token against the frontier of RunStates, forking a
// branch whenever a positional word could be read two ways — the next
// path segment of a subcommand, or the first positional belonging to the
// currently active node — and pruning branches as soon as they can no
// longer possibly match. The survivors at EndOfInput are handed to the
// selector (selector.go).
func match(app *App, tokens []Token) (alive []*RunState, dead []*RunState) {
	g := app.compile()
	frontier := []*RunState{newRunState()}

	for _, tok := range tokens {
		next := make([]*RunState, 0, len(frontier)+1)
		for _, rs := range frontier {
			if rs.dead {
				dead = append(dead, rs)
				continue
			}
			forked := stepToken(rs, tok, g)
			next = append(next, forked...)
		}
		frontier = next
	}

	for _, rs := range frontier {
		if rs.dead {
			dead = append(dead, rs)
			continue
		}
		alive = append(alive, rs)
	}
	return alive, dead
}

// stepToken advances a single branch by one token, returning one or two
// resulting branches (two only when a positional word forks into a
// subcommand-descent interpretation and a stay-and-bind interpretation).
func stepToken(rs *RunState, tok Token, g *grammar) []*RunState {
	switch {
	case tok.Kind == TokStart:
		return []*RunState{rs}

	case tok.Kind == TokEnd:
		finalize(rs, g)
		return []*RunState{rs}

	case rs.proxyActive || canEnterProxy(rs, g):
		rs.proxyActive = true
		rs.proxyRemainder = append(rs.proxyRemainder, tok.Raw)
		return []*RunState{rs}

	case rs.afterSeparator:
		processPositional(rs, tok.Raw, g)
		return []*RunState{rs}

	case rs.pendingOption != "":
		name := rs.pendingOption
		rs.pendingOption = ""
		rs.bindFlag(name, tok.Raw)
		return []*RunState{rs}
	}

	switch tok.Kind {
	case TokSeparator:
		rs.afterSeparator = true
		return []*RunState{rs}

	case TokOption:
		handleOption(rs, tok, g)
		return []*RunState{rs}

	case TokOptionValue:
		handleOptionValue(rs, tok, g)
		return []*RunState{rs}

	case TokPositional:
		return stepPositional(rs, tok, g)
	}

	return []*RunState{rs}
}

// stepPositional is where the frontier actually forks: a bare word can
// either name the next path segment or be the active node's first
// positional. Both are explored until one dies.
func stepPositional(rs *RunState, tok Token, g *grammar) []*RunState {
	canDescend := len(rs.posValues) == 0 && !rs.inRest && !rs.proxyActive
	var child *Command
	if canDescend {
		child = g.childNamed(rs.node, tok.Raw)
	}
	if child == nil {
		processPositional(rs, tok.Raw, g)
		return []*RunState{rs}
	}

	descend := rs.clone()
	descend.node = child
	descend.path = append(descend.path, tok.Raw)

	stay := rs
	processPositional(stay, tok.Raw, g)

	return []*RunState{descend, stay}
}

// canEnterProxy reports whether rs's active node is a proxy node whose
// declared positionals are already satisfied, per spec §4.2: "once a proxy
// node is entered and its declared positionals are satisfied, force every
// subsequent token — options included — into the rest accumulator". It
// mirrors the priority order processPositional applies to a positional
// word (named slots, then rest, then proxy) so the two stay consistent,
// but is checked at the top of stepToken, before token-kind dispatch,
// since proxy capture must also swallow option-shaped tokens.
func canEnterProxy(rs *RunState, g *grammar) bool {
	if !g.effectiveProxy(rs.node) {
		return false
	}
	if len(rs.posValues) < len(g.effectiveArgs(rs.node)) {
		return false
	}
	return !rs.inRest && !g.effectiveHasRest(rs.node)
}

// processPositional binds a raw positional word to the active node's next
// open slot or its rest collector; a branch with nowhere left to put the
// word dies. Proxy capture never reaches here — canEnterProxy intercepts
// in stepToken before a proxy node's positional slots can overflow into
// this function.
func processPositional(rs *RunState, raw string, g *grammar) {
	args := g.effectiveArgs(rs.node)
	switch {
	case len(rs.posValues) < len(args):
		rs.posValues = append(rs.posValues, raw)
	case rs.inRest:
		rs.restValues = append(rs.restValues, raw)
	case g.effectiveHasRest(rs.node):
		rs.inRest = true
		rs.restValues = append(rs.restValues, raw)
	case g.effectiveForwardOverflow(rs.node):
		rs.restValues = append(rs.restValues, raw)
	default:
		rs.kill(&ParseError{
			Type:           ErrorTypeInvalidArgument,
			Message:        "too many positional arguments: unexpected '" + raw + "'",
			CurrentCommand: rs.node,
		})
	}
}

func handleOption(rs *RunState, tok Token, g *grammar) {
	if tok.Long {
		handleLongOption(rs, tok, g)
		return
	}
	handleShortCluster(rs, tok, g)
}

func handleLongOption(rs *RunState, tok Token, g *grammar) {
	name := tok.Name
	if flag := g.lookupFlag(rs.node, name); flag != nil {
		bindFlagToken(rs, flag, "")
		return
	}
	if strings.HasPrefix(name, "no-") {
		if flag := g.lookupFlag(rs.node, name[len("no-"):]); flag != nil && flag.Type == FlagTypeBool {
			rs.bindFlag(flag.Name, "false")
			return
		}
	}
	if g.effectiveForwardUnknownFlags(rs.node) {
		rs.restValues = append(rs.restValues, tok.Raw)
		return
	}
	rs.kill(&ParseError{
		Type:           ErrorTypeUnknownFlag,
		Message:        "unknown flag: --" + name,
		Flag:           name,
		CurrentCommand: rs.node,
	})
}

// handleShortCluster expands a batched short-option run (-abc) left to
// right: every bool flag in the cluster consumes just its own rune, and a
// value-taking flag consumes the remainder of the cluster as its value
// (classic getopt short-option behavior) if anything remains, otherwise it
// awaits the next token.
func handleShortCluster(rs *RunState, tok Token, g *grammar) {
	cluster := tok.Name
	runes := []rune(cluster)
	for i, r := range runes {
		flag := g.lookupShortFlag(rs.node, r)
		if flag == nil {
			if g.effectiveForwardUnknownFlags(rs.node) {
				rs.restValues = append(rs.restValues, tok.Raw)
				return
			}
			rs.kill(&ParseError{
				Type:           ErrorTypeUnknownFlag,
				Message:        "unknown flag: -" + string(r),
				Flag:           string(r),
				CurrentCommand: rs.node,
			})
			return
		}
		if flag.Type == FlagTypeBool {
			rs.bindFlag(flag.Name, "true")
			continue
		}
		rest := string(runes[i+1:])
		if rest != "" {
			rs.bindFlag(flag.Name, rest)
		} else {
			rs.pendingOption = flag.Name
		}
		return
	}
}

func handleOptionValue(rs *RunState, tok Token, g *grammar) {
	flag := g.lookupFlag(rs.node, tok.Name)
	if flag == nil {
		if g.effectiveForwardUnknownFlags(rs.node) {
			rs.restValues = append(rs.restValues, tok.Raw)
			return
		}
		rs.kill(&ParseError{
			Type:           ErrorTypeUnknownFlag,
			Message:        "unknown flag: --" + tok.Name,
			Flag:           tok.Name,
			CurrentCommand: rs.node,
		})
		return
	}
	bindFlagToken(rs, flag, tok.Value)
}

func bindFlagToken(rs *RunState, flag *Flag, value string) {
	if flag.Type == FlagTypeBool {
		if value == "" {
			value = "true"
		}
		rs.bindFlag(flag.Name, value)
		return
	}
	if value != "" {
		rs.bindFlag(flag.Name, value)
		return
	}
	rs.pendingOption = flag.Name
}

// finalize runs EndOfInput checks: an option still waiting for its value,
// or unmet required positionals/rest, kills the branch. A branch with its
// help (or version) flag bound is exempt from the missing-required check
// — selector.go's top-priority rule is that "cmd --help" must win even
// when cmd has an unmet required positional, which only holds if finalize
// lets that branch reach the selector alive in the first place.
func finalize(rs *RunState, g *grammar) {
	if rs.dead {
		return
	}
	if rs.pendingOption != "" {
		rs.kill(&ParseError{
			Type:           ErrorTypeMissingValue,
			Message:        "flag --" + rs.pendingOption + " requires a value",
			Flag:           rs.pendingOption,
			CurrentCommand: rs.node,
		})
		return
	}
	if rs.flagSeen["help"] || rs.flagSeen["version"] {
		return
	}
	if rs.unmatchedRequired(g) > 0 {
		rs.kill(&ParseError{
			Type:           ErrorTypeMissingRequired,
			Message:        "missing required arguments",
			CurrentCommand: rs.node,
		})
	}
}
