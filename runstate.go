package clipanion

import "github.com/jonahsnider/clipanion/internal/pool"

// RunState is one candidate branch in the matcher's frontier: a partial
// walk of the command tree plus the option/positional bindings accumulated
// along the way. The frontier is the set of all RunStates still alive after
// the tokens consumed so far; at EndOfInput the selector picks a winner
// among the RunStates that reached a terminal (runnable) node.
type RunState struct {
	node *Command // nil while still at the app root, before any path segment matched
	path []string // path segments consumed so far, for diagnostics and help

	// Flag bindings, raw strings keyed by canonical flag name. A slice-typed
	// flag accumulates multiple raw values under the same key.
	flagValues map[string][]string
	flagSeen   map[string]bool // distinguishes "seen but no value yet" during two-token consumption

	// Positional bindings, in declaration order against node.args.
	posValues []string

	// Rest/proxy capture.
	inRest         bool
	restValues     []string
	proxyActive    bool
	proxyRemainder []string

	afterSeparator bool // saw "--": every following token is forced Positional

	pendingOption string // option name awaiting its value via the next token ("--name value")
	pendingShort  bool

	dead       bool
	deathError *ParseError
}

func newRunState() *RunState {
	return &RunState{
		flagValues: make(map[string][]string, 4),
		flagSeen:   make(map[string]bool, 4),
	}
}

// clone deep-copies the mutable parts of a RunState so two branches can
// diverge (e.g. "treat token as subcommand name" vs "treat token as this
// command's positional") without aliasing each other's bindings.
func (rs *RunState) clone() *RunState {
	out := &RunState{
		node:           rs.node,
		afterSeparator: rs.afterSeparator,
		inRest:         rs.inRest,
		proxyActive:    rs.proxyActive,
		pendingOption:  rs.pendingOption,
		pendingShort:   rs.pendingShort,
		dead:           rs.dead,
		deathError:     rs.deathError,
	}
	out.path = append([]string(nil), rs.path...)

	// posValues/restValues/proxyRemainder are the buffers a fork spends most
	// of its life appending one token at a time; every positional-word
	// disambiguation clones them, so pulling the backing array from the
	// shared pool instead of growing a fresh nil slice is where pooling
	// actually pays for itself in this matcher.
	pv := pool.GetStringSlice()
	*pv = append((*pv)[:0], rs.posValues...)
	out.posValues = *pv

	rv := pool.GetStringSlice()
	*rv = append((*rv)[:0], rs.restValues...)
	out.restValues = *rv

	pr := pool.GetStringSlice()
	*pr = append((*pr)[:0], rs.proxyRemainder...)
	out.proxyRemainder = *pr

	out.flagValues = make(map[string][]string, len(rs.flagValues))
	for k, v := range rs.flagValues {
		out.flagValues[k] = append([]string(nil), v...)
	}
	out.flagSeen = make(map[string]bool, len(rs.flagSeen))
	for k, v := range rs.flagSeen {
		out.flagSeen[k] = v
	}
	return out
}

// release returns a branch's positional/rest/proxy buffers to the shared
// pool. Safe once the branch is dead (nothing downstream reads a dead
// branch's bindings, only its death error and consumed-path length) or
// once the binder has already copied everything it needs out of the
// winning branch.
func (rs *RunState) release() {
	pool.PutStringSlice(&rs.posValues)
	pool.PutStringSlice(&rs.restValues)
	pool.PutStringSlice(&rs.proxyRemainder)
}

func (rs *RunState) kill(err *ParseError) {
	rs.dead = true
	rs.deathError = err
	rs.release()
}

// bindFlag records a raw value for a flag, by canonical name.
func (rs *RunState) bindFlag(name, value string) {
	rs.flagValues[name] = append(rs.flagValues[name], value)
	rs.flagSeen[name] = true
}

// consumedPathLen is the tiebreak metric for "longest consumed path wins".
func (rs *RunState) consumedPathLen() int {
	return len(rs.path)
}

// unmatchedRequired reports how many required positionals of the active
// node still have no bound value. Used for "fewest unmatched requireds".
func (rs *RunState) unmatchedRequired(g *grammar) int {
	missing := 0
	for i, arg := range g.effectiveArgs(rs.node) {
		if !arg.Required {
			continue
		}
		if i >= len(rs.posValues) {
			missing++
		}
	}
	if g.effectiveHasRest(rs.node) {
		if need := g.effectiveRestRequired(rs.node); len(rs.restValues) < need {
			missing += need - len(rs.restValues)
		}
	}
	return missing
}

// unboundPositionalSlots counts named positional slots (not the rest
// collector) that never received a value. Used for the "fewer unbound
// named-slot positionals" tiebreak.
func (rs *RunState) unboundPositionalSlots(g *grammar) int {
	n := len(g.effectiveArgs(rs.node)) - len(rs.posValues)
	if n < 0 {
		n = 0
	}
	return n
}
