package clipanion

// select picks the single winning branch out of the matcher's surviving
// frontier, per spec.md §4.3's priority order (highest first):
//
//  1. a branch with its help flag bound wins outright, regardless of
//     unmet requireds — "clipanion cmd --help" must show help for cmd even
//     when cmd has required positionals the user didn't supply.
//  2. fewest unmatched required positionals/rest.
//  3. longest consumed path (prefer the more specific subcommand).
//  4. fewer positional slots left unbound by a named value (vs filled by
//     rest).
//  5. lowest compile-time index (depth-first, siblings in name order;
//     not registration order), as the final, deterministic tiebreak.
//
// If the frontier is empty, the most useful diagnostic is built from the
// dead branch(es) that got furthest before dying.
func selectWinner(app *App, alive []*RunState, dead []*RunState) (*RunState, *ParseError) {
	g := app.compile()

	if len(alive) == 0 {
		return nil, diagnoseFailure(dead)
	}

	best := alive[0]
	for _, cand := range alive[1:] {
		if better(cand, best, g) {
			best = cand
		}
	}
	return best, nil
}

func better(a, b *RunState, g *grammar) bool {
	aHelp, bHelp := a.flagSeen["help"], b.flagSeen["help"]
	if aHelp != bHelp {
		return aHelp
	}

	aMissing, bMissing := a.unmatchedRequired(g), b.unmatchedRequired(g)
	if aMissing != bMissing {
		return aMissing < bMissing
	}

	aPath, bPath := a.consumedPathLen(), b.consumedPathLen()
	if aPath != bPath {
		return aPath > bPath
	}

	aUnbound, bUnbound := a.unboundPositionalSlots(g), b.unboundPositionalSlots(g)
	if aUnbound != bUnbound {
		return aUnbound < bUnbound
	}

	return g.indexOf(a.node) < g.indexOf(b.node)
}

// diagnoseFailure builds the ParseError for a fully dead frontier from the
// branch(es) that consumed the most of the command line before dying —
// the one most likely to be "what the user meant".
func diagnoseFailure(dead []*RunState) *ParseError {
	if len(dead) == 0 {
		return &ParseError{Type: ErrorTypeInternal, Message: "no arguments matched any command"}
	}
	best := dead[0]
	for _, cand := range dead[1:] {
		if cand.consumedPathLen() > best.consumedPathLen() {
			best = cand
		}
	}
	if best.deathError != nil {
		return best.deathError
	}
	return &ParseError{Type: ErrorTypeInternal, Message: "failed to match arguments", CurrentCommand: best.node}
}
