package clipanion

import "strings"

// Suggest enumerates the literal next tokens that would keep at least one
// branch of the matcher alive after argv, mirroring the same frontier walk
// match() runs (token.go, matcher.go) but stopping short of EndOfInput: a
// completion engine is asking "what could come next", not "is this
// complete".
//
// When partial is true, the last element of argv is not yet a finished
// token — it's what the user has typed so far on the word the cursor sits
// on — so it is held back from the frontier walk and used instead as a
// prefix filter over the candidates the walk produces. When partial is
// false, argv is taken as whole, already-typed words and the candidates
// describe what could legally start the next word.
//
// The result is deduplicated and sorted per the same tiebreak shells expect
// from `compgen`-style output: lexicographic order ignoring case, and among
// strings equal ignoring case, the upper-case spelling sorts first.
func (a *App) Suggest(argv []string, partial bool) []string {
	g := a.compile()

	consumed := argv
	prefix := ""
	if partial && len(argv) > 0 {
		consumed = argv[:len(argv)-1]
		prefix = argv[len(argv)-1]
	}

	frontier := matchPrefix(g, consumed)

	seen := make(map[string]bool)
	var out []string
	add := func(candidate string) {
		if prefix != "" && !strings.HasPrefix(candidate, prefix) {
			return
		}
		if seen[candidate] {
			return
		}
		seen[candidate] = true
		out = append(out, candidate)
	}

	for _, rs := range frontier {
		for _, candidate := range nextLiterals(rs, g) {
			add(candidate)
		}
	}

	sortSuggestions(out)
	return out
}

// matchPrefix runs the frontier walk over consumed without ever feeding it
// the EndOfInput sentinel, so branches that would die at finalize() (a
// dangling --flag awaiting a value, an unmet required positional) are still
// reported: those are exactly the branches a completion engine most wants
// to hear from, since they're the ones with something left to say about
// what comes next.
func matchPrefix(g *grammar, consumed []string) []*RunState {
	frontier := []*RunState{newRunState()}

	step := func(tok Token) {
		next := make([]*RunState, 0, len(frontier)+1)
		for _, rs := range frontier {
			if rs.dead {
				continue
			}
			next = append(next, stepToken(rs, tok, g)...)
		}
		frontier = next
	}

	step(Token{Kind: TokStart})
	for _, raw := range consumed {
		step(classify(raw))
	}

	alive := make([]*RunState, 0, len(frontier))
	for _, rs := range frontier {
		if !rs.dead {
			alive = append(alive, rs)
		}
	}
	return alive
}

// nextLiterals lists every fixed string that would extend rs by exactly one
// more token without killing it. Positional values themselves are never
// suggested — they're open-ended user data, not part of the grammar — but
// everything the grammar fixes in advance (subcommand names, flag
// spellings, the "--" separator) is fair game.
func nextLiterals(rs *RunState, g *grammar) []string {
	var out []string

	if rs.pendingOption != "" || rs.proxyActive {
		// Mid-flag-value or mid-proxy-capture: the only legal next token is
		// arbitrary data, which has no fixed literal to suggest.
		return out
	}

	if rs.afterSeparator {
		return out
	}

	canDescend := len(rs.posValues) == 0 && !rs.inRest

	if canDescend {
		children := g.app.commands
		if rs.node != nil {
			children = rs.node.subcommands
		}
		for name, child := range children {
			if child.Hidden {
				continue
			}
			out = append(out, name)
			out = append(out, child.Aliases...)
		}
	}

	out = append(out, "--")
	out = append(out, flagLiterals(rs.node, g)...)

	return out
}

// flagLiterals lists every spelling the active node's own flags and the
// app's global flags can be written as: "--name", "-x" for a Short rune,
// and "--no-name" for a bool flag's negation (handleLongOption in
// matcher.go accepts exactly this set).
func flagLiterals(node *Command, g *grammar) []string {
	var out []string
	emit := func(f *Flag) {
		if f.Hidden {
			return
		}
		out = append(out, "--"+f.Name)
		if f.Type == FlagTypeBool {
			out = append(out, "--no-"+f.Name)
		}
		if f.Short != 0 {
			out = append(out, "-"+string(f.Short))
		}
	}
	if node != nil {
		for _, f := range node.flags {
			emit(f)
		}
	}
	for _, f := range g.app.flags {
		emit(f)
	}
	return out
}

// sortSuggestions orders candidates lexicographically ignoring case, breaking ties
// between strings that are equal ignoring case by putting the upper-case
// spelling first (so "-H" sorts before "-h").
func sortSuggestions(candidates []string) {
	for i := 1; i < len(candidates); i++ {
		for j := i; j > 0 && suggestionLess(candidates[j], candidates[j-1]); j-- {
			candidates[j], candidates[j-1] = candidates[j-1], candidates[j]
		}
	}
}

func suggestionLess(a, b string) bool {
	la, lb := strings.ToLower(a), strings.ToLower(b)
	if la != lb {
		return la < lb
	}
	return a < b // 'A' (0x41) < 'a' (0x61) in byte order already, so plain ascending comparison puts upper-case first
}
