package clipanion

// parseArgs runs the full matching pipeline — tokenize, match, select,
// bind — and is the single integration point between the dispatcher
// (app.go) and the NFA-style engine (token.go, matcher.go, selector.go,
// result.go).
func parseArgs(app *App, args []string) (*ParseResult, error) {
	tokens := tokenize(args)
	alive, dead := match(app, tokens)

	winner, parseErr := selectWinner(app, alive, dead)
	if parseErr != nil {
		return nil, parseErr
	}

	result, validationErr := bind(app, winner)

	// Every alive branch (the winner included) still holds pooled
	// positional/rest/proxy buffers; bind() has already copied whatever it
	// needs out of the winner, and the runner-up branches were never
	// consulted, so all of them can go back to the pool now.
	for _, rs := range alive {
		rs.release()
	}

	if validationErr != nil {
		return result, validationErr
	}
	return result, nil
}
