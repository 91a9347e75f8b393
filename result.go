package clipanion

import (
	"os"
	"strconv"
	"time"
)

// ParseResult is the bound outcome of matching argv against the compiled
// grammar: a specific Command (or nil for the app's default command), its
// flags and positionals converted to Go types, and the raw positional/rest/
// proxy tokens available generically via Args().
//
// Binding is a straightforward transformer pass over the winning RunState
// (see bind, below) — it does not re-walk argv and cannot fail on anything
// the matcher didn't already accept, except flag-group constraint
// violations, which are checked here because they span multiple flags and
// only make sense once a single branch has won.
type ParseResult struct {
	Command *Command
	Path    []string
	Args    []string

	stringFlags      map[string]string
	intFlags         map[string]int
	boolFlags        map[string]bool
	durationFlags    map[string]time.Duration
	floatFlags       map[string]float64
	enumFlags        map[string]string
	stringSliceFlags map[string][]string
	intSliceFlags    map[string][]int

	globalStringFlags      map[string]string
	globalIntFlags         map[string]int
	globalBoolFlags        map[string]bool
	globalDurationFlags    map[string]time.Duration
	globalFloatFlags       map[string]float64
	globalEnumFlags        map[string]string
	globalStringSliceFlags map[string][]string
	globalIntSliceFlags    map[string][]int

	argStrings      map[string]string
	argInts         map[string]int
	argBools        map[string]bool
	argDurations    map[string]time.Duration
	argFloats       map[string]float64
	argStringSlices map[string][]string
	argIntSlices    map[string][]int

	flagsSeen map[string]bool
}

func newParseResult() *ParseResult {
	return &ParseResult{
		stringFlags:      make(map[string]string),
		intFlags:         make(map[string]int),
		boolFlags:        make(map[string]bool),
		durationFlags:    make(map[string]time.Duration),
		floatFlags:       make(map[string]float64),
		enumFlags:        make(map[string]string),
		stringSliceFlags: make(map[string][]string),
		intSliceFlags:    make(map[string][]int),

		globalStringFlags:      make(map[string]string),
		globalIntFlags:         make(map[string]int),
		globalBoolFlags:        make(map[string]bool),
		globalDurationFlags:    make(map[string]time.Duration),
		globalFloatFlags:       make(map[string]float64),
		globalEnumFlags:        make(map[string]string),
		globalStringSliceFlags: make(map[string][]string),
		globalIntSliceFlags:    make(map[string][]int),

		argStrings:      make(map[string]string),
		argInts:         make(map[string]int),
		argBools:        make(map[string]bool),
		argDurations:    make(map[string]time.Duration),
		argFloats:       make(map[string]float64),
		argStringSlices: make(map[string][]string),
		argIntSlices:    make(map[string][]int),

		flagsSeen: make(map[string]bool),
	}
}

// bind converts the winning RunState into a ParseResult: flags (falling
// back to FromEnv sources, then declared defaults, for anything the
// matcher never saw), positionals, and the generic Args() view used by
// wrapper.go and Context.Args().
func bind(app *App, rs *RunState) (*ParseResult, *ValidationError) {
	g := app.compile()
	res := newParseResult()
	res.Command = rs.node
	res.Path = rs.path

	for name, flag := range allFlags(app, rs.node) {
		raw, seen := rs.flagValues[name]
		if !seen {
			if v, ok := envValue(flag); ok {
				raw = []string{v}
				seen = true
			}
		}
		res.flagsSeen[name] = rs.flagSeen[name]
		bindFlag(res, flag, raw, seen)
	}

	args := g.effectiveArgs(rs.node)
	for i, arg := range args {
		var raw string
		ok := i < len(rs.posValues)
		if ok {
			raw = rs.posValues[i]
		}
		bindArg(res, arg, raw, ok)
	}

	if rs.proxyActive {
		res.Args = append([]string(nil), rs.proxyRemainder...)
	} else {
		res.Args = make([]string, 0, len(rs.posValues)+len(rs.restValues))
		res.Args = append(res.Args, rs.posValues...)
		res.Args = append(res.Args, rs.restValues...)
	}

	if verr := validateFlagGroups(app, rs.node, res); verr != nil {
		return res, verr
	}
	return res, nil
}

// allFlags merges the app's global flags with the active node's own flags,
// the node's flags winning on a name collision (matches grammar.lookupFlag).
func allFlags(app *App, node *Command) map[string]*Flag {
	out := make(map[string]*Flag, len(app.flags))
	for name, f := range app.flags {
		out[name] = f
	}
	if node != nil {
		for name, f := range node.flags {
			out[name] = f
		}
	}
	return out
}

func envValue(flag *Flag) (string, bool) {
	for _, name := range flag.EnvVars {
		if v, ok := os.LookupEnv(name); ok {
			return v, true
		}
	}
	return "", false
}

func bindFlag(res *ParseResult, flag *Flag, raw []string, seen bool) {
	last := ""
	if len(raw) > 0 {
		last = raw[len(raw)-1]
	}

	switch flag.Type {
	case FlagTypeString:
		if seen {
			setFlag(res, flag, last)
		} else {
			setFlag(res, flag, flag.DefaultString)
		}
	case FlagTypeInt:
		if seen {
			setFlag(res, flag, atoiOr(last, flag.DefaultInt))
		} else {
			setFlag(res, flag, flag.DefaultInt)
		}
	case FlagTypeBool:
		if seen {
			setFlag(res, flag, last == "" || last == "true" || last == "1")
		} else {
			setFlag(res, flag, flag.DefaultBool)
		}
	case FlagTypeDuration:
		if seen {
			setFlag(res, flag, durationOr(last, flag.DefaultDuration))
		} else {
			setFlag(res, flag, flag.DefaultDuration)
		}
	case FlagTypeFloat:
		if seen {
			setFlag(res, flag, floatOr(last, flag.DefaultFloat))
		} else {
			setFlag(res, flag, flag.DefaultFloat)
		}
	case FlagTypeEnum:
		if seen {
			setFlag(res, flag, last)
		} else {
			setFlag(res, flag, flag.DefaultEnum)
		}
	case FlagTypeStringSlice:
		if seen {
			setFlagSlice(res, flag, raw)
		} else {
			setFlagSlice(res, flag, flag.DefaultStringSlice)
		}
	case FlagTypeIntSlice:
		if seen {
			ints := make([]int, len(raw))
			for i, v := range raw {
				ints[i] = atoiOr(v, 0)
			}
			setFlagIntSlice(res, flag, ints)
		} else {
			setFlagIntSlice(res, flag, flag.DefaultIntSlice)
		}
	}
}

func setFlag[T any](res *ParseResult, flag *Flag, value T) {
	switch v := any(value).(type) {
	case string:
		if flag.Global {
			res.globalStringFlags[flag.Name] = v
		} else {
			res.stringFlags[flag.Name] = v
		}
		if flag.Type == FlagTypeEnum {
			if flag.Global {
				res.globalEnumFlags[flag.Name] = v
			} else {
				res.enumFlags[flag.Name] = v
			}
		}
	case int:
		if flag.Global {
			res.globalIntFlags[flag.Name] = v
		} else {
			res.intFlags[flag.Name] = v
		}
	case bool:
		if flag.Global {
			res.globalBoolFlags[flag.Name] = v
		} else {
			res.boolFlags[flag.Name] = v
		}
	case time.Duration:
		if flag.Global {
			res.globalDurationFlags[flag.Name] = v
		} else {
			res.durationFlags[flag.Name] = v
		}
	case float64:
		if flag.Global {
			res.globalFloatFlags[flag.Name] = v
		} else {
			res.floatFlags[flag.Name] = v
		}
	}
}

func setFlagSlice(res *ParseResult, flag *Flag, value []string) {
	if flag.Global {
		res.globalStringSliceFlags[flag.Name] = value
	} else {
		res.stringSliceFlags[flag.Name] = value
	}
}

func setFlagIntSlice(res *ParseResult, flag *Flag, value []int) {
	if flag.Global {
		res.globalIntSliceFlags[flag.Name] = value
	} else {
		res.intSliceFlags[flag.Name] = value
	}
}

func bindArg(res *ParseResult, arg *Arg, raw string, seen bool) {
	switch arg.Type {
	case ArgTypeString:
		if seen {
			res.argStrings[arg.Name] = raw
		} else {
			res.argStrings[arg.Name] = arg.DefaultString
		}
	case ArgTypeInt:
		if seen {
			res.argInts[arg.Name] = atoiOr(raw, arg.DefaultInt)
		} else {
			res.argInts[arg.Name] = arg.DefaultInt
		}
	case ArgTypeBool:
		if seen {
			res.argBools[arg.Name] = raw == "" || raw == "true" || raw == "1"
		} else {
			res.argBools[arg.Name] = arg.DefaultBool
		}
	case ArgTypeDuration:
		if seen {
			res.argDurations[arg.Name] = durationOr(raw, arg.DefaultDuration)
		} else {
			res.argDurations[arg.Name] = arg.DefaultDuration
		}
	case ArgTypeFloat:
		if seen {
			res.argFloats[arg.Name] = floatOr(raw, arg.DefaultFloat)
		} else {
			res.argFloats[arg.Name] = arg.DefaultFloat
		}
	case ArgTypeStringSlice:
		if seen {
			res.argStringSlices[arg.Name] = []string{raw}
		} else {
			res.argStringSlices[arg.Name] = arg.DefaultStringSlice
		}
	case ArgTypeIntSlice:
		if seen {
			res.argIntSlices[arg.Name] = []int{atoiOr(raw, 0)}
		} else {
			res.argIntSlices[arg.Name] = arg.DefaultIntSlice
		}
	}
}

func atoiOr(s string, fallback int) int {
	if s == "" {
		return fallback
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return fallback
}

func floatOr(s string, fallback float64) float64 {
	if s == "" {
		return fallback
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return v
	}
	return fallback
}

func durationOr(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	if v, err := time.ParseDuration(s); err == nil {
		return v
	}
	return fallback
}

// ValidationError reports that a well-formed command line violated a
// flag-group constraint (mutually-exclusive, all-or-none, exactly-one,
// at-least-one).
type ValidationError struct {
	Group   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func validateFlagGroups(app *App, node *Command, res *ParseResult) *ValidationError {
	groups := app.flagGroups
	if node != nil {
		groups = append(groups, node.flagGroups...)
	}
	for _, group := range groups {
		set := 0
		for _, f := range group.Flags {
			if res.flagsSeen[f.Name] {
				set++
			}
		}
		switch group.Constraint {
		case GroupMutuallyExclusive:
			if set > 1 {
				return &ValidationError{Group: group.Name, Message: "flags in group '" + group.Name + "' are mutually exclusive"}
			}
		case GroupAllOrNone:
			if set != 0 && set != len(group.Flags) {
				return &ValidationError{Group: group.Name, Message: "flags in group '" + group.Name + "' must all be set, or none"}
			}
		case GroupAtLeastOne, GroupRequiredGroup:
			if set == 0 {
				return &ValidationError{Group: group.Name, Message: "at least one flag in group '" + group.Name + "' is required"}
			}
		case GroupExactlyOne:
			if set != 1 {
				return &ValidationError{Group: group.Name, Message: "exactly one flag in group '" + group.Name + "' is required"}
			}
		case GroupNoConstraint:
		}
	}
	return nil
}
