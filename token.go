package clipanion

import (
	"strings"

	"github.com/jonahsnider/clipanion/internal/intern"
)

// names interns every option name the tokenizer extracts. Flag lookups,
// RunState.flagValues keys, and every clone()'d flagValues/flagSeen map
// entry key off these strings, so canonicalizing them once here keeps the
// matcher from growing a fresh backing array per branch per flag mention.
var names = intern.NewStringInterner(64)

// TokenKind classifies a single argv element as the matcher sees it, before
// any branch-specific reinterpretation (see RunState.afterSeparator and
// RunState.proxyActive in runstate.go).
type TokenKind int

const (
	TokStart TokenKind = iota
	TokEnd
	TokPositional
	TokOption
	TokOptionValue
	TokSeparator
)

// Token is the atomic unit the matcher consumes. Name holds the option body
// without its leading dash(es): for a long option this is the full name
// ("foo"); for a short token it is everything after the single dash,
// including a whole batched cluster ("abc", "abcXYZ") — the matcher decides
// how much of that cluster each branch can consume.
type Token struct {
	Kind  TokenKind
	Raw   string
	Name  string
	Value string
	Long  bool
}

// classify inspects one argv string in isolation. Classification is
// deterministic and context-free: whether a Separator or proxy activation
// later forces this token to be treated as Positional is the matcher's
// concern, not the tokenizer's.
func classify(raw string) Token {
	switch {
	case raw == "--":
		return Token{Kind: TokSeparator, Raw: raw}
	case strings.HasPrefix(raw, "--") && len(raw) > 2:
		body := raw[2:]
		if eq := strings.IndexByte(body, '='); eq >= 0 {
			return Token{Kind: TokOptionValue, Raw: raw, Name: names.Intern(body[:eq]), Value: body[eq+1:], Long: true}
		}
		return Token{Kind: TokOption, Raw: raw, Name: names.Intern(body), Long: true}
	case len(raw) > 1 && raw[0] == '-' && raw != "--":
		return Token{Kind: TokOption, Raw: raw, Name: names.Intern(raw[1:]), Long: false}
	default:
		return Token{Kind: TokPositional, Raw: raw, Value: raw}
	}
}

// tokenize wraps a raw argv slice with the StartOfInput/EndOfInput sentinels
// the matcher's frontier walk expects.
func tokenize(argv []string) []Token {
	toks := make([]Token, 0, len(argv)+2)
	toks = append(toks, Token{Kind: TokStart})
	for _, a := range argv {
		toks = append(toks, classify(a))
	}
	toks = append(toks, Token{Kind: TokEnd})
	return toks
}

// asPositional reinterprets a token's raw text as a plain positional,
// regardless of its naive classification. The matcher itself reads tok.Raw
// directly once afterSeparator or a proxy capture has activated on a branch.
func asPositional(tok Token) string {
	return tok.Raw
}
