//nolint:testpackage // using package name 'clipanion' to access unexported fields for testing
package clipanion

import (
	"strings"
	"testing"
	"time"
)

func newTestApp() *App {
	return New("testapp", "a test application")
}

// TestFlagTypesRoundTrip covers every flag type the binder converts, using
// the repeated-flag convention for slices ("--tag a --tag b") rather than a
// single comma-joined token.
func TestFlagTypesRoundTrip(t *testing.T) {
	app := newTestApp()
	app.StringFlag("name", "name").Build()
	app.IntFlag("port", "port").Build()
	app.BoolFlag("verbose", "verbose").Build()
	app.DurationFlag("timeout", "timeout").Build()
	app.FloatFlag("ratio", "ratio").Build()
	app.StringSliceFlag("tags", "tags").Build()
	app.IntSliceFlag("ports", "ports").Build()

	result, err := parseArgs(app, []string{
		"--name", "go-snap",
		"--port", "443",
		"--verbose",
		"--timeout", "1h30m",
		"--ratio", "3.14",
		"--tags", "cli", "--tags", "parser",
		"--ports", "80", "--ports", "8080",
	})
	if err != nil {
		t.Fatalf("parseArgs: %v", err)
	}

	if v, ok := result.GetString("name"); !ok || v != "go-snap" {
		t.Errorf("name = %v, %v", v, ok)
	}
	if v, ok := result.GetInt("port"); !ok || v != 443 {
		t.Errorf("port = %v, %v", v, ok)
	}
	if v, ok := result.GetBool("verbose"); !ok || !v {
		t.Errorf("verbose = %v, %v", v, ok)
	}
	if v, ok := result.GetDuration("timeout"); !ok || v != 90*time.Minute {
		t.Errorf("timeout = %v, %v", v, ok)
	}
	if v, ok := result.GetFloat("ratio"); !ok || v != 3.14 {
		t.Errorf("ratio = %v, %v", v, ok)
	}
	if v, ok := result.GetStringSlice("tags"); !ok || strings.Join(v, ",") != "cli,parser" {
		t.Errorf("tags = %v, %v", v, ok)
	}
	if v, ok := result.GetIntSlice("ports"); !ok || len(v) != 2 || v[0] != 80 || v[1] != 8080 {
		t.Errorf("ports = %v, %v", v, ok)
	}
}

// TestLongOptionEqualsForm covers "--name=value" tokenization end to end.
func TestLongOptionEqualsForm(t *testing.T) {
	app := newTestApp()
	app.StringFlag("name", "name").Build()

	result, err := parseArgs(app, []string{"--name=hello"})
	if err != nil {
		t.Fatalf("parseArgs: %v", err)
	}
	if v, _ := result.GetString("name"); v != "hello" {
		t.Errorf("name = %q", v)
	}
}

// TestShortFlagClustering covers batched short bool flags and a
// value-taking short flag absorbing the remainder of its cluster.
func TestShortFlagClustering(t *testing.T) {
	app := newTestApp()
	app.BoolFlag("all", "all").Short('a').Build()
	app.BoolFlag("list", "list").Short('l').Build()
	app.StringFlag("message", "message").Short('m').Build()

	result, err := parseArgs(app, []string{"-al", "-mhello"})
	if err != nil {
		t.Fatalf("parseArgs: %v", err)
	}
	if v, _ := result.GetBool("all"); !v {
		t.Error("expected all=true")
	}
	if v, _ := result.GetBool("list"); !v {
		t.Error("expected list=true")
	}
	if v, _ := result.GetString("message"); v != "hello" {
		t.Errorf("message = %q", v)
	}
}

// TestBoolNegation covers "--no-foo" for a declared bool flag "foo".
func TestBoolNegation(t *testing.T) {
	app := newTestApp()
	app.BoolFlag("color", "enable color").Default(true).Build()

	result, err := parseArgs(app, []string{"--no-color"})
	if err != nil {
		t.Fatalf("parseArgs: %v", err)
	}
	if v, _ := result.GetBool("color"); v {
		t.Error("expected color=false after --no-color")
	}
}

// TestSeparatorForcesPositional covers "--" switching every remaining
// token, including option-shaped ones, to positional.
func TestSeparatorForcesPositional(t *testing.T) {
	app := newTestApp()
	app.StringArg("first", "first")
	app.RestArgs()

	result, err := parseArgs(app, []string{"--", "--not-a-flag", "plain"})
	if err != nil {
		t.Fatalf("parseArgs: %v", err)
	}
	if v, _ := result.GetArgString("first"); v != "--not-a-flag" {
		t.Errorf("first = %q", v)
	}
	if len(result.Args) != 2 || result.Args[1] != "plain" {
		t.Errorf("Args = %v", result.Args)
	}
}

// TestSubcommandDisambiguation covers the case where a positional token
// both names a subcommand and would otherwise be a valid argument to the
// parent's default command — the subcommand branch must win because it
// consumes a longer path with no unmatched requireds.
func TestSubcommandDisambiguation(t *testing.T) {
	app := newTestApp()
	app.StringArg("target", "a target")
	var ran string
	app.Command("status", "show status").Action(func(c *Context) error {
		ran = "status"
		return nil
	})

	result, err := parseArgs(app, []string{"status"})
	if err != nil {
		t.Fatalf("parseArgs: %v", err)
	}
	if result.Command == nil || result.Command.Name() != "status" {
		t.Fatalf("expected to match the 'status' command, got %v", result.Command)
	}
	if result.Command.Action != nil {
		if actErr := result.Command.Action(&Context{}); actErr != nil {
			t.Fatalf("action: %v", actErr)
		}
	}
	if ran != "status" {
		t.Errorf("action did not run")
	}
}

// TestNestedSubcommands covers a multi-segment path ("remote add").
func TestNestedSubcommands(t *testing.T) {
	app := newTestApp()
	remote := app.Command("remote", "manage remotes")
	remote.Command("add", "add a remote").
		StringArg("name", "remote name").Required().Command().
		StringArg("url", "remote url").Required().Command()

	result, err := parseArgs(app, []string{"remote", "add", "origin", "https://example.invalid/repo.git"})
	if err != nil {
		t.Fatalf("parseArgs: %v", err)
	}
	if result.Command == nil || result.Command.Name() != "add" {
		t.Fatalf("expected to match 'add', got %v", result.Command)
	}
	if v, _ := result.GetArgString("name"); v != "origin" {
		t.Errorf("name = %q", v)
	}
	if v, _ := result.GetArgString("url"); v != "https://example.invalid/repo.git" {
		t.Errorf("url = %q", v)
	}
}

// TestAliasResolvesToSameCommand covers subcommand aliases.
func TestAliasResolvesToSameCommand(t *testing.T) {
	app := newTestApp()
	app.Command("remove", "remove a thing").Alias("rm")

	result, err := parseArgs(app, []string{"rm"})
	if err != nil {
		t.Fatalf("parseArgs: %v", err)
	}
	if result.Command == nil || result.Command.Name() != "remove" {
		t.Fatalf("expected alias 'rm' to resolve to 'remove', got %v", result.Command)
	}
}

// TestMissingRequiredPositionalFails covers the selector's ParseError path
// when every branch dies on an unmet required.
func TestMissingRequiredPositionalFails(t *testing.T) {
	app := newTestApp()
	app.Command("add", "add a thing").StringArg("name", "name").Required().Command()

	_, err := parseArgs(app, []string{"add"})
	if err == nil {
		t.Fatal("expected an error for a missing required positional")
	}
	parseErr, ok := err.(*ParseError)
	if !ok {
		t.Fatalf("expected *ParseError, got %T", err)
	}
	if parseErr.Type != ErrorTypeMissingRequired {
		t.Errorf("Type = %v", parseErr.Type)
	}
}

// TestUnknownFlagFails covers the matcher killing a branch on an
// unrecognized long flag.
func TestUnknownFlagFails(t *testing.T) {
	app := newTestApp()
	_, err := parseArgs(app, []string{"--does-not-exist"})
	if err == nil {
		t.Fatal("expected an error for an unknown flag")
	}
	parseErr, ok := err.(*ParseError)
	if !ok {
		t.Fatalf("expected *ParseError, got %T", err)
	}
	if parseErr.Type != ErrorTypeUnknownFlag {
		t.Errorf("Type = %v", parseErr.Type)
	}
}

// TestHelpFlagOverridesMissingRequired covers the selector's top-priority
// rule: "cmd --help" must win even though cmd has an unmet required.
func TestHelpFlagOverridesMissingRequired(t *testing.T) {
	app := newTestApp()
	app.Command("add", "add a thing").StringArg("name", "name").Required().Command()

	result, err := parseArgs(app, []string{"add", "--help"})
	if err != nil {
		t.Fatalf("parseArgs: %v", err)
	}
	if !result.MustGetBool("help", false) {
		t.Error("expected help=true to win despite the missing required arg")
	}
}

// TestRestArgsCollectTrailingPositionals covers a minimum-count rest slot.
func TestRestArgsCollectTrailingPositionals(t *testing.T) {
	app := newTestApp()
	app.Command("cp", "copy files").MinRest(2)

	result, err := parseArgs(app, []string{"cp", "a", "b", "c"})
	if err != nil {
		t.Fatalf("parseArgs: %v", err)
	}
	if len(result.Args) != 3 {
		t.Errorf("Args = %v", result.Args)
	}

	if _, err := parseArgs(app, []string{"cp", "a"}); err == nil {
		t.Fatal("expected an error: rest requires at least 2 items")
	}
}

// TestProxyCapturesEverythingVerbatim covers a proxy command swallowing
// option-shaped tokens without interpreting them.
func TestProxyCapturesEverythingVerbatim(t *testing.T) {
	app := newTestApp()
	app.Command("run", "run a tool").Proxy()

	result, err := parseArgs(app, []string{"run", "--not-mine", "-x", "plain"})
	if err != nil {
		t.Fatalf("parseArgs: %v", err)
	}
	want := []string{"--not-mine", "-x", "plain"}
	if len(result.Args) != len(want) {
		t.Fatalf("Args = %v", result.Args)
	}
	for i := range want {
		if result.Args[i] != want[i] {
			t.Errorf("Args[%d] = %q, want %q", i, result.Args[i], want[i])
		}
	}
}

// TestFlagGroupMutuallyExclusive covers flag-group validation at bind time.
func TestFlagGroupMutuallyExclusive(t *testing.T) {
	app := newTestApp()
	group := app.FlagGroup("output")
	group.BoolFlag("json", "json output").Build()
	group.BoolFlag("yaml", "yaml output").Build()
	group.MutuallyExclusive().App()

	_, err := parseArgs(app, []string{"--json", "--yaml"})
	if err == nil {
		t.Fatal("expected a ValidationError for mutually exclusive flags")
	}
	if _, ok := err.(*ValidationError); !ok {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
}

// TestEnvFallbackAppliesOnlyWhenUnset covers FromEnv precedence: explicit
// flags beat env, env beats the declared default.
func TestEnvFallbackAppliesOnlyWhenUnset(t *testing.T) {
	app := newTestApp()
	app.StringFlag("token", "token").FromEnv("TESTAPP_TOKEN").Default("fallback").Build()

	t.Setenv("TESTAPP_TOKEN", "from-env")

	result, err := parseArgs(app, []string{})
	if err != nil {
		t.Fatalf("parseArgs: %v", err)
	}
	if v, _ := result.GetString("token"); v != "from-env" {
		t.Errorf("token = %q, want env value", v)
	}

	result, err = parseArgs(app, []string{"--token", "explicit"})
	if err != nil {
		t.Fatalf("parseArgs: %v", err)
	}
	if v, _ := result.GetString("token"); v != "explicit" {
		t.Errorf("token = %q, want explicit value", v)
	}
}
