package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/easel/pkg/calculator"
	"github.com/matzehuels/easel/pkg/errors"
	"github.com/matzehuels/easel/pkg/observability"
	"github.com/matzehuels/easel/pkg/settings"
)

// isolate points every on-disk location at a fresh directory and clears
// environment overrides.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	for _, key := range []string{"EASEL_STORE", "EASEL_STATE_DIR", "EASEL_PRESETS", "EASEL_PRESET_DIR"} {
		t.Setenv(key, "")
	}
	return dir
}

// execute runs the CLI with args and returns what it wrote to stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func mustExecute(t *testing.T, args ...string) string {
	t.Helper()
	out, err := execute(t, args...)
	if err != nil {
		t.Fatalf("easel %s: %v", strings.Join(args, " "), err)
	}
	return out
}

func decodeJSON[T any](t *testing.T, s string) T {
	t.Helper()
	var v T
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		t.Fatalf("decode %s: %v", s, err)
	}
	return v
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := New(io.Discard, LogInfo).RootCommand()

	want := []string{"calc", "tui", "share", "preset", "state", "serve", "config", "completion"}
	for _, name := range want {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("subcommand %q not registered", name)
		}
	}
	if root.PersistentFlags().Lookup("config") == nil {
		t.Error("--config flag missing")
	}
}

func TestCalcJSONDefaults(t *testing.T) {
	isolate(t)
	got := decodeJSON[calcOutput](t, mustExecute(t, "calc", "--json"))

	if got.Readings.Left != "1/2" || got.Readings.Top != "2 11/16" {
		t.Errorf("readings = %+v", got.Readings)
	}
	if got.Settings.PaperSize != "8x10" || got.Settings.AspectRatio != "3:2" {
		t.Errorf("settings = %+v", got.Settings)
	}
	for _, w := range got.Warnings {
		if w.Message != nil {
			t.Errorf("unexpected warning %s: %s", w.Category, *w.Message)
		}
	}
}

func TestCalcSubstitutesOversizedBorder(t *testing.T) {
	isolate(t)
	got := decodeJSON[calcOutput](t, mustExecute(t, "calc", "-p", "11x14", "-b", "6", "--json"))

	if got.Geometry.EffectiveBorder != 0.5 {
		t.Errorf("effective border = %v, want 0.5", got.Geometry.EffectiveBorder)
	}
	if got.Settings.MinBorder != 6 {
		t.Errorf("typed border = %v, want 6", got.Settings.MinBorder)
	}
	warned := false
	for _, w := range got.Warnings {
		if w.Message != nil {
			warned = true
		}
	}
	if !warned {
		t.Error("expected a min-border warning")
	}
}

func TestCalcCustomPaperKeepsLandscape(t *testing.T) {
	isolate(t)
	out := mustExecute(t, "calc", "-p", "custom", "--paper-width", "9", "--paper-height", "12", "--landscape", "--json")
	got := decodeJSON[calcOutput](t, out)

	if got.Dimensions.Paper.Width != 12 || got.Dimensions.Paper.Height != 9 {
		t.Errorf("paper = %v, want 12x9", got.Dimensions.Paper)
	}
	if got.Settings.LastValidCustomPaperWidth != 9 {
		t.Errorf("custom width shadow = %v", got.Settings.LastValidCustomPaperWidth)
	}
}

func TestCalcRejectsUnknownSelections(t *testing.T) {
	isolate(t)
	for _, args := range [][]string{
		{"calc", "--paper", "9x9"},
		{"calc", "--ratio", "2:1"},
	} {
		_, err := execute(t, args...)
		if !errors.Is(err, errors.ErrCodeInvalidValue) {
			t.Errorf("%v: err = %v, want INVALID_VALUE", args, err)
		}
	}
}

func TestCalcTableOutput(t *testing.T) {
	isolate(t)
	out := mustExecute(t, "calc")
	for _, want := range []string{"Paper", "8 × 10 in", "Left", "Reading", "2 11/16"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	out = mustExecute(t, "calc", "--no-readings")
	if strings.Contains(out, "Reading") {
		t.Errorf("--no-readings still shows readings:\n%s", out)
	}
}

func TestCalcSaveAndRestore(t *testing.T) {
	isolate(t)
	mustExecute(t, "calc", "-p", "11x14", "-r", "1:1", "-b", "1", "--save")

	got := decodeJSON[calcOutput](t, mustExecute(t, "calc", "--saved", "--json"))
	if got.Settings.PaperSize != "11x14" || got.Settings.AspectRatio != "1:1" || got.Settings.MinBorder != 1 {
		t.Errorf("restored settings = %+v", got.Settings)
	}

	got = decodeJSON[calcOutput](t, mustExecute(t, "state", "show", "--json"))
	if got.Settings.PaperSize != "11x14" {
		t.Errorf("state show paper = %q", got.Settings.PaperSize)
	}

	mustExecute(t, "state", "clear")
	got = decodeJSON[calcOutput](t, mustExecute(t, "state", "show", "--json"))
	if got.Settings.PaperSize != "8x10" {
		t.Errorf("after clear paper = %q, want default", got.Settings.PaperSize)
	}
}

func TestStatePath(t *testing.T) {
	dir := isolate(t)
	out := strings.TrimSpace(mustExecute(t, "state", "path"))
	if !strings.HasPrefix(out, filepath.Join(dir, "easel", "state")) {
		t.Errorf("state path = %q, want under %s", out, dir)
	}
}

func TestShareEncodeDecode(t *testing.T) {
	isolate(t)
	token := strings.TrimSpace(mustExecute(t, "share", "encode", "-n", "Contact", "-p", "5x7", "-b", "0.25"))

	sp, err := settings.DecodeShare(token)
	if err != nil {
		t.Fatalf("DecodeShare: %v", err)
	}
	if sp.Name != "Contact" || sp.Settings.PaperSize != "5x7" {
		t.Errorf("token carries %+v", sp)
	}

	decoded := decodeJSON[struct {
		Name   string     `json:"name"`
		Result calcOutput `json:"result"`
	}](t, mustExecute(t, "share", "decode", token, "--json"))
	if decoded.Name != "Contact" || decoded.Result.Settings.MinBorder != 0.25 {
		t.Errorf("decoded = %+v", decoded)
	}

	got := decodeJSON[calcOutput](t, mustExecute(t, "calc", "--token", token, "-r", "1:1", "--json"))
	if got.Settings.PaperSize != "5x7" || got.Settings.AspectRatio != "1:1" {
		t.Errorf("calc --token settings = %+v", got.Settings)
	}
}

type transitionHooks struct {
	observability.NoopCalculatorHooks
	mu      sync.Mutex
	actions []string
}

func (h *transitionHooks) OnTransition(action string, _ time.Duration, _ error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.actions = append(h.actions, action)
}

func (h *transitionHooks) take() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := h.actions
	h.actions = nil
	return out
}

func TestLoadedSettingsUseBatchUpdate(t *testing.T) {
	isolate(t)
	hooks := &transitionHooks{}
	observability.SetCalculatorHooks(hooks)
	t.Cleanup(observability.Reset)

	token := strings.TrimSpace(mustExecute(t, "share", "encode", "-p", "5x7"))
	mustExecute(t, "preset", "save", "Contact", "-p", "4x5")
	hooks.take()

	for _, args := range [][]string{
		{"calc", "--token", token},
		{"calc", "--preset", "Contact"},
		{"share", "decode", token},
		{"preset", "show", "Contact"},
	} {
		mustExecute(t, args...)
		if got := hooks.take(); !slices.Contains(got, calculator.ActionBatchUpdate) {
			t.Errorf("%v: transitions = %v, want a batch update", args, got)
		}
	}

	mustExecute(t, "calc")
	if got := hooks.take(); slices.Contains(got, calculator.ActionBatchUpdate) {
		t.Errorf("plain calc should not batch-load anything: %v", got)
	}
}

func TestShareDecodeRejectsGarbage(t *testing.T) {
	isolate(t)
	_, err := execute(t, "share", "decode", "not-a-token")
	if !errors.Is(err, errors.ErrCodeInvalidToken) {
		t.Errorf("err = %v, want INVALID_TOKEN", err)
	}
}

func TestPresetLifecycle(t *testing.T) {
	dir := isolate(t)

	mustExecute(t, "preset", "save", "Portfolio", "-p", "11x14", "-r", "1:1", "-b", "1")
	mustExecute(t, "preset", "save", "contact", "-p", "8x10", "-b", "0.25")

	list := decodeJSON[[]settings.SharedPreset](t, mustExecute(t, "preset", "list", "--json"))
	if len(list) != 2 || list[0].Name != "contact" || list[1].Name != "Portfolio" {
		t.Fatalf("list = %+v", list)
	}

	shown := decodeJSON[struct {
		Name  string `json:"name"`
		Token string `json:"token"`
	}](t, mustExecute(t, "preset", "show", "portfolio", "--json"))
	if shown.Name != "Portfolio" || shown.Token == "" {
		t.Errorf("show = %+v", shown)
	}

	got := decodeJSON[calcOutput](t, mustExecute(t, "calc", "--preset", "Portfolio", "--json"))
	if got.Settings.PaperSize != "11x14" {
		t.Errorf("calc --preset paper = %q", got.Settings.PaperSize)
	}

	exported := filepath.Join(dir, "presets.yaml")
	mustExecute(t, "preset", "export", exported)
	if _, err := os.Stat(exported); err != nil {
		t.Fatalf("export: %v", err)
	}

	mustExecute(t, "preset", "apply", "Portfolio")
	got = decodeJSON[calcOutput](t, mustExecute(t, "state", "show", "--json"))
	if got.Settings.AspectRatio != "1:1" {
		t.Errorf("applied ratio = %q", got.Settings.AspectRatio)
	}

	mustExecute(t, "preset", "delete", "Portfolio")
	if _, err := execute(t, "preset", "show", "Portfolio"); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("show after delete: err = %v, want NOT_FOUND", err)
	}

	mustExecute(t, "preset", "import", exported)
	list = decodeJSON[[]settings.SharedPreset](t, mustExecute(t, "preset", "list", "--json"))
	if len(list) != 2 {
		t.Errorf("after import list = %+v", list)
	}
}

func TestPresetSaveRejectsBadName(t *testing.T) {
	isolate(t)
	_, err := execute(t, "preset", "save", "   ")
	if !errors.Is(err, errors.ErrCodeInvalidPreset) {
		t.Errorf("err = %v, want INVALID_PRESET", err)
	}
}

func TestConfigCommands(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "custom.toml")
	if err := os.WriteFile(path, []byte("[defaults]\npaper_size = \"11x14\"\nmin_border = 1\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	if out := strings.TrimSpace(mustExecute(t, "--config", path, "config", "path")); out != path {
		t.Errorf("config path = %q, want %q", out, path)
	}

	out := mustExecute(t, "--config", path, "config", "show")
	if !strings.Contains(out, "[solver]") || !strings.Contains(out, `paper_size = "11x14"`) {
		t.Errorf("config show:\n%s", out)
	}

	got := decodeJSON[calcOutput](t, mustExecute(t, "--config", path, "calc", "--json"))
	if got.Settings.PaperSize != "11x14" || got.Settings.MinBorder != 1 {
		t.Errorf("config defaults not applied: %+v", got.Settings)
	}

	if _, err := execute(t, "--config", filepath.Join(dir, "missing.toml"), "calc"); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("missing explicit config: err = %v", err)
	}
}

func TestCompletion(t *testing.T) {
	isolate(t)
	out := mustExecute(t, "completion", "bash")
	if !strings.Contains(out, "easel") {
		t.Error("bash completion should mention easel")
	}
	if _, err := execute(t, "completion", "tcsh"); err == nil {
		t.Error("unsupported shell should fail")
	}
}

func TestCompletesTableValuesAndPresets(t *testing.T) {
	isolate(t)

	out := mustExecute(t, "__complete", "calc", "--paper", "1")
	if !strings.Contains(out, "11x14") || !strings.Contains(out, "16x20") || strings.Contains(out, "4x5") {
		t.Errorf("paper completion:\n%s", out)
	}

	out = mustExecute(t, "__complete", "share", "encode", "--ratio", "")
	if !strings.Contains(out, "3:2") || !strings.Contains(out, "custom") {
		t.Errorf("ratio completion:\n%s", out)
	}

	mustExecute(t, "preset", "save", "Portfolio", "-p", "11x14")
	mustExecute(t, "preset", "save", "contact")

	out = mustExecute(t, "__complete", "preset", "show", "po")
	if !strings.Contains(out, "Portfolio") || strings.Contains(out, "contact") {
		t.Errorf("preset name completion:\n%s", out)
	}
	out = mustExecute(t, "__complete", "calc", "--preset", "")
	if !strings.Contains(out, "Portfolio") || !strings.Contains(out, "contact") {
		t.Errorf("--preset completion:\n%s", out)
	}
}
