package main

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mqlite/internal/queue"
)

type cliTestEnv struct {
	configPath string
	storePath  string
	baseDir    string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	t.Setenv("HOME", filepath.Join(base, "home"))
	t.Setenv("MQLITE_STORE_PATH", "")

	env := &cliTestEnv{
		configPath: filepath.Join(base, "mqlite.toml"),
		storePath:  filepath.Join(base, "data", "queue.db"),
		baseDir:    base,
	}
	writeTestConfig(t, env.configPath, env.storePath, "queue")
	return env
}

func writeTestConfig(t *testing.T, path, storePath, mode string) {
	t.Helper()
	content := "[store]\npath = \"" + storePath + "\"\nmode = \"" + mode + "\"\n\n[logging]\nlevel = \"error\"\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func runCLI(t *testing.T, args []string, configPath, stdin string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr strings.Builder
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

func TestPublishGetRoundTrip(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"publish", "--topic", "jobs", "--format", "json", `{"id":7}`}, env.configPath, "")
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	id := strings.TrimSpace(out)
	if len(id) != 36 {
		t.Fatalf("expected uuid output, got %q", out)
	}

	out, _, err = runCLI(t, []string{"--json", "get", "--topic", "jobs", "--limit", "5"}, env.configPath, "")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	var views []messageView
	if err := json.Unmarshal([]byte(out), &views); err != nil {
		t.Fatalf("decode get output: %v (%q)", err, out)
	}
	if len(views) != 1 || views[0].UUID != id || views[0].Format != "json" {
		t.Fatalf("unexpected messages %+v", views)
	}
	if body, ok := views[0].Payload.(map[string]any); !ok || body["id"] != float64(7) {
		t.Fatalf("payload should be stored as JSON object, got %#v", views[0].Payload)
	}

	out, _, err = runCLI(t, []string{"get", "--topic", "jobs"}, env.configPath, "")
	if err != nil {
		t.Fatalf("second get: %v", err)
	}
	requireContains(t, out, "No messages")
}

func TestPublishFromStdinAndPeek(t *testing.T) {
	env := setupCLITestEnv(t)

	if _, _, err := runCLI(t, []string{"publish", "-t", "logs"}, env.configPath, "line from stdin\n"); err != nil {
		t.Fatalf("publish: %v", err)
	}

	for i := 0; i < 2; i++ {
		out, _, err := runCLI(t, []string{"peek", "--topic", "logs"}, env.configPath, "")
		if err != nil {
			t.Fatalf("peek %d: %v", i, err)
		}
		requireContains(t, out, "line from stdin")
		requireContains(t, out, "1 message(s)")
	}
}

func TestPublishRejectsInvalidJSON(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, []string{"publish", "--format", "json", "{not json"}, env.configPath, "")
	if err == nil || !strings.Contains(err.Error(), "not valid JSON") {
		t.Fatalf("expected JSON validation error, got %v", err)
	}
}

func TestStatsCommand(t *testing.T) {
	env := setupCLITestEnv(t)
	for _, topic := range []string{"a", "a", "b"} {
		if _, _, err := runCLI(t, []string{"publish", "--topic", topic, "x"}, env.configPath, ""); err != nil {
			t.Fatalf("publish: %v", err)
		}
	}

	out, _, err := runCLI(t, []string{"--json", "stats"}, env.configPath, "")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	var payload struct {
		Mode   string         `json:"mode"`
		Topics map[string]int `json:"topics"`
	}
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if payload.Mode != "queue" || payload.Topics["a"] != 2 || payload.Topics["b"] != 1 {
		t.Fatalf("unexpected stats %+v", payload)
	}

	out, _, err = runCLI(t, []string{"stats"}, env.configPath, "")
	if err != nil {
		t.Fatalf("stats table: %v", err)
	}
	requireContains(t, out, "Total")
}

func TestStoreFlagOverridesConfig(t *testing.T) {
	env := setupCLITestEnv(t)
	other := filepath.Join(env.baseDir, "other", "queue.db")

	if _, _, err := runCLI(t, []string{"--store", other, "publish", "x"}, env.configPath, ""); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if _, err := os.Stat(other); err != nil {
		t.Fatalf("expected store at %s: %v", other, err)
	}
	if _, err := os.Stat(env.storePath); !os.IsNotExist(err) {
		t.Fatalf("configured store should be untouched, stat err=%v", err)
	}
}

func TestDoctorCommand(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"doctor"}, env.configPath, "")
	if err != nil {
		t.Fatalf("doctor: %v\n%s", err, out)
	}
	requireContains(t, out, "Store directory:")
	requireContains(t, out, "[OK]")
}

func TestMetricsTextfile(t *testing.T) {
	env := setupCLITestEnv(t)
	promPath := filepath.Join(env.baseDir, "prom", "mqlite.prom")
	content := "[store]\npath = \"" + env.storePath + "\"\n\n[logging]\nlevel = \"error\"\n\n[metrics]\nenabled = true\ntextfile = \"" + promPath + "\"\n"
	if err := os.WriteFile(env.configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, _, err := runCLI(t, []string{"publish", "--topic", "m", "x"}, env.configPath, ""); err != nil {
		t.Fatalf("publish: %v", err)
	}
	data, err := os.ReadFile(promPath)
	if err != nil {
		t.Fatalf("read metrics textfile: %v", err)
	}
	requireContains(t, string(data), `mqlite_messages_pushed_total{topic="m"} 1`)
}

func TestConfigInitShowValidate(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"config", "validate"}, env.configPath, "")
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")

	target := filepath.Join(t.TempDir(), "config.toml")
	out, _, err = runCLI(t, []string{"config", "init", target}, "", "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, _, err := runCLI(t, []string{"config", "init", target}, "", ""); err == nil {
		t.Fatal("expected error when config already exists")
	}

	out, _, err = runCLI(t, []string{"config", "show"}, env.configPath, "")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	requireContains(t, out, env.storePath)
	requireContains(t, out, "[store]")
}

func TestLockedStoreSuggestsRetry(t *testing.T) {
	env := setupCLITestEnv(t)
	if err := os.MkdirAll(filepath.Dir(env.storePath), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	holder := queue.New(queue.WithPath(env.storePath))
	if err := holder.Listen(context.Background()); err != nil {
		t.Fatalf("Listen: %v", err)
	}
	t.Cleanup(func() { _ = holder.Close() })

	_, _, err := runCLI(t, []string{"stats"}, env.configPath, "")
	if !errors.Is(err, queue.ErrStoreLocked) {
		t.Fatalf("expected ErrStoreLocked, got %v", err)
	}
	requireContains(t, errorMessage(err), "retry the command")

	if msg := errorMessage(errors.New("bad flag")); strings.Contains(msg, "hint:") {
		t.Fatalf("unexpected hint for %q", msg)
	}
}
