package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// resetFlags puts every flag of c and its children back to its default so
// consecutive Execute calls do not leak state into each other.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, child := range c.Commands() {
		resetFlags(child)
	}
}

// executeCommand runs the root command with args and returns what it
// printed to stdout and stderr.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	t.Setenv("GPT_WEB_API_BASE_URL", "")
	t.Setenv("GPT_WEB_UID", "")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()
	return out.String(), err
}

// inDataDir prefixes args with a --data-dir flag pointing at dir
func inDataDir(dir string, args ...string) []string {
	return append(append([]string{}, args...), "--data-dir", dir)
}

func TestRootCommand(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    string
		wantErr bool
	}{
		{
			name: "version flag",
			args: []string{"--version"},
			want: "commit:",
		},
		{
			name: "help flag",
			args: []string{"--help"},
			want: "Quick Start",
		},
		{
			name:    "unknown command",
			args:    []string{"nonexistent-command"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := executeCommand(t, tt.args...)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Execute() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.want != "" && !strings.Contains(out, tt.want) {
				t.Errorf("output = %q, want it to contain %q", out, tt.want)
			}
		})
	}
}

func TestRootCommand_SubcommandsRegistered(t *testing.T) {
	want := []string{"add", "list", "show", "delete", "export", "import", "chat", "close", "healthcheck", "inspect"}
	registered := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		registered[c.Name()] = true
	}
	for _, name := range want {
		if !registered[name] {
			t.Errorf("command %q not registered", name)
		}
	}
}

func TestRootCommand_DataDirFlag(t *testing.T) {
	dir := t.TempDir()

	if _, err := executeCommand(t, inDataDir(dir, "add", "--text", "hello", "--time", "1")...); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	if cfg == nil || cfg.DataDir != dir {
		t.Fatalf("config data dir = %v, want %s", cfg, dir)
	}
	paths, err := cfg.Paths()
	if err != nil {
		t.Fatalf("Paths() error = %v", err)
	}
	if !paths.DatabaseExists() {
		t.Errorf("database was not created at %s", paths.DatabasePath)
	}
}

func TestRootCommand_DBNameFlag(t *testing.T) {
	dir := t.TempDir()

	if _, err := executeCommand(t, inDataDir(dir, "add", "--text", "a", "--time", "1", "--db-name", "other")...); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	out, err := executeCommand(t, inDataDir(dir, "list", "--json")...)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if strings.TrimSpace(out) != "" {
		t.Errorf("default database should be empty, got %q", out)
	}

	out, err = executeCommand(t, inDataDir(dir, "list", "--json", "--db-name", "other")...)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if !strings.Contains(out, `"text":"a"`) {
		t.Errorf("other database output = %q", out)
	}
}
