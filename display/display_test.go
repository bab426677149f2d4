package display

import (
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

// clearAgentEnv blanks every env var the machine-caller detection reads.
func clearAgentEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PACT_CALLER", "CLAUDECODE", "CLAUDE_CODE_ENTRYPOINT",
		"CURSOR", "GITHUB_COPILOT", "NO_COLOR",
	} {
		t.Setenv(key, "")
	}
}

func TestIsMachineEnvironment(t *testing.T) {
	clearAgentEnv(t)
	if IsMachineEnvironment() {
		t.Error("expected human environment with no agent vars set")
	}

	t.Setenv("PACT_CALLER", "llm")
	if !IsMachineEnvironment() {
		t.Error("expected machine environment with PACT_CALLER=llm")
	}

	t.Setenv("PACT_CALLER", "")
	t.Setenv("CLAUDECODE", "1")
	if !IsMachineEnvironment() {
		t.Error("expected machine environment with agent tool var set")
	}
}

func TestShouldDisableColor(t *testing.T) {
	clearAgentEnv(t)
	if ShouldDisableColor() {
		t.Error("expected color enabled in a plain environment")
	}

	t.Setenv("NO_COLOR", "1")
	if !ShouldDisableColor() {
		t.Error("expected NO_COLOR to disable color")
	}
}

func TestMarshalJSON(t *testing.T) {
	payload := map[string]int{"score": 85}

	clearAgentEnv(t)
	pretty, err := MarshalJSON(payload)
	if err != nil {
		t.Fatalf("MarshalJSON() failed: %v", err)
	}
	if !strings.Contains(string(pretty), "\n") {
		t.Errorf("expected indented output for humans, got %q", pretty)
	}

	t.Setenv("PACT_CALLER", "llm")
	compact, err := MarshalJSON(payload)
	if err != nil {
		t.Fatalf("MarshalJSON() failed: %v", err)
	}
	if strings.Contains(string(compact), "\n") {
		t.Errorf("expected compact output for machine callers, got %q", compact)
	}
}

func newJSONCommand() *cobra.Command {
	root := &cobra.Command{Use: "pact"}
	root.PersistentFlags().Bool("json", false, "output as JSON")
	child := &cobra.Command{Use: "show", Run: func(*cobra.Command, []string) {}}
	child.Flags().Bool("json", false, "output as JSON")
	root.AddCommand(child)
	return child
}

func TestShouldOutputJSON(t *testing.T) {
	clearAgentEnv(t)

	t.Run("nil command follows environment", func(t *testing.T) {
		if ShouldOutputJSON(nil) {
			t.Error("expected human output for nil command in plain environment")
		}
		t.Setenv("PACT_CALLER", "llm")
		if !ShouldOutputJSON(nil) {
			t.Error("expected JSON for nil command in machine environment")
		}
	})

	t.Run("explicit flag wins", func(t *testing.T) {
		cmd := newJSONCommand()
		cmd.Flags().Set("json", "true")
		if !ShouldOutputJSON(cmd) {
			t.Error("expected JSON with --json set")
		}

		// Explicit --json=false beats the machine environment default
		t.Setenv("PACT_CALLER", "llm")
		cmd = newJSONCommand()
		cmd.Flags().Set("json", "false")
		if ShouldOutputJSON(cmd) {
			t.Error("expected human output with explicit --json=false")
		}
	})

	t.Run("global persistent flag", func(t *testing.T) {
		t.Setenv("PACT_CALLER", "")
		cmd := newJSONCommand()
		cmd.Root().PersistentFlags().Set("json", "true")
		if !ShouldOutputJSON(cmd) {
			t.Error("expected JSON with global --json set")
		}
	})

	t.Run("no flags defaults to environment", func(t *testing.T) {
		t.Setenv("PACT_CALLER", "")
		cmd := newJSONCommand()
		if ShouldOutputJSON(cmd) {
			t.Error("expected human output with no flags in plain environment")
		}
	})
}
