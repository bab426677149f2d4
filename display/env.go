package display

import "os"

// agentEnvVars are set by coding agents that shell out to pact. Any of them
// present means a machine is reading our output.
var agentEnvVars = []string{
	"CLAUDECODE",
	"CLAUDE_CODE_ENTRYPOINT",
	"CURSOR",
	"GITHUB_COPILOT",
}

// IsMachineEnvironment returns true when output is being consumed by a
// machine caller (an agent or script) rather than a person at a terminal.
func IsMachineEnvironment() bool {
	if os.Getenv("PACT_CALLER") == "llm" {
		return true
	}
	for _, name := range agentEnvVars {
		if os.Getenv(name) != "" {
			return true
		}
	}
	return false
}

// ShouldDisableColor reports whether styled output should drop its colors,
// honoring the NO_COLOR convention alongside machine detection.
func ShouldDisableColor() bool {
	return os.Getenv("NO_COLOR") != "" || IsMachineEnvironment()
}
