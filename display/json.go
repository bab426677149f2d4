package display

import (
	"encoding/json"
)

// MarshalJSON marshals JSON with compact formatting for machine callers,
// pretty formatting for human-readable output
func MarshalJSON(v interface{}) ([]byte, error) {
	if IsMachineEnvironment() {
		return json.Marshal(v)
	}

	// Pretty formatting for human consumption
	return json.MarshalIndent(v, "", "  ")
}
