//go:build darwin

package display

import (
	"fmt"
	"os/exec"
)

// displayNames returns display names in OS order, main display first.
func displayNames() ([]string, error) {
	out, err := exec.Command("system_profiler", "SPDisplaysDataType", "-json").Output()
	if err != nil {
		return nil, fmt.Errorf("failed to run system_profiler: %w", err)
	}
	profiled, err := parseSystemProfiler(out)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(profiled))
	for i, pd := range profiled {
		names[i] = pd.Name
	}
	return names, nil
}
