package display

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
)

var (
	// resolutionRegex matches strings like "3456 x 2234" or "2880 x 1864 Retina" or "1710 x 1107 @ 60.00Hz"
	resolutionRegex = regexp.MustCompile(`(\d+)\s*x\s*(\d+)`)
)

// systemProfilerOutput represents the nested structure of system_profiler -json
type systemProfilerOutput struct {
	Displays []gpuInfo `json:"SPDisplaysDataType"`
}

type gpuInfo struct {
	NDRVs []displayInfo `json:"spdisplays_ndrvs"`
}

type displayInfo struct {
	Name       string `json:"_name"`             // e.g. "Color LCD"
	Resolution string `json:"_spdisplays_pixels"` // e.g. "3420 x 2214"
	Main       string `json:"spdisplays_main"`    // "spdisplays_yes"
}

// profiledDisplay is one display as reported by system_profiler.
type profiledDisplay struct {
	Name   string
	Width  int
	Height int
	Main   bool
}

// parseSystemProfiler decodes `system_profiler SPDisplaysDataType -json`.
// The main display is moved to the front to match the OS display order.
func parseSystemProfiler(data []byte) ([]profiledDisplay, error) {
	var profiler systemProfilerOutput
	if err := json.Unmarshal(data, &profiler); err != nil {
		return nil, fmt.Errorf("decoding system_profiler JSON: %w", err)
	}

	var out []profiledDisplay
	for _, gpu := range profiler.Displays {
		for _, info := range gpu.NDRVs {
			pd := profiledDisplay{
				Name: info.Name,
				Main: info.Main == "spdisplays_yes",
			}
			if w, h, err := parseResolutionString(info.Resolution); err == nil {
				pd.Width, pd.Height = w, h
			}
			if pd.Main {
				out = append([]profiledDisplay{pd}, out...)
			} else {
				out = append(out, pd)
			}
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no displays found in system_profiler output")
	}
	return out, nil
}

func parseResolutionString(s string) (int, int, error) {
	matches := resolutionRegex.FindStringSubmatch(s)
	if len(matches) < 3 {
		return 0, 0, fmt.Errorf("failed to parse resolution from string: %s", s)
	}

	width, errW := strconv.Atoi(matches[1])
	height, errH := strconv.Atoi(matches[2])

	if errW != nil || errH != nil {
		return 0, 0, fmt.Errorf("failed to convert dimensions: %v, %v", errW, errH)
	}

	return width, height, nil
}
