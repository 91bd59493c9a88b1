package ffmpeg

import (
	"fmt"
	"strings"

	"cascii/internal/services"
)

// PreprocessPreset is a named ffmpeg filter chain applied ahead of frame
// extraction.
type PreprocessPreset struct {
	Name        string
	Description string
	Filter      string
}

// PreprocessPresets lists the shipped extraction looks, monochrome first.
var PreprocessPresets = []PreprocessPreset{
	{
		Name:        "contours",
		Description: "Grayscale edge-detection with strong contrast (good for outlines).",
		Filter:      "format=gray,edgedetect=mode=colormix:high=0.2:low=0.05,eq=contrast=2.5:brightness=-0.1",
	},
	{
		Name:        "contours-soft",
		Description: "Softer contour extraction with less aggressive edges.",
		Filter:      "format=gray,edgedetect=mode=colormix:high=0.12:low=0.03,eq=contrast=2.0:brightness=-0.05",
	},
	{
		Name:        "contours-strong",
		Description: "Very sharp contour extraction for bold linework.",
		Filter:      "format=gray,edgedetect=mode=colormix:high=0.35:low=0.08,eq=contrast=3.2:brightness=-0.12",
	},
	{
		Name:        "bw-contrast",
		Description: "Simple grayscale + contrast boost for clean monochrome output.",
		Filter:      "format=gray,eq=contrast=2.2:brightness=-0.08",
	},
	{
		Name:        "noir-detail",
		Description: "Grayscale sharpened look that emphasizes texture.",
		Filter:      "format=gray,unsharp=5:5:1.0:5:5:0.0,eq=contrast=1.8:brightness=-0.04",
	},
	{
		Name:        "vivid",
		Description: "Boost color saturation/contrast and sharpen for colorful output.",
		Filter:      "eq=saturation=1.8:contrast=1.2:brightness=0.02,unsharp=5:5:0.8:5:5:0.0",
	},
	{
		Name:        "warm-pop",
		Description: "Warmer color balance with moderate saturation boost.",
		Filter:      "colorbalance=rs=0.06:gs=0.02:bs=-0.04,eq=saturation=1.35:contrast=1.12",
	},
	{
		Name:        "cool-pop",
		Description: "Cooler color balance with moderate saturation boost.",
		Filter:      "colorbalance=rs=-0.04:gs=0.02:bs=0.07,eq=saturation=1.28:contrast=1.10",
	},
	{
		Name:        "soft-glow",
		Description: "Gentle blur and color lift for smoother gradients.",
		Filter:      "gblur=sigma=1.0,eq=saturation=1.15:contrast=1.08:brightness=0.02",
	},
}

// FindPreprocessPreset looks a preset up by case-insensitive name.
func FindPreprocessPreset(name string) (PreprocessPreset, bool) {
	for _, preset := range PreprocessPresets {
		if strings.EqualFold(preset.Name, name) {
			return preset, true
		}
	}
	return PreprocessPreset{}, false
}

// ResolvePreprocessFilter picks the extraction filter: an explicit filter
// string wins over a preset name; neither yields an empty chain. An unknown
// preset name fails and lists what ships.
func ResolvePreprocessFilter(filter, presetName string) (string, error) {
	if trimmed := strings.TrimSpace(filter); filter != "" {
		if trimmed == "" {
			return "", services.Wrap(services.ErrConfiguration, "ffmpeg", "resolve preprocess",
				"preprocess filter cannot be blank", nil)
		}
		return trimmed, nil
	}
	if presetName == "" {
		return "", nil
	}
	preset, ok := FindPreprocessPreset(strings.TrimSpace(presetName))
	if !ok {
		names := make([]string, len(PreprocessPresets))
		for i, p := range PreprocessPresets {
			names[i] = p.Name
		}
		return "", services.Wrap(services.ErrConfiguration, "ffmpeg", "resolve preprocess",
			fmt.Sprintf("unknown preprocessing preset %q, available: %s", presetName, strings.Join(names, ", ")), nil)
	}
	return preset.Filter, nil
}
