package sink

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Theme controls SVG appearance.
type Theme struct {
	Font   FontTheme   `yaml:"font"`
	Colors ColorTheme  `yaml:"colors"`
	Layout LayoutTheme `yaml:"layout"`
}

// FontTheme sets the text font.
type FontTheme struct {
	Family string `yaml:"family"`
	Size   int    `yaml:"size"` // base size in pixels
}

// ColorTheme sets fill and stroke colors (any SVG color value).
type ColorTheme struct {
	Background  string            `yaml:"background"`
	Grid        string            `yaml:"grid"`
	Text        string            `yaml:"text"`
	BookingText string            `yaml:"booking_text"`
	Section     string            `yaml:"section"`
	Band        string            `yaml:"band"`
	Status      map[string]string `yaml:"status"`  // fill per booking status
	Palette     []string          `yaml:"palette"` // fills when coloring by client or vendor
}

// LayoutTheme sets sizes in pixels.
type LayoutTheme struct {
	Width         int `yaml:"width"`
	Margin        int `yaml:"margin"`
	LabelWidth    int `yaml:"label_width"`
	HeaderHeight  int `yaml:"header_height"`
	SectionHeight int `yaml:"section_height"`
	LaneHeight    int `yaml:"lane_height"`
	LaneGap       int `yaml:"lane_gap"`
	BandPadding   int `yaml:"band_padding"`
}

// DefaultTheme returns the built-in theme.
func DefaultTheme() Theme {
	return Theme{
		Font: FontTheme{Family: "Helvetica, Arial, sans-serif", Size: 12},
		Colors: ColorTheme{
			Background:  "#ffffff",
			Grid:        "#e2e2e2",
			Text:        "#222222",
			BookingText: "#ffffff",
			Section:     "#404040",
			Band:        "#f7f7f7",
			Status: map[string]string{
				"confirmed": "#2f7d4f",
				"option":    "#d08c1f",
				"cancelled": "#a0a0a0",
			},
			Palette: []string{"#4c72b0", "#dd8452", "#55a868", "#c44e52", "#8172b3", "#937860", "#da8bc3", "#8c8c8c", "#ccb974", "#64b5cd"},
		},
		Layout: LayoutTheme{
			Width:         1200,
			Margin:        16,
			LabelWidth:    220,
			HeaderHeight:  48,
			SectionHeight: 28,
			LaneHeight:    22,
			LaneGap:       4,
			BandPadding:   6,
		},
	}
}

// defaultFill is used for statuses missing from the theme.
const defaultFill = "#4c72b0"

// LoadTheme reads a YAML theme file on top of DefaultTheme. An empty path
// returns DefaultTheme.
func LoadTheme(path string) (Theme, error) {
	theme := DefaultTheme()
	if path == "" {
		return theme, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Theme{}, fmt.Errorf("read theme: %w", err)
	}
	if err := yaml.Unmarshal(data, &theme); err != nil {
		return Theme{}, fmt.Errorf("parse theme %s: %w", path, err)
	}
	if err := theme.Validate(); err != nil {
		return Theme{}, fmt.Errorf("theme %s: %w", path, err)
	}
	return theme, nil
}

// Validate checks that sizes leave room to draw.
func (t Theme) Validate() error {
	l := t.Layout
	switch {
	case l.Width <= l.LabelWidth+2*l.Margin+12:
		return fmt.Errorf("width %d too small for label width %d", l.Width, l.LabelWidth)
	case l.LaneHeight <= 0:
		return fmt.Errorf("lane_height must be positive")
	case t.Font.Size <= 0:
		return fmt.Errorf("font size must be positive")
	case l.Margin < 0 || l.LaneGap < 0 || l.BandPadding < 0:
		return fmt.Errorf("margins and gaps must not be negative")
	}
	return nil
}
