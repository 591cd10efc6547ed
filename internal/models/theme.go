package models

// ThemeMode selects one of the color palettes
type ThemeMode string

const (
	ThemeLight ThemeMode = "light"
	ThemeDark  ThemeMode = "dark"
)

// Palette is the color lookup table for a theme mode
type Palette struct {
	Primary       string `json:"primary"`
	PrimaryDark   string `json:"primaryDark"`
	PrimaryLight  string `json:"primaryLight"`
	TextPrimary   string `json:"textPrimary"`
	TextSecondary string `json:"textSecondary"`
	TextOnPrimary string `json:"textOnPrimary"`
	Background    string `json:"background"`
	BackgroundDim string `json:"backgroundDisabled"`
	Border        string `json:"border"`
	Error         string `json:"error"`
	Warning       string `json:"warning"`
	Success       string `json:"success"`
	Info          string `json:"info"`
}

// Spacing is the layout spacing scale shared by both themes
type Spacing struct {
	XS int `json:"xs"`
	SM int `json:"sm"`
	MD int `json:"md"`
	LG int `json:"lg"`
	XL int `json:"xl"`
}

var palettes = map[ThemeMode]Palette{
	ThemeLight: {
		Primary:       "#007AFF",
		PrimaryDark:   "#0056CC",
		PrimaryLight:  "#4DA3FF",
		TextPrimary:   "#1C1C1E",
		TextSecondary: "#8E8E93",
		TextOnPrimary: "#FFFFFF",
		Background:    "#FFFFFF",
		BackgroundDim: "#F2F2F7",
		Border:        "#C6C6C8",
		Error:         "#FF3B30",
		Warning:       "#FF9500",
		Success:       "#34C759",
		Info:          "#5AC8FA",
	},
	ThemeDark: {
		Primary:       "#0A84FF",
		PrimaryDark:   "#0060DF",
		PrimaryLight:  "#409CFF",
		TextPrimary:   "#F2F2F7",
		TextSecondary: "#98989F",
		TextOnPrimary: "#FFFFFF",
		Background:    "#000000",
		BackgroundDim: "#1C1C1E",
		Border:        "#38383A",
		Error:         "#FF453A",
		Warning:       "#FF9F0A",
		Success:       "#30D158",
		Info:          "#64D2FF",
	},
}

// DefaultSpacing is the spacing scale used by every screen
var DefaultSpacing = Spacing{XS: 4, SM: 8, MD: 16, LG: 24, XL: 32}

// Valid reports whether m names a known palette
func (m ThemeMode) Valid() bool {
	_, ok := palettes[m]
	return ok
}

// PaletteFor returns the palette for a mode, falling back to light
func PaletteFor(m ThemeMode) Palette {
	if p, ok := palettes[m]; ok {
		return p
	}
	return palettes[ThemeLight]
}
