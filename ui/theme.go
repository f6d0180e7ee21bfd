package ui

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
)

// appTheme scales the default theme's text sizes to the configured font size
// and pins the light or dark variant
type appTheme struct {
	fontSize float32
	variant  fyne.ThemeVariant
	base     fyne.Theme
}

func newAppTheme(fontSize int, dark bool) fyne.Theme {
	variant := theme.VariantLight
	if dark {
		variant = theme.VariantDark
	}
	if fontSize <= 0 {
		fontSize = int(theme.DefaultTheme().Size(theme.SizeNameText))
	}
	return &appTheme{fontSize: float32(fontSize), variant: variant, base: theme.DefaultTheme()}
}

func (t *appTheme) Color(name fyne.ThemeColorName, _ fyne.ThemeVariant) color.Color {
	// keep read-only transcript text legible
	if name == theme.ColorNameDisabled {
		return t.base.Color(theme.ColorNameForeground, t.variant)
	}
	return t.base.Color(name, t.variant)
}

func (t *appTheme) Font(style fyne.TextStyle) fyne.Resource {
	return t.base.Font(style)
}

func (t *appTheme) Icon(name fyne.ThemeIconName) fyne.Resource {
	return t.base.Icon(name)
}

func (t *appTheme) Size(name fyne.ThemeSizeName) float32 {
	switch name {
	case theme.SizeNameText:
		return t.fontSize
	case theme.SizeNameHeadingText:
		return t.fontSize * 1.5
	case theme.SizeNameSubHeadingText:
		return t.fontSize * 1.2
	case theme.SizeNameCaptionText:
		return t.fontSize * 0.85
	default:
		return t.base.Size(name)
	}
}
