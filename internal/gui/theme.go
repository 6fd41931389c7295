package gui

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
)

// canvasTheme is a dark theme with a blue-gray accent.
type canvasTheme struct {
	base fyne.Theme
}

func NewTheme() fyne.Theme {
	return &canvasTheme{base: theme.DefaultTheme()}
}

func (t *canvasTheme) Color(name fyne.ThemeColorName, _ fyne.ThemeVariant) color.Color {
	switch name {
	case theme.ColorNameBackground:
		return color.NRGBA{R: 0x00, G: 0x00, B: 0x00, A: 0xff}
	case theme.ColorNameButton:
		return color.NRGBA{R: 0x37, G: 0x47, B: 0x4f, A: 0xff}
	case theme.ColorNamePrimary, theme.ColorNameFocus:
		return color.NRGBA{R: 0x60, G: 0x7d, B: 0x8b, A: 0xff}
	case theme.ColorNameInputBackground:
		return color.NRGBA{R: 0x26, G: 0x32, B: 0x38, A: 0xff}
	case theme.ColorNameForeground, theme.ColorNamePlaceHolder:
		return color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	}
	return t.base.Color(name, theme.VariantDark)
}

func (t *canvasTheme) Font(style fyne.TextStyle) fyne.Resource {
	return t.base.Font(style)
}

func (t *canvasTheme) Icon(name fyne.ThemeIconName) fyne.Resource {
	return t.base.Icon(name)
}

func (t *canvasTheme) Size(name fyne.ThemeSizeName) float32 {
	return t.base.Size(name)
}
