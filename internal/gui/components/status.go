package components

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

type StatusBar struct {
	container   *fyne.Container
	statusLabel *widget.Label
	factorLabel *widget.Label
	SaveButton  *widget.Button

	saveHandler func()
}

func NewStatusBar() *StatusBar {
	sb := &StatusBar{
		statusLabel: widget.NewLabel("Ready"),
		factorLabel: widget.NewLabel("Factor: --"),
	}
	sb.SaveButton = widget.NewButton("Save As...", sb.onSave)
	sb.SaveButton.Disable()

	sb.container = container.NewBorder(
		nil, nil,
		sb.statusLabel,
		container.NewHBox(sb.factorLabel, widget.NewSeparator(), sb.SaveButton),
	)
	return sb
}

func (sb *StatusBar) GetContainer() *fyne.Container {
	return sb.container
}

func (sb *StatusBar) SetStatus(status string) {
	sb.statusLabel.SetText(status)
}

func (sb *StatusBar) Status() string {
	return sb.statusLabel.Text
}

func (sb *StatusBar) SetFactor(factor float64) {
	sb.factorLabel.SetText(fmt.Sprintf("Factor: %.3f", factor))
}

func (sb *StatusBar) SetSaveHandler(handler func()) {
	sb.saveHandler = handler
}

func (sb *StatusBar) SetSaveEnabled(enabled bool) {
	if enabled {
		sb.SaveButton.Enable()
	} else {
		sb.SaveButton.Disable()
	}
}

func (sb *StatusBar) onSave() {
	if sb.saveHandler != nil {
		sb.saveHandler()
	}
}
