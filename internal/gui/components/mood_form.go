package components

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

const (
	MoodPlaceholder     = "Enter your mood"
	CheckoutPlaceholder = "Enter checkout time (YYYY-MM-DD HH:MM)"
	GenerateLabel       = "Generate Visual"
)

// MoodForm collects the mood text and checkout time.
type MoodForm struct {
	container      *fyne.Container
	MoodEntry      *widget.Entry
	CheckoutEntry  *widget.Entry
	GenerateButton *widget.Button
	progressBar    *widget.ProgressBarInfinite

	generateHandler func(moodText, checkoutTime string)
}

func NewMoodForm() *MoodForm {
	form := &MoodForm{}
	form.setupControls()
	return form
}

func (f *MoodForm) setupControls() {
	f.MoodEntry = widget.NewMultiLineEntry()
	f.MoodEntry.SetPlaceHolder(MoodPlaceholder)
	f.MoodEntry.Wrapping = fyne.TextWrapWord
	f.MoodEntry.SetMinRowsVisible(2)

	f.CheckoutEntry = widget.NewEntry()
	f.CheckoutEntry.SetPlaceHolder(CheckoutPlaceholder)

	f.GenerateButton = widget.NewButton(GenerateLabel, f.onGenerate)
	f.GenerateButton.Importance = widget.HighImportance

	f.progressBar = widget.NewProgressBarInfinite()
	f.progressBar.Stop()
	f.progressBar.Hide()

	f.container = container.NewVBox(
		f.MoodEntry,
		f.CheckoutEntry,
		f.GenerateButton,
		f.progressBar,
	)
}

func (f *MoodForm) GetContainer() *fyne.Container {
	return f.container
}

func (f *MoodForm) SetGenerateHandler(handler func(moodText, checkoutTime string)) {
	f.generateHandler = handler
}

func (f *MoodForm) onGenerate() {
	if f.generateHandler != nil {
		f.generateHandler(f.MoodEntry.Text, f.CheckoutEntry.Text)
	}
}

// SetBusy disables the button and shows the spinner while a run is active.
func (f *MoodForm) SetBusy(busy bool) {
	if busy {
		f.GenerateButton.Disable()
		f.progressBar.Show()
		f.progressBar.Start()
		return
	}
	f.GenerateButton.Enable()
	f.progressBar.Stop()
	f.progressBar.Hide()
}

func (f *MoodForm) IsBusy() bool {
	return f.GenerateButton.Disabled()
}
