package components

import (
	"fmt"
	"os"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"mood-canvas/internal/palette"
)

const (
	ImageAreaWidth  = 666
	ImageAreaHeight = 456
	SwatchSize      = 28
)

// ImageDisplay shows the generated image, hidden until there is one, plus
// swatches for the mood color and the collapsed output color.
type ImageDisplay struct {
	container   *fyne.Container
	image       *canvas.Image
	moodSwatch  *canvas.Rectangle
	moodLabel   *widget.Label
	outSwatch   *canvas.Rectangle
	outLabel    *widget.Label
	description *widget.Label
	path        string
}

func NewImageDisplay() *ImageDisplay {
	display := &ImageDisplay{}
	display.createComponents()
	display.setupLayout()
	return display
}

func (d *ImageDisplay) createComponents() {
	d.image = canvas.NewImageFromFile("")
	d.image.FillMode = canvas.ImageFillContain
	d.image.ScaleMode = canvas.ImageScaleSmooth
	d.image.SetMinSize(fyne.NewSize(ImageAreaWidth, ImageAreaHeight))
	d.image.Hide()

	d.moodSwatch = canvas.NewRectangle(palette.Fallback.NRGBA())
	d.moodSwatch.SetMinSize(fyne.NewSize(SwatchSize, SwatchSize))
	d.moodLabel = widget.NewLabel("Mood: --")

	d.outSwatch = canvas.NewRectangle(palette.Fallback.NRGBA())
	d.outSwatch.SetMinSize(fyne.NewSize(SwatchSize, SwatchSize))
	d.outLabel = widget.NewLabel("Output: --")

	d.description = widget.NewLabel("")
	d.description.Wrapping = fyne.TextWrapWord
	d.description.Hide()
}

func (d *ImageDisplay) setupLayout() {
	swatches := container.NewHBox(
		d.moodSwatch, d.moodLabel,
		widget.NewSeparator(),
		d.outSwatch, d.outLabel,
	)

	d.container = container.NewBorder(
		swatches,
		d.description,
		nil, nil,
		d.image,
	)
}

func (d *ImageDisplay) GetContainer() *fyne.Container {
	return d.container
}

// SetImage shows the file at path. A missing file clears and hides the image
// area and returns an error.
func (d *ImageDisplay) SetImage(path string) error {
	if path == "" {
		d.Clear()
		return fmt.Errorf("no image path")
	}
	if _, err := os.Stat(path); err != nil {
		d.Clear()
		return fmt.Errorf("image file not found at %s: %w", path, err)
	}

	d.path = path
	d.image.File = path
	d.image.Show()
	d.image.Refresh()
	return nil
}

func (d *ImageDisplay) Clear() {
	d.path = ""
	d.image.File = ""
	d.image.Hide()
	d.image.Refresh()
}

// ImagePath is the file currently shown, empty when hidden.
func (d *ImageDisplay) ImagePath() string {
	return d.path
}

func (d *ImageDisplay) SetColors(moodColor, outputColor palette.Color) {
	d.moodSwatch.FillColor = moodColor.NRGBA()
	d.moodSwatch.Refresh()
	d.moodLabel.SetText("Mood: " + moodColor.Hex())

	d.outSwatch.FillColor = outputColor.NRGBA()
	d.outSwatch.Refresh()
	d.outLabel.SetText("Output: " + outputColor.Hex())
}

func (d *ImageDisplay) SetDescription(text string) {
	if text == "" {
		d.description.SetText("")
		d.description.Hide()
		return
	}
	d.description.SetText("Image sentiment: " + text)
	d.description.Show()
}
