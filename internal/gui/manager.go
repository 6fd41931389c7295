// Package gui owns the window layout and every widget update. Methods that
// touch widgets hop onto the UI goroutine with fyne.Do, so callers may use
// them from pipeline goroutines.
package gui

import (
	"fmt"
	"io"
	"os"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"mood-canvas/internal/gui/components"
	"mood-canvas/internal/logger"
	"mood-canvas/internal/palette"
)

type Manager struct {
	window     fyne.Window
	logger     logger.Logger
	isShutdown bool

	form         *components.MoodForm
	imageDisplay *components.ImageDisplay
	statusBar    *components.StatusBar
}

func NewManager(window fyne.Window, log logger.Logger) *Manager {
	m := &Manager{
		window:       window,
		logger:       log,
		form:         components.NewMoodForm(),
		imageDisplay: components.NewImageDisplay(),
		statusBar:    components.NewStatusBar(),
	}
	m.statusBar.SetSaveHandler(m.saveImageAs)

	log.Info("GUIManager", "initialized", map[string]interface{}{
		"image_width":  components.ImageAreaWidth,
		"image_height": components.ImageAreaHeight,
	})
	return m
}

func (m *Manager) GetMainContainer() *fyne.Container {
	title := widget.NewRichTextFromMarkdown("## Mood Canvas")

	return container.NewBorder(
		container.NewVBox(title, m.form.GetContainer()),
		m.statusBar.GetContainer(),
		nil, nil,
		m.imageDisplay.GetContainer(),
	)
}

func (m *Manager) GetWindow() fyne.Window {
	return m.window
}

func (m *Manager) Form() *components.MoodForm {
	return m.form
}

func (m *Manager) ImageDisplay() *components.ImageDisplay {
	return m.imageDisplay
}

func (m *Manager) StatusBar() *components.StatusBar {
	return m.statusBar
}

func (m *Manager) SetGenerateHandler(handler func(moodText, checkoutTime string)) {
	m.form.SetGenerateHandler(func(moodText, checkoutTime string) {
		m.logger.Debug("GUIManager", "generate requested", map[string]interface{}{
			"mood_length": len(moodText),
			"checkout":    checkoutTime,
		})
		handler(moodText, checkoutTime)
	})
}

func (m *Manager) SetBusy(busy bool) {
	fyne.Do(func() {
		m.form.SetBusy(busy)
	})
}

func (m *Manager) UpdateStatus(status string) {
	fyne.Do(func() {
		m.statusBar.SetStatus(status)
	})
	m.logger.Debug("GUIManager", "status updated", map[string]interface{}{
		"status": status,
	})
}

func (m *Manager) SetColors(moodColor, outputColor palette.Color, factor float64) {
	fyne.Do(func() {
		m.imageDisplay.SetColors(moodColor, outputColor)
		m.statusBar.SetFactor(factor)
	})
}

// ShowImage displays the file at path, or hides the image area if it is
// missing.
func (m *Manager) ShowImage(path string) {
	fyne.Do(func() {
		if err := m.imageDisplay.SetImage(path); err != nil {
			m.logger.Error("GUIManager", err, map[string]interface{}{
				"path": path,
			})
			m.statusBar.SetSaveEnabled(false)
			return
		}
		m.statusBar.SetSaveEnabled(true)
		m.logger.Info("GUIManager", "image displayed", map[string]interface{}{
			"path": path,
		})
	})
}

func (m *Manager) SetDescription(text string) {
	fyne.Do(func() {
		m.imageDisplay.SetDescription(text)
	})
}

func (m *Manager) ShowError(title string, err error) {
	m.logger.Error("GUIManager", err, map[string]interface{}{
		"title": title,
	})

	fyne.Do(func() {
		dialog.ShowError(fmt.Errorf("%s: %w", title, err), m.window)
	})
}

func (m *Manager) saveImageAs() {
	src := m.imageDisplay.ImagePath()
	if src == "" {
		m.ShowError("Save error", fmt.Errorf("no image to save"))
		return
	}

	dialog.ShowFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil {
			m.ShowError("File save error", err)
			return
		}
		if writer == nil {
			return
		}

		go func() {
			defer writer.Close()

			copyErr := copyFile(writer, src)
			if copyErr != nil {
				m.ShowError("Image save error", copyErr)
				return
			}
			m.UpdateStatus("Image saved to " + writer.URI().Path())
		}()
	}, m.window)
}

func copyFile(dst io.Writer, src string) error {
	f, err := os.Open(src)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = io.Copy(dst, f)
	return err
}

func (m *Manager) Shutdown() {
	if m.isShutdown {
		return
	}

	m.isShutdown = true
	m.logger.Info("GUIManager", "shutdown initiated", nil)
}
