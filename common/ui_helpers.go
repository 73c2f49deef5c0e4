// common/ui_helpers.go

package common

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"time"

	"HkxToolbox/locales"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	nativedialog "github.com/sqweek/dialog"
)

// ProgressDialog represents a progress dialog with a progress bar and status label
type ProgressDialog struct {
	dialog        *dialog.CustomDialog
	window        fyne.Window
	progressBar   *widget.ProgressBar
	statusLabel   *widget.Label
	stopButton    *widget.Button
	cancelHandler func()
	isCompleted   bool
}

// NewProgressDialog creates a new progress dialog with optional cancel handler
func NewProgressDialog(window fyne.Window, title, initialStatus string, cancelHandler func()) *ProgressDialog {
	pd := &ProgressDialog{
		window:        window,
		progressBar:   widget.NewProgressBar(),
		statusLabel:   widget.NewLabel(initialStatus),
		cancelHandler: cancelHandler,
		isCompleted:   false,
	}

	pd.stopButton = widget.NewButtonWithIcon(locales.Translate("common.button.stop"), theme.MediaStopIcon(), func() {
		if pd.isCompleted {
			pd.Hide()
		} else if pd.cancelHandler != nil {
			pd.cancelHandler()
		}
	})
	pd.stopButton.Importance = widget.HighImportance

	content := container.NewVBox(pd.progressBar, pd.statusLabel)
	content.Add(container.NewHBox(layout.NewSpacer(), pd.stopButton, layout.NewSpacer()))

	// Keep the dialog wide enough for long file paths in the status line
	rect := canvas.NewRectangle(color.Transparent)
	rect.SetMinSize(fyne.NewSize(550, 1))
	content.Add(rect)

	pd.dialog = dialog.NewCustomWithoutButtons(title, content, window)

	return pd
}

// Show displays the progress dialog
func (pd *ProgressDialog) Show() {
	pd.dialog.Show()
}

// Hide hides the progress dialog
func (pd *ProgressDialog) Hide() {
	pd.dialog.Hide()
}

// UpdateProgress updates the progress bar value
func (pd *ProgressDialog) UpdateProgress(value float64) {
	pd.progressBar.SetValue(value)
}

// UpdateStatus updates the status text
func (pd *ProgressDialog) UpdateStatus(text string) {
	pd.statusLabel.SetText(text)
}

// MarkCompleted marks the process as completed and changes the stop button to OK button
func (pd *ProgressDialog) MarkCompleted() {
	pd.isCompleted = true
	pd.stopButton.SetText(locales.Translate("common.button.ok"))
	pd.stopButton.SetIcon(theme.ConfirmIcon())
}

// ShowError displays an error message and hides the progress dialog
func (pd *ProgressDialog) ShowError(err error) {
	pd.Hide()
	dialog.ShowError(err, pd.window)
}

// CreateNativeFolderBrowseButton creates a standardized folder browse button using native OS dialog
func CreateNativeFolderBrowseButton(title string, buttonText string, changeHandler func(string)) *widget.Button {
	return widget.NewButtonWithIcon(buttonText, theme.FolderOpenIcon(), func() {
		dirname, err := nativedialog.Directory().Title(title).Browse()
		if err == nil && dirname != "" {
			if changeHandler != nil {
				changeHandler(dirname)
			}
		}
	})
}

// CreateNativeFileBrowseButton creates a file browse button using native OS dialog.
// filterName and extensions restrict the file types offered by the dialog.
func CreateNativeFileBrowseButton(title string, buttonText string, filterName string, extensions []string, changeHandler func(string)) *widget.Button {
	return widget.NewButtonWithIcon(buttonText, theme.FileIcon(), func() {
		builder := nativedialog.File().Title(title)
		if len(extensions) > 0 {
			builder = builder.Filter(filterName, extensions...)
		}
		filename, err := builder.Load()
		if err == nil && filename != "" {
			if changeHandler != nil {
				changeHandler(filename)
			}
		}
	})
}

// CreateFolderSelectionField creates a standardized folder selection field with browse button
func CreateFolderSelectionField(title string, entryField *widget.Entry, changeHandler func(string)) fyne.CanvasObject {
	if entryField == nil {
		entryField = widget.NewEntry()
	}

	entryField.SetPlaceHolder(locales.Translate("common.entry.placeholderpath"))

	if changeHandler != nil {
		entryField.OnChanged = func(value string) {
			changeHandler(value)
		}
	}

	browseBtn := CreateNativeFolderBrowseButton(
		title,
		"",
		func(path string) {
			entryField.SetText(path)
			if changeHandler != nil {
				changeHandler(path)
			}
		},
	)

	return container.NewBorder(nil, nil, nil, browseBtn, entryField)
}

// CreateFileSelectionField creates a standardized file selection field with browse button
func CreateFileSelectionField(title string, entryField *widget.Entry, filterName string, extensions []string, changeHandler func(string)) fyne.CanvasObject {
	if entryField == nil {
		entryField = widget.NewEntry()
	}

	entryField.SetPlaceHolder(locales.Translate("common.entry.placeholderpath"))

	if changeHandler != nil {
		entryField.OnChanged = func(value string) {
			changeHandler(value)
		}
	}

	browseBtn := CreateNativeFileBrowseButton(
		title,
		"",
		filterName,
		extensions,
		func(path string) {
			entryField.SetText(path)
			if changeHandler != nil {
				changeHandler(path)
			}
		},
	)

	return container.NewBorder(nil, nil, nil, browseBtn, entryField)
}

// CreateSubmitButton creates a standardized submit button with high importance
func CreateSubmitButton(title string, handler func()) *widget.Button {
	btn := widget.NewButton(title, handler)
	btn.Importance = widget.HighImportance
	return btn
}

// CreateSubmitButtonWithIcon creates a standardized submit button with an icon and high importance
func CreateSubmitButtonWithIcon(title string, icon fyne.Resource, handler func()) *widget.Button {
	btn := widget.NewButtonWithIcon(title, icon, handler)
	btn.Importance = widget.HighImportance
	return btn
}

// CreateDescriptionLabel creates a standardized description label with wrapping and bold text
func CreateDescriptionLabel(text string) *widget.Label {
	label := widget.NewLabel(text)
	label.Wrapping = fyne.TextWrapWord
	label.TextStyle = fyne.TextStyle{Bold: true}
	return label
}

// CreateCheckbox creates a standardized checkbox with a label
func CreateCheckbox(labelText string, onChanged func(bool)) *widget.Check {
	checkbox := widget.NewCheck(labelText, onChanged)
	return checkbox
}

// UpdateButtonToCompleted updates a button to show completion state with a confirm icon
func UpdateButtonToCompleted(button *widget.Button) {
	button.SetIcon(theme.ConfirmIcon())
}

// DisableModuleControls disables multiple UI components at once
func DisableModuleControls(components ...fyne.Disableable) {
	for _, component := range components {
		component.Disable()
	}
}

// EnableModuleControls enables multiple UI components at once
func EnableModuleControls(components ...fyne.Disableable) {
	for _, component := range components {
		component.Enable()
	}
}

// GetLogFilePath returns the path to the log file
func GetLogFilePath() string {
	appDataDir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}

	logDir := filepath.Join(appDataDir, AppName, FolderNameLog)
	logFile := filepath.Join(logDir, FileNameLog)

	return logFile
}

// ShowLogViewerWindow creates and displays a window with the log file content.
// The log content is displayed in a scrollable text area with monospace font.
// The window includes a refresh button to reload the log content.
func ShowLogViewerWindow(parent fyne.Window) {
	logPath := GetLogFilePath()

	logText := widget.NewEntry()
	logText.MultiLine = true
	logText.TextStyle = fyne.TextStyle{Monospace: true}
	logText.Wrapping = fyne.TextWrapBreak

	logText.Disable()

	var scrollContainerRef *container.Scroll
	scrollContainer := container.NewScroll(logText)
	scrollContainerRef = scrollContainer

	logWindow := fyne.CurrentApp().NewWindow(locales.Translate("common.logviewer.header"))

	refreshBtn := widget.NewButtonWithIcon(
		locales.Translate("common.button.refresh"),
		theme.ViewRefreshIcon(),
		func() {
			loadLogContent(logPath, logText, scrollContainerRef)
		},
	)
	refreshBtn.Importance = widget.HighImportance
	closeBtn := widget.NewButtonWithIcon(
		locales.Translate("common.button.close"),
		theme.CancelIcon(),
		func() {
			logWindow.Close()
		},
	)

	buttonContainer := container.NewHBox(
		layout.NewSpacer(),
		refreshBtn,
		closeBtn,
	)

	content := container.NewBorder(
		nil,
		buttonContainer,
		nil,
		nil,
		scrollContainer,
	)

	logWindow.SetContent(content)
	logWindow.Resize(fyne.NewSize(800, 600))
	logWindow.CenterOnScreen()

	loadLogContent(logPath, logText, scrollContainerRef)

	logWindow.Show()
}

// loadLogContent loads the content of the log file into the text widget
// and scrolls to the end of the content.
func loadLogContent(logPath string, logText *widget.Entry, scrollContainer *container.Scroll) {
	content, err := os.ReadFile(logPath)
	if err != nil {
		logText.SetText(fmt.Sprintf(locales.Translate("common.err.readlog"), err))
		return
	}

	logText.SetText(string(content))

	lineCount := strings.Count(string(content), "\n")
	if lineCount > 0 {
		logText.CursorRow = lineCount

		logText.Refresh()

		// Scroll after the content is rendered
		go func() {
			time.Sleep(100 * time.Millisecond)
			scrollContainer.ScrollToBottom()
		}()
	}
}

// ShowPanicDialog creates and shows a custom dialog for panic errors, allowing a custom title.
func ShowPanicDialog(window fyne.Window, title, content string) {
	dismissText := locales.Translate("common.button.ok")
	panicDialog := dialog.NewCustom(title, dismissText, widget.NewLabel(content), window)
	panicDialog.Show()
}
