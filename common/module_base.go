// common/module_base.go

package common

import (
	"fmt"
	"sync"

	"HkxToolbox/locales"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"
)

// Module defines the interface that all modules must implement
type Module interface {
	GetName() string
	GetIcon() fyne.Resource
	GetContent() fyne.CanvasObject
}

// ModuleBase provides common functionality for all modules
type ModuleBase struct {
	Window         fyne.Window
	Content        fyne.CanvasObject
	Progress       *widget.ProgressBar
	Status         *widget.Label
	ProgressDialog *ProgressDialog
	ErrorHandler   *ErrorHandler
	Logger         *Logger
	StatusMessages *StatusMessagesContainer

	mutex    sync.Mutex
	onCancel func()
}

// NewModuleBase initializes a new ModuleBase
func NewModuleBase(window fyne.Window, errorHandler *ErrorHandler) *ModuleBase {
	if errorHandler == nil {
		panic("ErrorHandler cannot be nil")
	}

	base := &ModuleBase{
		Window:       window,
		ErrorHandler: errorHandler,
		Logger:       errorHandler.GetLogger(),
	}
	base.initBaseComponents()

	return base
}

// initBaseComponents initializes common UI components
func (m *ModuleBase) initBaseComponents() {
	m.Progress = widget.NewProgressBar()
	m.Status = widget.NewLabel("")
	m.Status.Alignment = fyne.TextAlignCenter
	m.StatusMessages = NewStatusMessagesContainer()
}

// CreateModuleLayoutWithStatusMessages creates a layout with module content
// at the top and status messages filling the remaining space below.
func (m *ModuleBase) CreateModuleLayoutWithStatusMessages(moduleContent fyne.CanvasObject) fyne.CanvasObject {
	mainContent := container.NewVBox(moduleContent)

	statusMessagesContainer := m.GetStatusMessagesContainer().scroll

	return container.New(
		layout.NewBorderLayout(mainContent, nil, nil, nil),
		mainContent,
		statusMessagesContainer,
	)
}

// GetName returns an empty name, should be overridden in modules
func (m *ModuleBase) GetName() string {
	return ""
}

// GetIcon returns a default icon, should be overridden in modules
func (m *ModuleBase) GetIcon() fyne.Resource {
	return nil
}

// SetCancelHandler registers the function invoked when the user presses the
// stop button in the progress dialog. Modules point this at the running
// batch before showing the dialog.
func (m *ModuleBase) SetCancelHandler(handler func()) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.onCancel = handler
}

// ShowProgressDialog displays a progress dialog with stop button
func (m *ModuleBase) ShowProgressDialog(title string) {
	cancelHandler := func() {
		m.mutex.Lock()
		handler := m.onCancel
		m.mutex.Unlock()
		if handler != nil {
			handler()
		}
	}

	m.ProgressDialog = NewProgressDialog(m.Window, title, "", cancelHandler)
	m.ProgressDialog.Show()
}

// UpdateProgressStatus updates the progress bar and status text
func (m *ModuleBase) UpdateProgressStatus(progress float64, statusText string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.Progress.SetValue(progress)
	m.Status.SetText(statusText)

	if m.ProgressDialog != nil {
		m.ProgressDialog.UpdateProgress(progress)
		m.ProgressDialog.UpdateStatus(statusText)
	}
}

// CloseProgressDialog hides the progress dialog
func (m *ModuleBase) CloseProgressDialog() {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.ProgressDialog != nil {
		m.ProgressDialog.Hide()
		m.ProgressDialog = nil
	}
}

// CompleteProgressDialog marks the progress dialog as completed and changes the stop button to OK
func (m *ModuleBase) CompleteProgressDialog() {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.ProgressDialog != nil {
		m.ProgressDialog.MarkCompleted()
	}
}

// HandleError processes an error with context
func (m *ModuleBase) HandleError(err error, operation string) {
	if m.ErrorHandler == nil {
		return
	}

	context := ErrorContext{
		Module:    m.GetName(),
		Operation: operation,
		Error:     err,
	}

	m.ErrorHandler.ShowErrorWithContext(context)
}

// ShowError displays a simple error dialog
func (m *ModuleBase) ShowError(err error) {
	if m.ErrorHandler == nil {
		return
	}

	m.ErrorHandler.ShowError(err)
}

// AddInfoMessage adds an information message to the status messages container
func (m *ModuleBase) AddInfoMessage(message string) {
	if m.StatusMessages != nil {
		m.StatusMessages.AddMessage(MessageInfo, message)
	}
}

// AddSuccessMessage adds a success message to the status messages container
func (m *ModuleBase) AddSuccessMessage(message string) {
	if m.StatusMessages != nil {
		m.StatusMessages.AddMessage(MessageSuccess, message)
	}
}

// AddWarningMessage adds a warning message to the status messages container
func (m *ModuleBase) AddWarningMessage(message string) {
	if m.StatusMessages != nil {
		m.StatusMessages.AddMessage(MessageWarning, message)
	}
}

// AddErrorMessage adds an error message to the status messages container
func (m *ModuleBase) AddErrorMessage(message string) {
	if m.StatusMessages != nil {
		m.StatusMessages.AddMessage(MessageError, message)
	}
}

// ClearStatusMessages clears all status messages
func (m *ModuleBase) ClearStatusMessages() {
	if m.StatusMessages != nil {
		m.StatusMessages.ClearMessages()
	}
}

// GetStatusMessagesContainer returns the status messages container
func (m *ModuleBase) GetStatusMessagesContainer() *StatusMessagesContainer {
	if m.StatusMessages == nil {
		m.StatusMessages = NewStatusMessagesContainer()
	}

	return m.StatusMessages
}

// HandleProcessCancellation handles the standard process cancellation flow
// message is the localization key for the status message
// params are optional parameters for message formatting
func (m *ModuleBase) HandleProcessCancellation(message string, params ...interface{}) {
	stoppedMessage := fmt.Sprintf(locales.Translate(message), params...)
	m.UpdateProgressStatus(1.0, stoppedMessage)
	m.AddInfoMessage(stoppedMessage)

	m.CompleteProgressDialog()
}
