// Package ui provides user interface components for the application
package ui

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"HkxToolbox/common"
	"HkxToolbox/locales"
)

// ShowAboutWindow creates and displays the about window.
func ShowAboutWindow(parent fyne.Window) {
	title := widget.NewLabel(common.AppName)
	title.TextStyle = fyne.TextStyle{Bold: true}
	title.Alignment = fyne.TextAlignCenter

	version := widget.NewLabel(fmt.Sprintf(locales.Translate("about.label.version"), common.AppVersion))
	version.Alignment = fyne.TextAlignCenter

	description := widget.NewLabel(locales.Translate("about.label.description"))
	description.Wrapping = fyne.TextWrapWord
	description.Alignment = fyne.TextAlignCenter

	window := fyne.CurrentApp().NewWindow(locales.Translate("about.window.title"))
	window.SetContent(container.NewVBox(title, version, widget.NewSeparator(), description))
	window.Resize(fyne.NewSize(450, 250))
	window.CenterOnScreen()
	window.Show()
}
