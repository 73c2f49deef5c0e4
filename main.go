// main.go

package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"HkxToolbox/common"
	"HkxToolbox/hkxconvert"
	"HkxToolbox/locales"
	"HkxToolbox/modules"
	apptheme "HkxToolbox/theme"
	"HkxToolbox/ui"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

// toolFileName is picked up from the working directory when present and adds
// user-defined converters to the registry.
const toolFileName = "tools.yaml"

// HkxToolbox is the main application structure.
type HkxToolbox struct {
	app          fyne.App
	mainWindow   fyne.Window
	registry     *hkxconvert.Registry
	modules      []*moduleInfo
	logger       *common.Logger
	errorHandler *common.ErrorHandler
	tabContainer *container.AppTabs
}

// moduleInfo holds information about a module.
type moduleInfo struct {
	module   common.Module
	tabItem  *container.TabItem
	createFn func() common.Module
}

// NewHkxToolbox initializes the main application with logging, theme and
// window setup.
func NewHkxToolbox() *HkxToolbox {
	logger := initLogger()
	common.FlushEarlyLogs(logger)

	if err := locales.LoadTranslations("en"); err != nil {
		logger.Warning("Failed to load translations: %v", err)
	}

	fyneApp := app.NewWithID(common.AppID)
	fyneApp.SetIcon(apptheme.AppIcon())
	fyneApp.Settings().SetTheme(apptheme.NewCustomTheme())

	ht := &HkxToolbox{
		app:      fyneApp,
		logger:   logger,
		registry: hkxconvert.NewRegistry(),
	}

	// User-defined converters are a pure data addition
	if common.FileExists(toolFileName) {
		if n, err := hkxconvert.LoadToolsFromYAML(toolFileName, ht.registry); err != nil {
			logger.Warning("Failed to load tool definitions from %s: %v", toolFileName, err)
		} else {
			logger.Info("Loaded %d converter definitions from %s", n, toolFileName)
		}
	}

	mainWindow := fyneApp.NewWindow(locales.Translate("main.app.title"))
	mainWindow.Resize(fyne.NewSize(1000, 700))

	ht.errorHandler = common.NewErrorHandler(ht.logger, mainWindow)
	ht.mainWindow = mainWindow

	ht.logger.Info("%s", locales.Translate("main.log.appstart"))

	return ht
}

// initLogger creates the application logger, preferring an existing log file
// in the working directory, then the user config directory, then the working
// directory as last resort.
func initLogger() *common.Logger {
	logMaxSizeMB := 10
	logMaxAgeDays := 7

	rootLogPath := common.FileNameLog
	if common.FileExists(rootLogPath) {
		if logger, err := common.NewLogger(rootLogPath, logMaxSizeMB, logMaxAgeDays); err == nil {
			return logger
		}
	}

	if configDir, err := os.UserConfigDir(); err == nil {
		logDir := common.JoinPaths(configDir, common.AppName, common.FolderNameLog)
		if err := common.EnsureDirectoryExists(logDir); err == nil {
			logPath := common.JoinPaths(logDir, common.FileNameLog)
			if logger, err := common.NewLogger(logPath, logMaxSizeMB, logMaxAgeDays); err == nil {
				return logger
			}
		}
	}

	logger, err := common.NewLogger(rootLogPath, logMaxSizeMB, logMaxAgeDays)
	if err != nil {
		fmt.Printf("CRITICAL ERROR: Failed to initialize logger in any location: %v\n", err)
		os.Exit(1)
	}
	return logger
}

// Run starts the application, initializes modules, builds the GUI and runs
// the main event loop.
func (ht *HkxToolbox) Run() {
	defer func() {
		if r := recover(); r != nil {
			stackTrace := string(debug.Stack())
			if ht.errorHandler != nil {
				ht.errorHandler.ShowPanicError(r, stackTrace)
			} else if ht.logger != nil {
				ht.logger.Error("PANIC RECOVERED (ErrorHandler not available): %v\n%s", r, stackTrace)
			}
		}
	}()

	ht.initModules()
	ht.createMainContent()

	ht.mainWindow.Show()

	ht.app.Run()

	ht.logger.Info("%s", locales.Translate("main.log.appstop"))
	ht.logger.Close()
}

// initModules prepares module definitions
func (ht *HkxToolbox) initModules() {
	ht.modules = []*moduleInfo{
		{
			createFn: func() common.Module {
				return modules.NewHkxConverterModule(ht.mainWindow, ht.errorHandler, ht.registry)
			},
		},
	}
}

// createMainContent creates the main window content with tabs
func (ht *HkxToolbox) createMainContent() fyne.CanvasObject {
	ht.tabContainer = container.NewAppTabs()

	for _, info := range ht.modules {
		info.module = info.createFn()
		info.tabItem = container.NewTabItemWithIcon(info.module.GetName(), info.module.GetIcon(), info.module.GetContent())
		ht.tabContainer.Append(info.tabItem)
	}

	ht.tabContainer.SetTabLocation(container.TabLocationTop)

	menuBar := ht.createMenuBar()
	content := container.NewBorder(menuBar, nil, nil, nil, ht.tabContainer)
	ht.mainWindow.SetContent(content)
	return content
}

// createMenuBar creates a simple horizontal bar with log viewer and about buttons.
func (ht *HkxToolbox) createMenuBar() fyne.CanvasObject {
	logsButton := widget.NewButton(locales.Translate("main.menu.logs"), func() {
		common.ShowLogViewerWindow(ht.mainWindow)
	})
	aboutButton := widget.NewButton(locales.Translate("main.menu.about"), func() {
		ui.ShowAboutWindow(ht.mainWindow)
	})

	return container.NewHBox(logsButton, aboutButton)
}

// main is the entry point.
func main() {
	ht := NewHkxToolbox()
	ht.Run()
}
