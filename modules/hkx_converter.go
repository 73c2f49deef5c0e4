// modules/hkx_converter.go

package modules

import (
	"errors"
	"fmt"
	"path/filepath"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"HkxToolbox/common"
	"HkxToolbox/hkxconvert"
	"HkxToolbox/locales"
)

// HkxConverterModule implements a module for batch converting HKX, XML and KF
// files using external command-line converter tools.
type HkxConverterModule struct {
	*common.ModuleBase // Embedded pointer to shared base

	registry *hkxconvert.Registry

	// Source selection
	sourceFolderEntry *widget.Entry
	filterSelect      *widget.Select
	recursiveCheckbox *widget.Check
	scanBtn           *widget.Button
	addFileBtn        *widget.Button
	clearBtn          *widget.Button
	fileList          *widget.List
	fileCountLabel    *widget.Label

	// Conversion settings
	toolSelect        *widget.Select
	modeSelect        *widget.Select
	formatSelect      *widget.Select
	suffixEntry       *widget.Entry
	extensionEntry    *widget.Entry
	skeletonEntry     *widget.Entry
	skeletonField     fyne.CanvasObject
	outputFolderEntry *widget.Entry
	toolsDirEntry     *widget.Entry

	// Submit button
	submitBtn *widget.Button

	// Current state
	inputs       []string
	isConverting bool
	batch        *hkxconvert.Batch
}

// NewHkxConverterModule creates a new instance of HkxConverterModule
func NewHkxConverterModule(window fyne.Window, errorHandler *common.ErrorHandler, registry *hkxconvert.Registry) *HkxConverterModule {
	m := &HkxConverterModule{
		ModuleBase: common.NewModuleBase(window, errorHandler),
		registry:   registry,
	}

	m.initializeUI()

	return m
}

// GetName returns the localized name of the module
func (m *HkxConverterModule) GetName() string {
	return locales.Translate("hkx.mod.name")
}

// GetIcon returns the module's icon
func (m *HkxConverterModule) GetIcon() fyne.Resource {
	return theme.MediaReplayIcon()
}

// GetContent returns the module's main UI content
func (m *HkxConverterModule) GetContent() fyne.CanvasObject {
	return m.CreateModuleLayoutWithStatusMessages(m.GetModuleContent())
}

// GetModuleContent returns the module's specific content without status messages
func (m *HkxConverterModule) GetModuleContent() fyne.CanvasObject {
	// Left section - source files
	leftHeader := common.CreateDescriptionLabel(locales.Translate("hkx.label.leftpanel"))

	sourceBrowseBtn := common.CreateNativeFolderBrowseButton(
		locales.Translate("hkx.label.sourcefolder"),
		"",
		func(path string) {
			m.sourceFolderEntry.SetText(path)
		},
	)
	sourceContainer := container.NewBorder(
		nil, nil,
		m.filterSelect, sourceBrowseBtn,
		m.sourceFolderEntry,
	)

	scanRow := container.NewHBox(
		m.recursiveCheckbox,
		layout.NewSpacer(),
		m.addFileBtn,
		m.clearBtn,
		m.scanBtn,
	)

	listBox := container.NewVBox(m.fileCountLabel)

	leftSection := container.NewVBox(
		leftHeader,
		widget.NewSeparator(),
		sourceContainer,
		scanRow,
		listBox,
		container.NewGridWrap(fyne.NewSize(0, 160), m.fileList),
	)

	// Right section - conversion settings
	rightHeader := common.CreateDescriptionLabel(locales.Translate("hkx.label.rightpanel"))

	outputField := common.CreateFolderSelectionField(
		locales.Translate("hkx.label.output"),
		m.outputFolderEntry,
		nil,
	)
	toolsDirField := common.CreateFolderSelectionField(
		locales.Translate("hkx.label.toolsdir"),
		m.toolsDirEntry,
		nil,
	)

	settingsForm := &widget.Form{
		Items: []*widget.FormItem{
			{Text: locales.Translate("hkx.label.tool"), Widget: m.toolSelect},
			{Text: locales.Translate("hkx.label.mode"), Widget: m.modeSelect},
			{Text: locales.Translate("hkx.label.format"), Widget: m.formatSelect},
			{Text: locales.Translate("hkx.label.skeleton"), Widget: m.skeletonField},
			{Text: locales.Translate("hkx.label.suffix"), Widget: m.suffixEntry},
			{Text: locales.Translate("hkx.label.ext"), Widget: m.extensionEntry},
			{Text: locales.Translate("hkx.label.output"), Widget: outputField},
			{Text: locales.Translate("hkx.label.toolsdir"), Widget: toolsDirField},
		},
	}

	rightSection := container.NewVBox(
		rightHeader,
		widget.NewSeparator(),
		settingsForm,
	)

	horizontalLayout := container.NewHSplit(leftSection, rightSection)
	horizontalLayout.SetOffset(0.5)

	moduleContent := container.NewVBox(
		common.CreateDescriptionLabel(locales.Translate("hkx.label.info")),
		widget.NewSeparator(),
		horizontalLayout,
	)

	if m.submitBtn != nil {
		moduleContent.Add(container.NewHBox(layout.NewSpacer(), m.submitBtn))
	}

	return moduleContent
}

// initializeUI sets up the user interface components
func (m *HkxConverterModule) initializeUI() {
	// Source folder selection
	m.sourceFolderEntry = widget.NewEntry()
	m.sourceFolderEntry.SetPlaceHolder(locales.Translate("common.entry.placeholderpath"))

	filterLabels := []string{
		hkxconvert.FilterAll.Label(),
		hkxconvert.FilterHkx.Label(),
		hkxconvert.FilterXml.Label(),
		hkxconvert.FilterKf.Label(),
	}
	m.filterSelect = widget.NewSelect(filterLabels, nil)
	m.filterSelect.SetSelected(hkxconvert.FilterAll.Label())

	m.recursiveCheckbox = common.CreateCheckbox(locales.Translate("hkx.chkbox.recursive"), nil)
	m.recursiveCheckbox.SetChecked(true)

	m.scanBtn = widget.NewButtonWithIcon(locales.Translate("hkx.button.scan"), theme.SearchIcon(), func() {
		m.scanSourceFolder()
	})

	m.addFileBtn = common.CreateNativeFileBrowseButton(
		locales.Translate("hkx.button.addfile"),
		locales.Translate("hkx.button.addfile"),
		"Havok files",
		[]string{"hkx", "xml", "kf"},
		func(path string) {
			m.inputs = hkxconvert.AddInput(m.inputs, path)
			m.refreshFileList()
		},
	)

	m.clearBtn = widget.NewButtonWithIcon(locales.Translate("hkx.button.clear"), theme.DeleteIcon(), func() {
		m.inputs = nil
		m.refreshFileList()
	})

	m.fileCountLabel = widget.NewLabel(fmt.Sprintf(locales.Translate("hkx.status.filecount"), 0))
	m.fileList = widget.NewList(
		func() int { return len(m.inputs) },
		func() fyne.CanvasObject { return widget.NewLabel("") },
		func(i widget.ListItemID, o fyne.CanvasObject) {
			o.(*widget.Label).SetText(filepath.Base(m.inputs[i]))
		},
	)

	// Tool selection
	var toolLabels []string
	for _, kind := range m.registry.Kinds() {
		if spec, ok := m.registry.Lookup(kind); ok {
			toolLabels = append(toolLabels, spec.Label)
		}
	}
	m.toolSelect = widget.NewSelect(toolLabels, func(string) {
		m.onToolOrModeChanged()
	})
	if len(toolLabels) > 0 {
		m.toolSelect.SetSelected(toolLabels[0])
	}

	// Mode selection
	modeLabels := []string{
		hkxconvert.ModeRegular.Label(),
		hkxconvert.ModeKfToHkx.Label(),
		hkxconvert.ModeHkxToKf.Label(),
	}
	m.modeSelect = widget.NewSelect(modeLabels, func(string) {
		m.onToolOrModeChanged()
	})
	m.modeSelect.SetSelected(hkxconvert.ModeRegular.Label())

	// Format selection
	formatLabels := []string{
		hkxconvert.FormatXML.Label(),
		hkxconvert.FormatSkyrimLE.Label(),
		hkxconvert.FormatSkyrimSE.Label(),
	}
	m.formatSelect = widget.NewSelect(formatLabels, nil)
	m.formatSelect.SetSelected(hkxconvert.FormatSkyrimSE.Label())

	// Naming settings
	m.suffixEntry = widget.NewEntry()
	m.suffixEntry.SetPlaceHolder(locales.Translate("hkx.entry.suffixplaceholder"))

	m.extensionEntry = widget.NewEntry()
	m.extensionEntry.SetPlaceHolder(locales.Translate("hkx.entry.extplaceholder"))

	// Skeleton file, only needed by the animation modes
	m.skeletonEntry = widget.NewEntry()
	m.skeletonField = common.CreateFileSelectionField(
		locales.Translate("hkx.label.skeleton"),
		m.skeletonEntry,
		"Skeleton files",
		[]string{"hkx"},
		nil,
	)
	m.skeletonEntry.Disable()

	// Output and tools folders
	m.outputFolderEntry = widget.NewEntry()
	m.toolsDirEntry = widget.NewEntry()

	// Submit button
	m.submitBtn = common.CreateSubmitButton(
		locales.Translate("hkx.button.start"),
		func() {
			m.startConversion()
		},
	)
}

// refreshFileList updates the file list widget and count label
func (m *HkxConverterModule) refreshFileList() {
	m.fileCountLabel.SetText(fmt.Sprintf(locales.Translate("hkx.status.filecount"), len(m.inputs)))
	m.fileList.Refresh()
}

// selectedFilter maps the filter selection back to an InputFilter
func (m *HkxConverterModule) selectedFilter() hkxconvert.InputFilter {
	for _, f := range []hkxconvert.InputFilter{hkxconvert.FilterHkx, hkxconvert.FilterXml, hkxconvert.FilterKf} {
		if m.filterSelect.Selected == f.Label() {
			return f
		}
	}
	return hkxconvert.FilterAll
}

// selectedMode maps the mode selection back to a Mode
func (m *HkxConverterModule) selectedMode() hkxconvert.Mode {
	for _, md := range []hkxconvert.Mode{hkxconvert.ModeKfToHkx, hkxconvert.ModeHkxToKf} {
		if m.modeSelect.Selected == md.Label() {
			return md
		}
	}
	return hkxconvert.ModeRegular
}

// selectedFormat maps the format selection back to a Format
func (m *HkxConverterModule) selectedFormat() hkxconvert.Format {
	for _, f := range []hkxconvert.Format{hkxconvert.FormatSkyrimLE, hkxconvert.FormatSkyrimSE} {
		if m.formatSelect.Selected == f.Label() {
			return f
		}
	}
	return hkxconvert.FormatXML
}

// selectedTool maps the tool selection back to a ToolKind
func (m *HkxConverterModule) selectedTool() (hkxconvert.ToolKind, bool) {
	for _, kind := range m.registry.Kinds() {
		if spec, ok := m.registry.Lookup(kind); ok && spec.Label == m.toolSelect.Selected {
			return kind, true
		}
	}
	return "", false
}

// onToolOrModeChanged keeps the format and skeleton widgets consistent with
// the selected tool and mode.
func (m *HkxConverterModule) onToolOrModeChanged() {
	mode := m.selectedMode()
	if mode.RequiresSkeleton() {
		m.skeletonEntry.Enable()
	} else {
		m.skeletonEntry.Disable()
	}

	kind, ok := m.selectedTool()
	if !ok {
		return
	}
	spec, ok := m.registry.Lookup(kind)
	if !ok {
		return
	}

	// Reset an unsupported format selection to one the tool can emit
	if !spec.SupportsFormat(m.selectedFormat()) {
		m.formatSelect.SetSelected(spec.DefaultFormat().Label())
	}
}

// scanSourceFolder collects convertible files from the selected source folder
func (m *HkxConverterModule) scanSourceFolder() {
	dir := m.sourceFolderEntry.Text
	if dir == "" {
		m.ShowError(errors.New(locales.Translate("hkx.err.nosource")))
		return
	}

	before := len(m.inputs)
	inputs, err := hkxconvert.CollectInputs(dir, m.selectedFilter(), m.recursiveCheckbox.Checked, m.inputs)
	if err != nil {
		m.HandleError(err, common.OperationScanFolder)
		return
	}
	m.inputs = inputs
	m.refreshFileList()

	m.AddInfoMessage(fmt.Sprintf(locales.Translate("hkx.status.filesfound"), len(m.inputs)-before, dir))
}

// startConversion validates the settings and launches a conversion batch
func (m *HkxConverterModule) startConversion() {
	if m.isConverting {
		m.AddWarningMessage(locales.Translate("hkx.err.running"))
		return
	}

	kind, ok := m.selectedTool()
	if !ok {
		m.ShowError(errors.New(locales.Translate("hkx.err.notool")))
		return
	}

	cfg := hkxconvert.Config{
		Tool:   kind,
		Mode:   m.selectedMode(),
		Format: m.selectedFormat(),
		Output: hkxconvert.OutputSpec{
			Root:            m.outputFolderEntry.Text,
			Suffix:          m.suffixEntry.Text,
			CustomExtension: m.extensionEntry.Text,
		},
		Skeleton: m.skeletonEntry.Text,
		ToolsDir: m.toolsDirEntry.Text,
	}

	if common.DirectoryExists(cfg.Output.Root) {
		if err := common.IsDirWritable(cfg.Output.Root); err != nil {
			m.HandleError(err, common.OperationBatchConvert)
			return
		}
	}

	batch, err := hkxconvert.NewBatch(cfg, m.inputs, m.registry, m.Logger)
	if err != nil {
		m.HandleError(err, common.OperationBatchConvert)
		return
	}

	m.isConverting = true
	m.batch = batch
	m.ClearStatusMessages()

	m.SetCancelHandler(batch.Cancel)
	m.ShowProgressDialog(locales.Translate("hkx.dialog.header"))
	m.AddInfoMessage(fmt.Sprintf(locales.Translate("hkx.status.starting"), len(batch.Tasks())))

	common.DisableModuleControls(m.submitBtn, m.scanBtn, m.addFileBtn, m.clearBtn)

	batch.Start()
	go m.consumeEvents(batch)
}

// consumeEvents drains the batch progress stream and mirrors it into the
// progress dialog and status messages.
func (m *HkxConverterModule) consumeEvents(batch *hkxconvert.Batch) {
	completed := 0

	for ev := range batch.Events() {
		switch ev.State {
		case hkxconvert.StateStarted:
			m.UpdateProgressStatus(
				float64(completed)/float64(ev.TotalFiles),
				fmt.Sprintf(locales.Translate("hkx.status.progress"), ev.FileName, completed+1, ev.TotalFiles),
			)

		case hkxconvert.StateSucceeded:
			completed++
			if ev.Message != "" {
				m.AddWarningMessage(fmt.Sprintf("%s: %s", ev.FileName, ev.Message))
			} else {
				m.AddSuccessMessage(fmt.Sprintf(locales.Translate("hkx.status.converted"), ev.FileName))
			}
			m.UpdateProgressStatus(
				float64(completed)/float64(ev.TotalFiles),
				fmt.Sprintf(locales.Translate("hkx.status.progress"), ev.FileName, completed, ev.TotalFiles),
			)

		case hkxconvert.StateFailed:
			completed++
			m.AddErrorMessage(fmt.Sprintf(locales.Translate("hkx.status.failed"), ev.FileName, ev.Message))
			m.UpdateProgressStatus(
				float64(completed)/float64(ev.TotalFiles),
				fmt.Sprintf(locales.Translate("hkx.status.progress"), ev.FileName, completed, ev.TotalFiles),
			)

		case hkxconvert.StateBatchCancelled:
			m.HandleProcessCancellation("hkx.status.cancelled", ev.Succeeded, ev.Total)

		case hkxconvert.StateBatchCompleted:
			m.UpdateProgressStatus(1.0, fmt.Sprintf(locales.Translate("hkx.status.done"), ev.Succeeded, ev.Total))
			if ev.Succeeded < ev.Total {
				m.AddWarningMessage(fmt.Sprintf(locales.Translate("hkx.status.donepartial"), ev.Succeeded, ev.Total))
			} else {
				m.AddSuccessMessage(fmt.Sprintf(locales.Translate("hkx.status.doneall"), ev.Succeeded))
			}
			m.CompleteProgressDialog()
		}
	}

	m.isConverting = false
	m.batch = nil
	common.EnableModuleControls(m.submitBtn, m.scanBtn, m.addFileBtn, m.clearBtn)
	common.UpdateButtonToCompleted(m.submitBtn)
}
