// constants.go

// Package common provides shared functionality and constants for the HkxToolbox application.
// This file contains constants used across the application to replace hardcoded strings.
package common

// OperationNames - Constants for operation names used in ErrorContext
const (
	// OperationScanFolder indicates a source folder scan operation
	OperationScanFolder = "ScanFolder"

	// OperationBatchConvert indicates a batch conversion operation
	OperationBatchConvert = "BatchConvert"

	// OperationLoadTools indicates loading converter definitions from a tool file
	OperationLoadTools = "LoadTools"
)

// FileExtensions - Constants for file extensions
const (
	ExtensionHKX = ".hkx"

	ExtensionXML = ".xml"

	ExtensionKF = ".kf"
)

// FileNames - Constants for file names
const (
	// FileNameLog is the name of the application log file
	FileNameLog = "hkxtoolbox_app.log"

	// FolderNameLog is the name of the log folder
	FolderNameLog = "log"
)

// AppIdentifiers - Constants for application identification
const (
	// AppID is the application identifier
	AppID = "com.hkxtoolbox.app"

	// AppName is the application name
	AppName = "HkxToolbox"

	// AppVersion is the application version shown in the about window
	AppVersion = "1.0.0"
)
