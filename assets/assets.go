// Package assets embeds static resources bundled into the application binary.
package assets

import (
	_ "embed"

	"fyne.io/fyne/v2"
)

//go:embed logo.svg
var logoSVG []byte

// ResourceAppLogo is the application logo resource
var ResourceAppLogo fyne.Resource = fyne.NewStaticResource("logo.svg", logoSVG)
