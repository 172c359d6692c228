package screens

// Palette, as #RRGGBB for the renderer.
const (
	ColorBlue           = "#394264"
	ColorBlueDark       = "#252B44"
	ColorGrey           = "#EFEFEF"
	ColorGreyDark       = "#CCCCCC"
	ColorGreyLight      = "#FFFFFF"
	ColorRed            = "#E53013"
	ColorRedDark        = "#990000"
	ColorRedLight       = "#FF3300"
	ColorGreen          = "#33CC33"
	ColorInputHighlight = "#0099FF"
)
