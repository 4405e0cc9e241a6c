package crop

// Rectangle is a crop window in source pixel coordinates.
type Rectangle struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// ComputeCrop centers a window of the target aspect ratio inside the source
// canvas, trimming exactly one axis. A source at least as wide as the target
// keeps its full height and gives up width; a taller source keeps its full
// width and gives up height. Fractional sizes and offsets truncate toward
// zero, so the window never leaves the canvas. Degenerate input returns the
// full source bounds.
func ComputeCrop(srcWidth, srcHeight int, ratio float64) Rectangle {
	if srcWidth <= 0 || srcHeight <= 0 || ratio <= 0 {
		return Rectangle{Width: srcWidth, Height: srcHeight}
	}
	if float64(srcWidth)/float64(srcHeight) >= ratio {
		newWidth := int(float64(srcHeight) * ratio)
		return Rectangle{
			X:      (srcWidth - newWidth) / 2,
			Y:      0,
			Width:  newWidth,
			Height: srcHeight,
		}
	}
	newHeight := int(float64(srcWidth) / ratio)
	return Rectangle{
		X:      0,
		Y:      (srcHeight - newHeight) / 2,
		Width:  srcWidth,
		Height: newHeight,
	}
}
