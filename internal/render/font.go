// Package render draws the hand skeleton and status text onto preview
// frames and encodes frames for the MJPEG stream and the results gallery.
package render

import (
	"image/color"

	"gocv.io/x/gocv"
)

var (
	// White is used for joints and text.
	White = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	// Gray is used for bones.
	Gray = color.RGBA{R: 128, G: 128, B: 128, A: 255}
	// Black backs text labels.
	Black = color.RGBA{A: 255}
)

// Font holds the text parameters passed to gocv.
type Font struct {
	Face      gocv.HersheyFont
	Scale     float64
	Color     color.RGBA
	Thickness int
	LineType  gocv.LineType
	Pad       int
}

// DefaultFont returns the HUD font.
func DefaultFont() Font {
	return Font{
		Face:      gocv.FontHersheySimplex,
		Scale:     0.7,
		Color:     White,
		Thickness: 2,
		LineType:  gocv.LineAA,
		Pad:       6,
	}
}
