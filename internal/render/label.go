package render

import (
	"image"

	"gocv.io/x/gocv"
)

// Label writes text on a filled box whose bottom-left corner is at org.
// The box is clamped so the text stays inside img.
func Label(img *gocv.Mat, text string, org image.Point, font Font) {
	if img == nil || img.Empty() || text == "" {
		return
	}

	size := gocv.GetTextSize(text, font.Face, font.Scale, font.Thickness)
	org = clamp(org, size, font.Pad, img.Cols(), img.Rows())

	box := image.Rect(org.X-font.Pad, org.Y-size.Y-font.Pad, org.X+size.X+font.Pad, org.Y+font.Pad)
	gocv.Rectangle(img, box, Black, -1)
	gocv.PutTextWithParams(img, text, org, font.Face, font.Scale, font.Color, font.Thickness, font.LineType, false)
}

// HUD writes status lines down the top-left corner of img.
func HUD(img *gocv.Mat, lines []string, font Font) {
	if img == nil || img.Empty() {
		return
	}
	y := 0
	for _, line := range lines {
		if line == "" {
			continue
		}
		size := gocv.GetTextSize(line, font.Face, font.Scale, font.Thickness)
		y += size.Y + 3*font.Pad
		Label(img, line, image.Pt(2*font.Pad, y), font)
	}
}

func clamp(org, size image.Point, pad, w, h int) image.Point {
	if org.X < pad {
		org.X = pad
	}
	if limit := w - size.X - pad; org.X > limit {
		org.X = limit
	}
	if org.Y < size.Y+pad {
		org.Y = size.Y + pad
	}
	if limit := h - pad; org.Y > limit {
		org.Y = limit
	}
	return org
}
