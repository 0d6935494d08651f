package render

import (
	"image"

	"gocv.io/x/gocv"

	"github.com/ayusman/handrps/internal/detector"
)

// Style controls how a hand skeleton is drawn.
type Style struct {
	JointRadius    int
	JointThickness int
	BoneThickness  int
}

// DefaultStyle draws 2px white joints and 1px gray bones.
func DefaultStyle() Style {
	return Style{JointRadius: 2, JointThickness: 2, BoneThickness: 1}
}

// Hand draws the landmarks of hand onto img. Bones are drawn first so the
// joints sit on top. Only reported landmarks are drawn.
func Hand(img *gocv.Mat, hand *detector.HandLandmarks, style Style) {
	if img == nil || img.Empty() || hand == nil {
		return
	}
	w, h := img.Cols(), img.Rows()

	for _, c := range detector.Connections {
		if !hand.Has(c[0]) || !hand.Has(c[1]) {
			continue
		}
		gocv.Line(img, pixel(hand.Points[c[0]], w, h), pixel(hand.Points[c[1]], w, h), Gray, style.BoneThickness)
	}

	for i := 0; i < hand.Count && i < detector.NumLandmarks; i++ {
		gocv.Circle(img, pixel(hand.Points[i], w, h), style.JointRadius, White, style.JointThickness)
	}
}

// pixel converts a normalized point to image coordinates.
func pixel(p detector.Point3D, w, h int) image.Point {
	return image.Pt(int(p.X*float64(w)), int(p.Y*float64(h)))
}
