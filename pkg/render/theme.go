package render

import (
	"image/color"

	"github.com/cespare/xxhash/v2"
)

// Theme holds the colours and stroke widths used for a frame.
type Theme struct {
	Background     color.RGBA
	EdgeOneSided   Stroke // weight 1
	EdgeMutual     Stroke // weight 2
	NodeStroke     Stroke
	SelectedStroke Stroke
	HoverStroke    Stroke
	Label          color.RGBA
	Ungrouped      color.RGBA
	Palette        []color.RGBA
}

// DefaultTheme is a light theme with a twelve colour group palette.
func DefaultTheme() Theme {
	return Theme{
		Background:     color.RGBA{250, 250, 252, 255},
		EdgeOneSided:   Stroke{Color: color.RGBA{190, 196, 206, 255}, Width: 1},
		EdgeMutual:     Stroke{Color: color.RGBA{70, 82, 104, 255}, Width: 2.6},
		NodeStroke:     Stroke{Color: color.RGBA{90, 98, 112, 255}, Width: 1.2},
		SelectedStroke: Stroke{Color: color.RGBA{230, 81, 0, 255}, Width: 3},
		HoverStroke:    Stroke{Color: color.RGBA{21, 101, 192, 255}, Width: 2.4},
		Label:          color.RGBA{33, 33, 33, 255},
		Ungrouped:      color.RGBA{236, 239, 241, 255},
		Palette: []color.RGBA{
			{227, 242, 253, 255}, // blue
			{232, 245, 233, 255}, // green
			{255, 243, 224, 255}, // orange
			{243, 229, 245, 255}, // purple
			{252, 228, 236, 255}, // pink
			{224, 247, 250, 255}, // cyan
			{255, 253, 231, 255}, // yellow
			{239, 235, 233, 255}, // brown
			{232, 234, 246, 255}, // indigo
			{241, 248, 233, 255}, // light green
			{255, 235, 238, 255}, // red
			{224, 242, 241, 255}, // teal
		},
	}
}

// GroupColor returns the fill for a group. The same name always maps to the
// same palette entry.
func (t Theme) GroupColor(group string) color.RGBA {
	if group == "" || len(t.Palette) == 0 {
		return t.Ungrouped
	}
	return t.Palette[xxhash.Sum64String(group)%uint64(len(t.Palette))]
}
