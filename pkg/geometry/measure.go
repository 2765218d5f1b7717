package geometry

import (
	"fmt"
	"math"
	"sync"
	"unicode/utf8"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
)

// Measurer reports the extent of text rendered at a font size.
type Measurer interface {
	Width(text string, fontSize float64) float64
	LineHeight(fontSize float64) float64
}

// ApproxMeasurer assumes every rune has the same advance. It is used where no
// font is loaded and by tests that need stable numbers.
type ApproxMeasurer struct {
	Advance float64 // advance per rune as a fraction of the font size
	Leading float64 // line height as a multiple of the font size
}

// DefaultApproxMeasurer matches the average advance of a proportional sans face.
var DefaultApproxMeasurer = ApproxMeasurer{Advance: 0.56, Leading: 1.2}

func (m ApproxMeasurer) Width(text string, fontSize float64) float64 {
	return float64(utf8.RuneCountInString(text)) * fontSize * m.Advance
}

func (m ApproxMeasurer) LineHeight(fontSize float64) float64 {
	return fontSize * m.Leading
}

// CellMeasurer measures text on a character grid where every rune occupies
// one cell regardless of font size.
type CellMeasurer struct {
	CellWidth  float64
	CellHeight float64
}

func (m CellMeasurer) Width(text string, _ float64) float64 {
	return float64(utf8.RuneCountInString(text)) * m.CellWidth
}

func (m CellMeasurer) LineHeight(_ float64) float64 { return m.CellHeight }

// FaceMeasurer measures with a real OpenType face. Faces are created lazily
// per half-point size and cached.
type FaceMeasurer struct {
	font *sfnt.Font

	mu    sync.Mutex
	faces map[float64]font.Face
}

// NewFaceMeasurer loads the embedded Go Regular face.
func NewFaceMeasurer() (*FaceMeasurer, error) {
	f, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse embedded font: %w", err)
	}
	return &FaceMeasurer{font: f, faces: make(map[float64]font.Face)}, nil
}

// Face returns a face for fontSize, rounded to the nearest half point.
func (m *FaceMeasurer) Face(fontSize float64) (font.Face, error) {
	key := math.Max(1, math.Round(fontSize*2)/2)

	m.mu.Lock()
	defer m.mu.Unlock()

	if face, ok := m.faces[key]; ok {
		return face, nil
	}
	face, err := opentype.NewFace(m.font, &opentype.FaceOptions{
		Size:    key,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, fmt.Errorf("create face at %.1fpt: %w", key, err)
	}
	m.faces[key] = face
	return face, nil
}

func (m *FaceMeasurer) Width(text string, fontSize float64) float64 {
	face, err := m.Face(fontSize)
	if err != nil {
		return DefaultApproxMeasurer.Width(text, fontSize)
	}
	return float64(font.MeasureString(face, text)) / 64
}

func (m *FaceMeasurer) LineHeight(fontSize float64) float64 {
	face, err := m.Face(fontSize)
	if err != nil {
		return DefaultApproxMeasurer.LineHeight(fontSize)
	}
	return float64(face.Metrics().Height) / 64
}

// Close releases cached faces.
func (m *FaceMeasurer) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, face := range m.faces {
		_ = face.Close()
		delete(m.faces, k)
	}
	return nil
}
