package geometry

import (
	"strings"
	"unicode/utf8"
)

const ellipsis = "…"

// FitOptions bounds the font sizes tried while fitting a label.
type FitOptions struct {
	MaxFontSize float64
	MinFontSize float64
	Step        float64
}

// DefaultFitOptions are in world units at zoom 1.
func DefaultFitOptions() FitOptions {
	return FitOptions{MaxFontSize: 13, MinFontSize: 7, Step: 0.5}
}

// FittedLabel is a label wrapped and sized for a node interior.
type FittedLabel struct {
	Lines      []string
	FontSize   float64
	LineHeight float64
	// Truncated is set when lines were dropped at the minimum size
	Truncated bool
}

// BlockHeight is the height of the wrapped text block.
func (f FittedLabel) BlockHeight() float64 {
	return float64(len(f.Lines)) * f.LineHeight
}

// FitLabel wraps label into box, shrinking the font until the block fits.
// Once the minimum size is reached, lines that do not fit vertically are
// dropped and the last kept line is ellipsised, so the result never
// overflows box (unless a single rune is wider than the box).
func FitLabel(label string, box Rect, m Measurer, opts FitOptions) FittedLabel {
	label = strings.TrimSpace(label)
	if opts.Step <= 0 {
		opts.Step = 0.5
	}
	if opts.MinFontSize <= 0 || opts.MinFontSize > opts.MaxFontSize {
		opts.MinFontSize = opts.MaxFontSize
	}
	if label == "" || box.W <= 0 || box.H <= 0 {
		return FittedLabel{FontSize: opts.MinFontSize, LineHeight: m.LineHeight(opts.MinFontSize)}
	}

	for size := opts.MaxFontSize; size > opts.MinFontSize; size -= opts.Step {
		lines := WrapText(label, box.W, m, size)
		if fitsBox(lines, box, m, size) {
			return FittedLabel{Lines: lines, FontSize: size, LineHeight: m.LineHeight(size)}
		}
	}

	size := opts.MinFontSize
	lh := m.LineHeight(size)
	lines := WrapText(label, box.W, m, size)
	if fitsBox(lines, box, m, size) {
		return FittedLabel{Lines: lines, FontSize: size, LineHeight: lh}
	}

	keep := int(box.H / lh)
	if keep <= 0 {
		return FittedLabel{FontSize: size, LineHeight: lh, Truncated: true}
	}
	if keep > len(lines) {
		keep = len(lines)
	}
	kept := append([]string(nil), lines[:keep]...)
	kept[keep-1] = ellipsize(kept[keep-1], box.W, m, size)
	return FittedLabel{Lines: kept, FontSize: size, LineHeight: lh, Truncated: true}
}

func fitsBox(lines []string, box Rect, m Measurer, size float64) bool {
	if float64(len(lines))*m.LineHeight(size) > box.H {
		return false
	}
	for _, line := range lines {
		if m.Width(line, size) > box.W {
			return false
		}
	}
	return true
}

// WrapText greedily breaks text into lines no wider than width. Words that
// are wider than a full line are split at rune boundaries.
func WrapText(text string, width float64, m Measurer, size float64) []string {
	words := strings.Fields(text)
	var lines []string
	current := ""

	for _, word := range words {
		candidate := word
		if current != "" {
			candidate = current + " " + word
		}
		if m.Width(candidate, size) <= width {
			current = candidate
			continue
		}
		if current != "" {
			lines = append(lines, current)
			current = ""
		}
		if m.Width(word, size) <= width {
			current = word
			continue
		}
		chunks := splitRunes(word, width, m, size)
		lines = append(lines, chunks[:len(chunks)-1]...)
		current = chunks[len(chunks)-1]
	}
	if current != "" {
		lines = append(lines, current)
	}
	return lines
}

// splitRunes breaks a single word into chunks that each fit width. Every
// chunk holds at least one rune.
func splitRunes(word string, width float64, m Measurer, size float64) []string {
	var chunks []string
	for word != "" {
		end := 0
		for i, r := range word {
			next := i + utf8.RuneLen(r)
			if end > 0 && m.Width(word[:next], size) > width {
				break
			}
			end = next
		}
		chunks = append(chunks, word[:end])
		word = word[end:]
	}
	return chunks
}

func ellipsize(line string, width float64, m Measurer, size float64) string {
	for line != "" {
		if m.Width(line+ellipsis, size) <= width {
			return line + ellipsis
		}
		_, n := utf8.DecodeLastRuneInString(line)
		line = strings.TrimRight(line[:len(line)-n], " ")
	}
	if m.Width(ellipsis, size) <= width {
		return ellipsis
	}
	return ""
}
