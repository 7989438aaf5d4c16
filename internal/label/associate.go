// Package label selects a human-readable label for a detected barcode from
// the text lines on its page, using a distance-and-direction heuristic.
package label

import (
	"image"
	"math"
	"strings"

	"github.com/MeKo-Tech/scanbar/internal/layout"
)

// Direction is the quantized cardinal direction of a text line relative to
// a barcode.
type Direction int

const (
	East Direction = iota
	South
	West
	North
)

func (d Direction) String() string {
	switch d {
	case North:
		return "north"
	case South:
		return "south"
	case West:
		return "west"
	default:
		return "east"
	}
}

// Weights holds the direction distance penalties. Labels usually sit below
// or beside a code and rarely above it, so NORTH is debuffed hardest.
type Weights struct {
	NorthPenalty float64
	SidePenalty  float64
}

// DefaultWeights returns the standard penalty weights.
func DefaultWeights() Weights {
	return Weights{NorthPenalty: 0.10, SidePenalty: 0.05}
}

// pageCutoffRatio bounds candidate distance relative to the larger page
// dimension.
const pageCutoffRatio = 0.25

// Associate selects the best-matching text line for a barcode bbox among
// the page's pixel-rescaled lines. It is a pure function of its inputs;
// ties are broken by enumeration order. The boolean reports whether any
// candidate survived the filters.
func Associate(box image.Rectangle, page layout.Page, lines []layout.TextLine, w Weights) (string, bool) {
	minDistance := float64(min(box.Dx(), box.Dy())) / 2
	maxDistance := pageCutoffRatio * float64(max(page.PixelW, page.PixelH))

	bcx := float64(box.Min.X+box.Max.X) / 2
	bcy := float64(box.Min.Y+box.Max.Y) / 2

	best := -1
	bestScore := math.Inf(1)
	for i, ln := range lines {
		lcx := float64(ln.Pixel.Min.X+ln.Pixel.Max.X) / 2
		lcy := float64(ln.Pixel.Min.Y+ln.Pixel.Max.Y) / 2

		dist := centerDistance(bcx, bcy, lcx, lcy)
		if dist >= maxDistance || dist <= minDistance {
			continue
		}
		if ln.Pixel.In(box) {
			continue
		}

		dir := Quantize(math.Atan2(lcy-bcy, lcx-bcx))
		score := dist * (1 + penalty(dir, w))
		if score < bestScore {
			bestScore = score
			best = i
		}
	}
	if best < 0 {
		return "", false
	}
	return strings.TrimSpace(lines[best].Text), true
}

// centerDistance is the Euclidean center-to-center distance, degenerating
// to a 1-D absolute difference when the centers align exactly on one axis.
func centerDistance(x0, y0, x1, y1 float64) float64 {
	switch {
	case x0 == x1:
		return math.Abs(y1 - y0)
	case y0 == y1:
		return math.Abs(x1 - x0)
	default:
		return math.Hypot(x1-x0, y1-y0)
	}
}

// Quantize maps an angle (radians, image coordinates with y growing down)
// to a cardinal direction. Sectors are 90 degrees wide, centered on the
// axis directions, with boundaries at odd multiples of 45 degrees:
// exclusive on the lower bound, inclusive on the upper, EAST wrapping
// across zero.
func Quantize(angle float64) Direction {
	a := math.Mod(angle, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	switch {
	case a > math.Pi/4 && a <= 3*math.Pi/4:
		return South
	case a > 3*math.Pi/4 && a <= 5*math.Pi/4:
		return West
	case a > 5*math.Pi/4 && a <= 7*math.Pi/4:
		return North
	default:
		return East
	}
}

func penalty(d Direction, w Weights) float64 {
	switch d {
	case North:
		return w.NorthPenalty
	case East, West:
		return w.SidePenalty
	default:
		return 0
	}
}
