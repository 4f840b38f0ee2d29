package viz

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/san-kum/musclemesh/internal/dynamo"
)

// SVG writes every set dot of the canvas as a circle, scale units apart,
// in the theme's primary colour on a dark background.
func SVG(w io.Writer, c *Canvas, scale float64, t Theme) error {
	if scale <= 0 {
		return dynamo.Bounded("scale", scale, "> 0")
	}
	pw, ph := c.Pixels()
	width, height := float64(pw)*scale, float64(ph)*scale

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<g fill="%s">
`, width, height, width, height, string(t.Primary))

	r := scale * 0.4
	for y := 0; y < ph; y++ {
		for x := 0; x < pw; x++ {
			if !c.IsSet(x, y) {
				continue
			}
			cx := float64(x)*scale + scale/2
			cy := float64(y)*scale + scale/2
			fmt.Fprintf(bw, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\"/>\n", cx, cy, r)
		}
	}
	bw.WriteString("</g>\n</svg>\n")
	return bw.Flush()
}

// TraceSVG draws ys against xs as a single polyline fitted to width by
// height with a tenth of the range as padding. Non-finite points are
// skipped.
func TraceSVG(w io.Writer, xs, ys []float64, width, height int, stroke string) error {
	n := min(len(xs), len(ys))
	minX, maxX := math.Inf(1), math.Inf(-1)
	minY, maxY := math.Inf(1), math.Inf(-1)
	count := 0
	for i := 0; i < n; i++ {
		if !finite(xs[i]) || !finite(ys[i]) {
			continue
		}
		minX, maxX = min(minX, xs[i]), max(maxX, xs[i])
		minY, maxY = min(minY, ys[i]), max(maxY, ys[i])
		count++
	}
	if count < 2 {
		return fmt.Errorf("trace needs at least 2 points, got %d: %w", count, dynamo.ErrEmptyRun)
	}

	rangeX, rangeY := maxX-minX, maxY-minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	minY -= rangeY * 0.1
	rangeX *= 1.2
	rangeY *= 1.2

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<path fill="none" stroke="%s" stroke-width="1.5" d="`, width, height, width, height, stroke)

	cmd := "M"
	for i := 0; i < n; i++ {
		if !finite(xs[i]) || !finite(ys[i]) {
			continue
		}
		x := (xs[i] - minX) / rangeX * float64(width)
		y := float64(height) - (ys[i]-minY)/rangeY*float64(height)
		fmt.Fprintf(bw, "%s%.1f,%.1f ", cmd, x, y)
		cmd = "L"
	}
	bw.WriteString("\"/>\n</svg>\n")
	return bw.Flush()
}

// SVGFile renders the canvas to path.
func SVGFile(path string, c *Canvas, scale float64, t Theme) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := SVG(f, c, scale, t); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
