package render

import (
	"bufio"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// WriteSVG serialises the scene as a standalone SVG document with a viewBox
// matching the scene size. Click targets carry data-string and data-fret attributes.
func WriteSVG(w io.Writer, scene Scene) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %s %s" width="%s" height="%s">`+"\n",
		num(scene.Width), num(scene.Height), num(scene.Width), num(scene.Height))

	for _, layer := range scene.Layers {
		fmt.Fprintf(bw, `<g class="%s">`+"\n", layer.Kind)
		for _, shape := range layer.Shapes {
			writeShape(bw, shape)
		}
		bw.WriteString("</g>\n")
	}
	bw.WriteString("</svg>\n")
	return bw.Flush()
}

// SVG renders the scene to a string.
func SVG(scene Scene) string {
	var sb strings.Builder
	_ = WriteSVG(&sb, scene)
	return sb.String()
}

func writeShape(w *bufio.Writer, shape Shape) {
	switch s := shape.(type) {
	case Line:
		fmt.Fprintf(w, `<line x1="%s" y1="%s" x2="%s" y2="%s" stroke="%s" stroke-width="%s"%s/>`+"\n",
			num(s.X1), num(s.Y1), num(s.X2), num(s.Y2), s.Stroke, num(s.Width), opacity(s.Opacity))
	case Rect:
		fmt.Fprintf(w, `<rect x="%s" y="%s" width="%s" height="%s" fill="%s"`,
			num(s.X), num(s.Y), num(s.W), num(s.H), s.Fill)
		if s.Radius > 0 {
			fmt.Fprintf(w, ` rx="%s"`, num(s.Radius))
		}
		if s.Stroke != "" {
			fmt.Fprintf(w, ` stroke="%s" stroke-width="%s"`, s.Stroke, num(s.StrokeWidth))
		}
		if s.Coord != nil {
			fmt.Fprintf(w, ` data-string="%d" data-fret="%d"`, s.Coord.String, s.Coord.Fret)
		}
		fmt.Fprintf(w, "%s/>\n", opacity(s.Opacity))
	case Circle:
		fmt.Fprintf(w, `<circle cx="%s" cy="%s" r="%s" fill="%s"%s/>`+"\n",
			num(s.CX), num(s.CY), num(s.R), s.Fill, opacity(s.Opacity))
	case Text:
		weight := ""
		if s.Bold {
			weight = ` font-weight="bold"`
		}
		fmt.Fprintf(w, `<text x="%s" y="%s" fill="%s" font-size="%s"%s text-anchor="middle" dominant-baseline="central">`,
			num(s.X), num(s.Y), s.Fill, num(s.Size), weight)
		_ = xml.EscapeText(w, []byte(s.Content))
		w.WriteString("</text>\n")
	}
}

func opacity(o float64) string {
	if o >= 1 {
		return ""
	}
	return ` opacity="` + num(o) + `"`
}

func num(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
