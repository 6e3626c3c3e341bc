package illustration

import (
	"bytes"
	"context"
	"hash/fnv"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"math/rand/v2"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/eternisai/taleweaver/internal/media"
	"github.com/eternisai/taleweaver/internal/pipeline"
)

// PlaceholderProviderName is the name of the procedural image renderer. It serves as the
// image fallback and may also be listed as a tier.
const PlaceholderProviderName = "placeholder"

// Theme is the color scheme of a placeholder image.
type Theme struct {
	Name      string
	Keywords  []string
	Base      color.RGBA
	Accent    color.RGBA
	Secondary color.RGBA
}

var themes = []Theme{
	{"indian", []string{"elephant", "temple", "indian", "hindu"},
		rgb(255, 248, 220), rgb(184, 134, 11), rgb(220, 20, 60)},
	{"nature", []string{"tree", "forest", "nature", "green"},
		rgb(240, 255, 240), rgb(34, 139, 34), rgb(107, 142, 35)},
	{"water", []string{"ocean", "river", "water", "blue"},
		rgb(240, 248, 255), rgb(30, 144, 255), rgb(70, 130, 180)},
	{"fire", []string{"fire", "sun", "flame", "red"},
		rgb(255, 250, 240), rgb(255, 69, 0), rgb(255, 140, 0)},
}

var elegantTheme = Theme{"elegant", nil, rgb(248, 248, 255), rgb(123, 104, 238), rgb(147, 112, 219)}

func rgb(r, g, b uint8) color.RGBA { return color.RGBA{r, g, b, 255} }

// ThemeFor picks the theme whose keywords appear first in the theme order.
func ThemeFor(description string) Theme {
	lower := strings.ToLower(description)
	for _, t := range themes {
		for _, k := range t.Keywords {
			if strings.Contains(lower, k) {
				return t
			}
		}
	}
	return elegantTheme
}

// Placeholder renders a themed PNG locally. It fails only when the file cannot be written.
type Placeholder struct{}

// Name implements pipeline.Provider.
func (Placeholder) Name() string { return PlaceholderProviderName }

// Attempt implements pipeline.Provider.
func (Placeholder) Attempt(_ context.Context, req pipeline.Request, ws *pipeline.Workspace) (media.File, error) {
	params := ParamsFrom(req)
	theme := ThemeFor(params.Prompt)

	data, err := RenderPlaceholder(params.Prompt, params.ArtStyle)
	if err != nil {
		return media.File{}, err
	}

	path, err := ws.WriteFile(".png", data)
	if err != nil {
		return media.File{}, err
	}

	return media.NewFile(path, "image/png", params.describe("theme", theme.Name))
}

// RenderPlaceholder draws the placeholder for a description and encodes it as PNG. The same
// inputs always produce the same image.
func RenderPlaceholder(description, style string) ([]byte, error) {
	theme := ThemeFor(description)
	img := image.NewRGBA(image.Rect(0, 0, imageSize, imageSize))

	h := fnv.New64a()
	h.Write([]byte(description))
	seed := h.Sum64()
	r := rand.New(rand.NewPCG(seed, seed>>11|1))

	gradient(img, theme)
	decorate(img, theme, r)
	caption(img, theme, description, style)
	border(img, theme)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// gradient fills a radial blend from the base color toward the accent.
func gradient(img *image.RGBA, t Theme) {
	const center = imageSize / 2
	maxRadius := math.Hypot(center, center)

	for y := range imageSize {
		for x := range imageSize {
			alpha := math.Hypot(float64(x-center), float64(y-center)) / maxRadius
			img.SetRGBA(x, y, color.RGBA{
				R: blend(t.Base.R, t.Accent.R, alpha),
				G: blend(t.Base.G, t.Accent.G, alpha),
				B: blend(t.Base.B, t.Accent.B, alpha),
				A: 255,
			})
		}
	}
}

func blend(base, accent uint8, alpha float64) uint8 {
	v := float64(base)*(1-alpha*0.3) + float64(accent)*alpha*0.1
	return uint8(math.Min(255, math.Max(0, v)))
}

func decorate(img *image.RGBA, t Theme, r *rand.Rand) {
	switch t.Name {
	case "indian":
		// Lotus ring.
		for i := range 8 {
			a := float64(i) * math.Pi / 4
			fillCircle(img, 256+80*math.Cos(a), 256+80*math.Sin(a), 15, t.Accent)
		}
	case "nature":
		for range 12 {
			x, y := float64(50+r.IntN(413)), float64(50+r.IntN(413))
			fillEllipse(img, x, y, 10, 20, t.Accent)
			fillEllipse(img, x, y, 20, 10, t.Secondary)
		}
	case "water":
		for y := 100; y < 400; y += 40 {
			for x := 0; x < imageSize; x += 20 {
				fillCircle(img, float64(x), float64(y)+10*math.Sin(float64(x)*0.1), 3, t.Accent)
			}
		}
	case "fire":
		for i := range 6 {
			a := float64(i) * math.Pi / 3
			x, y := 256+60*math.Cos(a), 256+60*math.Sin(a)
			fillTriangle(img, [3][2]float64{{x, y - 20}, {x - 10, y + 10}, {x + 10, y + 10}}, t.Accent)
		}
	default:
		for range 16 {
			x, y := 100+r.IntN(313), 100+r.IntN(313)
			size := 5 + r.IntN(11)
			fillRect(img, image.Rect(x-size, y-size, x+size, y+size), t.Accent)
		}
	}
}

// caption writes the banner and the wrapped description.
func caption(img *image.RGBA, t Theme, description, style string) {
	face := basicfont.Face7x13

	title := "Story Scene"
	if style != "" {
		title += " - " + style
	}
	title = truncate(title, 60)
	w := font.MeasureString(face, title).Ceil()
	x := (imageSize - w) / 2
	fillRect(img, image.Rect(x-10, 30, x+w+10, 55), t.Accent)
	drawText(img, face, title, x, 47, color.White)

	text := strings.Join(strings.Fields(description), " ")
	if len([]rune(text)) > 80 {
		text = truncate(text, 80) + "..."
	}

	lines := wrapText(text, 35)
	if len(lines) > 3 {
		lines = lines[:3]
	}

	y := 220
	for _, line := range lines {
		w := font.MeasureString(face, line).Ceil()
		x := (imageSize - w) / 2
		fillRect(img, image.Rect(x-8, y-2, x+w+8, y+18), t.Base)
		drawText(img, face, line, x, y+12, color.RGBA{60, 60, 60, 255})
		y += 22
	}
}

func border(img *image.RGBA, t Theme) {
	strokeRect(img, image.Rect(5, 5, 508, 508), 3, t.Accent)
	strokeRect(img, image.Rect(15, 15, 498, 498), 1, t.Secondary)

	const corner = 20
	for _, p := range []image.Point{{15, 15}, {497 - corner, 15}, {15, 497 - corner}, {497 - corner, 497 - corner}} {
		fillRect(img, image.Rect(p.X, p.Y, p.X+corner+1, p.Y+corner+1), t.Accent)
	}
}

func drawText(img *image.RGBA, face font.Face, s string, x, baseline int, c color.Color) {
	d := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(x, baseline),
	}
	d.DrawString(s)
}

func fillRect(img *image.RGBA, r image.Rectangle, c color.RGBA) {
	draw.Draw(img, r.Intersect(img.Bounds()), image.NewUniform(c), image.Point{}, draw.Src)
}

func strokeRect(img *image.RGBA, r image.Rectangle, width int, c color.RGBA) {
	fillRect(img, image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+width), c)
	fillRect(img, image.Rect(r.Min.X, r.Max.Y-width, r.Max.X, r.Max.Y), c)
	fillRect(img, image.Rect(r.Min.X, r.Min.Y, r.Min.X+width, r.Max.Y), c)
	fillRect(img, image.Rect(r.Max.X-width, r.Min.Y, r.Max.X, r.Max.Y), c)
}

func fillCircle(img *image.RGBA, cx, cy, radius float64, c color.RGBA) {
	fillEllipse(img, cx, cy, radius, radius, c)
}

func fillEllipse(img *image.RGBA, cx, cy, rx, ry float64, c color.RGBA) {
	b := image.Rect(int(cx-rx), int(cy-ry), int(cx+rx)+1, int(cy+ry)+1).Intersect(img.Bounds())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			dx, dy := (float64(x)-cx)/rx, (float64(y)-cy)/ry
			if dx*dx+dy*dy <= 1 {
				img.SetRGBA(x, y, c)
			}
		}
	}
}

func fillTriangle(img *image.RGBA, pts [3][2]float64, c color.RGBA) {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range pts {
		minX, maxX = math.Min(minX, p[0]), math.Max(maxX, p[0])
		minY, maxY = math.Min(minY, p[1]), math.Max(maxY, p[1])
	}

	edge := func(a, b [2]float64, x, y float64) float64 {
		return (b[0]-a[0])*(y-a[1]) - (b[1]-a[1])*(x-a[0])
	}

	b := image.Rect(int(minX), int(minY), int(maxX)+1, int(maxY)+1).Intersect(img.Bounds())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			px, py := float64(x), float64(y)
			e0 := edge(pts[0], pts[1], px, py)
			e1 := edge(pts[1], pts[2], px, py)
			e2 := edge(pts[2], pts[0], px, py)
			if (e0 >= 0 && e1 >= 0 && e2 >= 0) || (e0 <= 0 && e1 <= 0 && e2 <= 0) {
				img.SetRGBA(x, y, c)
			}
		}
	}
}

// wrapText splits s into lines of at most width runes, breaking on spaces where possible.
func wrapText(s string, width int) []string {
	var lines []string
	var line []rune

	for _, word := range strings.Fields(s) {
		w := []rune(word)
		for len(w) > width {
			if len(line) > 0 {
				lines = append(lines, string(line))
				line = nil
			}
			lines = append(lines, string(w[:width]))
			w = w[width:]
		}
		if len(line) > 0 && len(line)+1+len(w) > width {
			lines = append(lines, string(line))
			line = nil
		}
		if len(line) > 0 {
			line = append(line, ' ')
		}
		line = append(line, w...)
	}
	if len(line) > 0 {
		lines = append(lines, string(line))
	}
	return lines
}
