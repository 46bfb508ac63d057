// MODUL: compositor
// ZWECK: Gekacheltes Super-Resolution-Upscaling mit einem festen Modellfaktor
// INPUT: Bild (beliebiges image.Image), Zielskalierung, Fortschritts-Callback
// OUTPUT: Hochskaliertes *image.NRGBA (gerade Alpha, nicht vormultipliziert)
// NEBENEFFEKTE: Ruft das Inference-Backend pro Tile auf
// ABHAENGIGKEITEN: golang.org/x/image/draw (Alpha-Glaettung, Herunterskalieren)
// HINWEISE: RGB kommt aus dem Modell, Alpha wird getrennt bilinear skaliert
//           und am Ende eingesetzt. Das Modell sieht nur RGB.

package upscale

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"runtime"
	"slices"

	"golang.org/x/image/draw"

	"github.com/chishi/forge/logutil"
)

// Backend ist eine geladene Inference-Session mit nativem Faktor S.
// Infer erhaelt einen CHW-Tensor [3, height, width] in [0, 1] und liefert
// [3, height*S, width*S].
type Backend interface {
	Scale() int
	Loaded() bool
	Infer(ctx context.Context, input []float32, width, height int) ([]float32, error)
}

// ProgressFunc erhaelt den Fortschritt in Prozent [0, 100]
type ProgressFunc func(percent float64)

// Options konfiguriert einen Compositor
type Options struct {
	// TileSize ueberschreibt die adaptive Tile-Kante (0 = TileSizeFor)
	TileSize int
	// PrePadding ist der gespiegelte Rand pro Tile in Quellpixeln
	PrePadding int
	// Scales sind die erlaubten Zielskalierungen
	Scales []int
}

// DefaultOptions gibt die Standard-Konfiguration zurueck
func DefaultOptions() Options {
	return Options{
		PrePadding: PrePadding,
		Scales:     slices.Clone(DefaultScales),
	}
}

// Compositor setzt Modellausgaben pro Tile zu einem Gesamtbild zusammen.
// Zustand pro Lauf liegt auf dem Stack; parallele Laeufe sind moeglich,
// solange das Backend selbst parallele Infer-Aufrufe erlaubt.
type Compositor struct {
	backend Backend
	opts    Options
}

// New erstellt einen Compositor
func New(backend Backend, opts Options) *Compositor {
	if opts.PrePadding <= 0 {
		opts.PrePadding = PrePadding
	}
	if len(opts.Scales) == 0 {
		opts.Scales = slices.Clone(DefaultScales)
	}
	return &Compositor{backend: backend, opts: opts}
}

// ============================================================================
// Upscale
// ============================================================================

// Upscale skaliert img um den Faktor target. Bei ErrCancelled oder einem
// Fehler gibt es kein Ergebnisbild.
func (c *Compositor) Upscale(ctx context.Context, img image.Image, target int, fn ProgressFunc) (*image.NRGBA, error) {
	if c.backend == nil || !c.backend.Loaded() {
		return nil, ErrModelNotLoaded
	}

	if !slices.Contains(c.opts.Scales, target) {
		return nil, fmt.Errorf("%w: %dx", ErrUnsupportedScale, target)
	}

	native := c.backend.Scale()
	plan, err := PlanFor(native, target)
	if err != nil {
		return nil, err
	}

	if img == nil || img.Bounds().Empty() {
		return nil, ErrEmptyImage
	}

	if fn == nil {
		fn = func(float64) {}
	}

	src := toNRGBA(img)
	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	slog.Debug("upscale start", "width", w, "height", h, "target", target, "native", native, "passes", plan.Passes, "resample", plan.Resample)

	fn(0)

	out := src
	step := 100 / float64(plan.Passes)
	for p := range plan.Passes {
		if ctx.Err() != nil {
			return nil, ErrCancelled
		}

		lo := float64(p) * step
		out, err = c.pass(ctx, out, native, lo, lo+step, fn)
		if err != nil {
			return nil, err
		}
	}

	if plan.Resample {
		dst := image.NewNRGBA(image.Rect(0, 0, w*target, h*target))
		draw.CatmullRom.Scale(dst, dst.Bounds(), out, out.Bounds(), draw.Src, nil)
		out = dst
	}

	if plan.Passes > 1 || plan.Resample {
		c.restoreAlpha(out, src, target)
	}

	fn(100)
	slog.Debug("upscale done", "width", out.Bounds().Dx(), "height", out.Bounds().Dy())
	return out, nil
}

// tileSize waehlt die Tile-Kante fuer ein w x h Quellbild
func (c *Compositor) tileSize(w, h int) int {
	if c.opts.TileSize > 0 {
		return c.opts.TileSize
	}
	return TileSizeFor(max(w, h))
}

// pass fuehrt einen vollstaendigen Tile-Durchlauf mit Faktor s aus und
// meldet Fortschritt im Bereich [lo, hi].
func (c *Compositor) pass(ctx context.Context, src *image.NRGBA, s int, lo, hi float64, fn ProgressFunc) (*image.NRGBA, error) {
	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	pad := c.opts.PrePadding
	size := c.tileSize(w, h)
	tiles := Tiles(w, h, size, pad)

	slog.Debug("upscale pass", "width", w, "height", h, "scale", s, "tile", size, "tiles", len(tiles))

	canvas := image.NewNRGBA(image.Rect(0, 0, w*s, h*s))
	alpha := image.NewAlpha(canvas.Bounds())
	srcAlpha := alphaOf(src)

	for i, t := range tiles {
		if ctx.Err() != nil {
			return nil, ErrCancelled
		}

		pw, ph := t.Padded.Dx(), t.Padded.Dy()
		output, err := c.backend.Infer(ctx, TileTensor(src, t), pw, ph)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ErrCancelled
			}
			return nil, &InferenceError{Tile: i, Err: err}
		}

		ow, oh := pw*s, ph*s
		if len(output) != 3*ow*oh {
			return nil, &InferenceError{Tile: i, Err: fmt.Errorf("output has %d values, want %d", len(output), 3*ow*oh)}
		}

		dst := image.Rect(t.Core.Min.X*s, t.Core.Min.Y*s, t.Core.Max.X*s, t.Core.Max.Y*s)
		draw.Draw(canvas, dst, TensorToNRGBA(output, ow, oh), image.Pt(pad*s, pad*s), draw.Src)
		draw.BiLinear.Scale(alpha, dst, srcAlpha, t.Core, draw.Src, nil)

		logutil.Trace("upscale tile", "index", i, "core", t.Core, "padded", t.Padded)

		fn(lo + (hi-lo)*float64(i+1)/float64(len(tiles)))
		runtime.Gosched()
	}

	for i, a := range alpha.Pix {
		canvas.Pix[i*4+3] = a
	}
	return canvas, nil
}

// restoreAlpha ersetzt den Alphakanal von dst durch das Alpha des
// Originalbilds, kachelweise um target skaliert. Nach mehreren Durchlaeufen
// oder dem Resample stammt dst sonst aus bereits skaliertem Alpha.
func (c *Compositor) restoreAlpha(dst, src *image.NRGBA, target int) {
	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	srcAlpha := alphaOf(src)
	alpha := image.NewAlpha(dst.Bounds())

	for _, t := range Tiles(w, h, c.tileSize(w, h), 0) {
		r := image.Rect(t.Core.Min.X*target, t.Core.Min.Y*target, t.Core.Max.X*target, t.Core.Max.Y*target)
		draw.BiLinear.Scale(alpha, r, srcAlpha, t.Core, draw.Src, nil)
	}

	for i, a := range alpha.Pix {
		dst.Pix[i*4+3] = a
	}
}

// ============================================================================
// Hilfsfunktionen
// ============================================================================

// toNRGBA konvertiert img in ein NRGBA mit Ursprung (0, 0)
func toNRGBA(img image.Image) *image.NRGBA {
	b := img.Bounds()
	if n, ok := img.(*image.NRGBA); ok && b.Min == (image.Point{}) && n.Stride == 4*b.Dx() {
		return n
	}

	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}

// alphaOf extrahiert den Alpha-Kanal
func alphaOf(img *image.NRGBA) *image.Alpha {
	a := image.NewAlpha(img.Bounds())
	for i := range a.Pix {
		a.Pix[i] = img.Pix[i*4+3]
	}
	return a
}
