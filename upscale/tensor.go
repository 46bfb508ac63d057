package upscale

import (
	"image"
	"math"
)

// TileTensor liest den gepolsterten Bereich eines Tiles als planaren
// CHW-Tensor [3, h, w] mit Werten in [0, 1]. Koordinaten ausserhalb des
// Bildes werden per Mirror auf gueltige Pixel abgebildet. Alpha fliesst
// nicht ein.
func TileTensor(src *image.NRGBA, t Tile) []float32 {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	pw, ph := t.Padded.Dx(), t.Padded.Dy()

	plane := pw * ph
	data := make([]float32, 3*plane)

	for y := range ph {
		sy := Mirror(t.Padded.Min.Y+y, h)
		row := src.Pix[sy*src.Stride:]
		for x := range pw {
			sx := Mirror(t.Padded.Min.X+x, w)
			p := row[sx*4 : sx*4+3]
			i := y*pw + x
			data[i] = float32(p[0]) / 255
			data[plane+i] = float32(p[1]) / 255
			data[2*plane+i] = float32(p[2]) / 255
		}
	}
	return data
}

// TensorToNRGBA wandelt einen CHW-Tensor [3, h, w] in ein Bild. Werte
// werden gerundet und auf [0, 255] begrenzt, Alpha ist voll deckend.
func TensorToNRGBA(data []float32, w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	plane := w * h

	for y := range h {
		row := img.Pix[y*img.Stride:]
		for x := range w {
			i := y*w + x
			o := x * 4
			row[o] = toByte(data[i])
			row[o+1] = toByte(data[plane+i])
			row[o+2] = toByte(data[2*plane+i])
			row[o+3] = 255
		}
	}
	return img
}

func toByte(v float32) uint8 {
	f := math.Floor(float64(v)*255 + 0.5)
	switch {
	case f != f, f <= 0:
		return 0
	case f >= 255:
		return 255
	default:
		return uint8(f)
	}
}
