package ocr

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/kumarraju1982/Convertx/internal/pdf"
)

// encodeGray builds a PNG page image from a synthetic gray gradient
// spanning [lo, hi].
func encodeGray(t *testing.T, w, h int, lo, hi uint8) pdf.PageImage {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, w, h))
	span := int(hi) - int(lo)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := int(lo)
			if w > 1 {
				v += span * x / (w - 1)
			}
			img.SetGray(x, y, color.Gray{Y: uint8(v)})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return pdf.PageImage{PageNumber: 1, PNG: buf.Bytes(), Width: w, Height: h, DPI: 150}
}

func TestPreprocess_Never(t *testing.T) {
	in := encodeGray(t, 50, 50, 100, 140)
	out, err := Preprocess(in, "never")
	if err != nil {
		t.Fatalf("Preprocess() error = %v", err)
	}
	if !bytes.Equal(out.PNG, in.PNG) {
		t.Error("mode never should leave the image untouched")
	}
}

func TestPreprocess_UpscalesSmallPages(t *testing.T) {
	in := encodeGray(t, 100, 140, 0, 255)
	out, err := Preprocess(in, "always")
	if err != nil {
		t.Fatalf("Preprocess() error = %v", err)
	}
	if out.Width != 200 || out.Height != 280 {
		t.Errorf("upscaled size = %dx%d, want 200x280", out.Width, out.Height)
	}
	if out.PageNumber != in.PageNumber || out.DPI != in.DPI {
		t.Error("preprocessing must preserve page number and dpi")
	}
}

func TestPreprocess_StretchesLowContrast(t *testing.T) {
	in := encodeGray(t, 1800, 100, 100, 150)
	out, err := Preprocess(in, "auto")
	if err != nil {
		t.Fatalf("Preprocess() error = %v", err)
	}

	decoded, err := png.Decode(bytes.NewReader(out.PNG))
	if err != nil {
		t.Fatal(err)
	}
	gray := toGray(decoded)
	lo, hi := luminanceRange(gray)
	if lo != 0 || hi != 255 {
		t.Errorf("luminance range after stretch = [%d, %d], want [0, 255]", lo, hi)
	}
}

func TestPreprocess_AutoSkipsGoodPages(t *testing.T) {
	in := encodeGray(t, 2000, 100, 0, 255)
	out, err := Preprocess(in, "auto")
	if err != nil {
		t.Fatalf("Preprocess() error = %v", err)
	}
	if !bytes.Equal(out.PNG, in.PNG) {
		t.Error("auto mode should skip wide, high-contrast pages")
	}
}

func TestPreprocess_RejectsGarbage(t *testing.T) {
	in := pdf.PageImage{PageNumber: 3, PNG: []byte("not a png")}
	if _, err := Preprocess(in, "always"); err == nil {
		t.Fatal("Preprocess() expected error for invalid png")
	}
}
