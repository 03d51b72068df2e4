package ocr

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	xdraw "golang.org/x/image/draw"

	"github.com/kumarraju1982/Convertx/internal/pdf"
)

const (
	// Pages narrower than this are upscaled before recognition.
	minRecognitionWidth = 1700

	// Luminance ranges narrower than this get contrast stretched.
	lowContrastRange = 200
)

// Preprocess improves recognition quality on low-resolution or
// low-contrast scans: grayscale conversion, linear contrast stretch,
// and 2x upscaling of small pages. Mode is "always", "never" or
// "auto"; auto only touches pages that look like they need it.
func Preprocess(img pdf.PageImage, mode string) (pdf.PageImage, error) {
	if mode == "never" {
		return img, nil
	}

	src, err := png.Decode(bytes.NewReader(img.PNG))
	if err != nil {
		return img, fmt.Errorf("failed to decode page %d image: %w", img.PageNumber, err)
	}

	gray := toGray(src)
	lo, hi := luminanceRange(gray)

	needsWork := img.Width < minRecognitionWidth || int(hi)-int(lo) < lowContrastRange
	if mode == "auto" && !needsWork {
		return img, nil
	}

	if int(hi)-int(lo) < lowContrastRange && hi > lo {
		stretchContrast(gray, lo, hi)
	}

	var out image.Image = gray
	if gray.Bounds().Dx() < minRecognitionWidth {
		out = upscale(gray, 2)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, out); err != nil {
		return img, fmt.Errorf("failed to encode preprocessed page %d: %w", img.PageNumber, err)
	}

	b := out.Bounds()
	return pdf.PageImage{
		PageNumber: img.PageNumber,
		PNG:        buf.Bytes(),
		Width:      b.Dx(),
		Height:     b.Dy(),
		DPI:        img.DPI,
	}, nil
}

func toGray(src image.Image) *image.Gray {
	if g, ok := src.(*image.Gray); ok {
		return g
	}
	b := src.Bounds()
	gray := image.NewGray(b)
	xdraw.Draw(gray, b, src, b.Min, xdraw.Src)
	return gray
}

func luminanceRange(g *image.Gray) (lo, hi uint8) {
	lo, hi = 255, 0
	for _, v := range g.Pix {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	if hi < lo {
		lo, hi = 0, 255
	}
	return lo, hi
}

// stretchContrast remaps [lo, hi] linearly onto [0, 255].
func stretchContrast(g *image.Gray, lo, hi uint8) {
	span := int(hi) - int(lo)
	if span <= 0 {
		return
	}
	for i, v := range g.Pix {
		g.Pix[i] = uint8((int(v) - int(lo)) * 255 / span)
	}
}

func upscale(src *image.Gray, factor int) *image.Gray {
	b := src.Bounds()
	dst := image.NewGray(image.Rect(0, 0, b.Dx()*factor, b.Dy()*factor))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, b, xdraw.Src, nil)
	return dst
}
