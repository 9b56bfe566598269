// Package enhance prepares scanned check images for extraction.
//
// Scans arrive at widely varying quality; a fixed contrast and sharpness
// boost makes small print and the MICR digit line considerably more
// legible to the vision model. The adjustment is deterministic: the same
// input bytes always produce the same output bytes.
package enhance

import (
	"bytes"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

const (
	// ContrastFactor is the fixed contrast boost applied to every page.
	ContrastFactor = 1.5

	// SharpnessFactor is the fixed sharpness boost applied after contrast.
	SharpnessFactor = 2.0
)

// smoothKernel is the 3x3 smoothing filter used as the soft counterpart
// for the sharpness interpolation, normalized to sum 1.
var smoothKernel = [9]float64{
	1.0 / 13, 1.0 / 13, 1.0 / 13,
	1.0 / 13, 5.0 / 13, 1.0 / 13,
	1.0 / 13, 1.0 / 13, 1.0 / 13,
}

// Normalize returns an enhanced copy of img: converted to RGB, contrast
// boosted by ContrastFactor, then sharpened by SharpnessFactor. The input
// image is never mutated.
func Normalize(img image.Image) *image.NRGBA {
	out := imaging.Clone(img)
	adjustContrast(out, ContrastFactor)
	out = adjustSharpness(out, SharpnessFactor)
	return out
}

// NormalizeBytes decodes raw image bytes, enhances them and re-encodes as
// PNG. It returns the encoded bytes and the resulting media type. A decode
// failure is returned to the caller, which is expected to fall back to
// submitting the raw bytes with their declared MIME type.
func NormalizeBytes(data []byte) ([]byte, string, error) {
	const op = "NormalizeBytes"

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("%s: decode image: %w", op, err)
	}

	encoded, err := EncodePNG(Normalize(img))
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}
	return encoded, "image/png", nil
}

// EncodePNG serializes an image as PNG bytes.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// adjustContrast interpolates each pixel between the image's mean gray
// level and its original value: out = mean + (in-mean)*factor. Factor 1.0
// is a no-op, values above 1.0 increase contrast.
func adjustContrast(img *image.NRGBA, factor float64) {
	mean := float64(grayMean(img))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i] = clamp(mean + (float64(img.Pix[i])-mean)*factor)
		img.Pix[i+1] = clamp(mean + (float64(img.Pix[i+1])-mean)*factor)
		img.Pix[i+2] = clamp(mean + (float64(img.Pix[i+2])-mean)*factor)
	}
}

// adjustSharpness interpolates each pixel between a smoothed copy and the
// original: out = smooth + (in-smooth)*factor. Factor 1.0 is a no-op,
// values above 1.0 sharpen.
func adjustSharpness(img *image.NRGBA, factor float64) *image.NRGBA {
	smooth := imaging.Convolve3x3(img, smoothKernel, nil)
	out := imaging.Clone(img)
	for i := 0; i < len(out.Pix); i += 4 {
		out.Pix[i] = clamp(float64(smooth.Pix[i]) + (float64(img.Pix[i])-float64(smooth.Pix[i]))*factor)
		out.Pix[i+1] = clamp(float64(smooth.Pix[i+1]) + (float64(img.Pix[i+1])-float64(smooth.Pix[i+1]))*factor)
		out.Pix[i+2] = clamp(float64(smooth.Pix[i+2]) + (float64(img.Pix[i+2])-float64(smooth.Pix[i+2]))*factor)
	}
	return out
}

// grayMean computes the rounded mean luma (ITU-R 601) over the image.
func grayMean(img *image.NRGBA) uint8 {
	var sum float64
	n := 0
	for i := 0; i < len(img.Pix); i += 4 {
		sum += 0.299*float64(img.Pix[i]) + 0.587*float64(img.Pix[i+1]) + 0.114*float64(img.Pix[i+2])
		n++
	}
	if n == 0 {
		return 0
	}
	return uint8(sum/float64(n) + 0.5)
}

func clamp(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}
