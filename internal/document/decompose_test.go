package document

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"checkparser/internal/enhance"
	"checkparser/pkg/models"
)

func pngFixture(t *testing.T) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 10, 10))
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(20 * x), G: 90, B: uint8(20 * y), A: 255})
		}
	}
	data, err := enhance.EncodePNG(img)
	require.NoError(t, err)
	return data
}

func TestDecomposeImagePassthrough(t *testing.T) {
	d := NewDecomposer(300)
	docs := []models.RawDocument{
		{Name: "a.png", MIMEType: "image/png", Data: pngFixture(t)},
		{Name: "b.png", MIMEType: "image/png", Data: pngFixture(t)},
	}

	pages, docErrs := d.Decompose(context.Background(), docs)
	require.Empty(t, docErrs)
	require.Len(t, pages, 2)

	assert.Equal(t, 1, pages[0].Index)
	assert.Equal(t, 2, pages[1].Index)
	assert.Equal(t, "a.png", pages[0].SourceName)
	assert.Equal(t, "image/png", pages[0].MediaType)
	assert.NotEmpty(t, pages[0].Data)
}

func TestDecomposeUndecodableImageFallsBackToRawBytes(t *testing.T) {
	d := NewDecomposer(300)
	raw := []byte("not an image at all")
	docs := []models.RawDocument{
		{Name: "scan.jpg", MIMEType: "image/jpeg", Data: raw},
	}

	pages, docErrs := d.Decompose(context.Background(), docs)
	require.Empty(t, docErrs)
	require.Len(t, pages, 1)

	assert.Equal(t, raw, pages[0].Data, "raw bytes submitted unmodified")
	assert.Equal(t, "image/jpeg", pages[0].MediaType, "declared MIME type kept")
}

func TestDecomposeCorruptPDFContinuesBatch(t *testing.T) {
	d := NewDecomposer(300)
	docs := []models.RawDocument{
		{Name: "bad.pdf", MIMEType: "application/pdf", Data: []byte("%PDF-ish garbage")},
		{Name: "ok.png", MIMEType: "image/png", Data: pngFixture(t)},
	}

	pages, docErrs := d.Decompose(context.Background(), docs)

	require.Len(t, docErrs, 1)
	assert.True(t, errors.Is(docErrs[0], ErrDecomposition))
	var docErr *DocumentError
	require.True(t, errors.As(docErrs[0], &docErr))
	assert.Equal(t, "bad.pdf", docErr.Name)

	// The surviving image still gets a page; index keeps input ordering.
	require.Len(t, pages, 1)
	assert.Equal(t, "ok.png", pages[0].SourceName)
}

func TestDecomposePartialPDFFailureDoesNotShiftIndices(t *testing.T) {
	d := NewDecomposer(300)
	// A PDF that opens fine but dies partway through rendering must not
	// consume index slots for the pages it already produced.
	d.render = func(_ context.Context, doc models.RawDocument) ([][]byte, error) {
		switch doc.Name {
		case "broken.pdf":
			return nil, &DocumentError{
				Name: doc.Name,
				Err:  fmt.Errorf("%w: rendering page 2: damaged stream", ErrDecomposition),
			}
		case "ok.pdf":
			return [][]byte{pngFixture(t), pngFixture(t)}, nil
		default:
			t.Fatalf("unexpected render for %q", doc.Name)
			return nil, nil
		}
	}

	docs := []models.RawDocument{
		{Name: "broken.pdf", MIMEType: "application/pdf", Data: []byte("pdf")},
		{Name: "ok.pdf", MIMEType: "application/pdf", Data: []byte("pdf")},
		{Name: "tail.png", MIMEType: "image/png", Data: pngFixture(t)},
	}

	pages, docErrs := d.Decompose(context.Background(), docs)

	require.Len(t, docErrs, 1)
	assert.True(t, errors.Is(docErrs[0], ErrDecomposition))

	require.Len(t, pages, 3)
	for i, page := range pages {
		assert.Equal(t, i+1, page.Index, "indices stay contiguous after a failed document")
	}
	assert.Equal(t, "ok.pdf", pages[0].SourceName)
	assert.Equal(t, "ok.pdf", pages[1].SourceName)
	assert.Equal(t, "tail.png", pages[2].SourceName)
}

func TestDecomposeCanceledContext(t *testing.T) {
	d := NewDecomposer(300)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	pages, docErrs := d.Decompose(ctx, []models.RawDocument{
		{Name: "a.png", MIMEType: "image/png", Data: pngFixture(t)},
	})

	assert.Empty(t, pages)
	require.Len(t, docErrs, 1)
	assert.True(t, errors.Is(docErrs[0], context.Canceled))
}

func TestNewDecomposerDefaultsDPI(t *testing.T) {
	d := NewDecomposer(0)
	assert.Equal(t, float64(DefaultDPI), d.dpi)
}
