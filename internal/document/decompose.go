// Package document decomposes uploaded check documents into an ordered
// sequence of page images ready for extraction.
//
// PDFs are rasterized one image per page at a fixed resolution via MuPDF
// (go-fitz); image uploads pass through as a single page. Every page is
// run through the enhance package; an image upload whose bytes cannot be
// decoded is submitted raw with its declared MIME type instead.
package document

import (
	"context"
	"fmt"

	"github.com/gen2brain/go-fitz"
	"github.com/rs/zerolog"

	"checkparser/internal/enhance"
	"checkparser/internal/logger"
	"checkparser/pkg/models"
)

// DefaultDPI is the PDF rasterization resolution. High enough that the
// MICR digit line stays readable after JPEG-era scan artifacts.
const DefaultDPI = 300

// renderFunc rasterizes a PDF document into one encoded PNG per page.
type renderFunc func(ctx context.Context, doc models.RawDocument) ([][]byte, error)

// Decomposer flattens raw documents into globally indexed page images.
type Decomposer struct {
	dpi    float64
	render renderFunc
	log    zerolog.Logger
}

// NewDecomposer creates a Decomposer rendering PDFs at the given DPI.
// A non-positive dpi falls back to DefaultDPI.
func NewDecomposer(dpi float64) *Decomposer {
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	d := &Decomposer{
		dpi: dpi,
		log: logger.WithComponent("document"),
	}
	d.render = d.rasterizePDF
	return d
}

// Decompose converts every document into page images, preserving document
// order and intra-document page order, and assigns each page a 1-based
// global index. A document that cannot be decomposed at all contributes a
// DocumentError instead of pages; the remaining documents still produce
// theirs.
//
// Indices are assigned here, after a document rasterized in full, so a
// PDF that fails partway through consumes no index slots and later
// documents keep contiguous numbering.
func (d *Decomposer) Decompose(ctx context.Context, docs []models.RawDocument) ([]models.PageImage, []error) {
	var pages []models.PageImage
	var docErrs []error

	index := 0
	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			docErrs = append(docErrs, &DocumentError{Name: doc.Name, Err: err})
			break
		}

		if doc.IsPDF() {
			rendered, err := d.render(ctx, doc)
			if err != nil {
				d.log.Error().Err(err).Str("document", doc.Name).Msg("PDF decomposition failed")
				docErrs = append(docErrs, err)
				continue
			}
			for _, data := range rendered {
				index++
				pages = append(pages, models.PageImage{
					Index:      index,
					SourceName: doc.Name,
					MediaType:  "image/png",
					Data:       data,
				})
			}
			continue
		}

		index++
		pages = append(pages, d.imagePage(doc, index))
	}

	return pages, docErrs
}

// rasterizePDF renders each PDF page at the configured DPI, normalizes it
// and encodes it as PNG. Any page failure discards the whole document.
func (d *Decomposer) rasterizePDF(ctx context.Context, doc models.RawDocument) ([][]byte, error) {
	pdf, err := fitz.NewFromMemory(doc.Data)
	if err != nil {
		return nil, &DocumentError{Name: doc.Name, Err: fmt.Errorf("%w: %v", ErrDecomposition, err)}
	}
	defer pdf.Close()

	pageCount := pdf.NumPage()
	if pageCount == 0 {
		return nil, &DocumentError{Name: doc.Name, Err: fmt.Errorf("%w: PDF has no pages", ErrDecomposition)}
	}

	d.log.Debug().
		Str("document", doc.Name).
		Int("pages", pageCount).
		Float64("dpi", d.dpi).
		Msg("Rasterizing PDF")

	rendered := make([][]byte, 0, pageCount)
	for n := 0; n < pageCount; n++ {
		if err := ctx.Err(); err != nil {
			return nil, &DocumentError{Name: doc.Name, Err: err}
		}

		img, err := pdf.ImageDPI(n, d.dpi)
		if err != nil {
			return nil, &DocumentError{
				Name: doc.Name,
				Err:  fmt.Errorf("%w: rendering page %d: %v", ErrDecomposition, n+1, err),
			}
		}

		encoded, err := enhance.EncodePNG(enhance.Normalize(img))
		if err != nil {
			return nil, &DocumentError{
				Name: doc.Name,
				Err:  fmt.Errorf("%w: encoding page %d: %v", ErrDecomposition, n+1, err),
			}
		}

		rendered = append(rendered, encoded)
	}
	return rendered, nil
}

// imagePage normalizes a single-image upload, falling back to the raw
// bytes with their declared MIME type when the image cannot be decoded.
func (d *Decomposer) imagePage(doc models.RawDocument, index int) models.PageImage {
	data, mediaType, err := enhance.NormalizeBytes(doc.Data)
	if err != nil {
		d.log.Warn().
			Err(err).
			Str("document", doc.Name).
			Msg("Image decode failed, submitting raw bytes")
		return models.PageImage{
			Index:      index,
			SourceName: doc.Name,
			MediaType:  doc.MIMEType,
			Data:       doc.Data,
		}
	}
	return models.PageImage{
		Index:      index,
		SourceName: doc.Name,
		MediaType:  mediaType,
		Data:       data,
	}
}
