// Package render draws certificate images.
//
// Rendering sits outside the integrity protocol: the issuance workflow
// treats a renderer as an opaque byte producer and fingerprints whatever
// it returns. The PNG renderer here mirrors the classic layout — title,
// holder, course, date, identifier inside a double border — and can stamp
// a QR code of the content's public URL into the bottom-right corner.
package render

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"strings"
	"time"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/qr"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// ErrIncompleteCertificate is returned when a certificate is missing a
// required field.
var ErrIncompleteCertificate = errors.New("render: incomplete certificate")

// Certificate carries the fields printed on a certificate image.
type Certificate struct {
	HolderName string
	CourseName string
	ID         string

	// IssueDate is the issue time in unix seconds.
	IssueDate int64
}

func (c Certificate) validate() error {
	switch {
	case strings.TrimSpace(c.HolderName) == "":
		return fmt.Errorf("%w: holder name", ErrIncompleteCertificate)
	case strings.TrimSpace(c.CourseName) == "":
		return fmt.Errorf("%w: course name", ErrIncompleteCertificate)
	case strings.TrimSpace(c.ID) == "":
		return fmt.Errorf("%w: certificate id", ErrIncompleteCertificate)
	case c.IssueDate <= 0:
		return fmt.Errorf("%w: issue date", ErrIncompleteCertificate)
	}
	return nil
}

// Renderer produces certificate image bytes.
type Renderer interface {
	Render(cert Certificate) ([]byte, error)
}

// Default canvas dimensions.
const (
	DefaultWidth  = 1000
	DefaultHeight = 700
)

// qrSize is the edge length of the stamped QR code in pixels.
const qrSize = 150

// PNG renders certificates as PNG images.
type PNG struct {
	width  int
	height int
}

// Option configures a PNG renderer.
type Option func(*PNG)

// WithSize overrides the canvas dimensions.
func WithSize(width, height int) Option {
	return func(p *PNG) {
		p.width = width
		p.height = height
	}
}

// NewPNG creates a PNG renderer.
func NewPNG(opts ...Option) *PNG {
	p := &PNG{width: DefaultWidth, height: DefaultHeight}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Render draws the certificate and returns the encoded PNG. Output is
// deterministic: identical certificates produce identical bytes.
func (p *PNG) Render(cert Certificate) ([]byte, error) {
	if err := cert.validate(); err != nil {
		return nil, err
	}

	canvas := image.NewRGBA(image.Rect(0, 0, p.width, p.height))
	draw.Draw(canvas, canvas.Bounds(), image.White, image.Point{}, draw.Src)

	drawBorder(canvas, 10, 20, color.Black)
	drawBorder(canvas, 30, 2, color.Gray{Y: 0x66})

	ink := color.Black
	accent := color.RGBA{R: 0x00, G: 0x00, B: 0x66, A: 0xff}
	date := time.Unix(cert.IssueDate, 0).UTC().Format("January 2, 2006")

	lines := []struct {
		text  string
		y     int
		color color.Color
	}{
		{text: "Certificate of Completion", y: 150, color: ink},
		{text: "This is to certify that", y: 250, color: ink},
		{text: cert.HolderName, y: 320, color: accent},
		{text: "has successfully completed the course", y: 390, color: ink},
		{text: cert.CourseName, y: 460, color: accent},
		{text: "Date: " + date, y: 540, color: ink},
		{text: "Certificate ID: " + cert.ID, y: 580, color: ink},
	}
	for _, line := range lines {
		drawCentered(canvas, line.text, line.y, line.color)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, canvas); err != nil {
		return nil, fmt.Errorf("encode certificate: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderWithQR renders the certificate and stamps a QR code of url into
// the bottom-right corner. The returned bytes are final: callers
// fingerprint and upload exactly this image.
func (p *PNG) RenderWithQR(cert Certificate, url string) ([]byte, error) {
	plain, err := p.Render(cert)
	if err != nil {
		return nil, err
	}
	return p.StampQR(plain, url)
}

// StampQR decodes a rendered certificate, draws a QR code of url in the
// bottom-right corner, and returns the re-encoded PNG.
func (p *PNG) StampQR(imageBytes []byte, url string) ([]byte, error) {
	src, err := png.Decode(bytes.NewReader(imageBytes))
	if err != nil {
		return nil, fmt.Errorf("decode certificate: %w", err)
	}

	code, err := qr.Encode(url, qr.M, qr.Auto)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}
	code, err = barcode.Scale(code, qrSize, qrSize)
	if err != nil {
		return nil, fmt.Errorf("scale qr: %w", err)
	}

	bounds := src.Bounds()
	canvas := image.NewRGBA(bounds)
	draw.Draw(canvas, bounds, src, bounds.Min, draw.Src)

	corner := image.Rect(
		bounds.Max.X-qrSize-30,
		bounds.Max.Y-qrSize-30,
		bounds.Max.X-30,
		bounds.Max.Y-30,
	)
	draw.Draw(canvas, corner, code, image.Point{}, draw.Src)

	var buf bytes.Buffer
	if err := png.Encode(&buf, canvas); err != nil {
		return nil, fmt.Errorf("encode certificate: %w", err)
	}
	return buf.Bytes(), nil
}

// drawBorder draws a rectangular ring inset px from the canvas edge.
func drawBorder(canvas *image.RGBA, inset, thickness int, c color.Color) {
	bounds := canvas.Bounds().Inset(inset)
	fill := image.NewUniform(c)

	top := image.Rect(bounds.Min.X, bounds.Min.Y, bounds.Max.X, bounds.Min.Y+thickness)
	bottom := image.Rect(bounds.Min.X, bounds.Max.Y-thickness, bounds.Max.X, bounds.Max.Y)
	left := image.Rect(bounds.Min.X, bounds.Min.Y, bounds.Min.X+thickness, bounds.Max.Y)
	right := image.Rect(bounds.Max.X-thickness, bounds.Min.Y, bounds.Max.X, bounds.Max.Y)
	for _, r := range []image.Rectangle{top, bottom, left, right} {
		draw.Draw(canvas, r, fill, image.Point{}, draw.Src)
	}
}

// drawCentered draws text horizontally centered at baseline y.
func drawCentered(canvas *image.RGBA, text string, y int, c color.Color) {
	face := basicfont.Face7x13
	width := font.MeasureString(face, text).Round()

	drawer := &font.Drawer{
		Dst:  canvas,
		Src:  image.NewUniform(c),
		Face: face,
		Dot: fixed.Point26_6{
			X: fixed.I((canvas.Bounds().Dx() - width) / 2),
			Y: fixed.I(y),
		},
	}
	drawer.DrawString(text)
}
