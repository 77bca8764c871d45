// Package diagram renders a position as a static board image.
package diagram

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"strings"
	"sync"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/hailam/chessrules/internal/board"
)

// DefaultSize is the image width used when Options.Size is zero.
const DefaultSize = 480

const minSize = 64

// Board colours.
var (
	lightSquare     = color.RGBA{0xf0, 0xd9, 0xb5, 0xff}
	darkSquare      = color.RGBA{0xb5, 0x88, 0x63, 0xff}
	lightHighlight  = color.RGBA{0xcd, 0xd2, 0x6a, 0xff}
	darkHighlight   = color.RGBA{0xaa, 0xa2, 0x3a, 0xff}
	whitePieceFill  = color.RGBA{0xfa, 0xfa, 0xfa, 0xff}
	blackPieceFill  = color.RGBA{0x30, 0x30, 0x30, 0xff}
	pieceOutline    = color.RGBA{0x22, 0x22, 0x22, 0xff}
	whitePieceGlyph = color.RGBA{0x22, 0x22, 0x22, 0xff}
	blackPieceGlyph = color.RGBA{0xfa, 0xfa, 0xfa, 0xff}
)

// Options controls the rendering.
type Options struct {
	Size      int            // image width and height in pixels, rounded down to a multiple of 8
	Flip      bool           // draw from Black's side
	Highlight []board.Square // squares drawn in the highlight colour
}

// Render draws pos. Squares, highlights and piece discs are laid out as SVG
// and rasterized; piece letters are then drawn on top.
func Render(pos board.Position, opts Options) (*image.RGBA, error) {
	size := opts.Size
	if size == 0 {
		size = DefaultSize
	}
	if size < minSize {
		return nil, fmt.Errorf("diagram size %d below minimum %d", size, minSize)
	}
	sq := size / 8
	size = sq * 8

	icon, err := oksvg.ReadIconStream(strings.NewReader(boardSVG(pos, opts, sq)))
	if err != nil {
		return nil, fmt.Errorf("parse board svg: %w", err)
	}
	icon.SetTarget(0, 0, float64(size), float64(size))

	rgba := image.NewRGBA(image.Rect(0, 0, size, size))
	scanner := rasterx.NewScannerGV(size, size, rgba, rgba.Bounds())
	raster := rasterx.NewDasher(size, size, scanner)
	icon.Draw(raster, 1.0)

	if err := drawLetters(rgba, pos, opts.Flip, sq); err != nil {
		return nil, err
	}
	return rgba, nil
}

// WritePNG renders pos and writes it to path as PNG.
func WritePNG(path string, pos board.Position, opts Options) error {
	img, err := Render(pos, opts)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

// origin returns the top-left pixel of sq.
func origin(s board.Square, flip bool, sq int) (x, y int) {
	col, row := s.File(), 7-s.Rank()
	if flip {
		col, row = 7-col, 7-row
	}
	return col * sq, row * sq
}

func boardSVG(pos board.Position, opts Options, sq int) string {
	size := sq * 8
	highlighted := make(map[board.Square]bool, len(opts.Highlight))
	for _, s := range opts.Highlight {
		highlighted[s] = true
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`,
		size, size, size, size)
	for s := board.A1; s <= board.H8; s++ {
		fill := darkSquare
		switch {
		case highlighted[s] && s.IsLight():
			fill = lightHighlight
		case highlighted[s]:
			fill = darkHighlight
		case s.IsLight():
			fill = lightSquare
		}
		x, y := origin(s, opts.Flip, sq)
		fmt.Fprintf(&sb, `<rect x="%d" y="%d" width="%d" height="%d" fill="%s"/>`, x, y, sq, sq, hex(fill))
	}

	r := float64(sq) * 0.4
	stroke := float64(sq) / 24
	for s := board.A1; s <= board.H8; s++ {
		p := pos.PieceAt(s)
		if p == board.NoPiece {
			continue
		}
		fill := whitePieceFill
		if p.Color() == board.Black {
			fill = blackPieceFill
		}
		x, y := origin(s, opts.Flip, sq)
		fmt.Fprintf(&sb, `<circle cx="%.2f" cy="%.2f" r="%.2f" fill="%s" stroke="%s" stroke-width="%.2f"/>`,
			float64(x)+float64(sq)/2, float64(y)+float64(sq)/2, r, hex(fill), hex(pieceOutline), stroke)
	}
	sb.WriteString(`</svg>`)
	return sb.String()
}

func hex(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

var (
	fontOnce sync.Once
	fontData *opentype.Font
	fontErr  error
)

func pieceFont() (*opentype.Font, error) {
	fontOnce.Do(func() {
		fontData, fontErr = opentype.Parse(gobold.TTF)
	})
	return fontData, fontErr
}

func drawLetters(dst *image.RGBA, pos board.Position, flip bool, sq int) error {
	f, err := pieceFont()
	if err != nil {
		return fmt.Errorf("load piece font: %w", err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    float64(sq) * 0.42,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return err
	}
	defer face.Close()

	capHeight := face.Metrics().CapHeight
	if capHeight <= 0 {
		capHeight = face.Metrics().Ascent * 7 / 10
	}
	white := image.NewUniform(whitePieceGlyph)
	black := image.NewUniform(blackPieceGlyph)

	d := font.Drawer{Dst: dst, Face: face}
	for s := board.A1; s <= board.H8; s++ {
		p := pos.PieceAt(s)
		if p == board.NoPiece {
			continue
		}
		letter := string(p.Type().Letter())
		d.Src = white
		if p.Color() == board.Black {
			d.Src = black
		}
		x, y := origin(s, flip, sq)
		width := d.MeasureString(letter)
		d.Dot = fixed.Point26_6{
			X: fixed.I(x+sq/2) - width/2,
			Y: fixed.I(y+sq/2) + capHeight/2,
		}
		d.DrawString(letter)
	}
	return nil
}
