package enhance

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/image/draw"
)

// Defaults for LocalEnhancer.
const (
	DefaultMaxDimension = 2048
	DefaultJPEGQuality  = 90
	enhancedSuffix      = "_enhanced"
	enhancedDirName     = "enhanced"
)

// LocalEnhancer stretches contrast per channel and downscales oversized
// images, writing a JPEG next to the library. JPEG and PNG sources only.
type LocalEnhancer struct {
	// OutputDir receives enhanced files. Empty means an "enhanced" folder
	// beside each source.
	OutputDir    string
	MaxDimension int
	Quality      int
}

// NewLocalEnhancer returns an enhancer with defaults applied to
// non-positive values.
func NewLocalEnhancer(outputDir string, maxDimension, quality int) *LocalEnhancer {
	if maxDimension <= 0 {
		maxDimension = DefaultMaxDimension
	}
	if quality <= 0 || quality > 100 {
		quality = DefaultJPEGQuality
	}
	return &LocalEnhancer{OutputDir: outputDir, MaxDimension: maxDimension, Quality: quality}
}

// Enhance implements Enhancer.
func (e *LocalEnhancer) Enhance(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	start := time.Now()

	img, err := decode(path)
	if err != nil {
		return "", err
	}

	bounds := img.Bounds()
	out := autoContrast(img)
	if w, h := fitWithin(bounds.Dx(), bounds.Dy(), e.MaxDimension); w != bounds.Dx() || h != bounds.Dy() {
		resized := image.NewRGBA(image.Rect(0, 0, w, h))
		draw.CatmullRom.Scale(resized, resized.Bounds(), out, out.Bounds(), draw.Over, nil)
		out = resized
	}

	dest := e.outputPath(path)
	if err := writeJPEG(dest, out, e.Quality); err != nil {
		return "", err
	}

	log.Debug().
		Str("path", path).
		Str("output", dest).
		Int("orig_width", bounds.Dx()).
		Int("orig_height", bounds.Dy()).
		Int("new_width", out.Bounds().Dx()).
		Int("new_height", out.Bounds().Dy()).
		Dur("duration", time.Since(start)).
		Msg("Local enhancement complete")

	return dest, nil
}

func (e *LocalEnhancer) outputPath(src string) string {
	dir := e.OutputDir
	if dir == "" {
		dir = filepath.Join(filepath.Dir(src), enhancedDirName)
	}
	stem := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
	return filepath.Join(dir, stem+enhancedSuffix+".jpg")
}

func decode(path string) (image.Image, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".jpg" && ext != ".jpeg" && ext != ".png" {
		return nil, fmt.Errorf("unsupported format for local enhancement: %s", ext)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	var img image.Image
	if ext == ".png" {
		img, err = png.Decode(f)
	} else {
		img, err = jpeg.Decode(f)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}

// autoContrast linearly stretches each RGB channel to the full 0-255 range.
// Channels that are flat are copied unchanged.
func autoContrast(src image.Image) *image.RGBA {
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)

	lo := [3]uint8{255, 255, 255}
	hi := [3]uint8{0, 0, 0}
	pix := dst.Pix
	for i := 0; i+3 < len(pix); i += 4 {
		for c := 0; c < 3; c++ {
			v := pix[i+c]
			if v < lo[c] {
				lo[c] = v
			}
			if v > hi[c] {
				hi[c] = v
			}
		}
	}

	var lut [3][256]uint8
	for c := 0; c < 3; c++ {
		span := int(hi[c]) - int(lo[c])
		for v := 0; v < 256; v++ {
			switch {
			case span <= 0:
				lut[c][v] = uint8(v)
			case v <= int(lo[c]):
				lut[c][v] = 0
			case v >= int(hi[c]):
				lut[c][v] = 255
			default:
				lut[c][v] = uint8((v - int(lo[c])) * 255 / span)
			}
		}
	}

	for i := 0; i+3 < len(pix); i += 4 {
		for c := 0; c < 3; c++ {
			pix[i+c] = lut[c][pix[i+c]]
		}
	}
	return dst
}

// fitWithin scales (w, h) down so neither side exceeds limit, keeping aspect.
func fitWithin(w, h, limit int) (int, int) {
	if limit <= 0 || (w <= limit && h <= limit) {
		return w, h
	}
	if w >= h {
		return limit, max(1, h*limit/w)
	}
	return max(1, w*limit/h), limit
}

// writeJPEG encodes img to a temp file in the destination directory and
// renames it into place.
func writeJPEG(dest string, img image.Image, quality int) error {
	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	tmp := filepath.Join(dir, "."+uuid.NewString()+".tmp")
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	if err := jpeg.Encode(f, opaque(img), &jpeg.Options{Quality: quality}); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("failed to encode JPEG: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to write enhanced image: %w", err)
	}
	if err := os.Rename(tmp, dest); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to move enhanced image into place: %w", err)
	}
	return nil
}

// opaque flattens transparency onto white, since JPEG has no alpha.
func opaque(img image.Image) image.Image {
	rgba, ok := img.(*image.RGBA)
	if !ok || rgba.Opaque() {
		return img
	}
	out := image.NewRGBA(rgba.Bounds())
	draw.Draw(out, out.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	draw.Draw(out, out.Bounds(), rgba, rgba.Bounds().Min, draw.Over)
	return out
}
