package imageproc

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"

	"github.com/jgoulah/oil-notifier/internal/domain/gauge"
)

const (
	inferenceQuality = 95
	emailQuality     = 90

	// Bright pixels above this mean are treated as glare.
	glareThreshold = 220
	glareReduction = 0.7
	// Reflections concentrate in the upper part of the frame; darken it on
	// a gradient from 0.85 at the very top back to 1.0.
	glareTopFraction = 0.4
)

// Options controls the fixed preprocessing pass applied to every frame. The
// values are a per-deployment calibration for the camera angle and lighting.
type Options struct {
	RotateDegrees     float64
	CropLeft          int
	CropTop           int
	CropRight         int
	CropBottom        int
	ReduceGlare       bool
	Enhance           bool
	EmailScalePercent int
}

func (o Options) cropRect() (image.Rectangle, bool) {
	if o.CropLeft == 0 && o.CropTop == 0 && o.CropRight == 0 && o.CropBottom == 0 {
		return image.Rectangle{}, false
	}
	return image.Rect(o.CropLeft, o.CropTop, o.CropRight, o.CropBottom), true
}

// Processor shapes raw camera frames: the full preprocessing pass for
// inference and a downscaled copy for email embedding.
type Processor struct {
	opts Options
}

// New builds a processor with a fixed calibration.
func New(opts Options) *Processor {
	if opts.EmailScalePercent <= 0 || opts.EmailScalePercent > 100 {
		opts.EmailScalePercent = 50
	}
	return &Processor{opts: opts}
}

// Prepare rotates, crops and de-glares a raw frame so the gauge fills the
// picture the way the calibration prompt describes it.
func (p *Processor) Prepare(raw []byte) ([]byte, error) {
	src, err := imaging.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode frame: %w", err)
	}

	img := imaging.Clone(src)
	if p.opts.RotateDegrees != 0 {
		// Positive angles rotate counter-clockwise with an expanded canvas,
		// matching the camera's mounting correction.
		img = imaging.Rotate(img, p.opts.RotateDegrees, color.Black)
	}
	if rect, ok := p.opts.cropRect(); ok {
		img = imaging.Crop(img, rect)
		if img.Bounds().Empty() {
			return nil, errors.New("crop box falls outside the rotated frame")
		}
	}
	if p.opts.ReduceGlare {
		img = reduceGlare(img)
	}
	if p.opts.Enhance {
		img = imaging.AdjustBrightness(img, 30)
		img = imaging.AdjustContrast(img, 40)
		img = imaging.Sharpen(img, 1.5)
	}

	var out bytes.Buffer
	if err := imaging.Encode(&out, img, imaging.JPEG, imaging.JPEGQuality(inferenceQuality)); err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	return out.Bytes(), nil
}

// Downscale shrinks a processed frame for email embedding.
func (p *Processor) Downscale(processed []byte) ([]byte, error) {
	src, err := imaging.Decode(bytes.NewReader(processed))
	if err != nil {
		return nil, fmt.Errorf("decode frame: %w", err)
	}

	bounds := src.Bounds()
	width := bounds.Dx() * p.opts.EmailScalePercent / 100
	height := bounds.Dy() * p.opts.EmailScalePercent / 100
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	img := imaging.Resize(src, width, height, imaging.Lanczos)

	var out bytes.Buffer
	if err := imaging.Encode(&out, img, imaging.JPEG, imaging.JPEGQuality(emailQuality)); err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	return out.Bytes(), nil
}

// reduceGlare dims specular highlights that the infrared illuminator throws
// onto the gauge tube. Bright pixels are pulled down everywhere and the top
// of the frame gets a gradient darkening, since that is where reflections
// mimic the float.
func reduceGlare(img image.Image) *image.NRGBA {
	out := imaging.Clone(img)
	bounds := out.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	topRows := int(float64(height) * glareTopFraction)

	for y := 0; y < height; y++ {
		rowFactor := 1.0
		if y < topRows {
			rowFactor = 0.85 + 0.15*float64(y)/float64(topRows)
		}
		for x := 0; x < width; x++ {
			i := y*out.Stride + x*4
			r := float64(out.Pix[i])
			g := float64(out.Pix[i+1])
			b := float64(out.Pix[i+2])

			factor := rowFactor
			if (r+g+b)/3 > glareThreshold {
				factor *= glareReduction
			}
			if factor == 1.0 {
				continue
			}
			out.Pix[i] = uint8(r * factor)
			out.Pix[i+1] = uint8(g * factor)
			out.Pix[i+2] = uint8(b * factor)
		}
	}
	return out
}

var _ gauge.Preprocessor = (*Processor)(nil)
