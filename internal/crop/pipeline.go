package crop

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"io"
	"net/http"
	"time"

	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
	"github.com/rs/zerolog"

	"headergen/internal/infra"
)

// Mode selects how SmartCrop delivers its result.
type Mode string

const (
	// ModeParams reports crop coordinates only; no pixels are processed.
	ModeParams Mode = "params"
	// ModeBase64 returns the cropped image inline, bounded to 800px.
	ModeBase64 Mode = "base64"
	// ModeCompressed returns a smaller, more aggressively encoded inline image.
	ModeCompressed Mode = "compressed"
)

// Encoding bounds per mode.
const (
	base64MaxEdge     = 800
	base64Quality     = 85
	compressedMaxEdge = 600
	compressedQuality = 75
)

// ErrDecode indicates the fetched payload was not a decodable image.
var ErrDecode = errors.New("crop: undecodable image")

// Options configures the Cropper.
type Options struct {
	HTTPClient   *http.Client
	Logger       *infra.Logger
	FetchTimeout time.Duration
}

// Cropper fetches remote images and crops them to a target aspect ratio.
type Cropper struct {
	httpClient *http.Client
	logger     *infra.Logger
}

// NewCropper constructs a cropper with sane defaults and injected dependencies.
func NewCropper(opts Options) *Cropper {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.FetchTimeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	var logger *infra.Logger
	if opts.Logger != nil {
		logger = opts.Logger
	} else {
		discard := zerolog.New(io.Discard)
		l := infra.Logger(discard)
		logger = &l
	}
	return &Cropper{httpClient: httpClient, logger: logger}
}

// Result describes one crop of a remote image. CropURL is set in params mode;
// Data, EncodedLength and the output dimensions are set by the encoding modes.
type Result struct {
	SourceWidth   int       `json:"source_width"`
	SourceHeight  int       `json:"source_height"`
	Rect          Rectangle `json:"rect"`
	Mode          Mode      `json:"mode"`
	CropURL       string    `json:"crop_url,omitempty"`
	Data          string    `json:"data,omitempty"`
	EncodedLength int       `json:"encoded_length,omitempty"`
	OutputWidth   int       `json:"output_width,omitempty"`
	OutputHeight  int       `json:"output_height,omitempty"`
}

// SmartCrop crops the image behind imageURL to the target aspect ratio.
// Params mode probes dimensions and reports coordinates plus a crop fragment
// appended to the source URL. The two encoding modes fetch the full image,
// crop it, scale it down to their edge bound and return it as an inline JPEG
// data URI. Unknown modes fall back to params.
func (c *Cropper) SmartCrop(ctx context.Context, imageURL string, ratio float64, mode Mode) (*Result, error) {
	if ratio <= 0 {
		return nil, fmt.Errorf("crop: ratio must be positive, got %g", ratio)
	}
	width, height, err := c.probeSize(ctx, imageURL)
	if err != nil {
		return nil, err
	}
	rect := ComputeCrop(width, height, ratio)
	res := &Result{SourceWidth: width, SourceHeight: height, Rect: rect, Mode: mode}
	c.logger.Debug().
		Int("source_width", width).
		Int("source_height", height).
		Float64("ratio", ratio).
		Str("mode", string(mode)).
		Msg("crop: window computed")

	switch mode {
	case ModeBase64:
		return c.encode(ctx, imageURL, res, base64MaxEdge, base64Quality)
	case ModeCompressed:
		return c.encode(ctx, imageURL, res, compressedMaxEdge, compressedQuality)
	default:
		res.Mode = ModeParams
		res.CropURL = fmt.Sprintf("%s#crop=%d,%d,%d,%d", imageURL, rect.X, rect.Y, rect.Width, rect.Height)
		return res, nil
	}
}

// probeSize reads just enough of the image stream to learn its dimensions.
func (c *Cropper) probeSize(ctx context.Context, imageURL string) (int, int, error) {
	resp, err := c.get(ctx, imageURL)
	if err != nil {
		return 0, 0, err
	}
	defer resp.Body.Close()
	cfg, _, err := image.DecodeConfig(resp.Body)
	if err != nil {
		return 0, 0, fmt.Errorf("crop: probe dimensions (%v): %w", err, ErrDecode)
	}
	return cfg.Width, cfg.Height, nil
}

func (c *Cropper) encode(ctx context.Context, imageURL string, res *Result, maxEdge, quality int) (*Result, error) {
	resp, err := c.get(ctx, imageURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	src, err := imaging.Decode(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("crop: decode image (%v): %w", err, ErrDecode)
	}

	rect := res.Rect
	cropped := imaging.Crop(src, image.Rect(rect.X, rect.Y, rect.X+rect.Width, rect.Y+rect.Height))
	out := cropped
	if bounds := cropped.Bounds(); bounds.Dx() > maxEdge || bounds.Dy() > maxEdge {
		out = imaging.Fit(cropped, maxEdge, maxEdge, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, out, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return nil, fmt.Errorf("crop: encode jpeg: %w", err)
	}
	payload := base64.StdEncoding.EncodeToString(buf.Bytes())
	res.Data = "data:image/jpeg;base64," + payload
	res.EncodedLength = len(payload)
	outBounds := out.Bounds()
	res.OutputWidth = outBounds.Dx()
	res.OutputHeight = outBounds.Dy()
	c.logger.Debug().
		Int("output_width", res.OutputWidth).
		Int("output_height", res.OutputHeight).
		Int("encoded_length", res.EncodedLength).
		Msg("crop: image encoded")
	return res, nil
}

func (c *Cropper) get(ctx context.Context, imageURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("crop: build request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("crop: fetch image: %w", err)
	}
	if resp.StatusCode >= 300 {
		resp.Body.Close()
		return nil, fmt.Errorf("crop: fetch status %d", resp.StatusCode)
	}
	return resp, nil
}
