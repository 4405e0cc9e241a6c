package crop

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func pngBytes(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func imageServer(t *testing.T, body []byte) (*httptest.Server, *int) {
	t.Helper()
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Header().Set("Content-Type", "image/png")
		w.Write(body)
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func TestSmartCropParamsMode(t *testing.T) {
	srv, hits := imageServer(t, pngBytes(t, 2000, 1000))
	cropper := NewCropper(Options{HTTPClient: srv.Client()})

	res, err := cropper.SmartCrop(context.Background(), srv.URL, 2.35, ModeParams)
	if err != nil {
		t.Fatalf("smart crop: %v", err)
	}
	if res.SourceWidth != 2000 || res.SourceHeight != 1000 {
		t.Fatalf("source = %dx%d, want 2000x1000", res.SourceWidth, res.SourceHeight)
	}
	want := Rectangle{X: 0, Y: 74, Width: 2000, Height: 851}
	if res.Rect != want {
		t.Fatalf("rect = %+v, want %+v", res.Rect, want)
	}
	if res.CropURL != srv.URL+"#crop=0,74,2000,851" {
		t.Fatalf("crop url = %q", res.CropURL)
	}
	if res.Data != "" {
		t.Fatalf("params mode produced inline data")
	}
	if *hits != 1 {
		t.Fatalf("fetch count = %d, want a single probe", *hits)
	}
}

func TestSmartCropBase64Mode(t *testing.T) {
	srv, hits := imageServer(t, pngBytes(t, 1600, 800))
	cropper := NewCropper(Options{HTTPClient: srv.Client()})

	res, err := cropper.SmartCrop(context.Background(), srv.URL, 2.0, ModeBase64)
	if err != nil {
		t.Fatalf("smart crop: %v", err)
	}
	if res.Rect != (Rectangle{X: 0, Y: 0, Width: 1600, Height: 800}) {
		t.Fatalf("rect = %+v, want full bounds at exact ratio", res.Rect)
	}
	const prefix = "data:image/jpeg;base64,"
	if !strings.HasPrefix(res.Data, prefix) {
		t.Fatalf("data = %.40q, want jpeg data uri", res.Data)
	}
	if res.EncodedLength != len(res.Data)-len(prefix) {
		t.Fatalf("encoded length = %d, payload is %d", res.EncodedLength, len(res.Data)-len(prefix))
	}
	if res.OutputWidth != 800 || res.OutputHeight != 400 {
		t.Fatalf("output = %dx%d, want 800x400 after the edge bound", res.OutputWidth, res.OutputHeight)
	}

	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(res.Data, prefix))
	if err != nil {
		t.Fatalf("payload is not base64: %v", err)
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("payload is not an image: %v", err)
	}
	if format != "jpeg" {
		t.Fatalf("format = %q, want jpeg", format)
	}
	if cfg.Width != 800 || cfg.Height != 400 {
		t.Fatalf("decoded payload = %dx%d, want 800x400", cfg.Width, cfg.Height)
	}
	if *hits != 2 {
		t.Fatalf("fetch count = %d, want probe plus full fetch", *hits)
	}
}

func TestSmartCropCompressedMode(t *testing.T) {
	srv, _ := imageServer(t, pngBytes(t, 1600, 800))
	cropper := NewCropper(Options{HTTPClient: srv.Client()})

	res, err := cropper.SmartCrop(context.Background(), srv.URL, 2.0, ModeCompressed)
	if err != nil {
		t.Fatalf("smart crop: %v", err)
	}
	if res.OutputWidth != 600 || res.OutputHeight != 300 {
		t.Fatalf("output = %dx%d, want 600x300", res.OutputWidth, res.OutputHeight)
	}
	if !strings.HasPrefix(res.Data, "data:image/jpeg;base64,") {
		t.Fatalf("data = %.40q, want jpeg data uri", res.Data)
	}
}

func TestSmartCropKeepsSmallImages(t *testing.T) {
	srv, _ := imageServer(t, pngBytes(t, 400, 200))
	cropper := NewCropper(Options{HTTPClient: srv.Client()})

	res, err := cropper.SmartCrop(context.Background(), srv.URL, 2.0, ModeBase64)
	if err != nil {
		t.Fatalf("smart crop: %v", err)
	}
	if res.OutputWidth != 400 || res.OutputHeight != 200 {
		t.Fatalf("output = %dx%d, small images must not be upscaled", res.OutputWidth, res.OutputHeight)
	}
}

func TestSmartCropUnknownModeFallsBackToParams(t *testing.T) {
	srv, _ := imageServer(t, pngBytes(t, 1000, 1000))
	cropper := NewCropper(Options{HTTPClient: srv.Client()})

	res, err := cropper.SmartCrop(context.Background(), srv.URL, 1.0, Mode("webp"))
	if err != nil {
		t.Fatalf("smart crop: %v", err)
	}
	if res.Mode != ModeParams {
		t.Fatalf("mode = %q, want fallback to params", res.Mode)
	}
	if res.CropURL == "" {
		t.Fatalf("expected crop url in fallback mode")
	}
}

func TestSmartCropUndecodablePayload(t *testing.T) {
	srv, _ := imageServer(t, []byte("this is not an image"))
	cropper := NewCropper(Options{HTTPClient: srv.Client()})

	_, err := cropper.SmartCrop(context.Background(), srv.URL, 2.35, ModeParams)
	if !errors.Is(err, ErrDecode) {
		t.Fatalf("err = %v, want ErrDecode", err)
	}
}

func TestSmartCropFetchFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	t.Cleanup(srv.Close)
	cropper := NewCropper(Options{HTTPClient: srv.Client()})

	_, err := cropper.SmartCrop(context.Background(), srv.URL, 2.35, ModeParams)
	if err == nil {
		t.Fatalf("expected fetch error")
	}
	if errors.Is(err, ErrDecode) {
		t.Fatalf("status failure misread as decode failure: %v", err)
	}
}

func TestSmartCropRejectsNonPositiveRatio(t *testing.T) {
	cropper := NewCropper(Options{})
	if _, err := cropper.SmartCrop(context.Background(), "http://img.test/a.png", 0, ModeParams); err == nil {
		t.Fatalf("expected error for zero ratio")
	}
}
