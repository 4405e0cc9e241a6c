package imagegen

import (
	"context"
	"errors"
	"io"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"headergen/internal/crop"
	"headergen/internal/history"
	"headergen/internal/infra"
	"headergen/internal/providers/jimeng"
)

// Square tier edges and the 2.35:1 header tiers recommended for
// official-account pages.
var (
	squareTiers = map[string]int{Tier1K: 1024, Tier2K: 2048, Tier4K: 4096}
	wideTiers   = map[string][2]int{
		Tier1K: {1424, 606},
		Tier2K: {2848, 1212},
		Tier4K: {5696, 2424},
	}
)

// Options wires the service dependencies.
type Options struct {
	Client  *jimeng.Client
	Cropper *crop.Cropper
	History *history.Store
	Logger  *infra.Logger
}

// Service exposes the caller-facing generation and crop operations. Every
// operation answers with a result value whose Status is always set; failures
// never surface as errors or panics.
type Service struct {
	client  *jimeng.Client
	cropper *crop.Cropper
	history *history.Store
	logger  *infra.Logger
}

// NewService constructs the service. The Jimeng client is required; a missing
// cropper is built on the spot and a nil history store disables persistence.
func NewService(opts Options) (*Service, error) {
	if opts.Client == nil {
		return nil, errors.New("imagegen: jimeng client is required")
	}
	cropper := opts.Cropper
	if cropper == nil {
		cropper = crop.NewCropper(crop.Options{Logger: opts.Logger})
	}
	var logger *infra.Logger
	if opts.Logger != nil {
		logger = opts.Logger
	} else {
		discard := zerolog.New(io.Discard)
		l := infra.Logger(discard)
		logger = &l
	}
	return &Service{
		client:  opts.Client,
		cropper: cropper,
		history: opts.History,
		logger:  logger,
	}, nil
}

func squareDimensions(tier string) (int, int) {
	if edge, ok := squareTiers[normalizeTier(tier)]; ok {
		return edge, edge
	}
	edge := squareTiers[Tier2K]
	return edge, edge
}

func wideDimensions(tier string) (int, int) {
	if dims, ok := wideTiers[normalizeTier(tier)]; ok {
		return dims[0], dims[1]
	}
	dims := wideTiers[Tier2K]
	return dims[0], dims[1]
}

func normalizeTier(tier string) string {
	return strings.ToLower(strings.TrimSpace(tier))
}

// GenerateSquare produces a 1:1 cover image at the requested tier.
func (s *Service) GenerateSquare(ctx context.Context, req SquareRequest) GenerateResult {
	width, height := squareDimensions(req.Tier)
	return s.generate(ctx, applyStyle(req.Prompt, req.Style), width, height)
}

// GenerateWide produces a 2.35:1 header image at the requested tier.
func (s *Service) GenerateWide(ctx context.Context, req WideRequest) GenerateResult {
	width, height := wideDimensions(req.Tier)
	return s.generate(ctx, applyStyle(req.Prompt, req.Style), width, height)
}

func (s *Service) generate(ctx context.Context, prompt string, width, height int) GenerateResult {
	width, height = jimeng.SanitizeDimensions(width, height)
	res := GenerateResult{Prompt: prompt, Width: width, Height: height}

	taskID, err := s.client.SubmitTask(ctx, prompt, width, height)
	if err != nil {
		res.Status = StatusError
		res.Kind = classify(err)
		res.Message = err.Error()
		s.logger.Warn().Err(err).Msg("imagegen: submission failed")
		return res
	}
	res.TaskID = taskID

	rowID, err := s.history.RecordSubmission(ctx, taskID, prompt, width, height)
	if err != nil {
		s.logger.Warn().Err(err).Str("task_id", taskID).Msg("imagegen: history insert failed")
	}

	imageURL, elapsed, err := s.client.WaitForImage(ctx, taskID)
	res.ElapsedSeconds = roundSeconds(elapsed)
	if err != nil {
		if errors.Is(err, jimeng.ErrPollTimeout) {
			res.Status = StatusTimeout
			res.Kind = FailureTimeout
			res.Message = "generation still running after the wait budget; retry later with the task id"
		} else {
			res.Status = StatusError
			res.Kind = classify(err)
			res.Message = err.Error()
		}
		s.recordOutcome(ctx, rowID, res.Status, "", elapsed)
		return res
	}

	res.Status = StatusSuccess
	res.ImageURL = imageURL
	s.recordOutcome(ctx, rowID, res.Status, imageURL, elapsed)
	s.logger.Info().
		Str("task_id", taskID).
		Str("image_url", imageURL).
		Float64("elapsed_seconds", res.ElapsedSeconds).
		Msg("imagegen: image ready")
	return res
}

// CropToRatio crops a remote image to the requested aspect ratio. The output
// mode defaults to coordinate params.
func (s *Service) CropToRatio(ctx context.Context, req CropRequest) CropOutcome {
	if strings.TrimSpace(req.URL) == "" || req.Ratio <= 0 {
		return CropOutcome{
			Status:  StatusError,
			Kind:    FailureConfig,
			Message: "crop needs an image url and a positive ratio",
		}
	}
	mode := crop.Mode(strings.ToLower(strings.TrimSpace(req.Output)))
	if mode == "" {
		mode = crop.ModeParams
	}
	result, err := s.cropper.SmartCrop(ctx, req.URL, req.Ratio, mode)
	if err != nil {
		s.logger.Warn().Err(err).Str("url", req.URL).Msg("imagegen: crop failed")
		return CropOutcome{Status: StatusError, Kind: classify(err), Message: err.Error()}
	}
	return CropOutcome{Status: StatusSuccess, Result: result}
}

// Unresolved history rows younger than the client's poll budget still belong
// to their originating request; older than abandonAfter the remote task result
// has expired anyway.
const abandonAfter = 24 * time.Hour

// ResolveStale re-polls unresolved history rows whose originating request gave
// up on them and stamps those whose remote task meanwhile finished. It returns
// how many rows reached a terminal state. Tasks still running are left for the
// next sweep until they exceed the abandon age.
func (s *Service) ResolveStale(ctx context.Context, batch int) (int, error) {
	cutoff := time.Now().Add(-s.client.MaxWait())
	tasks, err := s.history.ListUnresolved(ctx, cutoff, batch)
	if err != nil {
		return 0, err
	}

	resolved := 0
	for _, tk := range tasks {
		if err := ctx.Err(); err != nil {
			return resolved, err
		}
		elapsed := time.Since(tk.CreatedAt)
		result, err := s.client.GetResult(ctx, tk.TaskID)
		switch {
		case errors.Is(err, jimeng.ErrTaskRejected):
			s.recordOutcome(ctx, tk.ID, StatusError, "", elapsed)
			resolved++
		case err != nil:
			s.logger.Warn().Err(err).Str("task_id", tk.TaskID).Msg("imagegen: stale poll failed")
		case result.Done():
			s.recordOutcome(ctx, tk.ID, StatusSuccess, result.ImageURLs[0], elapsed)
			resolved++
			s.logger.Info().Str("task_id", tk.TaskID).Msg("imagegen: stale task resolved")
		case elapsed > abandonAfter:
			s.recordOutcome(ctx, tk.ID, StatusError, "", elapsed)
			resolved++
		}
	}
	return resolved, nil
}

func (s *Service) recordOutcome(ctx context.Context, rowID uuid.UUID, status, imageURL string, elapsed time.Duration) {
	if err := s.history.RecordOutcome(ctx, rowID, status, imageURL, elapsed); err != nil {
		s.logger.Warn().Err(err).Msg("imagegen: history update failed")
	}
}

func classify(err error) FailureKind {
	switch {
	case errors.Is(err, jimeng.ErrNoCredentials):
		return FailureConfig
	case errors.Is(err, jimeng.ErrPollTimeout):
		return FailureTimeout
	case errors.Is(err, jimeng.ErrTaskRejected):
		return FailureRejected
	case errors.Is(err, crop.ErrDecode):
		return FailureDecode
	default:
		return FailureTransport
	}
}

func roundSeconds(d time.Duration) float64 {
	return math.Round(d.Seconds()*10) / 10
}
