package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	"headergen/internal/crop"
	"headergen/internal/imagegen"
	"headergen/internal/infra"
	"headergen/internal/providers/jimeng"
	"headergen/internal/storage"
)

func main() {
	var (
		modeFlag        string
		promptFlag      string
		styleFlag       string
		tierFlag        string
		urlFlag         string
		ratioFlag       float64
		outputFlag      string
		saveFlag        string
		contentTypeFlag string
		moodFlag        string
	)

	flag.StringVar(&modeFlag, "mode", "", "operation to run (square, wide, crop, styles)")
	flag.StringVar(&promptFlag, "prompt", "", "image description for square/wide modes")
	flag.StringVar(&styleFlag, "style", "", "optional style hint appended to the prompt")
	flag.StringVar(&tierFlag, "tier", "2k", "resolution tier (1k, 2k, 4k)")
	flag.StringVar(&urlFlag, "url", "", "source image URL for crop mode")
	flag.Float64Var(&ratioFlag, "ratio", 2.35, "target aspect ratio for crop mode")
	flag.StringVar(&outputFlag, "output", "params", "crop output mode (params, base64, compressed)")
	flag.StringVar(&saveFlag, "save", "", "write the encoded crop output to this file")
	flag.StringVar(&contentTypeFlag, "content-type", "", "content category for styles mode")
	flag.StringVar(&moodFlag, "mood", "", "optional mood filter for styles mode")
	flag.Parse()

	mode := strings.TrimSpace(strings.ToLower(modeFlag))
	switch mode {
	case "square", "wide", "crop", "styles":
	case "":
		exitWithError(errors.New("-mode is required (square, wide, crop, styles)"))
	default:
		exitWithError(fmt.Errorf("unsupported mode %q", mode))
	}

	// .env is optional
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		exitWithError(err)
	}
	logger := infra.NewLogger("cli").With().Str("cmd", "headerctl").Logger()

	client, err := jimeng.NewClient(jimeng.Options{
		Credentials: jimeng.Credentials{
			AccessKey: cfg.VolcAccessKey,
			SecretKey: cfg.VolcSecretKey,
		},
		BaseURL:      cfg.JimengBaseURL,
		Logger:       &logger,
		PollInterval: cfg.PollInterval,
		MaxWait:      cfg.PollMaxWait,
	})
	if err != nil {
		exitWithError(err)
	}
	service, err := imagegen.NewService(imagegen.Options{
		Client: client,
		Cropper: crop.NewCropper(crop.Options{
			Logger:       &logger,
			FetchTimeout: cfg.FetchTimeout,
		}),
		Logger: &logger,
	})
	if err != nil {
		exitWithError(err)
	}

	ctx := context.Background()

	switch mode {
	case "square", "wide":
		prompt := strings.TrimSpace(promptFlag)
		if prompt == "" {
			exitWithError(errors.New("-prompt is required for square and wide modes"))
		}
		var res imagegen.GenerateResult
		if mode == "square" {
			res = service.GenerateSquare(ctx, imagegen.SquareRequest{
				Prompt: prompt,
				Style:  strings.TrimSpace(styleFlag),
				Tier:   tierFlag,
			})
		} else {
			res = service.GenerateWide(ctx, imagegen.WideRequest{
				Prompt: prompt,
				Style:  strings.TrimSpace(styleFlag),
				Tier:   tierFlag,
			})
		}
		printJSON(res)
		if res.Status != imagegen.StatusSuccess {
			os.Exit(1)
		}
	case "crop":
		url := strings.TrimSpace(urlFlag)
		if url == "" {
			exitWithError(errors.New("-url is required for crop mode"))
		}
		out := service.CropToRatio(ctx, imagegen.CropRequest{
			URL:    url,
			Ratio:  ratioFlag,
			Output: outputFlag,
		})
		printJSON(out)
		if out.Status != imagegen.StatusSuccess {
			os.Exit(1)
		}
		if savePath := strings.TrimSpace(saveFlag); savePath != "" {
			if out.Result == nil || out.Result.Data == "" {
				exitWithError(errors.New("-save needs -output base64 or compressed"))
			}
			store, err := storage.NewFileStore(filepath.Dir(savePath))
			if err != nil {
				exitWithError(err)
			}
			key, err := store.WriteDataURI(ctx, filepath.Base(savePath), out.Result.Data)
			if err != nil {
				exitWithError(err)
			}
			fmt.Fprintf(os.Stderr, "saved %s\n", filepath.Join(store.BasePath(), key))
		}
	case "styles":
		res := imagegen.SuggestStyles(imagegen.StyleRequest{
			ContentType: contentTypeFlag,
			Mood:        moodFlag,
		})
		printJSON(res)
	}
}

func printJSON(v any) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		exitWithError(fmt.Errorf("failed to encode result: %w", err))
	}
	fmt.Println(string(out))
}

func exitWithError(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
