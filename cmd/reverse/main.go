// Command reverse runs one clip through validation, frame sampling and prompt
// generation and prints the resulting prompt.
package main

import (
	"context"
	"flag"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"videoprompt/internal/domain"
	"videoprompt/internal/http/handlers"
	"videoprompt/internal/infra"
	"videoprompt/internal/media"
	"videoprompt/internal/middleware"
	"videoprompt/internal/providers/genai"
	"videoprompt/internal/session"
	"videoprompt/internal/storage"
	"videoprompt/pkg/zip"
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		videoFlag  string
		mimeFlag   string
		localeFlag string
		framesFlag string
	)
	flag.StringVar(&videoFlag, "video", "", "Path to the video clip")
	flag.StringVar(&mimeFlag, "mime", "", "Media type of the clip (detected from the extension when empty)")
	flag.StringVar(&localeFlag, "locale", "en", "Language for status messages (en or id)")
	flag.StringVar(&framesFlag, "frames", "", "Optional path of a zip receiving the sampled frames")
	flag.Parse()

	_ = godotenv.Load()

	path := strings.TrimSpace(videoFlag)
	if path == "" {
		fmt.Fprintln(os.Stderr, "-video is required")
		return 2
	}
	mimeType := strings.TrimSpace(mimeFlag)
	if mimeType == "" {
		mimeType = mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))
	}

	cfg, err := infra.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		return 1
	}
	logger := infra.NewLogger(cfg.AppEnv)

	workdir, err := os.MkdirTemp("", "reverse-*")
	if err != nil {
		fmt.Fprintf(os.Stderr, "workdir: %v\n", err)
		return 1
	}
	defer os.RemoveAll(workdir)

	store, err := storage.NewFileStore(workdir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "storage: %v\n", err)
		return 1
	}
	registry := storage.NewRegistry(store, logger)
	prober := media.NewFFprobe(cfg.FFprobeTimeout)
	controller := session.NewController(
		media.NewValidator(store, registry, prober, cfg.MaxVideoSeconds, logger),
		media.NewSampler(registry, prober, media.NewFFmpegGrabber(cfg.FFmpegPath), media.SamplerOptions{
			Quality: cfg.JPEGQuality,
			Strict:  cfg.SamplerStrict,
			Logger:  logger,
		}),
		genai.NewClient(genai.Options{
			APIKey:  cfg.GeminiAPIKey,
			BaseURL: cfg.GeminiBaseURL,
			Model:   cfg.GeminiModel,
			Timeout: cfg.GeminiTimeout,
			Logger:  &logger,
		}),
		registry,
		store,
		session.Options{FrameCount: cfg.FrameCount, Logger: logger},
	)

	ctx := context.Background()
	defer controller.Close(ctx)
	tag := middleware.MatchLocale(localeFlag)

	f, err := os.Open(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open video: %v\n", err)
		return 1
	}
	defer f.Close()
	var size int64
	if info, err := f.Stat(); err == nil {
		size = info.Size()
	}

	st := controller.SelectFile(ctx, domain.Upload{
		Filename: filepath.Base(path),
		MimeType: mimeType,
		Size:     size,
		Body:     f,
	})
	if _, ok := st.(session.Failed); ok {
		fmt.Fprintln(os.Stderr, session.Describe(st, tag).Message)
		return 1
	}

	if cfg.GenerateTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.GenerateTimeout)
		defer cancel()
	}
	st, err = controller.Generate(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, domain.Message(err, tag))
		return 1
	}
	success, ok := st.(session.Success)
	if !ok {
		fmt.Fprintln(os.Stderr, session.Describe(st, tag).Message)
		return 1
	}
	fmt.Println(string(success.Prompt))

	if out := strings.TrimSpace(framesFlag); out != "" {
		raw, err := zip.Archive(handlers.FrameEntries(success.Frames, time.Now()))
		if err != nil {
			fmt.Fprintf(os.Stderr, "frames: %v\n", err)
			return 1
		}
		if err := os.WriteFile(out, raw, 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "frames: %v\n", err)
			return 1
		}
	}
	return 0
}
