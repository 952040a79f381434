package extraction

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/text/unicode/norm"

	"spinescan/internal/config"
	"spinescan/internal/logging"
	"spinescan/internal/services"
	"spinescan/internal/services/llm"
	"spinescan/internal/services/tesseract"
	"spinescan/internal/services/vision"
	"spinescan/internal/textutil"
)

// Extractor runs the configured engines.
type Extractor struct {
	hosted Engine
	local  LocalEngine
	logger *slog.Logger
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithHosted sets the hosted engine.
func WithHosted(engine Engine) Option {
	return func(e *Extractor) {
		e.hosted = engine
	}
}

// WithLocal sets the local fallback engine.
func WithLocal(engine LocalEngine) Option {
	return func(e *Extractor) {
		e.local = engine
	}
}

// WithLogger sets the extractor logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Extractor) {
		e.logger = logger
	}
}

// New builds an Extractor from explicit engines.
func New(opts ...Option) *Extractor {
	e := &Extractor{}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = logging.NewComponentLogger(e.logger, "extraction")
	return e
}

// NewFromConfig selects engines according to ocr.engine. In auto mode the
// LLM is preferred over Cloud Vision when both carry credentials.
func NewFromConfig(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Extractor, error) {
	if cfg == nil {
		return nil, services.Wrap(services.ErrConfiguration, "extract", "configure", "config required", nil)
	}
	opts := []Option{WithLogger(logger)}
	local := NewTesseractEngine(tesseract.NewCLI(
		tesseract.WithBinary(cfg.TesseractBinary()),
		tesseract.WithLanguage(cfg.Tesseract.Language),
		tesseract.WithTimeout(time.Duration(cfg.Tesseract.TimeoutSeconds)*time.Second),
	))
	opts = append(opts, WithLocal(local))

	engine := cfg.OCR.Engine
	if engine == config.OCREngineAuto {
		switch {
		case cfg.LLM.APIKey != "":
			engine = config.OCREngineLLM
		case cfg.Vision.APIKey != "":
			engine = config.OCREngineVision
		default:
			engine = config.OCREngineTesseract
		}
	}

	switch engine {
	case config.OCREngineLLM:
		llmCfg := cfg.GetLLM()
		client := llm.NewClient(llm.Config{
			APIKey:         llmCfg.APIKey,
			BaseURL:        llmCfg.BaseURL,
			Model:          llmCfg.Model,
			Referer:        llmCfg.Referer,
			Title:          llmCfg.Title,
			TimeoutSeconds: llmCfg.TimeoutSeconds,
		})
		opts = append(opts, WithHosted(NewLLMEngine(client)))
	case config.OCREngineVision:
		client, err := vision.NewClient(ctx, vision.Config{APIKey: cfg.Vision.APIKey, Endpoint: cfg.Vision.Endpoint})
		if err != nil {
			return nil, services.Wrap(services.ErrConfiguration, "extract", "configure", "cloud vision client", err)
		}
		opts = append(opts, WithHosted(NewVisionEngine(client)))
	case config.OCREngineTesseract:
	default:
		return nil, services.Wrap(services.ErrConfiguration, "extract", "configure", fmt.Sprintf("unknown ocr engine %q", engine), nil)
	}
	return New(opts...), nil
}

// Engines returns the names of the configured engines, hosted first.
func (e *Extractor) Engines() []string {
	var names []string
	if e.hosted != nil {
		names = append(names, e.hosted.Name())
	}
	if e.local != nil {
		names = append(names, e.local.Name())
	}
	return names
}

// Extract returns the normalized query lines for img. An image with no
// readable text yields an empty, non-nil slice; errors are reserved for
// engine and transport failures.
func (e *Extractor) Extract(ctx context.Context, img Image) ([]string, error) {
	ctx = services.WithStage(ctx, "extract")
	logger := logging.WithContext(ctx, e.logger)

	localReady := e.local != nil && e.local.Available()
	if e.hosted == nil && !localReady {
		return nil, services.Wrap(services.ErrConfiguration, "extract", "select engine",
			"no text extraction engine available; configure llm.api_key or vision.api_key, or install tesseract", nil)
	}

	var hostedErr error
	if e.hosted != nil {
		lines, err := e.run(ctx, logger, e.hosted, img)
		if err == nil {
			return finish(logger, lines), nil
		}
		hostedErr = err
		if !localReady || ctx.Err() != nil {
			return nil, services.Wrap(services.ErrExternalTool, "extract", e.hosted.Name(), "hosted extraction failed", err)
		}
		logging.WarnWithContext(logger, "hosted extraction failed; falling back to tesseract", "extraction_fallback",
			logging.String("engine", e.hosted.Name()),
			logging.Error(err),
			logging.Alert("ocr_fallback"),
			logging.String(logging.FieldErrorHint, "check the hosted OCR credentials and quota"),
			logging.String(logging.FieldImpact, "text read by local OCR, which is less accurate on spines"),
		)
	}

	lines, err := e.run(ctx, logger, e.local, img)
	if err != nil {
		if hostedErr != nil {
			err = errors.Join(hostedErr, err)
		}
		return nil, services.Wrap(services.ErrExternalTool, "extract", e.local.Name(), "local extraction failed", err)
	}
	return finish(logger, lines), nil
}

func (e *Extractor) run(ctx context.Context, logger *slog.Logger, engine Engine, img Image) ([]string, error) {
	start := time.Now()
	lines, err := engine.ExtractLines(ctx, img)
	if err != nil {
		return nil, err
	}
	logger.Info("text extracted",
		logging.String("engine", engine.Name()),
		logging.String("image", img.Name),
		logging.Int("raw_lines", len(lines)),
		logging.Duration("elapsed", time.Since(start)),
	)
	return lines, nil
}

func finish(logger *slog.Logger, raw []string) []string {
	folded := make([]string, len(raw))
	for i, line := range raw {
		folded[i] = norm.NFKC.String(line)
	}
	queries := textutil.NormalizeLines(folded)
	if len(queries) == 0 {
		logger.Info("no text found in image", logging.Int("raw_lines", len(raw)))
	}
	return queries
}
