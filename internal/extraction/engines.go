package extraction

import (
	"context"

	"spinescan/internal/services/llm"
	"spinescan/internal/services/tesseract"
	"spinescan/internal/services/vision"
)

// Engine produces raw text lines from an image.
type Engine interface {
	Name() string
	ExtractLines(ctx context.Context, img Image) ([]string, error)
}

// LocalEngine is an engine whose availability depends on the host.
type LocalEngine interface {
	Engine
	Available() bool
}

type llmEngine struct{ client *llm.Client }

// NewLLMEngine adapts an OpenAI-compatible vision client.
func NewLLMEngine(client *llm.Client) Engine { return llmEngine{client: client} }

func (e llmEngine) Name() string { return "llm" }

func (e llmEngine) ExtractLines(ctx context.Context, img Image) ([]string, error) {
	return e.client.ExtractLines(ctx, img.Data, img.MIMEType)
}

type visionEngine struct{ client *vision.Client }

// NewVisionEngine adapts a Google Cloud Vision client.
func NewVisionEngine(client *vision.Client) Engine { return visionEngine{client: client} }

func (e visionEngine) Name() string { return "vision" }

func (e visionEngine) ExtractLines(ctx context.Context, img Image) ([]string, error) {
	return e.client.ExtractLines(ctx, img.Data)
}

type tesseractEngine struct{ cli *tesseract.CLI }

// NewTesseractEngine adapts the tesseract CLI.
func NewTesseractEngine(cli *tesseract.CLI) LocalEngine { return tesseractEngine{cli: cli} }

func (e tesseractEngine) Name() string { return "tesseract" }

func (e tesseractEngine) Available() bool { return e.cli.Available() }

func (e tesseractEngine) ExtractLines(ctx context.Context, img Image) ([]string, error) {
	return e.cli.ExtractLines(ctx, img.Data)
}
