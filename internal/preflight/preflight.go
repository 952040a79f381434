package preflight

import (
	"context"

	"spinescan/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if !r.Passed {
			out = append(out, r)
		}
	}
	return out
}

// RunAll executes all applicable preflight checks for the given config.
// Checks are only run when the corresponding feature is enabled.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	results = append(results, CheckDirectoryAccess("Log directory", cfg.Paths.LogDir))
	results = append(results, CheckDirectoryAccess("Output directory", cfg.Paths.OutputDir))

	for _, name := range cfg.Providers.Order {
		switch name {
		case config.ProviderMusicBrainz:
			if cfg.MusicBrainz.Enabled {
				results = append(results, CheckMusicBrainz(ctx, cfg.MusicBrainz))
			}
		case config.ProviderDiscogs:
			if cfg.Discogs.Enabled {
				results = append(results, CheckDiscogs(ctx, cfg.Discogs))
			}
		case config.ProviderSpotify:
			if cfg.Spotify.Enabled {
				results = append(results, CheckSpotify(ctx, cfg.Spotify))
			}
		}
	}

	switch cfg.OCR.Engine {
	case config.OCREngineLLM:
		results = append(results, CheckLLM(ctx, "Extraction LLM", cfg.GetLLM()))
	case config.OCREngineAuto:
		if cfg.LLM.APIKey != "" {
			results = append(results, CheckLLM(ctx, "Extraction LLM", cfg.GetLLM()))
		}
	}

	return results
}
