package config

const (
	defaultLogDir    = "~/.local/share/spinescan/logs"
	defaultWatchDir  = "~/Pictures/spines"
	defaultOutputDir = "~/.local/share/spinescan/results"
	defaultAPIBind   = "127.0.0.1:7488"

	defaultUserAgent = "spinescan/0.1 (https://github.com/spinescan/spinescan)"

	defaultMusicBrainzBaseURL  = "https://musicbrainz.org/ws/2"
	defaultCoverArtBaseURL     = "https://coverartarchive.org"
	defaultMusicBrainzRate     = 1.0
	defaultDiscogsBaseURL      = "https://api.discogs.com"
	defaultDiscogsRate         = 1.0
	defaultSpotifyTokenURL     = "https://accounts.spotify.com/api/token"
	defaultSpotifyBaseURL      = "https://api.spotify.com/v1"
	defaultSpotifyRate         = 5.0
	defaultResolverConcurrency = 4
	defaultLookupTimeout       = 15

	defaultOCREngine       = OCREngineAuto
	defaultLLMBaseURL      = "https://api.openai.com/v1/chat/completions"
	defaultLLMModel        = "gpt-4o"
	defaultLLMReferer      = "https://github.com/spinescan/spinescan"
	defaultLLMTitle        = "spinescan"
	defaultLLMTimeout      = 60
	defaultTesseractBinary = "tesseract"
	defaultTesseractLang   = "eng"
	defaultTesseractTime   = 60

	defaultLogFormat = "console"
	defaultLogLevel  = "info"
)

// Provider names accepted in providers.order.
const (
	ProviderMusicBrainz = "musicbrainz"
	ProviderDiscogs     = "discogs"
	ProviderSpotify     = "spotify"
)

// OCR engine names accepted in ocr.engine.
const (
	OCREngineAuto      = "auto"
	OCREngineLLM       = "llm"
	OCREngineVision    = "vision"
	OCREngineTesseract = "tesseract"
)

// DefaultProviderOrder is the adapter registration order used when
// providers.order is empty.
func DefaultProviderOrder() []string {
	return []string{ProviderMusicBrainz, ProviderDiscogs, ProviderSpotify}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LogDir:    defaultLogDir,
			WatchDir:  defaultWatchDir,
			OutputDir: defaultOutputDir,
		},
		Providers: Providers{
			Order: DefaultProviderOrder(),
		},
		MusicBrainz: MusicBrainz{
			Enabled:           true,
			BaseURL:           defaultMusicBrainzBaseURL,
			CoverArtBaseURL:   defaultCoverArtBaseURL,
			UserAgent:         defaultUserAgent,
			RequestsPerSecond: defaultMusicBrainzRate,
		},
		Discogs: Discogs{
			Enabled:           true,
			BaseURL:           defaultDiscogsBaseURL,
			UserAgent:         defaultUserAgent,
			RequestsPerSecond: defaultDiscogsRate,
		},
		Spotify: Spotify{
			Enabled:           true,
			TokenURL:          defaultSpotifyTokenURL,
			BaseURL:           defaultSpotifyBaseURL,
			RequestsPerSecond: defaultSpotifyRate,
		},
		Resolver: Resolver{
			Concurrency:          defaultResolverConcurrency,
			LookupTimeoutSeconds: defaultLookupTimeout,
		},
		OCR: OCR{
			Engine: defaultOCREngine,
		},
		LLM: LLM{
			BaseURL:        defaultLLMBaseURL,
			Model:          defaultLLMModel,
			Referer:        defaultLLMReferer,
			Title:          defaultLLMTitle,
			TimeoutSeconds: defaultLLMTimeout,
		},
		Tesseract: Tesseract{
			Binary:         defaultTesseractBinary,
			Language:       defaultTesseractLang,
			TimeoutSeconds: defaultTesseractTime,
		},
		API: API{
			Bind: defaultAPIBind,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
