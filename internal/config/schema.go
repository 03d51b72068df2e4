package config

// Config holds convertx configuration.
// Stored at: {home}/config.yaml
type Config struct {
	Engines    EnginesCfg    `mapstructure:"engines" yaml:"engines"`
	Extraction ExtractionCfg `mapstructure:"extraction" yaml:"extraction"`
	Pipeline   PipelineCfg   `mapstructure:"pipeline" yaml:"pipeline"`
	Layout     LayoutCfg     `mapstructure:"layout" yaml:"layout"`
	Output     OutputCfg     `mapstructure:"output" yaml:"output"`
	Server     ServerCfg     `mapstructure:"server" yaml:"server"`
}

// EnginesCfg selects and configures the recognition engines.
type EnginesCfg struct {
	// Default names the engine used when a job does not specify one:
	// "tesseract" (fast) or "remote" (high accuracy).
	Default   string       `mapstructure:"default" yaml:"default"`
	Tesseract TesseractCfg `mapstructure:"tesseract" yaml:"tesseract"`
	Remote    RemoteCfg    `mapstructure:"remote" yaml:"remote"`
}

// TesseractCfg configures the local Tesseract engine.
type TesseractCfg struct {
	Languages   []string `mapstructure:"languages" yaml:"languages"` // e.g. ["eng"]
	PageSegMode int      `mapstructure:"page_seg_mode" yaml:"page_seg_mode"`
}

// RemoteCfg configures the hosted high-accuracy recognition service.
type RemoteCfg struct {
	BaseURL        string  `mapstructure:"base_url" yaml:"base_url"`
	APIKey         string  `mapstructure:"api_key" yaml:"api_key"` // supports ${ENV_VAR} syntax
	Model          string  `mapstructure:"model" yaml:"model"`
	RateLimit      float64 `mapstructure:"rate_limit" yaml:"rate_limit"` // requests per second
	TimeoutSeconds int     `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
}

// ExtractionCfg configures PDF page rendering.
type ExtractionCfg struct {
	DPI int `mapstructure:"dpi" yaml:"dpi"`
}

// PipelineCfg configures the conversion orchestrator.
type PipelineCfg struct {
	// PageTimeoutSeconds bounds rendering plus recognition for one page.
	PageTimeoutSeconds int `mapstructure:"page_timeout_seconds" yaml:"page_timeout_seconds"`
	// Preprocess is "auto", "always" or "never".
	Preprocess string `mapstructure:"preprocess" yaml:"preprocess"`
}

// LayoutCfg holds the structure-analysis tuning knobs.
type LayoutCfg struct {
	HeadingRatio      float64 `mapstructure:"heading_ratio" yaml:"heading_ratio"`
	HeadingH1Ratio    float64 `mapstructure:"heading_h1_ratio" yaml:"heading_h1_ratio"`
	HeadingH2Ratio    float64 `mapstructure:"heading_h2_ratio" yaml:"heading_h2_ratio"`
	ParagraphGapRatio float64 `mapstructure:"paragraph_gap_ratio" yaml:"paragraph_gap_ratio"`
}

// OutputCfg configures document output handling.
type OutputCfg struct {
	// ConflictPolicy is "overwrite" or "unique" (append _1, _2, ...).
	ConflictPolicy string `mapstructure:"conflict_policy" yaml:"conflict_policy"`
}

// ServerCfg configures the HTTP server.
type ServerCfg struct {
	Host string `mapstructure:"host" yaml:"host"`
	Port string `mapstructure:"port" yaml:"port"`
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Engines: EnginesCfg{
			Default: "tesseract",
			Tesseract: TesseractCfg{
				Languages:   []string{"eng"},
				PageSegMode: 1, // automatic segmentation with orientation detection
			},
			Remote: RemoteCfg{
				BaseURL:        "http://127.0.0.1:8765",
				APIKey:         "${CONVERTX_REMOTE_API_KEY}",
				RateLimit:      4.0,
				TimeoutSeconds: 120,
			},
		},
		Extraction: ExtractionCfg{
			DPI: 300,
		},
		Pipeline: PipelineCfg{
			PageTimeoutSeconds: 120,
			Preprocess:         "auto",
		},
		Layout: LayoutCfg{
			HeadingRatio:      1.14,
			HeadingH1Ratio:    1.8,
			HeadingH2Ratio:    1.5,
			ParagraphGapRatio: 1.5,
		},
		Output: OutputCfg{
			ConflictPolicy: "overwrite",
		},
		Server: ServerCfg{
			Host: "127.0.0.1",
			Port: "8080",
		},
	}
}
