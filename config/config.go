// Package config loads the server configuration: built-in defaults, then an
// optional YAML file, then environment overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"paper_binder/enhance"
	"paper_binder/layout"
	"paper_binder/pdf"
	"paper_binder/render"
)

const (
	// DefaultMaxUploadSize caps one multipart request (200MB)
	DefaultMaxUploadSize = 200 * 1024 * 1024

	// DefaultMaxImagePixels caps the decoded size of one scan (50 megapixels)
	DefaultMaxImagePixels = 50_000_000

	// DefaultPort is the default server port
	DefaultPort = "8080"

	// DefaultInstitution is printed on the first page when none is given
	DefaultInstitution = "LITTLE FLOWER JUNIOR COLLEGE, UPPAL, HYD-39"
)

// DefaultFontPaths are tried before the embedded font.
var DefaultFontPaths = []string{
	"/usr/share/fonts/truetype/dejavu/DejaVuSans-Bold.ttf",
	"/usr/share/fonts/truetype/liberation/LiberationSans-Bold.ttf",
}

type ServerConfig struct {
	Port           string        `yaml:"port"`
	MaxUploadSize  int64         `yaml:"max_upload_size"`
	MaxImages      int           `yaml:"max_images"`
	MaxImagePixels int64         `yaml:"max_image_pixels"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// FractionConfig is the image width share per alignment.
type FractionConfig struct {
	Left   float64 `yaml:"left"`
	Center float64 `yaml:"center"`
	Right  float64 `yaml:"right"`
}

type LayoutConfig struct {
	PageWidth      int               `yaml:"page_width"`
	PageHeight     int               `yaml:"page_height"`
	TopMarginFirst int               `yaml:"top_margin_first"`
	TopMarginRest  int               `yaml:"top_margin_rest"`
	BottomMargin   int               `yaml:"bottom_margin"`
	LeftMargin     int               `yaml:"left_margin"`
	RightMargin    int               `yaml:"right_margin"`
	Gap            int               `yaml:"gap"`
	Overlap        int               `yaml:"overlap"`
	Inset          int               `yaml:"inset"`
	WidthFraction  FractionConfig    `yaml:"width_fraction"`
	Alignment      layout.Alignment  `yaml:"alignment"`
	SkipPolicy     layout.SkipPolicy `yaml:"skip_policy"`
}

type HeaderConfig struct {
	Institution    string  `yaml:"institution"`
	TitleSize      float64 `yaml:"title_size"`
	SubtitleSize   float64 `yaml:"subtitle_size"`
	LabelSize      float64 `yaml:"label_size"`
	PageNumberSize float64 `yaml:"page_number_size"`
}

type WatermarkConfig struct {
	Text    string  `yaml:"text"`
	Angle   float64 `yaml:"angle"`
	Opacity float64 `yaml:"opacity"`
	Size    float64 `yaml:"size"`
}

type FontsConfig struct {
	Paths    []string `yaml:"paths"`
	Embedded bool     `yaml:"embedded"`
}

type OutputConfig struct {
	DPI         int        `yaml:"dpi"`
	Optimize    bool       `yaml:"optimize"`
	PageFormat  pdf.Format `yaml:"page_format"`
	JPEGQuality int        `yaml:"jpeg_quality"`
}

type EnhanceConfig struct {
	Enabled   bool `yaml:"enabled"`
	BlockSize int  `yaml:"block_size"`
	C         int  `yaml:"c"`
	Sharpen   bool `yaml:"sharpen"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // text or json
}

// Config is loaded once at start-up and only read afterwards.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Layout    LayoutConfig    `yaml:"layout"`
	Header    HeaderConfig    `yaml:"header"`
	Watermark WatermarkConfig `yaml:"watermark"`
	Fonts     FontsConfig     `yaml:"fonts"`
	Output    OutputConfig    `yaml:"output"`
	Enhance   EnhanceConfig   `yaml:"enhance"`
	Log       LogConfig       `yaml:"log"`
}

// Default returns the reference configuration.
func Default() *Config {
	lc := layout.DefaultConfig()
	st := render.DefaultStyle()
	return &Config{
		Server: ServerConfig{
			Port:           DefaultPort,
			MaxUploadSize:  DefaultMaxUploadSize,
			MaxImages:      500,
			MaxImagePixels: DefaultMaxImagePixels,
			RequestTimeout: 5 * time.Minute,
		},
		Layout: LayoutConfig{
			PageWidth:      lc.PageWidth,
			PageHeight:     lc.PageHeight,
			TopMarginFirst: lc.TopMarginFirst,
			TopMarginRest:  lc.TopMarginRest,
			BottomMargin:   lc.BottomMargin,
			LeftMargin:     lc.LeftMargin,
			RightMargin:    lc.RightMargin,
			Gap:            lc.Gap,
			Overlap:        lc.Overlap,
			Inset:          lc.Inset,
			WidthFraction: FractionConfig{
				Left:   lc.WidthFraction[layout.AlignLeft],
				Center: lc.WidthFraction[layout.AlignCenter],
				Right:  lc.WidthFraction[layout.AlignRight],
			},
			Alignment:  lc.Alignment,
			SkipPolicy: lc.SkipPolicy,
		},
		Header: HeaderConfig{
			Institution:    DefaultInstitution,
			TitleSize:      st.HeaderSize,
			SubtitleSize:   st.SubheaderSize,
			LabelSize:      st.LabelSize,
			PageNumberSize: st.PageNumberSize,
		},
		Watermark: WatermarkConfig{
			Text:    st.Watermark.Text,
			Angle:   st.Watermark.Angle,
			Opacity: st.Watermark.Opacity,
			Size:    st.Watermark.Size,
		},
		Fonts: FontsConfig{
			Paths:    append([]string(nil), DefaultFontPaths...),
			Embedded: true,
		},
		Output: OutputConfig{
			DPI:         pdf.DefaultDPI,
			PageFormat:  pdf.FormatPNG,
			JPEGQuality: pdf.DefaultJPEGQuality,
		},
		Enhance: EnhanceConfig{
			Enabled:   true,
			BlockSize: 29,
			C:         17,
			Sharpen:   true,
		},
		Log: LogConfig{Level: "info", Format: "text"},
	}
}

// Load reads path over the defaults and applies environment overrides. An
// empty path skips the file; a missing file is an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("config file %s not found", path)
			}
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Server.Port = getEnv("PORT", c.Server.Port)
	c.Server.MaxUploadSize = getEnvInt64("MAX_UPLOAD_SIZE", c.Server.MaxUploadSize)
	c.Server.MaxImagePixels = getEnvInt64("MAX_IMAGE_PIXELS", c.Server.MaxImagePixels)
	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)
	c.Header.Institution = getEnv("PAPER_INSTITUTION", c.Header.Institution)
}

// Validate checks the derived layout geometry and server limits.
func (c *Config) Validate() error {
	if c.Server.MaxUploadSize <= 0 {
		return fmt.Errorf("server.max_upload_size must be positive")
	}
	if c.Server.MaxImagePixels <= 0 {
		return fmt.Errorf("server.max_image_pixels must be positive")
	}
	if c.Output.DPI <= 0 {
		return fmt.Errorf("output.dpi must be positive")
	}
	if err := c.LayoutConfig().Validate(); err != nil {
		return fmt.Errorf("layout: %w", err)
	}
	return nil
}

// LayoutConfig converts the layout section into engine geometry.
func (c *Config) LayoutConfig() layout.Config {
	l := c.Layout
	return layout.Config{
		PageWidth:      l.PageWidth,
		PageHeight:     l.PageHeight,
		TopMarginFirst: l.TopMarginFirst,
		TopMarginRest:  l.TopMarginRest,
		BottomMargin:   l.BottomMargin,
		LeftMargin:     l.LeftMargin,
		RightMargin:    l.RightMargin,
		Gap:            l.Gap,
		Overlap:        l.Overlap,
		Inset:          l.Inset,
		WidthFraction: map[layout.Alignment]float64{
			layout.AlignLeft:   l.WidthFraction.Left,
			layout.AlignCenter: l.WidthFraction.Center,
			layout.AlignRight:  l.WidthFraction.Right,
		},
		Alignment:  l.Alignment,
		SkipPolicy: l.SkipPolicy,
	}
}

// Style converts header and watermark sections into render settings.
func (c *Config) Style() render.Style {
	return render.Style{
		HeaderSize:     c.Header.TitleSize,
		SubheaderSize:  c.Header.SubtitleSize,
		LabelSize:      c.Header.LabelSize,
		PageNumberSize: c.Header.PageNumberSize,
		Watermark: render.Watermark{
			Text:    c.Watermark.Text,
			Angle:   c.Watermark.Angle,
			Opacity: c.Watermark.Opacity,
			Size:    c.Watermark.Size,
		},
	}
}

// Filter builds the preprocessing filter.
func (c *Config) Filter() enhance.Filter {
	if !c.Enhance.Enabled {
		return enhance.Identity
	}
	return &enhance.Enhancer{
		BlockSize: c.Enhance.BlockSize,
		C:         c.Enhance.C,
		Sharpen:   c.Enhance.Sharpen,
	}
}

// Encoder builds the page encoder.
func (c *Config) Encoder() pdf.Encoder {
	return pdf.Encoder{Format: c.Output.PageFormat, Quality: c.Output.JPEGQuality}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}
