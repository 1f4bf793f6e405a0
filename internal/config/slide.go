package config

import (
	"path/filepath"
	"time"
)

// SlideConfig holds capture and analysis overrides for slides.
// Zero values and nil pointers mean "not set".
type SlideConfig struct {
	// Width and Height override the viewport size.
	Width  int `yaml:"width,omitempty"`
	Height int `yaml:"height,omitempty"`

	// Delay overrides the post-load delay (e.g. "500ms", "2s").
	Delay time.Duration `yaml:"delay,omitempty"`

	// Timeout overrides the capture timeout.
	Timeout time.Duration `yaml:"timeout,omitempty"`

	// FullPage overrides full page capture.
	FullPage *bool `yaml:"fullPage,omitempty"`

	// AutoInstall overrides the managed Chromium download.
	AutoInstall *bool `yaml:"autoInstall,omitempty"`

	// Chromium is an explicit browser binary.
	Chromium string `yaml:"chromium,omitempty"`

	// Canvas is the CSS selector of the canvas root.
	Canvas string `yaml:"canvas,omitempty"`

	// MinVisibleFraction overrides the clipped threshold.
	MinVisibleFraction *float64 `yaml:"minVisibleFraction,omitempty"`

	// OverlapMinArea overrides the overlap threshold.
	OverlapMinArea *float64 `yaml:"overlapMinArea,omitempty"`

	// Segmentation overrides the fallback segmentation strategy.
	Segmentation string `yaml:"segmentation,omitempty"`
}

// File represents the structure of the .slideshot configuration file.
type File struct {
	// Defaults applies to every slide unless overridden.
	Defaults SlideConfig `yaml:"defaults,omitempty"`

	// Slides maps slide paths to their overrides. Keys are matched against
	// the path as given, the path relative to the config file, and the
	// base name, in that order.
	Slides map[string]SlideConfig `yaml:"slides,omitempty"`

	// dir is the directory of the loaded file.
	dir string
}

// GetSlideConfig returns the configuration for htmlPath, merging the
// slide-specific entry over the defaults.
func (cf *File) GetSlideConfig(htmlPath string) SlideConfig {
	result := cf.Defaults
	if sc, ok := cf.lookup(htmlPath); ok {
		result = result.merge(sc)
	}
	return result
}

func (cf *File) lookup(htmlPath string) (SlideConfig, bool) {
	keys := []string{htmlPath, filepath.Clean(htmlPath)}
	if cf.dir != "" {
		if abs, err := filepath.Abs(htmlPath); err == nil {
			if absDir, err := filepath.Abs(cf.dir); err == nil {
				if rel, err := filepath.Rel(absDir, abs); err == nil {
					keys = append(keys, rel, filepath.ToSlash(rel))
				}
			}
		}
	}
	keys = append(keys, filepath.Base(htmlPath))

	for _, k := range keys {
		if sc, ok := cf.Slides[k]; ok {
			return sc, true
		}
	}
	return SlideConfig{}, false
}

// merge returns s with every field set in o overriding it.
func (s SlideConfig) merge(o SlideConfig) SlideConfig {
	if o.Width != 0 {
		s.Width = o.Width
	}
	if o.Height != 0 {
		s.Height = o.Height
	}
	if o.Delay != 0 {
		s.Delay = o.Delay
	}
	if o.Timeout != 0 {
		s.Timeout = o.Timeout
	}
	if o.FullPage != nil {
		s.FullPage = o.FullPage
	}
	if o.AutoInstall != nil {
		s.AutoInstall = o.AutoInstall
	}
	if o.Chromium != "" {
		s.Chromium = o.Chromium
	}
	if o.Canvas != "" {
		s.Canvas = o.Canvas
	}
	if o.MinVisibleFraction != nil {
		s.MinVisibleFraction = o.MinVisibleFraction
	}
	if o.OverlapMinArea != nil {
		s.OverlapMinArea = o.OverlapMinArea
	}
	if o.Segmentation != "" {
		s.Segmentation = o.Segmentation
	}
	return s
}

// Flag names that ApplySlideConfig consults. They match the CLI flags.
const (
	FlagWidth              = "width"
	FlagHeight             = "height"
	FlagDelay              = "delay"
	FlagTimeout            = "timeout"
	FlagNoFullPage         = "no-full-page"
	FlagNoAutoInstall      = "no-auto-install"
	FlagChromium           = "chromium"
	FlagCanvas             = "canvas"
	FlagMinVisibleFraction = "min-visible-fraction"
	FlagOverlapMinArea     = "overlap-min-area"
	FlagSegmentation       = "segmentation"
)

// ApplySlideConfig copies the values set in sc into c, except for settings
// whose flag was given explicitly on the command line.
func (c *Config) ApplySlideConfig(sc SlideConfig, flagSet func(name string) bool) {
	if flagSet == nil {
		flagSet = func(string) bool { return false }
	}

	if sc.Width != 0 && !flagSet(FlagWidth) {
		c.Width = sc.Width
	}
	if sc.Height != 0 && !flagSet(FlagHeight) {
		c.Height = sc.Height
	}
	if sc.Delay != 0 && !flagSet(FlagDelay) {
		c.Delay = sc.Delay
	}
	if sc.Timeout != 0 && !flagSet(FlagTimeout) {
		c.Timeout = sc.Timeout
	}
	if sc.FullPage != nil && !flagSet(FlagNoFullPage) {
		c.FullPage = *sc.FullPage
	}
	if sc.AutoInstall != nil && !flagSet(FlagNoAutoInstall) {
		c.AutoInstall = *sc.AutoInstall
	}
	if sc.Chromium != "" && !flagSet(FlagChromium) {
		c.ChromiumPath = sc.Chromium
	}
	if sc.Canvas != "" && !flagSet(FlagCanvas) {
		c.CanvasSelector = sc.Canvas
		c.CanvasSelectorExplicit = true
	}
	if sc.MinVisibleFraction != nil && !flagSet(FlagMinVisibleFraction) {
		c.MinVisibleFraction = *sc.MinVisibleFraction
	}
	if sc.OverlapMinArea != nil && !flagSet(FlagOverlapMinArea) {
		c.OverlapMinArea = *sc.OverlapMinArea
	}
	if sc.Segmentation != "" && !flagSet(FlagSegmentation) {
		c.Segmentation = sc.Segmentation
	}
}
