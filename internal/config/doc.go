// Package config provides configuration structures and utilities for slideshot.
// It defines the capture settings (viewport, delay, browser), the analysis
// thresholds, the output artifacts, and the optional .slideshot file that
// stores per-slide overrides.
package config
