package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeLogging()
	c.normalizeRender()
	if c.Presets == nil {
		c.Presets = Default().Presets
	}
	if strings.TrimSpace(c.DefaultPreset) == "" {
		c.DefaultPreset = defaultDefaultPreset
	}
	if c.Convert.Ramp == "" {
		c.Convert.Ramp = DefaultRamp
	}
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if c.Paths.HistoryDB, err = expandPath(c.Paths.HistoryDB); err != nil {
		return fmt.Errorf("paths.history_db: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if strings.TrimSpace(c.FFmpeg.LogLevel) == "" {
		c.FFmpeg.LogLevel = defaultFFmpegLog
	}
}

func (c *Config) normalizeRender() {
	if c.Render.FontSizePx <= 0 {
		c.Render.FontSizePx = defaultFontSizePx
	}
	if c.Render.CRF <= 0 {
		c.Render.CRF = defaultCRF
	}
	if strings.TrimSpace(c.Render.Preset) == "" {
		c.Render.Preset = defaultEncodePreset
	}
	if c.Render.BatchSize <= 0 {
		c.Render.BatchSize = defaultBatchSize
	}
}
