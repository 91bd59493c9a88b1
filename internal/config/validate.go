package config

import (
	"errors"
	"fmt"

	"cascii/internal/services"
)

// Validate ensures the configuration is usable. Ramp validation happens here,
// once, so per-frame conversion never revalidates.
func (c *Config) Validate() error {
	if err := c.validateRamp(); err != nil {
		return err
	}
	if err := c.validatePresets(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateRamp() error {
	ramp := c.Convert.Ramp
	if ramp == "" {
		return services.Wrap(services.ErrConfiguration, "config", "ramp", "convert.ramp must not be empty", nil)
	}
	for i := 0; i < len(ramp); i++ {
		b := ramp[i]
		if b < 0x20 || b > 0x7e {
			return services.Wrap(services.ErrConfiguration, "config", "ramp",
				fmt.Sprintf("convert.ramp byte %d (0x%02x) is outside printable ASCII; non-ASCII ramps corrupt output", i, b), nil)
		}
	}
	return nil
}

func (c *Config) validatePresets() error {
	if len(c.Presets) == 0 {
		return errors.New("at least one preset must be configured")
	}
	if _, ok := c.Presets[c.DefaultPreset]; !ok {
		return fmt.Errorf("default_preset %q is not defined under [presets]", c.DefaultPreset)
	}
	for name, preset := range c.Presets {
		if preset.Columns < 1 {
			return fmt.Errorf("presets.%s.columns must be at least 1", name)
		}
		if preset.FPS < 1 {
			return fmt.Errorf("presets.%s.fps must be at least 1", name)
		}
		if preset.FontRatio <= 0 {
			return fmt.Errorf("presets.%s.font_ratio must be positive", name)
		}
		if preset.Luminance < 0 || preset.Luminance > 255 {
			return fmt.Errorf("presets.%s.luminance must be between 0 and 255", name)
		}
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	return nil
}
