package config

// DefaultRamp orders printable ASCII from darkest to lightest; luminance below
// the threshold renders as the leading space.
const DefaultRamp = " .'`^,:;Il!i><~+_-?][}{1)(|/tfjrxnuvczXYUJCLQ0OZmwqpdbkhao*#MW&8%B@$"

const (
	defaultOutputDir     = "."
	defaultLogDir        = "~/.local/share/cascii/logs"
	defaultHistoryDB     = "~/.local/share/cascii/history.db"
	defaultLogFormat     = "console"
	defaultLogLevel      = "info"
	defaultFFmpegLog     = "error"
	defaultDefaultPreset = "default"
	defaultStartTime     = "0"
	defaultFontSizePx    = 16
	defaultCRF           = 23
	defaultEncodePreset  = "ultrafast"
	defaultBatchSize     = 100
)

// Default returns a Config populated with repository defaults. The preset
// values mirror the shipped quality tiers: default (400 columns at 30fps),
// small (80 columns for terminal-sized output), large (800 columns at 60fps).
func Default() Config {
	return Config{
		Paths: Paths{
			OutputDir: defaultOutputDir,
			LogDir:    defaultLogDir,
			HistoryDB: defaultHistoryDB,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		FFmpeg: FFmpeg{
			LogLevel: defaultFFmpegLog,
		},
		Convert: Convert{
			Ramp:         DefaultRamp,
			DefaultStart: defaultStartTime,
			DefaultEnd:   "",
		},
		Render: Render{
			FontSizePx: defaultFontSizePx,
			CRF:        defaultCRF,
			Preset:     defaultEncodePreset,
			BatchSize:  defaultBatchSize,
		},
		Presets: map[string]Preset{
			"default": {Columns: 400, FPS: 30, FontRatio: 0.7, Luminance: 20},
			"small":   {Columns: 80, FPS: 24, FontRatio: 0.44, Luminance: 20},
			"large":   {Columns: 800, FPS: 60, FontRatio: 0.7, Luminance: 20},
		},
		DefaultPreset: defaultDefaultPreset,
	}
}
