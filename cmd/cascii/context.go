package main

import (
	"log/slog"
	"strings"
	"sync"

	"cascii/internal/config"
	"cascii/internal/history"
	"cascii/internal/logging"
	"cascii/internal/pipeline"
	"cascii/internal/services/ffmpeg"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	c.loggerOnce.Do(func() {
		logger, logErr := logging.New(logging.Options{
			Level:  cfg.Logging.Level,
			Format: cfg.Logging.Format,
		})
		if logErr != nil {
			logger = logging.NewNop()
		}
		c.logger = logger
	})
	return c.logger, nil
}

func (c *commandContext) ffmpegClient() (*ffmpeg.CLI, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return ffmpeg.NewCLI(
		ffmpeg.WithBinary(cfg.FFmpegBinary()),
		ffmpeg.WithLogLevel(cfg.FFmpeg.LogLevel),
	), nil
}

// runner wires a pipeline runner with logging, history and an optional
// progress observer. The history store is best effort; a failure to open it
// degrades to running without one.
func (c *commandContext) runner(progress pipeline.ProgressFunc) (*pipeline.Runner, func(), error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, nil, err
	}
	client, err := c.ffmpegClient()
	if err != nil {
		return nil, nil, err
	}

	opts := []pipeline.Option{pipeline.WithLogger(logger)}
	cleanup := func() {}
	if store, storeErr := history.Open(cfg.Paths.HistoryDB); storeErr == nil {
		opts = append(opts, pipeline.WithRecorder(store))
		cleanup = func() { _ = store.Close() }
	} else {
		logger.Warn("history store unavailable", logging.Error(storeErr))
	}
	if progress != nil {
		opts = append(opts, pipeline.WithProgress(progress))
	}
	return pipeline.New(client, opts...), cleanup, nil
}
