package config_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/okian/postpulse/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()

		convey.Convey("When loading config with defaults only", func() {
			clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.QueueSize, convey.ShouldEqual, 64)
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 1)
				convey.So(cfg.LLMAPIURL, convey.ShouldEqual, "https://api.openai.com/v1")
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("POSTPULSE_ADDR", ":8080")
			_ = os.Setenv("POSTPULSE_QUEUE_SIZE", "16")
			_ = os.Setenv("POSTPULSE_WORKER_COUNT", "2")
			_ = os.Setenv("POSTPULSE_TIMEZONE", "UTC")
			_ = os.Setenv("POSTPULSE_LLM_API_KEY", "sk-test")
			_ = os.Setenv("POSTPULSE_LLM_TEMPERATURE", "0.2")
			_ = os.Setenv("POSTPULSE_LOG_FORMAT", "json")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.QueueSize, convey.ShouldEqual, 16)
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 2)
				convey.So(cfg.Timezone, convey.ShouldEqual, "UTC")
				convey.So(cfg.LLMAPIKey, convey.ShouldEqual, "sk-test")
				convey.So(cfg.LLMEnabled(), convey.ShouldBeTrue)
				convey.So(cfg.LLMTemperature, convey.ShouldEqual, 0.2)
				convey.So(cfg.LogFormat, convey.ShouldEqual, "json")
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			yamlContent := `
addr: ":9090"
queue_size: 128
status_history: 50
llm_model: "gpt-4o"
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("POSTPULSE_CONFIG", tmpFile)
			_ = os.Setenv("POSTPULSE_ADDR", ":8080")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")    // env
				convey.So(cfg.QueueSize, convey.ShouldEqual, 128)   // file
				convey.So(cfg.StatusHistory, convey.ShouldEqual, 50) // file
				convey.So(cfg.LLMModel, convey.ShouldEqual, "gpt-4o")
				convey.So(cfg.DedupeSize, convey.ShouldEqual, 10_000) // default
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			tmpFile := createTempConfigFile(`invalid: yaml: content: [`)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("POSTPULSE_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			_ = os.Setenv("POSTPULSE_CONFIG", "/non/existent/file.yaml")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with empty addr", func() {
			_ = os.Setenv("POSTPULSE_ADDR", "")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, "addr must not be empty")
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with an unknown timezone", func() {
			_ = os.Setenv("POSTPULSE_TIMEZONE", "Nowhere/Special")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with invalid numeric environment variables", func() {
			_ = os.Setenv("POSTPULSE_QUEUE_SIZE", "invalid")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

// Helper functions.

func clearConfigEnvVars() {
	envVars := []string{
		"POSTPULSE_CONFIG",
		"POSTPULSE_ADDR",
		"POSTPULSE_QUEUE_SIZE",
		"POSTPULSE_WORKER_COUNT",
		"POSTPULSE_TIMEZONE",
		"POSTPULSE_LLM_API_KEY",
		"POSTPULSE_LLM_TEMPERATURE",
		"POSTPULSE_LOG_FORMAT",
	}
	for _, envVar := range envVars {
		_ = os.Unsetenv(envVar)
	}
}

func createTempConfigFile(content string) string {
	tmpFile, err := os.CreateTemp("", "postpulse-config-*.yaml")
	if err != nil {
		panic(err)
	}

	if _, err := tmpFile.WriteString(content); err != nil {
		panic(err)
	}

	if err := tmpFile.Close(); err != nil {
		panic(err)
	}

	return tmpFile.Name()
}
