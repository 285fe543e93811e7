package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/psychometrician/internal/config"
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
				convey.So(cfg.ItemQuota, convey.ShouldEqual, 10)
				convey.So(cfg.ReplayCacheSize, convey.ShouldEqual, 256)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("PSYM_ADDR", ":8080")
			_ = os.Setenv("PSYM_ITEM_QUOTA", "5")
			_ = os.Setenv("PSYM_INITIAL_ABILITY", "0.25")
			_ = os.Setenv("PSYM_INVERTED_DOMAINS", "fatigue,attention")
			_ = os.Setenv("PSYM_TRACING_ENABLED", "true")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.ItemQuota, convey.ShouldEqual, 5)
				convey.So(cfg.InitialAbility, convey.ShouldEqual, 0.25)
				convey.So(cfg.InvertedDomains, convey.ShouldResemble, []string{"fatigue", "attention"})
				convey.So(cfg.TracingEnabled, convey.ShouldBeTrue)
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			tmpFile := createTempConfigFile(t, `
addr: ":9090"
bank_store: sqlite
sqlite_path: /tmp/bank.db
item_quota: 12
domain_thresholds:
  stress:
    moderate: 0.4
    high: 0.8
negation_markers: ["never", "not"]
`)
			_ = os.Setenv("PSYM_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from YAML file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.BankStore, convey.ShouldEqual, config.StoreSQLite)
				convey.So(cfg.ItemQuota, convey.ShouldEqual, 12)
				convey.So(cfg.DomainThresholds["stress"], convey.ShouldResemble, config.Thresholds{Moderate: 0.4, High: 0.8})
				convey.So(cfg.NegationMarkers, convey.ShouldResemble, []string{"never", "not"})
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			tmpFile := createTempConfigFile(t, "addr: \":9090\"\nitem_quota: 12\n")
			_ = os.Setenv("PSYM_CONFIG", tmpFile)
			_ = os.Setenv("PSYM_ITEM_QUOTA", "3")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.ItemQuota, convey.ShouldEqual, 3)
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			_ = os.Setenv("PSYM_CONFIG", createTempConfigFile(t, `invalid: yaml: content: [`))
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			_ = os.Setenv("PSYM_CONFIG", "/non/existent/file.yaml")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with empty addr", func() {
			_ = os.Setenv("PSYM_ADDR", "")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "addr must not be empty")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with invalid numeric environment variables", func() {
			_ = os.Setenv("PSYM_ITEM_QUOTA", "not_a_number")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When thresholds from env are out of order", func() {
			_ = os.Setenv("PSYM_MODERATE_THRESHOLD", "0.9")
			defer clearConfigEnvVars()

			_, err := config.Load(ctx)

			convey.Convey("Then validation rejects them", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})
	})
}

func createTempConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func clearConfigEnvVars() {
	for _, name := range []string{
		"PSYM_CONFIG", "PSYM_ADDR", "PSYM_ITEM_QUOTA", "PSYM_INITIAL_ABILITY",
		"PSYM_INVERTED_DOMAINS", "PSYM_TRACING_ENABLED", "PSYM_MODERATE_THRESHOLD",
	} {
		_ = os.Unsetenv(name)
	}
}
