package cmd

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/resume-matcher/internal/logger"
	"github.com/spigell/resume-matcher/internal/profile"
	"github.com/spigell/resume-matcher/internal/ranking"
	"github.com/spigell/resume-matcher/internal/server"
)

const (
	app       = "resume-matcher"
	envPrefix = "RESUME_MATCHER"
)

type Config struct {
	Profile     string          `mapstructure:"profile"`
	ProfileFile string          `mapstructure:"profile-file"`
	Rank        *ranking.Config `mapstructure:"rank"`
	Server      *server.Config  `mapstructure:"server"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "resume-matcher scores how well a resume matches a job description",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is resume-matcher.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")
	rootCmd.PersistentFlags().String("profile", "", "scoring profile to use (default is standard)")
	rootCmd.PersistentFlags().String("profile-file", "", "a yaml or json file with a custom scoring profile")

	for _, name := range []string{"debug", "json", "profile", "profile-file"} {
		if err := viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name)); err != nil {
			log.Fatalf("binding %s flag: %v", name, err)
		}
	}
}

func initConfig() {
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		// An explicitly requested config must be readable.
		if err := viper.ReadInConfig(); err != nil {
			log.Fatal(err)
		}
		return
	}

	viper.AddConfigPath(".")
	viper.SetConfigName(app)
	viper.SetConfigType("yaml")

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	config := &Config{
		Rank:   &ranking.Config{},
		Server: &server.Config{},
	}
	if err := viper.Unmarshal(config); err != nil {
		return config, err
	}

	return config, nil
}

func newLogger() *zap.Logger {
	l, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}
	return l
}

// loadRegistry returns the built-in profiles plus the custom profile file, if any.
// A custom profile becomes the default unless a profile is named explicitly.
func loadRegistry(config *Config, logger *zap.Logger) (*profile.Registry, error) {
	registry, err := profile.NewBuiltinRegistry()
	if err != nil {
		return nil, err
	}

	if file := strings.TrimSpace(config.ProfileFile); file != "" {
		custom, err := profile.LoadFile(file, registry)
		if err != nil {
			return nil, err
		}
		if err := registry.Register(custom); err != nil {
			return nil, err
		}
		if err := registry.SetDefault(custom.Name); err != nil {
			return nil, err
		}
		logger.Info("custom profile loaded", zap.String("profile", custom.Name), zap.String("file", file))
	}

	if name := strings.TrimSpace(config.Profile); name != "" {
		if err := registry.SetDefault(name); err != nil {
			return nil, fmt.Errorf("selecting profile: %w", err)
		}
	}

	return registry, nil
}

// setup is shared by every command that scores documents.
func setup() (*Config, *profile.Registry, *zap.Logger) {
	logger := newLogger()

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	registry, err := loadRegistry(config, logger)
	if err != nil {
		logger.Fatal("loading profiles", zap.Error(err))
	}

	logger.Debug("starting", zap.String("version", version), zap.String("profile", registry.Default()))
	return config, registry, logger
}
