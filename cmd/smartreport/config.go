package main

import (
	"errors"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// config is the resolved CLI configuration. Flags win over SMARTREPORT_*
// environment variables, which win over .smartreport.yaml.
type config struct {
	StoreDir string
	Sheet    string
	LogLevel string
	LogFile  string
}

func loadConfig(flags *pflag.FlagSet) (*config, error) {
	v := viper.New()
	v.SetDefault("store-dir", ".smartreport/templates")
	v.SetDefault("log-level", "warn")
	v.SetConfigName(".smartreport") // .yaml is implicit
	v.SetEnvPrefix("SMARTREPORT")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if override := os.Getenv("SMARTREPORT_CONFIG_PATH"); override != "" {
		v.AddConfigPath(override)
	}
	v.AddConfigPath("./")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}
	if err := v.BindPFlags(flags); err != nil {
		return nil, err
	}

	return &config{
		StoreDir: v.GetString("store-dir"),
		Sheet:    v.GetString("sheet"),
		LogLevel: v.GetString("log-level"),
		LogFile:  v.GetString("log-file"),
	}, nil
}
