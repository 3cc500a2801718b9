package main

import (
	"strings"

	"github.com/nnikolash/go-shstate"
	"github.com/nnikolash/go-shstate/utils"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

type options struct {
	v *viper.Viper
}

func newRootCmd() *cobra.Command {
	o := &options{v: viper.New()}

	cmd := &cobra.Command{
		Use:           "shstate-demo",
		Short:         "Shared state examples on an in-memory widget toolkit",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return o.readConfigFile()
		},
	}

	flags := cmd.PersistentFlags()
	flags.String("config", "", "config file (yaml, json or toml)")
	flags.String("discipline", "blocking", "state access discipline: exclusive, blocking or cooperative")
	flags.String("action-signal", "target", "where actions deliver state changes: target or main")
	flags.String("log-level", "info", "log level")

	utils.Must(o.v.BindPFlag("config", flags.Lookup("config")))
	utils.Must(o.v.BindPFlag("store.discipline", flags.Lookup("discipline")))
	utils.Must(o.v.BindPFlag("store.action_signal", flags.Lookup("action-signal")))
	utils.Must(o.v.BindPFlag("log.level", flags.Lookup("log-level")))

	o.v.SetEnvPrefix("SHSTATE")
	o.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	o.v.AutomaticEnv()

	cmd.AddCommand(newCounterCmd(o), newServeCmd(o))

	return cmd
}

func (o *options) readConfigFile() error {
	path := o.v.GetString("config")
	if path == "" {
		return nil
	}

	o.v.SetConfigFile(path)
	if err := o.v.ReadInConfig(); err != nil {
		return errors.Wrapf(err, "failed to read config file %v", path)
	}

	return nil
}

type demoConfig struct {
	Store shstate.Config `mapstructure:"store"`
}

func (o *options) storeConfig() (shstate.Config, error) {
	cfg := demoConfig{Store: shstate.DefaultConfig()}

	if err := o.v.Unmarshal(&cfg, viper.DecodeHook(shstate.ConfigDecodeHook())); err != nil {
		return shstate.Config{}, errors.Wrap(err, "invalid store config")
	}

	return cfg.Store, nil
}

func (o *options) logger() (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(o.v.GetString("log.level"))
	if err != nil {
		return nil, errors.Wrap(err, "invalid log level")
	}

	cfg := zap.NewDevelopmentConfig()
	cfg.Level = level

	return cfg.Build()
}

// newStore creates the store of the demo application.
func (o *options) newStore(host shstate.Host, zl *zap.Logger) (*shstate.Store, error) {
	cfg, err := o.storeConfig()
	if err != nil {
		return nil, err
	}

	return shstate.New(host,
		shstate.WithConfig(cfg),
		shstate.WithLogger(utils.NewZapLogger(zl)),
	), nil
}
