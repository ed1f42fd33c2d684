package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/YuanDdQiao/tungsten-replicator/pkg/config"
	"github.com/YuanDdQiao/tungsten-replicator/pkg/core"
)

var (
	configFile string
	debug      bool
	iAmSure    bool
)

var rootCmd = &cobra.Command{
	Use:   "tungsten",
	Short: "Manage a Tungsten replication cluster",
}

var uninstallCmd = &cobra.Command{
	Use:   "uninstall",
	Short: "Uninstall Tungsten on each host",
	Run: func(cmd *cobra.Command, args []string) {
		logger := newLogger()
		if !iAmSure {
			logger.Errorf("%v", core.ErrConfirmationRequired)
			os.Exit(1)
		}
		conf, err := config.Parse(configFile)
		if err != nil {
			logger.Errorf("fail to parse config, error: %v", err)
			os.Exit(1)
		}

		err = core.Uninstall(conf, iAmSure, logger)
		if err != nil {
			logger.Errorf("uninstall fail, error: %v", err)
			os.Exit(1)
		}
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check that each host carries an installation",
	Run: func(cmd *cobra.Command, args []string) {
		logger := newLogger()
		conf, err := config.Parse(configFile)
		if err != nil {
			logger.Errorf("fail to parse config, error: %v", err)
			os.Exit(1)
		}

		err = core.ValidateConfig(conf, logger)
		if err != nil {
			logger.Errorf("validate fail, error: %v", err)
			os.Exit(1)
		}
	},
}

func newLogger() *logrus.Logger {
	logger := logrus.New()
	if debug {
		logger.SetLevel(logrus.DebugLevel)
	}
	return logger
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "f", "cluster.yaml", "config file")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "print debug messages")
	uninstallCmd.Flags().BoolVar(&iAmSure, "i-am-sure", false, "confirm that the installation on every host may be deleted")
	rootCmd.AddCommand(uninstallCmd)
	rootCmd.AddCommand(validateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
