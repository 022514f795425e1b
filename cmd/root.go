package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/alpkeskin/gotoon"
	"github.com/pders01/macrotools/internal/config"
	"github.com/pders01/macrotools/internal/logs"
	"github.com/pders01/macrotools/internal/store"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	folder  string
	prefix  string

	logger    = logs.Discard()
	logCloser io.Closer
	// stdin is read by commands that take macro text or a confirmation
	stdin io.Reader = os.Stdin
)

var rootCmd = &cobra.Command{
	Use:   "macro",
	Short: "Record, edit and replay script macros with full undo history",
	Long: `macro keeps script macros as plain text files in a folder and lets you
record them line by line, edit them, and step back and forth through every
version with undo and redo.

The file on disk is always the source of truth. Edits made by other
programs can be followed live from the shell.`,
	SilenceUsage: true,
}

func Execute() {
	err := rootCmd.Execute()
	if logCloser != nil {
		logCloser.Close()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/macrotools/config.toml)")
	rootCmd.PersistentFlags().StringVar(&folder, "folder", "", "macro folder (overrides macros.folder)")
	rootCmd.PersistentFlags().StringVar(&prefix, "prefix", "", "macro file name prefix (overrides macros.prefix)")

	viper.BindPFlag("macros.folder", rootCmd.PersistentFlags().Lookup("folder"))
	viper.BindPFlag("macros.prefix", rootCmd.PersistentFlags().Lookup("prefix"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(config.Dir())
		viper.SetConfigType("toml")
		viper.SetConfigName("config")
	}

	viper.SetEnvPrefix("MACROTOOLS")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	config.SetDefaults(viper.GetViper())

	configErr := viper.ReadInConfig()

	l, closer, err := logs.Logger(os.Stderr, config.GetLogLevel(), config.GetLogFile())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	} else {
		logger, logCloser = l, closer
		slog.SetDefault(logger)
	}

	if configErr == nil {
		logger.Debug("using config file", "path", viper.ConfigFileUsed())
	} else if cfgFile != "" {
		fmt.Fprintf(os.Stderr, "Warning: failed to read config %s: %v\n", cfgFile, configErr)
	}
}

// configPath returns the config file written by init and folder --set
func configPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	return filepath.Join(config.Dir(), "config.toml")
}

// openStore returns the store for the configured macro folder
func openStore() *store.Store {
	return store.NewOS(config.GetMacroFolder(), config.GetMacroPrefix())
}

// requireMacro returns the store after checking the named macro exists
func requireMacro(name string) (*store.Store, error) {
	s := openStore()
	if err := store.ValidateName(name); err != nil {
		return nil, err
	}
	if !s.Exists(name) {
		return nil, fmt.Errorf("%w: %s", store.ErrNotFound, name)
	}
	return s, nil
}

// printStructured writes v as JSON or toon when one of the flags is set and
// reports whether it did
func printStructured(v any, asJSON, asToon bool) (bool, error) {
	switch {
	case asJSON:
		output, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return true, fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Println(string(output))
		return true, nil
	case asToon:
		output, err := gotoon.Encode(v)
		if err != nil {
			return true, fmt.Errorf("failed to encode Toon: %w", err)
		}
		fmt.Println(output)
		return true, nil
	}
	return false, nil
}
