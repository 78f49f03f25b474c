/*
Copyright © 2024 paul <paul@denknerd.org>
*/

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"reflect"
	"time"

	"github.com/fatih/structs"
	"github.com/mitchellh/go-homedir"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"
)

const defaultConfigPath = "~/.config/confluence-tree.yaml"

var (
	// Store the result of binding cobra flags
	Config       string
	ConfigActual string
	Debug        bool

	// Command to run to retrieve API Personal Access Token
	AuthTokenCmd []string

	AuthUsername       string
	ConfluenceInstance string
	BaseURL            string

	WithVCR        bool
	Concurrency    int
	ContinueOnFail bool
	Nested         bool
	OutputFormat   string
	ShowProgress   bool
	RateLimit      float64
	RateBurst      int

	ParsedConfig YamlConfig

	Logger = zerolog.Nop()
)

// Build the cobra command that handles our command line tool.
var rootCmd = &cobra.Command{
	Use:   "confluence-tree",
	Short: "Explore the page hierarchy of a Confluence space",
	Long: `
Confluence Cloud only hands out a space's pages one level at a time.  This tool walks the children
endpoints for you and prints the whole tree, or any part of it, as JSON, YAML, or an outline.
`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := initializeConfig(cmd); err != nil {
			return fmt.Errorf("confluence-tree: failed to initialise config: %w", err)
		}

		Logger = newLogger(Debug)

		if err := checkOutputFormat(OutputFormat); err != nil {
			return err
		}
		return nil
	},
}

func init() {
	// Define cobra flags, the default value has the lowest (least significant) precedence
	rootCmd.PersistentFlags().StringVar(&Config, "config", "", "config file location (default: "+defaultConfigPath+", respects CONFLUENCE_TREE_CONFIG)")
	rootCmd.PersistentFlags().BoolVar(&Debug, "debug", false, "display debug output")
	rootCmd.PersistentFlags().StringSliceVar(&AuthTokenCmd, "auth-token-cmd", []string{}, "shell command to retrieve Atlassian auth token (default: $CONFLUENCE_API_TOKEN)")
	rootCmd.PersistentFlags().StringVar(&AuthUsername, "auth-username", "", "your Atlassian username")
	rootCmd.PersistentFlags().StringVar(&ConfluenceInstance, "confluence-instance", "", "your Atlassian ORG name, e.g. ORG in ORG.atlassian.net")
	rootCmd.PersistentFlags().StringVar(&BaseURL, "base-url", "", "wiki base URL, overrides --confluence-instance, e.g. https://ORG.atlassian.net/wiki")
	rootCmd.PersistentFlags().BoolVar(&WithVCR, "with-vcr", false, "use go-vcr to cache responses")
	rootCmd.PersistentFlags().IntVar(&Concurrency, "concurrency", 8, "maximum number of child listings in flight")
	rootCmd.PersistentFlags().BoolVar(&ContinueOnFail, "continue-on-fail", false, "emit an error record for a failed item instead of stopping")
	rootCmd.PersistentFlags().BoolVar(&Nested, "nested", false, "emit only root pages, each carrying its subtree")
	rootCmd.PersistentFlags().StringVarP(&OutputFormat, "output", "o", "json", "output format: json, yaml or tree")
	rootCmd.PersistentFlags().BoolVar(&ShowProgress, "progress", true, "show a progress bar on stderr")
	rootCmd.PersistentFlags().Float64Var(&RateLimit, "rate-limit", 0, "maximum requests per second against Confluence (0: unlimited)")
	rootCmd.PersistentFlags().IntVar(&RateBurst, "rate-burst", 1, "requests allowed to burst past --rate-limit")
}

func newLogger(debug bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}

	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(level).
		With().
		Timestamp().
		Logger()
}

// resolveConfigPath picks --config, then $CONFLUENCE_TREE_CONFIG, then the default.  explicit
// reports whether the user asked for a particular file.
func resolveConfigPath(flagValue string) (path string, explicit bool, err error) {
	path, explicit = flagValue, true
	if path == "" {
		path = os.Getenv("CONFLUENCE_TREE_CONFIG")
	}
	if path == "" {
		path, explicit = defaultConfigPath, false
	}

	expanded, err := homedir.Expand(path)
	if err != nil {
		return "", false, fmt.Errorf("confluence-tree: unable to expand homedir: %w", err)
	}
	return expanded, explicit, nil
}

func initializeConfig(cmd *cobra.Command) error {
	config, explicit, err := resolveConfigPath(Config)
	if err != nil {
		return err
	}
	ConfigActual = config

	if _, err := os.Stat(ConfigActual); errors.Is(err, os.ErrNotExist) {
		if !explicit {
			// running without a config file is fine, flags and env will do.
			return nil
		}
		return fmt.Errorf("confluence-tree: specified config file %s does not exist, override with --config: %w", ConfigActual, err)
	}

	yamlFile, err := os.ReadFile(ConfigActual)
	if err != nil {
		return fmt.Errorf("confluence-tree: error reading config file: %w", err)
	}

	parsed, err := parseConfig(yamlFile)
	if err != nil {
		return err
	}
	ParsedConfig = parsed

	if err := bindFlags(cmd, ParsedConfig); err != nil {
		return fmt.Errorf("confluence-tree: failed to bind flags: %w", err)
	}

	return nil
}

type YamlConfig struct {
	WithVCR        *bool    `yaml:"with-vcr"`
	ContinueOnFail *bool    `yaml:"continue-on-fail"`
	Nested         *bool    `yaml:"nested"`
	Progress       *bool    `yaml:"progress"`
	WithBody       *bool    `yaml:"with-body"`
	Prune          *bool    `yaml:"prune"`
	Concurrency    *int     `yaml:"concurrency"`
	Workers        *int     `yaml:"workers"`
	RateLimit      *float64 `yaml:"rate-limit"`
	RateBurst      *int     `yaml:"rate-burst"`

	BaseURL            string   `yaml:"base-url"`
	ConfluenceInstance string   `yaml:"confluence-instance"`
	AuthUsername       string   `yaml:"auth-username"`
	AuthTokenCmd       []string `yaml:"auth-token-cmd"`
	Output             string   `yaml:"output"`
	StorePath          string   `yaml:"store"`
}

func parseConfig(yamlFile []byte) (YamlConfig, error) {
	var parsed YamlConfig
	// bark if a user sets a key we don't recognise
	if err := yaml.UnmarshalStrict(yamlFile, &parsed); err != nil {
		return YamlConfig{}, fmt.Errorf("confluence-tree: issue parsing config file: %w", err)
	}
	return parsed, nil
}

// bindFlags copies every config value onto the flag of the same name, unless that flag was set on
// the command line.
func bindFlags(cmd *cobra.Command, v YamlConfig) error {
	for _, field := range structs.Fields(v) {
		key := field.Tag("yaml")
		if key == "" {
			return fmt.Errorf("confluence-tree: could not retrieve struct tag 'yaml'")
		}
		if flag := cmd.Flag(key); flag == nil {
			// e.g. `list spaces` has no --store, but the config file may well set it.
			continue
		}
		if cmd.Flags().Changed(key) {
			continue
		}

		switch field.Kind() {
		case reflect.Ptr:
			ptr := reflect.ValueOf(field.Value())
			if ptr.IsNil() {
				continue
			}
			if err := cmd.Flags().Set(key, fmt.Sprintf("%v", ptr.Elem().Interface())); err != nil {
				return fmt.Errorf("confluence-tree: bad value for %s: %w", key, err)
			}

		case reflect.String:
			s, ok := field.Value().(string)
			if !ok {
				return fmt.Errorf("confluence-tree: found unrecognised field: %+v", field)
			}
			if s != "" {
				if err := cmd.Flags().Set(key, s); err != nil {
					return fmt.Errorf("confluence-tree: bad value for %s: %w", key, err)
				}
			}

		case reflect.Slice:
			ss, ok := field.Value().([]string)
			if !ok {
				return fmt.Errorf("confluence-tree: found unrecognised field: %+v", field)
			}
			for _, s := range ss {
				// repeatedly calling Set() appends to the slice
				if err := cmd.Flags().Set(key, s); err != nil {
					return fmt.Errorf("confluence-tree: bad value for %s: %w", key, err)
				}
			}

		default:
			return fmt.Errorf("confluence-tree: found unrecognised field: %+v", field)
		}
	}

	return nil
}

// ExecuteContext adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func ExecuteContext(ctx context.Context) error {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		return fmt.Errorf("confluence-tree: execution error: %w", err)
	}

	return nil
}
