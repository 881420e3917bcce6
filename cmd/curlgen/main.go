package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"
	"github.com/studiowebux/curlgen/internal/cli"
	"github.com/studiowebux/curlgen/internal/codegen"
	"github.com/studiowebux/curlgen/internal/config"
	"github.com/studiowebux/curlgen/internal/converter"
	"github.com/studiowebux/curlgen/internal/highlight"
	"github.com/studiowebux/curlgen/internal/logging"
)

var (
	version = "0.1.0"

	settings config.Settings
	logger   *logging.Logger
)

func main() {
	err := rootCmd.Execute()
	if logger != nil {
		logger.Close()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "curlgen [file]",
	Short: "curlgen - generate PHP cURL code from HTTP request descriptions",
	Long: `curlgen turns an HTTP request description into ready-to-paste PHP cURL code.

Requests come from command-line flags, from .http/.yaml/.json definition files,
from HAR captures or from curl commands. File extension is optional -
'get-user' resolves to 'get-user.http' automatically.

Examples:
  curlgen get-user                                  # Generate code for a definition file
  curlgen run api.http -n "Create user" -e id=42    # Pick a request and set variables
  curlgen gen https://api.example.com -X POST --form name=ada
  curlgen list api.http                             # Show the requests of a file
  curlgen har2php capture.har -o snippets           # One PHP file per HAR entry
  curlgen openapi2php api.yaml --organize-by paths  # One PHP file per operation
  curl ... | curlgen curl2php                       # Convert a curl command`,
	Version:           version,
	Args:              cobra.MaximumNArgs(1),
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return cmd.Help()
		}
		return runFile(cmd, args[0])
	},
}

var runCmd = &cobra.Command{
	Use:   "run <file>",
	Short: "Generate code for a request of a definition file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFile(cmd, args[0])
	},
}

var genCmd = &cobra.Command{
	Use:   "gen <url>",
	Short: "Generate code for a request described by flags",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return cli.Generate(cli.GenerateOptions{
			URL:             args[0],
			Method:          genMethod,
			PayloadKind:     genPayloadKind,
			Data:            genData,
			Form:            genForm,
			Headers:         genHeaders,
			Timeout:         genTimeout,
			ConnectTimeout:  genConnectTimeout,
			DefaultTimeouts: genDefaultTimeouts,
			Output:          outputOptions(cmd),
			Logger:          logger,
		})
	},
}

var listCmd = &cobra.Command{
	Use:   "list <file>",
	Short: "List the requests of a definition file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return cli.List(cli.ListOptions{
			FilePath: args[0],
			Workdir:  flagWorkdir,
			Pattern:  listPattern,
			Stdout:   cmd.OutOrStdout(),
		})
	},
}

var har2phpCmd = &cobra.Command{
	Use:   "har2php <har-file>",
	Short: "Convert HAR file entries to PHP cURL files",
	Long: `Convert the entries of a HAR (HTTP Archive) capture to PHP cURL code,
one file per entry.

Use --filter to keep entries whose URL contains a substring, and --query to
select entries with a JMESPath expression over log.entries, e.g.
  --query "[?request.method=='POST']"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := outputOptions(cmd)
		mode, err := codegen.ParseDisplayMode(out.Display)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		_, err = converter.Har2Php(ctx, converter.Har2PhpOptions{
			HarFile:        args[0],
			OutputDir:      harOutputDir,
			ImportHeaders:  flagImportHeaders,
			Filter:         harFilter,
			Query:          harQuery,
			Display:        mode,
			Render:         codegen.RenderOptions{Style: out.Style, LineNumbers: out.LineNumbers},
			Timeout:        out.Timeout,
			ConnectTimeout: out.ConnectTimeout,
			Workers:        harWorkers,
			Logger:         logger,
			Stderr:         cmd.ErrOrStderr(),
		})
		return err
	},
}

var curl2phpCmd = &cobra.Command{
	Use:   "curl2php [curl command]",
	Short: "Convert a cURL command to PHP cURL code",
	Long: `Convert a cURL command to PHP cURL code.

You can pipe a cURL command from stdin or provide it as an argument.
Sensitive headers are replaced by {{Name}} placeholders unless
--import-headers is set.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var curlCommand string

		stat, _ := os.Stdin.Stat()
		if len(args) > 0 {
			curlCommand = strings.Join(args, " ")
		} else if stat != nil && (stat.Mode()&os.ModeCharDevice) == 0 {
			data, err := converter.ReadCurlFromStdin(os.Stdin)
			if err != nil {
				return err
			}
			curlCommand = data
		} else {
			return fmt.Errorf("no cURL command provided (pipe it or provide as argument)")
		}

		out := outputOptions(cmd)
		mode, err := codegen.ParseDisplayMode(out.Display)
		if err != nil {
			return err
		}

		return converter.Curl2Php(converter.Curl2PhpOptions{
			CurlCommand:    curlCommand,
			OutputFile:     curlOutputFile,
			ImportHeaders:  flagImportHeaders,
			Display:        mode,
			Render:         codegen.RenderOptions{Style: out.Style, LineNumbers: out.LineNumbers},
			Timeout:        out.Timeout,
			ConnectTimeout: out.ConnectTimeout,
			Logger:         logger,
			Stdout:         cmd.OutOrStdout(),
			Stderr:         cmd.ErrOrStderr(),
		})
	},
}

var openapi2phpCmd = &cobra.Command{
	Use:   "openapi2php <spec-file-or-url>",
	Short: "Convert OpenAPI specification to PHP cURL files",
	Long: `Convert OpenAPI/Swagger specifications to PHP cURL code, one file per
operation. Parameters become {{name}} placeholders.

Supports both local files and remote URLs.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := outputOptions(cmd)
		mode, err := codegen.ParseDisplayMode(out.Display)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		_, err = converter.Openapi2Php(ctx, converter.OpenAPI2PhpOptions{
			SpecPath:       args[0],
			OutputDir:      openapiOutputDir,
			OrganizeBy:     openapiOrganizeBy,
			BaseURL:        openapiBaseURL,
			Display:        mode,
			Render:         codegen.RenderOptions{Style: out.Style, LineNumbers: out.LineNumbers},
			Timeout:        out.Timeout,
			ConnectTimeout: out.ConnectTimeout,
			Logger:         logger,
			Stderr:         cmd.ErrOrStderr(),
		})
		return err
	},
}

var stylesCmd = &cobra.Command{
	Use:   "styles",
	Short: "List the highlight styles",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, name := range highlight.Styles() {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
		return nil
	},
}

// Shared flags
var (
	flagLogLevel       string
	flagDisplay        string
	flagStyle          string
	flagLineNumbers    bool
	flagTimeout        int
	flagConnectTimeout int
	flagOutput         string
	flagCopy           bool
	flagColor          bool
	flagWorkdir        string
	flagImportHeaders  bool
)

// Flags for root/run command
var (
	flagName      string
	flagExtraVars []string
	flagEnvFile   string
)

// Flags for gen
var (
	genMethod          string
	genPayloadKind     string
	genData            string
	genForm            []string
	genHeaders         []string
	genTimeout         int
	genConnectTimeout  int
	genDefaultTimeouts bool
)

var listPattern string

// Flags for har2php
var (
	harOutputDir string
	harFilter    string
	harQuery     string
	harWorkers   int
)

var curlOutputFile string

// Flags for openapi2php
var (
	openapiOutputDir  string
	openapiOrganizeBy string
	openapiBaseURL    string
)

func init() {
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level (debug/info/warn/error)")
	rootCmd.PersistentFlags().StringVarP(&flagDisplay, "display", "D", "", "Display mode (raw/html/highlight)")
	rootCmd.PersistentFlags().StringVar(&flagStyle, "style", "", "Highlight style (see 'curlgen styles')")
	rootCmd.PersistentFlags().BoolVar(&flagLineNumbers, "line-numbers", false, "Number lines in highlighted output")
	rootCmd.PersistentFlags().IntVar(&flagTimeout, "default-timeout", 0, "CURLOPT_TIMEOUT for requests that set none")
	rootCmd.PersistentFlags().IntVar(&flagConnectTimeout, "default-connect-timeout", 0, "CURLOPT_CONNECTTIMEOUT for requests that set none")
	rootCmd.PersistentFlags().StringVarP(&flagWorkdir, "workdir", "w", "", "Directory searched for definition files")

	// Output flags for commands that emit one snippet
	for _, c := range []*cobra.Command{rootCmd, runCmd, genCmd} {
		c.Flags().StringVarP(&flagOutput, "output", "o", "", "Write code to file (- for stdout)")
		c.Flags().BoolVarP(&flagCopy, "copy", "c", false, "Copy code to the clipboard")
		c.Flags().BoolVar(&flagColor, "color", false, "Highlight raw code on a terminal")
	}

	// Root command flags (same as run)
	for _, c := range []*cobra.Command{rootCmd, runCmd} {
		c.Flags().StringVarP(&flagName, "name", "n", "", "Request name or glob pattern")
		c.Flags().StringArrayVarP(&flagExtraVars, "extra-vars", "e", []string{}, "Set variable (key=value), can be repeated")
		c.Flags().StringVar(&flagEnvFile, "env-file", "", "Load environment variables from file")
	}

	// gen flags
	genCmd.Flags().StringVarP(&genMethod, "request", "X", "GET", "HTTP method")
	genCmd.Flags().StringVarP(&genPayloadKind, "payload-kind", "k", "", "Payload kind (URL-ENCODE/JSON/XML/...), inferred when empty")
	genCmd.Flags().StringVarP(&genData, "data", "d", "", "Request body")
	genCmd.Flags().StringArrayVarP(&genForm, "form", "f", []string{}, "Form field (key=value), can be repeated")
	genCmd.Flags().StringArrayVarP(&genHeaders, "header", "H", []string{}, "Header (\"Name: value\"), can be repeated")
	genCmd.Flags().IntVar(&genTimeout, "timeout", 0, "CURLOPT_TIMEOUT in seconds")
	genCmd.Flags().IntVar(&genConnectTimeout, "connect-timeout", 0, "CURLOPT_CONNECTTIMEOUT in seconds")
	genCmd.Flags().BoolVar(&genDefaultTimeouts, "default-timeouts", false,
		fmt.Sprintf("Use %ds timeout and %ds connect timeout when unset", codegen.DefaultTimeout, codegen.DefaultConnectTimeout))

	listCmd.Flags().StringVarP(&listPattern, "name", "n", "", "Only list requests matching this name or glob")

	// har2php flags
	har2phpCmd.Flags().StringVarP(&harOutputDir, "output", "o", "requests", "Output directory")
	har2phpCmd.Flags().StringVar(&harFilter, "filter", "", "Keep entries whose URL contains this string")
	har2phpCmd.Flags().StringVarP(&harQuery, "query", "q", "", "JMESPath expression selecting entries")
	har2phpCmd.Flags().IntVar(&harWorkers, "workers", 0, "Concurrent conversions (default: number of CPUs)")
	har2phpCmd.Flags().BoolVar(&flagImportHeaders, "import-headers", false, "Include sensitive headers")

	// curl2php flags
	curl2phpCmd.Flags().StringVarP(&curlOutputFile, "output", "o", "-", "Output file path (- for stdout, empty to derive from the URL)")
	curl2phpCmd.Flags().BoolVar(&flagImportHeaders, "import-headers", false, "Include sensitive headers")

	// openapi2php flags
	openapi2phpCmd.Flags().StringVarP(&openapiOutputDir, "output", "o", "requests", "Output directory")
	openapi2phpCmd.Flags().StringVar(&openapiOrganizeBy, "organize-by", converter.OrganizeByTags, "Organization strategy (tags/paths/flat)")
	openapi2phpCmd.Flags().StringVar(&openapiBaseURL, "base-url", "", "Base URL (default: first server of the spec)")

	// Add subcommands
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(genCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(har2phpCmd)
	rootCmd.AddCommand(curl2phpCmd)
	rootCmd.AddCommand(openapi2phpCmd)
	rootCmd.AddCommand(stylesCmd)
}

// setup initializes the config directory, loads settings and builds the logger
func setup(cmd *cobra.Command, args []string) error {
	if err := config.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize config: %w", err)
	}

	var err error
	settings, err = config.Load()
	if err != nil {
		return err
	}

	level := settings.Log.Level
	if flagLogLevel != "" {
		level = flagLogLevel
	}
	logger, err = logging.New(logging.Options{
		Level:      level,
		Console:    cmd.ErrOrStderr(),
		File:       settings.LogFilePath(),
		MaxSizeMB:  settings.Log.MaxSizeMB,
		MaxBackups: settings.Log.MaxBackups,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	logger.WithField("config", config.GetConfigFilePath()).Debug("settings loaded")
	return nil
}

// outputOptions merges flags over the loaded settings
func outputOptions(cmd *cobra.Command) cli.OutputOptions {
	out := cli.OutputOptions{
		Display:        settings.Display,
		Style:          settings.Style,
		LineNumbers:    flagLineNumbers,
		Timeout:        settings.Timeout,
		ConnectTimeout: settings.ConnectTimeout,
		File:           flagOutput,
		Copy:           settings.Copy,
		Color:          flagColor,
		Stdout:         cmd.OutOrStdout(),
		Stderr:         cmd.ErrOrStderr(),
	}

	flags := cmd.Flags()
	if flags.Changed("display") {
		out.Display = flagDisplay
	}
	if flags.Changed("style") {
		out.Style = flagStyle
	}
	if flags.Changed("default-timeout") {
		out.Timeout = flagTimeout
	}
	if flags.Changed("default-connect-timeout") {
		out.ConnectTimeout = flagConnectTimeout
	}
	if flags.Changed("copy") {
		out.Copy = flagCopy
	}
	if out.Display == "" {
		out.Display = codegen.DisplayRaw.String()
	}
	return out
}

func runFile(cmd *cobra.Command, filePath string) error {
	return cli.Run(cli.RunOptions{
		FilePath:    filePath,
		Name:        flagName,
		Workdir:     flagWorkdir,
		ExtraVars:   flagExtraVars,
		EnvFile:     flagEnvFile,
		Interactive: cli.IsInteractive(),
		Output:      outputOptions(cmd),
		Logger:      logger,
	})
}
