package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/go-logr/logr"

	pooppdf "github.com/alnah/go-pooppdf"
	"github.com/alnah/go-pooppdf/internal/config"
	"github.com/alnah/go-pooppdf/internal/fileutil"
	"github.com/alnah/go-pooppdf/internal/hints"
	"github.com/alnah/go-pooppdf/internal/logsink"
)

// Sentinel errors for CLI operations.
var (
	ErrInvalidTimeout = errors.New("invalid timeout")
	ErrTooManyArgs    = errors.New("expected a single url")
	ErrOpenLog        = errors.New("failed to open log file")
)

// captureParams is everything one capture needs, after merging
// flags > environment > config file > defaults.
type captureParams struct {
	req       pooppdf.CaptureRequest
	engine    string
	engineCfg pooppdf.EngineConfig
	timeout   time.Duration
	logPath   string // Empty = logging disabled
	verbose   bool
}

// run executes the CLI and returns the process exit code.
func run(ctx context.Context, args []string, env *Environment) int {
	flags, positional, err := parseFlags(args)
	if err != nil {
		fmt.Fprintf(env.Stderr, "error: %v\n\n", err)
		printUsage(env.Stderr)
		return ExitFailure
	}

	if flags.help {
		printUsage(env.Stdout)
		return ExitSuccess
	}
	if flags.version {
		fmt.Fprintf(env.Stdout, "pooppdf %s\n", Version)
		return ExitSuccess
	}

	if len(positional) == 0 {
		fmt.Fprintln(env.Stderr, pooppdf.ErrNoURL)
		return ExitFailure
	}
	if len(positional) > 1 {
		fmt.Fprintf(env.Stderr, "error: %v, got %d arguments\n", ErrTooManyArgs, len(positional))
		return ExitFailure
	}

	warnUnknownEnvVars(env.Stderr)

	params, err := prepareCapture(flags, positional[0])
	if err == nil {
		err = runCapture(ctx, params, env)
	}
	if err != nil {
		// The selector may come from the config file rather than -s
		selector := flags.selector
		if params != nil {
			selector = params.req.Selector
		}
		fmt.Fprintf(env.Stderr, "error: %v%s\n", err, hintFor(err, flags, selector))
		return exitCodeFor(err)
	}
	return ExitSuccess
}

// prepareCapture loads the environment and config file and merges them
// with the flags.
func prepareCapture(flags *cliFlags, pageURL string) (*captureParams, error) {
	envCfg := loadEnvConfig()

	cfg, err := loadConfig(flags.config, envCfg)
	if err != nil {
		return nil, err
	}

	return resolveParams(flags, pageURL, cfg, envCfg)
}

// runCapture sets up logging and runs one capture.
func runCapture(ctx context.Context, params *captureParams, env *Environment) error {
	log, closeLog, err := newLogger(params, env.Stderr)
	if err != nil {
		return err
	}
	defer closeLog()

	engine, err := env.NewEngine(params.engine, params.engineCfg)
	if err != nil {
		return err
	}

	pipeline := pooppdf.NewPipeline(
		pooppdf.WithEngine(engine),
		pooppdf.WithTimeout(params.timeout),
		pooppdf.WithLogger(log),
	)

	_, err = pipeline.Run(ctx, params.req)
	return err
}

// loadConfig loads the config named by --config, else POOPPDF_CONFIG.
// No config at all yields the defaults.
func loadConfig(name string, envCfg *envConfig) (*config.Config, error) {
	if name == "" {
		name = envCfg.ConfigPath
	}
	if name == "" {
		return config.DefaultConfig(), nil
	}

	cfg, err := config.LoadConfig(name)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

// resolveParams merges flags, environment and config file into captureParams.
func resolveParams(flags *cliFlags, pageURL string, cfg *config.Config, envCfg *envConfig) (*captureParams, error) {
	p := &captureParams{
		req: pooppdf.CaptureRequest{
			URL:             pageURL,
			OutputPath:      cfg.Output.Path,
			Selector:        cfg.Wait.Selector,
			Title:           cfg.Header.Title,
			ShowPageNumbers: cfg.Footer.PageNumbers,
		},
		engine: cfg.Browser.Engine,
		engineCfg: pooppdf.EngineConfig{
			Bin:       cfg.Browser.Bin,
			NoSandbox: cfg.Browser.NoSandbox,
		},
		timeout: pooppdf.DefaultTimeout,
		verbose: flags.verbose,
	}

	if flags.isSet(flagSelector) {
		p.req.Selector = flags.selector
	}
	if flags.isSet(flagPath) {
		p.req.OutputPath = flags.path
	}
	if flags.isSet(flagTitle) {
		p.req.Title = flags.title
	}
	if flags.isSet(flagPageNumbers) {
		p.req.ShowPageNumbers = flags.pageNumbers
	}

	switch {
	case flags.isSet(flagLogging):
		p.logPath = flags.logPath
	case cfg.Logging.Enabled:
		p.logPath = cfg.Logging.Path
		if p.logPath == "" {
			p.logPath = defaultLogPath
		}
	}

	if envCfg.Engine != "" {
		p.engine = envCfg.Engine
	}
	if flags.isSet(flagEngine) {
		p.engine = flags.engine
	}

	timeout, err := resolveTimeout(flags, cfg, envCfg)
	if err != nil {
		return nil, err
	}
	if timeout > 0 {
		p.timeout = timeout
	}

	return p, nil
}

// resolveTimeout returns the first timeout set by flag, environment or config.
// Zero means none was set.
func resolveTimeout(flags *cliFlags, cfg *config.Config, envCfg *envConfig) (time.Duration, error) {
	if flags.isSet(flagTimeout) {
		d, err := time.ParseDuration(flags.timeout)
		if err != nil {
			return 0, fmt.Errorf("%w: %v", ErrInvalidTimeout, err)
		}
		if d <= 0 {
			return 0, fmt.Errorf("%w: must be positive, got %s", ErrInvalidTimeout, d)
		}
		return d, nil
	}
	if envCfg.Timeout > 0 {
		return envCfg.Timeout, nil
	}
	return cfg.TimeoutDuration()
}

// newLogger builds the logger for one run: an appending log file when enabled,
// stderr when verbose, logr.Discard when neither. The returned func closes
// the log file.
func newLogger(p *captureParams, stderr io.Writer) (logr.Logger, func(), error) {
	var outputs []logsink.Output
	closeLog := func() {}

	if p.logPath != "" {
		out, closer, err := logsink.OpenFile(p.logPath)
		if err != nil {
			return logr.Discard(), closeLog, fmt.Errorf("%w: %v", ErrOpenLog, err)
		}
		outputs = append(outputs, out)
		closeLog = func() { _ = closer.Close() }
	}

	verbosity := 0
	if p.verbose {
		verbosity = 1
		if f, ok := stderr.(*os.File); ok {
			outputs = append(outputs, logsink.Console(f))
		} else {
			outputs = append(outputs, logsink.Output{W: stderr})
		}
	}

	if len(outputs) == 0 {
		return logr.Discard(), closeLog, nil
	}
	return logsink.New(verbosity, outputs...), closeLog, nil
}

// hintFor returns an actionable hint for err, or "".
// selector is the one the capture waited for, whatever its source.
func hintFor(err error, flags *cliFlags, selector string) string {
	switch {
	case errors.Is(err, pooppdf.ErrBrowserLaunch):
		return hints.ForBrowserLaunch()
	case errors.Is(err, pooppdf.ErrNavigation):
		return hints.ForNavigation()
	case errors.Is(err, pooppdf.ErrReadinessTimeout):
		return hints.ForTimeout(selector)
	case errors.Is(err, config.ErrConfigNotFound):
		name := flags.config
		if name == "" || fileutil.IsFilePath(name) {
			return hints.ForConfigNotFound(nil)
		}
		return hints.ForConfigNotFound(config.SearchPaths(name))
	case errors.Is(err, pooppdf.ErrWritePDF):
		// Upload errors name the s3:// location
		if strings.Contains(err.Error(), "s3://") {
			return hints.ForS3()
		}
		return hints.ForOutputDirectory()
	case errors.Is(err, ErrOpenLog):
		return hints.ForOutputDirectory()
	}
	return ""
}
