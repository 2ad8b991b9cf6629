// Command directory runs and administers the employee directory: the
// HTTP/gRPC service, record maintenance from the shell, a terminal UI and
// a tail of the change event stream.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gartstein/staffdir/internal/directory/config"
	"github.com/gartstein/staffdir/internal/directory/controller"
	e "github.com/gartstein/staffdir/internal/directory/errors"
	"github.com/gartstein/staffdir/internal/directory/events"
	"github.com/gartstein/staffdir/internal/directory/i18n"
	"github.com/gartstein/staffdir/internal/directory/storage"
	"github.com/gartstein/staffdir/internal/directory/store"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Global flags
	configPath string
	verbose    bool

	cfg    *config.Config
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "directory",
	Short: "Employee directory service and admin tool",
	Long: `directory keeps a list of employees in local storage and serves it
over HTTP. Every subcommand works on the same storage, so records added from
the shell show up in the service and the terminal UI.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		logger, err = initLogger(cfg.Log.Level, verbose)
		return err
	},
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(
		serveCmd,
		listCmd,
		getCmd,
		addCmd,
		updateCmd,
		deleteCmd,
		importCmd,
		exportCmd,
		langCmd,
		browseCmd,
		watchCmd,
		tokenCmd,
	)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// initLogger builds a zap production logger writing to stderr.
func initLogger(level string, debug bool) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if level != "" {
		lvl, err := zapcore.ParseLevel(level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", level, err)
		}
		zc.Level = zap.NewAtomicLevelAt(lvl)
	}
	if debug {
		zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	l, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return l, nil
}

// app wires the core components over the configured storage.
type app struct {
	storage   storage.Storage
	store     *store.Store
	languages *i18n.Provider
	service   *controller.EmployeeService
}

// openApp opens storage, retrying transient failures, then loads the
// store and the saved language.
func openApp(ctx context.Context) (*app, error) {
	var s storage.Storage
	op := func() error {
		var err error
		s, err = storage.Open(cfg.Storage.Storage())
		if errors.Is(err, e.ErrInvalidInput) {
			return backoff.Permanent(err)
		}
		return err
	}
	notify := func(err error, wait time.Duration) {
		logger.Warn("Storage not ready, retrying", zap.Error(err), zap.Duration("wait", wait))
	}
	if err := backoff.RetryNotify(op, retryPolicy(ctx), notify); err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}

	st, err := store.New(ctx, s, logger)
	if err != nil {
		s.Close()
		return nil, err
	}

	languages := i18n.NewProvider(s, logger)
	if err := languages.Init(ctx, langHint()); err != nil {
		s.Close()
		return nil, err
	}

	return &app{
		storage:   s,
		store:     st,
		languages: languages,
		service:   controller.NewEmployeeService(st, languages, logger),
	}, nil
}

func (a *app) Close() {
	if err := a.storage.Close(); err != nil {
		logger.Error("Failed to close storage", zap.Error(err))
	}
}

// openProducer connects the Kafka producer when brokers are configured
// and subscribes it to store. The returned function detaches and closes it.
func openProducer(ctx context.Context, st *store.Store) (func(), error) {
	if !cfg.Kafka.Enabled() {
		return func() {}, nil
	}

	var producer *events.Producer
	op := func() error {
		var err error
		producer, err = events.NewProducer(cfg.Kafka.Brokers, logger, cfg.Kafka.Topic)
		return err
	}
	if err := backoff.Retry(op, retryPolicy(ctx)); err != nil {
		return nil, fmt.Errorf("failed to initialize Kafka producer: %w", err)
	}

	unsubscribe := st.Subscribe(producer.Produce)
	return func() {
		unsubscribe()
		producer.Close()
	}, nil
}

func retryPolicy(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = 30 * time.Second
	return backoff.WithContext(backoff.WithMaxRetries(b, 5), ctx)
}

// langHint is the environment's locale, used when no language is saved.
func langHint() string {
	if cfg.I18n.Lang != "" {
		return cfg.I18n.Lang
	}
	for _, key := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
		if v := os.Getenv(key); v != "" {
			return v
		}
	}
	return ""
}

// withApp runs fn with an opened app and closes it afterwards. When publish
// is set, store changes are also sent to Kafka.
func withApp(cmd *cobra.Command, publish bool, fn func(ctx context.Context, a *app, out io.Writer) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if publish {
		closeProducer, err := openProducer(ctx, a.store)
		if err != nil {
			return err
		}
		defer closeProducer()
	}
	return fn(i18n.NewContext(ctx, a.languages.Lang()), a, cmd.OutOrStdout())
}
