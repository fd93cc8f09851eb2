// Package app implements the application layer for pac.
package app

import (
	"context"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"go.trai.ch/pac/internal/adapters/cache"
	"go.trai.ch/pac/internal/adapters/cas"
	"go.trai.ch/pac/internal/adapters/compiler"
	"go.trai.ch/pac/internal/adapters/config"
	"go.trai.ch/pac/internal/adapters/metrics"
	"go.trai.ch/pac/internal/adapters/runtimetag"
	"go.trai.ch/pac/internal/adapters/shell"
	"go.trai.ch/pac/internal/adapters/telemetry/progrock"
	"go.trai.ch/pac/internal/core/domain"
	"go.trai.ch/pac/internal/core/ports"
	"go.trai.ch/pac/internal/engine/builder"
	"go.trai.ch/pac/internal/engine/chain"
	"go.trai.ch/pac/internal/tui"
	"go.trai.ch/zerr"
)

// App represents the main application logic.
type App struct {
	globalLoader  ports.GlobalConfigLoader
	packageLoader ports.PackageLoader
	executor      *shell.Executor
	packer        ports.Packer
	hasher        ports.Hasher
	fetcher       ports.SourceFetcher
	telemetry     ports.Telemetry
	logger        ports.Logger
	metrics       *metrics.Recorder
	teaOptions    []tea.ProgramOption
}

// New creates a new App instance.
func New(
	globalLoader ports.GlobalConfigLoader,
	packageLoader ports.PackageLoader,
	executor *shell.Executor,
	packer ports.Packer,
	hasher ports.Hasher,
	fetcher ports.SourceFetcher,
	telemetry ports.Telemetry,
	log ports.Logger,
	recorder *metrics.Recorder,
) *App {
	return &App{
		globalLoader:  globalLoader,
		packageLoader: packageLoader,
		executor:      executor,
		packer:        packer,
		hasher:        hasher,
		fetcher:       fetcher,
		telemetry:     telemetry,
		logger:        log,
		metrics:       recorder,
	}
}

// WithTeaOptions adds bubbletea program options to the App.
// This is primarily used for testing to disable input/output.
func (a *App) WithTeaOptions(opts ...tea.ProgramOption) *App {
	a.teaOptions = append(a.teaOptions, opts...)
	return a
}

// Options are the settings shared by every command.
type Options struct {
	// ConfigPath overrides the global configuration location.
	ConfigPath string
	// Parallelism overrides the configured number of workers when positive.
	Parallelism int
	// MetricsFile receives the session metrics in the Prometheus text format.
	MetricsFile string
	// Progress shows a live view of the package builds on stderr.
	Progress bool
}

// PublishOptions configure Publish.
type PublishOptions struct {
	Options
	// Target names the cache tier to publish to. Empty means the local tier.
	Target string
	// Rewrite replaces an existing artifact.
	Rewrite bool
}

// session holds the components assembled for one invocation.
type session struct {
	cfg     *domain.GlobalConfig
	runtime domain.RuntimeTag
	chain   *chain.Chain
	builder *builder.Builder
}

func (a *App) loadConfig(opts Options) (*domain.GlobalConfig, error) {
	path := opts.ConfigPath
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := a.globalLoader.Load(path)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to load configuration")
	}
	if opts.Parallelism > 0 {
		cfg.Parallelism = opts.Parallelism
	}
	return cfg, nil
}

func (a *App) newSession(ctx context.Context, opts Options) (*session, error) {
	cfg, err := a.loadConfig(opts)
	if err != nil {
		return nil, err
	}
	a.metrics.SetTextfile(opts.MetricsFile)

	tag, _ := runtimetag.NewDetector(a.executor, a.logger, cfg.Runtime).DetectRuntimeTag(ctx)

	factory := cache.NewFactory(cache.Options{
		TempDir: cfg.TempDir,
		Retries: cfg.Retries,
		Packer:  a.packer,
		Hasher:  a.hasher,
		Logger:  a.logger,
	})
	c, err := chain.FromConfig(cfg, factory, tag, a.logger, a.metrics)
	if err != nil {
		return nil, err
	}

	b := builder.New(builder.Deps{
		Chain:     c,
		Loader:    a.packageLoader,
		Fetcher:   a.fetcher,
		Compiler:  compiler.New(a.executor, cfg.Compiler),
		Packer:    a.packer,
		Telemetry: a.telemetry,
		Logger:    a.logger,
		Metrics:   a.metrics,
	}, filepath.Join(cfg.TempDir, "work"), cfg.Parallelism)

	return &session{cfg: cfg, runtime: tag, chain: c, builder: b}, nil
}

// flush writes the session metrics. Failures are logged.
func (a *App) flush() {
	if err := a.metrics.Flush(); err != nil {
		a.logger.Warn("failed to write metrics: " + err.Error())
	}
}

// Build builds the project in dir and every dependency no cache tier provides.
func (a *App) Build(ctx context.Context, dir string, opts Options) error {
	s, err := a.newSession(ctx, opts)
	if err != nil {
		return err
	}
	defer a.flush()

	var top *domain.Package
	err = a.withProgress(ctx, opts.Progress, func(ctx context.Context) error {
		var buildErr error
		top, buildErr = s.builder.Build(ctx, dir)
		return buildErr
	})
	if err != nil {
		return zerr.Wrap(err, "build failed")
	}
	a.logger.Info("built " + top.Ref() + " for runtime " + s.runtime.String())
	return nil
}

// Fetch materializes the dependency tree of the project in dir without building it.
func (a *App) Fetch(ctx context.Context, dir string, opts Options) ([]*domain.Package, error) {
	s, err := a.newSession(ctx, opts)
	if err != nil {
		return nil, err
	}
	defer a.flush()

	if _, err := s.builder.Populate(ctx, dir); err != nil {
		return nil, zerr.Wrap(err, "fetch failed")
	}
	pkgs := make([]*domain.Package, 0, s.builder.Graph().Len())
	for pkg := range s.builder.Graph().Walk() {
		pkgs = append(pkgs, pkg)
	}
	return pkgs, nil
}

// Publish builds the project in dir and publishes its artifact to the target tier.
func (a *App) Publish(ctx context.Context, dir string, opts PublishOptions) error {
	s, err := a.newSession(ctx, opts.Options)
	if err != nil {
		return err
	}
	defer a.flush()

	if opts.Target != "" {
		if _, ok := s.chain.Tier(opts.Target); !ok {
			return zerr.With(zerr.Wrap(domain.ErrUnknownCache, "cache is not configured"), "cache", opts.Target)
		}
	}

	var top *domain.Package
	err = a.withProgress(ctx, opts.Progress, func(ctx context.Context) error {
		var buildErr error
		top, buildErr = s.builder.Build(ctx, dir)
		return buildErr
	})
	if err != nil {
		return zerr.Wrap(err, "build failed")
	}
	if top.Artifact == "" {
		// Cached by an earlier session; publish the local copy.
		if err := s.chain.Local().Fetch(ctx, top); err != nil {
			return err
		}
	}

	if err := s.chain.AddPackage(ctx, top, chain.PublishOptions{Target: opts.Target, Rewrite: opts.Rewrite}); err != nil {
		return zerr.Wrap(err, "publish failed")
	}
	target := opts.Target
	if target == "" {
		target = s.chain.Local().Name()
	}
	a.logger.Info("published " + top.Ref() + " to " + target)
	return nil
}

// ListCache returns the artifacts held by the local tier.
func (a *App) ListCache(_ context.Context, opts Options) ([]domain.ArtifactRecord, error) {
	cfg, err := a.loadConfig(opts)
	if err != nil {
		return nil, err
	}
	entry, ok := cfg.LocalCache()
	if !ok {
		return nil, zerr.Wrap(domain.ErrConfiguration, "no local cache configured")
	}
	index, err := cas.NewStore(filepath.Join(cache.LocalRoot(entry.URL), cas.IndexFile))
	if err != nil {
		return nil, err
	}
	return index.List()
}

// Exists reports whether the tier named tier holds name@version. An empty tier means the local tier.
func (a *App) Exists(ctx context.Context, dep domain.Dependency, tier string, opts Options) (bool, error) {
	s, err := a.newSession(ctx, opts)
	if err != nil {
		return false, err
	}
	defer a.flush()

	backend := s.chain.Local()
	if tier != "" {
		var ok bool
		if backend, ok = s.chain.Tier(tier); !ok {
			return false, zerr.With(zerr.Wrap(domain.ErrUnknownCache, "cache is not configured"), "cache", tier)
		}
	}
	return backend.Exists(ctx, domain.NewPackage(dep))
}

// SetJSON switches the logger to JSON output when it supports it.
func (a *App) SetJSON(enable bool) {
	if l, ok := a.logger.(interface{ SetJSON(bool) }); ok {
		l.SetJSON(enable)
	}
}

// withProgress runs fn while a TUI renders the telemetry stream. Quitting the TUI
// cancels fn. Without a progrock recorder fn runs plain.
func (a *App) withProgress(ctx context.Context, enabled bool, fn func(context.Context) error) error {
	recorder, ok := a.telemetry.(*progrock.Recorder)
	if !enabled || !ok {
		return fn(ctx)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	stream := recorder.Watch()
	model := tui.NewModel(stream)
	opts := append([]tea.ProgramOption{tea.WithContext(ctx), tea.WithOutput(os.Stderr)}, a.teaOptions...)
	program := tea.NewProgram(model, opts...)

	done := make(chan error, 1)
	go func() {
		_, err := program.Run()
		_ = stream.Close()
		if model.Interrupted {
			cancel()
		}
		done <- err
	}()

	err := fn(ctx)
	_ = stream.Close()
	if perr := <-done; perr != nil && err == nil && ctx.Err() == nil {
		a.logger.Warn("progress display failed: " + perr.Error())
	}
	return err
}
