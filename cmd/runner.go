package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/steamwatch/internal/metrics"
	"github.com/desertthunder/steamwatch/internal/models"
	"github.com/desertthunder/steamwatch/internal/repositories"
	"github.com/desertthunder/steamwatch/internal/server"
	"github.com/desertthunder/steamwatch/internal/services"
	"github.com/desertthunder/steamwatch/internal/session"
	"github.com/desertthunder/steamwatch/internal/shared"
	"github.com/desertthunder/steamwatch/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// The local store and the session controller are opened on first use so that commands like
// setup can run before a database exists.
type Runner struct {
	config     *shared.Config
	configPath string
	client     *services.Client
	openid     *server.SteamOpenID
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
	scheduler  session.Scheduler
	notifiers  []session.Notifier

	db     *sql.DB
	prefs  *repositories.PreferencesRepository
	notes  *repositories.NotificationRepository
	ctl    *session.Controller
	engine *tasks.QuoteEngine
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Client     *services.Client
	OpenID     *server.SteamOpenID
	DB         *sql.DB
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
	Scheduler  session.Scheduler
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: opts.Config.Remote.Timeout()}
	}
	if opts.Client == nil {
		opts.Client = services.NewClient(
			services.EndpointsFromConfig(opts.Config.Remote), opts.HTTPClient, opts.Config.Remote.MarketRate,
		)
	}
	if opts.OpenID == nil {
		opts.OpenID = server.NewSteamOpenIDFromConfig(opts.Config.Steam, opts.HTTPClient)
	}
	opts.Client.SetLogger(opts.Logger)

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		client:     opts.Client,
		openid:     opts.OpenID,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
		scheduler:  opts.Scheduler,
		db:         opts.DB,
		engine:     tasks.NewQuoteEngine(opts.Client),
	}
}

// SetLogger swaps the logger used by the runner and the remote client.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
	r.client.SetLogger(logger)
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, marketCommand, tracksCommand, historyCommand,
		notificationsCommand, settingsCommand, watchCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

func (r *Runner) configPathOrDefault() string {
	if r.configPath == "" {
		return "config.toml"
	}
	return r.configPath
}

// store opens the local state database and its repositories.
func (r *Runner) store() error {
	if r.prefs != nil {
		return nil
	}
	if r.db == nil {
		db, err := shared.OpenStore(r.config.Database.Path, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)
		if err != nil {
			return fmt.Errorf("failed to open local store: %w", err)
		}
		r.db = db
	}
	r.prefs = repositories.NewPreferencesRepository(r.db)
	r.notes = repositories.NewNotificationRepository(r.db)
	return nil
}

// session returns the started controller, building it on first use.
func (r *Runner) session(ctx context.Context) (*session.Controller, error) {
	if r.ctl != nil {
		return r.ctl, nil
	}
	if err := r.store(); err != nil {
		return nil, err
	}

	notifier := session.Fanout{
		session.StoreNotifier{Store: r.notes, Logger: r.logger},
		session.LogNotifier{Logger: r.logger},
	}
	notifier = append(notifier, r.notifiers...)

	interval := models.RefreshInterval(r.config.Session.RefreshInterval)
	r.ctl = session.New(session.Deps{
		Tracks:    r.client,
		Market:    r.client,
		Refresher: r.client,
		Profiles:  r.client,
		Auth:      r.openid,
		Prefs:     r.prefs,
		Notifier:  notifier,
		Observer:  metrics.Observer{},
		Scheduler: r.scheduler,
	}, interval, r.logger)

	if err := r.ctl.Start(ctx, nil); err != nil {
		return nil, err
	}
	return r.ctl, nil
}

// signedIn returns the controller, failing when no identity is stored.
func (r *Runner) signedIn(ctx context.Context) (*session.Controller, error) {
	ctl, err := r.session(ctx)
	if err != nil {
		return nil, err
	}
	if ctl.Identity() == nil {
		return nil, fmt.Errorf("%w: run 'steamwatch auth login' first", shared.ErrNotAuthenticated)
	}
	return ctl, nil
}

// Close stops the controller and closes the local store.
func (r *Runner) Close() error {
	if r.ctl != nil {
		r.ctl.Close()
	}
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
