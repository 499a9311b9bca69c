package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"sync"

	"github.com/dmitrijs2005/berbagi/internal/api"
	"github.com/dmitrijs2005/berbagi/internal/config"
	"github.com/dmitrijs2005/berbagi/internal/localstore"
	"github.com/dmitrijs2005/berbagi/internal/logging"
	"github.com/dmitrijs2005/berbagi/internal/metrics"
	"github.com/dmitrijs2005/berbagi/internal/models"
	"github.com/dmitrijs2005/berbagi/internal/notify"
	"github.com/dmitrijs2005/berbagi/internal/services"
	"github.com/dmitrijs2005/berbagi/internal/syncer"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

// Outbox is the part of the local store the CLI manages directly.
type Outbox interface {
	ListPendingWrites(ctx context.Context) ([]*models.PendingWrite, error)
	ClearSyncedWrites(ctx context.Context) (int64, error)
	ClearAll(ctx context.Context) error
	Info(ctx context.Context) (*models.StorageInfo, error)
}

// Syncer runs sync attempts on demand.
type Syncer interface {
	RunOnce(ctx context.Context) (syncer.Result, error)
}

type App struct {
	config    *config.Config
	auth      services.AuthService
	stories   services.StoryService
	favorites services.FavoriteService
	push      services.PushService
	outbox    Outbox
	syncer    Syncer

	engine  *syncer.Engine
	watcher *syncer.Watcher
	closer  io.Closer

	userName string

	reader *bufio.Reader
	out    io.Writer
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	// Diagnostics go to stderr so they do not interleave with REPL output.
	logger, err := logging.New(os.Stderr, c.LogFormat, c.LogLevel)
	if err != nil {
		return nil, err
	}

	opts := []localstore.Option{localstore.WithLogger(logger.With("module", "store"))}
	if c.StorePassphrase != "" {
		opts = append(opts, localstore.WithPassphrase(c.StorePassphrase))
	}
	store, err := localstore.Open(ctx, c.DBPath, opts...)
	if err != nil {
		log.Printf("error initializing database: %s", err.Error())
		return nil, err
	}

	client, err := api.NewRESTClient(c.APIBaseURL, &http.Client{Timeout: c.HTTPTimeout}, logger.With("module", "api"))
	if err != nil {
		store.Close()
		return nil, err
	}

	auth := services.NewAuth(client, store.Metadata())
	engine := syncer.NewEngine(store, client, notify.NewBridge(printNotifier{w: os.Stdout}, logger, nil), logger.With("module", "sync"), metrics.New())

	a := &App{
		config:    c,
		auth:      auth,
		stories:   services.NewStories(client, auth, store, logger),
		favorites: services.NewFavorites(store),
		push:      services.NewPush(client, auth, store.Metadata(), logger),
		outbox:    store,
		syncer:    engine,
		engine:    engine,
		closer:    store,
		reader:    bufio.NewReader(os.Stdin),
		out:       os.Stdout,
	}
	a.watcher = syncer.NewWatcher(client, engine, logger.With("module", "watcher"), c.OnlineCheckInterval)
	return a, nil
}

// printNotifier shows notifications inline in the terminal.
type printNotifier struct {
	w io.Writer
}

func (p printNotifier) Notify(_ context.Context, n notify.Notification) error {
	_, err := fmt.Fprintf(p.w, "\n[%s] %s\n", n.Title, n.Body)
	return err
}

func (a *App) mode() Mode {
	if a.watcher != nil && a.watcher.Online() {
		return ModeOnline
	}
	return ModeOffline
}

func (a *App) isLoggedIn() bool {
	_, err := a.auth.Token(context.Background())
	return err == nil
}

// Run starts the background sync loops and the REPL. It returns when the
// user exits or stdin is closed.
func (a *App) Run(ctx context.Context) {
	defer a.closer.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_ = a.engine.Run(ctx)
	}()
	go func() {
		defer wg.Done()
		_ = a.watcher.Run(ctx)
	}()

	a.Root(ctx)
	cancel()
	wg.Wait()
}

func (a *App) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

func (a *App) getStatus() string {
	parts := make([]string, 0, 2)
	if a.userName != "" {
		parts = append(parts, a.userName)
	}
	parts = append(parts, string(a.mode()))
	return "(" + strings.Join(parts, " ") + ")"
}

// Root greets the user, restores the stored session name and runs the REPL.
func (a *App) Root(ctx context.Context) {
	log.Println("Welcome to Berbagi Story CLI (type 'help' for commands)")
	if name, err := a.auth.UserName(ctx); err == nil {
		a.userName = name
	}
	runREPL(ctx, a, a.getStatus, bufio.NewScanner(a.reader), a.out)
}
