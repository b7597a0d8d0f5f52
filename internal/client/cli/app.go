package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"

	"github.com/dmitrijs2005/posqueue/internal/client/client"
	"github.com/dmitrijs2005/posqueue/internal/client/config"
	"github.com/dmitrijs2005/posqueue/internal/client/connectivity"
	"github.com/dmitrijs2005/posqueue/internal/client/deadletter"
	"github.com/dmitrijs2005/posqueue/internal/client/models"
	"github.com/dmitrijs2005/posqueue/internal/client/queue"
	"github.com/dmitrijs2005/posqueue/internal/client/scheduler"
	"github.com/dmitrijs2005/posqueue/internal/client/services"
	"github.com/dmitrijs2005/posqueue/internal/client/store"
	"github.com/dmitrijs2005/posqueue/internal/client/submit"
	"github.com/dmitrijs2005/posqueue/internal/logging"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

type orderQueue interface {
	SyncPendingOrders(ctx context.Context) (models.SyncSummary, error)
	GetQueueStats(ctx context.Context) (models.QueueStats, error)
	ClearFailedOrders(ctx context.Context) (int, error)
	IsSyncing() bool
}

type orderSubmitter interface {
	Submit(ctx context.Context, payload json.RawMessage) (*submit.Result, error)
}

type orderLister interface {
	GetOrdersByStatus(ctx context.Context, status models.OrderStatus) ([]*models.QueuedOrder, error)
}

type onlineFlag interface {
	Online() bool
}

type kvCache interface {
	SetCacheItem(ctx context.Context, key string, value []byte) error
	GetCacheItem(ctx context.Context, key string) (*models.CacheEntry, error)
}

type worker interface {
	Run(ctx context.Context)
}

type App struct {
	config      *config.Config
	logger      logging.Logger
	authService services.AuthService
	queue       orderQueue
	orders      orderSubmitter
	lister      orderLister
	cache       kvCache
	network     onlineFlag
	delivery    onlineFlag
	workers     []worker
	triggerSync func()
	closers     []func() error

	reader *bufio.Reader
	out    io.Writer

	mu             sync.RWMutex
	session        *models.CachedSession
	offlineSession bool
	authenticated  atomic.Bool
}

// deliveryGate reports online only while the server answers pings and the
// operator holds a server-issued token. Orders are sent and the queue is
// replayed only through this gate; otherwise they stay queued.
type deliveryGate struct {
	watcher       *connectivity.Watcher
	authenticated *atomic.Bool
}

func (g *deliveryGate) Online() bool {
	return g.authenticated.Load() && g.watcher.Online()
}

func (g *deliveryGate) OnChange(fn func(online bool)) func() {
	return g.watcher.OnChange(func(online bool) {
		fn(online && g.authenticated.Load())
	})
}

func newAPIClient(c *config.Config) (client.Client, error) {
	switch c.Transport {
	case config.TransportREST:
		return client.NewRESTClient(c.RestBaseURL, nil), nil
	default:
		return client.NewGRPCClient(c.ServerEndpointAddr)
	}
}

// newArchiver returns nil when no dead-letter bucket is configured.
func newArchiver(ctx context.Context, c *config.Config) (queue.Archiver, error) {
	dl := deadletter.Config{
		Region:       c.S3Region,
		AccessKey:    c.S3AccessKey,
		SecretKey:    c.S3SecretKey,
		BaseEndpoint: c.S3BaseEndpoint,
		Bucket:       c.S3Bucket,
		Prefix:       c.S3Prefix,
		TerminalID:   c.TerminalID,
	}
	if !dl.Enabled() {
		return nil, nil
	}
	s3c, err := deadletter.NewS3Client(ctx, dl)
	if err != nil {
		return nil, err
	}
	return deadletter.NewS3Archiver(s3c, dl)
}

// NewApp opens the local store and wires the terminal: transport client,
// connectivity watcher, queue manager, submission orchestrator and
// background sync scheduler.
func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	st := store.New(c.DatabasePath, store.WithLogger(logger))
	if err := st.Initialize(ctx); err != nil {
		logger.Error(ctx, "error initializing database", "error", err)
		return nil, err
	}

	api, err := newAPIClient(c)
	if err != nil {
		return nil, multierr.Append(err, st.Close())
	}

	archiver, err := newArchiver(ctx, c)
	if err != nil {
		return nil, multierr.Combine(err, api.Close(), st.Close())
	}

	a := &App{
		config:      c,
		logger:      logger.With("module", "cli"),
		authService: services.NewAuthService(api, st),
		lister:      st,
		cache:       st,
		reader:      bufio.NewReader(os.Stdin),
		out:         os.Stdout,
	}

	watcher := connectivity.NewWatcher(api, c.OnlineCheckInterval, logger)
	gate := &deliveryGate{watcher: watcher, authenticated: &a.authenticated}
	dispatcher := submit.NewDispatcher(api, c.SubmitTimeout)

	qopts := []queue.Option{queue.WithMaxRetries(c.MaxRetries)}
	if archiver != nil {
		qopts = append(qopts, queue.WithArchiver(archiver))
	}
	manager := queue.NewManager(st, dispatcher, logger, qopts...)
	sched := scheduler.New(manager, gate, c.SyncInterval, c.SyncMaxBackoff, logger)

	a.queue = manager
	a.orders = submit.NewOrchestrator(dispatcher, manager, gate, logger)
	a.network = watcher
	a.delivery = gate
	a.workers = []worker{watcher, sched}
	a.triggerSync = sched.Trigger

	unsubscribeSync := manager.Subscribe(a.onSyncFinished)
	unsubscribeConn := watcher.OnChange(a.onConnectivityChange)

	a.closers = []func() error{
		func() error { unsubscribeSync(); unsubscribeConn(); return nil },
		func() error { return a.authService.Close(context.Background()) },
		st.Close,
	}
	return a, nil
}

func (a *App) onSyncFinished(sum models.SyncSummary) {
	if sum.Unauthorized {
		a.expireSession()
	}
	if sum.Attempted == 0 {
		return
	}
	a.rememberSync(sum)
	fmt.Fprintf(a.out, "\n[sync] %d synced, %d failed\n", sum.Synced, sum.Failed)
}

func (a *App) onConnectivityChange(online bool) {
	if online && !a.authenticated.Load() && a.isLoggedIn() {
		fmt.Fprintln(a.out, "\nServer reachable again; run 'login' to resume delivery")
	}
}

// Run starts the background workers, then blocks in the REPL until the
// operator exits or ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	for _, w := range a.workers {
		g.Go(func() error {
			w.Run(gctx)
			return nil
		})
	}

	a.Root(gctx)
	cancel()
	return g.Wait()
}

// Root greets the operator, asks for credentials and runs the REPL.
func (a *App) Root(ctx context.Context) {
	fmt.Fprintln(a.out, "Welcome to the POS terminal (type 'help' for commands)")
	_ = a.Login(ctx)
	runREPL(ctx, a, a.getStatus, bufio.NewScanner(a.reader))
}

// Close releases the transport and the local store.
func (a *App) Close() error {
	var err error
	for _, c := range a.closers {
		err = multierr.Append(err, c())
	}
	return err
}

func (a *App) mode() Mode {
	if a.network != nil && a.network.Online() {
		return ModeOnline
	}
	return ModeOffline
}

func (a *App) getStatus() string {
	s := ""
	if sess := a.currentSession(); sess != nil {
		s = sess.Username + " "
	}
	return fmt.Sprintf("(%s%s)", s, a.mode())
}
