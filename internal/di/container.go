package di

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	repocache "github.com/goliatone/go-repository-cache/cache"
	"github.com/uptrace/bun"

	"github.com/nycb2b/site/internal/articles"
	"github.com/nycb2b/site/internal/audit"
	"github.com/nycb2b/site/internal/auth"
	"github.com/nycb2b/site/internal/commands"
	articlescmd "github.com/nycb2b/site/internal/commands/articles"
	moderationcmd "github.com/nycb2b/site/internal/commands/moderation"
	"github.com/nycb2b/site/internal/events"
	"github.com/nycb2b/site/internal/housekeeping"
	sitehttp "github.com/nycb2b/site/internal/http"
	"github.com/nycb2b/site/internal/identity"
	"github.com/nycb2b/site/internal/jobs"
	"github.com/nycb2b/site/internal/links"
	"github.com/nycb2b/site/internal/logging"
	"github.com/nycb2b/site/internal/logging/console"
	"github.com/nycb2b/site/internal/logging/gologger"
	"github.com/nycb2b/site/internal/markdown"
	"github.com/nycb2b/site/internal/richtext"
	"github.com/nycb2b/site/internal/runtimeconfig"
	"github.com/nycb2b/site/internal/storage"
	"github.com/nycb2b/site/internal/workflow"
	"github.com/nycb2b/site/pkg/interfaces"
)

// ErrAdminDisabled is returned by admin accessors when the admin surface is off.
var ErrAdminDisabled = errors.New("di: admin surface disabled")

// Container wires module dependencies from a runtime configuration.
type Container struct {
	Config runtimeconfig.Config

	loggerProvider interfaces.LoggerProvider
	logger         interfaces.Logger

	bunDB         *bun.DB
	ownsDB        bool
	cacheService  repocache.CacheService
	keySerializer repocache.KeySerializer

	idGenerator identity.Generator
	now         func() time.Time

	renderer *richtext.Renderer
	bodies   *markdown.BodyRenderer
	links    *links.Resolver
	workflow interfaces.WorkflowEngine

	eventRepo   events.EventRepository
	jobRepo     jobs.JobRepository
	articleRepo articles.ArticleRepository

	eventSvc   events.Service
	jobSvc     jobs.Service
	articleSvc articles.Service

	sessions      interfaces.SessionStore
	authenticator *auth.Authenticator
	housekeeper   *housekeeping.Worker
	audit         audit.Recorder

	moderateHandler *moderationcmd.ModerateHandler
	reorderHandler  *moderationcmd.ReorderHandler
	importHandler   *articlescmd.ImportArticlesHandler
	imported        []*articles.Article
}

// Option mutates the container before it is finalised.
type Option func(*Container)

// WithLoggerProvider overrides the provider built from the logging config.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		c.loggerProvider = provider
	}
}

// WithBunDB supplies an open database instead of dialing the configured DSN.
// The caller keeps ownership of db.
func WithBunDB(db *bun.DB) Option {
	return func(c *Container) {
		c.bunDB = db
	}
}

// WithCache overrides the repository cache.
func WithCache(service repocache.CacheService, serializer repocache.KeySerializer) Option {
	return func(c *Container) {
		c.cacheService = service
		c.keySerializer = serializer
	}
}

// WithIDGenerator overrides the generator used for new record IDs.
func WithIDGenerator(generator identity.Generator) Option {
	return func(c *Container) {
		if generator != nil {
			c.idGenerator = generator
		}
	}
}

// WithClock overrides the time source shared by services and sessions.
func WithClock(now func() time.Time) Option {
	return func(c *Container) {
		if now != nil {
			c.now = now
		}
	}
}

// WithSessionStore overrides the in-memory admin session store.
func WithSessionStore(store interfaces.SessionStore) Option {
	return func(c *Container) {
		c.sessions = store
	}
}

// WithAuditRecorder overrides the in-memory moderation audit trail.
func WithAuditRecorder(recorder audit.Recorder) Option {
	return func(c *Container) {
		c.audit = recorder
	}
}

// WithEventService overrides the default event service binding.
func WithEventService(svc events.Service) Option {
	return func(c *Container) {
		c.eventSvc = svc
	}
}

// WithJobService overrides the default job service binding.
func WithJobService(svc jobs.Service) Option {
	return func(c *Container) {
		c.jobSvc = svc
	}
}

// WithArticleService overrides the default article service binding.
func WithArticleService(svc articles.Service) Option {
	return func(c *Container) {
		c.articleSvc = svc
	}
}

// NewContainer validates cfg and builds every module it enables.
func NewContainer(cfg runtimeconfig.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Container{
		Config:      cfg,
		idGenerator: identity.RandomGenerator(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}

	if err := c.configureLogging(); err != nil {
		return nil, err
	}
	if err := c.configureStorage(); err != nil {
		return nil, err
	}
	if err := c.configureCache(); err != nil {
		c.Close()
		return nil, err
	}
	c.configureRendering()
	c.configureRepositories()
	c.configureServices()
	if err := c.configureAuth(); err != nil {
		c.Close()
		return nil, err
	}
	c.configureCommands()

	c.logger.Info("container.configured",
		"driver", normalizedDriver(cfg.Storage.Driver),
		"cache", c.cacheService != nil,
		"admin", c.authenticator != nil,
	)
	return c, nil
}

func (c *Container) configureLogging() error {
	if c.loggerProvider == nil {
		provider, err := newLoggerProvider(c.Config.Logging)
		if err != nil {
			return err
		}
		c.loggerProvider = provider
	}
	c.logger = logging.ModuleLogger(c.loggerProvider, logging.RootModule)
	return nil
}

func newLoggerProvider(cfg runtimeconfig.LoggingConfig) (interfaces.LoggerProvider, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "gologger":
		provider, err := gologger.NewProvider(gologger.Config{
			Level:     cfg.Level,
			Format:    cfg.Format,
			AddSource: cfg.AddSource,
			Focus:     cfg.Focus,
		})
		if err != nil {
			return nil, err
		}
		return provider, nil
	default:
		opts := console.Options{Writer: os.Stderr}
		if strings.TrimSpace(cfg.Level) != "" {
			level, err := console.ParseLevel(cfg.Level)
			if err != nil {
				return nil, err
			}
			opts.MinLevel = &level
		}
		return console.NewProvider(opts), nil
	}
}

func normalizedDriver(driver string) string {
	return strings.ToLower(strings.TrimSpace(driver))
}

func (c *Container) configureStorage() error {
	if c.bunDB == nil {
		if normalizedDriver(c.Config.Storage.Driver) == runtimeconfig.DriverMemory {
			return nil
		}
		db, err := storage.Open(c.Config.Storage)
		if err != nil {
			return err
		}
		c.bunDB = db
		c.ownsDB = true
	}
	if c.Config.Storage.AutoMigrate {
		if err := storage.EnsureSchema(context.Background(), c.bunDB, Models()...); err != nil {
			c.Close()
			return err
		}
		logging.ModuleLogger(c.loggerProvider, logging.StorageModule).Info("storage.schema.ensured", "tables", len(Models()))
	}
	return nil
}

// Models lists the persisted record types.
func Models() []any {
	return []any{
		(*events.Event)(nil),
		(*jobs.Job)(nil),
		(*articles.Article)(nil),
	}
}

func (c *Container) configureCache() error {
	if c.cacheService != nil || c.bunDB == nil {
		return nil
	}
	service, serializer, err := storage.NewCache(c.Config.Cache)
	if err != nil {
		return err
	}
	c.cacheService = service
	c.keySerializer = serializer
	return nil
}

func (c *Container) configureRendering() {
	c.renderer = richtext.New(richtext.WithEscapePolicy(c.Config.EscapePolicy()))
	parser := markdown.NewGoldmarkParser(interfaces.ParseOptions{
		Extensions: c.Config.Markdown.Extensions,
		HardWraps:  c.Config.Markdown.HardWraps,
		SafeMode:   c.Config.Markdown.SafeMode,
	})
	c.bodies = markdown.NewBodyRenderer(c.renderer, parser)
	c.links = links.NewResolver(c.Config.Site.BaseURL, nil)
	c.workflow = workflow.New(workflow.WithClock(c.now))
}

func (c *Container) configureRepositories() {
	if c.bunDB == nil {
		c.eventRepo = events.NewMemoryEventRepository()
		c.jobRepo = jobs.NewMemoryJobRepository()
		c.articleRepo = articles.NewMemoryArticleRepository()
		return
	}
	if c.cacheService != nil && c.keySerializer != nil {
		c.eventRepo = events.NewBunEventRepositoryWithCache(c.bunDB, c.cacheService, c.keySerializer)
		c.jobRepo = jobs.NewBunJobRepositoryWithCache(c.bunDB, c.cacheService, c.keySerializer)
		c.articleRepo = articles.NewBunArticleRepositoryWithCache(c.bunDB, c.cacheService, c.keySerializer)
		return
	}
	c.eventRepo = events.NewBunEventRepository(c.bunDB)
	c.jobRepo = jobs.NewBunJobRepository(c.bunDB)
	c.articleRepo = articles.NewBunArticleRepository(c.bunDB)
}

func (c *Container) configureServices() {
	if c.eventSvc == nil {
		c.eventSvc = events.NewService(c.eventRepo,
			events.WithIDGenerator(events.IDGenerator(c.idGenerator)),
			events.WithNow(c.now),
			events.WithWorkflowEngine(c.workflow),
			events.WithRenderer(c.renderer),
			events.WithLinks(c.links),
			events.WithLogger(logging.ModuleLogger(c.loggerProvider, logging.EventsModule)),
		)
	}
	if c.jobSvc == nil {
		c.jobSvc = jobs.NewService(c.jobRepo,
			jobs.WithIDGenerator(jobs.IDGenerator(c.idGenerator)),
			jobs.WithNow(c.now),
			jobs.WithWorkflowEngine(c.workflow),
			jobs.WithRenderer(c.renderer),
			jobs.WithLinks(c.links),
			jobs.WithLogger(logging.ModuleLogger(c.loggerProvider, logging.JobsModule)),
		)
	}
	if c.articleSvc == nil {
		c.articleSvc = articles.NewService(c.articleRepo,
			articles.WithIDGenerator(articles.IDGenerator(c.idGenerator)),
			articles.WithNow(c.now),
			articles.WithWorkflowEngine(c.workflow),
			articles.WithBodyRenderer(c.bodies),
			articles.WithMarkdownAllowed(c.Config.Features.MarkdownArticles),
			articles.WithLinks(c.links),
			articles.WithLogger(logging.ModuleLogger(c.loggerProvider, logging.ArticlesModule)),
		)
	}
}

func (c *Container) configureAuth() error {
	if !c.Config.Admin.Enabled {
		return nil
	}
	verifier, err := auth.NewPasswordVerifier(c.Config.Admin.PasswordHash)
	if err != nil {
		return err
	}
	if c.sessions == nil {
		c.sessions = auth.NewMemorySessionStore()
	}
	authenticator, err := auth.NewAuthenticator(verifier, c.sessions,
		auth.WithClock(c.now),
		auth.WithSessionTTL(c.Config.Admin.SessionTTL),
		auth.WithSubject(c.Config.Admin.Subject),
		auth.WithLogger(logging.ModuleLogger(c.loggerProvider, logging.AuthModule)),
	)
	if err != nil {
		return err
	}
	c.authenticator = authenticator

	if sweeper, ok := c.sessions.(housekeeping.SessionSweeper); ok {
		c.housekeeper = housekeeping.NewWorker(sweeper,
			housekeeping.WithClock(c.now),
			housekeeping.WithLogger(logging.ModuleLogger(c.loggerProvider, logging.AuthModule)),
		)
	}
	return nil
}

func (c *Container) configureCommands() {
	if c.audit == nil {
		c.audit = audit.NewMemoryRecorder(audit.DefaultCapacity)
	}
	services := moderationcmd.Services{
		Events:   c.eventSvc,
		Jobs:     c.jobSvc,
		Articles: c.articleSvc,
		Audit:    c.audit,
		Now:      c.now,
	}
	timeout := c.Config.Commands.Timeout
	c.moderateHandler = moderationcmd.NewModerateHandler(
		services,
		commandLogger(c.loggerProvider, "moderation"),
		commands.WithTimeout[moderationcmd.ModerateCommand](timeout),
	)
	c.reorderHandler = moderationcmd.NewReorderHandler(
		services,
		commandLogger(c.loggerProvider, "moderation"),
		commands.WithTimeout[moderationcmd.ReorderCommand](timeout),
	)
	c.importHandler = articlescmd.NewImportArticlesHandler(
		c.articleSvc,
		commandLogger(c.loggerProvider, "articles"),
		articlescmd.FeatureGates{MarkdownEnabled: func() bool { return c.Config.Features.MarkdownArticles }},
		func(result articlescmd.ImportResult) { c.imported = result.Imported },
		commands.WithTimeout[articlescmd.ImportArticlesCommand](timeout),
	)
}

// Close releases the database handle when the container opened it.
func (c *Container) Close() error {
	if c == nil || c.bunDB == nil || !c.ownsDB {
		return nil
	}
	err := c.bunDB.Close()
	c.bunDB = nil
	return err
}

// HTTPHandler mounts the public API and, when admin is enabled, the admin API.
func (c *Container) HTTPHandler() (http.Handler, error) {
	services := sitehttp.Services{
		Events:   c.eventSvc,
		Jobs:     c.jobSvc,
		Articles: c.articleSvc,
	}
	httpLogger := logging.ModuleLogger(c.loggerProvider, logging.HTTPModule)
	public := sitehttp.NewPublicAPI(services,
		sitehttp.WithPublicBasePath(c.Config.HTTP.APIBasePath),
		sitehttp.WithSubmissions(c.Config.Features.Submissions),
		sitehttp.WithPreview(c.Config.Features.Preview),
		sitehttp.WithPublicClock(c.now),
		sitehttp.WithPublicLogger(httpLogger),
	)
	var admin *sitehttp.AdminAPI
	if c.authenticator != nil {
		admin = sitehttp.NewAdminAPI(services, c.authenticator,
			sitehttp.WithBasePath(c.Config.HTTP.AdminBasePath),
			sitehttp.WithModerateHandler(c.moderateHandler),
			sitehttp.WithReorderHandler(c.reorderHandler),
			sitehttp.WithAuditRecorder(c.audit),
			sitehttp.WithSecureCookies(strings.HasPrefix(c.Config.Site.BaseURL, "https://")),
			sitehttp.WithAdminLogger(httpLogger),
		)
	}
	handler, err := sitehttp.NewHandler(c.Config.HTTP, public, admin, httpLogger)
	if err != nil {
		return nil, fmt.Errorf("di: http handler: %w", err)
	}
	return handler, nil
}

// ImportArticles runs the article import command and returns the records it touched.
func (c *Container) ImportArticles(ctx context.Context, cmd articlescmd.ImportArticlesCommand) ([]*articles.Article, error) {
	c.imported = nil
	if err := c.importHandler.Execute(ctx, cmd); err != nil {
		return nil, err
	}
	return c.imported, nil
}

func (c *Container) LoggerProvider() interfaces.LoggerProvider { return c.loggerProvider }

func (c *Container) Logger() interfaces.Logger { return c.logger }

func (c *Container) BunDB() *bun.DB { return c.bunDB }

func (c *Container) Renderer() *richtext.Renderer { return c.renderer }

func (c *Container) BodyRenderer() *markdown.BodyRenderer { return c.bodies }

func (c *Container) Links() *links.Resolver { return c.links }

func (c *Container) EventService() events.Service { return c.eventSvc }

func (c *Container) JobService() jobs.Service { return c.jobSvc }

func (c *Container) ArticleService() articles.Service { return c.articleSvc }

func (c *Container) ModerateHandler() *moderationcmd.ModerateHandler { return c.moderateHandler }

func (c *Container) ReorderHandler() *moderationcmd.ReorderHandler { return c.reorderHandler }

func (c *Container) AuditRecorder() audit.Recorder { return c.audit }

// Housekeeper returns the session sweeper, or nil when admin is disabled or
// the session store cannot sweep.
func (c *Container) Housekeeper() *housekeeping.Worker { return c.housekeeper }

// Authenticator returns the admin authenticator or ErrAdminDisabled.
func (c *Container) Authenticator() (*auth.Authenticator, error) {
	if c.authenticator == nil {
		return nil, ErrAdminDisabled
	}
	return c.authenticator, nil
}
