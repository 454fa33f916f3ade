// Package assistant assembles the naughty assistant server.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/kart-io/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/kart-io/naughty-assistant/internal/assistant/biz"
	"github.com/kart-io/naughty-assistant/internal/assistant/handler"
	"github.com/kart-io/naughty-assistant/internal/assistant/metrics"
	"github.com/kart-io/naughty-assistant/internal/assistant/router"
	"github.com/kart-io/naughty-assistant/internal/assistant/store"
	"github.com/kart-io/naughty-assistant/internal/pkg/analyzer"
	"github.com/kart-io/naughty-assistant/pkg/automation"
	"github.com/kart-io/naughty-assistant/pkg/infra/app"
	"github.com/kart-io/naughty-assistant/pkg/infra/pool"
	"github.com/kart-io/naughty-assistant/pkg/infra/tracing"
	"github.com/kart-io/naughty-assistant/pkg/llm"
	// 导入 LLM 供应商以自动注册
	_ "github.com/kart-io/naughty-assistant/pkg/llm/ollama"
	_ "github.com/kart-io/naughty-assistant/pkg/llm/openai"
	analyzeropts "github.com/kart-io/naughty-assistant/pkg/options/analyzer"
	cacheopts "github.com/kart-io/naughty-assistant/pkg/options/cache"
	httpopts "github.com/kart-io/naughty-assistant/pkg/options/http"
	intakeopts "github.com/kart-io/naughty-assistant/pkg/options/intake"
	ledgeropts "github.com/kart-io/naughty-assistant/pkg/options/ledger"
	logopts "github.com/kart-io/naughty-assistant/pkg/options/logger"
	middlewareopts "github.com/kart-io/naughty-assistant/pkg/options/middleware"
	modelopts "github.com/kart-io/naughty-assistant/pkg/options/model"
	scanneropts "github.com/kart-io/naughty-assistant/pkg/options/scanner"
	tracingopts "github.com/kart-io/naughty-assistant/pkg/options/tracing"
	weatheropts "github.com/kart-io/naughty-assistant/pkg/options/weather"
	"github.com/kart-io/naughty-assistant/pkg/plugin"
	"github.com/kart-io/naughty-assistant/pkg/scanner/clamd"
	"github.com/kart-io/naughty-assistant/pkg/security/sealer"
)

// Name is the name of the application.
const Name = "naughty-assistant"

// Config contains application-related configurations.
type Config struct {
	HTTPOptions       *httpopts.Options
	LogOptions        *logopts.Options
	ModelOptions      *modelopts.Options
	IntakeOptions     *intakeopts.Options
	ScannerOptions    *scanneropts.Options
	AnalyzerOptions   *analyzeropts.Options
	CacheOptions      *cacheopts.Options
	LedgerOptions     *ledgeropts.Options
	WeatherOptions    *weatheropts.Options
	MiddlewareOptions *middlewareopts.Options
	TracingOptions    *tracingopts.Options
	ShutdownTimeout   time.Duration
}

// Server represents the assistant server.
type Server struct {
	http            *http.Server
	knowledge       *store.Knowledge
	searcher        *biz.Searcher
	shutdownTimeout time.Duration
	closers         []func()
}

// NewServer initializes and returns a new Server instance. The model is
// pinged once here; the server starts even when it is unavailable.
func (cfg *Config) NewServer(ctx context.Context) (*Server, error) {
	s := &Server{shutdownTimeout: cfg.ShutdownTimeout}

	// 1. 初始化日志
	if err := cfg.LogOptions.Init(map[string]any{
		"service.name":    Name,
		"service.version": app.GetVersion(),
	}); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger.Infow("Starting assistant service...", "addr", cfg.HTTPOptions.Addr)

	// 2. 初始化链路追踪
	tracer, err := tracing.NewProvider(ctx, cfg.TracingOptions, Name, app.GetVersion())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}
	s.closers = append(s.closers, func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracer.Shutdown(shutdownCtx); err != nil {
			logger.Warnw("Failed to flush traces", "error", err.Error())
		}
	})

	// 3. 初始化指标
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	// 4. 加载语言模型
	provider, err := llm.NewChatProvider(cfg.ModelOptions.Provider, cfg.ModelOptions.ToConfigMap())
	if err != nil {
		logger.Errorw("Failed to create chat provider", "provider", cfg.ModelOptions.Provider, "error", err.Error())
		provider = nil
	}
	gateway := biz.LoadGateway(ctx, provider, biz.GatewayOptions{
		LoadTimeout:     cfg.ModelOptions.LoadTimeout,
		GenerateTimeout: cfg.ModelOptions.GenerateTimeout,
		Metrics:         m,
	})

	// 5. 初始化协程池
	searchPool, err := pool.NewPool("knowledge-search", pool.SearchPoolConfig())
	if err != nil {
		s.close()
		return nil, fmt.Errorf("failed to create search pool: %w", err)
	}
	s.closers = append(s.closers, searchPool.Release)
	backgroundPool, err := pool.NewPool("background", pool.BackgroundPoolConfig())
	if err != nil {
		s.close()
		return nil, fmt.Errorf("failed to create background pool: %w", err)
	}
	s.closers = append(s.closers, func() { _ = backgroundPool.ReleaseTimeout(cfg.ShutdownTimeout) })
	if err := metrics.RegisterPools(reg, searchPool, backgroundPool); err != nil {
		s.close()
		return nil, fmt.Errorf("failed to register pool metrics: %w", err)
	}

	// 6. 初始化知识库与检索缓存
	knowledge := store.NewKnowledge(cfg.IntakeOptions.KnowledgeDir, searchPool)
	searchCache := newSearchCache(ctx, cfg.CacheOptions)
	if searchCache != nil {
		s.closers = append(s.closers, searchCache.close)
	}
	searcher := biz.NewSearcher(knowledge, searchCache.cache(), m)
	s.knowledge, s.searcher = knowledge, searcher

	// 7. 初始化上传台账
	var ledger *store.Ledger
	if cfg.LedgerOptions.Enabled {
		ledger, err = store.OpenLedger(cfg.LedgerOptions.Driver, cfg.LedgerOptions.DSN, cfg.LedgerOptions.LogLevel)
		if err != nil {
			s.close()
			return nil, err
		}
		s.closers = append(s.closers, func() { _ = ledger.Close() })
		logger.Infow("Upload ledger initialized", "driver", cfg.LedgerOptions.Driver)
	} else {
		logger.Info("Upload ledger is disabled")
	}

	// 8. 初始化文件接收流水线
	seal, err := sealer.New()
	if err != nil {
		s.close()
		return nil, err
	}
	pipelineCfg := biz.PipelineConfig{
		UploadDir:       cfg.IntakeOptions.UploadDir,
		EncryptedPrefix: cfg.IntakeOptions.EncryptedPrefix,
		Sealer:          seal,
		Media:           analyzer.NewSidecar(cfg.AnalyzerOptions.VisionURL, cfg.AnalyzerOptions.AudioURL, cfg.AnalyzerOptions.Timeout),
		Data:            analyzer.NewTabular(cfg.AnalyzerOptions.Clusters),
		Knowledge:       knowledge,
		Search:          searcher,
		Background:      backgroundPool,
		Metrics:         m,
	}
	if cfg.ScannerOptions.Enabled {
		pipelineCfg.Scanner = clamd.NewClient(cfg.ScannerOptions.Network, cfg.ScannerOptions.Address, cfg.ScannerOptions.Timeout)
		logger.Infow("Virus scanning enabled", "network", cfg.ScannerOptions.Network, "address", cfg.ScannerOptions.Address)
	}
	if ledger != nil {
		pipelineCfg.Recorder = ledger
	}
	pipeline := biz.NewPipeline(pipelineCfg)

	// 9. 初始化意图路由
	var weather biz.WeatherFetcher
	if cfg.WeatherOptions.APIKey != "" {
		weather = automation.NewClient(automation.Config{
			WeatherBaseURL: cfg.WeatherOptions.BaseURL,
			WeatherAPIKey:  cfg.WeatherOptions.APIKey,
			Units:          cfg.WeatherOptions.Units,
			Timeout:        cfg.WeatherOptions.Timeout,
		})
	}
	plugins := plugin.NewDefaultRegistry()
	intents := biz.NewIntentRouter(gateway, plugins, weather, m)

	// 10. 初始化 Handler 与路由
	hcfg := handler.Config{
		Chat:          intents,
		Intake:        pipeline,
		Search:        searcher,
		Model:         gateway,
		Plugins:       plugins,
		MaxUploadSize: cfg.IntakeOptions.MaxUploadSize,
	}
	if ledger != nil {
		hcfg.Uploads = ledger
	}
	engine := router.New(handler.New(hcfg), router.Config{
		Mode:       cfg.HTTPOptions.Mode,
		Middleware: cfg.MiddlewareOptions,
		Registerer: reg,
		Gatherer:   reg,
		Namespace:  metrics.Namespace,
	})

	s.http = &http.Server{
		Addr:         cfg.HTTPOptions.Addr,
		Handler:      engine,
		ReadTimeout:  cfg.HTTPOptions.ReadTimeout,
		WriteTimeout: cfg.HTTPOptions.WriteTimeout,
		IdleTimeout:  cfg.HTTPOptions.IdleTimeout,
	}

	logger.Infow("Assistant service is ready", "model_loaded", gateway.Available(), "model", gateway.Model())
	return s, nil
}

// Run serves HTTP and watches the knowledge directory until ctx is done,
// then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	defer s.close()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Infow("HTTP server listening", "addr", s.http.Addr)
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		err := s.knowledge.Watch(gctx, func(name string) {
			s.searcher.Invalidate(gctx)
		})
		if err != nil {
			// 监听失败不影响服务，只是缓存不会主动失效
			logger.Warnw("Knowledge watcher stopped", "error", err.Error())
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down assistant service...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		return s.http.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func (s *Server) close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
	s.closers = nil
}

// redisCache owns the redis client behind the search cache.
type redisCache struct {
	client *goredis.Client
	search *biz.SearchCache
}

func (c *redisCache) cache() *biz.SearchCache {
	if c == nil {
		return nil
	}
	return c.search
}

func (c *redisCache) close() {
	_ = c.client.Close()
}

// newSearchCache connects to redis. A failed ping disables caching.
func newSearchCache(ctx context.Context, opts *cacheopts.Options) *redisCache {
	if opts == nil || !opts.Enabled || opts.Redis == nil {
		logger.Info("Search cache is disabled")
		return nil
	}

	client := opts.Redis.NewClient()
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warnw("failed to connect to redis, cache will be disabled", "addr", opts.Redis.Addr(), "error", err.Error())
		_ = client.Close()
		return nil
	}

	logger.Infow("Redis search cache initialized", "addr", opts.Redis.Addr(), "ttl", opts.TTL)
	return &redisCache{
		client: client,
		search: biz.NewSearchCache(client, &biz.SearchCacheConfig{
			Enabled:   true,
			TTL:       opts.TTL,
			KeyPrefix: opts.KeyPrefix,
		}),
	}
}
