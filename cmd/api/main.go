package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"rental/internal/config"
	"rental/internal/domain/model"
	"rental/internal/handler"
	"rental/internal/infra/catalog"
	"rental/internal/infra/db"
	"rental/internal/infra/device"
	"rental/internal/infra/geocode"
	"rental/internal/infra/logger"
	"rental/internal/infra/notify"
	infraRepo "rental/internal/infra/repository"
	"rental/internal/repository"
	"rental/internal/server"
	"rental/internal/usecase"
	"rental/internal/validator"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"gorm.io/gorm"
)

type uuidGenerator struct{}

func (g *uuidGenerator) NewID() string {
	return uuid.NewString()
}

type realClock struct{}

func (c *realClock) Now() time.Time {
	return time.Now()
}

func main() {
	//.env は任意
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintln(os.Stderr, "load .env:", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{
		Level:     logger.ParseLevel(cfg.LogLevel),
		Format:    cfg.LogFormat,
		AddSource: cfg.GoEnv == "dev",
	})
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	var closers []io.Closer
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i].Close(); err != nil {
				log.Warn("close failed", "error", err)
			}
		}
	}()

	//DB接続（postgres を使う設定のときだけ）
	var gormDB *gorm.DB
	if cfg.UsesPostgres() {
		var err error
		if gormDB, err = db.Connect(cfg); err != nil {
			return err
		}
		if err := db.Migrate(gormDB); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	//key-value ストア
	var store repository.KeyValueStore
	switch cfg.KVBackend {
	case "sqlite":
		kv, err := infraRepo.OpenKVSQLite(cfg.KVSQLitePath)
		if err != nil {
			return err
		}
		closers = append(closers, kv)
		store = kv
	case "postgres":
		store = infraRepo.NewKVGormRepository(gormDB)
	default:
		store = infraRepo.NewKVMemoryRepository()
	}

	//カタログ
	products, err := loadCatalog(ctx, cfg, gormDB, log)
	if err != nil {
		return err
	}

	//ジオコーダ
	var inner geocode.Geocoder = geocode.NewStatic()
	if cfg.Geocoder == "kakao" {
		inner = geocode.NewKakao(cfg.KakaoBaseURL, cfg.KakaoRESTAPIKey, cfg.DeviceTimeout)
	}
	geocoder := geocode.NewCached(inner, cfg.GeocodeCacheTTL)

	//端末
	var positioner usecase.DevicePositioner
	var reporter handler.PositionReporter
	switch cfg.DeviceMode {
	case "relay":
		relay := device.NewRelay()
		reporter = relay
		positioner = device.NewCaching(relay)
	case "static":
		positioner = device.NewCaching(device.NewStatic(cfg.DeviceLat, cfg.DeviceLng))
	}

	//通知先
	targets := []notify.Notifier{notify.NewLog(log)}
	if cfg.AMQPURL != "" {
		a, err := notify.DialAMQP(cfg.AMQPURL, cfg.AMQPExchange, log)
		if err != nil {
			return err
		}
		closers = append(closers, a)
		targets = append(targets, a)
	}
	if cfg.FluentEnabled {
		f, err := notify.DialFluent(cfg.FluentHost, cfg.FluentPort, cfg.FluentTagPrefix, log)
		if err != nil {
			return err
		}
		closers = append(closers, f)
		targets = append(targets, f)
	}

	//Usecase生成
	v := validator.NewLocationValidator()
	opts := model.PositionOptions{
		EnableHighAccuracy: cfg.DeviceHighAccuracy,
		Timeout:            cfg.DeviceTimeout,
		MaximumAge:         cfg.DeviceMaxAge,
	}
	resolver := usecase.NewLocationResolver(
		positioner, geocoder, store, v, notify.NewMulti(targets...),
		&uuidGenerator{}, &realClock{}, opts, cfg.DefaultDistrict, log,
	)
	engine := usecase.NewCatalogQueryEngine(products, resolver, log)
	resolver.OnChange(func(model.Location) { engine.Refresh() })
	if resolver.Restore(ctx) {
		engine.Refresh()
	}

	//Handler生成
	locationH := handler.NewLocationHandler(resolver, reporter, v, cfg.DeviceTimeout+2*time.Second)
	catalogH := handler.NewCatalogHandler(engine)

	//Server起動
	addr := cfg.Port
	if addr[0] != ':' {
		addr = ":" + addr
	}
	return server.New(log, locationH, catalogH).Start(ctx, addr, 10*time.Second)
}

func loadCatalog(ctx context.Context, cfg config.Config, gormDB *gorm.DB, log *slog.Logger) ([]model.Product, error) {
	var source repository.ProductCatalog
	switch cfg.CatalogSource {
	case "toml":
		products, err := catalog.LoadFile(cfg.CatalogPath)
		if err != nil {
			return nil, err
		}
		source = infraRepo.NewProductMemoryRepository(products)
	case "postgres":
		seed, err := catalog.Default()
		if err != nil {
			return nil, err
		}
		repo := infraRepo.NewProductGormRepository(gormDB)
		n, err := repo.SeedIfEmpty(ctx, seed)
		if err != nil {
			return nil, fmt.Errorf("seed catalog: %w", err)
		}
		if n > 0 {
			log.Info("catalog seeded", "count", n)
		}
		source = repo
	default:
		products, err := catalog.Default()
		if err != nil {
			return nil, err
		}
		source = infraRepo.NewProductMemoryRepository(products)
	}
	return source.ListAll(ctx)
}
