package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"Burrow_Hole/internal/config"
	"Burrow_Hole/internal/event"
	"Burrow_Hole/internal/handler"
	"Burrow_Hole/internal/mq"
	"Burrow_Hole/internal/pkg"
	"Burrow_Hole/internal/repository/mysql"
	"Burrow_Hole/internal/repository/redis"
	"Burrow_Hole/internal/router"
	"Burrow_Hole/internal/search"
	"Burrow_Hole/internal/service"
	"Burrow_Hole/internal/tracing"
	"Burrow_Hole/internal/worker"
	"Burrow_Hole/pkg/logger"
)

func main() {
	path := flag.String("config", os.Getenv("BURROW_CONFIG"), "config file (yaml/json/toml), optional")
	flag.Parse()

	cfg, err := config.Load(*path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "load config:", err)
		os.Exit(1)
	}
	if err := logger.Init(cfg.App.Env, cfg.Log.Level); err != nil {
		fmt.Fprintln(os.Stderr, "init logger:", err)
		os.Exit(1)
	}
	defer logger.Sync()

	startCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := tracing.Init(startCtx, cfg.App.Name, cfg.Tracing.Endpoint); err != nil {
		logger.Warn("tracing init failed, continuing without export", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		tracing.Shutdown(ctx)
	}()

	// 连不上总线、主库或缓存直接退出
	if err := pkg.PingKafka(startCtx, cfg.Bus.Brokers); err != nil {
		logger.Fatal("connect bus", zap.Strings("brokers", cfg.Bus.Brokers), zap.Error(err))
	}
	db, err := mysql.Open(startCtx, cfg.Store.Driver, cfg.Store.DSN)
	if err != nil {
		logger.Fatal("connect store", zap.String("driver", cfg.Store.Driver), zap.Error(err))
	}
	if cfg.Store.Driver == "sqlite" {
		if err := mysql.AutoMigrate(db); err != nil {
			logger.Fatal("migrate store", zap.Error(err))
		}
	}
	rdb, err := redis.NewClient(cfg.Cache.Addr, cfg.Cache.Password, cfg.Cache.DB)
	if err != nil {
		logger.Fatal("connect cache", zap.String("addr", cfg.Cache.Addr), zap.Error(err))
	}
	defer rdb.Close()

	searchSvc := service.NewSearchService(search.NewClient(cfg.Search.URL, cfg.Search.APIKey, cfg.Search.Timeout))
	if err := searchSvc.Bootstrap(startCtx); err != nil {
		logger.Fatal("create search collections", zap.String("url", cfg.Search.URL), zap.Error(err))
	}
	relationSvc := service.NewRelationService(&mysql.RelationRepository{DB: db}, &mysql.FollowRepository{DB: db})
	emailSvc := service.NewEmailService(
		redis.NewEmailRepository(rdb, cfg.Email.CodeTTL),
		pkg.NewLivenessChecker(cfg.Email.SMTPCheck),
		pkg.NewSMTPMailer(pkg.SMTPConfig{
			Host:     cfg.Email.SMTP.Host,
			Port:     cfg.Email.SMTP.Port,
			Username: cfg.Email.SMTP.Username,
			Password: cfg.Email.SMTP.Password,
			From:     cfg.Email.SMTP.From,
		}, cfg.Email.CodeTTL),
		service.EmailOptions{SendLimit: cfg.Email.SendLimit, TestMode: cfg.Email.TestMode},
	)
	trendingSvc := service.NewTrendingService(
		&mysql.PostRepository{DB: db},
		redis.NewTrendingRepository(rdb, cfg.Trending.TTL),
		service.TrendingOptions{Interval: cfg.Trending.Interval, Size: cfg.Trending.Size},
	)

	emailProducer, err := pkg.NewKafkaProducer(pkg.KafkaConfig{Brokers: cfg.Bus.Brokers, Topic: cfg.Bus.Topics.Email})
	if err != nil {
		logger.Fatal("create email producer", zap.Error(err))
	}
	defer emailProducer.Close()
	publisher := event.NewPublisher(nil, nil, emailProducer)

	ackBefore := cfg.Bus.AckMode == config.AckBeforeProcess
	consumer := func(topic string, h mq.Handler) *mq.Consumer {
		reader := pkg.NewKafkaReader(pkg.KafkaConfig{
			Brokers: cfg.Bus.Brokers,
			Topic:   topic,
			GroupID: cfg.Bus.GroupPrefix + "-" + topic,
		})
		return mq.NewConsumer(topic, mq.NewKafkaSubscriber(reader), ackBefore, h)
	}

	if cfg.App.Env != "development" && cfg.App.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("store handle", zap.Error(err))
	}
	ops := &http.Server{
		Addr: cfg.Ops.Addr,
		Handler: router.InitRouter(router.Deps{
			Trending: trendingSvc,
			Email:    publisher,
			Secret:   []byte(cfg.Ops.Secret),
			Checks: map[string]handler.HealthCheck{
				"store": sqlDB.PingContext,
				"cache": func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
				"bus":   func(ctx context.Context) error { return pkg.PingKafka(ctx, cfg.Bus.Brokers) },
			},
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	sup := worker.NewSupervisor(cfg.Shutdown.Grace)
	for _, c := range []*mq.Consumer{
		consumer(cfg.Bus.Topics.Search, searchSvc.Handle),
		consumer(cfg.Bus.Topics.Relation, relationSvc.Handle),
		consumer(cfg.Bus.Topics.Email, emailSvc.Handle),
	} {
		sup.Add(c.Name(), c.Run)
	}
	sup.Add("trending", trendingSvc.Run)
	sup.Add("ops", worker.HTTPTask(ops, cfg.Shutdown.Grace))

	logger.Info("burrow worker started",
		zap.String("env", cfg.App.Env),
		zap.String("ack_mode", cfg.Bus.AckMode),
		zap.String("ops_addr", cfg.Ops.Addr))

	if err := sup.Run(context.Background()); err != nil {
		logger.Error("worker stopped with error", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
	logger.Info("burrow worker stopped")
}
