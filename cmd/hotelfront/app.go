package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"

	"hotelfront/internal/app/commands"
	bookingapp "hotelfront/internal/app/handlers/booking"
	"hotelfront/internal/app/handlers/catalogsync"
	hotelsapp "hotelfront/internal/app/handlers/hotels"
	paymentsapp "hotelfront/internal/app/handlers/payments"
	reviewsapp "hotelfront/internal/app/handlers/reviews"
	"hotelfront/internal/app/middleware"
	appoutbox "hotelfront/internal/app/outbox"
	"hotelfront/internal/app/policies"
	"hotelfront/internal/app/queries"
	"hotelfront/internal/app/services/auth"
	"hotelfront/internal/app/session"
	"hotelfront/internal/app/uow"
	"hotelfront/internal/infra/backend"
	"hotelfront/internal/infra/broker/kafka"
	natsbroker "hotelfront/internal/infra/broker/nats"
	"hotelfront/internal/infra/cache"
	"hotelfront/internal/infra/config"
	mongodb "hotelfront/internal/infra/db/mongo"
	ginserver "hotelfront/internal/infra/http/gin"
	"hotelfront/internal/infra/inbox"
	"hotelfront/internal/infra/obs"
	infraoutbox "hotelfront/internal/infra/outbox"
	"hotelfront/internal/infra/security"
	"hotelfront/internal/infra/storage/memory"
	"hotelfront/internal/infra/storage/s3"
)

type application struct {
	handlers   ginserver.Handlers
	health     obs.HealthHandlers
	background []func(context.Context) error
	closers    []func(context.Context) error
	logger     *slog.Logger
}

func (a *application) onClose(fn func(context.Context) error) {
	a.closers = append(a.closers, fn)
}

// close releases resources in reverse acquisition order.
func (a *application) close(ctx context.Context) {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			a.logger.Warn("close failed", "error", err)
		}
	}
}

// storage bundles the persistence the storefront owns: the outbox, the
// idempotency records and the consumer inbox.
type storage struct {
	outbox      appoutbox.Outbox
	relayStore  infraoutbox.Store
	uow         uow.UoWFactory
	idempotency middleware.IdempotencyStore
	inbox       catalogsync.Inbox
}

func buildApplication(ctx context.Context, cfg config.Config, logger *slog.Logger) (*application, error) {
	app := &application{logger: logger, health: obs.HealthHandlers{Checks: map[string]obs.Check{}}}
	metrics := obs.NewMetrics("hotelfront")

	gate := &security.ReadyGate{URL: cfg.AuthReadyURL, Interval: cfg.AuthPollInterval, Logger: logger}
	tokens := &security.ServiceTokens{Secret: []byte(cfg.AuthJWTSecret), TTL: cfg.ServiceTokenTTL}
	client, err := backend.New(
		backend.Config{BaseURL: cfg.BackendURL, Timeout: cfg.BackendTimeout},
		backend.WithTokenSource(tokens),
		backend.WithGate(gate),
		backend.WithRecorder(metrics),
		backend.WithLogger(logger),
	)
	if err != nil {
		return nil, err
	}
	if cfg.AuthReadyURL != "" {
		app.health.Checks["auth"] = func(context.Context) error {
			if !gate.Ready() {
				return fmt.Errorf("auth provider not ready")
			}
			return nil
		}
		app.background = append(app.background, func(ctx context.Context) error {
			if err := gate.Wait(ctx); err != nil && ctx.Err() == nil {
				return err
			}
			return nil
		})
	}

	var catalog policies.HotelCatalog = client
	var invalidator policies.CatalogInvalidator
	if cfg.RedisAddr != "" {
		rdb, err := cache.NewRedisClient(ctx, cache.RedisConfig{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
		if err != nil {
			return nil, err
		}
		app.onClose(func(context.Context) error { return rdb.Close() })
		app.health.Checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
		cached := cache.NewCatalog(client, rdb, cfg.CacheTTL, logger, metrics)
		catalog, invalidator = cached, cached
		logger.Info("catalog cache enabled", "addr", cfg.RedisAddr)
	}

	var images policies.ImageStore
	if cfg.S3Endpoint != "" {
		store, err := s3.New(s3.Config{
			Endpoint:       cfg.S3Endpoint,
			PublicEndpoint: cfg.S3PublicEndpoint,
			AccessKey:      cfg.S3AccessKey,
			SecretKey:      cfg.S3SecretKey,
			Bucket:         cfg.S3Bucket,
			UseSSL:         cfg.S3UseSSL,
		}, logger)
		if err != nil {
			return nil, err
		}
		images = store
		app.health.Checks["s3"] = store.Ping
	}

	st, err := buildStorage(ctx, cfg, app)
	if err != nil {
		return nil, err
	}

	producer, err := buildProducer(cfg, app)
	if err != nil {
		return nil, err
	}
	hostname, _ := os.Hostname()
	worker := &infraoutbox.Worker{
		Store:       st.relayStore,
		Producer:    producer,
		Interval:    cfg.OutboxPollInterval,
		TopicPrefix: cfg.KafkaTopicPrefix,
		ID:          fmt.Sprintf("%s-%s", hostname, uuid.NewString()[:8]),
		Backoff:     cfg.RetryBackoff,
		MaxAttempts: cfg.OutboxMaxAttempts,
		Logger:      logger,
		Metrics:     metrics,
	}
	app.background = append(app.background, worker.Run)

	if len(cfg.KafkaBrokers) > 0 && invalidator != nil {
		invalidate := &catalogsync.Invalidator{Catalog: invalidator, Inbox: st.inbox, Logger: logger}
		consumer, err := kafka.NewConsumer(cfg.KafkaBrokers, cfg.KafkaGroupID, nil, kafka.Adapt(invalidate), logger)
		if err != nil {
			return nil, fmt.Errorf("kafka consumer: %w", err)
		}
		topics := infraoutbox.Topics(cfg.KafkaTopicPrefix, catalogsync.Topics...)
		app.background = append(app.background, func(ctx context.Context) error { return consumer.Run(ctx, topics) })
		app.onClose(func(context.Context) error { return consumer.Close() })
	}

	encoder := appoutbox.JSONEventEncoder{}
	commandBus := commands.NewInMemoryBus()
	commands.RegisterHandler(commandBus, hotelsapp.CreateHotelCommand{}.Key(), &hotelsapp.CreateHotelHandler{
		Catalog: catalog, Images: images, Outbox: st.outbox, Encoder: encoder,
	})
	commands.RegisterHandler(commandBus, bookingapp.CreateBookingCommand{}.Key(), &bookingapp.CreateBookingHandler{
		Bookings: client, Outbox: st.outbox, Encoder: encoder,
	})
	commands.RegisterHandler(commandBus, bookingapp.BookAndPayCommand{}.Key(), &bookingapp.BookAndPayHandler{
		Bookings: client, Payments: client, Outbox: st.outbox, Encoder: encoder,
	})
	commands.RegisterHandler(commandBus, paymentsapp.CreateCheckoutSessionCommand{}.Key(), &paymentsapp.CreateCheckoutSessionHandler{
		Payments: client, Outbox: st.outbox, Encoder: encoder,
	})
	commands.RegisterHandler(commandBus, reviewsapp.SubmitReviewCommand{}.Key(), &reviewsapp.SubmitReviewHandler{
		Reviews: client, Invalidator: invalidator, Outbox: st.outbox, Encoder: encoder, Logger: logger,
	})

	queryBus := queries.NewInMemoryBus()
	queries.RegisterHandler(queryBus, hotelsapp.ListHotelsQuery{}.Key(), &hotelsapp.ListHotelsHandler{Catalog: catalog, Logger: logger})
	queries.RegisterHandler(queryBus, hotelsapp.SearchHotelsQuery{}.Key(), &hotelsapp.SearchHotelsHandler{Catalog: catalog})
	queries.RegisterHandler(queryBus, hotelsapp.GetHotelQuery{}.Key(), &hotelsapp.GetHotelHandler{Catalog: catalog})
	queries.RegisterHandler(queryBus, hotelsapp.ListLocationsQuery{}.Key(), &hotelsapp.ListLocationsHandler{Catalog: catalog})
	queries.RegisterHandler(queryBus, bookingapp.GetBookingQuery{}.Key(), &bookingapp.GetBookingHandler{Bookings: client})
	queries.RegisterHandler(queryBus, bookingapp.ListUserBookingsQuery{}.Key(), &bookingapp.ListUserBookingsHandler{Bookings: client})
	queries.RegisterHandler(queryBus, paymentsapp.CheckoutStatusQuery{}.Key(), &paymentsapp.CheckoutStatusHandler{Payments: client})

	logger.Info("buses ready", "commands", commandBus.Keys(), "queries", queryBus.Keys())

	commandsWithMiddleware := middleware.ChainCommands(
		commandBus,
		middleware.InstrumentCommands(metrics),
		middleware.RecoverCommands(logger),
		middleware.Authorization(middleware.RoleAuthorizer{}),
		middleware.Validation(middleware.SelfValidator{}),
		middleware.Idempotency(st.idempotency, nil),
		middleware.OutboxFlush(worker),
		middleware.Transaction(st.uow, nil),
	)
	queriesWithMiddleware := middleware.ChainQueries(
		queryBus,
		middleware.InstrumentQueries(metrics),
		middleware.RecoverQueries(logger),
		middleware.QueryAuthorization(middleware.RoleAuthorizer{}),
		middleware.QueryValidation(middleware.SelfValidator{}),
	)

	sessions := session.NewManager(
		session.BusFetcher{Queries: queriesWithMiddleware, BasePath: ginserver.HotelsBasePath},
		session.Config{PageSize: cfg.PageSize, PriceDebounce: cfg.PriceDebounce, FetchTimeout: cfg.BackendTimeout},
		cfg.SessionIdleTTL,
		logger,
		session.WithMetrics(metrics),
	)
	app.background = append(app.background, sessions.Run)

	authService := &auth.Service{Verifier: security.JWTVerifier{Secret: []byte(cfg.AuthJWTSecret)}, Logger: logger}
	app.handlers = ginserver.Handlers{
		Hotels:         ginserver.HotelsHandler{Commands: commandsWithMiddleware, Queries: queriesWithMiddleware, Logger: logger},
		Booking:        ginserver.BookingHandler{Commands: commandsWithMiddleware, Queries: queriesWithMiddleware, Logger: logger},
		Payments:       ginserver.PaymentsHandler{Commands: commandsWithMiddleware, Queries: queriesWithMiddleware, Logger: logger},
		Reviews:        ginserver.ReviewsHandler{Commands: commandsWithMiddleware, Logger: logger},
		Sessions:       ginserver.SessionsHandler{Manager: sessions, Logger: logger},
		AuthMiddleware: ginserver.AuthMiddleware{Service: authService, Logger: logger}.Handle,
		Metrics:        metrics,
	}
	return app, nil
}

// buildStorage uses MongoDB when configured and process memory otherwise.
func buildStorage(ctx context.Context, cfg config.Config, app *application) (storage, error) {
	if cfg.MongoURI == "" {
		box := memory.NewOutbox()
		app.logger.Warn("MONGO_URI not set, outbox and idempotency records live in memory")
		return storage{
			outbox:      box,
			relayStore:  box,
			uow:         memory.Factory{Outbox: box},
			idempotency: memory.NewIdempotencyStore(cfg.IdempotencyTTL),
			inbox:       memory.NewInbox(),
		}, nil
	}
	client, err := mongodb.New(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		return storage{}, err
	}
	app.onClose(client.Close)
	app.health.Checks["mongo"] = client.Ping
	box, err := infraoutbox.NewMongoStore(ctx, client.DB)
	if err != nil {
		return storage{}, err
	}
	idem, err := mongodb.NewIdempotencyStore(ctx, client.DB, cfg.IdempotencyTTL)
	if err != nil {
		return storage{}, err
	}
	seen, err := inbox.NewStore(ctx, client.DB, cfg.KafkaGroupID)
	if err != nil {
		return storage{}, err
	}
	return storage{
		outbox:      box,
		relayStore:  box,
		uow:         mongodb.Factory{DB: client.DB, Outbox: box},
		idempotency: idem,
		inbox:       seen,
	}, nil
}

// buildProducer picks Kafka, then NATS, then a logging relay.
func buildProducer(cfg config.Config, app *application) (infraoutbox.Producer, error) {
	switch {
	case len(cfg.KafkaBrokers) > 0:
		p, err := kafka.NewProducer(cfg.KafkaBrokers, kafka.NewConfig("hotelfront"))
		if err != nil {
			return nil, fmt.Errorf("kafka producer: %w", err)
		}
		app.health.Checks["kafka"] = p.Ping
		app.onClose(func(context.Context) error { return p.Close() })
		return p, nil
	case cfg.NATSURL != "":
		conn, err := natsbroker.Connect(cfg.NATSURL, app.logger)
		if err != nil {
			return nil, err
		}
		p := natsbroker.NewPublisher(conn)
		app.onClose(func(context.Context) error {
			p.Close()
			return nil
		})
		return p, nil
	default:
		app.logger.Warn("no broker configured, outbox events are only logged")
		return infraoutbox.LogProducer{Logger: app.logger}, nil
	}
}
