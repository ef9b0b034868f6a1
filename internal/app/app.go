package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/alexedwards/scs/goredisstore"
	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"

	"github.com/netcinema/booking/internal/booking"
	"github.com/netcinema/booking/internal/domain"
	"github.com/netcinema/booking/internal/mailer"
	"github.com/netcinema/booking/internal/notifier"
	"github.com/netcinema/booking/internal/repository"
	appvalidator "github.com/netcinema/booking/internal/validator"
	"github.com/netcinema/booking/internal/vcs"
)

var (
	version = vcs.Version()
)

type application struct {
	config         config
	logger         *slog.Logger
	db             *pgxpool.Pool
	redis          redis.UniversalClient
	validator      *validator.Validate
	mailer         mailer.Mailer
	sessionManager *scs.SessionManager
	engine         *booking.Engine
	clock          domain.Clock
	wg             sync.WaitGroup
}

type config struct {
	port int
	env  string
	db   struct {
		dsn          string
		maxOpenConns int
		maxIdleTime  time.Duration
	}
	redis struct {
		url          string
		maxOpenConns int
		maxIdleConns int
		maxIdleTime  time.Duration
	}
	smtp struct {
		host     string
		port     int
		username string
		password string
		sender   string
	}
	amqp struct {
		url      string
		exchange string
	}
	booking struct {
		holdTTL       time.Duration
		sweepInterval time.Duration
	}
	events struct {
		redisChannel string
	}
}

func Run() error {
	// Flags take their defaults from the environment in dev; missing .env is fine.
	_ = godotenv.Load()

	var cfg config

	flag.IntVar(&cfg.port, "port", 3000, "server port")
	flag.StringVar(&cfg.env, "env", "dev", "Environment (dev|staging|prod)")

	flag.StringVar(&cfg.db.dsn, "db-dsn", os.Getenv("BOOKING_DB_DSN"), "PostgreSQL DSN")
	flag.IntVar(&cfg.db.maxOpenConns, "db-max-open-conns", 25, "PostgreSQL max open connections")
	flag.DurationVar(&cfg.db.maxIdleTime, "db-max-idle-time", 15*time.Minute, "PostgreSQL max idle time for connections")

	flag.StringVar(&cfg.redis.url, "redis-url", os.Getenv("BOOKING_REDIS_URL"), "Redis URL")
	flag.IntVar(&cfg.redis.maxOpenConns, "redis-max-open-conns", 25, "Redis max open connections")
	flag.IntVar(&cfg.redis.maxIdleConns, "redis-max-idle-conns", 10, "Redis max idle connections")
	flag.DurationVar(&cfg.redis.maxIdleTime, "redis-max-idle-time", 2*time.Minute, "Redis max idle time for connections")

	flag.StringVar(&cfg.smtp.host, "smtp-host", "sandbox.smtp.mailtrap.io", "SMTP host")
	flag.IntVar(&cfg.smtp.port, "smtp-port", 2525, "SMTP port")
	flag.StringVar(&cfg.smtp.username, "smtp-username", "", "SMTP username")
	flag.StringVar(&cfg.smtp.password, "smtp-password", "", "SMTP password")
	flag.StringVar(&cfg.smtp.sender, "smtp-sender", "NetCinema <no-reply@netcinema.example>", "SMTP sender")

	flag.StringVar(&cfg.amqp.url, "amqp-url", os.Getenv("BOOKING_AMQP_URL"), "RabbitMQ URL (empty: publish events on Redis pub/sub)")
	flag.StringVar(&cfg.amqp.exchange, "amqp-exchange", "booking.events", "RabbitMQ exchange for booking events")
	flag.StringVar(&cfg.events.redisChannel, "events-redis-channel", "booking:events", "Redis pub/sub channel for booking events")

	flag.DurationVar(&cfg.booking.holdTTL, "hold-ttl", booking.DefaultHoldTTL, "How long a seat hold stays valid without confirmation")
	flag.DurationVar(&cfg.booking.sweepInterval, "sweep-interval", booking.DefaultSweepInterval, "How often expired holds are released")

	displayVersion := flag.Bool("version", false, "Display version and exit")

	flag.Parse()

	if *displayVersion {
		fmt.Printf("Version:\t%s\n", version)
		os.Exit(0)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	validator := appvalidator.NewValidator()

	db, err := newDatabasePool(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	redisClient, err := newRedisClient(cfg)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	reservationRepo := repository.NewPostgresReservationRepository(db)
	screeningRepo := repository.NewPostgresScreeningRepository(db)

	publisher, closePublisher, err := newPublisher(cfg, redisClient)
	if err != nil {
		return err
	}
	defer closePublisher()

	clock := booking.SystemClock()
	engine := booking.NewEngine(reservationRepo, screeningRepo, publisher, clock, logger, cfg.booking.holdTTL)
	sweeper := booking.NewSweeper(engine, clock, logger, cfg.booking.sweepInterval)

	app := &application{
		config:         cfg,
		logger:         logger,
		db:             db,
		redis:          redisClient,
		validator:      validator,
		mailer:         mailer.NewSMTPMailer(cfg.smtp.host, cfg.smtp.port, cfg.smtp.username, cfg.smtp.password, cfg.smtp.sender),
		sessionManager: newSessionManager(redisClient),
		engine:         engine,
		clock:          clock,
	}

	return app.run(sweeper)
}

func newSessionManager(client *redis.Client) *scs.SessionManager {
	sessionManager := scs.New()

	sessionManager.Store = goredisstore.New(client)
	sessionManager.IdleTimeout = 20 * time.Minute
	sessionManager.Cookie.Name = "session_id"

	return sessionManager
}

func newRedisClient(cfg config) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:            cfg.redis.url,
		MaxIdleConns:    cfg.redis.maxIdleConns,
		MaxActiveConns:  cfg.redis.maxOpenConns,
		ConnMaxIdleTime: cfg.redis.maxIdleTime,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	err := rdb.Ping(ctx).Err()
	if err != nil {
		return nil, err
	}

	return rdb, nil
}

func newDatabasePool(cfg config) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(cfg.db.dsn)
	if err != nil {
		return nil, err
	}

	config.MaxConnIdleTime = cfg.db.maxIdleTime
	config.MaxConns = int32(cfg.db.maxOpenConns)

	db, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	err = db.Ping(ctx)
	if err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

func newPublisher(cfg config, redisClient redis.UniversalClient) (domain.NotificationPublisher, func(), error) {
	if cfg.amqp.url == "" {
		return notifier.NewRedisPublisher(redisClient, cfg.events.redisChannel), func() {}, nil
	}

	conn, err := amqp.Dial(cfg.amqp.url)
	if err != nil {
		return nil, nil, err
	}

	publisher, err := notifier.NewRabbitPublisher(conn, cfg.amqp.exchange)
	if err != nil {
		conn.Close()
		return nil, nil, err
	}

	closeFn := func() {
		publisher.Close()
		conn.Close()
	}

	return publisher, closeFn, nil
}

func (app *application) run(sweeper *booking.Sweeper) error {
	srv := &http.Server{
		Addr:         fmt.Sprintf("0.0.0.0:%d", app.config.port),
		Handler:      app.routes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		ErrorLog:     slog.NewLogLogger(app.logger.Handler(), slog.LevelDebug),
	}

	sweepCtx, stopSweeper := context.WithCancel(context.Background())
	defer stopSweeper()

	go sweeper.Run(sweepCtx)

	shutdownError := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		app.logger.Info("shutting down server", "signal", s.String())

		stopSweeper()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		err := srv.Shutdown(ctx)
		if err != nil {
			shutdownError <- err
		}

		app.logger.Info("completing background tasks", "addr", srv.Addr)
		app.wg.Wait()

		shutdownError <- nil
	}()

	app.logger.Info("starting server", "addr", srv.Addr, "env", app.config.env)

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	err = <-shutdownError
	if err != nil {
		return err
	}

	app.logger.Info("stopped server", "addr", srv.Addr)

	return nil
}

func (app *application) routes() http.Handler {
	r := chi.NewRouter()

	r.NotFound(app.notFoundResponse)

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(app.requestLogger)
	r.Use(app.recoverPanic)
	r.Use(app.sessionManager.LoadAndSave)
	r.Use(app.ensureGuestUserSession)

	r.Get("/health", app.GetHealth)

	r.Route("/screenings/{screeningID}", func(r chi.Router) {
		r.Get("/seats", app.GetSeatMapByScreening)
		r.Post("/holds", app.CreateHoldHandler)
	})

	r.Route("/reservations", func(r chi.Router) {
		r.Get("/", app.ListReservationsHandler)
		r.Get("/code/{code}", app.GetReservationByCodeHandler)

		r.Route("/{reservationID}", func(r chi.Router) {
			r.Get("/", app.GetReservationHandler)
			r.Post("/confirmation", app.ConfirmReservationHandler)
			r.Delete("/", app.CancelReservationHandler)
		})
	})

	return r
}
