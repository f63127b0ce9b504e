package main

import (
	"context"
	"time"

	bookingshandler "agenda/internal/bookings/handler"
	bookingsrepo "agenda/internal/bookings/repository"
	bookingsservice "agenda/internal/bookings/service"
	"agenda/internal/bookings/events"
	"agenda/internal/bookings/validator"
	cataloghandler "agenda/internal/catalog/handler"
	catalogrepo "agenda/internal/catalog/repository"
	catalogservice "agenda/internal/catalog/service"
	clientsrepo "agenda/internal/clients/repository"
	clientsservice "agenda/internal/clients/service"
	"agenda/internal/health"
	"agenda/internal/scheduling"
	"agenda/internal/store/memory"
	mongostore "agenda/internal/store/mongo"
	pgstore "agenda/internal/store/postgres"
	"agenda/pkg/app"
	"agenda/pkg/config"
	"agenda/pkg/contracts"
	"agenda/pkg/kafka"
	kafka_config "agenda/pkg/kafka/config"
	kafkamw "agenda/pkg/kafka/middleware"
	"agenda/pkg/metrics"
	"agenda/pkg/model"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const ServiceName = "bookings"

// store is what every backend provides.
type store interface {
	contracts.Pinger
	bookingsrepo.BookingRepository
	catalogrepo.CatalogRepository
	clientsrepo.ClientRepository
}

func main() {
	cfg := config.Load(ServiceName)
	cfg.Log.Info("Starting Bookings service")

	cfg.SetStore()
	cfg.SetRedis()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	st := initStore(cfg)
	serverApp := app.NewApplication(cfg)
	dispatcher := initPublisher(cfg, reg, serverApp)

	catalogService := catalogservice.NewCatalogService(st, cfg.Log)
	clientService := clientsservice.NewClientService(st, cfg.DefaultPhoneRegion, cfg.Log)
	bookingService := initBookingService(cfg, st, catalogService, clientService, dispatcher, reg)

	checks := []health.Check{{Name: cfg.StoreDriver, Ping: st.Ping}}
	if cfg.Client.Redis != nil {
		rdb := cfg.Client.Redis
		checks = append(checks, health.Check{Name: "redis", Ping: func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		}})
	}

	serverApp.SetApp(
		health.NewHealthHandler(cfg.Log, checks...),
		metrics.Handler(reg),
		metrics.NewHTTPMetrics(reg),
		bookingshandler.NewBookingHandler(bookingService, cfg.Log),
		cataloghandler.NewCatalogHandler(catalogService, cfg.Log),
	)
	serverApp.Run()
}

func initStore(cfg *config.Config) store {
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		cfg.Log.Info("Using Postgres store")
		return pgstore.New(cfg.Client.Postgres)
	case config.DriverMongo:
		cfg.Log.Info("Using Mongo store", "database", cfg.MongoDatabaseName)
		return mongostore.New(cfg.Client.Mongo.Database(cfg.MongoDatabaseName), cfg.WriteTimeout)
	default:
		cfg.Log.Warn("Using in-memory store; bookings are lost on restart")
		s := memory.New()
		s.Seed(demoServices, demoStaff)
		return s
	}
}

func initPublisher(cfg *config.Config, reg prometheus.Registerer, serverApp *app.Application) *events.Dispatcher {
	if !cfg.KafkaEnabled {
		return events.NewDispatcher(events.NewNoopPublisher(), cfg.EventPublishTimeout, cfg.Log)
	}

	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	kafkaCfg.LogConfiguration(cfg.Log)

	producer, err := kafka.NewProducer(kafkaCfg, cfg.KafkaBookingsTopic, cfg.KafkaBookingsDLQTopic, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}
	if kafkaCfg.EnableMiddleware {
		producer.Use(kafkamw.LoggingProducerMiddleware(cfg.Log))
		producer.Use(kafkamw.MetricsProducerMiddleware(metrics.NewKafkaMetrics(reg)))
	}
	dispatcher := events.NewDispatcher(
		events.NewKafkaPublisher(producer, ServiceName),
		cfg.EventPublishTimeout,
		cfg.Log,
	)
	serverApp.OnShutdown(func() {
		dispatcher.Wait()
		if err := producer.Close(); err != nil {
			cfg.Log.Error("Failed to close Kafka producer", "error", err)
		}
	})

	cfg.Log.Info("Booking events enabled", "topic", producer.Topic())
	return dispatcher
}

func initBookingService(
	cfg *config.Config,
	repo bookingsrepo.BookingRepository,
	catalog catalogservice.CatalogService,
	clients clientsservice.ClientService,
	dispatcher *events.Dispatcher,
	reg prometheus.Registerer,
) bookingsservice.BookingService {
	hours, err := scheduling.ParseWorkingHours(cfg.WorkdayStart, cfg.WorkdayEnd)
	if err != nil {
		cfg.Log.Fatal("Invalid working hours", "error", err)
	}

	bookingService := bookingsservice.NewBookingService(
		repo,
		catalog,
		clients,
		validator.NewBookingValidator(cfg.Log),
		dispatcher,
		metrics.NewBookingMetrics(reg),
		bookingsservice.Options{
			Hours:         hours,
			Step:          time.Duration(cfg.SlotStepMin) * time.Minute,
			InitialStatus: model.BookingStatus(cfg.BookingInitialStatus),
		},
		cfg.Log,
	)

	cfg.Log.Info("Booking service initialized", "store", cfg.StoreDriver)
	return bookingService
}

var demoServices = []model.Service{
	{ID: "5f0c6a8e-1b2d-4c3e-8f4a-6b7c8d9e0a11", Name: "Haircut", Category: "hair", DurationMin: 30, Price: 120, Active: true},
	{ID: "5f0c6a8e-1b2d-4c3e-8f4a-6b7c8d9e0a12", Name: "Color", Category: "hair", DurationMin: 90, Price: 350, Active: true},
	{ID: "5f0c6a8e-1b2d-4c3e-8f4a-6b7c8d9e0a13", Name: "Manicure", Category: "nails", DurationMin: 45, Price: 90, Active: true},
}

var demoStaff = []model.StaffMember{
	{ID: "9b1e2d3c-4a5b-4c6d-8e7f-0a1b2c3d4e01", Name: "Avi", Role: "stylist", Active: true},
	{ID: "9b1e2d3c-4a5b-4c6d-8e7f-0a1b2c3d4e02", Name: "Noa", Role: "colorist", Active: true},
}
