package cmd

import (
	"log/slog"

	apihttp "ecodeli/internal/adapters/in/http"
	"ecodeli/internal/adapters/out/geocoding"
	"ecodeli/internal/adapters/out/postgres"
	"ecodeli/internal/core/application/events"
	"ecodeli/internal/core/application/usecases/commands"
	"ecodeli/internal/core/application/usecases/queries"
	"ecodeli/internal/core/ports"
	"ecodeli/internal/jobs"
	"ecodeli/internal/metrics"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"gorm.io/gorm"
)

// Sink receives the broadcasts and notifications of committed changes.
type Sink interface {
	ports.Broadcaster
	ports.Notifier
}

type CompositionRoot struct {
	cfg        Config
	gormDB     *gorm.DB
	uowFactory *postgres.GormUnitOfWorkFactory
	publisher  *events.Dispatcher
	geocoder   ports.Geocoder
	registry   *prometheus.Registry
	recorder   *metrics.Recorder
	logger     *slog.Logger
}

func NewCompositionRoot(cfg Config, gormDB *gorm.DB, sink Sink, logger *slog.Logger) (*CompositionRoot, error) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	recorder, err := metrics.NewRecorder(registry)
	if err != nil {
		return nil, err
	}

	return &CompositionRoot{
		cfg:        cfg,
		gormDB:     gormDB,
		uowFactory: postgres.NewGormUnitOfWorkFactory(gormDB),
		publisher:  events.NewDispatcher(sink, sink, recorder, logger),
		geocoder:   geocoding.NewCoordinateGeocoder(),
		registry:   registry,
		recorder:   recorder,
		logger:     logger,
	}, nil
}

func (c *CompositionRoot) trackingFactory() commands.TrackingUoWFactory {
	return FuncTrackingUoWFactory(func() commands.TrackingUoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) delivererFactory() commands.DelivererUoWFactory {
	return FuncDelivererUoWFactory(func() commands.DelivererUoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) announcementFactory() commands.AnnouncementUoWFactory {
	return FuncAnnouncementUoWFactory(func() commands.AnnouncementUoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) factory() commands.UoWFactory {
	return FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) CreateTransitionStatusCommandHandler() commands.TransitionStatusCommandHandler {
	return commands.NewTransitionStatusCommandHandler(c.trackingFactory(), c.publisher, c.geocoder)
}

func (c *CompositionRoot) CreateIngestLocationCommandHandler() commands.IngestLocationCommandHandler {
	return commands.NewIngestLocationCommandHandler(c.trackingFactory(), c.publisher, c.geocoder)
}

func (c *CompositionRoot) CreateRecalculateETACommandHandler() commands.RecalculateETACommandHandler {
	return commands.NewRecalculateETACommandHandler(c.trackingFactory(), c.publisher, c.geocoder)
}

func (c *CompositionRoot) CreateRefreshActiveETAsCommandHandler() commands.RefreshActiveETAsCommandHandler {
	return commands.NewRefreshActiveETAsCommandHandler(c.trackingFactory(), c.CreateRecalculateETACommandHandler())
}

func (c *CompositionRoot) CreateCreateCheckpointCommandHandler() commands.CreateCheckpointCommandHandler {
	return commands.NewCreateCheckpointCommandHandler(c.trackingFactory(), c.publisher, c.geocoder)
}

func (c *CompositionRoot) CreateGenerateConfirmationCodeCommandHandler() commands.GenerateConfirmationCodeCommandHandler {
	return commands.NewGenerateConfirmationCodeCommandHandler(c.trackingFactory(), c.publisher, c.cfg.ConfirmationCodeTTL)
}

func (c *CompositionRoot) CreateConfirmDeliveryCommandHandler() commands.ConfirmDeliveryCommandHandler {
	return commands.NewConfirmDeliveryCommandHandler(c.trackingFactory(), c.publisher, c.geocoder)
}

func (c *CompositionRoot) CreateRateDeliveryCommandHandler() commands.RateDeliveryCommandHandler {
	return commands.NewRateDeliveryCommandHandler(c.factory())
}

func (c *CompositionRoot) CreateCreateAnnouncementCommandHandler() commands.CreateAnnouncementCommandHandler {
	return commands.NewCreateAnnouncementCommandHandler(c.announcementFactory(), c.geocoder)
}

func (c *CompositionRoot) CreateCancelAnnouncementCommandHandler() commands.CancelAnnouncementCommandHandler {
	return commands.NewCancelAnnouncementCommandHandler(c.announcementFactory())
}

func (c *CompositionRoot) CreateScoreMatchCommandHandler() commands.ScoreMatchCommandHandler {
	return commands.NewScoreMatchCommandHandler(c.factory(), c.publisher)
}

func (c *CompositionRoot) CreateFindBestMatchesCommandHandler() commands.FindBestMatchesCommandHandler {
	return commands.NewFindBestMatchesCommandHandler(c.factory(), c.publisher)
}

func (c *CompositionRoot) CreateMatchOpenAnnouncementsCommandHandler() commands.MatchOpenAnnouncementsCommandHandler {
	return commands.NewMatchOpenAnnouncementsCommandHandler(
		c.announcementFactory(), c.CreateFindBestMatchesCommandHandler(), c.cfg.MatchingLimit)
}

func (c *CompositionRoot) CreateRespondToMatchCommandHandler() commands.RespondToMatchCommandHandler {
	return commands.NewRespondToMatchCommandHandler(c.factory(), c.publisher, c.geocoder)
}

func (c *CompositionRoot) CreateRegisterDelivererCommandHandler() commands.RegisterDelivererCommandHandler {
	return commands.NewRegisterDelivererCommandHandler(c.delivererFactory())
}

func (c *CompositionRoot) CreateUpdateDelivererProfileCommandHandler() commands.UpdateDelivererProfileCommandHandler {
	return commands.NewUpdateDelivererProfileCommandHandler(c.delivererFactory())
}

func (c *CompositionRoot) CreateGetDeliveryTrackingQueryHandler() queries.GetDeliveryTrackingQueryHandler {
	return queries.NewGetDeliveryTrackingQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetStatusHistoryQueryHandler() queries.GetStatusHistoryQueryHandler {
	return queries.NewGetStatusHistoryQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetPositionHistoryQueryHandler() queries.GetPositionHistoryQueryHandler {
	return queries.NewGetPositionHistoryQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetActiveDeliveriesQueryHandler() queries.GetActiveDeliveriesQueryHandler {
	return queries.NewGetActiveDeliveriesQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetMatchCandidatesQueryHandler() queries.GetMatchCandidatesQueryHandler {
	return queries.NewGetMatchCandidatesQueryHandler(c.gormDB)
}

// CreateEcho wires every use case into the HTTP router.
func (c *CompositionRoot) CreateEcho() *echo.Echo {
	server := apihttp.NewServer(apihttp.Handlers{
		TransitionStatus:         c.CreateTransitionStatusCommandHandler(),
		IngestLocation:           c.CreateIngestLocationCommandHandler(),
		RecalculateETA:           c.CreateRecalculateETACommandHandler(),
		CreateCheckpoint:         c.CreateCreateCheckpointCommandHandler(),
		GenerateConfirmationCode: c.CreateGenerateConfirmationCodeCommandHandler(),
		ConfirmDelivery:          c.CreateConfirmDeliveryCommandHandler(),
		RateDelivery:             c.CreateRateDeliveryCommandHandler(),
		CreateAnnouncement:       c.CreateCreateAnnouncementCommandHandler(),
		CancelAnnouncement:       c.CreateCancelAnnouncementCommandHandler(),
		ScoreMatch:               c.CreateScoreMatchCommandHandler(),
		FindBestMatches:          c.CreateFindBestMatchesCommandHandler(),
		RespondToMatch:           c.CreateRespondToMatchCommandHandler(),
		RegisterDeliverer:        c.CreateRegisterDelivererCommandHandler(),
		UpdateDelivererProfile:   c.CreateUpdateDelivererProfileCommandHandler(),

		GetDeliveryTracking: c.CreateGetDeliveryTrackingQueryHandler(),
		GetStatusHistory:    c.CreateGetStatusHistoryQueryHandler(),
		GetPositionHistory:  c.CreateGetPositionHistoryQueryHandler(),
		GetActiveDeliveries: c.CreateGetActiveDeliveriesQueryHandler(),
		GetMatchCandidates:  c.CreateGetMatchCandidatesQueryHandler(),
	})

	return apihttp.NewEcho(server, apihttp.Options{
		Logger:         c.logger,
		Gatherer:       c.registry,
		PingsPerSecond: c.cfg.RateLimitPerSecond,
		RateLimited:    c.recorder,
	})
}

func (c *CompositionRoot) CreateJobManager() *jobs.JobManager {
	return jobs.NewJobManager(
		c.CreateRefreshActiveETAsCommandHandler(),
		c.CreateMatchOpenAnnouncementsCommandHandler(),
		jobs.Schedules{ETARefresh: c.cfg.ETARefreshSchedule, Matching: c.cfg.MatchingSchedule},
		c.logger,
	)
}

type FuncTrackingUoWFactory func() commands.TrackingUoW

func (f FuncTrackingUoWFactory) Create() commands.TrackingUoW {
	return f()
}

type FuncDelivererUoWFactory func() commands.DelivererUoW

func (f FuncDelivererUoWFactory) Create() commands.DelivererUoW {
	return f()
}

type FuncAnnouncementUoWFactory func() commands.AnnouncementUoW

func (f FuncAnnouncementUoWFactory) Create() commands.AnnouncementUoW {
	return f()
}

type FuncUoWFactory func() commands.UoW

func (f FuncUoWFactory) Create() commands.UoW {
	return f()
}
