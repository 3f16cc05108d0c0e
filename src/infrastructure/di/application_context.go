package di

import (
	"errors"
	"fmt"

	campaignUseCase "restaurant-crm-api/src/application/usecases/campaign"
	draftUseCase "restaurant-crm-api/src/application/usecases/draft"
	mediaUseCase "restaurant-crm-api/src/application/usecases/media"
	messageUseCase "restaurant-crm-api/src/application/usecases/message"
	restaurantUseCase "restaurant-crm-api/src/application/usecases/restaurant"
	"restaurant-crm-api/src/domain/channel"
	"restaurant-crm-api/src/domain/common"
	"restaurant-crm-api/src/infrastructure/ai"
	"restaurant-crm-api/src/infrastructure/alerting"
	"restaurant-crm-api/src/infrastructure/config"
	"restaurant-crm-api/src/infrastructure/helper"
	logger "restaurant-crm-api/src/infrastructure/logger"
	"restaurant-crm-api/src/infrastructure/messaging"
	"restaurant-crm-api/src/infrastructure/queue"
	"restaurant-crm-api/src/infrastructure/repository/database"
	campaignRepo "restaurant-crm-api/src/infrastructure/repository/database/campaign"
	"restaurant-crm-api/src/infrastructure/repository/database/crm"
	"restaurant-crm-api/src/infrastructure/repository/evolution"
	"restaurant-crm-api/src/infrastructure/repository/memory"
	campaignController "restaurant-crm-api/src/infrastructure/rest/controllers/campaign"
	draftController "restaurant-crm-api/src/infrastructure/rest/controllers/draft"
	mediaController "restaurant-crm-api/src/infrastructure/rest/controllers/media"
	restaurantController "restaurant-crm-api/src/infrastructure/rest/controllers/restaurant"
	schedulerController "restaurant-crm-api/src/infrastructure/rest/controllers/scheduler"
	sendController "restaurant-crm-api/src/infrastructure/rest/controllers/send"
	"restaurant-crm-api/src/infrastructure/rest/middlewares"
	"restaurant-crm-api/src/infrastructure/storage"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Repositories groups the persistence ports so the gorm and in-memory
// backends can be swapped as one unit.
type Repositories struct {
	Restaurants crm.RestaurantRepositoryInterface
	Customers   crm.CustomerRepositoryInterface
	MessageLog  crm.MessageLogRepositoryInterface
	Media       crm.MediaRepositoryInterface
	Campaigns   campaignRepo.CampaignRepositoryInterface
}

func GormRepositories(db *gorm.DB, loggerInstance *logger.Logger) *Repositories {
	return &Repositories{
		Restaurants: crm.NewRestaurantRepository(db, loggerInstance),
		Customers:   crm.NewCustomerRepository(db, loggerInstance),
		MessageLog:  crm.NewMessageLogRepository(db, loggerInstance),
		Media:       crm.NewMediaRepository(db, loggerInstance),
		Campaigns:   campaignRepo.NewCampaignRepository(db, loggerInstance),
	}
}

func MemoryRepositories(store *memory.Store) *Repositories {
	return &Repositories{
		Restaurants: memory.NewRestaurantRepository(store),
		Customers:   memory.NewCustomerRepository(store),
		MessageLog:  memory.NewMessageLogRepository(store),
		Media:       memory.NewMediaRepository(store),
		Campaigns:   memory.NewCampaignRepository(store),
	}
}

// ApplicationContext holds all application dependencies and services
type ApplicationContext struct {
	Config       *config.Config
	DB           *gorm.DB
	Logger       *logger.Logger
	Repositories *Repositories
	WakeQueue    queue.WakeQueueInterface
	Storage      *storage.LocalStorage

	CommonService common.CommonService
	Sender        messaging.ChannelSenderInterface
	Processor     *messaging.CampaignProcessor

	CampaignUseCase   campaignUseCase.ICampaignUseCase
	MessageUseCase    messageUseCase.IMessageUseCase
	MediaUseCase      mediaUseCase.IMediaUseCase
	DraftUseCase      draftUseCase.IDraftUseCase
	RestaurantUseCase restaurantUseCase.IRestaurantUseCase

	AuthMiddleware       gin.HandlerFunc
	SchedulerMiddleware  gin.HandlerFunc
	CampaignController   campaignController.ICampaignController
	SendController       sendController.ISendController
	SchedulerController  schedulerController.ISchedulerController
	MediaController      mediaController.IMediaController
	DraftController      draftController.IDraftController
	RestaurantController restaurantController.IRestaurantController
}

// SetupDependencies opens the configured backends and wires every component.
func SetupDependencies(cfg *config.Config, loggerInstance *logger.Logger) (*ApplicationContext, error) {
	var (
		db    *gorm.DB
		repos *Repositories
	)
	if cfg.Database.Driver == config.DriverMemory {
		loggerInstance.Warn("Using the in-memory store; data is lost on restart")
		repos = MemoryRepositories(memory.NewStore())
	} else {
		var err error
		db, err = database.InitDB(cfg.Database, loggerInstance)
		if err != nil {
			return nil, err
		}
		repos = GormRepositories(db, loggerInstance)
	}

	var wakeQueue queue.WakeQueueInterface
	if cfg.Redis.URL != "" {
		q, err := queue.NewRedisWakeQueue(cfg.Redis.URL, cfg.Redis.QueueKey, loggerInstance)
		if err != nil {
			closeDB(db, loggerInstance)
			return nil, fmt.Errorf("connecting to redis: %w", err)
		}
		wakeQueue = q
	} else {
		loggerInstance.Info("REDIS_URL not set; the worker relies on its ticker only")
	}

	gateway := evolution.NewClient(cfg.Gateway.BaseURL, cfg.Gateway.Token, cfg.Gateway.Timeout.Duration, loggerInstance)
	appContext := NewApplicationContext(cfg, repos, gateway, wakeQueue, loggerInstance)
	appContext.DB = db
	return appContext, nil
}

// NewApplicationContext wires use cases and controllers over already opened backends.
func NewApplicationContext(
	cfg *config.Config,
	repos *Repositories,
	gateway channel.Gateway,
	wakeQueue queue.WakeQueueInterface,
	loggerInstance *logger.Logger,
) *ApplicationContext {
	validator := helper.NewValidator(loggerInstance)
	commonService := common.NewCommonService(validator)

	var notifier messaging.CompletionNotifier
	if cfg.Alerting.Enabled {
		notifier = alerting.NewCampaignNotifier(
			alerting.NewWebhookConfig(cfg.Alerting.WebhookURL, cfg.Alerting.MinFailed),
			loggerInstance,
		)
	}

	sender := messaging.NewChannelSender(gateway, repos.Customers, repos.Restaurants, repos.MessageLog, cfg.Gateway.Instance, loggerInstance)
	processor := messaging.NewCampaignProcessor(repos.Campaigns, sender, notifier, messaging.Options{
		Interval:    cfg.Processor.Interval.Duration,
		Budget:      cfg.Processor.Budget.Duration,
		StaleAfter:  cfg.Processor.StaleAfter.Duration,
		Concurrency: cfg.Processor.Concurrency,
		BatchSize:   cfg.Processor.BatchSize,
	}, loggerInstance)

	var waker campaignUseCase.Waker
	if wakeQueue != nil {
		waker = wakeQueue
	}
	mediaStorage := storage.NewLocalStorage(cfg.Media.Root, cfg.Media.PublicBaseURL, loggerInstance)
	aiClient := ai.NewClient(cfg.AI.BaseURL, cfg.AI.APIKey, cfg.AI.Model, cfg.AI.Timeout.Duration, loggerInstance)

	campaignUC := campaignUseCase.NewCampaignUseCase(repos.Campaigns, repos.Customers, waker, loggerInstance)
	messageUC := messageUseCase.NewMessageUseCase(sender, repos.MessageLog, loggerInstance)
	mediaUC := mediaUseCase.NewMediaUseCase(repos.Media, mediaStorage, cfg.Media.MaxBytes, loggerInstance)
	draftUC := draftUseCase.NewDraftUseCase(aiClient, loggerInstance)
	restaurantUC := restaurantUseCase.NewRestaurantUseCase(repos.Restaurants, loggerInstance)

	return &ApplicationContext{
		Config:       cfg,
		Logger:       loggerInstance,
		Repositories: repos,
		WakeQueue:    wakeQueue,
		Storage:      mediaStorage,

		CommonService: commonService,
		Sender:        sender,
		Processor:     processor,

		CampaignUseCase:   campaignUC,
		MessageUseCase:    messageUC,
		MediaUseCase:      mediaUC,
		DraftUseCase:      draftUC,
		RestaurantUseCase: restaurantUC,

		AuthMiddleware:       middlewares.AuthJWTMiddleware(cfg.Server.JWTSecret, repos.Restaurants, loggerInstance),
		SchedulerMiddleware:  middlewares.SchedulerTokenMiddleware(cfg.Server.SchedulerToken),
		CampaignController:   campaignController.NewCampaignController(commonService, campaignUC, loggerInstance),
		SendController:       sendController.NewSendController(commonService, messageUC, loggerInstance),
		SchedulerController:  schedulerController.NewSchedulerController(processor, loggerInstance),
		MediaController:      mediaController.NewMediaController(mediaUC, cfg.Media.MaxBytes, loggerInstance),
		DraftController:      draftController.NewDraftController(commonService, draftUC, loggerInstance),
		RestaurantController: restaurantController.NewRestaurantController(restaurantUC, loggerInstance),
	}
}

// Close releases the database pool and the Redis client.
func (a *ApplicationContext) Close() error {
	var errs []error
	if a.WakeQueue != nil {
		if err := a.WakeQueue.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if a.DB != nil {
		sqlDB, err := a.DB.DB()
		if err == nil {
			err = sqlDB.Close()
		}
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func closeDB(db *gorm.DB, loggerInstance *logger.Logger) {
	if db == nil {
		return
	}
	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			loggerInstance.Warn("Error closing database", zap.Error(err))
		}
	}
}
