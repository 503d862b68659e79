package main

import (
	"context"
	"net/http"
	_ "time/tzdata"

	"github.com/gorilla/mux"
	cron "github.com/robfig/cron/v3"
	"github.com/rs/cors"

	"github.com/ips-ux/maintenance-manager/internal/app"
	"github.com/ips-ux/maintenance-manager/internal/config"
	"github.com/ips-ux/maintenance-manager/internal/constants"
	"github.com/ips-ux/maintenance-manager/internal/controllers"
	"github.com/ips-ux/maintenance-manager/internal/middleware"
	"github.com/ips-ux/maintenance-manager/internal/repositories"
	"github.com/ips-ux/maintenance-manager/internal/routes"
	"github.com/ips-ux/maintenance-manager/internal/services"
	"github.com/ips-ux/maintenance-manager/internal/utils"
)

func main() {
	utils.InitLogger(constants.AppName)
	cfg := config.LoadConfig()

	application, err := app.NewApp(cfg)
	if err != nil {
		utils.Logger.Fatal("Failed to initialize maintenance-manager:", err)
	}
	defer application.Close()

	unitRepo := repositories.NewUnitRepository(application.DB)
	turnRepo := repositories.NewTurnRepository(application.DB)
	activityRepo := repositories.NewActivityRepository(application.DB)
	eventRepo := repositories.NewCalendarEventRepository(application.DB)
	vendorRepo := repositories.NewVendorRepository(application.DB)
	userRepo := repositories.NewUserRepository(application.DB)

	activityService := services.NewActivityService(activityRepo)
	turnService := services.NewTurnService(turnRepo, unitRepo, userRepo, activityService)
	unitService := services.NewUnitService(unitRepo, activityService)
	calendarService := services.NewCalendarService(eventRepo, activityService)
	vendorService := services.NewVendorService(vendorRepo)
	userService := services.NewUserService(userRepo, activityService)
	escalationService := services.NewTurnEscalationService(cfg, turnRepo, userRepo, activityService)
	maintenanceService := services.NewMaintenanceService(turnService, unitService, activityService)

	if cfg.LDFlag_SeedDbWithTestData {
		if err := app.SeedAllTestData(
			context.Background(),
			unitRepo,
			vendorRepo,
			userRepo,
			turnService,
		); err != nil {
			utils.Logger.WithError(err).Fatal("Failed to seed test data")
		} else {
			utils.Logger.Info("Seeded test data successfully")
		}
	}

	healthController := controllers.NewHealthController(application)
	turnsController := controllers.NewTurnsController(turnService)
	unitsController := controllers.NewUnitsController(unitService, turnService)
	activitiesController := controllers.NewActivitiesController(activityService)
	calendarController := controllers.NewCalendarController(calendarService)
	vendorsController := controllers.NewVendorsController(vendorService)
	usersController := controllers.NewUsersController(userService)

	router := mux.NewRouter()

	// Public
	router.HandleFunc(routes.Health, healthController.HealthCheckHandler).Methods(http.MethodGet)

	secured := router.NewRoute().Subrouter()
	secured.Use(middleware.AuthMiddleware(cfg.RSAPublicKey))

	secured.HandleFunc(routes.TurnsRecalculate, turnsController.RecalculateProgressHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.TurnsBase, turnsController.CreateTurnHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.TurnsBase, turnsController.ListTurnsHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.TurnByID, turnsController.GetTurnHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.TurnByID, turnsController.UpdateTurnHandler).Methods(http.MethodPatch)
	secured.HandleFunc(routes.TurnByID, turnsController.DeleteTurnHandler).Methods(http.MethodDelete)
	secured.HandleFunc(routes.TurnTask, turnsController.UpdateTaskHandler).Methods(http.MethodPatch, http.MethodPut)
	secured.HandleFunc(routes.TurnComplete, turnsController.CompleteTurnHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.TurnBlock, turnsController.BlockTurnHandler).Methods(http.MethodPost)

	secured.HandleFunc(routes.UnitsStats, unitsController.UnitStatisticsHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.UnitsBulk, unitsController.BulkCreateUnitsHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.UnitByNumber, unitsController.GetUnitByNumberHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.UnitsBase, unitsController.CreateUnitHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.UnitsBase, unitsController.ListUnitsHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.UnitByID, unitsController.GetUnitHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.UnitByID, unitsController.UpdateUnitHandler).Methods(http.MethodPatch)
	secured.HandleFunc(routes.UnitByID, unitsController.DeleteUnitHandler).Methods(http.MethodDelete)
	secured.HandleFunc(routes.UnitTurns, unitsController.ListUnitTurnsHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.UnitVacant, unitsController.MarkVacantHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.UnitOccupied, unitsController.MarkOccupiedHandler).Methods(http.MethodPost)

	secured.HandleFunc(routes.ActivitiesStats, activitiesController.ActivityStatisticsHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.ActivitiesBase, activitiesController.ListActivitiesHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.ActivityByID, activitiesController.GetActivityHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.ActivityByID, activitiesController.DeleteActivityHandler).Methods(http.MethodDelete)

	secured.HandleFunc(routes.EventsConflict, calendarController.CheckConflictHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.EventsUpcoming, calendarController.UpcomingEventsHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.EventsToday, calendarController.TodaysEventsHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.EventsStats, calendarController.EventStatisticsHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.EventsBase, calendarController.CreateEventHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.EventsBase, calendarController.ListEventsHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.EventByID, calendarController.GetEventHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.EventByID, calendarController.UpdateEventHandler).Methods(http.MethodPatch)
	secured.HandleFunc(routes.EventByID, calendarController.DeleteEventHandler).Methods(http.MethodDelete)

	secured.HandleFunc(routes.VendorsBulk, vendorsController.BulkCreateVendorsHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.VendorsStats, vendorsController.VendorStatisticsHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.VendorsBase, vendorsController.CreateVendorHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.VendorsBase, vendorsController.ListVendorsHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.VendorByID, vendorsController.GetVendorHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.VendorByID, vendorsController.UpdateVendorHandler).Methods(http.MethodPatch)
	secured.HandleFunc(routes.VendorByID, vendorsController.DeleteVendorHandler).Methods(http.MethodDelete)
	secured.HandleFunc(routes.VendorRating, vendorsController.SetRatingHandler).Methods(http.MethodPut)
	secured.HandleFunc(routes.VendorJobCompletion, vendorsController.RecordJobCompletionHandler).Methods(http.MethodPost)

	secured.HandleFunc(routes.UsersSearch, usersController.SearchUsersHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.UsersStats, usersController.UserStatisticsHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.UsersBase, usersController.CreateUserHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.UsersBase, usersController.ListUsersHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.UserByID, usersController.GetUserHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.UserByID, usersController.UpdateUserHandler).Methods(http.MethodPatch)
	secured.HandleFunc(routes.UserByID, usersController.DeleteUserHandler).Methods(http.MethodDelete)
	secured.HandleFunc(routes.UserRole, usersController.SetRoleHandler).Methods(http.MethodPut)
	secured.HandleFunc(routes.UserNotifications, usersController.UpdateNotificationSettingsHandler).Methods(http.MethodPut)
	secured.HandleFunc(routes.UserLogin, usersController.RecordLoginHandler).Methods(http.MethodPost)

	c := cron.New()
	_, dailyErr := c.AddFunc(constants.DailyMaintenanceSchedule, func() {
		maintenanceService.RunDailyMaintenance(context.Background())
	})
	if dailyErr != nil {
		utils.Logger.WithError(dailyErr).Fatal("Failed to schedule daily maintenance cron")
	}

	_, sweepErr := c.AddFunc("@every 1h", func() {
		if e := escalationService.RunOverdueSweep(context.Background()); e != nil {
			utils.Logger.WithError(e).Error("Overdue-turn sweep failed")
		}
	})
	if sweepErr != nil {
		utils.Logger.WithError(sweepErr).Fatal("Failed to schedule overdue sweep cron")
	}
	c.Start()

	allowedOrigins := []string{"*"}
	if cfg.LDFlag_CORSHighSecurity {
		allowedOrigins = []string{"https://dashboard.ips-ux.com"}
	}

	co := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	utils.Logger.Infof("Starting %s on port: %s", cfg.AppName, cfg.AppPort)
	if err := http.ListenAndServe(":"+cfg.AppPort, co.Handler(router)); err != nil {
		utils.Logger.Fatal("maintenance-manager failed to start:", err)
	}
}
