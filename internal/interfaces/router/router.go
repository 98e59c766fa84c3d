package router

import (
	"github.com/redis/go-redis/v9"
	docsvc "renewmart-backend/internal/application/documents"
	landsvc "renewmart-backend/internal/application/lands"
	mktsvc "renewmart-backend/internal/application/marketplace"
	"renewmart-backend/internal/application/notifications"
	reviewsvc "renewmart-backend/internal/application/reviews"
	mapsvc "renewmart-backend/internal/application/rolemapping"
	tasksvc "renewmart-backend/internal/application/tasks"
	usersvc "renewmart-backend/internal/application/users"
	authsvc "renewmart-backend/internal/auth"
	"renewmart-backend/internal/config"
	"renewmart-backend/internal/infrastructure/database"
	authhandler "renewmart-backend/internal/interfaces/handlers/auth"
	dochandler "renewmart-backend/internal/interfaces/handlers/documents"
	healthhandler "renewmart-backend/internal/interfaces/handlers/health"
	landhandler "renewmart-backend/internal/interfaces/handlers/lands"
	maphandler "renewmart-backend/internal/interfaces/handlers/mappings"
	mkthandler "renewmart-backend/internal/interfaces/handlers/marketplace"
	reviewhandler "renewmart-backend/internal/interfaces/handlers/reviews"
	taskhandler "renewmart-backend/internal/interfaces/handlers/tasks"
	userhandler "renewmart-backend/internal/interfaces/handlers/users"
	"renewmart-backend/internal/middleware"
	"renewmart-backend/internal/pkg/constants"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type gormDBPinger struct {
	db *gorm.DB
}

func (g *gormDBPinger) Ping() error {
	if g == nil || g.db == nil {
		return nil
	}
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

func CreateApp(cfg *config.Config) (*fiber.App, *gorm.DB, *redis.Client, error) {
	app := fiber.New(fiber.Config{
		DisableStartupMessage:   true,
		ErrorHandler:            middleware.ErrorHandler,
		EnableTrustedProxyCheck: true,
	})

	app.Use(middleware.CORS(middleware.CORSConfig{
		AllowedSuffix: cfg.FrontendURLEndsWith,
		DevPassword:   cfg.DevPassword,
	}))

	sessionHandler, rdb, err := middleware.Session(middleware.SessionConfig{
		Secret:            cfg.SessionSecret,
		RedisURL:          cfg.RedisURL,
		AllowCrossSiteDev: cfg.AllowCrossSiteDev,
		IsProduction:      cfg.Env == "production",
	})
	if err != nil {
		return nil, nil, nil, err
	}
	app.Use(sessionHandler)
	app.Use(middleware.HealthMarker(rdb))
	app.Use(middleware.ResponseFormatter())
	app.Use(middleware.Tracing())
	app.Use(middleware.RouteLogger())

	hh := &healthhandler.Handlers{
		Rdb:            rdb,
		DB:             nil,
		HealthAdminKey: cfg.HealthAdminKey,
	}
	app.Get("/", hh.Dashboard)
	app.Get("/reset", hh.Reset)
	app.Get("/health/json", hh.JSON)
	app.Get("/health/errors", hh.Errors)

	var db *gorm.DB
	if cfg.DatabaseURL != "" {
		var errDB error
		db, errDB = database.Open(cfg.DatabaseURL)
		if errDB != nil {
			return nil, nil, nil, errDB
		}
		hh.DB = &gormDBPinger{db: db}
	}

	sessionCfg := middleware.SessionConfig{
		Secret:            cfg.SessionSecret,
		RedisURL:          cfg.RedisURL,
		AllowCrossSiteDev: cfg.AllowCrossSiteDev,
		IsProduction:      cfg.Env == "production",
	}

	var userFinder authsvc.UserFinder
	if db != nil {
		userFinder = &authsvc.GormUserFinder{DB: db}
	}
	ah := &authhandler.Handlers{
		UserFinder: userFinder,
		Rdb:        rdb,
		Config:     sessionCfg,
	}
	authGroup := app.Group("/api/v1/auth")
	authGroup.Post("/login", ah.Login)
	authGroup.Get("/me", ah.Me)
	authGroup.Delete("/logout", ah.Logout)

	if db != nil && rdb != nil {
		events := &notifications.Dispatcher{DB: db, Rdb: rdb}
		mappings := &mapsvc.Service{DB: db}
		reviews := &reviewsvc.Service{DB: db, Events: events}

		// Users
		us := &usersvc.Service{DB: db}
		uh := &userhandler.Handlers{Service: us, Rdb: rdb, Config: sessionCfg}
		// create-user is public (registration)
		app.Post("/api/v1/users/create-user", uh.CreateUser)
		ug := app.Group("/api/v1/users", middleware.RequireAuth())
		ug.Get("/view-user", uh.ViewUser)
		ug.Patch("/update-role", middleware.AuthorizePermission(constants.AssignRole), uh.UpdateRole)

		// Lands
		ls := &landsvc.Service{DB: db}
		lh := &landhandler.Handlers{Service: ls}
		lg := app.Group("/api/v1/lands", middleware.RequireAuth())
		lg.Post("/create-land", middleware.AuthorizePermission(constants.CreateLand), lh.CreateLand)
		lg.Get("/my-lands", lh.MyLands)
		lg.Get("/:land_id", lh.GetLand)
		lg.Patch("/:land_id/marketing", middleware.AuthorizePermission(constants.UpdateMarketing), lh.UpdateMarketing)
		lg.Post("/:land_id/submit", middleware.AuthorizePermission(constants.SubmitLand), lh.SubmitLand)
		lg.Get("/:land_id/missing-fields", lh.MissingFields)

		// Marketplace (investor-facing reads)
		ms := &mktsvc.Service{DB: db}
		mh := &mkthandler.Handlers{Service: ms}
		mg := app.Group("/api/v1/marketplace", middleware.RequireAuth())
		mg.Get("/listings", middleware.AuthorizePermission(constants.ViewMarketplace), mh.Listings)
		mg.Get("/listings/:land_id", middleware.AuthorizePermission(constants.ViewMarketplace), mh.Listing)

		// Reviews
		rh := &reviewhandler.Handlers{Service: reviews, Events: events}
		rg := app.Group("/api/v1/reviews", middleware.RequireAuth())
		rg.Get("/:land_id", rh.GetAll)
		rg.Get("/:land_id/events", rh.EventHistory)
		rg.Post("/:land_id/approve", middleware.AuthorizePermission(constants.ApproveReview), rh.Approve)
		rg.Post("/:land_id/publish", middleware.AuthorizePermission(constants.PublishReview), rh.Publish)

		// Tasks and subtask checklists
		ts := &tasksvc.Service{DB: db, Reviews: reviews, Events: events}
		th := &taskhandler.Handlers{Service: ts}
		tg := app.Group("/api/v1/tasks", middleware.RequireAuth())
		tg.Post("/get-or-create", middleware.AuthorizePermission(constants.ManageSubtasks), th.GetOrCreate)
		tg.Get("/inbox", th.Inbox)
		tg.Get("/:task_id/subtasks", th.Subtasks)
		tg.Patch("/:task_id/subtasks/:subtask_id", middleware.AuthorizePermission(constants.ManageSubtasks), th.UpdateSubtask)

		// Documents
		ds := &docsvc.Service{DB: db, Mappings: mappings, Reviews: reviews}
		dh := &dochandler.Handlers{Service: ds}
		dg := app.Group("/api/v1/documents", middleware.RequireAuth())
		dg.Post("/upload", middleware.AuthorizePermission(constants.UploadDocument), dh.Upload)
		dg.Get("/reviewable/:land_id", middleware.AuthorizePermission(constants.ReviewDocuments), dh.Reviewable)
		dg.Get("/latest/:land_id/:document_type", dh.Latest)
		dg.Post("/:document_id/lock", middleware.AuthorizePermission(constants.ReviewDocuments), dh.Lock)
		dg.Delete("/:document_id/lock", middleware.AuthorizePermission(constants.ReviewDocuments), dh.Unlock)
		dg.Patch("/:document_id/status", middleware.AuthorizePermission(constants.ReviewDocuments), dh.SetVersionStatus)
		dg.Delete("/:document_id", dh.Delete)
		dg.Get("/:document_id/audit", dh.AuditTrail)

		// Mapping overrides (admin)
		mph := &maphandler.Handlers{Service: mappings}
		mpg := app.Group("/api/v1/mappings", middleware.RequireAuth())
		mpg.Get("/:land_id/:role", mph.ResolvedTypes)
		mpg.Put("/:land_id", middleware.AuthorizePermission(constants.ManageMappings), mph.SetOverride)
		mpg.Delete("/:land_id", middleware.AuthorizePermission(constants.ManageMappings), mph.ClearOverride)
	}

	return app, db, rdb, nil
}
