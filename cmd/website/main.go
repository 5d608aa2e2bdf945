package main

import (
	"context"
	"embed"
	"encoding/gob"
	"log/slog"
	"net/http"
	"time"

	"github.com/adampresley/adamgokit/awsconfig"
	"github.com/adampresley/adamgokit/httphelpers"
	"github.com/adampresley/adamgokit/mux"
	"github.com/adampresley/adamgokit/rendering"
	"github.com/adampresley/adamgokit/retrier"
	"github.com/adampresley/adamgokit/s3"
	"github.com/adampresley/adamgokit/sessions"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfigv2 "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rfberaldo/sqlz"
	"github.com/rikkicasupanan/portfolio/cmd/website/internal/admin"
	"github.com/rikkicasupanan/portfolio/cmd/website/internal/configuration"
	"github.com/rikkicasupanan/portfolio/cmd/website/internal/contact"
	"github.com/rikkicasupanan/portfolio/cmd/website/internal/home"
	"github.com/rikkicasupanan/portfolio/cmd/website/internal/metrics"
	"github.com/rikkicasupanan/portfolio/cmd/website/internal/pagecache"
	"github.com/rikkicasupanan/portfolio/cmd/website/internal/photoupload"
	"github.com/rikkicasupanan/portfolio/cmd/website/internal/portfolio"
	"github.com/rikkicasupanan/portfolio/cmd/website/internal/thumbnails"
	"github.com/rikkicasupanan/portfolio/pkg/database"
	"github.com/rikkicasupanan/portfolio/pkg/models"
	"github.com/rikkicasupanan/portfolio/pkg/services"
)

var (
	Version   string = "development"
	appName   string = "portfolio"
	ownerName string = "Rikki Casupanan"

	//go:embed app
	appFS embed.FS

	config configuration.Config

	/* Services */
	adminUserService          services.AdminUserService
	authService               services.AuthServicer
	contactService            services.ContactSender
	contentService            services.ContentReader
	db                        *sqlz.DB
	deleteConfirmationService services.DeleteConfirmationServicer
	galleryStorage            services.GalleryStorage
	pageCache                 pagecache.PageCache
	photoService              services.PhotoServicer
	projectService            services.ProjectServicer
	publicationService        services.PublicationServicer
	publicDB                  *sqlz.DB
	reconcileService          *services.ReconcileService
	renderer                  rendering.TemplateRenderer
	sessionService            sessions.Session[*models.AdminSession]
	thumbnailCreatorService   thumbnails.ThumbnailCreator

	/* Controllers */
	adminController       admin.AdminHandlers
	contactController     contact.ContactController
	homeController        home.HomeHandlers
	photoUploadController photoupload.PhotoUploadController
	portfolioController   portfolio.PortfolioController
)

func main() {
	var (
		err error
	)

	config = configuration.LoadConfig()
	setupLogger(&config, Version)

	slog.Info("configuration loaded",
		slog.String("app", appName),
		slog.String("version", Version),
		slog.String("loglevel", config.LogLevel),
		slog.String("host", config.Host),
		slog.String("awsEndpointUrl", config.AwsEndpointUrl),
		slog.String("awsRegion", config.AwsRegion),
		slog.String("galleryBucket", config.GalleryBucket),
		slog.Bool("pageCache", config.RedisURL != ""),
	)

	slog.Debug("setting up...")

	shutdownCtx, cancel := context.WithCancel(context.Background())

	/*
	 * Setup databases. The privileged handle migrates and writes, the
	 * public handle can only read.
	 */
	if db, err = database.Connect(config.DSN); err != nil {
		panic(err)
	}

	if err = database.Migrate(db); err != nil {
		panic(err)
	}

	if publicDB, err = database.Connect(config.PublicDSN); err != nil {
		panic(err)
	}

	gob.Register(&models.AdminSession{})

	cookieStore := sessions.NewCookieStore(config.CookieSecret)
	sessionService = sessions.NewSessionWrapper[*models.AdminSession](cookieStore, "portfolioadmin", "admin")

	/*
	 * Setup storage
	 */
	awsConfig := &awsconfig.Config{
		Endpoint:        config.AwsEndpointUrl,
		Region:          config.AwsRegion,
		AccessKeyID:     config.AwsAccessKeyId,
		SecretAccessKey: config.AwsSecretAccessKey,
	}

	retrier.Retry(func() error {
		if err = awsConfig.Load(); err != nil {
			slog.Error("failed to load AWS config. trying again", "error", err)
			return err
		}

		return nil
	})

	if err != nil {
		panic(err)
	}

	s3Client, err := s3.NewClient(awsConfig)

	if err != nil {
		panic(err)
	}

	galleryStorage = services.NewGalleryStorage(services.GalleryStorageConfig{
		Bucket:              config.GalleryBucket,
		PublicBaseURL:       config.GalleryPublicBaseURL,
		Presigner:           newPresignClient(),
		Region:              config.AwsRegion,
		S3Client:            s3Client,
		UploadURLExpiration: config.UploadURLExpiration(),
	})

	retrier.Retry(func() error {
		if err = galleryStorage.EnsureBucket(); err != nil {
			slog.Error("failed to ensure gallery bucket. trying again", "error", err)
			return err
		}

		return nil
	})

	if err != nil {
		panic(err)
	}

	renderer, err = rendering.NewGoTemplateRenderer(rendering.GoTemplateRendererConfig{
		TemplateDir:       "app",
		TemplateExtension: ".html",
		TemplateFS:        appFS,
		PagesDir:          "pages",
	})

	if err != nil {
		panic(err)
	}

	pageCache = setupPageCache()

	/*
	 * Setup services
	 */
	adminUserService = services.NewAdminUserService(services.AdminUserServiceConfig{
		DB: db,
	})

	if config.AdminEmail != "" && config.AdminPassword != "" {
		if err = adminUserService.EnsureAdmin(config.AdminEmail, config.AdminPassword); err != nil {
			panic(err)
		}
	}

	authService = services.NewAuthService(services.AuthServiceConfig{
		AdminUserService: adminUserService,
		SessionService:   sessionService,
	})

	contentService = services.NewContentService(services.ContentServiceConfig{
		DB: publicDB,
	})

	projectService = services.NewProjectService(services.ProjectServiceConfig{
		DB: db,
	})

	publicationService = services.NewPublicationService(services.PublicationServiceConfig{
		DB:      db,
		Storage: galleryStorage,
	})

	photoService = services.NewPhotoService(services.PhotoServiceConfig{
		DB:      db,
		Storage: galleryStorage,
	})

	deleteConfirmationService = services.NewDeleteConfirmationService(services.DeleteConfirmationServiceConfig{
		Secret: config.DeleteTokenSecret,
	})

	contactService = services.NewContactService(services.ContactServiceConfig{
		ApiKey: config.ResendApiKey,
		From:   config.ContactFrom,
		To:     config.ContactTo,
	})

	thumbnailCreatorService = thumbnails.NewThumbnailCreatorService(thumbnails.ThumbnailCreatorConfig{
		MaxWorkers:   config.MaxThumbnailWorkers,
		PhotoService: photoService,
		ShutdownCtx:  shutdownCtx,
		Storage:      galleryStorage,
	})

	reconcileService = services.NewReconcileService(services.ReconcileServiceConfig{
		GracePeriod:  config.OrphanGracePeriod(),
		Notify:       notifyReconcileReport,
		PhotoService: photoService,
		Storage:      galleryStorage,
	})

	thumbnailURL := func(imageURL string) string {
		return services.ThumbnailURL(galleryStorage, imageURL)
	}

	/*
	 * Setup controllers
	 */
	adminController = admin.NewAdminController(admin.AdminControllerConfig{
		AuthService:               authService,
		DeleteConfirmationService: deleteConfirmationService,
		PageCache:                 pageCache,
		PhotoService:              photoService,
		ProjectService:            projectService,
		PublicationService:        publicationService,
		Renderer:                  renderer,
		ThumbnailURL:              thumbnailURL,
	})

	contactController = contact.NewContactController(contact.ContactControllerConfig{
		ContactSender: contactService,
	})

	homeController = home.NewHomeController(home.HomeControllerConfig{
		OwnerName: ownerName,
		Renderer:  renderer,
	})

	photoUploadController = photoupload.NewPhotoUploadController(photoupload.PhotoUploadControllerConfig{
		PageCache:          pageCache,
		PhotoService:       photoService,
		ThumbnailRequester: thumbnailCreatorService,
	})

	portfolioController = portfolio.NewPortfolioController(portfolio.PortfolioControllerConfig{
		ContentReader: contentService,
		PageCache:     pageCache,
		Renderer:      renderer,
		ThumbnailURL:  thumbnailURL,
	})

	/*
	 * Setup router and http server
	 */
	slog.Debug("setting up routes...")

	adminGate := []mux.MiddlewareFunc{newAdminGateMiddleware(authService)}
	apiSession := []mux.MiddlewareFunc{newAPISessionMiddleware(authService)}
	loginLimit := []mux.MiddlewareFunc{newAdminGateMiddleware(authService), httprate.LimitByIP(10, time.Minute)}

	routes := []mux.Route{
		{Path: "GET /heartbeat", HandlerFunc: heartbeat},
		{Path: "GET /metrics", HandlerFunc: promhttp.Handler().ServeHTTP},

		{Path: "GET /", HandlerFunc: homeController.HomePage},
		{Path: "GET /about", HandlerFunc: homeController.AboutPage},
		{Path: "GET /contact", HandlerFunc: homeController.ContactPage},
		{Path: "GET /projects", HandlerFunc: portfolioController.ProjectsPage},
		{Path: "GET /gallery", HandlerFunc: portfolioController.GalleryPage},
		{Path: "POST /api/contact", HandlerFunc: contactController.SendMessage},

		{Path: "GET /admin/login", HandlerFunc: adminController.LoginPage, Middlewares: adminGate},
		{Path: "POST /admin/login", HandlerFunc: adminController.LoginAction, Middlewares: loginLimit},
		{Path: "POST /admin/logout", HandlerFunc: adminController.LogoutAction, Middlewares: adminGate},
		{Path: "GET /admin", HandlerFunc: adminController.AdminPanelPage, Middlewares: adminGate},

		{Path: "POST /admin/projects", HandlerFunc: adminController.AddProject, Middlewares: adminGate},
		{Path: "POST /admin/projects/{id}", HandlerFunc: adminController.UpdateProject, Middlewares: adminGate},
		{Path: "POST /admin/projects/{id}/toggle", HandlerFunc: adminController.ToggleProject, Middlewares: adminGate},
		{Path: "GET /admin/projects/{id}/delete", HandlerFunc: adminController.ProposeDeleteProject, Middlewares: adminGate},
		{Path: "POST /admin/projects/{id}/delete", HandlerFunc: adminController.CommitDeleteProject, Middlewares: adminGate},

		{Path: "POST /admin/publications", HandlerFunc: adminController.AddPublication, Middlewares: adminGate},
		{Path: "POST /admin/publications/{id}", HandlerFunc: adminController.UpdatePublication, Middlewares: adminGate},
		{Path: "POST /admin/publications/{id}/toggle", HandlerFunc: adminController.TogglePublication, Middlewares: adminGate},
		{Path: "GET /admin/publications/{id}/delete", HandlerFunc: adminController.ProposeDeletePublication, Middlewares: adminGate},
		{Path: "POST /admin/publications/{id}/delete", HandlerFunc: adminController.CommitDeletePublication, Middlewares: adminGate},

		{Path: "GET /admin/photos/{id}/delete", HandlerFunc: adminController.ProposeDeletePhoto, Middlewares: adminGate},
		{Path: "POST /admin/photos/{id}/delete", HandlerFunc: adminController.CommitDeletePhoto, Middlewares: adminGate},
		{Path: "POST /admin/photos/upload-url", HandlerFunc: photoUploadController.CreateUploadURL, Middlewares: apiSession},
		{Path: "POST /admin/photos", HandlerFunc: photoUploadController.RegisterPhoto, Middlewares: apiSession},
		{Path: "POST /api/upload-photo", HandlerFunc: photoUploadController.LegacyUpload, Middlewares: apiSession},
	}

	routerConfig := mux.RouterConfig{
		Address:              config.Host,
		Debug:                Version == "development",
		ServeStaticContent:   true,
		StaticContentRootDir: "app",
		StaticContentPrefix:  "/static/",
		StaticFS:             appFS,
		HttpWriteTimeout:     60,
	}

	m := mux.SetupRouter(routerConfig, routes)
	httpServer, quit := mux.SetupServer(routerConfig, m)

	/*
	 * Start the storage reconciliation job
	 */
	reconcileService.StartRoutine(config.ReconcileInterval())
	defer reconcileService.StopRoutine()

	/*
	 * Start the thumbnail creator job
	 */
	setupThumbnailCreator(shutdownCtx.Done())

	/*
	 * Wait for graceful shutdown
	 */
	slog.Info("server started")

	<-quit

	cancel()
	mux.Shutdown(httpServer)
	slog.Info("server stopped")
}

func heartbeat(w http.ResponseWriter, r *http.Request) {
	httphelpers.TextOK(w, "OK")
}

/*
newPresignClient builds the client that signs direct browser uploads. It
talks to the same endpoint as the rest of storage, with path style
addressing so local emulators work.
*/
func newPresignClient() *awss3.PresignClient {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	awsCfg, err := awsconfigv2.LoadDefaultConfig(ctx,
		awsconfigv2.WithRegion(config.AwsRegion),
		awsconfigv2.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(config.AwsAccessKeyId, config.AwsSecretAccessKey, "")),
	)

	if err != nil {
		panic(err)
	}

	client := awss3.NewFromConfig(awsCfg, func(o *awss3.Options) {
		if config.AwsEndpointUrl != "" {
			o.BaseEndpoint = aws.String(config.AwsEndpointUrl)
		}

		o.UsePathStyle = true
	})

	return awss3.NewPresignClient(client)
}

func setupPageCache() pagecache.PageCache {
	if config.RedisURL == "" {
		slog.Info("page cache disabled")
		return pagecache.NoopCache{}
	}

	options, err := redis.ParseURL(config.RedisURL)

	if err != nil {
		panic(err)
	}

	return pagecache.NewRedisCache(pagecache.RedisCacheConfig{
		Client: redis.NewClient(options),
	})
}

func notifyReconcileReport(report services.ReconcileReport) error {
	metrics.OrphanBlobsRemovedTotal.Add(float64(len(report.RemovedBlobs)))
	metrics.MissingBlobsGauge.Set(float64(len(report.MissingBlobs)))

	if !report.HasFindings() {
		return nil
	}

	if len(report.RemovedBlobs) > 0 {
		pageCache.Invalidate("/admin", "/gallery")
	}

	if config.OperatorEmail == "" {
		return nil
	}

	return services.SendReconcileReport(config.ResendApiKey, config.OperatorEmail, ownerName, config.ContactFromEmail(), report)
}

func setupThumbnailCreator(done <-chan struct{}) {
	go runThumbnailCreator(done, time.Hour, thumbnailCreatorService.CreateThumbnails)
}

/*
runThumbnailCreator runs create once, then again on every tick, until done
is closed.
*/
func runThumbnailCreator(done <-chan struct{}, interval time.Duration, create func()) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	running := true

	runner := func() {
		defer func() {
			running = false
		}()

		create()
		slog.Info("thumbnail creator finished.")
	}

	runner()

	for {
		select {
		case <-done:
			return

		case <-ticker.C:
			if running {
				slog.Info("thumbnail creator already running. skipping...")
				continue
			}

			running = true
			runner()
		}
	}
}
