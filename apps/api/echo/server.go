package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/edukia/academia/core"
	"github.com/edukia/academia/core/academics"
	"github.com/edukia/academia/core/document"
	"github.com/edukia/academia/core/schedule"
	"github.com/edukia/academia/core/tutoring"
	"github.com/edukia/academia/core/user"
)

type ServerDeps struct {
	Conf         *core.Config
	Logger       core.Logger
	UserSvc      *user.Service
	AcademicsSvc *academics.Service
	TutoringSvc  *tutoring.Service
	ScheduleSvc  *schedule.Service
	DocumentSvc  *document.Service
	Validate     *validator.Validate
	Translator   ut.Translator
}

type Server struct {
	deps         ServerDeps
	app          *echo.Echo
	serverErrors chan error
	shutdownSig  chan os.Signal
}

func NewServer(deps ServerDeps) *Server {
	s := &Server{
		deps:         deps,
		app:          echo.New(),
		serverErrors: make(chan error, 1),
		shutdownSig:  make(chan os.Signal, 1),
	}
	signal.Notify(s.shutdownSig, os.Interrupt, syscall.SIGTERM)
	s.setup()
	return s
}

func (s *Server) setup() {
	conf := s.deps.Conf

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !conf.TestMode {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}
	s.app.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{conf.FrontendBaseURL, "*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
	}))

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.deps.Translator, s.SignalShutdown)
	s.app.Debug = conf.Debug
	s.app.HideBanner = true

	s.app.GET("/", home)

	api := s.app.Group("/api")
	auth := bearerAuthMiddleware(s.deps.UserSvc)

	registerAuthAPI(api, auth, s.deps.UserSvc, s.deps.Validate)
	registerUserAdminAPI(api, auth, s.deps.UserSvc, s.deps.Validate)
	registerAcademicsAPI(api, auth, s.deps.AcademicsSvc, s.deps.Validate)
	registerTutoringAPI(api, auth, s.deps.TutoringSvc, s.deps.ScheduleSvc, s.deps.Validate)
	registerScheduleAPI(api, auth, s.deps.ScheduleSvc, s.deps.Validate)
	registerDocumentAPI(api, auth, s.deps.DocumentSvc, s.deps.Validate)
}

// Start runs the listener; the outcome lands on Errors().
func (s *Server) Start() {
	s.serverErrors <- s.app.Start(s.deps.Conf.Server.Address())
}

func (s *Server) Errors() <-chan error { return s.serverErrors }

func (s *Server) ShutdownSignal() <-chan os.Signal { return s.shutdownSig }

// SignalShutdown triggers a graceful shutdown, as if an interrupt was received.
func (s *Server) SignalShutdown() {
	s.shutdownSig <- syscall.SIGTERM
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *Server) Close() error {
	return s.app.Close()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Academia API")
}
