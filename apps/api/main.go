package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	echoapi "github.com/edukia/academia/apps/api/echo"
	"github.com/edukia/academia/core"
	"github.com/edukia/academia/core/academics"
	"github.com/edukia/academia/core/document"
	"github.com/edukia/academia/core/schedule"
	"github.com/edukia/academia/core/tutoring"
	"github.com/edukia/academia/core/user"
	emailsvc "github.com/edukia/academia/services/email"
	logsvc "github.com/edukia/academia/services/logger"
	"github.com/edukia/academia/storage/supabase"
)

const shutdownTimeout = 20 * time.Second

func main() {
	// =========================================================================
	// Set up Dependencies

	conf, err := core.NewConfig()
	if err != nil {
		log.Fatalf("loading configuration: %v", err)
	}

	stdLogger := log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	var logger core.Logger
	if conf.Debug {
		logger = core.NewStdLogger(stdLogger)
	} else {
		rollbarLogger := logsvc.NewRollbarLogger(stdLogger, conf)
		rollbarLogger.Enable(true)
		logger = rollbarLogger
	}

	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}

	client := supabase.NewClient(conf.Supabase.URL, conf.Supabase.ServiceKey)

	usrSvc := user.NewService(supabase.NewUserRepository(client), conf.Server.TokenExpirationDelta)
	acadSvc := academics.NewService(supabase.NewAcademicsRepository(client))
	tutSvc := tutoring.NewService(supabase.NewTutoringRepository(client), mailSvc, logger, conf.Server.Timezone)
	schedSvc := schedule.NewService(supabase.NewScheduleRepository(client))
	docSvc := document.NewService(supabase.NewDocumentRepository(client), client, conf.Supabase.Bucket)

	validate, translator := core.NewValidator()

	// =========================================================================
	// Start API Service

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	server := echoapi.NewServer(echoapi.ServerDeps{
		Conf:         conf,
		Logger:       logger,
		UserSvc:      usrSvc,
		AcademicsSvc: acadSvc,
		TutoringSvc:  tutSvc,
		ScheduleSvc:  schedSvc,
		DocumentSvc:  docSvc,
		Validate:     validate,
		Translator:   translator,
	})

	go server.Start()

	// =========================================================================
	// Shutdown

	select {
	case err := <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}
