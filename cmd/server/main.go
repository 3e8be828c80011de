package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/nanaacademy/academy-server/internal/auth"
	"github.com/nanaacademy/academy-server/internal/config"
	"github.com/nanaacademy/academy-server/internal/database"
	"github.com/nanaacademy/academy-server/internal/handler"
	"github.com/nanaacademy/academy-server/internal/mailer"
	"github.com/nanaacademy/academy-server/internal/queue"
	"github.com/nanaacademy/academy-server/internal/repository"
	"github.com/nanaacademy/academy-server/internal/router"
	"github.com/nanaacademy/academy-server/internal/service"
)

func main() {
	// .env is a convenience for local development; absent in containers.
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer func() { _ = db.Close() }()

	rdb := config.NewRedisClient()

	// Repositories.
	identities := repository.NewIdentityRepo(db)
	sessions := repository.NewSessionRepo(db)
	tokens := repository.NewAuthTokenRepo(db)
	roles := repository.NewRoleRepo(db)
	students := repository.NewStudentRepo(db)
	teachers := repository.NewTeacherRepo(db)
	classes := repository.NewClassRepo(db)
	announcements := repository.NewAnnouncementRepo(db)

	// Outbound mail: events go through the broker; the in-process consumer
	// delivers them via SendGrid, or logs them when no API key is set.
	var mailPub auth.MailPublisher = queue.NopPublisher{}
	if cfg.RabbitURL != "" {
		mailPub = queue.NewPublisher(cfg.RabbitURL)
		var m mailer.Mailer = mailer.NewConsole(cfg.MailFrom)
		if cfg.SendgridAPIKey != "" {
			m = mailer.NewSendgrid(cfg.SendgridAPIKey, "NANA ACADEMY", cfg.MailFrom)
		}
		go queue.StartMailConsumer(cfg.RabbitURL, m)
	} else {
		log.Printf("RABBITMQ_URL not set; outbound mail will be logged only")
	}

	// Services.
	provider := auth.NewService(identities, sessions, tokens, mailPub, rdb, cfg.BcryptCost, cfg.FrontendBaseURL)
	resolver := service.NewRoleResolver(roles)
	sessionSvc := service.NewSessionService(provider, resolver, roles, sessions, cfg.JWTSecret, cfg.AccessTTLMin)
	provisioning := service.NewProvisioningService(provider, roles, students, teachers)
	directory := service.NewDirectoryService(students, teachers, classes, announcements)
	dashboard := service.NewDashboardService(students, teachers, classes, announcements, rdb)

	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.Use(echomw.Recover())
	e.Use(echomw.Logger())

	router.Register(e, router.Handlers{
		Auth:          handler.NewAuthHandler(sessionSvc, provider),
		Students:      handler.NewStudentHandler(provisioning, directory, dashboard),
		Teachers:      handler.NewTeacherHandler(provisioning, directory, dashboard),
		Classes:       handler.NewClassHandler(directory, dashboard),
		Announcements: handler.NewAnnouncementHandler(directory, dashboard),
		Dashboard:     handler.NewDashboardHandler(dashboard),
	}, cfg.JWTSecret, sessions)

	addr := ":" + cfg.Port
	go func() {
		log.Printf("listening on %s (env=%s)", addr, cfg.Env)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server: %v", err)
		}
	}()

	// Block until interrupted, then drain in-flight requests.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
