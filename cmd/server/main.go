package main // Entry point package

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/garage-hub/internal/chat"
	"github.com/iliyamo/garage-hub/internal/config"
	"github.com/iliyamo/garage-hub/internal/database"
	"github.com/iliyamo/garage-hub/internal/handler"
	"github.com/iliyamo/garage-hub/internal/middleware"
	"github.com/iliyamo/garage-hub/internal/model"
	"github.com/iliyamo/garage-hub/internal/queue"
	"github.com/iliyamo/garage-hub/internal/repository"
	"github.com/iliyamo/garage-hub/internal/router"
	queue_publisher "github.com/iliyamo/garage-hub/internal/service"
	"github.com/iliyamo/garage-hub/internal/tenant"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis is optional: without it the rate limiter and response cache
	// degrade to pass-through.
	rdb := config.NewRedisClient()

	// Repositories.
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	roles := repository.NewRoleRepo(db)
	garages := repository.NewGarageRepo(db)
	members := repository.NewMembershipRepo(db)
	profiles := repository.NewProfileRepo(db)
	clients := repository.NewClientRepo(db)
	vehicles := repository.NewVehicleRepo(db)
	appointments := repository.NewAppointmentRepo(db)
	tickets := repository.NewJobTicketRepo(db)
	messages := repository.NewChatMessageRepo(db)
	states := repository.NewConversationStateRepo(db)

	resolver := &tenant.Reconciler{
		Garages:           garages,
		Members:           members,
		Profiles:          profiles,
		DefaultSlug:       cfg.DefaultGarageSlug,
		LastResortEnabled: cfg.LastResortEnabled,
		Audit: func(ctx context.Context, userID, garageID uint64) {
			_ = queue_publisher.PublishTenantAudit(ctx, queue.TenantAuditEvent{
				UserID:     userID,
				GarageID:   garageID,
				OccurredAt: time.Now().UTC().Format(time.RFC3339),
			})
		},
	}

	chatRouter := &chat.Router{
		Clients:      clients,
		Vehicles:     vehicles,
		Appointments: appointments,
		Tickets:      tickets,
		States:       states,
		Log:          messages,
		StateTTL:     cfg.StateTTL,
		MaxAttempts:  cfg.StateMaxAttempts,
		HistoryDepth: cfg.HistoryDepth,
		Publish: func(ctx context.Context, action string, a *model.Appointment, clientName string) {
			_ = queue_publisher.PublishAppointmentEvent(ctx, queue.AppointmentEvent{
				Action:        action,
				AppointmentID: a.ID,
				GarageID:      a.GarageID,
				ClientID:      a.ClientID,
				ClientName:    clientName,
				ServiceType:   a.ServiceType,
				Bay:           a.Bay,
				StartsAt:      a.StartsAt.UTC().Format(time.RFC3339),
				EndsAt:        a.EndsAt.UTC().Format(time.RFC3339),
				OccurredAt:    time.Now().UTC().Format(time.RFC3339),
			})
		},
	}

	// Handlers.
	authH := handler.NewAuthHandler(cfg, users, tokens, roles, resolver)
	garageH := handler.NewGarageHandler(garages, members, profiles, roles, resolver)
	staffH := handler.NewStaffHandler(garages, members, users)
	clientH := handler.NewClientHandler(clients, members)
	vehicleH := handler.NewVehicleHandler(vehicles, clients, members)
	apptH := handler.NewAppointmentHandler(appointments, clients, members)
	ticketH := handler.NewJobTicketHandler(tickets, clients, members)
	chatH := handler.NewChatHandler(chatRouter, members, profiles)
	publicH := handler.NewPublicHandler(garages)

	// Background consumers mirroring the appointment and tenant-audit
	// streams into logs/.
	go func() {
		if err := queue.StartAppointmentConsumer(); err != nil {
			log.Printf("appointment consumer stopped: %v", err)
		}
	}()
	go func() {
		if err := queue.StartTenantAuditConsumer(); err != nil {
			log.Printf("tenant audit consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	router.RegisterRoutes(e)
	router.RegisterAuth(e, authH, cfg.JWTSecret)
	router.RegisterPublic(e, publicH, cache)
	router.RegisterTenant(e, garageH, staffH, cfg.JWTSecret)
	router.RegisterGarageScoped(e, clientH, vehicleH, apptH, ticketH, cfg.JWTSecret)
	router.RegisterChat(e, chatH, cfg.JWTSecret, limiter)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
