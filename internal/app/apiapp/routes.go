package apiapp

import (
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/v4codeit/prato-rinaldo-webapp-sub003/internal/domain/enums"
	authsvc "github.com/v4codeit/prato-rinaldo-webapp-sub003/internal/services/auth"
	directorysvc "github.com/v4codeit/prato-rinaldo-webapp-sub003/internal/services/directory"
	gamificationsvc "github.com/v4codeit/prato-rinaldo-webapp-sub003/internal/services/gamification"
	marketplacesvc "github.com/v4codeit/prato-rinaldo-webapp-sub003/internal/services/marketplace"
	modsvc "github.com/v4codeit/prato-rinaldo-webapp-sub003/internal/services/moderation"
	proposalsvc "github.com/v4codeit/prato-rinaldo-webapp-sub003/internal/services/proposals"
	tutoringsvc "github.com/v4codeit/prato-rinaldo-webapp-sub003/internal/services/tutoring"
	"github.com/v4codeit/prato-rinaldo-webapp-sub003/internal/transport/http/handlers"
)

type Dependencies struct {
	AuthService         *authsvc.Service
	ModerationService   *modsvc.Service
	MarketplaceService  *marketplacesvc.Service
	DirectoryService    *directorysvc.Service
	ProposalService     *proposalsvc.Service
	TutoringService     *tutoringsvc.Service
	GamificationService *gamificationsvc.Service
	Events              handlers.EventStream
	Logger              *zap.Logger
}

func RegisterRoutes(r chi.Router, deps Dependencies) {
	log := deps.Logger
	healthHandler := handlers.NewHealthHandler()
	authHandler := handlers.NewAuthHandler(deps.AuthService, log)
	moderationHandler := handlers.NewModerationHandler(deps.ModerationService, log)
	marketplaceHandler := handlers.NewMarketplaceHandler(deps.MarketplaceService, log)
	directoryHandler := handlers.NewDirectoryHandler(deps.DirectoryService, log)
	proposalsHandler := handlers.NewProposalsHandler(deps.ProposalService, log)
	tutoringHandler := handlers.NewTutoringHandler(deps.TutoringService, log)
	badgesHandler := handlers.NewBadgesHandler(deps.GamificationService, log)
	eventsHandler := handlers.NewEventsHandler(moderationGate(deps.ModerationService), deps.Events, log)

	authMW := AuthMiddleware(deps.AuthService, log)
	adminMW := RequireRole(enums.RoleAdmin, enums.RoleSuperAdmin)

	r.Get("/healthz", healthHandler.Get)

	r.Route("/v1/auth", func(r chi.Router) {
		r.Post("/session", authHandler.Exchange)
		r.Post("/refresh", authHandler.Refresh)
		r.With(authMW).Post("/logout", authHandler.Logout)
		r.With(authMW).Post("/logout_all", authHandler.LogoutAll)
	})

	r.Route("/v1", func(r chi.Router) {
		r.Get("/badges", badgesHandler.Catalog)

		r.Group(func(r chi.Router) {
			r.Use(authMW)

			r.Get("/marketplace", marketplaceHandler.List)
			r.Post("/marketplace", marketplaceHandler.Create)
			r.Post("/marketplace/images", marketplaceHandler.UploadImage)
			r.Get("/marketplace/{id}", marketplaceHandler.Get)
			r.Post("/marketplace/{id}/sold", marketplaceHandler.MarkSold)

			r.Get("/directory", directoryHandler.List)
			r.Post("/directory", directoryHandler.Create)

			r.Get("/proposals", proposalsHandler.List)
			r.Post("/proposals", proposalsHandler.Create)

			r.Get("/tutoring", tutoringHandler.List)
			r.Post("/tutoring", tutoringHandler.Create)

			r.Post("/reports", moderationHandler.Report)
			r.Get("/me/badges", badgesHandler.Mine)

			// Moderator rights come from the membership and are checked by the service.
			r.Route("/moderation", func(r chi.Router) {
				r.Get("/queue", moderationHandler.Queue)
				r.Get("/events", eventsHandler.Moderation)
				r.Get("/{id}", moderationHandler.Entry)
				r.Get("/{id}/actions", moderationHandler.Actions)
				r.Post("/{id}/assign", moderationHandler.Assign)
				r.Post("/{id}/approve", moderationHandler.Approve)
				r.Post("/{id}/reject", moderationHandler.Reject)
			})

			r.With(adminMW).Post("/admin/badges", badgesHandler.Award)
		})
	})
}

// moderationGate keeps a nil service from becoming a non-nil interface.
func moderationGate(service *modsvc.Service) handlers.ModeratorGate {
	if service == nil {
		return nil
	}
	return service
}
