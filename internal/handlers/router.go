package handlers

import (
	"net/http"

	"societies/internal/config"
	"societies/internal/middleware"
	"societies/internal/websocket"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

type Handler struct {
	cfg              config.Config
	logger           *zap.Logger
	txRunner         TxRunner
	societies        SocietyStore
	residents        ResidentStore
	users            UserStore
	roles            RoleStore
	permissions      PermissionStore
	societyAdmins    SocietyAdminStore
	residentFinances ResidentFinanceStore
	societyFinances  SocietyFinanceStore
	checker          AccessChecker
	hub              *websocket.Hub
}

func New(cfg config.Config, logger *zap.Logger, txRunner TxRunner, societies SocietyStore, residents ResidentStore, users UserStore, roles RoleStore, permissions PermissionStore, societyAdmins SocietyAdminStore, residentFinances ResidentFinanceStore, societyFinances SocietyFinanceStore, checker AccessChecker, hub *websocket.Hub) *Handler {
	return &Handler{
		cfg:              cfg,
		logger:           logger,
		txRunner:         txRunner,
		societies:        societies,
		residents:        residents,
		users:            users,
		roles:            roles,
		permissions:      permissions,
		societyAdmins:    societyAdmins,
		residentFinances: residentFinances,
		societyFinances:  societyFinances,
		checker:          checker,
		hub:              hub,
	}
}

func (h *Handler) Routes() http.Handler {
	router := chi.NewRouter()
	router.Use(chimiddleware.Logger)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{h.cfg.AllowedOrigins},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	authn := middleware.Auth(h.cfg.JWTSecret, h.users)
	can := func(resourceType, action string) func(http.Handler) http.Handler {
		return middleware.RequirePermission(h.checker, resourceType, action)
	}

	router.Route("/api/v1", func(api chi.Router) {
		api.Route("/auth", func(r chi.Router) {
			r.Post("/token", h.Token)
			r.Post("/login", h.Login)
			r.With(authn).Get("/me", h.Me)
			r.With(authn).Post("/change-password", h.ChangePassword)
			r.With(authn).Get("/user-permissions", h.MyPermissions)
		})

		api.Route("/societies", func(r chi.Router) {
			r.Use(authn)
			r.Get("/", h.ListSocieties)
			r.With(can("societies", "create")).Post("/", h.CreateSociety)
			r.Get("/{id}", h.GetSociety)
			r.With(can("societies", "update")).Put("/{id}", h.UpdateSociety)
			r.With(can("societies", "delete")).Delete("/{id}", h.DeleteSociety)
			r.Get("/{id}/residents", h.ListSocietyResidents)
			r.Get("/{id}/administrators", h.ListSocietyAdministrators)
			r.Get("/{id}/finances", h.ListSocietyLedger)
			r.Get("/{id}/finance-categories", h.ListSocietyFinanceCategories)
			r.Get("/{id}/finance-summary", h.SocietyFinanceSummary)
		})

		api.Route("/residents", func(r chi.Router) {
			r.Use(authn)
			r.Get("/", h.ListResidents)
			r.With(can("residents", "create")).Post("/", h.CreateResident)
			r.Get("/{id}", h.GetResident)
			r.With(can("residents", "update")).Put("/{id}", h.UpdateResident)
			r.With(can("residents", "delete")).Delete("/{id}", h.DeleteResident)
			r.Get("/{id}/finances", h.ListResidentLedger)
			r.Get("/{id}/finance-summary", h.ResidentFinanceSummary)
		})

		api.Route("/users", func(r chi.Router) {
			r.Use(authn)
			r.Get("/", h.ListUsers)
			r.With(can("users", "create")).Post("/", h.CreateUser)
			r.Get("/{id}", h.GetUser)
			r.With(can("users", "update")).Put("/{id}", h.UpdateUser)
			r.With(can("users", "delete")).Delete("/{id}", h.DeleteUser)
			r.With(can("users", "update")).Post("/{id}/reset-password", h.ResetUserPassword)
			r.With(can("users", "update")).Put("/{id}/toggle-active", h.ToggleUserActive)
			r.With(can("users", "update")).Put("/{id}/update-last-login", h.UpdateUserLastLogin)
			r.Get("/{id}/administered-societies", h.ListAdministeredSocieties)
		})

		api.Route("/roles", func(r chi.Router) {
			r.Use(authn)
			r.Get("/", h.ListRoles)
			r.With(can("roles", "create")).Post("/", h.CreateRole)
			r.Get("/{id}", h.GetRole)
			r.With(can("roles", "update")).Put("/{id}", h.UpdateRole)
			r.With(can("roles", "delete")).Delete("/{id}", h.DeleteRole)
			r.Get("/{id}/permissions", h.ListRolePermissions)
			r.With(can("roles", "update")).Post("/{id}/permissions", h.AddRolePermission)
			r.With(can("roles", "update")).Put("/{id}/permissions", h.ReplaceRolePermissions)
			r.With(can("roles", "update")).Delete("/{id}/permissions/{permissionID}", h.RemoveRolePermission)
		})

		api.Route("/permissions", func(r chi.Router) {
			r.Use(authn)
			r.Get("/", h.ListPermissions)
			r.With(can("permissions", "create")).Post("/", h.CreatePermission)
			r.Get("/resource-types", h.ListPermissionResourceTypes)
			r.Get("/actions", h.ListPermissionActions)
			r.Get("/{id}", h.GetPermission)
			r.With(can("permissions", "update")).Put("/{id}", h.UpdatePermission)
			r.With(can("permissions", "delete")).Delete("/{id}", h.DeletePermission)
		})

		api.Route("/society-admins", func(r chi.Router) {
			r.Use(authn)
			r.Get("/", h.ListSocietyAdmins)
			r.With(can("society_admins", "create")).Post("/", h.CreateSocietyAdmin)
			r.Get("/{id}", h.GetSocietyAdmin)
			r.With(can("society_admins", "update")).Put("/{id}", h.UpdateSocietyAdmin)
			r.With(can("society_admins", "delete")).Delete("/{id}", h.DeleteSocietyAdmin)
		})

		api.Route("/resident-finances", func(r chi.Router) {
			r.Use(authn)
			r.Get("/", h.ListResidentFinances)
			r.With(can("finances", "create")).Post("/", h.CreateResidentFinance)
			r.Get("/{id}", h.GetResidentFinance)
			r.With(can("finances", "update")).Put("/{id}", h.UpdateResidentFinance)
			r.With(can("finances", "delete")).Delete("/{id}", h.DeleteResidentFinance)
		})

		api.Route("/society-finances", func(r chi.Router) {
			r.Use(authn)
			r.Get("/", h.ListSocietyFinances)
			r.With(can("finances", "create")).Post("/", h.CreateSocietyFinance)
			r.Get("/{id}", h.GetSocietyFinance)
			r.With(can("finances", "update")).Put("/{id}", h.UpdateSocietyFinance)
			r.With(can("finances", "delete")).Delete("/{id}", h.DeleteSocietyFinance)
		})
	})

	router.Get("/ws/finances", h.WSFinances)

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	return router
}

func (h *Handler) WSFinances(w http.ResponseWriter, r *http.Request) {
	societyID := r.URL.Query().Get("society_id")
	if societyID == "" {
		respondError(w, http.StatusBadRequest, "society_id is required")
		return
	}
	websocket.ServeWS(w, r, h.hub, societyID)
}
