package server

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pointward/rewards-backend/internal/handler"
	appmw "github.com/pointward/rewards-backend/internal/middleware"
	"github.com/pointward/rewards-backend/internal/repository"
	"github.com/pointward/rewards-backend/internal/service"
	"gorm.io/gorm"
)

type dbSetter interface {
	SetDB(db *gorm.DB)
}

type Server struct {
	e              *echo.Echo
	accountRepo    repository.AccountRepository
	taskRepo       repository.TaskRepository
	completionRepo repository.CompletionRepository
	txManager      repository.TxManager
	sha            string
	build          string
}

func New(db *gorm.DB, rules service.BonusRules, sha, buildTime string) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.Logger())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		AllowOriginFunc: func(origin string) (bool, error) {
			low := strings.ToLower(origin)
			if strings.HasPrefix(low, "http://localhost:") || strings.HasPrefix(low, "http://127.0.0.1:") ||
				strings.HasPrefix(low, "https://localhost:") || strings.HasPrefix(low, "https://127.0.0.1:") {
				return true, nil
			}
			u, err := url.Parse(origin)
			if err != nil {
				return false, nil
			}
			if u.Scheme != "http" && u.Scheme != "https" {
				return false, nil
			}
			if strings.HasSuffix(u.Hostname(), "vercel.app") {
				return true, nil
			}
			return false, nil
		},
	}))

	accountRepo := repository.NewAccountRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	completionRepo := repository.NewCompletionRepository(db)
	txManager := repository.NewTxManager(db)

	accountSvc := service.NewAccountService(accountRepo)
	taskSvc := service.NewTaskService(taskRepo, completionRepo)
	settlementSvc := service.NewSettlementService(txManager, rules)
	earningsSvc := service.NewEarningsService(accountRepo, completionRepo, rules)
	authz := service.NewAccountRoleAuthorizer(accountRepo)

	accountHandler := handler.NewAccountHandler(accountSvc)
	taskHandler := handler.NewTaskHandler(taskSvc)
	settlementHandler := handler.NewSettlementHandler(settlementSvc)
	adminHandler := handler.NewAdminHandler(authz, taskSvc, settlementSvc, earningsSvc)

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"ok":         "true",
			"git_sha":    sha,
			"build_time": buildTime,
		})
	})

	api := e.Group("/api")
	authMw, err := appmw.NewAuthMiddleware(context.Background())
	if err != nil {
		e.Logger.Warnf("firebase auth disabled: %v", err)
	}
	if authMw != nil {
		api.Use(authMw.RequireAuth)
	}

	api.POST("/accounts", accountHandler.Register)
	api.GET("/me", accountHandler.Me)
	api.GET("/tasks", taskHandler.List)
	api.POST("/tasks/:id/start", taskHandler.Start)
	api.POST("/tasks/:id/complete", settlementHandler.Complete)

	admin := api.Group("/admin")
	admin.POST("/tasks", adminHandler.CreateTask)
	admin.POST("/accounts/:uid/tasks/:taskId/award", adminHandler.Award)
	admin.POST("/accounts/:uid/tasks/:taskId/reset", adminHandler.ResetCompletion)
	admin.GET("/accounts/:uid/earnings", adminHandler.Earnings)

	return &Server{
		e:              e,
		accountRepo:    accountRepo,
		taskRepo:       taskRepo,
		completionRepo: completionRepo,
		txManager:      txManager,
		sha:            sha,
		build:          buildTime,
	}
}

func (s *Server) Start(addr string) error {
	return s.e.Start(addr)
}

// SetDB swaps the live connection into every repository once it is up; the
// server starts listening before the database finishes connecting.
func (s *Server) SetDB(db *gorm.DB) {
	for _, r := range []interface{}{s.accountRepo, s.taskRepo, s.completionRepo, s.txManager} {
		if setter, ok := r.(dbSetter); ok {
			setter.SetDB(db)
		}
	}
}
