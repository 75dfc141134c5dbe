// Package server wires the HTTP API: routing, CORS, auth middleware, and
// the JSON handlers over the service layer.
package server

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/splitr/splitr/internal/auth"
	"github.com/splitr/splitr/internal/metrics"
	"github.com/splitr/splitr/internal/middleware"
	"github.com/splitr/splitr/internal/service"
)

// maxUploadBytes caps receipt image uploads at 10 MiB.
const maxUploadBytes = 10 << 20

// Server holds the services the HTTP handlers delegate to.
type Server struct {
	auth     *service.AuthService
	receipts *service.ReceiptService
	splits   *service.SplitService
	jwt      *auth.JWTManager
}

// New creates a Server.
func New(authSvc *service.AuthService, receipts *service.ReceiptService, splits *service.SplitService, jwt *auth.JWTManager) *Server {
	return &Server{auth: authSvc, receipts: receipts, splits: splits, jwt: jwt}
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(metrics.Middleware())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))
	router.MaxMultipartMemory = maxUploadBytes

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	api.POST("/auth/register", s.handleRegister)
	api.POST("/auth/login", s.handleLogin)

	authed := api.Group("")
	authed.Use(middleware.RequireAuth(s.jwt))

	authed.POST("/receipts/parse", s.handleParseReceipt)
	authed.GET("/receipts", s.handleListReceipts)
	authed.GET("/receipts/:id", s.handleGetReceipt)
	authed.POST("/receipts/:id/split", s.handleCreateSplit)

	authed.GET("/splits/:id", s.handleGetSplit)
	authed.POST("/splits/:id/people", s.handleAddPerson)
	authed.PATCH("/splits/:id/people/:personId", s.handleRenamePerson)
	authed.DELETE("/splits/:id/people/:personId", s.handleRemovePerson)
	authed.POST("/splits/:id/assign", s.handleAssignItem)
	authed.POST("/splits/:id/unassign", s.handleUnassignItem)
	authed.PUT("/splits/:id/totals", s.handleUpdateTotals)
	authed.POST("/splits/:id/finalize", s.handleFinalize)

	return router
}
