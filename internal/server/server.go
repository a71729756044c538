package server

import (
	"errors"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"plate-backend/internal/config"
	"plate-backend/internal/domain"
	"plate-backend/internal/fees"
	"plate-backend/internal/infrastructure/stripe"
	"plate-backend/internal/ratelimit"
	"plate-backend/internal/usecase"
)

type Server struct {
	cfg      config.Config
	orders   *usecase.OrderService
	payments *usecase.PaymentService
	metro    *usecase.MetroService
	auth     *usecase.AuthService
	limiter  ratelimit.Limiter
	router   *gin.Engine
}

func New(cfg config.Config, orders *usecase.OrderService, payments *usecase.PaymentService, metro *usecase.MetroService, auth *usecase.AuthService, limiter ratelimit.Limiter) *Server {
	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	s := &Server{
		cfg:      cfg,
		orders:   orders,
		payments: payments,
		metro:    metro,
		auth:     auth,
		limiter:  limiter,
		router:   gin.New(),
	}
	s.router.Use(gin.Recovery())
	s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Run(addr string) error {
	return s.router.Run(addr)
}

func (s *Server) routes() {
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": "plate-backend"})
	})

	hooks := s.router.Group("/webhook", s.rateLimit())
	hooks.POST("/stripe", s.handleStripeWebhook)
	hooks.POST("/metro-cap-reached", s.handleMetroCap)

	api := s.router.Group("/api", s.rateLimit(), s.requireServiceToken())
	api.POST("/orders", s.handleCreateOrder)
	api.POST("/orders/checkout", s.handleCheckout)
	api.GET("/orders/:id", s.handleGetOrder)
	api.POST("/orders/:id/status", s.handleOrderStatus)
	api.GET("/forecast", s.handleForecast)
}

func (s *Server) rateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.limiter == nil {
			c.Next()
			return
		}
		ok, err := s.limiter.Allow(c.Request.Context(), c.ClientIP())
		if err != nil {
			log.Printf("[server] rate limiter error: %v", err)
			c.Next()
			return
		}
		if !ok {
			s.err(c, http.StatusTooManyRequests, "RateLimited", "too many requests, retry after the window resets")
			c.Abort()
			return
		}
		c.Next()
	}
}

func (s *Server) requireServiceToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(h, "Bearer ")
		if !ok || token == "" {
			s.err(c, http.StatusUnauthorized, "Unauthorized", "bearer token required")
			c.Abort()
			return
		}
		caller, err := s.auth.Verify(token)
		if err != nil {
			s.err(c, http.StatusUnauthorized, "Unauthorized", "invalid token")
			c.Abort()
			return
		}
		c.Set("caller", caller)
		c.Next()
	}
}

// handleStripeWebhook verifies the provider signature over the raw body before
// anything else. A request that fails verification never reaches a repository.
func (s *Server) handleStripeWebhook(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		s.err(c, http.StatusBadRequest, "BadRequest", "cannot read body")
		return
	}
	if err := stripe.VerifySignature(s.cfg.StripeWebhookSecret, c.GetHeader("stripe-signature"), body); err != nil {
		log.Printf("[webhook] signature rejected: %v", err)
		s.err(c, http.StatusBadRequest, "InvalidSignature", "webhook signature verification failed")
		return
	}
	ev, err := stripe.ParseEvent(body)
	if err != nil {
		s.err(c, http.StatusBadRequest, "BadRequest", "unparseable event payload")
		return
	}
	if err := s.payments.HandleEvent(c.Request.Context(), ev); err != nil {
		var bad usecase.ErrBadRequest
		if errors.As(err, &bad) {
			s.err(c, http.StatusBadRequest, "BadRequest", bad.Error())
			return
		}
		log.Printf("[webhook] event %s failed: %v", ev.Type, err)
		s.err(c, http.StatusInternalServerError, "ServerError", "event processing failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}

// handleMetroCap acknowledges everything it can. At-least-once delivery from
// the trigger source means malformed or irrelevant payloads are expected
// traffic, not faults.
func (s *Server) handleMetroCap(c *gin.Context) {
	if s.metro == nil {
		s.err(c, http.StatusInternalServerError, "ServerError", "metro alerting not configured")
		return
	}
	var u usecase.CapUpdate
	if err := c.ShouldBindJSON(&u); err != nil {
		c.JSON(http.StatusOK, gin.H{"received": true, "message": "ignored: invalid payload"})
		return
	}
	msg, err := s.metro.HandleCapUpdate(u)
	if err != nil {
		log.Printf("[webhook] metro cap update failed: %v", err)
		s.err(c, http.StatusInternalServerError, "ServerError", "alert write failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"received": true, "message": msg})
}

func (s *Server) handleCreateOrder(c *gin.Context) {
	var in usecase.CreateOrderInput
	if err := c.ShouldBindJSON(&in); err != nil {
		s.err(c, http.StatusBadRequest, "BadRequest", "invalid json")
		return
	}
	o, err := s.orders.Create(in)
	if err != nil {
		s.serviceErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, o)
}

func (s *Server) handleCheckout(c *gin.Context) {
	var req usecase.CheckoutInput
	if err := c.ShouldBindJSON(&req); err != nil {
		s.err(c, http.StatusBadRequest, "BadRequest", "invalid json")
		return
	}
	ref, err := s.orders.Checkout(c.Request.Context(), req)
	if err != nil {
		s.serviceErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"paymentIntentId": ref.ID, "clientSecret": ref.ClientSecret})
}

func (s *Server) handleGetOrder(c *gin.Context) {
	o, ok := s.orders.Repo.Get(c.Param("id"))
	if !ok {
		s.err(c, http.StatusNotFound, "NotFound", "order not found")
		return
	}
	c.JSON(http.StatusOK, o)
}

type statusReq struct {
	Status string `json:"status"`
}

func (s *Server) handleOrderStatus(c *gin.Context) {
	var req statusReq
	if err := c.ShouldBindJSON(&req); err != nil || req.Status == "" {
		s.err(c, http.StatusBadRequest, "BadRequest", "status required")
		return
	}
	o, err := s.orders.UpdateStatus(c.Param("id"), domain.OrderStatus(req.Status))
	if err != nil {
		s.serviceErr(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

func (s *Server) handleForecast(c *gin.Context) {
	metros, err := s.metro.Repo.ListMetroCounts()
	if err != nil {
		s.err(c, http.StatusInternalServerError, "ServerError", "cannot load metro counts")
		return
	}
	a := fees.DefaultAssumptions()
	perMetro := make([]fees.MetroForecast, 0, len(metros))
	for _, m := range metros {
		perMetro = append(perMetro, fees.ForecastRevenueForMetro(m, a))
	}
	c.JSON(http.StatusOK, gin.H{
		"metros": perMetro,
		"totals": fees.ForecastRevenueTotals(metros, a),
	})
}

func (s *Server) serviceErr(c *gin.Context, err error) {
	var (
		nf   usecase.ErrNotFound
		conf usecase.ErrConflict
		bad  usecase.ErrBadRequest
	)
	switch {
	case errors.As(err, &nf):
		s.err(c, http.StatusNotFound, "NotFound", err.Error())
	case errors.As(err, &conf):
		s.err(c, http.StatusConflict, "Conflict", err.Error())
	case errors.As(err, &bad):
		s.err(c, http.StatusBadRequest, "BadRequest", err.Error())
	default:
		log.Printf("[server] internal error: %v", err)
		s.err(c, http.StatusInternalServerError, "ServerError", "internal error")
	}
}

func (s *Server) err(c *gin.Context, status int, code, msg string) {
	c.JSON(status, gin.H{
		"error": gin.H{"code": code, "message": msg},
	})
}
