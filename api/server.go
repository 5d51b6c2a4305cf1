// Package api exposes a thin, read-mostly HTTP adapter over the venue
// facade for admin and operations use. It is never a second source of
// truth: every handler delegates straight to internal/venue. No auth,
// rate-limit, or CORS machinery — this surface is operator-only.
package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/RedRedRyan/NairobiBlockExchange/internal/venue"
	"github.com/RedRedRyan/NairobiBlockExchange/internal/xerrors"
)

// Server is the admin/ops HTTP adapter.
type Server struct {
	router *gin.Engine
	venue  *venue.Venue
	logger *zap.Logger
}

// NewServer builds the router. reg is the Prometheus registry /metrics
// serves; cmd/sekumarket passes the registry its Metrics are registered on.
func NewServer(v *venue.Venue, logger *zap.Logger, reg *prometheus.Registry) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(ginzap.Ginzap(logger, time.RFC3339, true))
	router.Use(ginzap.RecoveryWithZap(logger, true))

	s := &Server{router: router, venue: v, logger: logger}

	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	router.GET("/issuers", s.listIssuers)
	router.GET("/orderbook/:token/depth", s.depth)
	router.GET("/orderbook/:token/best", s.best)
	router.GET("/incentive/:token/spread/:provider", s.meetsSpread)

	admin := router.Group("/", s.requireOwner)
	admin.POST("/issuers", s.deployIssuer)
	admin.POST("/fee", s.setTradingFee)
	admin.POST("/issuers/:token/whitelist/:account", s.setWhitelist)

	return s
}

// ownerHeader carries the caller's capability account for admin endpoints.
// There is no session/auth layer here; the header is checked against
// venue.Owner the same way every in-process admin call is gated by an
// owner uuid argument.
const ownerHeader = "X-Owner-Id"

// requireOwner is the one auth seam this surface has: it parses ownerHeader
// and rejects the request before it ever reaches the facade if the header is
// missing or malformed. The facade's own owner checks are the real gate;
// this just keeps obviously-wrong callers out of the log.
func (s *Server) requireOwner(c *gin.Context) {
	caller, err := uuid.Parse(c.GetHeader(ownerHeader))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid " + ownerHeader})
		return
	}
	c.Set("caller", caller)
}

func callerFrom(c *gin.Context) uuid.UUID {
	return c.MustGet("caller").(uuid.UUID)
}

// statusFor maps the internal/xerrors sentinel taxonomy onto HTTP status
// codes: one switch, no problem-details envelope, since this surface has no
// external API consumers to hand a structured error body to.
func statusFor(err error) int {
	switch {
	case errors.Is(err, xerrors.ErrOwnerOnly),
		errors.Is(err, xerrors.ErrNotOwner),
		errors.Is(err, xerrors.ErrNotWhitelisted),
		errors.Is(err, xerrors.ErrNotActiveProvider):
		return http.StatusForbidden
	case errors.Is(err, xerrors.ErrUnknownToken),
		errors.Is(err, xerrors.ErrUnknownOrder),
		errors.Is(err, xerrors.ErrUnknownProgram):
		return http.StatusNotFound
	case errors.Is(err, xerrors.ErrDuplicateCompany),
		errors.Is(err, xerrors.ErrAlreadyRegistered),
		errors.Is(err, xerrors.ErrAlreadyInitialized):
		return http.StatusConflict
	case errors.Is(err, xerrors.ErrNotOpen),
		errors.Is(err, xerrors.ErrNotExpired),
		errors.Is(err, xerrors.ErrProgramEnded),
		errors.Is(err, xerrors.ErrProgramStillActive),
		errors.Is(err, xerrors.ErrNoCollateral):
		return http.StatusConflict
	case errors.Is(err, xerrors.ErrNonPositive),
		errors.Is(err, xerrors.ErrInvalidAmount),
		errors.Is(err, xerrors.ErrInsufficientBalance),
		errors.Is(err, xerrors.ErrInsufficientPool),
		errors.Is(err, xerrors.ErrNoShares),
		errors.Is(err, xerrors.ErrNothingToClaim),
		errors.Is(err, xerrors.ErrFeeTooHigh),
		errors.Is(err, xerrors.ErrAmountTooLarge):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Run starts listening on addr (e.g. "0.0.0.0:8080").
func (s *Server) Run(addr string) error {
	return s.router.Run(addr)
}

func (s *Server) listIssuers(c *gin.Context) {
	issuers := s.venue.Registry.ListIssuers()
	out := make([]gin.H, 0, len(issuers))
	for _, iss := range issuers {
		out = append(out, gin.H{
			"id":             iss.ID(),
			"company_name":   iss.CompanyName(),
			"security_token": iss.SecurityToken(),
		})
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) parseToken(c *gin.Context) (uuid.UUID, bool) {
	token, err := uuid.Parse(c.Param("token"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid token id"})
		return uuid.Nil, false
	}
	return token, true
}

func (s *Server) depth(c *gin.Context) {
	token, ok := s.parseToken(c)
	if !ok {
		return
	}
	n := 10
	if raw := c.Query("n"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			n = parsed
		}
	}
	bids, asks := s.venue.Book.Depth(token, n)
	c.JSON(http.StatusOK, gin.H{"bids": bids, "asks": asks})
}

func (s *Server) best(c *gin.Context) {
	token, ok := s.parseToken(c)
	if !ok {
		return
	}
	bidPrice, bidSize := s.venue.Book.BestBid(token)
	askPrice, askSize := s.venue.Book.BestAsk(token)
	c.JSON(http.StatusOK, gin.H{
		"bid": gin.H{"price": bidPrice, "available": bidSize},
		"ask": gin.H{"price": askPrice, "available": askSize},
	})
}

func (s *Server) meetsSpread(c *gin.Context) {
	token, ok := s.parseToken(c)
	if !ok {
		return
	}
	provider, err := uuid.Parse(c.Param("provider"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid provider id"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"meets_spread": s.venue.Incentive.MeetsSpread(provider, token),
		"daily_reward": s.venue.Incentive.DailyReward(provider, token),
	})
}

type deployIssuerRequest struct {
	CompanyName   string    `json:"company_name" binding:"required"`
	Symbol        string    `json:"symbol" binding:"required"`
	InitialSupply int64     `json:"initial_supply" binding:"required"`
	Treasury      uuid.UUID `json:"treasury" binding:"required"`
}

func (s *Server) deployIssuer(c *gin.Context) {
	var req deployIssuerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	iss, err := s.venue.DeployIssuer(callerFrom(c), req.CompanyName, req.Symbol, req.InitialSupply, req.Treasury)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"id":             iss.ID(),
		"company_name":   iss.CompanyName(),
		"security_token": iss.SecurityToken(),
	})
}

type setTradingFeeRequest struct {
	Bps int64 `json:"bps"`
}

func (s *Server) setTradingFee(c *gin.Context) {
	caller := callerFrom(c)
	if caller != s.venue.Owner {
		c.JSON(http.StatusForbidden, gin.H{"error": "owner only"})
		return
	}
	var req setTradingFeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.venue.Book.SetTradingFeeBps(req.Bps); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"trading_fee_bps": req.Bps})
}

type setWhitelistRequest struct {
	Status bool `json:"status"`
}

func (s *Server) setWhitelist(c *gin.Context) {
	token, ok := s.parseToken(c)
	if !ok {
		return
	}
	account, err := uuid.Parse(c.Param("account"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid account id"})
		return
	}
	iss, found := s.venue.Registry.LookupBySecurityToken(token)
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown security token"})
		return
	}
	var req setWhitelistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := iss.Whitelist(callerFrom(c), account, req.Status); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "account": account, "whitelisted": req.Status})
}
