package httpapi

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/simaogato/portfolio-backend/internal/domain"
	"github.com/simaogato/portfolio-backend/internal/usecase/portfolio"
)

// Router exposes bucket, position and date endpoints
type Router struct {
	Service *portfolio.PortfolioService
}

// NewRouter creates a new Router instance
func NewRouter(service *portfolio.PortfolioService) *Router {
	return &Router{Service: service}
}

// Register mounts every endpoint on the given group
func (r *Router) Register(group *gin.RouterGroup) {
	group.GET("/health", r.handleHealth)

	group.GET("/buckets", r.handleListBuckets)
	group.POST("/buckets/:name", r.handleCreateBucket)
	group.DELETE("/buckets/:name", r.handleDeleteBucket)

	group.POST("/positions/orders", r.handleAddOrder)
	group.POST("/positions/buckets/add", r.handleAddToBuckets)
	group.POST("/positions/buckets/remove", r.handleRemoveFromBuckets)
	group.GET("/positions/symbols/:symbol", r.handleGetPosition)
	group.GET("/positions/buckets/:bucket", r.handleGetBucketPosition)

	group.GET("/dates/:symbol", r.handleAvailableDates)
}

// orderRequest is the body of POST /positions/orders.
// date accepts RFC3339 or YYYY-MM-DD.
type orderRequest struct {
	Type     string   `json:"type" binding:"required"`
	Symbol   string   `json:"symbol" binding:"required"`
	Date     string   `json:"date" binding:"required"`
	Quantity int64    `json:"quantity"`
	Buckets  []string `json:"buckets"`
}

// bucketsUpdateRequest is the body of the bucket membership endpoints
type bucketsUpdateRequest struct {
	Symbol  string   `json:"symbol" binding:"required"`
	Buckets []string `json:"buckets"`
}

func (r *Router) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (r *Router) handleListBuckets(c *gin.Context) {
	c.JSON(http.StatusOK, r.Service.ListBuckets(c.Request.Context()))
}

func (r *Router) handleCreateBucket(c *gin.Context) {
	if err := r.Service.CreateBucket(c.Request.Context(), c.Param("name")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (r *Router) handleDeleteBucket(c *gin.Context) {
	if err := r.Service.DeleteBucket(c.Request.Context(), c.Param("name")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (r *Router) handleAddOrder(c *gin.Context) {
	var req orderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBadRequest(c, fmt.Sprintf("malformed order: %v", err))
		return
	}
	direction, err := domain.ParseDirection(req.Type)
	if err != nil {
		writeBadRequest(c, err.Error())
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		writeBadRequest(c, err.Error())
		return
	}

	err = r.Service.AddOrder(c.Request.Context(), portfolio.OrderRequest{
		Direction: direction,
		Symbol:    req.Symbol,
		TradeDate: date,
		Quantity:  req.Quantity,
		Buckets:   req.Buckets,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (r *Router) handleAddToBuckets(c *gin.Context) {
	var req bucketsUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBadRequest(c, fmt.Sprintf("malformed request: %v", err))
		return
	}
	err := r.Service.AddToBuckets(c.Request.Context(), portfolio.BucketsUpdateRequest{Symbol: req.Symbol, Buckets: req.Buckets})
	if err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (r *Router) handleRemoveFromBuckets(c *gin.Context) {
	var req bucketsUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBadRequest(c, fmt.Sprintf("malformed request: %v", err))
		return
	}
	err := r.Service.RemoveFromBuckets(c.Request.Context(), portfolio.BucketsUpdateRequest{Symbol: req.Symbol, Buckets: req.Buckets})
	if err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (r *Router) handleGetPosition(c *gin.Context) {
	pos, err := r.Service.GetPosition(c.Request.Context(), c.Param("symbol"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, pos)
}

func (r *Router) handleGetBucketPosition(c *gin.Context) {
	report, err := r.Service.GetBucketPosition(c.Request.Context(), c.Param("bucket"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (r *Router) handleAvailableDates(c *gin.Context) {
	dates, err := r.Service.GetAvailableDates(c.Request.Context(), c.Param("symbol"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dates)
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: want RFC3339 or YYYY-MM-DD", s)
	}
	return t, nil
}
