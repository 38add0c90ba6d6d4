package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/DesumovJP/restaraunt-OS-sub001/internal/models"
	"github.com/DesumovJP/restaraunt-OS-sub001/internal/monitoring"
	"github.com/DesumovJP/restaraunt-OS-sub001/internal/notify"
	"github.com/DesumovJP/restaraunt-OS-sub001/internal/repository"
	"github.com/DesumovJP/restaraunt-OS-sub001/internal/service"
)

// Server is the HTTP surface of the order lifecycle service.
type Server struct {
	Router  *gin.Engine
	orders  *service.Orders
	hub     *notify.Hub
	pacing  *monitoring.PacingMonitor
	taxRate float64
}

// NewServer wires routes. The hub and pacing monitor are optional.
func NewServer(orders *service.Orders, hub *notify.Hub, pacing *monitoring.PacingMonitor, taxRate float64) *Server {
	s := &Server{
		Router:  gin.Default(),
		orders:  orders,
		hub:     hub,
		pacing:  pacing,
		taxRate: taxRate,
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all API endpoints
func (s *Server) setupRoutes() {
	s.Router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if s.hub != nil {
		s.Router.GET("/ws", s.hub.HandleWebSocket)
	}

	v1 := s.Router.Group("/api/v1")
	{
		// Order management
		v1.POST("/orders", s.CreateOrder)
		v1.GET("/orders", s.ListOrders)
		v1.GET("/orders/:id", s.GetOrder)
		v1.DELETE("/orders/:id", s.CancelOrder)
		v1.GET("/orders/:id/timings", s.GetCourseTimings)

		// Item lifecycle
		v1.POST("/orders/:id/items/:itemID/status", s.TransitionItem)
		v1.POST("/orders/:id/items/:itemID/undo", s.UndoItem)
		v1.PUT("/orders/:id/items/:itemID/comment", s.SetComment)
		v1.PUT("/orders/:id/items/:itemID/course", s.SetCourse)

		// Kitchen display
		v1.GET("/kitchen/stations", s.GetStationQueues)
		v1.GET("/kitchen/pacing", s.GetPacing)
	}
}

// orderView decorates an order with its derived status and totals.
type orderView struct {
	*models.Order
	Status   models.OrderStatus `json:"status"`
	Subtotal float64            `json:"subtotal"`
	Tax      float64            `json:"tax"`
	Total    float64            `json:"total"`
}

func (s *Server) view(order *models.Order) orderView {
	return orderView{
		Order:    order,
		Status:   order.DeriveStatus(),
		Subtotal: order.Subtotal(),
		Tax:      order.Tax(s.taxRate),
		Total:    order.Total(s.taxRate),
	}
}

// errorStatus maps domain errors to HTTP status codes. Commit failures
// are handled separately: the local transform succeeded but the
// persistence mirror did not.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrInvalidTransition),
		errors.Is(err, models.ErrUndoNotAllowed):
		return http.StatusConflict
	case errors.Is(err, models.ErrInvalidPresetKey),
		errors.Is(err, models.ErrValidation):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func respond(c *gin.Context, err error) {
	c.JSON(errorStatus(err), gin.H{"error": err.Error()})
}

func respondCommit(c *gin.Context, result service.CommitResult) {
	c.JSON(http.StatusBadGateway, gin.H{"error": "failed to persist change", "reason": result.Reason})
}

// CreateOrder places a new order with every item pending.
func (s *Server) CreateOrder(c *gin.Context) {
	var req struct {
		TableID string             `json:"table_id"`
		Items   []service.ItemSpec `json:"items"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := s.orders.PlaceOrder(c.Request.Context(), req.TableID, req.Items)
	if err != nil {
		respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, s.view(order))
}

// ListOrders returns every order with derived status and totals.
func (s *Server) ListOrders(c *gin.Context) {
	orders, err := s.orders.List(c.Request.Context())
	if err != nil {
		respond(c, err)
		return
	}
	views := make([]orderView, 0, len(orders))
	for _, order := range orders {
		views = append(views, s.view(order))
	}
	c.JSON(http.StatusOK, views)
}

// GetOrder returns one order by id.
func (s *Server) GetOrder(c *gin.Context) {
	order, err := s.orders.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respond(c, err)
		return
	}
	c.JSON(http.StatusOK, s.view(order))
}

// CancelOrder marks every still-cancellable item cancelled. Items the
// kitchen already started finish their run.
func (s *Server) CancelOrder(c *gin.Context) {
	order, result, err := s.orders.ApplyCancel(c.Request.Context(), c.Param("id"))
	if err != nil {
		respond(c, err)
		return
	}
	if !result.OK {
		respondCommit(c, result)
		return
	}
	c.JSON(http.StatusOK, s.view(order))
}

// TransitionItem advances one item along the lifecycle.
func (s *Server) TransitionItem(c *gin.Context) {
	var req struct {
		Status models.ItemStatus `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, result, err := s.orders.ApplyTransition(c.Request.Context(), c.Param("id"), c.Param("itemID"), req.Status)
	if err != nil {
		respond(c, err)
		return
	}
	if !result.OK {
		respondCommit(c, result)
		return
	}
	c.JSON(http.StatusOK, s.view(order))
}

// UndoItem reverses an item's last forward transition by one step.
func (s *Server) UndoItem(c *gin.Context) {
	var req struct {
		Reason       models.UndoReason `json:"reason"`
		CustomReason string            `json:"custom_reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, result, err := s.orders.ApplyUndo(c.Request.Context(), c.Param("id"), c.Param("itemID"), req.Reason, req.CustomReason)
	if err != nil {
		respond(c, err)
		return
	}
	if !result.OK {
		respondCommit(c, result)
		return
	}
	c.JSON(http.StatusOK, s.view(order))
}

// SetComment attaches an annotation to an item. When the caller
// supplies the table's declared allergens, the response carries the
// conflict warning alongside the order.
func (s *Server) SetComment(c *gin.Context) {
	var req struct {
		Text           string             `json:"text"`
		Presets        []models.PresetKey `json:"presets"`
		Visibility     []models.Role      `json:"visibility"`
		TableAllergens []models.PresetKey `json:"table_allergens"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, result, err := s.orders.ApplyComment(c.Request.Context(), c.Param("id"), c.Param("itemID"), req.Text, req.Presets, req.Visibility)
	if err != nil {
		respond(c, err)
		return
	}
	if !result.OK {
		respondCommit(c, result)
		return
	}

	item := order.Item(c.Param("itemID"))
	conflicts := models.ConflictsWithTableAllergens(item.Comment, req.TableAllergens)
	c.JSON(http.StatusOK, gin.H{"order": s.view(order), "allergen_conflicts": conflicts})
}

// SetCourse reassigns an item's course; the index is recomputed from
// the items already in the target course.
func (s *Server) SetCourse(c *gin.Context) {
	var req struct {
		Course models.CourseType `json:"course"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, result, err := s.orders.ApplyCourse(c.Request.Context(), c.Param("id"), c.Param("itemID"), req.Course)
	if err != nil {
		respond(c, err)
		return
	}
	if !result.OK {
		respondCommit(c, result)
		return
	}
	c.JSON(http.StatusOK, s.view(order))
}

// GetCourseTimings returns per-course timing summaries for one order.
func (s *Server) GetCourseTimings(c *gin.Context) {
	order, err := s.orders.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order_id": order.ID, "timings": order.CourseTimings()})
}

// GetStationQueues returns the kitchen display's per-station view of
// in-flight items.
func (s *Server) GetStationQueues(c *gin.Context) {
	queues, err := s.orders.StationQueues(c.Request.Context())
	if err != nil {
		respond(c, err)
		return
	}
	c.JSON(http.StatusOK, queues)
}

// GetPacing returns the courses currently flagged overdue.
func (s *Server) GetPacing(c *gin.Context) {
	if s.pacing == nil {
		c.JSON(http.StatusOK, gin.H{"overdue": []monitoring.OverdueCourse{}})
		return
	}
	c.JSON(http.StatusOK, gin.H{"overdue": s.pacing.Overdue(), "metrics": s.pacing.Metrics()})
}
