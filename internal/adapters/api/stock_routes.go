package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	dispatchCommands "github.com/andrescamacho/garmentflow/internal/application/dispatch/commands"
	dispatchQueries "github.com/andrescamacho/garmentflow/internal/application/dispatch/queries"
	stockCommands "github.com/andrescamacho/garmentflow/internal/application/stock/commands"
	stockQueries "github.com/andrescamacho/garmentflow/internal/application/stock/queries"
	"github.com/andrescamacho/garmentflow/internal/domain/shared"
)

type importStockBody struct {
	ProductID  string             `json:"product_id" binding:"required"`
	Quantities shared.QuantityMap `json:"quantities" binding:"required"`
}

type orderLineBody struct {
	ProductID  string             `json:"product_id" binding:"required"`
	Quantities shared.QuantityMap `json:"quantities" binding:"required"`
}

type createOrderBody struct {
	Client string          `json:"client" binding:"required"`
	Lines  []orderLineBody `json:"lines" binding:"required,min=1,dive"`
}

func (s *Server) registerStockRoutes(g *gin.RouterGroup) {
	g.GET("/batches", func(c *gin.Context) {
		internalOnly, _ := strconv.ParseBool(c.DefaultQuery("internal_only", "false"))
		s.send(c, http.StatusOK, &stockQueries.ListBatchesQuery{
			ProductID:    c.Query("product_id"),
			InternalOnly: internalOnly,
		})
	})
	g.POST("/batches", func(c *gin.Context) {
		var body importStockBody
		if !bind(c, &body) {
			return
		}
		s.send(c, http.StatusCreated, &stockCommands.ImportStockCommand{
			ProductID:  body.ProductID,
			Quantities: body.Quantities,
		})
	})
	g.GET("/batches/:id", func(c *gin.Context) {
		s.send(c, http.StatusOK, &stockQueries.GetBatchQuery{StockBatchID: c.Param("id")})
	})
	g.GET("/batches/:id/substitution", func(c *gin.Context) {
		s.send(c, http.StatusOK, &stockQueries.SuggestSubstitutionQuery{
			StockBatchID: c.Param("id"),
			JobID:        c.Query("job_id"),
			AssignmentID: c.Query("assignment_id"),
		})
	})
}

func (s *Server) registerOrderRoutes(g *gin.RouterGroup) {
	g.GET("", func(c *gin.Context) {
		limit, err := strconv.Atoi(c.DefaultQuery("limit", "0"))
		if err != nil || limit < 0 {
			writeError(c, shared.NewValidationError("limit", "must be a non-negative integer"))
			return
		}
		s.send(c, http.StatusOK, &dispatchQueries.ListOrdersQuery{Limit: limit})
	})
	g.POST("", func(c *gin.Context) {
		var body createOrderBody
		if !bind(c, &body) {
			return
		}
		lines := make([]dispatchCommands.OrderLineInput, 0, len(body.Lines))
		for _, l := range body.Lines {
			lines = append(lines, dispatchCommands.OrderLineInput{ProductID: l.ProductID, Quantities: l.Quantities})
		}
		s.send(c, http.StatusCreated, &dispatchCommands.CreateOrderCommand{Client: body.Client, Lines: lines})
	})
	g.GET("/:id", func(c *gin.Context) {
		s.send(c, http.StatusOK, &dispatchQueries.GetOrderStatusQuery{OrderID: c.Param("id")})
	})
	g.POST("/:id/pack", func(c *gin.Context) {
		s.send(c, http.StatusOK, &dispatchCommands.PackOrderCommand{OrderID: c.Param("id")})
	})
	g.POST("/:id/dispatch", func(c *gin.Context) {
		s.send(c, http.StatusOK, &dispatchCommands.DispatchOrderCommand{OrderID: c.Param("id")})
	})
}
