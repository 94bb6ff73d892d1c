package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	cuttingCommands "github.com/andrescamacho/garmentflow/internal/application/cutting/commands"
	cuttingQueries "github.com/andrescamacho/garmentflow/internal/application/cutting/queries"
	pipelineQueries "github.com/andrescamacho/garmentflow/internal/application/pipeline/queries"
	"github.com/andrescamacho/garmentflow/internal/domain/shared"
)

type startJobBody struct {
	OrderLineID string             `json:"order_line_id"`
	ProductID   string             `json:"product_id"`
	Target      shared.QuantityMap `json:"target"`
	WorkerID    string             `json:"worker_id" binding:"required"`
}

type fabricUsageBody struct {
	RollID string             `json:"roll_id" binding:"required"`
	Amount decimal.Decimal    `json:"amount"`
	Pieces shared.QuantityMap `json:"pieces"`
}

type stockUsageBody struct {
	StockBatchID string             `json:"stock_batch_id" binding:"required"`
	Quantities   shared.QuantityMap `json:"quantities" binding:"required"`
}

func (s *Server) registerCuttingRoutes(g *gin.RouterGroup) {
	g.GET("", func(c *gin.Context) {
		s.send(c, http.StatusOK, &cuttingQueries.ListJobsQuery{Status: c.Query("status")})
	})
	g.POST("", func(c *gin.Context) {
		var body startJobBody
		if !bind(c, &body) {
			return
		}
		s.send(c, http.StatusCreated, &cuttingCommands.StartJobCommand{
			OrderLineID: body.OrderLineID,
			ProductID:   body.ProductID,
			Target:      body.Target,
			WorkerID:    body.WorkerID,
		})
	})
	g.GET("/:id", func(c *gin.Context) {
		s.send(c, http.StatusOK, &cuttingQueries.GetJobQuery{JobID: c.Param("id")})
	})
	g.GET("/:id/lineage", func(c *gin.Context) {
		s.send(c, http.StatusOK, &pipelineQueries.ListLineageQuery{JobID: c.Param("id")})
	})
	g.POST("/:id/fabric-usages", func(c *gin.Context) {
		var body fabricUsageBody
		if !bind(c, &body) {
			return
		}
		s.send(c, http.StatusCreated, &cuttingCommands.RecordFabricUsageCommand{
			JobID:  c.Param("id"),
			RollID: body.RollID,
			Amount: body.Amount,
			Pieces: body.Pieces,
		})
	})
	g.POST("/:id/stock-usages", func(c *gin.Context) {
		var body stockUsageBody
		if !bind(c, &body) {
			return
		}
		s.send(c, http.StatusCreated, &cuttingCommands.RecordStockUsageCommand{
			JobID:        c.Param("id"),
			StockBatchID: body.StockBatchID,
			Quantities:   body.Quantities,
		})
	})
	g.POST("/:id/complete", func(c *gin.Context) {
		s.send(c, http.StatusOK, &cuttingCommands.CompleteJobCommand{JobID: c.Param("id")})
	})
}
