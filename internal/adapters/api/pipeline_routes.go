package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	pipelineCommands "github.com/andrescamacho/garmentflow/internal/application/pipeline/commands"
	pipelineQueries "github.com/andrescamacho/garmentflow/internal/application/pipeline/queries"
	subcontractCommands "github.com/andrescamacho/garmentflow/internal/application/subcontract/commands"
	subcontractQueries "github.com/andrescamacho/garmentflow/internal/application/subcontract/queries"
	"github.com/andrescamacho/garmentflow/internal/domain/shared"
)

type workerShareBody struct {
	WorkerID     string             `json:"worker_id" binding:"required"`
	Quantities   shared.QuantityMap `json:"quantities" binding:"required"`
	RatePerPiece decimal.Decimal    `json:"rate_per_piece"`
}

type assignBody struct {
	Workers      []workerShareBody  `json:"workers" binding:"dive"`
	StockBatchID string             `json:"stock_batch_id"`
	StockUsage   shared.QuantityMap `json:"stock_usage"`
}

type sendExternalBody struct {
	Subcontractor string             `json:"subcontractor" binding:"required"`
	RatePerPiece  decimal.Decimal    `json:"rate_per_piece"`
	Quantities    shared.QuantityMap `json:"quantities" binding:"required"`
}

type receiveExternalBody struct {
	Quantities shared.QuantityMap `json:"quantities" binding:"required"`
}

type publishPayablesBody struct {
	Limit int `json:"limit" binding:"min=0"`
}

func (s *Server) registerPipelineRoutes(g *gin.RouterGroup) {
	g.GET("", func(c *gin.Context) {
		stage := 0
		if raw := c.Query("stage"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil {
				writeError(c, shared.NewValidationError("stage", "must be an integer"))
				return
			}
			stage = parsed
		}
		s.send(c, http.StatusOK, &pipelineQueries.ListAvailableQuery{StageIndex: stage})
	})
	g.GET("/:id", func(c *gin.Context) {
		s.send(c, http.StatusOK, &pipelineQueries.GetAssignmentQuery{AssignmentID: c.Param("id")})
	})
	g.POST("/:id/assign", func(c *gin.Context) {
		var body assignBody
		if !bind(c, &body) {
			return
		}
		workers := make([]pipelineCommands.WorkerShare, 0, len(body.Workers))
		for _, w := range body.Workers {
			workers = append(workers, pipelineCommands.WorkerShare{
				WorkerID:     w.WorkerID,
				Quantities:   w.Quantities,
				RatePerPiece: w.RatePerPiece,
			})
		}
		s.send(c, http.StatusCreated, &pipelineCommands.AssignCommand{
			AssignmentID: c.Param("id"),
			Workers:      workers,
			StockBatchID: body.StockBatchID,
			StockUsage:   body.StockUsage,
		})
	})
	g.POST("/:id/complete", func(c *gin.Context) {
		s.send(c, http.StatusOK, &pipelineCommands.CompleteStageCommand{AssignmentID: c.Param("id")})
	})
	g.POST("/:id/finalize", func(c *gin.Context) {
		s.send(c, http.StatusOK, &pipelineCommands.FinalizeCommand{AssignmentID: c.Param("id")})
	})
	g.POST("/:id/send-external", func(c *gin.Context) {
		var body sendExternalBody
		if !bind(c, &body) {
			return
		}
		s.send(c, http.StatusCreated, &subcontractCommands.SendExternalCommand{
			AssignmentID:  c.Param("id"),
			Subcontractor: body.Subcontractor,
			RatePerPiece:  body.RatePerPiece,
			Quantities:    body.Quantities,
		})
	})
	g.POST("/:id/receive-external", func(c *gin.Context) {
		var body receiveExternalBody
		if !bind(c, &body) {
			return
		}
		s.send(c, http.StatusOK, &subcontractCommands.ReceiveExternalCommand{
			AssignmentID: c.Param("id"),
			Quantities:   body.Quantities,
		})
	})
}

func (s *Server) registerPayableRoutes(g *gin.RouterGroup) {
	g.GET("", func(c *gin.Context) {
		s.send(c, http.StatusOK, &subcontractQueries.ListPayablesQuery{Subcontractor: c.Query("subcontractor")})
	})
	g.POST("/publish", func(c *gin.Context) {
		var body publishPayablesBody
		if c.Request.ContentLength > 0 && !bind(c, &body) {
			return
		}
		s.send(c, http.StatusOK, &subcontractCommands.PublishPendingPayablesCommand{Limit: body.Limit})
	})
}
