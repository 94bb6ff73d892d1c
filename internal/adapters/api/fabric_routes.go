package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	fabricCommands "github.com/andrescamacho/garmentflow/internal/application/fabric/commands"
	fabricQueries "github.com/andrescamacho/garmentflow/internal/application/fabric/queries"
)

type registerBatchBody struct {
	FabricType string `json:"fabric_type" binding:"required"`
	Color      string `json:"color" binding:"required"`
	Design     string `json:"design"`
	Quality    string `json:"quality"`
}

type intakeRollBody struct {
	BatchID string          `json:"batch_id" binding:"required"`
	Length  decimal.Decimal `json:"length"`
}

type legacyRollBody struct {
	BatchID         string          `json:"batch_id" binding:"required"`
	OriginalLength  decimal.Decimal `json:"original_length"`
	RemainingLength decimal.Decimal `json:"remaining_length"`
}

func (s *Server) registerFabricRoutes(g *gin.RouterGroup) {
	g.GET("/batches", func(c *gin.Context) {
		s.send(c, http.StatusOK, &fabricQueries.ListBatchesQuery{})
	})
	g.POST("/batches", func(c *gin.Context) {
		var body registerBatchBody
		if !bind(c, &body) {
			return
		}
		s.send(c, http.StatusCreated, &fabricCommands.RegisterBatchCommand{
			FabricType: body.FabricType,
			Color:      body.Color,
			Design:     body.Design,
			Quality:    body.Quality,
		})
	})
	g.GET("/batches/:id/rolls", func(c *gin.Context) {
		s.send(c, http.StatusOK, &fabricQueries.ListRollsQuery{BatchID: c.Param("id")})
	})
	g.POST("/rolls", func(c *gin.Context) {
		var body intakeRollBody
		if !bind(c, &body) {
			return
		}
		s.send(c, http.StatusCreated, &fabricCommands.IntakeRollCommand{BatchID: body.BatchID, Length: body.Length})
	})
	g.POST("/rolls/legacy", func(c *gin.Context) {
		var body legacyRollBody
		if !bind(c, &body) {
			return
		}
		s.send(c, http.StatusCreated, &fabricCommands.ImportLegacyRollCommand{
			BatchID:         body.BatchID,
			OriginalLength:  body.OriginalLength,
			RemainingLength: body.RemainingLength,
		})
	})
	g.GET("/rolls/:id", func(c *gin.Context) {
		s.send(c, http.StatusOK, &fabricQueries.GetRollQuery{RollID: c.Param("id")})
	})
	g.GET("/rolls/:id/usage", func(c *gin.Context) {
		s.send(c, http.StatusOK, &fabricQueries.GetHistoricalUsageQuery{
			RollID: c.Param("id"),
			JobID:  c.Query("job_id"),
		})
	})
}
