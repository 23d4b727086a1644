package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	settlementdomain "github.com/nordlux/elcore/internal/settlement/domain"
	"github.com/nordlux/elcore/pkg/apperr"
)

func (s *Server) ListSettlements(c *gin.Context) {
	var query struct {
		Status          string `form:"status"`
		MeteringPointID string `form:"metering_point_id"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, apperr.New(apperr.ErrValidation, "invalid query"))
		return
	}

	ctx := c.Request.Context()
	switch {
	case query.MeteringPointID != "":
		id, err := uuid.Parse(query.MeteringPointID)
		if err != nil {
			AbortWithError(c, apperr.New(apperr.ErrValidation, "bad metering_point_id %q", query.MeteringPointID))
			return
		}
		settlements, err := s.settlementSvc.ListForMeteringPoint(ctx, id)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": settlements})
	case query.Status != "":
		settlements, err := s.settlementSvc.ListByStatus(ctx, settlementdomain.SettlementStatus(query.Status))
		if err != nil {
			AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": settlements})
	default:
		AbortWithError(c, apperr.New(apperr.ErrValidation, "status or metering_point_id is required"))
	}
}

func (s *Server) GetSettlementByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		AbortWithError(c, apperr.New(apperr.ErrValidation, "bad settlement id %q", c.Param("id")))
		return
	}
	resp, err := s.settlementSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"settlement": resp.Settlement,
		"lines":      resp.Lines,
	}})
}

func (s *Server) ListIssues(c *gin.Context) {
	status := settlementdomain.IssueStatus(c.DefaultQuery("status", string(settlementdomain.IssueOpen)))
	issues, err := s.settlementSvc.ListIssues(c.Request.Context(), status)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": issues})
}

func (s *Server) ResolveIssue(c *gin.Context) {
	s.updateIssue(c, s.settlementSvc.ResolveIssue)
}

func (s *Server) DismissIssue(c *gin.Context) {
	s.updateIssue(c, s.settlementSvc.DismissIssue)
}

func (s *Server) updateIssue(c *gin.Context, apply func(ctx context.Context, id uuid.UUID) (settlementdomain.SettlementIssue, error)) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		AbortWithError(c, apperr.New(apperr.ErrValidation, "bad issue id %q", c.Param("id")))
		return
	}
	issue, err := apply(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": issue})
}
