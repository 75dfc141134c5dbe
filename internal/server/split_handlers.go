package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/splitr/splitr/internal/middleware"
	"github.com/splitr/splitr/internal/models"
)

// totalsRequest carries the tax rate and tip policy for session creation
// and updates. Money and rates arrive as JSON numbers or strings; the
// decimal type accepts both.
type totalsRequest struct {
	TaxRate decimal.Decimal `json:"tax_rate"`
	Tip     struct {
		Kind   models.TipKind  `json:"kind"`
		Rate   decimal.Decimal `json:"rate"`
		Amount decimal.Decimal `json:"amount"`
	} `json:"tip"`
}

func (r totalsRequest) tipPolicy() models.TipPolicy {
	kind := r.Tip.Kind
	if kind == "" {
		kind = models.TipPercentage
	}
	return models.TipPolicy{Kind: kind, Rate: r.Tip.Rate, Amount: r.Tip.Amount}
}

func (s *Server) handleCreateSplit(c *gin.Context) {
	var req totalsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	view, err := s.splits.CreateSession(c.Request.Context(), middleware.GetUserID(c),
		c.Param("id"), req.TaxRate, req.tipPolicy())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

func (s *Server) handleGetSplit(c *gin.Context) {
	view, err := s.splits.GetSession(c.Request.Context(), middleware.GetUserID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

type personRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleAddPerson(c *gin.Context) {
	var req personRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	view, person, err := s.splits.AddPerson(c.Request.Context(), middleware.GetUserID(c),
		c.Param("id"), req.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"person": person, "session": view})
}

func (s *Server) handleRenamePerson(c *gin.Context) {
	var req personRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	view, err := s.splits.RenamePerson(c.Request.Context(), middleware.GetUserID(c),
		c.Param("id"), c.Param("personId"), req.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (s *Server) handleRemovePerson(c *gin.Context) {
	view, err := s.splits.RemovePerson(c.Request.Context(), middleware.GetUserID(c),
		c.Param("id"), c.Param("personId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

type assignRequest struct {
	ItemID   string `json:"item_id" binding:"required"`
	PersonID string `json:"person_id"`
}

func (s *Server) handleAssignItem(c *gin.Context) {
	var req assignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "item_id is required"})
		return
	}
	if req.PersonID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "person_id is required"})
		return
	}

	view, err := s.splits.AssignItem(c.Request.Context(), middleware.GetUserID(c),
		c.Param("id"), req.ItemID, req.PersonID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (s *Server) handleUnassignItem(c *gin.Context) {
	var req assignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "item_id is required"})
		return
	}

	view, err := s.splits.UnassignItem(c.Request.Context(), middleware.GetUserID(c),
		c.Param("id"), req.ItemID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (s *Server) handleUpdateTotals(c *gin.Context) {
	var req totalsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	view, err := s.splits.UpdateTotals(c.Request.Context(), middleware.GetUserID(c),
		c.Param("id"), req.TaxRate, req.tipPolicy())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (s *Server) handleFinalize(c *gin.Context) {
	view, err := s.splits.Finalize(c.Request.Context(), middleware.GetUserID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}
