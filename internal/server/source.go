package server

import (
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	sourcedomain "github.com/staypoint/staypoint/internal/source/domain"
)

type createSourceRequest struct {
	OrgID    string `json:"org_id"`
	HotelID  string `json:"hotel_id"`
	Provider string `json:"provider"`
	Locator  string `json:"locator"`
}

type updateLocatorRequest struct {
	Locator string `json:"locator"`
}

// @Summary      List Sources
// @Description  List tracked sources in registration order
// @Tags         sources
// @Produce      json
// @Success      200  {object}  []sourcedomain.Source
// @Router       /sources [get]
func (s *Server) ListSources(c *gin.Context) {
	sources, err := s.sourceRepo.ListActive(c.Request.Context(), s.db)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": sources})
}

// @Summary      Register Source
// @Description  Register a tracked (hotel, provider) listing
// @Tags         sources
// @Accept       json
// @Produce      json
// @Param        request body createSourceRequest true "Register Source Request"
// @Success      200  {object}  sourcedomain.Source
// @Router       /sources [post]
func (s *Server) CreateSource(c *gin.Context) {
	var req createSourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	orgID, err := parseID(req.OrgID)
	if err != nil {
		AbortWithError(c, newValidationError("org_id", "invalid_id", "org_id must be a numeric id"))
		return
	}
	hotelID, err := parseID(req.HotelID)
	if err != nil {
		AbortWithError(c, newValidationError("hotel_id", "invalid_id", "hotel_id must be a numeric id"))
		return
	}

	src := &sourcedomain.Source{
		ID:       s.genID.Generate(),
		OrgID:    orgID,
		HotelID:  hotelID,
		Provider: strings.TrimSpace(req.Provider),
		Locator:  strings.TrimSpace(req.Locator),
		Active:   true,
	}
	if err := s.sourceRepo.Insert(c.Request.Context(), s.db, src); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": src})
}

// @Summary      Correct Source Locator
// @Description  Apply a locator correction to a registered source
// @Tags         sources
// @Accept       json
// @Produce      json
// @Param        id      path  string                true  "Source ID"
// @Param        request body  updateLocatorRequest  true  "Locator"
// @Router       /sources/{id}/locator [patch]
func (s *Server) UpdateSourceLocator(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_id", "source id must be numeric"))
		return
	}

	var req updateLocatorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	if err := s.sourceRepo.UpdateLocator(c.Request.Context(), s.db, id, req.Locator); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func parseID(raw string) (snowflake.ID, error) {
	return snowflake.ParseString(strings.TrimSpace(raw))
}
