package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// @Summary      Run Refresh Cycle
// @Description  Trigger a full refresh cycle and return the batch report
// @Tags         refresh
// @Produce      json
// @Router       /refresh/run [post]
func (s *Server) RunRefresh(c *gin.Context) {
	if !s.triggers.Allow(c.ClientIP()) {
		AbortWithError(c, ErrTooMany)
		return
	}

	report, err := s.refreshSvc.RunCycle(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": report})
}

// @Summary      Latest Refresh Report
// @Description  Return the report of the most recent completed cycle
// @Tags         refresh
// @Produce      json
// @Router       /refresh/latest [get]
func (s *Server) LatestRefresh(c *gin.Context) {
	report := s.refreshSvc.LastReport()
	if report == nil {
		AbortWithError(c, ErrNotFound)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": report})
}

// @Summary      Hotel Rates
// @Description  List stored rate points for a hotel, optionally bounded by check-in date
// @Tags         rates
// @Produce      json
// @Param        id    path   string  true   "Hotel ID"
// @Param        from  query  string  false  "Earliest check-in (2006-01-02)"
// @Param        to    query  string  false  "Latest check-in (2006-01-02)"
// @Router       /hotels/{id}/rates [get]
func (s *Server) HotelRates(c *gin.Context) {
	hotelID, err := parseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_id", "hotel id must be numeric"))
		return
	}

	from, err := parseDate(c.Query("from"))
	if err != nil {
		AbortWithError(c, newValidationError("from", "invalid_date", "from must be formatted 2006-01-02"))
		return
	}
	to, err := parseDate(c.Query("to"))
	if err != nil {
		AbortWithError(c, newValidationError("to", "invalid_date", "to must be formatted 2006-01-02"))
		return
	}

	points, err := s.refreshSvc.HotelRates(c.Request.Context(), hotelID, from, to)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": points})
}

func parseDate(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	return time.Parse("2006-01-02", raw)
}
