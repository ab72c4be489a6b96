// Reviews HTTP handler.
//
// GET /api/reviews serves the business's Google reviews in the shape the
// testimonials section renders. Caching and the stale fallback live in the
// service; this layer only maps errors and applies ?limit.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/hvac-site-backend/internal/domain"
	"github.com/tbourn/hvac-site-backend/internal/services"
	"github.com/tbourn/hvac-site-backend/internal/utils"
)

// GetReviews godoc
// @ID          getReviews
// @Summary     Customer reviews
// @Description Returns reviews, average rating and total count for the configured place.
// @Tags        Reviews
// @Produce     json
//
// @Param       limit  query  int  false  "Maximum number of reviews"  minimum(1)
//
// @Success     200  {object}  domain.ReviewSummary
// @Failure     400  {object}  handlers.ErrorResponse  "Places API status other than OK"
// @Failure     500  {object}  handlers.ErrorResponse  "Not configured or upstream unavailable"
// @Router      /reviews [get]
func (h *Handlers) GetReviews(c *gin.Context) {
	if h.reviews == nil {
		fail(c, http.StatusInternalServerError, ErrCodeReviewsNotConfigured, "Configuration error", services.ErrReviewsNotConfigured)
		return
	}

	sum, err := h.reviews.Get(c.Request.Context())
	if err != nil {
		var pse *services.PlacesStatusError
		switch {
		case errors.Is(err, services.ErrReviewsNotConfigured):
			failWith(c, http.StatusInternalServerError, ErrorResponse{
				Code:    ErrCodeReviewsNotConfigured,
				Error:   "Configuration error",
				Details: "Missing API Key or Place ID",
			}, err)
		case errors.As(err, &pse):
			failWith(c, http.StatusBadRequest, ErrorResponse{
				Code:    ErrCodeReviewsUpstream,
				Error:   pse.Status,
				Message: pse.Message,
			}, nil)
		default:
			fail(c, http.StatusInternalServerError, ErrCodeReviewsUnavailable, "Failed to fetch reviews", err)
		}
		return
	}

	if sum.Reviews == nil {
		sum.Reviews = []domain.Review{}
	}
	sum.Reviews = utils.Head(sum.Reviews, utils.AtoiDefault(c.Query("limit"), 0))
	ok(c, http.StatusOK, sum)
}
