package tours

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"roamly/internal/shared/constants"
	"roamly/internal/shared/utils/response"
	"roamly/pkg/cache"
)

type Controller struct {
	repo  Repository
	cache cache.Service
}

func NewController(repo Repository, cacheService cache.Service) *Controller {
	return &Controller{
		repo:  repo,
		cache: cacheService,
	}
}

// ListTours handles GET /tours
func (c *Controller) ListTours(ctx *gin.Context) {
	tours, err := c.repo.ListActiveTours(ctx.Request.Context(), 50, 0)
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to list tours", nil, nil)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "Tours retrieved successfully", tours, nil)
}

// GetTour handles GET /tours/:id, cache-aside through Redis
func (c *Controller) GetTour(ctx *gin.Context) {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid tour ID", nil, nil)
		return
	}

	var tour Tour
	if c.cache != nil {
		err = c.cache.GetOrSet(ctx.Request.Context(), constants.TourKey(id.String()), constants.TTL_TOUR_DETAILS,
			func() (interface{}, error) {
				return c.repo.GetTourByID(ctx.Request.Context(), id)
			}, &tour)
	} else {
		var t *Tour
		t, err = c.repo.GetTourByID(ctx.Request.Context(), id)
		if t != nil {
			tour = *t
		}
	}

	if err != nil {
		if errors.Is(err, ErrTourNotFound) {
			response.RespondJSON(ctx, "error", http.StatusNotFound, "Tour not found", nil, nil)
			return
		}
		response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to get tour", nil, nil)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Tour retrieved successfully", tour, nil)
}
