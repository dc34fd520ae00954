package payments

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"roamly/internal/gateway"
	"roamly/internal/shared/utils/response"
)

type Controller struct {
	service   Service
	validator *validator.Validate
}

func NewController(service Service) *Controller {
	return &Controller{
		service:   service,
		validator: validator.New(),
	}
}

// CreateOrder handles POST /payments/orders
func (c *Controller) CreateOrder(ctx *gin.Context) {
	userID, ok := userIDFromContext(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return
	}

	var req CreateOrderRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	if err := c.validator.Struct(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Validation failed", nil, err.Error())
		return
	}

	resp, err := c.service.CreateOrder(ctx.Request.Context(), userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, ErrTourUnavailable):
			response.RespondJSON(ctx, "error", http.StatusNotFound, "Tour not found or not bookable", nil, nil)
		case errors.Is(err, gateway.ErrGatewayUnavailable):
			response.RespondJSON(ctx, "error", http.StatusBadGateway, "Payment gateway unavailable, please retry", nil, nil)
		default:
			var gwErr *gateway.Error
			if errors.As(err, &gwErr) {
				response.RespondJSON(ctx, "error", http.StatusBadGateway, "Payment gateway rejected the order", nil, gwErr.Description)
				return
			}
			response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to create order", nil, nil)
		}
		return
	}

	response.RespondJSON(ctx, "success", http.StatusCreated, "Order created successfully", resp, nil)
}

// HandleWebhook handles POST /payments/webhook. The body must be read raw,
// before any binding, because the signature covers the exact wire bytes.
// Responses here talk to the gateway, not to humans: 2xx stops redelivery,
// 401 stops it permanently, anything else makes the gateway retry.
func (c *Controller) HandleWebhook(ctx *gin.Context) {
	rawBody, err := ctx.GetRawData()
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"status": "error"})
		return
	}

	signature := ctx.GetHeader("X-Signature")

	result, err := c.service.HandleWebhookEvent(ctx.Request.Context(), rawBody, signature)
	if err != nil {
		if errors.Is(err, ErrInvalidSignature) {
			ctx.JSON(http.StatusUnauthorized, gin.H{"status": "error"})
			return
		}
		if errors.Is(err, ErrMalformedEvent) {
			// A body we cannot parse will never parse on retry
			ctx.JSON(http.StatusBadRequest, gin.H{"status": "error"})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{"status": "error"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"status": result.Status})
}

// Refund handles POST /payments/refund (admin only)
func (c *Controller) Refund(ctx *gin.Context) {
	var req RefundRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	if err := c.validator.Struct(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Validation failed", nil, err.Error())
		return
	}

	resp, err := c.service.Refund(ctx.Request.Context(), &req)
	if err != nil {
		var gwErr *gateway.Error
		switch {
		case errors.As(err, &gwErr):
			status := http.StatusBadRequest
			if gwErr.StatusCode == http.StatusNotFound {
				status = http.StatusNotFound
			}
			response.RespondJSON(ctx, "error", status, "Gateway rejected the refund", nil, gwErr.Description)
		case errors.Is(err, ErrNotRefundable):
			response.RespondJSON(ctx, "error", http.StatusConflict, "Payment cannot be refunded in its current state", nil, err.Error())
		case errors.Is(err, gateway.ErrGatewayUnavailable):
			response.RespondJSON(ctx, "error", http.StatusBadGateway, "Payment gateway unavailable, please retry", nil, nil)
		default:
			response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to process refund", nil, nil)
		}
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Refund processed successfully", resp, nil)
}

func userIDFromContext(ctx *gin.Context) (uuid.UUID, bool) {
	raw, exists := ctx.Get("user_id")
	if !exists {
		return uuid.Nil, false
	}
	idStr, ok := raw.(string)
	if !ok {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
