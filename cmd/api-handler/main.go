package main

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/google/uuid"

	"github.com/volari/license-quoter/internal/catalog"
	"github.com/volari/license-quoter/internal/config"
	"github.com/volari/license-quoter/internal/errors"
	"github.com/volari/license-quoter/internal/logger"
	"github.com/volari/license-quoter/internal/pricing"
	"github.com/volari/license-quoter/internal/validator"
)

// Handler prices selections for API Gateway requests. It holds no quote
// state; quotes live with the caller.
type Handler struct {
	calc *pricing.Calculator
	cfg  *config.Config
}

// PriceRequest is the body of POST /price
type PriceRequest struct {
	pricing.ItemRequest
	Currency     string  `json:"currency"`
	ExchangeRate float64 `json:"exchangeRate"`
}

// PriceResponse is the body returned by POST /price
type PriceResponse struct {
	Item           *pricing.LineItem `json:"item"`
	FormattedTotal string            `json:"formattedTotal"`
}

// ResaleRequest is the body of POST /resale
type ResaleRequest struct {
	AmountUSD    float64 `json:"amountUSD"`
	ExchangeRate float64 `json:"exchangeRate"`
}

// NewHandler creates a new API handler
func NewHandler(cfg *config.Config) (*Handler, error) {
	cat, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		return nil, err
	}

	return &Handler{
		calc: pricing.NewCalculator(cat),
		cfg:  cfg,
	}, nil
}

// HandleRequest handles the API Gateway request
func (h *Handler) HandleRequest(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	requestID := request.RequestContext.RequestID
	if requestID == "" {
		requestID = uuid.New().String()
	}
	log := logger.Default().With(logger.Fields{"request_id": requestID})
	ctx = logger.IntoContext(ctx, log)

	log.Info("Received API request", logger.Fields{
		"path":   request.Path,
		"method": request.HTTPMethod,
	})

	switch {
	case request.HTTPMethod == http.MethodPost && request.Path == "/price":
		return h.handlePrice(ctx, request)
	case request.HTTPMethod == http.MethodPost && request.Path == "/resale":
		return h.handleResale(ctx, request)
	case request.HTTPMethod == http.MethodGet && request.Path == "/catalog":
		return jsonResponse(http.StatusOK, h.calc.Catalog())
	}

	return errorResponse(http.StatusNotFound, "NOT_FOUND", "Endpoint not found")
}

// handlePrice handles POST /price
func (h *Handler) handlePrice(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	log := logger.FromContext(ctx)

	var req PriceRequest
	if err := json.Unmarshal([]byte(request.Body), &req); err != nil {
		log.Error("Failed to parse price request body", logger.Fields{"error": err.Error()})
		return errorResponse(http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
	}

	if err := validator.ValidateItemRequest(&req.ItemRequest); err != nil {
		return appErrorResponse(err)
	}

	mode := req.Currency
	if mode == "" {
		mode = h.cfg.Currency.Mode
	}
	rate := req.ExchangeRate
	if rate <= 0 {
		rate = h.cfg.Currency.ExchangeRate
	}
	cc, err := validator.ValidateCurrency(mode, rate)
	if err != nil {
		return appErrorResponse(err)
	}

	item, err := h.calc.PriceItem(req.ItemRequest, cc)
	if err != nil {
		log.Warn("Pricing failed", logger.Fields{"error": err.Error()})
		return appErrorResponse(err)
	}

	cur := h.calc.Catalog().Currency.Origin
	if cc.Mode == pricing.ModeResale {
		cur = h.calc.Catalog().Currency.Resale
	}

	log.Info("Item priced", logger.Fields{
		"product_id": item.ProductID,
		"quantity":   item.Quantity,
		"total":      item.Total,
		"currency":   item.Currency,
	})

	return jsonResponse(http.StatusOK, PriceResponse{
		Item:           item,
		FormattedTotal: pricing.FormatMoney(item.Total, cur),
	})
}

// handleResale handles POST /resale
func (h *Handler) handleResale(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	var req ResaleRequest
	if err := json.Unmarshal([]byte(request.Body), &req); err != nil {
		logger.FromContext(ctx).Error("Failed to parse resale request body", logger.Fields{"error": err.Error()})
		return errorResponse(http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
	}
	if req.AmountUSD < 0 {
		return appErrorResponse(errors.ErrValidation("amountUSD", "must not be negative"))
	}

	breakdown, err := pricing.ComputeResale(req.AmountUSD, req.ExchangeRate, h.calc.Catalog().Tax)
	if err != nil {
		return appErrorResponse(err)
	}
	return jsonResponse(http.StatusOK, breakdown)
}

var corsHeaders = map[string]string{
	"Content-Type":                 "application/json",
	"Access-Control-Allow-Origin":  "*",
	"Access-Control-Allow-Methods": "GET,POST,OPTIONS",
	"Access-Control-Allow-Headers": "Content-Type,X-Amz-Date,Authorization,X-Api-Key,X-Amz-Security-Token",
}

func jsonResponse(statusCode int, v interface{}) (events.APIGatewayProxyResponse, error) {
	body, err := json.Marshal(v)
	if err != nil {
		logger.Error("Failed to marshal response", logger.Fields{"error": err.Error()})
		return errorResponse(http.StatusInternalServerError, errors.CodeInternal, "Failed to encode response")
	}
	return events.APIGatewayProxyResponse{
		StatusCode: statusCode,
		Headers:    corsHeaders,
		Body:       string(body),
	}, nil
}

func appErrorResponse(err error) (events.APIGatewayProxyResponse, error) {
	appErr, ok := errors.As(err)
	if !ok {
		appErr = errors.ErrInternalServer("Failed to process request", err)
	}

	body, _ := json.Marshal(errors.ToErrorResponse(appErr))

	return events.APIGatewayProxyResponse{
		StatusCode: appErr.StatusCode,
		Headers:    corsHeaders,
		Body:       string(body),
	}, nil
}

// errorResponse creates an error response
func errorResponse(statusCode int, code, message string) (events.APIGatewayProxyResponse, error) {
	return appErrorResponse(errors.New(code, message, statusCode, nil))
}

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("Failed to load configuration", logger.Fields{"error": err.Error()})
		panic(err)
	}

	// Initialize logger
	logger.SetDefault(logger.NewFromConfig(cfg.Logging.Format, cfg.Logging.Level))

	// Create handler
	handler, err := NewHandler(cfg)
	if err != nil {
		logger.Error("Failed to create handler", logger.Fields{"error": err.Error()})
		panic(err)
	}

	// Start Lambda
	lambda.Start(handler.HandleRequest)
}
