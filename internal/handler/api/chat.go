package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"FinChat/internal/domain/models"
	"FinChat/internal/service/ratelimit"
	"FinChat/internal/service/ticker"
	"FinChat/internal/usecase"
	xhttp "FinChat/pkg/http"
	xlogger "FinChat/pkg/logger"
)

// ChatHandler serves the question-answering endpoints.
type ChatHandler struct {
	logger      *xlogger.Logger
	dispatcher  *usecase.Dispatcher
	synthesizer *usecase.Synthesizer
	resolver    *ticker.Resolver
	limiter     *ratelimit.Limiter
	rlCapacity  float64
	rlRefill    float64
}

func NewChatHandler(
	logger *xlogger.Logger,
	dispatcher *usecase.Dispatcher,
	synthesizer *usecase.Synthesizer,
	resolver *ticker.Resolver,
	rlCapacity, rlRefill float64,
) *ChatHandler {
	return &ChatHandler{
		logger:      logger,
		dispatcher:  dispatcher,
		synthesizer: synthesizer,
		resolver:    resolver,
		limiter:     ratelimit.New(),
		rlCapacity:  rlCapacity,
		rlRefill:    rlRefill,
	}
}

func (h *ChatHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.POST("/chat", h.Chat)
	g.GET("/tickers", h.Tickers)
}

// Chat runs one dispatch turn for the posted question and synthesizes an
// answer. Turns with no structured data fall back to a generic
// conversational answer rather than an error.
func (h *ChatHandler) Chat(c echo.Context) error {
	req := &models.ChatRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	if !h.limiter.Allow(req.SessionID, h.rlCapacity, h.rlRefill) {
		h.logger.Warn("chat rate limited", xlogger.String("session", req.SessionID))
		return xhttp.AppErrorResponse(c,
			xhttp.NewAppError("ERR_RATE_LIMITED", "", "too many requests for session", http.StatusTooManyRequests))
	}

	ctx := c.Request().Context()
	result, err := h.dispatcher.Dispatch(ctx, req.Question)
	if err != nil {
		h.logger.Error("dispatch failed", xlogger.String("session", req.SessionID), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, h.mapDispatchError(err))
	}

	resp := &models.ChatResponse{
		Data:     result.Records,
		Charts:   result.Charts,
		Grounded: !result.Empty(),
	}

	if resp.Grounded {
		resp.Answer, err = h.synthesizer.Answer(ctx, req.Question, result.Records)
	} else {
		resp.Answer, err = h.synthesizer.AnswerDefault(ctx, req.Question)
	}
	if err != nil {
		h.logger.Error("synthesis failed", xlogger.String("session", req.SessionID), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, h.mapDispatchError(err))
	}

	return xhttp.SuccessResponse(c, resp)
}

// Tickers resolves the company names in a free-text query, mostly a
// debugging aid for the extraction and resolution path.
func (h *ChatHandler) Tickers(c echo.Context) error {
	req := &models.TickerLookupRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	records, err := h.resolver.TickersFromQuery(c.Request().Context(), req.Q)
	if err != nil {
		h.logger.Error("ticker lookup failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, h.mapDispatchError(err))
	}
	return xhttp.SuccessResponse(c, records)
}

func (h *ChatHandler) mapDispatchError(err error) error {
	switch {
	case models.IsOracleError(err):
		return xhttp.NewAppError("ERR_ORACLE_UNAVAILABLE", "", "language model unavailable", http.StatusBadGateway).WithError(err)
	case models.IsUnknownTool(err):
		return xhttp.NewAppError("ERR_UNKNOWN_TOOL", "", err.Error(), http.StatusInternalServerError).WithError(err)
	default:
		return xhttp.InternalError("dispatch failed").WithError(err)
	}
}
