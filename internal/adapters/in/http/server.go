package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/application/usecases/queries"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/errs"

	"github.com/labstack/echo/v4"
	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"
)

type OrderCreator interface {
	Handle(ctx context.Context, cmd commands.CreateOrderCommand) (commands.CreateOrderResult, error)
}

type BatchStatusChanger interface {
	Handle(ctx context.Context, cmd commands.BatchChangeOrderStatusCommand) (commands.BatchResult, error)
}

type OrderReader interface {
	Handle(ctx context.Context, query queries.GetOrderQuery) (queries.GetOrderQueryResponse, error)
}

type UncompletedOrdersReader interface {
	Handle(ctx context.Context, query queries.GetUncompletedOrdersQuery) ([]queries.GetUncompletedOrdersQueryResponse, error)
}

// Server turns HTTP requests into commands and queries.
// It coordinates between HTTP handlers and application use cases.
type Server struct {
	// Command handlers
	createOrderHandler OrderCreator
	changeStatus       commands.StatusChanger
	batchChangeStatus  BatchStatusChanger

	// Query handlers
	getOrderHandler             OrderReader
	getUncompletedOrdersHandler UncompletedOrdersReader

	logger *slog.Logger
}

func NewServer(
	createOrderHandler OrderCreator,
	changeStatus commands.StatusChanger,
	batchChangeStatus BatchStatusChanger,
	getOrderHandler OrderReader,
	getUncompletedOrdersHandler UncompletedOrdersReader,
	logger *slog.Logger,
) *Server {
	return &Server{
		createOrderHandler:          createOrderHandler,
		changeStatus:                changeStatus,
		batchChangeStatus:           batchChangeStatus,
		getOrderHandler:             getOrderHandler,
		getUncompletedOrdersHandler: getUncompletedOrdersHandler,
		logger:                      logger,
	}
}

// CreateOrder handles POST /api/v1/orders.
func (s *Server) CreateOrder(ctx echo.Context) error {
	actor, err := actorFromHeaders(ctx)
	if err != nil {
		return s.respondError(ctx, err)
	}

	var body NewOrder
	if err = ctx.Bind(&body); err != nil {
		return writeError(ctx, http.StatusBadRequest, errs.KindValidation.String(), "Invalid request body")
	}

	inventoryRef, err := kernel.UUIDFromUUID(body.BusinessInventoryID)
	if err != nil {
		return s.respondError(ctx, errs.NewValueIsInvalidErrorWithCause("business_inventory_id", err))
	}

	cmd, err := commands.NewCreateOrderCommand(
		actor,
		inventoryRef,
		body.Quantity,
		body.SpecialInstructions,
		strings.TrimSpace(ctx.Request().Header.Get(headerIdempotencyKey)),
	)
	if err != nil {
		return s.respondError(ctx, err)
	}
	if body.PreferredDeliveryTime != nil {
		cmd = cmd.WithPreferredDelivery(*body.PreferredDeliveryTime)
	}

	result, err := s.createOrderHandler.Handle(requestContext(ctx), cmd)
	if err != nil {
		return s.respondError(ctx, err)
	}

	return ctx.JSON(http.StatusCreated, orderFromDomain(result.Order))
}

// GetOrder handles GET /api/v1/orders/{id}.
func (s *Server) GetOrder(ctx echo.Context) error {
	orderID, err := pathOrderID(ctx)
	if err != nil {
		return s.respondError(ctx, err)
	}

	query, err := queries.NewGetOrderQuery(orderID)
	if err != nil {
		return s.respondError(ctx, err)
	}

	view, err := s.getOrderHandler.Handle(requestContext(ctx), query)
	if err != nil {
		return s.respondError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, orderFromView(view))
}

// ListUncompletedOrders handles GET /api/v1/orders/active.
func (s *Server) ListUncompletedOrders(ctx echo.Context) error {
	var businessID *kernel.UUID
	if raw := ctx.QueryParam("business_id"); raw != "" {
		parsed, err := kernel.UUIDFromString(raw)
		if err != nil {
			return s.respondError(ctx, errs.NewValueIsInvalidErrorWithCause("business_id", err))
		}
		businessID = &parsed
	}

	var limit *int
	if err := runtime.BindQueryParameter("form", true, false, "limit", ctx.QueryParams(), &limit); err != nil {
		return s.respondError(ctx, errs.NewValueIsInvalidErrorWithCause("limit", err))
	}
	pageSize := queries.DefaultUncompletedOrdersLimit
	if limit != nil {
		pageSize = *limit
	}

	query := queries.NewGetUncompletedOrdersQuery(businessID, pageSize)
	rows, err := s.getUncompletedOrdersHandler.Handle(requestContext(ctx), query)
	if err != nil {
		return s.respondError(ctx, err)
	}

	response := make([]OrderSummary, 0, len(rows))
	for _, row := range rows {
		response = append(response, summaryFromView(row))
	}
	return ctx.JSON(http.StatusOK, response)
}

// TransitionOrder handles POST /api/v1/orders/{id}/{transition}.
func (s *Server) TransitionOrder(ctx echo.Context) error {
	actor, err := actorFromHeaders(ctx)
	if err != nil {
		return s.respondError(ctx, err)
	}
	orderID, err := pathOrderID(ctx)
	if err != nil {
		return s.respondError(ctx, err)
	}
	transition, err := order.ParseTransition(ctx.Param("transition"))
	if err != nil {
		return s.respondError(ctx, err)
	}

	var body TransitionRequest
	if err = bindOptional(ctx, &body); err != nil {
		return writeError(ctx, http.StatusBadRequest, errs.KindValidation.String(), "Invalid request body")
	}

	cmd, err := commands.NewChangeOrderStatusCommand(orderID, transition, actor, body.Notes)
	if err != nil {
		return s.respondError(ctx, err)
	}

	result, err := s.changeStatus.Handle(requestContext(ctx), cmd)
	if err != nil {
		return s.respondError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, TransitionResult{
		Success: result.Success,
		Message: result.Message,
		Order:   orderFromDomain(result.Order),
	})
}

// BatchTransition handles POST /api/v1/orders/batch/{transition}. Per-order
// failures are reported in the body; the response itself is 200.
func (s *Server) BatchTransition(ctx echo.Context) error {
	actor, err := actorFromHeaders(ctx)
	if err != nil {
		return s.respondError(ctx, err)
	}
	transition, err := order.ParseTransition(ctx.Param("transition"))
	if err != nil {
		return s.respondError(ctx, err)
	}

	var body BatchRequest
	if err = ctx.Bind(&body); err != nil {
		return writeError(ctx, http.StatusBadRequest, errs.KindValidation.String(), "Invalid request body")
	}

	cmd, err := commands.NewBatchChangeOrderStatusCommand(body.OrderIDs, transition, actor, body.Notes)
	if err != nil {
		return s.respondError(ctx, err)
	}

	result, err := s.batchChangeStatus.Handle(requestContext(ctx), cmd)
	if err != nil {
		return s.respondError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, batchFromResult(result))
}

func (s *Server) Health(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func pathOrderID(ctx echo.Context) (kernel.UUID, error) {
	var id openapi_types.UUID
	err := runtime.BindStyledParameterWithOptions("simple", "id", ctx.Param("id"), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		return kernel.UUID{}, errs.NewNotFoundError("order", "Order not found")
	}
	orderID, err := kernel.UUIDFromUUID(id)
	if err != nil {
		return kernel.UUID{}, errs.NewNotFoundError("order", "Order not found")
	}
	return orderID, nil
}

// bindOptional binds a JSON body when one was sent.
func bindOptional(ctx echo.Context, dst any) error {
	if ctx.Request().ContentLength == 0 {
		return nil
	}
	return ctx.Bind(dst)
}
