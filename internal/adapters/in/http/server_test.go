package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	httpin "fulfillment/internal/adapters/in/http"
	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/application/usecases/queries"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/errs"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type MockOrderCreator struct{ mock.Mock }

func (m *MockOrderCreator) Handle(ctx context.Context, cmd commands.CreateOrderCommand) (commands.CreateOrderResult, error) {
	args := m.Called(ctx, cmd)
	return args.Get(0).(commands.CreateOrderResult), args.Error(1)
}

type MockStatusChanger struct{ mock.Mock }

func (m *MockStatusChanger) Handle(ctx context.Context, cmd commands.ChangeOrderStatusCommand) (commands.TransitionResult, error) {
	args := m.Called(ctx, cmd)
	return args.Get(0).(commands.TransitionResult), args.Error(1)
}

type MockBatchStatusChanger struct{ mock.Mock }

func (m *MockBatchStatusChanger) Handle(ctx context.Context, cmd commands.BatchChangeOrderStatusCommand) (commands.BatchResult, error) {
	args := m.Called(ctx, cmd)
	return args.Get(0).(commands.BatchResult), args.Error(1)
}

type MockOrderReader struct{ mock.Mock }

func (m *MockOrderReader) Handle(ctx context.Context, query queries.GetOrderQuery) (queries.GetOrderQueryResponse, error) {
	args := m.Called(ctx, query)
	return args.Get(0).(queries.GetOrderQueryResponse), args.Error(1)
}

type MockUncompletedOrdersReader struct{ mock.Mock }

func (m *MockUncompletedOrdersReader) Handle(
	ctx context.Context,
	query queries.GetUncompletedOrdersQuery,
) ([]queries.GetUncompletedOrdersQueryResponse, error) {
	args := m.Called(ctx, query)
	return args.Get(0).([]queries.GetUncompletedOrdersQueryResponse), args.Error(1)
}

type ServerTestSuite struct {
	suite.Suite
	creator *MockOrderCreator
	changer *MockStatusChanger
	batch   *MockBatchStatusChanger
	reader  *MockOrderReader
	active  *MockUncompletedOrdersReader
	router  *echo.Echo
}

func TestServerTestSuite(t *testing.T) {
	suite.Run(t, new(ServerTestSuite))
}

func (s *ServerTestSuite) SetupTest() {
	s.creator = new(MockOrderCreator)
	s.changer = new(MockStatusChanger)
	s.batch = new(MockBatchStatusChanger)
	s.reader = new(MockOrderReader)
	s.active = new(MockUncompletedOrdersReader)

	logger := slog.New(slog.DiscardHandler)
	server := httpin.NewServer(s.creator, s.changer, s.batch, s.reader, s.active, logger)

	doc, err := httpin.LoadOpenAPI(context.Background())
	s.Require().NoError(err)
	s.router, err = httpin.NewRouter(server, httpin.RouterConfig{}, doc, logger)
	s.Require().NoError(err)
}

func (s *ServerTestSuite) do(method, target, body string, headers map[string]string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func clientHeaders() map[string]string {
	return map[string]string{
		"X-Actor-Type": "client",
		"X-Actor-ID":   kernel.NewUUID().String(),
	}
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) httpin.Error {
	t.Helper()
	var body httpin.Error
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func newOrder(t *testing.T) *order.Order {
	t.Helper()
	usd, err := kernel.NewCurrency("USD")
	require.NoError(t, err)
	actor, err := kernel.NewActor(kernel.NewUUID(), kernel.ActorClient)
	require.NoError(t, err)
	item, err := order.NewItem(kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID(),
		"Jollof rice", "Large tray", 3, decimal.RequireFromString("100"))
	require.NoError(t, err)

	o, err := order.NewOrder(kernel.NewUUID(), order.GenerateNumber(), order.Parties{
		ClientID:           kernel.NewUUID(),
		ClientAccountID:    kernel.NewUUID(),
		BusinessID:         kernel.NewUUID(),
		BusinessLocationID: kernel.NewUUID(),
		DeliveryAddressID:  kernel.NewUUID(),
	}, usd, []order.Item{item}, actor, "")
	require.NoError(t, err)
	return o
}

func (s *ServerTestSuite) TestCreateOrderReturnsCreated() {
	o := newOrder(s.T())
	s.creator.On("Handle", mock.Anything, mock.MatchedBy(func(cmd commands.CreateOrderCommand) bool {
		return cmd.Quantity() == 3 && cmd.IdempotencyKey() == "req-42" && cmd.Actor().Type() == kernel.ActorClient
	})).Return(commands.CreateOrderResult{Order: o}, nil).Once()

	headers := clientHeaders()
	headers["Idempotency-Key"] = "req-42"
	rec := s.do(http.MethodPost, "/api/v1/orders",
		`{"business_inventory_id":"`+kernel.NewUUID().String()+`","quantity":3}`, headers)

	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())
	var body httpin.Order
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &body))
	s.Equal(o.Number(), body.OrderNumber)
	s.Equal("pending", body.Status)
	s.Equal("300.00", body.TotalAmount)
	s.Equal("0.00", body.TaxAmount)
	s.Require().Len(body.Items, 1)
	s.Equal("100.00", body.Items[0].UnitPrice)
	s.creator.AssertExpectations(s.T())
}

func (s *ServerTestSuite) TestCreateOrderRejectsMissingActorType() {
	rec := s.do(http.MethodPost, "/api/v1/orders",
		`{"business_inventory_id":"`+kernel.NewUUID().String()+`","quantity":1}`, nil)

	s.Equal(http.StatusBadRequest, rec.Code)
	s.Equal("ValidationFailure", decodeError(s.T(), rec).Kind)
	s.creator.AssertNotCalled(s.T(), "Handle", mock.Anything, mock.Anything)
}

func (s *ServerTestSuite) TestCreateOrderRejectsZeroQuantity() {
	rec := s.do(http.MethodPost, "/api/v1/orders",
		`{"business_inventory_id":"`+kernel.NewUUID().String()+`","quantity":0}`, clientHeaders())

	s.Equal(http.StatusBadRequest, rec.Code)
	s.creator.AssertNotCalled(s.T(), "Handle", mock.Anything, mock.Anything)
}

func (s *ServerTestSuite) TestCreateOrderRequiresActorIDForClients() {
	rec := s.do(http.MethodPost, "/api/v1/orders",
		`{"business_inventory_id":"`+kernel.NewUUID().String()+`","quantity":1}`,
		map[string]string{"X-Actor-Type": "client"})

	s.Equal(http.StatusBadRequest, rec.Code)
	s.creator.AssertNotCalled(s.T(), "Handle", mock.Anything, mock.Anything)
}

func (s *ServerTestSuite) TestCreateOrderMapsErrorKinds() {
	tests := []struct {
		name    string
		err     error
		status  int
		kind    string
		message string
	}{
		{
			name:    "not found",
			err:     errs.NewNotFoundError("client", "Client not found"),
			status:  http.StatusNotFound,
			kind:    "NotFound",
			message: "Client not found",
		},
		{
			name:    "business rule",
			err:     errs.NewBusinessRuleError("insufficient_funds", "Insufficient funds. Required: 300.00 USD, Available: 10.00 USD"),
			status:  http.StatusBadRequest,
			kind:    "ValidationFailure",
			message: "Insufficient funds. Required: 300.00 USD, Available: 10.00 USD",
		},
		{
			name:   "duplicate",
			err:    errs.ErrDuplicateRequest,
			status: http.StatusConflict,
			kind:   "Conflict",
		},
		{
			name:    "invariant",
			err:     errs.NewInvariantViolationError("withheld balance", errors.New("negative")),
			status:  http.StatusInternalServerError,
			kind:    "InvariantViolation",
			message: "Internal error",
		},
		{
			name:    "internal",
			err:     errors.New("connection reset"),
			status:  http.StatusInternalServerError,
			kind:    "Internal",
			message: "Internal error",
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.SetupTest()
			s.creator.On("Handle", mock.Anything, mock.Anything).
				Return(commands.CreateOrderResult{}, tt.err).Once()

			rec := s.do(http.MethodPost, "/api/v1/orders",
				`{"business_inventory_id":"`+kernel.NewUUID().String()+`","quantity":1}`, clientHeaders())

			s.Equal(tt.status, rec.Code)
			body := decodeError(s.T(), rec)
			s.Equal(tt.kind, body.Kind)
			if tt.message != "" {
				s.Equal(tt.message, body.Message)
			}
		})
	}
}

func (s *ServerTestSuite) TestGetOrderNotFound() {
	s.reader.On("Handle", mock.Anything, mock.Anything).
		Return(queries.GetOrderQueryResponse{}, errs.NewNotFoundError("order", "Order not found")).Once()

	rec := s.do(http.MethodGet, "/api/v1/orders/"+kernel.NewUUID().String(), "", nil)

	s.Equal(http.StatusNotFound, rec.Code)
	s.Equal("Order not found", decodeError(s.T(), rec).Message)
}

func (s *ServerTestSuite) TestGetOrderReturnsHistory() {
	id := kernel.NewUUID()
	view := queries.GetOrderQueryResponse{
		ID:          id,
		OrderNumber: "48392017",
		Status:      "confirmed",
		Currency:    "USD",
		TotalAmount: decimal.RequireFromString("12.5"),
		History: []queries.StatusHistoryView{
			{Status: "pending", ChangedByType: "client"},
			{Status: "confirmed", ChangedByType: "business"},
		},
	}
	s.reader.On("Handle", mock.Anything, mock.MatchedBy(func(q queries.GetOrderQuery) bool {
		return q.OrderID().IsEqual(id)
	})).Return(view, nil).Once()

	rec := s.do(http.MethodGet, "/api/v1/orders/"+id.String(), "", nil)

	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	var body httpin.OrderDetails
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &body))
	s.Equal("12.50", body.TotalAmount)
	s.Require().Len(body.StatusHistory, 2)
	s.Equal("confirmed", body.StatusHistory[1].Status)
}

func (s *ServerTestSuite) TestListUncompletedOrdersUsesDefaultLimit() {
	s.active.On("Handle", mock.Anything, mock.MatchedBy(func(q queries.GetUncompletedOrdersQuery) bool {
		return q.Limit() == queries.DefaultUncompletedOrdersLimit && q.BusinessID() == nil
	})).Return([]queries.GetUncompletedOrdersQueryResponse{
		{ID: kernel.NewUUID(), OrderNumber: "10020030", Status: "pending", TotalAmount: decimal.NewFromInt(7)},
	}, nil).Once()

	rec := s.do(http.MethodGet, "/api/v1/orders/active", "", nil)

	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	var body []httpin.OrderSummary
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &body))
	s.Require().Len(body, 1)
	s.Equal("7.00", body[0].TotalAmount)
}

func (s *ServerTestSuite) TestListUncompletedOrdersFiltersByBusiness() {
	business := kernel.NewUUID()
	s.active.On("Handle", mock.Anything, mock.MatchedBy(func(q queries.GetUncompletedOrdersQuery) bool {
		return q.Limit() == 10 && q.BusinessID() != nil && q.BusinessID().IsEqual(business)
	})).Return([]queries.GetUncompletedOrdersQueryResponse{}, nil).Once()

	rec := s.do(http.MethodGet, "/api/v1/orders/active?limit=10&business_id="+business.String(), "", nil)

	s.Equal(http.StatusOK, rec.Code, rec.Body.String())
	s.active.AssertExpectations(s.T())
}

func (s *ServerTestSuite) TestListUncompletedOrdersRejectsOutOfRangeLimit() {
	rec := s.do(http.MethodGet, "/api/v1/orders/active?limit=0", "", nil)

	s.Equal(http.StatusBadRequest, rec.Code, rec.Body.String())
	s.active.AssertNotCalled(s.T(), "Handle", mock.Anything, mock.Anything)
}

func (s *ServerTestSuite) TestTransitionOrderSucceeds() {
	o := newOrder(s.T())
	s.changer.On("Handle", mock.Anything, mock.MatchedBy(func(cmd commands.ChangeOrderStatusCommand) bool {
		return cmd.Transition() == order.StartPreparing && cmd.Notes() == "ten minutes" && cmd.OrderID().IsEqual(o.ID())
	})).Return(commands.TransitionResult{
		Success: true,
		Order:   o,
		Message: order.StartPreparing.SuccessMessage(),
	}, nil).Once()

	rec := s.do(http.MethodPost, "/api/v1/orders/"+o.ID().String()+"/start_preparing",
		`{"notes":"ten minutes"}`, map[string]string{
			"X-Actor-Type": "business",
			"X-Actor-ID":   kernel.NewUUID().String(),
		})

	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	var body httpin.TransitionResult
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &body))
	s.True(body.Success)
	s.Equal("Order preparation started successfully", body.Message)
	s.changer.AssertExpectations(s.T())
}

func (s *ServerTestSuite) TestTransitionOrderWithoutBody() {
	o := newOrder(s.T())
	s.changer.On("Handle", mock.Anything, mock.MatchedBy(func(cmd commands.ChangeOrderStatusCommand) bool {
		return cmd.Transition() == order.Cancel && cmd.Notes() == ""
	})).Return(commands.TransitionResult{Success: true, Order: o, Message: order.Cancel.SuccessMessage()}, nil).Once()

	rec := s.do(http.MethodPost, "/api/v1/orders/"+o.ID().String()+"/cancel", "", clientHeaders())

	s.Equal(http.StatusOK, rec.Code, rec.Body.String())
}

func (s *ServerTestSuite) TestTransitionOrderResolvesFailedDelivery() {
	o := newOrder(s.T())
	s.changer.On("Handle", mock.Anything, mock.MatchedBy(func(cmd commands.ChangeOrderStatusCommand) bool {
		return cmd.Transition() == order.ResolveClientFault && cmd.Notes() == "nobody home twice"
	})).Return(commands.TransitionResult{
		Success: true,
		Order:   o,
		Message: order.ResolveClientFault.SuccessMessage(),
	}, nil).Once()

	rec := s.do(http.MethodPost, "/api/v1/orders/"+o.ID().String()+"/resolve_client_fault",
		`{"notes":"nobody home twice"}`, map[string]string{
			"X-Actor-Type": "business",
			"X-Actor-ID":   kernel.NewUUID().String(),
		})

	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	var body httpin.TransitionResult
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &body))
	s.Equal("Failed delivery resolved successfully", body.Message)
	s.changer.AssertExpectations(s.T())
}

func (s *ServerTestSuite) TestTransitionOrderGuardFailure() {
	s.changer.On("Handle", mock.Anything, mock.Anything).Return(commands.TransitionResult{},
		errs.NewStateTransitionError("delivered", "cancel", "Cannot cancel order in delivered status")).Once()

	rec := s.do(http.MethodPost, "/api/v1/orders/"+kernel.NewUUID().String()+"/cancel", "", clientHeaders())

	s.Equal(http.StatusBadRequest, rec.Code)
	body := decodeError(s.T(), rec)
	s.Equal("StateGuardFailure", body.Kind)
	s.Equal("Cannot cancel order in delivered status", body.Message)
}

func (s *ServerTestSuite) TestBatchTransitionReportsPerOrder() {
	first, second := kernel.NewUUID().String(), "not-a-uuid"
	s.batch.On("Handle", mock.Anything, mock.MatchedBy(func(cmd commands.BatchChangeOrderStatusCommand) bool {
		return cmd.Transition() == order.Confirm && len(cmd.OrderIDs()) == 2
	})).Return(commands.BatchResult{
		Success: true,
		Results: []commands.BatchItemResult{
			{OrderID: first, Success: true, Message: "Order confirmed successfully"},
			{OrderID: second, Message: "Order not found", Kind: errs.KindNotFound},
		},
	}, nil).Once()

	rec := s.do(http.MethodPost, "/api/v1/orders/batch/confirm",
		`{"order_ids":["`+first+`","`+second+`"]}`, map[string]string{"X-Actor-Type": "system"})

	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	var body httpin.BatchResult
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &body))
	s.True(body.Success)
	s.Require().Len(body.Results, 2)
	s.True(body.Results[0].Success)
	s.False(body.Results[1].Success)
	s.Equal("Order not found", body.Results[1].Error)
}

func (s *ServerTestSuite) TestBatchTransitionRejectsEmptyList() {
	rec := s.do(http.MethodPost, "/api/v1/orders/batch/confirm", `{"order_ids":[]}`,
		map[string]string{"X-Actor-Type": "system"})

	s.Equal(http.StatusBadRequest, rec.Code)
	s.batch.AssertNotCalled(s.T(), "Handle", mock.Anything, mock.Anything)
}

func (s *ServerTestSuite) TestHealth() {
	rec := s.do(http.MethodGet, "/health", "", nil)
	s.Equal(http.StatusOK, rec.Code)
}

func TestRateLimiterDeniesBurst(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)
	server := httpin.NewServer(new(MockOrderCreator), new(MockStatusChanger), new(MockBatchStatusChanger),
		new(MockOrderReader), new(MockUncompletedOrdersReader), logger)
	doc, err := httpin.LoadOpenAPI(context.Background())
	require.NoError(t, err)
	router, err := httpin.NewRouter(server, httpin.RouterConfig{RateLimit: 0.001, Burst: 1}, doc, logger)
	require.NoError(t, err)

	codes := make([]int, 0, 2)
	for range 2 {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
		codes = append(codes, rec.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusTooManyRequests}, codes)
}
