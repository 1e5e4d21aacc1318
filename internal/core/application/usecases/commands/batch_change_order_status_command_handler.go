package commands

import (
	"context"
	"log/slog"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"

	"golang.org/x/sync/errgroup"
)

// DefaultBatchConcurrency is used when the handler is built with a non-positive limit.
const DefaultBatchConcurrency = 4

// StatusChanger is the single-order transition the batch fans out to.
type StatusChanger interface {
	Handle(ctx context.Context, cmd ChangeOrderStatusCommand) (TransitionResult, error)
}

// BatchItemResult reports the outcome for one order id of a batch.
type BatchItemResult struct {
	OrderID string
	Success bool
	Message string
	Kind    errs.Kind
	Err     error
}

// BatchResult lists per-order outcomes in the order the ids were given.
// Success is true whenever the batch itself ran, even if every item failed.
type BatchResult struct {
	Success bool
	Results []BatchItemResult
}

// BatchChangeOrderStatusCommandHandler runs a transition on many orders. Each
// order gets its own transaction, so one failure never rolls back another.
type BatchChangeOrderStatusCommandHandler struct {
	changer     StatusChanger
	concurrency int
	logger      *slog.Logger
}

func NewBatchChangeOrderStatusCommandHandler(
	changer StatusChanger,
	concurrency int,
	logger *slog.Logger,
) BatchChangeOrderStatusCommandHandler {
	if concurrency <= 0 {
		concurrency = DefaultBatchConcurrency
	}
	return BatchChangeOrderStatusCommandHandler{
		changer:     changer,
		concurrency: concurrency,
		logger:      logger.With("component", "batch_change_order_status_handler"),
	}
}

func (h BatchChangeOrderStatusCommandHandler) Handle(ctx context.Context, cmd BatchChangeOrderStatusCommand) (BatchResult, error) {
	if err := cmd.Validate(); err != nil {
		return BatchResult{}, err
	}

	ids := cmd.OrderIDs()
	results := make([]BatchItemResult, len(ids))

	// Workers never return an error: failures are recorded per item.
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(h.concurrency)
	for i, raw := range ids {
		g.Go(func() error {
			results[i] = h.handleOne(gctx, raw, cmd)
			return nil
		})
	}
	_ = g.Wait()

	succeeded := 0
	for _, r := range results {
		if r.Success {
			succeeded++
		}
	}
	h.logger.InfoContext(ctx, "batch transition finished",
		"transition", cmd.Transition().String(),
		"total", len(results),
		"succeeded", succeeded,
	)

	return BatchResult{Success: true, Results: results}, nil
}

func (h BatchChangeOrderStatusCommandHandler) handleOne(ctx context.Context, raw string, batch BatchChangeOrderStatusCommand) BatchItemResult {
	orderID, err := kernel.UUIDFromString(raw)
	if err != nil {
		return h.failure(ctx, raw, errs.NewNotFoundError("order", "Order not found"))
	}

	cmd, err := NewChangeOrderStatusCommand(orderID, batch.Transition(), batch.Actor(), batch.Notes())
	if err != nil {
		return h.failure(ctx, raw, err)
	}

	result, err := h.changer.Handle(ctx, cmd)
	if err != nil {
		return h.failure(ctx, raw, err)
	}

	return BatchItemResult{
		OrderID: raw,
		Success: true,
		Message: result.Message,
	}
}

func (h BatchChangeOrderStatusCommandHandler) failure(ctx context.Context, orderID string, err error) BatchItemResult {
	kind := errs.Classify(err)
	if kind == errs.KindInvariant || kind == errs.KindInternal {
		h.logger.ErrorContext(ctx, "batch item failed", "order_id", orderID, "kind", kind.String(), "error", err)
	}

	message := errs.Message(err)
	if kind == errs.KindInvariant || kind == errs.KindInternal {
		message = "Internal error"
	}

	return BatchItemResult{
		OrderID: orderID,
		Message: message,
		Kind:    kind,
		Err:     err,
	}
}
