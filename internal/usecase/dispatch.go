package usecase

import (
	"context"
	"fmt"

	"FinChat/internal/domain/models"
	drepo "FinChat/internal/domain/repository"
	xlogger "FinChat/pkg/logger"
)

// Dispatcher runs one question through tool selection and execution. It
// holds no per-turn state; concurrent turns share only the caches behind
// the tools.
type Dispatcher struct {
	oracle   drepo.Oracle
	registry *Registry
	logger   *xlogger.Logger
	metrics  drepo.Metrics
}

func NewDispatcher(oracle drepo.Oracle, registry *Registry, logger *xlogger.Logger, metrics drepo.Metrics) *Dispatcher {
	return &Dispatcher{
		oracle:   oracle,
		registry: registry,
		logger:   logger,
		metrics:  metrics,
	}
}

// Dispatch asks the oracle which tools apply to the question, runs them in
// the order selected, and aggregates their records with charts split out.
// An unknown tool name aborts the turn before any tool runs.
func (d *Dispatcher) Dispatch(ctx context.Context, question string) (*models.DispatchResult, error) {
	invocations, err := d.oracle.SelectTools(ctx, question, d.registry.Catalog())
	if err != nil {
		d.metrics.RecordDispatch("error")
		return nil, fmt.Errorf("select tools: %w", err)
	}

	// The registry mapping is closed: every name must resolve before any
	// tool executes, so a bad selection has no partial side effects.
	tools := make([]Tool, len(invocations))
	for i, inv := range invocations {
		tool, err := d.registry.Lookup(inv.Name)
		if err != nil {
			d.metrics.RecordDispatch("error")
			d.metrics.RecordError("unknown_tool")
			return nil, err
		}
		tools[i] = tool
	}

	result := &models.DispatchResult{
		Records: []models.Record{},
		Charts:  []*models.Chart{},
	}
	for i, inv := range invocations {
		d.logger.Info("invoking tool",
			xlogger.String("tool", inv.Name),
			xlogger.Any("arguments", inv.Arguments))
		d.metrics.RecordToolInvocation(inv.Name)

		records, err := tools[i].Invoke(ctx, question, inv.Arguments)
		if err != nil {
			d.metrics.RecordDispatch("error")
			return nil, fmt.Errorf("invoke %s: %w", inv.Name, err)
		}

		for _, record := range records {
			if fig, ok := record[models.ChartField]; ok {
				delete(record, models.ChartField)
				if chart, ok := fig.(*models.Chart); ok && chart != nil {
					result.Charts = append(result.Charts, chart)
				}
			}
			result.Records = append(result.Records, record)
		}
	}

	if result.Empty() {
		d.metrics.RecordDispatch("empty")
	} else {
		d.metrics.RecordDispatch("ok")
	}
	return result, nil
}
