package bot

import (
	"context"
	"log/slog"
	"time"

	"ctchen222/minimax-tictactoe/internal/game"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

var (
	tracer = otel.Tracer("bot")
	meter  = otel.Meter("bot")
)

// Engine picks the computer's moves and reports each search to telemetry.
// It implements room.MoveSelector.
type Engine struct {
	duration metric.Float64Histogram
	nodes    metric.Int64Counter
}

// NewEngine creates an Engine using the global meter provider.
func NewEngine() *Engine {
	duration, err := meter.Float64Histogram("bot.search.duration",
		metric.WithDescription("Time spent in a full minimax search"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		otel.Handle(err)
	}
	nodes, err := meter.Int64Counter("bot.search.nodes",
		metric.WithDescription("Positions visited by minimax searches"),
	)
	if err != nil {
		otel.Handle(err)
	}
	return &Engine{duration: duration, nodes: nodes}
}

// NextMove returns the computer's move for board.
func (e *Engine) NextMove(ctx context.Context, board game.Board) (int, error) {
	ctx, span := tracer.Start(ctx, "bot.NextMove", trace.WithAttributes(
		attribute.Int("board.empty", len(board.EmptyCells())),
	))
	defer span.End()

	start := time.Now()
	res, err := Search(board)
	elapsed := time.Since(start)
	if err != nil {
		slog.WarnContext(ctx, "move selection rejected board", "board", board.String(), "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Move selection rejected board")
		return -1, err
	}

	span.SetAttributes(
		attribute.Int("move.cell", res.Move),
		attribute.Int("search.score", res.Score),
		attribute.Int("search.nodes", res.Nodes),
	)
	if e.duration != nil {
		e.duration.Record(ctx, float64(elapsed.Microseconds())/1000)
	}
	if e.nodes != nil {
		e.nodes.Add(ctx, int64(res.Nodes))
	}
	slog.DebugContext(ctx, "Computer selected move", "move.cell", res.Move, "search.score", res.Score, "search.nodes", res.Nodes, "search.elapsed", elapsed)

	return res.Move, nil
}
