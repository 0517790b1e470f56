package calc

import (
	"context"
	"errors"
	"math"
	"strconv"

	"github.com/sandevgo/snipbot/internal/core"
	"github.com/sandevgo/snipbot/internal/service/command"
	"github.com/sandevgo/snipbot/internal/service/resolver"
	"github.com/sandevgo/snipbot/pkg/log"
)

const (
	DetectedTitle    = "I detected an expression!"
	ResultTitle      = "Result:"
	DivisionTitle    = "Wow...you make me question my existence"
	UnavailableText  = "That syntax is not available currently, sorry!"
	DisableHint      = "To disable this, type `removeconfig calc`"
	DivisionByZeroUX = "Imagine you have zero cookies and you split them amongst 0 friends, " +
		"how many cookies does each friend get? See, it doesn't make sense and Cookie Monster " +
		"is sad that there are no cookies, and you are sad that you have no friends."
)

type sender interface {
	Send(ctx context.Context, channelID int64, text string) (core.MessageRef, error)
}

// Responder replies to messages carrying an arithmetic expression with its value.
type Responder struct {
	evaluator core.Evaluator
	sender    sender
	formatter *command.ResponseFormatter
}

func NewResponder(evaluator core.Evaluator, sender sender) *Responder {
	return &Responder{
		evaluator: evaluator,
		sender:    sender,
		formatter: command.NewResponseFormatter(),
	}
}

func (r *Responder) Name() string {
	return "calc"
}

// Respond evaluates the expression found in msg, if any. Malformed
// expressions and send failures are dropped without a reply.
func (r *Responder) Respond(ctx context.Context, msg core.Message) {
	logger := log.FromCtx(ctx)

	expr, ok := resolver.ExtractExpression(msg.Content)
	if !ok {
		return
	}

	reply := []string{
		r.formatter.Section("🧮", DetectedTitle, r.formatter.Code("yaml", strconv.Quote(expr))),
	}

	value, err := r.evaluator.Evaluate(expr)
	switch {
	case err == nil:
		reply = append(reply, r.formatter.Section("✅", ResultTitle, r.formatter.Code("", FormatNumber(value))))
	case errors.Is(err, core.ErrDivisionByZero):
		reply = append(reply, r.formatter.Section("🍪", DivisionTitle, r.formatter.Code("yaml", DivisionByZeroUX)))
	case errors.Is(err, core.ErrUnsupportedFeature):
		logger.Debug().Err(err).Str("expr", expr).Msg("unsupported expression")
		_, _ = r.sender.Send(ctx, msg.ChannelID, UnavailableText)
		return
	default:
		logger.Debug().Err(err).Str("expr", expr).Msg("expression not evaluated")
		return
	}

	reply = append(reply, r.formatter.Tip(DisableHint))
	if _, err := r.sender.Send(ctx, msg.ChannelID, r.formatter.Combine(reply...)); err != nil {
		logger.Warn().Err(err).Int64("chat", msg.ChannelID).Msg("failed to send calculation")
	}
}

// FormatNumber prints integral values without a fractional part.
func FormatNumber(v float64) string {
	if v < 1e15 && v > -1e15 && v == math.Trunc(v) {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
