// Package bot routes prefixed chat commands to the lookup service and turns
// results and failures into replies.
package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/value-bot/internal/lookup"
	"github.com/sells-group/value-bot/internal/model"
)

// DefaultPrefix starts every command.
const DefaultPrefix = "f!"

// Service is the subset of lookup.Service the router needs.
type Service interface {
	Value(ctx context.Context, name string) (model.MatchResult, error)
	Trade(ctx context.Context, text string) (model.TradeOutcome, error)
	HighDemand(ctx context.Context, threshold float64, limit int) ([]lookup.HighDemandEntry, error)
}

// Options configures a Router.
type Options struct {
	Prefix        string
	RatePerMinute int // per author; 0 disables limiting
}

type handlerFunc func(ctx context.Context, args string) Reply

// Router dispatches "<prefix><command> <args>" messages.
type Router struct {
	svc      Service
	prefix   string
	perMin   int
	commands map[string]handlerFunc

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewRouter creates a Router over svc.
func NewRouter(svc Service, opts Options) *Router {
	if opts.Prefix == "" {
		opts.Prefix = DefaultPrefix
	}
	r := &Router{
		svc:      svc,
		prefix:   opts.Prefix,
		perMin:   opts.RatePerMinute,
		limiters: make(map[string]*rate.Limiter),
	}
	r.commands = map[string]handlerFunc{
		"value":      r.value,
		"trade":      r.trade,
		"highdemand": r.highDemand,
		"info":       r.info,
	}
	return r
}

// Prefix returns the command prefix.
func (r *Router) Prefix() string {
	return r.prefix
}

// Handle runs the command in msg. handled is false when the message is not a
// known command, in which case the caller should stay silent. Failures never
// escape as panics; they come back as error replies.
func (r *Router) Handle(ctx context.Context, msg Message) (reply Reply, handled bool) {
	content := strings.TrimSpace(msg.Content)
	if !strings.HasPrefix(content, r.prefix) {
		return Reply{}, false
	}
	name, args := splitCommand(strings.TrimPrefix(content, r.prefix))
	name = strings.ToLower(name)
	cmd, ok := r.commands[name]
	if !ok {
		return Reply{}, false
	}

	log := zap.L().With(
		zap.String("request_id", uuid.NewString()),
		zap.String("command", name),
		zap.String("author", msg.Author),
	)

	if !r.allow(msg.Author) {
		log.Info("command rate limited")
		return textReply("⏳ Slow down! Try again in a moment."), true
	}

	start := time.Now()
	defer func() {
		if p := recover(); p != nil {
			log.Error("command panicked", zap.Any("panic", p))
			reply, handled = textReply(fmt.Sprintf("❌ Error: %v", p)), true
		}
	}()

	reply = cmd(ctx, args)
	log.Info("command handled", zap.Duration("elapsed", time.Since(start)))
	return reply, true
}

func (r *Router) allow(author string) bool {
	if r.perMin <= 0 {
		return true
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	lim, ok := r.limiters[author]
	if !ok {
		lim = rate.NewLimiter(rate.Every(time.Minute/time.Duration(r.perMin)), r.perMin)
		r.limiters[author] = lim
	}
	return lim.Allow()
}

// splitCommand separates the command word from the rest of the line.
func splitCommand(s string) (name, args string) {
	s = strings.TrimSpace(s)
	i := strings.IndexFunc(s, isSpace)
	if i < 0 {
		return s, ""
	}
	return s[:i], strings.TrimSpace(s[i:])
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}

func (r *Router) value(ctx context.Context, args string) Reply {
	if args == "" {
		return textReply(fmt.Sprintf("❌ Usage: `%svalue <item>`", r.prefix))
	}
	res, err := r.svc.Value(ctx, args)
	if err != nil {
		if e, ok := model.AsError(err); ok && e.Kind == model.KindItemNotFound {
			return textReply(fmt.Sprintf("🔍 Item **%s** not found. (similarity: %d%%)", args, e.Score))
		}
		return r.failure(err)
	}
	return renderItem(*res.Item)
}

func (r *Router) trade(ctx context.Context, args string) Reply {
	if args == "" {
		return r.tradeUsage()
	}
	out, err := r.svc.Trade(ctx, args)
	if err != nil {
		return r.failure(err)
	}
	return renderTrade(out)
}

func (r *Router) highDemand(ctx context.Context, args string) Reply {
	threshold := lookup.DefaultDemandThreshold
	limit := lookup.DefaultDemandLimit

	fields := strings.Fields(args)
	if len(fields) > 2 {
		return r.highDemandUsage()
	}
	if len(fields) > 0 {
		v, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return r.highDemandUsage()
		}
		threshold = v
	}
	if len(fields) > 1 {
		v, err := strconv.Atoi(fields[1])
		if err != nil || v <= 0 {
			return r.highDemandUsage()
		}
		limit = v
	}

	entries, err := r.svc.HighDemand(ctx, threshold, limit)
	if err != nil {
		return r.failure(err)
	}
	if len(entries) == 0 {
		return textReply(fmt.Sprintf("ℹ️ No items with demand ≥ %s.", formatThreshold(threshold)))
	}
	return renderHighDemand(entries, threshold)
}

func (r *Router) info(context.Context, string) Reply {
	return renderHelp(lookup.Help(r.prefix))
}

func (r *Router) tradeUsage() Reply {
	return textReply(fmt.Sprintf("❌ Wrong format! Use: `%strade [item1] + [item2] for [item_target]`", r.prefix))
}

func (r *Router) highDemandUsage() Reply {
	return textReply(fmt.Sprintf("❌ Usage: `%shighdemand [demand] [limit]`", r.prefix))
}

// failure translates a command error into user text.
func (r *Router) failure(err error) Reply {
	log := zap.L()
	e, ok := model.AsError(err)
	if !ok {
		log.Error("command failed", zap.Error(err))
		return textReply(fmt.Sprintf("❌ Error: %v", err))
	}

	switch e.Kind {
	case model.KindDataUnavailable:
		log.Warn("dataset unavailable", zap.Error(err))
		return textReply("❌ Failed to fetch data from the spreadsheet.")
	case model.KindItemNotFound:
		return textReply(fmt.Sprintf("❌ Item **%s** not found!", e.Item))
	case model.KindFormat:
		return r.tradeUsage()
	case model.KindValueConversion:
		return textReply(fmt.Sprintf("❌ Error: the value of **%s** is not a number.", e.Item))
	case model.KindZeroTargetValue:
		return textReply(fmt.Sprintf("❌ **%s** is worth 0, so the trade ratio is undefined.", e.Item))
	default:
		log.Error("command failed", zap.Error(err))
		return textReply(fmt.Sprintf("❌ Error: %v", err))
	}
}
