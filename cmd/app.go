package main

import (
	"github.com/shopspring/decimal"

	"github.com/sells-group/value-bot/internal/bot"
	"github.com/sells-group/value-bot/internal/config"
	"github.com/sells-group/value-bot/internal/dataset"
	"github.com/sells-group/value-bot/internal/fetcher"
	"github.com/sells-group/value-bot/internal/lookup"
	"github.com/sells-group/value-bot/internal/resolve"
	"github.com/sells-group/value-bot/internal/trade"
)

// appEnv holds the wired components shared by every command.
type appEnv struct {
	Loader  *dataset.Loader
	Service *lookup.Service
	Router  *bot.Router
}

// initApp validates the config for mode and wires the components on top of
// an HTTP fetcher.
func initApp(mode string) (*appEnv, error) {
	if err := cfg.Validate(mode); err != nil {
		return nil, err
	}
	f := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
		UserAgent: cfg.Dataset.UserAgent,
		Timeout:   cfg.Dataset.Timeout(),
	})
	return newApp(cfg, f), nil
}

// newApp wires loader, resolver, evaluator, service and router over f.
func newApp(c *config.Config, f fetcher.Fetcher) *appEnv {
	loader := dataset.NewLoader(f, dataset.Options{
		URL:     c.Dataset.URL,
		Format:  dataset.Format(c.Dataset.Format),
		Sheet:   c.Dataset.Sheet,
		Timeout: c.Dataset.Timeout(),
	})
	resolver := resolve.New(c.Matcher.Threshold)
	evaluator := trade.NewEvaluator(resolver,
		decimal.NewFromFloat(c.Trade.FairLow),
		decimal.NewFromFloat(c.Trade.FairHigh),
	)
	svc := lookup.NewService(loader, resolver, evaluator)
	router := bot.NewRouter(svc, bot.Options{
		Prefix:        c.Bot.Prefix,
		RatePerMinute: c.Bot.RatePerMinute,
	})
	return &appEnv{Loader: loader, Service: svc, Router: router}
}
