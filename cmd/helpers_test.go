package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sells-group/value-bot/internal/config"
	"github.com/sells-group/value-bot/internal/fetcher"
)

const testSheet = "Name,Value,Demand,Status\n" +
	"Gold Bar,1250,8/10,Stable\n" +
	"Silver Bar,500,3/10,Stable\n" +
	"Diamond,\"10,000\",9/10,Rising\n" +
	"Mystery Box,O/C,-,Unknown\n" +
	"Broken Shard,0,7,Dropping\n"

func testConfig(url string) *config.Config {
	c := &config.Config{}
	c.Dataset.URL = url
	c.Dataset.Format = "csv"
	c.Dataset.TimeoutSecs = 5
	c.Matcher.Threshold = 70
	c.Trade.FairLow = 85
	c.Trade.FairHigh = 115
	c.HighDemand.Threshold = 7
	c.HighDemand.Limit = 20
	c.Bot.Prefix = "f!"
	c.Bot.MaxMessageLen = 1900
	c.Server.Port = 8080
	return c
}

// newTestApp wires an app against an httptest server that serves body with
// the given status.
func newTestApp(t *testing.T, status int, body string) *appEnv {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	c := testConfig(srv.URL + "/sheet.csv")
	return newApp(c, fetcher.NewHTTPFetcher(fetcher.HTTPOptions{Timeout: c.Dataset.Timeout()}))
}
