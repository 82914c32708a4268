package main

import (
	"bytes"
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunChat_RoutesCommandsAndSkipsChatter(t *testing.T) {
	env := newTestApp(t, http.StatusOK, testSheet)

	in := strings.NewReader("hello there\nf!value gold bar\n\nf!trade Gold Bar for Silver Bar\n")
	var out bytes.Buffer
	require.NoError(t, runChat(context.Background(), in, &out, env.Router, "tester", 1900))

	messages := strings.Split(strings.TrimSpace(out.String()), "\n\n")
	require.Len(t, messages, 2)
	assert.Contains(t, messages[0], "Gold Bar")
	assert.Contains(t, messages[1], "OVERPAY")
}

func TestRunChat_SplitsLongReplies(t *testing.T) {
	env := newTestApp(t, http.StatusOK, testSheet)

	in := strings.NewReader("f!info\n")
	var out bytes.Buffer
	require.NoError(t, runChat(context.Background(), in, &out, env.Router, "tester", 60))

	messages := strings.Split(strings.TrimSpace(out.String()), "\n\n")
	assert.Greater(t, len(messages), 1)
	for _, m := range messages {
		assert.LessOrEqual(t, len(m), 60)
	}
}

func TestRunChat_CancelledContextStops(t *testing.T) {
	env := newTestApp(t, http.StatusOK, testSheet)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	require.NoError(t, runChat(ctx, strings.NewReader("f!info\n"), &out, env.Router, "tester", 1900))
	assert.Empty(t, out.String())
}
