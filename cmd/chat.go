package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/value-bot/internal/bot"
)

var chatAuthor string

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Answer chat commands read line by line from stdin",
	Long:  "Reads one chat message per line from stdin, runs prefixed commands and prints the replies split into chat-sized messages. Lines that are not commands are ignored.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initApp("lookup")
		if err != nil {
			return err
		}
		env.Service.Warm(ctx)

		zap.L().Info("chat ready", zap.String("prefix", env.Router.Prefix()))
		return runChat(ctx, cmd.InOrStdin(), cmd.OutOrStdout(), env.Router, chatAuthor, cfg.Bot.MaxMessageLen)
	},
}

func init() {
	chatCmd.Flags().StringVar(&chatAuthor, "author", "console", "author name attached to each message")
	rootCmd.AddCommand(chatCmd)
}

// runChat routes each input line and writes the reply chunks, one message
// per chunk separated by a blank line.
func runChat(ctx context.Context, in io.Reader, out io.Writer, router *bot.Router, author string, maxLen int) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return nil
		}
		reply, ok := router.Handle(ctx, bot.Message{Author: author, Content: scanner.Text()})
		if !ok {
			continue
		}
		for _, chunk := range reply.Chunks(maxLen) {
			if _, err := fmt.Fprintf(out, "%s\n\n", chunk); err != nil {
				return eris.Wrap(err, "chat: write reply")
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return eris.Wrap(err, "chat: read input")
	}
	return nil
}
