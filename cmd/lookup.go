package main

import (
	"context"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sells-group/value-bot/internal/bot"
	"github.com/sells-group/value-bot/internal/lookup"
)

const cliAuthor = "cli"

var (
	highDemandThreshold float64
	highDemandLimit     int
)

var valueCmd = &cobra.Command{
	Use:   "value <item...>",
	Short: "Show the value, demand and status of an item",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initApp("lookup")
		if err != nil {
			return err
		}
		return runValue(cmd.Context(), cmd.OutOrStdout(), env, outputFormat, strings.Join(args, " "))
	},
}

var tradeCmd = &cobra.Command{
	Use:   "trade <offer> for <target>",
	Short: "Rate a trade such as \"Silver Bar + Silver Bar for Gold Bar\"",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initApp("lookup")
		if err != nil {
			return err
		}
		return runTrade(cmd.Context(), cmd.OutOrStdout(), env, outputFormat, strings.Join(args, " "))
	},
}

var highDemandCmd = &cobra.Command{
	Use:   "highdemand",
	Short: "List items at or above a demand threshold",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initApp("lookup")
		if err != nil {
			return err
		}
		threshold := cfg.HighDemand.Threshold
		if cmd.Flags().Changed("threshold") {
			threshold = highDemandThreshold
		}
		limit := cfg.HighDemand.Limit
		if cmd.Flags().Changed("limit") {
			limit = highDemandLimit
		}
		return runHighDemand(cmd.Context(), cmd.OutOrStdout(), env, outputFormat, threshold, limit)
	},
}

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "List the available chat commands",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInfo(cmd.Context(), cmd.OutOrStdout(), cfg.Bot.Prefix, outputFormat)
	},
}

func init() {
	highDemandCmd.Flags().Float64Var(&highDemandThreshold, "threshold", lookup.DefaultDemandThreshold, "minimum demand")
	highDemandCmd.Flags().IntVar(&highDemandLimit, "limit", lookup.DefaultDemandLimit, "maximum number of items")

	rootCmd.AddCommand(valueCmd, tradeCmd, highDemandCmd, infoCmd)
}

// dispatch runs a chat command through the router and prints its reply.
func dispatch(ctx context.Context, w io.Writer, env *appEnv, command, args string) error {
	content := env.Router.Prefix() + command
	if args != "" {
		content += " " + args
	}
	reply, _ := env.Router.Handle(ctx, bot.Message{Author: cliAuthor, Content: content})
	return writeReply(w, reply)
}

func runValue(ctx context.Context, w io.Writer, env *appEnv, format, name string) error {
	if format == "text" {
		return dispatch(ctx, w, env, "value", name)
	}
	res, err := env.Service.Value(ctx, name)
	if err != nil {
		return err
	}
	return writeStructured(w, format, res)
}

func runTrade(ctx context.Context, w io.Writer, env *appEnv, format, spec string) error {
	if format == "text" {
		return dispatch(ctx, w, env, "trade", spec)
	}
	out, err := env.Service.Trade(ctx, spec)
	if err != nil {
		return err
	}
	return writeStructured(w, format, out)
}

func runHighDemand(ctx context.Context, w io.Writer, env *appEnv, format string, threshold float64, limit int) error {
	if format == "text" {
		args := strconv.FormatFloat(threshold, 'f', -1, 64) + " " + strconv.Itoa(limit)
		return dispatch(ctx, w, env, "highdemand", args)
	}
	entries, err := env.Service.HighDemand(ctx, threshold, limit)
	if err != nil {
		return err
	}
	if entries == nil {
		entries = []lookup.HighDemandEntry{}
	}
	return writeStructured(w, format, entries)
}

func runInfo(ctx context.Context, w io.Writer, prefix, format string) error {
	if format == "text" {
		r := bot.NewRouter(nil, bot.Options{Prefix: prefix})
		return dispatch(ctx, w, &appEnv{Router: r}, "info", "")
	}
	return writeStructured(w, format, lookup.Help(prefix))
}
