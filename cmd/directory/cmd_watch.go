package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gartstein/staffdir/internal/directory/events"
	"github.com/spf13/cobra"
)

var watchGroup string

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print employee change events from Kafka",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if !cfg.Kafka.Enabled() {
			return errors.New("kafka.brokers is not configured")
		}
		group := cfg.Kafka.GroupID
		if watchGroup != "" {
			group = watchGroup
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		consumer := events.NewConsumer(cfg.Kafka.Brokers, group, cfg.Kafka.Topic, logger)
		defer consumer.Close()
		consumer.RegisterHandler(printEvent(cmd.OutOrStdout()))
		return consumer.Run(ctx)
	},
}

func init() {
	watchCmd.Flags().StringVar(&watchGroup, "group", "", "consumer group (default kafka.group_id)")
}

// printEvent writes one line per event.
func printEvent(out io.Writer) events.Handler {
	return func(_ context.Context, event events.Event) error {
		subject := event.Key()
		if event.Employee != nil {
			subject = fmt.Sprintf("%d %s", event.Employee.ID, event.Employee.FullName())
		} else if len(event.IDs) > 0 {
			ids := make([]string, len(event.IDs))
			for i, id := range event.IDs {
				ids[i] = fmt.Sprint(id)
			}
			subject = strings.Join(ids, ",")
		}
		_, err := fmt.Fprintf(out, "%s %-18s %s\n",
			event.OccurredAt.Format("2006-01-02T15:04:05Z07:00"), event.Type, subject)
		return err
	}
}
