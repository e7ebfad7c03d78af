package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"mqlite/internal/client"
	"mqlite/internal/queue"
)

func newGetCommand(ctx *commandContext) *cobra.Command {
	return newConsumeCommand(ctx, "get", "Consume messages from a topic", false)
}

func newPeekCommand(ctx *commandContext) *cobra.Command {
	return newConsumeCommand(ctx, "peek", "Show messages from a topic without removing them", true)
}

func newConsumeCommand(ctx *commandContext, use, short string, peek bool) *cobra.Command {
	var topic string
	var limit int

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit <= 0 {
				return fmt.Errorf("--limit must be positive, got %d", limit)
			}
			return ctx.withStore(cmd.Context(), func(store *queue.Store) error {
				logger, _ := ctx.ensureLogger()
				consumer := client.NewConsumer(store, client.WithLogger(logger))
				defer consumer.Close(cmd.Context())

				var (
					messages []client.Message
					err      error
				)
				if peek {
					messages, err = consumer.Peek(cmd.Context(), topic, limit)
				} else {
					messages, err = consumer.Get(cmd.Context(), topic, limit)
				}
				if err != nil && len(messages) == 0 {
					return fmt.Errorf("%s: %w", use, err)
				}
				if renderErr := renderMessages(cmd, ctx.jsonOutput(), messages); renderErr != nil {
					return renderErr
				}
				if err != nil {
					return fmt.Errorf("%s: messages delivered but not removed: %w", use, err)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&topic, "topic", "t", queue.DefaultTopic, "Message topic")
	cmd.Flags().IntVarP(&limit, "limit", "n", 1, "Maximum number of messages")
	return cmd
}

type messageView struct {
	UUID      string    `json:"uuid"`
	Topic     string    `json:"topic"`
	Format    string    `json:"format"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}

func toMessageView(msg client.Message) messageView {
	return messageView{
		UUID:      msg.UUID(),
		Topic:     msg.Topic(),
		Format:    msg.Format(),
		Timestamp: msg.Timestamp().UTC(),
		Payload:   msg.Payload,
	}
}

func renderMessages(cmd *cobra.Command, asJSON bool, messages []client.Message) error {
	views := make([]messageView, 0, len(messages))
	for _, msg := range messages {
		views = append(views, toMessageView(msg))
	}
	if asJSON {
		return writeJSON(cmd, views)
	}

	out := cmd.OutOrStdout()
	if len(views) == 0 {
		fmt.Fprintln(out, "No messages")
		return nil
	}
	rows := make([][]string, 0, len(views))
	for _, v := range views {
		rows = append(rows, []string{
			v.UUID,
			v.Topic,
			v.Format,
			v.Timestamp.Local().Format("2006-01-02 15:04:05.000"),
			formatPayload(v.Payload),
		})
	}
	fmt.Fprintln(out, tableSpec{
		headers: []string{"UUID", "Topic", "Format", "Timestamp", "Payload"},
		rows:    rows,
		wrap:    maxPayloadWidth,
	}.render())
	fmt.Fprintf(out, "%d message(s)\n", len(views))
	return nil
}
