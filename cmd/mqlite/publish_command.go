package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"mqlite/internal/client"
	"mqlite/internal/codec"
	"mqlite/internal/queue"
)

func newPublishCommand(ctx *commandContext) *cobra.Command {
	var topic string
	var format string

	cmd := &cobra.Command{
		Use:   "publish [payload]",
		Short: "Publish a message (payload from the argument or stdin)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readPayload(cmd, args)
			if err != nil {
				return err
			}
			payload, err := parsePayload(format, raw)
			if err != nil {
				return err
			}

			msgHeaders := map[string]any{
				client.HeaderTopic:  topic,
				client.HeaderFormat: format,
			}

			return ctx.withStore(cmd.Context(), func(store *queue.Store) error {
				logger, _ := ctx.ensureLogger()
				producer := client.NewProducer(store, client.WithLogger(logger))
				defer producer.Close(cmd.Context())

				id, err := producer.Publish(cmd.Context(), client.NewMessage(msgHeaders, payload))
				if err != nil {
					return fmt.Errorf("publish: %w", err)
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, map[string]string{"uuid": id, "topic": queue.NormalizeTopic(topic)})
				}
				fmt.Fprintln(cmd.OutOrStdout(), id)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&topic, "topic", "t", queue.DefaultTopic, "Message topic")
	cmd.Flags().StringVarP(&format, "format", "f", "", "Payload format (json, text or any registered name)")
	return cmd
}

func readPayload(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 1 && args[0] != "-" {
		return args[0], nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("read payload from stdin: %w", err)
	}
	return strings.TrimRight(string(data), "\n"), nil
}

// parsePayload turns JSON input into a value so the json codec stores it once
// rather than as a quoted string.
func parsePayload(format, raw string) (any, error) {
	if strings.EqualFold(strings.TrimSpace(format), codec.FormatJSON) {
		value, err := codec.DecodeJSON([]byte(raw))
		if err != nil {
			return nil, fmt.Errorf("payload is not valid JSON: %w", err)
		}
		return value, nil
	}
	return raw, nil
}
