package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"github.com/spf13/cobra"

	"StorefrontPlatform/pkg/logger"
	"StorefrontPlatform/pkg/rabbitmq"
	"StorefrontPlatform/services/storefront-service/internal/cli/output"
	"StorefrontPlatform/services/storefront-service/internal/domain"
)

func (a *app) newEventsCmd() *cobra.Command {
	eventsCmd := &cobra.Command{
		Use:   "events",
		Short: "События заказов из RabbitMQ",
	}

	var binding string
	tailCmd := &cobra.Command{
		Use:   "tail",
		Short: "Печатать события заказов по мере поступления",
		Long: `Подключается к exchange событий заказов и печатает события
до прерывания. --binding задает routing key, например order.under_review.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := rabbitmq.NewConfig()
			cfg.URL = a.v.GetString("amqp-url")
			cfg.Exchange = a.v.GetString("exchange")

			conn, err := rabbitmq.Connect(cmd.Context(), cfg)
			if err != nil {
				return a.handleError(cmd, err)
			}
			defer conn.Close()

			a.logger.Debug("Tailing order events",
				logger.String("exchange", cfg.Exchange),
				logger.String("binding", binding))

			err = rabbitmq.NewConsumer(conn, cfg).Tail(cmd.Context(), binding, a.eventPrinter(cmd.OutOrStdout()))
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return a.handleError(cmd, err)
		},
	}

	tailCmd.Flags().StringVar(&binding, "binding", "order.#", "routing key pattern")
	tailCmd.Flags().String("amqp-url", rabbitmq.NewConfig().URL, "RabbitMQ URL")
	tailCmd.Flags().String("exchange", rabbitmq.NewConfig().Exchange, "order events exchange")
	a.v.BindPFlag("amqp-url", tailCmd.Flags().Lookup("amqp-url"))
	a.v.BindPFlag("exchange", tailCmd.Flags().Lookup("exchange"))

	eventsCmd.AddCommand(tailCmd)
	return eventsCmd
}

// eventPrinter печатает событие одной строкой: JSON для json/yaml, колонки для table
func (a *app) eventPrinter(w io.Writer) rabbitmq.MessageHandler {
	return func(ctx context.Context, msg amqp091.Delivery) error {
		var event domain.OrderEvent
		if err := json.Unmarshal(msg.Body, &event); err != nil {
			a.logger.Warn("Skipping malformed event",
				logger.String("routing_key", msg.RoutingKey),
				logger.Error(err))
			return nil
		}

		if a.format() == output.FormatTable {
			_, err := fmt.Fprintf(w, "%s  %-22s  %-18s  %s\n",
				event.Timestamp.Local().Format(time.DateTime),
				event.EventType,
				event.PurchaseID,
				dash(event.Status))
			return err
		}

		line, err := json.Marshal(event)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(line))
		return err
	}
}
