package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"StorefrontPlatform/services/storefront-service/internal/cli/output"
	"StorefrontPlatform/services/storefront-service/internal/domain"
)

// orderList заказы в табличном виде
type orderList []*domain.Order

func (l orderList) Table() *output.TableData {
	table := output.NewTableData("PURCHASE ID", "STATUS", "PRODUCT", "PRICE", "CREATED", "TXN", "TELEGRAM", "EMAIL")
	for _, o := range l {
		table.AddRow(
			o.PurchaseID,
			o.Status,
			o.ProductName,
			strconv.FormatFloat(o.Price, 'f', -1, 64),
			o.CreatedAt.Local().Format(time.DateTime),
			dash(domain.Deref(o.TransactionID)),
			dash(domain.Deref(o.Telegram)),
			dash(domain.Deref(o.Email)),
		)
	}
	return table
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func (a *app) newOrdersCmd() *cobra.Command {
	ordersCmd := &cobra.Command{
		Use:     "orders",
		Aliases: []string{"order"},
		Short:   "Управление заказами",
	}

	var limit int
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "Список заказов, новые первыми",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.adminClient()
			if err != nil {
				return a.handleError(cmd, err)
			}
			orders, err := c.ListOrders(cmd.Context(), limit)
			if err != nil {
				return a.handleError(cmd, err)
			}
			return a.print(cmd, orderList(orders))
		},
	}
	listCmd.Flags().IntVarP(&limit, "limit", "n", 0, "max orders to return (server default when 0)")

	statusCmd := &cobra.Command{
		Use:   "status <purchase-id> <status>",
		Short: "Выставить статус заказа",
		Long: `Выставляет заказу произвольный статус, например paid, delivered
или rejected. Статус не проверяется по списку.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.adminClient()
			if err != nil {
				return a.handleError(cmd, err)
			}
			if err := c.SetOrderStatus(cmd.Context(), args[0], args[1]); err != nil {
				return a.handleError(cmd, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Order %s is now %s\n", args[0], args[1])
			return nil
		},
	}

	deleteCmd := &cobra.Command{
		Use:     "delete <purchase-id>",
		Aliases: []string{"rm"},
		Short:   "Удалить заказ",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.adminClient()
			if err != nil {
				return a.handleError(cmd, err)
			}
			if err := c.DeleteOrder(cmd.Context(), args[0]); err != nil {
				return a.handleError(cmd, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Order %s deleted\n", args[0])
			return nil
		},
	}

	ordersCmd.AddCommand(listCmd, statusCmd, deleteCmd)
	return ordersCmd
}
