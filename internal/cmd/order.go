package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/opsdeck/opsdeck/internal/api"
	"github.com/opsdeck/opsdeck/internal/guard"
	"github.com/opsdeck/opsdeck/internal/model"
	"github.com/opsdeck/opsdeck/internal/resource"
	"github.com/opsdeck/opsdeck/internal/tui"
)

var orderCmd = &cobra.Command{
	Use:   "order",
	Short: "Manage orders",
	Long: `Manage orders.

Managers and Employees take orders. Only Managers move them through
their lifecycle: a Pending order can be delivered or cancelled, and a
delivered or cancelled order is final.

Subcommands:
  list     List orders
  add      Take a new order
  deliver  Mark a pending order delivered (Manager only)
  cancel   Cancel a pending order (Manager only)

Examples:
  opsdeck order list --sort status
  opsdeck order add
  opsdeck order deliver 64af3b2c91`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// orderListCmd lists orders page by page
var orderListCmd = &cobra.Command{
	Use:   "list",
	Short: "List orders",
	Long: `List orders.

Examples:
  opsdeck order list
  opsdeck order list --sort createdAt --order desc`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}
		if err := app.requireRoute(cmd.Context(), guard.RouteOrders); err != nil {
			return err
		}

		query := queryFromFlags(cmd)
		page, err := app.client.ListOrders(cmd.Context(), query)
		if err != nil {
			return err
		}

		rows := make([][]string, 0, len(page.Items))
		for _, o := range page.Items {
			rows = append(rows, []string{o.ID, o.CustomerName, o.ProductID, string(o.Status)})
		}
		printTable([]string{"ID", "Customer", "Product", "Status"}, rows, query.Page, page.TotalPages)
		return nil
	},
}

// orderAddCmd takes a new order through the interactive form
var orderAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Take a new order",
	Long: `Take a new order.

Opens an interactive form for the customer name and product. The
product is picked from the first page of the catalog; pass the id
directly with --product to skip the picker.

Examples:
  opsdeck order add
  opsdeck order add --customer "Ada" --product 64af3b2c91`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}
		if err := app.requireRoute(cmd.Context(), guard.RouteOrders); err != nil {
			return err
		}

		customer, _ := cmd.Flags().GetString("customer")
		productID, _ := cmd.Flags().GetString("product")

		var in api.CreateOrderInput
		if customer != "" && productID != "" {
			in = api.CreateOrderInput{CustomerName: customer, ProductID: productID}
		} else {
			catalog, err := app.client.ListProducts(cmd.Context(),
				resource.Query{Page: 1, SortKey: "name", SortOrder: resource.SortAsc})
			if err != nil {
				return err
			}

			in, err = tui.RunOrderForm(catalog.Items)
			if err != nil {
				return err
			}
		}

		if err := app.client.CreateOrder(cmd.Context(), in); err != nil {
			return err
		}

		app.notifier.Success(fmt.Sprintf("Order taken for %s", in.CustomerName))
		return nil
	},
}

// orderDeliverCmd marks a pending order delivered
var orderDeliverCmd = &cobra.Command{
	Use:   "deliver <order-id>",
	Short: "Mark a pending order delivered (Manager only)",
	Long: `Mark a pending order delivered.

Delivered orders are final; only Pending orders can change status.

Examples:
  opsdeck order deliver 64af3b2c91`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return updateOrderStatus(cmd, args[0], model.OrderDelivered)
	},
}

// orderCancelCmd cancels a pending order
var orderCancelCmd = &cobra.Command{
	Use:   "cancel <order-id>",
	Short: "Cancel a pending order (Manager only)",
	Long: `Cancel a pending order.

Cancelled orders are final; only Pending orders can change status.

Examples:
  opsdeck order cancel 64af3b2c91`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return updateOrderStatus(cmd, args[0], model.OrderCancelled)
	},
}

// updateOrderStatus moves one order to a terminal status, rejecting the
// transition locally when the caller is not a Manager or the order is
// already final.
func updateOrderStatus(cmd *cobra.Command, id string, status model.OrderStatus) error {
	app, err := newApp(cmd)
	if err != nil {
		return err
	}
	if err := app.requireManager(cmd.Context()); err != nil {
		return err
	}

	order, err := findOrder(cmd, app, id)
	if err != nil {
		return err
	}
	if order.Status.Terminal() {
		return errOrderFinal(order)
	}

	if err := app.client.UpdateOrderStatus(cmd.Context(), id, status); err != nil {
		return err
	}

	app.notifier.Success(fmt.Sprintf("Order for %s is now %s", order.CustomerName, status))
	return nil
}

// findOrder resolves an order ID to its current record by scanning the
// order list.
func findOrder(cmd *cobra.Command, app *app, id string) (model.Order, error) {
	query := resource.Query{Page: 1, SortKey: "customerName", SortOrder: resource.SortAsc}

	for {
		page, err := app.client.ListOrders(cmd.Context(), query)
		if err != nil {
			return model.Order{}, err
		}
		for _, o := range page.Items {
			if o.ID == id {
				return o, nil
			}
		}
		if query.Page >= page.TotalPages {
			return model.Order{}, errOrderNotFound(id)
		}
		query.Page++
	}
}

func init() {
	orderCmd.AddCommand(orderListCmd)
	orderCmd.AddCommand(orderAddCmd)
	orderCmd.AddCommand(orderDeliverCmd)
	orderCmd.AddCommand(orderCancelCmd)

	addListFlags(orderListCmd, "customerName")
	orderAddCmd.Flags().String("customer", "", "Customer name")
	orderAddCmd.Flags().String("product", "", "Product id")

	rootCmd.AddCommand(orderCmd)
}
