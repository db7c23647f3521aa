package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/opsdeck/opsdeck/internal/errors"
	"github.com/opsdeck/opsdeck/internal/guard"
	"github.com/opsdeck/opsdeck/internal/model"
	"github.com/opsdeck/opsdeck/internal/resource"
	"github.com/opsdeck/opsdeck/internal/tui"
)

var productCmd = &cobra.Command{
	Use:   "product",
	Short: "Manage products",
	Long: `Manage products.

Every role can browse the catalog. Admins and Managers may add,
update, and remove products; product images are uploaded from a local
file path.

Subcommands:
  list    List products
  add     Add a product (Admin or Manager)
  update  Update a product (Admin or Manager)
  remove  Remove a product (Admin or Manager)

Examples:
  opsdeck product list --sort price --order desc
  opsdeck product add
  opsdeck product remove 64af3b2c91`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// productListCmd lists products page by page
var productListCmd = &cobra.Command{
	Use:   "list",
	Short: "List products",
	Long: `List products.

Examples:
  opsdeck product list
  opsdeck product list --page 3 --search widget`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}
		if err := app.requireRoute(cmd.Context(), guard.RouteProducts); err != nil {
			return err
		}

		query := queryFromFlags(cmd)
		page, err := app.client.ListProducts(cmd.Context(), query)
		if err != nil {
			return err
		}

		rows := make([][]string, 0, len(page.Items))
		for _, p := range page.Items {
			rows = append(rows, []string{
				p.ID, p.Name, p.Description, strconv.FormatFloat(p.Price, 'f', 2, 64),
			})
		}
		printTable([]string{"ID", "Name", "Description", "Price"}, rows, query.Page, page.TotalPages)
		return nil
	},
}

// productAddCmd creates a product through the interactive form
var productAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a product (Admin or Manager)",
	Long: `Add a product.

Opens an interactive form for name, description, price, and an
optional image path.

Examples:
  opsdeck product add`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}
		if err := app.requireProductEditor(cmd.Context()); err != nil {
			return err
		}

		in, err := tui.RunProductForm(nil)
		if err != nil {
			return err
		}

		if err := app.client.CreateProduct(cmd.Context(), in); err != nil {
			return err
		}

		app.notifier.Success(fmt.Sprintf("Added %s", in.Name))
		return nil
	},
}

// productUpdateCmd edits an existing product
var productUpdateCmd = &cobra.Command{
	Use:   "update <product-id>",
	Short: "Update a product (Admin or Manager)",
	Long: `Update a product.

Fetches the product's current record and opens the form pre-filled.
Leave the image path empty to keep the current image.

Examples:
  opsdeck product update 64af3b2c91`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}
		if err := app.requireProductEditor(cmd.Context()); err != nil {
			return err
		}

		product, err := findProduct(cmd, app, args[0])
		if err != nil {
			return err
		}

		in, err := tui.RunProductForm(&product)
		if err != nil {
			return err
		}

		if err := app.client.UpdateProduct(cmd.Context(), in); err != nil {
			return err
		}

		app.notifier.Success(fmt.Sprintf("Updated %s", in.Name))
		return nil
	},
}

// productRemoveCmd deletes a product after confirmation
var productRemoveCmd = &cobra.Command{
	Use:   "remove <product-id>",
	Short: "Remove a product (Admin or Manager)",
	Long: `Remove a product.

Asks for confirmation before deleting. Use --yes to skip the prompt.

Examples:
  opsdeck product remove 64af3b2c91
  opsdeck product remove 64af3b2c91 --yes`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}
		if err := app.requireProductEditor(cmd.Context()); err != nil {
			return err
		}

		if yes, _ := cmd.Flags().GetBool("yes"); !yes {
			confirmed, err := tui.Confirmer{}.Confirm(fmt.Sprintf("Delete product %s?", args[0]))
			if err != nil {
				return err
			}
			if !confirmed {
				fmt.Println("Cancelled.")
				return nil
			}
		}

		if err := app.client.DeleteProduct(cmd.Context(), args[0]); err != nil {
			return err
		}

		app.notifier.Success("Product deleted")
		return nil
	},
}

// findProduct resolves a product ID to its current record by scanning
// the product list.
func findProduct(cmd *cobra.Command, app *app, id string) (model.Product, error) {
	query := resource.Query{Page: 1, SortKey: "name", SortOrder: resource.SortAsc}

	for {
		page, err := app.client.ListProducts(cmd.Context(), query)
		if err != nil {
			return model.Product{}, err
		}
		for _, p := range page.Items {
			if p.ID == id {
				return p, nil
			}
		}
		if query.Page >= page.TotalPages {
			return model.Product{}, errors.New(errors.ErrCodeAPINotFound,
				fmt.Sprintf("no product with id %s", id)).
				WithSuggestion("Run 'opsdeck product list' to look up the id")
		}
		query.Page++
	}
}

func init() {
	productCmd.AddCommand(productListCmd)
	productCmd.AddCommand(productAddCmd)
	productCmd.AddCommand(productUpdateCmd)
	productCmd.AddCommand(productRemoveCmd)

	addListFlags(productListCmd, "name")
	productRemoveCmd.Flags().Bool("yes", false, "Skip the confirmation prompt")

	rootCmd.AddCommand(productCmd)
}
