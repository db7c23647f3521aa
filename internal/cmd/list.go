package cmd

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/opsdeck/opsdeck/internal/resource"
)

// addListFlags attaches the shared flags for paginated list commands.
func addListFlags(cmd *cobra.Command, defaultSort string) {
	cmd.Flags().Int("page", 1, "Page to fetch")
	cmd.Flags().String("sort", defaultSort, "Sort key")
	cmd.Flags().String("order", "asc", "Sort order: asc or desc")
	cmd.Flags().String("search", "", "Search by name or email")
}

// queryFromFlags builds the list query from the shared flags.
func queryFromFlags(cmd *cobra.Command) resource.Query {
	page, _ := cmd.Flags().GetInt("page")
	sort, _ := cmd.Flags().GetString("sort")
	order, _ := cmd.Flags().GetString("order")
	search, _ := cmd.Flags().GetString("search")

	if page < 1 {
		page = 1
	}

	sortOrder := resource.SortAsc
	if order == "desc" {
		sortOrder = resource.SortDesc
	}

	return resource.Query{
		Page:      page,
		SortKey:   sort,
		SortOrder: sortOrder,
		Search:    search,
	}
}

// printTable writes rows as a bordered table with a pagination footer.
func printTable(header []string, rows [][]string, currentPage, totalPages int) {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("241"))).
		Headers(header...).
		Rows(rows...)

	fmt.Println(t)

	if len(rows) == 0 {
		fmt.Println("(no entries)")
	}
	fmt.Printf("Page %d of %d\n", currentPage, totalPages)
}
