package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"divine-deck/internal/db"
	"divine-deck/internal/services"
)

var setupsCmd = &cobra.Command{
	Use:   "setups",
	Short: "Manage saved mass setups",
}

var setupsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved setups, oldest first",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		database, err := db.Open(cfg.Storage.DBPath)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer database.Close()

		setups, err := services.NewSetupStore(database).List()
		if err != nil {
			return err
		}
		if len(setups) == 0 {
			cmd.Println("No saved setups")
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tSLIDES\tCREATED")
		for _, s := range setups {
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", s.ID, s.Name, len(s.Queue), s.CreatedAt.Local().Format("2006-01-02 15:04"))
		}
		return w.Flush()
	},
}

var setupsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a saved setup",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		database, err := db.Open(cfg.Storage.DBPath)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer database.Close()

		if err := services.NewSetupStore(database).Delete(args[0]); err != nil {
			return err
		}
		cmd.Printf("Deleted %s\n", args[0])
		return nil
	},
}

func init() {
	setupsCmd.AddCommand(setupsListCmd, setupsDeleteCmd)
	rootCmd.AddCommand(setupsCmd)
}
