package commands

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/anonto42/nano-blog/backend/internal/models"
	"github.com/anonto42/nano-blog/backend/internal/repositories"
	"github.com/anonto42/nano-blog/backend/validators"
	"github.com/spf13/cobra"
)

var (
	// Group flags
	groupTitle       string
	groupSlug        string
	groupDescription string
)

type groupInput struct {
	Title       string `form:"title" validate:"required,max=200"`
	Slug        string `form:"slug" validate:"required,max=50,slug"`
	Description string `form:"description"`
}

// groupCmd represents the group command
var groupCmd = &cobra.Command{
	Use:   "group",
	Short: "Manage post groups",
}

var groupCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a group",
	Long: `Create a group posts can be filed under.

Examples:
  blogadmin group create --title "Cats" --slug cats --description "All about cats"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		input := &groupInput{Title: groupTitle, Slug: groupSlug, Description: groupDescription}
		if err := validators.NewValidator().Validate(input); err != nil {
			var fe validators.FieldErrors
			if errors.As(err, &fe) {
				return fmt.Errorf("invalid group: %s", fe.Error())
			}
			return err
		}

		db, closeDB, err := openDB()
		if err != nil {
			return err
		}
		defer closeDB()

		group := &models.Group{Title: input.Title, Slug: input.Slug, Description: input.Description}
		if err := repositories.NewPostgresGroupRepository(db).CreateGroup(cmd.Context(), group); err != nil {
			return fmt.Errorf("failed to create group: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Created group %q (/group/%s/)\n", group.Title, group.Slug)
		return nil
	},
}

var groupListCmd = &cobra.Command{
	Use:   "list",
	Short: "List groups",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, closeDB, err := openDB()
		if err != nil {
			return err
		}
		defer closeDB()

		groups, err := repositories.NewPostgresGroupRepository(db).ListGroups(cmd.Context())
		if err != nil {
			return err
		}
		if len(groups) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No groups")
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tSLUG\tTITLE")
		for _, g := range groups {
			fmt.Fprintf(w, "%d\t%s\t%s\n", g.ID, g.Slug, g.Title)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(groupCmd)
	groupCmd.AddCommand(groupCreateCmd)
	groupCmd.AddCommand(groupListCmd)

	groupCreateCmd.Flags().StringVar(&groupTitle, "title", "", "Group title (required)")
	groupCreateCmd.Flags().StringVar(&groupSlug, "slug", "", "Unique slug used in /group/<slug>/ (required)")
	groupCreateCmd.Flags().StringVar(&groupDescription, "description", "", "Group description")
}
