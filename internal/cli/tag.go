package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/example/sift/internal/ports/primary"
	"github.com/example/sift/internal/wire"
)

var tagCmd = &cobra.Command{
	Use:   "tag",
	Short: "Manage axial tags (failure taxonomy)",
	Long:  "Create, list, show, update, merge and delete tags in the sift taxonomy",
}

var tagCreateCmd = &cobra.Command{
	Use:   "create [name]",
	Short: "Create a new tag",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		name := args[0]
		description, _ := cmd.Flags().GetString("description")
		tagColor, _ := cmd.Flags().GetString("color")

		resp, err := wire.TagService().CreateTag(ctx, primary.CreateTagRequest{
			Name:        name,
			Description: description,
			Color:       tagColor,
		})
		if err != nil {
			return fmt.Errorf("failed to create tag: %w", err)
		}

		tag := resp.Tag
		fmt.Printf("✓ Created tag %s: %s\n", tag.ID, tag.Name)
		if tag.Description != "" {
			fmt.Printf("  Description: %s\n", tag.Description)
		}
		return nil
	},
}

var tagListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all tags",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		tags, err := wire.TagService().ListTags(ctx)
		if err != nil {
			return fmt.Errorf("failed to list tags: %w", err)
		}

		if len(tags) == 0 {
			fmt.Println("No tags found")
			return nil
		}

		fmt.Printf("Found %d tag(s):\n\n", len(tags))
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tUSES\tDESCRIPTION")
		for _, tag := range tags {
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", tag.ID, tag.Name, tag.UsageCount, tag.Description)
		}
		return w.Flush()
	},
}

var tagShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show tag details and example open codes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		tag, err := wire.TagService().GetTag(ctx, args[0])
		if err != nil {
			return fmt.Errorf("tag not found: %w", err)
		}

		fmt.Printf("Tag: %s (%s)\n", tag.Name, tag.ID)
		if tag.Description != "" {
			fmt.Printf("Description: %s\n", tag.Description)
		}
		if tag.Color != "" {
			fmt.Printf("Color: %s\n", tag.Color)
		}
		fmt.Printf("Usage count: %d\n", tag.UsageCount)
		fmt.Printf("Created: %s\n", tag.CreatedAt)

		if len(tag.Examples) > 0 {
			fmt.Println()
			fmt.Printf("Example open codes (%d):\n", len(tag.Examples))
			for _, example := range tag.Examples {
				fmt.Printf("  - %s\n", example)
			}
		}
		return nil
	},
}

var tagUpdateCmd = &cobra.Command{
	Use:   "update [id]",
	Short: "Update a tag's name, description or color",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		// Unset flags keep the current values.
		current, err := wire.TagService().GetTag(ctx, args[0])
		if err != nil {
			return fmt.Errorf("tag not found: %w", err)
		}

		name := current.Name
		if cmd.Flags().Changed("name") {
			name, _ = cmd.Flags().GetString("name")
		}
		description := current.Description
		if cmd.Flags().Changed("description") {
			description, _ = cmd.Flags().GetString("description")
		}
		tagColor, _ := cmd.Flags().GetString("color")

		tag, err := wire.TagService().UpdateTag(ctx, args[0], primary.UpdateTagRequest{
			Name:        name,
			Description: description,
			Color:       tagColor,
		})
		if err != nil {
			return fmt.Errorf("failed to update tag: %w", err)
		}

		fmt.Printf("✓ Updated tag %s: %s\n", tag.ID, tag.Name)
		return nil
	},
}

var tagDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a tag",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		cascade, _ := cmd.Flags().GetBool("cascade")

		resp, err := wire.TagService().DeleteTag(ctx, args[0], cascade)
		if err != nil {
			return fmt.Errorf("failed to delete tag: %w", err)
		}

		fmt.Printf("✓ Deleted tag %s\n", args[0])
		if resp.TracesAffected > 0 {
			fmt.Printf("  Removed from %d trace(s)\n", resp.TracesAffected)
		}
		return nil
	},
}

var tagMergeCmd = &cobra.Command{
	Use:   "merge [source-id] [target-id]",
	Short: "Merge one tag into another",
	Long: `Merge the source tag into the target tag. Every trace referencing the
source is rewritten to reference the target, usage counts and examples are
folded into the target, and the source tag is deleted.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		resp, err := wire.TagService().MergeTags(ctx, args[0], args[1])
		if err != nil {
			return fmt.Errorf("failed to merge tags: %w", err)
		}

		fmt.Printf("✓ Merged %s into %s (%s)\n", args[0], resp.MergedTag.ID, resp.MergedTag.Name)
		fmt.Printf("  Traces rewritten: %d\n", resp.TracesAffected)
		fmt.Printf("  Combined usage count: %d\n", resp.MergedTag.UsageCount)
		return nil
	},
}

func init() {
	tagCreateCmd.Flags().StringP("description", "d", "", "Tag description")
	tagCreateCmd.Flags().StringP("color", "c", "", "Tag display color")

	tagUpdateCmd.Flags().StringP("name", "n", "", "New tag name")
	tagUpdateCmd.Flags().StringP("description", "d", "", "New tag description")
	tagUpdateCmd.Flags().StringP("color", "c", "", "New tag display color")

	tagDeleteCmd.Flags().Bool("cascade", false, "Remove the tag from referencing traces before deleting")

	// Register subcommands
	tagCmd.AddCommand(tagCreateCmd)
	tagCmd.AddCommand(tagListCmd)
	tagCmd.AddCommand(tagShowCmd)
	tagCmd.AddCommand(tagUpdateCmd)
	tagCmd.AddCommand(tagDeleteCmd)
	tagCmd.AddCommand(tagMergeCmd)
}

// TagCmd returns the tag command
func TagCmd() *cobra.Command {
	return tagCmd
}
