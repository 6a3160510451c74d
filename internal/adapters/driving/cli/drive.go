package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"google.golang.org/api/drive/v3"

	"github.com/elemental-reasoning/gdevutils/gdrive"
)

var driveCmd = &cobra.Command{
	Use:   "drive",
	Short: "Work with Google Drive",
	Long: `List and create Drive files.

Examples:
  gdevutils drive list
  gdevutils drive list --type sheet
  gdevutils drive create "Meeting notes" --type doc`,
}

var driveListCmd = &cobra.Command{
	Use:   "list",
	Short: "List Drive files",
	RunE:  runDriveList,
}

var driveCreateCmd = &cobra.Command{
	Use:   "create [name]",
	Short: "Create a Drive file",
	Args:  cobra.ExactArgs(1),
	RunE:  runDriveCreate,
}

// Each command gets its own flag variable so the defaults stay
// independent.
var (
	driveListType   string
	driveCreateType string
)

func init() {
	driveListCmd.Flags().StringVar(&driveListType, "type", "", "Filter by type (doc, sheet, slides, folder)")
	driveCreateCmd.Flags().StringVar(&driveCreateType, "type", "doc", "File type (doc, sheet, slides, folder)")

	driveCmd.AddCommand(driveListCmd)
	driveCmd.AddCommand(driveCreateCmd)
	rootCmd.AddCommand(driveCmd)
}

// mimeTypeFor maps the short type names the flags accept to MIME types.
func mimeTypeFor(name string) (string, error) {
	switch name {
	case "doc", "document":
		return gdrive.MimeTypeDoc, nil
	case "sheet", "spreadsheet":
		return gdrive.MimeTypeSheet, nil
	case "slides", "presentation":
		return gdrive.MimeTypeSlides, nil
	case "folder":
		return gdrive.MimeTypeFolder, nil
	default:
		return "", fmt.Errorf("unknown type %q (expected doc, sheet, slides, or folder)", name)
	}
}

func runDriveList(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	var mimeType string
	if driveListType != "" {
		var err error
		mimeType, err = mimeTypeFor(driveListType)
		if err != nil {
			return err
		}
	}

	client, err := driveClient(ctx)
	if err != nil {
		return err
	}

	var files []*drive.File
	if mimeType != "" {
		files, err = client.FilesOfType(ctx, mimeType)
	} else {
		files, err = client.Files(ctx)
	}
	if err != nil {
		return fmt.Errorf("listing files: %w", err)
	}

	if len(files) == 0 {
		cmd.Println("No files found.")
		return nil
	}

	for _, f := range files {
		cmd.Printf("%s\n", headerStyle.Render(f.Name))
		cmd.Printf("  %s\n", mutedStyle.Render(f.MimeType))
		cmd.Printf("  %s\n", mutedStyle.Render("id: "+f.Id))
	}
	return nil
}

func runDriveCreate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	mimeType, err := mimeTypeFor(driveCreateType)
	if err != nil {
		return err
	}

	client, err := driveClient(ctx)
	if err != nil {
		return err
	}
	file, err := client.CreateFile(ctx, args[0], &drive.File{MimeType: mimeType})
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}

	cmd.Println(successStyle.Render("Created " + file.Name))
	cmd.Printf("  %s\n", mutedStyle.Render("id: "+file.Id))
	if file.WebViewLink != "" {
		cmd.Printf("  %s\n", mutedStyle.Render(file.WebViewLink))
	}
	return nil
}
