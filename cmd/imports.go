package cmd

import (
	"bufio"
	"bytes"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/s0up4200/postup/postup"
)

var importsCmd = &cobra.Command{
	Use:   "imports",
	Short: "Upload recipient data and manage import templates",
}

var importsUploadCmd = &cobra.Command{
	Use:   "upload <importTemplateId>",
	Short: "Upload the rows of --file through an import template",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		templateID, err := parseID("import template id", args[0])
		if err != nil {
			return err
		}
		file, _ := cmd.Flags().GetString("file")
		sendTemplateID, _ := cmd.Flags().GetInt64("send-template")

		data, err := readInput(cmd, file)
		if err != nil {
			return err
		}
		rows := splitRows(data)
		if len(rows) == 0 {
			return fmt.Errorf("%s has no rows to import", file)
		}

		result, err := client.Imports.Upload(cmd.Context(), postup.ImportRequest{
			ImportTemplateID: templateID,
			Data:             rows,
			SendTemplateID:   sendTemplateID,
		})
		if err != nil {
			return err
		}
		logger.Info().Int64("import_id", result.ImportID).Int("rows", len(rows)).Msg("Import started")
		return render(cmd, result)
	},
}

// splitRows returns the non-blank lines of data
func splitRows(data []byte) []string {
	var rows []string
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if line := strings.TrimRight(scanner.Text(), "\r"); strings.TrimSpace(line) != "" {
			rows = append(rows, line)
		}
	}
	return rows
}

var importsStatusCmd = &cobra.Command{
	Use:   "status <importId>",
	Short: "Show the state of an import",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID("import id", args[0])
		if err != nil {
			return err
		}
		result, err := client.Imports.Status(cmd.Context(), id)
		if err != nil {
			return err
		}
		return render(cmd, result)
	},
}

var importsStatsCmd = &cobra.Command{
	Use:         "stats",
	Short:       "List imports by --status, --template or --limit",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{listing: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		status, _ := cmd.Flags().GetString("status")
		templateID, _ := cmd.Flags().GetInt64("template")
		limit, _ := cmd.Flags().GetInt("limit")

		imports, err := client.Imports.Stats(cmd.Context(), postup.ImportStatsQuery{
			Status:           postup.ImportStatus(status),
			Limit:            limit,
			ImportTemplateID: templateID,
		})
		if err != nil {
			return err
		}
		return render(cmd, imports)
	},
}

var importTemplatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "Work with import templates",
}

var importTemplatesListCmd = &cobra.Command{
	Use:         "list",
	Short:       "List import templates",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{listing: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		templates, err := client.ImportTemplates.List(cmd.Context(), limit)
		if err != nil {
			return err
		}
		return render(cmd, templates)
	},
}

var importTemplatesGetCmd = &cobra.Command{
	Use:   "get <importTemplateId>",
	Short: "Show an import template",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID("import template id", args[0])
		if err != nil {
			return err
		}
		template, err := client.ImportTemplates.Get(cmd.Context(), id)
		if err != nil {
			return err
		}
		return render(cmd, template)
	},
}

var importTemplatesCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an import template from a JSON --file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		file, _ := cmd.Flags().GetString("file")
		var template postup.ImportTemplate
		if err := decodeInput(cmd, file, &template); err != nil {
			return err
		}
		created, err := client.ImportTemplates.Create(cmd.Context(), template)
		if err != nil {
			return err
		}
		return render(cmd, created)
	},
}

var importTemplatesUpdateCmd = &cobra.Command{
	Use:   "update <importTemplateId>",
	Short: "Update an import template from a JSON --file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID("import template id", args[0])
		if err != nil {
			return err
		}
		file, _ := cmd.Flags().GetString("file")
		var template postup.ImportTemplate
		if err := decodeInput(cmd, file, &template); err != nil {
			return err
		}
		template.ImportTemplateID = id
		updated, err := client.ImportTemplates.Update(cmd.Context(), template)
		if err != nil {
			return err
		}
		return render(cmd, updated)
	},
}

func init() {
	importsUploadCmd.Flags().String("file", "-", "rows to import, one per line, - for stdin")
	importsUploadCmd.Flags().Int64("send-template", 0, "send template triggered for imported recipients")

	importsStatsCmd.Flags().String("status", "", fmt.Sprintf("import status, one of %v", postup.ImportStatuses))
	importsStatsCmd.Flags().Int64("template", 0, "import template id")
	importsStatsCmd.Flags().Int("limit", 0, "maximum number of imports")

	importTemplatesListCmd.Flags().Int("limit", 0, "maximum number of templates")
	for _, c := range []*cobra.Command{importTemplatesCreateCmd, importTemplatesUpdateCmd} {
		c.Flags().String("file", "-", "JSON import template, - for stdin")
	}
	importTemplatesCmd.AddCommand(importTemplatesListCmd, importTemplatesGetCmd, importTemplatesCreateCmd, importTemplatesUpdateCmd)

	importsCmd.AddCommand(importsUploadCmd, importsStatusCmd, importsStatsCmd, importTemplatesCmd)
	rootCmd.AddCommand(importsCmd)
}
