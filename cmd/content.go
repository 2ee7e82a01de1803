package cmd

import (
	"errors"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/s0up4200/postup/postup"
)

var contentCmd = &cobra.Command{
	Use:   "content",
	Short: "Work with the content library",
}

var contentGetCmd = &cobra.Command{
	Use:         "get",
	Short:       "List the files of a --path or show one --filename",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{listing: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("path")
		filename, _ := cmd.Flags().GetString("filename")

		if filename != "" {
			file, err := client.Content.GetByFilename(cmd.Context(), filename)
			if err != nil {
				return err
			}
			return render(cmd, file)
		}

		files, err := client.Content.GetByPath(cmd.Context(), path)
		if err != nil {
			return err
		}
		return render(cmd, files)
	},
}

var contentUploadCmd = &cobra.Command{
	Use:   "upload <file>",
	Short: "Upload a file to the content library",
	Long: `Upload a file to the content library. The library name defaults to the
file's base name. Use --replace to overwrite an existing file.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := readInput(cmd, args[0])
		if err != nil {
			return err
		}

		name, _ := cmd.Flags().GetString("name")
		if name == "" {
			if args[0] == "-" {
				return errors.New("--name is required when reading from stdin")
			}
			name = filepath.Base(args[0])
		}
		path, _ := cmd.Flags().GetString("path")
		contentType, _ := cmd.Flags().GetString("type")
		creator, _ := cmd.Flags().GetString("creator")
		replace, _ := cmd.Flags().GetBool("replace")

		req := postup.ContentRequest{
			Data:    string(data),
			Name:    name,
			Path:    path,
			Type:    postup.ContentType(contentType),
			Creator: creator,
		}

		var file *postup.ContentFile
		if replace {
			file, err = client.Content.Update(cmd.Context(), req)
		} else {
			file, err = client.Content.Create(cmd.Context(), req)
		}
		if err != nil {
			return err
		}
		logger.Info().Str("name", name).Str("path", path).Bool("replaced", replace).Msg("Content uploaded")
		return render(cmd, file)
	},
}

var contentMkdirCmd = &cobra.Command{
	Use:   "mkdir <path>",
	Short: "Create a content library folder",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		folder, err := client.ContentFolders.Create(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return render(cmd, folder)
	},
}

func init() {
	contentGetCmd.Flags().String("path", "", "library folder")
	contentGetCmd.Flags().String("filename", "", "single file name")
	contentGetCmd.MarkFlagsMutuallyExclusive("path", "filename")

	contentUploadCmd.Flags().String("name", "", "file name in the library")
	contentUploadCmd.Flags().String("path", "", "library folder")
	contentUploadCmd.Flags().String("type", "", "content type (HTML or TEXT)")
	contentUploadCmd.Flags().String("creator", "", "creator recorded on the file")
	contentUploadCmd.Flags().Bool("replace", false, "replace an existing file")
	_ = contentUploadCmd.MarkFlagRequired("path")

	contentCmd.AddCommand(contentGetCmd, contentUploadCmd, contentMkdirCmd)
	rootCmd.AddCommand(contentCmd)
}
