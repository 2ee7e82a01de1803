package cmd

import (
	"encoding/json"
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/s0up4200/postup/postup"
)

var requestMethods = []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete}

// requestCmd sends an arbitrary request, for endpoints without a command
var requestCmd = &cobra.Command{
	Use:   "request <method> <path>",
	Short: "Send a raw request to the API",
	Long: `Send a raw request to the API and print the normalized response.

  postup request GET /brand/
  postup request PUT /recipient/42 --data '{"status": "H"}'`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		method := strings.ToUpper(args[0])
		if !slices.Contains(requestMethods, method) {
			return fmt.Errorf("unsupported method %s (must be one of %s)", args[0], strings.Join(requestMethods, ", "))
		}
		path := args[1]
		if !strings.HasPrefix(path, "/") {
			path = "/" + path
		}

		body, err := requestBody(cmd)
		if err != nil {
			return err
		}

		result, err := client.Request(cmd.Context(), method, path, body)
		if err != nil {
			return err
		}
		return render(cmd, result)
	},
}

// requestBody reads the JSON object given with --data or --data-file
func requestBody(cmd *cobra.Command) (postup.Body, error) {
	data, _ := cmd.Flags().GetString("data")
	file, _ := cmd.Flags().GetString("data-file")

	var raw []byte
	switch {
	case data != "":
		raw = []byte(data)
	case file != "":
		var err error
		if raw, err = readInput(cmd, file); err != nil {
			return nil, err
		}
	default:
		return nil, nil
	}

	if err := postup.ValidJSON(raw); err != nil {
		return nil, fmt.Errorf("invalid request body: %w", err)
	}
	var body postup.Body
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, fmt.Errorf("request body must be a JSON object: %w", err)
	}
	return body, nil
}

func init() {
	requestCmd.Flags().String("data", "", "JSON request body")
	requestCmd.Flags().String("data-file", "", "file holding the JSON request body, - for stdin")
	requestCmd.MarkFlagsMutuallyExclusive("data", "data-file")

	rootCmd.AddCommand(requestCmd)
}
