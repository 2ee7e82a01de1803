package cmd

import (
	"github.com/spf13/cobra"

	"github.com/s0up4200/postup/postup"
)

var mailingsCmd = &cobra.Command{
	Use:   "mailings",
	Short: "Work with mailings",
}

var mailingsGetCmd = &cobra.Command{
	Use:   "get <mailingId>",
	Short: "Show a mailing",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID("mailing id", args[0])
		if err != nil {
			return err
		}
		mailing, err := client.Mailings.Get(cmd.Context(), id)
		if err != nil {
			return err
		}
		return render(cmd, mailing)
	},
}

var mailingsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a mailing from a JSON --file",
	Long: `Create a mailing from a JSON document such as

  {"title": "June news", "channel": "E", "brandId": 1, "listIds": [3],
   "content": {"subject": "Hello", "htmlBody": "<p>Hi</p>"},
   "scheduledTime": "2024-06-01T09:30:00Z"}`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		file, _ := cmd.Flags().GetString("file")
		var mailing postup.Mailing
		if err := decodeInput(cmd, file, &mailing); err != nil {
			return err
		}
		created, err := client.Mailings.Create(cmd.Context(), mailing)
		if err != nil {
			return err
		}
		logger.Info().Int64("mailing_id", created.MailingID).Msg("Mailing created")
		return render(cmd, created)
	},
}

var mailingsUpdateCmd = &cobra.Command{
	Use:   "update <mailingId>",
	Short: "Update a mailing from a JSON --file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID("mailing id", args[0])
		if err != nil {
			return err
		}
		file, _ := cmd.Flags().GetString("file")
		var mailing postup.Mailing
		if err := decodeInput(cmd, file, &mailing); err != nil {
			return err
		}
		mailing.MailingID = id
		updated, err := client.Mailings.Update(cmd.Context(), mailing)
		if err != nil {
			return err
		}
		return render(cmd, updated)
	},
}

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Send test or triggered mailings",
}

var sendTestCmd = &cobra.Command{
	Use:   "test <mailingId>",
	Short: "Send a test copy of a mailing to --address",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID("mailing id", args[0])
		if err != nil {
			return err
		}
		addresses, _ := cmd.Flags().GetStringSlice("address")
		part, _ := cmd.Flags().GetString("part")

		result, err := client.TestMailings.Send(cmd.Context(), postup.TestMailingRequest{
			MailingID: id,
			Addresses: addresses,
			Part:      postup.MailingPart(part),
		})
		if err != nil {
			return err
		}
		logger.Info().Int64("mailing_id", id).Strs("addresses", addresses).Msg("Test mailing sent")
		return render(cmd, result)
	},
}

var sendTriggeredCmd = &cobra.Command{
	Use:   "triggered <sendTemplateId>",
	Short: "Trigger a send template for each --address",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID("send template id", args[0])
		if err != nil {
			return err
		}
		addresses, _ := cmd.Flags().GetStringSlice("address")
		tags, _ := cmd.Flags().GetStringSlice("tag")

		recipients := make([]postup.TriggerRecipient, 0, len(addresses))
		for _, address := range addresses {
			recipients = append(recipients, postup.NewTriggerRecipient(address, postup.DemographicsToObject(tags), ""))
		}

		result, err := client.TriggeredMailings.Send(cmd.Context(), postup.TriggeredMailingRequest{
			SendTemplateID: id,
			Recipients:     recipients,
		})
		if err != nil {
			return err
		}
		logger.Info().Int64("send_template_id", id).Int("recipients", len(recipients)).Msg("Triggered mailing sent")
		return render(cmd, result)
	},
}

func init() {
	for _, c := range []*cobra.Command{mailingsCreateCmd, mailingsUpdateCmd} {
		c.Flags().String("file", "-", "JSON mailing, - for stdin")
	}
	mailingsCmd.AddCommand(mailingsGetCmd, mailingsCreateCmd, mailingsUpdateCmd)

	sendTestCmd.Flags().StringSlice("address", nil, "recipient address, repeatable")
	sendTestCmd.Flags().String("part", "", "only send one part (TEXT or HTML)")
	_ = sendTestCmd.MarkFlagRequired("address")

	sendTriggeredCmd.Flags().StringSlice("address", nil, "recipient address, repeatable")
	sendTriggeredCmd.Flags().StringSlice("tag", nil, "merge tag as key=value, repeatable")
	_ = sendTriggeredCmd.MarkFlagRequired("address")

	sendCmd.AddCommand(sendTestCmd, sendTriggeredCmd)
	rootCmd.AddCommand(mailingsCmd, sendCmd)
}
