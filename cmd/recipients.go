package cmd

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/spf13/cobra"

	"github.com/s0up4200/postup/postup"
)

var recipientsCmd = &cobra.Command{
	Use:   "recipients",
	Short: "Work with recipients, their privacy data and engagement",
}

var recipientsGetCmd = &cobra.Command{
	Use:   "get <recipientId>...",
	Short: "Show one or more recipients",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ids, err := parseIDs("recipient id", args)
		if err != nil {
			return err
		}

		if len(ids) == 1 {
			recipient, err := client.Recipients.Get(cmd.Context(), ids[0])
			if err != nil {
				return err
			}
			return render(cmd, recipient)
		}

		concurrency, _ := cmd.Flags().GetInt("concurrency")
		found, err := client.Recipients.GetMany(cmd.Context(), ids, concurrency)
		if err != nil {
			return err
		}
		recipients := make([]*postup.Recipient, 0, len(found))
		for _, id := range slices.Sorted(maps.Keys(found)) {
			recipients = append(recipients, found[id])
		}
		return render(cmd, recipients)
	},
}

var recipientsFindCmd = &cobra.Command{
	Use:         "find",
	Short:       "Find recipients by --email or --external-id",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{listing: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("email")
		externalID, _ := cmd.Flags().GetString("external-id")

		var (
			recipients []postup.Recipient
			err        error
		)
		switch {
		case email != "":
			recipients, err = client.Recipients.GetByEmail(cmd.Context(), email)
		case externalID != "":
			recipients, err = client.Recipients.GetByExternalID(cmd.Context(), externalID)
		default:
			return errors.New("one of --email or --external-id is required")
		}
		if err != nil {
			return err
		}
		return render(cmd, recipients)
	},
}

var recipientsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a recipient",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		recipient, err := recipientFromFlags(cmd)
		if err != nil {
			return err
		}
		created, err := client.Recipients.Create(cmd.Context(), recipient)
		if err != nil {
			return err
		}
		logger.Info().Int64("recipient_id", created.RecipientID).Msg("Recipient created")
		return render(cmd, created)
	},
}

var recipientsUpdateCmd = &cobra.Command{
	Use:   "update <recipientId>",
	Short: "Update the given fields of a recipient",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID("recipient id", args[0])
		if err != nil {
			return err
		}
		recipient, err := recipientFromFlags(cmd)
		if err != nil {
			return err
		}
		updated, err := client.Recipients.Update(cmd.Context(), id, recipient)
		if err != nil {
			return err
		}
		return render(cmd, updated)
	},
}

func recipientFromFlags(cmd *cobra.Command) (postup.Recipient, error) {
	flags := cmd.Flags()
	address, _ := flags.GetString("address")
	externalID, _ := flags.GetString("external-id")
	channel, _ := flags.GetString("channel")
	status, _ := flags.GetString("status")
	source, _ := flags.GetString("source")
	demographics, _ := flags.GetStringSlice("demographic")

	signup, err := parseTimeFlag(cmd, "signup-date")
	if err != nil {
		return postup.Recipient{}, err
	}

	recipient := postup.Recipient{
		Address:           address,
		ExternalID:        externalID,
		Channel:           postup.Channel(channel),
		Status:            postup.RecipientStatus(status),
		SourceDescription: source,
	}
	if len(demographics) > 0 {
		recipient.Demographics = postup.DemographicsToObject(demographics)
	}
	if !signup.IsZero() {
		recipient.ThirdPartySignupDate = &signup
	}
	if flags.Changed("resubscribe") {
		resubscribe, _ := flags.GetBool("resubscribe")
		recipient.Resubscribe = &resubscribe
	}
	return recipient, nil
}

var recipientsSubscriptionsCmd = &cobra.Command{
	Use:         "subscriptions <recipientId>",
	Short:       "List the list subscriptions of a recipient",
	Args:        cobra.ExactArgs(1),
	Annotations: map[string]string{listing: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID("recipient id", args[0])
		if err != nil {
			return err
		}
		subscriptions, err := client.ListSubscriptions.ForRecipient(cmd.Context(), id)
		if err != nil {
			return err
		}
		return render(cmd, subscriptions)
	},
}

var recipientsPrivacyCmd = &cobra.Command{
	Use:   "privacy",
	Short: "Inspect or delete the personal data of a recipient",
}

var recipientsPrivacyGetCmd = &cobra.Command{
	Use:   "get [recipientId]",
	Short: "Show personal data by recipient id or --email",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("email")

		var (
			data postup.Object
			err  error
		)
		switch {
		case len(args) == 1:
			id, perr := parseID("recipient id", args[0])
			if perr != nil {
				return perr
			}
			data, err = client.RecipientPrivacy.Get(cmd.Context(), id)
		case email != "":
			data, err = client.RecipientPrivacy.GetByEmail(cmd.Context(), email)
		default:
			return errors.New("a recipient id or --email is required")
		}
		if err != nil {
			return err
		}
		return render(cmd, data)
	},
}

var recipientsPrivacyDeleteCmd = &cobra.Command{
	Use:   "delete <address>",
	Short: "Delete the personal data of an address within --scope",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		scope, _ := cmd.Flags().GetString("scope")
		result, err := client.RecipientPrivacy.Delete(cmd.Context(), args[0], postup.PrivacyScope(scope))
		if err != nil {
			return err
		}
		logger.Info().Str("address", args[0]).Str("scope", scope).Msg("Privacy data deleted")
		return render(cmd, result)
	},
}

var recipientsEngagementCmd = &cobra.Command{
	Use:         "engagement",
	Short:       "Report engagement events for a --date or a --start/--end range",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{listing: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		engagementType, _ := cmd.Flags().GetString("type")
		date, err := parseTimeFlag(cmd, "date")
		if err != nil {
			return err
		}
		start, err := parseTimeFlag(cmd, "start")
		if err != nil {
			return err
		}
		end, err := parseTimeFlag(cmd, "end")
		if err != nil {
			return err
		}

		var events []postup.Object
		switch {
		case !date.IsZero():
			events, err = client.RecipientEngagement.GetByDate(cmd.Context(), postup.EngagementType(engagementType), date)
		case !start.IsZero() || !end.IsZero():
			events, err = client.RecipientEngagement.GetByRange(cmd.Context(), postup.EngagementRange{
				Type:  postup.EngagementType(engagementType),
				Start: start,
				End:   end,
			})
		default:
			return errors.New("either --date or --start and --end are required")
		}
		if err != nil {
			return err
		}
		return render(cmd, events)
	},
}

func init() {
	recipientsGetCmd.Flags().Int("concurrency", 0, "parallel lookups when several ids are given")

	recipientsFindCmd.Flags().String("email", "", "email address")
	recipientsFindCmd.Flags().String("external-id", "", "external id")
	recipientsFindCmd.MarkFlagsMutuallyExclusive("email", "external-id")

	for _, c := range []*cobra.Command{recipientsCreateCmd, recipientsUpdateCmd} {
		c.Flags().String("address", "", "email address or phone number")
		c.Flags().String("external-id", "", "external id")
		c.Flags().String("status", "", "status (N, U or H)")
		c.Flags().String("source", "", "source description")
		c.Flags().String("signup-date", "", "third party signup date")
		c.Flags().StringSlice("demographic", nil, "demographic as key=value, repeatable")
		c.Flags().Bool("resubscribe", false, "resubscribe an unsubscribed recipient")
	}
	recipientsCreateCmd.Flags().String("channel", string(postup.ChannelEmail), "channel (E, S or P)")
	recipientsUpdateCmd.Flags().String("channel", "", "channel (E, S or P)")
	_ = recipientsCreateCmd.MarkFlagRequired("address")
	_ = recipientsCreateCmd.MarkFlagRequired("external-id")

	recipientsPrivacyGetCmd.Flags().String("email", "", "email address")
	recipientsPrivacyDeleteCmd.Flags().String("scope", string(postup.ScopeAll), fmt.Sprintf("data to delete, one of %v", postup.PrivacyScopes))
	recipientsPrivacyCmd.AddCommand(recipientsPrivacyGetCmd, recipientsPrivacyDeleteCmd)

	recipientsEngagementCmd.Flags().String("type", string(postup.EngagementOpens), fmt.Sprintf("event type, one of %v", postup.EngagementTypes))
	recipientsEngagementCmd.Flags().String("date", "", "single day")
	recipientsEngagementCmd.Flags().String("start", "", "range start")
	recipientsEngagementCmd.Flags().String("end", "", "range end")
	recipientsEngagementCmd.MarkFlagsMutuallyExclusive("date", "start")

	recipientsCmd.AddCommand(
		recipientsGetCmd, recipientsFindCmd, recipientsCreateCmd, recipientsUpdateCmd,
		recipientsSubscriptionsCmd, recipientsPrivacyCmd, recipientsEngagementCmd,
	)
	rootCmd.AddCommand(recipientsCmd)
}
