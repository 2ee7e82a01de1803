package cmd

import (
	"github.com/spf13/cobra"

	"github.com/s0up4200/postup/postup"
)

var listsCmd = &cobra.Command{
	Use:   "lists",
	Short: "Work with lists and subscriptions",
}

var listsListCmd = &cobra.Command{
	Use:         "list",
	Short:       "List all lists, optionally of one --brand",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{listing: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		brandID, _ := cmd.Flags().GetInt64("brand")

		var (
			lists []postup.List
			err   error
		)
		if brandID > 0 {
			lists, err = client.Lists.ListByBrand(cmd.Context(), brandID)
		} else {
			lists, err = client.Lists.List(cmd.Context())
		}
		if err != nil {
			return err
		}
		return render(cmd, lists)
	},
}

var listsGetCmd = &cobra.Command{
	Use:   "get <listId>",
	Short: "Show a list",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID("list id", args[0])
		if err != nil {
			return err
		}
		list, err := client.Lists.Get(cmd.Context(), id)
		if err != nil {
			return err
		}
		return render(cmd, list)
	},
}

var listsCountsCmd = &cobra.Command{
	Use:   "counts <listId>",
	Short: "Show the subscriber counts of a list",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID("list id", args[0])
		if err != nil {
			return err
		}
		counts, err := client.Lists.Counts(cmd.Context(), id)
		if err != nil {
			return err
		}
		return render(cmd, counts)
	},
}

var listsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a list",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		list, err := listFromFlags(cmd)
		if err != nil {
			return err
		}
		created, err := client.Lists.Create(cmd.Context(), list)
		if err != nil {
			return err
		}
		logger.Info().Int64("list_id", created.ListID).Msg("List created")
		return render(cmd, created)
	},
}

var listsUpdateCmd = &cobra.Command{
	Use:   "update <listId>",
	Short: "Update a list",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID("list id", args[0])
		if err != nil {
			return err
		}
		list, err := listFromFlags(cmd)
		if err != nil {
			return err
		}
		list.ListID = id
		updated, err := client.Lists.Update(cmd.Context(), list)
		if err != nil {
			return err
		}
		return render(cmd, updated)
	},
}

func listFromFlags(cmd *cobra.Command) (postup.List, error) {
	flags := cmd.Flags()
	title, _ := flags.GetString("title")
	description, _ := flags.GetString("description")
	channel, _ := flags.GetString("channel")
	publicSignup, _ := flags.GetBool("public-signup")
	blockDomains, _ := flags.GetStringSlice("block-domain")
	brandArgs, _ := flags.GetStringSlice("brand-id")

	brandIDs, err := parseIDs("brand id", brandArgs)
	if err != nil {
		return postup.List{}, err
	}

	return postup.List{
		Title:        title,
		Description:  description,
		Channel:      postup.Channel(channel),
		PublicSignup: publicSignup,
		BlockDomains: blockDomains,
		BrandIDs:     brandIDs,
	}, nil
}

var listsSubscribersCmd = &cobra.Command{
	Use:         "subscribers <listId>",
	Short:       "Page through the subscribers of a list",
	Args:        cobra.ExactArgs(1),
	Annotations: map[string]string{listing: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID("list id", args[0])
		if err != nil {
			return err
		}
		limit, _ := cmd.Flags().GetInt("limit")
		lastRecip, _ := cmd.Flags().GetInt64("last-recipient")
		lastList, _ := cmd.Flags().GetInt64("last-list")

		subscribers, err := client.ListSubscriptions.Subscribers(cmd.Context(), postup.SubscriberQuery{
			ListID:      id,
			Limit:       limit,
			LastRecipID: lastRecip,
			LastListID:  lastList,
		})
		if err != nil {
			return err
		}
		return render(cmd, subscribers)
	},
}

var listsSubscribeCmd = &cobra.Command{
	Use:   "subscribe <listId> <recipientId>",
	Short: "Subscribe a recipient to a list",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ids, err := parseIDs("id", args)
		if err != nil {
			return err
		}
		status, _ := cmd.Flags().GetString("status")
		sourceID, _ := cmd.Flags().GetString("source")

		subscription, err := client.ListSubscriptions.Subscribe(cmd.Context(), postup.SubscribeRequest{
			ListID:      ids[0],
			RecipientID: ids[1],
			Status:      postup.SubscriptionStatus(status),
			SourceID:    sourceID,
		})
		if err != nil {
			return err
		}
		return render(cmd, subscription)
	},
}

var listsUnsubscribeCmd = &cobra.Command{
	Use:   "unsubscribe <listId> <recipientId>",
	Short: "Unsubscribe a recipient from a list",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ids, err := parseIDs("id", args)
		if err != nil {
			return err
		}
		mailingID, _ := cmd.Flags().GetString("mailing")

		subscription, err := client.ListSubscriptions.Unsubscribe(cmd.Context(), postup.UnsubscribeRequest{
			ListID:      ids[0],
			RecipientID: ids[1],
			Status:      postup.SubscriptionUnsub,
			MailingID:   mailingID,
		})
		if err != nil {
			return err
		}
		return render(cmd, subscription)
	},
}

var listsSubscriptionCmd = &cobra.Command{
	Use:   "subscription <listId> <recipientId>",
	Short: "Show whether a recipient is subscribed to a list",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ids, err := parseIDs("id", args)
		if err != nil {
			return err
		}
		subscription, err := client.ListSubscriptions.IsSubscribed(cmd.Context(), ids[1], ids[0])
		if err != nil {
			return err
		}
		return render(cmd, subscription)
	},
}

func init() {
	listsListCmd.Flags().Int64("brand", 0, "only lists of this brand")

	for _, c := range []*cobra.Command{listsCreateCmd, listsUpdateCmd} {
		c.Flags().String("title", "", "list title")
		c.Flags().String("description", "", "list description")
		c.Flags().String("channel", string(postup.ChannelEmail), "channel (E, S or P)")
		c.Flags().Bool("public-signup", false, "allow public signup")
		c.Flags().StringSlice("block-domain", nil, "blocked domain, repeatable")
		c.Flags().StringSlice("brand-id", nil, "brand id, repeatable")
	}
	_ = listsCreateCmd.MarkFlagRequired("title")

	listsSubscribersCmd.Flags().Int("limit", 0, "page size")
	listsSubscribersCmd.Flags().Int64("last-recipient", 0, "last recipient id of the previous page")
	listsSubscribersCmd.Flags().Int64("last-list", 0, "last list id of the previous page")

	listsSubscribeCmd.Flags().String("status", string(postup.SubscriptionNormal), "subscription status (NORMAL or UNSUB)")
	listsSubscribeCmd.Flags().String("source", "", "source id")
	listsUnsubscribeCmd.Flags().String("mailing", "", "mailing that caused the unsubscribe")

	listsCmd.AddCommand(
		listsListCmd, listsGetCmd, listsCountsCmd, listsCreateCmd, listsUpdateCmd,
		listsSubscribersCmd, listsSubscribeCmd, listsUnsubscribeCmd, listsSubscriptionCmd,
	)
	rootCmd.AddCommand(listsCmd)
}
