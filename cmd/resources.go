package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/s0up4200/postup/postup"
)

var brandsCmd = &cobra.Command{
	Use:   "brands",
	Short: "Work with brands",
}

var brandsListCmd = &cobra.Command{
	Use:         "list",
	Short:       "List all brands",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{listing: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		brands, err := client.Brands.List(cmd.Context())
		if err != nil {
			return err
		}
		return render(cmd, brands)
	},
}

var brandsGetCmd = &cobra.Command{
	Use:   "get <brandId>",
	Short: "Show a brand",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID("brand id", args[0])
		if err != nil {
			return err
		}
		brand, err := client.Brands.Get(cmd.Context(), id)
		if err != nil {
			return err
		}
		return render(cmd, brand)
	},
}

var campaignsCmd = &cobra.Command{
	Use:   "campaigns",
	Short: "Work with campaigns and their statistics",
}

var campaignsListCmd = &cobra.Command{
	Use:         "list",
	Short:       "List all campaigns",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{listing: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		campaigns, err := client.Campaigns.List(cmd.Context())
		if err != nil {
			return err
		}
		return render(cmd, campaigns)
	},
}

var campaignsGetCmd = &cobra.Command{
	Use:   "get <campaignId>",
	Short: "Show a campaign",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID("campaign id", args[0])
		if err != nil {
			return err
		}
		campaign, err := client.Campaigns.Get(cmd.Context(), id)
		if err != nil {
			return err
		}
		return render(cmd, campaign)
	},
}

var campaignsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a campaign",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		title, _ := cmd.Flags().GetString("title")
		externalID, _ := cmd.Flags().GetString("external-id")
		comment, _ := cmd.Flags().GetString("comment")

		campaign, err := client.Campaigns.Create(cmd.Context(), postup.CampaignRequest{
			Title:      title,
			ExternalID: externalID,
			Comment:    comment,
		})
		if err != nil {
			return err
		}
		logger.Info().Int64("campaign_id", campaign.CampaignID).Msg("Campaign created")
		return render(cmd, campaign)
	},
}

var campaignsStatsCmd = &cobra.Command{
	Use:   "stats <campaignId>",
	Short: "Show campaign statistics, optionally between --start and --end",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID("campaign id", args[0])
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

		var stats []postup.CampaignStatistic
		if start.IsZero() && end.IsZero() {
			stats, err = client.CampaignStatistics.Get(cmd.Context(), id)
		} else {
			stats, err = client.CampaignStatistics.GetByDate(cmd.Context(), id, start, end)
		}
		if err != nil {
			return err
		}
		return render(cmd, stats)
	},
}

var campaignsLinksCmd = &cobra.Command{
	Use:         "links <mailingId>",
	Short:       "Show link statistics of a mailing",
	Args:        cobra.ExactArgs(1),
	Annotations: map[string]string{listing: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID("mailing id", args[0])
		if err != nil {
			return err
		}
		stats, err := client.LinkStatistics.GetByMailing(cmd.Context(), id)
		if err != nil {
			return err
		}
		return render(cmd, stats)
	},
}

var customFieldsCmd = &cobra.Command{
	Use:   "customfields",
	Short: "Work with custom fields",
}

var customFieldsListCmd = &cobra.Command{
	Use:         "list",
	Short:       "List all custom fields",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{listing: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		fields, err := client.CustomFields.List(cmd.Context())
		if err != nil {
			return err
		}
		return render(cmd, fields)
	},
}

var customFieldsGetCmd = &cobra.Command{
	Use:   "get <customFieldId>",
	Short: "Show a custom field",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID("custom field id", args[0])
		if err != nil {
			return err
		}
		field, err := client.CustomFields.Get(cmd.Context(), id)
		if err != nil {
			return err
		}
		return render(cmd, field)
	},
}

var customFieldsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a custom field",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		title, _ := cmd.Flags().GetString("title")
		fieldType, _ := cmd.Flags().GetString("type")
		active, _ := cmd.Flags().GetBool("active")

		field, err := client.CustomFields.Create(cmd.Context(), postup.CustomFieldRequest{
			Title:  title,
			Active: active,
			Type:   postup.CustomFieldType(fieldType),
		})
		if err != nil {
			return err
		}
		return render(cmd, field)
	},
}

var customFieldsUpdateCmd = &cobra.Command{
	Use:   "update <customFieldId>",
	Short: "Update a custom field",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID("custom field id", args[0])
		if err != nil {
			return err
		}
		title, _ := cmd.Flags().GetString("title")
		fieldType, _ := cmd.Flags().GetString("type")
		active, _ := cmd.Flags().GetBool("active")

		field, err := client.CustomFields.Update(cmd.Context(), id, postup.CustomFieldRequest{
			Title:  title,
			Active: active,
			Type:   postup.CustomFieldType(fieldType),
		})
		if err != nil {
			return err
		}
		return render(cmd, field)
	},
}

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "Work with send templates",
}

var templatesListCmd = &cobra.Command{
	Use:         "list",
	Short:       "List send templates, optionally of one --channel",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{listing: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		channel, _ := cmd.Flags().GetString("channel")
		limit, _ := cmd.Flags().GetInt("limit")

		var (
			templates []postup.SendTemplate
			err       error
		)
		if channel != "" {
			templates, err = client.SendTemplates.ListByChannel(cmd.Context(), postup.Channel(channel))
		} else {
			templates, err = client.SendTemplates.List(cmd.Context(), limit)
		}
		if err != nil {
			return err
		}
		return render(cmd, templates)
	},
}

var templatesGetCmd = &cobra.Command{
	Use:   "get <sendTemplateId>",
	Short: "Show a send template",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID("send template id", args[0])
		if err != nil {
			return err
		}
		template, err := client.SendTemplates.Get(cmd.Context(), id)
		if err != nil {
			return err
		}
		return render(cmd, template)
	},
}

var templatesCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a send template from a JSON --file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		file, _ := cmd.Flags().GetString("file")
		var template postup.SendTemplate
		if err := decodeInput(cmd, file, &template); err != nil {
			return err
		}
		created, err := client.SendTemplates.Create(cmd.Context(), template)
		if err != nil {
			return err
		}
		return render(cmd, created)
	},
}

var templatesUpdateCmd = &cobra.Command{
	Use:   "update <sendTemplateId>",
	Short: "Update a send template from a JSON --file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID("send template id", args[0])
		if err != nil {
			return err
		}
		file, _ := cmd.Flags().GetString("file")
		var template postup.SendTemplate
		if err := decodeInput(cmd, file, &template); err != nil {
			return err
		}
		updated, err := client.SendTemplates.Update(cmd.Context(), id, template)
		if err != nil {
			return err
		}
		return render(cmd, updated)
	},
}

var siteCmd = &cobra.Command{
	Use:   "site",
	Short: "Show the health of the PostUp site",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		title, _ := cmd.Flags().GetString("title")
		status, _ := cmd.Flags().GetString("status")
		version, _ := cmd.Flags().GetString("version")

		result, err := client.Site.Status(cmd.Context(), postup.SiteStatusQuery{
			Title:   title,
			Status:  status,
			Version: version,
		})
		if err != nil {
			return err
		}
		return render(cmd, result)
	},
}

func init() {
	brandsCmd.AddCommand(brandsListCmd, brandsGetCmd)

	campaignsCreateCmd.Flags().String("title", "", "campaign title")
	campaignsCreateCmd.Flags().String("external-id", "", "external id")
	campaignsCreateCmd.Flags().String("comment", "", "comment")
	_ = campaignsCreateCmd.MarkFlagRequired("title")
	campaignsStatsCmd.Flags().String("start", "", "start date, e.g. 2024-01-01")
	campaignsStatsCmd.Flags().String("end", "", "end date, e.g. 2024-02-01")
	campaignsStatsCmd.MarkFlagsRequiredTogether("start", "end")
	campaignsCmd.AddCommand(campaignsListCmd, campaignsGetCmd, campaignsCreateCmd, campaignsStatsCmd, campaignsLinksCmd)

	for _, c := range []*cobra.Command{customFieldsCreateCmd, customFieldsUpdateCmd} {
		c.Flags().String("title", "", "custom field title")
		c.Flags().String("type", "", fmt.Sprintf("field type, one of %v", postup.CustomFieldTypes))
		c.Flags().Bool("active", true, "whether the field is active")
	}
	_ = customFieldsCreateCmd.MarkFlagRequired("title")
	customFieldsCmd.AddCommand(customFieldsListCmd, customFieldsGetCmd, customFieldsCreateCmd, customFieldsUpdateCmd)

	templatesListCmd.Flags().String("channel", "", "only templates of this channel (E, S or P)")
	templatesListCmd.Flags().Int("limit", 0, "maximum number of templates")
	for _, c := range []*cobra.Command{templatesCreateCmd, templatesUpdateCmd} {
		c.Flags().String("file", "-", "JSON send template, - for stdin")
	}
	templatesCmd.AddCommand(templatesListCmd, templatesGetCmd, templatesCreateCmd, templatesUpdateCmd)

	siteCmd.Flags().String("title", "", "site title")
	siteCmd.Flags().String("status", "", "site status")
	siteCmd.Flags().String("version", "", "site version")

	rootCmd.AddCommand(brandsCmd, campaignsCmd, customFieldsCmd, templatesCmd, siteCmd)
}
