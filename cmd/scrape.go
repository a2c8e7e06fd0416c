package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/leadfilter-cli/internal/model"
	"github.com/sells-group/leadfilter-cli/pkg/apify"
)

var (
	scrapeSearch    []string
	scrapeLocation  string
	scrapeMaxPlaces int
	scrapeOutput    string
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Scrape Google Maps leads via the Apify crawler actor",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("scrape"); err != nil {
			return err
		}

		client := apify.NewClient(cfg.Apify.Token, apify.WithBaseURL(cfg.Apify.BaseURL))

		run, err := client.StartRun(ctx, cfg.Apify.ActorID, apify.GMapsInput{
			SearchStringsArray:        scrapeSearch,
			LocationQuery:             scrapeLocation,
			MaxCrawledPlacesPerSearch: scrapeMaxPlaces,
			Language:                  "en",
		})
		if err != nil {
			return err
		}
		zap.L().Info("scrape started",
			zap.String("run_id", run.ID),
			zap.Strings("searches", scrapeSearch),
		)

		run, err = client.WaitForRun(ctx, run.ID)
		if err != nil {
			return err
		}

		places, err := client.DatasetItems(ctx, run.DefaultDatasetID)
		if err != nil {
			return err
		}

		leads := make([]model.Lead, 0, len(places))
		for _, p := range places {
			leads = append(leads, model.Lead{
				Name:     p.Title,
				Category: p.CategoryName,
				Address:  p.Address,
				Phone:    p.Phone,
				Website:  p.Website,
				City:     p.City,
				State:    p.State,
				Rating:   p.TotalScore,
				Reviews:  p.ReviewsCount,
			})
		}

		data, err := json.MarshalIndent(leads, "", "  ")
		if err != nil {
			return eris.Wrap(err, "marshal leads")
		}
		if err := os.WriteFile(scrapeOutput, data, 0644); err != nil {
			return eris.Wrapf(err, "write leads %s", scrapeOutput)
		}

		zap.L().Info("scrape complete",
			zap.Int("leads", len(leads)),
			zap.String("output", scrapeOutput),
		)
		return nil
	},
}

func init() {
	scrapeCmd.Flags().StringSliceVar(&scrapeSearch, "search", nil, "search strings, e.g. 'pool builders McKinney TX' (required)")
	scrapeCmd.Flags().StringVar(&scrapeLocation, "location", "", "location query to scope searches")
	scrapeCmd.Flags().IntVar(&scrapeMaxPlaces, "max-places", 200, "max places per search string")
	scrapeCmd.Flags().StringVar(&scrapeOutput, "output", "leads.json", "output JSON file")
	_ = scrapeCmd.MarkFlagRequired("search")
	rootCmd.AddCommand(scrapeCmd)
}
