package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/meigma/certledger"
	"github.com/meigma/certledger/internal/config"
	"github.com/meigma/certledger/render"
)

func issueCommand() *cobra.Command {
	var (
		id        string
		holder    string
		course    string
		date      string
		imagePath string
	)

	cmd := &cobra.Command{
		Use:   "issue",
		Short: "Issue a certificate",
		Long: `Issue a certificate: fingerprint the image, upload it to the content
store, and commit the record to the ledger. With no --image, the
certificate is rendered server-side.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := commonRun()

			cfg, err := config.Load(configFile)
			if err != nil {
				return err
			}

			issueDate := time.Now().Unix()
			if date != "" {
				parsed, err := time.Parse("2006-01-02", date)
				if err != nil {
					return fmt.Errorf("parse --date: %w", err)
				}
				issueDate = parsed.Unix()
			}

			var payload []byte
			if imagePath != "" {
				payload, err = os.ReadFile(imagePath)
				if err != nil {
					return fmt.Errorf("read image: %w", err)
				}
			} else {
				payload, err = render.NewPNG().RenderWithQR(render.Certificate{
					HolderName: holder,
					CourseName: course,
					ID:         id,
					IssueDate:  issueDate,
				}, cfg.API.PublicURL+"/api/certificates/"+id)
				if err != nil {
					return fmt.Errorf("render certificate: %w", err)
				}
			}

			client, cleanup, err := buildClient(cfg, logger)
			if err != nil {
				return err
			}
			defer cleanup()

			record, err := client.Issue(context.Background(), certledger.IssueRequest{
				ID:         id,
				HolderName: holder,
				CourseName: course,
				IssueDate:  issueDate,
				Payload:    payload,
			})
			if err != nil {
				return err
			}

			return json.NewEncoder(os.Stdout).Encode(record)
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "certificate identifier")
	cmd.Flags().StringVar(&holder, "holder", "", "holder name")
	cmd.Flags().StringVar(&course, "course", "", "course name")
	cmd.Flags().StringVar(&date, "date", "", "issue date (YYYY-MM-DD, default today)")
	cmd.Flags().StringVar(&imagePath, "image", "", "path to a pre-rendered certificate image")
	cobra.CheckErr(cmd.MarkFlagRequired("id"))
	cobra.CheckErr(cmd.MarkFlagRequired("holder"))
	cobra.CheckErr(cmd.MarkFlagRequired("course"))

	return cmd
}
