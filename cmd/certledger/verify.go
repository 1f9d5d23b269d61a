package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/meigma/certledger"
	"github.com/meigma/certledger/internal/config"
)

func verifyCommand() *cobra.Command {
	var (
		imagePath string
		holder    string
	)

	cmd := &cobra.Command{
		Use:   "verify <certificate-id>",
		Short: "Verify a certificate",
		Long: `Verify a certificate by identifier. With --image, the image's
fingerprint is recomputed and compared against the ledger record: that
is the tamper check. With --holder, only the holder name is matched;
identity confirmation asserts nothing about content integrity.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := commonRun()
			id := args[0]

			if imagePath != "" && holder != "" {
				return fmt.Errorf("--image and --holder are mutually exclusive")
			}

			cfg, err := config.Load(configFile)
			if err != nil {
				return err
			}

			client, cleanup, err := buildClient(cfg, logger)
			if err != nil {
				return err
			}
			defer cleanup()

			ctx := context.Background()
			var outcome certledger.Outcome
			switch {
			case holder != "":
				outcome, err = client.VerifyHolder(ctx, holder, id)
			case imagePath != "":
				var payload []byte
				payload, err = os.ReadFile(imagePath)
				if err != nil {
					return fmt.Errorf("read image: %w", err)
				}
				outcome, err = client.Verify(ctx, id, payload)
			default:
				outcome, err = client.Verify(ctx, id, nil)
			}
			if err != nil {
				return err
			}

			return json.NewEncoder(os.Stdout).Encode(outcome)
		},
	}

	cmd.Flags().StringVar(&imagePath, "image", "", "path to the certificate image to check")
	cmd.Flags().StringVar(&holder, "holder", "", "holder name for identity confirmation")

	return cmd
}
