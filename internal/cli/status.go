package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/jamilahmedansari/app-talk-to-my-lawyer/pkg/client"
	"github.com/spf13/cobra"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show server health and, when logged in, your quota",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			summary := map[string]interface{}{
				"server": apiClient.BaseURL(),
			}

			health, healthErr := apiClient.Health(ctx)
			if healthErr == nil {
				summary["health"] = health
			}

			loggedIn := apiClient.GetToken() != ""
			var (
				sub      *client.Subscription
				quotaErr error
			)
			if loggedIn {
				sub, quotaErr = apiClient.Subscription().Status(ctx)
				if quotaErr == nil {
					summary["subscription"] = sub
				}
			}

			if getOutputFormat() != "table" {
				return printOutput(summary)
			}

			fmt.Println("Talk-To-My-Lawyer")
			fmt.Println(strings.Repeat("=", 40))
			fmt.Printf("  Server:        %s\n", apiClient.BaseURL())

			if healthErr != nil {
				fmt.Printf("  Health:        (error: %v)\n", healthErr)
			} else {
				fmt.Printf("  Health:        %s\n", formatStatus(health.Status))
				if health.Database != "" {
					fmt.Printf("  Database:      %s\n", health.Database)
				}
				if health.Generator != "" {
					fmt.Printf("  Generator:     %s\n", health.Generator)
				}
			}

			switch {
			case !loggedIn:
				fmt.Println("  Account:       not logged in")
			case quotaErr != nil:
				fmt.Printf("  Subscription:  (error: %v)\n", quotaErr)
			default:
				fmt.Printf("  Subscription:  %s\n", formatStatus(sub.Status))
				if sub.PackageType != "" {
					fmt.Printf("  Package:       %s\n", sub.PackageType)
				}
				fmt.Printf("  Letters:       %d remaining\n", sub.LettersRemaining)
			}
			return nil
		},
	}
}
