package cli

import (
	"context"
	"fmt"

	"github.com/jamilahmedansari/app-talk-to-my-lawyer/pkg/client"
	"github.com/spf13/cobra"
)

func newAdminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Admin console (admin accounts only)",
	}

	cmd.AddCommand(newAdminUsersCmd())
	cmd.AddCommand(newAdminLettersCmd())
	cmd.AddCommand(newAdminLogsCmd())
	cmd.AddCommand(newAdminActivateCmd())

	return cmd
}

func newAdminUsersCmd() *cobra.Command {
	var opts client.ListOptions

	cmd := &cobra.Command{
		Use:   "users",
		Short: "List accounts with their subscriptions",
		RunE: func(cmd *cobra.Command, args []string) error {
			page, err := apiClient.Admin().Users(context.Background(), &opts)
			if err != nil {
				return fmt.Errorf("failed to list users: %w", err)
			}
			if getOutputFormat() != "table" {
				return printOutput(page)
			}
			table := NewTable("ID", "EMAIL", "NAME", "ROLE", "PLAN", "LETTERS")
			for _, u := range page.Data {
				status, letters := "-", "-"
				if u.Subscription != nil {
					status = formatStatus(u.Subscription.Status)
					letters = fmt.Sprintf("%d", u.Subscription.LettersRemaining)
				}
				table.AddRow(u.ID, u.Email, truncate(u.Name, 24), u.Role, status, letters)
			}
			table.Render()
			fmt.Printf("\nPage %d of %d (%d total)\n", page.Page, page.TotalPages, page.TotalItems)
			return nil
		},
	}

	addPageFlags(cmd, &opts)
	return cmd
}

func newAdminLettersCmd() *cobra.Command {
	var (
		opts client.ListOptions
		kind string
	)

	cmd := &cobra.Command{
		Use:   "letters",
		Short: "List every generated letter and document",
		RunE: func(cmd *cobra.Command, args []string) error {
			page, err := apiClient.Admin().Letters(context.Background(), kind, &opts)
			if err != nil {
				return fmt.Errorf("failed to list letters: %w", err)
			}
			return printArtifactPage(page)
		},
	}

	cmd.Flags().StringVar(&kind, "kind", "", "filter by kind: letter or document")
	addPageFlags(cmd, &opts)
	return cmd
}

func newAdminLogsCmd() *cobra.Command {
	var (
		opts      client.ListOptions
		eventType string
	)

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show the audit log",
		RunE: func(cmd *cobra.Command, args []string) error {
			page, err := apiClient.Admin().Logs(context.Background(), eventType, &opts)
			if err != nil {
				return fmt.Errorf("failed to list audit log: %w", err)
			}
			if getOutputFormat() != "table" {
				return printOutput(page)
			}
			table := NewTable("TIME", "EVENT", "ACTION", "USER", "RESOURCE", "IP")
			for _, e := range page.Data {
				user := "-"
				if e.UserID != nil {
					user = *e.UserID
				}
				resource := e.ResourceType
				if e.ResourceID != "" {
					resource += "/" + e.ResourceID
				}
				table.AddRow(formatTime(e.CreatedAt), e.EventType, e.Action, user, resource, e.IPAddress)
			}
			table.Render()
			fmt.Printf("\nPage %d of %d (%d total)\n", page.Page, page.TotalPages, page.TotalItems)
			return nil
		},
	}

	cmd.Flags().StringVar(&eventType, "event-type", "", "filter by event type")
	addPageFlags(cmd, &opts)
	return cmd
}

func newAdminActivateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "activate <account-id> <package>",
		Short: "Grant a package to an account without checkout",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sub, err := apiClient.Admin().Activate(context.Background(), args[0], args[1])
			if err != nil {
				return fmt.Errorf("failed to activate subscription: %w", err)
			}
			if getOutputFormat() != "table" {
				return printOutput(sub)
			}
			fmt.Printf("Activated %s for %s: %d letters remaining\n", sub.PackageType, args[0], sub.LettersRemaining)
			return nil
		},
	}
}
