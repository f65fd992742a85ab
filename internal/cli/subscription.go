package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newCouponCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "coupon",
		Short: "Referral coupon commands",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "validate <code>",
		Short: "Check a referral code without redeeming it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := apiClient.ValidateCoupon(context.Background(), args[0])
			if err != nil {
				return fmt.Errorf("failed to validate coupon: %w", err)
			}
			if getOutputFormat() != "table" {
				return printOutput(v)
			}
			fmt.Println(v.Message)
			return nil
		},
	})

	return cmd
}

func newReferralCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "referral",
		Short: "Contractor referral commands",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "stats",
		Short: "Show your referral code and signups",
		RunE: func(cmd *cobra.Command, args []string) error {
			stats, err := apiClient.ReferralStats(context.Background())
			if err != nil {
				return fmt.Errorf("failed to get referral stats: %w", err)
			}
			if getOutputFormat() != "table" {
				return printOutput(stats)
			}
			fmt.Printf("Code:      %s\n", stats.Code)
			fmt.Printf("Signups:   %d\n", stats.TotalSignups)
			fmt.Printf("Points:    %d\n", stats.Points)
			fmt.Printf("Discount:  %d%%\n", stats.DiscountPercent)
			return nil
		},
	})

	return cmd
}

func newSubscriptionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "subscription",
		Aliases: []string{"sub"},
		Short:   "Letter packages and quota",
	}

	cmd.AddCommand(newSubscriptionPackagesCmd())
	cmd.AddCommand(newSubscriptionCheckoutCmd())
	cmd.AddCommand(newSubscriptionStatusCmd())

	return cmd
}

func newSubscriptionPackagesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "packages",
		Short: "List purchasable packages",
		RunE: func(cmd *cobra.Command, args []string) error {
			pkgs, err := apiClient.Subscription().Packages(context.Background())
			if err != nil {
				return fmt.Errorf("failed to list packages: %w", err)
			}
			if getOutputFormat() != "table" {
				return printOutput(pkgs)
			}
			table := NewTable("PACKAGE", "NAME", "LETTERS", "PRICE")
			for _, p := range pkgs {
				table.AddRow(p.PackageType, p.Name, strconv.Itoa(p.Letters), formatCents(p.PriceCents, "usd"))
			}
			table.Render()
			return nil
		},
	}
}

func newSubscriptionCheckoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "checkout <package>",
		Short: "Open a checkout session for a package",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := apiClient.Subscription().CreateCheckout(context.Background(), args[0])
			if err != nil {
				return fmt.Errorf("failed to create checkout: %w", err)
			}
			if getOutputFormat() != "table" {
				return printOutput(sess)
			}
			fmt.Printf("Session:   %s\n", sess.SessionID)
			fmt.Printf("Amount:    %s", formatCents(sess.AmountCents, sess.Currency))
			if sess.DiscountPercent > 0 {
				fmt.Printf(" (%d%% off)", sess.DiscountPercent)
			}
			fmt.Println()
			fmt.Printf("Pay at:    %s\n", sess.URL)
			return nil
		},
	}
}

func newSubscriptionStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show your letter quota",
		RunE: func(cmd *cobra.Command, args []string) error {
			sub, err := apiClient.Subscription().Status(context.Background())
			if err != nil {
				return fmt.Errorf("failed to get subscription: %w", err)
			}
			if getOutputFormat() != "table" {
				return printOutput(sub)
			}
			fmt.Printf("Status:    %s\n", formatStatus(sub.Status))
			if sub.PackageType != "" {
				fmt.Printf("Package:   %s\n", sub.PackageType)
			}
			fmt.Printf("Letters:   %d remaining\n", sub.LettersRemaining)
			if sub.DiscountPercent > 0 {
				fmt.Printf("Discount:  %d%%\n", sub.DiscountPercent)
			}
			return nil
		},
	}
}
