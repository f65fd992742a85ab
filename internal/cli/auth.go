package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/jamilahmedansari/app-talk-to-my-lawyer/pkg/client"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
)

func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authentication commands",
	}

	cmd.AddCommand(newAuthLoginCmd())
	cmd.AddCommand(newAuthRegisterCmd())
	cmd.AddCommand(newAuthLogoutCmd())
	cmd.AddCommand(newAuthWhoamiCmd())

	return cmd
}

func newAuthLoginCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Login with email and password",
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" {
				email = promptInput("Email: ")
			}
			if password == "" {
				password = promptPassword("Password: ")
			}

			resp, err := apiClient.Login(context.Background(), email, password)
			if err != nil {
				return fmt.Errorf("login failed: %w", err)
			}
			if err := saveCredentials(resp, email); err != nil {
				return err
			}

			name := email
			if resp.User != nil && resp.User.Name != "" {
				name = resp.User.Name
			}
			fmt.Printf("Logged in as %s\n", name)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&password, "password", "", "password")

	return cmd
}

func newAuthRegisterCmd() *cobra.Command {
	var email, password, name, role, coupon, adminSecret string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register a new account",
		Long: `Register a new account. Contractors receive a referral code; users may
pass --coupon to redeem a contractor's code for a 20% discount.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" {
				email = promptInput("Email: ")
			}
			if name == "" {
				name = promptInput("Full name: ")
			}
			if password == "" {
				password = promptPassword("Password: ")
				confirm := promptPassword("Confirm password: ")
				if password != confirm {
					return fmt.Errorf("passwords do not match")
				}
			}

			req := client.RegisterRequest{
				Email:    email,
				Password: password,
				Name:     name,
				Role:     role,
			}
			if role == "admin" {
				if adminSecret == "" {
					adminSecret = promptPassword("Admin signup secret: ")
				}
				req.SecretKey = adminSecret
			}

			ctx := context.Background()
			var (
				resp *client.AuthResponse
				err  error
			)
			if coupon != "" {
				req.CouponCode = coupon
				resp, err = apiClient.RegisterWithCoupon(ctx, req)
			} else {
				resp, err = apiClient.Register(ctx, req)
			}
			if err != nil {
				return fmt.Errorf("registration failed: %w", err)
			}
			if err := saveCredentials(resp, email); err != nil {
				return err
			}

			fmt.Printf("Account created. Logged in as %s\n", email)
			if resp.ReferralCode != "" {
				fmt.Printf("Your referral code: %s\n", resp.ReferralCode)
			}
			if resp.Discount > 0 {
				fmt.Printf("Discount on your next package: %d%%\n", resp.Discount)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&password, "password", "", "password")
	cmd.Flags().StringVar(&name, "name", "", "full name")
	cmd.Flags().StringVar(&role, "role", "", "account role: user, contractor or admin")
	cmd.Flags().StringVar(&coupon, "coupon", "", "referral code to redeem")
	cmd.Flags().StringVar(&adminSecret, "admin-secret", "", "signup secret required for the admin role")

	return cmd
}

func newAuthLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear stored credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			if apiClient.GetToken() != "" {
				// Best effort; the server only clears its cookies.
				_ = apiClient.Logout(context.Background())
			}

			viper.Set("auth.token", "")
			viper.Set("auth.refresh_token", "")
			viper.Set("auth.email", "")

			if _, err := writeConfig(); err != nil {
				return fmt.Errorf("failed to clear credentials: %w", err)
			}

			fmt.Println("Logged out successfully")
			return nil
		},
	}
}

func newAuthWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show current account and subscription",
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := apiClient.Me(context.Background())
			if err != nil {
				return fmt.Errorf("failed to get user info: %w", err)
			}

			if getOutputFormat() != "table" {
				return printOutput(user)
			}

			fmt.Printf("Email:    %s\n", user.Email)
			if user.Name != "" {
				fmt.Printf("Name:     %s\n", user.Name)
			}
			fmt.Printf("Role:     %s\n", user.Role)
			fmt.Printf("ID:       %s\n", user.ID)
			if sub := user.Subscription; sub != nil {
				fmt.Printf("Plan:     %s\n", formatStatus(sub.Status))
				fmt.Printf("Letters:  %d remaining\n", sub.LettersRemaining)
				if sub.DiscountPercent > 0 {
					fmt.Printf("Discount: %d%%\n", sub.DiscountPercent)
				}
			}
			return nil
		},
	}
}

func saveCredentials(resp *client.AuthResponse, email string) error {
	viper.Set("auth.token", resp.AccessToken)
	if resp.RefreshToken != "" {
		viper.Set("auth.refresh_token", resp.RefreshToken)
	}
	if resp.User != nil {
		email = resp.User.Email
	}
	viper.Set("auth.email", email)

	if _, err := writeConfig(); err != nil {
		return fmt.Errorf("failed to save credentials: %w", err)
	}
	return nil
}

func promptInput(prompt string) string {
	fmt.Print(prompt)
	reader := bufio.NewReader(os.Stdin)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func promptPassword(prompt string) string {
	fmt.Print(prompt)
	password, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return ""
	}
	return string(password)
}
