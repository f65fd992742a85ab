package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jamilahmedansari/app-talk-to-my-lawyer/pkg/client"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const configDirName = ".lawyer"

var (
	cfgFile      string
	outputFormat string
	serverURL    string
	apiClient    *client.Client
)

var rootCmd = &cobra.Command{
	Use:   "lawyer",
	Short: "Talk-To-My-Lawyer CLI",
	Long: `lawyer gives command-line access to the Talk-To-My-Lawyer platform:
buy letter packages, redeem referral codes, generate legal letters and
documents, and run the admin console.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if skipsClient(cmd) {
			return nil
		}
		if requiresNoAuth(cmd) {
			return initClient()
		}
		return initAuthenticatedClient()
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default $HOME/.lawyer/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "table", "output format: table, json, yaml")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "server URL (overrides config)")

	_ = viper.BindPFlag("output", rootCmd.PersistentFlags().Lookup("output"))
	_ = viper.BindPFlag("server_url", rootCmd.PersistentFlags().Lookup("server"))

	rootCmd.AddCommand(newAuthCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newStatusCmd())
	rootCmd.AddCommand(newCouponCmd())
	rootCmd.AddCommand(newReferralCmd())
	rootCmd.AddCommand(newSubscriptionCmd())
	rootCmd.AddCommand(newLettersCmd())
	rootCmd.AddCommand(newDocumentsCmd())
	rootCmd.AddCommand(newAdminCmd())
}

// skipsClient reports whether cmd only touches local configuration.
func skipsClient(cmd *cobra.Command) bool {
	return cmd.Parent() != nil && cmd.Parent().Name() == "config"
}

// requiresNoAuth lists the commands that hit public endpoints.
func requiresNoAuth(cmd *cobra.Command) bool {
	switch cmd.CommandPath() {
	case "lawyer auth login", "lawyer auth register", "lawyer auth logout",
		"lawyer coupon validate", "lawyer subscription packages",
		"lawyer documents types", "lawyer status":
		return true
	}
	return false
}

func configDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, configDirName), nil
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		dir, err := configDir()
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			return
		}
		_ = os.MkdirAll(dir, 0700)
		viper.AddConfigPath(dir)
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("LAWYER")
	viper.AutomaticEnv()

	viper.SetDefault("server_url", "http://localhost:8080")
	viper.SetDefault("output", "table")

	_ = viper.ReadInConfig()
}

func initClient() error {
	url := viper.GetString("server_url")
	if serverURL != "" {
		url = serverURL
	}

	apiClient = client.NewClient(client.Config{
		BaseURL: url,
	})
	if token := viper.GetString("auth.token"); token != "" {
		apiClient.SetToken(token)
	}
	return nil
}

func initAuthenticatedClient() error {
	if err := initClient(); err != nil {
		return err
	}
	if apiClient.GetToken() == "" {
		return fmt.Errorf("not authenticated. Run 'lawyer auth login' first")
	}
	return nil
}

func getOutputFormat() string {
	if outputFormat != "" && outputFormat != "table" {
		return outputFormat
	}
	return viper.GetString("output")
}
