package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/jamilahmedansari/app-talk-to-my-lawyer/pkg/client"
	"github.com/spf13/cobra"
)

func newLettersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "letters",
		Aliases: []string{"letter"},
		Short:   "Generate and browse letters",
	}

	cmd.AddCommand(newLettersGenerateCmd())
	cmd.AddCommand(newLettersListCmd())
	cmd.AddCommand(newLettersGetCmd())
	cmd.AddCommand(newLettersPDFCmd())
	cmd.AddCommand(newLettersSendCmd())

	return cmd
}

func newLettersGenerateCmd() *cobra.Command {
	var (
		req      client.GenerateLetterRequest
		formJSON string
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a letter (uses one letter of quota)",
		RunE: func(cmd *cobra.Command, args []string) error {
			form, err := parseFormData(formJSON)
			if err != nil {
				return err
			}
			req.FormData = form

			a, err := apiClient.Letters().Generate(context.Background(), req)
			if err != nil {
				return fmt.Errorf("failed to generate letter: %w", subscriptionHint(err))
			}
			return printArtifact(a)
		},
	}

	cmd.Flags().StringVar(&req.Title, "title", "", "letter title")
	cmd.Flags().StringVar(&req.Prompt, "prompt", "", "free-form instructions")
	cmd.Flags().StringVar(&req.LetterType, "type", "", "letter type, e.g. demand")
	cmd.Flags().StringVar(&req.UrgencyLevel, "urgency", "", "standard, urgent or rush")
	cmd.Flags().StringVar(&formJSON, "form", "", "form data as a JSON object")
	_ = cmd.MarkFlagRequired("title")

	return cmd
}

func newLettersListCmd() *cobra.Command {
	var opts client.ListOptions

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List your letters",
		RunE: func(cmd *cobra.Command, args []string) error {
			page, err := apiClient.Letters().List(context.Background(), &opts)
			if err != nil {
				return fmt.Errorf("failed to list letters: %w", err)
			}
			return printArtifactPage(page)
		},
	}

	addPageFlags(cmd, &opts)
	return cmd
}

func newLettersGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show a letter or document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := apiClient.Letters().Get(context.Background(), args[0])
			if err != nil {
				return fmt.Errorf("failed to get letter: %w", err)
			}
			return printArtifact(a)
		},
	}
}

func newLettersPDFCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "pdf <id>",
		Short: "Download a letter as PDF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := apiClient.Letters().PDF(context.Background(), args[0])
			if err != nil {
				return fmt.Errorf("failed to download PDF: %w", err)
			}
			if output == "" {
				output = fmt.Sprintf("letter-%s.pdf", args[0])
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", output, err)
			}
			fmt.Printf("Saved %s (%d bytes)\n", output, len(data))
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "out", "O", "", "file to write (default letter-<id>.pdf)")
	return cmd
}

func newLettersSendCmd() *cobra.Command {
	var req client.SendEmailRequest

	cmd := &cobra.Command{
		Use:   "send <id>",
		Short: "Email a completed letter to an attorney",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			receipt, err := apiClient.Letters().SendEmail(context.Background(), args[0], req)
			if err != nil {
				return fmt.Errorf("failed to send letter: %w", err)
			}
			if getOutputFormat() != "table" {
				return printOutput(receipt)
			}
			fmt.Printf("Letter %s sent to %s\n", receipt.LetterID, receipt.SentTo)
			return nil
		},
	}

	cmd.Flags().StringVar(&req.AttorneyEmail, "to", "", "attorney email address")
	cmd.Flags().StringVar(&req.AttorneyName, "name", "", "attorney name")
	_ = cmd.MarkFlagRequired("to")

	return cmd
}

func newDocumentsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "documents",
		Aliases: []string{"docs"},
		Short:   "Generate catalogue documents",
	}

	cmd.AddCommand(newDocumentsTypesCmd())
	cmd.AddCommand(newDocumentsGenerateCmd())
	cmd.AddCommand(newDocumentsListCmd())

	return cmd
}

func newDocumentsTypesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "List the document catalogue",
		RunE: func(cmd *cobra.Command, args []string) error {
			cats, err := apiClient.Documents().Types(context.Background())
			if err != nil {
				return fmt.Errorf("failed to list document types: %w", err)
			}
			if getOutputFormat() != "table" {
				return printOutput(cats)
			}
			table := NewTable("CATEGORY", "TYPE", "NAME", "DESCRIPTION")
			for _, c := range cats {
				for _, t := range c.Types {
					table.AddRow(c.ID, t.ID, t.Name, truncate(t.Description, 50))
				}
			}
			table.Render()
			return nil
		},
	}
}

func newDocumentsGenerateCmd() *cobra.Command {
	var (
		req      client.GenerateDocumentRequest
		formJSON string
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a document (uses one letter of quota)",
		RunE: func(cmd *cobra.Command, args []string) error {
			form, err := parseFormData(formJSON)
			if err != nil {
				return err
			}
			req.FormData = form

			a, err := apiClient.Documents().Generate(context.Background(), req)
			if err != nil {
				return fmt.Errorf("failed to generate document: %w", subscriptionHint(err))
			}
			return printArtifact(a)
		},
	}

	cmd.Flags().StringVar(&req.Title, "title", "", "document title")
	cmd.Flags().StringVar(&req.Category, "category", "", "catalogue category")
	cmd.Flags().StringVar(&req.DocumentType, "type", "", "catalogue document type")
	cmd.Flags().StringVar(&req.UrgencyLevel, "urgency", "", "standard, urgent or rush")
	cmd.Flags().StringVar(&formJSON, "form", "", "form data as a JSON object")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("category")
	_ = cmd.MarkFlagRequired("type")

	return cmd
}

func newDocumentsListCmd() *cobra.Command {
	var opts client.ListOptions

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List your documents",
		RunE: func(cmd *cobra.Command, args []string) error {
			page, err := apiClient.Documents().List(context.Background(), &opts)
			if err != nil {
				return fmt.Errorf("failed to list documents: %w", err)
			}
			return printArtifactPage(page)
		},
	}

	addPageFlags(cmd, &opts)
	return cmd
}

func addPageFlags(cmd *cobra.Command, opts *client.ListOptions) {
	cmd.Flags().IntVar(&opts.Page, "page", 1, "page number")
	cmd.Flags().IntVar(&opts.PageSize, "page-size", 20, "items per page")
}

func parseFormData(raw string) (map[string]interface{}, error) {
	if raw == "" {
		return nil, nil
	}
	var form map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &form); err != nil {
		return nil, fmt.Errorf("--form must be a JSON object: %w", err)
	}
	return form, nil
}

// subscriptionHint points users without quota at the purchase commands.
func subscriptionHint(err error) error {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) && apiErr.SubscriptionRequired {
		return fmt.Errorf("%w (see 'lawyer subscription packages')", err)
	}
	return err
}

func printArtifact(a *client.Artifact) error {
	if getOutputFormat() != "table" {
		return printOutput(a)
	}
	fmt.Printf("ID:        %s\n", a.ID)
	fmt.Printf("Title:     %s\n", a.Title)
	fmt.Printf("Kind:      %s (%s)\n", a.Kind, a.Type)
	fmt.Printf("Urgency:   %s\n", a.UrgencyLevel)
	fmt.Printf("Created:   %s\n", formatTime(a.CreatedAt))
	fmt.Println()
	fmt.Println(a.Content)
	return nil
}

func printArtifactPage(page *client.Page[client.Artifact]) error {
	if getOutputFormat() != "table" {
		return printOutput(page)
	}
	table := NewTable("ID", "KIND", "TYPE", "TITLE", "STATUS", "CREATED")
	for _, a := range page.Data {
		table.AddRow(a.ID, a.Kind, a.Type, truncate(a.Title, 40), formatStatus(a.Status), formatTime(a.CreatedAt))
	}
	table.Render()
	fmt.Printf("\nPage %d of %d (%d total)\n", page.Page, page.TotalPages, page.TotalItems)
	return nil
}
