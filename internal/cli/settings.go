package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

// Email command flags
var emailReveal bool

// keywordsCmd represents the keywords command
var keywordsCmd = &cobra.Command{
	Use:   "keywords",
	Short: "Manage the keywords that raise alerts",
	Long: `Manage the keywords the backend matches log lines against.

Examples:
  tailboard keywords list
  tailboard keywords add error timeout
  tailboard keywords add "error, fatal"
  tailboard keywords remove timeout`,
}

var keywordsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List keywords",
	Args:  cobra.NoArgs,
	RunE:  runKeywordsList,
}

var keywordsAddCmd = &cobra.Command{
	Use:   "add <keyword>...",
	Short: "Add keywords",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runKeywordsAdd,
}

var keywordsRemoveCmd = &cobra.Command{
	Use:   "remove <keyword>...",
	Short: "Remove keywords",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runKeywordsRemove,
}

// recipientsCmd represents the recipients command
var recipientsCmd = &cobra.Command{
	Use:   "recipients",
	Short: "Manage alert email recipients per container",
}

var recipientsListCmd = &cobra.Command{
	Use:   "list <container>",
	Short: "List a container's recipients",
	Args:  cobra.ExactArgs(1),
	RunE:  runRecipientsList,
}

var recipientsAddCmd = &cobra.Command{
	Use:   "add <container> <email>",
	Short: "Add a recipient",
	Args:  cobra.ExactArgs(2),
	RunE:  runRecipientsAdd,
}

var recipientsRemoveCmd = &cobra.Command{
	Use:   "remove <container> <email>",
	Short: "Remove a recipient",
	Args:  cobra.ExactArgs(2),
	RunE:  runRecipientsRemove,
}

// emailCmd represents the email command
var emailCmd = &cobra.Command{
	Use:   "email",
	Short: "Show or set the alert email sender",
	Long: `Show or set the account alert emails are sent from.

Examples:
  tailboard email sender                      # Show the sender
  tailboard email sender alerts@example.com   # Set the sender
  tailboard email password --reveal           # Show the app password`,
}

var emailSenderCmd = &cobra.Command{
	Use:   "sender [email]",
	Short: "Show or set the sender address",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runEmailSender,
}

var emailPasswordCmd = &cobra.Command{
	Use:   "password [app-password]",
	Short: "Show or set the sender's app password",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runEmailPassword,
}

func init() {
	keywordsCmd.AddCommand(keywordsListCmd, keywordsAddCmd, keywordsRemoveCmd)
	recipientsCmd.AddCommand(recipientsListCmd, recipientsAddCmd, recipientsRemoveCmd)

	emailPasswordCmd.Flags().BoolVar(&emailReveal, "reveal", false, "Print the password instead of masking it")
	emailCmd.AddCommand(emailSenderCmd, emailPasswordCmd)

	rootCmd.AddCommand(keywordsCmd, recipientsCmd, emailCmd)
}

func runKeywordsList(cmd *cobra.Command, args []string) error {
	_, client, _, closer, err := setup("")
	if err != nil {
		return err
	}
	defer closer.Close()

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	keywords, err := client.Keywords(ctx)
	if err != nil {
		return fmt.Errorf("listing keywords: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(keywords) == 0 {
		fmt.Fprintln(out, "No keywords")
		return nil
	}
	for _, kw := range keywords {
		fmt.Fprintln(out, kw)
	}
	return nil
}

func runKeywordsAdd(cmd *cobra.Command, args []string) error {
	keywords, err := keywordArgs(args)
	if err != nil {
		return err
	}

	_, client, _, closer, err := setup("")
	if err != nil {
		return err
	}
	defer closer.Close()

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	added, skipped, err := client.AddKeywords(ctx, keywords)
	if err != nil {
		return fmt.Errorf("adding keywords: %w", err)
	}

	out := cmd.OutOrStdout()
	printList(out, "Added", added)
	printList(out, "Already present", skipped)
	return nil
}

func runKeywordsRemove(cmd *cobra.Command, args []string) error {
	keywords, err := keywordArgs(args)
	if err != nil {
		return err
	}

	_, client, _, closer, err := setup("")
	if err != nil {
		return err
	}
	defer closer.Close()

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	removed, notFound, err := client.RemoveKeywords(ctx, keywords)
	if err != nil {
		return fmt.Errorf("removing keywords: %w", err)
	}

	out := cmd.OutOrStdout()
	printList(out, "Removed", removed)
	printList(out, "Not found", notFound)
	return nil
}

func runRecipientsList(cmd *cobra.Command, args []string) error {
	_, client, _, closer, err := setup("")
	if err != nil {
		return err
	}
	defer closer.Close()

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	recipients, err := client.Recipients(ctx, args[0])
	if err != nil {
		return fmt.Errorf("listing recipients: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(recipients) == 0 {
		fmt.Fprintf(out, "No recipients for %s\n", args[0])
		return nil
	}
	for _, r := range recipients {
		fmt.Fprintln(out, r)
	}
	return nil
}

func runRecipientsAdd(cmd *cobra.Command, args []string) error {
	_, client, _, closer, err := setup("")
	if err != nil {
		return err
	}
	defer closer.Close()

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	if err := client.AddRecipient(ctx, args[0], args[1]); err != nil {
		return fmt.Errorf("adding recipient: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Added %s to %s\n", args[1], args[0])
	return nil
}

func runRecipientsRemove(cmd *cobra.Command, args []string) error {
	_, client, _, closer, err := setup("")
	if err != nil {
		return err
	}
	defer closer.Close()

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	if err := client.RemoveRecipient(ctx, args[0], args[1]); err != nil {
		return fmt.Errorf("removing recipient: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Removed %s from %s\n", args[1], args[0])
	return nil
}

func runEmailSender(cmd *cobra.Command, args []string) error {
	_, client, _, closer, err := setup("")
	if err != nil {
		return err
	}
	defer closer.Close()

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	out := cmd.OutOrStdout()
	if len(args) == 1 {
		if err := client.SetSender(ctx, args[0]); err != nil {
			return fmt.Errorf("setting sender: %w", err)
		}
		fmt.Fprintf(out, "Sender set to %s\n", args[0])
		return nil
	}

	sender, err := client.Sender(ctx)
	if err != nil {
		return fmt.Errorf("fetching sender: %w", err)
	}
	if sender == "" {
		sender = "(not set)"
	}
	fmt.Fprintln(out, sender)
	return nil
}

func runEmailPassword(cmd *cobra.Command, args []string) error {
	_, client, _, closer, err := setup("")
	if err != nil {
		return err
	}
	defer closer.Close()

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	out := cmd.OutOrStdout()
	if len(args) == 1 {
		if err := client.SetAppPassword(ctx, args[0]); err != nil {
			return fmt.Errorf("setting app password: %w", err)
		}
		fmt.Fprintln(out, "App password updated")
		return nil
	}

	password, err := client.AppPassword(ctx)
	if err != nil {
		return fmt.Errorf("fetching app password: %w", err)
	}
	fmt.Fprintln(out, maskSecret(password, emailReveal))
	return nil
}

// maskSecret hides a secret unless reveal is set
func maskSecret(secret string, reveal bool) string {
	switch {
	case secret == "":
		return "(not set)"
	case reveal:
		return secret
	default:
		return strings.Repeat("*", 8)
	}
}

func printList(out io.Writer, label string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(out, "%s: %s\n", label, strings.Join(items, ", "))
}
