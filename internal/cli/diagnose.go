package cli

import (
	"fmt"
	"strings"

	"github.com/afiya/afiyacare/internal/language"
	"github.com/afiya/afiyacare/internal/render"
	"github.com/spf13/cobra"
)

var diagnoseLanguage string

var diagnoseCmd = &cobra.Command{
	Use:   "diagnose <symptoms...>",
	Short: "Send symptoms to the diagnosis service and print the reply",
	Long: `Send a symptom description to the diagnosis service and print the
reply exactly as the bot would send it. The language is detected from the
text unless --language is given.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDiagnose,
}

var detectCmd = &cobra.Command{
	Use:   "detect <text...>",
	Short: "Show which language a message is detected as",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runDetect,
}

func init() {
	diagnoseCmd.Flags().StringVar(&diagnoseLanguage, "language", "", "language code to send instead of the detected one (en, yo, ha, ig, pcm)")
	rootCmd.AddCommand(diagnoseCmd)
	rootCmd.AddCommand(detectCmd)
}

func runDiagnose(cmd *cobra.Command, args []string) error {
	text := strings.Join(args, " ")

	lang := language.Detect(text)
	if diagnoseLanguage != "" {
		code, ok := language.Parse(diagnoseLanguage)
		if !ok {
			return fmt.Errorf("unsupported language %q", diagnoseLanguage)
		}
		lang = code
	}

	cfg, client, log, err := oneShotClient()
	if err != nil {
		return err
	}
	defer log.Close()

	ctx, cancel := withTimeout(cmd.Context(), cfg)
	defer cancel()

	result, err := client.Diagnose(ctx, text, lang.String())
	if err != nil {
		return fmt.Errorf("failed to get diagnosis: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), render.Render(result))
	return nil
}

func runDetect(cmd *cobra.Command, args []string) error {
	code := language.Detect(strings.Join(args, " "))
	fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", code, language.DisplayName(code.String()))
	return nil
}
