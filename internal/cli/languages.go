package cli

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/afiya/afiyacare/internal/config"
	"github.com/afiya/afiyacare/internal/diagnosis"
	"github.com/afiya/afiyacare/internal/language"
	"github.com/afiya/afiyacare/internal/logger"
	"github.com/spf13/cobra"
)

var languagesCmd = &cobra.Command{
	Use:   "languages",
	Short: "List languages supported by the diagnosis service",
	Long: `List the languages the diagnosis service accepts.
If the service cannot be reached the built-in list is shown.`,
	Args: cobra.NoArgs,
	RunE: runLanguages,
}

func init() {
	rootCmd.AddCommand(languagesCmd)
}

func runLanguages(cmd *cobra.Command, args []string) error {
	cfg, client, log, err := oneShotClient()
	if err != nil {
		return err
	}
	defer log.Close()

	ctx, cancel := withTimeout(cmd.Context(), cfg)
	defer cancel()

	langs := client.ListLanguages(ctx)

	out := cmd.OutOrStdout()
	for _, code := range orderedCodes(langs) {
		fmt.Fprintf(out, "%-4s %s\n", code, langs[code])
	}
	return nil
}

// orderedCodes lists the detector's codes first, then any others sorted
func orderedCodes(langs map[string]string) []string {
	var codes []string
	seen := make(map[string]bool, len(langs))
	for _, code := range language.All() {
		if _, ok := langs[string(code)]; ok {
			codes = append(codes, string(code))
			seen[string(code)] = true
		}
	}

	var rest []string
	for code := range langs {
		if !seen[code] {
			rest = append(rest, code)
		}
	}
	sort.Strings(rest)

	return append(codes, rest...)
}

func oneShotClient() (*config.Config, *diagnosis.HTTPClient, *logger.Logger, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, nil, err
	}

	if errs := config.NewValidator().ValidateDiagnosis(cfg.Diagnosis); len(errs) > 0 {
		return nil, nil, nil, fmt.Errorf("invalid diagnosis configuration: %w", errors.Join(errs...))
	}

	log, err := quietLogger(cfg)
	if err != nil {
		return nil, nil, nil, err
	}

	client, err := diagnosis.NewHTTPClient(diagnosis.Options{
		BaseURL: cfg.Diagnosis.BaseURL,
		Timeout: cfg.Diagnosis.Timeout(),
	}, log.GetZerolog())
	if err != nil {
		log.Close()
		return nil, nil, nil, err
	}

	return cfg, client, log, nil
}

func withTimeout(ctx context.Context, cfg *config.Config) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(ctx, cfg.Diagnosis.Timeout())
}
