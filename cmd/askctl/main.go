package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"insight-engine/internal/di"
	"insight-engine/internal/domain"
	"insight-engine/internal/infra"
	"insight-engine/internal/infra/config"
)

var (
	version = "dev"

	// Global flags
	configFile string

	// Ask command flags
	organizationID string
	queryDomain    string
	timeframe      string
	businessUnitID string
	initiativeID   string
	asJSON         bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "askctl",
	Short:   "Ask the organizational intelligence engine from the command line",
	Version: version,
}

var askCmd = &cobra.Command{
	Use:   "ask [query]",
	Short: "Answer one question against the organizational knowledge base",
	Long: `Answer one question against the organizational knowledge base.

The engine retrieves candidate insights, evidence, KPIs and scenarios for
the organization, ranks them against the query, and synthesizes a grounded
answer with confidence, follow-up questions, and actionable items.

Examples:
  # Ask scoped to an organization
  askctl ask --org acme-corp "Why did churn increase last quarter?"

  # Narrow to a domain and business unit
  askctl ask --org acme-corp --domain financial --bu emea "Where are we over budget?"`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "path to a YAML config file")

	askCmd.Flags().StringVar(&organizationID, "org", "", "organization id (required)")
	askCmd.Flags().StringVar(&queryDomain, "domain", "", "topical domain: strategic|operational|financial|risk|innovation")
	askCmd.Flags().StringVar(&timeframe, "timeframe", "", "timeframe: current|historical|future")
	askCmd.Flags().StringVar(&businessUnitID, "bu", "", "business unit id")
	askCmd.Flags().StringVar(&initiativeID, "initiative", "", "initiative id")
	askCmd.Flags().BoolVar(&asJSON, "json", false, "print the raw response as JSON")
	_ = askCmd.MarkFlagRequired("org")

	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}

	// Keep CLI output clean; engine logs go to stderr.
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	slog.SetDefault(log)

	ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
	defer cancel()

	dbPool, err := infra.NewPostgresDB(ctx, cfg.DB.DSN(), infra.PoolConfig{
		MaxConns: cfg.DB.MaxConns,
		MinConns: cfg.DB.MinConns,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to knowledge store: %w", err)
	}
	defer dbPool.Close()

	components := di.NewApplicationComponents(cfg, dbPool, log)

	response := components.AnswerUsecase.Execute(ctx, domain.QueryContext{
		Query:          args[0],
		OrganizationID: organizationID,
		Domain:         domain.QueryDomain(queryDomain),
		Timeframe:      domain.Timeframe(timeframe),
		BusinessUnitID: businessUnitID,
		InitiativeID:   initiativeID,
	})

	if asJSON {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(response)
	}

	printResponse(response)
	return nil
}

func printResponse(r *domain.RAGResponse) {
	fmt.Println(r.Answer)
	fmt.Printf("\nConfidence: %.2f\n", r.Confidence)

	if len(r.Sources) > 0 {
		fmt.Println("\nSources:")
		for _, s := range r.Sources {
			fmt.Printf("  [%s] %s (relevance %.3f)\n", s.Type, s.Title, s.Relevance)
		}
	}
	if len(r.ActionableItems) > 0 {
		fmt.Println("\nActionable items:")
		for _, item := range r.ActionableItems {
			fmt.Printf("  (%s/%s) %s\n", item.Type, item.Priority, item.Description)
		}
	}
	if len(r.RelatedQuestions) > 0 {
		fmt.Println("\nRelated questions:")
		for _, q := range r.RelatedQuestions {
			fmt.Printf("  - %s\n", q)
		}
	}
}
