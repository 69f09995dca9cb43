package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/sf1tzp/symbology-sub000/fingerprint"
	"github.com/sf1tzp/symbology-sub000/llm"
	"github.com/sf1tzp/symbology-sub000/orm"
	"github.com/sf1tzp/symbology-sub000/store"
)

var (
	resolveIncludeBody bool

	resolveCmd = &cobra.Command{
		Use:   "resolve [ticker] [fingerprint]",
		Short: "Resolve a ticker and fingerprint prefix to an artifact",
		Args:  cobra.ExactArgs(2),
		Run:   runResolve,
	}

	lineageCmd = &cobra.Command{
		Use:   "lineage [artifact-id]",
		Short: "Show an artifact's sources, derivatives and derivation depth",
		Args:  cobra.ExactArgs(1),
		Run:   runLineage,
	}
)

func init() {
	resolveCmd.Flags().BoolVar(
		&resolveIncludeBody, "include-body", false,
		"fetch the full body instead of metadata only",
	)
}

func runResolve(_ *cobra.Command, args []string) {
	cfg := loadConfig()
	svc := newService(cfg)
	ctx := context.Background()

	artifact, err := svc.Resolve(ctx, args[0], args[1])
	if err != nil {
		log.Fatal().Err(err).Msg("resolution failed")
	}

	if resolveIncludeBody {
		artifact, err = svc.GetArtifact(ctx, artifact.ID, true)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to fetch artifact body")
		}
	}

	printJSON(artifact)
}

func runLineage(_ *cobra.Command, args []string) {
	id, err := uuid.Parse(args[0])
	if err != nil {
		log.Fatal().Str("id", args[0]).Msg("invalid artifact id")
	}

	cfg := loadConfig()
	svc := newService(cfg)
	ctx := context.Background()

	sources, err := svc.Sources(ctx, id)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to fetch sources")
	}

	derivatives, err := svc.Derivatives(ctx, id)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to fetch derivatives")
	}

	depth, err := svc.LineageDepth(ctx, id, 0)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to compute depth")
	}

	printJSON(map[string]any{
		"sources":     sources,
		"derivatives": derivatives,
		"depth":       depth,
	})
}

var (
	generateTicker       string
	generateDocumentID   string
	generateStage        string
	generateSystemPrompt string
	generateUserPrompt   string

	generateCmd = &cobra.Command{
		Use:   "generate",
		Short: "Generate a summary of a stored document and record the artifact",
		Run:   runGenerate,
	}
)

func init() {
	generateCmd.Flags().StringVar(&generateTicker, "ticker", "", "company ticker")
	generateCmd.Flags().StringVar(&generateDocumentID, "document", "", "source document id")
	generateCmd.Flags().StringVar(
		&generateStage, "stage", string(orm.StageSingleSummary), "pipeline stage",
	)
	generateCmd.Flags().StringVar(
		&generateSystemPrompt, "system-prompt",
		"You summarize sections of SEC filings for investors.",
		"system prompt",
	)
	generateCmd.Flags().StringVar(
		&generateUserPrompt, "user-prompt", "", "extra instructions prepended to the document",
	)
	_ = generateCmd.MarkFlagRequired("ticker")
	_ = generateCmd.MarkFlagRequired("document")
}

func runGenerate(*cobra.Command, []string) {
	documentID, err := uuid.Parse(generateDocumentID)
	if err != nil {
		log.Fatal().Str("document", generateDocumentID).Msg("invalid document id")
	}

	cfg := loadConfig()
	svc := newService(cfg)
	client := llm.NewClient(cfg.LLM)
	ctx := context.Background()

	document, content, err := svc.GetDocumentContent(ctx, documentID)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load document content")
	}

	userPrompt := string(content)
	if generateUserPrompt != "" {
		userPrompt = generateUserPrompt + "\n\n" + userPrompt
	}

	result, err := client.Generate(ctx, llm.Request{
		SystemPrompt: generateSystemPrompt,
		UserPrompt:   userPrompt,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("generation failed")
	}

	stage := orm.Stage(generateStage)
	artifact, created, err := svc.CreateArtifact(ctx, store.CreateArtifactInput{
		Body:              result.Content,
		Ticker:            generateTicker,
		Stage:             &stage,
		DocumentType:      &document.DocumentType,
		SourceDocumentIDs: []uuid.UUID{documentID},
		PromptTokens:      result.PromptTokens,
		CompletionTokens:  result.CompletionTokens,
		TotalTokens:       result.TotalTokens,
		DurationMS:        result.DurationMS,
		Warning:           result.Warning,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to store artifact")
	}

	reference := ""
	if artifact.Fingerprint != nil {
		reference = fingerprint.Truncate(*artifact.Fingerprint, 0)
	}
	log.Info().
		Str("artifact_id", artifact.ID.String()).
		Str("fingerprint", reference).
		Bool("created", created).
		Msg("artifact generated")

	printJSON(artifact)
}

func printJSON(v any) {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
}
