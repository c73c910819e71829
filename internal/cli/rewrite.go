package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/brandloom-ai/brandloom/internal/service"
	"github.com/spf13/cobra"
)

// RewriteCmd returns the rewrite command
func RewriteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rewrite [file]",
		Short: "Rewrite a document in the brand voice",
		Long:  "Rewrite a document from a file (or stdin) in the brand voice for a target language",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runRewrite,
	}

	cmd.Flags().StringP("lang", "l", "en", "Target language")
	cmd.Flags().StringP("type", "t", "Document", "Document type (PDP, email, article, ...)")
	cmd.Flags().Bool("no-rag", false, "Skip retrieval-augmented fact injection")
	cmd.Flags().String("output", "text", "Output format (text or json)")

	return cmd
}

func runRewrite(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	var text []byte
	var err error
	if len(args) == 1 {
		text, err = os.ReadFile(args[0])
	} else {
		text, err = io.ReadAll(cmd.InOrStdin())
	}
	if err != nil {
		return fmt.Errorf("failed to read source text: %w", err)
	}
	if len(text) == 0 {
		return fmt.Errorf("source text is empty")
	}

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	rw, err := a.rewriter()
	if err != nil {
		return err
	}

	lang, _ := cmd.Flags().GetString("lang")
	docType, _ := cmd.Flags().GetString("type")
	noRAG, _ := cmd.Flags().GetBool("no-rag")

	result, err := rw.RewriteWithRAG(ctx, service.RewriteInput{
		Text:         string(text),
		Lang:         lang,
		DocumentType: docType,
		UseRAG:       !noRAG,
	})
	if err != nil {
		return err
	}

	output := result.Text
	if glossary, gerr := service.LoadGlossary(a.cfg.GlossaryPath); gerr == nil {
		output = glossary.Apply(output, lang)
	}

	format, _ := cmd.Flags().GetString("output")
	if format == "json" {
		payload := map[string]any{
			"text":       output,
			"metadata":   result.Metadata,
			"parse_mode": result.ParseMode,
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(payload)
	}

	fmt.Fprintln(cmd.OutOrStdout(), output)
	return nil
}
