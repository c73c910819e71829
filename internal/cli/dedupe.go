package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/brandloom-ai/brandloom/internal/service"
	"github.com/spf13/cobra"
)

// DedupeCmd returns the dedupe command
func DedupeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dedupe [file]",
		Short: "Remove near-duplicate chunks from a document",
		Long:  "Chunk a document and drop near-duplicate chunks using the dense or sparse strategy",
		Args:  cobra.ExactArgs(1),
		RunE:  runDedupe,
	}

	cmd.Flags().Float64("threshold", service.DefaultDedupeThreshold, "Similarity threshold above which a chunk is dropped")
	cmd.Flags().String("strategy", "dense", "Reduction strategy (dense or sparse)")
	cmd.Flags().Int("chunk-size", service.DefaultChunkSize, "Chunk size in words")
	cmd.Flags().Int("overlap", service.DefaultChunkOverlap, "Chunk overlap in words")

	return cmd
}

func runDedupe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	text, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read source text: %w", err)
	}

	chunkSize, _ := cmd.Flags().GetInt("chunk-size")
	overlap, _ := cmd.Flags().GetInt("overlap")
	threshold, _ := cmd.Flags().GetFloat64("threshold")
	strategy, _ := cmd.Flags().GetString("strategy")

	chunks, err := service.ChunkText(string(text), chunkSize, overlap)
	if err != nil {
		return err
	}

	var kept []string
	switch strategy {
	case "sparse":
		kept = service.NewSparseReducer().Reduce(chunks, threshold)
	case "dense":
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		if a.client == nil {
			return fmt.Errorf("dense dedupe requires BRANDLOOM_OPENAI_API_KEY")
		}
		kept, err = service.NewDenseReducer(a.client).Reduce(ctx, chunks, threshold)
		if err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown strategy %q (want dense or sparse)", strategy)
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "kept %d of %d chunks\n", len(kept), len(chunks))
	for _, chunk := range kept {
		fmt.Fprintln(cmd.OutOrStdout(), chunk)
	}
	return nil
}
