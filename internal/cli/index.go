package cli

import (
	"context"
	"fmt"

	"github.com/brandloom-ai/brandloom/internal/domain"
	"github.com/brandloom-ai/brandloom/internal/service"
	"github.com/spf13/cobra"
)

// IndexCmd returns the index command group
func IndexCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "index",
		Short: "Rebuild the vector collections",
		Long:  "Rebuild the product_master and knowledge_base collections from their sources",
	}

	cmd.AddCommand(indexProductsCmd())
	cmd.AddCommand(indexKnowledgeCmd())
	cmd.AddCommand(indexStatusCmd())

	return cmd
}

func indexProductsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "products",
		Short: "Rebuild the product_master collection from the catalog CSV",
		RunE:  runIndexProducts,
	}

	cmd.Flags().StringP("csv", "c", "", "Path to the product master CSV (defaults to config)")

	return cmd
}

func runIndexProducts(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if a.store == nil {
		return fmt.Errorf("indexing requires BRANDLOOM_OPENAI_API_KEY")
	}

	csvPath, _ := cmd.Flags().GetString("csv")
	if csvPath == "" {
		csvPath = a.cfg.ProductMasterCSV
	}

	count, err := service.NewIndexer(a.store).IndexProductMaster(ctx, csvPath)
	if err != nil {
		return err
	}

	fmt.Printf("indexed %d products into %s\n", count, domain.CollectionProductMaster)
	return nil
}

func indexKnowledgeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "knowledge",
		Short: "Rebuild the knowledge_base collection from the knowledge source",
		RunE:  runIndexKnowledge,
	}
}

func runIndexKnowledge(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if a.store == nil {
		return fmt.Errorf("indexing requires BRANDLOOM_OPENAI_API_KEY")
	}

	source, err := a.knowledgeSource(ctx)
	if err != nil {
		return err
	}

	count, err := service.NewIndexer(a.store).IndexKnowledgeBase(ctx, source)
	if err != nil {
		return err
	}

	fmt.Printf("indexed %d chunks into %s\n", count, domain.CollectionKnowledgeBase)
	return nil
}

func indexStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show document counts per collection",
		RunE:  runIndexStatus,
	}
}

func runIndexStatus(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if a.store == nil {
		return fmt.Errorf("status requires BRANDLOOM_OPENAI_API_KEY")
	}

	for _, collection := range []domain.Collection{domain.CollectionProductMaster, domain.CollectionKnowledgeBase} {
		count, err := a.store.Count(ctx, collection)
		if err != nil {
			return err
		}
		fmt.Printf("%s: %d documents\n", collection, count)
	}

	return nil
}
