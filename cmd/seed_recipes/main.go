package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pageza/vegan-dog-recipes/backend/config"
	"github.com/pageza/vegan-dog-recipes/backend/internal/database"
	"github.com/pageza/vegan-dog-recipes/backend/internal/logger"
	"github.com/pageza/vegan-dog-recipes/backend/internal/service"
	"github.com/pageza/vegan-dog-recipes/backend/internal/types"
)

var allSizes = []types.DogSize{types.DogSizeSmall, types.DogSizeMedium, types.DogSizeLarge}

// seedOptions are the flags of the seed command
type seedOptions struct {
	Count      int
	Size       string
	Restricted []string
	Preferred  []string
	DryRun     bool
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "seed_recipes: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var opts seedOptions

	cmd := &cobra.Command{
		Use:   "seed_recipes",
		Short: "Generate vegan dog recipes and store them",
		Long: "seed_recipes generates recipes with the same generator the API uses and saves them\n" +
			"through the recipe service. Without --size it cycles small, medium and large.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.Count <= 0 {
				return fmt.Errorf("--count must be positive, got %d", opts.Count)
			}
			if opts.Size != "" && types.DogSize(opts.Size).Normalize() != types.DogSize(opts.Size) {
				return fmt.Errorf("--size must be one of small, medium, large")
			}

			generator := service.NewRecipeGenerator(nil)
			if opts.DryRun {
				return seed(cmd.Context(), cmd.OutOrStdout(), generator, nil, opts)
			}

			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			log := logger.New(cfg.LogLevel, cfg.LogFormat)
			defer logger.Sync(log)

			db, err := database.New(cfg, log)
			if err != nil {
				return fmt.Errorf("connect database: %w", err)
			}
			defer db.Close()

			if err := database.RunMigrations(cmd.Context(), db.Gorm, log); err != nil {
				return fmt.Errorf("run migrations: %w", err)
			}

			log.Info("Seeding recipes", zap.Int("count", opts.Count))
			return seed(cmd.Context(), cmd.OutOrStdout(), generator, service.NewRecipeService(db.Gorm, log), opts)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.Flags().IntVarP(&opts.Count, "count", "n", 25, "number of recipes to generate")
	cmd.Flags().StringVar(&opts.Size, "size", "", "dog size for every recipe (small, medium, large)")
	cmd.Flags().StringSliceVar(&opts.Restricted, "restrict", nil, "dietary restriction keywords")
	cmd.Flags().StringSliceVar(&opts.Preferred, "prefer", nil, "preferred ingredients")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "print generated recipes as JSON without saving")
	return cmd
}

// seed generates opts.Count recipes. With a nil store the recipes are written
// to out as JSON lines; otherwise they are persisted and their new IDs printed.
func seed(ctx context.Context, out io.Writer, generator service.IRecipeGenerator, store service.IRecipeService, opts seedOptions) error {
	enc := json.NewEncoder(out)
	for i := 0; i < opts.Count; i++ {
		size := types.DogSize(opts.Size)
		if size == "" {
			size = allSizes[i%len(allSizes)]
		}

		recipe := generator.Generate(types.GenerateRecipeRequest{
			DogSize:              size,
			DietaryRestrictions:  opts.Restricted,
			PreferredIngredients: opts.Preferred,
		})

		if store == nil {
			if err := enc.Encode(recipe); err != nil {
				return err
			}
			continue
		}

		saved, err := store.CreateRecipe(ctx, service.CreateRequestFromRecipe(recipe))
		if err != nil {
			return fmt.Errorf("save recipe %d of %d: %w", i+1, opts.Count, err)
		}
		fmt.Fprintf(out, "Created recipe %d: %s\n", saved.ID, saved.Name)
	}
	return nil
}
