package main

import (
	"fmt"
	"io"
	"math/rand/v2"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Jep4/diabete-random-generate/internal/exchange"
	"github.com/Jep4/diabete-random-generate/internal/nutrition"
)

func newCalcCmd(opts *options) *cobra.Command {
	var in nutrition.Input
	cmd := &cobra.Command{
		Use:   "calc",
		Short: "Estimate daily calories (Mifflin-St Jeor)",
		Example: "  foodctl calc --age 45 --height 170 --weight 70 --sex male --activity light",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, r, err := nutrition.CalculateInput(in)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if opts.format == "json" {
				return writeJSON(out, map[string]any{"profile": p, "result": r})
			}
			fmt.Fprintf(out, "BMR:       %.1f kcal\n", r.BMR)
			fmt.Fprintf(out, "Daily:     %d kcal (%s x%s)\n", r.Calories, p.ActivityLevel, strconv.FormatFloat(p.Multiplier(), 'f', -1, 64))
			fmt.Fprintf(out, "Per meal:  %d kcal\n", r.PerMealTarget)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&in.Age, "age", "", "Age in years")
	f.StringVar(&in.Height, "height", "", "Height in cm")
	f.StringVar(&in.Weight, "weight", "", "Weight in kg")
	f.StringVar(&in.Sex, "sex", "male", "male or female")
	f.StringVar(&in.Activity, "activity", nutrition.DefaultActivityLevel, "sedentary, light, moderate, active or a multiplier")
	return cmd
}

func newSampleCmd(opts *options) *cobra.Command {
	var seed uint64
	var count int
	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Draw meals from the food table",
		RunE: func(cmd *cobra.Command, args []string) error {
			if count < 1 {
				return fmt.Errorf("--count must be at least 1")
			}
			c, err := opts.loadCatalog(cmd.Context())
			if err != nil {
				return err
			}
			var rnd exchange.Rand
			if cmd.Flags().Changed("seed") {
				rnd = rand.New(rand.NewPCG(seed, seed))
			}
			sampler := exchange.NewSampler(rnd)

			out := cmd.OutOrStdout()
			meals := make([]exchange.Meal, 0, count)
			for range count {
				meals = append(meals, sampler.Sample(c))
			}
			if opts.format == "json" {
				return writeJSON(out, meals)
			}
			for i, m := range meals {
				if i > 0 {
					fmt.Fprintln(out)
				}
				writeMeal(out, m)
			}
			return nil
		},
	}
	cmd.Flags().Uint64Var(&seed, "seed", 0, "Seed for a repeatable draw")
	cmd.Flags().IntVarP(&count, "count", "n", 1, "Number of meals")
	return cmd
}

func writeMeal(w io.Writer, m exchange.Meal) {
	fmt.Fprintf(w, "Meal %s\n", m.ID)
	for _, s := range m.Sections() {
		fmt.Fprintf(w, "%s  %d 단위\n", s.Title, len(s.Items))
		for _, it := range s.Items {
			fmt.Fprintf(w, "  - %s (%s)\n", it.Name, it.Amount)
		}
	}
}
