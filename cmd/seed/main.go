package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"medialib/internal/catalog"
	"medialib/internal/config"
	"medialib/internal/platform/logging"
	"medialib/internal/store"
)

var samples = map[string][]catalog.Input{
	catalog.Books.Name: {
		{Fields: map[string]string{"title": "Dune", "author": "Frank Herbert"}, Year: "1965"},
		{Fields: map[string]string{"title": "Foundation", "author": "Isaac Asimov"}, Year: "1951"},
		{Fields: map[string]string{"title": "Neuromancer", "author": "William Gibson"}, Year: "1984"},
		{Fields: map[string]string{"title": "War and Peace", "author": "Leo Tolstoy"}, Year: "1869"},
	},
	catalog.Magazines.Name: {
		{Fields: map[string]string{"title": "Wired", "issue": "31.04", "publisher": "Condé Nast"}, Year: "2023"},
		{Fields: map[string]string{"title": "National Geographic", "issue": "March", "publisher": "National Geographic Society"}, Year: "2021"},
		{Fields: map[string]string{"title": "Byte", "issue": "Vol 1 No 1", "publisher": "Green Publishing"}, Year: "1975"},
	},
	catalog.Films.Name: {
		{Fields: map[string]string{"title": "Alien", "director": "Ridley Scott", "genre": "Science Fiction"}, Year: "1979"},
		{Fields: map[string]string{"title": "Heat", "director": "Michael Mann", "genre": "Crime"}, Year: "1995"},
		{Fields: map[string]string{"title": "Spirited Away", "director": "Hayao Miyazaki"}, Year: "2001"},
	},
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var extra int

	cmd := &cobra.Command{
		Use:          "seed",
		Short:        "Insert a sample catalog of books, magazines and films",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			log, err := logging.New(cfg.Log.Level, cfg.Log.Format)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			ctx := cmd.Context()
			st, err := store.Open(ctx, cfg.DB, log)
			if err != nil {
				return err
			}
			defer st.Close()

			return seed(ctx, catalog.NewService(st.Repo, log), extra, log)
		},
	}
	cmd.Flags().IntVar(&extra, "extra", 0, "number of generated items to add per kind")
	return cmd
}

// seed creates the samples and extra generated items per kind through the service,
// so every item is ranked by the normal create path.
func seed(ctx context.Context, svc *catalog.Service, extra int, log *zap.Logger) error {
	for _, k := range catalog.Kinds() {
		inputs := append([]catalog.Input{}, samples[k.Name]...)
		for i := 0; i < extra; i++ {
			inputs = append(inputs, generated(k, i))
		}

		for _, in := range inputs {
			if _, err := svc.Create(ctx, k, in); err != nil {
				return fmt.Errorf("seed %s %q: %w", k.Name, in.Fields["title"], err)
			}
		}
		log.Info("seeded", zap.String("kind", k.Plural), zap.Int("count", len(inputs)))
	}
	return nil
}

func generated(k catalog.Kind, i int) catalog.Input {
	in := catalog.Input{
		Fields: make(map[string]string, len(k.Fields)),
		Year:   strconv.Itoa(1950 + rand.Intn(75)),
	}
	for _, f := range k.Fields {
		if f.Name == "title" {
			in.Fields[f.Name] = fmt.Sprintf("%s Title %d - %s", k.Label, i+1, getRandomWord())
			continue
		}
		in.Fields[f.Name] = getRandomWord()
	}
	return in
}

func getRandomWord() string {
	words := []string{
		"Adventure", "Mystery", "Journey", "Discovery", "Secrets", "Dreams", "Hope",
		"Love", "War", "Peace", "Science", "Nature", "Technology", "History", "Future",
		"Past", "Present", "Reality", "Imagination", "Wisdom", "Life", "Death",
		"Light", "Darkness", "World", "Universe", "Time", "Space", "Mind", "Soul",
	}
	return words[rand.Intn(len(words))]
}
