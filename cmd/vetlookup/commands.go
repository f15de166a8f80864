package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/giygas/vetref/data"
	"github.com/giygas/vetref/datasetparser/entities"
	"github.com/giygas/vetref/interfaces"
	"github.com/giygas/vetref/render"
	"github.com/giygas/vetref/report"
	"github.com/giygas/vetref/session"
	"github.com/giygas/vetref/validation"
)

const nothingFound = "Ничего не найдено"

// App is what every subcommand works on
type App struct {
	store     *data.DataContainer
	renderer  *render.Renderer
	validator interfaces.DataValidator
	sender    interfaces.ReportSender
}

func NewApp(store *data.DataContainer, sender interfaces.ReportSender) *App {
	return &App{
		store:     store,
		renderer:  render.NewRenderer(store),
		validator: validation.NewDataValidator(),
		sender:    sender,
	}
}

func (a *App) view() *session.View {
	return session.NewView(a.store, a.renderer)
}

// LoadFunc builds the App; it runs once, before the first subcommand
type LoadFunc func(ctx context.Context) (*App, error)

type rootOptions struct {
	output string
}

// NewRootCmd creates the vetlookup command tree writing to out
func NewRootCmd(load LoadFunc, out io.Writer) *cobra.Command {
	opts := &rootOptions{}
	var app *App

	root := &cobra.Command{
		Use:           "vetlookup",
		Short:         "Look up veterinary drugs in the VetLek and Vidal datasets",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.output != "text" && opts.output != "json" {
				return fmt.Errorf("output must be text or json, got %q", opts.output)
			}
			var err error
			app, err = load(cmd.Context())
			return err
		},
	}
	root.SetOut(out)
	root.PersistentFlags().StringVarP(&opts.output, "output", "o", "text", "Output format: text|json")

	getApp := func() *App { return app }
	root.AddCommand(
		newSearchCmd(getApp, opts),
		newShowCmd(getApp, opts),
		newMonographCmd(getApp, opts),
		newReportCmd(getApp, opts),
	)
	return root
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func sourceList(e *entities.MergedEntry) string {
	var names []string
	for _, s := range e.Sources() {
		names = append(names, string(s))
	}
	return strings.Join(names, ", ")
}

type searchResult struct {
	Key     string            `json:"key"`
	Name    string            `json:"name"`
	Sources []entities.Source `json:"sources"`
}

func newSearchCmd(app func() *App, opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "search QUERY",
		Short: "Search both datasets by name or content",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app()
			query := strings.Join(args, " ")
			if err := a.validator.ValidateQuery(query); err != nil {
				return err
			}

			results, err := a.view().Search(query)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if opts.output == "json" {
				list := make([]searchResult, 0, len(results))
				for _, e := range results {
					list = append(list, searchResult{Key: e.Key, Name: e.Name(), Sources: e.Sources()})
				}
				return writeJSON(out, list)
			}

			if len(results) == 0 {
				fmt.Fprintln(out, nothingFound)
				return nil
			}
			for i, e := range results {
				fmt.Fprintf(out, "%d. %s [%s]\n", i+1, e.Name(), sourceList(e))
			}
			return nil
		},
	}
}

func newShowCmd(app func() *App, opts *rootOptions) *cobra.Command {
	var (
		pick       int
		source     string
		asHTML     bool
		categories []string
	)

	cmd := &cobra.Command{
		Use:   "show QUERY",
		Short: "Render one search result",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app()
			query := strings.Join(args, " ")
			if err := a.validator.ValidateQuery(query); err != nil {
				return err
			}

			view := a.view()
			results, err := view.Search(query)
			if err != nil {
				return err
			}
			if len(results) == 0 {
				return errors.New(nothingFound)
			}
			if _, err := view.Select(pick - 1); err != nil {
				return err
			}

			if source != "" {
				src, ok := entities.ParseSource(source)
				if !ok {
					return fmt.Errorf("source must be vetlek or vidal, got %q", source)
				}
				if err := view.SwitchSource(src); err != nil {
					return err
				}
			}
			for _, c := range categories {
				view.ToggleCategory(c, true)
			}

			content, err := view.Render(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch {
			case opts.output == "json":
				return writeJSON(out, content)
			case asHTML:
				_, err = fmt.Fprintln(out, content.HTML())
				return err
			default:
				_, err = fmt.Fprintln(out, render.PlainText(content.HTML()))
				return err
			}
		},
	}

	cmd.Flags().IntVarP(&pick, "pick", "n", 1, "Result number to show")
	cmd.Flags().StringVarP(&source, "source", "s", "", "Source to show: vetlek|vidal (default: vetlek when present)")
	cmd.Flags().BoolVar(&asHTML, "html", false, "Print HTML instead of plain text")
	cmd.Flags().StringSliceVar(&categories, "category", nil, "Enabled categories")
	return cmd
}

func newMonographCmd(app func() *App, opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "monograph NAME",
		Short: "List monograph corpus articles whose heading matches NAME",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app()
			name := strings.Join(args, " ")

			index := a.store.GetMonographs()
			if index == nil {
				return errors.New("monograph corpus is not configured")
			}
			corpus, err := index.Corpus(cmd.Context())
			if err != nil {
				return err
			}
			candidates := corpus.Candidates(name)

			out := cmd.OutOrStdout()
			if opts.output == "json" {
				return writeJSON(out, candidates)
			}
			if len(candidates) == 0 {
				fmt.Fprintln(out, nothingFound)
				return nil
			}
			for _, c := range candidates {
				mark := " "
				if c.Relevant {
					mark = "*"
				}
				fmt.Fprintf(out, "%s %s\t%s\n", mark, c.ID, c.Heading)
			}
			return nil
		},
	}
}

func newReportCmd(app func() *App, opts *rootOptions) *cobra.Command {
	var (
		drug    string
		comment string
		dryRun  bool
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Report an error in the reference",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app()

			view := a.view()
			if drug != "" {
				results, err := view.Search(drug)
				if err != nil {
					return err
				}
				if len(results) > 0 {
					view.Open(results[0])
				}
			}

			msg, err := a.sender.NewMessage(view.ReportContext(), comment)
			if err != nil {
				return err
			}

			sent := false
			if !dryRun {
				switch err := a.sender.Send(cmd.Context(), msg); {
				case err == nil:
					sent = true
				case errors.Is(err, report.ErrDisabled):
				default:
					return err
				}
			}

			out := cmd.OutOrStdout()
			if opts.output == "json" {
				return writeJSON(out, struct {
					report.Message
					Sent bool `json:"sent"`
				}{msg, sent})
			}
			fmt.Fprintln(out, msg.Text)
			fmt.Fprintln(out, msg.URL)
			return nil
		},
	}

	cmd.Flags().StringVar(&drug, "drug", "", "Drug the report is about (default: the search screen)")
	cmd.Flags().StringVar(&comment, "comment", "", "What is wrong")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the message without sending it")
	_ = cmd.MarkFlagRequired("comment")
	return cmd
}
