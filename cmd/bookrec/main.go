// Command bookrec 加载书目、训练模型并在终端回答查询。
//
//	bookrec [-config bookrec.yaml] authors
//	bookrec author "J.K. Rowling"
//	bookrec rating 4.5
//	bookrec recommend [-n 5] 1
//	bookrec expr 'book.num_pages < 300 && book.average_rating >= 4.2'
//	bookrec popular [-n 10]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/rushteam/bookrec/config"
	"github.com/rushteam/bookrec/core"
	"github.com/rushteam/bookrec/engine"
	"github.com/rushteam/bookrec/pkg/logging"
)

const usage = `usage: bookrec [-config file] <command> [args]

commands:
  authors               list every author
  ratings               list every distinct average rating
  author <name>         books by exactly this author
  rating <min>          books rated at least min
  expr <cel>            books matching a CEL expression over book.*
  recommend [-n N] <id> books similar to the given book
  popular [-n N]        most rated books
`

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("bookrec", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { fmt.Fprint(stderr, usage) }
	cfgPath := fs.String("config", "", "YAML settings file (BOOKREC_* env vars override)")
	csvPath := fs.String("catalog", "", "catalog CSV, overrides catalog.path")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return 2
	}

	settings, err := config.LoadSettings(*cfgPath)
	if err != nil {
		fmt.Fprintln(stderr, "config:", err)
		return 1
	}
	if *csvPath != "" {
		settings.Catalog.Path = *csvPath
	}
	logging.Init(settings.LogConfig())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	e, err := engine.Open(ctx, *settings)
	if err != nil {
		logging.Error().Err(err).Str("catalog", settings.Catalog.Path).Msg("engine startup failed")
		fmt.Fprintln(stderr, "startup:", err)
		return 1
	}
	defer e.Close()

	cmd, rest := fs.Arg(0), fs.Args()[1:]
	if err := dispatch(ctx, e, cmd, rest, stdout); err != nil {
		var ue usageError
		if errors.As(err, &ue) {
			fmt.Fprintln(stderr, err)
			fmt.Fprint(stderr, usage)
			return 2
		}
		fmt.Fprintln(stderr, describe(err))
		return 1
	}
	return 0
}

type usageError string

func (e usageError) Error() string { return string(e) }

func dispatch(ctx context.Context, e *engine.Engine, cmd string, args []string, w io.Writer) error {
	switch cmd {
	case "authors":
		for _, a := range e.Authors() {
			fmt.Fprintln(w, a)
		}
		return nil

	case "ratings":
		for _, r := range e.RatingOptions() {
			fmt.Fprintln(w, strconv.FormatFloat(r, 'f', -1, 64))
		}
		return nil

	case "author":
		if len(args) == 0 {
			return usageError("author: missing name")
		}
		res, err := e.FilterByAuthor(strings.Join(args, " "))
		if err != nil {
			return err
		}
		printFilter(w, res)
		return nil

	case "rating":
		if len(args) != 1 {
			return usageError("rating: expected one threshold")
		}
		res, err := e.FilterByRating(args[0])
		if err != nil {
			return err
		}
		printFilter(w, res)
		return nil

	case "expr":
		if len(args) == 0 {
			return usageError("expr: missing expression")
		}
		res, err := e.FilterByExpr(ctx, strings.Join(args, " "))
		if err != nil {
			return err
		}
		printFilter(w, res)
		return nil

	case "recommend":
		fs := flag.NewFlagSet("recommend", flag.ContinueOnError)
		fs.SetOutput(io.Discard)
		n := fs.Int("n", 0, "number of recommendations, 0 means the configured default")
		if err := fs.Parse(args); err != nil {
			return usageError("recommend: " + err.Error())
		}
		if fs.NArg() != 1 {
			return usageError("recommend: expected one book id")
		}
		seed, err := strconv.ParseInt(fs.Arg(0), 10, 64)
		if err != nil {
			return usageError(fmt.Sprintf("recommend: invalid book id %q", fs.Arg(0)))
		}
		var items []*core.Item
		if *n == 0 {
			items, err = e.RecommendDefault(ctx, seed)
		} else {
			items, err = e.Recommend(ctx, seed, *n)
		}
		if err != nil {
			return err
		}
		printItems(w, items, "SCORE")
		return nil

	case "popular":
		fs := flag.NewFlagSet("popular", flag.ContinueOnError)
		fs.SetOutput(io.Discard)
		n := fs.Int("n", e.Settings().Query.PageSize, "number of books")
		if err := fs.Parse(args); err != nil {
			return usageError("popular: " + err.Error())
		}
		items, err := e.Popular(ctx, *n)
		if err != nil {
			return err
		}
		printItems(w, items, "RATINGS")
		return nil
	}
	return usageError(fmt.Sprintf("unknown command %q", cmd))
}

func describe(err error) string {
	switch {
	case core.IsNotFound(err):
		return "not found: " + err.Error()
	case core.IsInvalidArgument(err):
		return "invalid input: " + err.Error()
	case core.IsNumerical(err):
		return "model error: " + err.Error()
	}
	return "error: " + err.Error()
}

func printFilter(w io.Writer, res engine.FilterResult) {
	if !res.Found {
		fmt.Fprintln(w, "No books found.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tAUTHORS\tRATING\tPAGES")
	for _, b := range res.Books {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%.2f\t%d\n", b.ID, b.Title, b.Authors, b.AverageRating, b.NumPages)
	}
	tw.Flush()
	if res.Total > len(res.Books) {
		fmt.Fprintf(w, "showing %d of %d\n", len(res.Books), res.Total)
	}
}

func printItems(w io.Writer, items []*core.Item, scoreCol string) {
	if len(items) == 0 {
		fmt.Fprintln(w, "No books found.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "ID\tTITLE\tAUTHORS\t%s\n", scoreCol)
	for _, it := range items {
		b, _ := core.BookOf(it)
		fmt.Fprintf(tw, "%d\t%s\t%s\t%.4g\n", it.ID, b.Title, b.Authors, it.Score)
	}
	tw.Flush()
}
