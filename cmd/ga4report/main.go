package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/AngelCh415/GA4_REPORT/internal/ingest"
	"github.com/AngelCh415/GA4_REPORT/internal/report"
)

const usage = `Usage: ga4report [options] [<file>]

Reads a GA4 CSV export (Windsor AI, organic traffic only) and writes an
HTML page with the monthly account summary, the top 10 pages per month
per account and one users/conversions chart per account.

Arguments:
  <file>  CSV file with account_name, date, users, conversions (key_events),
          page_path and user_conversion_rate columns [default: stdin]

Options:
  -title   Title and header of the resulting HTML page.
           [default: GA4 Monthly Report (Organic Traffic)]
  -output  Output file [default: stdout]

Examples:
  ga4report export.csv > report.html
  cat export.csv | ga4report -output report.html
`

func main() {
	fs := flag.NewFlagSet("ga4report", flag.ExitOnError)
	title := fs.String("title", "GA4 Monthly Report (Organic Traffic)", "Title and header of the resulting HTML page")
	output := fs.String("output", "stdout", "Output file")
	fs.Usage = func() { fmt.Fprint(os.Stderr, usage+"\n") }
	fs.Parse(os.Args[1:])

	input := "stdin"
	if fs.NArg() > 0 {
		input = fs.Arg(0)
	}

	log := slog.New(slog.NewTextHandler(os.Stderr, nil))
	if err := run(input, *output, *title, log); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(input, output, title string, log *slog.Logger) error {
	in, err := open(input)
	if err != nil {
		return err
	}
	defer in.Close()

	ds, err := ingest.Load(in)
	if err != nil {
		return err
	}
	rep, err := report.Build(ds)
	if err != nil {
		return err
	}
	log.Info("report built", slog.Int("rows", rep.Rows), slog.Int("accounts", len(rep.Charts)))

	out, err := create(output)
	if err != nil {
		return err
	}
	defer out.Close()
	return report.WriteHTML(out, report.Page{Title: title, Report: rep})
}

func open(name string) (io.ReadCloser, error) {
	if name == "stdin" || name == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	return os.Open(name)
}

func create(name string) (io.WriteCloser, error) {
	if name == "stdout" || name == "-" {
		return nopWriteCloser{os.Stdout}, nil
	}
	return os.Create(name)
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }
