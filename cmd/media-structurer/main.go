// Command media-structurer maintains a perceptual-hash library over
// local photo and video collections: it ingests media files into a
// SQLite store, reports duplicate groups, and resolves them.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/Resurrectum/media-structurer/internal/config"
	"github.com/Resurrectum/media-structurer/internal/database"
	"github.com/Resurrectum/media-structurer/internal/fingerprint"
	"github.com/Resurrectum/media-structurer/internal/ingest"
	"github.com/Resurrectum/media-structurer/internal/logging"
	"github.com/Resurrectum/media-structurer/internal/report"
	"github.com/Resurrectum/media-structurer/internal/resolver"
)

var errWrongUsage = errors.New("wrong usage")

// env is the shared wiring every command needs.
type env struct {
	cfg   *config.Config
	log   *zap.SugaredLogger
	store *database.Store
}

var commands = map[string]struct {
	handler  func(*env, *flag.FlagSet, []string) error
	usage    string
	function string
}{
	"ingest":  {cmdIngest, "[ROOT...]", "Scan roots and fingerprint new or changed media files."},
	"report":  {cmdReport, "", "Report duplicate groups, optionally exporting them to CSV."},
	"resolve": {cmdResolve, "", "Resolve image duplicate groups, dry run by default."},
	"stats":   {cmdStats, "", "Print library statistics."},
}

func usage() {
	f := flag.CommandLine.Output()
	fmt.Fprintf(f, "Usage: %s [OPTION...] COMMAND [ARG...]\n", os.Args[0])
	flag.PrintDefaults()

	keys := []string{}
	for key := range commands {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	fmt.Fprintf(f, "\nCommands:\n")
	for _, key := range keys {
		fmt.Fprintf(f, "  %s [OPTION...] %s\n    \t%s\n",
			key, commands[key].usage, commands[key].function)
	}
}

func main() {
	configPath := flag.String("config", "media-structurer.toml", "path to configuration file")

	flag.Usage = usage
	flag.Parse()
	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(2)
	}

	cmd, ok := commands[flag.Arg(0)]
	if !ok {
		fmt.Fprintf(flag.CommandLine.Output(), "unknown command: %s\n", flag.Arg(0))
		flag.Usage()
		os.Exit(2)
	}

	fs := flag.NewFlagSet(flag.Arg(0), flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(),
			"Usage: %s [OPTION...] %s\n%s\n",
			fs.Name(), cmd.usage, cmd.function)
		fs.PrintDefaults()
	}

	e, err := setup(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer e.store.Close()
	defer e.log.Sync()

	err = cmd.handler(e, fs, flag.Args()[1:])
	if errors.Is(err, errWrongUsage) {
		fs.Usage()
		os.Exit(2)
	} else if err != nil {
		e.log.Errorf("%v", err)
		os.Exit(1)
	}
}

func setup(configPath string) (*env, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	log, err := logging.New(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	store, err := database.Open(context.Background(), cfg.DatabasePath, log)
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, log: log, store: store}, nil
}

func cmdIngest(e *env, fs *flag.FlagSet, args []string) error {
	cleanup := fs.Bool("cleanup", false, "remove records for files deleted from disk before scanning")
	rebuild := fs.Bool("rebuild", false, "discard all records and rebuild the store from scratch")
	if err := fs.Parse(args); err != nil {
		return err
	}

	roots := fs.Args()
	if len(roots) == 0 {
		roots = e.cfg.SourceDirs
	}
	if len(roots) == 0 {
		fmt.Fprintln(os.Stderr, "no source roots given; pass them as arguments or set source_dirs in the config")
		return errWrongUsage
	}

	ctx := context.Background()
	r := report.New(os.Stdout)

	before, err := e.store.Stats(ctx)
	if err != nil {
		return err
	}
	r.PrintStats(before)

	tool := fingerprint.NewFFmpegTool(e.cfg.ProbeTimeout, e.cfg.ExtractTimeout)
	extractor := fingerprint.New(tool, e.log)

	sum, err := ingest.New(e.store, extractor, e.cfg.Workers, e.log).
		Run(ctx, roots, ingest.Options{Prune: *cleanup, Reset: *rebuild})
	if err != nil {
		return err
	}

	fmt.Printf("Planned: %d  Succeeded: %d  Failed: %d", sum.Planned, sum.Succeeded, sum.Failed)
	if *cleanup {
		fmt.Printf("  Pruned: %d", sum.Pruned)
	}
	fmt.Println()

	after, err := e.store.Stats(ctx)
	if err != nil {
		return err
	}
	r.PrintStats(after)
	return nil
}

func cmdReport(e *env, fs *flag.FlagSet, args []string) error {
	csvPath := fs.String("csv", "", "export duplicate groups to this CSV file")
	verbose := fs.Bool("verbose", false, "show full file paths")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return errWrongUsage
	}

	ctx := context.Background()
	r := report.New(os.Stdout)

	stats, err := e.store.Stats(ctx)
	if err != nil {
		return err
	}
	r.PrintStats(stats)

	if stats.DuplicateFiles == 0 {
		fmt.Println("\nNo duplicates found.")
		return nil
	}

	groups, err := e.store.DuplicateGroups(ctx)
	if err != nil {
		return err
	}
	r.PrintDuplicates(groups, *verbose)

	if *csvPath != "" {
		f, err := os.Create(*csvPath)
		if err != nil {
			return fmt.Errorf("creating %s: %w", *csvPath, err)
		}
		defer f.Close()
		if err := r.WriteCSV(f, groups); err != nil {
			return err
		}
		fmt.Printf("\nDuplicates exported to: %s\n", *csvPath)
	}
	return nil
}

func cmdResolve(e *env, fs *flag.FlagSet, args []string) error {
	execute := fs.Bool("execute", false, "actually delete files (default is dry run)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return errWrongUsage
	}

	if *execute && !confirm("Files will be permanently deleted. Continue? (yes/no): ") {
		fmt.Println("Aborted.")
		return nil
	}
	if !*execute {
		fmt.Println("Dry run, no files will be deleted. Use -execute to delete.")
	}

	ctx := context.Background()
	groups, err := e.store.DuplicateGroups(ctx)
	if err != nil {
		return err
	}

	decisions, sum := resolver.New(e.log).Run(groups, *execute)

	for i, dec := range decisions {
		fmt.Printf("\nGroup #%d\n", i+1)
		fmt.Printf("  Keeping (%s): %s\n", dec.Reason, dec.Keep.Path)
		for _, d := range dec.Deleted {
			verb := "Would delete"
			if *execute {
				verb = "Deleted"
			}
			fmt.Printf("  %s: %s (%d bytes)\n", verb, d.Path, d.Size)
		}
	}

	fmt.Printf("\nGroups examined: %d  Resolved: %d  Files: %d  Space: %d bytes\n",
		sum.GroupsExamined, sum.GroupsResolved, sum.FilesDeleted, sum.SpaceFreed)
	if *execute && sum.FilesDeleted > 0 {
		fmt.Println("Run 'ingest -cleanup' to drop the deleted files' records.")
	}
	return nil
}

func cmdStats(e *env, fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return errWrongUsage
	}

	stats, err := e.store.Stats(context.Background())
	if err != nil {
		return err
	}
	report.New(os.Stdout).PrintStats(stats)
	return nil
}

func confirm(prompt string) bool {
	fmt.Print(prompt)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false
	}
	return strings.TrimSpace(strings.ToLower(line)) == "yes"
}
