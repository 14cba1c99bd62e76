// Command weavelab applies weave patterns to images and manages a local
// pattern catalog.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"golang.org/x/term"

	weave "github.com/KartikMangalpalli/weave-image-lab"
	"github.com/KartikMangalpalli/weave-image-lab/catalog"
	"github.com/KartikMangalpalli/weave-image-lab/imageio"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

type options struct {
	in      string
	out     string
	pattern string
	name    string
	catalog string
	workers int
	quality int

	list       bool
	save       bool
	delete     bool
	exportPath string
	importPath string

	verbose bool
}

// run parses argv and executes one mode. Exit codes: 0 on success, 1 on
// usage or processing errors, 130 when the context is cancelled.
func run(ctx context.Context, argv []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("weavelab", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var opts options
	fs.StringVar(&opts.in, "in", "", "input image (png, jpg, bmp)")
	fs.StringVar(&opts.out, "out", "", "output image; format chosen by extension")
	fs.StringVar(&opts.pattern, "pattern", "", `inline pattern, e.g. "3,1,2"`)
	fs.StringVar(&opts.name, "name", "", "catalog pattern name")
	fs.StringVar(&opts.catalog, "catalog", "", "catalog file (JSON)")
	fs.IntVar(&opts.workers, "workers", 1, "worker count; 0 uses all CPUs")
	fs.IntVar(&opts.quality, "quality", 0, "JPEG quality 1-100 (0 = encoder default)")
	fs.BoolVar(&opts.list, "list", false, "list catalog patterns")
	fs.BoolVar(&opts.save, "save", false, "save -pattern under -name in the catalog")
	fs.BoolVar(&opts.delete, "delete", false, "delete the catalog pattern named -name")
	fs.StringVar(&opts.exportPath, "export", "", "export the catalog to a bundle file")
	fs.StringVar(&opts.importPath, "import", "", "import a bundle file into the catalog")
	fs.BoolVar(&opts.verbose, "v", false, "verbose logging")

	fs.Usage = func() {
		w := fs.Output()
		fmt.Fprint(w, "weavelab applies weave patterns to images.\n\n")
		fmt.Fprint(w, "Usage:\n")
		fmt.Fprint(w, "  weavelab -in src.png -out dst.png -pattern \"3,1,2\" [-workers N]\n")
		fmt.Fprint(w, "  weavelab -in src.png -out dst.png -catalog pats.json -name braid\n")
		fmt.Fprint(w, "  weavelab -catalog pats.json -list\n")
		fmt.Fprint(w, "  weavelab -catalog pats.json -save -name braid -pattern \"3,1,2\"\n")
		fmt.Fprint(w, "  weavelab -catalog pats.json -delete -name braid\n")
		fmt.Fprint(w, "  weavelab -catalog pats.json -export patterns.bundle\n")
		fmt.Fprint(w, "  weavelab -catalog pats.json -import patterns.bundle\n")
		fmt.Fprint(w, "\nFlags:\n")
		fs.PrintDefaults()
	}

	if len(argv) == 0 {
		fs.Usage()
		return 0
	}
	if err := fs.Parse(argv); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 1
	}

	if opts.verbose {
		weave.SetLogger(slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	if err := dispatch(ctx, &opts, stdout, stderr); err != nil {
		if errors.Is(err, context.Canceled) {
			fmt.Fprintln(stderr, "weavelab: interrupted")
			return 130
		}
		fmt.Fprintln(stderr, "weavelab:", err)
		return 1
	}
	return 0
}

func dispatch(ctx context.Context, opts *options, stdout, stderr io.Writer) error {
	modes := 0
	for _, on := range []bool{opts.list, opts.save, opts.delete, opts.exportPath != "", opts.importPath != ""} {
		if on {
			modes++
		}
	}
	if modes > 1 {
		return errors.New("pick one of -list, -save, -delete, -export, -import")
	}

	switch {
	case opts.list:
		return cmdList(ctx, opts, stdout)
	case opts.save:
		return cmdSave(ctx, opts, stdout)
	case opts.delete:
		return cmdDelete(ctx, opts, stdout)
	case opts.exportPath != "":
		return cmdExport(ctx, opts, stdout)
	case opts.importPath != "":
		return cmdImport(ctx, opts, stdout, stderr)
	default:
		return cmdApply(ctx, opts, stdout, stderr)
	}
}

func openCatalog(opts *options) (catalog.Store, error) {
	if opts.catalog == "" {
		return nil, errors.New("-catalog is required for this mode")
	}
	return catalog.OpenFileStore(opts.catalog)
}

func findByName(ctx context.Context, store catalog.Store, name string) (catalog.Definition, error) {
	want := catalog.NormalizeName(name)
	defs, err := store.List(ctx)
	if err != nil {
		return catalog.Definition{}, err
	}
	for _, d := range defs {
		if d.Name == want {
			return d, nil
		}
	}
	return catalog.Definition{}, fmt.Errorf("no pattern named %q in catalog", name)
}

func joinInts(vals []int) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ",")
}

func cmdList(ctx context.Context, opts *options, stdout io.Writer) error {
	store, err := openCatalog(opts)
	if err != nil {
		return err
	}
	defs, err := store.List(ctx)
	if err != nil {
		return err
	}
	if len(defs) == 0 {
		fmt.Fprintln(stdout, "catalog is empty")
		return nil
	}

	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tSIZE\tSEQUENCE\tUPDATED")
	for _, d := range defs {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n",
			d.ID, d.Name, d.Size, joinInts(d.Sequence), d.UpdatedAt.Format(time.RFC3339))
	}
	return tw.Flush()
}

func cmdSave(ctx context.Context, opts *options, stdout io.Writer) error {
	if opts.name == "" {
		return errors.New("-save needs -name")
	}
	pat, err := weave.ParsePattern(opts.pattern)
	if err != nil {
		return err
	}
	store, err := openCatalog(opts)
	if err != nil {
		return err
	}

	def, err := store.Create(ctx, catalog.Definition{
		Name:     opts.name,
		Size:     pat.Size(),
		Sequence: pat.Sequence(),
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "saved %q (%s) as %s\n", def.Name, pat, def.ID)
	return nil
}

func cmdDelete(ctx context.Context, opts *options, stdout io.Writer) error {
	if opts.name == "" {
		return errors.New("-delete needs -name")
	}
	store, err := openCatalog(opts)
	if err != nil {
		return err
	}
	def, err := findByName(ctx, store, opts.name)
	if err != nil {
		return err
	}
	if err := store.Delete(ctx, def.ID); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "deleted %q\n", def.Name)
	return nil
}

func cmdExport(ctx context.Context, opts *options, stdout io.Writer) error {
	store, err := openCatalog(opts)
	if err != nil {
		return err
	}
	defs, err := store.List(ctx)
	if err != nil {
		return err
	}

	f, err := os.Create(opts.exportPath)
	if err != nil {
		return fmt.Errorf("create bundle: %w", err)
	}
	if err := catalog.ExportBundle(f, defs); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "exported %d patterns to %s\n", len(defs), opts.exportPath)
	return nil
}

func cmdImport(ctx context.Context, opts *options, stdout, stderr io.Writer) error {
	store, err := openCatalog(opts)
	if err != nil {
		return err
	}

	f, err := os.Open(opts.importPath)
	if err != nil {
		return fmt.Errorf("open bundle: %w", err)
	}
	defer f.Close()

	defs, err := catalog.ImportBundle(f)
	if err != nil {
		return err
	}

	imported, skipped := 0, 0
	for _, d := range defs {
		_, err := store.Create(ctx, catalog.Definition{
			Name:     d.Name,
			Size:     d.Size,
			Sequence: d.Sequence,
		})
		switch {
		case errors.Is(err, catalog.ErrNameTaken):
			fmt.Fprintf(stderr, "weavelab: skipping %q: name already in catalog\n", d.Name)
			skipped++
		case err != nil:
			return err
		default:
			imported++
		}
	}
	fmt.Fprintf(stdout, "imported %d patterns from %s", imported, opts.importPath)
	if skipped > 0 {
		fmt.Fprintf(stdout, " (%d skipped)", skipped)
	}
	fmt.Fprintln(stdout)
	return nil
}

func cmdApply(ctx context.Context, opts *options, stdout, stderr io.Writer) error {
	if opts.in == "" || opts.out == "" {
		return errors.New("apply mode needs -in and -out (or pick a catalog mode)")
	}

	pat, err := resolvePattern(ctx, opts)
	if err != nil {
		return err
	}

	src, format, err := imageio.Load(opts.in)
	if err != nil {
		return err
	}
	weave.Logger().Debug("image loaded",
		"path", opts.in,
		"format", format.String(),
		"width", src.Width(),
		"height", src.Height(),
	)

	engineOpts := []weave.Option{weave.WithWorkers(opts.workers)}
	var bar *progressBar
	if isTerminal(stderr) {
		bar = &progressBar{w: stderr}
		engineOpts = append(engineOpts, weave.WithProgress(bar.update))
	}

	out, err := weave.NewEngine(engineOpts...).Apply(ctx, src, pat)
	if bar != nil {
		bar.finish()
	}
	if err != nil {
		return err
	}

	var encOpts []imageio.EncodeOption
	if opts.quality > 0 {
		encOpts = append(encOpts, imageio.WithJPEGQuality(opts.quality))
	}
	if err := imageio.Save(opts.out, out, encOpts...); err != nil {
		return err
	}

	fmt.Fprintf(stdout, "wrote %s (%dx%d, pattern %s)\n", opts.out, out.Width(), out.Height(), pat)
	return nil
}

// resolvePattern picks the inline -pattern or looks up -name in the
// catalog; exactly one source must be given.
func resolvePattern(ctx context.Context, opts *options) (*weave.Pattern, error) {
	switch {
	case opts.pattern != "" && opts.name != "":
		return nil, errors.New("use either -pattern or -name, not both")
	case opts.pattern != "":
		return weave.ParsePattern(opts.pattern)
	case opts.name != "":
		store, err := openCatalog(opts)
		if err != nil {
			return nil, err
		}
		def, err := findByName(ctx, store, opts.name)
		if err != nil {
			return nil, err
		}
		return def.Compile()
	default:
		return nil, errors.New("no pattern given; use -pattern or -name")
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// progressBar redraws a single status line. Updates arrive serialized
// from the engine.
type progressBar struct {
	w     io.Writer
	drawn bool
}

func (b *progressBar) update(p weave.Progress) {
	fmt.Fprintf(b.w, "\rweaving %3.0f%% (%d/%d slices)", p.Ratio()*100, p.Done, p.Total)
	b.drawn = true
}

func (b *progressBar) finish() {
	if b.drawn {
		fmt.Fprintln(b.w)
	}
}
