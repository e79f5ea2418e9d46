package cmd

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/spf13/cobra"

	"github.com/agentic-research/structlink/internal/config"
	"github.com/agentic-research/structlink/internal/ingest"
	"github.com/agentic-research/structlink/internal/selection"
	"github.com/agentic-research/structlink/internal/structure"
)

// Version is stamped at build time.
var Version = "dev"

// options collects the persistent flags; set flags win over the config file.
type options struct {
	configPath      string
	records         string
	recordsPath     string
	associations    string
	fragments       string
	fragmentsFormat string
	scene           string
	context         string
	verbose         bool
}

// NewRootCmd builds the structlink command tree.
func NewRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "structlink",
		Short:         "Link model structure records to renderable objects",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	f := root.PersistentFlags()
	f.StringVarP(&opts.configPath, "config", "c", "", "Path to HCL config (default ~/.agentic-research/structlink/structlink.hcl)")
	f.StringVarP(&opts.records, "records", "r", "", "Path to structure records (JSON)")
	f.StringVar(&opts.recordsPath, "records-path", "", "JSONPath selecting the record array")
	f.StringVarP(&opts.associations, "associations", "a", "", "Path to association table (JSON)")
	f.StringVar(&opts.fragments, "fragments", "", "Path to fragment dataset (JSON or SQLite)")
	f.StringVar(&opts.fragmentsFormat, "fragments-format", "", "Fragment dataset format: json or sqlite")
	f.StringVar(&opts.scene, "scene", "", "Path to live scene snapshot (JSON)")
	f.StringVar(&opts.context, "context", "", "Viewer context: main or worker")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "Log build diagnostics")

	root.AddCommand(
		newBuildCmd(opts),
		newVerifyCmd(opts),
		newOwnerCmd(opts),
		newExpandCmd(opts),
		newServeCmd(opts),
		newFragmentsCmd(),
	)
	return root
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// resolveConfig merges the config file with explicitly set flags.
func (o *options) resolveConfig() (*config.Config, error) {
	var cfg *config.Config
	var err error
	if o.configPath != "" {
		cfg, err = config.Load(o.configPath)
	} else {
		var path string
		if path, err = config.DefaultPath(); err == nil {
			cfg, err = config.LoadOptional(path)
		}
	}
	if err != nil {
		return nil, err
	}

	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&cfg.Records, o.records)
	set(&cfg.RecordsPath, o.recordsPath)
	set(&cfg.Associations, o.associations)
	set(&cfg.Scene, o.scene)
	set(&cfg.Context, o.context)
	if o.fragments != "" {
		cfg.Fragments = &config.Fragments{Path: o.fragments, Format: o.fragmentsFormat}
	} else if o.fragmentsFormat != "" && cfg.Fragments != nil {
		cfg.Fragments.Format = o.fragmentsFormat
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// session is one loaded asset wired to a Linker.
type session struct {
	cfg     *config.Config
	forest  *structure.Forest
	holder  *selection.Holder
	linker  *selection.Linker
	closers []io.Closer
}

func (s *session) Close() {
	for _, c := range s.closers {
		_ = c.Close()
	}
}

// openSession loads records, associations, scene and fragments and builds
// the forest.
func (o *options) openSession() (*session, error) {
	cfg, err := o.resolveConfig()
	if err != nil {
		return nil, err
	}
	if cfg.Records == "" {
		return nil, fmt.Errorf("no records given (use --records or the config file)")
	}

	fsys := osfs.New("/")

	recordsFile, err := filepath.Abs(cfg.Records)
	if err != nil {
		return nil, err
	}
	raw, err := ingest.LoadRecords(fsys, recordsFile, cfg.RecordsPath)
	if err != nil {
		return nil, fmt.Errorf("load records: %w", err)
	}

	var table structure.AssociationTable
	if cfg.Associations != "" {
		p, err := filepath.Abs(cfg.Associations)
		if err != nil {
			return nil, err
		}
		if table, err = ingest.LoadAssociations(fsys, p); err != nil {
			return nil, fmt.Errorf("load associations: %w", err)
		}
	}

	forest, err := structure.Build(raw, table)
	if err != nil {
		return nil, err
	}
	if o.verbose {
		for _, d := range forest.Diagnostics {
			log.Printf("build: %s", d)
		}
	}

	s := &session{cfg: cfg, forest: forest, holder: selection.NewHolder(forest)}

	scene := selection.NewMemoryScene()
	if cfg.Scene != "" {
		p, err := filepath.Abs(cfg.Scene)
		if err != nil {
			return nil, err
		}
		objects, err := ingest.LoadScene(fsys, p)
		if err != nil {
			return nil, fmt.Errorf("load scene: %w", err)
		}
		for _, obj := range objects {
			scene.Add(obj)
		}
	}

	var frags selection.FragmentSource
	if cfg.Fragments != nil && cfg.Fragments.Path != "" {
		p, err := filepath.Abs(cfg.Fragments.Path)
		if err != nil {
			return nil, err
		}
		switch cfg.FragmentsFormat() {
		case config.FormatSQLite:
			db, err := ingest.OpenSQLiteFragments(p)
			if err != nil {
				return nil, fmt.Errorf("open fragments: %w", err)
			}
			s.closers = append(s.closers, db)
			frags = db
		default:
			js, err := ingest.LoadFragmentsJSON(fsys, p)
			if err != nil {
				return nil, fmt.Errorf("load fragments: %w", err)
			}
			frags = js
		}
	}

	s.linker = selection.NewLinker(selection.Context(cfg.Context), s.holder, scene, frags)
	return s, nil
}
