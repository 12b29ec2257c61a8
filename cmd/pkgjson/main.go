package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/quantmind-br/pkgjson-go/internal/cache"
	"github.com/quantmind-br/pkgjson-go/internal/config"
	"github.com/quantmind-br/pkgjson-go/internal/pkgjson"
	"github.com/quantmind-br/pkgjson-go/internal/utils"
	"github.com/quantmind-br/pkgjson-go/pkg/version"
)

var (
	cfgFile string
	verbose bool
	log     *utils.Logger
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "pkgjson",
	Short: "Inspect npm package.json manifests",
	Long: `pkgjson parses npm package.json manifests with Node.js-compatible
semantics: conditional exports sugar, the workspace protocol, npm aliasing
and module-kind sensitive entrypoint selection.`,
	Version: version.Short(),
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.pkgjson/config.yaml)")
	rootCmd.PersistentFlags().StringP("format", "f", "json", "Output format (json or yaml)")
	rootCmd.PersistentFlags().Bool("no-cache", false, "Disable the on-disk manifest cache")
	rootCmd.PersistentFlags().String("cache-dir", "", "Manifest cache directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")

	// Bind flags to viper
	_ = viper.BindPFlag("output.format", rootCmd.PersistentFlags().Lookup("format"))
	_ = viper.BindPFlag("cache.directory", rootCmd.PersistentFlags().Lookup("cache-dir"))

	// Add subcommands
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(depsCmd)
	rootCmd.AddCommand(mainCmd)
	rootCmd.AddCommand(versionCmd)
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}
}

// setup initializes the logger and loads configuration, applying the
// cache-disabling flag on top.
func setup(cmd *cobra.Command) (*config.Config, error) {
	logLevel := "info"
	if verbose {
		logLevel = "debug"
	}
	log = utils.NewLogger(utils.LoggerOptions{
		Level:   logLevel,
		Format:  "pretty",
		Verbose: verbose,
	}).WithComponent("cli")

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if noCache, _ := cmd.Flags().GetBool("no-cache"); noCache {
		cfg.Cache.Enabled = false
	}
	return cfg, nil
}

// loadManifest loads the manifest at path, going through the on-disk store
// when caching is enabled. Store entries are keyed by path plus file
// metadata, so a modified file always re-parses.
func loadManifest(cfg *config.Config, path string) (*pkgjson.PackageJSON, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	if !cfg.Cache.Enabled {
		return pkgjson.Load(abs, pkgjson.OSFileSystem{}, nil)
	}

	info, err := os.Stat(abs)
	if err != nil {
		// Let the loader report the read failure with full context.
		return pkgjson.Load(abs, pkgjson.OSFileSystem{}, nil)
	}

	store, err := cache.NewStore(cache.Options{Directory: cfg.Cache.Directory})
	if err != nil {
		log.Debug().Err(err).Msg("manifest store unavailable, parsing directly")
		return pkgjson.Load(abs, pkgjson.OSFileSystem{}, nil)
	}
	defer store.Close()

	key := cache.ManifestKey(abs, info)
	if data, err := store.Get(key); err == nil {
		if pkg, err := pkgjson.Parse(abs, string(data)); err == nil {
			log.Debug().Str("path", abs).Msg("manifest store hit")
			return pkg, nil
		}
	}

	pkg, err := pkgjson.Load(abs, pkgjson.OSFileSystem{}, nil)
	if err != nil {
		return nil, err
	}
	if data, err := json.Marshal(pkg); err == nil {
		if err := store.Set(key, data, 0); err != nil {
			log.Debug().Err(err).Msg("manifest store write failed")
		}
	}
	return pkg, nil
}

// render writes v as JSON or YAML.
func render(format string, v any) error {
	switch format {
	case "yaml":
		data, err := json.Marshal(v)
		if err != nil {
			return err
		}
		var tree any
		if err := json.Unmarshal(data, &tree); err != nil {
			return err
		}
		out, err := yaml.Marshal(tree)
		if err != nil {
			return err
		}
		fmt.Print(string(out))
		return nil
	default:
		out, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	}
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <package.json>",
	Short: "Parse a manifest and print its normalized form",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := setup(cmd)
		if err != nil {
			return err
		}
		pkg, err := loadManifest(cfg, args[0])
		if err != nil {
			return err
		}
		return render(cfg.Output.Format, pkg)
	},
}

// depReport is one dependency entry in the deps command output.
type depReport struct {
	Alias       string `json:"alias"`
	Kind        string `json:"kind,omitempty"`
	Name        string `json:"name,omitempty"`
	Requirement string `json:"requirement,omitempty"`
	Workspace   string `json:"workspace,omitempty"`
	Error       string `json:"error,omitempty"`
}

// depsOutput is the deps command output document.
type depsOutput struct {
	Dependencies    []depReport `json:"dependencies"`
	DevDependencies []depReport `json:"devDependencies"`
}

func formatDepEntry(alias string, entry *pkgjson.DepEntry) depReport {
	if entry.Err != nil {
		return depReport{Alias: alias, Error: entry.Err.Error()}
	}
	v := entry.Value
	switch v.Kind {
	case pkgjson.DepWorkspace:
		report := depReport{Alias: alias, Kind: "workspace"}
		switch v.Workspace {
		case pkgjson.WorkspaceTilde:
			report.Workspace = "~"
		case pkgjson.WorkspaceCaret:
			report.Workspace = "^"
		default:
			report.Workspace = v.RawReq
			report.Requirement = v.RawReq
		}
		return report
	default:
		return depReport{Alias: alias, Kind: "registry", Name: v.Name, Requirement: v.RawReq}
	}
}

func collectDeps(m *pkgjson.DepsMap) []depReport {
	reports := make([]depReport, 0, m.Len())
	m.Range(func(alias string, entry *pkgjson.DepEntry) bool {
		reports = append(reports, formatDepEntry(alias, entry))
		return true
	})
	return reports
}

var depsCmd = &cobra.Command{
	Use:   "deps <package.json>",
	Short: "Classify a manifest's dependency declarations",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := setup(cmd)
		if err != nil {
			return err
		}
		pkg, err := loadManifest(cfg, args[0])
		if err != nil {
			return err
		}
		resolved := pkg.ResolveDeps()
		out := depsOutput{
			Dependencies:    collectDeps(resolved.Dependencies),
			DevDependencies: collectDeps(resolved.DevDependencies),
		}
		return render(cfg.Output.Format, out)
	},
}

// parseModuleKind converts a --kind flag value.
func parseModuleKind(s string) (pkgjson.ModuleKind, error) {
	switch s {
	case "esm":
		return pkgjson.ESM, nil
	case "cjs":
		return pkgjson.CJS, nil
	default:
		return 0, fmt.Errorf("invalid module kind %q (use esm or cjs)", s)
	}
}

var mainCmd = &cobra.Command{
	Use:   "main <package.json>",
	Short: "Print the entrypoint for a referrer module kind",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := setup(cmd)
		if err != nil {
			return err
		}
		kindFlag, _ := cmd.Flags().GetString("kind")
		kind, err := parseModuleKind(kindFlag)
		if err != nil {
			return err
		}
		pkg, err := loadManifest(cfg, args[0])
		if err != nil {
			return err
		}
		main := pkg.Main(kind)
		if main == "" {
			return fmt.Errorf("no entrypoint declared in '%s'", pkg.Path)
		}
		fmt.Println(main)
		return nil
	},
}

func init() {
	mainCmd.Flags().String("kind", "cjs", "Referrer module kind (esm or cjs)")
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version.Full())
	},
}
