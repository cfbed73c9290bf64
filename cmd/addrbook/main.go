package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"addrbook/internal/addrbook"
	"addrbook/internal/app"
	"addrbook/internal/config"
	"addrbook/internal/encryption"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// newApp reads the config and creates an App. The caller must defer app.Close().
// operation identifies the CLI command being run (e.g. "Add", "List").
func newApp(ctx context.Context, operation string) (*app.App, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := app.LoadConfig(defaults)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	a, err := app.NewApp(ctx, cfg, operation, promptPassphrase)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}

	return a, nil
}

// loadShared fetches the configured catalog. A failed fetch is reported but
// does not stop the command; local addresses are still shown.
func loadShared(ctx context.Context, a *app.App) {
	if _, err := a.LoadShared(ctx, ""); err != nil {
		fmt.Fprintf(os.Stderr, "warning: shared addresses unavailable: %v\n", err)
	}
}

var rootCmd = &cobra.Command{
	Use:          "addrbook",
	Short:        "Address book with a shared catalog",
	SilenceUsage: true,
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		encrypt, _ := cmd.Flags().GetBool("encrypt")
		slotType, _ := cmd.Flags().GetString("slot")
		catalogURL, _ := cmd.Flags().GetString("catalog-url")

		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg := config.NewConfig(defaults.BaseDir)
		cfg.Catalog.URL = catalogURL
		if err := applySlotType(cfg, slotType); err != nil {
			return err
		}

		if _, err := os.Stat(defaults.ConfigPath); err == nil {
			return fmt.Errorf("config file already exists at %s", defaults.ConfigPath)
		}

		if encrypt {
			cfg.Encryption.Enabled = true
			enc, err := encryption.NewEncryptorFromConfig(cfg.Encryption)
			if err != nil {
				return fmt.Errorf("creating encryptor: %w", err)
			}
			pass, err := promptNewPassphrase()
			if err != nil {
				return err
			}
			if err := enc.Setup(pass); err != nil {
				return fmt.Errorf("generating key pair: %w", err)
			}
		}

		if err := config.Init(defaults.ConfigPath, cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults.ConfigPath)
		fmt.Printf("Base Dir: %s\n", cfg.BaseDir)
		fmt.Printf("Slot:     %s\n", cfg.Slot.Type)
		if encrypt {
			fmt.Printf("Key pair: %s\n", cfg.Encryption.PublicKeyPath)
		}
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg, err := app.LoadConfig(defaults)
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		fmt.Printf("Configuration from %s:\n\n", defaults.ConfigPath)
		fmt.Printf("Base Dir:    %s\n", cfg.BaseDir)
		fmt.Printf("Log Dir:     %s\n", cfg.LogDir)
		fmt.Printf("Country:     %s\n", cfg.Country)
		fmt.Printf("Slot:        %s (%s)\n", cfg.Slot.Type, slotLocation(cfg.Slot))
		fmt.Printf("Catalog:     %s\n", orNone(cfg.Catalog.URL))
		fmt.Printf("Encryption:  %t\n", cfg.Encryption.Enabled)
		fmt.Printf("Metrics:     %s\n", orNone(cfg.Metrics.Textfile))
		return nil
	},
}

// add command
var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a local address",
	RunE: func(cmd *cobra.Command, args []string) error {
		in, err := inputFromFlags(cmd)
		if err != nil {
			return err
		}
		full, _ := cmd.Flags().GetString("address")

		a, err := newApp(cmd.Context(), "Add")
		if err != nil {
			return err
		}
		defer a.Close()

		r, err := a.Add(in, full)
		if r.ID != "" {
			fmt.Printf("Added %s: %s\n", r.ID, a.Store().FullAddressString(r))
		}
		if err != nil {
			return fmt.Errorf("adding address: %w", err)
		}
		return nil
	},
}

// rm command
var rmCmd = &cobra.Command{
	Use:   "rm ID",
	Short: "Remove a local address",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), "Remove")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Remove(args[0]); err != nil {
			return fmt.Errorf("removing address: %w", err)
		}
		fmt.Printf("Removed %s\n", args[0])
		return nil
	},
}

// update command
var updateCmd = &cobra.Command{
	Use:   "update ID",
	Short: "Update a local address",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		patch, err := patchFromFlags(cmd)
		if err != nil {
			return err
		}

		a, err := newApp(cmd.Context(), "Update")
		if err != nil {
			return err
		}
		defer a.Close()

		r, err := a.Update(args[0], patch)
		if r.ID != "" {
			fmt.Printf("Updated %s: %s\n", r.ID, a.Store().FullAddressString(r))
		}
		if err != nil {
			return fmt.Errorf("updating address: %w", err)
		}
		return nil
	},
}

// show command
var showCmd = &cobra.Command{
	Use:   "show ID",
	Short: "Show one address",
	Long:  `Show one address.

The id is looked up among local addresses first. When no local address
matches, the shared catalog is fetched and searched as well, so shared
addresses can be shown by id too.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), "Show")
		if err != nil {
			return err
		}
		defer a.Close()

		r, ok := a.Get(args[0])
		if !ok {
			loadShared(cmd.Context(), a)
			r, ok = a.Get(args[0])
		}
		if !ok {
			a.Fail()
			return fmt.Errorf("no address with id %q", args[0])
		}
		printDetail(os.Stdout, a, r)
		return nil
	},
}

// list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List addresses",
	RunE: func(cmd *cobra.Command, args []string) error {
		localOnly, _ := cmd.Flags().GetBool("local")
		sharedOnly, _ := cmd.Flags().GetBool("shared")
		output, _ := cmd.Flags().GetString("output")
		if localOnly && sharedOnly {
			return fmt.Errorf("--local and --shared are mutually exclusive")
		}

		a, err := newApp(cmd.Context(), "List")
		if err != nil {
			return err
		}
		defer a.Close()

		records := a.Store().GetLocal()
		switch {
		case localOnly:
			for i := range records {
				records[i].Origin = addrbook.OriginLocal
			}
		case sharedOnly:
			loadShared(cmd.Context(), a)
			records = a.Store().GetShared()
			for i := range records {
				records[i].Origin = addrbook.OriginShared
			}
		default:
			loadShared(cmd.Context(), a)
			records = a.Store().GetAll()
		}

		return printRecords(os.Stdout, a, records, output)
	},
}

// categories command
var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List distinct categories",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), "Categories")
		if err != nil {
			return err
		}
		defer a.Close()

		loadShared(cmd.Context(), a)
		for _, c := range a.Store().ListCategories() {
			fmt.Println(c)
		}
		return nil
	},
}

// fetch command
var fetchCmd = &cobra.Command{
	Use:   "fetch [URL]",
	Short: "Fetch the shared catalog",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), "Fetch")
		if err != nil {
			return err
		}
		defer a.Close()

		url := ""
		if len(args) > 0 {
			url = args[0]
		}

		loaded, err := a.LoadShared(cmd.Context(), url)
		if err != nil {
			a.Fail()
			return fmt.Errorf("fetching shared addresses: %w", err)
		}
		if !loaded {
			a.Fail()
			return fmt.Errorf("no catalog URL given or configured")
		}
		fmt.Printf("Fetched %d shared address(es)\n", len(a.Store().GetShared()))
		return nil
	},
}

// export command
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the merged address list",
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		out, _ := cmd.Flags().GetString("output")

		a, err := newApp(cmd.Context(), "Export")
		if err != nil {
			return err
		}
		defer a.Close()

		loadShared(cmd.Context(), a)
		records := a.Store().GetAll()

		if err := writeOutput(out, func(f *os.File) error {
			return exportRecords(f, format, records, a.Country())
		}); err != nil {
			a.Fail()
			return err
		}
		if out != "" {
			fmt.Fprintf(os.Stderr, "Exported %d address(es) to %s\n", len(records), out)
		}
		return nil
	},
}

// catalog command
var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Manage shared catalogs",
}

var catalogBuildCmd = &cobra.Command{
	Use:   "build CSV",
	Short: "Build a shared catalog JSON file from a spreadsheet CSV export",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out, _ := cmd.Flags().GetString("output")

		n, err := buildCatalog(args[0], out)
		if err != nil {
			return err
		}
		if out != "" {
			fmt.Fprintf(os.Stderr, "Wrote %d shared address(es) to %s\n", n, out)
		}
		return nil
	},
}

func init() {
	// config subcommands
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)
	configInitCmd.Flags().Bool("encrypt", false, "Generate a key pair and encrypt stored addresses")
	configInitCmd.Flags().String("slot", "filesystem", "Slot type: memory, filesystem, sqlite or s3")
	configInitCmd.Flags().String("catalog-url", "", "URL of the shared address catalog")

	// catalog subcommands
	catalogCmd.AddCommand(catalogBuildCmd)
	catalogBuildCmd.Flags().StringP("output", "o", "", "Output file (default stdout)")

	// root commands
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(addCmd)
	addRecordFlags(addCmd)
	addCmd.Flags().String("address", "", `Full address, e.g. "Oudegracht 12, 3511 AB Utrecht"`)
	addCmd.Flags().Bool("format-name", false, `Rewrite "Last, I. van (First)" names as "First van Last"`)
	rootCmd.AddCommand(rmCmd)
	rootCmd.AddCommand(updateCmd)
	addRecordFlags(updateCmd)
	updateCmd.Flags().Bool("clear-category", false, "Remove the category")
	updateCmd.Flags().Bool("clear-coordinates", false, "Remove latitude and longitude")
	updateCmd.Flags().String("json", "", "JSON patch object; null clears optional fields")
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().Bool("local", false, "Only local addresses")
	listCmd.Flags().Bool("shared", false, "Only shared addresses")
	listCmd.Flags().StringP("output", "o", "table", "Output format: table, json or yaml")
	rootCmd.AddCommand(categoriesCmd)
	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringP("format", "f", "json", "Export format: json, yaml or geojson")
	exportCmd.Flags().StringP("output", "o", "", "Output file (default stdout)")
	rootCmd.AddCommand(catalogCmd)
}
