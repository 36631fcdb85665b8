package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/samvad-hq/samvad-items-client/internal/app"
	"github.com/samvad-hq/samvad-items-client/internal/config"
	"github.com/samvad-hq/samvad-items-client/internal/docfile"
	"github.com/samvad-hq/samvad-items-client/internal/logger"
	"github.com/spf13/cobra"
)

// cli holds state shared by sub-commands for one invocation.
type cli struct {
	baseURL    string
	output     string
	loadConfig func() (*config.Config, error)
	app        *app.App
}

// newRootCmd constructs the root command. loadConfig defaults to config.Load.
func newRootCmd(loadConfig func() (*config.Config, error)) *cobra.Command {
	if loadConfig == nil {
		loadConfig = config.Load
	}
	c := &cli{loadConfig: loadConfig}

	root := &cobra.Command{
		Use:           "itemsctl",
		Short:         "List and add items on a remote items endpoint",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&c.baseURL, "base-url", "", "items collection URL (overrides BASE_URL)")
	root.PersistentFlags().StringVarP(&c.output, "output", "o", formatJSON, "output format: json or table")

	root.AddCommand(c.newListCmd(), c.newAddCmd())
	return root
}

// withApp wraps a RunE so the app is built before fn and released after it,
// whether fn fails or not.
func (c *cli) withApp(fn func(cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		if err := c.setup(cmd); err != nil {
			return err
		}
		defer func() {
			if closeErr := c.teardown(); err == nil {
				err = closeErr
			}
		}()
		return fn(cmd, args)
	}
}

func (c *cli) setup(cmd *cobra.Command) error {
	if err := validateFormat(c.output); err != nil {
		return err
	}

	cfg, err := c.loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if c.baseURL != "" {
		if err := cfg.SetBaseURL(c.baseURL); err != nil {
			return err
		}
	}

	log, err := logger.Init(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	log.DebugObj("itemsctl starting", "config", cfg)

	a, err := app.New(cmd.Context(), cfg, log)
	if err != nil {
		return fmt.Errorf("init app: %w", err)
	}
	c.app = a
	return nil
}

func (c *cli) teardown() error {
	var errs []error
	if c.app != nil {
		errs = append(errs, c.app.Close())
		c.app = nil
	}
	_ = logger.Close()
	return errors.Join(errs...)
}

func (c *cli) newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all items",
		Args:  cobra.NoArgs,
		RunE: c.withApp(func(cmd *cobra.Command, _ []string) error {
			list, err := c.app.List(cmd.Context())
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), c.output, list)
		}),
	}
}

func (c *cli) newAddCmd() *cobra.Command {
	var file string
	var force bool

	cmd := &cobra.Command{
		Use:   "add [JSON]",
		Short: "Add an item given as a JSON argument or a JSON/YAML file",
		Example: `  itemsctl add '{"name":"foo"}'
  itemsctl add --file item.yaml`,
		Args: cobra.MaximumNArgs(1),
		RunE: c.withApp(func(cmd *cobra.Command, args []string) error {
			item, err := readItem(args, file)
			if err != nil {
				return err
			}

			res, err := c.app.Add(cmd.Context(), item, app.AddOptions{Force: force})
			if err != nil {
				return err
			}
			if res.Skipped {
				fmt.Fprintf(cmd.ErrOrStderr(), "item already submitted (fingerprint %s); use --force to resend\n", res.Fingerprint)
				return nil
			}
			return render(cmd.OutOrStdout(), c.output, res.Item)
		}),
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "read the item from a .json, .yaml or .yml file")
	cmd.Flags().BoolVar(&force, "force", false, "submit even if the same item was sent recently")
	return cmd
}

// readItem decodes the item from exactly one of the JSON argument or file.
func readItem(args []string, file string) (any, error) {
	file = strings.TrimSpace(file)
	switch {
	case len(args) == 1 && file != "":
		return nil, errors.New("pass the item either as an argument or with --file, not both")
	case len(args) == 1:
		var item any
		if err := docfile.Decode([]byte(args[0]), ".json", &item); err != nil {
			return nil, fmt.Errorf("parse item argument: %w", err)
		}
		return item, nil
	case file != "":
		var item any
		if err := docfile.Read(file, &item); err != nil {
			return nil, fmt.Errorf("read item file: %w", err)
		}
		return item, nil
	default:
		return nil, errors.New("an item is required (JSON argument or --file)")
	}
}
