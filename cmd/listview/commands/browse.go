package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/listview/internal/browse"
	"github.com/Sumatoshi-tech/listview/pkg/observability"
	"github.com/Sumatoshi-tech/listview/pkg/termhost"
)

type screenFactory func() (tcell.Screen, error)

// BrowseCommand holds flags and dependencies of the browse command.
type BrowseCommand struct {
	style     string
	noWrap    bool
	newScreen screenFactory
}

// NewBrowseCommand creates the browse command.
func NewBrowseCommand() *cobra.Command {
	return newBrowseCommandWithScreen(tcell.NewScreen)
}

func newBrowseCommandWithScreen(newScreen screenFactory) *cobra.Command {
	bc := &BrowseCommand{newScreen: newScreen}

	cmd := &cobra.Command{
		Use:   "browse [path]",
		Short: "Browse a file or directory in a virtualized list",
		Long: `Browse shows a file's lines, syntax highlighted when the language is known,
or a directory's entries. Scroll with the arrows, PgUp/PgDn, Home/End, j/k or
the wheel. Click a row to show it in the status bar, double-click a directory
to open it, and press q to quit.`,
		Args: cobra.MaximumNArgs(1),
		RunE: bc.run,
	}

	cmd.Flags().StringVar(&bc.style, "style", "", "Chroma style name (overrides browse.style)")
	cmd.Flags().BoolVar(&bc.noWrap, "no-wrap", false, "Do not wrap long lines")

	return cmd
}

func (bc *BrowseCommand) run(cmd *cobra.Command, args []string) error {
	path := "."
	if len(args) > 0 {
		path = args[0]
	}

	// The terminal belongs to the screen; logs only go to a configured file.
	rt, err := setup(cmd, observability.ModeTerminal, nil)
	if err != nil {
		return err
	}

	defer func() { _ = rt.close(context.WithoutCancel(cmd.Context())) }()

	cfg := rt.cfg.Browse
	if bc.style != "" {
		cfg.Style = bc.style
	}

	if bc.noWrap {
		cfg.Wrap = false
	}

	doc, err := browse.Load(path, cfg)
	if err != nil {
		return err
	}

	screen, err := bc.newScreen()
	if err != nil {
		return fmt.Errorf("create screen: %w", err)
	}

	err = screen.Init()
	if err != nil {
		return fmt.Errorf("init screen: %w", err)
	}

	defer screen.Fini()

	screen.EnableMouse()

	host := termhost.New(screen,
		termhost.WithScrollStep(cfg.ScrollStep),
		termhost.WithStatusBar(),
		termhost.WithLogger(rt.providers.Logger),
	)

	app, err := browse.New(host, doc, cfg, rt.listOptions()...)
	if err != nil {
		return err
	}

	defer app.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	rt.providers.Logger.Info("browsing", "path", doc.Path, "lines", len(doc.Lines), "language", doc.Language)

	return host.Run(ctx)
}
