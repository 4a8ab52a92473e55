// Package cmd is the command line surface: split a file locally, or serve
// the processing pipeline over HTTP.
package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/khirfan/makeitbig/internal/config"
	"github.com/khirfan/makeitbig/internal/models"
	"github.com/khirfan/makeitbig/internal/pipeline"
	"github.com/khirfan/makeitbig/internal/preconditions"
	"github.com/khirfan/makeitbig/internal/server"
	"github.com/khirfan/makeitbig/internal/ui"
	"github.com/khirfan/makeitbig/version"
)

type CLI struct {
	Split      *SplitCmd      `cmd:"" help:"Scale an STL to a target height and split it into bed-sized pieces"`
	Serve      *ServeCmd      `cmd:"" help:"Run the HTTP processing service"`
	Version    *VersionCmd    `cmd:"" help:"Show version information"`
	Completion *CompletionCmd `cmd:"" help:"Generate shell completion scripts"`
}

type SplitCmd struct {
	Output  string  `help:"Output ZIP path (default: <input>_pieces.zip)" short:"o"`
	Height  float64 `help:"Target height in feet" short:"H" default:"2"`
	Axis    string  `help:"Height axis: x, y or z" short:"a" default:"z"`
	BedSize float64 `help:"Printer bed size in mm" short:"b" default:"300"`
	Margin  float64 `help:"Safety margin in mm" short:"m" default:"5"`
	File    string  `arg:"" help:"Input STL file"`
}

// Help adds usage examples to the command help output.
func (c *SplitCmd) Help() string {
	return renderSplitHelp()
}

func (c *SplitCmd) Run() error {
	if err := preconditions.ValidateInputFile(c.File); err != nil {
		return err
	}
	output := c.Output
	if output == "" {
		base := strings.TrimSuffix(c.File, filepath.Ext(c.File))
		output = base + "_pieces.zip"
	}
	if err := preconditions.ValidateOutputPath(output); err != nil {
		return err
	}

	req := models.Request{
		TargetHeightFeet: c.Height,
		HeightAxis:       c.Axis,
		PrinterBedSize:   c.BedSize,
		SafetyMargin:     c.Margin,
	}
	if err := pipeline.Validate(req); err != nil {
		return err
	}

	data, err := os.ReadFile(c.File)
	if err != nil {
		return fmt.Errorf("reading %s: %w", c.File, err)
	}

	ui.PrintTitle("makeitbig")
	ui.PrintStep(fmt.Sprintf("Splitting %s", filepath.Base(c.File)))
	ui.PrintKeyValue("Target height", fmt.Sprintf("%.2f ft (%.1f mm)", c.Height, req.TargetHeightMM()))
	ui.PrintKeyValue("Effective bed", fmt.Sprintf("%.1f mm (%.0f mm bed, %.0f mm margin)",
		req.EffectiveBedSize(), c.BedSize, c.Margin))

	res, err := pipeline.New(models.Limits{}).Process(context.Background(), req, data)
	if err != nil {
		return err
	}

	if err := os.WriteFile(output, res.Archive, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", output, err)
	}

	ui.PrintKeyValue("Scale factor", fmt.Sprintf("%.4f", res.ScaleFactor))
	ui.PrintTableHeader("Piece", "Triangles", "Size (mm)", "Status")
	unrepaired := 0
	for _, p := range res.Pieces {
		status := "ok"
		if p.Unrepaired {
			status = "needs repair"
			unrepaired++
		}
		ui.PrintTableRow(
			p.Name,
			fmt.Sprintf("%d", p.Triangles),
			fmt.Sprintf("%.1f × %.1f × %.1f", p.Size.X, p.Size.Y, p.Size.Z),
			status,
		)
	}
	if unrepaired > 0 {
		ui.PrintWarning(fmt.Sprintf("%d piece(s) have non-manifold cut boundaries and may need manual repair", unrepaired))
	}
	ui.PrintSuccess(fmt.Sprintf("Wrote %d piece(s) to %s", len(res.Pieces), output))
	return nil
}

type ServeCmd struct {
	Config  string `help:"YAML configuration file" short:"c" type:"existingfile"`
	Address string `help:"Listen address (overrides the config)"`
}

func (c *ServeCmd) Run() error {
	cfg := config.Default()
	if c.Config != "" {
		loaded, err := config.NewLoader().Load(c.Config)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if c.Address != "" {
		cfg.Server.Address = c.Address
	}

	ui.PrintTitle("makeitbig")
	if c.Config != "" {
		ui.PrintInfo("Configuration loaded from " + c.Config)
	} else {
		ui.PrintInfo("No configuration file given, using built-in defaults")
	}
	ui.PrintStep("Serving on " + cfg.Server.Address)
	return server.New(cfg).Start(cfg.Server.Address)
}

type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Println(version.Get().String())
	return nil
}

// Parse parses command line arguments and executes the appropriate command.
func Parse() {
	cli := &CLI{}
	ctx := kong.Parse(cli,
		kong.Name("makeitbig"),
		kong.Description("Scale STL models to life size and split them into printer-bed-sized pieces"),
		kong.UsageOnError(),
	)
	if err := ctx.Run(); err != nil {
		ui.PrintError(err.Error())
		os.Exit(1)
	}
}
