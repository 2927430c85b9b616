// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Command spin pins an image above all windows on a Wayland desktop.
//
//	spin photo.png
//	grim -g "$(slurp)" - | spin -o 0.8
package main

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"github.com/gogpu/spin"
	"github.com/gogpu/spin/imageio"
)

var version = "0.1.0"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "spin:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		opacity    float64
		posX, posY int
		scale      float64
		forceCPU   bool
		configPath string
		verbose    bool
	)

	cmd := &cobra.Command{
		Use:     "spin [IMAGE]",
		Short:   "Display an image in a floating always-on-top overlay",
		Long:    "spin displays a single image in a borderless always-on-top Wayland\nlayer-shell overlay. Drag to move, drag edges to resize, scroll to set\nopacity, right-click for the menu, double-click to close.",
		Version: version,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			setupLogging(verbose)

			cfg, err := spin.LoadConfig(configPath)
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("opacity") {
				cfg.Opacity = opacity
			}
			if flags.Changed("pos-x") {
				cfg.PosX = posX
			}
			if flags.Changed("pos-y") {
				cfg.PosY = posY
			}
			if flags.Changed("scale") {
				cfg.Scale = scale
			}
			if forceCPU {
				cfg.ForceCPU = true
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			encoded, err := readInput(path)
			if err != nil {
				return err
			}
			img, err := imageio.Decode(bytes.NewReader(encoded), cfg.Scale)
			if err != nil {
				return err
			}

			return spin.Run(cfg, img, encoded)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.Flags().Float64VarP(&opacity, "opacity", "o", 1.0, "window opacity (0.0 - 1.0)")
	cmd.Flags().IntVarP(&posX, "pos-x", "x", -1, "initial window X position")
	cmd.Flags().IntVarP(&posY, "pos-y", "y", -1, "initial window Y position")
	cmd.Flags().Float64VarP(&scale, "scale", "s", 1.0, "decode-time scale factor")
	cmd.Flags().BoolVar(&forceCPU, "cpu", false, "disable GPU rendering")
	cmd.Flags().StringVar(&configPath, "config", "", "config file (default $XDG_CONFIG_HOME/spin/config.toml)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	// The v shorthand is taken by --verbose, so register the version
	// flag ourselves with V instead of letting cobra add it bare.
	cmd.Flags().BoolP("version", "V", false, "version for spin")
	return cmd
}

func setupLogging(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level: level,
	}))
	spin.SetLogger(logger)
}

// readInput returns the compressed image bytes from the path, or from
// stdin when no path is given and stdin is a pipe.
func readInput(path string) ([]byte, error) {
	if path != "" && path != "-" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read image: %w", err)
		}
		return data, nil
	}

	stat, err := os.Stdin.Stat()
	if err != nil {
		return nil, err
	}
	if stat.Mode()&os.ModeCharDevice != 0 {
		return nil, spin.ErrNoImage
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return nil, fmt.Errorf("read stdin: %w", err)
	}
	if len(data) == 0 {
		return nil, spin.ErrNoImage
	}
	return data, nil
}
