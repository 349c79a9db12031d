// Command mkmodel writes a procedural product model as binary STL, for use
// as the viewer's default asset.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"showcase/asset"
)

func main() {
	var name, outPath string
	var cells int
	flag.StringVar(&name, "model", "inverter", "Procedural model name.")
	flag.StringVar(&outPath, "out", asset.DefaultPath, "Output STL path.")
	flag.IntVar(&cells, "cells", 120, "Marching cubes cells along the longest axis.")
	flag.Parse()

	if outPath == "" {
		fmt.Fprintln(os.Stderr, "error: -out is required")
		os.Exit(2)
	}
	if err := run(name, outPath, cells); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(name, outPath string, cells int) error {
	l := asset.NewProceduralLoader()
	l.Cells = cells
	g, err := l.Load(context.Background(), "sdf:"+name)
	if err != nil {
		return fmt.Errorf("%w (models: %s)", err, strings.Join(l.Models(), ", "))
	}

	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create %q: %w", outPath, err)
	}
	if err := asset.EncodeBinarySTL(f, g, "showcase "+name); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %q: %w", outPath, err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Printf("wrote %s: %d triangles\n", outPath, g.TriangleCount())
	return nil
}
