package pipeline

import (
	"bytes"
	"context"
	"fmt"

	"github.com/matzehuels/depdistill/pkg/analyzer"
	pkgio "github.com/matzehuels/depdistill/pkg/io"
	"github.com/matzehuels/depdistill/pkg/render/nodelink"
	"github.com/matzehuels/depdistill/pkg/render/tree"
)

// Render generates output artifacts in the requested formats.
func Render(ctx context.Context, res *analyzer.Result, opts Options) (map[string][]byte, error) {
	artifacts := make(map[string][]byte, len(opts.Formats))
	var dot string

	for _, format := range opts.Formats {
		var (
			data []byte
			err  error
			buf  bytes.Buffer
		)

		switch format {
		case FormatText:
			err = tree.WriteReport(&buf, res, tree.Options{Color: opts.Color})
			data = buf.Bytes()
		case FormatJSON:
			err = pkgio.WriteJSON(res, &buf)
			data = buf.Bytes()
		case FormatTOML:
			err = pkgio.WriteTOML(res, &buf)
			data = buf.Bytes()
		case FormatDOT, FormatSVG, FormatPNG, FormatPDF:
			if dot == "" {
				dot = nodelink.ToDOT(res, nodelink.Options{Merge: opts.Merge})
			}
			data, err = renderGraph(ctx, dot, format)
		default:
			return nil, fmt.Errorf("unsupported format: %s", format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}

	return artifacts, nil
}

func renderGraph(ctx context.Context, dot, format string) ([]byte, error) {
	switch format {
	case FormatSVG:
		return nodelink.RenderSVG(ctx, dot)
	case FormatPNG:
		return nodelink.RenderPNG(ctx, dot, 2.0)
	case FormatPDF:
		return nodelink.RenderPDF(ctx, dot)
	default:
		return []byte(dot), nil
	}
}
