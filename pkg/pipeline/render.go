package pipeline

import (
	"context"

	"github.com/matzehuels/kintree/pkg/family"
	"github.com/matzehuels/kintree/pkg/layout"
	"github.com/matzehuels/kintree/pkg/render/jsonout"
	"github.com/matzehuels/kintree/pkg/render/nodelink"
	"github.com/matzehuels/kintree/pkg/render/svg"
)

// RenderFormat renders a single format without caching.
func RenderFormat(ctx context.Context, format string, data *family.FamilyData, res layout.Result, opts Options) ([]byte, error) {
	if err := ValidateFormat(format); err != nil {
		return nil, err
	}

	switch format {
	case FormatJSON:
		return jsonout.Render(res,
			jsonout.WithPeople(data.People),
			jsonout.WithRoot(data.RootPersonID))
	case FormatDOT:
		return []byte(nodelink.ToDOT(data.People, dotOptions(opts))), nil
	case FormatPNG:
		return nodelink.RenderPNG(ctx, nodelink.ToDOT(data.People, dotOptions(opts)))
	default:
		return svg.Render(res,
			svg.WithFamily(data.People),
			svg.WithTitle(opts.Title),
			svg.WithLinks(opts.LinkPrefix)), nil
	}
}

func dotOptions(opts Options) nodelink.Options {
	return nodelink.Options{Detailed: opts.Detailed, Title: opts.Title}
}
