package server

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/roach88/stellium/internal/astro"
	"github.com/roach88/stellium/internal/service"
)

type locationInput struct {
	Name      string  `json:"name,omitempty" jsonschema:"Place name, informational only"`
	Latitude  float64 `json:"latitude" jsonschema:"Latitude in degrees, north positive"`
	Longitude float64 `json:"longitude" jsonschema:"Longitude in degrees, east positive"`
}

// storeChartInput is the input schema for the store_natal_chart tool.
type storeChartInput struct {
	Name      string        `json:"name" jsonschema:"Name of the chart owner"`
	BirthDate string        `json:"birth_date" jsonschema:"Birth date as YYYY-MM-DD"`
	BirthTime string        `json:"birth_time,omitempty" jsonschema:"Local birth time as HH:MM (default 12:00)"`
	Timezone  string        `json:"timezone,omitempty" jsonschema:"IANA timezone of the birth place (default UTC)"`
	Location  locationInput `json:"location" jsonschema:"Birth place coordinates"`
}

// chartRefInput identifies a stored chart.
type chartRefInput struct {
	Name      string `json:"name" jsonschema:"Chart name"`
	BirthDate string `json:"birth_date,omitempty" jsonschema:"Birth date as YYYY-MM-DD, required when several charts share the name"`
}

type searchChartsInput struct {
	Query string `json:"query" jsonschema:"Case-insensitive substring of the chart name"`
}

// chartsOutput is the output schema for the list and search tools.
type chartsOutput struct {
	Charts []astro.ChartSummary `json:"charts"`
}

type deleteChartOutput struct {
	Deleted bool   `json:"deleted"`
	Name    string `json:"name"`
}

func (in chartRefInput) ref() service.ChartRef {
	return service.ChartRef{Name: in.Name, BirthDate: in.BirthDate}
}

// registerChartTools registers the chart storage tools.
func (s *Server) registerChartTools() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "store_natal_chart",
		Description: "Compute and store a natal chart from birth data",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in storeChartInput) (*mcp.CallToolResult, any, error) {
		chart, err := s.svc.StoreChart(ctx, service.StoreChartRequest{
			Name:      in.Name,
			BirthDate: in.BirthDate,
			BirthTime: in.BirthTime,
			Timezone:  in.Timezone,
			Location: astro.Location{
				Name:      in.Location.Name,
				Latitude:  in.Location.Latitude,
				Longitude: in.Location.Longitude,
			},
		})
		if err != nil {
			return nil, nil, s.fail("store_natal_chart", err)
		}
		return nil, chart, nil
	})

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "get_natal_chart",
		Description: "Get a stored natal chart by name",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in chartRefInput) (*mcp.CallToolResult, any, error) {
		chart, err := s.svc.ResolveChart(ctx, in.ref())
		if err != nil {
			return nil, nil, s.fail("get_natal_chart", err)
		}
		return nil, chart, nil
	})

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "list_natal_charts",
		Description: "List every stored natal chart",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, _ struct{}) (*mcp.CallToolResult, chartsOutput, error) {
		charts, err := s.svc.ListCharts(ctx)
		if err != nil {
			return nil, chartsOutput{}, s.fail("list_natal_charts", err)
		}
		return nil, chartsOutput{Charts: charts}, nil
	})

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "search_natal_charts",
		Description: "Search stored natal charts by name",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in searchChartsInput) (*mcp.CallToolResult, chartsOutput, error) {
		charts, err := s.svc.SearchCharts(ctx, in.Query)
		if err != nil {
			return nil, chartsOutput{}, s.fail("search_natal_charts", err)
		}
		return nil, chartsOutput{Charts: charts}, nil
	})

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "delete_natal_chart",
		Description: "Delete a stored natal chart",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in chartRefInput) (*mcp.CallToolResult, deleteChartOutput, error) {
		if err := s.svc.DeleteChart(ctx, in.ref()); err != nil {
			return nil, deleteChartOutput{}, s.fail("delete_natal_chart", err)
		}
		return nil, deleteChartOutput{Deleted: true, Name: astro.NormalizeName(in.Name)}, nil
	})
}
