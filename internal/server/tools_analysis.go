package server

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/roach88/stellium/internal/service"
)

// Analysis results carry signs and instants whose JSON encodings differ from
// their Go kinds, so these tools return untyped output and skip schema
// inference.

type dailyTransitsInput struct {
	Date      string `json:"date,omitempty" jsonschema:"ISO-8601 date or instant (default today)"`
	Name      string `json:"name,omitempty" jsonschema:"Stored chart to relate the transits to"`
	BirthDate string `json:"birth_date,omitempty" jsonschema:"Birth date of the chart when its name is shared"`
}

type retrogradeInput struct {
	Date      string `json:"date,omitempty" jsonschema:"ISO-8601 date (default today)"`
	DaysAhead int    `json:"days_ahead,omitempty" jsonschema:"Days to look ahead for upcoming retrogrades (default 90)"`
	Body      string `json:"body,omitempty" jsonschema:"Limit to one body, e.g. Mercury"`
}

type lunarInput struct {
	Date string `json:"date,omitempty" jsonschema:"ISO-8601 date or instant (default today)"`
}

type transitReportInput struct {
	Name         string `json:"name" jsonschema:"Stored chart name"`
	BirthDate    string `json:"birth_date,omitempty" jsonschema:"Birth date of the chart when its name is shared"`
	StartDate    string `json:"start_date,omitempty" jsonschema:"First day of the report (default today)"`
	EndDate      string `json:"end_date,omitempty" jsonschema:"Last day of the report (default 30 days after start)"`
	IncludeMinor bool   `json:"include_minor,omitempty" jsonschema:"Include minor aspects"`
}

type compatibilityInput struct {
	Name1        string `json:"name1" jsonschema:"First chart name"`
	BirthDate1   string `json:"birth_date1,omitempty" jsonschema:"Birth date of the first chart"`
	Name2        string `json:"name2" jsonschema:"Second chart name"`
	BirthDate2   string `json:"birth_date2,omitempty" jsonschema:"Birth date of the second chart"`
	IncludeMinor bool   `json:"include_minor,omitempty" jsonschema:"Include minor aspects"`
}

// registerAnalysisTools registers the transit, lunar and synastry tools.
func (s *Server) registerAnalysisTools() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "get_daily_transits",
		Description: "Get planetary positions for a date, optionally against a natal chart",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in dailyTransitsInput) (*mcp.CallToolResult, any, error) {
		var ref *service.ChartRef
		if in.Name != "" {
			ref = &service.ChartRef{Name: in.Name, BirthDate: in.BirthDate}
		}
		out, err := s.svc.DailyTransits(ctx, in.Date, ref)
		if err != nil {
			return nil, nil, s.fail("get_daily_transits", err)
		}
		return nil, out, nil
	})

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "get_retrograde_status",
		Description: "Get current and upcoming retrograde periods",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in retrogradeInput) (*mcp.CallToolResult, any, error) {
		out, err := s.svc.RetrogradeStatus(ctx, service.RetrogradeRequest{
			Date:      in.Date,
			DaysAhead: in.DaysAhead,
			Body:      in.Body,
		})
		if err != nil {
			return nil, nil, s.fail("get_retrograde_status", err)
		}
		return nil, out, nil
	})

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "get_lunar_info",
		Description: "Get the lunar phase, void-of-course status and nearby new and full moons",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in lunarInput) (*mcp.CallToolResult, any, error) {
		out, err := s.svc.LunarInfo(ctx, in.Date)
		if err != nil {
			return nil, nil, s.fail("get_lunar_info", err)
		}
		return nil, out, nil
	})

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "get_transit_report",
		Description: "Generate a chronological transit report for a stored chart",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in transitReportInput) (*mcp.CallToolResult, any, error) {
		out, err := s.svc.TransitReport(ctx, service.ReportRequest{
			Chart:        service.ChartRef{Name: in.Name, BirthDate: in.BirthDate},
			Start:        in.StartDate,
			End:          in.EndDate,
			IncludeMinor: in.IncludeMinor,
		})
		if err != nil {
			return nil, nil, s.fail("get_transit_report", err)
		}
		return nil, out, nil
	})

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "get_compatibility",
		Description: "Compare two stored charts",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in compatibilityInput) (*mcp.CallToolResult, any, error) {
		out, err := s.svc.Compatibility(ctx,
			service.ChartRef{Name: in.Name1, BirthDate: in.BirthDate1},
			service.ChartRef{Name: in.Name2, BirthDate: in.BirthDate2},
			in.IncludeMinor)
		if err != nil {
			return nil, nil, s.fail("get_compatibility", err)
		}
		return nil, out, nil
	})
}
