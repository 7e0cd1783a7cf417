package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/storysphere/storysphere-server/internal/analytics"
)

func (s *Server) registerAnalyticsRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getDashboard",
		Method:      http.MethodGet,
		Path:        "/api/v1/analytics/dashboard",
		Summary:     "Get analytics dashboard",
		Description: "Returns engagement totals, trends, and top stories for a time range",
		Tags:        []string{"Analytics"},
	}, s.handleGetDashboard)
}

// === DTOs ===

type DashboardInput struct {
	UserID    string `header:"X-User-Id" doc:"Acting user ID"`
	TimeRange string `query:"range" enum:"7d,30d,90d,1y," doc:"Reporting window, 7d by default"`
}

type DashboardOutput struct {
	Body analytics.Dashboard
}

// === Handlers ===

func (s *Server) handleGetDashboard(ctx context.Context, input *DashboardInput) (*DashboardOutput, error) {
	if _, err := requireViewer(input.UserID); err != nil {
		return nil, err
	}

	timeRange := input.TimeRange
	if timeRange == "" {
		timeRange = "7d"
	}

	dashboard, err := s.services.Analytics.BuildDashboard(ctx, timeRange)
	if err != nil {
		return nil, err
	}
	return &DashboardOutput{Body: *dashboard}, nil
}
