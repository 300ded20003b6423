// Package analytics serves deterministic mock metric series and AI-generated
// insights for the dashboard endpoints. The numbers are synthetic; the shapes
// match what a real warehouse-backed implementation would return.
package analytics

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/PabloGalante/olist-intelligence/internal/domain"
	"github.com/PabloGalante/olist-intelligence/internal/observability"
)

const dateLayout = "2006-01-02"

var metricBaselines = map[domain.AnalyticsMetric]float64{
	domain.MetricRevenue:               50000,
	domain.MetricOrders:                320,
	domain.MetricCustomers:             180,
	domain.MetricConversionRate:        2.4,
	domain.MetricAverageOrderValue:     156,
	domain.MetricCustomerLifetimeValue: 890,
}

// Service generates analytics results and insights.
type Service struct {
	llm domain.LLMClient
	now func() time.Time
}

func NewService(llm domain.LLMClient) *Service {
	return &Service{llm: llm, now: time.Now}
}

// Metrics lists the metrics the module can serve.
func (s *Service) Metrics() []domain.AnalyticsMetric {
	return []domain.AnalyticsMetric{
		domain.MetricRevenue,
		domain.MetricOrders,
		domain.MetricCustomers,
		domain.MetricConversionRate,
		domain.MetricAverageOrderValue,
		domain.MetricCustomerLifetimeValue,
	}
}

// Query validates the request and produces one synthetic series per metric.
func (s *Service) Query(ctx context.Context, query domain.AnalyticsQuery) (*domain.AnalyticsResult, error) {
	if len(query.Metrics) == 0 {
		return nil, fmt.Errorf("at least one metric is required")
	}
	for _, m := range query.Metrics {
		if _, ok := metricBaselines[m]; !ok {
			return nil, fmt.Errorf("unknown metric %q", m)
		}
	}

	start, err := time.Parse(dateLayout, query.StartDate)
	if err != nil {
		return nil, fmt.Errorf("invalid startDate: %w", err)
	}
	end, err := time.Parse(dateLayout, query.EndDate)
	if err != nil {
		return nil, fmt.Errorf("invalid endDate: %w", err)
	}
	if end.Before(start) {
		return nil, fmt.Errorf("endDate must not be before startDate")
	}

	if query.Granularity == "" {
		query.Granularity = domain.GranularityDay
	}
	step, err := granularityStep(query.Granularity)
	if err != nil {
		return nil, err
	}

	results := make([]domain.MetricResult, 0, len(query.Metrics))
	for _, metric := range query.Metrics {
		data := generateSeries(metric, start, end, step)
		results = append(results, domain.MetricResult{
			Metric:  metric,
			Data:    data,
			Summary: summarize(data),
		})
	}

	return &domain.AnalyticsResult{
		Query:       query,
		Results:     results,
		GeneratedAt: s.now().UTC().Format(time.RFC3339),
	}, nil
}

func granularityStep(g domain.TimeGranularity) (time.Duration, error) {
	switch g {
	case domain.GranularityHour:
		return time.Hour, nil
	case domain.GranularityDay:
		return 24 * time.Hour, nil
	case domain.GranularityWeek:
		return 7 * 24 * time.Hour, nil
	case domain.GranularityMonth:
		return 30 * 24 * time.Hour, nil
	case domain.GranularityYear:
		return 365 * 24 * time.Hour, nil
	default:
		return 0, fmt.Errorf("unknown granularity %q", g)
	}
}

// generateSeries builds a deterministic wave around the metric's baseline so
// repeated queries return identical data.
func generateSeries(metric domain.AnalyticsMetric, start, end time.Time, step time.Duration) []domain.DataPoint {
	baseline := metricBaselines[metric]

	var data []domain.DataPoint
	for i, t := 0, start; !t.After(end); i, t = i+1, t.Add(step) {
		wave := math.Sin(float64(i)/3) * 0.15
		value := baseline * (1 + wave)
		data = append(data, domain.DataPoint{
			Timestamp: t.UTC().Format(time.RFC3339),
			Value:     math.Round(value*100) / 100,
		})
	}
	return data
}

func summarize(data []domain.DataPoint) domain.MetricSummary {
	if len(data) == 0 {
		return domain.MetricSummary{}
	}

	summary := domain.MetricSummary{
		Min: data[0].Value,
		Max: data[0].Value,
	}
	for _, p := range data {
		summary.Total += p.Value
		if p.Value < summary.Min {
			summary.Min = p.Value
		}
		if p.Value > summary.Max {
			summary.Max = p.Value
		}
	}
	summary.Total = math.Round(summary.Total*100) / 100
	summary.Average = math.Round(summary.Total/float64(len(data))*100) / 100
	return summary
}

// Insights asks the model to comment on the metric set. Model failures degrade
// to a static recommendation instead of an error.
func (s *Service) Insights(ctx context.Context, metrics []domain.AnalyticsMetric) ([]domain.Insight, error) {
	log := observability.LoggerFromContext(ctx)

	if len(metrics) == 0 {
		metrics = s.Metrics()
	}

	names := make([]string, 0, len(metrics))
	for _, m := range metrics {
		if _, ok := metricBaselines[m]; !ok {
			return nil, fmt.Errorf("unknown metric %q", m)
		}
		names = append(names, string(m))
	}

	texts, err := s.llm.GenerateInsights(ctx, map[string]any{
		"prompt":  "Gere insights de negócio em português sobre as seguintes métricas de e-commerce: " + fmt.Sprint(names),
		"metrics": names,
	})
	if err != nil || len(texts) == 0 {
		log.Warn().Err(err).Msg("analytics: insight generation failed, using fallback")
		texts = []string{"Acompanhe a evolução das métricas principais e priorize as categorias com maior receita."}
	}

	insights := make([]domain.Insight, 0, len(texts))
	for _, text := range texts {
		insights = append(insights, domain.Insight{
			ID:          uuid.NewString(),
			Type:        domain.InsightRecommendation,
			Title:       "Insight de métricas",
			Description: text,
			Severity:    "info",
			Metrics:     metrics,
			Confidence:  0.7,
			CreatedAt:   s.now(),
		})
	}
	return insights, nil
}
