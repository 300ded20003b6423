package domain

// AnalyticsMetric names a mock business metric the analytics module can serve.
type AnalyticsMetric string

const (
	MetricRevenue               AnalyticsMetric = "revenue"
	MetricOrders                AnalyticsMetric = "orders"
	MetricCustomers             AnalyticsMetric = "customers"
	MetricConversionRate        AnalyticsMetric = "conversion-rate"
	MetricAverageOrderValue     AnalyticsMetric = "average-order-value"
	MetricCustomerLifetimeValue AnalyticsMetric = "customer-lifetime-value"
)

type TimeGranularity string

const (
	GranularityHour  TimeGranularity = "hour"
	GranularityDay   TimeGranularity = "day"
	GranularityWeek  TimeGranularity = "week"
	GranularityMonth TimeGranularity = "month"
	GranularityYear  TimeGranularity = "year"
)

type AnalyticsQuery struct {
	Metrics     []AnalyticsMetric `json:"metrics"`
	StartDate   string            `json:"startDate"`
	EndDate     string            `json:"endDate"`
	Granularity TimeGranularity   `json:"granularity"`
}

type DataPoint struct {
	Timestamp string         `json:"timestamp"`
	Value     float64        `json:"value"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

type MetricSummary struct {
	Total   float64 `json:"total"`
	Average float64 `json:"average"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
}

type MetricResult struct {
	Metric  AnalyticsMetric `json:"metric"`
	Data    []DataPoint     `json:"data"`
	Summary MetricSummary   `json:"summary"`
}

type AnalyticsResult struct {
	Query       AnalyticsQuery `json:"query"`
	Results     []MetricResult `json:"results"`
	GeneratedAt string         `json:"generatedAt"`
}

type InsightType string

const (
	InsightTrend          InsightType = "trend"
	InsightAnomaly        InsightType = "anomaly"
	InsightRecommendation InsightType = "recommendation"
)

type Insight struct {
	ID          string            `json:"id"`
	Type        InsightType       `json:"type"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Severity    string            `json:"severity"`
	Metrics     []AnalyticsMetric `json:"metrics"`
	Confidence  float64           `json:"confidence"`
	CreatedAt   Timestamp         `json:"createdAt"`
}
