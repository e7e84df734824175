package models

// =============================================================================
// 销售数据核心模型
// =============================================================================

// SalesRecord 一行销售数据。CSV中全部以文本形式存储，
// 金额可能带千分位逗号，日期为 M/D/YYYY（不保证补零）。
type SalesRecord struct {
	OrderDate   string `json:"orderDate"`
	State       string `json:"state"`
	City        string `json:"city"`
	Region      string `json:"region"`
	Category    string `json:"category"`
	ProductName string `json:"productName"`
	Sales       string `json:"sales"`
}

// Filter 可选的过滤条件集合，各维度做大小写不敏感的子串匹配。
// 空字符串表示该维度不限制。
type Filter struct {
	State    string `json:"state,omitempty"`
	City     string `json:"city,omitempty"`
	Region   string `json:"region,omitempty"`
	Category string `json:"category,omitempty"`
	// DateRange 年份过滤。分类器会提取它，但聚合阶段不应用，
	// 仅在summary中回显（与线上行为保持一致）。
	DateRange string `json:"dateRange,omitempty"`
}

// IsEmpty 是否没有任何过滤条件
func (f Filter) IsEmpty() bool {
	return f.State == "" && f.City == "" && f.Region == "" && f.Category == "" && f.DateRange == ""
}

// =============================================================================
// 聚合结果模型
// =============================================================================

// Summary 聚合汇总。TotalSales与AvgTransactionValue四舍五入为整数。
type Summary struct {
	Location            string `json:"location"`
	TotalSales          int    `json:"totalSales"`
	TotalTransactions   int    `json:"totalTransactions"`
	AvgTransactionValue int    `json:"avgTransactionValue"`
	Filters             Filter `json:"filters"`
}

// CityStat 按城市聚合的结果，附带该城市观测到的一个州/区域标签
type CityStat struct {
	City         string  `json:"city"`
	Sales        float64 `json:"sales"`
	Transactions int     `json:"transactions"`
	State        string  `json:"state"`
	Region       string  `json:"region"`
}

// CategoryStat 按品类聚合的结果
type CategoryStat struct {
	Category     string  `json:"category"`
	Sales        float64 `json:"sales"`
	Transactions int     `json:"transactions"`
}

// TimePoint 时间序列中的一个点，日期为该自然月的1号（YYYY-MM-01）
type TimePoint struct {
	Date         string  `json:"date"`
	Sales        float64 `json:"sales"`
	Transactions int     `json:"transactions"`
}

// ChartData 仪表盘图表数据
type ChartData struct {
	CityBreakdown     []CityStat     `json:"cityBreakdown"`     // 销售额降序，最多20个
	CategoryBreakdown []CategoryStat `json:"categoryBreakdown"` // 销售额降序，全部品类
	TimeSeries        []TimePoint    `json:"timeSeries"`        // 日期升序
}

// AggregationResult 聚合引擎的输出。每次请求重新计算，不做缓存。
type AggregationResult struct {
	Summary   Summary       `json:"summary"`
	ChartData ChartData     `json:"chartData"`
	MapData   []CityStat    `json:"mapData"` // 未截断的城市聚合
	RawData   []SalesRecord `json:"rawData"` // 过滤后的前50条原始记录
	Insights  []string      `json:"insights"`
}

// AnalyticsResult 分析维度包装结果（trends/comparison/performance）
type AnalyticsResult struct {
	Type      string      `json:"type"`
	Dimension string      `json:"dimension,omitempty"`
	Data      interface{} `json:"data"`
	Insights  []string    `json:"insights"`
}

// ProductSales 单个产品的销售聚合（已四舍五入）
type ProductSales struct {
	Product string `json:"product"`
	Sales   int    `json:"sales"`
}

// ProductInsightsResult 产品洞察结果
type ProductInsightsResult struct {
	Type            string         `json:"type"`
	Products        []ProductSales `json:"products,omitempty"`
	Recommendations []string       `json:"recommendations,omitempty"`
	Data            []SalesRecord  `json:"data,omitempty"`
	Insights        []string       `json:"insights"`
}

// =============================================================================
// 意图模型
// =============================================================================

// 聚合函数名
const (
	FuncGetSalesData       = "getSalesData"
	FuncGetSalesAnalytics  = "getSalesAnalytics"
	FuncGetProductInsights = "getProductInsights"
)

// SalesDataParams getSalesData的参数
type SalesDataParams struct {
	Filters Filter
}

// AnalyticsParams getSalesAnalytics的参数
type AnalyticsParams struct {
	AnalysisType      string // location_analysis | performance_analysis | trends | comparison | performance
	Dimension         string // state | city | region | product | category | time | overall
	PerformanceType   string // lowest | highest | overall
	PerformanceFilter string // lowest | highest（仅location_analysis）
	SortOrder         string // asc | desc
	Filters           Filter // 分类器不填充，聚合时对全量数据计算
}

// ProductInsightParams getProductInsights的参数
type ProductInsightParams struct {
	InsightType string // top_products | poor_products | recommendations
	ProductName string
	Category    string
}

// Intent 分类器的输出：函数名 + 对应参数 + 是否跑题。
// 每个请求产生一个，不复用。按函数名只有一组参数非nil。
type Intent struct {
	FunctionName string
	IsOffTopic   bool
	SalesData    *SalesDataParams
	Analytics    *AnalyticsParams
	Product      *ProductInsightParams
}

// BaseFilter 提取意图中可用于getSalesData的过滤条件（用于降级兜底与建议生成）。
// 产品意图只携带品类，其余维度不限制。
func (i Intent) BaseFilter() Filter {
	if i.SalesData != nil {
		return i.SalesData.Filters
	}
	if i.Product != nil {
		return Filter{Category: i.Product.Category}
	}
	return Filter{}
}

// =============================================================================
// 对话接口模型
// =============================================================================

// ChatMessagePart 兼容Gemini风格的历史消息分片
type ChatMessagePart struct {
	Text string `json:"text"`
}

// ChatMessage 一轮历史对话
type ChatMessage struct {
	Role    string            `json:"role"`
	Content string            `json:"content,omitempty"`
	Parts   []ChatMessagePart `json:"parts,omitempty"`
}

// Text 取消息正文：优先content，兼容parts[0].text
func (m ChatMessage) Text() string {
	if m.Content != "" {
		return m.Content
	}
	if len(m.Parts) > 0 {
		return m.Parts[0].Text
	}
	return ""
}

// ChatRequest POST /chat 请求体
type ChatRequest struct {
	Query       string        `json:"query"`
	ChatHistory []ChatMessage `json:"chatHistory,omitempty"`
}

// ChatResponse POST /chat 响应体。
// 跑题时DashboardData与FunctionCalled为null。
type ChatResponse struct {
	Answer         string      `json:"answer"`
	DashboardData  interface{} `json:"dashboardData"`
	FunctionCalled interface{} `json:"functionCalled"`
	Query          string      `json:"query,omitempty"`
	IsOffTopic     bool        `json:"isOffTopic,omitempty"`
	Suggestions    []string    `json:"suggestions"`
}
