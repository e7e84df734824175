package services

import (
	"strings"

	"github.com/salesagent/service/internal/models"
)

// =============================================================================
// 查询分类器：关键词子串匹配，不做分词，不做真正的NLU
// =============================================================================

// 销售域允许词表（含性能分析相关的反义词对，如top/worst）
var salesKeywords = []string{
	"sales", "revenue", "performance", "data", "dashboard", "report", "analytics",
	"numbers", "figures", "profit", "earnings", "transactions", "orders",
	"product", "category", "region", "city", "state", "customer", "business",
	"trend", "growth", "analysis", "insight", "comparison", "top", "best",
	"furniture", "technology", "office supplies", "california", "texas",
	"show", "display", "chart", "graph", "visualization", "breakdown",
	"states", "cities", "regions", "locations", "where", "how many",
	"which", "what", "count", "total", "sum", "average", "highest", "lowest",
	"worst", "least", "poor", "low", "bottom", "underperform", "weak",
	"minimum", "smallest", "decline", "drop", "fall", "decrease",
	"performer", "performing", "achiever", "results", "outcomes",
}

// 跑题屏蔽词表：命中任意一个直接短路为跑题，优先级高于允许词表
var offTopicKeywords = []string{
	"weather", "temperature", "rain", "snow", "climate", "forecast",
	"movie", "film", "actor", "actress", "cinema", "entertainment",
	"recipe", "cooking", "food", "restaurant", "meal", "ingredient",
	"sport", "football", "basketball", "soccer", "game", "player",
	"politics", "government", "election", "president", "politician",
	"health", "medical", "doctor", "hospital", "medicine", "disease",
	"travel", "vacation", "hotel", "flight", "tourism", "destination",
	"music", "song", "artist", "album", "concert", "band",
	"joke", "funny", "comedy", "humor", "laugh",
	"personal", "relationship", "dating", "marriage", "family",
}

// 意图判定用的细分词表
var (
	intentSalesKeywords     = []string{"sales", "revenue", "performance", "show", "data", "dashboard", "report", "analytics", "numbers", "figures"}
	productKeywords         = []string{"product", "top", "best", "recommendation", "item", "goods"}
	analyticsKeywords       = []string{"trend", "compare", "analysis", "insight", "pattern"}
	locationKeywords        = []string{"states", "cities", "regions", "locations", "where", "how many"}
	performanceKeywords     = []string{"performer", "performing", "performance"}
	lowPerformanceKeywords  = []string{"least", "worst", "poor", "low", "bottom", "underperform", "weak", "minimum", "smallest"}
	highPerformanceKeywords = []string{"top", "best", "highest", "maximum", "greatest", "peak"}
)

// QueryClassifier 把自由文本映射到聚合函数与参数
type QueryClassifier struct{}

// NewQueryClassifier 创建查询分类器
func NewQueryClassifier() *QueryClassifier {
	return &QueryClassifier{}
}

func containsAny(query string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(query, kw) {
			return true
		}
	}
	return false
}

// IsSalesRelated 领域门禁：先查屏蔽词（一票否决），再查允许词。
// 不足10个字符且未命中屏蔽词的短查询默认放行。
func (qc *QueryClassifier) IsSalesRelated(query string) bool {
	lowerQuery := strings.ToLower(query)

	if containsAny(lowerQuery, offTopicKeywords) {
		return false
	}

	hasSalesKeywords := containsAny(lowerQuery, salesKeywords)

	if len([]rune(lowerQuery)) < 10 {
		return true
	}

	return hasSalesKeywords
}

// Analyze 分析查询意图。分支按固定顺序求值，首个命中的分支生效；
// 分支内部是顺序的无条件if检查，同一参数后命中的关键词会覆盖先命中的
// （last-write-wins）。例如同时提到California和Texas时最终只过滤Texas。
// 这是沿用的线上行为，刻意不"修"成首次命中或多值累积。
func (qc *QueryClassifier) Analyze(query string) models.Intent {
	lowerQuery := strings.ToLower(query)

	if !qc.IsSalesRelated(query) {
		return models.Intent{IsOffTopic: true}
	}

	hasSalesKeywords := containsAny(lowerQuery, intentSalesKeywords)
	hasProductKeywords := containsAny(lowerQuery, productKeywords)
	hasAnalyticsKeywords := containsAny(lowerQuery, analyticsKeywords)
	hasLocationKeywords := containsAny(lowerQuery, locationKeywords)
	hasPerformanceKeywords := containsAny(lowerQuery, performanceKeywords)
	hasLowPerformanceKeywords := containsAny(lowerQuery, lowPerformanceKeywords)
	hasHighPerformanceKeywords := containsAny(lowerQuery, highPerformanceKeywords)

	// 分支1：地理维度线索
	if hasLocationKeywords || strings.Contains(lowerQuery, "state") || strings.Contains(lowerQuery, "city") {
		params := &models.AnalyticsParams{AnalysisType: "location_analysis"}

		if strings.Contains(lowerQuery, "state") {
			params.Dimension = "state"
		}
		if strings.Contains(lowerQuery, "city") || strings.Contains(lowerQuery, "cities") {
			params.Dimension = "city"
		}
		if strings.Contains(lowerQuery, "region") {
			params.Dimension = "region"
		}

		if hasLowPerformanceKeywords {
			params.PerformanceFilter = "lowest"
		}
		if hasHighPerformanceKeywords {
			params.PerformanceFilter = "highest"
		}

		return models.Intent{FunctionName: models.FuncGetSalesAnalytics, Analytics: params}
	}

	// 分支2：性能分析
	if hasPerformanceKeywords || hasLowPerformanceKeywords || hasHighPerformanceKeywords {
		params := &models.AnalyticsParams{AnalysisType: "performance_analysis"}

		if hasLowPerformanceKeywords {
			params.PerformanceType = "lowest"
			params.SortOrder = "asc"
		} else if hasHighPerformanceKeywords {
			params.PerformanceType = "highest"
			params.SortOrder = "desc"
		} else {
			params.PerformanceType = "overall"
		}

		switch {
		case strings.Contains(lowerQuery, "state"):
			params.Dimension = "state"
		case strings.Contains(lowerQuery, "city") || strings.Contains(lowerQuery, "cities"):
			params.Dimension = "city"
		case strings.Contains(lowerQuery, "region"):
			params.Dimension = "region"
		case strings.Contains(lowerQuery, "product"):
			params.Dimension = "product"
		case strings.Contains(lowerQuery, "category"):
			params.Dimension = "category"
		default:
			params.Dimension = "overall"
		}

		return models.Intent{FunctionName: models.FuncGetSalesAnalytics, Analytics: params}
	}

	// 分支3：通用销售数据查询（未命中产品/分析词时也落到这里）
	if hasSalesKeywords || (!hasProductKeywords && !hasAnalyticsKeywords) {
		params := &models.SalesDataParams{}

		// 州过滤：全名与邮编缩写都做子串检查，后命中者覆盖先命中者
		if strings.Contains(lowerQuery, "california") || strings.Contains(lowerQuery, "ca") {
			params.Filters.State = "California"
		}
		if strings.Contains(lowerQuery, "texas") || strings.Contains(lowerQuery, "tx") {
			params.Filters.State = "Texas"
		}
		if strings.Contains(lowerQuery, "florida") || strings.Contains(lowerQuery, "fl") {
			params.Filters.State = "Florida"
		}
		if strings.Contains(lowerQuery, "new york") || strings.Contains(lowerQuery, "ny") {
			params.Filters.State = "New York"
		}
		if strings.Contains(lowerQuery, "nevada") || strings.Contains(lowerQuery, "nv") {
			params.Filters.State = "Nevada"
		}
		if strings.Contains(lowerQuery, "illinois") || strings.Contains(lowerQuery, "il") {
			params.Filters.State = "Illinois"
		}

		if strings.Contains(lowerQuery, "west") {
			params.Filters.Region = "West"
		}
		if strings.Contains(lowerQuery, "east") {
			params.Filters.Region = "East"
		}
		if strings.Contains(lowerQuery, "central") {
			params.Filters.Region = "Central"
		}
		if strings.Contains(lowerQuery, "south") {
			params.Filters.Region = "South"
		}

		if strings.Contains(lowerQuery, "furniture") {
			params.Filters.Category = "Furniture"
		}
		if strings.Contains(lowerQuery, "technology") || strings.Contains(lowerQuery, "tech") {
			params.Filters.Category = "Technology"
		}
		if strings.Contains(lowerQuery, "office supplies") || strings.Contains(lowerQuery, "supplies") {
			params.Filters.Category = "Office Supplies"
		}

		for _, year := range []string{"2015", "2016", "2017", "2018"} {
			if strings.Contains(lowerQuery, year) {
				params.Filters.DateRange = year
			}
		}

		return models.Intent{FunctionName: models.FuncGetSalesData, SalesData: params}
	}

	// 分支4：产品洞察
	if hasProductKeywords {
		params := &models.ProductInsightParams{}

		if strings.Contains(lowerQuery, "top") || hasHighPerformanceKeywords {
			params.InsightType = "top_products"
		}
		if hasLowPerformanceKeywords {
			params.InsightType = "poor_products"
		}
		if strings.Contains(lowerQuery, "recommendation") {
			params.InsightType = "recommendations"
		}

		if strings.Contains(lowerQuery, "furniture") {
			params.Category = "Furniture"
		}
		if strings.Contains(lowerQuery, "technology") {
			params.Category = "Technology"
		}
		if strings.Contains(lowerQuery, "office supplies") {
			params.Category = "Office Supplies"
		}

		return models.Intent{FunctionName: models.FuncGetProductInsights, Product: params}
	}

	// 分支5：分析类查询
	if hasAnalyticsKeywords {
		params := &models.AnalyticsParams{}

		if strings.Contains(lowerQuery, "trend") {
			params.AnalysisType = "trends"
		}
		if strings.Contains(lowerQuery, "compare") {
			params.AnalysisType = "comparison"
		}
		if strings.Contains(lowerQuery, "performance") {
			params.AnalysisType = "performance"
		}

		if strings.Contains(lowerQuery, "region") {
			params.Dimension = "region"
		}
		if strings.Contains(lowerQuery, "category") {
			params.Dimension = "category"
		}
		if strings.Contains(lowerQuery, "time") {
			params.Dimension = "time"
		}

		return models.Intent{FunctionName: models.FuncGetSalesAnalytics, Analytics: params}
	}

	// 兜底：默认查销售数据
	return models.Intent{FunctionName: models.FuncGetSalesData, SalesData: &models.SalesDataParams{}}
}
