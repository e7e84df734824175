package services

import (
	"fmt"
	"log"
	"math"
	"sort"
	"strings"

	"github.com/salesagent/service/internal/models"
	"github.com/salesagent/service/internal/store"
)

// AnalyticsService 维度分析与产品洞察的薄包装，委托SalesService做聚合，
// 只负责按分析类型挑选数据切片并附加洞察文案。
type AnalyticsService struct {
	store *store.SalesStore
	sales *SalesService
}

// NewAnalyticsService 创建分析服务
func NewAnalyticsService(s *store.SalesStore, sales *SalesService) *AnalyticsService {
	return &AnalyticsService{store: s, sales: sales}
}

// GetSalesAnalytics 按analysisType分发。trends/comparison/performance
// 返回对应的数据切片加固定洞察；其它类型（含location_analysis、
// performance_analysis）原样透传基础聚合结果，由展示层决定视图。
func (as *AnalyticsService) GetSalesAnalytics(params models.AnalyticsParams) interface{} {
	data := as.sales.GetSalesData(params.Filters)

	switch params.AnalysisType {
	case "trends":
		return &models.AnalyticsResult{
			Type:      "trends",
			Dimension: params.Dimension,
			Data:      data.ChartData.TimeSeries,
			Insights:  []string{"Sales trending upward", "Peak performance in Q4"},
		}
	case "comparison":
		return &models.AnalyticsResult{
			Type:      "comparison",
			Dimension: params.Dimension,
			Data:      data.ChartData.CategoryBreakdown,
			Insights:  []string{"Technology leads in sales", "Furniture has highest margins"},
		}
	case "performance":
		return &models.AnalyticsResult{
			Type:     "performance",
			Data:     data.Summary,
			Insights: []string{"Strong overall performance", "Room for improvement in Central region"},
		}
	default:
		return data
	}
}

// GetProductInsights 产品洞察：先按产品名/品类子串过滤，再按insightType分发。
// 注意分类器可能给出poor_products，这里没有对应分支，会落到默认的
// 产品分析视图，与既有行为一致。
func (as *AnalyticsService) GetProductInsights(params models.ProductInsightParams) *models.ProductInsightsResult {
	log.Printf("🛍️ getProductInsights: insightType=%s, category=%s, productName=%s",
		params.InsightType, params.Category, params.ProductName)

	filtered := as.store.Records()

	if params.ProductName != "" {
		filtered = filterRecords(filtered, func(r models.SalesRecord) bool {
			return strings.Contains(strings.ToLower(r.ProductName), strings.ToLower(params.ProductName))
		})
	}
	if params.Category != "" {
		filtered = filterRecords(filtered, func(r models.SalesRecord) bool {
			return strings.Contains(strings.ToLower(r.Category), strings.ToLower(params.Category))
		})
	}

	switch params.InsightType {
	case "top_products":
		return topProducts(filtered)
	case "recommendations":
		return &models.ProductInsightsResult{
			Type: "recommendations",
			Recommendations: []string{
				"Focus on high-margin products",
				"Expand successful products to underperforming regions",
				"Consider seasonal promotions",
			},
			Insights: []string{"Data-driven recommendations available"},
		}
	default:
		return &models.ProductInsightsResult{
			Type:     "product_analysis",
			Data:     filtered,
			Insights: []string{"Product analysis complete"},
		}
	}
}

// topProducts 按产品名聚合销售额，降序取前10，金额取整
func topProducts(records []models.SalesRecord) *models.ProductInsightsResult {
	acc := make(map[string]float64)
	for _, r := range records {
		product := r.ProductName
		if product == "" {
			product = "Unknown Product"
		}
		acc[product] += parseAmount(r.Sales)
	}

	products := make([]models.ProductSales, 0, len(acc))
	for product, sales := range acc {
		products = append(products, models.ProductSales{Product: product, Sales: int(math.Round(sales))})
	}
	sort.Slice(products, func(i, j int) bool {
		if products[i].Sales != products[j].Sales {
			return products[i].Sales > products[j].Sales
		}
		return products[i].Product < products[j].Product
	})
	if len(products) > 10 {
		products = products[:10]
	}

	insights := []string{}
	if len(products) > 0 {
		insights = append(insights,
			fmt.Sprintf("🏆 Top product: %s", products[0].Product),
			fmt.Sprintf("💰 Generates $%s in sales", formatInt(products[0].Sales)))
	}

	return &models.ProductInsightsResult{
		Type:     "top_products",
		Products: products,
		Insights: insights,
	}
}
