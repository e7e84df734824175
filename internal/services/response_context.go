package services

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/salesagent/service/internal/models"
)

// =============================================================================
// 响应上下文渲染：把聚合结果渲成发给LLM的markdown文本块
// =============================================================================

// 跑题时的固定回答文案
const OffTopicAnswer = `I'm a specialized AI sales analyst focused exclusively on helping you analyze your sales data and business performance.

I can help you with:
📊 Sales performance analysis
📈 Revenue trends and patterns
🏙️ Regional and city-based insights
📦 Product category comparisons
🏆 Top performing products and regions
📉 Growth and performance metrics
🗺️ Geographic coverage analysis
⚠️ Underperforming areas analysis

Please ask me about your sales data, and I'll create beautiful visualizations and insights for you!

**Try asking:**
• "Show me least performing cities"
• "Which states are underperforming?"
• "Top vs worst performing products"
• "Compare California vs Texas performance"
• "Identify improvement opportunities"`

// BuildAnalysisContext 根据意图与聚合结果渲染分析上下文
func BuildAnalysisContext(functionResult interface{}, intent models.Intent) string {
	switch intent.FunctionName {
	case models.FuncGetSalesData:
		if data, ok := functionResult.(*models.AggregationResult); ok {
			return salesDataContext(data, intent)
		}
	case models.FuncGetSalesAnalytics:
		return analyticsContext(functionResult, intent)
	case models.FuncGetProductInsights:
		if data, ok := functionResult.(*models.ProductInsightsResult); ok {
			return productContext(data, intent)
		}
	}
	return ""
}

func salesDataContext(data *models.AggregationResult, intent models.Intent) string {
	filters := intent.BaseFilter()

	var scope string
	if filters.State != "" {
		scope = " for " + filters.State
	}
	if filters.Category != "" {
		scope += " in " + filters.Category
	}

	states := uniqueStates(data.MapData)
	cities := make([]string, 0, len(data.ChartData.CityBreakdown))
	for _, c := range data.ChartData.CityBreakdown {
		if c.City != "" {
			cities = append(cities, c.City)
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📊 **Sales Performance Analysis**%s\n\n", scope)
	b.WriteString("**💰 Key Metrics:**\n")
	fmt.Fprintf(&b, "• Total Revenue: $%s\n", formatInt(data.Summary.TotalSales))
	fmt.Fprintf(&b, "• Total Transactions: %s\n", formatInt(data.Summary.TotalTransactions))
	fmt.Fprintf(&b, "• Average Order Value: $%s\n\n", formatInt(data.Summary.AvgTransactionValue))

	b.WriteString("**🏢 Geographic Coverage:**\n")
	stateList := states
	more := ""
	if len(stateList) > 5 {
		more = fmt.Sprintf(" and %d more", len(stateList)-5)
		stateList = stateList[:5]
	}
	fmt.Fprintf(&b, "• We're selling in %d states: %s%s\n", len(states), strings.Join(stateList, ", "), more)
	if len(cities) > 5 {
		cities = cities[:5]
	}
	fmt.Fprintf(&b, "• Top cities include: %s\n\n", strings.Join(cities, ", "))

	b.WriteString("**📈 Top Categories:**\n")
	top := data.ChartData.CategoryBreakdown
	if len(top) > 3 {
		top = top[:3]
	}
	for _, cat := range top {
		fmt.Fprintf(&b, "• %s: $%s\n", cat.Category, formatInt(int(math.Round(cat.Sales))))
	}

	b.WriteString("\n**🔍 Key Insights:**\n")
	writeInsightBullets(&b, data.Insights)
	return b.String()
}

func analyticsContext(functionResult interface{}, intent models.Intent) string {
	params := intent.Analytics
	if params == nil {
		params = &models.AnalyticsParams{}
	}

	if data, ok := functionResult.(*models.AggregationResult); ok {
		switch params.AnalysisType {
		case "performance_analysis":
			return performanceContext(data, params)
		case "location_analysis":
			return locationContext(data)
		}
	}

	// trends/comparison/performance等包装结果走通用视图
	var b strings.Builder
	b.WriteString("📊 **Advanced Analytics**\n\n")
	writeInsightBullets(&b, extractInsights(functionResult))
	return b.String()
}

func performanceContext(data *models.AggregationResult, params *models.AnalyticsParams) string {
	isLowest := params.PerformanceType == "lowest"

	cities := make([]models.CityStat, len(data.ChartData.CityBreakdown))
	copy(cities, data.ChartData.CityBreakdown)
	sort.Slice(cities, func(i, j int) bool {
		if isLowest {
			return cities[i].Sales < cities[j].Sales
		}
		return cities[i].Sales > cities[j].Sales
	})

	states := stateTotals(data.MapData)
	sort.Slice(states, func(i, j int) bool {
		if isLowest {
			return states[i].Sales < states[j].Sales
		}
		return states[i].Sales > states[j].Sales
	})

	label := map[bool][2]string{
		true:  {"Lowest", "Underperforming"},
		false: {"Highest", "Top Performing"},
	}[isLowest]

	var b strings.Builder
	fmt.Fprintf(&b, "🎯 **%s Performance Analysis**\n\n", label[0])
	fmt.Fprintf(&b, "**📊 %s Areas:**\n\n", label[1])

	if isLowest {
		b.WriteString("**🏙️ Cities Needing Attention:**\n")
	} else {
		b.WriteString("**🏙️ Cities Leading Sales:**\n")
	}
	marker := " 🏆"
	if isLowest {
		marker = " ⚠️"
	}
	for i, city := range cities {
		if i >= 10 {
			break
		}
		fmt.Fprintf(&b, "%d. %s: $%s%s\n", i+1, city.City, formatInt(int(math.Round(city.Sales))), marker)
	}

	b.WriteString("\n**📍 States Performance:**\n")
	stateMarker := " 📈"
	if isLowest {
		stateMarker = " 📉"
	}
	for i, state := range states {
		if i >= 10 {
			break
		}
		fmt.Fprintf(&b, "%d. %s: $%s%s\n", i+1, state.Name, formatInt(int(math.Round(state.Sales))), stateMarker)
	}

	if isLowest {
		b.WriteString("\n**💡 Improvement Opportunities:**\n")
		b.WriteString("• Focus marketing efforts on underperforming cities\n")
		b.WriteString("• Analyze successful strategies from top performers\n")
		b.WriteString("• Consider product mix adjustments\n")
		b.WriteString("• Investigate local market conditions\n")
		b.WriteString("• Implement targeted promotional campaigns\n")
	} else {
		b.WriteString("\n**💡 Success Factors:**\n")
		b.WriteString("• Replicate successful strategies in other markets\n")
		b.WriteString("• Increase investment in high-performing areas\n")
		b.WriteString("• Expand product offerings in successful regions\n")
		b.WriteString("• Study customer preferences in top markets\n")
		b.WriteString("• Scale winning campaigns to other locations\n")
	}

	b.WriteString("\n**🎯 Action Items:**\n")
	writeInsightBullets(&b, data.Insights)
	return b.String()
}

func locationContext(data *models.AggregationResult) string {
	states := uniqueStates(data.MapData)
	cities := data.ChartData.CityBreakdown

	var b strings.Builder
	b.WriteString("🗺️ **Geographic Sales Analysis**\n\n")
	b.WriteString("**📍 States Analysis:**\n")
	fmt.Fprintf(&b, "• Total States: %d\n", len(states))
	fmt.Fprintf(&b, "• Active Markets: %s\n\n", strings.Join(states, ", "))

	b.WriteString("**🏙️ Cities Analysis:**\n")
	fmt.Fprintf(&b, "• Total Cities: %d\n", len(cities))
	b.WriteString("• Top Performing Cities:\n")
	for i, city := range cities {
		if i >= 5 {
			break
		}
		fmt.Fprintf(&b, "  • %s: $%s\n", city.City, formatInt(int(math.Round(city.Sales))))
	}

	b.WriteString("\n**🎯 Insights:**\n")
	writeInsightBullets(&b, data.Insights)
	return b.String()
}

func productContext(data *models.ProductInsightsResult, intent models.Intent) string {
	insightType := "top_products"
	if intent.Product != nil && intent.Product.InsightType != "" {
		insightType = intent.Product.InsightType
	}
	isLow := insightType == "poor_products"

	var b strings.Builder
	if isLow {
		b.WriteString("🛍️ **Product Performance Insights** (Low Performers)\n\n")
		b.WriteString("**⚠️ Underperforming Products:**\n")
	} else {
		b.WriteString("🛍️ **Product Performance Insights** (Top Performers)\n\n")
		b.WriteString("**🏆 Top Products:**\n")
	}

	marker := " 🚀"
	if isLow {
		marker = " 📉"
	}
	for i, p := range data.Products {
		if i >= 8 {
			break
		}
		fmt.Fprintf(&b, "%d. %s: $%s%s\n", i+1, p.Product, formatInt(p.Sales), marker)
	}

	if isLow {
		b.WriteString("\n**💡 Improvement Strategies:**\n")
		b.WriteString("• Review pricing strategy for underperformers\n")
		b.WriteString("• Consider product bundling opportunities\n")
		b.WriteString("• Analyze customer feedback and reviews\n")
		b.WriteString("• Evaluate marketing campaigns effectiveness\n")
		b.WriteString("• Assess inventory management\n")
		b.WriteString("• Consider seasonal factors\n")
	} else {
		b.WriteString("\n**💡 Success Recommendations:**\n")
		b.WriteString("• Increase inventory for high-demand products\n")
		b.WriteString("• Expand successful product lines\n")
		b.WriteString("• Create product bundles with top performers\n")
		b.WriteString("• Enhance marketing for bestsellers\n")
		b.WriteString("• Study customer preferences\n")
		b.WriteString("• Consider premium variants\n")
	}

	b.WriteString("\n**🎯 Actionable Insights:**\n")
	writeInsightBullets(&b, data.Insights)
	return b.String()
}

// stateTotal 按州汇总销售额（展示用）
type stateTotal struct {
	Name  string
	Sales float64
}

func stateTotals(mapData []models.CityStat) []stateTotal {
	acc := make(map[string]float64)
	for _, city := range mapData {
		if city.State == "" {
			continue
		}
		acc[city.State] += city.Sales
	}
	out := make([]stateTotal, 0, len(acc))
	for name, sales := range acc {
		out = append(out, stateTotal{Name: name, Sales: sales})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func uniqueStates(mapData []models.CityStat) []string {
	seen := make(map[string]bool)
	var out []string
	for _, city := range mapData {
		if city.State == "" || seen[city.State] {
			continue
		}
		seen[city.State] = true
		out = append(out, city.State)
	}
	return out
}

func writeInsightBullets(b *strings.Builder, insights []string) {
	if len(insights) == 0 {
		b.WriteString("• Analysis complete!\n")
		return
	}
	for _, insight := range insights {
		fmt.Fprintf(b, "• %s\n", insight)
	}
}

// extractInsights 从任意结果形态中取洞察列表
func extractInsights(functionResult interface{}) []string {
	switch v := functionResult.(type) {
	case *models.AggregationResult:
		return v.Insights
	case *models.AnalyticsResult:
		return v.Insights
	case *models.ProductInsightsResult:
		return v.Insights
	}
	return nil
}
