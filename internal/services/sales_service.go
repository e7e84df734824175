package services

import (
	"fmt"
	"log"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/salesagent/service/internal/models"
	"github.com/salesagent/service/internal/store"
)

// SalesService 销售数据聚合引擎。
// 数据集只读，聚合是纯函数：相同过滤条件必然得到相同结果。
type SalesService struct {
	store *store.SalesStore
}

// NewSalesService 创建聚合引擎
func NewSalesService(s *store.SalesStore) *SalesService {
	return &SalesService{store: s}
}

// parseAmount 解析金额文本：去掉千分位逗号后按十进制解析，失败返回0。
// 整串解析，不做数字前缀截取，"1234.50 USD"这类带尾注的值按0计入。
func parseAmount(raw string) float64 {
	if raw == "" {
		return 0
	}
	value, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", ""), 64)
	if err != nil {
		return 0
	}
	return value
}

func matchField(field, filter string) bool {
	return strings.Contains(strings.ToLower(field), strings.ToLower(filter))
}

// GetSalesData 按过滤条件聚合销售数据
func (ss *SalesService) GetSalesData(filters models.Filter) *models.AggregationResult {
	log.Printf("🔍 getSalesData 过滤条件: %+v", filters)

	records := ss.store.Records()
	if len(records) == 0 {
		log.Printf("❌ 没有可用的销售数据")
		return emptyResult()
	}

	filtered := records
	// 各维度独立收窄工作集，维度间是AND关系
	if filters.State != "" {
		filtered = filterRecords(filtered, func(r models.SalesRecord) bool { return matchField(r.State, filters.State) })
		log.Printf("🗺️ 州过滤 '%s': 剩余%d条", filters.State, len(filtered))
	}
	if filters.City != "" {
		filtered = filterRecords(filtered, func(r models.SalesRecord) bool { return matchField(r.City, filters.City) })
		log.Printf("🏙️ 城市过滤 '%s': 剩余%d条", filters.City, len(filtered))
	}
	if filters.Region != "" {
		filtered = filterRecords(filtered, func(r models.SalesRecord) bool { return matchField(r.Region, filters.Region) })
		log.Printf("🌎 区域过滤 '%s': 剩余%d条", filters.Region, len(filtered))
	}
	if filters.Category != "" {
		filtered = filterRecords(filtered, func(r models.SalesRecord) bool { return matchField(r.Category, filters.Category) })
		log.Printf("📦 品类过滤 '%s': 剩余%d条", filters.Category, len(filtered))
	}

	if len(filtered) == 0 {
		log.Printf("❌ 过滤后没有数据")
		return noResultsFound(filters)
	}

	var totalSales float64
	for _, r := range filtered {
		totalSales += parseAmount(r.Sales)
	}
	totalTransactions := len(filtered)
	avgTransactionValue := 0.0
	if totalTransactions > 0 {
		avgTransactionValue = totalSales / float64(totalTransactions)
	}

	cityStats := groupByCity(filtered)
	categoryStats := groupByCategory(filtered)
	timeSeries := groupByMonth(filtered)

	// 城市按销售额降序取前20；品类全量按销售额降序；时间序列按日期升序。
	// 同额时按名称排序，保证重复调用结果逐位一致。
	cityBreakdown := make([]models.CityStat, len(cityStats))
	copy(cityBreakdown, cityStats)
	if len(cityBreakdown) > 20 {
		cityBreakdown = cityBreakdown[:20]
	}

	location := filters.State
	if location == "" {
		location = filters.City
	}
	if location == "" {
		location = filters.Region
	}
	if location == "" {
		location = "All Regions"
	}

	rawData := filtered
	if len(rawData) > 50 {
		rawData = rawData[:50]
	}

	result := &models.AggregationResult{
		Summary: models.Summary{
			Location:            location,
			TotalSales:          int(math.Round(totalSales)),
			TotalTransactions:   totalTransactions,
			AvgTransactionValue: int(math.Round(avgTransactionValue)),
			Filters:             filters,
		},
		ChartData: models.ChartData{
			CityBreakdown:     cityBreakdown,
			CategoryBreakdown: categoryStats,
			TimeSeries:        timeSeries,
		},
		MapData:  cityStats,
		RawData:  rawData,
		Insights: generateInsights(filtered, cityStats, categoryStats, totalSales, avgTransactionValue),
	}

	log.Printf("✅ 聚合完成: 总销售额=%d, 品类=%d, 城市=%d, 时间点=%d",
		result.Summary.TotalSales,
		len(result.ChartData.CategoryBreakdown),
		len(result.ChartData.CityBreakdown),
		len(result.ChartData.TimeSeries))

	return result
}

func filterRecords(records []models.SalesRecord, keep func(models.SalesRecord) bool) []models.SalesRecord {
	var out []models.SalesRecord
	for _, r := range records {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

// groupByCity 按城市累计销售额与交易数，带上该城市观测到的州/区域标签
func groupByCity(records []models.SalesRecord) []models.CityStat {
	acc := make(map[string]*models.CityStat)
	for _, r := range records {
		city := r.City
		if city == "" {
			city = "Unknown"
		}
		stat, exists := acc[city]
		if !exists {
			stat = &models.CityStat{City: city, State: r.State, Region: r.Region}
			acc[city] = stat
		}
		stat.Sales += parseAmount(r.Sales)
		stat.Transactions++
	}

	out := make([]models.CityStat, 0, len(acc))
	for _, stat := range acc {
		out = append(out, *stat)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Sales != out[j].Sales {
			return out[i].Sales > out[j].Sales
		}
		return out[i].City < out[j].City
	})
	return out
}

// groupByCategory 按品类累计
func groupByCategory(records []models.SalesRecord) []models.CategoryStat {
	acc := make(map[string]*models.CategoryStat)
	for _, r := range records {
		category := r.Category
		if category == "" {
			category = "Unknown"
		}
		stat, exists := acc[category]
		if !exists {
			stat = &models.CategoryStat{Category: category}
			acc[category] = stat
		}
		stat.Sales += parseAmount(r.Sales)
		stat.Transactions++
	}

	out := make([]models.CategoryStat, 0, len(acc))
	for _, stat := range acc {
		out = append(out, *stat)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Sales != out[j].Sales {
			return out[i].Sales > out[j].Sales
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// groupByMonth 按自然月分桶。订单日期为M/D/YYYY，斜杠切分不足3段的行
// 从时间序列中跳过，不影响其它聚合输出。
func groupByMonth(records []models.SalesRecord) []models.TimePoint {
	acc := make(map[string]*models.TimePoint)
	for _, r := range records {
		if r.OrderDate == "" {
			continue
		}
		parts := strings.Split(r.OrderDate, "/")
		if len(parts) != 3 {
			continue
		}

		month := parts[0]
		if len(month) < 2 {
			month = "0" + month
		}
		year := parts[2]
		key := year + "-" + month

		point, exists := acc[key]
		if !exists {
			point = &models.TimePoint{Date: key + "-01"}
			acc[key] = point
		}
		point.Sales += parseAmount(r.Sales)
		point.Transactions++
	}

	out := make([]models.TimePoint, 0, len(acc))
	for _, point := range acc {
		out = append(out, *point)
	}
	// 键为YYYY-MM-01，字典序即时间序
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// emptyResult 数据集为空时的规范结果
func emptyResult() *models.AggregationResult {
	return &models.AggregationResult{
		Summary: models.Summary{
			Location: "No Data",
		},
		ChartData: models.ChartData{
			CityBreakdown:     []models.CityStat{},
			CategoryBreakdown: []models.CategoryStat{},
			TimeSeries:        []models.TimePoint{},
		},
		MapData:  []models.CityStat{},
		RawData:  []models.SalesRecord{},
		Insights: []string{"No sales data available. Please check your data file."},
	}
}

// noResultsFound 过滤后为空时的规范结果，location回显第一个存在的过滤值
func noResultsFound(filters models.Filter) *models.AggregationResult {
	location := filters.State
	if location == "" {
		location = filters.City
	}
	if location == "" {
		location = filters.Region
	}
	if location == "" {
		location = "No Results"
	}

	return &models.AggregationResult{
		Summary: models.Summary{
			Location: location,
			Filters:  filters,
		},
		ChartData: models.ChartData{
			CityBreakdown:     []models.CityStat{},
			CategoryBreakdown: []models.CategoryStat{},
			TimeSeries:        []models.TimePoint{},
		},
		MapData: []models.CityStat{},
		RawData: []models.SalesRecord{},
		Insights: []string{
			"No data found for the specified filters.",
			"Try adjusting your search criteria or removing some filters.",
			"Available data includes: California, Texas, Florida, New York, and more states.",
		},
	}
}

// generateInsights 生成洞察文案。交易数/总收入/平均客单价必出；
// 最高销售额的城市与品类仅在聚合值为正时附加。
func generateInsights(filtered []models.SalesRecord, cityStats []models.CityStat, categoryStats []models.CategoryStat, totalSales, avgTransactionValue float64) []string {
	insights := []string{}

	if len(filtered) == 0 {
		return append(insights, "No data found for the specified filters.")
	}

	insights = append(insights, fmt.Sprintf("📊 Found %s transactions", formatInt(len(filtered))))
	insights = append(insights, fmt.Sprintf("💰 Total revenue: $%s", formatInt(int(math.Round(totalSales)))))
	insights = append(insights, fmt.Sprintf("💵 Average order value: $%.2f", avgTransactionValue))

	if len(cityStats) > 0 && cityStats[0].Sales > 0 {
		insights = append(insights, fmt.Sprintf("🏆 Top city: %s ($%s)",
			cityStats[0].City, formatInt(int(math.Round(cityStats[0].Sales)))))
	}

	if len(categoryStats) > 0 && categoryStats[0].Sales > 0 {
		insights = append(insights, fmt.Sprintf("📦 Leading category: %s ($%s)",
			categoryStats[0].Category, formatInt(int(math.Round(categoryStats[0].Sales)))))
	}

	return insights
}

// formatInt 千分位格式化，对应前端的toLocaleString展示
func formatInt(n int) string {
	s := strconv.Itoa(n)
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}
	var b strings.Builder
	for i, ch := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(ch)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}
