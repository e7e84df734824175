package services

import (
	"fmt"
	"strings"

	"github.com/salesagent/service/internal/models"
)

// 跑题时的固定建议列表
var offTopicSuggestions = []string{
	"Show me least performing cities",
	"Which states are underperforming?",
	"Top vs worst performing products",
	"Compare California vs Texas performance",
	"Identify improvement opportunities",
}

// GenerateSmartSuggestions 基于当前查询和意图生成后续建议。
// 决策顺序：低性能词 → 高性能词 → 州 → 城市 → 产品 → 已有州过滤 →
// 已有品类过滤 → 默认。
func GenerateSmartSuggestions(query string, intent models.Intent) []string {
	lowerQuery := strings.ToLower(query)

	switch {
	case strings.Contains(lowerQuery, "least") || strings.Contains(lowerQuery, "worst") ||
		strings.Contains(lowerQuery, "poor") || strings.Contains(lowerQuery, "low"):
		return []string{
			"Show me top performing cities for comparison",
			"Which products need improvement?",
			"Identify underperforming regions",
			"Compare worst vs best performers",
			"Improvement strategies for weak areas",
		}
	case strings.Contains(lowerQuery, "top") || strings.Contains(lowerQuery, "best") ||
		strings.Contains(lowerQuery, "highest"):
		return []string{
			"Show me least performing areas",
			"Compare best vs worst performers",
			"Identify success factors",
			"Replicate winning strategies",
			"Expand successful products",
		}
	case strings.Contains(lowerQuery, "state") || strings.Contains(lowerQuery, "states"):
		return []string{
			"Which states have lowest sales?",
			"Show me California vs Texas comparison",
			"Regional performance analysis",
			"Top cities in each state",
			"State-wise improvement opportunities",
		}
	case strings.Contains(lowerQuery, "city") || strings.Contains(lowerQuery, "cities"):
		return []string{
			"Top 10 cities by sales",
			"Cities with lowest performance",
			"New York vs Los Angeles sales",
			"City improvement opportunities",
			"Urban vs rural performance",
		}
	case strings.Contains(lowerQuery, "product"):
		return []string{
			"Best selling products",
			"Worst performing products",
			"Product category analysis",
			"Furniture vs Technology sales",
			"Product improvement recommendations",
		}
	}

	filters := intent.BaseFilter()
	if filters.State != "" {
		return []string{
			fmt.Sprintf("Compare %s with other states", filters.State),
			fmt.Sprintf("Least performing cities in %s", filters.State),
			fmt.Sprintf("%s product categories", filters.State),
			"Regional improvement analysis",
			"Market expansion opportunities",
		}
	}
	if filters.Category != "" {
		return []string{
			fmt.Sprintf("%s top products", filters.Category),
			fmt.Sprintf("%s underperformers", filters.Category),
			"Category comparison analysis",
			"Product line opportunities",
			"Category improvement strategies",
		}
	}

	return []string{
		"Show me all sales data",
		"Top 10 cities by revenue",
		"Least performing regions",
		"Best vs worst products",
		"Performance improvement opportunities",
	}
}
