package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/schollz/progressbar/v3"

	"github.com/salesagent/service/internal/models"
	"github.com/salesagent/service/internal/services"
	"github.com/salesagent/service/internal/store"
)

// dataset-check：本地数据集体检工具。
// 校验CSV可解析性并打印一次冒烟聚合；也可以生成假数据集用于本地联调。
func main() {
	dataPath := flag.String("data", "data/train.csv", "销售数据CSV路径")
	generate := flag.Int("generate", 0, "生成N条假记录写入-out指定的文件后退出")
	outPath := flag.String("out", "data/fake_train.csv", "假数据集输出路径")
	flag.Parse()

	if *generate > 0 {
		if err := generateDataset(*outPath, *generate); err != nil {
			log.Fatalf("❌ 生成假数据集失败: %v", err)
		}
		log.Printf("✅ 已生成 %d 条假记录: %s", *generate, *outPath)
		return
	}

	checkDataset(*dataPath)
}

// checkDataset 逐行解析并打印聚合摘要
func checkDataset(path string) {
	file, err := os.Open(path)
	if err != nil {
		log.Fatalf("❌ 打开数据集失败: %v", err)
	}

	// 先数行，进度条需要总量
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	var lines []string
	for scanner.Scan() {
		if strings.TrimSpace(scanner.Text()) != "" {
			lines = append(lines, scanner.Text())
		}
	}
	file.Close()
	if err := scanner.Err(); err != nil {
		log.Fatalf("❌ 读取数据集失败: %v", err)
	}
	if len(lines) == 0 {
		log.Fatalf("❌ 数据集为空: %s", path)
	}

	headers := store.ParseCSVLine(lines[0])
	fmt.Printf("📊 表头(%d列): %v\n", len(headers), headers)

	bar := progressbar.Default(int64(len(lines)-1), "解析记录")
	badLines := 0
	for _, line := range lines[1:] {
		values := store.ParseCSVLine(line)
		if len(values) != len(headers) {
			badLines++
		}
		_ = bar.Add(1)
	}
	fmt.Printf("\n🧪 列数与表头不一致的行: %d / %d\n", badLines, len(lines)-1)

	// 冒烟聚合：与服务启动时完全相同的加载路径
	dataStore := store.NewSalesStore(path)
	salesService := services.NewSalesService(dataStore)
	start := time.Now()
	result := salesService.GetSalesData(models.Filter{})
	fmt.Printf("⏱️ 全量聚合耗时: %v\n", time.Since(start))
	fmt.Printf("💰 总销售额: %d, 交易数: %d, 城市: %d, 品类: %d, 时间点: %d\n",
		result.Summary.TotalSales,
		result.Summary.TotalTransactions,
		len(result.MapData),
		len(result.ChartData.CategoryBreakdown),
		len(result.ChartData.TimeSeries))
	for _, insight := range result.Insights {
		fmt.Printf("  %s\n", insight)
	}
}

// generateDataset 用假数据生成与线上同构的CSV（带引号字段与千分位金额）
func generateDataset(path string, count int) error {
	gofakeit.Seed(time.Now().UnixNano())

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	defer w.Flush()

	if _, err := w.WriteString("Order Date,State,City,Region,Category,Product Name,Sales\n"); err != nil {
		return err
	}

	regions := []string{"West", "East", "Central", "South"}
	categories := []string{"Furniture", "Technology", "Office Supplies"}

	bar := progressbar.Default(int64(count), "生成记录")
	for i := 0; i < count; i++ {
		date := fmt.Sprintf("%d/%d/%d",
			gofakeit.Number(1, 12), gofakeit.Number(1, 28), gofakeit.Number(2015, 2018))
		// 产品名带逗号，专门用来检验引号解析
		product := fmt.Sprintf("%s %s, %s", gofakeit.Company(), gofakeit.BuzzWord(), gofakeit.ProductName())
		amount := gofakeit.Price(2, 9000)

		line := fmt.Sprintf("%s,%s,%s,%s,%s,\"%s\",\"%s\"\n",
			date,
			gofakeit.State(),
			gofakeit.City(),
			regions[gofakeit.Number(0, len(regions)-1)],
			categories[gofakeit.Number(0, len(categories)-1)],
			product,
			formatAmount(amount))
		if _, err := w.WriteString(line); err != nil {
			return err
		}
		_ = bar.Add(1)
	}

	return nil
}

// formatAmount 带千分位的金额文本，如 1,234.56
func formatAmount(v float64) string {
	whole := int(v)
	frac := int((v - float64(whole)) * 100)
	s := fmt.Sprintf("%d", whole)
	var b strings.Builder
	for i, ch := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(ch)
	}
	return fmt.Sprintf("%s.%02d", b.String(), frac)
}
