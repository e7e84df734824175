package store

import (
	"bufio"
	"log"
	"os"
	"strings"

	"github.com/salesagent/service/internal/models"
)

// SalesStore 进程内只读销售数据集。
// 启动时一次性构造，构造完成后不再写入，因此跨请求并发读取无需加锁。
type SalesStore struct {
	headers []string
	records []models.SalesRecord
}

// ParseCSVLine 解析一行CSV：单遍扫描，遇引号翻转"引号内"标记，
// 只有在引号外的逗号才切分字段。引号内的字面逗号会被保留。
func ParseCSVLine(line string) []string {
	var result []string
	var current strings.Builder
	inQuotes := false

	for _, ch := range line {
		switch {
		case ch == '"':
			inQuotes = !inQuotes
		case ch == ',' && !inQuotes:
			result = append(result, strings.TrimSpace(current.String()))
			current.Reset()
		default:
			current.WriteRune(ch)
		}
	}

	result = append(result, strings.TrimSpace(current.String()))
	return result
}

// cleanValue 去掉残留引号并修剪空白
func cleanValue(value string) string {
	return strings.TrimSpace(strings.ReplaceAll(value, `"`, ""))
}

// NewSalesStore 读取CSV文件构建数据集。
// 任何读取失败都不致命：返回空数据集，后续聚合给出"无数据"结果。
func NewSalesStore(path string) *SalesStore {
	s := &SalesStore{}

	file, err := os.Open(path)
	if err != nil {
		log.Printf("❌ 加载CSV失败: %v", err)
		return s
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	// 部分产品名较长，放宽单行缓冲
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		line := scanner.Text()
		lineNo++
		if strings.TrimSpace(line) == "" {
			continue
		}

		if s.headers == nil {
			// 首行定义字段名（保持顺序）
			for _, h := range ParseCSVLine(line) {
				s.headers = append(s.headers, cleanValue(h))
			}
			log.Printf("📊 CSV表头: %v", s.headers)
			continue
		}

		record, ok := s.parseRecord(line)
		if !ok {
			// 单行解析失败只丢弃该行，不中断整体加载
			log.Printf("解析第%d行失败，已跳过", lineNo)
			continue
		}
		s.records = append(s.records, record)
	}

	if err := scanner.Err(); err != nil {
		log.Printf("❌ 读取CSV出错: %v (已加载%d条)", err, len(s.records))
	}

	log.Printf("✅ 已加载 %d 条销售记录", len(s.records))
	return s
}

// NewSalesStoreFromRecords 直接从记录列表构建（测试与工具用）
func NewSalesStoreFromRecords(records []models.SalesRecord) *SalesStore {
	return &SalesStore{records: records}
}

// parseRecord 将一行按表头顺序映射为记录。
// 第N个值对应第N个表头，缺失的尾部值默认为空字符串。
func (s *SalesStore) parseRecord(line string) (record models.SalesRecord, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
		}
	}()

	values := ParseCSVLine(line)
	row := make(map[string]string, len(s.headers))
	for i, header := range s.headers {
		value := ""
		if i < len(values) {
			value = cleanValue(values[i])
		}
		row[header] = value
	}

	return models.SalesRecord{
		OrderDate:   row["Order Date"],
		State:       row["State"],
		City:        row["City"],
		Region:      row["Region"],
		Category:    row["Category"],
		ProductName: row["Product Name"],
		Sales:       row["Sales"],
	}, true
}

// Records 返回全部记录。调用方只读，不得修改。
func (s *SalesStore) Records() []models.SalesRecord {
	return s.records
}

// Len 记录条数
func (s *SalesStore) Len() int {
	return len(s.records)
}

// Headers 表头（按文件顺序）
func (s *SalesStore) Headers() []string {
	return s.headers
}
