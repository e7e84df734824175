package store

import (
	"os"
	"path/filepath"
	"testing"
)

// TestParseCSVLine 测试引号感知的单行解析
func TestParseCSVLine(t *testing.T) {
	// 普通行
	values := ParseCSVLine("a,b,c")
	if len(values) != 3 || values[0] != "a" || values[2] != "c" {
		t.Errorf("普通行解析错误: %v", values)
	}

	// 引号内的逗号不切分
	values = ParseCSVLine(`3/5/2016,Texas,"Bush Somerset Collection, Bookcase","1,234.50"`)
	if len(values) != 4 {
		t.Fatalf("带引号行应为4个字段, 得到%d个: %v", len(values), values)
	}
	if values[2] != "Bush Somerset Collection, Bookcase" {
		t.Errorf("引号字段内的逗号被错误切分: %q", values[2])
	}
	if values[3] != "1,234.50" {
		t.Errorf("金额字段解析错误: %q", values[3])
	}

	// 字段前后空白被修剪
	values = ParseCSVLine("  a  , b ,c")
	if values[0] != "a" || values[1] != "b" {
		t.Errorf("空白修剪错误: %v", values)
	}

	// 空行只产生一个空字段
	values = ParseCSVLine("")
	if len(values) != 1 || values[0] != "" {
		t.Errorf("空行解析错误: %v", values)
	}
}

func writeTempCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "train.csv")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("写临时CSV失败: %v", err)
	}
	return path
}

// TestNewSalesStore 测试数据集加载
func TestNewSalesStore(t *testing.T) {
	csv := `Order Date,State,City,Region,Category,Product Name,Sales
3/5/2016,Texas,Austin,Central,Furniture,"Bush Somerset Collection, Bookcase","1,234.50"
11/8/2017,California,Los Angeles,West,Technology,Phone,523.29

1/2/2015,Florida,Miami,South,Office Supplies,Stapler`
	s := NewSalesStore(writeTempCSV(t, csv))

	if s.Len() != 3 {
		t.Fatalf("应加载3条记录（空行跳过）, 得到%d条", s.Len())
	}

	first := s.Records()[0]
	if first.State != "Texas" || first.City != "Austin" {
		t.Errorf("首条记录解析错误: %+v", first)
	}
	if first.ProductName != "Bush Somerset Collection, Bookcase" {
		t.Errorf("引号字段解析错误: %q", first.ProductName)
	}
	if first.Sales != "1,234.50" {
		t.Errorf("金额应保留千分位文本: %q", first.Sales)
	}

	// 缺失的尾部列默认为空字符串
	third := s.Records()[2]
	if third.Sales != "" {
		t.Errorf("缺失尾部值应为空字符串, 得到%q", third.Sales)
	}
	if third.ProductName != "Stapler" {
		t.Errorf("第三条记录解析错误: %+v", third)
	}
}

// TestNewSalesStoreMissingFile 文件不存在时降级为空数据集，不报错
func TestNewSalesStoreMissingFile(t *testing.T) {
	s := NewSalesStore("/nonexistent/path/train.csv")
	if s == nil {
		t.Fatal("缺失文件也应返回数据集实例")
	}
	if s.Len() != 0 {
		t.Errorf("缺失文件应得到空数据集, 得到%d条", s.Len())
	}
}

// TestSalesStoreHeaders 表头保持文件顺序
func TestSalesStoreHeaders(t *testing.T) {
	csv := "Order Date,State,Sales\n1/1/2016,Texas,100"
	s := NewSalesStore(writeTempCSV(t, csv))

	headers := s.Headers()
	if len(headers) != 3 || headers[0] != "Order Date" || headers[2] != "Sales" {
		t.Errorf("表头顺序错误: %v", headers)
	}

	// 缺失的语义列得到空值
	if s.Records()[0].City != "" {
		t.Errorf("缺失列应为空字符串: %+v", s.Records()[0])
	}
}
