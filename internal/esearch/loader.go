package esearch

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// LoadRecords 从 JSONL 文件加载问答记录，每行一条 JSON
func LoadRecords(path string) ([]QARecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("打开数据文件失败: %w", err)
	}
	defer f.Close()

	var records []QARecord
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var record QARecord
		if err := json.Unmarshal([]byte(line), &record); err != nil {
			return nil, fmt.Errorf("第 %d 行解析失败: %w", lineNo, err)
		}
		if record.Question == "" || record.Answer == "" {
			return nil, fmt.Errorf("第 %d 行缺少 question 或 answer 字段", lineNo)
		}

		records = append(records, record)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("读取数据文件失败: %w", err)
	}

	return records, nil
}
