package esearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/lingmind/lingmind-go/internal/config"
	"github.com/lingmind/lingmind-go/internal/model"
	"go.uber.org/zap"
)

// QARecord 政务问答记录
type QARecord struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
	County   string `json:"county,omitempty"`
}

// QaDB 政务问答库，封装 Elasticsearch 的检索和写入
type QaDB struct {
	addr       string
	index      string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewQaDB 创建问答库客户端
func NewQaDB(cfg config.ElasticConfig, logger *zap.Logger) *QaDB {
	return &QaDB{
		addr:       strings.TrimSuffix(cfg.Addr, "/"),
		index:      cfg.Index,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
	}
}

// esSearchResponse Elasticsearch 检索响应（只取用到的字段）
type esSearchResponse struct {
	Hits struct {
		Hits []struct {
			Score  float64  `json:"_score"`
			Source QARecord `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// FindNearestQuestion 检索与问题最相近的一条问答记录，无结果返回 nil。
// 问题同时匹配 question、answer（降权）和 county（加权）三个字段。
func (db *QaDB) FindNearestQuestion(ctx context.Context, question string) (*model.SearchHit, error) {
	query := map[string]any{
		"query": map[string]any{
			"bool": map[string]any{
				"should": []any{
					map[string]any{"match": map[string]any{
						"question": map[string]any{"query": question},
					}},
					map[string]any{"match": map[string]any{
						"answer": map[string]any{"query": question, "boost": 0.2},
					}},
					map[string]any{"match": map[string]any{
						"county": map[string]any{"query": question, "boost": 3},
					}},
				},
			},
		},
		"size": 1,
	}

	body, err := db.request(ctx, http.MethodPost, fmt.Sprintf("%s/%s/_search", db.addr, db.index), query)
	if err != nil {
		return nil, err
	}

	var esResp esSearchResponse
	if err := json.Unmarshal(body, &esResp); err != nil {
		return nil, fmt.Errorf("解析检索结果失败: %w", err)
	}

	if len(esResp.Hits.Hits) == 0 {
		return nil, nil
	}

	top := esResp.Hits.Hits[0]
	return &model.SearchHit{
		Score:    top.Score,
		Question: top.Source.Question,
		Answer:   top.Source.Answer,
	}, nil
}

// CreateIndex 创建问答索引，已存在则跳过
func (db *QaDB) CreateIndex(ctx context.Context) error {
	exists, err := db.indexExists(ctx)
	if err != nil {
		return err
	}
	if exists {
		db.logger.Info("索引已存在，跳过创建", zap.String("index", db.index))
		return nil
	}

	mapping := map[string]any{
		"mappings": map[string]any{
			"properties": map[string]any{
				"question": map[string]any{"type": "text"},
				"answer":   map[string]any{"type": "text"},
				"county":   map[string]any{"type": "text"},
			},
		},
	}

	if _, err := db.request(ctx, http.MethodPut, fmt.Sprintf("%s/%s", db.addr, db.index), mapping); err != nil {
		return fmt.Errorf("创建索引失败: %w", err)
	}

	db.logger.Info("索引创建成功", zap.String("index", db.index))
	return nil
}

// BulkIndex 批量写入问答记录
func (db *QaDB) BulkIndex(ctx context.Context, records []QARecord) error {
	if len(records) == 0 {
		return nil
	}

	var buf bytes.Buffer
	for _, record := range records {
		action, _ := json.Marshal(map[string]any{
			"index": map[string]any{"_index": db.index},
		})
		doc, err := json.Marshal(record)
		if err != nil {
			return fmt.Errorf("序列化问答记录失败: %w", err)
		}
		buf.Write(action)
		buf.WriteByte('\n')
		buf.Write(doc)
		buf.WriteByte('\n')
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, db.addr+"/_bulk", &buf)
	if err != nil {
		return fmt.Errorf("创建请求失败: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-ndjson")

	resp, err := db.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("批量写入失败: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("批量写入返回错误 %d: %s", resp.StatusCode, string(body))
	}

	var bulkResp struct {
		Errors bool `json:"errors"`
	}
	if err := json.Unmarshal(body, &bulkResp); err != nil {
		return fmt.Errorf("解析批量写入结果失败: %w", err)
	}
	if bulkResp.Errors {
		return fmt.Errorf("批量写入部分失败: %s", string(body))
	}

	db.logger.Info("批量写入完成", zap.Int("count", len(records)))
	return nil
}

// indexExists 判断索引是否存在
func (db *QaDB) indexExists(ctx context.Context) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, fmt.Sprintf("%s/%s", db.addr, db.index), nil)
	if err != nil {
		return false, fmt.Errorf("创建请求失败: %w", err)
	}

	resp, err := db.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("查询索引失败: %w", err)
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusOK, nil
}

// request 发送 JSON 请求并返回响应体
func (db *QaDB) request(ctx context.Context, method, url string, payload any) ([]byte, error) {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("序列化请求失败: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("创建请求失败: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := db.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("请求 Elasticsearch 失败: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("读取响应失败: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Elasticsearch 返回错误 %d: %s", resp.StatusCode, string(body))
	}

	return body, nil
}
