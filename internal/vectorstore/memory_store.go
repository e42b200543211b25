package vectorstore

import (
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/lingmind/lingmind-go/internal/esearch"
	"go.uber.org/zap"
)

// 每条问答记录的三种向量化投影
const (
	ContentTypeAnswer   = "answer"
	ContentTypeQuestion = "question"
	ContentTypeCombined = "question+answer"
)

// Document 向量库文档。一条问答记录按三种投影各存一份，
// 召回时返回投影命中所属的原始记录。
type Document struct {
	ID          string           // 文档唯一标识
	Content     string           // 被向量化的文本
	ContentType string           // answer / question / question+answer
	Record      esearch.QARecord // 原始问答记录
	Vector      []float64        // 文本向量
}

// SearchResult 召回结果
type SearchResult struct {
	Document Document // 文档
	Score    float64  // 余弦相似度（0-1，越高越相似）
}

// MemoryVectorStore 内存向量库
type MemoryVectorStore struct {
	documents map[string]*Document
	mu        sync.RWMutex
	logger    *zap.Logger
}

// NewMemoryVectorStore 创建内存向量库
func NewMemoryVectorStore(logger *zap.Logger) *MemoryVectorStore {
	return &MemoryVectorStore{
		documents: make(map[string]*Document),
		logger:    logger,
	}
}

// Add 添加文档
func (s *MemoryVectorStore) Add(doc Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if doc.ID == "" {
		return fmt.Errorf("document ID cannot be empty")
	}
	if len(doc.Vector) == 0 {
		return fmt.Errorf("document vector cannot be empty")
	}

	s.documents[doc.ID] = &doc
	return nil
}

// AddBatch 批量添加文档
func (s *MemoryVectorStore) AddBatch(docs []Document) error {
	for _, doc := range docs {
		if err := s.Add(doc); err != nil {
			return err
		}
	}
	s.logger.Info("向量库文档已添加", zap.Int("count", len(docs)))
	return nil
}

// Search 向量召回，返回相似度不低于 minScore 的 Top-K 文档
func (s *MemoryVectorStore) Search(queryVector []float64, topK int, minScore float64) ([]SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(queryVector) == 0 {
		return nil, fmt.Errorf("query vector cannot be empty")
	}

	results := make([]SearchResult, 0, len(s.documents))
	for _, doc := range s.documents {
		score := cosineSimilarity(queryVector, doc.Vector)
		if score >= minScore {
			results = append(results, SearchResult{Document: *doc, Score: score})
		}
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if len(results) > topK {
		results = results[:topK]
	}

	s.logger.Debug("向量召回完成",
		zap.Int("docCount", len(s.documents)),
		zap.Int("resultCount", len(results)))

	return results, nil
}

// Count 获取文档数量
func (s *MemoryVectorStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.documents)
}

// Projections 将一条问答记录展开为三份向量化文档（向量留空，由调用方填充）。
// recordID 用于生成三个投影各自的文档 ID。
func Projections(recordID string, record esearch.QARecord) []Document {
	return []Document{
		{
			ID:          recordID + ":answer",
			Content:     record.Answer,
			ContentType: ContentTypeAnswer,
			Record:      record,
		},
		{
			ID:          recordID + ":question",
			Content:     record.Question,
			ContentType: ContentTypeQuestion,
			Record:      record,
		},
		{
			ID:          recordID + ":combined",
			Content:     record.Answer + "\n\n" + record.Question,
			ContentType: ContentTypeCombined,
			Record:      record,
		},
	}
}

// cosineSimilarity 计算余弦相似度（0-1，越高越相似）
func cosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dotProduct, normA, normB float64
	for i := 0; i < len(a); i++ {
		dotProduct += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	normA = math.Sqrt(normA)
	normB = math.Sqrt(normB)

	if normA == 0 || normB == 0 {
		return 0
	}

	return dotProduct / (normA * normB)
}
