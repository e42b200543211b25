package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lingmind/lingmind-go/internal/client"
	"github.com/lingmind/lingmind-go/internal/config"
	"github.com/lingmind/lingmind-go/internal/esearch"
	"github.com/lingmind/lingmind-go/internal/vectorstore"
	"go.uber.org/zap"
)

// SearchHandler 知识库检索处理器
type SearchHandler struct {
	qadb            *esearch.QaDB
	vectorStore     *vectorstore.MemoryVectorStore // 可为 nil，此时不提供向量召回
	embeddingClient *client.EmbeddingClient
	vectorCfg       config.VectorConfig
	logger          *zap.Logger
}

// NewSearchHandler 创建知识库检索处理器
func NewSearchHandler(
	qadb *esearch.QaDB,
	vectorStore *vectorstore.MemoryVectorStore,
	embeddingClient *client.EmbeddingClient,
	vectorCfg config.VectorConfig,
	logger *zap.Logger,
) *SearchHandler {
	return &SearchHandler{
		qadb:            qadb,
		vectorStore:     vectorStore,
		embeddingClient: embeddingClient,
		vectorCfg:       vectorCfg,
		logger:          logger,
	}
}

// Search 检索最相近的问答记录，POST /search（表单字段 question）。
// 命中返回 {score, question, answer}，无命中返回空响应体。
func (h *SearchHandler) Search(c *gin.Context) {
	question := c.PostForm("question")
	if question == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "question 参数不能为空"})
		return
	}

	hit, err := h.qadb.FindNearestQuestion(c.Request.Context(), question)
	if err != nil {
		h.logger.Error("检索失败", zap.String("question", question), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "检索失败"})
		return
	}

	if hit == nil {
		c.Status(http.StatusOK)
		return
	}

	h.logger.Info("检索命中",
		zap.String("question", question),
		zap.Float64("score", hit.Score))

	c.JSON(http.StatusOK, hit)
}

// similarResult 向量召回结果
type similarResult struct {
	Score       float64          `json:"score"`
	ContentType string           `json:"contentType"`
	Record      esearch.QARecord `json:"record"`
}

// Similar 向量相似召回，GET /similar?q=<问题>
func (h *SearchHandler) Similar(c *gin.Context) {
	if h.vectorStore == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "向量召回未开启"})
		return
	}

	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "q 参数不能为空"})
		return
	}

	queryVector, err := h.embeddingClient.GetEmbedding(c.Request.Context(), query)
	if err != nil {
		h.logger.Error("查询向量化失败", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "查询向量化失败"})
		return
	}

	results, err := h.vectorStore.Search(queryVector, h.vectorCfg.TopK, h.vectorCfg.MinScore)
	if err != nil {
		h.logger.Error("向量召回失败", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "向量召回失败"})
		return
	}

	items := make([]similarResult, 0, len(results))
	for _, r := range results {
		items = append(items, similarResult{
			Score:       r.Score,
			ContentType: r.Document.ContentType,
			Record:      r.Document.Record,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"results": items,
		"count":   len(items),
	})
}
