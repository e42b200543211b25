package vectorstore

import (
	"testing"

	"github.com/lingmind/lingmind-go/internal/esearch"
	"go.uber.org/zap"
)

func TestAddAndSearch(t *testing.T) {
	store := NewMemoryVectorStore(zap.NewNop())

	docs := []Document{
		{ID: "1", Content: "申请驾照", ContentType: ContentTypeQuestion, Vector: []float64{1, 0, 0}},
		{ID: "2", Content: "办理营业执照", ContentType: ContentTypeQuestion, Vector: []float64{0, 1, 0}},
		{ID: "3", Content: "驾照考试流程", ContentType: ContentTypeAnswer, Vector: []float64{0.9, 0.1, 0}},
	}
	if err := store.AddBatch(docs); err != nil {
		t.Fatalf("添加文档失败: %v", err)
	}
	if store.Count() != 3 {
		t.Fatalf("文档数量不符: %d", store.Count())
	}

	results, err := store.Search([]float64{1, 0, 0}, 2, 0.5)
	if err != nil {
		t.Fatalf("召回失败: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("期望召回 2 条, 实际 %d 条", len(results))
	}
	if results[0].Document.ID != "1" {
		t.Errorf("最相似文档应排在首位, 实际 %s", results[0].Document.ID)
	}
	if results[0].Score < results[1].Score {
		t.Error("召回结果应按相似度降序")
	}
}

func TestAdd_Validation(t *testing.T) {
	store := NewMemoryVectorStore(zap.NewNop())

	if err := store.Add(Document{Content: "无ID", Vector: []float64{1}}); err == nil {
		t.Error("缺少 ID 应返回错误")
	}
	if err := store.Add(Document{ID: "1", Content: "无向量"}); err == nil {
		t.Error("缺少向量应返回错误")
	}
}

func TestSearch_EmptyQuery(t *testing.T) {
	store := NewMemoryVectorStore(zap.NewNop())
	if _, err := store.Search(nil, 5, 0); err == nil {
		t.Error("空查询向量应返回错误")
	}
}

func TestProjections(t *testing.T) {
	record := esearch.QARecord{Question: "如何申请驾照", Answer: "先体检再考试", County: "房山区"}

	docs := Projections("42", record)
	if len(docs) != 3 {
		t.Fatalf("每条记录应展开为 3 份文档, 实际 %d 份", len(docs))
	}

	types := map[string]string{}
	for _, doc := range docs {
		types[doc.ContentType] = doc.Content
		if doc.Record.Question != record.Question {
			t.Error("投影应携带原始记录")
		}
	}

	if types[ContentTypeAnswer] != "先体检再考试" {
		t.Errorf("answer 投影不符: %q", types[ContentTypeAnswer])
	}
	if types[ContentTypeQuestion] != "如何申请驾照" {
		t.Errorf("question 投影不符: %q", types[ContentTypeQuestion])
	}
	if types[ContentTypeCombined] != "先体检再考试\n\n如何申请驾照" {
		t.Errorf("combined 投影不符: %q", types[ContentTypeCombined])
	}
}

func TestCosineSimilarity(t *testing.T) {
	if got := cosineSimilarity([]float64{1, 0}, []float64{1, 0}); got < 0.999 {
		t.Errorf("相同向量相似度应为 1, 实际 %f", got)
	}
	if got := cosineSimilarity([]float64{1, 0}, []float64{0, 1}); got != 0 {
		t.Errorf("正交向量相似度应为 0, 实际 %f", got)
	}
	if got := cosineSimilarity([]float64{1, 0}, []float64{1, 0, 0}); got != 0 {
		t.Errorf("维度不一致应返回 0, 实际 %f", got)
	}
}
