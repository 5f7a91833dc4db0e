package tools

import (
	"context"
	"strings"

	"github.com/cloudwego/eino/components/retriever"
	"github.com/cloudwego/eino/schema"
)

// MemoryRetriever is a keyword-matched in-memory document store. It stands
// in for a real vector store behind the same Eino retriever interface so the
// binary runs end-to-end without external services.
type MemoryRetriever struct {
	docs []*schema.Document
}

func NewMemoryRetriever(docs []*schema.Document) *MemoryRetriever {
	if docs == nil {
		docs = SeedDocuments
	}
	return &MemoryRetriever{docs: docs}
}

func (r *MemoryRetriever) Retrieve(ctx context.Context, query string, _ ...retriever.Option) ([]*schema.Document, error) {
	terms := strings.Fields(strings.ToLower(query))
	var matched []*schema.Document
	for _, d := range r.docs {
		content := strings.ToLower(d.Content)
		for _, term := range terms {
			if strings.Contains(content, term) {
				matched = append(matched, d)
				break
			}
		}
	}
	return matched, nil
}

var _ retriever.Retriever = (*MemoryRetriever)(nil)

// SeedDocuments is a small thesis-project corpus for local runs.
var SeedDocuments = []*schema.Document{
	{
		ID:      "doc-001",
		Content: "Thesis: Neural Machine Translation for Low-Resource Languages. Explores transfer learning from high-resource language pairs and back-translation for data augmentation.",
	},
	{
		ID:      "doc-002",
		Content: "Thesis: Retrieval-Augmented Generation for Scientific Question Answering. Combines dense passage retrieval with generative models over a corpus of research papers.",
	},
	{
		ID:      "doc-003",
		Content: "Thesis: Energy-Efficient Scheduling in Kubernetes Clusters. Evaluates bin-packing heuristics against reinforcement-learning schedulers on production traces.",
	},
	{
		ID:      "doc-004",
		Content: "Thesis: Privacy-Preserving Federated Learning on Medical Imaging. Studies differential privacy budgets and secure aggregation for hospital consortia.",
	},
	{
		ID:      "doc-005",
		Content: "Thesis: Static Analysis of Concurrency Bugs in Go Programs. Builds a happens-before checker detecting data races in channel-based code.",
	},
	{
		ID:      "doc-006",
		Content: "Research paper: A Survey of Multi-Agent Orchestration Patterns for Language Models, covering routing, planning and feedback loops.",
	},
}

// StaticSearchProvider serves canned snippets for local runs; a real search
// provider plugs in behind the same interface.
type StaticSearchProvider struct {
	snippets []string
}

func NewStaticSearchProvider(snippets []string) *StaticSearchProvider {
	if snippets == nil {
		snippets = seedSnippets
	}
	return &StaticSearchProvider{snippets: snippets}
}

func (p *StaticSearchProvider) Search(_ context.Context, query string, maxResults int) ([]string, error) {
	if strings.TrimSpace(query) == "" || maxResults <= 0 {
		return []string{}, nil
	}
	terms := strings.Fields(strings.ToLower(query))
	var results []string
	for _, s := range p.snippets {
		lower := strings.ToLower(s)
		for _, term := range terms {
			if strings.Contains(lower, term) {
				results = append(results, s)
				break
			}
		}
		if len(results) >= maxResults {
			break
		}
	}
	return results, nil
}

var _ SearchProvider = (*StaticSearchProvider)(nil)

var seedSnippets = []string{
	"Recent advances in retrieval-augmented generation - https://example.org/rag\nOverview of RAG architectures and evaluation benchmarks.",
	"Machine translation benchmarks 2026 - https://example.org/mt\nWMT results for low-resource language pairs.",
	"Kubernetes scheduling deep dive - https://example.org/k8s\nHow the default scheduler scores nodes, with tuning guidance.",
	"Federated learning in healthcare - https://example.org/fl\nRegulatory and privacy considerations for cross-hospital training.",
}
