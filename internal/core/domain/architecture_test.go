package domain

import "testing"

func TestCoreArchitectures(t *testing.T) {
	archs := CoreArchitectures()

	if len(archs) != 3 {
		t.Fatalf("expected 3 architectures, got %d", len(archs))
	}

	// Registration order is part of the contract.
	wantOrder := []ArchitectureID{ArchitectureSimple, ArchitectureReranking, ArchitectureHyDE}
	for i, want := range wantOrder {
		if archs[i].ID != want {
			t.Errorf("position %d: expected %s, got %s", i, want, archs[i].ID)
		}
	}

	for _, a := range archs {
		if a.Name == "" {
			t.Errorf("architecture %s has no name", a.ID)
		}
		if a.Description == "" {
			t.Errorf("architecture %s has no description", a.ID)
		}
	}
}

func TestCoreArchitecturesCapabilities(t *testing.T) {
	byID := make(map[ArchitectureID]Architecture)
	for _, a := range CoreArchitectures() {
		byID[a.ID] = a
	}

	if byID[ArchitectureSimple].UsesRerank || byID[ArchitectureSimple].UsesLLMRetrieval {
		t.Error("simple should use neither rerank nor LLM retrieval")
	}
	if !byID[ArchitectureReranking].UsesRerank {
		t.Error("reranking should flag UsesRerank")
	}
	if !byID[ArchitectureHyDE].UsesLLMRetrieval {
		t.Error("hyde should flag UsesLLMRetrieval")
	}
	if byID[ArchitectureSimple].Complexity != ComplexityBaseline {
		t.Errorf("simple complexity = %s, want %s", byID[ArchitectureSimple].Complexity, ComplexityBaseline)
	}
}
