// Package mock provides test double implementations of AI service interfaces.
//
// The mocks let tests run without external AI services and give controlled,
// deterministic behavior.
//
// # Usage in Tests
//
//	mockProvider := mock.NewMockProvider()
//	vector, err := mockProvider.Embedder().EmbedText(ctx, "test")
//
//	// Custom behavior injection
//	embedder := mock.NewMockEmbedder()
//	embedder.EmbedTextsFunc = mock.ConstantVectors([]float32{1, 0, 0})
//
//	recognizer := mock.NewMockEntityRecognizer().
//	    Returning(ai.Entity{Span: "Netflix", Label: ai.LabelOrg})
//
//	count := embedder.CallCount()
//
// # Default Behavior
//
//   - MockEmbedder: unit-length vectors derived from an FNV hash of the text
//   - MockEntityRecognizer: no entities
//   - MockProvider: aggregates the two
package mock
