package mapping

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schemaforge/internal/models"
)

type stubScorer struct {
	score float64
}

func (s stubScorer) Score(a, b string) float64 {
	return s.score
}

func field(levels ...string) models.SchemaField {
	return models.SchemaField{Levels: levels, Type: "string", Cardinality: "1"}
}

func TestEngineMap(t *testing.T) {
	t.Run("Should emit one entry per source field in source order", func(t *testing.T) {
		source := []models.SchemaField{
			field("order"),
			field("order", "id"),
			field("order", "total"),
		}
		target := []models.SchemaField{field("invoice")}

		entries := NewEngine().Map(source, target)

		require.Len(t, entries, len(source))
		assert.Equal(t, "order", entries[0].Source)
		assert.Equal(t, "order.id", entries[1].Source)
		assert.Equal(t, "order.total", entries[2].Source)
	})

	t.Run("Should score exact normalized matches 1.0", func(t *testing.T) {
		source := []models.SchemaField{field("Order", "Id")}
		target := []models.SchemaField{field("order", "id")}

		entries := NewEngine().Map(source, target)

		require.Len(t, entries, 1)
		assert.Equal(t, "order.id", entries[0].Target)
		assert.Equal(t, 1.0, entries[0].Similarity)
		assert.True(t, entries[0].Exact())
		assert.Same(t, &target[0], entries[0].TargetField)
	})

	t.Run("Should treat array markers as the same segment across dialects", func(t *testing.T) {
		source := []models.SchemaField{field("order", "items", "item", "sku")}
		target := []models.SchemaField{field("order", "items", "[]", "sku")}

		entries := NewEngine().Map(source, target)

		require.Len(t, entries, 1)
		assert.Equal(t, 1.0, entries[0].Similarity)
		assert.Equal(t, "order.items.arrayitem.sku", entries[0].Target)
	})

	t.Run("Should leave the target empty when nothing clears the threshold", func(t *testing.T) {
		source := []models.SchemaField{field("alpha")}
		target := []models.SchemaField{field("omega")}

		entries := NewEngine().Map(source, target)

		require.Len(t, entries, 1)
		assert.Equal(t, "", entries[0].Target)
		assert.Equal(t, 0.0, entries[0].Similarity)
		assert.Nil(t, entries[0].TargetField)
		assert.False(t, entries[0].Matched())
	})

	t.Run("Should match at exactly the threshold and miss just below it", func(t *testing.T) {
		source := []models.SchemaField{field("order", "id")}
		target := []models.SchemaField{field("order", "orderId")}

		score := PathScorer{}.Score("order.id", "order.orderid")
		require.Greater(t, score, 0.0)

		at := &Engine{Threshold: score, Scorer: PathScorer{}}
		entries := at.Map(source, target)
		require.Len(t, entries, 1)
		assert.True(t, entries[0].Matched())
		assert.InDelta(t, score, entries[0].Similarity, 0.0005)

		above := &Engine{Threshold: score + 1e-9, Scorer: PathScorer{}}
		entries = above.Map(source, target)
		require.Len(t, entries, 1)
		assert.False(t, entries[0].Matched())
		assert.Equal(t, 0.0, entries[0].Similarity)
	})

	t.Run("Should keep the first target on tied fuzzy scores", func(t *testing.T) {
		source := []models.SchemaField{field("anything")}
		target := []models.SchemaField{
			field("first"),
			field("second"),
			field("third"),
		}

		e := &Engine{Threshold: 0.5, Scorer: stubScorer{score: 0.8}}
		entries := e.Map(source, target)

		require.Len(t, entries, 1)
		assert.Equal(t, "first", entries[0].Target)
		assert.Same(t, &target[0], entries[0].TargetField)
	})

	t.Run("Should round fuzzy similarities to three decimals", func(t *testing.T) {
		source := []models.SchemaField{field("anything")}
		target := []models.SchemaField{field("other")}

		e := &Engine{Threshold: 0.5, Scorer: stubScorer{score: 0.84567}}
		entries := e.Map(source, target)

		require.Len(t, entries, 1)
		assert.Equal(t, 0.846, entries[0].Similarity)
	})

	t.Run("Should allow many sources onto one target", func(t *testing.T) {
		source := []models.SchemaField{
			field("order", "id"),
			field("Order", "ID"),
		}
		target := []models.SchemaField{field("order", "id")}

		entries := NewEngine().Map(source, target)

		require.Len(t, entries, 2)
		assert.Equal(t, "order.id", entries[0].Target)
		assert.Equal(t, "order.id", entries[1].Target)
	})
}

func TestEngineMapOrderIdScenario(t *testing.T) {
	source := []models.SchemaField{field("order", "id")}
	target := []models.SchemaField{field("order", "orderId")}

	score := PathScorer{}.Score("order.id", "order.orderid")

	entries := NewEngine().Map(source, target)
	require.Len(t, entries, 1)
	assert.Equal(t, score >= DefaultThreshold, entries[0].Matched())

	strict := &Engine{Threshold: 0.9, Scorer: PathScorer{}}
	entries = strict.Map(source, target)
	require.Len(t, entries, 1)
	assert.Equal(t, "", entries[0].Target)
	assert.Equal(t, 0.0, entries[0].Similarity)
}

func TestStats(t *testing.T) {
	t.Run("Should count exact, fuzzy and missing matches", func(t *testing.T) {
		entries := []models.MappingEntry{
			{Source: "a", Target: "a", Similarity: 1.0},
			{Source: "b", Target: "b", Similarity: 1.0},
			{Source: "c", Target: "cc", Similarity: 0.8},
			{Source: "d"},
		}

		st := Stats(entries, 5)

		assert.Equal(t, 4, st.TotalSourceFields)
		assert.Equal(t, 5, st.TotalTargetFields)
		assert.Equal(t, 2, st.ExactMatches)
		assert.Equal(t, 1, st.FuzzyMatches)
		assert.Equal(t, 1, st.NoMatches)
		assert.InDelta(t, 0.7, st.AvgSimilarity, 1e-9)
		assert.InDelta(t, 75.0, st.Coverage, 1e-9)
	})

	t.Run("Should stay zeroed for an empty run", func(t *testing.T) {
		st := Stats(nil, 0)
		assert.Equal(t, 0, st.TotalSourceFields)
		assert.Equal(t, 0.0, st.Coverage)
	})
}

func TestUnmapped(t *testing.T) {
	entries := []models.MappingEntry{
		{Source: "order.id", Target: "order.id", Similarity: 1.0},
		{Source: "order.note"},
	}
	target := []models.SchemaField{
		field("order", "id"),
		field("order", "created"),
	}

	src, tgt := Unmapped(entries, target)

	assert.Equal(t, []string{"order.note"}, src)
	assert.Equal(t, []string{"order.created"}, tgt)
}

func TestSuggest(t *testing.T) {
	t.Run("Should propose near misses above the suggestion threshold", func(t *testing.T) {
		e := NewEngine()
		got := e.Suggest([]string{"order.id"}, []string{"order.idx"})
		require.Len(t, got, 1)
		assert.Equal(t, "order.idx", got[0].Target)
		assert.InDelta(t, 0.6, got[0].Similarity, 0.0005)
	})

	t.Run("Should drop pairs below the suggestion threshold", func(t *testing.T) {
		e := NewEngine()
		got := e.Suggest([]string{"alpha"}, []string{"omega"})
		assert.Empty(t, got)
	})

	t.Run("Should sort suggestions strongest first", func(t *testing.T) {
		e := NewEngine()
		got := e.Suggest([]string{"order.id", "order.idx"}, []string{"order.idxy"})
		require.Len(t, got, 2)
		assert.GreaterOrEqual(t, got[0].Similarity, got[1].Similarity)
	})
}
