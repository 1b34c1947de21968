package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/solarchat/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockEmbedder struct {
	vector    []float64
	err       error
	lastInput string
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	m.lastInput = text
	if m.err != nil {
		return nil, m.err
	}
	return m.vector, nil
}

func pointsResponse(points ...map[string]any) map[string]any {
	return map[string]any{
		"result": map[string]any{
			"points": points,
		},
	}
}

func payloadPoint(payload map[string]any) map[string]any {
	return map[string]any{"payload": payload}
}

func scoredPoint(score float64, payload map[string]any) map[string]any {
	return map[string]any{"score": score, "payload": payload}
}

func TestNewClient(t *testing.T) {
	client := NewClient("http://localhost:6333/", "solar_produkte_large", nil)

	assert.NotNil(t, client)
	assert.Equal(t, "http://localhost:6333", client.baseURL)
	assert.Equal(t, "solar_produkte_large", client.collection)
	assert.NotNil(t, client.httpClient)
	assert.NotNil(t, client.rateLimiter)
}

func TestGetProduct_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/collections/solar_produkte_large/points/scroll", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)

		var req scrollRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, 1, req.Limit)
		assert.True(t, req.WithPayload)
		if assert.NotNil(t, req.Filter) {
			assert.Equal(t, "artikelnummer", req.Filter.Must[0].Key)
			assert.Equal(t, "1502101", req.Filter.Must[0].Match.Value)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(pointsResponse(payloadPoint(map[string]any{
			"artikelnummer": "1502101",
			"artikelname":   "Deye SUN-5K-SG04LP3",
			"hersteller":    "Deye",
			"produkttyp":    "wechselrichter",
			"nennleistung":  "5000 W",
		})))
	}))
	defer server.Close()

	client := NewClient(server.URL, "solar_produkte_large", nil)
	ctx := context.Background()

	product, err := client.GetProduct(ctx, "1502101")

	require.NoError(t, err)
	require.NotNil(t, product)
	assert.Equal(t, "1502101", product.Artikelnummer)
	assert.Equal(t, "Deye SUN-5K-SG04LP3", product.Artikelname)
	assert.Equal(t, "Deye", product.Hersteller)
	assert.Equal(t, "wechselrichter", product.Produkttyp)
	assert.Equal(t, "5000 W", product.Payload["nennleistung"])
}

func TestGetProduct_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(pointsResponse())
	}))
	defer server.Close()

	client := NewClient(server.URL, "solar_produkte_large", nil)
	ctx := context.Background()

	product, err := client.GetProduct(ctx, "9999999")

	assert.Nil(t, product)
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestSearchByPartialNumber(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req scrollRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Nil(t, req.Filter)
		assert.Equal(t, scanPageLimit, req.Limit)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(pointsResponse(
			payloadPoint(map[string]any{"artikelnummer": "1703574-001", "artikelname": "Set Variante"}),
			payloadPoint(map[string]any{"artikelnummer": "1502101", "artikelname": "Anderes Produkt"}),
			payloadPoint(map[string]any{"artikelnummer": "1703574", "artikelname": "Basisprodukt"}),
			payloadPoint(map[string]any{"artikelnummer": "17035", "artikelname": "Kurznummer"}),
		))
	}))
	defer server.Close()

	client := NewClient(server.URL, "solar_produkte_large", nil)
	ctx := context.Background()

	results, err := client.SearchByPartialNumber(ctx, "1703574", 10)

	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "1703574", results[0].Artikelnummer) // exact hit first
	assert.Equal(t, "1703574-001", results[1].Artikelnummer)
}

func TestSearchByPartialNumber_LimitKeepsExact(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(pointsResponse(
			payloadPoint(map[string]any{"artikelnummer": "1703574-001"}),
			payloadPoint(map[string]any{"artikelnummer": "1703574-002"}),
			payloadPoint(map[string]any{"artikelnummer": "1703574"}),
		))
	}))
	defer server.Close()

	client := NewClient(server.URL, "solar_produkte_large", nil)
	ctx := context.Background()

	results, err := client.SearchByPartialNumber(ctx, "1703574", 1)

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "1703574", results[0].Artikelnummer)
}

func TestSearchByHersteller(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(pointsResponse(
			payloadPoint(map[string]any{"artikelnummer": "1502101", "hersteller": "Deye"}),
			payloadPoint(map[string]any{"artikelnummer": "1502102", "hersteller": "DEYE Inverter GmbH"}),
			payloadPoint(map[string]any{"artikelnummer": "1502205", "hersteller": "Victron Energy"}),
			payloadPoint(map[string]any{"artikelnummer": "1502300", "hersteller": ""}),
			payloadPoint(map[string]any{"artikelnummer": "1502301"}),
		))
	}))
	defer server.Close()

	client := NewClient(server.URL, "solar_produkte_large", nil)
	ctx := context.Background()

	results, err := client.SearchByHersteller(ctx, "Deye", 10)

	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "1502101", results[0].Artikelnummer)
	assert.Equal(t, "1502102", results[1].Artikelnummer)
}

func TestSearchByName(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(pointsResponse(
			payloadPoint(map[string]any{"artikelnummer": "1502101", "artikelname": "Deye SUN-5K-SG04LP3"}),
			payloadPoint(map[string]any{"artikelnummer": "1502205", "artikelname": "Victron MultiPlus-II"}),
			payloadPoint(map[string]any{"artikelnummer": "1502999", "artikelname": "SUN-5K"}),
			payloadPoint(map[string]any{"artikelnummer": "1503000", "artikelname": "AB"}),
		))
	}))
	defer server.Close()

	client := NewClient(server.URL, "solar_produkte_large", nil)
	ctx := context.Background()

	results, err := client.SearchByName(ctx, "sun-5k", 10)

	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "1502999", results[0].Artikelnummer) // exact name first
	assert.Equal(t, "1502101", results[1].Artikelnummer)
}

func TestSearchByName_ShortQuery(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	client := NewClient(server.URL, "solar_produkte_large", nil)
	ctx := context.Background()

	results, err := client.SearchByName(ctx, "ab", 10)

	assert.NoError(t, err)
	assert.Empty(t, results)
	assert.False(t, called)
}

func TestSearchSemantic(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/collections/solar_produkte_large/points/query", r.URL.Path)

		var req queryRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, []float64{0.1, 0.2, 0.3}, req.Query)
		assert.Equal(t, 5, req.Limit)
		assert.InDelta(t, 0.7, req.ScoreThreshold, 0.0001)
		if assert.NotNil(t, req.Filter) {
			assert.Equal(t, "produkttyp", req.Filter.Must[0].Key)
			assert.Equal(t, "wechselrichter", req.Filter.Must[0].Match.Value)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(pointsResponse(
			scoredPoint(0.91, map[string]any{"artikelnummer": "1502101", "artikelname": "Deye SUN-5K-SG04LP3"}),
			scoredPoint(0.74, map[string]any{"artikelnummer": "1502205", "artikelname": "Victron MultiPlus-II"}),
		))
	}))
	defer server.Close()

	embedder := &mockEmbedder{vector: []float64{0.1, 0.2, 0.3}}
	client := NewClient(server.URL, "solar_produkte_large", embedder)
	ctx := context.Background()

	results, err := client.SearchSemantic(ctx, "5 kW Hybrid Wechselrichter", domain.SearchOptions{
		Limit:      5,
		MinScore:   0.7,
		Produkttyp: "wechselrichter",
	})

	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "1502101", results[0].Artikelnummer)
	assert.InDelta(t, 0.91, results[0].Score, 0.0001)
	assert.InDelta(t, 0.74, results[1].Score, 0.0001)
	assert.Equal(t, "5 kW Hybrid Wechselrichter", embedder.lastInput)
}

func TestSearchSemantic_TruncatesEmbeddingInput(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(pointsResponse())
	}))
	defer server.Close()

	embedder := &mockEmbedder{vector: []float64{0.5}}
	client := NewClient(server.URL, "solar_produkte_large", embedder)
	ctx := context.Background()

	_, err := client.SearchSemantic(ctx, strings.Repeat("a", embedInputLimit+500), domain.SearchOptions{Limit: 5})

	require.NoError(t, err)
	assert.Len(t, embedder.lastInput, embedInputLimit)
}

func TestSearchSemantic_EmbeddingError(t *testing.T) {
	embedder := &mockEmbedder{err: errors.New("quota exceeded")}
	client := NewClient("http://localhost:0", "solar_produkte_large", embedder)
	ctx := context.Background()

	results, err := client.SearchSemantic(ctx, "Speicher", domain.SearchOptions{Limit: 5})

	assert.Nil(t, results)
	assert.ErrorIs(t, err, domain.ErrCatalogUnavailable)
}

func TestListProducts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req scrollRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, 3, req.Limit) // offset + limit

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(pointsResponse(
			payloadPoint(map[string]any{"artikelnummer": "1502101"}),
			payloadPoint(map[string]any{"artikelnummer": "1502102"}),
			payloadPoint(map[string]any{"artikelnummer": "1502103"}),
		))
	}))
	defer server.Close()

	client := NewClient(server.URL, "solar_produkte_large", nil)
	ctx := context.Background()

	results, err := client.ListProducts(ctx, 2, 1)

	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "1502102", results[0].Artikelnummer)
	assert.Equal(t, "1502103", results[1].Artikelnummer)
}

func TestListProducts_OffsetBeyondEnd(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(pointsResponse(
			payloadPoint(map[string]any{"artikelnummer": "1502101"}),
		))
	}))
	defer server.Close()

	client := NewClient(server.URL, "solar_produkte_large", nil)
	ctx := context.Background()

	results, err := client.ListProducts(ctx, 10, 5)

	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestFetchPoints_ServerError_Retries(t *testing.T) {
	attempts := 0

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(pointsResponse(
			payloadPoint(map[string]any{"artikelnummer": "1502101"}),
		))
	}))
	defer server.Close()

	client := NewClient(server.URL, "solar_produkte_large", nil)
	ctx := context.Background()

	product, err := client.GetProduct(ctx, "1502101")

	require.NoError(t, err)
	assert.NotNil(t, product)
	assert.Equal(t, 3, attempts)
}

func TestFetchPoints_ClientError_NoRetry(t *testing.T) {
	attempts := 0

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	client := NewClient(server.URL, "solar_produkte_large", nil)
	ctx := context.Background()

	product, err := client.GetProduct(ctx, "1502101")

	assert.Nil(t, product)
	assert.ErrorIs(t, err, domain.ErrCatalogUnavailable)
	assert.Equal(t, 1, attempts) // 4xx will not get better
}

func TestFetchPoints_InvalidJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte("not json"))
	}))
	defer server.Close()

	client := NewClient(server.URL, "solar_produkte_large", nil)
	ctx := context.Background()

	product, err := client.GetProduct(ctx, "1502101")

	assert.Nil(t, product)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode response")
}
