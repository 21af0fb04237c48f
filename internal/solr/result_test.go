package solr

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"testing"
)

func makeResponse(t *testing.T, payload map[string]interface{}) *Response {
	t.Helper()

	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("failed to marshal fixture: %s", err.Error())
	}

	return &Response{
		StatusCode:    http.StatusOK,
		StatusMessage: "200 OK",
		Headers:       http.Header{"Content-Type": []string{"application/json"}},
		Body:          body,
	}
}

func makeSelectResult(t *testing.T, docs []map[string]interface{}) *Result {
	t.Helper()

	payload := map[string]interface{}{
		"responseHeader": map[string]interface{}{"status": 0},
		"response": map[string]interface{}{
			"numFound": len(docs),
			"start":    0,
			"docs":     docs,
		},
	}

	result, err := NewResult(makeResponse(t, payload))
	if err != nil {
		t.Fatalf("unexpected result error: %s", err.Error())
	}

	return result
}

func docIDs(docs []Document) []string {
	ids := make([]string, 0, len(docs))
	for _, doc := range docs {
		ids = append(ids, doc.GetString("offer_id"))
	}

	return ids
}

func TestResultRejectsEngineErrors(t *testing.T) {
	res := &Response{
		StatusCode:    http.StatusBadRequest,
		StatusMessage: "400 Bad Request",
		Body:          []byte(`{"error":{"msg":"undefined field bogus"}}`),
	}

	_, err := NewResult(res)
	if err == nil {
		t.Fatal("expected engine error")
	}

	var engErr *EngineError
	if errors.As(err, &engErr) == false {
		t.Fatalf("error type = %T; want *EngineError", err)
	}
	if engErr.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d; want 400", engErr.StatusCode)
	}
	if len(engErr.Body) == 0 {
		t.Error("engine error lost the response body")
	}
}

func TestResultDecodeError(t *testing.T) {
	result, err := NewResult(&Response{StatusCode: 200, StatusMessage: "200 OK", Body: []byte("<html>not json</html>")})
	if err != nil {
		t.Fatalf("constructor should not parse: %s", err.Error())
	}

	parseErr := result.Err()
	if parseErr == nil {
		t.Fatal("expected decode error")
	}

	var decErr *DecodeError
	if errors.As(parseErr, &decErr) == false {
		t.Fatalf("error type = %T; want *DecodeError", parseErr)
	}

	// parse is one-shot; repeated access returns the same error
	if again := result.Err(); again != parseErr {
		t.Error("second access produced a different error value")
	}
}

func TestResultParsesSelectResponse(t *testing.T) {
	payload := map[string]interface{}{
		"responseHeader": map[string]interface{}{"status": 0},
		"response": map[string]interface{}{
			"numFound": 231,
			"start":    0,
			"docs": []map[string]interface{}{
				{"offer_id": "1", "title_en": "Ackermann DXT", "price": 12500},
				{"offer_id": "2", "title_en": "Krone Trailer", "price": 8000},
			},
		},
		"facet_counts": map[string]interface{}{
			"facet_fields": map[string]interface{}{
				"make": []interface{}{"ackermann", 10, "krone", 5},
			},
		},
		"stats": map[string]interface{}{
			"stats_fields": map[string]interface{}{
				"price": map[string]interface{}{"min": 100.0, "max": 99500.0, "count": 231, "missing": 0, "sum": 1000.0, "mean": 4.3, "stddev": 1.1},
			},
		},
		"moreLikeThis": map[string]interface{}{
			"1": map[string]interface{}{
				"numFound": 1,
				"docs":     []map[string]interface{}{{"offer_id": "9"}},
			},
		},
	}

	result, err := NewResult(makeResponse(t, payload))
	if err != nil {
		t.Fatalf("unexpected error: %s", err.Error())
	}

	if result.NumFound() != 231 {
		t.Errorf("numFound = %d; want 231", result.NumFound())
	}

	docs := result.Documents()
	if len(docs) != 2 || docs[0].GetString("offer_id") != "1" || docs[1].GetString("offer_id") != "2" {
		t.Errorf("docs = %v; want engine order preserved", docIDs(docs))
	}

	counts := result.GetFacetField("make")
	if len(counts) != 2 {
		t.Fatalf("facet counts = %v; want 2 entries", counts)
	}
	if counts[0].Value != "ackermann" || counts[0].Count != 10 || counts[1].Value != "krone" || counts[1].Count != 5 {
		t.Errorf("facet counts = %v; want alternating pairs in response order", counts)
	}

	stats := result.GetStatsField("price")
	if stats == nil {
		t.Fatal("missing price stats")
	}
	if stats.Min != 100 || stats.Max != 99500 || stats.Count != 231 {
		t.Errorf("stats = %+v", stats)
	}

	similar := result.MoreLikeThis("1")
	if len(similar) != 1 || similar[0].GetString("offer_id") != "9" {
		t.Errorf("moreLikeThis = %v", similar)
	}
}

func TestResultParsesSuggestResponse(t *testing.T) {
	payload := map[string]interface{}{
		"suggest": map[string]interface{}{
			"mySuggester": map[string]interface{}{
				"tract": map[string]interface{}{
					"numFound": 2,
					"suggestions": []map[string]interface{}{
						{"term": "tractor", "weight": 120, "payload": ""},
						{"term": "tracked excavator", "weight": 40, "payload": ""},
					},
				},
			},
		},
	}

	result, err := NewSuggestResult(makeResponse(t, payload), "mySuggester", "tract")
	if err != nil {
		t.Fatalf("unexpected error: %s", err.Error())
	}

	suggestions := result.Suggestions()
	if len(suggestions) != 2 {
		t.Fatalf("suggestions = %v; want 2", suggestions)
	}
	if suggestions[0].Term != "tractor" || suggestions[0].Weight != 120 {
		t.Errorf("first suggestion = %+v", suggestions[0])
	}
	if result.SuggestionsFound() != 2 {
		t.Errorf("numFound = %d; want 2", result.SuggestionsFound())
	}
}

func TestResultSuggestMissingPathIsEmpty(t *testing.T) {
	result, err := NewSuggestResult(makeResponse(t, map[string]interface{}{"responseHeader": map[string]interface{}{}}), "mySuggester", "tract")
	if err != nil {
		t.Fatalf("unexpected error: %s", err.Error())
	}

	if len(result.Suggestions()) != 0 || result.SuggestionsFound() != 0 {
		t.Error("missing suggest path should yield empty suggestions")
	}
	if result.Err() != nil {
		t.Errorf("missing suggest path should not error: %s", result.Err().Error())
	}
}

func TestFilterDocuments(t *testing.T) {
	result := makeSelectResult(t, []map[string]interface{}{
		{"offer_id": "1", "status": "sold"},
		{"offer_id": "2", "status": "active"},
		{"offer_id": "3", "tags": []string{"sold", "featured"}},
		{"offer_id": "4"},
	})

	result.FilterDocuments("status", "sold")
	if got := docIDs(result.Documents()); len(got) != 3 || got[0] != "2" {
		t.Errorf("after scalar filter: %v; want [2 3 4]", got)
	}

	result.FilterDocuments("tags", "sold")
	got := docIDs(result.Documents())
	if len(got) != 2 || got[0] != "2" || got[1] != "4" {
		t.Errorf("after list filter: %v; want [2 4]", got)
	}
}

func TestLimitDocuments(t *testing.T) {
	docs := make([]map[string]interface{}, 100)
	for i := range docs {
		docs[i] = map[string]interface{}{"offer_id": itoa(i)}
	}

	result := makeSelectResult(t, docs)
	result.LimitDocuments(6)

	got := result.Documents()
	if len(got) != 6 {
		t.Fatalf("limit kept %d docs; want 6", len(got))
	}
	for i, doc := range got {
		if doc.GetString("offer_id") != itoa(i) {
			t.Errorf("doc %d = %s; prefix order not preserved", i, doc.GetString("offer_id"))
		}
	}
}

func itoa(n int) string {
	return string(rune('0'+n/10)) + string(rune('0'+n%10))
}

func TestShuffleDocumentsKeepsMultiset(t *testing.T) {
	docs := make([]map[string]interface{}, 50)
	for i := range docs {
		docs[i] = map[string]interface{}{"offer_id": itoa(i)}
	}

	result := makeSelectResult(t, docs)
	before := docIDs(result.Documents())
	result.ShuffleDocuments()
	after := docIDs(result.Documents())

	if len(after) != len(before) {
		t.Fatalf("shuffle changed count: %d -> %d", len(before), len(after))
	}

	sortedBefore := append([]string(nil), before...)
	sortedAfter := append([]string(nil), after...)
	sort.Strings(sortedBefore)
	sort.Strings(sortedAfter)

	for i := range sortedBefore {
		if sortedBefore[i] != sortedAfter[i] {
			t.Fatalf("shuffle changed membership at %d: %s vs %s", i, sortedBefore[i], sortedAfter[i])
		}
	}
}

func TestBoostSellerTypes(t *testing.T) {
	result := makeSelectResult(t, []map[string]interface{}{
		{"offer_id": "1", "seller_type": SellerTypeFree},
		{"offer_id": "2", "seller_type": SellerTypePremium},
		{"offer_id": "3", "seller_type": SellerTypePackageGold},
		{"offer_id": "4", "seller_type": SellerTypePackageSilver},
		{"offer_id": "5", "seller_type": SellerTypePackageGold},
		{"offer_id": "6", "seller_type": SellerTypePackageGold},
		{"offer_id": "7", "seller_type": SellerTypePackageSilver},
		{"offer_id": "8", "seller_type": SellerTypeFree},
	})

	result.BoostSellerTypes(true, 2, 1)

	got := docIDs(result.Documents())

	// free sellers dropped
	for _, id := range got {
		if id == "1" || id == "8" {
			t.Errorf("free-tier doc %s survived filtering", id)
		}
	}

	// two gold and one silver promoted, original relative order kept
	want := []string{"3", "4", "5", "2", "6", "7"}
	if len(got) != len(want) {
		t.Fatalf("result = %v; want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("result = %v; want %v", got, want)
		}
	}
}

func TestOrderBySimilarity(t *testing.T) {
	result := makeSelectResult(t, []map[string]interface{}{
		{"offer_id": "1", "title_en": "Krone Big Pack"},
		{"offer_id": "2", "title_en": "Ackermann DXT semi-trailer - 2015"},
		{"offer_id": "3", "title_en": "Ackermann flatbed"},
	})

	result.OrderBySimilarity("Ackermann DXT trailer", "title_en")

	got := docIDs(result.Documents())
	if got[0] != "2" {
		t.Errorf("order = %v; want the dxt trailer first", got)
	}
	if got[len(got)-1] != "1" {
		t.Errorf("order = %v; want the unrelated doc last", got)
	}
}

func TestSimilarityTokens(t *testing.T) {
	tokens := similarityTokens("Ackermann-DXT/18.5 Other tipper - 2014")

	// hyphens and dots concatenate, slashes split
	for _, want := range []string{"ackermanndxt", "185", "tipper"} {
		if tokens[want] == false {
			t.Errorf("tokens missing %q: %v", want, tokens)
		}
	}
	for _, unwanted := range []string{"ackermann", "dxt", "18", "other", "2014"} {
		if tokens[unwanted] == true {
			t.Errorf("tokens should not contain %q: %v", unwanted, tokens)
		}
	}
}

func TestSimilarityTokensStripsOtherSubstring(t *testing.T) {
	tokens := similarityTokens("Trailers+Other equipment")

	if tokens["trailers"] == false || tokens["equipment"] == false {
		t.Errorf("tokens = %v", tokens)
	}
	if tokens["other"] == true {
		t.Errorf("tokens = %v; other should be stripped", tokens)
	}
}

func TestReplaceWithMoreLikeThis(t *testing.T) {
	payload := map[string]interface{}{
		"response": map[string]interface{}{
			"numFound": 1,
			"docs":     []map[string]interface{}{{"offer_id": "1"}},
		},
		"moreLikeThis": map[string]interface{}{
			"1": map[string]interface{}{
				"docs": []map[string]interface{}{{"offer_id": "40"}, {"offer_id": "41"}},
			},
		},
	}

	result, err := NewResult(makeResponse(t, payload))
	if err != nil {
		t.Fatalf("unexpected error: %s", err.Error())
	}

	result.ReplaceWithMoreLikeThis("1")
	if got := docIDs(result.Documents()); len(got) != 2 || got[0] != "40" {
		t.Errorf("docs = %v; want mlt bucket", got)
	}

	// a missing bucket leaves documents unchanged
	result.ReplaceWithMoreLikeThis("999")
	if got := docIDs(result.Documents()); len(got) != 2 || got[0] != "40" {
		t.Errorf("docs = %v; want unchanged", got)
	}
}

func TestPostProcessingSyncsRawData(t *testing.T) {
	result := makeSelectResult(t, []map[string]interface{}{
		{"offer_id": "1"},
		{"offer_id": "2"},
		{"offer_id": "3"},
	})

	result.LimitDocuments(1)

	raw := result.Raw()
	resp, ok := raw["response"].(map[string]interface{})
	if ok == false {
		t.Fatal("raw data lost its response block")
	}

	rawDocs, ok := resp["docs"].([]interface{})
	if ok == false || len(rawDocs) != 1 {
		t.Fatalf("raw docs = %v; want the transformed single-doc list", resp["docs"])
	}
}
