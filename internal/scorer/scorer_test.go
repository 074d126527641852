package scorer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/chatrank/chatrank/internal/provider"
)

// fakeProvider maps criterion prompt fragments to canned responses. Criteria
// without a mapping fail with an error, which must reduce to score 0.
type fakeProvider struct {
	responses map[string]string
}

func (f *fakeProvider) Complete(_ context.Context, req *provider.CompletionRequest) (*provider.CompletionResponse, error) {
	user := req.Messages[len(req.Messages)-1].Content
	for fragment, resp := range f.responses {
		if strings.Contains(user, fragment) {
			return &provider.CompletionResponse{Content: resp}, nil
		}
	}
	return nil, errors.New("no canned response")
}

func (f *fakeProvider) DefaultModel() string { return "fake" }

func newTestScorer(responses map[string]string) *Scorer {
	return New(&fakeProvider{responses: responses}, Options{Parallelism: 2})
}

func TestParseScore(t *testing.T) {
	cases := []struct {
		name    string
		in      string
		want    float64
		wantErr bool
	}{
		{"json object", `{"score": 7}`, 7, false},
		{"json with whitespace", "  {\"score\": 4.5}\n", 4.5, false},
		{"bare integer", "7", 7, false},
		{"bare float", "8.5", 8.5, false},
		{"clamped high", `{"score": 15}`, 10, false},
		{"clamped low", `{"score": -3}`, 0, false},
		{"non-numeric", "seven out of ten", 0, true},
		{"missing field", `{"rating": 7}`, 0, true},
		{"string score", `{"score": "7"}`, 0, true},
		{"empty", "", 0, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseScore(tc.in)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			if got != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestScoreAveragesNonZero(t *testing.T) {
	// Two criteria answer (8 and 6), the other eight fail. Average ignores
	// zeros: (8+6)/2 = 7.0.
	s := newTestScorer(map[string]string{
		"thought-provoking": `{"score": 8}`,
		"relevant links":    `{"score": 6}`,
	})

	scores, avg := s.Score(context.Background(), "check out this thread")
	if avg != 7.0 {
		t.Fatalf("expected average 7.0, got %v", avg)
	}
	if len(scores) != len(Criteria)+1 {
		t.Fatalf("expected %d keys, got %d", len(Criteria)+1, len(scores))
	}
	for _, c := range Criteria {
		if _, ok := scores[c.Key]; !ok {
			t.Fatalf("missing criterion key %s", c.Key)
		}
	}
	if scores["question_quality"] != 8 || scores["link_relevance"] != 6 {
		t.Fatalf("unexpected criterion scores: %v", scores)
	}
	if scores["technical_value"] != 0 {
		t.Fatalf("failed criterion should score 0, got %v", scores["technical_value"])
	}
	if scores[AverageKey] != 7.0 {
		t.Fatalf("expected average_score key 7.0, got %v", scores[AverageKey])
	}
}

func TestScoreAllFailuresYieldZero(t *testing.T) {
	s := newTestScorer(nil)

	scores, avg := s.Score(context.Background(), "hello")
	if avg != 0 {
		t.Fatalf("expected average 0, got %v", avg)
	}
	for _, c := range Criteria {
		if scores[c.Key] != 0 {
			t.Fatalf("expected 0 for %s, got %v", c.Key, scores[c.Key])
		}
	}
	if scores[AverageKey] != 0 {
		t.Fatalf("expected average_score 0, got %v", scores[AverageKey])
	}
}

func TestScoreRoundsToOneDecimal(t *testing.T) {
	s := newTestScorer(map[string]string{
		"thought-provoking": `{"score": 7}`,
		"relevant links":    `{"score": 8}`,
		"credible":          `{"score": 8}`,
	})

	// (7+8+8)/3 = 7.666... → 7.7
	_, avg := s.Score(context.Background(), "gm")
	if avg != 7.7 {
		t.Fatalf("expected average 7.7, got %v", avg)
	}
}

func TestScoreClampsOutOfRangeResponses(t *testing.T) {
	s := newTestScorer(map[string]string{
		"thought-provoking": `{"score": 42}`,
	})

	scores, avg := s.Score(context.Background(), "wen moon")
	if scores["question_quality"] != 10 {
		t.Fatalf("expected clamped 10, got %v", scores["question_quality"])
	}
	if avg != 10 {
		t.Fatalf("expected average 10, got %v", avg)
	}
}
