// Package scorer rates chat messages against a fixed community-value rubric
// using an external chat-completion API.
package scorer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/chatrank/chatrank/internal/provider"
)

// Criterion is one rubric dimension with the prompt used to score it.
type Criterion struct {
	Key    string
	Prompt string
}

// Criteria is the fixed, ordered scoring rubric. Every scored message carries
// a score for each key, with 0 standing in for a failed criterion call.
var Criteria = []Criterion{
	{"question_quality", "How interesting or thought-provoking is this question for the Web3 community?"},
	{"technical_value", "Does this message contain valuable technical information or insights?"},
	{"link_relevance", "Are there relevant links or references shared that add value?"},
	{"community_engagement", "How likely is this message to spark meaningful community discussion?"},
	{"unique_perspective", "Does this message offer a unique or innovative point of view?"},
	{"market_insight", "Does this message provide valuable market or trend insights?"},
	{"resource_sharing", "How valuable are the shared resources or tools mentioned?"},
	{"problem_solving", "Does this message help solve a community member's problem?"},
	{"knowledge_sharing", "How effectively does this message share knowledge or experience?"},
	{"credibility", "How credible and well-supported are the claims or statements?"},
}

// AverageKey is the reserved score_data key holding the rounded mean.
const AverageKey = "average_score"

const systemPrompt = `You are a Web3 community analyst. You must ONLY return a JSON object with a single 'score' field containing a number between 0-10. Example: {"score": 7}. Do not include any other text or explanation.`

// Options tunes the scorer fan-out.
type Options struct {
	Model       string
	Temperature float64
	// Parallelism bounds concurrent criterion calls. Defaults to 4.
	Parallelism int
	// Timeout applies per criterion call. Defaults to 10s.
	Timeout time.Duration
}

// Scorer scores messages by issuing one completion request per criterion.
type Scorer struct {
	provider    provider.CompletionProvider
	model       string
	temperature float64
	parallelism int
	timeout     time.Duration
}

// New creates a Scorer backed by the given completion provider.
func New(p provider.CompletionProvider, opts Options) *Scorer {
	if opts.Parallelism <= 0 {
		opts.Parallelism = 4
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.Temperature == 0 {
		opts.Temperature = 0.3
	}
	return &Scorer{
		provider:    p,
		model:       opts.Model,
		temperature: opts.Temperature,
		parallelism: opts.Parallelism,
		timeout:     opts.Timeout,
	}
}

// criterionResult is the typed outcome of a single criterion call. A failed
// call carries Err and reduces to score 0; it never aborts the message.
type criterionResult struct {
	Key   string
	Score float64
	Err   error
}

// Score rates one message against every rubric criterion and returns the
// per-criterion mapping (including the reserved average_score key) and the
// average. The average is the mean of scores strictly greater than zero,
// rounded to one decimal; it is 0 when every criterion scored 0.
func (s *Scorer) Score(ctx context.Context, message string) (map[string]float64, float64) {
	results := make([]criterionResult, len(Criteria))

	var wg sync.WaitGroup
	sem := make(chan struct{}, s.parallelism)
	for i, c := range Criteria {
		wg.Add(1)
		go func(i int, c Criterion) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			results[i] = s.scoreCriterion(ctx, c, message)
		}(i, c)
	}
	wg.Wait()

	scores := make(map[string]float64, len(Criteria)+1)
	var sum float64
	var nonZero int
	for _, res := range results {
		if res.Err != nil {
			slog.Error("Criterion scoring failed", "criterion", res.Key, "error", res.Err)
			scores[res.Key] = 0
			continue
		}
		scores[res.Key] = res.Score
		if res.Score > 0 {
			sum += res.Score
			nonZero++
		}
	}

	var average float64
	if nonZero > 0 {
		average = math.Round(sum/float64(nonZero)*10) / 10
	}
	scores[AverageKey] = average

	return scores, average
}

func (s *Scorer) scoreCriterion(ctx context.Context, c Criterion, message string) criterionResult {
	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	resp, err := s.provider.Complete(callCtx, &provider.CompletionRequest{
		Model:       s.model,
		Temperature: s.temperature,
		Messages: []provider.Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: fmt.Sprintf("%s\n\nMessage to analyze:\n%s", c.Prompt, message)},
		},
	})
	if err != nil {
		return criterionResult{Key: c.Key, Err: err}
	}

	score, err := ParseScore(resp.Content)
	if err != nil {
		return criterionResult{Key: c.Key, Err: err}
	}
	return criterionResult{Key: c.Key, Score: score}
}

// ParseScore extracts a clamped [0,10] score from a completion response.
// Bare numeric replies are tolerated by wrapping them into a score object.
func ParseScore(text string) (float64, error) {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "{") {
		trimmed = fmt.Sprintf(`{"score": %s}`, trimmed)
	}
	var payload struct {
		Score *float64 `json:"score"`
	}
	if err := json.Unmarshal([]byte(trimmed), &payload); err != nil {
		return 0, fmt.Errorf("parse score: %w", err)
	}
	if payload.Score == nil {
		return 0, fmt.Errorf("response has no score field")
	}
	return clamp(*payload.Score), nil
}

func clamp(score float64) float64 {
	return math.Min(math.Max(score, 0), 10)
}
