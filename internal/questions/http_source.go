package questions

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"quizmaster/internal/domain"
)

// Request is the wire body sent to the question generator.
type Request struct {
	Topic      string `json:"topic"`
	Difficulty string `json:"difficulty"`
	Count      int    `json:"count"`
}

// HTTPSource asks a remote generator for questions with a single POST per call.
// It deliberately has no retry, cache or request coalescing.
type HTTPSource struct {
	endpoint string
	client   *http.Client
}

// NewHTTPSource targets endpoint; a nil client means http.DefaultClient.
func NewHTTPSource(endpoint string, client *http.Client) *HTTPSource {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPSource{endpoint: endpoint, client: client}
}

func (s *HTTPSource) FetchQuestions(ctx context.Context, topic string, difficulty domain.Difficulty, count int) ([]domain.Question, error) {
	body, err := json.Marshal(Request{Topic: topic, Difficulty: string(difficulty), Count: count})
	if err != nil {
		return nil, domain.NewTransportError(fmt.Errorf("encode request: %w", err))
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, domain.NewTransportError(fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, domain.NewTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, domain.NewTransportError(fmt.Errorf("unexpected status %d", resp.StatusCode))
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domain.NewTransportError(fmt.Errorf("read body: %w", err))
	}
	return DecodePayload(raw)
}

// DecodePayload parses a response body: a JSON string whose contents are
// {"questions":[{"question","options","answer"}]}.
func DecodePayload(raw []byte) ([]domain.Question, error) {
	var payload string
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, domain.NewMalformedResponse(fmt.Errorf("body is not a JSON string: %w", err))
	}
	return ParseQuestions(payload)
}

type wireQuestion struct {
	Question *string  `json:"question"`
	Options  []string `json:"options"`
	Answer   *int     `json:"answer"`
}

// ParseQuestions validates the inner question document.
func ParseQuestions(payload string) ([]domain.Question, error) {
	var doc struct {
		Questions []wireQuestion `json:"questions"`
	}
	dec := json.NewDecoder(strings.NewReader(payload))
	if err := dec.Decode(&doc); err != nil {
		return nil, domain.NewMalformedResponse(fmt.Errorf("decode questions: %w", err))
	}
	if len(doc.Questions) == 0 {
		return nil, domain.NewMalformedResponse(errors.New("no questions in payload"))
	}

	out := make([]domain.Question, 0, len(doc.Questions))
	for i, q := range doc.Questions {
		switch {
		case q.Question == nil || strings.TrimSpace(*q.Question) == "":
			return nil, domain.NewMalformedResponse(fmt.Errorf("question %d: missing text", i))
		case len(q.Options) != domain.OptionsPerQuestion:
			return nil, domain.NewMalformedResponse(fmt.Errorf("question %d: expected %d options, got %d", i, domain.OptionsPerQuestion, len(q.Options)))
		case q.Answer == nil:
			return nil, domain.NewMalformedResponse(fmt.Errorf("question %d: missing answer", i))
		case *q.Answer < 0 || *q.Answer >= len(q.Options):
			return nil, domain.NewMalformedResponse(fmt.Errorf("question %d: answer %d out of range", i, *q.Answer))
		}
		out = append(out, domain.Question{
			Text:               *q.Question,
			Options:            append([]string(nil), q.Options...),
			CorrectAnswerIndex: *q.Answer,
		})
	}
	return out, nil
}
