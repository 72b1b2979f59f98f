package transcription

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/creatorstation/reel-harvester/internal/config"
	"github.com/creatorstation/reel-harvester/internal/models"
)

// Analyzer decomposes a transcript into script components.
type Analyzer interface {
	AnalyzeScript(ctx context.Context, transcript, title string) (*models.ScriptComponents, error)
}

// HTTPAnalyzer implements Analyzer against an OpenAI-compatible chat API.
type HTTPAnalyzer struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

// NewAnalyzer creates an analysis client.
func NewAnalyzer(cfg config.AnalyzerConfig) *HTTPAnalyzer {
	return &HTTPAnalyzer{
		apiKey:  cfg.APIKey,
		baseURL: cfg.BaseURL,
		model:   cfg.Model,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

const analyzeSystemPrompt = `You are a short-form video script analyst.
Given a transcript, break it into the four script components:
- hook: the opening line(s) that grab attention
- bridge: the transition connecting the hook to the main content
- nugget: the core value, insight or payoff of the video
- wta: the call-to-action (what-to-act), if any

Return your analysis as JSON with exactly these fields:
{"hook":"...","bridge":"...","nugget":"...","wta":"..."}

Use empty strings for components the transcript does not contain.
Return ONLY valid JSON, no markdown, no explanation.`

// AnalyzeScript asks the model for the hook/bridge/nugget/wta breakdown of a
// transcript.
func (a *HTTPAnalyzer) AnalyzeScript(ctx context.Context, transcript, title string) (*models.ScriptComponents, error) {
	prompt := buildScriptPrompt(transcript, title)

	chatReq := chatRequest{
		Model: a.model,
		Messages: []chatMessage{
			{Role: "system", Content: analyzeSystemPrompt},
			{Role: "user", Content: prompt},
		},
	}

	body, err := json.Marshal(chatReq)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", a.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+a.apiKey)

	resp, err := a.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var chatResp chatResponse
	if err := json.Unmarshal(respBody, &chatResp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	if chatResp.Error != nil {
		return nil, fmt.Errorf("API error: %s", chatResp.Error.Message)
	}

	if len(chatResp.Choices) == 0 {
		return nil, fmt.Errorf("no response from analyzer")
	}

	content := stripCodeFence(chatResp.Choices[0].Message.Content)

	var components models.ScriptComponents
	if err := json.Unmarshal([]byte(content), &components); err != nil {
		return nil, fmt.Errorf("parse analysis JSON: %w", err)
	}

	return &components, nil
}

func buildScriptPrompt(transcript, title string) string {
	var sb strings.Builder
	if title != "" {
		sb.WriteString(fmt.Sprintf("Video title: %q\n\n", title))
	}
	sb.WriteString("Transcript:\n")
	sb.WriteString(transcript)
	return sb.String()
}

// stripCodeFence unwraps a ```json ... ``` fenced block when the model adds
// one despite the instructions.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
