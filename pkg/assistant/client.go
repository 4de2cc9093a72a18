package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/cuemby/hoconnect/pkg/types"
)

const (
	defaultModel     = "claude-sonnet-4-5-20250929"
	defaultMaxTokens = 2048
	defaultBaseURL   = "https://api.anthropic.com"
	apiVersion       = "2023-06-01"
)

// Config configures a Client
type Config struct {
	APIKey     string
	Model      string
	MaxTokens  int
	BaseURL    string
	HTTPClient *http.Client
}

// Client is a Generator backed by the Anthropic Messages API
type Client struct {
	apiKey    string
	model     string
	maxTokens int
	url       string
	client    *http.Client
}

// New creates a client. Empty fields fall back to defaults.
func New(cfg Config) *Client {
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = defaultMaxTokens
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{}
	}
	return &Client{
		apiKey:    cfg.APIKey,
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		url:       strings.TrimRight(cfg.BaseURL, "/") + "/v1/messages",
		client:    cfg.HTTPClient,
	}
}

// GenerateIdeas asks for three cross-department project ideas addressing a
// retail challenge
func (c *Client) GenerateIdeas(ctx context.Context, challenge string, departments []string) ([]types.ProjectIdea, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "สร้างไอเดียโปรเจกต์ HR นวัตกรรมใหม่ 3 ไอเดียสำหรับบริษัทค้าปลีกเพื่อแก้ปัญหาความท้าทายนี้: %q\n", challenge)
	fmt.Fprintf(&sb, "เน้นการประสานงานระหว่างแผนกต่างๆ เหล่านี้: %s\n", strings.Join(departments, ", "))
	sb.WriteString("**สำคัญ: ทุกข้อความใน JSON ต้องเป็นภาษาไทย**")

	text, err := c.complete(ctx, ideasSystemPrompt, sb.String())
	if err != nil {
		return nil, err
	}

	var ideas []types.ProjectIdea
	if err := json.Unmarshal([]byte(extractJSON(text)), &ideas); err != nil {
		return nil, fmt.Errorf("decoding ideas: %w", err)
	}
	return ideas, nil
}

// DraftTask turns a free-form instruction into a task draft, choosing an
// assignee and department from the given lists
func (c *Client) DraftTask(ctx context.Context, prompt string, employees []types.Employee, departments []string) (*types.TaskDraft, error) {
	roster := make([]string, 0, len(employees))
	for _, e := range employees {
		roster = append(roster, fmt.Sprintf("%s (ID: %s, แผนก: %s)", e.Name, e.ID, e.Department))
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "จากข้อความคำสั่งงานนี้: %q\n", prompt)
	sb.WriteString("จงวิเคราะห์และสร้างข้อมูลงานในรูปแบบ JSON.\n")
	fmt.Fprintf(&sb, "รายชื่อพนักงานที่สามารถมอบหมายได้: %s\n", strings.Join(roster, ", "))
	fmt.Fprintf(&sb, "รายการแผนก: %s\n", strings.Join(departments, ", "))
	sb.WriteString("ถ้าไม่ระบุพนักงาน ให้เลือกพนักงานที่เหมาะสมที่สุดตามแผนกที่วิเคราะห์ได้ หรือระบุ assigneeId เป็น \"\"\n")
	sb.WriteString("**สำคัญ: ทุกข้อความใน JSON ต้องเป็นภาษาไทย**")

	text, err := c.complete(ctx, draftSystemPrompt, sb.String())
	if err != nil {
		return nil, err
	}

	var draft types.TaskDraft
	if err := json.Unmarshal([]byte(extractJSON(text)), &draft); err != nil {
		return nil, fmt.Errorf("decoding task draft: %w", err)
	}
	return &draft, nil
}

const ideasSystemPrompt = `You generate project ideas for a retail organization.
Reply with only a JSON array of objects with the string fields "title",
"description", "objective", "impact" and the string array "keySteps".`

const draftSystemPrompt = `You turn work instructions into task records.
Reply with only a JSON object with the string fields "title", "description",
"department", "assigneeId", "assigneeName", "deadline" (YYYY-MM-DD) and the
string array "suggestedSubTasks".`

// complete sends one user message and returns the concatenated text blocks
// of the reply
func (c *Client) complete(ctx context.Context, system, user string) (string, error) {
	reqBody := apiRequest{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		System:    system,
		Messages: []apiMessage{{
			Role:    "user",
			Content: []apiContentBlock{{Type: "text", Text: user}},
		}},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", apiVersion)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling messages API: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr apiErrorResponse
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error.Message != "" {
			return "", fmt.Errorf("API error (%d): %s", resp.StatusCode, apiErr.Error.Message)
		}
		return "", fmt.Errorf("API error (%d): %s", resp.StatusCode, string(respBody))
	}

	var result apiResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}

	var parts []string
	for _, block := range result.Content {
		if block.Type == "text" {
			parts = append(parts, block.Text)
		}
	}
	return strings.Join(parts, ""), nil
}

// extractJSON strips a markdown code fence around a JSON reply
func extractJSON(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```")
	if nl := strings.IndexByte(text, '\n'); nl >= 0 {
		text = text[nl+1:]
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(text), "```"))
}

type apiRequest struct {
	Model     string       `json:"model"`
	MaxTokens int          `json:"max_tokens"`
	System    string       `json:"system"`
	Messages  []apiMessage `json:"messages"`
}

type apiMessage struct {
	Role    string            `json:"role"`
	Content []apiContentBlock `json:"content"`
}

type apiContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

type apiResponse struct {
	ID         string            `json:"id"`
	Type       string            `json:"type"`
	Role       string            `json:"role"`
	Content    []apiContentBlock `json:"content"`
	Model      string            `json:"model"`
	StopReason string            `json:"stop_reason"`
}

type apiErrorResponse struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}
