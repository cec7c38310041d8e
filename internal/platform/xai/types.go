package xai

import (
	"fmt"
	"strings"
)

// NoTextFallback is returned by Response.Text when the payload carries no
// usable text.
const NoTextFallback = "Grok returned no analysis text."

// Tool enables a server-side search tool for one request.
type Tool struct {
	Type     string `json:"type"`                // "x_search" or "web_search"
	FromDate string `json:"from_date,omitempty"` // YYYY-MM-DD
}

// InputMessage is one turn of the request conversation.
type InputMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request is the body of POST /responses.
type Request struct {
	Model           string         `json:"model"`
	MaxOutputTokens int            `json:"max_output_tokens"`
	MaxToolCalls    int            `json:"max_tool_calls"`
	Tools           []Tool         `json:"tools"`
	Input           []InputMessage `json:"input"`
}

// Response is the subset of the Responses API payload the client reads.
// Older chat-completions shaped payloads are tolerated through Choices.
type Response struct {
	ID         string       `json:"id"`
	Status     string       `json:"status"`
	OutputText string       `json:"output_text"`
	Output     []OutputItem `json:"output"`
	Choices    []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// OutputItem is one entry of the response output list: an assistant
// message or a tool call record.
type OutputItem struct {
	Type    string         `json:"type"`
	Role    string         `json:"role"`
	Status  string         `json:"status"`
	Name    string         `json:"name"`
	Content []ContentChunk `json:"content"`
}

// ContentChunk is a piece of message content.
type ContentChunk struct {
	Type        string       `json:"type"`
	Text        string       `json:"text"`
	Annotations []Annotation `json:"annotations"`
}

// Annotation marks up a content chunk, e.g. with an inline citation.
type Annotation struct {
	Type string `json:"type"`
	URL  string `json:"url"`
}

func (o *OutputItem) isAssistantMessage() bool {
	return o.Type == "message" && o.Role == "assistant"
}

// Text extracts the analysis text. It prefers the top-level output_text,
// then the first non-blank output_text chunk of an assistant message, then
// a chat-completions style choice, and finally NoTextFallback.
func (r *Response) Text() string {
	if strings.TrimSpace(r.OutputText) != "" {
		return r.OutputText
	}
	for i := range r.Output {
		item := &r.Output[i]
		if !item.isAssistantMessage() {
			continue
		}
		for _, chunk := range item.Content {
			if chunk.Type == "output_text" && strings.TrimSpace(chunk.Text) != "" {
				return chunk.Text
			}
		}
	}
	if len(r.Choices) > 0 && strings.TrimSpace(r.Choices[0].Message.Content) != "" {
		return r.Choices[0].Message.Content
	}
	return NoTextFallback
}

// Citations counts url_citation annotations on assistant messages.
func (r *Response) Citations() int {
	n := 0
	for i := range r.Output {
		item := &r.Output[i]
		if !item.isAssistantMessage() {
			continue
		}
		for _, chunk := range item.Content {
			for _, a := range chunk.Annotations {
				if a.Type == "url_citation" {
					n++
				}
			}
		}
	}
	return n
}

// ToolCallSummary counts completed server-side tool calls by kind.
type ToolCallSummary struct {
	XSearch   int
	WebSearch int
	Other     int
}

func (s ToolCallSummary) String() string {
	return fmt.Sprintf("x_search=%d web_search=%d other_custom=%d", s.XSearch, s.WebSearch, s.Other)
}

// ToolCalls summarizes the completed tool calls in the response. Custom
// tool calls are classified by name.
func (r *Response) ToolCalls() ToolCallSummary {
	var s ToolCallSummary
	for _, item := range r.Output {
		if item.Status != "completed" {
			continue
		}
		switch item.Type {
		case "x_search_call":
			s.XSearch++
		case "web_search_call":
			s.WebSearch++
		case "custom_tool_call":
			name := strings.ToLower(item.Name)
			switch {
			case strings.HasPrefix(name, "x_"):
				s.XSearch++
			case strings.Contains(name, "web"), strings.Contains(name, "browse"):
				s.WebSearch++
			default:
				s.Other++
			}
		}
	}
	return s
}
