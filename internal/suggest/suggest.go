package suggest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/abdusco/shortly/internal"
	"github.com/rs/zerolog/log"
)

const aliasCount = 4
const maxAliasLength = 12

const prompt = `Suggest exactly 4 short, memorable aliases for a short link pointing to this URL: %s
Each alias must be at most 12 characters, lowercase, without spaces.
Respond with a JSON array of 4 strings and nothing else.`

// Client asks an OpenAI-compatible chat completions endpoint for alias
// candidates. The base URL is injectable so tests can point it at a fake.
type Client struct {
	httpClient *http.Client
	apiKey     string
	baseURL    string
	model      string
}

func NewClient(apiKey, baseURL, model string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
	}
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// SuggestAliases returns exactly four normalized alias candidates for the
// given URL, or ErrSuggestFailed if the upstream response is unusable.
func (c *Client) SuggestAliases(ctx context.Context, originalURL string) ([]string, error) {
	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "user", Content: fmt.Sprintf(prompt, originalURL)},
		},
		Temperature: 0.8,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", internal.ErrSuggestFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", internal.ErrSuggestFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	log.Debug().Str("url", originalURL).Str("model", c.model).Msg("requesting alias suggestions")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Error().Err(err).Msg("suggestion request failed")
		return nil, fmt.Errorf("%w: %w", internal.ErrSuggestFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Error().Int("status", resp.StatusCode).Msg("suggestion request rejected")
		return nil, fmt.Errorf("%w: unexpected status %d", internal.ErrSuggestFailed, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", internal.ErrSuggestFailed, err)
	}

	var chat chatResponse
	if err := json.Unmarshal(data, &chat); err != nil {
		return nil, fmt.Errorf("%w: %w", internal.ErrSuggestFailed, err)
	}

	if len(chat.Choices) == 0 {
		return nil, fmt.Errorf("%w: empty response", internal.ErrSuggestFailed)
	}

	aliases, err := parseAliases(chat.Choices[0].Message.Content)
	if err != nil {
		log.Error().Err(err).Msg("failed to parse alias suggestions")
		return nil, err
	}

	log.Info().Strs("aliases", aliases).Msg("alias suggestions received")
	return aliases, nil
}

// parseAliases extracts the JSON array from the model reply, tolerating
// surrounding prose and markdown code fences, and normalizes the candidates.
func parseAliases(content string) ([]string, error) {
	start := strings.Index(content, "[")
	end := strings.LastIndex(content, "]")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("%w: no JSON array in reply", internal.ErrSuggestFailed)
	}

	var candidates []string
	if err := json.Unmarshal([]byte(content[start:end+1]), &candidates); err != nil {
		return nil, fmt.Errorf("%w: %w", internal.ErrSuggestFailed, err)
	}

	seen := make(map[string]bool)
	aliases := make([]string, 0, aliasCount)
	for _, candidate := range candidates {
		alias := normalizeAlias(candidate)
		if alias == "" || seen[alias] {
			continue
		}
		seen[alias] = true
		aliases = append(aliases, alias)
		if len(aliases) == aliasCount {
			break
		}
	}

	if len(aliases) < aliasCount {
		return nil, fmt.Errorf("%w: got %d usable aliases, want %d", internal.ErrSuggestFailed, len(aliases), aliasCount)
	}

	return aliases, nil
}

func normalizeAlias(candidate string) string {
	alias := strings.ToLower(strings.TrimSpace(candidate))
	alias = strings.ReplaceAll(alias, " ", "")
	if len(alias) > maxAliasLength {
		alias = alias[:maxAliasLength]
	}
	return alias
}
