package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"github.com/viraj01032007/setmystay02/backend/shared/go-models"
)

// RankCandidate is the slice of an item the ranking model sees. Contact
// details are never sent.
type RankCandidate struct {
	ID              string   `json:"id"`
	PropertyType    string   `json:"property_type"`
	Title           string   `json:"title"`
	Rent            int      `json:"rent"`
	City            string   `json:"city"`
	Locality        string   `json:"locality"`
	Size            string   `json:"size,omitempty"`
	FurnishedStatus string   `json:"furnished_status,omitempty"`
	Amenities       []string `json:"amenities,omitempty"`
	Preferences     []string `json:"preferences,omitempty"`
	Gender          string   `json:"gender,omitempty"`
	Views           int      `json:"views"`
}

func candidateFor(it models.Item) RankCandidate {
	switch it.Kind {
	case models.ItemKindListing:
		l := it.Listing
		return RankCandidate{
			ID:              l.ID,
			PropertyType:    string(l.PropertyType),
			Title:           l.Title,
			Rent:            l.Rent,
			City:            l.City,
			Locality:        l.Locality,
			Size:            l.Size,
			FurnishedStatus: string(l.FurnishedStatus),
			Amenities:       l.Amenities,
			Views:           l.Views,
		}
	case models.ItemKindRoommate:
		r := it.Roommate
		return RankCandidate{
			ID:           r.ID,
			PropertyType: string(models.PropertyTypeRoommate),
			Title:        r.Description,
			Rent:         r.Rent,
			City:         r.City,
			Locality:     r.Locality,
			Preferences:  r.Preferences,
			Gender:       r.Gender,
			Views:        r.Views,
		}
	}
	return RankCandidate{ID: it.ID()}
}

// RankRequest is the ranking input for one visitor's current view.
type RankRequest struct {
	Listings           []RankCandidate `json:"listings"`
	UserPreferences    string          `json:"userPreferences"`
	ViewingPatterns    string          `json:"viewingPatterns"`
	HasUnlockedDetails bool            `json:"hasUnlockedDetails"`
}

// Ranker returns the candidate ids in preferred order.
type Ranker interface {
	Rank(ctx context.Context, req RankRequest) ([]string, error)
}

// PassthroughRanker keeps the input order. Used when smart sort is disabled.
type PassthroughRanker struct{}

func (PassthroughRanker) Rank(_ context.Context, req RankRequest) ([]string, error) {
	ids := make([]string, len(req.Listings))
	for i, c := range req.Listings {
		ids[i] = c.ID
	}
	return ids, nil
}

const rankFunctionName = "rank_listings"

// OpenAIRanker asks a chat model to order listings through a forced function call.
type OpenAIRanker struct {
	client *openai.Client
	model  shared.ChatModel
}

// NewOpenAIRanker returns nil for an empty apiKey; callers fall back to
// PassthroughRanker.
func NewOpenAIRanker(apiKey, model string) *OpenAIRanker {
	if apiKey == "" {
		return nil
	}
	c := openai.NewClient(option.WithAPIKey(apiKey))
	if model == "" {
		model = string(shared.ChatModelGPT4oMini)
	}
	return &OpenAIRanker{client: &c, model: shared.ChatModel(model)}
}

func (r *OpenAIRanker) Rank(ctx context.Context, req RankRequest) ([]string, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal rank request: %w", err)
	}

	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"ids": map[string]any{
				"type":  "array",
				"items": map[string]string{"type": "string"},
			},
		},
		"required":             []string{"ids"},
		"additionalProperties": false,
	}

	fn := shared.FunctionDefinitionParam{
		Name:        rankFunctionName,
		Description: openai.String("Return every listing id, most relevant to the user first."),
		Strict:      openai.Bool(true),
		Parameters:  schema,
	}

	params := openai.ChatCompletionNewParams{
		Model: r.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(`You rank rental listings for a house hunter in India.
Order the listings by how well they fit the user's stated preferences and the places they have been viewing.
If the user has unlocked details before, favour listings similar to what they engage with.
Call rank_listings with every id exactly once. Do not invent ids.`),
			openai.UserMessage(string(payload)),
		},
		Tools: []openai.ChatCompletionToolParam{{
			Function: fn,
		}},
		ToolChoice: openai.ChatCompletionToolChoiceOptionUnionParam{
			OfChatCompletionNamedToolChoice: &openai.ChatCompletionNamedToolChoiceParam{
				Function: openai.ChatCompletionNamedToolChoiceFunctionParam{
					Name: rankFunctionName,
				},
			},
		},
	}

	resp, err := r.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai: %w", err)
	}
	if len(resp.Choices) == 0 || len(resp.Choices[0].Message.ToolCalls) == 0 {
		return nil, fmt.Errorf("openai: no function call returned")
	}

	var out struct {
		IDs []string `json:"ids"`
	}
	if err := json.Unmarshal(
		[]byte(resp.Choices[0].Message.ToolCalls[0].Function.Arguments),
		&out,
	); err != nil {
		return nil, fmt.Errorf("unmarshal ranking: %w", err)
	}
	for i := range out.IDs {
		out.IDs[i] = strings.TrimSpace(out.IDs[i])
	}
	return out.IDs, nil
}

// reorder maps ranked ids back onto the records that were sent. Unknown and
// repeated ids are ignored; records the ranker dropped follow in their
// original order.
func reorder(view []models.Item, ranked []string) []models.Item {
	byID := make(map[string]models.Item, len(view))
	for _, it := range view {
		byID[it.ID()] = it
	}
	out := make([]models.Item, 0, len(view))
	for _, id := range ranked {
		if it, ok := byID[id]; ok {
			out = append(out, it)
			delete(byID, id)
		}
	}
	for _, it := range view {
		if _, left := byID[it.ID()]; left {
			out = append(out, it)
		}
	}
	return out
}
