package utils

import (
	"bondroom/config"
	"bondroom/models"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// RawQuestion is one unvalidated candidate from the generation source.
// Options and the answer index are loosely typed because the source does not
// always respect the schema; the normalizer coerces or rejects them.
type RawQuestion struct {
	Question           string      `json:"question"`
	Options            interface{} `json:"options"`
	CorrectOptionIndex interface{} `json:"correct_option_index"`
	ModuleTitle        string      `json:"module_title"`
}

// QuestionSource produces raw quiz question candidates for a set of modules.
type QuestionSource interface {
	Generate(modules []models.TrainingModule, count int) ([]RawQuestion, error)
}

// OpenAIQuestionSource generates questions through the OpenAI Responses API.
type OpenAIQuestionSource struct {
	client *resty.Client
}

// NewOpenAIQuestionSource returns a source with the standard request timeout.
func NewOpenAIQuestionSource() *OpenAIQuestionSource {
	return &OpenAIQuestionSource{
		client: resty.New().SetTimeout(25 * time.Second),
	}
}

type moduleSummary struct {
	ID          uint     `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Outline     []string `json:"outline"`
}

func buildModuleSummaries(modules []models.TrainingModule) []moduleSummary {
	summaries := make([]moduleSummary, 0, len(modules))
	for i := range modules {
		module := modules[i]
		outline := module.Outline()
		if outline == nil {
			outline = []string{}
		}
		summaries = append(summaries, moduleSummary{
			ID:          module.ID,
			Title:       module.Title,
			Description: strings.TrimSpace(module.Description),
			Outline:     outline,
		})
	}
	return summaries
}

// Generate asks the model for a strict-JSON question set scoped to the given
// modules. Transport and parse failures surface as plain errors; the caller
// treats any failure as a failed round.
func (s *OpenAIQuestionSource) Generate(modules []models.TrainingModule, count int) ([]RawQuestion, error) {
	apiKey := config.AppConfig.OpenAIApiKey
	if apiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is not configured")
	}

	summaries := buildModuleSummaries(modules)
	if len(summaries) == 0 {
		return nil, fmt.Errorf("no training modules available to generate quiz")
	}

	titles := make([]string, len(summaries))
	for i, summary := range summaries {
		titles[i] = summary.Title
	}

	promptPayload := map[string]interface{}{
		"total_questions": count,
		"rules": map[string]interface{}{
			"question_type":                   "multiple_choice",
			"options_per_question":            4,
			"exact_question_count":            count,
			"difficulty_mix":                  "easy_medium_hard",
			"language":                        "English",
			"avoid_trick_questions":           true,
			"module_title_must_match_one_of":  titles,
			"cover_all_modules_when_possible": count >= len(summaries),
		},
		"modules": summaries,
		"output_schema": map[string]interface{}{
			"questions": []map[string]interface{}{
				{
					"question":             "string",
					"options":              []string{"string", "string", "string", "string"},
					"correct_option_index": 0,
					"module_title":         "string",
				},
			},
		},
	}

	promptJSON, err := json.Marshal(promptPayload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode prompt payload: %v", err)
	}

	body := map[string]interface{}{
		"model": config.AppConfig.OpenAIQuizModel,
		"text":  map[string]interface{}{"format": map[string]string{"type": "json_object"}},
		"input": []map[string]string{
			{
				"role": "system",
				"content": "You create mentor training quizzes. Return strict JSON only. " +
					"Create practical, scenario-based MCQs from provided modules. " +
					"Return exactly the requested number of questions with exactly four options each. " +
					"Use module_title exactly from provided module titles.",
			},
			{
				"role":    "user",
				"content": string(promptJSON),
			},
		},
	}

	resp, err := s.client.R().
		SetHeader("Authorization", "Bearer "+apiKey).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		Post(config.AppConfig.OpenAIApiURL)
	if err != nil {
		return nil, fmt.Errorf("generation request failed: %v", err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("generation API error: %s", resp.String())
	}

	var payload struct {
		OutputText string `json:"output_text"`
		Output     []struct {
			Content []struct {
				Type string `json:"type"`
				Text string `json:"text"`
			} `json:"content"`
		} `json:"output"`
	}
	if err := json.Unmarshal(resp.Body(), &payload); err != nil {
		return nil, fmt.Errorf("failed to parse generation response: %v", err)
	}

	outputText := payload.OutputText
	if outputText == "" {
		var parts []string
		for _, item := range payload.Output {
			for _, content := range item.Content {
				if content.Type == "output_text" {
					parts = append(parts, content.Text)
				}
			}
		}
		outputText = strings.TrimSpace(strings.Join(parts, ""))
	}
	if outputText == "" {
		return nil, fmt.Errorf("generation response contained no output text")
	}

	var parsed struct {
		Questions []RawQuestion `json:"questions"`
	}
	if err := json.Unmarshal([]byte(outputText), &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse generated questions: %v", err)
	}
	return parsed.Questions, nil
}
