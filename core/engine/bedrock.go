package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"doomsday-orchestrator/core/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockagentruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockagentruntime/types"
	"github.com/google/uuid"
)

// BedrockEngine invokes a Bedrock agent and parses its streamed
// completion into a verdict.
type BedrockEngine struct {
	client  *bedrockagentruntime.Client
	agentID string
	aliasID string
}

// NewBedrock creates an engine backed by the named Bedrock agent.
func NewBedrock(ctx context.Context, region, agentID, aliasID string) (*BedrockEngine, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, err
	}
	return &BedrockEngine{
		client:  bedrockagentruntime.NewFromConfig(cfg),
		agentID: agentID,
		aliasID: aliasID,
	}, nil
}

func (e *BedrockEngine) Analyze(ctx context.Context, survey models.Survey) (*models.Verdict, error) {
	out, err := e.client.InvokeAgent(ctx, &bedrockagentruntime.InvokeAgentInput{
		AgentId:      aws.String(e.agentID),
		AgentAliasId: aws.String(e.aliasID),
		SessionId:    aws.String(uuid.NewString()),
		InputText:    aws.String(buildPrompt(survey)),
	})
	if err != nil {
		return nil, fmt.Errorf("invoke agent: %w", err)
	}

	stream := out.GetStream()
	defer stream.Close()

	var completion strings.Builder
	for event := range stream.Events() {
		if chunk, ok := event.(*types.ResponseStreamMemberChunk); ok {
			completion.Write(chunk.Value.Bytes)
		}
	}
	if err := stream.Err(); err != nil {
		return nil, fmt.Errorf("agent stream: %w", err)
	}

	return ParseVerdict(completion.String())
}

// ParseVerdict extracts the JSON payload from raw agent output and
// validates its shape. Agents occasionally wrap the payload in
// markdown code fences despite being told not to.
func ParseVerdict(raw string) (*models.Verdict, error) {
	text := extractJSON(raw)
	var verdict models.Verdict
	if err := json.Unmarshal([]byte(text), &verdict); err != nil {
		return nil, fmt.Errorf("parse agent response: %w", err)
	}
	if err := verdict.Validate(); err != nil {
		return nil, fmt.Errorf("invalid verdict: %w", err)
	}
	return &verdict, nil
}

func extractJSON(raw string) string {
	text := strings.TrimSpace(raw)
	for _, fence := range []string{"```json", "```"} {
		start := strings.Index(text, fence)
		if start < 0 {
			continue
		}
		start += len(fence)
		end := strings.Index(text[start:], "```")
		if end < 0 {
			continue
		}
		return strings.TrimSpace(text[start : start+end])
	}
	return text
}

func buildPrompt(survey models.Survey) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Analyze this person's career longevity and transition options.\n\n")
	fmt.Fprintf(&b, "Name: %s\n", survey.Name)
	fmt.Fprintf(&b, "Current occupation: %s\n", survey.JobTitle)
	fmt.Fprintf(&b, "Strengths: %s\n", survey.Strengths)
	fmt.Fprintf(&b, "Hobbies: %s\n\n", survey.Hobbies)
	b.WriteString(`Respond with JSON in this exact shape:
{
  "dday": <years until the occupation becomes obsolete (integer)>,
  "skill_risks": [
    {
      "skill_name": "<skill>",
      "category": "<category>",
      "replacement_prob": <AI replacement probability 0-100>,
      "time_horizon": <years until replacement>,
      "justification": "<dystopian-toned justification>"
    }
  ],
  "career_cards": [
    {
      "card_index": <0, 1, or 2>,
`)
	fmt.Fprintf(&b, "      \"combo_formula\": \"[%s] + [strength] + [hobby] = [new occupation]\",\n", survey.JobTitle)
	b.WriteString(`      "reason": "<why this transition fits>",
      "roadmap": [
        { "step": "<step description>", "duration": "<duration>" }
      ]
    }
  ]
}

Produce 3-5 skill_risks and exactly 3 career_cards.
Ground the justifications in the Future of Jobs Report 2025 knowledge base
and current trends. Respond with JSON only, no other text.`)
	return b.String()
}
