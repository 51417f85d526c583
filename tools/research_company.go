package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hartwell/jobpilot/llm"
)

// CompanyResearcher asks the model for a structured research brief on a
// company, shaped for preparing a job application.
type CompanyResearcher struct {
	client llm.Client
	model  string
}

type companyResearchArgs struct {
	CompanyName string `json:"company_name"`
}

func NewCompanyResearcher(client llm.Client, model string) *CompanyResearcher {
	return &CompanyResearcher{client: client, model: model}
}

func (t *CompanyResearcher) Name() string {
	return "research_company"
}

func (t *CompanyResearcher) Description() string {
	return "Research a company to gather relevant information for a job application"
}

func (t *CompanyResearcher) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"company_name": {
				"type": "string",
				"description": "Name of the company to research"
			}
		},
		"required": ["company_name"]
	}`)
}

const researchSystemPrompt = `You research companies for job applicants.
Produce a report with these seven numbered sections:

1. Company Overview: products and services, industry and market position,
company size and locations, business model and target customers.
2. Recent Developments: news, product launches, funding, acquisitions,
partnerships and leadership changes from the last 6-12 months.
3. Company Culture & Values: mission and core values, employee experience,
benefits and workplace flexibility.
4. Leadership & Key People: executives, founders and their backgrounds,
and department heads relevant to the applicant.
5. Financial & Growth Information: recent performance if public, growth
trajectory, market challenges and the competitive landscape.
6. Job Application Insights: what they look for in candidates, interview
process notes, questions to ask, and how to align an application with
their values and needs.
7. Red Flags or Considerations: controversies, employee review trends and
industry challenges affecting the company.

If you are not confident about a detail, say so rather than inventing one.`

func (t *CompanyResearcher) Execute(ctx context.Context, args json.RawMessage) (string, error) {
	var params companyResearchArgs
	if err := json.Unmarshal(args, &params); err != nil {
		return "", fmt.Errorf("invalid arguments: %w", err)
	}

	resp, err := t.client.Chat(ctx, t.model, researchSystemPrompt,
		fmt.Sprintf("Research the company %q.", params.CompanyName))
	if err != nil {
		return "", fmt.Errorf("research company: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "**COMPANY RESEARCH REPORT: %s**\n\n", params.CompanyName)
	b.WriteString(resp.Content)
	b.WriteString("\n\n**NEXT STEPS:**\n")
	b.WriteString("1. Verify details against the company's official website and LinkedIn page\n")
	b.WriteString("2. Look for mutual connections or employees you could reach out to\n")
	b.WriteString("3. Tailor your application materials based on the insights gathered")
	return b.String(), nil
}
