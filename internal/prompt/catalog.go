// Package prompt holds the parametrized templates for every LLM-backed
// pipeline stage. The pipeline treats the catalog as an opaque
// (stage, params) -> text function; wording lives here only.
package prompt

import (
	"fmt"
	"strings"
	"text/template"
)

// Stage names. These are the fixed strings the pipeline renders by.
const (
	TableSelection   = "table_selection"
	SQLGeneration    = "sql_generation"
	QueryExplanation = "query_explanation"
	ResultFormatting = "result_formatting"
	ErrorAnalysis    = "error_analysis"
)

// TableSelectionParams feeds the table_selection template.
type TableSelectionParams struct {
	Question string
	Schema   string
}

// SQLGenerationParams feeds the sql_generation template.
type SQLGenerationParams struct {
	Question string
	Schema   string
	Tables   string
	Dialect  string
	Context  string
}

// ExplanationParams feeds the query_explanation template.
type ExplanationParams struct {
	Question string
	SQLQuery string
	Schema   string
}

// FormattingParams feeds the result_formatting template.
type FormattingParams struct {
	Question    string
	SQLQuery    string
	RawResults  string
	ChatHistory string
}

// ErrorAnalysisParams feeds the error_analysis template.
type ErrorAnalysisParams struct {
	Question     string
	SQLQuery     string
	ErrorMessage string
	Schema       string
}

const tableSelectionTemplate = `You are a database expert analyzing which tables are needed to answer a user's question.

Database Schema:
{{.Schema}}

User Question: {{.Question}}

Identify the most relevant tables needed to answer the question. Consider
table names, column contents, and foreign-key relationships needed for joins.

Reply with ONLY a JSON array of table names, e.g. ["orders", "customers"].
If no tables seem relevant, reply with an empty array: []`

const sqlGenerationTemplate = `You are an expert SQL query generator. Create a precise SQL SELECT query based on the user's question.

Target SQL dialect: {{.Dialect}}

Database Schema:
{{.Schema}}

Relevant Tables: {{.Tables}}

Previous Conversation Context (if any):
{{.Context}}

User Question: {{.Question}}

IMPORTANT RULES:
1. Generate ONLY SELECT queries - no INSERT, UPDATE, DELETE, or ALTER statements
2. Use proper SQL syntax for the target dialect
3. Include appropriate JOINs if multiple tables are needed
4. Use meaningful table aliases for readability
5. Add WHERE, GROUP BY, ORDER BY, LIMIT clauses as needed
6. Ensure column names and table names exist in the schema
7. Return ONLY the SQL query without any explanation or markdown formatting

SQL Query:`

const queryExplanationTemplate = `Explain the following SQL query in clear, simple terms for someone who may not know SQL.

Original Question: {{.Question}}

SQL Query:
{{.SQLQuery}}

Database Schema Context:
{{.Schema}}

Explain what the query finds, which tables and columns it uses, any joins and
why they are needed, filters applied, and how it answers the original
question. Keep the explanation conversational and easy to understand.

Explanation:`

const resultFormattingTemplate = `Format the following query results in a clear, readable way for the user.

Original Question: {{.Question}}

SQL Query: {{.SQLQuery}}

Recent Conversation:
{{.ChatHistory}}

Raw Results:
{{.RawResults}}

Create a well-formatted response that summarizes what was found, presents the
data in an organized way, highlights key patterns if relevant, and mentions
the total number of results.

Formatted Results:`

const errorAnalysisTemplate = `Analyze the following SQL error and provide helpful guidance.

Original Question: {{.Question}}

Generated SQL Query:
{{.SQLQuery}}

Error Message:
{{.ErrorMessage}}

Database Schema:
{{.Schema}}

Explain what caused the error, the specific issues in the SQL query, and how
to fix it. Keep the explanation user-friendly and actionable.

Error Analysis:`

// Catalog maps stage names to parsed templates.
type Catalog struct {
	templates map[string]*template.Template
}

// NewCatalog parses the built-in templates. Parse failures are programmer
// errors and panic at startup.
func NewCatalog() *Catalog {
	sources := map[string]string{
		TableSelection:   tableSelectionTemplate,
		SQLGeneration:    sqlGenerationTemplate,
		QueryExplanation: queryExplanationTemplate,
		ResultFormatting: resultFormattingTemplate,
		ErrorAnalysis:    errorAnalysisTemplate,
	}
	templates := make(map[string]*template.Template, len(sources))
	for name, src := range sources {
		templates[name] = template.Must(template.New(name).Parse(src))
	}
	return &Catalog{templates: templates}
}

// Render fills the named stage template with data.
func (c *Catalog) Render(stage string, data any) (string, error) {
	tmpl, ok := c.templates[stage]
	if !ok {
		return "", fmt.Errorf("unknown prompt stage: %q", stage)
	}
	var b strings.Builder
	if err := tmpl.Execute(&b, data); err != nil {
		return "", fmt.Errorf("render %s prompt: %w", stage, err)
	}
	return b.String(), nil
}

// Stages lists the available stage names.
func (c *Catalog) Stages() []string {
	return []string{TableSelection, SQLGeneration, QueryExplanation, ResultFormatting, ErrorAnalysis}
}
