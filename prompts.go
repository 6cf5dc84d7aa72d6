package scixtract

import "fmt"

// Prompt text for the per-page passes. Page text is truncated before being
// embedded so a single bad page cannot blow the model's context window.

const (
	fixPromptTextLimit      = 6000
	classifyPromptTextLimit = 2000
	keywordPromptTextLimit  = 4000
)

const fixSystemPrompt = `You are a text processing expert. Fix spacing, formatting, and readability issues in academic text extracted from PDFs.`

func fixPrompt(text string) string {
	return fmt.Sprintf(`Fix spacing and formatting issues in this academic text:

RULES:
1. Add spaces between words incorrectly joined together
2. Fix broken words across lines (remove hyphens, join parts)
3. Preserve chemical formulas (NOx, NH3, etc.) exactly
4. Preserve citations and references exactly
5. Fix punctuation spacing
6. Maintain paragraph structure
7. Do NOT change technical terms or add new content

Text to fix:
%s

Return only the corrected text with no explanations.`, truncateRunes(text, fixPromptTextLimit))
}

const classifySystemPrompt = `You are an expert at analyzing academic paper structure. Classify the content type of each page.`

func classifyPrompt(text string, pageNum, totalPages int, title string) string {
	paper := ""
	if title != "" {
		paper = fmt.Sprintf("\nThe paper is titled %q.\n", title)
	}
	return fmt.Sprintf(`Classify this text from page %d of %d pages.%s

Text:
%s

Classify as ONE of these types:
- abstract: Abstract or summary section
- introduction: Introduction or background
- methods: Methodology, experimental procedures, materials
- results: Results, data, findings, analysis
- discussion: Discussion, interpretation, comparison
- conclusion: Conclusions, summary, future work
- references: Reference list, bibliography
- other: Content that does not fit the categories above

Return only the classification word, nothing else.`, pageNum, totalPages, paper, truncateRunes(text, classifyPromptTextLimit))
}

const keywordSystemPrompt = `You are an expert academic researcher specializing in analyzing scientific papers. Your task is to extract keywords and key concepts from academic text with high precision.`

func keywordPrompt(text string) string {
	return fmt.Sprintf(`Analyze this academic text and extract:

1. TECHNICAL KEYWORDS: Specific technical terms, methods, materials, equipment
2. RESEARCH CONCEPTS: Broader research concepts and themes
3. CHEMICAL COMPOUNDS: All chemical formulas and compound names
4. METHODOLOGIES: Research methods and analytical techniques
5. EQUIPMENT: Instruments and analytical equipment mentioned

Text to analyze:
%s

Return your analysis in this exact JSON format:
{
    "technical_keywords": ["keyword1", "keyword2"],
    "research_concepts": ["concept1", "concept2"],
    "chemical_compounds": ["compound1", "compound2"],
    "methodologies": ["method1", "method2"],
    "equipment": ["instrument1", "instrument2"]
}

Be precise and extract only the most important terms.`, truncateRunes(text, keywordPromptTextLimit))
}

const summarySystemPrompt = `You are an expert academic researcher. Create comprehensive summaries of scientific papers.`

func summaryPrompt(title, authors, keywords, sample string) string {
	return fmt.Sprintf(`Create a comprehensive summary of this research paper:

PAPER METADATA:
- Title: %s
- Authors: %s
- Keywords: %s

CONTENT SAMPLE:
%s

Create a structured summary with:

## Research Overview
[Brief overview of the research topic and objectives]

## Methodology
[Key methods and approaches used]

## Main Findings
[Primary results and discoveries]

## Significance
[Research significance and implications]

Keep the summary concise but comprehensive (300-500 words).`, title, authors, keywords, truncateRunes(sample, 3000))
}
