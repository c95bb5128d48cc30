package models

const (
	ContextSeparator = "\n\n"
	QueryPrefix      = "Identify technical errors related to: "

	ReportTitle = "Banking Document Analysis Report"
	ReportFont  = "Helvetica"

	NoErrorsLine = "No errors detected."

	DefaultQuery = "Analyze document for technical errors related to key banking terms."
)

var (
	DetectPromptTemplate = `Analyze the following document chunks for technical errors related to these banking terms: %s.
Identify inaccuracies, missing details, inconsistencies, or ambiguous definitions.
Return a JSON list of errors, where each error is an object with:
- term: The banking term involved (string)
- error: Description of the error (string)
- location: Approximate location, e.g., page number or section (string)
Example: [{ "term": "KYC", "error": "Missing verification process", "location": "Section 3" }]
If no errors are found, return an empty list: []
Context: %s
Output ONLY valid JSON, enclosed in square brackets.`

	ReportPromptTemplate = `Based on the following errors in a banking document, generate a concise fixing report in markdown:
Errors: %s
Provide:
- Summary of errors
- Recommended fixes for each error
- Conclusion emphasizing compliance and accuracy
Keep the report under 500 words. If no errors, provide a brief report stating the document is compliant.`
)

// DefaultTerms is the fixed set of banking terms the analysis targets when
// the config file does not override it.
var DefaultTerms = []string{"KYC", "AML", "Fraud Detection", "Transaction Monitoring", "Compliance"}
