package analysis

import "fmt"

// Prompt renders the category-specific analysis instructions sent alongside
// the file bytes. Pure string construction; the server concatenates this
// with the extracted file content before running inference.
func Prompt(c Category, fileName string) string {
	base := fmt.Sprintf("Analyze this %s file %q and provide comprehensive insights including:", c, fileName)

	switch c {
	case CategoryImage:
		return base + `
- Visual content description and objects detected
- Image quality and technical specifications
- Potential use cases and applications
- Color analysis and composition
- Text extraction if any OCR content is found
- Metadata information if available`

	case CategoryDocument:
		return base + `
- Document structure and formatting analysis
- Content summary and key topics
- Sentiment analysis of the text
- Named entity recognition (people, organizations, locations, dates)
- Language and readability analysis
- Document classification and purpose`

	case CategorySpreadsheet:
		return base + `
- Data structure and column analysis
- Statistical summary of numerical data
- Data quality assessment (missing values, duplicates)
- Pattern recognition and trends
- Data types and format validation
- Potential data visualization suggestions`

	case CategoryText:
		return base + `
- Text content analysis and summary
- Sentiment and tone analysis
- Key themes and topics extraction
- Named entity recognition
- Language detection and complexity analysis
- Word frequency and linguistic patterns`

	default:
		return base + `
- File format and structure analysis
- Content extraction and summary
- Data patterns and insights
- Quality assessment
- Potential applications and use cases`
	}
}
