package analyzer

import "google.golang.org/genai"

// transactionSchema describes one extracted statement line.
func transactionSchema(categoryHint string) *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"date":        {Type: genai.TypeString},
			"description": {Type: genai.TypeString},
			"amount":      {Type: genai.TypeNumber},
			"category":    {Type: genai.TypeString, Description: categoryHint},
		},
		Required: []string{"date", "description", "amount"},
	}
}

// responseSchema is the strict output shape for the primary analysis call.
// Every field is mandatory except realityCheck; investmentInsights is not
// declared here at all because the augmenter fills it in a separate call.
var responseSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"markdownReport": {
			Type:        genai.TypeString,
			Description: "The full formatted report following the strict Markdown template provided in the prompt.",
		},
		"inflow": {
			Type:        genai.TypeNumber,
			Description: "Total numeric value of all credits/inflows in MWK.",
		},
		"outflow": {
			Type:        genai.TypeNumber,
			Description: "Total numeric value of all debits/outflows in MWK.",
		},
		"categories": {
			Type:        genai.TypeArray,
			Description: "List of spending categories for visualization.",
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"name":  {Type: genai.TypeString},
					"value": {Type: genai.TypeNumber, Description: "Amount in MWK"},
				},
				Required: []string{"name", "value"},
			},
		},
		"topInflows": {
			Type:        genai.TypeArray,
			Description: "Top 5 largest credit transactions.",
			Items:       transactionSchema("Guess source: Salary, Business, etc."),
		},
		"topOutflows": {
			Type:        genai.TypeArray,
			Description: "Top 5 largest debit transactions.",
			Items:       transactionSchema(""),
		},
		"redFlags": {
			Type:        genai.TypeArray,
			Description: "List of strings describing potential issues or observations (e.g. 'Huge Amazon spending').",
			Items:       &genai.Schema{Type: genai.TypeString},
		},
		"financialWisdom": {
			Type:        genai.TypeArray,
			Description: "3 structured wisdom items from the specific books.",
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"book":   {Type: genai.TypeString},
					"quote":  {Type: genai.TypeString},
					"tactic": {Type: genai.TypeString, Description: "Personalized advice based on statement."},
				},
				Required: []string{"book", "quote", "tactic"},
			},
		},
		"financialScore": {
			Type:        genai.TypeInteger,
			Description: "A gamified score from 0 to 100 based on cashflow, savings, and spending habits.",
		},
		"financialRank": {
			Type:        genai.TypeString,
			Description: "A creative rank title based on the score (e.g., 'Rat Race Runner', 'Wealth Apprentice', 'Cashflow Master').",
		},
		"scoreFeedback": {
			Type:        genai.TypeString,
			Description: "A 1-sentence explanation of why they got this score, citing specific habits.",
		},
		"realityCheck": {
			Type:        genai.TypeObject,
			Description: "Optional: the largest avoidable spend expressed as everyday goods, plus days of runway at the current burn rate.",
			Properties: map[string]*genai.Schema{
				"wasteCategory":   {Type: genai.TypeString},
				"wasteAmount":     {Type: genai.TypeNumber},
				"opportunityCost": {Type: genai.TypeString, Description: "e.g. '2 Bags of Cement'"},
				"itemIcon": {
					Type: genai.TypeString,
					Enum: []string{"CEMENT", "FERTILIZER", "PETROL", "BREAD", "SCHOOL_SHOES"},
				},
				"runwayDays":    {Type: genai.TypeInteger, Description: "Days the money lasts at current burn rate; 999 means no foreseeable shortfall."},
				"runwayMessage": {Type: genai.TypeString},
			},
			Required: []string{"wasteCategory", "wasteAmount", "opportunityCost", "itemIcon", "runwayDays", "runwayMessage"},
		},
	},
	Required: []string{
		"markdownReport", "inflow", "outflow", "categories", "topInflows",
		"topOutflows", "redFlags", "financialWisdom", "financialScore",
		"financialRank", "scoreFeedback",
	},
}
