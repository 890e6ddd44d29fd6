package domain

import "time"

// Plan is the subscription tier of a user.
type Plan string

const (
	PlanFree Plan = "FREE"
	PlanPro  Plan = "PRO"
)

// PaymentMethod identifies how a PRO subscription is billed.
type PaymentMethod string

const (
	PaymentAirtel PaymentMethod = "AIRTEL"
	PaymentMpamba PaymentMethod = "MPAMBA"
	PaymentVisa   PaymentMethod = "VISA"
	PaymentPaypal PaymentMethod = "PAYPAL"
)

// SubscriptionStatus is the billing state of a subscription.
type SubscriptionStatus string

const (
	SubscriptionActive    SubscriptionStatus = "ACTIVE"
	SubscriptionCancelled SubscriptionStatus = "CANCELLED"
	SubscriptionPastDue   SubscriptionStatus = "PAST_DUE"
)

// Subscription is the billing record attached to a PRO user.
type Subscription struct {
	Method          PaymentMethod      `json:"method"`
	Status          SubscriptionStatus `json:"status"`
	NextBillingDate time.Time          `json:"nextBillingDate"`
}

// User is an account record. Records are never deleted; signing out only
// clears the session.
type User struct {
	ID           string        `json:"id"`
	Email        string        `json:"email"`
	Name         string        `json:"name"`
	Plan         Plan          `json:"plan"`
	Subscription *Subscription `json:"subscription,omitempty"`
}

// Transaction is a single statement line as extracted by the model.
// Immutable once produced.
type Transaction struct {
	Date        string  `json:"date" validate:"required"`
	Description string  `json:"description" validate:"required"`
	Amount      float64 `json:"amount" validate:"gte=0"`
	Category    string  `json:"category,omitempty"`
}

// CategoryAmount is one slice of the spending breakdown.
type CategoryAmount struct {
	Name  string  `json:"name" validate:"required"`
	Value float64 `json:"value" validate:"gte=0"`
}

// BookWisdom is one personal-finance book reference with a tailored tactic.
type BookWisdom struct {
	Book   string `json:"book" validate:"required"`
	Quote  string `json:"quote" validate:"required"`
	Tactic string `json:"tactic" validate:"required"`
}

// Source is one web citation backing the investment insights.
type Source struct {
	Title string `json:"title"`
	URI   string `json:"uri"`
}

// InvestmentInsight is the search-grounded market commentary appended after
// the primary analysis. It is always present on a completed result: the
// augmenter substitutes fixed fallback content instead of failing.
type InvestmentInsight struct {
	Advice  string   `json:"advice"`
	Sources []Source `json:"sources"`
}

// ItemIcon tags the everyday item used to express an opportunity cost.
type ItemIcon string

const (
	IconCement      ItemIcon = "CEMENT"
	IconFertilizer  ItemIcon = "FERTILIZER"
	IconPetrol      ItemIcon = "PETROL"
	IconBread       ItemIcon = "BREAD"
	IconSchoolShoes ItemIcon = "SCHOOL_SHOES"
)

// RunwayNoShortfall is the RunwayDays sentinel meaning the statement shows
// no foreseeable cash shortfall.
const RunwayNoShortfall = 999

// RealityCheck translates the largest avoidable spend into everyday goods
// and estimates how long the money lasts at the current burn rate.
type RealityCheck struct {
	WasteCategory   string   `json:"wasteCategory"`
	WasteAmount     float64  `json:"wasteAmount"`
	OpportunityCost string   `json:"opportunityCost"`
	ItemIcon        ItemIcon `json:"itemIcon"`
	RunwayDays      int      `json:"runwayDays"`
	RunwayMessage   string   `json:"runwayMessage"`
}

// AnalysisResult is the canonical output of one statement analysis.
// All fields except InvestmentInsights and RealityCheck come from the
// primary model call; InvestmentInsights is filled by the augmenter.
type AnalysisResult struct {
	MarkdownReport     string             `json:"markdownReport" validate:"required"`
	Inflow             float64            `json:"inflow" validate:"gte=0"`
	Outflow            float64            `json:"outflow" validate:"gte=0"`
	Categories         []CategoryAmount   `json:"categories" validate:"dive"`
	TopInflows         []Transaction      `json:"topInflows" validate:"dive"`
	TopOutflows        []Transaction      `json:"topOutflows" validate:"dive"`
	RedFlags           []string           `json:"redFlags"`
	FinancialWisdom    []BookWisdom       `json:"financialWisdom" validate:"len=3,dive"`
	FinancialScore     int                `json:"financialScore" validate:"gte=0,lte=100"`
	FinancialRank      string             `json:"financialRank" validate:"required"`
	ScoreFeedback      string             `json:"scoreFeedback" validate:"required"`
	InvestmentInsights *InvestmentInsight `json:"investmentInsights,omitempty"`
	RealityCheck       *RealityCheck      `json:"realityCheck,omitempty"`
}

// NetFlow is inflow minus outflow.
func (r *AnalysisResult) NetFlow() float64 {
	return r.Inflow - r.Outflow
}

// HistoryItem wraps one completed analysis for a user's history list.
// Created once per successful analysis, never mutated.
type HistoryItem struct {
	ID        string         `json:"id"`
	Timestamp time.Time      `json:"timestamp"`
	FileName  string         `json:"fileName"`
	Result    AnalysisResult `json:"result"`
}
