package domain

import (
	"context"
	"errors"
	"time"
)

// Error taxonomy (sentinels)
var (
	ErrInvalidArgument     = errors.New("invalid argument")
	ErrNotFound            = errors.New("not found")
	ErrConflict            = errors.New("conflict")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrUpstreamFailure     = errors.New("upstream failure")
	ErrMalformedAIResponse = errors.New("malformed ai response")
	ErrInternal            = errors.New("internal error")
)

// EligibilityStatus classifies an assessment outcome.
type EligibilityStatus string

const (
	StatusFullyEligible     EligibilityStatus = "Fully Eligible"
	StatusPartiallyEligible EligibilityStatus = "Partially Eligible"
	StatusNotEligible       EligibilityStatus = "Not Eligible"
)

// LanguageScore is an optional language test name/score pair on a profile.
type LanguageScore struct {
	Test  string `json:"test"`
	Score string `json:"score"`
}

// UserProfile is the read-only input to an assessment.
// Invariant: ProfessionalBackground, when present, is length-gated at the
// request-validation boundary, not here.
type UserProfile struct {
	FirstName              string         `json:"firstName"`
	LastName               string         `json:"lastName"`
	Country                string         `json:"country"`
	AgeRange               string         `json:"ageRange"`
	EducationLevel         string         `json:"educationLevel"`
	FieldOfStudy           string         `json:"fieldOfStudy"`
	JobTitle               string         `json:"jobTitle,omitempty"`
	ProfessionalBackground string         `json:"professionalBackground"`
	YearsOfExperience      int            `json:"yearsOfExperience"`
	LanguageScores         *LanguageScore `json:"languageScores,omitempty"`
	VisaIntent             string         `json:"visaIntent,omitempty"`
	FinancialSavings       string         `json:"financialSavings,omitempty"`
}

// VisaMatch is one scored visa pathway inside an assessment.
type VisaMatch struct {
	VisaID          string   `json:"visaId"`
	VisaName        string   `json:"visaName"`
	MatchScore      int      `json:"matchScore"`
	Reason          string   `json:"reason"`
	MissingCriteria []string `json:"missingCriteria"`
	OfficialLink    string   `json:"officialLink"`
}

// RoadmapStep is one stage of the suggested settlement plan.
type RoadmapStep struct {
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Duration     string   `json:"duration"`
	Requirements []string `json:"requirements"`
}

// MatchBreakdown holds the three parallel strengths/weaknesses/improvements lists.
type MatchBreakdown struct {
	Strengths         []string `json:"strengths"`
	Weaknesses        []string `json:"weaknesses"`
	ImprovementPoints []string `json:"improvementPoints"`
}

// AssessmentResult is the normalized output record of one assessment.
// Invariants: every list field is non-nil (possibly empty) and every string
// field is non-empty; immutable once created. TargetCountry/CountryName is a
// redundant pair retained for consumer compatibility.
type AssessmentResult struct {
	ID                 string            `json:"id"`
	Date               time.Time         `json:"date"`
	TargetCountry      string            `json:"targetCountry"`
	TargetVisaCategory string            `json:"targetVisaCategory"`
	CountryName        string            `json:"countryName"`
	OverallScore       int               `json:"overallScore"`
	Status             EligibilityStatus `json:"status"`
	EligibleVisas      []VisaMatch       `json:"eligibleVisas"`
	Roadmap            []RoadmapStep     `json:"roadmap"`
	AIAdvice           string            `json:"aiAdvice"`
	MatchBreakdown     MatchBreakdown    `json:"matchBreakdown"`
}

// User roles and auth providers.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"

	ProviderEmail  = "email"
	ProviderGoogle = "google"
)

// User is an account with an optional migration profile.
type User struct {
	ID           string       `json:"id"`
	Email        string       `json:"email"`
	PasswordHash string       `json:"-"`
	FullName     string       `json:"fullName"`
	Provider     string       `json:"provider"`
	Role         string       `json:"role"`
	IsVerified   bool         `json:"isVerified"`
	Avatar       string       `json:"avatar,omitempty"`
	Profile      *UserProfile `json:"profile,omitempty"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`
}

// VisaCategory is reference data describing one visa type of a country.
type VisaCategory struct {
	ID                  string   `json:"id"`
	Name                string   `json:"name"`
	Purpose             string   `json:"purpose"`
	Eligibility         []string `json:"eligibility"`
	Qualifications      string   `json:"qualifications"`
	Experience          string   `json:"experience"`
	Language            string   `json:"language"`
	Finance             string   `json:"finance"`
	ProcessingTime      string   `json:"processingTime"`
	SettlementPotential bool     `json:"settlementPotential"`
}

// Country is destination reference data managed by admins.
type Country struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Flag        string         `json:"flag"`
	Description string         `json:"description"`
	Economy     string         `json:"economy"`
	JobMarket   string         `json:"jobMarket"`
	Education   string         `json:"education"`
	PRBenefits  string         `json:"prBenefits"`
	Visas       []VisaCategory `json:"visas"`
	IsActive    bool           `json:"isActive"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

// ActivityType enumerates recorded user actions.
type ActivityType string

const (
	ActivityAssessmentGenerated ActivityType = "ASSESSMENT_GENERATED"
	ActivityCountryViewed       ActivityType = "COUNTRY_VIEWED"
	ActivityComparisonMade      ActivityType = "COMPARISON_MADE"
	ActivityContactRequest      ActivityType = "CONTACT_REQUEST"
)

// Activity is one user activity record.
type Activity struct {
	ID        string         `json:"id"`
	UserID    string         `json:"userId"`
	Type      ActivityType   `json:"type"`
	Details   map[string]any `json:"details"`
	CreatedAt time.Time      `json:"createdAt"`
}

// FeedbackStatus is the ticket lifecycle state.
type FeedbackStatus string

const (
	FeedbackPending FeedbackStatus = "pending"
	FeedbackReplied FeedbackStatus = "replied"
	FeedbackClosed  FeedbackStatus = "closed"
)

// FeedbackReply is one admin reply on a feedback ticket.
type FeedbackReply struct {
	AdminID   string    `json:"adminId"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

// Feedback is a user-submitted ticket with admin replies.
type Feedback struct {
	ID        string          `json:"id"`
	UserID    string          `json:"userId"`
	Message   string          `json:"message"`
	Category  string          `json:"category"`
	Status    FeedbackStatus  `json:"status"`
	Replies   []FeedbackReply `json:"replies"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// Repositories (ports)

type UserRepository interface {
	Create(ctx Context, u User) (string, error)
	GetByID(ctx Context, id string) (User, error)
	GetByEmail(ctx Context, email string) (User, error)
	UpdateProfile(ctx Context, id string, p UserProfile) error
	SetVerified(ctx Context, id string) error
	List(ctx Context, search string) ([]User, error)
}

type AssessmentRepository interface {
	Append(ctx Context, userID string, r AssessmentResult) error
	ListByUser(ctx Context, userID string) ([]AssessmentResult, error)
}

type CountryRepository interface {
	Upsert(ctx Context, c Country) error
	Update(ctx Context, c Country) error
	Deactivate(ctx Context, id string) error
	GetByID(ctx Context, id string) (Country, error)
	ListActive(ctx Context) ([]Country, error)
}

type ActivityRepository interface {
	Record(ctx Context, a Activity) (string, error)
	ListByUser(ctx Context, userID string) ([]Activity, error)
}

type FeedbackRepository interface {
	Create(ctx Context, f Feedback) (string, error)
	GetByID(ctx Context, id string) (Feedback, error)
	ListByUser(ctx Context, userID string) ([]Feedback, error)
	ListAll(ctx Context) ([]Feedback, error)
	AddReply(ctx Context, id string, reply FeedbackReply) error
	UpdateStatus(ctx Context, id string, status FeedbackStatus) error
}

// ModelClient (port)

type ModelClient interface {
	// GenerateJSON sends a prompt with a declared output schema and returns the
	// raw text of the model response. The text is expected, not guaranteed, to
	// be JSON; recovery and normalization happen downstream.
	GenerateJSON(ctx Context, systemPrompt, userPrompt string, maxTokens int) (string, error)
}

// CodeStore holds short-lived email verification codes.
type CodeStore interface {
	Put(ctx Context, email, code string, ttl time.Duration) error
	Get(ctx Context, email string) (string, error)
	Delete(ctx Context, email string) error
}

// CountryCache is a read-through cache for the active country list.
type CountryCache interface {
	GetList(ctx Context) ([]Country, bool)
	SetList(ctx Context, countries []Country, ttl time.Duration) error
	Invalidate(ctx Context) error
}

// EventPublisher mirrors activity records to a stream, fire-and-forget.
type EventPublisher interface {
	PublishActivity(ctx Context, a Activity) error
}

// Context is an alias to context.Context so the domain package stays free of
// direct adapter imports; adapters pass context.Context through.
type Context = context.Context
