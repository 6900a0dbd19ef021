package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Master statuses.
const (
	MasterPending  = "pending"
	MasterActive   = "active"
	MasterInactive = "inactive"
	MasterBlocked  = "blocked"
)

type DaySchedule struct {
	Available bool `json:"available"`
	StartHour int  `json:"start_hour"`
	EndHour   int  `json:"end_hour"`
}

type ServiceZone struct {
	Name     string  `json:"name"`
	Lat      float64 `json:"latitude"`
	Lng      float64 `json:"longitude"`
	RadiusKm float64 `json:"radius_km"`
}

type Master struct {
	ID                string                 `json:"id"`
	FullName          string                 `json:"full_name"`
	Phone             string                 `json:"phone"`
	Email             string                 `json:"email,omitempty"`
	City              string                 `json:"city"`
	Specializations   []string               `json:"specializations"`
	ExperienceYears   float64                `json:"experience_years"`
	PreferredChannel  string                 `json:"preferred_channel"`
	Status            string                 `json:"status"`
	Schedule          map[string]DaySchedule `json:"schedule"`
	ServiceZones      []ServiceZone          `json:"service_zones"`
	Tools             []string               `json:"tools"`
	Rating            float64                `json:"rating"`
	TotalJobs         int                    `json:"total_jobs"`
	CompletedJobs     int                    `json:"completed_jobs"`
	TerminalType      string                 `json:"terminal_type,omitempty"`
	TerminalActivated *time.Time             `json:"terminal_activated,omitempty"`
	CreatedAt         time.Time              `json:"created_at"`
}

func (m Master) HasSpecialization(category string) bool {
	for _, s := range m.Specializations {
		if s == category {
			return true
		}
	}
	return false
}

// ScheduleValid reports whether at least one working day is marked available.
func (m Master) ScheduleValid() bool {
	for _, day := range m.Schedule {
		if day.Available {
			return true
		}
	}
	return false
}

type CostBreakdown struct {
	LaborCost          decimal.Decimal `json:"labor_cost"`
	MaterialsCost      decimal.Decimal `json:"materials_cost"`
	UrgencyMultiplier  decimal.Decimal `json:"urgency_multiplier"`
	Subtotal           decimal.Decimal `json:"subtotal"`
	TotalCost          decimal.Decimal `json:"total_cost"`
	GatewayFee         decimal.Decimal `json:"gateway_fee"`
	PlatformCommission decimal.Decimal `json:"platform_commission"`
	MasterEarnings     decimal.Decimal `json:"master_earnings"`
}

type Material struct {
	Name     string          `json:"name"`
	Quantity int             `json:"quantity"`
	Unit     string          `json:"unit"`
	CostRub  decimal.Decimal `json:"cost_rub"`
}

type Quote struct {
	ID             string        `json:"quote_id"`
	Category       string        `json:"problem_category"`
	Description    string        `json:"problem_description"`
	SolutionName   string        `json:"solution_name"`
	EstimatedHours float64       `json:"estimated_duration_hours"`
	Complexity     string        `json:"complexity"`
	Cost           CostBreakdown `json:"cost_breakdown"`
	Urgency        string        `json:"urgency"`
	SafetyNotes    []string      `json:"safety_notes"`
	ValidUntil     time.Time     `json:"valid_until"`
}

type StatusChange struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Note      string    `json:"note,omitempty"`
}

type GeoPoint struct {
	Lat float64 `json:"latitude"`
	Lng float64 `json:"longitude"`
}

// Message is one turn of the client/AI dialogue as snapshotted onto a job.
type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	MediaURLs []string  `json:"media_urls,omitempty"`
}

// WorkInstructions is the master-facing projection of a knowledge-base
// solution merged with client specifics.
type WorkInstructions struct {
	JobTitle           string     `json:"job_title"`
	Category           string     `json:"category"`
	SkillLevelRequired string     `json:"skill_level_required"`
	EstimatedDuration  float64    `json:"estimated_duration"`
	SafetyFirst        []string   `json:"safety_first"`
	RequiredTools      []string   `json:"required_tools"`
	MaterialsToBring   []Material `json:"materials_to_bring"`
	StepByStep         []string   `json:"step_by_step"`
	MistakesToAvoid    []string   `json:"common_mistakes_to_avoid"`
	Troubleshooting    []string   `json:"troubleshooting"`
	ClientNotes        string     `json:"client_notes,omitempty"`
	Urgency            string     `json:"urgency"`
}

type Job struct {
	ID                     string            `json:"id"`
	ClientID               string            `json:"client_id"`
	ClientName             string            `json:"client_name,omitempty"`
	ClientPhone            string            `json:"client_phone,omitempty"`
	Category               string            `json:"category"`
	Description            string            `json:"problem_description"`
	Location               string            `json:"location"`
	ClientLocation         *GeoPoint         `json:"client_location,omitempty"`
	ScheduledAt            *time.Time        `json:"scheduled_at,omitempty"`
	MediaFiles             []string          `json:"media_files,omitempty"`
	Urgency                string            `json:"urgency"`
	ClientCost             decimal.Decimal   `json:"client_cost"`
	MasterEarnings         decimal.Decimal   `json:"master_earnings"`
	PlatformCommission     decimal.Decimal   `json:"platform_commission"`
	EstimatedHours         float64           `json:"estimated_hours"`
	Complexity             string            `json:"complexity"`
	Instructions           *WorkInstructions `json:"instructions,omitempty"`
	RequiredMaterials      []Material        `json:"required_materials,omitempty"`
	ConversationHistory    []Message         `json:"conversation_history,omitempty"`
	Channel                string            `json:"channel"`
	Status                 string            `json:"status"`
	StatusHistory          []StatusChange    `json:"status_history"`
	MasterID               string            `json:"master_id,omitempty"`
	MasterAssignmentStatus string            `json:"master_assignment_status,omitempty"`
	RejectionReason        string            `json:"rejection_reason,omitempty"`
	MasterLocation         *GeoPoint         `json:"master_location,omitempty"`
	CreatedAt              time.Time         `json:"created_at"`
	AssignedAt             *time.Time        `json:"assigned_at,omitempty"`
	AcceptedAt             *time.Time        `json:"accepted_at,omitempty"`
	InTransitAt            *time.Time        `json:"in_transit_at,omitempty"`
	StartedAt              *time.Time        `json:"started_at,omitempty"`
	CompletedAt            *time.Time        `json:"completed_at,omitempty"`
	PaidAt                 *time.Time        `json:"paid_at,omitempty"`
	CancelledAt            *time.Time        `json:"cancelled_at,omitempty"`
}

// Transaction statuses.
const (
	TxPending  = "pending"
	TxSuccess  = "success"
	TxFailed   = "failed"
	TxRefunded = "refunded"
)

type Transaction struct {
	ID            string          `json:"id"`
	JobID         string          `json:"job_id"`
	MasterID      string          `json:"master_id"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod string          `json:"payment_method"`
	Status        string          `json:"status"`
	PaymentURL    string          `json:"payment_url,omitempty"`
	QRCodeURL     string          `json:"qr_code_url,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	ConfirmedAt   *time.Time      `json:"confirmed_at,omitempty"`
}
