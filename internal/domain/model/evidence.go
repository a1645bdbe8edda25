package model

import "time"

// Bundle is everything known about one application that a category scorer
// may consider.
type Bundle struct {
	Application ApplicationSummary `json:"application"`
	Candidate   CandidateSummary   `json:"candidate"`
	Job         JobSummary         `json:"job"`
	Interviews  []Interview        `json:"interviews"`
	Assessments []Assessment       `json:"assessments"`
}

// ApplicationSummary is the application metadata shown to the scorer.
type ApplicationSummary struct {
	ID          string    `json:"id"`
	Status      string    `json:"status"`
	CoverLetter string    `json:"cover_letter,omitempty"`
	AppliedAt   time.Time `json:"applied_at"`
}

// CandidateSummary is the candidate profile. Name is kept out of bias prompts.
type CandidateSummary struct {
	ID              string   `json:"id"`
	Name            string   `json:"name,omitempty"`
	Summary         string   `json:"summary,omitempty"`
	Skills          []string `json:"skills,omitempty"`
	ExperienceYears float64  `json:"experience_years,omitempty"`
	Education       string   `json:"education,omitempty"`
}

// JobSummary describes the role being applied for.
type JobSummary struct {
	ID              string   `json:"id"`
	CompanyID       string   `json:"company_id"`
	Title           string   `json:"title"`
	Description     string   `json:"description,omitempty"`
	Requirements    []string `json:"requirements,omitempty"`
	ExperienceLevel string   `json:"experience_level,omitempty"`
}

// Interview is one interview session with its transcribed responses.
type Interview struct {
	ID        string              `json:"id"`
	Type      string              `json:"type"`
	Status    string              `json:"status"`
	Responses []InterviewResponse `json:"responses"`
}

// InterviewResponse is a candidate's answer to one question.
type InterviewResponse struct {
	Question        string  `json:"question"`
	Answer          string  `json:"answer"`
	DurationSeconds float64 `json:"duration_seconds,omitempty"`
}

// Assessment is a submitted assessment with its automatic grade.
type Assessment struct {
	ID         string   `json:"id"`
	Type       string   `json:"type"`
	Title      string   `json:"title,omitempty"`
	Submission string   `json:"submission,omitempty"`
	AutoScore  *float64 `json:"auto_score,omitempty"`
	MaxScore   float64  `json:"max_score,omitempty"`
}
