package model

import "time"

// Provenance tags who produced a score.
type Provenance string

// Provenance values. Only AI records take part in automated analysis.
const (
	ProvenanceAI    Provenance = "ai"
	ProvenanceHuman Provenance = "human"
)

// ScoreRecord is one evaluation of one application in one category.
type ScoreRecord struct {
	ID            string
	ApplicationID string
	Category      Category
	Score         float64 // [0,100]
	Confidence    float64 // [0,1]
	Reasoning     string
	Evidence      []string
	CreatedBy     Provenance
	CreatedAt     time.Time
}

// Grade is a letter band over an absolute score.
type Grade string

// Letter grades.
const (
	GradeA Grade = "A"
	GradeB Grade = "B"
	GradeC Grade = "C"
	GradeD Grade = "D"
	GradeF Grade = "F"
)

// Grades returns every grade from best to worst.
func Grades() []Grade { return []Grade{GradeA, GradeB, GradeC, GradeD, GradeF} }

// GradeFor bands score: A>=90, B>=80, C>=70, D>=60, else F.
func GradeFor(score float64) Grade {
	switch {
	case score >= 90:
		return GradeA
	case score >= 80:
		return GradeB
	case score >= 70:
		return GradeC
	case score >= 60:
		return GradeD
	default:
		return GradeF
	}
}

// OverallScore is the weighted aggregate of an application's category scores.
type OverallScore struct {
	Score      float64 `json:"score"`
	Confidence float64 `json:"confidence"`
	Grade      Grade   `json:"grade"`
}

// ByApplication groups records by application id, keeping input order inside each group.
func ByApplication(records []ScoreRecord) map[string][]ScoreRecord {
	out := make(map[string][]ScoreRecord)
	for _, r := range records {
		out[r.ApplicationID] = append(out[r.ApplicationID], r)
	}
	return out
}

// LatestByCategory keeps the newest record per category.
func LatestByCategory(records []ScoreRecord) map[Category]ScoreRecord {
	out := make(map[Category]ScoreRecord, len(records))
	for _, r := range records {
		prev, ok := out[r.Category]
		if !ok || r.CreatedAt.After(prev.CreatedAt) {
			out[r.Category] = r
		}
	}
	return out
}
