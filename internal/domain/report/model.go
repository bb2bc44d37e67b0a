// Package report stores radiology exam reports through their authoring
// lifecycle: draft, completed, signed, amended.
package report

import (
	"encoding/json"
	"time"

	"github.com/serenvale/radcore/internal/platform/errs"
)

const (
	StatusDraft     = "draft"
	StatusCompleted = "completed"
	StatusSigned    = "signed"
	StatusAmended   = "amended"
)

// The nominal flow is draft -> completed -> signed with amendment branches,
// but the store does not gate transitions: an owner may revert a status
// manually and the store records it without judging clinical correctness.
// Only the per-status preconditions in ApplyStatus apply.
var knownStatuses = map[string]bool{
	StatusDraft:     true,
	StatusCompleted: true,
	StatusSigned:    true,
	StatusAmended:   true,
}

// Metadata carries the exam context recorded alongside a report. Known keys
// are typed; anything else the modality sends rides in Extra.
type Metadata struct {
	Facility   string            `json:"facility,omitempty"`
	Department string            `json:"department,omitempty"`
	Technique  string            `json:"technique,omitempty"`
	Contrast   string            `json:"contrast,omitempty"`
	Extra      map[string]string `json:"extra,omitempty"`
}

func (m Metadata) IsZero() bool {
	return m.Facility == "" && m.Department == "" && m.Technique == "" &&
		m.Contrast == "" && len(m.Extra) == 0
}

type Report struct {
	ID          string `db:"id" json:"id"`
	PatientID   string `db:"patient_id" json:"patientId"`
	PatientName string `db:"patient_name" json:"patientName"`
	PatientAge  string `db:"patient_age" json:"patientAge,omitempty"`
	PatientDOB  string `db:"patient_dob" json:"patientDob,omitempty"`

	ExamType         string `db:"exam_type" json:"examType"`
	ExamTypeDisplay  string `db:"exam_type_display" json:"examTypeDisplay"`
	ExamDate         string `db:"exam_date" json:"examDate"`
	AccessionNumber  string `db:"accession_number" json:"accessionNumber,omitempty"`
	StudyInstanceUID string `db:"study_instance_uid" json:"studyInstanceUid,omitempty"`

	ReferringDoctor    string `db:"referring_doctor" json:"referringDoctor,omitempty"`
	ClinicalIndication string `db:"clinical_indication" json:"clinicalIndication,omitempty"`

	DictationText   string `db:"dictation_text" json:"dictationText,omitempty"`
	ReportContent   string `db:"report_content" json:"reportContent"`
	Findings        string `db:"findings" json:"findings,omitempty"`
	Conclusion      string `db:"conclusion" json:"conclusion,omitempty"`
	Recommendations string `db:"recommendations" json:"recommendations,omitempty"`

	Status      string     `db:"status" json:"status"`
	CompletedAt *time.Time `db:"completed_at" json:"completedAt,omitempty"`
	SignedAt    *time.Time `db:"signed_at" json:"signedAt,omitempty"`
	SignedBy    string     `db:"signed_by" json:"signedBy,omitempty"`

	ModelUsed           string   `db:"model_used" json:"modelUsed,omitempty"`
	ModalityAgent       string   `db:"modality_agent" json:"modalityAgent,omitempty"`
	TerminologyRefsUsed []string `db:"terminology_refs_used" json:"terminologyRefsUsed,omitempty"`

	Metadata Metadata `db:"metadata" json:"metadata,omitempty"`

	OwnerID   string    `db:"owner_id" json:"ownerId"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

func (r *Report) Validate() error {
	if r.PatientID == "" {
		return errs.Validation("patientId", "required")
	}
	if r.PatientName == "" {
		return errs.Validation("patientName", "required")
	}
	if r.ExamType == "" {
		return errs.Validation("examType", "required")
	}
	if r.ExamTypeDisplay == "" {
		return errs.Validation("examTypeDisplay", "required")
	}
	if r.ExamDate == "" {
		return errs.Validation("examDate", "required")
	}
	if r.ReportContent == "" {
		return errs.Validation("reportContent", "required")
	}
	if r.Status != "" && !knownStatus(r.Status) {
		return errs.Validation("status", "unknown status "+r.Status)
	}
	return nil
}

func knownStatus(s string) bool {
	return knownStatuses[s]
}

// ApplyStatus moves r to the target status, stamping the lifecycle
// timestamps. It is pure over r and now; persistence and locking live in the
// repository.
func ApplyStatus(r *Report, status, by string, now time.Time) error {
	if !knownStatus(status) {
		return errs.Validation("status", "unknown status "+status)
	}
	switch status {
	case StatusCompleted:
		if r.ReportContent == "" {
			return &errs.TransitionError{From: r.Status, To: status, Reason: "reportContent is empty"}
		}
		t := now
		r.CompletedAt = &t
	case StatusSigned:
		if by == "" {
			return &errs.TransitionError{From: r.Status, To: status, Reason: "signedBy is required"}
		}
		t := now
		r.SignedAt = &t
		r.SignedBy = by
	}
	r.Status = status
	r.UpdatedAt = now
	return nil
}

// metadataJSON round-trips Metadata through jsonb columns.
func metadataJSON(m Metadata) ([]byte, error) {
	if m.IsZero() {
		return nil, nil
	}
	return json.Marshal(m)
}
