package worklist

import (
	"time"

	"github.com/serenvale/radcore/internal/platform/errs"
)

// Entry maps to the pacs_worklist table: one scheduled or completed imaging
// exam pulled from the imaging source, normalized and cached between polls.
// Optional string fields use "" as absent; merge semantics rely on that.
type Entry struct {
	ID          string `db:"id" json:"id"`
	PatientID   string `db:"patient_id" json:"patient_id"`
	PatientName string `db:"patient_name" json:"patient_name"`
	PatientAge  string `db:"patient_age" json:"patient_age,omitempty"`
	PatientDOB  string `db:"patient_dob" json:"patient_dob,omitempty"`
	PatientSex  string `db:"patient_sex" json:"patient_sex,omitempty"`

	StudyInstanceUID string `db:"study_instance_uid" json:"study_instance_uid"`
	AccessionNumber  string `db:"accession_number" json:"accession_number,omitempty"`
	StudyDate        string `db:"study_date" json:"study_date,omitempty"`
	StudyTime        string `db:"study_time" json:"study_time,omitempty"`
	StudyDescription string `db:"study_description" json:"study_description,omitempty"`
	Modality         string `db:"modality" json:"modality,omitempty"`

	ScheduledStartDate   string `db:"scheduled_start_date" json:"scheduled_start_date,omitempty"`
	ScheduledStartTime   string `db:"scheduled_start_time" json:"scheduled_start_time,omitempty"`
	ScheduledDescription string `db:"scheduled_description" json:"scheduled_description,omitempty"`

	ReferringPhysician  string `db:"referring_physician" json:"referring_physician,omitempty"`
	RequestingPhysician string `db:"requesting_physician" json:"requesting_physician,omitempty"`
	AdmittingDiagnosis  string `db:"admitting_diagnosis" json:"admitting_diagnosis,omitempty"`

	// RawSourceData keeps the source payload verbatim for audit.
	RawSourceData map[string]any `db:"raw_source_data" json:"raw_source_data,omitempty"`
	SourceAE      string         `db:"source_ae" json:"source_ae,omitempty"`

	OwnerID   string    `db:"owner_id" json:"owner_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Validate rejects entries that must not reach storage.
func (e *Entry) Validate() error {
	if e.StudyInstanceUID == "" {
		return errs.Validation("study_instance_uid", "is required")
	}
	if e.PatientID == "" {
		return errs.Validation("patient_id", "is required")
	}
	if e.PatientName == "" {
		return errs.Validation("patient_name", "is required")
	}
	return nil
}

// Merge applies incoming onto e field by field. Blank incoming fields never
// overwrite stored values, so data enriched between source polls survives a
// sparser re-ingest. Identity, ownership and creation time are never merged.
func (e *Entry) Merge(incoming *Entry) {
	merge := func(dst *string, src string) {
		if src != "" {
			*dst = src
		}
	}
	merge(&e.PatientID, incoming.PatientID)
	merge(&e.PatientName, incoming.PatientName)
	merge(&e.PatientAge, incoming.PatientAge)
	merge(&e.PatientDOB, incoming.PatientDOB)
	merge(&e.PatientSex, incoming.PatientSex)
	merge(&e.AccessionNumber, incoming.AccessionNumber)
	merge(&e.StudyDate, incoming.StudyDate)
	merge(&e.StudyTime, incoming.StudyTime)
	merge(&e.StudyDescription, incoming.StudyDescription)
	merge(&e.Modality, incoming.Modality)
	merge(&e.ScheduledStartDate, incoming.ScheduledStartDate)
	merge(&e.ScheduledStartTime, incoming.ScheduledStartTime)
	merge(&e.ScheduledDescription, incoming.ScheduledDescription)
	merge(&e.ReferringPhysician, incoming.ReferringPhysician)
	merge(&e.RequestingPhysician, incoming.RequestingPhysician)
	merge(&e.AdmittingDiagnosis, incoming.AdmittingDiagnosis)
	merge(&e.SourceAE, incoming.SourceAE)
	if incoming.RawSourceData != nil {
		e.RawSourceData = incoming.RawSourceData
	}
}
