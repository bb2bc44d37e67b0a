// Package authoring assembles the retrieval context a report author works
// from: the normalized worklist entry plus the closest lexicon terms.
package authoring

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/serenvale/radcore/internal/dicom"
	"github.com/serenvale/radcore/internal/domain/radlex"
	"github.com/serenvale/radcore/internal/domain/worklist"
	"github.com/serenvale/radcore/internal/platform/embedding"
)

// RawEntry is a worklist row as it comes off the wire, DICOM strings and
// all.
type RawEntry struct {
	PatientID        string         `json:"patientId"`
	PatientName      string         `json:"patientName"`
	PatientAge       string         `json:"patientAge,omitempty"`
	PatientDOB       string         `json:"patientDob,omitempty"`
	PatientSex       string         `json:"patientSex,omitempty"`
	StudyInstanceUID string         `json:"studyInstanceUid"`
	AccessionNumber  string         `json:"accessionNumber,omitempty"`
	StudyDate        string         `json:"studyDate,omitempty"`
	StudyTime        string         `json:"studyTime,omitempty"`
	StudyDescription string         `json:"studyDescription,omitempty"`
	Modality         string         `json:"modality,omitempty"`
	ReferringDoctor  string         `json:"referringDoctor,omitempty"`
	SourceAE         string         `json:"sourceAe,omitempty"`
	RawSourceData    map[string]any `json:"rawSourceData,omitempty"`
}

// Context is what report authoring starts from.
type Context struct {
	Entry         *worklist.Entry `json:"entry"`
	ExamType      string          `json:"examType"`
	ExamDisplay   string          `json:"examTypeDisplay"`
	ModalityAgent string          `json:"modalityAgent"`
	PatientAge    int             `json:"patientAge"`
	Matches       []radlex.Match  `json:"matches"`
}

type Service struct {
	worklist      *worklist.Service
	radlex        *radlex.Service
	embedder      embedding.Embedder
	log           zerolog.Logger
	searchTimeout time.Duration
	topK          int
}

func NewService(wl *worklist.Service, rl *radlex.Service, emb embedding.Embedder, log zerolog.Logger, searchTimeout time.Duration) *Service {
	return &Service{
		worklist:      wl,
		radlex:        rl,
		embedder:      emb,
		log:           log.With().Str("component", "authoring").Logger(),
		searchTimeout: searchTimeout,
		topK:          5,
	}
}

// PrepareContext normalizes raw, caches it in the worklist, embeds the exam
// description, and retrieves the nearest lexicon terms for the derived
// modality agent. It never touches the report store.
func (s *Service) PrepareContext(ctx context.Context, raw *RawEntry, language, ownerID string) (*Context, error) {
	exam := dicom.MapModalityToExamType(raw.Modality, raw.StudyDescription)
	agent := dicom.ModalityAgent(exam.Key)

	studyDate := ""
	if raw.StudyDate != "" {
		var err error
		if studyDate, err = dicom.FormatDate(raw.StudyDate); err != nil {
			return nil, err
		}
	}

	entry := &worklist.Entry{
		PatientID:          raw.PatientID,
		PatientName:        dicom.NormalizePersonName(raw.PatientName),
		PatientAge:         raw.PatientAge,
		PatientDOB:         raw.PatientDOB,
		PatientSex:         raw.PatientSex,
		StudyInstanceUID:   raw.StudyInstanceUID,
		AccessionNumber:    raw.AccessionNumber,
		StudyDate:          studyDate,
		StudyTime:          dicom.FormatTime(raw.StudyTime),
		StudyDescription:   raw.StudyDescription,
		Modality:           raw.Modality,
		ReferringPhysician: dicom.NormalizePersonName(raw.ReferringDoctor),
		RawSourceData:      raw.RawSourceData,
		SourceAE:           raw.SourceAE,
	}
	stored, err := s.worklist.Upsert(ctx, entry, ownerID)
	if err != nil {
		return nil, err
	}

	if s.embedder == nil {
		return &Context{
			Entry:         stored,
			ExamType:      exam.Key,
			ExamDisplay:   exam.Display,
			ModalityAgent: agent,
			PatientAge:    dicom.ParseAge(raw.PatientAge),
		}, nil
	}

	if language == "" {
		language = radlex.LanguageFR
	}

	query := strings.TrimSpace(exam.Display + " " + raw.StudyDescription)
	vec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}

	searchCtx, cancel := context.WithTimeout(ctx, s.searchTimeout)
	defer cancel()
	matches, err := s.radlex.Search(searchCtx, vec, language, radlex.Filter{Modality: agent}, s.topK)
	if err != nil {
		return nil, err
	}

	s.log.Debug().
		Str("owner_id", ownerID).
		Str("exam_type", exam.Key).
		Str("agent", agent).
		Int("matches", len(matches)).
		Msg("authoring context prepared")

	return &Context{
		Entry:         stored,
		ExamType:      exam.Key,
		ExamDisplay:   exam.Display,
		ModalityAgent: agent,
		PatientAge:    dicom.ParseAge(raw.PatientAge),
		Matches:       matches,
	}, nil
}
