package settings

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/serenvale/radcore/internal/platform/errs"
)

type mockRepo struct {
	templates map[string]*ReportTemplate
	clinics   map[string]*ClinicSettings // keyed by owner
	doctors   map[string]*DoctorSettings // keyed by owner
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		templates: make(map[string]*ReportTemplate),
		clinics:   make(map[string]*ClinicSettings),
		doctors:   make(map[string]*DoctorSettings),
	}
}

func (m *mockRepo) CreateTemplate(_ context.Context, t *ReportTemplate) error {
	for _, existing := range m.templates {
		if existing.OwnerID == t.OwnerID && existing.Name == t.Name {
			return &errs.UniquenessError{Field: "name", Value: t.Name, ConflictID: existing.ID}
		}
	}
	cp := *t
	cp.CreatedAt = time.Now()
	cp.UpdatedAt = cp.CreatedAt
	m.templates[t.ID] = &cp
	return nil
}

func (m *mockRepo) GetTemplate(_ context.Context, id, owner string) (*ReportTemplate, error) {
	t, ok := m.templates[id]
	if !ok || t.OwnerID != owner {
		return nil, nil
	}
	return t, nil
}

func (m *mockRepo) ListTemplates(_ context.Context, owner string) ([]*ReportTemplate, error) {
	var out []*ReportTemplate
	for _, t := range m.templates {
		if t.OwnerID == owner {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *mockRepo) ListTemplatesByModality(_ context.Context, modality, owner string) ([]*ReportTemplate, error) {
	var out []*ReportTemplate
	for _, t := range m.templates {
		if t.OwnerID == owner && t.Modality == modality {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *mockRepo) UpdateTemplate(_ context.Context, t *ReportTemplate) error {
	existing, ok := m.templates[t.ID]
	if !ok || existing.OwnerID != t.OwnerID {
		return errs.NotFound("report template", t.ID)
	}
	t.CreatedAt = existing.CreatedAt
	t.UpdatedAt = time.Now()
	m.templates[t.ID] = t
	return nil
}

func (m *mockRepo) DeleteTemplate(_ context.Context, id, owner string) error {
	t, ok := m.templates[id]
	if !ok || t.OwnerID != owner {
		return errs.NotFound("report template", id)
	}
	delete(m.templates, id)
	return nil
}

func (m *mockRepo) GetClinic(_ context.Context, owner string) (*ClinicSettings, error) {
	return m.clinics[owner], nil
}

func (m *mockRepo) PutClinic(_ context.Context, c *ClinicSettings) error {
	if existing, ok := m.clinics[c.OwnerID]; ok {
		c.ID = existing.ID
		c.CreatedAt = existing.CreatedAt
	} else {
		c.CreatedAt = time.Now()
	}
	c.UpdatedAt = time.Now()
	m.clinics[c.OwnerID] = c
	return nil
}

func (m *mockRepo) GetDoctor(_ context.Context, owner string) (*DoctorSettings, error) {
	return m.doctors[owner], nil
}

func (m *mockRepo) PutDoctor(_ context.Context, d *DoctorSettings) error {
	if existing, ok := m.doctors[d.OwnerID]; ok {
		d.ID = existing.ID
		d.CreatedAt = existing.CreatedAt
	} else {
		d.CreatedAt = time.Now()
	}
	d.UpdatedAt = time.Now()
	m.doctors[d.OwnerID] = d
	return nil
}

func newTestService() *Service {
	return NewService(newMockRepo(), zerolog.Nop())
}

func irmTemplate() *ReportTemplate {
	return &ReportTemplate{
		Name:     "IRM Cérébrale Standard",
		Modality: "irm",
		Sections: []TemplateSection{
			{ID: "technique", Title: "Technique"},
			{ID: "findings", Title: "Résultats", Required: true},
			{ID: "conclusion", Title: "Conclusion", Required: true},
		},
		RAGFilter: RAGFilter{Modalities: []string{"irm"}},
		IsActive:  true,
	}
}

func TestCreateTemplateDefaultsLanguage(t *testing.T) {
	svc := newTestService()

	created, err := svc.CreateTemplate(context.Background(), irmTemplate(), "owner-1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Language != "fr" {
		t.Errorf("language = %q, want fr", created.Language)
	}
	if created.ID == "" {
		t.Error("id was not assigned")
	}
}

func TestCreateTemplateNameUniquePerOwner(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	if _, err := svc.CreateTemplate(ctx, irmTemplate(), "owner-1"); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.CreateTemplate(ctx, irmTemplate(), "owner-1"); !errs.IsUniqueness(err) {
		t.Fatalf("expected uniqueness error, got %v", err)
	}
	if _, err := svc.CreateTemplate(ctx, irmTemplate(), "owner-2"); err != nil {
		t.Errorf("same name under another owner must not collide: %v", err)
	}
}

func TestCreateTemplateRejectsBadLanguage(t *testing.T) {
	svc := newTestService()
	tpl := irmTemplate()
	tpl.Language = "de"
	if _, err := svc.CreateTemplate(context.Background(), tpl, "owner-1"); !errs.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestListTemplatesByModality(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	if _, err := svc.CreateTemplate(ctx, irmTemplate(), "owner-1"); err != nil {
		t.Fatal(err)
	}
	tdm := irmTemplate()
	tdm.Name = "TDM Thorax Standard"
	tdm.Modality = "tdm"
	if _, err := svc.CreateTemplate(ctx, tdm, "owner-1"); err != nil {
		t.Fatal(err)
	}

	irmOnly, err := svc.ListTemplates(ctx, "irm", "owner-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(irmOnly) != 1 || irmOnly[0].Modality != "irm" {
		t.Fatalf("unexpected modality filter result: %+v", irmOnly)
	}

	all, err := svc.ListTemplates(ctx, "", "owner-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 {
		t.Fatalf("got %d templates, want 2", len(all))
	}
}

func TestClinicSingletonPerOwner(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	first, err := svc.PutClinic(ctx, &ClinicSettings{
		Name: "Centre Imagerie Plateau",
		PACS: PACSConfig{Host: "pacs.local", Port: 11112, AETitle: "RADCORE"},
	}, "owner-1")
	if err != nil {
		t.Fatalf("put clinic: %v", err)
	}

	second, err := svc.PutClinic(ctx, &ClinicSettings{Name: "Centre Imagerie Plateau II"}, "owner-1")
	if err != nil {
		t.Fatalf("put clinic again: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("second put created a new row: %q vs %q", second.ID, first.ID)
	}
	if second.Name != "Centre Imagerie Plateau II" {
		t.Errorf("name not replaced: %q", second.Name)
	}
}

func TestClinicValidatesPACSPort(t *testing.T) {
	svc := newTestService()
	_, err := svc.PutClinic(context.Background(), &ClinicSettings{
		Name: "X", PACS: PACSConfig{Port: 70000},
	}, "owner-1")
	if !errs.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDoctorSettingsRoundTrip(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	if _, err := svc.GetDoctor(ctx, "owner-1"); !errs.IsNotFound(err) {
		t.Fatalf("expected not found before put, got %v", err)
	}

	saved, err := svc.PutDoctor(ctx, &DoctorSettings{Name: "Dr Martin", Specialty: "Neuroradiologie"}, "owner-1")
	if err != nil {
		t.Fatalf("put doctor: %v", err)
	}
	if saved.DefaultLanguage != "fr" {
		t.Errorf("default language = %q, want fr", saved.DefaultLanguage)
	}

	got, err := svc.GetDoctor(ctx, "owner-1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "Dr Martin" {
		t.Errorf("name = %q", got.Name)
	}
}
