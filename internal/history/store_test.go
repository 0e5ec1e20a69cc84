package history

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"bpkit/internal/report"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleReport(errors int) *report.Report {
	r := &report.Report{
		ID:            uuid.NewString(),
		GeneratedAt:   time.Now().UTC(),
		CorpusRoot:    "/tmp/corpus",
		DocumentCount: 3,
		LinkCount:     5,
		ErrorCount:    errors,
	}
	for i := 0; i < errors; i++ {
		r.Findings = append(r.Findings, report.Finding{
			Severity: report.SeverityError,
			Kind:     report.KindBrokenLink,
			Message:  "broken link",
		})
	}
	return r
}

func TestSaveAndGetRun(t *testing.T) {
	s := openStore(t)

	r := sampleReport(2)
	if err := s.SaveRun(r); err != nil {
		t.Fatalf("SaveRun: %v", err)
	}

	loaded, err := s.GetRun(r.ID)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if loaded.ID != r.ID {
		t.Errorf("ID = %q, want %q", loaded.ID, r.ID)
	}
	if len(loaded.Findings) != 2 {
		t.Errorf("findings = %d, want 2", len(loaded.Findings))
	}
	if loaded.DocumentCount != 3 || loaded.LinkCount != 5 {
		t.Errorf("counts = %d/%d, want 3/5", loaded.DocumentCount, loaded.LinkCount)
	}
}

func TestGetRunUnknownID(t *testing.T) {
	s := openStore(t)
	if _, err := s.GetRun("nope"); err == nil {
		t.Fatal("GetRun(nope) succeeded, want error")
	}
}

func TestListRunsNewestFirst(t *testing.T) {
	s := openStore(t)

	base := time.Now().UTC()
	var ids []string
	for i := 0; i < 3; i++ {
		r := sampleReport(0)
		r.GeneratedAt = base.Add(time.Duration(i) * time.Minute)
		ids = append(ids, r.ID)
		if err := s.SaveRun(r); err != nil {
			t.Fatal(err)
		}
	}

	runs, err := s.ListRuns(0)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("runs = %d, want 3", len(runs))
	}
	if runs[0].ID != ids[2] || runs[2].ID != ids[0] {
		t.Errorf("order = %s..%s, want newest first", runs[0].ID, runs[2].ID)
	}
	if !runs[0].Passing {
		t.Error("clean run not marked passing")
	}

	limited, err := s.ListRuns(1)
	if err != nil {
		t.Fatal(err)
	}
	if len(limited) != 1 || limited[0].ID != ids[2] {
		t.Errorf("ListRuns(1) = %v, want only the newest", limited)
	}
}

func TestPrune(t *testing.T) {
	s := openStore(t)

	base := time.Now().UTC()
	for i := 0; i < 5; i++ {
		r := sampleReport(0)
		r.GeneratedAt = base.Add(time.Duration(i) * time.Minute)
		if err := s.SaveRun(r); err != nil {
			t.Fatal(err)
		}
	}

	if err := s.Prune(2); err != nil {
		t.Fatalf("Prune: %v", err)
	}
	runs, err := s.ListRuns(0)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 {
		t.Errorf("runs after prune = %d, want 2", len(runs))
	}
}

func TestCheckVersions(t *testing.T) {
	s := openStore(t)

	first := sampleReport(0)
	first.Documents = []report.DocumentRef{
		{Path: "deck/pitch-deck.md", Tier: "source", Version: "1.2.0"},
		{Path: "memory/a.md", Tier: "strategic", Version: "1.0.0"},
	}
	findings, err := s.CheckVersions(first)
	if err != nil {
		t.Fatalf("CheckVersions: %v", err)
	}
	if len(findings) != 0 {
		t.Errorf("first sighting produced findings: %v", findings)
	}

	// Forward movement is fine; backwards is a warning.
	second := sampleReport(0)
	second.Documents = []report.DocumentRef{
		{Path: "deck/pitch-deck.md", Tier: "source", Version: "1.1.0"},
		{Path: "memory/a.md", Tier: "strategic", Version: "1.1.0"},
	}
	findings, err = s.CheckVersions(second)
	if err != nil {
		t.Fatalf("CheckVersions: %v", err)
	}
	if len(findings) != 1 {
		t.Fatalf("findings = %v, want one regression", findings)
	}
	f := findings[0]
	if f.File != "deck/pitch-deck.md" || f.Severity != report.SeverityWarning {
		t.Errorf("finding = %+v, want warning on the deck", f)
	}

	// The regressed version is now the recorded one; repeating it is quiet.
	third := sampleReport(0)
	third.Documents = second.Documents
	findings, err = s.CheckVersions(third)
	if err != nil {
		t.Fatal(err)
	}
	if len(findings) != 0 {
		t.Errorf("repeat run produced findings: %v", findings)
	}
}
