package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/giygas/vetref/data"
	"github.com/giygas/vetref/datasetparser/entities"
	"github.com/giygas/vetref/monograph"
	"github.com/giygas/vetref/report"
)

type stubSender struct {
	err  error
	sent []report.Message
}

func (s *stubSender) NewMessage(subject, comment string) (report.Message, error) {
	text, err := report.Compose(subject, comment)
	if err != nil {
		return report.Message{}, err
	}
	link, err := report.DeepLink("https://t.me/share/url", text)
	return report.Message{Type: "open_link", URL: link, Text: text}, err
}

func (s *stubSender) Send(_ context.Context, msg report.Message) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, msg)
	return nil
}

func testApp(sender *stubSender) *App {
	store := data.NewDataContainer()
	store.UpdateData(
		[]entities.VetLekRecord{
			{Name: "Аспирин", Sections: map[string]string{"indications": "<p>Лихорадка</p>"}},
			{Name: "Ивермек"},
		},
		[]entities.VidalRecord{
			{Name: "Аспирин", Description: "Обезболивающее"},
			{Name: "Аспирин Кардио", Description: "Антиагрегант"},
		},
		monograph.NewLoader(func(ctx context.Context) ([]byte, error) {
			return []byte(`<article id="a1"><h2>Ивермек</h2><p>Противопаразитарное</p></article>`), nil
		}),
	)
	return NewApp(store, sender)
}

func run(t *testing.T, app *App, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRootCmd(func(context.Context) (*App, error) { return app, nil }, &out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestSearchCommand(t *testing.T) {
	app := testApp(&stubSender{})

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"merged and vidal only", []string{"search", "аспирин"}, "1. Аспирин [vetlek, vidal]\n2. Аспирин Кардио [vidal]\n"},
		{"nothing found", []string{"search", "байтрил"}, "Ничего не найдено\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := run(t, app, tt.args...)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("output mismatch (-want +got):\n%s", diff)
			}
		})
	}

	if _, err := run(t, app, "search", "аспирин\x00"); err == nil {
		t.Error("expected a query with control characters to be rejected")
	}

	got, err := run(t, app, "search", "«Аспирин»")
	if err != nil {
		t.Fatalf("quoted name should be accepted: %v", err)
	}
	if !strings.HasPrefix(got, "1. Аспирин [vetlek, vidal]\n") {
		t.Errorf("unexpected output %q", got)
	}
}

func TestSearchCommandJSON(t *testing.T) {
	out, err := run(t, testApp(&stubSender{}), "-o", "json", "search", "кардио")
	if err != nil {
		t.Fatal(err)
	}
	var results []searchResult
	if err := json.Unmarshal([]byte(out), &results); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(results) != 1 || results[0].Name != "Аспирин Кардио" {
		t.Errorf("unexpected results %+v", results)
	}
}

func TestShowCommand(t *testing.T) {
	app := testApp(&stubSender{})

	out, err := run(t, app, "show", "аспирин")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Показания к применению\nЛихорадка") {
		t.Errorf("expected plain text sections, got %q", out)
	}

	out, err = run(t, app, "show", "аспирин", "--source", "vidal")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Обезболивающее") {
		t.Errorf("expected vidal content, got %q", out)
	}

	out, err = run(t, app, "show", "аспирин", "--pick", "2", "--html")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, "<h1>Аспирин Кардио</h1>") {
		t.Errorf("expected html of the second result, got %q", out)
	}

	out, err = run(t, app, "show", "ивермек")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Противопаразитарное") {
		t.Errorf("expected monograph fallback, got %q", out)
	}

	errorCases := [][]string{
		{"show", "байтрил"},
		{"show", "аспирин", "--pick", "5"},
		{"show", "кардио", "--source", "vetlek"},
		{"show", "аспирин", "--source", "other"},
	}
	for _, args := range errorCases {
		if _, err := run(t, app, args...); err == nil {
			t.Errorf("%v: expected an error", args)
		}
	}
}

func TestMonographCommand(t *testing.T) {
	out, err := run(t, testApp(&stubSender{}), "monograph", "Ивермек")
	if err != nil {
		t.Fatal(err)
	}
	if out != "* a1\tИвермек\n" {
		t.Errorf("unexpected output %q", out)
	}
}

func TestReportCommand(t *testing.T) {
	sender := &stubSender{}
	out, err := run(t, testApp(sender), "report", "--drug", "ивермек", "--comment", "нет дозировки")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, "Ошибка в справочнике (Ивермек): нет дозировки\nhttps://t.me/share/url?text=") {
		t.Errorf("unexpected output %q", out)
	}
	if len(sender.sent) != 1 {
		t.Errorf("expected one delivered report, got %d", len(sender.sent))
	}

	if _, err := run(t, testApp(sender), "report", "--comment", "x", "--dry-run"); err != nil || len(sender.sent) != 1 {
		t.Errorf("dry run must not send: err=%v sent=%d", err, len(sender.sent))
	}

	disabled := &stubSender{err: report.ErrDisabled}
	out, err = run(t, testApp(disabled), "-o", "json", "report", "--comment", "x")
	if err != nil {
		t.Fatalf("disabled delivery should still print the link: %v", err)
	}
	if !strings.Contains(out, `"sent": false`) {
		t.Errorf("expected sent=false, got %s", out)
	}

	failing := &stubSender{err: errors.New("bridge answered 500")}
	if _, err := run(t, testApp(failing), "report", "--comment", "x"); err == nil {
		t.Error("expected delivery failure to be returned")
	}
	if _, err := run(t, testApp(sender), "report", "--comment", " "); !errors.Is(err, report.ErrEmptyComment) {
		t.Errorf("expected ErrEmptyComment, got %v", err)
	}
}

func TestInvalidOutputFormat(t *testing.T) {
	if _, err := run(t, testApp(&stubSender{}), "-o", "yaml", "search", "x"); err == nil {
		t.Error("expected unknown output format to be rejected")
	}
}
