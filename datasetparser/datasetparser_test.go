package datasetparser

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"golang.org/x/text/encoding/charmap"

	"github.com/giygas/vetref/datasetparser/entities"
)

const vetlekDoc = `[
  {"name": "Аспирин®", "sections": {"composition": "<p>ацетилсалициловая кислота</p>"}, "html": "<p>x</p>"},
  {"name": "Бровермектин", "source": "json", "summary": "Противопаразитарный гранулят"}
]`

const vidalDoc = `{"drugs": [{"name": "Аспирин", "description": "Обезболивающее"}]}`

type memorySource map[string][]byte

func (m memorySource) Fetch(_ context.Context, name string) ([]byte, error) {
	content, ok := m[name]
	if !ok {
		return nil, errors.New("not found: " + name)
	}
	return content, nil
}

func TestParseAll(t *testing.T) {
	source := memorySource{
		"vetlek.json": []byte(vetlekDoc),
		"vidal.json":  []byte(vidalDoc),
	}
	parser := NewDatasetParser(source, Paths{VetLek: "vetlek.json", Vidal: "vidal.json"})

	vetlek, vidal, err := parser.ParseAll(context.Background())
	if err != nil {
		t.Fatalf("ParseAll: %v", err)
	}
	if len(vetlek) != 2 || len(vidal) != 1 {
		t.Fatalf("expected 2 vetlek and 1 vidal records, got %d and %d", len(vetlek), len(vidal))
	}

	if got := vetlek[0].Classification.Origin; got != entities.OriginVetLek {
		t.Errorf("first record origin = %s, want vetlek", got)
	}
	if got := vetlek[1].Classification; got.Origin != entities.OriginJSON || got.Richness != entities.RichnessBasic {
		t.Errorf("second record classification = %+v, want json/basic", got)
	}
	if vidal[0].Description != "Обезболивающее" {
		t.Errorf("unexpected vidal description %q", vidal[0].Description)
	}
}

func TestParseAllFailsWhenEitherDatasetFails(t *testing.T) {
	tests := []struct {
		name   string
		source memorySource
	}{
		{"vetlek missing", memorySource{"vidal.json": []byte(vidalDoc)}},
		{"vidal missing", memorySource{"vetlek.json": []byte(vetlekDoc)}},
		{"vidal malformed", memorySource{"vetlek.json": []byte(vetlekDoc), "vidal.json": []byte(`{"drugs": [`)}},
		{"object without drugs", memorySource{"vetlek.json": []byte(vetlekDoc), "vidal.json": []byte(`{"items": []}`)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parser := NewDatasetParser(tt.source, Paths{VetLek: "vetlek.json", Vidal: "vidal.json"})
			vetlek, vidal, err := parser.ParseAll(context.Background())
			if err == nil {
				t.Fatal("expected an error")
			}
			if vetlek != nil || vidal != nil {
				t.Error("a failed load must not return partial datasets")
			}
		})
	}
}

func TestDecodeWindows1251(t *testing.T) {
	doc := `[{"name": "Аспирин"}]`
	encoded, err := charmap.Windows1251.NewEncoder().Bytes([]byte(doc))
	if err != nil {
		t.Fatal(err)
	}

	records, err := DecodeVidal(encoded)
	if err != nil {
		t.Fatalf("DecodeVidal: %v", err)
	}
	if len(records) != 1 || records[0].Name != "Аспирин" {
		t.Errorf("unexpected records %+v", records)
	}
}

func TestFileSource(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "data"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "data", "vidal.json"), []byte(vidalDoc), 0644); err != nil {
		t.Fatal(err)
	}

	source := NewFileSource(root)

	content, err := source.Fetch(context.Background(), "data/vidal.json")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if string(content) != vidalDoc {
		t.Errorf("unexpected content %q", content)
	}

	for _, name := range []string{"../secret.json", "/etc/passwd", "data/../../x"} {
		if _, err := source.Fetch(context.Background(), name); err == nil {
			t.Errorf("expected %q to be rejected", name)
		}
	}
}

func TestHTTPSource(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/datasets/vidal.json":
			_, _ = w.Write([]byte(vidalDoc))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	source := NewHTTPSource(server.URL + "/datasets")

	content, err := source.Fetch(context.Background(), "vidal.json")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if string(content) != vidalDoc {
		t.Errorf("unexpected content %q", content)
	}

	_, err = source.Fetch(context.Background(), "missing.json")
	if err == nil || !strings.Contains(err.Error(), "status 404") {
		t.Errorf("expected a 404 error, got %v", err)
	}
}

type fakeObjects struct {
	objects map[string]string
	keys    []string
}

func (f *fakeObjects) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.keys = append(f.keys, *in.Key)
	body, ok := f.objects[*in.Key]
	if !ok {
		return nil, errors.New("NoSuchKey")
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader([]byte(body)))}, nil
}

func TestS3Source(t *testing.T) {
	objects := &fakeObjects{objects: map[string]string{"vetref/vidal.json": vidalDoc}}
	source := &S3Source{client: objects, bucket: "datasets", prefix: "vetref"}

	content, err := source.Fetch(context.Background(), "vidal.json")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if string(content) != vidalDoc {
		t.Errorf("unexpected content %q", content)
	}

	if _, err := source.Fetch(context.Background(), "vetlek.json"); err == nil {
		t.Error("expected an error for a missing key")
	}
	if objects.keys[1] != "vetref/vetlek.json" {
		t.Errorf("expected prefixed key, got %q", objects.keys[1])
	}
}

func TestFetchMonographs(t *testing.T) {
	encoded, err := charmap.Windows1251.NewEncoder().Bytes([]byte(`<article id="a1"><h2>Аспирин</h2></article>`))
	if err != nil {
		t.Fatal(err)
	}
	parser := NewDatasetParser(memorySource{"m.html": encoded}, Paths{Monograph: "m.html"})

	content, err := parser.FetchMonographs(context.Background())
	if err != nil {
		t.Fatalf("FetchMonographs: %v", err)
	}
	if !strings.Contains(string(content), "Аспирин") {
		t.Errorf("expected decoded heading, got %q", content)
	}
}
