package offline_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dantte-lp/ptrid/internal/engine"
	"github.com/dantte-lp/ptrid/internal/offline"
)

func writeTrainingDir(t *testing.T, name, content string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return dir
}

func TestClassifyMatchesTrainedType(t *testing.T) {
	t.Parallel()

	aDir := writeTrainingDir(t, "a.bin", "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")
	bDir := writeTrainingDir(t, "b.bin", "bababababababababababababababababababababababababababababababa")

	lib, err := engine.BuildReferenceLibrary(engine.MetricChiSquare, []string{aDir, bDir}, []string{"alpha", "beta"}, nil)
	if err != nil {
		t.Fatalf("BuildReferenceLibrary: %v", err)
	}

	target := filepath.Join(t.TempDir(), "target.bin")
	if err := os.WriteFile(target, []byte("aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	result, err := offline.Classify(target, lib, nil)
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if result.Name != "alpha" {
		t.Errorf("Name = %q, want %q", result.Name, "alpha")
	}
	if result.Index != 1 {
		t.Errorf("Index = %d, want 1", result.Index)
	}
	if got := result.String(); got != "Type: 1 (CHI2)" {
		t.Errorf("String() = %q, want %q", got, "Type: 1 (CHI2)")
	}
}

func TestClassifyUnderMarkovMetric(t *testing.T) {
	t.Parallel()

	aDir := writeTrainingDir(t, "a.bin", "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")

	lib, err := engine.BuildReferenceLibrary(engine.MetricMarkovLogLikelihood, []string{aDir}, []string{"alpha"}, nil)
	if err != nil {
		t.Fatalf("BuildReferenceLibrary: %v", err)
	}

	target := filepath.Join(t.TempDir(), "target.bin")
	if err := os.WriteFile(target, []byte("aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	result, err := offline.Classify(target, lib, nil)
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if result.Name != "alpha" {
		t.Errorf("Name = %q, want %q", result.Name, "alpha")
	}
	if result.Metric != engine.MetricMarkovLogLikelihood {
		t.Errorf("Metric = %v, want MetricMarkovLogLikelihood", result.Metric)
	}
}

func TestClassifyNonexistentFile(t *testing.T) {
	t.Parallel()

	aDir := writeTrainingDir(t, "a.bin", "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")
	lib, err := engine.BuildReferenceLibrary(engine.MetricInfoDistance, []string{aDir}, []string{"alpha"}, nil)
	if err != nil {
		t.Fatalf("BuildReferenceLibrary: %v", err)
	}

	_, err = offline.Classify("/nonexistent/path/file.bin", lib, nil)
	if err == nil {
		t.Fatal("Classify() returned nil error for nonexistent file")
	}
}
