package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const testCSV = `bookID,title,authors,average_rating,num_pages,ratings_count,text_reviews_count
1,One,A,4.5,300,100,10
2,Two,B,3.0,120,50,5
3,Three,A,4.8,640,20,2
`

func setup(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "books.csv")
	if err := os.WriteFile(path, []byte(testCSV), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("BOOKREC_MODEL_FACTORS", "4")
	t.Setenv("BOOKREC_MODEL_ITERATIONS", "3")
	t.Setenv("BOOKREC_LOG_LEVEL", "disabled")
	return path
}

func TestRun(t *testing.T) {
	path := setup(t)

	tests := []struct {
		name     string
		args     []string
		wantCode int
		wantOut  []string
		wantErr  string
	}{
		{name: "authors", args: []string{"authors"}, wantOut: []string{"A\nB\n"}},
		{name: "author", args: []string{"author", "A"}, wantOut: []string{"One", "Three"}},
		{name: "author none", args: []string{"author", "Nobody"}, wantOut: []string{"No books found."}},
		{name: "rating", args: []string{"rating", "4.6"}, wantOut: []string{"Three"}},
		{name: "rating invalid", args: []string{"rating", "abc"}, wantCode: 1, wantErr: "invalid input"},
		{name: "recommend", args: []string{"recommend", "-n", "1", "1"}, wantOut: []string{"SCORE"}},
		{name: "recommend unknown", args: []string{"recommend", "42"}, wantCode: 1, wantErr: "not found"},
		{name: "recommend bad id", args: []string{"recommend", "x"}, wantCode: 2, wantErr: "invalid book id"},
		{name: "popular", args: []string{"popular", "-n", "1"}, wantOut: []string{"One"}},
		{name: "unknown", args: []string{"nope"}, wantCode: 2, wantErr: "unknown command"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			args := append([]string{"-catalog", path}, tt.args...)
			if code := run(args, &stdout, &stderr); code != tt.wantCode {
				t.Fatalf("run() = %d, want %d; stderr: %s", code, tt.wantCode, stderr.String())
			}
			for _, s := range tt.wantOut {
				if !strings.Contains(stdout.String(), s) {
					t.Errorf("stdout missing %q:\n%s", s, stdout.String())
				}
			}
			if tt.wantErr != "" && !strings.Contains(stderr.String(), tt.wantErr) {
				t.Errorf("stderr missing %q:\n%s", tt.wantErr, stderr.String())
			}
		})
	}
}

func TestRun_MissingCatalog(t *testing.T) {
	setup(t)
	var stdout, stderr bytes.Buffer
	code := run([]string{"-catalog", filepath.Join(t.TempDir(), "missing.csv"), "authors"}, &stdout, &stderr)
	if code != 1 {
		t.Errorf("run() = %d, want 1", code)
	}
}
