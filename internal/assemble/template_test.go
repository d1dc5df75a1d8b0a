package assemble

import (
	"errors"
	"strings"
	"testing"
)

func testRenderContext() *renderContext {
	return &renderContext{
		binaries: []string{"foo", "bar"},
		binDir:   "/bin",
		copyLines: []string{
			"COPY foo /bin/foo",
			"COPY bar /bin/bar",
		},
		extraCopies: []string{
			"COPY configs/app.yaml /etc/app/",
		},
	}
}

func TestRenderCopyAllBinaries(t *testing.T) {
	got, err := render("{{ copy_all_binaries }}\nCMD [{{ binaries.0 }}]", testRenderContext())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := "COPY foo /bin/foo\nCOPY bar /bin/bar\nCMD [/bin/foo]"
	if got != want {
		t.Errorf("rendered = %q, want %q", got, want)
	}
}

func TestRenderPlaceholders(t *testing.T) {
	tests := []struct {
		name     string
		template string
		want     string
	}{
		{
			name:     "indexed binary",
			template: "{{ binaries.1 }}",
			want:     "/bin/bar",
		},
		{
			name:     "named binary",
			template: `{{ binaries["bar"] }}`,
			want:     "/bin/bar",
		},
		{
			name:     "index and name agree",
			template: `{{ binaries.0 }} {{ binaries["foo"] }}`,
			want:     "/bin/foo /bin/foo",
		},
		{
			name:     "extra files",
			template: "{{ copy_all_extra_files }}",
			want:     "COPY configs/app.yaml /etc/app/",
		},
		{
			name:     "literal text preserved",
			template: "FROM alpine\n{{ copy_all_binaries }}\nEXPOSE 80",
			want:     "FROM alpine\nCOPY foo /bin/foo\nCOPY bar /bin/bar\nEXPOSE 80",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := render(tt.template, testRenderContext())
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("rendered = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRenderErrors(t *testing.T) {
	tests := []struct {
		name     string
		template string
		contains string
	}{
		{
			name:     "index out of range",
			template: "{{ binaries.2 }}",
			contains: "out of range",
		},
		{
			name:     "negative index",
			template: "{{ binaries.-1 }}",
			contains: "out of range",
		},
		{
			name:     "unknown binary name",
			template: `{{ binaries["baz"] }}`,
			contains: "unknown binary",
		},
		{
			name:     "unknown placeholder",
			template: "{{ copy_everything }}",
			contains: "unknown placeholder",
		},
		{
			name:     "unterminated placeholder",
			template: "{{ binaries.0",
			contains: "unterminated",
		},
		{
			name:     "malformed name lookup",
			template: "{{ binaries[foo] }}",
			contains: "malformed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := render(tt.template, testRenderContext())
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !errors.Is(err, ErrAssembly) {
				t.Errorf("error %v is not ErrAssembly", err)
			}
			if !strings.Contains(err.Error(), tt.contains) {
				t.Errorf("error %q does not mention %q", err, tt.contains)
			}
		})
	}
}
