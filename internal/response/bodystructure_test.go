package response

import (
	"strings"
	"testing"

	"github.com/Transmit-Xmit/xmit-mail-gateway/internal/upstream"
)

func TestBodyStructure_NilIsNIL(t *testing.T) {
	if got := BodyStructure(nil); got != "NIL" {
		t.Errorf("got %q", got)
	}
}

func TestBodyStructure_SinglePartTextIncludesLines(t *testing.T) {
	bs := &upstream.BodyStructure{Type: "text", Subtype: "plain", Size: 42, Lines: 3, Encoding: "7bit"}
	got := BodyStructure(bs)
	if !strings.HasSuffix(got, "3)") {
		t.Errorf("expected trailing line count, got %q", got)
	}
	if !strings.Contains(got, `"TEXT" "PLAIN"`) {
		t.Errorf("expected uppercased type/subtype, got %q", got)
	}
}

func TestBodyStructure_NonTextOmitsLines(t *testing.T) {
	bs := &upstream.BodyStructure{Type: "image", Subtype: "png", Size: 1024}
	got := BodyStructure(bs)
	if !strings.HasSuffix(got, "1024)") {
		t.Errorf("expected trailing size with no line count, got %q", got)
	}
}

func TestBodyStructure_MultipartJoinsPartsWithSubtype(t *testing.T) {
	bs := &upstream.BodyStructure{
		Subtype: "mixed",
		Parts: []upstream.BodyStructure{
			{Type: "text", Subtype: "plain", Size: 10},
			{Type: "text", Subtype: "html", Size: 20},
		},
	}
	got := BodyStructure(bs)
	if !strings.HasSuffix(got, `"MIXED")`) {
		t.Errorf("expected trailing multipart subtype, got %q", got)
	}
}
