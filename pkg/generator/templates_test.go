package generator

import (
	"strings"
	"testing"
)

func TestBuildPrompt(t *testing.T) {
	p := BuildPrompt(PromptParams{
		Keywords:        "cafea de specialitate",
		Audience:        AudienceBlock(AudienceByID("entrepreneurs")),
		Tone:            ToneBlock(ToneByID("professional")),
		ContentTypeID:   "google_ad",
		ContentTypeName: "Google Ad",
		Framework:       "AIDA",
	})

	for _, want := range []string{
		"SUBIECT: cafea de specialitate",
		"STRUCTURA FRAMEWORK-ULUI AIDA",
		"ATTENTION",
		"CERINTE SPECIFICE PENTRU Google Ad",
		"HEADLINE 1 (max 30 caractere)",
		"Antreprenori si freelanceri",
		"GENEREAZA CONTINUTUL ACUM:",
	} {
		if !strings.Contains(p, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
	if strings.Contains(p, "CONTEXT ADITIONAL") {
		t.Error("empty additional context should be omitted")
	}
}

func TestBuildPromptInstagramHashtags(t *testing.T) {
	p := BuildPrompt(PromptParams{
		Keywords:        "transformare fitness",
		ContentTypeID:   "instagram_caption",
		ContentTypeName: "Instagram Caption",
		Framework:       "PAS",
	})
	if !strings.HasSuffix(p, "La final, adauga hashtag-uri relevante (15-30).") {
		t.Error("instagram captions should request hashtags at the end")
	}
}

func TestBuildPromptCustomFramework(t *testing.T) {
	p := BuildPrompt(PromptParams{
		Keywords:  "curs de programare",
		Framework: "Hook-Story-Offer",
	})
	if !strings.Contains(p, "framework-ul Hook-Story-Offer") {
		t.Error("custom framework name should appear in the brief")
	}
	if strings.Contains(p, "STRUCTURA FRAMEWORK-ULUI") {
		t.Error("unknown frameworks have no canned structure block")
	}
}

func TestBuildPromptWordCountHint(t *testing.T) {
	long := BuildPrompt(PromptParams{Keywords: "x", WordCount: "long"})
	if !strings.Contains(long, "LUNGIME CERUTA") {
		t.Error("long word count should add a length instruction")
	}
	normal := BuildPrompt(PromptParams{Keywords: "x", WordCount: "normal"})
	if strings.Contains(normal, "LUNGIME CERUTA") {
		t.Error("normal word count adds nothing")
	}
}

func TestCatalogFallbacks(t *testing.T) {
	if got := AudienceByID("nonexistent"); got.ID != "weight_loss_seeker" {
		t.Errorf("unknown audience should fall back to default, got %s", got.ID)
	}
	if got := ToneByID(""); got.ID != "empathetic" {
		t.Errorf("unknown tone should fall back to default, got %s", got.ID)
	}
	if got := ContentTypeByID("bogus"); got.ID != "facebook_post" {
		t.Errorf("unknown content type should fall back to default, got %s", got.ID)
	}
	if _, ok := FrameworkByName("AIDA"); !ok {
		t.Error("AIDA should be a built-in framework")
	}
	if _, ok := FrameworkByName("bogus"); ok {
		t.Error("bogus framework should not resolve")
	}
}

func TestContentTypeInstructionsCoverCatalog(t *testing.T) {
	for _, ct := range ContentTypes {
		if _, ok := contentTypeInstructions[ct.ID]; !ok {
			t.Errorf("content type %s has no structural instructions", ct.ID)
		}
	}
	for _, f := range Frameworks {
		if _, ok := frameworkInstructions[f.Name]; !ok {
			t.Errorf("framework %s has no structural instructions", f.Name)
		}
	}
}

func TestEstimateTokens(t *testing.T) {
	if got := EstimateTokens(""); got != 0 {
		t.Errorf("empty text should estimate 0 tokens, got %d", got)
	}
	got := EstimateTokens("Scrie un email de vanzare pentru o cafenea din Cluj.")
	if got <= 0 {
		t.Errorf("expected a positive estimate, got %d", got)
	}
}
