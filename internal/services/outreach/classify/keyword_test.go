package classify

import (
	"context"
	"testing"
)

func TestKeywordClassifierCategories(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "confirmed",
			body: "Yes! Count me in, this sounds wonderful.",
			want: LabelConfirmed,
		},
		{
			name: "declined",
			body: "Unfortunately I won't be able to join this year.",
			want: LabelDeclined,
		},
		{
			name: "more info",
			body: "Could you share the agenda and some details about the format?",
			want: LabelMoreInfo,
		},
		{
			name: "meeting requested",
			body: "Happy to consider it, but I'd like to hop on a quick call first.",
			want: LabelMeetingRequested,
		},
		{
			name: "unclear",
			body: "Thanks for reaching out.",
			want: LabelUnclear,
		},
		{
			name: "empty",
			body: "",
			want: LabelUnclear,
		},
	}

	classifier := NewKeywordClassifier()
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := classifier.Classify(context.Background(), tt.body, "Dr. Chen")
			if err != nil {
				t.Fatalf("classify: %v", err)
			}
			if got.Classification != tt.want {
				t.Fatalf("classification = %q, want %q", got.Classification, tt.want)
			}
		})
	}
}

func TestKeywordClassifierConfidence(t *testing.T) {
	t.Parallel()

	classifier := NewKeywordClassifier()

	single, err := classifier.Classify(context.Background(), "count me in", "")
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	if single.Confidence != 0.6 {
		t.Fatalf("single hit confidence = %v, want 0.6", single.Confidence)
	}

	double, err := classifier.Classify(context.Background(), "Yes, count me in!", "")
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	if double.Confidence <= single.Confidence {
		t.Fatalf("double hit confidence = %v, want above %v", double.Confidence, single.Confidence)
	}

	unclear, err := classifier.Classify(context.Background(), "noted", "")
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	if unclear.Classification != LabelUnclear || unclear.Confidence != 0 {
		t.Fatalf("unclear result = %+v, want zero-confidence unclear", unclear)
	}
}

func TestKeywordClassifierDoesNotMatchSubwords(t *testing.T) {
	t.Parallel()

	classifier := NewKeywordClassifier()
	got, err := classifier.Classify(context.Background(), "I know nothing about this event.", "")
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	if got.Classification != LabelUnclear {
		t.Fatalf("classification = %q, want %q (no keyword inside longer words)", got.Classification, LabelUnclear)
	}
}
