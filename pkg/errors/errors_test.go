package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestNewCarriesCodeAndMessage(t *testing.T) {
	err := New(CodeValidation, "missing signature header")

	if err.Code() != CodeValidation {
		t.Fatalf("expected %s, got %s", CodeValidation, err.Code())
	}
	if err.Message() != "missing signature header" {
		t.Fatalf("unexpected message %q", err.Message())
	}
	if err.Unwrap() != nil {
		t.Fatalf("expected no cause")
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := stdErrors.New("connection reset")
	err := Wrap(CodeDependency, cause, "deliver sales order")

	if !stdErrors.Is(err, cause) {
		t.Fatalf("expected cause to survive unwrap")
	}
	if got := As(fmt.Errorf("outer: %w", err)); got == nil || got.Code() != CodeDependency {
		t.Fatalf("expected typed error through wrapping, got %v", got)
	}
}

func TestWrapNilCauseBehavesLikeNew(t *testing.T) {
	err := Wrap(CodeInternal, nil, "boom")
	if err.Unwrap() != nil {
		t.Fatalf("expected nil cause")
	}
}

func TestMetadataForKnownCodes(t *testing.T) {
	cases := map[Code]int{
		CodeUnauthorized:    http.StatusUnauthorized,
		CodePayloadTooLarge: http.StatusRequestEntityTooLarge,
		CodeRateLimit:       http.StatusTooManyRequests,
		CodeDependency:      http.StatusServiceUnavailable,
	}
	for code, want := range cases {
		if got := MetadataFor(code).HTTPStatus; got != want {
			t.Fatalf("code %s: expected status %d, got %d", code, want, got)
		}
	}
}

func TestMetadataForUnknownCodeFallsBack(t *testing.T) {
	meta := MetadataFor(Code("NOPE"))
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("expected internal fallback, got %d", meta.HTTPStatus)
	}
}

func TestIsRetryable(t *testing.T) {
	if IsRetryable(New(CodeValidation, "bad payload")) {
		t.Fatalf("validation errors must not be retried")
	}
	if !IsRetryable(New(CodeDependency, "timeout")) {
		t.Fatalf("dependency errors are retryable")
	}
	if !IsRetryable(stdErrors.New("untyped")) {
		t.Fatalf("untyped errors default to retryable")
	}
	if IsRetryable(New(CodeExhausted, "done")) {
		t.Fatalf("exhausted is terminal")
	}
}

func TestDumpCollectsChain(t *testing.T) {
	inner := stdErrors.New("root")
	err := Wrap(CodeDependency, inner, "wrapping")

	dump := Dump(err)
	if dump.Code != CodeDependency {
		t.Fatalf("expected code in dump, got %q", dump.Code)
	}
	if len(dump.Chain) != 2 {
		t.Fatalf("expected 2 chain entries, got %d", len(dump.Chain))
	}
}
