package resources

import "testing"

func TestFindCopingStrategy(t *testing.T) {
	s, ok := FindCopingStrategy("  deep breathing ")
	if !ok || s.Duration != "5 minutes" {
		t.Fatalf("unexpected lookup result: %+v ok=%v", s, ok)
	}
	if _, ok := FindCopingStrategy("yoga"); ok {
		t.Fatalf("unknown strategy should not be found")
	}
}
