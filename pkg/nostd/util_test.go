package nostd

import (
	"strings"
	"testing"
)

func TestSafePathJoin(t *testing.T) {
	got, err := SafePathJoin("/var/uploads", "shot.png")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasSuffix(got, "/var/uploads/shot.png") {
		t.Errorf("got %s", got)
	}
}

func TestSafePathJoinRejectsTraversal(t *testing.T) {
	for _, input := range []string{"../etc/passwd", "a/../../etc", "../../x"} {
		if _, err := SafePathJoin("/var/uploads", input); err == nil {
			t.Errorf("SafePathJoin accepted %q", input)
		}
	}
}
