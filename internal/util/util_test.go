package util

import "testing"

func TestContentHash(t *testing.T) {
	testCases := []struct {
		name     string
		content  []byte
		expected string
	}{
		{
			name:     "Empty",
			content:  []byte(""),
			expected: "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
		},
		{
			name:     "Hello",
			content:  []byte("hello"),
			expected: "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ContentHash(tc.content); got != tc.expected {
				t.Errorf("Expected %s, got %s", tc.expected, got)
			}
		})
	}
}

func TestETag(t *testing.T) {
	got := ETag([]byte("hello"))
	want := `"2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"`
	if got != want {
		t.Errorf("Expected %s, got %s", want, got)
	}
	if ETag([]byte("a")) == ETag([]byte("b")) {
		t.Error("Expected different content to produce different tags")
	}
}
